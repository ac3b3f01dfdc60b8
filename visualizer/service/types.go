package service

import (
	"time"

	"github.com/wricardo/pathviz/visualizer/engine"
)

// SessionInfo provides information about a visualizer session
type SessionInfo struct {
	ID             string     `json:"id"`
	LayoutName     string     `json:"layout_name"`
	CreatedAt      time.Time  `json:"created_at"`
	LastAccessedAt time.Time  `json:"last_accessed_at"`
	Grid           *GridState `json:"grid"`
}

// GridState is a snapshot of a session's board and endpoints
type GridState struct {
	SessionID    string              `json:"session_id"`
	Rows         int                 `json:"rows"`
	Cols         int                 `json:"cols"`
	Start        engine.Coordinate   `json:"start"`
	End          engine.Coordinate   `json:"end"`
	Render       []string            `json:"render"`
	Obstacles    []engine.Coordinate `json:"obstacles"`
	VisitedCount int                 `json:"visited_count"`
	Running      bool                `json:"running"`
	LastResult   *RunResult          `json:"last_result,omitempty"`
}

// Obstacle actions
const (
	ActionSet      = "set"
	ActionClear    = "clear"
	ActionToggle   = "toggle"
	ActionClearAll = "clear_all"
)

// ObstacleUpdate edits obstacles on a session's board
type ObstacleUpdate struct {
	Action string              `json:"action"`
	Cells  []engine.Coordinate `json:"cells,omitempty"`
}

// ObstacleResult reports what an ObstacleUpdate changed. Start and end cells
// are never turned into obstacles and are listed in Skipped.
type ObstacleResult struct {
	Changed int                 `json:"changed"`
	Skipped []engine.Coordinate `json:"skipped,omitempty"`
	Grid    *GridState          `json:"grid"`
}

// EndpointUpdate moves the start and/or end. Nil fields are left unchanged.
type EndpointUpdate struct {
	Start *engine.Coordinate `json:"start,omitempty"`
	End   *engine.Coordinate `json:"end,omitempty"`
}

// Run statuses
const (
	RunStarted   = "started"
	RunCompleted = "completed"
)

// RunRequest asks for one traversal on a session
type RunRequest struct {
	Algorithm string  `json:"algorithm"`
	Speed     float64 `json:"speed,omitempty"`   // animation speed multiplier, default 1
	Instant   bool    `json:"instant,omitempty"` // skip animation delays
	Wait      bool    `json:"wait,omitempty"`    // block until the run completes
}

// RunResult describes a traversal. Runs started without Wait return
// RunStarted immediately; the completed result is published and stored as
// the session's last result.
type RunResult struct {
	SessionID    string              `json:"session_id"`
	Algorithm    engine.Algorithm    `json:"algorithm"`
	Status       string              `json:"status"`
	Found        bool                `json:"found"`
	Path         []engine.Coordinate `json:"path,omitempty"`
	PathLength   int                 `json:"path_length"`
	VisitedCount int                 `json:"visited_count"`
	DurationMs   int64               `json:"duration_ms"`
	Error        string              `json:"error,omitempty"`
}

// AlgorithmInfo describes a selectable algorithm
type AlgorithmInfo struct {
	Name        engine.Algorithm `json:"name"`
	Description string           `json:"description"`
	Shortest    bool             `json:"shortest"`
}

// LayoutInfo provides information about a layout file
type LayoutInfo struct {
	Filename    string `json:"filename"`
	LayoutID    string `json:"layout_id"` // The identifier to use for session creation
	Name        string `json:"name"`      // Display name
	Description string `json:"description"`
	Rows        int    `json:"rows"`
	Cols        int    `json:"cols"`
	Obstacles   int    `json:"obstacles"`
}
