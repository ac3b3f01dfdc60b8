package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wricardo/pathviz/visualizer/engine"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrLayoutNotFound  = errors.New("layout not found")
	ErrInvalidLayout   = errors.New("invalid layout")
	ErrInvalidEndpoint = errors.New("invalid endpoint")
	ErrInvalidAction   = errors.New("invalid obstacle action")
)

// VisualizerService defines all visualizer operations exposed to transports
type VisualizerService interface {
	// Session Management
	CreateSession(ctx context.Context, layoutName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Grid Editing
	GetGrid(ctx context.Context, sessionID string) (*GridState, error)
	UpdateObstacles(ctx context.Context, sessionID string, update ObstacleUpdate) (*ObstacleResult, error)
	SetEndpoints(ctx context.Context, sessionID string, update EndpointUpdate) (*GridState, error)
	ResetGrid(ctx context.Context, sessionID string, full bool) (*GridState, error)

	// Traversal
	RunAlgorithm(ctx context.Context, sessionID string, req RunRequest) (*RunResult, error)
	ListAlgorithms(ctx context.Context) []AlgorithmInfo

	// Layouts
	ListLayouts(ctx context.Context) ([]*LayoutInfo, error)
	LoadLayout(ctx context.Context, name string) (*engine.LayoutConfig, error)
	SaveLayout(ctx context.Context, name string, layout *engine.LayoutConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, layout *engine.LayoutConfig) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// LayoutManager handles layout loading
type LayoutManager interface {
	LoadLayout(name string) (*engine.LayoutConfig, error)
	ListLayouts() ([]*LayoutInfo, error)
	GetDefault() *engine.LayoutConfig
	SaveLayout(name string, layout *engine.LayoutConfig) error
}

// Publisher receives live updates for a session, typically the websocket hub
type Publisher interface {
	PublishEvent(sessionID string, event engine.Event)
	PublishGrid(sessionID string, grid *GridState)
}

// Session represents one visualizer: a board, its path finder and the layout
// it was built from.
type Session struct {
	ID        string
	Board     *engine.Board
	Finder    *engine.PathFinder
	Layout    *engine.LayoutConfig
	CreatedAt time.Time

	// lastAccessed holds unix nanoseconds; it is written by request
	// handlers and the cleanup loop concurrently.
	lastAccessed atomic.Int64

	// reserved is held from the moment a run is accepted until it finishes,
	// covering the gap before the finder's own guard is taken. Board edits
	// hold it too, so edits and runs never overlap.
	reserved atomic.Bool

	mu         sync.RWMutex
	lastResult *RunResult
}

// Reserve claims the session for a run or a board edit. It returns false if
// a run or edit already holds it.
func (s *Session) Reserve() bool {
	if s.Finder.IsRunning() {
		return false
	}
	return s.reserved.CompareAndSwap(false, true)
}

// Release ends a reservation taken by Reserve
func (s *Session) Release() {
	s.reserved.Store(false)
}

// Busy reports whether a run is accepted or in flight
func (s *Session) Busy() bool {
	return s.reserved.Load() || s.Finder.IsRunning()
}

// Touch records t as the last time the session was used
func (s *Session) Touch(t time.Time) {
	s.lastAccessed.Store(t.UnixNano())
}

// LastAccessedAt returns the time recorded by the latest Touch
func (s *Session) LastAccessedAt() time.Time {
	return time.Unix(0, s.lastAccessed.Load())
}

func (s *Session) LastResult() *RunResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastResult
}

func (s *Session) SetLastResult(r *RunResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastResult = r
}
