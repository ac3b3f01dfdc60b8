package engine

import (
	"fmt"
	"math"
	"time"
)

const (
	// Unreachable is the sentinel cost for cells no search has reached yet.
	Unreachable = math.MaxInt

	// Validation constants
	MinGridSize = 1
	MaxGridRows = 100
	MaxGridCols = 200

	// Blank grid defaults used when no layout is given
	DefaultRows = 30
	DefaultCols = 60
)

// Coordinate is a (row, col) pair on the grid
type Coordinate struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// NoParent marks a parent table entry that has not been assigned
var NoParent = Coordinate{Row: -1, Col: -1}

// String renders the coordinate as "(row,col)"
func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// Add returns the coordinate shifted by the given offset
func (c Coordinate) Add(d Coordinate) Coordinate {
	return Coordinate{Row: c.Row + d.Row, Col: c.Col + d.Col}
}

// directions is the fixed neighbor order shared by every algorithm: right, down, left, up.
var directions = [4]Coordinate{
	{Row: 0, Col: 1},
	{Row: 1, Col: 0},
	{Row: 0, Col: -1},
	{Row: -1, Col: 0},
}

// Cell represents the observable state of a single grid cell
type Cell struct {
	Obstacle bool `json:"obstacle,omitempty"`
	Visited  bool `json:"visited,omitempty"`
	Final    bool `json:"final,omitempty"`
}

// Grid is the accessor the engine reads from and writes to. The engine never
// allocates cells; it only queries and marks them.
type Grid interface {
	Rows() int
	Cols() int
	IsObstacle(c Coordinate) bool
	IsVisited(c Coordinate) bool
	MarkVisited(c Coordinate)
	MarkFinalPath(c Coordinate)
	// ResetGrid clears visited and final marks. When filter is non-nil only
	// cells for which it returns true are cleared.
	ResetGrid(filter func(c Coordinate, cell Cell) bool)
}

// InBounds reports whether c lies inside g
func InBounds(g Grid, c Coordinate) bool {
	return c.Row >= 0 && c.Row < g.Rows() && c.Col >= 0 && c.Col < g.Cols()
}

// Algorithm names a search strategy
type Algorithm string

const (
	AStar    Algorithm = "a*"
	Dijkstra Algorithm = "dijkstra"
	DFS      Algorithm = "dfs"
	BFS      Algorithm = "bfs"
)

// Algorithms lists every supported algorithm in menu order
var Algorithms = []Algorithm{AStar, Dijkstra, DFS, BFS}

// EventKind identifies what happened during a run
type EventKind string

const (
	EventVisited EventKind = "visited"
	EventFinal   EventKind = "final"
	EventFound   EventKind = "found"
	EventNoPath  EventKind = "no_path"
)

// Event is emitted by a running search for every observable grid mutation and
// once more when the run finishes.
type Event struct {
	Kind      EventKind  `json:"kind"`
	Algorithm Algorithm  `json:"algorithm"`
	Coord     Coordinate `json:"coord"`
	Seq       int        `json:"seq"`
}

// Observer receives events in the order they occur. It is called on the
// goroutine running the search and must not block for long.
type Observer func(Event)

// Result summarizes a finished run
type Result struct {
	Algorithm Algorithm     `json:"algorithm"`
	Found     bool          `json:"found"`
	Path      []Coordinate  `json:"path,omitempty"`
	Visited   []Coordinate  `json:"visited"`
	Duration  time.Duration `json:"duration"`
}

// PathLength returns the number of steps in the path (cells minus one), or -1
// when no path was found.
func (r *Result) PathLength() int {
	if r == nil || !r.Found || len(r.Path) == 0 {
		return -1
	}
	return len(r.Path) - 1
}
