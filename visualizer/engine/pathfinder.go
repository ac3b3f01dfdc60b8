package engine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Option configures a PathFinder
type Option func(*PathFinder)

// WithPacer sets the pacer consulted at every suspension point
func WithPacer(p Pacer) Option {
	return func(pf *PathFinder) {
		if p != nil {
			pf.pacer = p
		}
	}
}

// WithObserver sets the callback that receives run events
func WithObserver(o Observer) Option {
	return func(pf *PathFinder) {
		pf.observer = o
	}
}

// PathFinder owns the endpoints and grid reference for one visualizer and
// runs at most one search at a time over them.
type PathFinder struct {
	mu       sync.RWMutex
	grid     Grid
	start    Coordinate
	end      Coordinate
	pacer    Pacer
	observer Observer

	running atomic.Bool
}

// New creates a PathFinder over grid. Endpoints are checked when a run starts,
// not here, so callers may build the finder before the grid is populated.
func New(grid Grid, start, end Coordinate, opts ...Option) *PathFinder {
	pf := &PathFinder{
		grid:  grid,
		start: start,
		end:   end,
		pacer: NoPacer,
	}
	for _, opt := range opts {
		opt(pf)
	}
	return pf
}

// SetStartPoint replaces the start coordinate used by the next run
func (pf *PathFinder) SetStartPoint(c Coordinate) {
	pf.mu.Lock()
	defer pf.mu.Unlock()
	pf.start = c
}

// SetEndPoint replaces the end coordinate used by the next run
func (pf *PathFinder) SetEndPoint(c Coordinate) {
	pf.mu.Lock()
	defer pf.mu.Unlock()
	pf.end = c
}

// UpdateGrid replaces the grid used by the next run
func (pf *PathFinder) UpdateGrid(grid Grid) {
	pf.mu.Lock()
	defer pf.mu.Unlock()
	pf.grid = grid
}

// SetPacer replaces the pacer used by the next run. A nil pacer means NoPacer.
func (pf *PathFinder) SetPacer(p Pacer) {
	if p == nil {
		p = NoPacer
	}
	pf.mu.Lock()
	defer pf.mu.Unlock()
	pf.pacer = p
}

// SetObserver replaces the event callback used by the next run
func (pf *PathFinder) SetObserver(o Observer) {
	pf.mu.Lock()
	defer pf.mu.Unlock()
	pf.observer = o
}

func (pf *PathFinder) Start() Coordinate {
	pf.mu.RLock()
	defer pf.mu.RUnlock()
	return pf.start
}

func (pf *PathFinder) End() Coordinate {
	pf.mu.RLock()
	defer pf.mu.RUnlock()
	return pf.end
}

func (pf *PathFinder) Grid() Grid {
	pf.mu.RLock()
	defer pf.mu.RUnlock()
	return pf.grid
}

// IsRunning reports whether a search is in flight
func (pf *PathFinder) IsRunning() bool {
	return pf.running.Load()
}

// Run executes the named algorithm to completion, marking visited and final
// cells on the grid as it goes. It returns ErrAlreadyRunning without touching
// the grid if another run is in flight. An unreachable end is not an error:
// the result reports Found == false.
//
// Run does not clear earlier marks; callers reset the grid between runs.
func (pf *PathFinder) Run(ctx context.Context, algorithm Algorithm) (*Result, error) {
	algorithm, err := ParseAlgorithm(string(algorithm))
	if err != nil {
		return nil, err
	}

	if !pf.running.CompareAndSwap(false, true) {
		return nil, ErrAlreadyRunning
	}
	defer pf.running.Store(false)

	pf.mu.RLock()
	grid, start, end := pf.grid, pf.start, pf.end
	pacer, observer := pf.pacer, pf.observer
	pf.mu.RUnlock()

	if grid == nil {
		return nil, ErrNilGrid
	}
	if !InBounds(grid, start) {
		return nil, fmt.Errorf("start %s: %w", start, ErrOutOfBounds)
	}
	if !InBounds(grid, end) {
		return nil, fmt.Errorf("end %s: %w", end, ErrOutOfBounds)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	began := time.Now()
	s := newSearch(ctx, grid, algorithm, start, end, pacer, observer)

	var out outcome
	if !grid.IsObstacle(start) {
		switch algorithm {
		case AStar:
			out = s.aStar()
		case Dijkstra:
			out = s.dijkstra()
		case BFS:
			out = s.bfs()
		case DFS:
			out = s.dfs()
		}
	}

	result := &Result{
		Algorithm: algorithm,
		Found:     out.found,
		Visited:   s.visited,
	}

	if out.found {
		path := out.path
		if path == nil {
			path, err = s.reconstructPath(out.parents)
			if err != nil {
				return nil, err
			}
		}
		s.markPath(path)
		result.Path = path
		s.emit(EventFound, end)
	} else {
		s.emit(EventNoPath, end)
	}

	result.Duration = time.Since(began)
	return result, nil
}
