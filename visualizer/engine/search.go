package engine

import "context"

// search holds the per-run state shared by every algorithm. A new search is
// built for each Run so concurrent PathFinders never share tables.
type search struct {
	ctx       context.Context
	grid      Grid
	algorithm Algorithm
	start     Coordinate
	end       Coordinate
	rows      int
	cols      int
	pacer     Pacer
	observer  Observer

	seq     int
	visited []Coordinate
}

// outcome is what an algorithm hands back to the path reconstructor: either a
// parent table (A*, Dijkstra, BFS) or a ready path (DFS).
type outcome struct {
	found   bool
	parents []Coordinate
	path    []Coordinate
}

func newSearch(ctx context.Context, grid Grid, algorithm Algorithm, start, end Coordinate, pacer Pacer, observer Observer) *search {
	if pacer == nil {
		pacer = NoPacer
	}
	return &search{
		ctx:       ctx,
		grid:      grid,
		algorithm: algorithm,
		start:     start,
		end:       end,
		rows:      grid.Rows(),
		cols:      grid.Cols(),
		pacer:     pacer,
		observer:  observer,
	}
}

// key packs a coordinate into a flat table index
func (s *search) key(c Coordinate) int {
	return c.Row*s.cols + c.Col
}

func (s *search) inBounds(c Coordinate) bool {
	return c.Row >= 0 && c.Row < s.rows && c.Col >= 0 && c.Col < s.cols
}

func (s *search) size() int {
	return s.rows * s.cols
}

func (s *search) pause(step StepKind) {
	s.pacer.Pause(s.ctx, s.algorithm, step)
}

// visit marks c visited on the grid and records it in traversal order
func (s *search) visit(c Coordinate) {
	s.grid.MarkVisited(c)
	s.visited = append(s.visited, c)
	s.emit(EventVisited, c)
}

func (s *search) emit(kind EventKind, c Coordinate) {
	s.seq++
	if s.observer == nil {
		return
	}
	s.observer(Event{Kind: kind, Algorithm: s.algorithm, Coord: c, Seq: s.seq})
}

func (s *search) newParentTable() []Coordinate {
	parents := make([]Coordinate, s.size())
	for i := range parents {
		parents[i] = NoParent
	}
	parents[s.key(s.start)] = s.start
	return parents
}

func (s *search) newCostTable() []int {
	costs := make([]int, s.size())
	for i := range costs {
		costs[i] = Unreachable
	}
	return costs
}
