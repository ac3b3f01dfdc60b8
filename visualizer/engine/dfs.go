package engine

// dfsFrame is one level of the explicit depth-first stack. next is the index
// of the direction to try when the frame is resumed.
type dfsFrame struct {
	coord Coordinate
	next  int
}

// dfs walks depth-first from start, trying directions in the shared order and
// backtracking on dead ends. The stack itself is the path, so no parent table
// is needed.
func (s *search) dfs() outcome {
	if s.blocked(s.start) {
		return outcome{}
	}
	if s.start == s.end {
		return outcome{found: true, path: []Coordinate{s.start}}
	}

	s.grid.MarkVisited(s.start)
	stack := []dfsFrame{{coord: s.start}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next == len(directions) {
			stack = stack[:len(stack)-1]
			continue
		}

		s.pause(StepDirection)

		next := top.coord.Add(directions[top.next])
		top.next++

		if s.blocked(next) {
			continue
		}

		if next == s.end {
			path := make([]Coordinate, 0, len(stack)+1)
			for _, frame := range stack {
				path = append(path, frame.coord)
			}
			return outcome{found: true, path: append(path, next)}
		}

		s.visit(next)
		stack = append(stack, dfsFrame{coord: next})
	}

	return outcome{}
}

// blocked reports whether DFS must not step onto c
func (s *search) blocked(c Coordinate) bool {
	return !s.inBounds(c) || s.grid.IsObstacle(c) || s.grid.IsVisited(c)
}
