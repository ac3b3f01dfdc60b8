package engine

import "fmt"

// reconstructPath follows the parent table from end back to start and returns
// the path ordered start to end. The walk is bounded by the cell count so a
// corrupt table cannot loop forever.
func (s *search) reconstructPath(parents []Coordinate) ([]Coordinate, error) {
	var reversed []Coordinate
	current := s.end

	for steps := 0; steps <= s.size(); steps++ {
		if !s.inBounds(current) {
			return nil, fmt.Errorf("%w: reached %s", ErrBrokenParentChain, current)
		}
		reversed = append(reversed, current)
		if current == s.start {
			path := make([]Coordinate, len(reversed))
			for i, c := range reversed {
				path[len(reversed)-1-i] = c
			}
			return path, nil
		}

		parent := parents[s.key(current)]
		if parent == NoParent {
			return nil, fmt.Errorf("%w: %s has no parent", ErrBrokenParentChain, current)
		}
		current = parent
	}

	return nil, fmt.Errorf("%w: cycle detected after %d steps", ErrBrokenParentChain, s.size())
}

// markPath marks each path cell in order, pausing before every mark
func (s *search) markPath(path []Coordinate) {
	for _, c := range path {
		s.pause(StepPath)
		s.grid.MarkFinalPath(c)
		s.emit(EventFinal, c)
	}
}
