package engine

// bfs explores the grid level by level from start, pausing once per level.
// The grid's visited marks double as the seen set, so the grid must be reset
// before a run.
func (s *search) bfs() outcome {
	parents := s.newParentTable()

	queue := []Coordinate{s.start}
	s.grid.MarkVisited(s.start)

	for len(queue) > 0 {
		s.pause(StepLevel)

		levelSize := len(queue)
		for i := 0; i < levelSize; i++ {
			current := queue[0]
			queue = queue[1:]

			if current == s.end {
				return outcome{found: true, parents: parents}
			}

			for _, d := range directions {
				next := current.Add(d)
				if !s.inBounds(next) || s.grid.IsObstacle(next) || s.grid.IsVisited(next) {
					continue
				}

				parents[s.key(next)] = current
				if next == s.end {
					return outcome{found: true, parents: parents}
				}

				queue = append(queue, next)
				s.visit(next)
			}
		}
	}

	return outcome{found: false, parents: parents}
}
