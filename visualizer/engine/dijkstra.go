package engine

// dijkstra expands the open cell with the lowest distance from start. Unlike
// aStar it stops as soon as the end cell is discovered as a neighbor rather
// than waiting for it to be popped.
func (s *search) dijkstra() outcome {
	distances := s.newCostTable()
	parents := s.newParentTable()
	closed := make([]bool, s.size())

	startKey := s.key(s.start)
	distances[startKey] = 0

	open := newOpenSet()
	open.Push(s.start, startKey, 0)

	for open.Len() > 0 {
		s.pause(StepExpand)

		current, currentKey := open.PopMin()
		closed[currentKey] = true

		if current == s.end {
			return outcome{found: true, parents: parents}
		}

		for _, d := range directions {
			next := current.Add(d)
			if !s.inBounds(next) || s.grid.IsObstacle(next) {
				continue
			}
			nextKey := s.key(next)

			if next == s.end {
				parents[nextKey] = current
				return outcome{found: true, parents: parents}
			}
			if closed[nextKey] {
				continue
			}

			distance := distances[currentKey] + 1
			if distance < distances[nextKey] {
				distances[nextKey] = distance
				parents[nextKey] = current
				if open.Contains(nextKey) {
					open.Update(nextKey, distance)
				} else {
					open.Push(next, nextKey, distance)
					s.visit(next)
				}
			}
		}
	}

	return outcome{found: false, parents: parents}
}
