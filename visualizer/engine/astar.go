package engine

// aStar expands the open cell with the lowest gCost + Manhattan estimate and
// succeeds when the end cell is popped.
func (s *search) aStar() outcome {
	gCosts := s.newCostTable()
	fCosts := s.newCostTable()
	parents := s.newParentTable()
	closed := make([]bool, s.size())

	startKey := s.key(s.start)
	gCosts[startKey] = 0
	fCosts[startKey] = Manhattan(s.start, s.end)

	open := newOpenSet()
	open.Push(s.start, startKey, fCosts[startKey])

	for open.Len() > 0 {
		s.pause(StepExpand)

		current, currentKey := open.PopMin()
		closed[currentKey] = true

		if current == s.end {
			return outcome{found: true, parents: parents}
		}

		for _, d := range directions {
			next := current.Add(d)
			if !s.inBounds(next) {
				continue
			}
			nextKey := s.key(next)
			if closed[nextKey] || s.grid.IsObstacle(next) {
				continue
			}

			tentative := gCosts[currentKey] + 1
			if tentative < gCosts[nextKey] {
				gCosts[nextKey] = tentative
				fCosts[nextKey] = tentative + Manhattan(next, s.end)
				parents[nextKey] = current
				open.Update(nextKey, fCosts[nextKey])
			}

			if !open.Contains(nextKey) {
				open.Push(next, nextKey, fCosts[nextKey])
				s.visit(next)
			}
		}
	}

	return outcome{found: false, parents: parents}
}
