package engine

// Manhattan returns |row - goalRow| + |col - goalCol|. It is admissible and
// consistent for 4-directional unit-cost movement.
func Manhattan(from, to Coordinate) int {
	dr := from.Row - to.Row
	if dr < 0 {
		dr = -dr
	}
	dc := from.Col - to.Col
	if dc < 0 {
		dc = -dc
	}
	return dr + dc
}
