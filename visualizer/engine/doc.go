// Package engine implements the pathfinding core of the visualizer.
//
// The engine runs one of four searches over a rectangular grid of cells:
//   - A* with a Manhattan heuristic
//   - Dijkstra, which stops as soon as the end is discovered
//   - Breadth-first search, paced one level at a time
//   - Depth-first search with an explicit stack
//
// Every search walks neighbors in the same order (right, down, left, up),
// marks cells visited on the grid as it discovers them, and finally marks the
// path cells in order. A Pacer is consulted before each unit of work so that a
// host can animate the marks; NoPacer runs at full speed.
//
// Core Types:
//
// Grid is the accessor the engine reads and writes through. Board is the
// in-memory implementation used by the rest of the visualizer. PathFinder holds
// the grid reference and endpoints and guards against overlapping runs.
//
// Usage:
//
//	board, start, end, err := engine.NewBoardFromLayout(layout)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	pf := engine.New(board, start, end, engine.WithPacer(engine.NewDelayPacer(1)))
//	result, err := pf.Run(ctx, engine.AStar)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(result.Found, result.PathLength())
//
// Layouts:
//
// A layout is a list of equal-length rows using '.' for open cells, '#' for
// obstacles and at most one 'S' and one 'E'. Missing endpoints default to the
// middle row at one quarter and three quarters of the width.
package engine
