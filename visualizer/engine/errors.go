package engine

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownAlgorithm  = errors.New("unknown algorithm")
	ErrAlreadyRunning    = errors.New("a traversal is already in progress")
	ErrOutOfBounds       = errors.New("coordinate out of bounds")
	ErrNilGrid           = errors.New("grid is nil")
	ErrBrokenParentChain = errors.New("parent chain does not lead back to start")
)

// ParseAlgorithm maps a user-facing name to an Algorithm. Matching is
// case-insensitive and "astar" is accepted as an alias for "a*".
func ParseAlgorithm(name string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "a*", "astar", "a-star":
		return AStar, nil
	case "dijkstra":
		return Dijkstra, nil
	case "dfs":
		return DFS, nil
	case "bfs":
		return BFS, nil
	default:
		return "", fmt.Errorf("%w: %q (valid: a*, dijkstra, dfs, bfs)", ErrUnknownAlgorithm, name)
	}
}
