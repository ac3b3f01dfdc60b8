package engine

import (
	"fmt"
	"strings"
	"sync"
)

// Layout characters used by Board.Render and layout files
const (
	CharEmpty    = '.'
	CharObstacle = '#'
	CharStart    = 'S'
	CharEnd      = 'E'
	CharVisited  = 'o'
	CharFinal    = '*'
)

// Board is the in-memory Grid implementation used by sessions and tests.
// It is safe for concurrent use: the API reads snapshots while a search
// goroutine marks cells.
type Board struct {
	rows  int
	cols  int
	cells [][]Cell
	mu    sync.RWMutex
}

// NewBoard creates an empty rows x cols board
func NewBoard(rows, cols int) (*Board, error) {
	if rows < MinGridSize || rows > MaxGridRows {
		return nil, fmt.Errorf("rows must be between %d and %d, got %d", MinGridSize, MaxGridRows, rows)
	}
	if cols < MinGridSize || cols > MaxGridCols {
		return nil, fmt.Errorf("cols must be between %d and %d, got %d", MinGridSize, MaxGridCols, cols)
	}

	cells := make([][]Cell, rows)
	for i := range cells {
		cells[i] = make([]Cell, cols)
	}
	return &Board{rows: rows, cols: cols, cells: cells}, nil
}

// Rows returns the number of rows
func (b *Board) Rows() int { return b.rows }

// Cols returns the number of columns
func (b *Board) Cols() int { return b.cols }

func (b *Board) inBounds(c Coordinate) bool {
	return c.Row >= 0 && c.Row < b.rows && c.Col >= 0 && c.Col < b.cols
}

// IsObstacle reports whether the cell at c is an obstacle
func (b *Board) IsObstacle(c Coordinate) bool {
	if !b.inBounds(c) {
		return false
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.cells[c.Row][c.Col].Obstacle
}

// IsVisited reports whether the cell at c has been marked visited
func (b *Board) IsVisited(c Coordinate) bool {
	if !b.inBounds(c) {
		return false
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.cells[c.Row][c.Col].Visited
}

// MarkVisited flags the cell at c as visited
func (b *Board) MarkVisited(c Coordinate) {
	if !b.inBounds(c) {
		return
	}
	b.mu.Lock()
	b.cells[c.Row][c.Col].Visited = true
	b.mu.Unlock()
}

// MarkFinalPath flags the cell at c as part of the final path
func (b *Board) MarkFinalPath(c Coordinate) {
	if !b.inBounds(c) {
		return
	}
	b.mu.Lock()
	b.cells[c.Row][c.Col].Final = true
	b.mu.Unlock()
}

// ResetGrid clears visited and final marks, optionally only where filter matches
func (b *Board) ResetGrid(filter func(c Coordinate, cell Cell) bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for row := 0; row < b.rows; row++ {
		for col := 0; col < b.cols; col++ {
			cell := &b.cells[row][col]
			if filter != nil && !filter(Coordinate{Row: row, Col: col}, *cell) {
				continue
			}
			cell.Visited = false
			cell.Final = false
		}
	}
}

// Clear resets every cell, obstacles included
func (b *Board) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for row := range b.cells {
		for col := range b.cells[row] {
			b.cells[row][col] = Cell{}
		}
	}
}

// SetObstacle sets or clears the obstacle flag at c
func (b *Board) SetObstacle(c Coordinate, obstacle bool) error {
	if !b.inBounds(c) {
		return fmt.Errorf("%w: %s on %dx%d grid", ErrOutOfBounds, c, b.rows, b.cols)
	}
	b.mu.Lock()
	b.cells[c.Row][c.Col].Obstacle = obstacle
	b.mu.Unlock()
	return nil
}

// ToggleObstacle flips the obstacle flag at c and returns the new value
func (b *Board) ToggleObstacle(c Coordinate) (bool, error) {
	if !b.inBounds(c) {
		return false, fmt.Errorf("%w: %s on %dx%d grid", ErrOutOfBounds, c, b.rows, b.cols)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	cell := &b.cells[c.Row][c.Col]
	cell.Obstacle = !cell.Obstacle
	return cell.Obstacle, nil
}

// Cell returns a copy of the cell at c
func (b *Board) Cell(c Coordinate) (Cell, bool) {
	if !b.inBounds(c) {
		return Cell{}, false
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.cells[c.Row][c.Col], true
}

// Snapshot returns a deep copy of all cells
func (b *Board) Snapshot() [][]Cell {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([][]Cell, b.rows)
	for i := range b.cells {
		out[i] = make([]Cell, b.cols)
		copy(out[i], b.cells[i])
	}
	return out
}

// Obstacles lists obstacle coordinates in row-major order
func (b *Board) Obstacles() []Coordinate {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var result []Coordinate
	for row := range b.cells {
		for col, cell := range b.cells[row] {
			if cell.Obstacle {
				result = append(result, Coordinate{Row: row, Col: col})
			}
		}
	}
	return result
}

// CountVisited returns how many cells are currently marked visited
func (b *Board) CountVisited() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	count := 0
	for _, row := range b.cells {
		for _, cell := range row {
			if cell.Visited {
				count++
			}
		}
	}
	return count
}

// Render draws the board as text rows. Start and end take precedence over
// cell marks, final path over visited.
func (b *Board) Render(start, end Coordinate) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	lines := make([]string, b.rows)
	var sb strings.Builder
	for row := 0; row < b.rows; row++ {
		sb.Reset()
		for col := 0; col < b.cols; col++ {
			pos := Coordinate{Row: row, Col: col}
			cell := b.cells[row][col]
			switch {
			case pos == start:
				sb.WriteByte(CharStart)
			case pos == end:
				sb.WriteByte(CharEnd)
			case cell.Obstacle:
				sb.WriteByte(CharObstacle)
			case cell.Final:
				sb.WriteByte(CharFinal)
			case cell.Visited:
				sb.WriteByte(CharVisited)
			default:
				sb.WriteByte(CharEmpty)
			}
		}
		lines[row] = sb.String()
	}
	return lines
}
