package engine

import (
	"encoding/json"
	"fmt"
	"os"
)

// LayoutConfig describes a grid layout loaded from a layouts file.
// Each row uses '.' for open cells, '#' for obstacles, and optionally one
// 'S' (start) and one 'E' (end).
type LayoutConfig struct {
	Name        string   `json:"name" hcl:"name"`
	Description string   `json:"description,omitempty" hcl:"description,optional"`
	Layout      []string `json:"layout" hcl:"layout"`
}

// DefaultStart returns the start position used when a layout has no 'S'
func DefaultStart(rows, cols int) Coordinate {
	return Coordinate{Row: rows / 2, Col: cols / 4}
}

// DefaultEnd returns the end position used when a layout has no 'E'
func DefaultEnd(rows, cols int) Coordinate {
	return Coordinate{Row: rows / 2, Col: 3 * cols / 4}
}

// ValidateLayout checks a layout for shape, legal characters and endpoints
func ValidateLayout(config *LayoutConfig) error {
	if config == nil {
		return fmt.Errorf("layout validation: config is nil")
	}
	if config.Name == "" {
		return fmt.Errorf("layout validation: name is required")
	}

	rows := len(config.Layout)
	if rows < MinGridSize || rows > MaxGridRows {
		return fmt.Errorf("layout validation: must have between %d and %d rows, got %d", MinGridSize, MaxGridRows, rows)
	}
	cols := len(config.Layout[0])
	if cols < MinGridSize || cols > MaxGridCols {
		return fmt.Errorf("layout validation: must have between %d and %d columns, got %d", MinGridSize, MaxGridCols, cols)
	}

	starts, ends := 0, 0
	for i, row := range config.Layout {
		if len(row) != cols {
			return fmt.Errorf("layout validation: row %d must have %d characters, got %d", i+1, cols, len(row))
		}
		for j := 0; j < len(row); j++ {
			switch row[j] {
			case CharEmpty, CharObstacle:
			case CharStart:
				starts++
			case CharEnd:
				ends++
			default:
				return fmt.Errorf("layout validation: invalid character '%c' at row %d, col %d", row[j], i+1, j+1)
			}
		}
	}
	if starts > 1 {
		return fmt.Errorf("layout validation: at most one start (S) cell allowed, got %d", starts)
	}
	if ends > 1 {
		return fmt.Errorf("layout validation: at most one end (E) cell allowed, got %d", ends)
	}

	// Defaulted endpoints must not land on obstacles
	if starts == 0 {
		if p := DefaultStart(rows, cols); config.Layout[p.Row][p.Col] == CharObstacle {
			return fmt.Errorf("layout validation: default start %s is an obstacle; add an S cell", p)
		}
	}
	if ends == 0 {
		if p := DefaultEnd(rows, cols); config.Layout[p.Row][p.Col] == CharObstacle {
			return fmt.Errorf("layout validation: default end %s is an obstacle; add an E cell", p)
		}
	}

	return nil
}

// NewBoardFromLayout validates the layout and builds a board plus its endpoints
func NewBoardFromLayout(config *LayoutConfig) (*Board, Coordinate, Coordinate, error) {
	if err := ValidateLayout(config); err != nil {
		return nil, NoParent, NoParent, err
	}

	rows, cols := len(config.Layout), len(config.Layout[0])
	board, err := NewBoard(rows, cols)
	if err != nil {
		return nil, NoParent, NoParent, err
	}

	start, end := DefaultStart(rows, cols), DefaultEnd(rows, cols)
	for r, line := range config.Layout {
		for c := 0; c < len(line); c++ {
			pos := Coordinate{Row: r, Col: c}
			switch line[c] {
			case CharObstacle:
				board.cells[r][c].Obstacle = true
			case CharStart:
				start = pos
			case CharEnd:
				end = pos
			}
		}
	}

	return board, start, end, nil
}

// BlankLayout returns an obstacle-free layout of the given size
func BlankLayout(name string, rows, cols int) *LayoutConfig {
	layout := make([]string, rows)
	line := make([]byte, cols)
	for i := range line {
		line[i] = CharEmpty
	}
	for i := range layout {
		layout[i] = string(line)
	}
	return &LayoutConfig{
		Name:        name,
		Description: fmt.Sprintf("Empty %dx%d grid", rows, cols),
		Layout:      layout,
	}
}

// LoadLayoutFile reads and validates a JSON layout file
func LoadLayoutFile(filename string) (*LayoutConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var config LayoutConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse layout file '%s': %w", filename, err)
	}

	if err := ValidateLayout(&config); err != nil {
		return nil, fmt.Errorf("invalid layout '%s': %w", filename, err)
	}

	return &config, nil
}
