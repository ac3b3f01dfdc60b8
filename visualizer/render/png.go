package render

import (
	"errors"
	"image/color"
	"io"

	"github.com/fogleman/gg"
	"github.com/wricardo/pathviz/visualizer/engine"
)

const (
	DefaultCellSize = 16
	MaxCellSize     = 64
)

var ErrEmptyGrid = errors.New("grid has no cells")

// Cell colors, keyed by the rendered grid character
var palette = map[byte]color.Color{
	engine.CharEmpty:    color.White,
	engine.CharObstacle: color.RGBA{R: 52, G: 73, B: 94, A: 255},
	engine.CharVisited:  color.RGBA{R: 116, G: 185, B: 255, A: 255},
	engine.CharFinal:    color.RGBA{R: 253, G: 203, B: 110, A: 255},
}

var (
	startColor = color.RGBA{R: 0, G: 184, B: 148, A: 255}
	endColor   = color.RGBA{R: 214, G: 48, B: 49, A: 255}
	gridColor  = color.RGBA{R: 223, G: 230, B: 233, A: 255}
)

// PNG draws a rendered board (one string per row, as returned by
// Board.Render) and encodes it to w. Start and end are drawn as circles on
// top of their cell.
func PNG(w io.Writer, rows []string, cellSize int) error {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return ErrEmptyGrid
	}
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	if cellSize > MaxCellSize {
		cellSize = MaxCellSize
	}

	cols := len(rows[0])
	scale := float64(cellSize)
	dc := gg.NewContext(cols*cellSize, len(rows)*cellSize)
	dc.SetColor(color.White)
	dc.Clear()

	for r, line := range rows {
		for c := 0; c < len(line) && c < cols; c++ {
			x, y := float64(c)*scale, float64(r)*scale

			fill, ok := palette[line[c]]
			if !ok {
				fill = color.White
			}
			dc.SetColor(fill)
			dc.DrawRectangle(x, y, scale, scale)
			dc.Fill()

			dc.SetColor(gridColor)
			dc.SetLineWidth(1)
			dc.DrawRectangle(x, y, scale, scale)
			dc.Stroke()

			switch line[c] {
			case engine.CharStart:
				dc.SetColor(startColor)
			case engine.CharEnd:
				dc.SetColor(endColor)
			default:
				continue
			}
			dc.DrawCircle(x+scale/2, y+scale/2, scale/2-1)
			dc.Fill()
		}
	}

	return dc.EncodePNG(w)
}
