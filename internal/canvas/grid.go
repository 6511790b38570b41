package canvas

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Braille cells give each terminal cell a 2x4 dot matrix.
const (
	dotsX = 2
	dotsY = 4
)

// brailleBits maps a dot position inside a cell to its bit in the U+2800
// block.
var brailleBits = [dotsX][dotsY]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

type cell struct {
	dots uint8
	fg   RGB
	back RGB
}

// Grid is a terminal Surface. Pixel coordinates are mapped onto cells of
// CellW x CellH pixels; lines and particle centers become braille dots,
// gradient fills tint cell backgrounds.
type Grid struct {
	cols, rows   int
	cellW, cellH float64
	background   RGB
	cells        []cell
}

// NewGrid returns a cols x rows grid with the given cell size in pixels.
func NewGrid(cols, rows int, cellW, cellH float64) *Grid {
	if cellW <= 0 {
		cellW = 1
	}
	if cellH <= 0 {
		cellH = 1
	}
	g := &Grid{cellW: cellW, cellH: cellH}
	g.Resize(cols, rows)
	return g
}

// Resize changes the grid dimensions and clears it.
func (g *Grid) Resize(cols, rows int) {
	g.cols = max(cols, 0)
	g.rows = max(rows, 0)
	g.cells = make([]cell, g.cols*g.rows)
	g.Clear()
}

func (g *Grid) Size() (cols, rows int) { return g.cols, g.rows }

// PixelSize returns the drawable area in pixels.
func (g *Grid) PixelSize() (w, h float64) {
	return float64(g.cols) * g.cellW, float64(g.rows) * g.cellH
}

// CellCenter returns the pixel position of the middle of a cell.
func (g *Grid) CellCenter(col, row int) Vec {
	return Vec{(float64(col) + 0.5) * g.cellW, (float64(row) + 0.5) * g.cellH}
}

func (g *Grid) SetBackground(c RGB) {
	g.background = c
	g.Clear()
}

func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = cell{fg: g.background, back: g.background}
	}
}

// Dots returns the braille mask of a cell.
func (g *Grid) Dots(col, row int) uint8 {
	if c := g.at(col, row); c != nil {
		return c.dots
	}
	return 0
}

// Back returns the composited background of a cell.
func (g *Grid) Back(col, row int) RGB {
	if c := g.at(col, row); c != nil {
		return c.back
	}
	return g.background
}

func (g *Grid) at(col, row int) *cell {
	if col < 0 || row < 0 || col >= g.cols || row >= g.rows {
		return nil
	}
	return &g.cells[row*g.cols+col]
}

// dotAlpha keeps faint dots legible: a braille dot has no partial
// coverage, so its color carries all of the intensity.
func dotAlpha(a float64) float64 {
	return 0.35 + 0.65*clamp01(a)
}

func (g *Grid) plot(dx, dy int, c RGB, alpha float64) {
	if dx < 0 || dy < 0 {
		return
	}
	cl := g.at(dx/dotsX, dy/dotsY)
	if cl == nil {
		return
	}
	cl.dots |= brailleBits[dx%dotsX][dy%dotsY]
	cl.fg = Blend(cl.fg, c, dotAlpha(alpha))
}

func (g *Grid) toDot(p Vec) (int, int) {
	return int(math.Floor(p.X / (g.cellW / dotsX))), int(math.Floor(p.Y / (g.cellH / dotsY)))
}

// Line rasterizes a..b into braille dots with Bresenham's algorithm.
func (g *Grid) Line(a, b Vec, c RGB, alpha float64) {
	x0, y0 := g.toDot(a)
	x1, y1 := g.toDot(b)
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		g.plot(x0, y0, c, alpha)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// Fill tints every cell whose center lies inside the disc. Discs smaller
// than a cell also mark the dot under their center so point-like particles
// stay visible.
func (g *Grid) Fill(center Vec, radius float64, gr Gradient) {
	if radius <= 0 {
		return
	}
	c0 := int(math.Floor((center.X - radius) / g.cellW))
	c1 := int(math.Floor((center.X + radius) / g.cellW))
	r0 := int(math.Floor((center.Y - radius) / g.cellH))
	r1 := int(math.Floor((center.Y + radius) / g.cellH))
	for row := max(r0, 0); row <= min(r1, g.rows-1); row++ {
		for col := max(c0, 0); col <= min(c1, g.cols-1); col++ {
			d := g.CellCenter(col, row).Dist(center)
			if d > radius {
				continue
			}
			cl := g.at(col, row)
			cl.back = Blend(cl.back, gr.Color, gr.AlphaAt(d))
		}
	}
	if radius < math.Max(g.cellW, g.cellH) {
		x, y := g.toDot(center)
		g.plot(x, y, gr.Color, gr.AlphaAt(0))
	}
}

func hex(c RGB) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}

// String renders the grid as styled terminal rows. Runs of cells sharing
// colors are rendered with a single style.
func (g *Grid) String() string {
	var b strings.Builder
	for row := 0; row < g.rows; row++ {
		if row > 0 {
			b.WriteByte('\n')
		}
		var run strings.Builder
		var runFg, runBack RGB
		flush := func() {
			if run.Len() == 0 {
				return
			}
			st := lipgloss.NewStyle().Foreground(hex(runFg)).Background(hex(runBack))
			b.WriteString(st.Render(run.String()))
			run.Reset()
		}
		for col := 0; col < g.cols; col++ {
			cl := g.cells[row*g.cols+col]
			fg := cl.fg
			ch := ' '
			if cl.dots != 0 {
				ch = rune(0x2800 + int(cl.dots))
			} else {
				fg = cl.back
			}
			if run.Len() > 0 && (fg != runFg || cl.back != runBack) {
				flush()
			}
			runFg, runBack = fg, cl.back
			run.WriteRune(ch)
		}
		flush()
	}
	return b.String()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
