package viz

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/chargefield/internal/field"
)

const brailleBase = 0x2800

// Braille dot bits for a 2x4 cell, indexed [row][col].
var pixelMap = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a Width x Height grid of braille cells covering a model-space
// rectangle. Each cell holds 2x4 sub-pixels.
type Canvas struct {
	Width, Height int
	bounds        field.Bounds
	cells         [][]rune
	marks         map[[2]int]rune
}

func NewCanvas(w, h int, b field.Bounds) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		bounds: b,
		cells:  make([][]rune, h),
		marks:  make(map[[2]int]rune),
	}
	for i := range c.cells {
		c.cells[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

func (c *Canvas) Bounds() field.Bounds { return c.bounds }

// Project maps a model point to sub-pixel coordinates, y growing downward.
func (c *Canvas) Project(p r2.Vec) (int, int) {
	sw, sh := float64(c.Width*2-1), float64(c.Height*4-1)
	x := (p.X - c.bounds.Min.X) / c.bounds.Width() * sw
	y := (c.bounds.Max.Y - p.Y) / c.bounds.Height() * sh
	return int(math.Round(x)), int(math.Round(y))
}

// Cell maps a model point to the braille cell that contains it.
func (c *Canvas) Cell(p r2.Vec) (col, row int) {
	x, y := c.Project(p)
	return floorDiv(x, 2), floorDiv(y, 4)
}

func (c *Canvas) inside(x, y int) bool {
	return x >= 0 && y >= 0 && x < c.Width*2 && y < c.Height*4
}

func (c *Canvas) Set(x, y int) {
	if !c.inside(x, y) {
		return
	}
	c.cells[y/4][x/2] |= pixelMap[y%4][x%2]
}

func (c *Canvas) Plot(p r2.Vec) {
	c.Set(c.Project(p))
}

// Mark overlays a glyph on the cell containing p, hiding its dots.
func (c *Canvas) Mark(p r2.Vec, r rune) {
	col, row := c.Cell(p)
	if col < 0 || row < 0 || col >= c.Width || row >= c.Height {
		return
	}
	c.marks[[2]int{col, row}] = r
}

func (c *Canvas) Clear() {
	for i := range c.cells {
		for j := range c.cells[i] {
			c.cells[i][j] = brailleBase
		}
	}
	clear(c.marks)
}

// DrawLine rasterizes a sub-pixel segment with Bresenham's algorithm.
// Segments with both ends off the canvas are skipped.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	if !c.inside(x0, y0) && !c.inside(x1, y1) {
		return
	}
	dx, dy := absInt(x1-x0), absInt(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx - dy
	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *Canvas) DrawPolyline(pts []r2.Vec) {
	if len(pts) == 1 {
		c.Plot(pts[0])
		return
	}
	for i := 1; i < len(pts); i++ {
		x0, y0 := c.Project(pts[i-1])
		x1, y1 := c.Project(pts[i])
		c.DrawLine(x0, y0, x1, y1)
	}
}

// Rune returns what the cell displays: an overlay mark if present,
// otherwise its braille pattern.
func (c *Canvas) Rune(col, row int) rune {
	if r, ok := c.marks[[2]int{col, row}]; ok {
		return r
	}
	return c.cells[row][col]
}

func (c *Canvas) String() string {
	var b strings.Builder
	for row := 0; row < c.Height; row++ {
		for col := 0; col < c.Width; col++ {
			b.WriteRune(c.Rune(col, row))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && a < 0 {
		q--
	}
	return q
}
