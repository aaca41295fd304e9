package viz

import (
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/chargefield/internal/field"
)

func TestCanvasProjectCorners(t *testing.T) {
	c := NewCanvas(10, 5, field.NewBounds(-1, -1, 1, 1))

	if x, y := c.Project(r2.Vec{X: -1, Y: 1}); x != 0 || y != 0 {
		t.Errorf("expected top-left at (0,0), got (%d,%d)", x, y)
	}
	if x, y := c.Project(r2.Vec{X: 1, Y: -1}); x != 19 || y != 19 {
		t.Errorf("expected bottom-right at (19,19), got (%d,%d)", x, y)
	}
	if col, row := c.Cell(r2.Vec{X: 1, Y: -1}); col != 9 || row != 4 {
		t.Errorf("expected last cell (9,4), got (%d,%d)", col, row)
	}
	if col, _ := c.Cell(r2.Vec{X: -3}); col >= 0 {
		t.Errorf("expected negative column left of bounds, got %d", col)
	}
}

func TestCanvasSetAndClear(t *testing.T) {
	c := NewCanvas(2, 1, field.NewBounds(0, 0, 1, 1))

	c.Set(0, 0)
	c.Set(1, 3)
	if got := c.Rune(0, 0); got != brailleBase|0x1|0x80 {
		t.Errorf("unexpected braille rune %U", got)
	}

	c.Set(-1, 0)
	c.Set(4, 0)
	c.Clear()
	if got := c.Rune(0, 0); got != brailleBase {
		t.Errorf("expected empty cell after clear, got %U", got)
	}
}

func TestCanvasDrawPolyline(t *testing.T) {
	c := NewCanvas(8, 2, field.NewBounds(0, 0, 1, 1))
	c.DrawPolyline([]r2.Vec{{X: 0, Y: 0.5}, {X: 1, Y: 0.5}})

	lit := 0
	for col := 0; col < c.Width; col++ {
		for row := 0; row < c.Height; row++ {
			if c.Rune(col, row) != brailleBase {
				lit++
			}
		}
	}
	if lit != c.Width {
		t.Errorf("expected a horizontal line through every column, got %d lit cells", lit)
	}
}

func TestCanvasMarkOverridesDots(t *testing.T) {
	c := NewCanvas(4, 4, field.NewBounds(-1, -1, 1, 1))
	c.Plot(r2.Vec{})
	c.Mark(r2.Vec{}, '+')
	c.Mark(r2.Vec{X: 5}, 'x')

	s := c.String()
	if strings.Count(s, "+") != 1 {
		t.Errorf("expected one mark, got %q", s)
	}
	if strings.Contains(s, "x") {
		t.Error("expected off-canvas mark to be dropped")
	}
	if len(strings.Split(strings.TrimSuffix(s, "\n"), "\n")) != 4 {
		t.Error("expected one text row per canvas row")
	}
}

func TestThemes(t *testing.T) {
	if GetTheme("missing").Name != Themes[0].Name {
		t.Error("expected fallback to first theme")
	}
	last := Themes[len(Themes)-1]
	if NextTheme(last).Name != Themes[0].Name {
		t.Error("expected theme cycle to wrap")
	}
	if len(ThemeNames()) != len(Themes) {
		t.Error("theme names out of sync")
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline(nil, 3); got != "───" {
		t.Errorf("expected flat placeholder, got %q", got)
	}
	if got := GradientText("", "#000000", "#ffffff"); got != "" {
		t.Errorf("expected empty gradient, got %q", got)
	}
}
