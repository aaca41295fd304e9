package field

import (
	"errors"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/chargefield/internal/charge"
	"github.com/san-kum/chargefield/internal/tracker"
)

var (
	ErrGridSize  = errors.New("field: grid needs at least 2 columns and 2 rows")
	ErrBadBounds = errors.New("field: bounds must have positive width and height")
	ErrNoSensors = errors.New("field: sensor list is empty")
)

// Grid holds potential and field accumulators at fixed sample points.
// Each accumulator equals the one-shot sum over the charges it has seen,
// provided every delta since the last Reset was applied in order.
type Grid struct {
	cols, rows int
	points     []r2.Vec
	potential  []float64
	field      []r2.Vec
}

// NewGrid lays out cols x rows samples spanning b, row-major, with row 0 at
// b.Max.Y so rows run top to bottom.
func NewGrid(b Bounds, cols, rows int) (*Grid, error) {
	if cols < 2 || rows < 2 {
		return nil, ErrGridSize
	}
	if !b.Valid() {
		return nil, ErrBadBounds
	}

	xs := floats.Span(make([]float64, cols), b.Min.X, b.Max.X)
	ys := floats.Span(make([]float64, rows), b.Max.Y, b.Min.Y)

	points := make([]r2.Vec, 0, cols*rows)
	for _, y := range ys {
		for _, x := range xs {
			points = append(points, r2.Vec{X: x, Y: y})
		}
	}
	return newGrid(points, cols, rows), nil
}

// NewSensors tracks an arbitrary list of probe points as a single row.
func NewSensors(points []r2.Vec) (*Grid, error) {
	if len(points) == 0 {
		return nil, ErrNoSensors
	}
	ps := make([]r2.Vec, len(points))
	copy(ps, points)
	return newGrid(ps, len(ps), 1), nil
}

func newGrid(points []r2.Vec, cols, rows int) *Grid {
	return &Grid{
		cols:      cols,
		rows:      rows,
		points:    points,
		potential: make([]float64, len(points)),
		field:     make([]r2.Vec, len(points)),
	}
}

func (g *Grid) Cols() int { return g.cols }
func (g *Grid) Rows() int { return g.rows }
func (g *Grid) Len() int  { return len(g.points) }

func (g *Grid) Point(i int) r2.Vec      { return g.points[i] }
func (g *Grid) Potential(i int) float64 { return g.potential[i] }
func (g *Grid) Field(i int) r2.Vec      { return g.field[i] }
func (g *Grid) Index(col, row int) int  { return row*g.cols + col }

// At returns the accumulated potential and field of one lattice cell.
func (g *Grid) At(col, row int) (float64, r2.Vec) {
	i := g.Index(col, row)
	return g.potential[i], g.field[i]
}

// Range returns the smallest and largest accumulated potential.
func (g *Grid) Range() (lo, hi float64) {
	return floats.Min(g.potential), floats.Max(g.potential)
}

// Reset zeroes every accumulator and adds charges from scratch.
func (g *Grid) Reset(charges []charge.Charge) {
	for i := range g.points {
		g.potential[i] = 0
		g.field[i] = r2.Vec{}
	}
	for _, c := range charges {
		pos := c.Position
		g.apply(tracker.Delta{ID: c.ID, Charge: c.Q, New: &pos})
	}
}

// Apply folds deltas into every accumulator in order.
func (g *Grid) Apply(deltas []tracker.Delta) {
	for _, d := range deltas {
		g.apply(d)
	}
}

// Sync applies everything pending in t and clears it. It returns the number
// of deltas applied.
func (g *Grid) Sync(t *tracker.Tracker) int {
	deltas := t.Drain()
	g.Apply(deltas)
	t.Clear()
	return len(deltas)
}

func (g *Grid) apply(d tracker.Delta) {
	for i, p := range g.points {
		if d.Old != nil {
			g.potential[i] -= PotentialContribution(d.Charge, *d.Old, p)
			g.field[i] = r2.Sub(g.field[i], FieldContribution(d.Charge, *d.Old, p))
		}
		if d.New != nil {
			g.potential[i] += PotentialContribution(d.Charge, *d.New, p)
			g.field[i] = r2.Add(g.field[i], FieldContribution(d.Charge, *d.New, p))
		}
	}
}
