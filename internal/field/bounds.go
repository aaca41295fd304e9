package field

import "gonum.org/v1/gonum/spatial/r2"

// Bounds is an axis-aligned rectangle in model space.
type Bounds struct {
	Min, Max r2.Vec
}

func NewBounds(minX, minY, maxX, maxY float64) Bounds {
	return Bounds{Min: r2.Vec{X: minX, Y: minY}, Max: r2.Vec{X: maxX, Y: maxY}}
}

func (b Bounds) Width() float64  { return b.Max.X - b.Min.X }
func (b Bounds) Height() float64 { return b.Max.Y - b.Min.Y }

func (b Bounds) Center() r2.Vec {
	return r2.Scale(0.5, r2.Add(b.Min, b.Max))
}

func (b Bounds) Contains(p r2.Vec) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X && p.Y >= b.Min.Y && p.Y <= b.Max.Y
}

func (b Bounds) Valid() bool {
	return b.Max.X > b.Min.X && b.Max.Y > b.Min.Y
}
