package integrators

import "gonum.org/v1/gonum/spatial/r2"

type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(f Direction, p r2.Vec, ds float64) (r2.Vec, bool) {
	d, ok := f.Direction(p)
	if !ok {
		return p, false
	}
	return r2.Add(p, r2.Scale(ds, d)), true
}
