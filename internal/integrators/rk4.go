package integrators

import "gonum.org/v1/gonum/spatial/r2"

type RK4 struct{}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Step(f Direction, p r2.Vec, ds float64) (r2.Vec, bool) {
	k1, ok := f.Direction(p)
	if !ok {
		return p, false
	}
	k2, ok := f.Direction(r2.Add(p, r2.Scale(ds*0.5, k1)))
	if !ok {
		return p, false
	}
	k3, ok := f.Direction(r2.Add(p, r2.Scale(ds*0.5, k2)))
	if !ok {
		return p, false
	}
	k4, ok := f.Direction(r2.Add(p, r2.Scale(ds, k3)))
	if !ok {
		return p, false
	}

	sum := r2.Add(r2.Add(k1, r2.Scale(2, k2)), r2.Add(r2.Scale(2, k3), k4))
	return r2.Add(p, r2.Scale(ds/6.0, sum)), true
}
