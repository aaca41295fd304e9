// Package field evaluates the electrostatic potential and field of point
// charges, either directly or through incrementally maintained sample grids.
package field

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/chargefield/internal/charge"
)

// K is the Coulomb constant in model units.
const K = 9.0

// PotentialContribution is k*q/r. A sample coinciding with the source
// contributes nothing instead of diverging.
func PotentialContribution(q float64, src, p r2.Vec) float64 {
	d := r2.Norm(r2.Sub(p, src))
	if d == 0 {
		return 0
	}
	return K * q / d
}

// FieldContribution is k*q*(p-src)/r^3, zero at the source itself.
func FieldContribution(q float64, src, p r2.Vec) r2.Vec {
	r := r2.Sub(p, src)
	d2 := r2.Norm2(r)
	if d2 == 0 {
		return r2.Vec{}
	}
	d := math.Sqrt(d2)
	return r2.Scale(K*q/(d2*d), r)
}

func Potential(charges []charge.Charge, p r2.Vec) float64 {
	v := 0.0
	for _, c := range charges {
		v += PotentialContribution(c.Q, c.Position, p)
	}
	return v
}

func Field(charges []charge.Charge, p r2.Vec) r2.Vec {
	var e r2.Vec
	for _, c := range charges {
		e = r2.Add(e, FieldContribution(c.Q, c.Position, p))
	}
	return e
}

// Evaluator gives on-demand potential and field values at arbitrary points.
type Evaluator interface {
	Potential(p r2.Vec) float64
	Field(p r2.Vec) r2.Vec
}

// Charges evaluates a fixed snapshot of charges.
type Charges []charge.Charge

func (c Charges) Potential(p r2.Vec) float64 { return Potential(c, p) }
func (c Charges) Field(p r2.Vec) r2.Vec      { return Field(c, p) }

type live struct {
	src charge.Source
}

// Live evaluates whatever charges src holds at call time.
func Live(src charge.Source) Evaluator {
	return live{src: src}
}

func (l live) Potential(p r2.Vec) float64 { return Potential(l.src.Charges(), p) }
func (l live) Field(p r2.Vec) r2.Vec      { return Field(l.src.Charges(), p) }
