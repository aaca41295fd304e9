package metrics

import (
	"math"

	"github.com/san-kum/chargefield/internal/equipotential"
	"github.com/san-kum/chargefield/internal/field"
)

// PotentialDrift is the largest |V(p) - V(seed)| over a line.
type PotentialDrift struct {
	name     string
	eval     field.Evaluator
	maxDrift float64
}

func NewPotentialDrift(eval field.Evaluator) *PotentialDrift {
	return &PotentialDrift{
		name: "potential_drift",
		eval: eval,
	}
}

func (d *PotentialDrift) Name() string { return d.name }

func (d *PotentialDrift) Observe(line equipotential.Line, i int) {
	drift := math.Abs(d.eval.Potential(line.Points[i]) - line.Potential)
	d.maxDrift = math.Max(d.maxDrift, drift)
}

func (d *PotentialDrift) Value() float64 { return d.maxDrift }

func (d *PotentialDrift) Reset() { d.maxDrift = 0 }
