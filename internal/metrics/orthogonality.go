package metrics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/chargefield/internal/equipotential"
	"github.com/san-kum/chargefield/internal/field"
)

// Orthogonality is the largest |cos| between a segment and the field at
// the segment midpoint. Zero means every segment crosses the field at a
// right angle. Segments where the field is weaker than minField are skipped.
type Orthogonality struct {
	name     string
	eval     field.Evaluator
	minField float64
	worst    float64
	samples  int
}

func NewOrthogonality(eval field.Evaluator, minField float64) *Orthogonality {
	return &Orthogonality{
		name:     "orthogonality",
		eval:     eval,
		minField: minField,
	}
}

func (o *Orthogonality) Name() string { return o.name }

func (o *Orthogonality) Observe(line equipotential.Line, i int) {
	if i == 0 {
		return
	}
	a, b := line.Points[i-1], line.Points[i]
	seg := r2.Sub(b, a)
	sn := r2.Norm(seg)
	if sn == 0 {
		return
	}

	e := o.eval.Field(r2.Scale(0.5, r2.Add(a, b)))
	en := r2.Norm(e)
	if en < o.minField {
		return
	}

	o.samples++
	o.worst = math.Max(o.worst, math.Abs(r2.Dot(seg, e))/(sn*en))
}

func (o *Orthogonality) Value() float64 { return o.worst }

// Samples is the number of segments that were scored.
func (o *Orthogonality) Samples() int { return o.samples }

func (o *Orthogonality) Reset() {
	o.worst = 0
	o.samples = 0
}
