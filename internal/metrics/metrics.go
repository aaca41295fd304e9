// Package metrics scores traced equipotentials.
package metrics

import (
	"github.com/san-kum/chargefield/internal/equipotential"
	"github.com/san-kum/chargefield/internal/field"
)

// Metric observes a line point by point. Observe is called for every index
// in order after a Reset.
type Metric interface {
	Name() string
	Observe(line equipotential.Line, i int)
	Value() float64
	Reset()
}

// Evaluate runs every metric over line and returns their values by name.
func Evaluate(line equipotential.Line, ms ...Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		m.Reset()
		for i := range line.Points {
			m.Observe(line, i)
		}
		out[m.Name()] = m.Value()
	}
	return out
}

// Default returns the metrics reported for every trace.
func Default(eval field.Evaluator, minField float64) []Metric {
	return []Metric{
		NewPotentialDrift(eval),
		NewOrthogonality(eval, minField),
		NewLength(),
	}
}
