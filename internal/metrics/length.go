package metrics

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/chargefield/internal/equipotential"
)

type Length struct {
	name  string
	total float64
}

func NewLength() *Length {
	return &Length{name: "length"}
}

func (l *Length) Name() string { return l.name }

func (l *Length) Observe(line equipotential.Line, i int) {
	if i == 0 {
		return
	}
	l.total += r2.Norm(r2.Sub(line.Points[i], line.Points[i-1]))
}

func (l *Length) Value() float64 { return l.total }

func (l *Length) Reset() { l.total = 0 }
