// Package equipotential traces curves of constant potential through a seed
// point by stepping perpendicular to the electric field.
package equipotential

import (
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/chargefield/internal/field"
	"github.com/san-kum/chargefield/internal/integrators"
)

// Termination records why one direction of a trace stopped.
type Termination int

const (
	Degenerate Termination = iota
	LeftBounds
	MaxSteps
	Closed
)

func (t Termination) String() string {
	switch t {
	case Degenerate:
		return "degenerate"
	case LeftBounds:
		return "left_bounds"
	case MaxSteps:
		return "max_steps"
	case Closed:
		return "closed"
	}
	return "unknown"
}

// Line is a traced equipotential. Points run continuously through Seed;
// Potential is the value at Seed when the line was traced.
type Line struct {
	Seed      r2.Vec
	Potential float64
	Points    []r2.Vec
	Closed    bool
	Forward   Termination
	Backward  Termination
}

// Degenerate reports whether the trace could not leave its seed.
func (l Line) Degenerate() bool { return len(l.Points) < 2 }

type Tracer struct {
	eval  field.Evaluator
	integ integrators.Integrator
	cfg   Config
	log   *zap.Logger
}

func New(eval field.Evaluator, cfg Config, logger *zap.Logger) (*Tracer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	integ, err := integrators.New(cfg.Integrator)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracer{
		eval:  eval,
		integ: integ,
		cfg:   cfg,
		log:   logger.Named("equipotential"),
	}, nil
}

func (t *Tracer) Config() Config { return t.cfg }

// Trace walks the equipotential through seed in both tangent senses. Every
// branch is bounded by MaxSteps, so the result always has at most
// 2*MaxSteps+1 points.
func (t *Tracer) Trace(seed r2.Vec) Line {
	line := Line{
		Seed:      seed,
		Potential: t.eval.Potential(seed),
	}

	if !t.cfg.Bounds.Contains(seed) {
		t.log.Debug("seed outside bounds", zap.Float64("x", seed.X), zap.Float64("y", seed.Y))
		line.Points = []r2.Vec{seed}
		line.Forward, line.Backward = LeftBounds, LeftBounds
		return line
	}

	if _, ok := t.tangent(1).Direction(seed); !ok {
		t.log.Debug("field vanishes at seed", zap.Float64("x", seed.X), zap.Float64("y", seed.Y))
		line.Points = []r2.Vec{seed}
		line.Forward, line.Backward = Degenerate, Degenerate
		return line
	}

	fwd, fterm := t.branch(seed, line.Potential, 1)
	line.Forward = fterm
	if fterm == Closed {
		line.Closed = true
		line.Backward = Closed
		line.Points = append([]r2.Vec{seed}, fwd...)
		return line
	}

	bwd, bterm := t.branch(seed, line.Potential, -1)
	line.Backward = bterm
	line.Closed = bterm == Closed

	pts := make([]r2.Vec, 0, len(bwd)+len(fwd)+1)
	for i := len(bwd) - 1; i >= 0; i-- {
		pts = append(pts, bwd[i])
	}
	pts = append(pts, seed)
	line.Points = append(pts, fwd...)

	t.log.Debug("traced equipotential",
		zap.Float64("potential", line.Potential),
		zap.Int("points", len(line.Points)),
		zap.Stringer("forward", line.Forward),
		zap.Stringer("backward", line.Backward),
	)
	return line
}

func (t *Tracer) TraceAll(seeds []r2.Vec) []Line {
	lines := make([]Line, 0, len(seeds))
	for _, s := range seeds {
		lines = append(lines, t.Trace(s))
	}
	return lines
}

func (t *Tracer) branch(seed r2.Vec, v0, sign float64) ([]r2.Vec, Termination) {
	dir := t.tangent(sign)
	ds := t.cfg.StepSize
	tol := t.cfg.CloseTolerance

	var pts []r2.Vec
	p := seed
	travelled := 0.0

	for i := 0; i < t.cfg.MaxSteps; i++ {
		next, ok := t.integ.Step(dir, p, ds)
		if !ok {
			return pts, Degenerate
		}
		if next, ok = t.correct(next, v0); !ok {
			return pts, Degenerate
		}

		before := travelled
		travelled += r2.Norm(r2.Sub(next, p))
		pts = append(pts, next)

		if !t.cfg.Bounds.Contains(next) {
			return pts, LeftBounds
		}
		// Closure is tested against the whole segment; a step longer than
		// the tolerance may pass the seed between samples.
		if before > 2*tol {
			if dist, passed := segmentDistance(seed, p, next); dist < tol {
				if passed {
					pts = pts[:len(pts)-1]
				}
				return append(pts, seed), Closed
			}
		}
		p = next
	}
	return pts, MaxSteps
}

// segmentDistance returns the distance from q to the segment [a, b] and
// whether the closest point lies strictly before b.
func segmentDistance(q, a, b r2.Vec) (float64, bool) {
	d := r2.Sub(b, a)
	l2 := r2.Norm2(d)
	if l2 == 0 {
		return r2.Norm(r2.Sub(q, a)), true
	}
	s := r2.Dot(r2.Sub(q, a), d) / l2
	s = math.Max(0, math.Min(1, s))
	closest := r2.Add(a, r2.Scale(s, d))
	return r2.Norm(r2.Sub(q, closest)), s < 1
}

// correct pulls p back onto the target potential with Newton steps along
// the field, each capped at one step length.
func (t *Tracer) correct(p r2.Vec, v0 float64) (r2.Vec, bool) {
	for i := 0; i < t.cfg.Corrections; i++ {
		e := t.eval.Field(p)
		n2 := r2.Norm2(e)
		if n2 < t.cfg.MinField*t.cfg.MinField {
			return p, false
		}

		d := r2.Scale((t.eval.Potential(p)-v0)/n2, e)
		if dn := r2.Norm(d); dn > t.cfg.StepSize {
			d = r2.Scale(t.cfg.StepSize/dn, d)
		}
		p = r2.Add(p, d)
	}
	if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
		return p, false
	}
	return p, true
}

func (t *Tracer) tangent(sign float64) integrators.Direction {
	return integrators.DirectionFunc(func(p r2.Vec) (r2.Vec, bool) {
		e := t.eval.Field(p)
		n := r2.Norm(e)
		if n < t.cfg.MinField || math.IsNaN(n) || math.IsInf(n, 0) {
			return r2.Vec{}, false
		}
		return r2.Vec{X: -e.Y * sign / n, Y: e.X * sign / n}, true
	})
}
