// Package integrators steps a point along a unit direction field by a fixed
// arc length.
package integrators

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"
)

var ErrUnknownIntegrator = errors.New("integrators: unknown integrator")

// Direction is a unit vector field. ok is false where the direction is
// undefined, such as at a field null.
type Direction interface {
	Direction(p r2.Vec) (dir r2.Vec, ok bool)
}

// DirectionFunc adapts a plain function to Direction.
type DirectionFunc func(p r2.Vec) (r2.Vec, bool)

func (f DirectionFunc) Direction(p r2.Vec) (r2.Vec, bool) { return f(p) }

type Integrator interface {
	Step(f Direction, p r2.Vec, ds float64) (r2.Vec, bool)
}

var registry = map[string]func() Integrator{
	"euler": func() Integrator { return NewEuler() },
	"rk4":   func() Integrator { return NewRK4() },
}

func New(name string) (Integrator, error) {
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownIntegrator, name)
	}
	return fn(), nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
