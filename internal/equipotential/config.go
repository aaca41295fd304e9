package equipotential

import (
	"errors"
	"fmt"

	"github.com/san-kum/chargefield/internal/field"
	"github.com/san-kum/chargefield/internal/integrators"
)

var (
	ErrStepSize       = errors.New("equipotential: step size must be positive")
	ErrMaxSteps       = errors.New("equipotential: max steps must be positive")
	ErrCloseTolerance = errors.New("equipotential: close tolerance must be positive")
	ErrCorrections    = errors.New("equipotential: corrections must not be negative")
)

type Config struct {
	StepSize       float64
	MaxSteps       int
	CloseTolerance float64
	MinField       float64
	Corrections    int
	Bounds         field.Bounds
	Integrator     string
}

func DefaultConfig() Config {
	return Config{
		StepSize:       0.05,
		MaxSteps:       4000,
		CloseTolerance: 0.05,
		MinField:       1e-9,
		Corrections:    2,
		Bounds:         field.NewBounds(-10, -10, 10, 10),
		Integrator:     "rk4",
	}
}

func (c Config) Validate() error {
	if c.StepSize <= 0 {
		return fmt.Errorf("%w, got %f", ErrStepSize, c.StepSize)
	}
	if c.MaxSteps <= 0 {
		return fmt.Errorf("%w, got %d", ErrMaxSteps, c.MaxSteps)
	}
	if c.CloseTolerance <= 0 {
		return fmt.Errorf("%w, got %f", ErrCloseTolerance, c.CloseTolerance)
	}
	if c.Corrections < 0 {
		return fmt.Errorf("%w, got %d", ErrCorrections, c.Corrections)
	}
	if !c.Bounds.Valid() {
		return field.ErrBadBounds
	}
	if _, err := integrators.New(c.Integrator); err != nil {
		return err
	}
	return nil
}
