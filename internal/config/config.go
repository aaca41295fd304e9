package config

import (
	"errors"
	"fmt"
	"os"

	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/chargefield/internal/charge"
	"github.com/san-kum/chargefield/internal/equipotential"
	"github.com/san-kum/chargefield/internal/field"
)

const (
	DefaultExtent         = 5.0
	DefaultCols           = 60
	DefaultRows           = 24
	DefaultStepSize       = 0.05
	DefaultMaxSteps       = 4000
	DefaultCloseTolerance = 0.05
	DefaultMinField       = 1e-9
	DefaultCorrections    = 2
	DefaultIntegrator     = "rk4"
)

var ErrInvalidConfig = errors.New("config: invalid scene")

type Config struct {
	Name    string         `yaml:"name"`
	Charges []ChargeConfig `yaml:"charges"`
	Bounds  BoundsConfig   `yaml:"bounds"`
	Grid    GridConfig     `yaml:"grid"`
	Tracer  TracerConfig   `yaml:"tracer"`
	Seeds   []PointConfig  `yaml:"seeds"`
	Log     LogConfig      `yaml:"log"`
}

type ChargeConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Q float64 `yaml:"q"`
}

type PointConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

type BoundsConfig struct {
	MinX float64 `yaml:"min_x"`
	MinY float64 `yaml:"min_y"`
	MaxX float64 `yaml:"max_x"`
	MaxY float64 `yaml:"max_y"`
}

type GridConfig struct {
	Cols int `yaml:"cols"`
	Rows int `yaml:"rows"`
}

type TracerConfig struct {
	StepSize       float64 `yaml:"step_size"`
	MaxSteps       int     `yaml:"max_steps"`
	CloseTolerance float64 `yaml:"close_tolerance"`
	MinField       float64 `yaml:"min_field"`
	Corrections    int     `yaml:"corrections"`
	Integrator     string  `yaml:"integrator"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
	Compress   bool   `yaml:"compress"`
}

func DefaultConfig() *Config {
	return &Config{
		Name: "custom",
		Bounds: BoundsConfig{
			MinX: -DefaultExtent, MinY: -DefaultExtent,
			MaxX: DefaultExtent, MaxY: DefaultExtent,
		},
		Grid: GridConfig{Cols: DefaultCols, Rows: DefaultRows},
		Tracer: TracerConfig{
			StepSize:       DefaultStepSize,
			MaxSteps:       DefaultMaxSteps,
			CloseTolerance: DefaultCloseTolerance,
			MinField:       DefaultMinField,
			Corrections:    DefaultCorrections,
			Integrator:     DefaultIntegrator,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "console",
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if !c.FieldBounds().Valid() {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, field.ErrBadBounds)
	}
	if c.Grid.Cols < 2 || c.Grid.Rows < 2 {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, field.ErrGridSize)
	}
	if err := c.TracerConfig().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

func (c *Config) FieldBounds() field.Bounds {
	return field.NewBounds(c.Bounds.MinX, c.Bounds.MinY, c.Bounds.MaxX, c.Bounds.MaxY)
}

// TracerConfig traces within the scene bounds.
func (c *Config) TracerConfig() equipotential.Config {
	return equipotential.Config{
		StepSize:       c.Tracer.StepSize,
		MaxSteps:       c.Tracer.MaxSteps,
		CloseTolerance: c.Tracer.CloseTolerance,
		MinField:       c.Tracer.MinField,
		Corrections:    c.Tracer.Corrections,
		Bounds:         c.FieldBounds(),
		Integrator:     c.Tracer.Integrator,
	}
}

// ChargeSet builds a live set holding the scene's charges in file order.
func (c *Config) ChargeSet() *charge.Set {
	set := charge.NewSet()
	for _, ch := range c.Charges {
		set.Add(r2.Vec{X: ch.X, Y: ch.Y}, ch.Q)
	}
	return set
}

func (c *Config) SeedPoints() []r2.Vec {
	pts := make([]r2.Vec, 0, len(c.Seeds))
	for _, s := range c.Seeds {
		pts = append(pts, r2.Vec{X: s.X, Y: s.Y})
	}
	return pts
}
