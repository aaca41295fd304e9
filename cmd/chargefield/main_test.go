package main

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/chargefield/internal/config"
)

func TestParsePoints(t *testing.T) {
	pts, err := parsePoints([]string{"1", "-2.5", "0", "3e-1"})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	want := []r2.Vec{{X: 1, Y: -2.5}, {X: 0, Y: 0.3}}
	if len(pts) != len(want) {
		t.Fatalf("expected %d points, got %d", len(want), len(pts))
	}
	for i := range want {
		if pts[i] != want[i] {
			t.Errorf("point %d: expected %v, got %v", i, want[i], pts[i])
		}
	}

	if _, err := parsePoints([]string{"1"}); !errors.Is(err, errPointArgs) {
		t.Errorf("expected errPointArgs, got %v", err)
	}
	if _, err := parsePoints([]string{"1", "y"}); err == nil {
		t.Error("expected parse error")
	}
}

func TestProbeNegativeCoordinates(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"--preset", "dipole", "probe", "--", "-1", "0.25"})

	if err := root.Execute(); err != nil {
		t.Fatalf("probe failed: %v", err)
	}
	if !strings.Contains(out.String(), "(-1, 0.25)") {
		t.Errorf("expected probed point in output, got %q", out.String())
	}
}

func TestProbeNegativeWithoutSeparatorHints(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"probe", "-1", "0"})

	err := root.Execute()
	if err == nil {
		t.Fatal("expected flag parse error")
	}
	if !strings.Contains(err.Error(), "after --") {
		t.Errorf("expected hint about --, got %v", err)
	}
}

// sceneFor resolves the scene the trace command would run with after the
// given flags were set on the command line.
func sceneFor(t *testing.T, flags map[string]string) (*config.Config, *cobra.Command, error) {
	t.Helper()
	root := newRootCmd()
	cmd, _, err := root.Find([]string{"trace"})
	if err != nil {
		t.Fatalf("find trace: %v", err)
	}
	if err := cmd.ParseFlags(nil); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	for name, value := range flags {
		if err := cmd.Flags().Set(name, value); err != nil {
			t.Fatalf("set %s: %v", name, err)
		}
	}
	cfg, err := loadScene(cmd)
	return cfg, cmd, err
}

func TestLoadScenePrecedence(t *testing.T) {
	file := filepath.Join(t.TempDir(), "scene.yaml")
	fromFile := config.DefaultConfig()
	fromFile.Name = "fromfile"
	fromFile.Charges = []config.ChargeConfig{{X: 0, Y: 0, Q: 2}}
	fromFile.Tracer.StepSize = 0.2
	fromFile.Log.Level = "warn"
	if err := config.Save(file, fromFile); err != nil {
		t.Fatalf("save scene: %v", err)
	}

	tests := []struct {
		name    string
		flags   map[string]string
		wantErr bool
		check   func(t *testing.T, cfg *config.Config)
	}{
		{"defaults", nil, false, func(t *testing.T, cfg *config.Config) {
			if cfg.Name != "custom" || cfg.Tracer.StepSize != config.DefaultStepSize {
				t.Errorf("expected default scene, got %s step %f", cfg.Name, cfg.Tracer.StepSize)
			}
		}},
		{"preset", map[string]string{"preset": "dipole"}, false, func(t *testing.T, cfg *config.Config) {
			if cfg.Name != "dipole" || len(cfg.Charges) != 2 {
				t.Errorf("expected dipole preset, got %s with %d charges", cfg.Name, len(cfg.Charges))
			}
		}},
		{"file over preset", map[string]string{"preset": "dipole", "config": file}, false, func(t *testing.T, cfg *config.Config) {
			if cfg.Name != "fromfile" || len(cfg.Charges) != 1 {
				t.Errorf("expected file scene, got %s with %d charges", cfg.Name, len(cfg.Charges))
			}
		}},
		{"unset flag keeps file value", map[string]string{"config": file}, false, func(t *testing.T, cfg *config.Config) {
			if cfg.Tracer.StepSize != 0.2 {
				t.Errorf("expected file step 0.2, got %f", cfg.Tracer.StepSize)
			}
			if cfg.Log.Level != "warn" {
				t.Errorf("expected file log level warn, got %s", cfg.Log.Level)
			}
		}},
		{"flag over file", map[string]string{"config": file, "step": "0.1", "log-level": "debug"}, false, func(t *testing.T, cfg *config.Config) {
			if cfg.Tracer.StepSize != 0.1 {
				t.Errorf("expected flag step 0.1, got %f", cfg.Tracer.StepSize)
			}
			if cfg.Log.Level != "debug" {
				t.Errorf("expected flag log level debug, got %s", cfg.Log.Level)
			}
			if cfg.Name != "fromfile" {
				t.Errorf("expected file scene kept, got %s", cfg.Name)
			}
		}},
		{"flag over preset", map[string]string{"preset": "single", "max-steps": "10", "integrator": "euler"}, false, func(t *testing.T, cfg *config.Config) {
			if cfg.Tracer.MaxSteps != 10 || cfg.Tracer.Integrator != "euler" {
				t.Errorf("expected max steps 10 with euler, got %d with %s", cfg.Tracer.MaxSteps, cfg.Tracer.Integrator)
			}
		}},
		{"unknown preset", map[string]string{"preset": "nope"}, true, nil},
		{"invalid override", map[string]string{"step": "-1"}, true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, cmd, err := sceneFor(t, tt.flags)

			for name := range tt.flags {
				if !cmd.Flags().Changed(name) {
					t.Errorf("expected %s marked changed", name)
				}
			}
			if _, ok := tt.flags["step"]; !ok && cmd.Flags().Changed("step") {
				t.Error("expected step untouched")
			}

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("load scene: %v", err)
			}
			tt.check(t, cfg)
		})
	}
}
