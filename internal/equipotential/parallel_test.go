package equipotential_test

import (
	"context"
	"errors"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/chargefield/internal/equipotential"
	"github.com/san-kum/chargefield/internal/field"
)

func TestTraceParallelMatchesSequential(t *testing.T) {
	eval := field.Charges{
		{ID: 1, Position: r2.Vec{X: -1}, Q: 2},
		{ID: 2, Position: r2.Vec{X: 1.5, Y: 0.5}, Q: -1},
	}
	cfg := equipotential.DefaultConfig()
	cfg.MaxSteps = 300
	tr := newTracer(t, eval, cfg)

	seeds := []r2.Vec{{X: 0.3}, {Y: 2}, {X: -2, Y: -1}, {X: 1.5, Y: 0.5}, {X: 4, Y: 4}}

	want := tr.TraceAll(seeds)
	got, err := tr.TraceParallel(context.Background(), seeds, 3)
	if err != nil {
		t.Fatalf("parallel trace: %v", err)
	}

	if len(got) != len(want) {
		t.Fatalf("expected %d lines, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].Seed != seeds[i] {
			t.Errorf("line %d out of order: seed %v", i, got[i].Seed)
		}
		if len(got[i].Points) != len(want[i].Points) {
			t.Errorf("line %d: %d points, sequential gave %d", i, len(got[i].Points), len(want[i].Points))
		}
	}
}

func TestTraceParallelCancelled(t *testing.T) {
	tr := newTracer(t, field.Charges{{ID: 1, Q: 1}}, equipotential.DefaultConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := tr.TraceParallel(ctx, []r2.Vec{{X: 1}, {X: 2}}, 0); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
