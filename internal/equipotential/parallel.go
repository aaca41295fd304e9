package equipotential

import (
	"context"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r2"
)

// TraceParallel traces seeds on up to workers goroutines and returns lines in
// seed order. The evaluator must tolerate concurrent reads, and the charges
// behind it must not change until TraceParallel returns. workers <= 0 uses
// GOMAXPROCS.
func (t *Tracer) TraceParallel(ctx context.Context, seeds []r2.Vec, workers int) ([]Line, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	lines := make([]Line, len(seeds))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, seed := range seeds {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			lines[i] = t.Trace(seed)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.log.Debug("traced seeds in parallel", zap.Int("seeds", len(seeds)), zap.Int("workers", workers))
	return lines, nil
}
