package sim

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Ensemble runs independent simulations of the same configuration with
// consecutive seeds. Runs share no state, so they execute in parallel.
type Ensemble struct {
	cfg       Config
	numRuns   int
	seedStart int64
	metrics   func() []Metric
}

func NewEnsemble(cfg Config, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{cfg: cfg, numRuns: numRuns, seedStart: seedStart}
}

// WithMetrics sets a factory for the metrics attached to every run.
// Metrics carry state, so each run needs fresh instances.
func (e *Ensemble) WithMetrics(fn func() []Metric) *Ensemble {
	e.metrics = fn
	return e
}

func (e *Ensemble) Run(ctx context.Context, frames int, dt float64) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	g, gctx := errgroup.WithContext(ctx)

	for i := 0; i < e.numRuns; i++ {
		i := i
		g.Go(func() error {
			cfg := e.cfg
			cfg.Seed = e.seedStart + int64(i)

			s, err := New(cfg)
			if err != nil {
				return err
			}
			if e.metrics != nil {
				for _, m := range e.metrics() {
					s.AddMetric(m)
				}
			}

			res, err := s.RunFrames(gctx, frames, dt)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
