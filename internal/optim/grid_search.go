package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/verletsim/internal/config"
	"github.com/san-kum/verletsim/internal/metrics"
	"github.com/san-kum/verletsim/internal/sim"
)

// Params names the configuration fields a grid search may vary.
var Params = []string{"sub_steps", "response", "fill_ceiling", "min_interval", "capacity"}

// Apply sets the named parameter on cfg.
func Apply(cfg *config.Config, name string, v float64) error {
	switch name {
	case "sub_steps":
		cfg.SubSteps = int(v)
	case "response":
		cfg.Collision.Response = v
	case "fill_ceiling":
		cfg.Spawn.FillCeiling = v
	case "min_interval":
		cfg.Spawn.MinInterval = v
	case "capacity":
		cfg.Capacity = int(v)
	default:
		return fmt.Errorf("unknown parameter %q (available: %v)", name, Params)
	}
	return nil
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Trial is one evaluated grid point.
type Trial struct {
	Params map[string]float64
	Value  float64
	Final  sim.Stats
}

// Search runs base with every combination of the grid for the configured
// duration and returns the trial with the smallest value of metricName,
// plus every trial in grid order.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, metricName string) (*Trial, []Trial, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, nil, fmt.Errorf("grid has %d names but %d ranges", len(g.paramNames), len(g.ranges))
	}
	for _, name := range g.paramNames {
		if err := Apply(config.DefaultConfig(), name, 0); err != nil {
			return nil, nil, err
		}
	}

	var trials []Trial
	err := g.searchRecursive(ctx, 0, make(map[string]float64), base, metricName, &trials)
	if err != nil {
		return nil, trials, err
	}

	var best *Trial
	bestVal := math.Inf(1)
	for i := range trials {
		if trials[i].Value < bestVal {
			bestVal = trials[i].Value
			best = &trials[i]
		}
	}
	if best == nil {
		return nil, trials, fmt.Errorf("no trial produced metric %q", metricName)
	}
	return best, trials, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	base *config.Config,
	metricName string,
	trials *[]Trial,
) error {
	if depth == len(g.paramNames) {
		trial, err := evaluate(ctx, base, current, metricName)
		if err != nil {
			return err
		}
		*trials = append(*trials, trial)
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, base, metricName, trials); err != nil {
			return err
		}
	}
	return nil
}

func evaluate(ctx context.Context, base *config.Config, params map[string]float64, metricName string) (Trial, error) {
	cfg := *base
	for k, v := range params {
		if err := Apply(&cfg, k, v); err != nil {
			return Trial{}, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return Trial{}, fmt.Errorf("grid point %v: %w", params, err)
	}

	sc, err := cfg.Sim()
	if err != nil {
		return Trial{}, err
	}
	s, err := sim.New(sc)
	if err != nil {
		return Trial{}, err
	}
	for _, m := range metrics.Default(true) {
		s.AddMetric(m)
	}

	result, err := s.RunFrames(ctx, cfg.Frames(), cfg.FrameDt)
	if err != nil {
		return Trial{}, err
	}
	val, ok := result.Metrics[metricName]
	if !ok {
		return Trial{}, fmt.Errorf("unknown metric %q", metricName)
	}
	return Trial{Params: params, Value: val, Final: result.Final}, nil
}
