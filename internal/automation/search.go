package automation

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/mdsim/internal/config"
	"github.com/san-kum/mdsim/internal/experiment"
)

// setters for the config fields a grid search may vary.
var searchParams = map[string]func(*config.Config, float64){
	"temperature": func(c *config.Config, v float64) { c.Temperature = v },
	"friction":    func(c *config.Config, v float64) { c.Friction = v },
	"timestep":    func(c *config.Config, v float64) { c.Timestep = v },
	"k":           func(c *config.Config, v float64) { c.ForceField.K = v },
	"epsilon":     func(c *config.Config, v float64) { c.ForceField.Epsilon = v },
	"sigma":       func(c *config.Config, v float64) { c.ForceField.Sigma = v },
	"cutoff":      func(c *config.Config, v float64) { c.ForceField.Cutoff = v },
}

// GridSearch runs every combination of parameter values and keeps the one
// with the lowest metric. Runs that fail or give a non-finite metric are
// skipped.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("got %d parameters but %d ranges", len(params), len(ranges))
	}
	for i, name := range params {
		if _, ok := searchParams[name]; !ok {
			return nil, fmt.Errorf("parameter %q can not be searched", name)
		}
		if len(ranges[i]) == 0 {
			return nil, fmt.Errorf("parameter %q has no values", name)
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Search returns the best parameters and their metric value. It fails if the
// context is cancelled or no combination produced a usable value.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, registry *experiment.Registry, metricName string) (map[string]float64, float64, error) {
	best := math.Inf(1)
	var bestParams map[string]float64

	err := g.searchRecursive(ctx, 0, make(map[string]float64), base, registry, metricName, &best, &bestParams)
	if err != nil {
		return nil, 0, err
	}
	if bestParams == nil {
		return nil, 0, fmt.Errorf("no parameter combination produced %s", metricName)
	}
	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	base *config.Config,
	registry *experiment.Registry,
	metricName string,
	best *float64,
	bestParams *map[string]float64,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		cfg := base.Clone()
		cfg.Reporters.Console = false
		for name, v := range current {
			searchParams[name](cfg, v)
		}

		exp := experiment.New(cfg).WithRegistry(registry)
		if err := exp.Setup(); err != nil {
			return nil
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return ctx.Err()
		}

		val, ok := result.Metrics[metricName]
		if ok && !math.IsNaN(val) && val < *best {
			*best = val
			*bestParams = make(map[string]float64, len(current))
			for k, v := range current {
				(*bestParams)[k] = v
			}
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		next := make(map[string]float64, len(current)+1)
		for k, v := range current {
			next[k] = v
		}
		next[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, next, base, registry, metricName, best, bestParams); err != nil {
			return err
		}
	}
	return nil
}
