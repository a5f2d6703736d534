package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/mdsim/internal/config"
	"github.com/san-kum/mdsim/internal/forcefield"
	"github.com/san-kum/mdsim/internal/integrators"
	"github.com/san-kum/mdsim/internal/md"
	"github.com/san-kum/mdsim/internal/metrics"
	"github.com/san-kum/mdsim/internal/sim"
)

type ForceFieldFactory func(ff config.ForceFieldConfig, masses []float64) (md.ForceEvaluator, error)

type IntegratorFactory func(masses []float64, params md.Parameters, eval md.ForceEvaluator, seed int64) (md.Integrator, error)

type Registry struct {
	forceFields map[string]ForceFieldFactory
	integrators map[string]IntegratorFactory
}

func NewRegistry() *Registry {
	r := &Registry{
		forceFields: make(map[string]ForceFieldFactory),
		integrators: make(map[string]IntegratorFactory),
	}

	r.forceFields["harmonic"] = func(ff config.ForceFieldConfig, masses []float64) (md.ForceEvaluator, error) {
		return forcefield.NewHarmonic(len(masses), orDefault(ff.K, forcefield.DefaultStiffness)), nil
	}
	r.forceFields["doublewell"] = func(ff config.ForceFieldConfig, masses []float64) (md.ForceEvaluator, error) {
		return &forcefield.DoubleWell{A: orDefault(ff.A, 1), B: orDefault(ff.B, 1)}, nil
	}
	r.forceFields["chain"] = func(ff config.ForceFieldConfig, masses []float64) (md.ForceEvaluator, error) {
		return forcefield.NewBondChain(orDefault(ff.K, 1000), orDefault(ff.R0, 0.15)), nil
	}
	r.forceFields["lj"] = func(ff config.ForceFieldConfig, masses []float64) (md.ForceEvaluator, error) {
		lj := forcefield.NewLennardJones(
			orDefault(ff.Epsilon, forcefield.DefaultEpsilon),
			orDefault(ff.Sigma, forcefield.DefaultSigma),
			ff.Cutoff,
		)
		if ff.Box > 0 {
			if ff.Cutoff <= 0 || ff.Cutoff > ff.Box/2 {
				return nil, fmt.Errorf("%w: periodic lj needs 0 < cutoff <= box/2, got cutoff %g box %g",
					md.ErrInvalidParameter, ff.Cutoff, ff.Box)
			}
			lj.Periodic = md.Vec3{X: ff.Box, Y: ff.Box, Z: ff.Box}
		}
		return lj, nil
	}
	r.forceFields["gravity"] = func(ff config.ForceFieldConfig, masses []float64) (md.ForceEvaluator, error) {
		g := forcefield.NewGravity(masses)
		g.G = orDefault(ff.G, g.G)
		g.Softening = orDefault(ff.Softening, g.Softening)
		// Zero keeps the default opening angle; a negative theta forces the exact sum.
		g.Theta = orDefault(ff.Theta, g.Theta)
		return g, nil
	}

	r.integrators["langevin"] = func(masses []float64, params md.Parameters, eval md.ForceEvaluator, seed int64) (md.Integrator, error) {
		return integrators.NewLangevin(masses, params, eval, seed)
	}
	r.integrators["verlet"] = func(masses []float64, params md.Parameters, eval md.ForceEvaluator, seed int64) (md.Integrator, error) {
		return integrators.NewVelocityVerlet(masses, params.Timestep, eval, seed)
	}

	return r
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

func (r *Registry) RegisterForceField(name string, f ForceFieldFactory) { r.forceFields[name] = f }

func (r *Registry) RegisterIntegrator(name string, f IntegratorFactory) { r.integrators[name] = f }

func (r *Registry) GetForceField(ff config.ForceFieldConfig, masses []float64) (md.ForceEvaluator, error) {
	fn, ok := r.forceFields[ff.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown force field: %s", ff.Kind)
	}
	return fn(ff, masses)
}

func (r *Registry) GetIntegrator(name string, masses []float64, params md.Parameters, eval md.ForceEvaluator, seed int64) (md.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(masses, params, eval, seed)
}

func (r *Registry) ListForceFields() []string {
	return sortedKeys(r.forceFields)
}

func (r *Registry) ListIntegrators() []string {
	return sortedKeys(r.integrators)
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics are attached to every run built from a config.
func (r *Registry) DefaultMetrics(cfg *config.Config) []sim.Metric {
	return []sim.Metric{
		metrics.NewMeanTemperature(),
		metrics.NewEnergyDrift(),
		metrics.NewStability(10 * cfg.Temperature),
	}
}
