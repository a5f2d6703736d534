package experiment

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/san-kum/mdsim/internal/config"
	"github.com/san-kum/mdsim/internal/md"
	"github.com/san-kum/mdsim/internal/minimize"
	"github.com/san-kum/mdsim/internal/sim"
)

// Experiment is one configured run: integrator, initial state, reporters
// and the optional minimization that precedes dynamics.
type Experiment struct {
	cfg        *config.Config
	registry   *Registry
	log        zerolog.Logger
	simulation *sim.Simulation
	minimized  *minimize.Result
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{
		cfg:      cfg,
		registry: NewRegistry(),
		log:      zerolog.Nop(),
	}
}

func (e *Experiment) WithRegistry(r *Registry) *Experiment {
	e.registry = r
	return e
}

func (e *Experiment) WithLogger(log zerolog.Logger) *Experiment {
	e.log = log
	return e
}

func (e *Experiment) Config() *config.Config { return e.cfg }

// Setup builds the integrator and simulation. Default metrics are always
// attached after the given reporters.
func (e *Experiment) Setup(reporters ...md.Reporter) error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}

	masses := e.cfg.Masses()
	eval, err := e.registry.GetForceField(e.cfg.ForceField, masses)
	if err != nil {
		return err
	}
	integrator, err := e.registry.GetIntegrator(e.cfg.Integrator, masses, e.cfg.Parameters(), eval, e.cfg.Seed)
	if err != nil {
		return err
	}
	if err := integrator.SetPositions(e.cfg.InitialPositions()); err != nil {
		return err
	}
	if err := integrator.SetVelocitiesToTemperature(e.cfg.Temperature); err != nil {
		return err
	}

	opts := []sim.Option{
		sim.WithReporters(reporters...),
		sim.WithLogger(e.log),
		sim.WithFailFast(e.cfg.Reporters.FailFast),
	}
	for _, m := range e.registry.DefaultMetrics(e.cfg) {
		opts = append(opts, sim.WithReporters(m))
	}

	e.simulation = sim.New(integrator, opts...)
	e.log.Debug().
		Str("force_field", e.cfg.ForceField.Kind).
		Str("integrator", e.cfg.Integrator).
		Int("particles", len(masses)).
		Int64("seed", e.cfg.Seed).
		Msg("experiment ready")
	return nil
}

// Run minimizes first when the config asks for it, then integrates.
func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulation == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	if e.cfg.Minimize.Enabled && e.minimized == nil {
		res, err := e.simulation.Minimize(ctx, e.cfg.Minimize.MaxIterations, e.cfg.Minimize.Tolerance)
		if err != nil {
			return nil, fmt.Errorf("minimize: %w", err)
		}
		e.minimized = res
	}

	return e.simulation.Run(ctx, e.cfg.TotalSteps, e.cfg.ReportInterval)
}

// GetSimulation returns the underlying simulation for adding reporters.
func (e *Experiment) GetSimulation() *sim.Simulation {
	return e.simulation
}

// Minimized returns the minimization result of the last Run, if any.
func (e *Experiment) Minimized() *minimize.Result {
	return e.minimized
}

// Build is a shortcut for New(cfg).Setup(reporters...).
func Build(cfg *config.Config, reporters ...md.Reporter) (*sim.Simulation, error) {
	e := New(cfg)
	if err := e.Setup(reporters...); err != nil {
		return nil, err
	}
	return e.GetSimulation(), nil
}
