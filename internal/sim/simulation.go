package sim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/san-kum/mdsim/internal/md"
	"github.com/san-kum/mdsim/internal/minimize"
)

// Metric is a reporter that reduces the reports of a run to a single number.
// Values end up in Result.Metrics under Name.
type Metric interface {
	md.Reporter
	Name() string
	Value() float64
	Reset()
}

type Option func(*Simulation)

func WithReporters(reporters ...md.Reporter) Option {
	return func(s *Simulation) { s.reporters = append(s.reporters, reporters...) }
}

func WithLogger(log zerolog.Logger) Option {
	return func(s *Simulation) { s.log = log }
}

// WithStopCondition ends the run at the first report for which stop returns true.
func WithStopCondition(stop func(md.Report) bool) Option {
	return func(s *Simulation) { s.stop = stop }
}

// WithFailFast makes the first reporter error abort the run.
func WithFailFast(failFast bool) Option {
	return func(s *Simulation) { s.failFast = failFast }
}

// WithFrameInterval sends frames to trajectory reporters on every n-th report.
func WithFrameInterval(n int) Option {
	return func(s *Simulation) {
		if n > 0 {
			s.frameInterval = n
		}
	}
}

// Simulation drives an integrator in chunks and pushes a report after every
// chunk. It adds no concurrency of its own.
type Simulation struct {
	integrator    md.Integrator
	reporters     []md.Reporter
	log           zerolog.Logger
	stop          func(md.Report) bool
	failFast      bool
	frameInterval int
}

func New(integrator md.Integrator, opts ...Option) *Simulation {
	s := &Simulation{
		integrator:    integrator,
		log:           zerolog.Nop(),
		frameInterval: 1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Simulation) AddReporter(r md.Reporter) { s.reporters = append(s.reporters, r) }

func (s *Simulation) Integrator() md.Integrator { return s.integrator }

type Result struct {
	Reports        []md.Report
	StepsTaken     int
	FinalTime      float64
	Stopped        bool
	StopReason     string
	ReporterErrors []error
	Metrics        map[string]float64
	Elapsed        time.Duration
}

// Last returns the most recent report, or false if none was produced.
func (r *Result) Last() (md.Report, bool) {
	if len(r.Reports) == 0 {
		return md.Report{}, false
	}
	return r.Reports[len(r.Reports)-1], true
}

// Run advances totalSteps steps, reporting every reportInterval steps and
// once more after a final partial chunk. Cancellation through ctx, the stop
// condition or ErrStop takes effect only between chunks.
//
// On divergence the partial result is returned together with the
// *md.DivergedError from the integrator.
func (s *Simulation) Run(ctx context.Context, totalSteps, reportInterval int) (*Result, error) {
	if totalSteps < 0 {
		return nil, fmt.Errorf("%w: total steps must be non-negative, got %d", md.ErrInvalidParameter, totalSteps)
	}
	if reportInterval <= 0 {
		return nil, fmt.Errorf("%w: report interval must be positive, got %d", md.ErrInvalidParameter, reportInterval)
	}

	res := &Result{
		Reports: make([]md.Report, 0, (totalSteps+reportInterval-1)/reportInterval),
		Metrics: make(map[string]float64),
	}
	for _, r := range s.reporters {
		if m, ok := r.(Metric); ok {
			m.Reset()
		}
	}

	start := time.Now()
	startState := s.integrator.State()
	startStep := startState.Step
	res.FinalTime = startState.Time

	s.log.Info().
		Int("particles", startState.NumParticles()).
		Int("steps", totalSteps).
		Int("interval", reportInterval).
		Msg("run started")

	defer func() {
		res.Elapsed = time.Since(start)
		s.collectMetrics(res)
	}()

	remaining := totalSteps
	boundary := 0
	for remaining > 0 {
		if err := ctx.Err(); err != nil {
			res.Stopped = true
			res.StopReason = "cancelled"
			s.log.Info().Int("step", startStep+res.StepsTaken).Msg("run cancelled")
			return res, err
		}

		chunk := min(reportInterval, remaining)
		stepErr := s.integrator.Step(chunk)
		state := s.integrator.State()
		res.StepsTaken = state.Step - startStep
		res.FinalTime = state.Time

		if stepErr != nil {
			s.log.Error().Err(stepErr).Int("step", state.Step).Float64("time", state.Time).Msg("integration diverged")
			return res, stepErr
		}
		remaining -= chunk
		boundary++

		report := state.Report()
		res.Reports = append(res.Reports, report)
		s.log.Debug().
			Int("step", report.Step).
			Float64("potential", report.PotentialEnergy).
			Float64("kinetic", report.KineticEnergy).
			Float64("temperature", report.Temperature).
			Msg("report")

		stop, err := s.dispatch(res, state, report, boundary%s.frameInterval == 0)
		if err != nil {
			return res, err
		}
		if stop {
			res.Stopped = true
			res.StopReason = "reporter"
			break
		}
		if s.stop != nil && s.stop(report) {
			res.Stopped = true
			res.StopReason = "condition"
			break
		}
	}

	s.log.Info().
		Int("steps", res.StepsTaken).
		Float64("time", res.FinalTime).
		Bool("stopped", res.Stopped).
		Int("reporter_errors", len(res.ReporterErrors)).
		Msg("run finished")
	return res, nil
}

// dispatch hands one report to every reporter. In best-effort mode errors are
// logged and collected and every reporter still sees the report.
func (s *Simulation) dispatch(res *Result, state md.State, report md.Report, withFrame bool) (bool, error) {
	stop := false
	var frame *md.Frame

	for _, r := range s.reporters {
		err := r.Report(report)
		if tr, ok := r.(md.TrajectoryReporter); ok && withFrame && err == nil {
			if frame == nil {
				frame = s.frame(state, report)
			}
			err = tr.ReportFrame(*frame)
		}

		switch {
		case err == nil:
		case errors.Is(err, ErrStop):
			stop = true
		default:
			rerr := &ReporterError{Reporter: r, Step: report.Step, Wrapped: err}
			if s.failFast {
				s.log.Error().Err(err).Int("step", report.Step).Msg("reporter failed")
				return stop, rerr
			}
			s.log.Warn().Err(err).Int("step", report.Step).Msg("reporter failed")
			res.ReporterErrors = append(res.ReporterErrors, rerr)
		}
	}
	return stop, nil
}

func (s *Simulation) frame(state md.State, report md.Report) *md.Frame {
	f := &md.Frame{
		Report:     report,
		Positions:  state.Positions,
		Velocities: state.Velocities,
	}
	if b, ok := s.integrator.Evaluator().(md.Boxed); ok {
		f.Box = b.Box()
	}
	return f
}

func (s *Simulation) collectMetrics(res *Result) {
	for _, r := range s.reporters {
		if m, ok := r.(Metric); ok {
			res.Metrics[m.Name()] = m.Value()
		}
	}
}

// Minimize relaxes the integrator's current positions and installs the result.
// Velocities, time and step are left unchanged.
func (s *Simulation) Minimize(ctx context.Context, maxIterations int, tolerance float64) (*minimize.Result, error) {
	state := s.integrator.State()
	res, err := minimize.Run(ctx, s.integrator.Evaluator(), state.Positions, minimize.Settings{
		MaxIterations: maxIterations,
		Tolerance:     tolerance,
	})
	if err != nil {
		s.log.Error().Err(err).Msg("minimization failed")
		return nil, err
	}
	if err := s.integrator.SetPositions(res.Positions); err != nil {
		return nil, err
	}

	s.log.Info().
		Float64("initial_energy", res.InitialEnergy).
		Float64("final_energy", res.FinalEnergy).
		Float64("max_force", res.MaxForce).
		Int("iterations", res.Iterations).
		Str("status", res.Status).
		Msg("minimized")
	return res, nil
}
