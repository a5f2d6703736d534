package automation

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/mdsim/internal/analysis"
	"github.com/san-kum/mdsim/internal/config"
	"github.com/san-kum/mdsim/internal/experiment"
	"github.com/san-kum/mdsim/internal/md"
	"github.com/san-kum/mdsim/internal/reporters"
	"github.com/san-kum/mdsim/internal/sim"
)

// Scenario defines a scripted sequence of runs
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep starts from a preset ("model/name") or a config file and
// applies the non-zero overrides.
type ScenarioStep struct {
	Preset         string  `yaml:"preset"`
	ConfigFile     string  `yaml:"config"`
	Integrator     string  `yaml:"integrator"`
	Temperature    float64 `yaml:"temperature"`
	Friction       float64 `yaml:"friction"`
	Timestep       float64 `yaml:"timestep"`
	TotalSteps     int     `yaml:"total_steps"`
	ReportInterval int     `yaml:"report_interval"`
	Seed           int64   `yaml:"seed"`
	SaveAs         string  `yaml:"save_as"`
}

// StepResult pairs the resolved config of a step with its outcome.
type StepResult struct {
	Name    string
	Config  *config.Config
	Result  *sim.Result
	Reports []md.Report
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}

	return &scenario, nil
}

// Resolve builds the run configuration of one step.
func (s ScenarioStep) Resolve() (*config.Config, error) {
	var cfg *config.Config
	switch {
	case s.Preset != "":
		model, name, ok := strings.Cut(s.Preset, "/")
		if !ok {
			return nil, fmt.Errorf("preset %q must look like model/name", s.Preset)
		}
		cfg = config.GetPreset(model, name)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %s", s.Preset)
		}
	case s.ConfigFile != "":
		var err error
		if cfg, err = config.Load(s.ConfigFile); err != nil {
			return nil, err
		}
	default:
		cfg = config.DefaultConfig()
	}

	if s.Integrator != "" {
		cfg.Integrator = s.Integrator
	}
	if s.Temperature != 0 {
		cfg.Temperature = s.Temperature
	}
	if s.Friction != 0 {
		cfg.Friction = s.Friction
	}
	if s.Timestep != 0 {
		cfg.Timestep = s.Timestep
	}
	if s.TotalSteps != 0 {
		cfg.TotalSteps = s.TotalSteps
	}
	if s.ReportInterval != 0 {
		cfg.ReportInterval = s.ReportInterval
	}
	if s.Seed != 0 {
		cfg.Seed = s.Seed
	}
	cfg.Reporters.Console = false
	return cfg, cfg.Validate()
}

func (s ScenarioStep) name(i int) string {
	switch {
	case s.SaveAs != "":
		return s.SaveAs
	case s.Preset != "":
		return s.Preset
	default:
		return fmt.Sprintf("step%d", i+1)
	}
}

// RunScenario executes all steps in a scenario, stopping at the first failure.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, log zerolog.Logger) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		name := step.name(i)
		log.Info().Int("step", i+1).Int("of", len(scenario.Steps)).Str("name", name).Msg("running scenario step")

		cfg, err := step.Resolve()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		rec := reporters.NewRecorder()
		exp := experiment.New(cfg).WithRegistry(registry).WithLogger(log)
		if err := exp.Setup(rec); err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		results = append(results, StepResult{Name: name, Config: cfg, Result: result, Reports: rec.Reports})
	}

	return results, nil
}

// TemperatureSweep runs the base configuration once per target temperature.
type TemperatureSweep struct {
	Base         *config.Config
	Temperatures []float64
	// Skip is the number of leading reports discarded as equilibration.
	Skip int
}

// SweepResult compares the bath target with the measured temperature.
type SweepResult struct {
	Target            float64
	Mean              float64
	StdErr            float64
	RelativeDeviation float64
	Stopped           bool
}

// RunTemperatureSweep executes a sweep sequentially with the base seed.
func RunTemperatureSweep(ctx context.Context, sweep *TemperatureSweep, registry *experiment.Registry, log zerolog.Logger) ([]SweepResult, error) {
	results := make([]SweepResult, 0, len(sweep.Temperatures))

	for i, target := range sweep.Temperatures {
		cfg := sweep.Base.Clone()
		cfg.Temperature = target

		rec := reporters.NewRecorder()
		exp := experiment.New(cfg).WithRegistry(registry).WithLogger(log)
		if err := exp.Setup(rec); err != nil {
			return results, fmt.Errorf("T=%g: %w", target, err)
		}
		res, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("T=%g: %w", target, err)
		}

		st, err := analysis.Equipartition(rec.Reports, target, sweep.Skip)
		if err != nil {
			return results, fmt.Errorf("T=%g: %w", target, err)
		}

		results = append(results, SweepResult{
			Target:            target,
			Mean:              st.Mean,
			StdErr:            st.StdErr,
			RelativeDeviation: st.RelativeDeviation,
			Stopped:           res.Stopped,
		})

		log.Info().
			Int("run", i+1).
			Int("of", len(sweep.Temperatures)).
			Float64("target", target).
			Float64("measured", st.Mean).
			Msg("sweep point done")
	}

	return results, nil
}

// ReplicaSummary condenses one ensemble member.
type ReplicaSummary struct {
	Seed            int64
	MeanTemperature float64
	FinalEnergy     float64
	Stable          bool
}

// RunEnsemble runs n replicas of cfg with seeds cfg.Seed, cfg.Seed+1, ...
// concurrently and summarises each one.
func RunEnsemble(ctx context.Context, cfg *config.Config, registry *experiment.Registry, n int) ([]ReplicaSummary, error) {
	if n <= 0 {
		return nil, fmt.Errorf("ensemble size must be positive, got %d", n)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	factory := func(seed int64) (*sim.Simulation, error) {
		c := cfg.Clone()
		c.Seed = seed
		c.Reporters.Console = false
		exp := experiment.New(c).WithRegistry(registry)
		if err := exp.Setup(); err != nil {
			return nil, err
		}
		if c.Minimize.Enabled {
			if _, err := exp.GetSimulation().Minimize(ctx, c.Minimize.MaxIterations, c.Minimize.Tolerance); err != nil {
				return nil, err
			}
		}
		return exp.GetSimulation(), nil
	}

	results, err := sim.NewEnsemble(factory, n, cfg.Seed).Run(ctx, cfg.TotalSteps, cfg.ReportInterval)

	summaries := make([]ReplicaSummary, n)
	for i, res := range results {
		s := ReplicaSummary{Seed: cfg.Seed + int64(i)}
		if res != nil {
			s.MeanTemperature = res.Metrics["mean_temperature"]
			s.Stable = res.Metrics["stability"] == 1
			if last, ok := res.Last(); ok {
				s.FinalEnergy = last.TotalEnergy
			}
		}
		summaries[i] = s
	}
	return summaries, err
}

// EnsembleStats counts stable and unstable replicas.
func EnsembleStats(results []ReplicaSummary) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
