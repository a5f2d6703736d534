package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/mdsim/internal/md"
)

const (
	DefaultTemperature    = 300.0  // K
	DefaultFriction       = 1.0    // 1/ps
	DefaultTimestep       = 0.002  // ps
	DefaultMass           = 39.948 // amu, argon
	DefaultParticles      = 8
	DefaultSpacing        = 0.4 // nm
	DefaultTotalSteps     = 10000
	DefaultReportInterval = 100
	DefaultSeed           = 42
	DefaultTolerance      = 10.0 // kJ/(mol·nm)

	LatticeCubic = "cubic"
	LatticeLine  = "line"
)

type Config struct {
	ForceField     ForceFieldConfig `yaml:"force_field"`
	Integrator     string           `yaml:"integrator"`
	Particles      ParticleConfig   `yaml:"particles"`
	Temperature    float64          `yaml:"temperature"`
	Friction       float64          `yaml:"friction"`
	Timestep       float64          `yaml:"timestep"`
	TotalSteps     int              `yaml:"total_steps"`
	ReportInterval int              `yaml:"report_interval"`
	Seed           int64            `yaml:"seed"`
	Minimize       MinimizeConfig   `yaml:"minimize"`
	Reporters      ReporterConfig   `yaml:"reporters"`
}

// ForceFieldConfig holds the parameters of every force field; each kind reads
// only the fields it needs.
type ForceFieldConfig struct {
	Kind      string  `yaml:"kind"`
	K         float64 `yaml:"k,omitempty"`
	A         float64 `yaml:"a,omitempty"`
	B         float64 `yaml:"b,omitempty"`
	Epsilon   float64 `yaml:"epsilon,omitempty"`
	Sigma     float64 `yaml:"sigma,omitempty"`
	Cutoff    float64 `yaml:"cutoff,omitempty"`
	Box       float64 `yaml:"box,omitempty"`
	G         float64 `yaml:"g,omitempty"`
	Softening float64 `yaml:"softening,omitempty"`
	Theta     float64 `yaml:"theta,omitempty"`
	R0        float64 `yaml:"r0,omitempty"`
}

type ParticleConfig struct {
	Count   int       `yaml:"count"`
	Mass    float64   `yaml:"mass"`
	Masses  []float64 `yaml:"masses,omitempty"`
	Spacing float64   `yaml:"spacing"`
	Lattice string    `yaml:"lattice"`
}

type MinimizeConfig struct {
	Enabled       bool    `yaml:"enabled"`
	MaxIterations int     `yaml:"max_iterations"`
	Tolerance     float64 `yaml:"tolerance"`
}

type ReporterConfig struct {
	Console  bool   `yaml:"console"`
	CSV      string `yaml:"csv,omitempty"`
	SQLite   string `yaml:"sqlite,omitempty"`
	FailFast bool   `yaml:"fail_fast"`
}

func DefaultConfig() *Config {
	return &Config{
		ForceField: ForceFieldConfig{Kind: "harmonic", K: 100},
		Integrator: "langevin",
		Particles: ParticleConfig{
			Count:   DefaultParticles,
			Mass:    DefaultMass,
			Spacing: DefaultSpacing,
			Lattice: LatticeCubic,
		},
		Temperature:    DefaultTemperature,
		Friction:       DefaultFriction,
		Timestep:       DefaultTimestep,
		TotalSteps:     DefaultTotalSteps,
		ReportInterval: DefaultReportInterval,
		Seed:           DefaultSeed,
		Minimize: MinimizeConfig{
			Enabled:   true,
			Tolerance: DefaultTolerance,
		},
		Reporters: ReporterConfig{Console: true},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy, so presets can be modified safely.
func (c *Config) Clone() *Config {
	cp := *c
	if c.Particles.Masses != nil {
		cp.Particles.Masses = append([]float64(nil), c.Particles.Masses...)
	}
	return &cp
}

// Validate checks the numeric ranges. Force field and integrator names are
// resolved by the experiment registry.
func (c *Config) Validate() error {
	if err := c.Parameters().Validate(); err != nil {
		return err
	}
	if err := md.ValidateMasses(c.Masses()); err != nil {
		return err
	}
	if len(c.Particles.Masses) > 0 && c.Particles.Count > 0 && c.Particles.Count != len(c.Particles.Masses) {
		return fmt.Errorf("%w: particles.count is %d but %d masses are listed",
			md.ErrInvalidParameter, c.Particles.Count, len(c.Particles.Masses))
	}
	if c.TotalSteps < 0 {
		return fmt.Errorf("%w: total_steps must be non-negative, got %d", md.ErrInvalidParameter, c.TotalSteps)
	}
	if c.ReportInterval <= 0 {
		return fmt.Errorf("%w: report_interval must be positive, got %d", md.ErrInvalidParameter, c.ReportInterval)
	}
	if c.Particles.Spacing < 0 || math.IsNaN(c.Particles.Spacing) {
		return fmt.Errorf("%w: particles.spacing must be non-negative, got %g", md.ErrInvalidParameter, c.Particles.Spacing)
	}
	switch c.Particles.Lattice {
	case "", LatticeCubic, LatticeLine:
	default:
		return fmt.Errorf("%w: unknown lattice %q", md.ErrInvalidParameter, c.Particles.Lattice)
	}
	if c.Minimize.Enabled && !(c.Minimize.Tolerance > 0) {
		return fmt.Errorf("%w: minimize.tolerance must be positive, got %g", md.ErrInvalidParameter, c.Minimize.Tolerance)
	}
	return nil
}

func (c *Config) Parameters() md.Parameters {
	return md.Parameters{
		Temperature: c.Temperature,
		Friction:    c.Friction,
		Timestep:    c.Timestep,
	}
}

func (c *Config) NumParticles() int {
	if len(c.Particles.Masses) > 0 {
		return len(c.Particles.Masses)
	}
	return c.Particles.Count
}

// Masses returns the explicit mass list, or Count copies of Mass.
func (c *Config) Masses() []float64 {
	if len(c.Particles.Masses) > 0 {
		return append([]float64(nil), c.Particles.Masses...)
	}
	masses := make([]float64, max(c.Particles.Count, 0))
	for i := range masses {
		masses[i] = c.Particles.Mass
	}
	return masses
}

// InitialPositions lays the particles out on the configured lattice, centred
// on the origin.
func (c *Config) InitialPositions() []md.Vec3 {
	n := c.NumParticles()
	spacing := c.Particles.Spacing
	if spacing == 0 {
		spacing = DefaultSpacing
	}

	if c.Particles.Lattice == LatticeLine {
		return line(n, spacing)
	}
	return cubic(n, spacing)
}

func line(n int, spacing float64) []md.Vec3 {
	pos := make([]md.Vec3, n)
	offset := 0.5 * float64(n-1) * spacing
	for i := range pos {
		pos[i] = md.Vec3{X: float64(i)*spacing - offset}
	}
	return pos
}

func cubic(n int, spacing float64) []md.Vec3 {
	side := 1
	for side*side*side < n {
		side++
	}
	offset := 0.5 * float64(side-1) * spacing

	pos := make([]md.Vec3, n)
	for i := range pos {
		x, y, z := i%side, (i/side)%side, i/(side*side)
		pos[i] = md.Vec3{
			X: float64(x)*spacing - offset,
			Y: float64(y)*spacing - offset,
			Z: float64(z)*spacing - offset,
		}
	}
	return pos
}
