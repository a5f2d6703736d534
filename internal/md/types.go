package md

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// KB is the Boltzmann constant in kJ/(mol·K).
const KB = 0.008314462618

type Vec3 = r3.Vec

type Parameters struct {
	Temperature float64 // K
	Friction    float64 // 1/ps
	Timestep    float64 // ps
}

func (p Parameters) Validate() error {
	if !positive(p.Temperature) {
		return fmt.Errorf("%w: temperature must be positive, got %g", ErrInvalidParameter, p.Temperature)
	}
	if !positive(p.Friction) {
		return fmt.Errorf("%w: friction must be positive, got %g", ErrInvalidParameter, p.Friction)
	}
	if !positive(p.Timestep) {
		return fmt.Errorf("%w: timestep must be positive, got %g", ErrInvalidParameter, p.Timestep)
	}
	return nil
}

// ValidateMasses requires at least one particle and strictly positive, finite masses.
func ValidateMasses(masses []float64) error {
	if len(masses) == 0 {
		return fmt.Errorf("%w: at least one particle is required", ErrInvalidParameter)
	}
	for i, m := range masses {
		if !positive(m) {
			return fmt.Errorf("%w: mass of particle %d must be positive, got %g", ErrInvalidParameter, i, m)
		}
	}
	return nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

type State struct {
	Positions  []Vec3
	Velocities []Vec3
	Masses     []float64
	Time       float64
	Step       int

	PotentialEnergy float64
	KineticEnergy   float64
	Temperature     float64
}

func (s State) NumParticles() int { return len(s.Masses) }

func (s State) Clone() State {
	c := s
	c.Positions = CloneVecs(s.Positions)
	c.Velocities = CloneVecs(s.Velocities)
	c.Masses = append([]float64(nil), s.Masses...)
	return c
}

func (s State) Report() Report {
	return Report{
		Step:            s.Step,
		Time:            s.Time,
		PotentialEnergy: s.PotentialEnergy,
		KineticEnergy:   s.KineticEnergy,
		TotalEnergy:     s.PotentialEnergy + s.KineticEnergy,
		Temperature:     s.Temperature,
	}
}

type Report struct {
	Step            int     `json:"step"`
	Time            float64 `json:"time"`
	PotentialEnergy float64 `json:"potential_energy"`
	KineticEnergy   float64 `json:"kinetic_energy"`
	TotalEnergy     float64 `json:"total_energy"`
	Temperature     float64 `json:"temperature"`
}

// Frame is a report plus the full configuration, handed to trajectory sinks.
type Frame struct {
	Report
	Positions  []Vec3
	Velocities []Vec3
	Box        [3]Vec3
}

type ForceEvaluator interface {
	Evaluate(positions []Vec3) (energy float64, forces []Vec3, err error)
}

// Boxed is implemented by evaluators that work in a periodic cell.
type Boxed interface {
	Box() [3]Vec3
}

type Integrator interface {
	Step(n int) error
	State() State
	SetPositions(positions []Vec3) error
	SetVelocities(velocities []Vec3) error
	SetVelocitiesToTemperature(temperature float64) error
	Evaluator() ForceEvaluator
}

type Reporter interface {
	Report(r Report) error
}

type TrajectoryReporter interface {
	Reporter
	ReportFrame(f Frame) error
}

func CloneVecs(v []Vec3) []Vec3 {
	if v == nil {
		return nil
	}
	c := make([]Vec3, len(v))
	copy(c, v)
	return c
}

func IsFinite(v Vec3) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsNaN(v.Z) &&
		!math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0) && !math.IsInf(v.Z, 0)
}

func AllFinite(v []Vec3) bool {
	for _, x := range v {
		if !IsFinite(x) {
			return false
		}
	}
	return true
}

func KineticEnergy(velocities []Vec3, masses []float64) float64 {
	ke := 0.0
	for i, v := range velocities {
		ke += 0.5 * masses[i] * r3.Norm2(v)
	}
	return ke
}

// Temperature converts a kinetic energy to an instantaneous temperature using
// 3 degrees of freedom per particle.
func Temperature(kineticEnergy float64, numParticles int) float64 {
	if numParticles == 0 {
		return 0
	}
	return 2 * kineticEnergy / (3 * float64(numParticles) * KB)
}
