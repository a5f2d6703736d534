package integrators

import (
	"fmt"
	"math"

	"github.com/san-kum/mdsim/internal/forcefield"
	"github.com/san-kum/mdsim/internal/md"
	"github.com/san-kum/mdsim/internal/random"
)

// system is the particle state shared by every integrator. Steps are computed
// in the scratch buffers and swapped in only after they complete, so a failed
// step leaves positions, velocities, forces, time and step untouched.
type system struct {
	masses []float64
	eval   md.ForceEvaluator
	stream *random.Stream

	pos []md.Vec3
	vel []md.Vec3

	// forces and energy are valid for pos only while fresh is set. forces is
	// owned by the system; evaluators may reuse the slices they return.
	forces []md.Vec3
	energy float64
	fresh  bool

	time float64
	step int

	nextPos []md.Vec3
	nextVel []md.Vec3
}

func newSystem(masses []float64, eval md.ForceEvaluator, seed int64) (system, error) {
	if err := md.ValidateMasses(masses); err != nil {
		return system{}, err
	}
	if eval == nil {
		return system{}, fmt.Errorf("%w: force evaluator is nil", md.ErrInvalidParameter)
	}

	n := len(masses)
	return system{
		masses:  append([]float64(nil), masses...),
		eval:    forcefield.Checked(eval),
		stream:  random.New(seed),
		pos:     make([]md.Vec3, n),
		vel:     make([]md.Vec3, n),
		forces:  make([]md.Vec3, n),
		nextPos: make([]md.Vec3, n),
		nextVel: make([]md.Vec3, n),
	}, nil
}

func (s *system) NumParticles() int { return len(s.masses) }

func (s *system) Masses() []float64 { return append([]float64(nil), s.masses...) }

func (s *system) Evaluator() md.ForceEvaluator { return s.eval }

func (s *system) Seed() int64 { return s.stream.Seed() }

func (s *system) SetPositions(positions []md.Vec3) error {
	if len(positions) != len(s.masses) {
		return fmt.Errorf("%w: got %d positions for %d particles", md.ErrDimensionMismatch, len(positions), len(s.masses))
	}
	copy(s.pos, positions)
	s.fresh = false
	return nil
}

func (s *system) SetVelocities(velocities []md.Vec3) error {
	if len(velocities) != len(s.masses) {
		return fmt.Errorf("%w: got %d velocities for %d particles", md.ErrDimensionMismatch, len(velocities), len(s.masses))
	}
	copy(s.vel, velocities)
	return nil
}

// SetVelocitiesToTemperature draws every velocity component from the
// Maxwell-Boltzmann distribution N(0, kB·T/m).
func (s *system) SetVelocitiesToTemperature(temperature float64) error {
	if !(temperature > 0) || math.IsInf(temperature, 0) {
		return fmt.Errorf("%w: temperature must be positive, got %g", md.ErrInvalidParameter, temperature)
	}
	for i, m := range s.masses {
		sigma := math.Sqrt(md.KB * temperature / m)
		s.vel[i] = md.Vec3{
			X: sigma * s.stream.Normal(),
			Y: sigma * s.stream.Normal(),
			Z: sigma * s.stream.Normal(),
		}
	}
	return nil
}

// ensureForces evaluates forces at the committed positions if they are stale.
func (s *system) ensureForces() error {
	if s.fresh {
		return nil
	}
	energy, forces, err := s.eval.Evaluate(s.pos)
	if err != nil {
		return err
	}
	s.energy = energy
	copy(s.forces, forces)
	s.fresh = true
	return nil
}

// kick applies v += dt/2 · f/m to the scratch velocities.
func (s *system) kick(forces []md.Vec3, halfDt float64) {
	for i, f := range forces {
		c := halfDt / s.masses[i]
		s.nextVel[i].X += c * f.X
		s.nextVel[i].Y += c * f.Y
		s.nextVel[i].Z += c * f.Z
	}
}

func (s *system) drift(dt float64) {
	for i, v := range s.nextVel {
		s.nextPos[i].X = s.pos[i].X + dt*v.X
		s.nextPos[i].Y = s.pos[i].Y + dt*v.Y
		s.nextPos[i].Z = s.pos[i].Z + dt*v.Z
	}
}

// commit makes the scratch buffers the current state.
func (s *system) commit(energy float64, forces []md.Vec3, dt float64) {
	s.pos, s.nextPos = s.nextPos, s.pos
	s.vel, s.nextVel = s.nextVel, s.vel
	s.energy = energy
	copy(s.forces, forces)
	s.fresh = true
	s.time += dt
	s.step++
}

func (s *system) diverged(err error) error {
	return &md.DivergedError{Step: s.step, Time: s.time, Wrapped: err}
}

func (s *system) State() md.State {
	st := md.State{
		Positions:  md.CloneVecs(s.pos),
		Velocities: md.CloneVecs(s.vel),
		Masses:     append([]float64(nil), s.masses...),
		Time:       s.time,
		Step:       s.step,
	}
	if err := s.ensureForces(); err != nil {
		st.PotentialEnergy = math.NaN()
	} else {
		st.PotentialEnergy = s.energy
	}
	st.KineticEnergy = md.KineticEnergy(s.vel, s.masses)
	st.Temperature = md.Temperature(st.KineticEnergy, len(s.masses))
	return st
}

func checkScratch(pos, vel []md.Vec3) error {
	if !md.AllFinite(vel) {
		return fmt.Errorf("%w: velocities became non-finite", md.ErrEvaluation)
	}
	if !md.AllFinite(pos) {
		return fmt.Errorf("%w: positions became non-finite", md.ErrEvaluation)
	}
	return nil
}
