package integrators

import (
	"fmt"

	"github.com/san-kum/mdsim/internal/md"
)

// VelocityVerlet is the deterministic, energy-conserving reference integrator.
// The seed only feeds SetVelocitiesToTemperature.
type VelocityVerlet struct {
	system
	dt float64
}

func NewVelocityVerlet(masses []float64, timestep float64, eval md.ForceEvaluator, seed int64) (*VelocityVerlet, error) {
	if !(timestep > 0) {
		return nil, fmt.Errorf("%w: timestep must be positive, got %g", md.ErrInvalidParameter, timestep)
	}
	sys, err := newSystem(masses, eval, seed)
	if err != nil {
		return nil, err
	}
	return &VelocityVerlet{system: sys, dt: timestep}, nil
}

func (v *VelocityVerlet) Timestep() float64 { return v.dt }

func (v *VelocityVerlet) Step(n int) error {
	for k := 0; k < n; k++ {
		if err := v.stepOnce(); err != nil {
			return v.diverged(err)
		}
	}
	return nil
}

func (v *VelocityVerlet) stepOnce() error {
	if err := v.ensureForces(); err != nil {
		return err
	}

	halfDt := 0.5 * v.dt
	copy(v.nextVel, v.vel)
	v.kick(v.forces, halfDt)
	v.drift(v.dt)

	energy, forces, err := v.eval.Evaluate(v.nextPos)
	if err != nil {
		return err
	}
	v.kick(forces, halfDt)

	if err := checkScratch(v.nextPos, v.nextVel); err != nil {
		return err
	}
	v.commit(energy, forces, v.dt)
	return nil
}
