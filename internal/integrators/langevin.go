package integrators

import (
	"math"

	"github.com/san-kum/mdsim/internal/md"
)

// Langevin integrates NVT dynamics with the VVVR splitting
//
//	O(dt/2) V(dt/2) R(dt) V(dt/2) O(dt/2)
//
// where every O half-step is an exact Ornstein-Uhlenbeck update
// v ← a·v + sqrt((1−a²)·kB·T/m)·ξ with a = exp(−γ·dt) and a fresh ξ.
type Langevin struct {
	system
	params md.Parameters

	a     float64
	noise []float64 // per-particle sqrt((1−a²)·kB·T/m)
}

func NewLangevin(masses []float64, params md.Parameters, eval md.ForceEvaluator, seed int64) (*Langevin, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	sys, err := newSystem(masses, eval, seed)
	if err != nil {
		return nil, err
	}

	a := math.Exp(-params.Friction * params.Timestep)
	noise := make([]float64, len(masses))
	for i, m := range masses {
		noise[i] = math.Sqrt((1 - a*a) * md.KB * params.Temperature / m)
	}

	return &Langevin{system: sys, params: params, a: a, noise: noise}, nil
}

func (l *Langevin) Parameters() md.Parameters { return l.params }

// Step advances n full VVVR steps. Non-positive n is a no-op. On failure the
// integrator holds the state of the last completed step and the returned
// error is a *md.DivergedError.
func (l *Langevin) Step(n int) error {
	for k := 0; k < n; k++ {
		if err := l.stepOnce(); err != nil {
			return l.diverged(err)
		}
	}
	return nil
}

func (l *Langevin) stepOnce() error {
	if err := l.ensureForces(); err != nil {
		return err
	}

	dt := l.params.Timestep
	halfDt := 0.5 * dt

	copy(l.nextVel, l.vel)
	l.thermostat()
	l.kick(l.forces, halfDt)
	l.drift(dt)

	energy, forces, err := l.eval.Evaluate(l.nextPos)
	if err != nil {
		return err
	}

	l.kick(forces, halfDt)
	l.thermostat()

	if err := checkScratch(l.nextPos, l.nextVel); err != nil {
		return err
	}
	l.commit(energy, forces, dt)
	return nil
}

// thermostat is one O half-step on the scratch velocities.
func (l *Langevin) thermostat() {
	for i := range l.nextVel {
		xi := l.stream.NormalVec()
		b := l.noise[i]
		l.nextVel[i].X = l.a*l.nextVel[i].X + b*xi.X
		l.nextVel[i].Y = l.a*l.nextVel[i].Y + b*xi.Y
		l.nextVel[i].Z = l.a*l.nextVel[i].Z + b*xi.Z
	}
}
