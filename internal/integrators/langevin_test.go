package integrators

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/mdsim/internal/forcefield"
	"github.com/san-kum/mdsim/internal/md"
	"github.com/san-kum/mdsim/internal/random"
)

// flakyEvaluator returns NaN forces once it has been called more than limit times.
type flakyEvaluator struct {
	inner md.ForceEvaluator
	calls int
	limit int
}

func (f *flakyEvaluator) Evaluate(pos []md.Vec3) (float64, []md.Vec3, error) {
	f.calls++
	energy, forces, err := f.inner.Evaluate(pos)
	if err != nil {
		return 0, nil, err
	}
	if f.calls > f.limit {
		forces[0].X = math.NaN()
	}
	return energy, forces, nil
}

// freeParticles exerts no force at all.
type freeParticles struct{}

func (freeParticles) Evaluate(pos []md.Vec3) (float64, []md.Vec3, error) {
	return 0, make([]md.Vec3, len(pos)), nil
}

// reusingSpring is a unit harmonic well that writes every result into the
// same slice. Calls listed in poison come back with a NaN force.
type reusingSpring struct {
	buf    []md.Vec3
	calls  int
	poison map[int]bool
}

func (r *reusingSpring) Evaluate(pos []md.Vec3) (float64, []md.Vec3, error) {
	r.calls++
	if len(r.buf) != len(pos) {
		r.buf = make([]md.Vec3, len(pos))
	}
	var energy float64
	for i, p := range pos {
		energy += 0.5 * (p.X*p.X + p.Y*p.Y + p.Z*p.Z)
		r.buf[i] = md.Vec3{X: -p.X, Y: -p.Y, Z: -p.Z}
	}
	if r.poison[r.calls] {
		r.buf[0].X = math.NaN()
	}
	return energy, r.buf, nil
}

func uniformMasses(n int, m float64) []float64 {
	masses := make([]float64, n)
	for i := range masses {
		masses[i] = m
	}
	return masses
}

func displaced(n int, d float64) []md.Vec3 {
	pos := make([]md.Vec3, n)
	for i := range pos {
		pos[i] = md.Vec3{X: d, Y: -d / 2, Z: d * float64(i%3) / 3}
	}
	return pos
}

var _ = Describe("Langevin", func() {
	const (
		n    = 8
		mass = 10.0
		k    = 100.0
	)

	var (
		params md.Parameters
		masses []float64
	)

	newIntegrator := func(eval md.ForceEvaluator, seed int64) *Langevin {
		l, err := NewLangevin(masses, params, eval, seed)
		Expect(err).NotTo(HaveOccurred())
		Expect(l.SetPositions(displaced(n, 0.1))).To(Succeed())
		Expect(l.SetVelocitiesToTemperature(params.Temperature)).To(Succeed())
		return l
	}

	BeforeEach(func() {
		params = md.Parameters{Temperature: 300, Friction: 1, Timestep: 0.002}
		masses = uniformMasses(n, mass)
	})

	Context("construction", func() {
		It("should start at rest at the origin", func() {
			l, err := NewLangevin(masses, params, forcefield.NewHarmonic(n, k), 1)
			Expect(err).NotTo(HaveOccurred())

			s := l.State()
			Expect(s.Positions).To(Equal(make([]md.Vec3, n)))
			Expect(s.Velocities).To(Equal(make([]md.Vec3, n)))
			Expect(s.Step).To(Equal(0))
			Expect(s.Time).To(Equal(0.0))
			Expect(l.Parameters()).To(Equal(params))
		})

		It("should reject a zero mass", func() {
			masses[3] = 0
			_, err := NewLangevin(masses, params, forcefield.NewHarmonic(n, k), 1)
			Expect(err).To(MatchError(md.ErrInvalidParameter))
		})

		It("should reject an empty system", func() {
			_, err := NewLangevin(nil, params, forcefield.NewHarmonic(0, k), 1)
			Expect(err).To(MatchError(md.ErrInvalidParameter))
		})

		DescribeTable("should reject non-positive parameters",
			func(mutate func(p *md.Parameters)) {
				mutate(&params)
				_, err := NewLangevin(masses, params, forcefield.NewHarmonic(n, k), 1)
				Expect(err).To(MatchError(md.ErrInvalidParameter))
			},
			Entry("temperature", func(p *md.Parameters) { p.Temperature = 0 }),
			Entry("friction", func(p *md.Parameters) { p.Friction = -1 }),
			Entry("timestep", func(p *md.Parameters) { p.Timestep = math.NaN() }),
		)
	})

	Context("state setters", func() {
		It("should reject positions of the wrong length and keep the old state", func() {
			l := newIntegrator(forcefield.NewHarmonic(n, k), 1)
			before := l.State()

			err := l.SetPositions(make([]md.Vec3, n-1))
			Expect(err).To(MatchError(md.ErrDimensionMismatch))
			Expect(l.State()).To(Equal(before))
		})

		It("should reject velocities of the wrong length", func() {
			l := newIntegrator(forcefield.NewHarmonic(n, k), 1)
			Expect(l.SetVelocities(make([]md.Vec3, n+1))).To(MatchError(md.ErrDimensionMismatch))
		})

		It("should leave velocities alone when positions change", func() {
			l := newIntegrator(forcefield.NewHarmonic(n, k), 1)
			v := l.State().Velocities

			Expect(l.SetPositions(displaced(n, 0.3))).To(Succeed())
			Expect(l.State().Velocities).To(Equal(v))
			Expect(l.State().Positions).To(Equal(displaced(n, 0.3)))
		})

		It("should reject a non-positive initial temperature", func() {
			l := newIntegrator(forcefield.NewHarmonic(n, k), 1)
			Expect(l.SetVelocitiesToTemperature(0)).To(MatchError(md.ErrInvalidParameter))
		})

		It("should return snapshots that do not alias the integrator", func() {
			l := newIntegrator(forcefield.NewHarmonic(n, k), 1)
			s := l.State()
			s.Positions[0].X = 42
			s.Velocities[0].X = 42
			Expect(l.State().Positions[0].X).NotTo(Equal(42.0))
			Expect(l.State().Velocities[0].X).NotTo(Equal(42.0))
		})
	})

	Context("stepping", func() {
		It("should not change anything for zero or negative steps", func() {
			l := newIntegrator(forcefield.NewHarmonic(n, k), 7)
			before := l.State()

			Expect(l.Step(0)).To(Succeed())
			Expect(l.Step(-3)).To(Succeed())
			Expect(l.State()).To(Equal(before))
		})

		It("should advance step and time by one timestep per step", func() {
			l := newIntegrator(forcefield.NewHarmonic(n, k), 7)
			Expect(l.Step(25)).To(Succeed())

			s := l.State()
			Expect(s.Step).To(Equal(25))
			Expect(s.Time).To(BeNumerically("~", 25*params.Timestep, 1e-12))
		})

		It("should compose: Step(a) then Step(b) equals Step(a+b)", func() {
			split := newIntegrator(forcefield.NewHarmonic(n, k), 11)
			whole := newIntegrator(forcefield.NewHarmonic(n, k), 11)

			Expect(split.Step(30)).To(Succeed())
			_ = split.State()
			Expect(split.Step(20)).To(Succeed())
			Expect(whole.Step(50)).To(Succeed())

			Expect(split.State()).To(Equal(whole.State()))
		})

		It("should reproduce a trajectory from the same seed", func() {
			a := newIntegrator(forcefield.NewHarmonic(n, k), 3)
			b := newIntegrator(forcefield.NewHarmonic(n, k), 3)
			c := newIntegrator(forcefield.NewHarmonic(n, k), 4)

			for _, l := range []*Langevin{a, b, c} {
				Expect(l.Step(100)).To(Succeed())
			}
			Expect(a.State()).To(Equal(b.State()))
			Expect(a.State().Positions).NotTo(Equal(c.State().Positions))
		})
	})

	Context("failure", func() {
		It("should report divergence and keep the last completed step", func() {
			flaky := &flakyEvaluator{inner: forcefield.NewHarmonic(n, k), limit: 3}
			failing := newIntegrator(flaky, 5)
			reference := newIntegrator(forcefield.NewHarmonic(n, k), 5)

			err := failing.Step(5)
			Expect(err).To(MatchError(md.ErrDiverged))
			Expect(err).To(MatchError(md.ErrEvaluation))

			var diverged *md.DivergedError
			Expect(errors.As(err, &diverged)).To(BeTrue())
			Expect(diverged.Step).To(Equal(2))
			Expect(diverged.Time).To(BeNumerically("~", 2*params.Timestep, 1e-12))

			Expect(reference.Step(2)).To(Succeed())
			Expect(failing.State()).To(Equal(reference.State()))
		})

		It("should recover once an evaluator that reuses its buffer recovers", func() {
			// Call 1 is the initial force evaluation, call 3 is the second step.
			spring := &reusingSpring{poison: map[int]bool{3: true}}
			l, err := NewLangevin([]float64{1}, params, spring, 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(l.SetPositions([]md.Vec3{{X: 0.1}})).To(Succeed())

			Expect(l.Step(1)).To(Succeed())
			Expect(l.Step(1)).To(MatchError(md.ErrDiverged))
			Expect(l.Step(3)).To(Succeed())

			s := l.State()
			Expect(s.Step).To(Equal(4))
			Expect(md.AllFinite(s.Velocities)).To(BeTrue())
			Expect(md.AllFinite(s.Positions)).To(BeTrue())
		})

		It("should diverge when started from non-finite positions", func() {
			l := newIntegrator(forcefield.NewHarmonic(n, k), 5)
			pos := displaced(n, 0.1)
			pos[2].Y = math.Inf(1)
			Expect(l.SetPositions(pos)).To(Succeed())

			err := l.Step(1)
			Expect(err).To(MatchError(md.ErrDiverged))
			Expect(l.State().Step).To(Equal(0))
			Expect(math.IsNaN(l.State().PotentialEnergy)).To(BeTrue())
		})
	})

	Context("thermostat coefficients", func() {
		const (
			gamma = 1.0
			dt    = 0.1
		)

		BeforeEach(func() {
			params = md.Parameters{Friction: gamma, Timestep: dt}
		})

		It("should damp a free particle by exp(-γ·dt) in each O half-step", func() {
			params.Temperature = 1e-300
			l, err := NewLangevin([]float64{1}, params, freeParticles{}, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(l.SetVelocities([]md.Vec3{{X: 1, Y: -2, Z: 0.5}})).To(Succeed())

			Expect(l.Step(1)).To(Succeed())

			a := math.Exp(-gamma * dt)
			s := l.State()
			Expect(s.Velocities[0].X).To(BeNumerically("~", a*a, 1e-12))
			Expect(s.Velocities[0].Y).To(BeNumerically("~", -2*a*a, 1e-12))
			Expect(s.Velocities[0].Z).To(BeNumerically("~", 0.5*a*a, 1e-12))
			// The drift sees the velocity after the first O half-step.
			Expect(s.Positions[0].X).To(BeNumerically("~", dt*a, 1e-12))
		})

		It("should add noise of amplitude sqrt((1-a²)·kB·T/m) from the seeded stream", func() {
			const (
				mass = 2.0
				seed = 42
			)
			params.Temperature = 300
			l, err := NewLangevin([]float64{mass}, params, freeParticles{}, seed)
			Expect(err).NotTo(HaveOccurred())
			v0 := md.Vec3{X: 0.3, Y: -0.1, Z: 0.7}
			Expect(l.SetVelocities([]md.Vec3{v0})).To(Succeed())

			Expect(l.Step(1)).To(Succeed())

			a := math.Exp(-gamma * dt)
			b := math.Sqrt((1 - a*a) * md.KB * params.Temperature / mass)
			replay := random.New(seed)
			xi1, xi2 := replay.NormalVec(), replay.NormalVec()
			want := md.Vec3{
				X: a*(a*v0.X+b*xi1.X) + b*xi2.X,
				Y: a*(a*v0.Y+b*xi1.Y) + b*xi2.Y,
				Z: a*(a*v0.Z+b*xi1.Z) + b*xi2.Z,
			}

			got := l.State().Velocities[0]
			Expect(got.X).To(BeNumerically("~", want.X, 1e-12))
			Expect(got.Y).To(BeNumerically("~", want.Y, 1e-12))
			Expect(got.Z).To(BeNumerically("~", want.Z, 1e-12))
		})
	})

	Context("physics", func() {
		It("should conserve energy when friction vanishes", func() {
			params.Friction = 1e-9
			l := newIntegrator(forcefield.NewHarmonic(n, k), 2)

			s := l.State()
			e0 := s.PotentialEnergy + s.KineticEnergy
			for i := 0; i < 10; i++ {
				Expect(l.Step(100)).To(Succeed())
				s = l.State()
				e := s.PotentialEnergy + s.KineticEnergy
				Expect(math.Abs(e-e0) / math.Abs(e0)).To(BeNumerically("<", 0.01))
			}
		})

		It("should follow velocity Verlet as friction goes to zero", func() {
			params.Friction = 1e-12
			l := newIntegrator(forcefield.NewHarmonic(n, k), 9)

			v, err := NewVelocityVerlet(masses, params.Timestep, forcefield.NewHarmonic(n, k), 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(v.SetPositions(l.State().Positions)).To(Succeed())
			Expect(v.SetVelocities(l.State().Velocities)).To(Succeed())

			Expect(l.Step(200)).To(Succeed())
			Expect(v.Step(200)).To(Succeed())

			lp, vp := l.State().Positions, v.State().Positions
			for i := range lp {
				Expect(lp[i].X).To(BeNumerically("~", vp[i].X, 1e-6))
				Expect(lp[i].Y).To(BeNumerically("~", vp[i].Y, 1e-6))
				Expect(lp[i].Z).To(BeNumerically("~", vp[i].Z, 1e-6))
			}
		})

		It("should initialise velocities from the Maxwell-Boltzmann distribution", func() {
			const particles = 5000
			l, err := NewLangevin(uniformMasses(particles, mass), params, forcefield.NewHarmonic(particles, k), 21)
			Expect(err).NotTo(HaveOccurred())
			Expect(l.SetVelocitiesToTemperature(300)).To(Succeed())

			var sum, sumSq float64
			for _, v := range l.State().Velocities {
				for _, c := range []float64{v.X, v.Y, v.Z} {
					sum += c
					sumSq += c * c
				}
			}
			samples := float64(3 * particles)
			mean := sum / samples
			variance := sumSq/samples - mean*mean
			want := md.KB * 300 / mass

			Expect(math.Abs(mean)).To(BeNumerically("<", 4*math.Sqrt(want/samples)))
			Expect(variance).To(BeNumerically("~", want, 0.05*want))
		})

		It("should thermalise harmonic oscillators to the bath temperature", func() {
			const particles = 100
			params.Friction = 5
			l, err := NewLangevin(uniformMasses(particles, mass), params, forcefield.NewHarmonic(particles, k), 13)
			Expect(err).NotTo(HaveOccurred())
			Expect(l.Step(2000)).To(Succeed())

			var temp, pot float64
			const samples = 2000
			for i := 0; i < samples; i++ {
				Expect(l.Step(10)).To(Succeed())
				s := l.State()
				temp += s.Temperature
				pot += s.PotentialEnergy
			}
			temp /= samples
			pot /= samples

			Expect(temp).To(BeNumerically("~", 300, 0.03*300))
			// ⟨U⟩ = 3/2 N kB T for isotropic springs.
			wantPot := 1.5 * particles * md.KB * 300
			Expect(pot).To(BeNumerically("~", wantPot, 0.05*wantPot))
		})
	})
})
