package integrators

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/mdsim/internal/forcefield"
	"github.com/san-kum/mdsim/internal/md"
)

var _ = Describe("VelocityVerlet", func() {
	It("should reject a non-positive timestep", func() {
		_, err := NewVelocityVerlet([]float64{1}, 0, forcefield.NewHarmonic(1, 1), 0)
		Expect(err).To(MatchError(md.ErrInvalidParameter))
	})

	It("should track the analytic harmonic oscillator", func() {
		const (
			k    = 100.0
			mass = 4.0
			dt   = 0.001
		)
		v, err := NewVelocityVerlet([]float64{mass}, dt, forcefield.NewHarmonic(1, k), 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(v.SetPositions([]md.Vec3{{X: 0.2}})).To(Succeed())

		Expect(v.Step(1000)).To(Succeed())

		omega := math.Sqrt(k / mass)
		want := 0.2 * math.Cos(omega*1000*dt)
		Expect(v.State().Positions[0].X).To(BeNumerically("~", want, 1e-4))
	})

	It("should keep total energy bounded on a Lennard-Jones cluster", func() {
		lj := forcefield.NewLennardJones(forcefield.DefaultEpsilon, forcefield.DefaultSigma, 0)
		r := lj.MinimumDistance()
		pos := []md.Vec3{{}, {X: r}, {X: r / 2, Y: r * math.Sqrt(3) / 2}, {X: r / 2, Y: r / 3, Z: r * 0.8}}

		v, err := NewVelocityVerlet(uniformMasses(len(pos), 39.948), 0.002, lj, 17)
		Expect(err).NotTo(HaveOccurred())
		Expect(v.SetPositions(pos)).To(Succeed())
		Expect(v.SetVelocitiesToTemperature(20)).To(Succeed())

		s := v.State()
		e0 := s.PotentialEnergy + s.KineticEnergy
		Expect(v.Step(2000)).To(Succeed())
		s = v.State()
		Expect(s.PotentialEnergy + s.KineticEnergy).To(BeNumerically("~", e0, 0.01*math.Abs(e0)))
	})

	It("should diverge instead of committing NaN forces", func() {
		flaky := &flakyEvaluator{inner: forcefield.NewHarmonic(1, 1), limit: 1}
		v, err := NewVelocityVerlet([]float64{1}, 0.01, flaky, 0)
		Expect(err).NotTo(HaveOccurred())

		err = v.Step(3)
		Expect(err).To(MatchError(md.ErrDiverged))
		Expect(v.State().Step).To(Equal(0))
	})
})
