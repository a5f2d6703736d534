package sim

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"
	"go.uber.org/mock/gomock"

	"github.com/san-kum/mdsim/internal/forcefield"
	"github.com/san-kum/mdsim/internal/integrators"
	"github.com/san-kum/mdsim/internal/md"
)

// countMetric counts the reports it has seen.
type countMetric struct{ n int }

func (c *countMetric) Report(md.Report) error { c.n++; return nil }
func (c *countMetric) Name() string           { return "count" }
func (c *countMetric) Value() float64         { return float64(c.n) }
func (c *countMetric) Reset()                 { c.n = 0 }

func newHarmonicLangevin(n int, seed int64) *integrators.Langevin {
	masses := make([]float64, n)
	for i := range masses {
		masses[i] = 12
	}
	l, err := integrators.NewLangevin(masses,
		md.Parameters{Temperature: 300, Friction: 1, Timestep: 0.002},
		forcefield.NewHarmonic(n, 100), seed)
	Expect(err).NotTo(HaveOccurred())
	Expect(l.SetVelocitiesToTemperature(300)).To(Succeed())
	return l
}

var _ = Describe("Simulation", func() {
	var (
		mockCtrl *gomock.Controller
		logger   zerolog.Logger
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		logger = zerolog.New(GinkgoWriter).Level(zerolog.DebugLevel)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should report after every interval and after the final partial chunk", func() {
		reporter := NewMockReporter(mockCtrl)
		var steps []int
		reporter.EXPECT().Report(gomock.Any()).DoAndReturn(func(r md.Report) error {
			steps = append(steps, r.Step)
			return nil
		}).Times(3)

		s := New(newHarmonicLangevin(4, 1), WithReporters(reporter), WithLogger(logger))
		res, err := s.Run(context.Background(), 250, 100)

		Expect(err).NotTo(HaveOccurred())
		Expect(steps).To(Equal([]int{100, 200, 250}))
		Expect(res.Reports).To(HaveLen(3))
		Expect(res.StepsTaken).To(Equal(250))
		Expect(res.FinalTime).To(BeNumerically("~", 0.5, 1e-12))
		Expect(res.Stopped).To(BeFalse())
	})

	It("should do nothing for zero steps", func() {
		reporter := NewMockReporter(mockCtrl)
		reporter.EXPECT().Report(gomock.Any()).Times(0)

		l := newHarmonicLangevin(2, 1)
		before := l.State()
		res, err := New(l, WithReporters(reporter)).Run(context.Background(), 0, 10)

		Expect(err).NotTo(HaveOccurred())
		Expect(res.Reports).To(BeEmpty())
		Expect(l.State()).To(Equal(before))
	})

	DescribeTable("should reject invalid run parameters",
		func(total, interval int) {
			_, err := New(newHarmonicLangevin(1, 1)).Run(context.Background(), total, interval)
			Expect(err).To(MatchError(md.ErrInvalidParameter))
		},
		Entry("negative total", -1, 10),
		Entry("zero interval", 100, 0),
		Entry("negative interval", 100, -5),
	)

	It("should produce the same reports as stepping the integrator directly", func() {
		direct := newHarmonicLangevin(3, 9)
		Expect(direct.Step(120)).To(Succeed())

		res, err := New(newHarmonicLangevin(3, 9)).Run(context.Background(), 120, 50)
		Expect(err).NotTo(HaveOccurred())

		last, ok := res.Last()
		Expect(ok).To(BeTrue())
		Expect(last).To(Equal(direct.State().Report()))
	})

	Context("reporter errors", func() {
		var (
			broken  *MockReporter
			healthy *MockReporter
		)

		BeforeEach(func() {
			broken = NewMockReporter(mockCtrl)
			healthy = NewMockReporter(mockCtrl)
		})

		It("should log and collect errors in best-effort mode", func() {
			broken.EXPECT().Report(gomock.Any()).Return(errors.New("disk full")).Times(3)
			healthy.EXPECT().Report(gomock.Any()).Return(nil).Times(3)

			s := New(newHarmonicLangevin(2, 1), WithReporters(broken, healthy), WithLogger(logger))
			res, err := s.Run(context.Background(), 300, 100)

			Expect(err).NotTo(HaveOccurred())
			Expect(res.ReporterErrors).To(HaveLen(3))
			Expect(res.StepsTaken).To(Equal(300))

			var rerr *ReporterError
			Expect(errors.As(res.ReporterErrors[0], &rerr)).To(BeTrue())
			Expect(rerr.Step).To(Equal(100))
			Expect(rerr.Reporter).To(BeIdenticalTo(broken))
		})

		It("should abort on the first error in fail-fast mode", func() {
			broken.EXPECT().Report(gomock.Any()).Return(errors.New("disk full")).Times(1)
			healthy.EXPECT().Report(gomock.Any()).Times(0)

			s := New(newHarmonicLangevin(2, 1), WithReporters(broken, healthy), WithFailFast(true))
			res, err := s.Run(context.Background(), 300, 100)

			var rerr *ReporterError
			Expect(errors.As(err, &rerr)).To(BeTrue())
			Expect(err).To(MatchError(ContainSubstring("disk full")))
			Expect(res.Reports).To(HaveLen(1))
			Expect(res.StepsTaken).To(Equal(100))
		})
	})

	Context("stopping", func() {
		It("should stop cleanly when a reporter asks to", func() {
			reporter := NewMockReporter(mockCtrl)
			gomock.InOrder(
				reporter.EXPECT().Report(gomock.Any()).Return(nil),
				reporter.EXPECT().Report(gomock.Any()).Return(ErrStop),
			)

			res, err := New(newHarmonicLangevin(2, 1), WithReporters(reporter)).
				Run(context.Background(), 1000, 100)

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Stopped).To(BeTrue())
			Expect(res.StopReason).To(Equal("reporter"))
			Expect(res.StepsTaken).To(Equal(200))
			Expect(res.ReporterErrors).To(BeEmpty())
		})

		It("should stop when the stop condition holds", func() {
			stop := func(r md.Report) bool { return r.Step >= 300 }

			res, err := New(newHarmonicLangevin(2, 1), WithStopCondition(stop)).
				Run(context.Background(), 1000, 100)

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Stopped).To(BeTrue())
			Expect(res.StopReason).To(Equal("condition"))
			Expect(res.Reports).To(HaveLen(3))
		})

		It("should not start when the context is already cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			res, err := New(newHarmonicLangevin(2, 1)).Run(ctx, 500, 100)
			Expect(err).To(MatchError(context.Canceled))
			Expect(res.StepsTaken).To(Equal(0))
			Expect(res.Stopped).To(BeTrue())
		})

		It("should honour cancellation only at the next report boundary", func() {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			reporter := NewMockReporter(mockCtrl)
			reporter.EXPECT().Report(gomock.Any()).DoAndReturn(func(md.Report) error {
				cancel()
				return nil
			}).Times(1)

			res, err := New(newHarmonicLangevin(2, 1), WithReporters(reporter)).Run(ctx, 500, 100)
			Expect(err).To(MatchError(context.Canceled))
			Expect(res.StepsTaken).To(Equal(100))
			Expect(res.Reports).To(HaveLen(1))
		})
	})

	Context("divergence", func() {
		It("should return the partial result and the diverged error", func() {
			integrator := NewMockIntegrator(mockCtrl)
			state := md.State{Masses: []float64{1}, Positions: make([]md.Vec3, 1), Velocities: make([]md.Vec3, 1)}
			integrator.EXPECT().State().DoAndReturn(func() md.State { return state.Clone() }).AnyTimes()

			diverged := &md.DivergedError{Step: 137, Time: 0.274, Wrapped: md.ErrEvaluation}
			gomock.InOrder(
				integrator.EXPECT().Step(100).DoAndReturn(func(n int) error {
					state.Step += n
					state.Time += float64(n) * 0.002
					return nil
				}),
				integrator.EXPECT().Step(100).DoAndReturn(func(int) error {
					state.Step = 137
					state.Time = 0.274
					return diverged
				}),
			)

			reporter := NewMockReporter(mockCtrl)
			reporter.EXPECT().Report(gomock.Any()).Return(nil).Times(1)

			res, err := New(integrator, WithReporters(reporter), WithLogger(logger)).
				Run(context.Background(), 500, 100)

			Expect(err).To(MatchError(md.ErrDiverged))
			Expect(err).To(MatchError(md.ErrEvaluation))
			Expect(res.Reports).To(HaveLen(1))
			Expect(res.StepsTaken).To(Equal(137))
			Expect(res.FinalTime).To(Equal(0.274))
		})

		It("should surface real NaN forces as divergence", func() {
			eval := NewMockForceEvaluator(mockCtrl)
			eval.EXPECT().Evaluate(gomock.Any()).Return(0.0, []md.Vec3{{}}, nil).Times(3)
			eval.EXPECT().Evaluate(gomock.Any()).Return(math.NaN(), []md.Vec3{{}}, nil).AnyTimes()

			l, err := integrators.NewLangevin([]float64{1},
				md.Parameters{Temperature: 300, Friction: 1, Timestep: 0.001}, eval, 1)
			Expect(err).NotTo(HaveOccurred())

			res, err := New(l).Run(context.Background(), 10, 1)
			var diverged *md.DivergedError
			Expect(errors.As(err, &diverged)).To(BeTrue())
			Expect(diverged.Step).To(Equal(2))
			Expect(res.StepsTaken).To(Equal(2))
			Expect(res.Reports).To(HaveLen(2))
		})
	})

	It("should send frames to trajectory reporters at the frame interval", func() {
		traj := NewMockTrajectoryReporter(mockCtrl)
		traj.EXPECT().Report(gomock.Any()).Return(nil).Times(4)
		var frames []md.Frame
		traj.EXPECT().ReportFrame(gomock.Any()).DoAndReturn(func(f md.Frame) error {
			frames = append(frames, f)
			return nil
		}).Times(2)

		_, err := New(newHarmonicLangevin(3, 1), WithReporters(traj), WithFrameInterval(2)).
			Run(context.Background(), 40, 10)

		Expect(err).NotTo(HaveOccurred())
		Expect(frames).To(HaveLen(2))
		Expect(frames[0].Step).To(Equal(20))
		Expect(frames[1].Step).To(Equal(40))
		Expect(frames[1].Positions).To(HaveLen(3))
	})

	It("should collect metric values", func() {
		metric := &countMetric{n: 99}
		s := New(newHarmonicLangevin(2, 1))
		s.AddReporter(metric)

		res, err := s.Run(context.Background(), 50, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Metrics).To(HaveKeyWithValue("count", 5.0))
	})

	It("should minimize positions without touching velocities", func() {
		h := forcefield.NewHarmonic(2, 100)
		h.Center = []md.Vec3{{X: 0.3}, {Y: -0.2}}
		l, err := integrators.NewLangevin([]float64{1, 1},
			md.Parameters{Temperature: 300, Friction: 1, Timestep: 0.001}, h, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(l.SetVelocitiesToTemperature(300)).To(Succeed())
		velocities := l.State().Velocities

		res, err := New(l).Minimize(context.Background(), 100, 1e-3)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.FinalEnergy).To(BeNumerically("<", res.InitialEnergy))

		state := l.State()
		Expect(state.Velocities).To(Equal(velocities))
		Expect(state.Positions[0].X).To(BeNumerically("~", 0.3, 1e-4))
		Expect(state.Positions[1].Y).To(BeNumerically("~", -0.2, 1e-4))
		Expect(state.Step).To(Equal(0))
	})
})
