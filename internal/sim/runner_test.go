package sim_test

import (
	"context"
	"math"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/polymd/internal/md"
	"github.com/san-kum/polymd/internal/sim"
)

func shortOptions(steps int) sim.Options {
	opt := sim.DefaultOptions()
	opt.Steps = steps
	opt.PrintInterval = 0
	return opt
}

var _ = Describe("Runner", func() {
	var (
		runner *sim.Runner
		params md.Params
		ctx    context.Context
	)

	BeforeEach(func() {
		runner = sim.New(nil)
		params = md.DefaultParams()
		ctx = context.Background()
	})

	It("records one radius of gyration per step for both definitions", func() {
		x0 := md.InitialConfiguration(params.MinSep, 8)
		res, err := runner.Run(ctx, sim.Stage{}, x0, params, shortOptions(250))
		Expect(err).NotTo(HaveOccurred())

		Expect(res.Rg).To(HaveLen(250))
		Expect(res.RgRMS).To(HaveLen(250))
		Expect(res.StepsTaken).To(Equal(250))
		Expect(res.Stage.N).To(Equal(8))
		Expect(res.Rg[249]).To(Equal(md.RadiusOfGyration(res.Final)))
		Expect(res.RgRMS[249]).To(Equal(md.RadiusOfGyrationRMS(res.Final)))
		Expect(res.Metrics).To(HaveKey("mean_rg"))
	})

	It("leaves the initial chain untouched", func() {
		x0 := md.InitialConfiguration(params.MinSep, 5)
		orig := append([]r2.Vec(nil), x0...)
		_, err := runner.Run(ctx, sim.Stage{}, x0, params, shortOptions(10))
		Expect(err).NotTo(HaveOccurred())
		Expect(x0).To(Equal(orig))
	})

	It("is reproducible for a fixed seed", func() {
		x0 := md.InitialConfiguration(params.MinSep, 6)
		a, err := runner.Run(ctx, sim.Stage{}, x0, params, shortOptions(100))
		Expect(err).NotTo(HaveOccurred())
		b, err := runner.Run(ctx, sim.Stage{}, x0, params, shortOptions(100))
		Expect(err).NotTo(HaveOccurred())
		Expect(a.Final).To(Equal(b.Final))

		opt := shortOptions(100)
		opt.Seed = 99
		c, err := runner.Run(ctx, sim.Stage{}, x0, params, opt)
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Final).NotTo(Equal(a.Final))
	})

	It("notifies observers on every step", func() {
		var steps []int
		runner.AddObserver(sim.ObserverFunc(func(_ sim.Stage, step int, st md.Step) {
			steps = append(steps, step)
			Expect(st.Positions).To(HaveLen(4))
		}))
		_, err := runner.Run(ctx, sim.Stage{}, md.InitialConfiguration(params.MinSep, 4), params, shortOptions(7))
		Expect(err).NotTo(HaveOccurred())
		Expect(steps).To(Equal([]int{0, 1, 2, 3, 4, 5, 6}))
	})

	It("returns the partial result on cancellation", func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		res, err := runner.Run(cctx, sim.Stage{}, md.InitialConfiguration(params.MinSep, 4), params, shortOptions(10))
		Expect(err).To(MatchError(context.Canceled))
		Expect(res.StepsTaken).To(BeZero())
		Expect(res.Final).To(HaveLen(4))
	})

	It("rejects a non-positive step count", func() {
		_, err := runner.Run(ctx, sim.Stage{}, md.InitialConfiguration(params.MinSep, 4), params, shortOptions(0))
		Expect(err).To(MatchError(md.ErrInvalidParams))
	})

	It("stops on a diverging state", func() {
		params.Dt = 1e308
		params.Temperature = 0
		x0 := []r2.Vec{{X: 0}, {X: 3}}
		res, err := runner.Run(ctx, sim.Stage{}, x0, params, shortOptions(10))

		Expect(err).To(MatchError(sim.ErrInvalidState))
		var se *sim.SimulationError
		Expect(err).To(BeAssignableToTypeOf(se))
		Expect(res.StepsTaken).To(BeZero())
	})

	It("fails fast on coincident particles with the error guard", func() {
		params.Guard = md.GuardError
		x0 := []r2.Vec{{X: 1}, {X: 1}, {X: 2}}
		_, err := runner.Run(ctx, sim.Stage{}, x0, params, shortOptions(10))
		Expect(err).To(MatchError(md.ErrZeroDistance))
	})

	It("completes the long N=25 run without non-finite values", func() {
		if testing.Short() {
			Skip("long run")
		}
		opt := sim.DefaultOptions()
		opt.PrintInterval = 0
		res, err := runner.Run(ctx, sim.Stage{}, md.InitialConfiguration(params.MinSep, 25), params, opt)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Rg).To(HaveLen(200000))
		for i := range res.Rg {
			if math.IsNaN(res.Rg[i]) || math.IsInf(res.Rg[i], 0) || math.IsNaN(res.RgRMS[i]) || math.IsInf(res.RgRMS[i], 0) {
				Fail("non-finite radius of gyration")
			}
		}
	})
})

var _ = DescribeTable("print cadence",
	func(step, interval int, want bool) {
		Expect(sim.IsPrintStep(step, interval)).To(Equal(want))
	},
	Entry("first step is skipped", 0, 500, false),
	Entry("step one prints", 1, 500, true),
	Entry("step 501 prints", 501, 500, true),
	Entry("step 500 does not", 500, 500, false),
	Entry("disabled interval", 1, 0, false),
)

var _ = Describe("FrameNumber", func() {
	It("numbers print steps from one", func() {
		Expect(sim.FrameNumber(1, 500)).To(Equal(1))
		Expect(sim.FrameNumber(501, 500)).To(Equal(2))
		Expect(sim.FrameNumber(1001, 500)).To(Equal(3))
	})
})
