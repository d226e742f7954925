package sim_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/polymd/internal/md"
	"github.com/san-kum/polymd/internal/sim"
)

var _ = Describe("Sweep", func() {
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

	Context("over chain length", func() {
		sweep := sim.Sweep{Parameter: sim.ParamN, Values: []float64{6, 4, 3}}

		It("starts every stage from a fresh chain", func() {
			res, err := runner.Sweep(ctx, sweep, params, shortOptions(40))
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Stages).To(HaveLen(3))

			for i, want := range []int{6, 4, 3} {
				Expect(res.Stages[i].Stage.N).To(Equal(want))
				Expect(res.Stages[i].Stage.Index).To(Equal(i))
				Expect(res.Stages[i].Final).To(HaveLen(want))
			}

			rg, rms := res.Series()
			r, c := rg.Dims()
			Expect(r).To(Equal(3))
			Expect(c).To(Equal(40))
			Expect(rms.At(1, 39)).To(Equal(res.Stages[1].RgRMS[39]))
		})

		It("gives the same result regardless of concurrency", func() {
			serial, err := runner.Sweep(ctx, sweep, params, shortOptions(40))
			Expect(err).NotTo(HaveOccurred())

			concurrent := sweep
			concurrent.Concurrency = 3
			parallel, err := runner.Sweep(ctx, concurrent, params, shortOptions(40))
			Expect(err).NotTo(HaveOccurred())

			for i := range serial.Stages {
				Expect(parallel.Stages[i].Final).To(Equal(serial.Stages[i].Final))
			}
		})

		It("refuses to carry state across chain lengths", func() {
			bad := sweep
			bad.CarryState = true
			_, err := runner.Sweep(ctx, bad, params, shortOptions(10))
			Expect(err).To(MatchError(sim.ErrInvalidSweep))
		})

		It("rejects chains without bonds", func() {
			bad := sim.Sweep{Parameter: sim.ParamN, Values: []float64{1}}
			_, err := runner.Sweep(ctx, bad, params, shortOptions(10))
			Expect(err).To(MatchError(md.ErrInvalidParams))
		})

		It("rejects fractional chain lengths", func() {
			bad := sim.Sweep{Parameter: sim.ParamN, Values: []float64{4, 2.9}}
			res, err := runner.Sweep(ctx, bad, params, shortOptions(10))
			Expect(err).To(MatchError(sim.ErrInvalidSweep))
			Expect(res).To(BeNil())
		})
	})

	Context("over LJ strength", func() {
		sweep := sim.Sweep{Parameter: sim.ParamEpsilon, Values: []float64{1, 0.5, 0}, CarryState: true, N: 7}

		It("carries the final chain into the next stage", func() {
			res, err := runner.Sweep(ctx, sweep, params, shortOptions(30))
			Expect(err).NotTo(HaveOccurred())
			Expect(res.CarryState).To(BeTrue())

			for i, eps := range []float64{1, 0.5, 0} {
				Expect(res.Stages[i].Params.EpsilonLJ).To(Equal(eps))
			}

			// replay stage 1 from stage 0's final chain
			p := params
			p.EpsilonLJ = 0.5
			opt := shortOptions(30)
			opt.Seed++
			replay, err := runner.Run(ctx, res.Stages[1].Stage, res.Stages[0].Final, p, opt)
			Expect(err).NotTo(HaveOccurred())
			Expect(replay.Final).To(Equal(res.Stages[1].Final))
		})

		It("can restart from a fresh chain per stage instead", func() {
			fresh := sweep
			fresh.CarryState = false
			res, err := runner.Sweep(ctx, fresh, params, shortOptions(30))
			Expect(err).NotTo(HaveOccurred())

			p := params
			p.EpsilonLJ = 0.5
			opt := shortOptions(30)
			opt.Seed++
			replay, err := runner.Run(ctx, res.Stages[1].Stage, md.InitialConfiguration(p.MinSep, 7), p, opt)
			Expect(err).NotTo(HaveOccurred())
			Expect(replay.Final).To(Equal(res.Stages[1].Final))
		})

		It("needs a chain length", func() {
			bad := sweep
			bad.N = 0
			_, err := runner.Sweep(ctx, bad, params, shortOptions(10))
			Expect(err).To(MatchError(md.ErrInvalidParams))
		})
	})

	It("rejects unknown parameters", func() {
		_, err := runner.Sweep(ctx, sim.Sweep{Parameter: "dt", Values: []float64{1}}, params, shortOptions(10))
		Expect(err).To(MatchError(sim.ErrInvalidSweep))
	})
})
