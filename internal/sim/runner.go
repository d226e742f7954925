package sim

import (
	"context"
	"io"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/polymd/internal/md"
	"github.com/san-kum/polymd/internal/metrics"
)

type Runner struct {
	logger     *log.Logger
	observers  []Observer
	newMetrics func(p md.Params) []metrics.Metric
}

// New returns a Runner logging to logger; nil discards logs.
func New(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Runner{
		logger: logger,
		newMetrics: func(p md.Params) []metrics.Metric {
			return metrics.Defaults(p.MinSep)
		},
	}
}

func (r *Runner) AddObserver(o Observer) { r.observers = append(r.observers, o) }

// SetMetrics replaces the per-run metric factory. A fresh set is built
// for every run so concurrent stages never share metric state.
func (r *Runner) SetMetrics(fn func(p md.Params) []metrics.Metric) { r.newMetrics = fn }

// Run integrates x0 for opt.Steps steps. x0 is not modified. On
// cancellation the partial result is returned together with ctx.Err().
func (r *Runner) Run(ctx context.Context, stage Stage, x0 []r2.Vec, p md.Params, opt Options) (*Result, error) {
	if err := r.validate(opt); err != nil {
		return nil, err
	}
	stage.N = len(x0)

	var opts []md.Option
	if opt.Workers > 1 {
		opts = append(opts, md.WithWorkers(opt.Workers))
	}
	eng, err := md.NewEngine(len(x0), p, rand.New(rand.NewSource(opt.Seed)), opts...)
	if err != nil {
		return nil, err
	}

	ms := r.newMetrics(p)
	for _, m := range ms {
		m.Reset()
	}

	result := &Result{
		Stage:  stage,
		Params: p,
		Rg:     make([]float64, 0, opt.Steps),
		RgRMS:  make([]float64, 0, opt.Steps),
	}
	logger := r.logger.With("stage", stage.String())
	logger.Debug("run started", "n", len(x0), "steps", opt.Steps, "seed", opt.Seed)

	x := append([]r2.Vec(nil), x0...)
	start := time.Now()
	finish := func() {
		result.Final = x
		result.Metrics = metrics.Collect(ms)
		result.Elapsed = time.Since(start)
	}

	for step := 0; step < opt.Steps; step++ {
		select {
		case <-ctx.Done():
			finish()
			return result, ctx.Err()
		default:
		}

		st, err := eng.Step(x)
		if err != nil {
			finish()
			return result, &SimulationError{Stage: stage, Step: step, Wrapped: err}
		}
		if opt.ValidateState && !md.IsFinite(st.Positions) {
			finish()
			return result, &SimulationError{Stage: stage, Step: step, Wrapped: ErrInvalidState}
		}
		x = st.Positions

		rg := md.RadiusOfGyration(x)
		result.Rg = append(result.Rg, rg)
		result.RgRMS = append(result.RgRMS, md.RadiusOfGyrationRMS(x))
		result.StepsTaken++

		for _, m := range ms {
			m.Observe(st)
		}
		for _, o := range r.observers {
			o.OnStep(stage, step, st)
		}
		if IsPrintStep(step, opt.PrintInterval) {
			logger.Info("progress", "step", step, "radius_of_gyration", rg)
		}
	}

	finish()
	logger.Debug("run finished", "elapsed", result.Elapsed, "final_rg", lastOr(result.Rg, 0))
	return result, nil
}

func (r *Runner) validate(opt Options) error {
	if opt.Steps <= 0 {
		return &md.ConfigError{Field: "steps", Value: opt.Steps, Reason: "must be > 0"}
	}
	if opt.PrintInterval < 0 {
		return &md.ConfigError{Field: "print_interval", Value: opt.PrintInterval, Reason: "must be >= 0"}
	}
	return nil
}

func lastOr(s []float64, def float64) float64 {
	if len(s) == 0 {
		return def
	}
	return s[len(s)-1]
}
