package sim

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/polymd/internal/md"
)

// Swept parameters.
const (
	ParamN       = "n"
	ParamEpsilon = "epsilon"
)

// Sweep runs one stage per value of Parameter.
//
// With CarryState the final chain of stage k is the initial chain of
// stage k+1 and stages run in order. Without it every stage starts from
// InitialConfiguration and up to Concurrency stages run at once.
type Sweep struct {
	Parameter   string
	Values      []float64
	CarryState  bool
	N           int // chain length when Parameter is not n
	Concurrency int
}

func (s Sweep) validate() error {
	if len(s.Values) == 0 {
		return fmt.Errorf("%w: no values", ErrInvalidSweep)
	}
	switch s.Parameter {
	case ParamN:
		if s.CarryState {
			return fmt.Errorf("%w: cannot carry state across chain lengths", ErrInvalidSweep)
		}
		for _, v := range s.Values {
			if v != float64(int(v)) {
				return fmt.Errorf("%w: chain length %v is not an integer", ErrInvalidSweep, v)
			}
			if err := md.ValidateN(int(v)); err != nil {
				return err
			}
		}
	case ParamEpsilon:
		return md.ValidateN(s.N)
	default:
		return fmt.Errorf("%w: unknown parameter %q", ErrInvalidSweep, s.Parameter)
	}
	return nil
}

func (s Sweep) stage(i int, base md.Params) (Stage, md.Params) {
	v := s.Values[i]
	st := Stage{Index: i, Parameter: s.Parameter, Value: v, N: s.N}
	p := base
	switch s.Parameter {
	case ParamN:
		st.N = int(v)
	case ParamEpsilon:
		p.EpsilonLJ = v
	}
	return st, p
}

type SweepResult struct {
	Parameter  string
	Values     []float64
	CarryState bool
	Stages     []*Result
}

// Series returns both radius of gyration streams as [stages, steps]
// matrices. Steps missing from an interrupted stage stay zero.
func (sr *SweepResult) Series() (rg, rms *mat.Dense) {
	cols := 0
	for _, st := range sr.Stages {
		if st != nil && len(st.Rg) > cols {
			cols = len(st.Rg)
		}
	}
	if cols == 0 || len(sr.Stages) == 0 {
		return nil, nil
	}
	rg = mat.NewDense(len(sr.Stages), cols, nil)
	rms = mat.NewDense(len(sr.Stages), cols, nil)
	for i, st := range sr.Stages {
		if st == nil {
			continue
		}
		for j := range st.Rg {
			rg.Set(i, j, st.Rg[j])
			rms.Set(i, j, st.RgRMS[j])
		}
	}
	return rg, rms
}

// Sweep executes every stage of sw. Stages are seeded opt.Seed+index.
func (r *Runner) Sweep(ctx context.Context, sw Sweep, base md.Params, opt Options) (*SweepResult, error) {
	if err := sw.validate(); err != nil {
		return nil, err
	}
	res := &SweepResult{
		Parameter:  sw.Parameter,
		Values:     append([]float64(nil), sw.Values...),
		CarryState: sw.CarryState,
		Stages:     make([]*Result, len(sw.Values)),
	}
	r.logger.Info("sweep started", "parameter", sw.Parameter, "values", sw.Values, "carry_state", sw.CarryState)

	if sw.CarryState {
		return res, r.sweepCarry(ctx, sw, base, opt, res)
	}
	return res, r.sweepFresh(ctx, sw, base, opt, res)
}

func (r *Runner) sweepCarry(ctx context.Context, sw Sweep, base md.Params, opt Options, res *SweepResult) error {
	var x []r2.Vec
	for i := range sw.Values {
		stage, p := sw.stage(i, base)
		if x == nil {
			x = md.InitialConfiguration(p.MinSep, stage.N)
		}
		o := opt
		o.Seed = opt.Seed + int64(i)

		out, err := r.Run(ctx, stage, x, p, o)
		res.Stages[i] = out
		if err != nil {
			return err
		}
		x = out.Final
	}
	return nil
}

func (r *Runner) sweepFresh(ctx context.Context, sw Sweep, base md.Params, opt Options, res *SweepResult) error {
	g, gctx := errgroup.WithContext(ctx)
	limit := sw.Concurrency
	if limit < 1 {
		limit = 1
	}
	g.SetLimit(limit)

	for i := range sw.Values {
		stage, p := sw.stage(i, base)
		o := opt
		o.Seed = opt.Seed + int64(i)

		g.Go(func() error {
			x := md.InitialConfiguration(p.MinSep, stage.N)
			out, err := r.Run(gctx, stage, x, p, o)
			res.Stages[stage.Index] = out
			return err
		})
	}
	return g.Wait()
}
