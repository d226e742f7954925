package md

import (
	"errors"
	"fmt"
	"runtime"

	"gonum.org/v1/gonum/spatial/r2"
)

// InitialConfiguration lays n particles on the x axis spaced by minSep,
// at x_i = minSep*i - minSep*n/2.
func InitialConfiguration(minSep float64, n int) []r2.Vec {
	x := make([]r2.Vec, n)
	for i := range x {
		x[i].X = minSep*float64(i) - (minSep * float64(n) / 2)
	}
	return x
}

// Step is the outcome of one integrator tick.
type Step struct {
	Positions []r2.Vec
	Pairs     []Pair // LJ pairs, reused by the next step
	Forces    Forces
}

type engineOptions struct {
	workers int
	minRows int
}

// Option configures an Engine.
type Option func(*engineOptions)

// WithWorkers splits the non-bonded pass across n goroutines.
// n <= 0 uses GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *engineOptions) {
		if n <= 0 {
			n = runtime.GOMAXPROCS(0)
		}
		o.workers = n
	}
}

// WithMinRows sets the smallest row chunk handed to one worker.
func WithMinRows(n int) Option {
	return func(o *engineOptions) { o.minRows = n }
}

// Engine advances a chain of fixed size under one parameter set.
type Engine struct {
	n      int
	params Params
	acc    *Accumulator
	integ  SteepestDescent
}

func NewEngine(n int, p Params, noise Noise, opts ...Option) (*Engine, error) {
	if err := errors.Join(ValidateN(n), p.Validate()); err != nil {
		return nil, err
	}
	if noise == nil && p.Temperature != 0 {
		return nil, &ConfigError{Field: "noise", Value: nil, Reason: "required when temperature > 0"}
	}

	o := engineOptions{workers: 1, minRows: 8}
	for _, opt := range opts {
		opt(&o)
	}

	var nonBonded Enumerator = NonBonded{Cutoff: p.CutoffLJ}
	if o.workers > 1 {
		nonBonded = &ParallelNonBonded{Cutoff: p.CutoffLJ, Workers: o.workers, MinRows: o.minRows}
	}

	return &Engine{
		n:      n,
		params: p,
		acc: NewAccumulator(
			Term{Enumerator: nonBonded, Model: NewLennardJones(p)},
			Term{Enumerator: Bonded{}, Model: NewSpring(p)},
		),
		integ: SteepestDescent{Dt: p.Dt, Temperature: p.Temperature, Noise: noise},
	}, nil
}

func (e *Engine) N() int         { return e.n }
func (e *Engine) Params() Params { return e.params }

// Forces evaluates the net force on every particle of x.
func (e *Engine) Forces(x []r2.Vec) (Forces, []Pair, error) {
	if len(x) != e.n {
		return Forces{}, nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(x), e.n)
	}
	f, pairs, err := e.acc.Accumulate(x)
	if err != nil {
		return Forces{}, nil, err
	}
	return f, pairs[0], nil
}

// Step computes forces on x and returns the advanced configuration.
// x is not modified.
func (e *Engine) Step(x []r2.Vec) (Step, error) {
	f, pairs, err := e.Forces(x)
	if err != nil {
		return Step{}, err
	}
	return Step{
		Positions: e.integ.Step(x, f.Net),
		Pairs:     pairs,
		Forces:    f,
	}, nil
}
