// Package walk simulates 2D biased correlated random walks (BCRW) and
// their navigational efficiency.
//
// Every step mixes a correlated heading (previous heading plus uniform
// turning noise of half-width ThetaCRW) with a biased heading (uniform
// noise of half-width ThetaBRW around the +x axis):
//
//	X[t] = X[t-1] + v*(w*cos(θ_brw) + (1-w)*cos(θ_crw))
//	Y[t] = Y[t-1] + v*(w*sin(θ_brw) + (1-w)*sin(θ_crw))
//
// The new heading is the direction of the step. Navigational efficiency
// at step t is the mean net displacement along x divided by v*t.
package walk

import (
	"context"
	"errors"
	"io"
	"math"
	"math/rand"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/polymd/internal/md"
)

type Params struct {
	Steps        int
	Realizations int
	Velocity     float64
	ThetaCRW     float64
	ThetaBRW     float64
	Weight       float64 // bias weight w in [0, 1]
}

func (p Params) Validate() error {
	var errs []error
	if p.Steps < 2 {
		errs = append(errs, &md.ConfigError{Field: "steps", Value: p.Steps, Reason: "must be >= 2"})
	}
	if p.Realizations <= 0 {
		errs = append(errs, &md.ConfigError{Field: "realizations", Value: p.Realizations, Reason: "must be > 0"})
	}
	if p.Velocity <= 0 {
		errs = append(errs, &md.ConfigError{Field: "velocity", Value: p.Velocity, Reason: "must be > 0"})
	}
	if p.Weight < 0 || p.Weight > 1 {
		errs = append(errs, &md.ConfigError{Field: "weight", Value: p.Weight, Reason: "must be in [0, 1]"})
	}
	if p.ThetaCRW < 0 || p.ThetaBRW < 0 {
		errs = append(errs, &md.ConfigError{Field: "theta", Value: math.Min(p.ThetaCRW, p.ThetaBRW), Reason: "must be >= 0"})
	}
	return errors.Join(errs...)
}

// Walker runs walks with a fixed worker count and seed. Results are
// reproducible for equal (Seed, Workers).
type Walker struct {
	Workers int
	Seed    int64
	Logger  *log.Logger
}

func (w *Walker) logger() *log.Logger {
	if w.Logger == nil {
		return log.New(io.Discard)
	}
	return w.Logger
}

func (w *Walker) workers(realizations int) int {
	n := w.Workers
	if n < 1 {
		n = 1
	}
	if n > realizations {
		n = realizations
	}
	return n
}

// Efficiency returns the navigational efficiency at every step;
// element 0 is always 0.
func (w *Walker) Efficiency(ctx context.Context, p Params) ([]float64, error) {
	return w.efficiency(ctx, p, w.Seed)
}

func (w *Walker) efficiency(ctx context.Context, p Params, seed int64) ([]float64, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	workers := w.workers(p.Realizations)
	chunk := (p.Realizations + workers - 1) / workers
	partial := make([][]float64, workers)

	g, gctx := errgroup.WithContext(ctx)
	for k := 0; k < workers; k++ {
		start := k * chunk
		end := min(start+chunk, p.Realizations)
		partial[k] = make([]float64, p.Steps)
		if start >= end {
			continue
		}
		rng := rand.New(rand.NewSource(seed + int64(k)))
		g.Go(func() error {
			return walkChunk(gctx, p, end-start, rng, partial[k])
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	eff := make([]float64, p.Steps)
	for t := 1; t < p.Steps; t++ {
		sum := 0.0
		for k := range partial {
			sum += partial[k][t]
		}
		eff[t] = sum / float64(p.Realizations) / (p.Velocity * float64(t))
	}
	return eff, nil
}

// walkChunk advances n realizations for every step and adds their net
// x displacement into sums[t].
func walkChunk(ctx context.Context, p Params, n int, rng *rand.Rand, sums []float64) error {
	x := make([]float64, n)
	y := make([]float64, n)
	theta := make([]float64, n)

	for t := 1; t < p.Steps; t++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		for r := 0; r < n; r++ {
			crw := theta[r] + p.ThetaCRW*2*(rng.Float64()-0.5)
			brw := p.ThetaBRW * 2 * (rng.Float64() - 0.5)

			dx := p.Velocity * (p.Weight*math.Cos(brw) + (1-p.Weight)*math.Cos(crw))
			dy := p.Velocity * (p.Weight*math.Sin(brw) + (1-p.Weight)*math.Sin(crw))
			x[r] += dx
			y[r] += dy
			theta[r] = math.Atan2(dy, dx)

			sums[t] += x[r]
		}
	}
	return nil
}
