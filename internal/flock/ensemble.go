package flock

import (
	"context"
	"fmt"
	"io"
	"math/rand"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

// Series holds one value per step, averaged over realizations.
type Series struct {
	Rg           []float64
	Alignment    []float64
	Polarization []float64
}

func newSeries(steps int) *Series {
	return &Series{
		Rg:           make([]float64, steps),
		Alignment:    make([]float64, steps),
		Polarization: make([]float64, steps),
	}
}

func (s *Series) add(o *Series) {
	for t := range s.Rg {
		s.Rg[t] += o.Rg[t]
		s.Alignment[t] += o.Alignment[t]
		s.Polarization[t] += o.Polarization[t]
	}
}

func (s *Series) scale(k float64) {
	for t := range s.Rg {
		s.Rg[t] *= k
		s.Alignment[t] *= k
		s.Polarization[t] *= k
	}
}

// Final returns the observables after the last step.
func (s *Series) Final() (rg, alignment, polarization float64) {
	n := len(s.Rg)
	if n == 0 {
		return 0, 0, 0
	}
	return s.Rg[n-1], s.Alignment[n-1], s.Polarization[n-1]
}

// Flocker runs independent realizations on up to Workers goroutines.
// Realization k is seeded Seed+k, so results depend on Seed only.
type Flocker struct {
	Workers int
	Seed    int64
	Logger  *log.Logger
}

func (fl *Flocker) logger() *log.Logger {
	if fl.Logger == nil {
		return log.New(io.Discard)
	}
	return fl.Logger
}

// Simulate runs realizations flocks for steps steps and averages the
// observables recorded after every step.
func (fl *Flocker) Simulate(ctx context.Context, p Params, steps, realizations int) (*Series, error) {
	return fl.simulate(ctx, p, steps, realizations, fl.Seed)
}

func (fl *Flocker) simulate(ctx context.Context, p Params, steps, realizations int, seed int64) (*Series, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if steps < 1 {
		return nil, fmt.Errorf("flock: steps must be > 0, got %d", steps)
	}
	if realizations < 1 {
		return nil, fmt.Errorf("flock: realizations must be > 0, got %d", realizations)
	}

	runs := make([]*Series, realizations)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(fl.Workers, 1))
	for k := range runs {
		rng := rand.New(rand.NewSource(seed + int64(k)))
		g.Go(func() error {
			s, err := realize(gctx, p, steps, rng)
			runs[k] = s
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// reduce in realization order so the sum does not depend on scheduling
	out := newSeries(steps)
	for _, s := range runs {
		out.add(s)
	}
	out.scale(1 / float64(realizations))
	return out, nil
}

func realize(ctx context.Context, p Params, steps int, rng *rand.Rand) (*Series, error) {
	f, err := New(p, rng)
	if err != nil {
		return nil, err
	}
	s := newSeries(steps)
	for t := 0; t < steps; t++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		f.Step()
		s.Rg[t] = f.RadiusOfGyration()
		s.Alignment[t] = f.Alignment()
		s.Polarization[t] = f.Polarization()
	}
	return s, nil
}

// NoiseScan repeats Simulate for every noise strength c4. Scan entry i
// uses seeds Seed+i*realizations onward.
func (fl *Flocker) NoiseScan(ctx context.Context, base Params, steps, realizations int, noises []float64) ([]*Series, error) {
	if len(noises) == 0 {
		return nil, fmt.Errorf("flock: no noise values to scan")
	}
	out := make([]*Series, len(noises))
	for i, c4 := range noises {
		p := base
		p.Noise = c4
		s, err := fl.simulate(ctx, p, steps, realizations, fl.Seed+int64(i*realizations))
		if err != nil {
			return nil, fmt.Errorf("noise=%g: %w", c4, err)
		}
		out[i] = s
		rg, align, _ := s.Final()
		fl.logger().Info("noise scan", "noise", c4, "final_rg", rg, "final_alignment", align)
	}
	return out, nil
}
