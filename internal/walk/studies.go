package walk

import (
	"context"
	"fmt"
)

// Grid computes efficiency for every (θ*, w) with θ*_crw = θ*_brw = θ*.
// The result is indexed [theta][weight][step]. Cell k is seeded Seed+k*Workers.
func (w *Walker) Grid(ctx context.Context, base Params, thetas, weights []float64) ([][][]float64, error) {
	out := make([][][]float64, len(thetas))
	for i, th := range thetas {
		out[i] = make([][]float64, len(weights))
		for j, wt := range weights {
			p := base
			p.ThetaCRW, p.ThetaBRW, p.Weight = th, th, wt

			eff, err := w.efficiency(ctx, p, w.cellSeed(i*len(weights)+j))
			if err != nil {
				return nil, fmt.Errorf("grid theta=%g w=%g: %w", th, wt, err)
			}
			out[i][j] = eff
			w.logger().Info("grid cell", "theta", th, "w", wt, "final_efficiency", eff[len(eff)-1])
		}
	}
	return out, nil
}

// Realizations repeats base with different realization counts.
func (w *Walker) Realizations(ctx context.Context, base Params, counts []int) ([][]float64, error) {
	out := make([][]float64, len(counts))
	for i, n := range counts {
		p := base
		p.Realizations = n
		eff, err := w.efficiency(ctx, p, w.cellSeed(i))
		if err != nil {
			return nil, fmt.Errorf("realizations=%d: %w", n, err)
		}
		out[i] = eff
		w.logger().Info("realizations", "count", n, "final_efficiency", eff[len(eff)-1])
	}
	return out, nil
}

type WeightScan struct {
	Weights    []float64
	Efficiency [][]float64 // [weight][step]

	// BestWeight maximises the final-step efficiency.
	BestWeight    float64
	BestIndex     int
	// MaxEfficiency is the largest efficiency at any weight and step.
	MaxEfficiency float64
}

// BestWeight scans the bias weight and picks the most efficient one.
func (w *Walker) BestWeight(ctx context.Context, base Params, weights []float64) (*WeightScan, error) {
	if len(weights) == 0 {
		return nil, fmt.Errorf("walk: no weights to scan")
	}
	scan := &WeightScan{
		Weights:    append([]float64(nil), weights...),
		Efficiency: make([][]float64, len(weights)),
	}

	bestFinal := 0.0
	for i, wt := range weights {
		p := base
		p.Weight = wt
		eff, err := w.efficiency(ctx, p, w.cellSeed(i))
		if err != nil {
			return nil, fmt.Errorf("weight=%g: %w", wt, err)
		}
		scan.Efficiency[i] = eff

		final := eff[len(eff)-1]
		if i == 0 || final > bestFinal {
			bestFinal = final
			scan.BestIndex = i
		}
		for _, e := range eff {
			if e > scan.MaxEfficiency {
				scan.MaxEfficiency = e
			}
		}
	}
	scan.BestWeight = weights[scan.BestIndex]
	w.logger().Info("weight scan", "best_weight", scan.BestWeight, "max_efficiency", scan.MaxEfficiency)
	return scan, nil
}

// cellSeed keeps the per-worker seeds of different studies disjoint.
func (w *Walker) cellSeed(k int) int64 {
	n := w.Workers
	if n < 1 {
		n = 1
	}
	return w.Seed + int64(k*n)
}
