package md

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
)

// Term couples an enumerator with the force model evaluated on its pairs.
type Term struct {
	Enumerator Enumerator
	Model      ForceModel
}

// Forces is the per-particle result of one accumulation.
type Forces struct {
	Net    []r2.Vec
	Virial []r2.Vec // component-wise sum of f*d over the particle's pairs
}

// Accumulator sums pair forces of several terms into per-particle slots.
// Terms are applied in order; each pair force f (on J from I) is
// subtracted from I and added to J.
type Accumulator struct {
	terms []Term
	pairs [][]Pair
}

func NewAccumulator(terms ...Term) *Accumulator {
	return &Accumulator{
		terms: terms,
		pairs: make([][]Pair, len(terms)),
	}
}

// Accumulate returns the net forces and, per term, the pairs it used.
// The pair slices are reused by the next call.
func (a *Accumulator) Accumulate(x []r2.Vec) (Forces, [][]Pair, error) {
	f := Forces{
		Net:    make([]r2.Vec, len(x)),
		Virial: make([]r2.Vec, len(x)),
	}

	for t, term := range a.terms {
		a.pairs[t] = term.Enumerator.Pairs(x, a.pairs[t])
		for _, p := range a.pairs[t] {
			force, err := term.Model.Force(p)
			if err != nil {
				return Forces{}, nil, fmt.Errorf("accumulate %s: %w", term.Model.Name(), err)
			}
			f.Net[p.I] = r2.Sub(f.Net[p.I], force)
			f.Net[p.J] = r2.Add(f.Net[p.J], force)

			w := r2.Vec{X: force.X * p.D.X, Y: force.Y * p.D.Y}
			f.Virial[p.I] = r2.Add(f.Virial[p.I], w)
			f.Virial[p.J] = r2.Add(f.Virial[p.J], w)
		}
	}

	return f, a.pairs, nil
}
