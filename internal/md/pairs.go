package md

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// Pair is an interacting pair with I < J and D = x[J] - x[I].
type Pair struct {
	I, J int
	D    r2.Vec
}

// Enumerator lists the interacting pairs of a configuration.
// Implementations append to dst[:0] and return the result.
type Enumerator interface {
	Pairs(x []r2.Vec, dst []Pair) []Pair
}

// NonBonded selects every pair closer than Cutoff.
type NonBonded struct {
	Cutoff float64
}

func (nb NonBonded) Pairs(x []r2.Vec, dst []Pair) []Pair {
	dst = dst[:0]
	for i := 0; i < len(x)-1; i++ {
		dst = nb.row(x, i, dst)
	}
	return dst
}

func (nb NonBonded) row(x []r2.Vec, i int, dst []Pair) []Pair {
	// compare squared norms, ‖d‖ < c iff ‖d‖² < c² for c > 0
	c2 := nb.Cutoff * nb.Cutoff
	for j := i + 1; j < len(x); j++ {
		d := r2.Sub(x[j], x[i])
		if r2.Norm2(d) < c2 {
			dst = append(dst, Pair{I: i, J: j, D: d})
		}
	}
	return dst
}

// Bonded selects the chain neighbours (i, i+1) regardless of distance.
type Bonded struct{}

func (Bonded) Pairs(x []r2.Vec, dst []Pair) []Pair {
	dst = dst[:0]
	for i := 0; i < len(x)-1; i++ {
		dst = append(dst, Pair{I: i, J: i + 1, D: r2.Sub(x[i+1], x[i])})
	}
	return dst
}

// ParallelNonBonded is NonBonded with rows split across workers. Row i
// has len(x)-1-i candidates, so chunks are sized by candidate count
// rather than row count. Pairs come back in the same order as NonBonded.
type ParallelNonBonded struct {
	Cutoff  float64
	Workers int
	MinRows int

	chunks [][]Pair
}

func (p *ParallelNonBonded) Pairs(x []r2.Vec, dst []Pair) []Pair {
	nb := NonBonded{Cutoff: p.Cutoff}
	rows := len(x) - 1
	if rows <= 0 {
		return dst[:0]
	}
	workers := chunkCount(rows, p.MinRows, p.Workers)
	if workers <= 1 {
		return nb.Pairs(x, dst)
	}
	for len(p.chunks) < workers {
		p.chunks = append(p.chunks, nil)
	}

	parallelRanges(triangularBounds(rows, workers), func(w, start, end int) {
		buf := p.chunks[w][:0]
		for i := start; i < end; i++ {
			buf = nb.row(x, i, buf)
		}
		p.chunks[w] = buf
	})

	dst = dst[:0]
	for w := 0; w < workers; w++ {
		dst = append(dst, p.chunks[w]...)
	}
	return dst
}
