package md

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// Noise is a source of uniform [0, 1) samples. *rand.Rand satisfies it.
type Noise interface {
	Float64() float64
}

// FixedNoise replays Values in order and wraps around.
type FixedNoise struct {
	Values []float64
	pos    int
}

func (f *FixedNoise) Float64() float64 {
	if len(f.Values) == 0 {
		return 0.5
	}
	v := f.Values[f.pos%len(f.Values)]
	f.pos++
	return v
}

// SteepestDescent is the overdamped position update
//
//	x' = x + dt*F + T*(U - 0.5)
//
// with U drawn per coordinate, particle by particle, x before y.
type SteepestDescent struct {
	Dt          float64
	Temperature float64
	Noise       Noise
}

func (s SteepestDescent) Step(x, f []r2.Vec) []r2.Vec {
	next := make([]r2.Vec, len(x))
	for i := range x {
		next[i] = r2.Add(x[i], r2.Scale(s.Dt, f[i]))
		if s.Temperature != 0 {
			next[i].X += s.Temperature * (s.Noise.Float64() - 0.5)
			next[i].Y += s.Temperature * (s.Noise.Float64() - 0.5)
		}
	}
	return next
}
