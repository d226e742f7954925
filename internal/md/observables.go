package md

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// RadiusOfGyration is the pairwise form (1/(2N²)) Σ_{i≠j} |x_i - x_j|².
// The value is not square-rooted.
func RadiusOfGyration(x []r2.Vec) float64 {
	n := len(x)
	if n == 0 {
		return 0
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i != j {
				sum += r2.Norm2(r2.Sub(x[i], x[j]))
			}
		}
	}
	return sum / (2 * float64(n) * float64(n))
}

// RadiusOfGyrationRMS is the root mean square distance from the centre of mass.
func RadiusOfGyrationRMS(x []r2.Vec) float64 {
	n := len(x)
	if n == 0 {
		return 0
	}
	c := CenterOfMass(x)
	sum := 0.0
	for i := range x {
		sum += r2.Norm2(r2.Sub(c, x[i]))
	}
	return math.Sqrt(sum / float64(n))
}

// CenterOfMass is the mean position; all particles have unit mass.
func CenterOfMass(x []r2.Vec) r2.Vec {
	var c r2.Vec
	if len(x) == 0 {
		return c
	}
	for i := range x {
		c = r2.Add(c, x[i])
	}
	return r2.Scale(1/float64(len(x)), c)
}

// MeanBondLength averages |x[i+1] - x[i]| over the chain.
func MeanBondLength(x []r2.Vec) float64 {
	if len(x) < 2 {
		return 0
	}
	sum := 0.0
	for i := 0; i < len(x)-1; i++ {
		sum += r2.Norm(r2.Sub(x[i+1], x[i]))
	}
	return sum / float64(len(x)-1)
}

// IsFinite reports whether every coordinate is neither NaN nor Inf.
func IsFinite(x []r2.Vec) bool {
	for _, v := range x {
		if math.IsNaN(v.X) || math.IsInf(v.X, 0) || math.IsNaN(v.Y) || math.IsInf(v.Y, 0) {
			return false
		}
	}
	return true
}
