package flock

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// CenterOfMass is the periodic center of mass: each axis is mapped onto
// a circle and the mean angle is mapped back into the box.
func (f *Flock) CenterOfMass() r2.Vec {
	b := f.p.Box
	return r2.Vec{
		X: circularMean(f.Boids, b.Center.X, b.Width, func(v r2.Vec) float64 { return v.X }),
		Y: circularMean(f.Boids, b.Center.Y, b.Height, func(v r2.Vec) float64 { return v.Y }),
	}
}

func circularMean(boids []Boid, center, size float64, axis func(r2.Vec) float64) float64 {
	var c, s float64
	for _, bd := range boids {
		theta := 2 * math.Pi * ((axis(bd.Pos)-center)/size + 0.5)
		c += math.Cos(theta)
		s += math.Sin(theta)
	}
	n := float64(len(boids))
	theta := math.Atan2(-s/n, -c/n) + math.Pi
	return center + size*(theta/(2*math.Pi)-0.5)
}

// RadiusOfGyration is the RMS minimum-image distance to CenterOfMass.
func (f *Flock) RadiusOfGyration() float64 {
	com := f.CenterOfMass()
	sum := 0.0
	for _, bd := range f.Boids {
		sum += r2.Norm2(f.p.Box.MinImage(r2.Sub(com, bd.Pos)))
	}
	return math.Sqrt(sum / float64(len(f.Boids)))
}

// Polarization is |Σ v̂|/N, 1 for a perfectly aligned flock. Boids at
// rest count as heading nowhere.
func (f *Flock) Polarization() float64 {
	return r2.Norm(f.headingSum()) / float64(len(f.Boids))
}

// Alignment is the mean cosine between the headings of distinct boids,
// Σ_{i≠j} v̂i·v̂j / N².
func (f *Flock) Alignment() float64 {
	moving := 0
	for _, bd := range f.Boids {
		if r2.Norm2(bd.Vel) > 0 {
			moving++
		}
	}
	n := float64(len(f.Boids))
	return (r2.Norm2(f.headingSum()) - float64(moving)) / (n * n)
}

func (f *Flock) headingSum() r2.Vec {
	var sum r2.Vec
	for _, bd := range f.Boids {
		if r2.Norm2(bd.Vel) > 0 {
			sum = r2.Add(sum, r2.Unit(bd.Vel))
		}
	}
	return sum
}
