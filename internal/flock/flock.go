// Package flock simulates 2D boids in a periodic box.
//
// Every boid adds four terms to its velocity each step: cohesion
// c1*Σr, separation -c2*Σr/|r|², alignment c3*Σv/N (capped at VLimit)
// and Gaussian noise of scale c4. Repellants add a separation term
// scaled by RepellantStrength. The speed is capped at VLimit and the
// boid moves by its velocity. Boids are updated in order, each one
// seeing the already moved positions of the boids before it.
package flock

import (
	"errors"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/polymd/internal/md"
)

const (
	DefaultN          = 100
	DefaultBoxSize    = 200.0
	DefaultSpread     = 10.0
	DefaultCohesion   = 1e-5
	DefaultSeparation = 0.01
	DefaultAlignment  = 1.0
	DefaultNoise      = 0.2
	DefaultVLimit     = 1.0
)

type Params struct {
	N          int
	Repellants int
	Box        Box
	Start      r2.Vec  // mean initial position
	P          float64 // spread of initial positions
	V          float64 // spread of initial velocities

	Cohesion          float64 // c1
	Separation        float64 // c2
	Alignment         float64 // c3
	Noise             float64 // c4
	VLimit            float64
	RepellantStrength float64
}

func DefaultParams() Params {
	return Params{
		N:                 DefaultN,
		Box:               Box{Width: DefaultBoxSize, Height: DefaultBoxSize},
		P:                 DefaultSpread,
		V:                 DefaultSpread,
		Cohesion:          DefaultCohesion,
		Separation:        DefaultSeparation,
		Alignment:         DefaultAlignment,
		Noise:             DefaultNoise,
		VLimit:            DefaultVLimit,
		RepellantStrength: 1,
	}
}

func (p Params) Validate() error {
	var errs []error
	if p.N < 1 {
		errs = append(errs, &md.ConfigError{Field: "n", Value: p.N, Reason: "need at least one boid"})
	}
	if p.Repellants < 0 {
		errs = append(errs, &md.ConfigError{Field: "repellants", Value: p.Repellants, Reason: "must be >= 0"})
	}
	if p.Box.Width <= 0 || p.Box.Height <= 0 {
		errs = append(errs, &md.ConfigError{Field: "box", Value: p.Box, Reason: "width and height must be > 0"})
	}
	if p.VLimit <= 0 {
		errs = append(errs, &md.ConfigError{Field: "vlimit", Value: p.VLimit, Reason: "must be > 0"})
	}
	if p.P < 0 || p.V < 0 || p.Noise < 0 {
		errs = append(errs, &md.ConfigError{Field: "spread", Value: math.Min(p.P, math.Min(p.V, p.Noise)), Reason: "spreads and noise must be >= 0"})
	}
	return errors.Join(errs...)
}

// Box is a periodic rectangle around Center.
type Box struct {
	Center        r2.Vec
	Width, Height float64
}

// Wrap folds a position that left the box by less than one box length
// back inside.
func (b Box) Wrap(x r2.Vec) r2.Vec {
	return r2.Add(b.Center, b.MinImage(r2.Sub(x, b.Center)))
}

// MinImage folds a separation onto its nearest periodic image.
func (b Box) MinImage(d r2.Vec) r2.Vec {
	return r2.Vec{X: fold(d.X, b.Width), Y: fold(d.Y, b.Height)}
}

func fold(x, size float64) float64 {
	if 2*x > size {
		return x - size
	}
	if 2*x < -size {
		return x + size
	}
	return x
}

type Boid struct {
	Pos, Vel r2.Vec
}

// Flock is one realization. It is not safe for concurrent use.
type Flock struct {
	Boids      []Boid
	Repellants []r2.Vec

	p   Params
	rng *rand.Rand
}

// New places boids around p.Start with Gaussian spread and repellants
// uniformly in the box.
func New(p Params, rng *rand.Rand) (*Flock, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	f := &Flock{
		Boids:      make([]Boid, p.N),
		Repellants: make([]r2.Vec, p.Repellants),
		p:          p,
		rng:        rng,
	}
	for i := range f.Boids {
		f.Boids[i] = Boid{
			Pos: r2.Add(p.Start, r2.Scale(p.P, gauss(rng))),
			Vel: r2.Scale(p.V, gauss(rng)),
		}
	}
	for i := range f.Repellants {
		f.Repellants[i] = r2.Vec{
			X: p.Box.Center.X + p.Box.Width*(rng.Float64()-0.5),
			Y: p.Box.Center.Y + p.Box.Height*(rng.Float64()-0.5),
		}
	}
	return f, nil
}

func gauss(rng *rand.Rand) r2.Vec {
	return r2.Vec{X: rng.NormFloat64(), Y: rng.NormFloat64()}
}

func (f *Flock) Params() Params { return f.p }

// Step updates every boid once.
func (f *Flock) Step() {
	for i := range f.Boids {
		f.update(i)
	}
}

func (f *Flock) update(i int) {
	p := f.p
	self := &f.Boids[i]

	var cohesion, separation, heading r2.Vec
	noise := r2.Scale(p.Noise, gauss(f.rng))
	for j := range f.Boids {
		other := f.Boids[j]
		// the heading term includes the boid itself
		heading = r2.Add(heading, other.Vel)
		if j == i {
			continue
		}
		r := r2.Sub(other.Pos, self.Pos)
		if r2.Norm2(r) == 0 {
			continue
		}
		r = p.Box.MinImage(r)
		cohesion = r2.Add(cohesion, r)
		separation = r2.Sub(separation, r2.Scale(1/r2.Norm2(r), r))
	}
	for _, rp := range f.Repellants {
		r := p.Box.MinImage(r2.Sub(rp, self.Pos))
		if r2.Norm2(r) == 0 {
			continue
		}
		separation = r2.Sub(separation, r2.Scale(p.RepellantStrength/r2.Norm2(r), r))
	}

	heading = limit(r2.Scale(p.Alignment/float64(p.N), heading), p.VLimit)
	dv := r2.Add(r2.Add(r2.Scale(p.Cohesion, cohesion), r2.Scale(p.Separation, separation)), r2.Add(heading, noise))
	self.Vel = limit(r2.Add(self.Vel, dv), p.VLimit)
	self.Pos = p.Box.Wrap(r2.Add(self.Pos, self.Vel))
}

func limit(v r2.Vec, vmax float64) r2.Vec {
	if n := r2.Norm(v); n > vmax {
		return r2.Scale(vmax/n, v)
	}
	return v
}
