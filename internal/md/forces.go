package md

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// LJForce is the Lennard-Jones force on the second particle of a pair
// separated by r: 24*eps*(2|r|^-14 - |r|^-8) * r. Undefined at r = 0.
func LJForce(r r2.Vec, epsilon float64) r2.Vec {
	inv2 := 1 / r2.Norm2(r)
	inv8 := inv2 * inv2 * inv2 * inv2
	inv14 := inv8 * inv2 * inv2 * inv2
	return r2.Scale(24*epsilon*(2*inv14-inv8), r)
}

// SpringForce is the harmonic bond force on the second particle of a pair
// separated by r: -k*(|r| - minSep) * r/|r|. Undefined at r = 0.
func SpringForce(r r2.Vec, k, minSep float64) r2.Vec {
	d := r2.Norm(r)
	return r2.Scale(-k*(d-minSep)/d, r)
}

// ForceModel maps a pair to the force acting on its J particle.
type ForceModel interface {
	Name() string
	Force(p Pair) (r2.Vec, error)
}

type guard struct {
	mode Guard
	min  float64
}

// displacement returns the separation a model should be evaluated at.
func (g guard) displacement(model string, p Pair) (r2.Vec, error) {
	d := r2.Norm(p.D)
	if d >= g.min {
		return p.D, nil
	}
	if g.mode == GuardError {
		return r2.Vec{}, &DomainError{Model: model, I: p.I, J: p.J, Distance: d}
	}
	if d == 0 {
		return r2.Vec{X: g.min}, nil
	}
	return r2.Scale(g.min/d, p.D), nil
}

// LennardJones is the non-bonded force model.
type LennardJones struct {
	Epsilon float64
	guard   guard
}

func NewLennardJones(p Params) *LennardJones {
	return &LennardJones{Epsilon: p.EpsilonLJ, guard: guard{mode: p.Guard, min: p.MinDistance}}
}

func (lj *LennardJones) Name() string { return "lj" }

func (lj *LennardJones) Force(p Pair) (r2.Vec, error) {
	if lj.Epsilon == 0 {
		return r2.Vec{}, nil
	}
	r, err := lj.guard.displacement(lj.Name(), p)
	if err != nil {
		return r2.Vec{}, err
	}
	return LJForce(r, lj.Epsilon), nil
}

// Spring is the bonded force model.
type Spring struct {
	Coeff  float64
	MinSep float64
	guard  guard
}

func NewSpring(p Params) *Spring {
	return &Spring{Coeff: p.SpringCoeff, MinSep: p.MinSep, guard: guard{mode: p.Guard, min: p.MinDistance}}
}

func (s *Spring) Name() string { return "spring" }

func (s *Spring) Force(p Pair) (r2.Vec, error) {
	r, err := s.guard.displacement(s.Name(), p)
	if err != nil {
		return r2.Vec{}, err
	}
	return SpringForce(r, s.Coeff, s.MinSep), nil
}
