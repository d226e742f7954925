package md

import (
	"errors"
	"fmt"
	"strings"
)

// Guard selects how force models treat pairs closer than MinDistance.
type Guard int

const (
	// GuardClamp evaluates the force at MinDistance along the pair direction.
	GuardClamp Guard = iota
	// GuardError fails the step with a *DomainError.
	GuardError
)

func (g Guard) String() string {
	switch g {
	case GuardClamp:
		return "clamp"
	case GuardError:
		return "error"
	}
	return fmt.Sprintf("guard(%d)", int(g))
}

// ParseGuard maps "clamp" or "error" to a Guard.
func ParseGuard(s string) (Guard, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "clamp":
		return GuardClamp, nil
	case "error", "fail":
		return GuardError, nil
	}
	return 0, &ConfigError{Field: "guard", Value: s, Reason: "want clamp or error"}
}

const (
	DefaultEpsilonLJ   = 1.0
	DefaultCutoffLJ    = 2.5
	DefaultSpringCoeff = 5.0
	DefaultMinSep      = 1.122
	DefaultTemperature = 0.05
	DefaultDt          = 0.0005
	DefaultMinDistance = 0.1
)

// Params is the immutable force field and integrator configuration of one run.
type Params struct {
	EpsilonLJ   float64 // LJ strength, 0 disables LJ
	CutoffLJ    float64 // LJ interaction range
	SpringCoeff float64 // bond stiffness
	MinSep      float64 // natural bond length and initial spacing
	Temperature float64 // amplitude of the uniform kick
	Dt          float64 // timestep

	Guard       Guard
	MinDistance float64
}

// DefaultParams returns the parameters used by the polymer assignment.
func DefaultParams() Params {
	return Params{
		EpsilonLJ:   DefaultEpsilonLJ,
		CutoffLJ:    DefaultCutoffLJ,
		SpringCoeff: DefaultSpringCoeff,
		MinSep:      DefaultMinSep,
		Temperature: DefaultTemperature,
		Dt:          DefaultDt,
		Guard:       GuardClamp,
		MinDistance: DefaultMinDistance,
	}
}

// Validate returns every rejected field joined into one error.
// Each joined error is a *ConfigError.
func (p Params) Validate() error {
	var errs []error
	if p.EpsilonLJ < 0 {
		errs = append(errs, &ConfigError{Field: "epsilon_lj", Value: p.EpsilonLJ, Reason: "must be >= 0"})
	}
	if p.CutoffLJ <= 0 {
		errs = append(errs, &ConfigError{Field: "cutoff_lj", Value: p.CutoffLJ, Reason: "must be > 0"})
	}
	if p.SpringCoeff < 0 {
		errs = append(errs, &ConfigError{Field: "spring_coeff", Value: p.SpringCoeff, Reason: "must be >= 0"})
	}
	if p.MinSep <= 0 {
		errs = append(errs, &ConfigError{Field: "min_sep", Value: p.MinSep, Reason: "must be > 0"})
	}
	if p.Temperature < 0 {
		errs = append(errs, &ConfigError{Field: "temperature", Value: p.Temperature, Reason: "must be >= 0"})
	}
	if p.Dt <= 0 {
		errs = append(errs, &ConfigError{Field: "dt", Value: p.Dt, Reason: "must be > 0"})
	}
	if p.Guard != GuardClamp && p.Guard != GuardError {
		errs = append(errs, &ConfigError{Field: "guard", Value: p.Guard, Reason: "unknown guard"})
	}
	if p.MinDistance <= 0 {
		errs = append(errs, &ConfigError{Field: "min_distance", Value: p.MinDistance, Reason: "must be > 0"})
	}
	return errors.Join(errs...)
}

// ValidateN rejects particle counts that have no bonded topology.
func ValidateN(n int) error {
	if n < 2 {
		return &ConfigError{Field: "n", Value: n, Reason: "a chain needs at least 2 particles"}
	}
	return nil
}
