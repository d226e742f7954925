package md

import (
	"errors"
	"fmt"
)

var (
	// ErrZeroDistance indicates a pair closer than the guard distance
	// while the guard is set to fail.
	ErrZeroDistance = errors.New("md: pair distance below guard minimum")

	// ErrInvalidParams indicates a force field or engine parameter out of range.
	ErrInvalidParams = errors.New("md: invalid parameters")

	// ErrDimensionMismatch indicates a position slice whose length differs
	// from the engine's particle count.
	ErrDimensionMismatch = errors.New("md: position count does not match engine")
)

// DomainError reports a pair whose separation makes a force model undefined.
type DomainError struct {
	Model    string
	I, J     int
	Distance float64
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("md: %s force undefined for pair (%d,%d) at distance %g", e.Model, e.I, e.J, e.Distance)
}

func (e *DomainError) Unwrap() error {
	return ErrZeroDistance
}

// ConfigError reports a rejected parameter.
type ConfigError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("md: invalid %s=%v: %s", e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidParams
}
