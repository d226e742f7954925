package sim

import (
	"errors"
	"fmt"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/polymd/internal/md"
)

var (
	// ErrInvalidState indicates a configuration holding NaN or Inf.
	ErrInvalidState = errors.New("sim: invalid state (NaN or Inf detected)")

	// ErrInvalidSweep indicates a sweep that cannot be executed.
	ErrInvalidSweep = errors.New("sim: invalid sweep")
)

// Stage identifies one run inside a sweep. Parameter is empty for a
// standalone run.
type Stage struct {
	Index     int
	Parameter string
	Value     float64
	N         int
}

func (s Stage) String() string {
	if s.Parameter == "" {
		return fmt.Sprintf("run(N=%d)", s.N)
	}
	return fmt.Sprintf("%s=%g", s.Parameter, s.Value)
}

// Observer is notified after every step. Observers shared by a sweep
// with Concurrency > 1 are called from several goroutines.
type Observer interface {
	OnStep(stage Stage, step int, st md.Step)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(stage Stage, step int, st md.Step)

func (f ObserverFunc) OnStep(stage Stage, step int, st md.Step) { f(stage, step, st) }

type Options struct {
	Steps         int
	Seed          int64
	PrintInterval int
	Workers       int // non-bonded workers per engine
	ValidateState bool
}

func DefaultOptions() Options {
	return Options{
		Steps:         200000,
		Seed:          1,
		PrintInterval: 500,
		Workers:       1,
		ValidateState: true,
	}
}

type Result struct {
	Stage      Stage
	Params     md.Params
	Rg         []float64
	RgRMS      []float64
	Final      []r2.Vec
	Metrics    map[string]float64
	StepsTaken int
	Elapsed    time.Duration
}

// SimulationError wraps a failure with the step that produced it.
type SimulationError struct {
	Stage   Stage
	Step    int
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("%s step %d: %v", e.Stage, e.Step, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}

// IsPrintStep reports whether step is on the print cadence,
// (step-1) mod interval == 0.
func IsPrintStep(step, interval int) bool {
	return interval > 0 && step >= 1 && (step-1)%interval == 0
}

// FrameNumber is the snapshot index of a print step, starting at 1.
func FrameNumber(step, interval int) int {
	return (step-1)/interval + 1
}
