// Package sim drives polymer runs and parameter sweeps.
//
// A [Runner] owns the run loop around an [md.Engine]: it records both
// radius of gyration streams per step, folds [metrics.Metric] values,
// checks state validity, logs progress at the print interval and
// notifies [Observer]s. [Runner.Sweep] runs one stage per swept value,
// either from a fresh chain per stage or carrying the final chain of one
// stage into the next.
package sim
