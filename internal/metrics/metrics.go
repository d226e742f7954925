// Package metrics holds run-level observers of a polymer simulation.
// Each metric folds the per-step engine output into one scalar that is
// stored with the run metadata.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/polymd/internal/md"
)

type Metric interface {
	Name() string
	Observe(st md.Step)
	Value() float64
	Reset()
}

// Defaults returns the metrics recorded for every run.
func Defaults(minSep float64) []Metric {
	return []Metric{
		NewMeanRg(),
		NewMeanBondLength(),
		NewMaxBondStretch(minSep),
		NewVirial(),
		NewPairCount(),
		NewValidity(),
	}
}

// Collect maps metric names to their current values.
func Collect(ms []Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}

type mean struct {
	sum     float64
	samples int
}

func (m *mean) add(v float64) {
	m.sum += v
	m.samples++
}

func (m *mean) value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *mean) reset() { *m = mean{} }

// MeanRg is the time average of the pairwise radius of gyration.
type MeanRg struct{ m mean }

func NewMeanRg() *MeanRg { return &MeanRg{} }

func (r *MeanRg) Name() string       { return "mean_rg" }
func (r *MeanRg) Observe(st md.Step) { r.m.add(md.RadiusOfGyration(st.Positions)) }
func (r *MeanRg) Value() float64     { return r.m.value() }
func (r *MeanRg) Reset()             { r.m.reset() }

// MeanBondLength is the time average of the chain's mean bond length.
type MeanBondLength struct{ m mean }

func NewMeanBondLength() *MeanBondLength { return &MeanBondLength{} }

func (b *MeanBondLength) Name() string       { return "mean_bond_length" }
func (b *MeanBondLength) Observe(st md.Step) { b.m.add(md.MeanBondLength(st.Positions)) }
func (b *MeanBondLength) Value() float64     { return b.m.value() }
func (b *MeanBondLength) Reset()             { b.m.reset() }

// MaxBondStretch is the largest |bond - minSep| seen over the run.
type MaxBondStretch struct {
	minSep float64
	max    float64
}

func NewMaxBondStretch(minSep float64) *MaxBondStretch {
	return &MaxBondStretch{minSep: minSep}
}

func (b *MaxBondStretch) Name() string { return "max_bond_stretch" }

func (b *MaxBondStretch) Observe(st md.Step) {
	x := st.Positions
	for i := 0; i < len(x)-1; i++ {
		d := math.Abs(r2.Norm(r2.Sub(x[i+1], x[i])) - b.minSep)
		b.max = math.Max(b.max, d)
	}
}

func (b *MaxBondStretch) Value() float64 { return b.max }
func (b *MaxBondStretch) Reset()         { b.max = 0 }

// Virial is the time average of the summed per-particle virial.
type Virial struct{ m mean }

func NewVirial() *Virial { return &Virial{} }

func (v *Virial) Name() string { return "mean_virial" }

func (v *Virial) Observe(st md.Step) {
	total := 0.0
	for _, w := range st.Forces.Virial {
		total += w.X + w.Y
	}
	v.m.add(total)
}

func (v *Virial) Value() float64 { return v.m.value() }
func (v *Virial) Reset()         { v.m.reset() }

// PairCount is the mean number of LJ pairs inside the cutoff.
type PairCount struct{ m mean }

func NewPairCount() *PairCount { return &PairCount{} }

func (p *PairCount) Name() string       { return "mean_lj_pairs" }
func (p *PairCount) Observe(st md.Step) { p.m.add(float64(len(st.Pairs))) }
func (p *PairCount) Value() float64     { return p.m.value() }
func (p *PairCount) Reset()             { p.m.reset() }

// Validity counts steps whose positions held NaN or Inf. It only moves
// when state validation is disabled in the runner.
type Validity struct{ bad int }

func NewValidity() *Validity { return &Validity{} }

func (v *Validity) Name() string { return "invalid_states" }

func (v *Validity) Observe(st md.Step) {
	if !md.IsFinite(st.Positions) {
		v.bad++
	}
}

func (v *Validity) Value() float64 { return float64(v.bad) }
func (v *Validity) Reset()         { v.bad = 0 }
