package storage

import (
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/polymd/internal/config"
	"github.com/san-kum/polymd/internal/flock"
	"github.com/san-kum/polymd/internal/sim"
)

// SaveSweep writes both radius of gyration series and the run metadata.
func (r *Run) SaveSweep(cfg *config.Config, res *sim.SweepResult, frames int) error {
	meta := &RunMetadata{
		Name:       cfg.Name,
		Kind:       KindPolymer,
		Seed:       cfg.Run.Seed,
		Parameter:  res.Parameter,
		Values:     res.Values,
		CarryState: res.CarryState,
		Frames:     frames,
		Config:     cfg,
	}
	for _, st := range res.Stages {
		if st == nil {
			continue
		}
		meta.Stages = append(meta.Stages, StageMetadata{
			Index:     st.Stage.Index,
			Parameter: st.Stage.Parameter,
			Value:     st.Stage.Value,
			N:         st.Stage.N,
			Seed:      cfg.Run.Seed + int64(st.Stage.Index),
			Steps:     st.StepsTaken,
			Elapsed:   st.Elapsed.Seconds(),
			Metrics:   st.Metrics,
		})
	}

	if rg, rms := res.Series(); rg != nil {
		if err := r.WriteSeries(SeriesRg, rg); err != nil {
			return err
		}
		if err := r.WriteSeries(SeriesRgRMS, rms); err != nil {
			return err
		}
		meta.Series = []string{SeriesRg, SeriesRgRMS}
	}
	return r.WriteMetadata(meta)
}

// SaveRun stores a standalone run as a one-stage sweep.
func (r *Run) SaveRun(cfg *config.Config, res *sim.Result, frames int) error {
	return r.SaveSweep(cfg, &sim.SweepResult{Stages: []*sim.Result{res}}, frames)
}

// SaveWalk stores walk efficiencies as a [curves, steps] matrix. Grid
// studies flatten [theta][weight] row-major into the curve axis.
func (r *Run) SaveWalk(cfg *config.Config, study string, curves [][]float64, metrics map[string]float64) error {
	meta := &RunMetadata{
		Name:    cfg.Name,
		Kind:    KindWalk,
		Study:   study,
		Seed:    cfg.Walk.Seed,
		Metrics: metrics,
		Config:  cfg,
	}
	if m := toDense(curves); m != nil {
		if err := r.WriteSeries(SeriesEfficiency, m); err != nil {
			return err
		}
		meta.Series = []string{SeriesEfficiency}
	}
	return r.WriteMetadata(meta)
}

// SaveFlock stores each observable as a [curves, steps] matrix, one
// curve per noise value. A single run has one curve and no values.
func (r *Run) SaveFlock(cfg *config.Config, noises []float64, curves []*flock.Series) error {
	meta := &RunMetadata{
		Name:    cfg.Name,
		Kind:    KindFlock,
		Seed:    cfg.Flock.Seed,
		Values:  noises,
		Metrics: Metrics{},
		Config:  cfg,
	}
	if len(noises) > 0 {
		meta.Parameter = "noise"
	}

	rg := make([][]float64, len(curves))
	align := make([][]float64, len(curves))
	polar := make([][]float64, len(curves))
	for i, c := range curves {
		rg[i], align[i], polar[i] = c.Rg, c.Alignment, c.Polarization
	}
	if len(curves) > 0 {
		last := curves[len(curves)-1]
		meta.Metrics["final_rg"], meta.Metrics["final_alignment"], meta.Metrics["final_polarization"] = last.Final()
	}

	for _, s := range []struct {
		name string
		rows [][]float64
	}{
		{SeriesFlockRg, rg},
		{SeriesAlignment, align},
		{SeriesPolarization, polar},
	} {
		m := toDense(s.rows)
		if m == nil {
			continue
		}
		if err := r.WriteSeries(s.name, m); err != nil {
			return err
		}
		meta.Series = append(meta.Series, s.name)
	}
	return r.WriteMetadata(meta)
}

func toDense(rows [][]float64) *mat.Dense {
	cols := 0
	for _, row := range rows {
		cols = max(cols, len(row))
	}
	if len(rows) == 0 || cols == 0 {
		return nil
	}
	m := mat.NewDense(len(rows), cols, nil)
	for i, row := range rows {
		m.SetRow(i, padded(row, cols))
	}
	return m
}

func padded(row []float64, n int) []float64 {
	if len(row) == n {
		return row
	}
	out := make([]float64, n)
	copy(out, row)
	return out
}
