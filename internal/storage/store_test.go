package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/san-kum/polymd/internal/config"
	"github.com/san-kum/polymd/internal/flock"
	"github.com/san-kum/polymd/internal/md"
	"github.com/san-kum/polymd/internal/sim"
	"github.com/san-kum/polymd/internal/viz"
)

func sweepResult() *sim.SweepResult {
	return &sim.SweepResult{
		Parameter: sim.ParamN,
		Values:    []float64{3, 4},
		Stages: []*sim.Result{
			{
				Stage:      sim.Stage{Index: 0, Parameter: sim.ParamN, Value: 3, N: 3},
				Rg:         []float64{1, 2, 3},
				RgRMS:      []float64{0.5, 0.6, 0.7},
				StepsTaken: 3,
				Elapsed:    time.Second,
				Metrics:    map[string]float64{"mean_rg": 2},
			},
			{
				Stage:      sim.Stage{Index: 1, Parameter: sim.ParamN, Value: 4, N: 4},
				Rg:         []float64{4, 5},
				RgRMS:      []float64{0.8, 0.9},
				StepsTaken: 2,
				Metrics:    map[string]float64{"mean_rg": 4.5},
			},
		},
	}
}

func TestSaveSweepLoad(t *testing.T) {
	st := New(t.TempDir())
	run, err := st.Create("vary-n")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.Name = "vary-n"
	cfg.Run.Seed = 42
	if err := run.SaveSweep(cfg, sweepResult(), 0); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	meta, err := st.Load(run.ID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Kind != KindPolymer || meta.Parameter != sim.ParamN {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if len(meta.Stages) != 2 || meta.Stages[1].Seed != 43 {
		t.Errorf("expected stage seeds seed+index, got %+v", meta.Stages)
	}
	if meta.Stages[0].Metrics["mean_rg"] != 2 {
		t.Errorf("expected stage metrics to survive, got %v", meta.Stages[0].Metrics)
	}
	if meta.Config == nil || meta.Config.Run.Seed != 42 {
		t.Error("expected config in metadata")
	}

	rg, err := st.LoadSeries(run.ID, SeriesRg)
	if err != nil {
		t.Fatalf("load series failed: %v", err)
	}
	r, c := rg.Dims()
	if r != 2 || c != 3 {
		t.Fatalf("expected 2x3 series, got %dx%d", r, c)
	}
	if rg.At(0, 2) != 3 || rg.At(1, 1) != 5 || rg.At(1, 2) != 0 {
		t.Errorf("unexpected series values %v", rg.RawMatrix().Data)
	}

	rms, err := st.LoadSeries(run.ID, SeriesRgRMS)
	if err != nil {
		t.Fatalf("load rms failed: %v", err)
	}
	if rms.At(1, 0) != 0.8 {
		t.Errorf("expected 0.8, got %f", rms.At(1, 0))
	}
}

func TestSaveWalk(t *testing.T) {
	st := New(t.TempDir())
	run, err := st.Create("part-2")
	if err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultConfig()
	curves := [][]float64{{0, 0.5, 0.6}, {0, 0.7, 0.8}}
	if err := run.SaveWalk(cfg, "weights", curves, map[string]float64{"best_weight": 1}); err != nil {
		t.Fatalf("save walk failed: %v", err)
	}

	meta, err := st.Load(run.ID)
	if err != nil {
		t.Fatal(err)
	}
	if meta.Kind != KindWalk || meta.Study != "weights" || meta.Metrics["best_weight"] != 1 {
		t.Errorf("unexpected metadata %+v", meta)
	}

	eff, err := st.LoadSeries(run.ID, SeriesEfficiency)
	if err != nil {
		t.Fatal(err)
	}
	if eff.At(1, 2) != 0.8 {
		t.Errorf("expected 0.8, got %f", eff.At(1, 2))
	}
}

func TestCreateUniqueIDs(t *testing.T) {
	st := New(t.TempDir())
	a, err := st.Create("run")
	if err != nil {
		t.Fatal(err)
	}
	b, err := st.Create("run")
	if err != nil {
		t.Fatal(err)
	}
	if a.ID == b.ID {
		t.Errorf("expected distinct ids, both %s", a.ID)
	}
}

func TestListAndMissing(t *testing.T) {
	tmp := t.TempDir()
	st := New(filepath.Join(tmp, "missing"))
	runs, err := st.List()
	if err != nil || len(runs) != 0 {
		t.Errorf("expected empty list for missing dir, got %v %v", runs, err)
	}

	st = New(tmp)
	for _, name := range []string{"a", "b"} {
		run, err := st.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if err := run.WriteMetadata(&RunMetadata{Name: name}); err != nil {
			t.Fatal(err)
		}
	}
	// a directory without metadata is skipped
	if err := os.Mkdir(filepath.Join(tmp, "junk"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(runs))
	}

	if _, err := st.Load("nope"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
	if _, err := st.LoadSeries("nope", SeriesRg); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
}

func TestFrameWriter(t *testing.T) {
	st := New(t.TempDir())
	run, err := st.Create("frames")
	if err != nil {
		t.Fatal(err)
	}
	fw := run.Frames(2, viz.DefaultSVGOptions())

	x := md.InitialConfiguration(1.122, 4)
	stage := sim.Stage{Index: 1, N: 4}
	for step := 0; step < 6; step++ {
		fw.OnStep(stage, step, md.Step{Positions: x})
	}
	if fw.Err() != nil {
		t.Fatalf("frame write failed: %v", fw.Err())
	}

	// print steps 1, 3, 5 become frames 1, 2, 3
	if fw.Count() != 3 {
		t.Errorf("expected 3 frames, got %d", fw.Count())
	}
	for _, name := range []string{"000001.svg", "000002.svg", "000003.svg"} {
		if _, err := os.Stat(filepath.Join(run.Dir, "frames", "stage_001", name)); err != nil {
			t.Errorf("missing frame %s: %v", name, err)
		}
	}
}

func TestExportJSON(t *testing.T) {
	st := New(t.TempDir())
	run, err := st.Create("export")
	if err != nil {
		t.Fatal(err)
	}
	if err := run.SaveSweep(config.DefaultConfig(), sweepResult(), 0); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := st.ExportJSON(&buf, run.ID); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if data.Metadata.ID != run.ID {
		t.Errorf("expected id %s, got %s", run.ID, data.Metadata.ID)
	}
	rg := data.Series[SeriesRg]
	if len(rg) != 2 || rg[1][1] != 5 {
		t.Errorf("unexpected exported series %v", rg)
	}
}

func TestSaveRunDiverged(t *testing.T) {
	p := md.DefaultParams()
	p.Dt = 1e308
	opt := sim.DefaultOptions()
	opt.Steps = 5
	opt.PrintInterval = 0
	opt.ValidateState = false

	x0 := md.InitialConfiguration(p.MinSep, 6)
	res, err := sim.New(nil).Run(context.Background(), sim.Stage{N: 6}, x0, p, opt)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if res.Metrics["invalid_states"] == 0 {
		t.Fatalf("expected the run to diverge, metrics %v", res.Metrics)
	}

	st := New(t.TempDir())
	run, err := st.Create("diverged")
	if err != nil {
		t.Fatal(err)
	}
	if err := run.SaveRun(config.DefaultConfig(), res, 0); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runs, err := st.List()
	if err != nil || len(runs) != 1 {
		t.Fatalf("expected the run to be listed, got %v %v", runs, err)
	}
	got := runs[0].Stages[0].Metrics
	if got["invalid_states"] != res.Metrics["invalid_states"] {
		t.Errorf("expected %v invalid states, got %v", res.Metrics["invalid_states"], got["invalid_states"])
	}
	if !math.IsNaN(got["mean_rg"]) && !math.IsInf(got["mean_rg"], 0) {
		t.Errorf("expected non-finite mean_rg, got %v", got["mean_rg"])
	}

	var buf bytes.Buffer
	if err := st.ExportJSON(&buf, run.ID); err != nil {
		t.Fatalf("export failed: %v", err)
	}
}

func TestMetricsNonFiniteJSON(t *testing.T) {
	in := Metrics{"nan": math.NaN(), "pos": math.Inf(1), "neg": math.Inf(-1), "x": 1.5}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var out Metrics
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !math.IsNaN(out["nan"]) || !math.IsInf(out["pos"], 1) || !math.IsInf(out["neg"], -1) || out["x"] != 1.5 {
		t.Errorf("unexpected round trip %v from %s", out, data)
	}

	var row Row
	if err := json.Unmarshal([]byte(`[1, "NaN", "-Inf"]`), &row); err != nil {
		t.Fatal(err)
	}
	if len(row) != 3 || row[0] != 1 || !math.IsNaN(row[1]) || !math.IsInf(row[2], -1) {
		t.Errorf("unexpected row %v", row)
	}
}

func TestWriteMetadataKeepsPreviousOnFailure(t *testing.T) {
	st := New(t.TempDir())
	run, err := st.Create("atomic")
	if err != nil {
		t.Fatal(err)
	}
	if err := run.WriteMetadata(&RunMetadata{Name: "first"}); err != nil {
		t.Fatal(err)
	}

	bad := config.DefaultConfig()
	bad.ForceField.Temperature = math.NaN()
	if err := run.WriteMetadata(&RunMetadata{Name: "second", Config: bad}); err == nil {
		t.Fatal("expected encoding a NaN config to fail")
	}

	meta, err := st.Load(run.ID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Name != "first" {
		t.Errorf("expected previous metadata, got %q", meta.Name)
	}
	entries, err := os.ReadDir(run.Dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only %s, got %v", metadataFile, entries)
	}
}

func TestCreateConfinesName(t *testing.T) {
	tmp := t.TempDir()
	st := New(filepath.Join(tmp, "runs"))
	for _, name := range []string{"../escape", "a/b", "..", ""} {
		run, err := st.Create(name)
		if err != nil {
			t.Fatalf("create %q failed: %v", name, err)
		}
		if filepath.Dir(run.Dir) != filepath.Join(tmp, "runs") {
			t.Errorf("name %q produced %s outside the store", name, run.Dir)
		}
		if err := run.WriteMetadata(&RunMetadata{Name: name}); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 4 {
		t.Errorf("expected 4 listed runs, got %d", len(runs))
	}
}

func TestSaveFlock(t *testing.T) {
	st := New(t.TempDir())
	run, err := st.Create("noise-scan")
	if err != nil {
		t.Fatal(err)
	}
	curves := []*flock.Series{
		{Rg: []float64{3, 2}, Alignment: []float64{0.1, 0.9}, Polarization: []float64{0.3, 0.95}},
		{Rg: []float64{3, 4}, Alignment: []float64{0.1, 0.2}, Polarization: []float64{0.3, 0.4}},
	}
	if err := run.SaveFlock(config.DefaultConfig(), []float64{0, 1}, curves); err != nil {
		t.Fatalf("save flock failed: %v", err)
	}

	meta, err := st.Load(run.ID)
	if err != nil {
		t.Fatal(err)
	}
	if meta.Kind != KindFlock || meta.Parameter != "noise" || len(meta.Series) != 3 {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if meta.Metrics["final_alignment"] != 0.2 {
		t.Errorf("expected final alignment of the last curve, got %v", meta.Metrics)
	}

	align, err := st.LoadSeries(run.ID, SeriesAlignment)
	if err != nil {
		t.Fatal(err)
	}
	if align.At(0, 1) != 0.9 {
		t.Errorf("expected 0.9, got %f", align.At(0, 1))
	}
}
