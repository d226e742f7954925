package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/polymd/internal/config"
	"github.com/san-kum/polymd/internal/storage"
	"github.com/san-kum/polymd/internal/viz"
	"github.com/san-kum/polymd/internal/walk"
)

// Walk studies, recorded in run metadata.
const (
	studyEfficiency   = "efficiency"
	studyGrid         = "grid"
	studyRealizations = "realizations"
	studyWeights      = "weights"
)

func applyWalkFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	w := &cfg.Walk
	if f.Changed("steps") {
		w.Steps = walkSteps
	}
	if f.Changed("realizations") {
		w.Realizations = realizations
	}
	if f.Changed("velocity") {
		w.Velocity = velocity
	}
	if f.Changed("theta-crw") {
		w.ThetaCRW = thetaCRW
	}
	if f.Changed("theta-brw") {
		w.ThetaBRW = thetaBRW
	}
	if f.Changed("weight") {
		w.Weight = weight
	}
	if f.Changed("seed") {
		w.Seed = seed
	}
	if f.Changed("workers") {
		w.Workers = workers
	}
}

func walkParams(w config.WalkConfig) walk.Params {
	return walk.Params{
		Steps:        w.Steps,
		Realizations: w.Realizations,
		Velocity:     w.Velocity,
		ThetaCRW:     w.ThetaCRW,
		ThetaBRW:     w.ThetaBRW,
		Weight:       w.Weight,
	}
}

func prepareWalk(cmd *cobra.Command, fallback string) (*config.Config, *walk.Walker, error) {
	cfg, err := loadConfig("walk", fallback)
	if err != nil {
		return nil, nil, err
	}
	applyWalkFlags(cmd, cfg)
	if configFile == "" && preset == "" && fallback == "" {
		cfg.Name = "walk"
	}
	if err := cfg.ValidateWalk(); err != nil {
		return nil, nil, err
	}
	logger, err := newLogger()
	if err != nil {
		return nil, nil, err
	}
	w := &walk.Walker{Workers: cfg.Walk.Workers, Seed: cfg.Walk.Seed, Logger: logger}
	return cfg, w, nil
}

// runWalk picks the study from the config: a theta x weight grid, a
// realization count study, or a single efficiency curve.
func runWalk(cmd *cobra.Command, args []string) error {
	cfg, walker, err := prepareWalk(cmd, "")
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	base := walkParams(cfg.Walk)

	var (
		study  string
		curves [][]float64
		labels []string
	)
	switch {
	case len(cfg.Walk.Thetas) > 0 && len(cfg.Walk.Weights) > 0:
		study = studyGrid
		grid, err := walker.Grid(ctx, base, cfg.Walk.Thetas, cfg.Walk.Weights)
		if err != nil {
			return err
		}
		for i, th := range cfg.Walk.Thetas {
			for j, wt := range cfg.Walk.Weights {
				curves = append(curves, grid[i][j])
				labels = append(labels, fmt.Sprintf("θ*=%g w=%g", th, wt))
			}
		}
	case len(cfg.Walk.RealizationCounts) > 0:
		study = studyRealizations
		curves, err = walker.Realizations(ctx, base, cfg.Walk.RealizationCounts)
		if err != nil {
			return err
		}
		for _, n := range cfg.Walk.RealizationCounts {
			labels = append(labels, fmt.Sprintf("realizations=%d", n))
		}
	default:
		study = studyEfficiency
		eff, err := walker.Efficiency(ctx, base)
		if err != nil {
			return err
		}
		curves = [][]float64{eff}
		labels = []string{fmt.Sprintf("w=%g", base.Weight)}
	}

	run, err := storage.New(dataDir).Create(cfg.Name)
	if err != nil {
		return err
	}
	finals := make(map[string]float64, len(curves))
	for i, c := range curves {
		finals[labels[i]] = last(c)
	}
	if err := run.SaveWalk(cfg, study, curves, finals); err != nil {
		return err
	}

	fmt.Printf("run id: %s\n", run.ID)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CURVE\tFINAL EFFICIENCY")
	for i, c := range curves {
		fmt.Fprintf(w, "%s\t%.4f\n", labels[i], last(c))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	idx := sampleRows(len(curves), maxCurves)
	fmt.Println()
	fmt.Println(viz.PlotSeries(pick(curves, idx), pick(labels, idx), viz.PlotOptions{Height: 12, Width: 80, Caption: "navigational efficiency"}))
	return nil
}

func runWalkWeights(cmd *cobra.Command, args []string) error {
	cfg, walker, err := prepareWalk(cmd, "part-2")
	if err != nil {
		return err
	}
	if len(cfg.Walk.Weights) == 0 {
		return fmt.Errorf("no weights to scan: set walk.weights")
	}

	scan, err := walker.BestWeight(cmd.Context(), walkParams(cfg.Walk), cfg.Walk.Weights)
	if err != nil {
		return err
	}

	run, err := storage.New(dataDir).Create(cfg.Name)
	if err != nil {
		return err
	}
	metrics := map[string]float64{
		"best_weight":    scan.BestWeight,
		"max_efficiency": scan.MaxEfficiency,
	}
	if err := run.SaveWalk(cfg, studyWeights, scan.Efficiency, metrics); err != nil {
		return err
	}

	fmt.Printf("run id: %s\n", run.ID)
	fmt.Printf("Weight: %v, Efficiency: %v\n", scan.BestWeight, scan.MaxEfficiency)

	finals := make([]float64, len(scan.Efficiency))
	for i, eff := range scan.Efficiency {
		finals[i] = last(eff)
	}
	fmt.Println()
	fmt.Println(viz.PlotSeries([][]float64{finals}, nil, viz.PlotOptions{Height: 10, Width: 80, Caption: "final efficiency vs weight index"}))
	return nil
}

const maxCurves = 6

// sampleRows picks at most k evenly spaced indices out of n.
func sampleRows(n, k int) []int {
	if n <= k {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i * (n - 1) / (k - 1)
	}
	return idx
}

func pick[T any](s []T, idx []int) []T {
	out := make([]T, 0, len(idx))
	for _, i := range idx {
		if i < len(s) {
			out = append(out, s[i])
		}
	}
	return out
}
