package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/polymd/internal/config"
	"github.com/san-kum/polymd/internal/flock"
	"github.com/san-kum/polymd/internal/storage"
	"github.com/san-kum/polymd/internal/viz"
)

func applyFlockFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	fc := &cfg.Flock
	if f.Changed("n") {
		fc.N = boids
	}
	if f.Changed("steps") {
		fc.Steps = flockSteps
	}
	if f.Changed("realizations") {
		fc.Realizations = realizations
	}
	if f.Changed("noise") {
		fc.Noise = noise
	}
	if f.Changed("noises") {
		fc.Noises = noises
	}
	if f.Changed("repellants") {
		fc.Repellants = repellants
	}
	if f.Changed("seed") {
		fc.Seed = seed
	}
	if f.Changed("workers") {
		fc.Workers = workers
	}
}

// runFlock runs one averaged flock, or one per noise value when
// flock.noises is set.
func runFlock(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig("flock", "")
	if err != nil {
		return err
	}
	applyFlockFlags(cmd, cfg)
	if configFile == "" && preset == "" {
		cfg.Name = "flock"
	}
	p, err := cfg.FlockParams()
	if err != nil {
		return err
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}

	fc := cfg.Flock
	fl := &flock.Flocker{Workers: fc.Workers, Seed: fc.Seed, Logger: logger}
	logger.Info("flock started", "n", p.N, "repellants", p.Repellants, "steps", fc.Steps, "realizations", fc.Realizations)

	var (
		curves []*flock.Series
		labels []string
	)
	if len(fc.Noises) > 0 {
		curves, err = fl.NoiseScan(cmd.Context(), p, fc.Steps, fc.Realizations, fc.Noises)
		for _, c4 := range fc.Noises {
			labels = append(labels, fmt.Sprintf("noise=%g", c4))
		}
	} else {
		var s *flock.Series
		s, err = fl.Simulate(cmd.Context(), p, fc.Steps, fc.Realizations)
		curves = []*flock.Series{s}
		labels = []string{fmt.Sprintf("noise=%g", p.Noise)}
	}
	if err != nil {
		return err
	}

	run, err := storage.New(dataDir).Create(cfg.Name)
	if err != nil {
		return err
	}
	if err := run.SaveFlock(cfg, fc.Noises, curves); err != nil {
		return err
	}

	fmt.Printf("run id: %s\n", run.ID)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CURVE\tFINAL RG\tALIGNMENT\tPOLARIZATION")
	align := make([][]float64, len(curves))
	for i, c := range curves {
		rg, a, pol := c.Final()
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.4f\n", labels[i], rg, a, pol)
		align[i] = c.Alignment
	}
	if err := w.Flush(); err != nil {
		return err
	}

	idx := sampleRows(len(curves), maxCurves)
	fmt.Println()
	fmt.Println(viz.PlotSeries(pick(align, idx), pick(labels, idx), viz.PlotOptions{Height: 12, Width: 80, Caption: "alignment"}))
	return nil
}
