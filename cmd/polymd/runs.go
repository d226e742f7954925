package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/san-kum/polymd/internal/config"
	"github.com/san-kum/polymd/internal/storage"
	"github.com/san-kum/polymd/internal/viz"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tTIME\tSTUDY\tSEED\tSERIES")
	for _, run := range runs {
		study := run.Study
		if run.Kind == storage.KindPolymer {
			study = "run"
			if run.Parameter != "" {
				study = fmt.Sprintf("sweep %s %v", run.Parameter, run.Values)
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			run.ID,
			run.Kind,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			study,
			run.Seed,
			strings.Join(run.Series, ","),
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	if len(meta.Series) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Println(viz.Title.Render("run: " + meta.ID))
	fmt.Println(viz.Subtle.Render(fmt.Sprintf("kind: %s  seed: %d", meta.Kind, meta.Seed)))
	fmt.Println()

	for _, name := range meta.Series {
		m, err := st.LoadSeries(runID, name)
		if err != nil {
			return err
		}
		rows, _ := m.Dims()
		idx := sampleRows(rows, maxCurves)

		series := make([][]float64, 0, len(idx))
		labels := make([]string, 0, len(idx))
		for _, i := range idx {
			series = append(series, m.RawRowView(i))
			labels = append(labels, curveLabel(meta, i))
		}
		fmt.Println(viz.PlotSeries(series, labels, viz.PlotOptions{Height: 10, Width: 80, Caption: strings.ReplaceAll(name, "_", " ")}))
		fmt.Println()
	}
	return nil
}

func curveLabel(meta *storage.RunMetadata, i int) string {
	switch {
	case meta.Parameter != "" && i < len(meta.Values):
		return fmt.Sprintf("%s=%g", meta.Parameter, meta.Values[i])
	case meta.Study == studyWeights && meta.Config != nil && i < len(meta.Config.Walk.Weights):
		return fmt.Sprintf("w=%.3f", meta.Config.Walk.Weights[i])
	case meta.Study == studyRealizations && meta.Config != nil && i < len(meta.Config.Walk.RealizationCounts):
		return fmt.Sprintf("realizations=%d", meta.Config.Walk.RealizationCounts[i])
	case meta.Study == studyGrid && meta.Config != nil && len(meta.Config.Walk.Weights) > 0:
		w := meta.Config.Walk
		ti, wi := i/len(w.Weights), i%len(w.Weights)
		if ti < len(w.Thetas) {
			return fmt.Sprintf("θ*=%g w=%g", w.Thetas[ti], w.Weights[wi])
		}
	}
	return fmt.Sprintf("#%d", i)
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig("polymer", "")
	if err != nil {
		return err
	}
	applyPolymerFlags(cmd, cfg)
	p, err := cfg.Params()
	if err != nil {
		return err
	}

	m, err := viz.NewLive(viz.LiveConfig{
		N:            cfg.Run.N,
		Params:       p,
		Seed:         cfg.Run.Seed,
		StepsPerTick: stepsPerTick,
		Workers:      cfg.Run.Workers,
	})
	if err != nil {
		return err
	}

	prog := tea.NewProgram(m, tea.WithContext(cmd.Context()))
	if _, err := prog.Run(); err != nil {
		return err
	}
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	groups := config.ListGroups()
	if len(args) == 1 {
		groups = []string{args[0]}
	}
	for _, g := range groups {
		presets := config.ListPresets(g)
		if len(presets) == 0 {
			fmt.Printf("no presets for group: %s\n", g)
			continue
		}
		fmt.Printf("presets for %s:\n", g)
		for _, name := range presets {
			fmt.Printf("  %s\n", name)
		}
	}
	return nil
}
