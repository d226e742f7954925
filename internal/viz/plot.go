package viz

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"
)

var seriesColors = []asciigraph.AnsiColor{
	asciigraph.Green,
	asciigraph.Cyan,
	asciigraph.Yellow,
	asciigraph.Magenta,
	asciigraph.Red,
	asciigraph.Blue,
}

// PlotOptions sizes a terminal plot.
type PlotOptions struct {
	Height  int
	Width   int
	Caption string
}

func DefaultPlotOptions() PlotOptions {
	return PlotOptions{Height: 10, Width: 80}
}

// PlotSeries renders one or more series on shared axes. Long series
// are downsampled to the plot width by asciigraph.
func PlotSeries(series [][]float64, labels []string, opt PlotOptions) string {
	var data [][]float64
	var colors []asciigraph.AnsiColor
	var legend []string
	for i, s := range series {
		if len(s) == 0 {
			continue
		}
		c := seriesColors[i%len(seriesColors)]
		data = append(data, s)
		colors = append(colors, c)
		if i < len(labels) {
			legend = append(legend, c.String()+"■"+asciigraph.Default.String()+" "+labels[i])
		}
	}
	if len(data) == 0 {
		return ""
	}

	opts := []asciigraph.Option{
		asciigraph.Height(opt.Height),
		asciigraph.Width(opt.Width),
		asciigraph.SeriesColors(colors...),
	}
	if opt.Caption != "" {
		opts = append(opts, asciigraph.Caption(opt.Caption))
	}
	graph := asciigraph.PlotMany(data, opts...)
	if len(legend) == 0 {
		return graph
	}
	return fmt.Sprintf("%s\n%s", graph, strings.Join(legend, "  "))
}
