package viz

import (
	"bufio"
	"fmt"
	"html"
	"io"

	"gonum.org/v1/gonum/spatial/r2"
)

type SVGOptions struct {
	Size   int // pixels per side
	Window Window
	Title  string
	Bonds  bool
}

func DefaultSVGOptions() SVGOptions {
	return SVGOptions{Size: 480, Window: DefaultWindow, Bonds: true}
}

// ScatterSVG writes a square scatter plot of the particle positions.
// Points outside the window are clipped by the viewBox.
func ScatterSVG(w io.Writer, pts []r2.Vec, opt SVGOptions) error {
	if opt.Size <= 0 {
		opt.Size = DefaultSVGOptions().Size
	}
	if opt.Window == (Window{}) {
		opt.Window = DefaultWindow
	}
	win := opt.Window
	size := float64(opt.Size)
	px := func(p r2.Vec) (float64, float64) {
		return (p.X - win.XMin) / (win.XMax - win.XMin) * size,
			(win.YMax - p.Y) / (win.YMax - win.YMin) * size
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, opt.Size, opt.Size, opt.Size, opt.Size)

	// axes through the origin
	ox, oy := px(r2.Vec{})
	fmt.Fprintf(bw, `<g stroke="#444466" stroke-width="1"><line x1="0" y1="%.1f" x2="%d" y2="%.1f"/><line x1="%.1f" y1="0" x2="%.1f" y2="%d"/></g>
`, oy, opt.Size, oy, ox, ox, opt.Size)

	if opt.Bonds && len(pts) > 1 {
		fmt.Fprint(bw, `<path fill="none" stroke="#00ccff" stroke-width="1.5" d="M`)
		for i, p := range pts {
			x, y := px(p)
			if i == 0 {
				fmt.Fprintf(bw, "%.1f,%.1f", x, y)
			} else {
				fmt.Fprintf(bw, " L%.1f,%.1f", x, y)
			}
		}
		fmt.Fprint(bw, "\"/>\n")
	}

	fmt.Fprint(bw, `<g fill="#00ff88">`+"\n")
	for _, p := range pts {
		x, y := px(p)
		fmt.Fprintf(bw, `<circle cx="%.1f" cy="%.1f" r="%.1f"/>`+"\n", x, y, size/120)
	}
	fmt.Fprint(bw, "</g>\n")

	if opt.Title != "" {
		fmt.Fprintf(bw, `<text x="8" y="18" fill="#ffffff" font-family="monospace" font-size="14">%s</text>`+"\n", html.EscapeString(opt.Title))
	}
	fmt.Fprint(bw, "</svg>\n")
	return bw.Flush()
}
