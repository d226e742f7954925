package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/san-kum/polymd/internal/md"
	"github.com/san-kum/polymd/internal/sim"
	"github.com/san-kum/polymd/internal/viz"
)

// FrameWriter is a sim.Observer that writes an SVG snapshot of the
// chain on every print step to frames/<stage>/<frame>.svg. It is safe
// for concurrent stages.
type FrameWriter struct {
	dir      string
	interval int
	opt      viz.SVGOptions

	mu    sync.Mutex
	count int
	err   error
}

func (r *Run) Frames(interval int, opt viz.SVGOptions) *FrameWriter {
	return &FrameWriter{
		dir:      filepath.Join(r.Dir, "frames"),
		interval: interval,
		opt:      opt,
	}
}

func (f *FrameWriter) OnStep(stage sim.Stage, step int, st md.Step) {
	if !sim.IsPrintStep(step, f.interval) || f.Err() != nil {
		return
	}
	frame := sim.FrameNumber(step, f.interval)
	dir := filepath.Join(f.dir, fmt.Sprintf("stage_%03d", stage.Index))
	opt := f.opt
	opt.Title = fmt.Sprintf("%s  step %d  Rg %.4f", stage, step, md.RadiusOfGyration(st.Positions))

	err := f.write(dir, fmt.Sprintf("%06d.svg", frame), st, opt)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		if f.err == nil {
			f.err = err
		}
		return
	}
	f.count++
}

func (f *FrameWriter) write(dir, name string, st md.Step, opt viz.SVGOptions) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	out, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return err
	}
	defer out.Close()
	if err := viz.ScatterSVG(out, st.Positions, opt); err != nil {
		return fmt.Errorf("frame %s: %w", name, err)
	}
	return out.Close()
}

// Count is the number of frames written.
func (f *FrameWriter) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.count
}

// Err returns the first write failure. Later frames are skipped once
// a write fails.
func (f *FrameWriter) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}
