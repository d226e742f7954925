package viz

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
const brailleBase = 0x2800

var pixelMap = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Window is the region of the simulation plane mapped onto a canvas.
type Window struct {
	XMin, XMax float64
	YMin, YMax float64
}

// DefaultWindow matches the fixed [-10, 10] axes of the chain snapshots.
var DefaultWindow = Window{XMin: -10, XMax: 10, YMin: -10, YMax: 10}

// Canvas is a braille pixel grid. Its size in sub-pixels is
// (Width*2) x (Height*4).
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set lights the sub-pixel (x, y). Out of range pixels are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= pixelMap[y%4][x%2]
}

// IsSet reports whether sub-pixel (x, y) is lit.
func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return c.Grid[y/4][x/2]&pixelMap[y%4][x%2] != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBase
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// Project maps a point of the plane to sub-pixel coordinates. ok is
// false when p falls outside win.
func (c *Canvas) Project(p r2.Vec, win Window) (x, y int, ok bool) {
	if p.X < win.XMin || p.X > win.XMax || p.Y < win.YMin || p.Y > win.YMax {
		return 0, 0, false
	}
	w, h := float64(c.Width*2-1), float64(c.Height*4-1)
	x = int(math.Round((p.X - win.XMin) / (win.XMax - win.XMin) * w))
	y = int(math.Round((win.YMax - p.Y) / (win.YMax - win.YMin) * h))
	return x, y, true
}

// Scatter plots one dot per particle.
func (c *Canvas) Scatter(pts []r2.Vec, win Window) {
	for _, p := range pts {
		if x, y, ok := c.Project(p, win); ok {
			c.Set(x, y)
		}
	}
}

// DrawChain draws the bonds between consecutive particles and marks
// every particle with a 2x2 block.
func (c *Canvas) DrawChain(pts []r2.Vec, win Window) {
	for i := 0; i+1 < len(pts); i++ {
		x0, y0, ok0 := c.Project(pts[i], win)
		x1, y1, ok1 := c.Project(pts[i+1], win)
		if ok0 && ok1 {
			c.DrawLine(x0, y0, x1, y1)
		}
	}
	for _, p := range pts {
		x, y, ok := c.Project(p, win)
		if !ok {
			continue
		}
		c.Set(x, y)
		c.Set(x+1, y)
		c.Set(x, y+1)
		c.Set(x+1, y+1)
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
