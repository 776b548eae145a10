package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

// Ink tags a cell with the body that last drew into it. Body < 0 means
// nothing has been drawn.
type Ink struct {
	Body  int
	Trail bool
}

var noInk = Ink{Body: -1}

type Canvas struct {
	Width, Height int
	Grid          [][]rune
	Inks          [][]Ink
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
		Inks:   make([][]Ink, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		c.Inks[i] = make([]Ink, w)
	}
	c.Clear()
	return c
}

// SubWidth and SubHeight give the canvas size in braille dots.
func (c *Canvas) SubWidth() int { return c.Width * 2 }
func (c *Canvas) SubHeight() int { return c.Height * 4 }

// Plot sets a dot and tags its cell. Body ink wins over trail ink so a
// disc keeps its color when a trail passes through the same cell.
func (c *Canvas) Plot(x, y int, ink Ink) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])

	cur := c.Inks[row][col]
	if ink.Body >= 0 && (cur.Body < 0 || cur.Trail || !ink.Trail) {
		c.Inks[row][col] = ink
	}
}

// Clear resets the canvas
func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
			c.Inks[i][j] = noInk
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm. The segment is
// clipped to the canvas first, so far off-screen endpoints cost no more
// than the visible part.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int, ink Ink) {
	fx0, fy0, fx1, fy1, ok := clipLine(float64(x0), float64(y0), float64(x1), float64(y1), c.SubWidth(), c.SubHeight())
	if !ok {
		return
	}
	x0, y0 = int(math.Round(fx0)), int(math.Round(fy0))
	x1, y1 = int(math.Round(fx1)), int(math.Round(fy1))

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
		c.Plot(x0, y0, ink)
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

// clipLine trims a segment to the dot rectangle [0, w-1] x [0, h-1]
// (Liang-Barsky). ok is false when no part of it is visible.
func clipLine(x0, y0, x1, y1 float64, w, h int) (float64, float64, float64, float64, bool) {
	dx, dy := x1-x0, y1-y0
	p := [4]float64{-dx, dx, -dy, dy}
	q := [4]float64{x0, float64(w-1) - x0, y0, float64(h-1) - y0}

	t0, t1 := 0.0, 1.0
	for i := range p {
		if p[i] == 0 {
			if q[i] < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		t := q[i] / p[i]
		if p[i] < 0 {
			if t > t1 {
				return 0, 0, 0, 0, false
			}
			t0 = math.Max(t0, t)
		} else {
			if t < t0 {
				return 0, 0, 0, 0, false
			}
			t1 = math.Min(t1, t)
		}
	}
	return x0 + t0*dx, y0 + t0*dy, x0 + t1*dx, y0 + t1*dy, true
}

// FillCircle fills a disc of radius r dots around (cx, cy). A zero radius
// sets a single dot. Only rows and columns on the canvas are visited.
func (c *Canvas) FillCircle(cx, cy, r int, ink Ink) {
	y0, y1 := max(cy-r, 0), min(cy+r, c.SubHeight()-1)
	x0, x1 := max(cx-r, 0), min(cx+r, c.SubWidth()-1)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r*r {
				c.Plot(x, y, ink)
			}
		}
	}
}

// Render draws the canvas with each run of equally inked cells passed
// through style.
func (c *Canvas) Render(style func(Ink) lipgloss.Style) string {
	var b strings.Builder
	for r, row := range c.Grid {
		start := 0
		for col := 1; col <= len(row); col++ {
			if col < len(row) && c.Inks[r][col] == c.Inks[r][start] {
				continue
			}
			run := string(row[start:col])
			if ink := c.Inks[r][start]; ink.Body >= 0 {
				run = style(ink).Render(run)
			}
			b.WriteString(run)
			start = col
		}
		b.WriteString("\n")
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
