package viz

import (
	"math"

	"github.com/charmbracelet/harmonica"
	"github.com/san-kum/gravsim/internal/dynamo"
)

const (
	zoomStep     = 1.25
	fitMargin    = 1.15
	springFreq   = 4.0
	springDamp   = 1.0
	minZoom      = 1.0 / 64
	maxZoom      = 64.0
	defaultScale = 0.05
	farDots      = 1 << 30
)

// Camera maps world coordinates onto canvas dots. World y grows downward,
// the same as screen rows. The scale eases toward the fitted target through
// a critically damped spring so zoom changes do not jump.
type Camera struct {
	Center dynamo.Vec2
	Zoom   float64
	Scale  float64

	target   float64
	velocity float64
	spring   harmonica.Spring
}

func NewCamera(center dynamo.Vec2, fps int) *Camera {
	if fps < 1 {
		fps = 1
	}
	return &Camera{
		Center: center,
		Zoom:   1,
		Scale:  defaultScale,
		target: defaultScale,
		spring: harmonica.NewSpring(harmonica.FPS(fps), springFreq, springDamp),
	}
}

func (c *Camera) ZoomIn() { c.Zoom = math.Min(c.Zoom*zoomStep, maxZoom) }
func (c *Camera) ZoomOut() { c.Zoom = math.Max(c.Zoom/zoomStep, minZoom) }

// Target returns the scale the camera is easing toward.
func (c *Camera) Target() float64 { return c.target }

// Fit sets the target scale so every body, disc included, fits inside a
// w by h dot canvas, then applies the user zoom.
func (c *Camera) Fit(bodies []dynamo.BodyState, w, h int) {
	var ex, ey float64
	for _, b := range bodies {
		if !b.Position.IsFinite() {
			continue
		}
		r := BodySize(b.Mass) / 2
		d := b.Position.Sub(c.Center)
		ex = math.Max(ex, math.Abs(d.X)+r)
		ey = math.Max(ey, math.Abs(d.Y)+r)
	}
	if ex == 0 && ey == 0 {
		return
	}

	fit := math.Inf(1)
	if ex > 0 {
		fit = float64(w) / 2 / (ex * fitMargin)
	}
	if ey > 0 {
		fit = math.Min(fit, float64(h)/2/(ey*fitMargin))
	}
	if t := fit * c.Zoom; t > 0 && !math.IsInf(t, 0) {
		c.target = t
	}
}

// Update advances the zoom spring by one frame.
func (c *Camera) Update() {
	c.Scale, c.velocity = c.spring.Update(c.Scale, c.velocity, c.target)
	if !(c.Scale > 0) || math.IsInf(c.Scale, 0) {
		c.Scale = c.target
		c.velocity = 0
	}
}

// Project maps a world point onto a w by h dot canvas. Points far off the
// canvas are pulled in to farDots so the result always fits an int.
func (c *Camera) Project(p dynamo.Vec2, w, h int) (int, int) {
	d := p.Sub(c.Center)
	x := float64(w)/2 + d.X*c.Scale
	y := float64(h)/2 + d.Y*c.Scale
	return clampDots(x), clampDots(y)
}

// Radius converts a world length to whole dots.
func (c *Camera) Radius(size float64) int {
	r := clampDots(size / 2 * c.Scale)
	if r < 0 {
		return 0
	}
	return r
}

func clampDots(v float64) int {
	switch {
	case math.IsNaN(v):
		return farDots
	case v > farDots:
		return farDots
	case v < -farDots:
		return -farDots
	}
	return int(math.Round(v))
}

// BodySize is the on-screen diameter of a body: twice the cube root of its
// mass, in world units.
func BodySize(mass float64) float64 {
	return math.Cbrt(mass) * 2
}
