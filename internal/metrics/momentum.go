package metrics

import (
	"math"

	"github.com/san-kum/gravsim/internal/dynamo"
)

// Momentum records the largest net momentum magnitude seen. After
// normalization this should stay at rounding-error level.
type Momentum struct {
	name string
	max  float64
}

func NewMomentum() *Momentum {
	return &Momentum{name: "momentum_max"}
}

func (m *Momentum) Name() string { return m.name }

func (m *Momentum) Observe(snap dynamo.Snapshot) {
	m.max = math.Max(m.max, dynamo.Momentum(snap.Bodies).Len())
}

func (m *Momentum) Value() float64 { return m.max }
func (m *Momentum) Reset() { m.max = 0 }

// CenterDrift records how far the center of mass wanders from where it was
// first observed.
type CenterDrift struct {
	name    string
	origin  dynamo.Vec2
	max     float64
	samples int
}

func NewCenterDrift() *CenterDrift {
	return &CenterDrift{name: "com_drift"}
}

func (c *CenterDrift) Name() string { return c.name }

func (c *CenterDrift) Observe(snap dynamo.Snapshot) {
	center := dynamo.MassCenter(snap.Bodies)
	if c.samples == 0 {
		c.origin = center
	}
	c.samples++
	c.max = math.Max(c.max, center.Sub(c.origin).Len())
}

func (c *CenterDrift) Value() float64 { return c.max }

func (c *CenterDrift) Reset() {
	c.origin = dynamo.Vec2{}
	c.max = 0
	c.samples = 0
}

// MinSeparation records the closest approach between any two bodies.
type MinSeparation struct {
	name     string
	min      float64
	observed bool
}

func NewMinSeparation() *MinSeparation {
	return &MinSeparation{name: "min_separation"}
}

func (m *MinSeparation) Name() string { return m.name }

func (m *MinSeparation) Observe(snap dynamo.Snapshot) {
	bodies := snap.Bodies
	for i := range bodies {
		for j := i + 1; j < len(bodies); j++ {
			d := bodies[j].Position.Sub(bodies[i].Position).Len()
			if !m.observed || d < m.min {
				m.min = d
				m.observed = true
			}
		}
	}
}

// Value is zero until a pair has been observed.
func (m *MinSeparation) Value() float64 {
	if !m.observed {
		return 0
	}
	return m.min
}

func (m *MinSeparation) Reset() {
	m.min = 0
	m.observed = false
}

// Default returns the metric set recorded for every run.
func Default(g float64) []dynamo.Metric {
	return []dynamo.Metric{
		NewMomentum(),
		NewCenterDrift(),
		NewEnergyDrift(g),
		NewAngularMomentumDrift(),
		NewMinSeparation(),
		NewBound(5000),
	}
}
