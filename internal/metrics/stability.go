package metrics

import (
	"github.com/san-kum/gravsim/internal/dynamo"
)

// Bound reports the fraction of samples in which every body stayed within
// radius of the center of mass. Ejected bodies drive it below 1.
type Bound struct {
	name       string
	radius     float64
	violations int
	samples    int
}

func NewBound(radius float64) *Bound {
	return &Bound{
		name:   "bound_fraction",
		radius: radius,
	}
}

func (b *Bound) Name() string {
	return b.name
}

func (b *Bound) Observe(snap dynamo.Snapshot) {
	b.samples++
	c := dynamo.MassCenter(snap.Bodies)
	for _, body := range snap.Bodies {
		if body.Position.Sub(c).Len() > b.radius {
			b.violations++
			break
		}
	}
}

func (b *Bound) Value() float64 {
	if b.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(b.violations)/float64(b.samples)
}

func (b *Bound) Reset() {
	b.violations = 0
	b.samples = 0
}
