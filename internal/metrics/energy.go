package metrics

import (
	"math"

	"github.com/san-kum/gravsim/internal/dynamo"
)

// EnergyDrift tracks the largest relative change in total energy. Explicit
// Euler does not conserve energy, so this grows with step count and with
// close encounters.
type EnergyDrift struct {
	name          string
	g             float64
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift(g float64) *EnergyDrift {
	return &EnergyDrift{
		name: "energy_drift",
		g:    g,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(snap dynamo.Snapshot) {
	energy := dynamo.KineticEnergy(snap.Bodies) + dynamo.PotentialEnergy(snap.Bodies, e.g)
	if math.IsNaN(energy) || math.IsInf(energy, 0) {
		return
	}

	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}

type AngularMomentumDrift struct {
	name     string
	initial  float64
	maxDrift float64
	samples  int
}

func NewAngularMomentumDrift() *AngularMomentumDrift {
	return &AngularMomentumDrift{name: "angular_momentum_drift"}
}

func (a *AngularMomentumDrift) Name() string { return a.name }

// Observe measures L about the center of mass so a recentered system and
// its original agree.
func (a *AngularMomentumDrift) Observe(snap dynamo.Snapshot) {
	c := dynamo.MassCenter(snap.Bodies)
	l := 0.0
	for _, b := range snap.Bodies {
		r := b.Position.Sub(c)
		l += b.Mass * (r.X*b.Velocity.Y - r.Y*b.Velocity.X)
	}

	if a.samples == 0 {
		a.initial = l
	}
	a.samples++

	drift := math.Abs(l - a.initial)
	if a.initial != 0 {
		drift /= math.Abs(a.initial)
	}
	a.maxDrift = math.Max(a.maxDrift, drift)
}

func (a *AngularMomentumDrift) Value() float64 { return a.maxDrift }

func (a *AngularMomentumDrift) Reset() {
	a.initial = 0
	a.maxDrift = 0
	a.samples = 0
}
