package dynamo

import "math"

// BodySpec is the initialization tuple for one body.
type BodySpec struct {
	Mass     float64
	Position Vec2
	Velocity Vec2
}

// BodyState is a read-only copy of a body at one instant.
type BodyState struct {
	Mass     float64
	Position Vec2
	Velocity Vec2
}

// Momentum returns mass * velocity.
func (b BodyState) Momentum() Vec2 { return b.Velocity.Scale(b.Mass) }

// Body is a point mass. Position and velocity change only through the
// integrator's commit phase and the one-time normalization.
type Body struct {
	mass     float64
	position Vec2
	velocity Vec2
}

// NewBody validates and builds a body.
func NewBody(mass float64, position, velocity Vec2) (*Body, error) {
	if !(mass > 0) || math.IsInf(mass, 0) {
		return nil, ErrInvalidBody
	}
	if !position.IsFinite() || !velocity.IsFinite() {
		return nil, ErrInvalidBody
	}
	return &Body{mass: mass, position: position, velocity: velocity}, nil
}

func (b *Body) Mass() float64 { return b.mass }
func (b *Body) Position() Vec2 { return b.position }
func (b *Body) Velocity() Vec2 { return b.velocity }

func (b *Body) State() BodyState {
	return BodyState{Mass: b.mass, Position: b.position, Velocity: b.velocity}
}
