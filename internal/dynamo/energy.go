package dynamo

import "math"

// KineticEnergy returns the sum of 0.5 * m * |v|^2.
func KineticEnergy(bodies []BodyState) float64 {
	ke := 0.0
	for _, b := range bodies {
		v := b.Velocity.Len()
		ke += 0.5 * b.Mass * v * v
	}
	return ke
}

// PotentialEnergy returns the pairwise gravitational potential for the
// given G. Coincident pairs contribute -Inf.
func PotentialEnergy(bodies []BodyState, g float64) float64 {
	pe := 0.0
	for i := range bodies {
		for j := i + 1; j < len(bodies); j++ {
			r := bodies[j].Position.Sub(bodies[i].Position).Len()
			if r == 0 {
				return math.Inf(-1)
			}
			pe -= g * bodies[i].Mass * bodies[j].Mass / r
		}
	}
	return pe
}

// Momentum returns the total momentum of a snapshot.
func Momentum(bodies []BodyState) Vec2 {
	var p Vec2
	for _, b := range bodies {
		p = p.Add(b.Momentum())
	}
	return p
}

// AngularMomentum returns the z component of sum(m * r x v) about the origin.
func AngularMomentum(bodies []BodyState) float64 {
	l := 0.0
	for _, b := range bodies {
		l += b.Mass * (b.Position.X*b.Velocity.Y - b.Position.Y*b.Velocity.X)
	}
	return l
}

// MassCenter returns the center of mass of a snapshot.
func MassCenter(bodies []BodyState) Vec2 {
	var c Vec2
	total := 0.0
	for _, b := range bodies {
		c = c.Add(b.Position.Scale(b.Mass))
		total += b.Mass
	}
	if total == 0 {
		return Vec2{}
	}
	return c.Div(total)
}
