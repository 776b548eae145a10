package dynamo

// TotalMass returns the sum of all masses.
func TotalMass(bodies []*Body) float64 {
	total := 0.0
	for _, b := range bodies {
		total += b.mass
	}
	return total
}

// TotalMomentum returns the sum of mass * velocity.
func TotalMomentum(bodies []*Body) Vec2 {
	var p Vec2
	for _, b := range bodies {
		p = p.Add(b.velocity.Scale(b.mass))
	}
	return p
}

// CenterOfMass returns the mass-weighted mean position.
func CenterOfMass(bodies []*Body) Vec2 {
	var c Vec2
	for _, b := range bodies {
		c = c.Add(b.position.Scale(b.mass))
	}
	return c.Div(TotalMass(bodies))
}

// CancelMomentum subtracts the center-of-mass velocity from every body so
// the net momentum is zero and the center of mass stays put.
func CancelMomentum(bodies []*Body) {
	if len(bodies) == 0 {
		return
	}
	drift := TotalMomentum(bodies).Div(TotalMass(bodies))
	for _, b := range bodies {
		b.velocity = b.velocity.Sub(drift)
	}
}

// Recenter shifts every body so the center of mass lands on target.
func Recenter(bodies []*Body, target Vec2) {
	if len(bodies) == 0 {
		return
	}
	shift := target.Sub(CenterOfMass(bodies))
	for _, b := range bodies {
		b.position = b.position.Add(shift)
	}
}

// Normalize cancels net momentum, then recenters around target.
func Normalize(bodies []*Body, target Vec2) {
	CancelMomentum(bodies)
	Recenter(bodies, target)
}
