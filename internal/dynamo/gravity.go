package dynamo

import (
	"fmt"
	"math"
)

const (
	// DefaultG is a simulation-unit gravitational constant, not the SI value.
	DefaultG = 0.5
	// DefaultMinDistance is the separation below which a pair is degenerate.
	DefaultMinDistance = 1e-6
	// DefaultParallelThreshold is the body count from which the compute
	// phase is split across goroutines.
	DefaultParallelThreshold = 256
)

// Solver computes gravitational accelerations for a snapshot of bodies.
type Solver struct {
	G                 float64
	MinDistance       float64
	ParallelThreshold int
}

func NewSolver(g float64) *Solver {
	return &Solver{
		G:                 g,
		MinDistance:       DefaultMinDistance,
		ParallelThreshold: DefaultParallelThreshold,
	}
}

func (s *Solver) Validate() error {
	if !(s.G > 0) || math.IsInf(s.G, 0) {
		return fmt.Errorf("%w: G must be positive and finite, got %g", ErrInvalidConfig, s.G)
	}
	if !(s.MinDistance > 0) || math.IsInf(s.MinDistance, 0) {
		return fmt.Errorf("%w: min distance must be positive, got %g", ErrInvalidConfig, s.MinDistance)
	}
	return nil
}

// Pairwise returns the acceleration of on due to from.
func (s *Solver) Pairwise(on, from BodyState) (Vec2, error) {
	acc, _, err := s.pair(on, from)
	return acc, err
}

func (s *Solver) pair(on, from BodyState) (Vec2, float64, error) {
	dir := from.Position.Sub(on.Position)
	dist := dir.Len()
	if !(dist >= s.MinDistance) {
		return Vec2{}, dist, ErrDegenerateConfiguration
	}
	mag := s.G * from.Mass / (dist * dist)
	return dir.Div(dist).Scale(mag), dist, nil
}

// Accelerations fills out[i] with the total acceleration on bodies[i]. Each
// sum runs over j in index order, so serial and parallel evaluation agree
// bit for bit. On failure out is left partially written and the error
// names the lowest offending body.
func (s *Solver) Accelerations(bodies []BodyState, out []Vec2) error {
	n := len(bodies)
	if len(out) != n {
		return fmt.Errorf("%w: %d bodies but %d acceleration slots", ErrInvalidConfig, n, len(out))
	}

	if s.ParallelThreshold <= 0 || n < s.ParallelThreshold {
		for i := range bodies {
			acc, err := s.accelerationOn(bodies, i)
			if err != nil {
				return err
			}
			out[i] = acc
		}
		return nil
	}

	errs := make([]error, n)
	ParallelFor(n, s.ParallelThreshold/4, func(start, end int) {
		for i := start; i < end; i++ {
			out[i], errs[i] = s.accelerationOn(bodies, i)
		}
	})
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Solver) accelerationOn(bodies []BodyState, i int) (Vec2, error) {
	var acc Vec2
	for j := range bodies {
		if j == i {
			continue
		}
		a, dist, err := s.pair(bodies[i], bodies[j])
		if err != nil {
			return Vec2{}, &PairError{I: i, J: j, Distance: dist, Wrapped: err}
		}
		acc = acc.Add(a)
	}
	return acc, nil
}
