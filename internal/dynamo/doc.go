// Package dynamo provides the gravitational core of the simulator.
//
// The package owns a fixed, ordered set of point masses and advances them
// one discrete step at a time:
//
//   - [Vec2]: immutable 2D vector
//   - [Body]: a point mass with position and velocity
//   - [Solver]: pairwise gravitational accelerations for a snapshot
//   - [Integrator]: two-phase (compute, then commit) Euler step
//   - [Simulation]: owns the bodies and orchestrates each step
//
// # Example
//
//	specs := []dynamo.BodySpec{
//	    {Mass: 700, Position: dynamo.V(0, 0)},
//	    {Mass: 300, Position: dynamo.V(0, -200), Velocity: dynamo.V(1.5, 0)},
//	}
//	s, err := dynamo.New(specs, dynamo.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	for i := 0; i < 100; i++ {
//	    if err := s.Step(); err != nil {
//	        return err
//	    }
//	}
//
// # Thread Safety
//
// [Simulation.Step] holds an exclusive lock across the compute and commit
// phases and [Simulation.Snapshot] takes a shared lock, so readers on other
// goroutines only ever see whole steps.
package dynamo
