package dynamo

// Integrator advances a body set by one semi-implicit Euler step with an
// implicit unit time step.
type Integrator struct {
	solver   *Solver
	snapshot []BodyState
	acc      []Vec2
}

func NewIntegrator(solver *Solver) *Integrator {
	return &Integrator{solver: solver}
}

func (in *Integrator) ensureScratch(n int) {
	if len(in.snapshot) != n {
		in.snapshot = make([]BodyState, n)
		in.acc = make([]Vec2, n)
	}
}

// Step runs the compute phase against a full snapshot, then commits
// velocity += acceleration and position += velocity for every body. If the
// compute phase fails no body is modified.
func (in *Integrator) Step(bodies []*Body) error {
	in.ensureScratch(len(bodies))

	for i, b := range bodies {
		in.snapshot[i] = b.State()
	}
	if err := in.solver.Accelerations(in.snapshot, in.acc); err != nil {
		return err
	}

	for i, b := range bodies {
		b.velocity = b.velocity.Add(in.acc[i])
		b.position = b.position.Add(b.velocity)
	}
	return nil
}
