package dynamo

import (
	"fmt"
	"sync"
)

// Simulation owns an ordered, fixed set of bodies for the lifetime of a run.
type Simulation struct {
	mu        sync.RWMutex
	cfg       Config
	bodies    []*Body
	integ     *Integrator
	steps     int
	observers []Observer
}

// New validates the initialization tuples, builds the bodies and normalizes
// them once: net momentum is cancelled and the center of mass is moved to
// cfg.Center.
func New(specs []BodySpec, cfg Config) (*Simulation, error) {
	if len(specs) == 0 {
		return nil, ErrEmptySystem
	}

	solver := &Solver{
		G:                 cfg.G,
		MinDistance:       cfg.MinDistance,
		ParallelThreshold: cfg.ParallelThreshold,
	}
	if err := solver.Validate(); err != nil {
		return nil, err
	}
	if !cfg.Center.IsFinite() {
		return nil, fmt.Errorf("%w: center must be finite", ErrInvalidConfig)
	}

	bodies := make([]*Body, len(specs))
	for i, spec := range specs {
		b, err := NewBody(spec.Mass, spec.Position, spec.Velocity)
		if err != nil {
			return nil, &BodyError{Index: i, Mass: spec.Mass, Wrapped: err}
		}
		bodies[i] = b
	}

	Normalize(bodies, cfg.Center)

	return &Simulation{
		cfg:       cfg,
		bodies:    bodies,
		integ:     NewIntegrator(solver),
		observers: make([]Observer, 0),
	}, nil
}

func (s *Simulation) AddObserver(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// Step advances every body by one step. A failed step leaves the state as
// it was and returns a *SimulationError; retrying is up to the caller.
func (s *Simulation) Step() error {
	s.mu.Lock()
	if err := s.integ.Step(s.bodies); err != nil {
		step := s.steps
		s.mu.Unlock()
		return &SimulationError{Step: step, Wrapped: err}
	}
	s.steps++

	observers := s.observers
	var snap Snapshot
	if len(observers) > 0 {
		snap = s.snapshotLocked()
	}
	s.mu.Unlock()

	for _, o := range observers {
		o.OnStep(snap)
	}
	return nil
}

// Snapshot returns a copy of the state between steps.
func (s *Simulation) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Simulation) snapshotLocked() Snapshot {
	bodies := make([]BodyState, len(s.bodies))
	for i, b := range s.bodies {
		bodies[i] = b.State()
	}
	return Snapshot{Step: s.steps, Bodies: bodies}
}

func (s *Simulation) Len() int { return len(s.bodies) }

func (s *Simulation) Steps() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.steps
}

func (s *Simulation) Config() Config { return s.cfg }
