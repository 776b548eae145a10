package experiment

import (
	"context"
	"fmt"
	"time"

	"github.com/san-kum/gravsim/internal/dynamo"
)

type Config struct {
	Name        string
	Steps       int
	SampleEvery int
	// Interval paces steps like the live driver does; zero runs flat out.
	Interval time.Duration
}

// Experiment drives a simulation for a fixed number of steps and records
// sampled snapshots and metrics.
type Experiment struct {
	cfg     Config
	sim     *dynamo.Simulation
	metrics []dynamo.Metric
}

func New(cfg Config, sim *dynamo.Simulation) *Experiment {
	return &Experiment{cfg: cfg, sim: sim}
}

func (e *Experiment) AddMetric(m dynamo.Metric) { e.metrics = append(e.metrics, m) }

// Simulation returns the underlying simulation for adding observers.
func (e *Experiment) Simulation() *dynamo.Simulation {
	return e.sim
}

func (e *Experiment) validate() error {
	if e.sim == nil {
		return fmt.Errorf("experiment has no simulation")
	}
	if e.cfg.Steps < 0 {
		return fmt.Errorf("steps must not be negative, got %d", e.cfg.Steps)
	}
	if e.cfg.SampleEvery < 1 {
		return fmt.Errorf("sample interval must be at least 1, got %d", e.cfg.SampleEvery)
	}
	return nil
}

// Run steps the simulation. A failed step is recorded in Result.Errors and
// halts the run; the snapshots up to that point are kept. A cancelled
// context returns the partial result with ctx.Err().
func (e *Experiment) Run(ctx context.Context) (*dynamo.Result, error) {
	if err := e.validate(); err != nil {
		return nil, err
	}

	result := &dynamo.Result{
		Snapshots: make([]dynamo.Snapshot, 0, e.cfg.Steps/e.cfg.SampleEvery+2),
		Metrics:   make(map[string]float64),
		Errors:    make([]error, 0),
	}

	for _, m := range e.metrics {
		m.Reset()
	}

	var tick <-chan time.Time
	if e.cfg.Interval > 0 {
		ticker := time.NewTicker(e.cfg.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	snap := e.sim.Snapshot()
	result.Snapshots = append(result.Snapshots, snap)
	e.observe(snap)

	for i := 0; i < e.cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			e.finish(result, snap)
			return result, ctx.Err()
		default:
		}

		if tick != nil {
			select {
			case <-ctx.Done():
				e.finish(result, snap)
				return result, ctx.Err()
			case <-tick:
			}
		}

		if err := e.sim.Step(); err != nil {
			result.Errors = append(result.Errors, err)
			break
		}
		result.StepsTaken++

		snap = e.sim.Snapshot()
		e.observe(snap)
		if result.StepsTaken%e.cfg.SampleEvery == 0 {
			result.Snapshots = append(result.Snapshots, snap)
		}
	}

	e.finish(result, snap)
	return result, nil
}

func (e *Experiment) observe(snap dynamo.Snapshot) {
	for _, m := range e.metrics {
		m.Observe(snap)
	}
}

// finish makes sure the last reached state is recorded and collects metrics.
func (e *Experiment) finish(result *dynamo.Result, last dynamo.Snapshot) {
	if n := len(result.Snapshots); n == 0 || result.Snapshots[n-1].Step != last.Step {
		result.Snapshots = append(result.Snapshots, last)
	}
	for _, m := range e.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}
