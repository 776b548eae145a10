package dynamo

// Snapshot is a copy of every body after a completed step.
type Snapshot struct {
	Step   int
	Bodies []BodyState
}

// Observer is notified with the new state after every committed step.
type Observer interface {
	OnStep(snap Snapshot)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(snap Snapshot)

func (f ObserverFunc) OnStep(snap Snapshot) { f(snap) }

type Metric interface {
	Name() string
	Observe(snap Snapshot)
	Value() float64
	Reset()
}

type Config struct {
	G                 float64
	MinDistance       float64
	Center            Vec2
	ParallelThreshold int
}

func DefaultConfig() Config {
	return Config{
		G:                 DefaultG,
		MinDistance:       DefaultMinDistance,
		ParallelThreshold: DefaultParallelThreshold,
	}
}

type Result struct {
	Snapshots  []Snapshot
	Metrics    map[string]float64
	StepsTaken int
	Errors     []error
}

// Err returns the first recorded step error, if any.
func (r *Result) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	return r.Errors[0]
}
