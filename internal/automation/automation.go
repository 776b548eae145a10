package automation

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/experiment"
	"github.com/san-kum/gravsim/internal/storage"
	"gopkg.in/yaml.v3"
)

// Scenario defines a scripted batch of runs
type Scenario struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Runs        []ScenarioRun `yaml:"runs"`
}

// ScenarioRun is a single run in a scenario. Zero fields keep the source's
// value.
type ScenarioRun struct {
	Source      string  `yaml:"source"`
	Steps       int     `yaml:"steps"`
	SampleEvery int     `yaml:"sample_every"`
	G           float64 `yaml:"g"`
	SaveAs      string  `yaml:"save_as"`
}

// RunOutcome pairs a finished run with its stored ID, if saved.
type RunOutcome struct {
	Name   string
	RunID  string
	Result *dynamo.Result
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Runs) == 0 {
		return nil, fmt.Errorf("scenario %q has no runs", scenario.Name)
	}

	return &scenario, nil
}

func (r ScenarioRun) resolve() (*config.Config, error) {
	cfg, err := experiment.Resolve(r.Source)
	if err != nil {
		return nil, err
	}
	if r.Steps > 0 {
		cfg.Steps = r.Steps
	}
	if r.SampleEvery > 0 {
		cfg.SampleEvery = r.SampleEvery
	}
	if r.G > 0 {
		cfg.G = r.G
	}
	if r.SaveAs != "" {
		cfg.Name = r.SaveAs
	}
	return cfg, nil
}

// RunScenario executes every run in order. Runs are saved when st is not
// nil. A run halted by a degenerate configuration is kept and reported;
// setup and storage failures abort the batch.
func RunScenario(ctx context.Context, scenario *Scenario, st *storage.Store, out io.Writer) ([]RunOutcome, error) {
	outcomes := make([]RunOutcome, 0, len(scenario.Runs))

	for i, run := range scenario.Runs {
		fmt.Fprintf(out, "running %d/%d: %s\n", i+1, len(scenario.Runs), run.Source)

		cfg, err := run.resolve()
		if err != nil {
			return outcomes, fmt.Errorf("run %d: %w", i+1, err)
		}

		exp, err := experiment.FromConfig(cfg)
		if err != nil {
			return outcomes, fmt.Errorf("run %d setup: %w", i+1, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return outcomes, fmt.Errorf("run %d: %w", i+1, err)
		}
		if stepErr := result.Err(); stepErr != nil {
			fmt.Fprintf(out, "  halted: %v\n", stepErr)
		}

		outcome := RunOutcome{Name: cfg.Name, Result: result}
		if st != nil {
			outcome.RunID, err = st.Save(experiment.Metadata(cfg), result)
			if err != nil {
				return outcomes, fmt.Errorf("run %d save: %w", i+1, err)
			}
		}
		outcomes = append(outcomes, outcome)
	}

	return outcomes, nil
}

// GSweep runs one source across evenly spaced gravitational constants
type GSweep struct {
	Source   string
	GMin     float64
	GMax     float64
	NumSteps int
	Steps    int
}

// SweepResult holds results from one sweep point
type SweepResult struct {
	G          float64
	StepsTaken int
	Metrics    map[string]float64
	Err        error
}

// RunSweep executes a G sweep
func RunSweep(ctx context.Context, sweep *GSweep, out io.Writer) ([]SweepResult, error) {
	if sweep.NumSteps < 2 {
		return nil, fmt.Errorf("sweep needs at least 2 points, got %d", sweep.NumSteps)
	}

	base, err := experiment.Resolve(sweep.Source)
	if err != nil {
		return nil, err
	}

	gStep := (sweep.GMax - sweep.GMin) / float64(sweep.NumSteps-1)
	cfgs := make([]*config.Config, sweep.NumSteps)
	for i := range cfgs {
		cfg := base.Clone()
		cfg.G = sweep.GMin + float64(i)*gStep
		if sweep.Steps > 0 {
			cfg.Steps = sweep.Steps
		}
		cfgs[i] = cfg
	}

	fmt.Fprintf(out, "sweeping g over %d points\n", sweep.NumSteps)
	runs, err := runEnsemble(ctx, cfgs)
	if err != nil {
		return nil, err
	}

	results := make([]SweepResult, len(runs))
	for i, result := range runs {
		results[i] = SweepResult{
			G:          cfgs[i].G,
			StepsTaken: result.StepsTaken,
			Metrics:    result.Metrics,
			Err:        result.Err(),
		}
	}

	return results, nil
}

// MonteCarloConfig defines Monte Carlo simulation parameters
type MonteCarloConfig struct {
	Source       string
	Perturbation float64
	NumTrials    int
	Steps        int
	Seed         int64
}

// MonteCarloResult holds the outcome of one perturbed trial
type MonteCarloResult struct {
	TrialID    int
	Velocities [][2]float64
	StepsTaken int
	Stable     bool // no degenerate step and every body stayed bound
	Err        error
}

// RunMonteCarlo executes trials with random initial velocity perturbations
func RunMonteCarlo(ctx context.Context, mc *MonteCarloConfig, out io.Writer) ([]MonteCarloResult, error) {
	if mc.NumTrials < 1 {
		return nil, fmt.Errorf("monte carlo needs at least 1 trial, got %d", mc.NumTrials)
	}

	base, err := experiment.Resolve(mc.Source)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(mc.Seed))
	if mc.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	cfgs := make([]*config.Config, mc.NumTrials)
	velocities := make([][][2]float64, mc.NumTrials)
	for trial := range cfgs {
		cfg := base.Clone()
		if mc.Steps > 0 {
			cfg.Steps = mc.Steps
		}

		velocities[trial] = make([][2]float64, len(cfg.Bodies))
		for i := range cfg.Bodies {
			for k := 0; k < 2; k++ {
				cfg.Bodies[i].Vel[k] += (rng.Float64() - 0.5) * 2 * mc.Perturbation
			}
			velocities[trial][i] = cfg.Bodies[i].Vel
		}
		cfgs[trial] = cfg
	}

	fmt.Fprintf(out, "monte carlo: %d trials\n", mc.NumTrials)
	runs, err := runEnsemble(ctx, cfgs)
	if err != nil {
		return nil, err
	}

	results := make([]MonteCarloResult, len(runs))
	for trial, result := range runs {
		results[trial] = MonteCarloResult{
			TrialID:    trial,
			Velocities: velocities[trial],
			StepsTaken: result.StepsTaken,
			Stable:     result.Err() == nil && result.Metrics["bound_fraction"] == 1,
			Err:        result.Err(),
		}
	}

	return results, nil
}

// MonteCarloStats computes summary statistics from Monte Carlo results
func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
