package experiment

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/dynamo"
)

func TestExperimentRun(t *testing.T) {
	cfg := config.GetPreset("binary")
	cfg.Steps = 100
	cfg.SampleEvery = 10

	exp, err := FromConfig(cfg)
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	result, err := exp.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.StepsTaken != 100 {
		t.Errorf("expected 100 steps, got %d", result.StepsTaken)
	}
	if len(result.Snapshots) != 11 {
		t.Errorf("expected 11 snapshots, got %d", len(result.Snapshots))
	}
	if last := result.Snapshots[len(result.Snapshots)-1]; last.Step != 100 {
		t.Errorf("expected last snapshot at step 100, got %d", last.Step)
	}
	if result.Metrics["momentum_max"] > 1e-9 {
		t.Errorf("momentum drifted: %g", result.Metrics["momentum_max"])
	}
	if _, ok := result.Metrics["energy_drift"]; !ok {
		t.Error("energy_drift metric missing")
	}
}

func TestExperimentRun_KeepsFinalState(t *testing.T) {
	cfg := config.GetPreset("binary")
	cfg.Steps = 7
	cfg.SampleEvery = 5

	exp, err := FromConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	result, err := exp.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	steps := make([]int, len(result.Snapshots))
	for i, s := range result.Snapshots {
		steps[i] = s.Step
	}
	want := []int{0, 5, 7}
	if len(steps) != len(want) {
		t.Fatalf("expected steps %v, got %v", want, steps)
	}
	for i := range want {
		if steps[i] != want[i] {
			t.Fatalf("expected steps %v, got %v", want, steps)
		}
	}
}

func TestExperimentRun_HaltsOnDegenerate(t *testing.T) {
	sim, err := dynamo.New([]dynamo.BodySpec{
		{Mass: 1, Position: dynamo.V(0, 0)},
		{Mass: 1, Position: dynamo.V(0, 0)},
	}, dynamo.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	exp := New(Config{Name: "clash", Steps: 10, SampleEvery: 1}, sim)
	result, err := exp.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.StepsTaken != 0 {
		t.Errorf("expected no steps, got %d", result.StepsTaken)
	}
	if !errors.Is(result.Err(), dynamo.ErrDegenerateConfiguration) {
		t.Errorf("expected ErrDegenerateConfiguration, got %v", result.Err())
	}
	if len(result.Snapshots) != 1 {
		t.Errorf("expected only the initial snapshot, got %d", len(result.Snapshots))
	}
}

func TestExperimentRun_Cancelled(t *testing.T) {
	cfg := config.GetPreset("binary")
	exp, err := FromConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	exp.cfg.Interval = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := exp.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result.StepsTaken != 0 {
		t.Errorf("expected no steps, got %d", result.StepsTaken)
	}
}

func TestExperimentRun_Paced(t *testing.T) {
	cfg := config.GetPreset("single")
	exp, err := FromConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	exp.cfg.Steps = 3
	exp.cfg.Interval = time.Millisecond

	start := time.Now()
	result, err := exp.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if result.StepsTaken != 3 {
		t.Errorf("expected 3 steps, got %d", result.StepsTaken)
	}
	if time.Since(start) < 3*time.Millisecond {
		t.Error("steps were not paced by the interval")
	}
}

func TestExperimentInvalidConfig(t *testing.T) {
	sim, err := dynamo.New([]dynamo.BodySpec{{Mass: 1}}, dynamo.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		cfg  Config
	}{
		{"negative steps", Config{Steps: -1, SampleEvery: 1}},
		{"zero sample", Config{Steps: 1, SampleEvery: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.cfg, sim).Run(context.Background()); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestResolve(t *testing.T) {
	cfg, err := Resolve("planets")
	if err != nil {
		t.Fatalf("resolve preset failed: %v", err)
	}
	if len(cfg.Bodies) != 4 {
		t.Errorf("expected 4 bodies, got %d", len(cfg.Bodies))
	}

	path := filepath.Join(t.TempDir(), "custom.yaml")
	custom := config.GetPreset("binary")
	custom.Name = "from-file"
	if err := config.Save(path, custom); err != nil {
		t.Fatal(err)
	}
	cfg, err = Resolve(path)
	if err != nil {
		t.Fatalf("resolve file failed: %v", err)
	}
	if cfg.Name != "from-file" {
		t.Errorf("expected from-file, got %s", cfg.Name)
	}

	if _, err := Resolve("no-such-thing"); err == nil {
		t.Error("expected error for unknown source")
	}
}

func TestMetadata(t *testing.T) {
	cfg := config.GetPreset("planets")
	meta := Metadata(cfg)

	if meta.Name != "planets" || meta.G != cfg.G {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if len(meta.Masses) != 4 || meta.Masses[0] != 700 || meta.Masses[1] != 300 {
		t.Errorf("unexpected masses %v", meta.Masses)
	}
	if len(meta.Colors) != 4 || meta.Colors[2] != "#0000ff" {
		t.Errorf("unexpected colors %v", meta.Colors)
	}
}
