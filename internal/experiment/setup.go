package experiment

import (
	"fmt"
	"os"

	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/metrics"
	"github.com/san-kum/gravsim/internal/storage"
)

// Resolve loads a YAML config when source names an existing file and falls
// back to the preset of that name otherwise.
func Resolve(source string) (*config.Config, error) {
	if _, err := os.Stat(source); err == nil {
		return config.Load(source)
	}
	cfg := config.GetPreset(source)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset or config file: %s (presets: %v)", source, config.ListPresets())
	}
	return cfg, nil
}

// FromConfig builds the simulation described by cfg and attaches the
// default metrics.
func FromConfig(cfg *config.Config) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sim, err := dynamo.New(cfg.BodySpecs(), cfg.SimConfig())
	if err != nil {
		return nil, err
	}

	exp := New(Config{
		Name:        cfg.Name,
		Steps:       cfg.Steps,
		SampleEvery: cfg.SampleEvery,
	}, sim)
	for _, m := range metrics.Default(cfg.G) {
		exp.AddMetric(m)
	}
	return exp, nil
}

// Metadata describes cfg for the run store.
func Metadata(cfg *config.Config) storage.RunMetadata {
	masses := make([]float64, len(cfg.Bodies))
	for i, b := range cfg.Bodies {
		masses[i] = b.Mass
	}
	return storage.RunMetadata{
		Name:        cfg.Name,
		G:           cfg.G,
		Center:      [2]float64{cfg.Center.X, cfg.Center.Y},
		Masses:      masses,
		Colors:      cfg.Colors(),
		SampleEvery: cfg.SampleEvery,
	}
}
