package config

import (
	"fmt"
	"os"
	"time"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/trail"
	"gopkg.in/yaml.v3"
)

const (
	DefaultSteps       = 2000
	DefaultSampleEvery = 5
	DefaultInterval    = 20 * time.Millisecond
)

type Config struct {
	Name        string        `yaml:"name"`
	G           float64       `yaml:"g"`
	MinDistance float64       `yaml:"min_distance"`
	Center      Point         `yaml:"center"`
	Steps       int           `yaml:"steps"`
	SampleEvery int           `yaml:"sample_every"`
	Interval    time.Duration `yaml:"interval"`
	Trail       TrailConfig   `yaml:"trail"`
	Bodies      []BodyConfig  `yaml:"bodies"`
}

type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

type TrailConfig struct {
	Every    int `yaml:"every"`
	Capacity int `yaml:"capacity"`
}

type BodyConfig struct {
	Mass  float64    `yaml:"mass"`
	Pos   [2]float64 `yaml:"pos,flow"`
	Vel   [2]float64 `yaml:"vel,flow"`
	Color string     `yaml:"color,omitempty"`
}

// DefaultConfig returns every setting except the bodies.
func DefaultConfig() *Config {
	return &Config{
		Name:        "custom",
		G:           dynamo.DefaultG,
		MinDistance: dynamo.DefaultMinDistance,
		Steps:       DefaultSteps,
		SampleEvery: DefaultSampleEvery,
		Interval:    DefaultInterval,
		Trail: TrailConfig{
			Every:    trail.DefaultEvery,
			Capacity: trail.DefaultCapacity,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the settings the simulation core would otherwise reject
// later, so a bad file fails before anything runs.
func (c *Config) Validate() error {
	if len(c.Bodies) == 0 {
		return dynamo.ErrEmptySystem
	}
	for i, b := range c.Bodies {
		if _, err := dynamo.NewBody(b.Mass, vec(b.Pos), vec(b.Vel)); err != nil {
			return &dynamo.BodyError{Index: i, Mass: b.Mass, Wrapped: err}
		}
	}
	solver := dynamo.Solver{G: c.G, MinDistance: c.MinDistance}
	if err := solver.Validate(); err != nil {
		return err
	}
	if c.Steps < 0 {
		return fmt.Errorf("%w: steps must not be negative, got %d", dynamo.ErrInvalidConfig, c.Steps)
	}
	if c.SampleEvery < 1 {
		return fmt.Errorf("%w: sample_every must be at least 1, got %d", dynamo.ErrInvalidConfig, c.SampleEvery)
	}
	if c.Interval < 0 {
		return fmt.Errorf("%w: interval must not be negative, got %v", dynamo.ErrInvalidConfig, c.Interval)
	}
	if c.Trail.Every < 1 || c.Trail.Capacity < 1 {
		return fmt.Errorf("%w: trail every and capacity must be positive", dynamo.ErrInvalidConfig)
	}
	return nil
}

func (c *Config) BodySpecs() []dynamo.BodySpec {
	specs := make([]dynamo.BodySpec, len(c.Bodies))
	for i, b := range c.Bodies {
		specs[i] = dynamo.BodySpec{
			Mass:     b.Mass,
			Position: vec(b.Pos),
			Velocity: vec(b.Vel),
		}
	}
	return specs
}

func (c *Config) SimConfig() dynamo.Config {
	cfg := dynamo.DefaultConfig()
	cfg.G = c.G
	cfg.MinDistance = c.MinDistance
	cfg.Center = dynamo.V(c.Center.X, c.Center.Y)
	return cfg
}

// Colors returns one hex color per body, falling back to the palette.
func (c *Config) Colors() []string {
	colors := make([]string, len(c.Bodies))
	for i, b := range c.Bodies {
		if b.Color != "" {
			colors[i] = b.Color
		} else {
			colors[i] = Palette[i%len(Palette)]
		}
	}
	return colors
}

// Clone returns a deep copy so presets can be modified safely.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Bodies = make([]BodyConfig, len(c.Bodies))
	copy(cp.Bodies, c.Bodies)
	return &cp
}

func vec(p [2]float64) dynamo.Vec2 {
	return dynamo.V(p[0], p[1])
}
