package config

import (
	"sort"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/trail"
)

// Palette is used for bodies without an explicit color.
var Palette = []string{"#ff4040", "#40c040", "#4080ff", "#ffd700", "#ff80ff", "#40e0d0"}

func preset(name string, steps int, bodies ...BodyConfig) *Config {
	return &Config{
		Name:        name,
		G:           dynamo.DefaultG,
		MinDistance: dynamo.DefaultMinDistance,
		Steps:       steps,
		SampleEvery: DefaultSampleEvery,
		Interval:    DefaultInterval,
		Trail:       TrailConfig{Every: trail.DefaultEvery, Capacity: trail.DefaultCapacity},
		Bodies:      bodies,
	}
}

var Presets = map[string]*Config{
	"planets": preset("planets", 5000,
		BodyConfig{Mass: 700, Pos: [2]float64{0, 0}, Vel: [2]float64{0, 0}, Color: "#ff0000"},
		BodyConfig{Mass: 300, Pos: [2]float64{0, -200}, Vel: [2]float64{1.5, 0}, Color: "#00ff00"},
		BodyConfig{Mass: 700, Pos: [2]float64{0, 1600}, Vel: [2]float64{0.8, 0}, Color: "#0000ff"},
		BodyConfig{Mass: 300, Pos: [2]float64{0, 1400}, Vel: [2]float64{2.3, 0}, Color: "#ffff00"},
	),
	"binary": preset("binary", 2000,
		BodyConfig{Mass: 700, Pos: [2]float64{0, 0}, Vel: [2]float64{0, 0}, Color: "#ff0000"},
		BodyConfig{Mass: 300, Pos: [2]float64{0, -200}, Vel: [2]float64{1.5, 0}, Color: "#00ff00"},
	),
	"infall": preset("infall", 400,
		BodyConfig{Mass: 700, Pos: [2]float64{0, 0}, Color: "#ff0000"},
		BodyConfig{Mass: 300, Pos: [2]float64{0, -200}, Color: "#00ff00"},
	),
	"single": preset("single", 500,
		BodyConfig{Mass: 100, Pos: [2]float64{0, 0}, Vel: [2]float64{1, 0.5}, Color: "#ffffff"},
	),
	"triangle": preset("triangle", 3000,
		BodyConfig{Mass: 500, Pos: [2]float64{0, 300}, Vel: [2]float64{-0.6, 0}},
		BodyConfig{Mass: 500, Pos: [2]float64{-259.8, -150}, Vel: [2]float64{0.3, -0.52}},
		BodyConfig{Mass: 500, Pos: [2]float64{259.8, -150}, Vel: [2]float64{0.3, 0.52}},
	),
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
