package config

import "sort"

var Presets = map[string]*Config{
	"dam_break": DefaultConfig(),
	"small":     small(),
	"viscous":   viscous(),
	"splash":    splash(),
	"tight":     tight(),
}

// small is the benchmark scene: a 2000-particle dam for 100 frames.
func small() *Config {
	cfg := DefaultConfig()
	cfg.Name = "small"
	cfg.Particles.Dam = 2000
	cfg.Run.Frames = 100
	return cfg
}

func viscous() *Config {
	cfg := DefaultConfig()
	cfg.Name = "viscous"
	cfg.Particles.Dam = 3000
	cfg.Physics.LinearViscosity = 1.5
	cfg.Physics.QuadraticViscosity = 2.0
	return cfg
}

func splash() *Config {
	cfg := DefaultConfig()
	cfg.Name = "splash"
	cfg.Particles.Dam = 2500
	cfg.Physics.Gravity = [2]float64{0, -4.9}
	cfg.Run.Frames = 300
	cfg.Run.Blocks = []int{40, 100, 160}
	return cfg
}

func tight() *Config {
	cfg := DefaultConfig()
	cfg.Name = "tight"
	cfg.Domain = DomainConfig{Width: 6, Height: 4}
	cfg.Particles.Dam = 1500
	cfg.Particles.Block = 200
	cfg.Run.Frames = 200
	return cfg
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
