package config

import "sort"

// Presets reproduce the known variants of the solver: sub-step count,
// response policy and spawn gating differ between them.
var Presets = map[string]*Config{
	"canonical": DefaultConfig(),
	"simple": with(func(c *Config) {
		c.SubSteps = 1
		c.Collision = CollisionConfig{Policy: "equal", Response: 1.0}
		c.Spawn.FillCeiling = 80
	}),
	"interval": with(func(c *Config) {
		c.Spawn.MinInterval = 0.05
	}),
	"dense": with(func(c *Config) {
		c.Spawn.RadiusMin, c.Spawn.RadiusMax = 10, 30
		c.Spawn.FillCeiling = 80
		c.Spawn.MinInterval = 0.01
	}),
}

func with(fn func(*Config)) *Config {
	c := DefaultConfig()
	fn(c)
	return c
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	cp := *cfg
	return &cp
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
