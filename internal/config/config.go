package config

import (
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/verletsim/internal/constraints"
	"github.com/san-kum/verletsim/internal/dynamo"
	"github.com/san-kum/verletsim/internal/sim"
	"github.com/san-kum/verletsim/internal/spawn"
)

const (
	DefaultCapacity    = 1000
	DefaultSubSteps    = 8
	DefaultFrameDt     = 1.0 / 60
	DefaultDuration    = 30.0
	DefaultBoundaryX   = 500.0
	DefaultBoundaryY   = 500.0
	DefaultBoundaryR   = 450.0
	DefaultGravity     = 1000.0
	DefaultRadiusMin   = 1.0
	DefaultRadiusMax   = 20.0
	DefaultOffsetX     = 200.0
	DefaultOffsetY     = -200.0
	DefaultFillCeiling = 95.0
)

type Config struct {
	Capacity  int             `yaml:"capacity"`
	SubSteps  int             `yaml:"sub_steps"`
	FrameDt   float64         `yaml:"frame_dt"`
	Duration  float64         `yaml:"duration"`
	Seed      int64           `yaml:"seed"`
	Boundary  BoundaryConfig  `yaml:"boundary"`
	Gravity   VecConfig       `yaml:"gravity"`
	Collision CollisionConfig `yaml:"collision"`
	Spawn     SpawnConfig     `yaml:"spawn"`
}

type BoundaryConfig struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Radius float64 `yaml:"radius"`
}

type VecConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

type CollisionConfig struct {
	Policy   string  `yaml:"policy"`
	Response float64 `yaml:"response"`
}

type SpawnConfig struct {
	RadiusMin   float64 `yaml:"radius_min"`
	RadiusMax   float64 `yaml:"radius_max"`
	OffsetX     float64 `yaml:"offset_x"`
	OffsetY     float64 `yaml:"offset_y"`
	FillCeiling float64 `yaml:"fill_ceiling"`
	MinInterval float64 `yaml:"min_interval"`
}

func DefaultConfig() *Config {
	return &Config{
		Capacity: DefaultCapacity,
		SubSteps: DefaultSubSteps,
		FrameDt:  DefaultFrameDt,
		Duration: DefaultDuration,
		Boundary: BoundaryConfig{
			X:      DefaultBoundaryX,
			Y:      DefaultBoundaryY,
			Radius: DefaultBoundaryR,
		},
		Gravity: VecConfig{Y: DefaultGravity},
		Collision: CollisionConfig{
			Policy:   constraints.MassWeighted.String(),
			Response: constraints.DefaultResponse,
		},
		Spawn: SpawnConfig{
			RadiusMin:   DefaultRadiusMin,
			RadiusMax:   DefaultRadiusMax,
			OffsetX:     DefaultOffsetX,
			OffsetY:     DefaultOffsetY,
			FillCeiling: DefaultFillCeiling,
		},
	}
}

// Load reads a YAML file on top of the defaults, so a file only needs the
// keys it changes.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
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

// Sim converts the file representation into a simulator configuration.
func (c *Config) Sim() (sim.Config, error) {
	policy, err := constraints.ParsePolicy(c.Collision.Policy)
	if err != nil {
		return sim.Config{}, dynamo.NewConfigError("collision.policy", c.Collision.Policy, err)
	}
	return sim.Config{
		Capacity: c.Capacity,
		SubSteps: c.SubSteps,
		Boundary: dynamo.Boundary{
			Center: r2.Vec{X: c.Boundary.X, Y: c.Boundary.Y},
			Radius: c.Boundary.Radius,
		},
		Gravity:  r2.Vec{X: c.Gravity.X, Y: c.Gravity.Y},
		Policy:   policy,
		Response: c.Collision.Response,
		Spawn: spawn.Config{
			RadiusMin:   c.Spawn.RadiusMin,
			RadiusMax:   c.Spawn.RadiusMax,
			Offset:      r2.Vec{X: c.Spawn.OffsetX, Y: c.Spawn.OffsetY},
			FillCeiling: c.Spawn.FillCeiling,
			MinInterval: c.Spawn.MinInterval,
		},
		Seed: c.Seed,
	}, nil
}

// Validate rejects configurations a simulator cannot be built from.
func (c *Config) Validate() error {
	if !(c.FrameDt > 0) {
		return fmt.Errorf("frame_dt must be positive, got %f", c.FrameDt)
	}
	if !(c.Duration > 0) {
		return fmt.Errorf("duration must be positive, got %f", c.Duration)
	}
	sc, err := c.Sim()
	if err != nil {
		return err
	}
	return sc.Validate()
}

// Frames returns the number of whole frames that fit in Duration.
func (c *Config) Frames() int {
	if !(c.FrameDt > 0) {
		return 0
	}
	return int(math.Round(c.Duration / c.FrameDt))
}
