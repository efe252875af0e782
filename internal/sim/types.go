package sim

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/verletsim/internal/constraints"
	"github.com/san-kum/verletsim/internal/dynamo"
	"github.com/san-kum/verletsim/internal/spawn"
)

// Config holds everything a Simulator needs. It is validated once by New.
type Config struct {
	Capacity int
	SubSteps int
	Boundary dynamo.Boundary
	Gravity  r2.Vec
	Policy   constraints.Policy
	Response float64
	Spawn    spawn.Config
	Seed     int64
}

func DefaultConfig() Config {
	return Config{
		Capacity: 1000,
		SubSteps: 8,
		Boundary: dynamo.Boundary{Center: r2.Vec{X: 500, Y: 500}, Radius: 450},
		Gravity:  r2.Vec{X: 0, Y: 1000},
		Policy:   constraints.MassWeighted,
		Response: constraints.DefaultResponse,
		Spawn:    spawn.DefaultConfig(),
	}
}

// Stats are the diagnostic scalars of the most recent frame.
type Stats struct {
	Frame       int     `json:"frame"`
	Time        float64 `json:"time"`
	Active      int     `json:"active"`
	Capacity    int     `json:"capacity"`
	FillPercent float64 `json:"fill_percent"`
	Contacts    int     `json:"contacts"`
	Spawned     bool    `json:"spawned"`
}

// Frame is the read-only view handed to metrics and observers after each
// step. Particles aliases the simulator's arena and must not be modified
// or retained.
type Frame struct {
	Particles []dynamo.Particle
	Boundary  dynamo.Boundary
	Stats     Stats
	Dt        float64
	SubDt     float64
}

type Metric interface {
	Name() string
	Observe(f *Frame)
	Value() float64
	Reset()
}

type Observer interface {
	OnFrame(f *Frame)
}

// FrameSource supplies frame delta times. ok=false is the stop signal.
type FrameSource interface {
	Next() (dt float64, ok bool)
}

// FixedFrames yields Count frames of Dt seconds.
type FixedFrames struct {
	Dt    float64
	Count int
	given int
}

func (f *FixedFrames) Next() (float64, bool) {
	if f.given >= f.Count {
		return 0, false
	}
	f.given++
	return f.Dt, true
}

type Result struct {
	Frames    []Stats
	Metrics   map[string]float64
	Final     Stats
	Particles []dynamo.Particle
	Seed      int64
}
