package sim

import (
	"context"
	"math"

	"github.com/san-kum/verletsim/internal/constraints"
	"github.com/san-kum/verletsim/internal/dynamo"
	"github.com/san-kum/verletsim/internal/integrators"
	"github.com/san-kum/verletsim/internal/spawn"
)

// Simulator owns the particle arena, the boundary and the spawner and
// advances them one frame at a time. It is not safe for concurrent use.
type Simulator struct {
	cfg        Config
	set        *dynamo.ParticleSet
	boundary   dynamo.Boundary
	spawner    *spawn.Spawner
	integrator *integrators.Verlet
	solver     *constraints.Solver
	metrics    []Metric
	observers  []Observer
	stats      Stats
}

func New(cfg Config) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Simulator{
		cfg:        cfg,
		set:        dynamo.NewParticleSet(cfg.Capacity),
		boundary:   cfg.Boundary,
		spawner:    spawn.New(cfg.Spawn, cfg.Seed),
		integrator: integrators.NewVerlet(),
		solver:     constraints.NewSolver(cfg.Policy, cfg.Response),
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
		stats:      Stats{Capacity: cfg.Capacity},
	}, nil
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Step advances the simulation by one frame: at most one spawn, then
// SubSteps rounds of gravity, boundary clamp and integration for every
// active particle, each round closed by one pairwise collision pass.
// Negative or NaN frame times are treated as zero.
func (s *Simulator) Step(frameDt float64) {
	if !(frameDt > 0) {
		frameDt = 0
	}

	_, spawned := s.spawner.TrySpawn(s.set, s.boundary, frameDt)

	subDt := frameDt / float64(s.cfg.SubSteps)
	active := s.set.Active()
	contacts := 0
	for step := 0; step < s.cfg.SubSteps; step++ {
		for i := range active {
			p := &active[i]
			integrators.Accelerate(p, s.cfg.Gravity)
			constraints.ClampToBoundary(p, s.boundary)
			s.integrator.Step(p, subDt)
		}
		contacts += s.solver.Solve(active)
	}

	s.stats.Frame++
	s.stats.Time += frameDt
	s.stats.Active = s.set.Len()
	s.stats.FillPercent = s.spawner.FillPercent(s.boundary)
	s.stats.Contacts = contacts
	s.stats.Spawned = spawned

	if len(s.metrics) == 0 && len(s.observers) == 0 {
		return
	}
	f := &Frame{
		Particles: active,
		Boundary:  s.boundary,
		Stats:     s.stats,
		Dt:        frameDt,
		SubDt:     subDt,
	}
	for _, m := range s.metrics {
		m.Observe(f)
	}
	for _, o := range s.observers {
		o.OnFrame(f)
	}
}

// Run steps the simulation once per frame supplied by src until src
// signals stop or ctx is done.
func (s *Simulator) Run(ctx context.Context, src FrameSource) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		dt, ok := src.Next()
		if !ok {
			return nil
		}
		s.Step(dt)
	}
}

// RunFrames runs a headless simulation of frames fixed-length frames and
// records the stats of every frame.
func (s *Simulator) RunFrames(ctx context.Context, frames int, dt float64) (*Result, error) {
	result := &Result{
		Frames:  make([]Stats, 0, frames),
		Metrics: make(map[string]float64),
		Seed:    s.cfg.Seed,
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	rec := &recorder{result: result}
	s.AddObserver(rec)
	defer s.removeObserver(rec)

	err := s.Run(ctx, &FixedFrames{Dt: dt, Count: frames})

	result.Final = s.stats
	result.Particles = s.set.Snapshot()
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	return result, err
}

type recorder struct {
	result *Result
}

func (r *recorder) OnFrame(f *Frame) {
	r.result.Frames = append(r.result.Frames, f.Stats)
}

func (s *Simulator) removeObserver(o Observer) {
	for i, obs := range s.observers {
		if obs == o {
			s.observers = append(s.observers[:i], s.observers[i+1:]...)
			return
		}
	}
}

// Particles returns the active particles. The slice aliases internal state:
// callers must treat it as read-only and must not keep it across frames.
func (s *Simulator) Particles() []dynamo.Particle { return s.set.Active() }

// Snapshot returns a copy of the active particles.
func (s *Simulator) Snapshot() []dynamo.Particle { return s.set.Snapshot() }

func (s *Simulator) Boundary() dynamo.Boundary { return s.boundary }
func (s *Simulator) Stats() Stats              { return s.stats }
func (s *Simulator) Config() Config            { return s.cfg }

// Occupied returns the summed area of every particle spawned so far.
func (s *Simulator) Occupied() float64 { return s.spawner.Occupied() }

// Valid reports whether every active particle has finite state.
func (s *Simulator) Valid() bool {
	for i := range s.set.Active() {
		if !s.set.At(i).IsValid() {
			return false
		}
	}
	return true
}

// Validate checks the configuration. Errors wrap the dynamo sentinels.
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return dynamo.NewConfigError("capacity", c.Capacity, dynamo.ErrInvalidCapacity)
	}
	if !(c.Boundary.Radius > 0) || math.IsInf(c.Boundary.Radius, 0) {
		return dynamo.NewConfigError("boundary.radius", c.Boundary.Radius, dynamo.ErrInvalidBoundary)
	}
	if c.SubSteps < 1 {
		return dynamo.NewConfigError("sub_steps", c.SubSteps, dynamo.ErrInvalidSubSteps)
	}
	if c.Policy != constraints.MassWeighted && c.Policy != constraints.EqualSplit {
		return dynamo.NewConfigError("collision.policy", c.Policy, dynamo.ErrUnknownPolicy)
	}
	if !(c.Response > 0) || c.Response > 1 {
		return dynamo.NewConfigError("collision.response", c.Response, dynamo.ErrInvalidResponse)
	}
	sp := c.Spawn
	if !(sp.RadiusMin > 0) || sp.RadiusMax < sp.RadiusMin || sp.RadiusMax >= c.Boundary.Radius {
		return dynamo.NewConfigError("spawn.radius", [2]float64{sp.RadiusMin, sp.RadiusMax}, dynamo.ErrInvalidRadiusRange)
	}
	if !(sp.FillCeiling > 0) || sp.FillCeiling > 100 {
		return dynamo.NewConfigError("spawn.fill_ceiling", sp.FillCeiling, dynamo.ErrInvalidFillCeiling)
	}
	if sp.MinInterval < 0 {
		return dynamo.NewConfigError("spawn.min_interval", sp.MinInterval, dynamo.ErrInvalidInterval)
	}
	return nil
}
