// Package spawn admits new particles into a simulation.
//
// Admission is gated by free capacity, by the share of the boundary area
// already occupied by spawned discs, and optionally by a minimum time
// between spawns. All timers and the occupied area are owned by the
// [Spawner]; nothing is global.
package spawn

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/verletsim/internal/dynamo"
)

type Config struct {
	RadiusMin float64
	RadiusMax float64
	// Offset is the spawn point relative to the boundary center.
	Offset r2.Vec
	// FillCeiling is the occupied share of the boundary area, in percent,
	// at which spawning stops.
	FillCeiling float64
	// MinInterval is the minimum time in seconds between two spawns.
	// Zero disables the rate limit.
	MinInterval float64
}

func DefaultConfig() Config {
	return Config{
		RadiusMin:   1,
		RadiusMax:   20,
		Offset:      r2.Vec{X: 200, Y: -200},
		FillCeiling: 95,
	}
}

type Spawner struct {
	cfg       Config
	rng       *rand.Rand
	occupied  float64
	elapsed   float64
	sinceLast float64
	spawned   int
}

func New(cfg Config, seed int64) *Spawner {
	return &Spawner{
		cfg: cfg,
		rng: rand.New(rand.NewSource(seed)),
	}
}

// TrySpawn advances the spawner clocks by dt and appends at most one new
// particle to set. Refusals are silent.
func (s *Spawner) TrySpawn(set *dynamo.ParticleSet, b dynamo.Boundary, dt float64) (dynamo.Particle, bool) {
	s.elapsed += dt
	s.sinceLast += dt

	if set.Full() {
		return dynamo.Particle{}, false
	}
	if s.FillPercent(b) >= s.cfg.FillCeiling {
		return dynamo.Particle{}, false
	}
	if s.sinceLast < s.cfg.MinInterval {
		return dynamo.Particle{}, false
	}

	p := dynamo.NewParticle(r2.Add(b.Center, s.cfg.Offset), s.radius(), Rainbow(s.elapsed))
	p.Phase = s.elapsed
	if !set.Append(p) {
		return dynamo.Particle{}, false
	}

	s.occupied += p.Area()
	s.sinceLast = 0
	s.spawned++
	return p, true
}

// radius draws from [RadiusMin, RadiusMax]. Whole-number bounds give whole
// radii, both ends included.
func (s *Spawner) radius() float64 {
	lo, hi := s.cfg.RadiusMin, s.cfg.RadiusMax
	if hi <= lo {
		return lo
	}
	if lo == math.Trunc(lo) && hi == math.Trunc(hi) {
		return lo + float64(s.rng.Intn(int(hi-lo)+1))
	}
	return lo + s.rng.Float64()*(hi-lo)
}

// FillPercent returns the spawned area as a percentage of the boundary area.
func (s *Spawner) FillPercent(b dynamo.Boundary) float64 {
	area := b.Area()
	if area <= 0 {
		return 100
	}
	return 100 * s.occupied / area
}

// Occupied returns the summed disc area of every spawned particle.
func (s *Spawner) Occupied() float64 { return s.occupied }

// Elapsed returns the simulation time seen by the spawner.
func (s *Spawner) Elapsed() float64 { return s.elapsed }

// Spawned returns the number of admitted particles.
func (s *Spawner) Spawned() int { return s.spawned }

func (s *Spawner) Config() Config { return s.cfg }
