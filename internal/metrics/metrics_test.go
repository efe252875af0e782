package metrics

import (
	"image/color"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/verletsim/internal/dynamo"
	"github.com/san-kum/verletsim/internal/sim"
)

func TestFill(t *testing.T) {
	m := NewFill()
	m.Observe(&sim.Frame{Stats: sim.Stats{FillPercent: 12.5}})
	m.Observe(&sim.Frame{Stats: sim.Stats{FillPercent: 40}})

	if m.Value() != 40 {
		t.Errorf("expected latest fill 40, got %f", m.Value())
	}
	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestContacts(t *testing.T) {
	m := NewContacts()
	if m.Value() != 0 {
		t.Error("expected zero before any observation")
	}

	for _, c := range []int{2, 4, 9} {
		m.Observe(&sim.Frame{Stats: sim.Stats{Contacts: c}})
	}
	if m.Value() != 5 {
		t.Errorf("expected mean 5, got %f", m.Value())
	}
}

func TestBoundaryViolation(t *testing.T) {
	m := NewBoundaryViolation()

	inside := dynamo.NewParticle(r2.Vec{X: 50}, 10, color.RGBA{})
	m.Observe(frameWith(inside))
	if m.Value() != 0 {
		t.Errorf("expected no violation, got %f", m.Value())
	}

	outside := dynamo.NewParticle(r2.Vec{Y: -93}, 10, color.RGBA{})
	m.Observe(frameWith(inside, outside))
	if math.Abs(m.Value()-3) > 1e-12 {
		t.Errorf("expected violation 3, got %f", m.Value())
	}

	m.Observe(frameWith(inside))
	if math.Abs(m.Value()-3) > 1e-12 {
		t.Error("violation should keep the worst value")
	}
}

func TestOverlap(t *testing.T) {
	m := NewOverlap()

	a := dynamo.NewParticle(r2.Vec{}, 10, color.RGBA{})
	b := dynamo.NewParticle(r2.Vec{X: 16}, 10, color.RGBA{})
	m.Observe(frameWith(a, b))
	if math.Abs(m.Value()-4) > 1e-12 || math.Abs(m.Last()-4) > 1e-12 {
		t.Errorf("expected overlap 4, got %f", m.Value())
	}

	b.Pos.X = 30
	m.Observe(frameWith(a, b))
	if m.Last() != 0 || math.Abs(m.Value()-4) > 1e-12 {
		t.Errorf("expected last 0 and worst 4, got %f / %f", m.Last(), m.Value())
	}
}

func TestDefault(t *testing.T) {
	names := map[string]bool{}
	for _, m := range Default(true) {
		names[m.Name()] = true
	}
	for _, want := range []string{"fill_percent", "contacts", "boundary_violation", "kinetic_energy", "max_overlap"} {
		if !names[want] {
			t.Errorf("missing metric %s", want)
		}
	}
	if len(Default(false)) != len(Default(true))-1 {
		t.Error("overlap metric should be optional")
	}
}

func TestMetricsWithSimulator(t *testing.T) {
	cfg := sim.DefaultConfig()
	cfg.Capacity = 50
	s, err := sim.New(cfg)
	if err != nil {
		t.Fatal(err)
	}

	fill, energy, contacts := NewFill(), NewKineticEnergy(), NewContacts()
	s.AddMetric(fill)
	s.AddMetric(energy)
	s.AddMetric(contacts)

	for i := 0; i < 120; i++ {
		s.Step(1.0 / 60)
	}

	if s.Stats().Active != 50 {
		t.Errorf("expected 50 active, got %d", s.Stats().Active)
	}
	if fill.Value() != s.Stats().FillPercent {
		t.Errorf("fill metric %f does not match stats %f", fill.Value(), s.Stats().FillPercent)
	}
	if energy.Value() <= 0 {
		t.Error("falling particles should carry kinetic energy")
	}
	if contacts.Value() <= 0 {
		t.Error("particles spawned at one point should collide")
	}
}
