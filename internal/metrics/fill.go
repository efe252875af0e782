package metrics

import "github.com/san-kum/verletsim/internal/sim"

// Fill reports the fill percentage of the latest frame.
type Fill struct {
	name string
	last float64
}

func NewFill() *Fill {
	return &Fill{name: "fill_percent"}
}

func (f *Fill) Name() string          { return f.name }
func (f *Fill) Observe(fr *sim.Frame) { f.last = fr.Stats.FillPercent }
func (f *Fill) Value() float64        { return f.last }
func (f *Fill) Reset()                { f.last = 0 }

// Default returns a fresh instance of every metric. The O(n²) overlap
// metric is included only when withOverlap is set.
func Default(withOverlap bool) []sim.Metric {
	ms := []sim.Metric{
		NewFill(),
		NewContacts(),
		NewBoundaryViolation(),
		NewKineticEnergy(),
	}
	if withOverlap {
		ms = append(ms, NewOverlap())
	}
	return ms
}
