package constraints

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/verletsim/internal/dynamo"
)

// Policy selects how an overlap is split between the two particles.
type Policy int

const (
	// MassWeighted moves each particle in proportion to the other's radius.
	MassWeighted Policy = iota
	// EqualSplit moves each particle by half of the correction.
	EqualSplit
)

const DefaultResponse = 0.75

func (p Policy) String() string {
	switch p {
	case MassWeighted:
		return "mass"
	case EqualSplit:
		return "equal"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParsePolicy accepts "mass", "mass_weighted", "equal" and "equal_split".
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "mass", "mass_weighted", "mass-weighted":
		return MassWeighted, nil
	case "equal", "equal_split", "equal-split":
		return EqualSplit, nil
	}
	return 0, fmt.Errorf("%w: %q", dynamo.ErrUnknownPolicy, s)
}

// Solver resolves overlaps between every pair of particles.
type Solver struct {
	Policy   Policy
	Response float64
}

func NewSolver(policy Policy, response float64) *Solver {
	return &Solver{Policy: policy, Response: response}
}

// Solve runs one pass over all pairs i < j in index order and returns the
// number of overlapping pairs it corrected. Corrections are applied
// immediately, so later pairs see earlier moves.
func (s *Solver) Solve(ps []dynamo.Particle) int {
	contacts := 0
	for i := 0; i < len(ps); i++ {
		a := &ps[i]
		for j := i + 1; j < len(ps); j++ {
			b := &ps[j]
			d := r2.Sub(a.Pos, b.Pos)
			minDist := a.Radius + b.Radius
			dist2 := r2.Norm2(d)
			if dist2 >= minDist*minDist {
				continue
			}
			s.resolve(a, b, d, math.Sqrt(dist2), minDist)
			contacts++
		}
	}
	return contacts
}

func (s *Solver) resolve(a, b *dynamo.Particle, d r2.Vec, dist, minDist float64) {
	n := direction(d)
	// delta is negative while overlapping
	delta := 0.5 * s.Response * (dist - minDist)

	var ka, kb float64
	switch s.Policy {
	case EqualSplit:
		ka, kb = 1, 1
	default:
		ka = b.Radius / minDist
		kb = a.Radius / minDist
	}

	a.Pos = r2.Sub(a.Pos, r2.Scale(ka*delta, n))
	b.Pos = r2.Add(b.Pos, r2.Scale(kb*delta, n))
}

// MaxOverlap returns the largest penetration depth among all pairs.
func MaxOverlap(ps []dynamo.Particle) float64 {
	worst := 0.0
	for i := 0; i < len(ps); i++ {
		for j := i + 1; j < len(ps); j++ {
			dist := r2.Norm(r2.Sub(ps[i].Pos, ps[j].Pos))
			if o := ps[i].Radius + ps[j].Radius - dist; o > worst {
				worst = o
			}
		}
	}
	return worst
}
