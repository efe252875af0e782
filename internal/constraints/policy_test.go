package constraints

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/verletsim/internal/dynamo"
)

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in   string
		want Policy
		err  bool
	}{
		{"", MassWeighted, false},
		{"mass", MassWeighted, false},
		{"Mass_Weighted", MassWeighted, false},
		{"equal", EqualSplit, false},
		{" equal-split ", EqualSplit, false},
		{"elastic", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePolicy(tt.in)
			if tt.err {
				if !errors.Is(err, dynamo.ErrUnknownPolicy) {
					t.Errorf("expected ErrUnknownPolicy, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParsePolicy(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestPolicyString(t *testing.T) {
	if MassWeighted.String() != "mass" || EqualSplit.String() != "equal" {
		t.Errorf("unexpected names: %s %s", MassWeighted, EqualSplit)
	}
	if Policy(9).String() != "policy(9)" {
		t.Errorf("unexpected fallback name: %s", Policy(9))
	}
}

func TestDirectionFallback(t *testing.T) {
	if d := direction(r2.Vec{}); d != Fallback {
		t.Errorf("direction(0) = %v, want %v", d, Fallback)
	}
}
