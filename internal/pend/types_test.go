package pend

import (
	"errors"
	"math"
	"testing"
)

func TestStateLayout(t *testing.T) {
	// n=2: [x, th1, th2, xdot, w1, w2]
	s := State{1.0, 0.1, 0.2, 3.0, 0.5, 0.6}

	if s.Links() != 2 {
		t.Fatalf("expected 2 links, got %d", s.Links())
	}
	if s.CartPos() != 1.0 {
		t.Errorf("cart pos: got %f", s.CartPos())
	}
	if s.Angle(1) != 0.1 || s.Angle(2) != 0.2 {
		t.Errorf("angles: got %f %f", s.Angle(1), s.Angle(2))
	}
	if s.CartVel() != 3.0 {
		t.Errorf("cart vel: got %f", s.CartVel())
	}
	if s.AngVel(1) != 0.5 || s.AngVel(2) != 0.6 {
		t.Errorf("ang vels: got %f %f", s.AngVel(1), s.AngVel(2))
	}
	if Dim(2) != len(s) {
		t.Errorf("Dim(2) = %d, want %d", Dim(2), len(s))
	}
}

func TestStateClone(t *testing.T) {
	s := State{1, 2, 3, 4}
	c := s.Clone()
	c[0] = 99
	if s[0] != 1 {
		t.Error("clone aliases original")
	}
}

func TestStateIsValid(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  bool
	}{
		{"finite", State{1, 2, 3}, true},
		{"nan", State{1, math.NaN(), 3}, false},
		{"inf", State{math.Inf(1), 2, 3}, false},
		{"empty", State{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.want {
				t.Errorf("IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStepErrorUnwrap(t *testing.T) {
	err := &StepError{Step: 7, Time: 0.07, Wrapped: ErrSingularSystem}
	if !errors.Is(err, ErrSingularSystem) {
		t.Error("StepError does not unwrap to sentinel")
	}
}
