package reward

import (
	"math"
	"testing"

	"github.com/san-kum/pendlab/internal/pend"
)

func testParams() Params {
	return Params{
		PositionWeight:         1.0,
		AlignmentWeight:        0.1,
		UprightWeight:          1.0,
		StabilityWeight:        0.02,
		TerminationPenalty:     10.0,
		ArmLength:              0.5,
		TravelLimit:            2.5,
		AngularVelocityMax:     15.0,
		AngularAccelerationMax: 150.0,
	}
}

func TestTerminationPenaltyExact(t *testing.T) {
	m := NewManager(testParams())
	state := pend.State{0.3, 0.5, -0.2, 0.1, 1.0, -1.0}
	accels := []float64{2.0, -3.0}

	alive := m.Evaluate(state, accels, false)
	dead := m.Evaluate(state, accels, true)

	diff := alive.Total - dead.Total
	if math.Abs(diff-10.0) > 1e-12 {
		t.Errorf("termination penalty = %v, want exactly 10", diff)
	}
	// Only the total changes.
	if alive.Position != dead.Position || alive.Uprightness != dead.Uprightness ||
		alive.Misalignment != dead.Misalignment || alive.Stability != dead.Stability {
		t.Error("termination must not change individual components")
	}
}

func TestMisalignmentZeroWhenAnglesEqual(t *testing.T) {
	m := NewManager(testParams())

	for _, angle := range []float64{0, math.Pi / 2, -math.Pi / 2, 1.234} {
		state := pend.State{0, angle, angle, angle, 0, 0, 0, 0}
		c := m.Evaluate(state, []float64{0, 0, 0}, false)
		if c.Misalignment != 0 {
			t.Errorf("angle %v: misalignment = %v, want 0", angle, c.Misalignment)
		}
	}
}

func TestMisalignmentCyclic(t *testing.T) {
	p := testParams()
	m := NewManager(p)

	// n=3: |th1-th2| + |th2-th3| + |th3-th1|, scaled by w/pi.
	state := pend.State{0, 0.1, 0.3, 0.2, 0, 0, 0, 0}
	c := m.Evaluate(state, []float64{0, 0, 0}, false)
	want := p.AlignmentWeight * (0.2 + 0.1 + 0.1) / math.Pi
	if math.Abs(c.Misalignment-want) > 1e-12 {
		t.Errorf("misalignment = %v, want %v", c.Misalignment, want)
	}
}

func TestMisalignmentTwoLinksCountedOnce(t *testing.T) {
	p := testParams()
	m := NewManager(p)

	// n=2 has a single distinct pair; the cycle closure must not count
	// |th1-th2| a second time.
	state := pend.State{0, 0.1, 0.4, 0, 0, 0}
	c := m.Evaluate(state, []float64{0, 0}, false)
	want := p.AlignmentWeight * 0.3 / math.Pi
	if math.Abs(c.Misalignment-want) > 1e-12 {
		t.Errorf("misalignment = %v, want %v", c.Misalignment, want)
	}
}

func TestUprightnessFormula(t *testing.T) {
	p := testParams()
	m := NewManager(p)

	// theta = 0 maximizes the height chain: each segment lifts every
	// deeper tip by L.
	n := 3
	state := pend.State{0, 0, 0, 0, 0, 0, 0, 0}
	c := m.Evaluate(state, []float64{0, 0, 0}, false)

	want := 0.0
	for i := 1; i <= n; i++ {
		want += float64(i) * p.ArmLength
	}
	want *= p.UprightWeight
	if math.Abs(c.Uprightness-want) > 1e-12 {
		t.Errorf("uprightness = %v, want %v", c.Uprightness, want)
	}
	if c.Misalignment != 0 {
		t.Errorf("misalignment = %v, want 0", c.Misalignment)
	}

	// theta = pi inverts the chain: the exact minimum.
	inverted := m.Evaluate(pend.State{0, math.Pi, math.Pi, math.Pi, 0, 0, 0, 0}, []float64{0, 0, 0}, false)
	if math.Abs(inverted.Uprightness - -want) > 1e-12 {
		t.Errorf("inverted uprightness = %v, want %v", inverted.Uprightness, -want)
	}

	// All angles at pi/2: every segment horizontal, zero height, while
	// misalignment stays zero.
	level := m.Evaluate(pend.State{0, math.Pi / 2, math.Pi / 2, math.Pi / 2, 0, 0, 0, 0}, []float64{0, 0, 0}, false)
	if math.Abs(level.Uprightness) > 1e-12 {
		t.Errorf("pi/2 uprightness = %v, want 0", level.Uprightness)
	}
	if level.Misalignment != 0 {
		t.Errorf("pi/2 misalignment = %v, want 0", level.Misalignment)
	}
}

func TestPositionPenalty(t *testing.T) {
	m := NewManager(testParams())
	c := m.Evaluate(pend.State{-1.5, 0, 0, 0}, []float64{0}, false)
	if math.Abs(c.Position-1.5) > 1e-12 {
		t.Errorf("position penalty = %v, want 1.5", c.Position)
	}
}

func TestStabilityPenalty(t *testing.T) {
	p := testParams()
	m := NewManager(p)

	state := pend.State{0, 0, 0, 0, 3.0, -1.0}
	accels := []float64{2.0, 4.0}
	c := m.Evaluate(state, accels, false)

	want := p.StabilityWeight * ((9.0+1.0)/2 + (4.0+16.0)/2)
	if math.Abs(c.Stability-want) > 1e-12 {
		t.Errorf("stability = %v, want %v", c.Stability, want)
	}
}

func TestTotalComposition(t *testing.T) {
	m := NewManager(testParams())
	state := pend.State{0.7, 0.4, 0.9, -0.3, 0.6, 0.2}
	accels := []float64{1.1, -0.8}
	c := m.Evaluate(state, accels, false)

	want := c.Uprightness - c.Position - c.Misalignment - c.Stability
	if math.Abs(c.Total-want) > 1e-12 {
		t.Errorf("total = %v, want %v", c.Total, want)
	}
}

func TestTerminatedPredicate(t *testing.T) {
	m := NewManager(testParams())

	tests := []struct {
		name   string
		state  pend.State
		accels []float64
		want   bool
	}{
		{"nominal", pend.State{0, 0, 0, 0}, []float64{0}, false},
		{"at travel limit", pend.State{2.5, 0, 0, 0}, []float64{0}, true},
		{"beyond negative limit", pend.State{-3.0, 0, 0, 0}, []float64{0}, true},
		{"angular velocity blown", pend.State{0, 0, 0, 20.0}, []float64{0}, true},
		{"angular acceleration blown", pend.State{0, 0, 0, 0}, []float64{200.0}, true},
		{"just inside bounds", pend.State{2.49, 0, 0, 14.9}, []float64{149.0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Terminated(tt.state, tt.accels); got != tt.want {
				t.Errorf("Terminated() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLastStateIsDiagnosticOnly(t *testing.T) {
	m := NewManager(testParams())
	state := pend.State{0.1, 0.2, 0.3, 0.4}
	accels := []float64{0.5}

	first := m.Evaluate(state, accels, false)
	// Evaluate something else, then the original again.
	m.Evaluate(pend.State{1, 1, 1, 1}, []float64{9}, true)
	second := m.Evaluate(state, accels, false)

	if first != second {
		t.Error("retained state influenced the reward")
	}
	if m.LastState()[0] != 0.1 {
		t.Error("last state not retained")
	}
}
