package env

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/pendlab/internal/config"
	"github.com/san-kum/pendlab/internal/engine"
	"github.com/san-kum/pendlab/internal/pend"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Physics.Links = 3
	return cfg
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Physics.Links = 0
	if _, err := New(cfg); !errors.Is(err, pend.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}

	cfg = testConfig()
	cfg.Integrator = "bogus"
	if _, err := New(cfg); !errors.Is(err, pend.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration for bad integrator, got %v", err)
	}
}

func TestResetDeterministic(t *testing.T) {
	e, err := New(testConfig())
	if err != nil {
		t.Fatal(err)
	}

	a := e.Reset()
	b := e.Reset()

	if a[0] != 0 {
		t.Errorf("cart position = %v, want 0", a[0])
	}
	for i := 1; i <= 3; i++ {
		if a[i] != engine.InitialAngle {
			t.Errorf("angle %d = %v, want %v", i, a[i], engine.InitialAngle)
		}
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatal("reset not deterministic")
		}
	}
	if e.Time() != 0 || e.StepCount() != 0 {
		t.Error("clock not reset")
	}
}

func TestStateIsCopied(t *testing.T) {
	e, err := New(testConfig())
	if err != nil {
		t.Fatal(err)
	}

	s := e.Reset()
	s[0] = 999
	if e.State()[0] == 999 {
		t.Error("caller mutation leaked into environment state")
	}

	next, _, err := e.Step(0)
	if err != nil {
		t.Fatal(err)
	}
	next[0] = -999
	if e.State()[0] == -999 {
		t.Error("step result aliases environment state")
	}
}

func TestStepAdvancesClock(t *testing.T) {
	e, err := New(testConfig())
	if err != nil {
		t.Fatal(err)
	}
	e.Reset()

	for i := 0; i < 5; i++ {
		if _, _, err := e.Step(0.1); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	if e.StepCount() != 5 {
		t.Errorf("step count = %d", e.StepCount())
	}
	if math.Abs(e.Time()-5*e.Dt()) > 1e-12 {
		t.Errorf("time = %v, want %v", e.Time(), 5*e.Dt())
	}
}

func TestStepWithoutResetSelfInitializes(t *testing.T) {
	e, err := New(testConfig())
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := e.Step(0); err != nil {
		t.Fatalf("step before reset: %v", err)
	}
}

func TestLastRewardMatchesComposition(t *testing.T) {
	e, err := New(testConfig())
	if err != nil {
		t.Fatal(err)
	}
	e.Reset()
	if _, _, err := e.Step(0.2); err != nil {
		t.Fatal(err)
	}

	c := e.LastReward()
	want := c.Uprightness - c.Position - c.Misalignment - c.Stability
	if math.Abs(c.Total-want) > 1e-12 {
		t.Errorf("total = %v, composition = %v", c.Total, want)
	}
}

func TestRewardComponentsPure(t *testing.T) {
	e, err := New(testConfig())
	if err != nil {
		t.Fatal(err)
	}
	state := e.Reset()

	a, err := e.RewardComponents(state)
	if err != nil {
		t.Fatal(err)
	}
	b, err := e.RewardComponents(state)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("RewardComponents not deterministic for a fixed state")
	}
}

func TestTerminationAtWall(t *testing.T) {
	cfg := testConfig()
	cfg.Physics.Links = 1
	// A travel limit small enough that a constant push reaches it.
	cfg.Limits.Travel = 0.05
	e, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	e.Reset()

	terminated := false
	for i := 0; i < 2000 && !terminated; i++ {
		_, terminated, err = e.Step(0.05)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	if !terminated {
		t.Fatal("episode never terminated against a 0.05 travel limit")
	}
}
