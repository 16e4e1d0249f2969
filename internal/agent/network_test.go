package agent

import (
	"math"
	"math/rand"
	"testing"
)

func TestForwardShapes(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	m := NewMLP([]int{4, 8, 8, 2}, false, rng)

	out := m.Forward([]float64{0.1, -0.2, 0.3, 0.4})
	if len(out) != 2 {
		t.Fatalf("output length = %d, want 2", len(out))
	}
	if m.InputDim() != 4 || m.OutputDim() != 2 {
		t.Errorf("dims: %d %d", m.InputDim(), m.OutputDim())
	}
}

func TestTanhOutputBounded(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	m := NewMLP([]int{3, 16, 1}, true, rng)

	for i := 0; i < 50; i++ {
		in := []float64{rng.NormFloat64() * 10, rng.NormFloat64() * 10, rng.NormFloat64() * 10}
		out := m.Forward(in)[0]
		if out < -1 || out > 1 {
			t.Fatalf("tanh output out of range: %v", out)
		}
	}
}

// Finite-difference check of the backward pass through ReLU and tanh.
func TestBackwardMatchesFiniteDifference(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	m := NewMLP([]int{2, 6, 1}, true, rng)

	in := []float64{0.4, -0.7}
	acts := m.forward(in)
	gradIn := m.backward(acts, []float64{1})
	m.ZeroGrad()

	const h = 1e-6
	for i := range in {
		bumped := append([]float64(nil), in...)
		bumped[i] += h
		up := m.Forward(bumped)[0]
		bumped[i] -= 2 * h
		down := m.Forward(bumped)[0]
		numeric := (up - down) / (2 * h)
		if math.Abs(numeric-gradIn[i]) > 1e-5 {
			t.Errorf("input grad %d: analytic %v, numeric %v", i, gradIn[i], numeric)
		}
	}
}

func TestAdamReducesLoss(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	m := NewMLP([]int{1, 16, 1}, false, rng)

	// Fit y = 2x - 1 on a handful of points.
	xs := []float64{-1, -0.5, 0, 0.5, 1}
	loss := func() float64 {
		total := 0.0
		for _, x := range xs {
			d := m.Forward([]float64{x})[0] - (2*x - 1)
			total += d * d
		}
		return total / float64(len(xs))
	}

	before := loss()
	for epoch := 0; epoch < 500; epoch++ {
		m.ZeroGrad()
		for _, x := range xs {
			acts := m.forward([]float64{x})
			y := acts[len(acts)-1].AtVec(0)
			m.backward(acts, []float64{2 * (y - (2*x - 1)) / float64(len(xs))})
		}
		m.AdamStep(1e-2)
	}
	after := loss()

	if after >= before {
		t.Fatalf("loss did not decrease: %v -> %v", before, after)
	}
	if after > 1e-2 {
		t.Errorf("final loss too high: %v", after)
	}
}

func TestSoftUpdateBlends(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	a := NewMLP([]int{2, 4, 1}, false, rng)
	b := NewMLP([]int{2, 4, 1}, false, rng)

	w0 := b.w[0].At(0, 0)
	src := a.w[0].At(0, 0)
	b.SoftUpdate(a, 0.1)
	want := 0.9*w0 + 0.1*src
	if math.Abs(b.w[0].At(0, 0)-want) > 1e-12 {
		t.Errorf("soft update: got %v, want %v", b.w[0].At(0, 0), want)
	}

	b.CopyFrom(a)
	if b.w[0].At(0, 0) != a.w[0].At(0, 0) {
		t.Error("copy did not match source")
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	a := NewMLP([]int{3, 5, 1}, true, rng)
	b := NewMLP([]int{3, 5, 1}, true, rng)

	if err := b.restore(a.snapshot()); err != nil {
		t.Fatalf("restore: %v", err)
	}
	in := []float64{0.1, 0.2, 0.3}
	if a.Forward(in)[0] != b.Forward(in)[0] {
		t.Error("restored network diverges from source")
	}

	bad := NewMLP([]int{3, 7, 1}, true, rng)
	if err := bad.restore(a.snapshot()); err == nil {
		t.Error("expected restore error for mismatched sizes")
	}
}
