// Package metrics collects summary statistics over a rollout.
package metrics

import (
	"math"

	"github.com/san-kum/pendlab/internal/dynamics"
	"github.com/san-kum/pendlab/internal/pend"
	"github.com/san-kum/pendlab/internal/reward"
)

type Metric interface {
	Name() string
	Observe(x pend.State, u float64, t float64)
	Value() float64
	Reset()
}

// EnergyDrift tracks the worst relative deviation of total mechanical
// energy from its first observation. Meaningful for zero-friction,
// zero-control runs; otherwise it measures dissipation plus input.
type EnergyDrift struct {
	gravity  float64
	cartMass float64
	lengths  []float64
	masses   []float64

	initial  float64
	haveInit bool
	maxDrift float64
}

func NewEnergyDrift(gravity, cartMass float64, lengths, masses []float64) *EnergyDrift {
	return &EnergyDrift{
		gravity:  gravity,
		cartMass: cartMass,
		lengths:  lengths,
		masses:   masses,
	}
}

func (e *EnergyDrift) Name() string { return "energy_drift" }

func (e *EnergyDrift) Observe(x pend.State, u float64, t float64) {
	energy := dynamics.Energy(x, e.gravity, e.cartMass, e.lengths, e.masses)
	if !e.haveInit {
		e.initial = energy
		e.haveInit = true
		return
	}
	scale := math.Max(math.Abs(e.initial), 1e-12)
	drift := math.Abs(energy-e.initial) / scale
	if drift > e.maxDrift {
		e.maxDrift = drift
	}
}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

func (e *EnergyDrift) Reset() {
	e.haveInit = false
	e.maxDrift = 0
}

// ControlEffort is the mean absolute control force.
type ControlEffort struct {
	sum     float64
	samples int
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{}
}

func (c *ControlEffort) Name() string { return "control_effort" }

func (c *ControlEffort) Observe(x pend.State, u float64, t float64) {
	c.sum += math.Abs(u)
	c.samples++
}

func (c *ControlEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ControlEffort) Reset() {
	c.sum = 0
	c.samples = 0
}

// RewardStats aggregates per-step reward totals.
type RewardStats struct {
	sum     float64
	min     float64
	max     float64
	samples int
}

func NewRewardStats() *RewardStats {
	return &RewardStats{min: math.Inf(1), max: math.Inf(-1)}
}

func (r *RewardStats) Observe(c reward.Components) {
	r.sum += c.Total
	if c.Total < r.min {
		r.min = c.Total
	}
	if c.Total > r.max {
		r.max = c.Total
	}
	r.samples++
}

func (r *RewardStats) Mean() float64 {
	if r.samples == 0 {
		return 0
	}
	return r.sum / float64(r.samples)
}

func (r *RewardStats) Min() float64 { return r.min }
func (r *RewardStats) Max() float64 { return r.max }
func (r *RewardStats) Sum() float64 { return r.sum }

func (r *RewardStats) Reset() {
	*r = *NewRewardStats()
}
