// Package reward scores post-step states and decides episode termination
// for the cart-pendulum environment.
package reward

import (
	"math"

	"gonum.org/v1/gonum/spatial/r1"

	"github.com/san-kum/pendlab/internal/pend"
)

// Components is the per-step reward breakdown. Penalties are reported as
// positive magnitudes; Total already subtracts them.
type Components struct {
	Position     float64 // cart distance from center, weighted
	Misalignment float64 // cyclic adjacent-angle spread, weighted
	Uprightness  float64 // summed tip heights, weighted
	Stability    float64 // mean squared angular velocity and acceleration, weighted
	Total        float64
}

// Params fixes the shaping weights and safety bounds at construction.
type Params struct {
	PositionWeight     float64
	AlignmentWeight    float64
	UprightWeight      float64
	StabilityWeight    float64
	TerminationPenalty float64

	// ArmLength feeds the forward kinematics of the uprightness term.
	ArmLength float64

	TravelLimit            float64
	AngularVelocityMax     float64
	AngularAccelerationMax float64
}

// Manager evaluates the reward formula. lastState is retained for
// diagnostics only; it never influences the computed reward.
type Manager struct {
	p         Params
	travel    r1.Interval
	velocity  r1.Interval
	accel     r1.Interval
	lastState pend.State
}

func NewManager(p Params) *Manager {
	return &Manager{
		p:        p,
		travel:   r1.Interval{Min: -p.TravelLimit, Max: p.TravelLimit},
		velocity: r1.Interval{Min: -p.AngularVelocityMax, Max: p.AngularVelocityMax},
		accel:    r1.Interval{Min: -p.AngularAccelerationMax, Max: p.AngularAccelerationMax},
	}
}

// Terminated reports whether the state violates a hard constraint: cart at
// or beyond the travel bound, or any link angular velocity/acceleration
// outside its safety bound. Evaluated purely from its arguments.
func (m *Manager) Terminated(state pend.State, angAccels []float64) bool {
	if state.CartPos() <= m.travel.Min || state.CartPos() >= m.travel.Max {
		return true
	}
	n := state.Links()
	for i := 1; i <= n; i++ {
		if w := state.AngVel(i); w < m.velocity.Min || w > m.velocity.Max {
			return true
		}
	}
	for _, a := range angAccels {
		if a < m.accel.Min || a > m.accel.Max {
			return true
		}
	}
	return false
}

// Evaluate maps a state and its angular accelerations to the reward
// breakdown. terminated applies the fixed termination penalty to Total and
// nothing else.
func (m *Manager) Evaluate(state pend.State, angAccels []float64, terminated bool) Components {
	n := state.Links()
	L := m.p.ArmLength

	var c Components

	c.Position = m.p.PositionWeight * math.Abs(state.CartPos())

	// Adjacent pairs 1-2, 2-3, ..., closed into a cycle by the pair
	// (n, 1). The closing pair is skipped for n=2, where it would count
	// the one distinct pair twice. Zero whenever all angles agree,
	// whatever the common value.
	if n > 1 {
		spread := 0.0
		for i := 1; i < n; i++ {
			spread += math.Abs(state.Angle(i) - state.Angle(i+1))
		}
		if n > 2 {
			spread += math.Abs(state.Angle(n) - state.Angle(1))
		}
		c.Misalignment = m.p.AlignmentWeight * spread / math.Pi
	}

	// Tip heights by the cumulative chain (L sin th, -L cos th); the
	// frame points y down, so height is -y.
	height := 0.0
	y := 0.0
	for i := 1; i <= n; i++ {
		y -= L * math.Cos(state.Angle(i))
		height += -y
	}
	c.Uprightness = m.p.UprightWeight * height

	velSq := 0.0
	for i := 1; i <= n; i++ {
		w := state.AngVel(i)
		velSq += w * w
	}
	accSq := 0.0
	for _, a := range angAccels {
		accSq += a * a
	}
	c.Stability = m.p.StabilityWeight * (velSq/float64(n) + accSq/float64(n))

	c.Total = c.Uprightness - c.Position - c.Misalignment - c.Stability
	if terminated {
		c.Total -= m.p.TerminationPenalty
	}

	m.lastState = state.Clone()
	return c
}

// LastState returns the most recently evaluated state, for diagnostics.
func (m *Manager) LastState() pend.State {
	return m.lastState
}
