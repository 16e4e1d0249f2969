// Package control provides baseline cart controllers for scripted rollouts.
// The learned policy lives in the agent package; these exist for demos,
// sanity runs and as disturbance sources.
package control

import "github.com/san-kum/pendlab/internal/pend"

// Controller computes a scalar cart force from the current state.
type Controller interface {
	Compute(x pend.State, t float64) float64
}

// Zero applies no force.
type Zero struct{}

func NewZero() *Zero { return &Zero{} }

func (Zero) Compute(x pend.State, t float64) float64 { return 0 }

// Constant applies a fixed force.
type Constant struct {
	Force float64
}

func NewConstant(force float64) *Constant { return &Constant{Force: force} }

func (c *Constant) Compute(x pend.State, t float64) float64 { return c.Force }

// PID regulates the cart position toward Target.
type PID struct {
	Kp     float64
	Ki     float64
	Kd     float64
	Target float64

	integral float64
	prevErr  float64
	prevT    float64
	first    bool
}

func NewPID(kp, ki, kd, target float64) *PID {
	return &PID{
		Kp:     kp,
		Ki:     ki,
		Kd:     kd,
		Target: target,
		first:  true,
	}
}

func (p *PID) Compute(x pend.State, t float64) float64 {
	err := p.Target - x.CartPos()

	if p.first {
		p.prevErr = err
		p.prevT = t
		p.first = false
		return p.Kp * err
	}

	dt := t - p.prevT
	if dt <= 0 {
		return p.Kp * err
	}

	p.integral += err * dt
	derivative := (err - p.prevErr) / dt
	p.prevErr = err
	p.prevT = t

	return p.Kp*err + p.Ki*p.integral + p.Kd*derivative
}

// Reset clears integral and derivative state.
func (p *PID) Reset() {
	p.integral = 0
	p.prevErr = 0
	p.first = true
}
