// Package engine advances the cart-pendulum state under an applied control
// force: it evaluates the compiled mass matrix and forcing vector, solves
// M*xdot = F, integrates explicitly, and enforces the cart travel limit as an
// inelastic wall.
package engine

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"

	"github.com/san-kum/pendlab/internal/dynamics"
	"github.com/san-kum/pendlab/internal/integrators"
	"github.com/san-kum/pendlab/internal/pend"
)

const (
	// InitialAngle is the reset angle for every link: hanging straight
	// down in the 0-is-horizontal convention.
	InitialAngle = -math.Pi / 2

	// InitialSpeed is the small reset perturbation applied to every
	// velocity so the policy never starts on a zero-gradient equilibrium.
	InitialSpeed = 1e-3
)

// Engine integrates one simulation instance. It owns a scratch argument
// buffer, so a single Engine must not be shared across goroutines; the
// compiled model behind it may be.
type Engine struct {
	model  *dynamics.Model
	params []float64
	integ  integrators.Integrator
	dt     float64
	travel r1.Interval
	args   []float64
}

func New(model *dynamics.Model, params []float64, integ integrators.Integrator, dt, travel float64) *Engine {
	return &Engine{
		model:  model,
		params: params,
		integ:  integ,
		dt:     dt,
		travel: r1.Interval{Min: -travel, Max: travel},
	}
}

// Dt returns the fixed integration step.
func (e *Engine) Dt() float64 { return e.dt }

// TravelLimit returns the cart travel bound.
func (e *Engine) TravelLimit() float64 { return e.travel.Max }

// InitialState returns the deterministic reset state: cart at zero, every
// link hanging at InitialAngle, every velocity at InitialSpeed.
func (e *Engine) InitialState() pend.State {
	n := e.model.Links()
	s := make(pend.State, pend.Dim(n))
	for i := 1; i <= n; i++ {
		s[i] = InitialAngle
	}
	for i := n + 1; i < len(s); i++ {
		s[i] = InitialSpeed
	}
	return s
}

// Derive solves M(x)*xdot = F(x, u) for the full state derivative.
func (e *Engine) Derive(x pend.State, u float64) (pend.State, error) {
	e.args = e.model.Args(e.args, x, u, e.params)
	M := e.model.MassMatrix(e.args)
	F := e.model.Forcing(e.args)

	var xdot mat.VecDense
	if err := xdot.SolveVec(M, F); err != nil {
		return nil, fmt.Errorf("%w: %v", pend.ErrSingularSystem, err)
	}

	out := make(pend.State, e.model.Dim())
	copy(out, xdot.RawVector().Data)
	return out, nil
}

// Step advances x by one dt under control u. It returns the next state and
// the state derivative at x (whose upper half carries the accelerations the
// reward engine needs). The cart is clamped to the travel limit with its
// velocity zeroed on contact; a NaN or Inf in the result is surfaced as
// ErrNonFiniteState, never masked.
func (e *Engine) Step(x pend.State, u float64) (pend.State, pend.State, error) {
	deriv, err := e.Derive(x, u)
	if err != nil {
		return nil, nil, err
	}

	next, err := e.integ.Step(e, x, u, e.dt)
	if err != nil {
		return nil, nil, err
	}

	velIdx := e.model.Links() + 1
	if next[0] > e.travel.Max {
		next[0] = e.travel.Max
		next[velIdx] = 0
	} else if next[0] < e.travel.Min {
		next[0] = e.travel.Min
		next[velIdx] = 0
	}

	if !next.IsValid() {
		return nil, nil, pend.ErrNonFiniteState
	}
	return next, deriv, nil
}
