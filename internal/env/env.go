// Package env exposes the cart-pendulum simulation to a training loop as a
// step/reset environment. One Environment owns one mutable simulation
// instance; parallel rollouts replicate whole Environments rather than share
// one.
package env

import (
	"fmt"

	"github.com/san-kum/pendlab/internal/config"
	"github.com/san-kum/pendlab/internal/dynamics"
	"github.com/san-kum/pendlab/internal/engine"
	"github.com/san-kum/pendlab/internal/integrators"
	"github.com/san-kum/pendlab/internal/pend"
	"github.com/san-kum/pendlab/internal/reward"
)

// Environment orchestrates the integration engine and the reward engine per
// step. The current state is owned exclusively by the Environment; every
// State handed out is a copy.
type Environment struct {
	links int
	eng   *engine.Engine
	rew   *reward.Manager

	state pend.State
	time  float64
	steps int

	last reward.Components
}

// New builds an Environment from an immutable configuration. The symbolic
// derivation behind the dynamics model is memoized process-wide, so
// constructing many Environments with the same configuration pays the
// algebra cost once.
func New(cfg *config.Config) (*Environment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	model, err := dynamics.Load(cfg.Physics.Links, cfg.Physics.Friction)
	if err != nil {
		return nil, err
	}
	integ, err := integrators.New(cfg.Integrator)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pend.ErrConfiguration, err)
	}

	params := dynamics.ParameterVector(
		cfg.Physics.Gravity, cfg.Physics.CartMass,
		cfg.Physics.Lengths(), cfg.Physics.Masses(),
	)
	eng := engine.New(model, params, integ, cfg.Physics.Dt, cfg.Limits.Travel)

	rew := reward.NewManager(reward.Params{
		PositionWeight:         cfg.Reward.PositionWeight,
		AlignmentWeight:        cfg.Reward.AlignmentWeight,
		UprightWeight:          cfg.Reward.UprightWeight,
		StabilityWeight:        cfg.Reward.StabilityWeight,
		TerminationPenalty:     cfg.Reward.TerminationPenalty,
		ArmLength:              cfg.Physics.ArmLength,
		TravelLimit:            cfg.Limits.Travel,
		AngularVelocityMax:     cfg.Limits.AngularVelocity,
		AngularAccelerationMax: cfg.Limits.AngularAcceleration,
	})

	return &Environment{
		links: cfg.Physics.Links,
		eng:   eng,
		rew:   rew,
	}, nil
}

// Links returns the link count.
func (e *Environment) Links() int { return e.links }

// Dt returns the simulation step size.
func (e *Environment) Dt() float64 { return e.eng.Dt() }

// Time returns the simulation clock.
func (e *Environment) Time() float64 { return e.time }

// StepCount returns the number of steps since the last reset.
func (e *Environment) StepCount() int { return e.steps }

// Reset reinitializes state and clock and returns the starting state.
func (e *Environment) Reset() pend.State {
	e.state = e.eng.InitialState()
	e.time = 0
	e.steps = 0
	e.last = reward.Components{}
	return e.state.Clone()
}

// State returns a copy of the current state, resetting first if needed.
func (e *Environment) State() pend.State {
	if e.state == nil {
		return e.Reset()
	}
	return e.state.Clone()
}

// Step advances one time step under the given control force and reports
// whether the episode terminated. The reward for the transition is computed
// from the post-step state and retrievable via LastReward.
func (e *Environment) Step(control float64) (pend.State, bool, error) {
	if e.state == nil {
		e.Reset()
	}

	next, deriv, err := e.eng.Step(e.state, control)
	if err != nil {
		return nil, false, &pend.StepError{Step: e.steps, Time: e.time, Wrapped: err}
	}

	accels := deriv[e.links+2:]
	terminated := e.rew.Terminated(next, accels)
	e.last = e.rew.Evaluate(next, accels, terminated)

	e.state = next
	e.time += e.eng.Dt()
	e.steps++

	return next.Clone(), terminated, nil
}

// LastReward returns the reward breakdown of the most recent Step.
func (e *Environment) LastReward() reward.Components {
	return e.last
}

// RewardComponents scores an arbitrary state outside the step cycle, using
// the accelerations the state would see under zero control.
func (e *Environment) RewardComponents(state pend.State) (reward.Components, error) {
	deriv, err := e.eng.Derive(state, 0)
	if err != nil {
		return reward.Components{}, err
	}
	accels := deriv[e.links+2:]
	return e.rew.Evaluate(state, accels, e.rew.Terminated(state, accels)), nil
}
