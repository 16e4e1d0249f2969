package integrators

import (
	"fmt"

	"github.com/san-kum/pendlab/internal/pend"
)

// System exposes the state derivative of a controlled dynamical system.
// Derive may fail: for the pendulum it solves a linear system that is
// singular only for broken parameters.
type System interface {
	Derive(x pend.State, u float64) (pend.State, error)
}

// Integrator advances a state by one fixed step.
type Integrator interface {
	Step(sys System, x pend.State, u float64, dt float64) (pend.State, error)
}

// New builds an integrator by its config name.
func New(name string) (Integrator, error) {
	switch name {
	case "", "euler":
		return NewEuler(), nil
	case "rk4":
		return NewRK4(), nil
	default:
		return nil, fmt.Errorf("unknown integrator %q", name)
	}
}

// Euler is explicit first-order integration, the default: with the small
// step sizes used here its error is acceptable for control work.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(sys System, x pend.State, u float64, dt float64) (pend.State, error) {
	dx, err := sys.Derive(x, u)
	if err != nil {
		return nil, err
	}
	result := make(pend.State, len(x))
	for i := range x {
		result[i] = x[i] + dt*dx[i]
	}
	return result, nil
}
