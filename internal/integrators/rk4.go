package integrators

import "github.com/san-kum/pendlab/internal/pend"

// RK4 is classic fourth-order Runge-Kutta, available for runs that want
// tighter energy behavior than first order at the same step size.
type RK4 struct{}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Step(sys System, x pend.State, u float64, dt float64) (pend.State, error) {
	n := len(x)
	scratch := make(pend.State, n)

	k1, err := sys.Derive(x, u)
	if err != nil {
		return nil, err
	}

	for i := 0; i < n; i++ {
		scratch[i] = x[i] + dt*0.5*k1[i]
	}
	k2, err := sys.Derive(scratch, u)
	if err != nil {
		return nil, err
	}

	for i := 0; i < n; i++ {
		scratch[i] = x[i] + dt*0.5*k2[i]
	}
	k3, err := sys.Derive(scratch, u)
	if err != nil {
		return nil, err
	}

	for i := 0; i < n; i++ {
		scratch[i] = x[i] + dt*k3[i]
	}
	k4, err := sys.Derive(scratch, u)
	if err != nil {
		return nil, err
	}

	result := make(pend.State, n)
	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		result[i] = x[i] + dt6*(k1[i]+2*k2[i]+2*k3[i]+k4[i])
	}
	return result, nil
}
