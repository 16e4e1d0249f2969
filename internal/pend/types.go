package pend

import "math"

// State is the generalized state vector [x, th1..thn, xdot, w1..wn].
type State []float64

// Dim returns the state dimension for an n-link system.
func Dim(links int) int {
	return 2*links + 2
}

// Links recovers the link count from the state length.
func (s State) Links() int {
	return (len(s) - 2) / 2
}

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// CartPos returns the cart position.
func (s State) CartPos() float64 { return s[0] }

// Angle returns the absolute angle of link i (1-based).
func (s State) Angle(i int) float64 { return s[i] }

// CartVel returns the cart velocity.
func (s State) CartVel() float64 { return s[s.Links()+1] }

// AngVel returns the angular velocity of link i (1-based).
func (s State) AngVel(i int) float64 { return s[s.Links()+1+i] }
