package dynamics

import "math"

// Point is a Cartesian position in the simulation frame.
type Point struct {
	X, Y float64
}

// TipPositions computes the tip of every link by the cumulative chain from
// the cart, in the derivation frame (angle 0 = horizontal, +y up). Derived
// on demand, never stored.
func TipPositions(cartPos float64, angles, lengths []float64) []Point {
	tips := make([]Point, len(angles))
	x, y := cartPos, 0.0
	for i := range angles {
		x += lengths[i] * math.Cos(angles[i])
		y += lengths[i] * math.Sin(angles[i])
		tips[i] = Point{X: x, Y: y}
	}
	return tips
}

// Energy computes the total mechanical energy of a state: cart kinetic
// energy plus per-bob kinetic and gravitational potential energy. With zero
// friction and zero control this is conserved up to integration error, which
// the tests lean on.
func Energy(state []float64, gravity, cartMass float64, lengths, masses []float64) float64 {
	n := len(lengths)
	cartVel := state[n+1]

	total := 0.5 * cartMass * cartVel * cartVel

	// Bob velocities accumulate along the chain.
	vx, vy := cartVel, 0.0
	y := 0.0
	for i := 0; i < n; i++ {
		th := state[1+i]
		w := state[n+2+i]
		vx -= lengths[i] * math.Sin(th) * w
		vy += lengths[i] * math.Cos(th) * w
		y += lengths[i] * math.Sin(th)

		total += 0.5*masses[i]*(vx*vx+vy*vy) + masses[i]*gravity*y
	}
	return total
}
