// Package agent implements the continuous-control actor-critic used to
// balance the pendulum chain: a deterministic policy network, a Q-value
// critic, target copies of both with soft updates, Gaussian exploration
// noise, and a uniform replay buffer.
//
// The networks are small fully-connected stacks on gonum matrices with
// hand-rolled backpropagation and Adam, sized by configuration. Nothing in
// this package touches the physics core beyond flat state vectors.
package agent
