// Package pend provides the core primitives shared by the pendulum-on-cart
// simulation packages.
//
// The central type is [State], the generalized state vector of a cart carrying
// an n-link serial pendulum. Its layout is fixed:
//
//	index 0        cart position
//	index 1..n     link angles (absolute, 0 = horizontal, -pi/2 = hanging)
//	index n+1      cart velocity
//	index n+2..2n+1  link angular velocities
//
// Every package that derives, integrates or scores dynamics relies on this
// ordering; it must match the ordering used when the equations of motion were
// derived.
//
// # Thread Safety
//
// State values are plain slices and carry no synchronization. Callers that
// share a State across goroutines must hand each goroutine its own Clone.
package pend
