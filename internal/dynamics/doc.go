// Package dynamics derives and compiles the equations of motion for an n-link
// serial pendulum mounted on a sliding cart.
//
// [Derive] assembles, once per (link count, friction) pair, the symbolic
// full-system mass matrix M and forcing vector F such that
//
//	M(x) * xdot = F(x, u)
//
// over the generalized state x = [q0, th1..thn, v0, w1..wn], control force u
// and physical parameters (g, cart mass, per-link length and mass). The
// derivation follows the projected Newton-Euler form (equivalent to Kane's
// method for this topology): each bob is a point mass at its link tip, the
// cart sees the control force and linear friction, each link a linear
// friction torque. The kinematic identities qdot = v are folded in as an
// identity block, so the compiled functions take the full state directly.
//
// [Compile] lowers every matrix entry to a flat numeric program; the
// resulting [Model] evaluates with no symbolic work per step and is safe for
// concurrent use. [Load] memoizes compiled models for the process lifetime,
// since derivation cost grows quickly with link count.
package dynamics
