// Package symbolic implements a small deterministic expression kernel used to
// build the pendulum equations of motion once per configuration and then
// evaluate them at simulation rate.
//
// Expressions are immutable trees over float64 constants, named symbols,
// sums, products, and sine/cosine. The constructors fold constants and drop
// algebraic no-ops (x+0, x*1, x*0) so the derived dynamics stay compact.
// [Compile] lowers a tree into a flat postfix program bound to an ordered
// symbol list; evaluation reads arguments by position with no map lookups or
// allocation, which keeps the hot path free of symbolic overhead.
//
// Compiled programs are stateless and safe for concurrent evaluation.
package symbolic
