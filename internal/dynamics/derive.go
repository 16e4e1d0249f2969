package dynamics

import (
	"fmt"

	"github.com/san-kum/pendlab/internal/pend"
	sym "github.com/san-kum/pendlab/internal/symbolic"
)

// Equations holds the symbolic full-system mass matrix and forcing vector
// together with the argument order the numeric compiler binds to.
type Equations struct {
	Links    int
	Friction float64

	// M is (2n+2)x(2n+2): an identity block over the kinematic rows
	// (qdot = v) stacked on the dynamic mass matrix.
	M [][]sym.Expr
	// F is length 2n+2: the velocities over the generalized forces.
	F []sym.Expr

	// Order is the argument order shared by every compiled entry:
	// state (2n+2), control, then parameters g, m0, l1, m1, ..., ln, mn.
	Order []sym.Sym
}

// Derive builds the symbolic equations of motion for links serial point-mass
// pendulum links on a cart, with a linear friction force on the cart and a
// linear friction torque on every link.
func Derive(links int, friction float64) (*Equations, error) {
	if links < 1 {
		return nil, fmt.Errorf("%w: link count %d, need at least 1", pend.ErrConfiguration, links)
	}

	n := links
	dim := pend.Dim(n)

	// Free symbols. Angles are absolute (0 = horizontal) and the bob of
	// link i sits at parent + l_i*(cos th_i, sin th_i), gravity along -y.
	theta := make([]sym.Sym, n+1) // theta[1..n]
	omega := make([]sym.Sym, n+1) // omega[1..n]
	length := make([]sym.Sym, n+1)
	mass := make([]sym.Sym, n+1) // mass[0] is the cart
	for i := 1; i <= n; i++ {
		theta[i] = sym.S(fmt.Sprintf("th%d", i))
		omega[i] = sym.S(fmt.Sprintf("w%d", i))
		length[i] = sym.S(fmt.Sprintf("l%d", i))
		mass[i] = sym.S(fmt.Sprintf("m%d", i))
	}
	mass[0] = sym.S("m0")
	q0 := sym.S("q0")
	v0 := sym.S("v0")
	force := sym.S("f")
	gravity := sym.S("g")

	order := make([]sym.Sym, 0, dim+1+2*n+2)
	order = append(order, q0)
	order = append(order, theta[1:]...)
	order = append(order, v0)
	order = append(order, omega[1:]...)
	order = append(order, force)
	order = append(order, gravity, mass[0])
	for i := 1; i <= n; i++ {
		order = append(order, length[i], mass[i])
	}

	// mbar[j] = sum of bob masses j..n, the mass carried by joint j.
	mbar := make([]sym.Expr, n+1)
	for j := n; j >= 1; j-- {
		if j == n {
			mbar[j] = mass[n]
		} else {
			mbar[j] = sym.Sum(mass[j], mbar[j+1])
		}
	}
	carried := func(j, k int) sym.Expr {
		if k > j {
			return mbar[k]
		}
		return mbar[j]
	}

	sin := make([]sym.Expr, n+1)
	cos := make([]sym.Expr, n+1)
	for i := 1; i <= n; i++ {
		sin[i] = sym.SinOf(theta[i])
		cos[i] = sym.CosOf(theta[i])
	}
	// cos(th_j - th_k) and sin(th_j - th_k), expanded over the per-angle
	// sines and cosines so the compiler sees only unary trig.
	cosDiff := func(j, k int) sym.Expr {
		return sym.Sum(sym.Prod(cos[j], cos[k]), sym.Prod(sin[j], sin[k]))
	}
	sinDiff := func(j, k int) sym.Expr {
		return sym.Sub(sym.Prod(sin[j], cos[k]), sym.Prod(cos[j], sin[k]))
	}

	// Dynamic block: rows 0..n over [v0dot, w1dot..wndot].
	md := make([][]sym.Expr, n+1)
	for i := range md {
		md[i] = make([]sym.Expr, n+1)
	}
	fd := make([]sym.Expr, n+1)

	// Cart row: translational balance along x.
	md[0][0] = sym.Sum(mass[0], mbar[1])
	for k := 1; k <= n; k++ {
		md[0][k] = sym.Neg(sym.Prod(mbar[k], length[k], sin[k]))
		md[k][0] = md[0][k]
	}
	cartForcing := []sym.Expr{force, sym.Prod(sym.N(-friction), v0)}
	for k := 1; k <= n; k++ {
		cartForcing = append(cartForcing, sym.Prod(mbar[k], length[k], cos[k], sym.Square(omega[k])))
	}
	fd[0] = sym.Sum(cartForcing...)

	// Link rows: moment balance about each joint, projected on the
	// partial velocity of joint j.
	for j := 1; j <= n; j++ {
		for k := 1; k <= n; k++ {
			md[j][k] = sym.Prod(carried(j, k), length[j], length[k], cosDiff(j, k))
		}
		terms := []sym.Expr{
			sym.Neg(sym.Prod(gravity, mbar[j], length[j], cos[j])),
			sym.Prod(sym.N(-friction), omega[j]),
		}
		for k := 1; k <= n; k++ {
			if k == j {
				continue // sin(th_j - th_j) = 0
			}
			terms = append(terms, sym.Neg(sym.Prod(
				carried(j, k), length[j], length[k], sinDiff(j, k), sym.Square(omega[k]),
			)))
		}
		fd[j] = sym.Sum(terms...)
	}

	// Full system: identity block over the kinematic rows, velocities as
	// their forcing. This is the qdot = v substitution in matrix form.
	eq := &Equations{
		Links:    n,
		Friction: friction,
		M:        make([][]sym.Expr, dim),
		F:        make([]sym.Expr, dim),
		Order:    order,
	}
	for i := 0; i < dim; i++ {
		eq.M[i] = make([]sym.Expr, dim)
		for j := 0; j < dim; j++ {
			eq.M[i][j] = sym.N(0)
		}
	}
	for i := 0; i <= n; i++ {
		eq.M[i][i] = sym.N(1)
	}
	eq.F[0] = v0
	for i := 1; i <= n; i++ {
		eq.F[i] = omega[i]
	}
	for i := 0; i <= n; i++ {
		for j := 0; j <= n; j++ {
			eq.M[n+1+i][n+1+j] = md[i][j]
		}
		eq.F[n+1+i] = fd[i]
	}
	return eq, nil
}
