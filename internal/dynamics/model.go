package dynamics

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/pendlab/internal/pend"
	sym "github.com/san-kum/pendlab/internal/symbolic"
)

// Model is a compiled set of equations of motion. All methods are pure:
// the model holds no mutable state and is safe for concurrent use by
// independent integration instances.
type Model struct {
	links   int
	dim     int
	nargs   int
	mass    []*sym.Program // row-major dim*dim
	forcing []*sym.Program
}

// Compile lowers every entry of eq to a numeric program bound to eq.Order.
func Compile(eq *Equations) (*Model, error) {
	dim := pend.Dim(eq.Links)
	m := &Model{
		links:   eq.Links,
		dim:     dim,
		nargs:   len(eq.Order),
		mass:    make([]*sym.Program, dim*dim),
		forcing: make([]*sym.Program, dim),
	}
	for i := 0; i < dim; i++ {
		for j := 0; j < dim; j++ {
			p, err := sym.Compile(eq.M[i][j], eq.Order)
			if err != nil {
				return nil, fmt.Errorf("mass entry (%d,%d): %w", i, j, err)
			}
			m.mass[i*dim+j] = p
		}
		p, err := sym.Compile(eq.F[i], eq.Order)
		if err != nil {
			return nil, fmt.Errorf("forcing entry %d: %w", i, err)
		}
		m.forcing[i] = p
	}
	return m, nil
}

// Links returns the link count the model was derived for.
func (m *Model) Links() int { return m.links }

// Dim returns the full state dimension 2n+2.
func (m *Model) Dim() int { return m.dim }

// NumArgs returns the argument count: state, control, parameters.
func (m *Model) NumArgs() int { return m.nargs }

// Args assembles the evaluation argument slice into dst, reusing it when it
// has capacity. The order is fixed at derivation time: state, control,
// parameter vector. Callers must not reorder.
func (m *Model) Args(dst []float64, state pend.State, control float64, params []float64) []float64 {
	dst = dst[:0]
	dst = append(dst, state...)
	dst = append(dst, control)
	dst = append(dst, params...)
	return dst
}

// MassMatrix evaluates the full-system mass matrix at args.
func (m *Model) MassMatrix(args []float64) *mat.Dense {
	out := mat.NewDense(m.dim, m.dim, nil)
	for i := 0; i < m.dim; i++ {
		for j := 0; j < m.dim; j++ {
			out.Set(i, j, m.mass[i*m.dim+j].Eval(args))
		}
	}
	return out
}

// Forcing evaluates the full-system forcing vector at args.
func (m *Model) Forcing(args []float64) *mat.VecDense {
	out := mat.NewVecDense(m.dim, nil)
	for i := 0; i < m.dim; i++ {
		out.SetVec(i, m.forcing[i].Eval(args))
	}
	return out
}

// ParameterVector packs physical parameters in the order the derivation
// expects: g, cart mass, then length and mass per link. lengths and masses
// are 1-based conceptually but passed as n-element slices.
func ParameterVector(gravity, cartMass float64, lengths, masses []float64) []float64 {
	params := make([]float64, 0, 2+2*len(lengths))
	params = append(params, gravity, cartMass)
	for i := range lengths {
		params = append(params, lengths[i], masses[i])
	}
	return params
}
