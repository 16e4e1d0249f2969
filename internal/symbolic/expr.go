package symbolic

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Expr is an immutable symbolic expression.
type Expr interface {
	String() string
	// Symbols appends the names of all symbols in the expression to set.
	symbols(set map[string]struct{})
}

// Num is a numeric constant.
type Num float64

func (n Num) String() string                 { return fmt.Sprintf("%g", float64(n)) }
func (n Num) symbols(set map[string]struct{}) {}

// Sym is a named free symbol.
type Sym string

func (s Sym) String() string { return string(s) }
func (s Sym) symbols(set map[string]struct{}) {
	set[string(s)] = struct{}{}
}

// Add is a flattened sum of two or more terms.
type Add struct{ Terms []Expr }

func (a Add) String() string {
	parts := make([]string, len(a.Terms))
	for i, t := range a.Terms {
		parts[i] = t.String()
	}
	return "(" + strings.Join(parts, " + ") + ")"
}

func (a Add) symbols(set map[string]struct{}) {
	for _, t := range a.Terms {
		t.symbols(set)
	}
}

// Mul is a flattened product of two or more factors.
type Mul struct{ Factors []Expr }

func (m Mul) String() string {
	parts := make([]string, len(m.Factors))
	for i, f := range m.Factors {
		parts[i] = f.String()
	}
	return "(" + strings.Join(parts, "*") + ")"
}

func (m Mul) symbols(set map[string]struct{}) {
	for _, f := range m.Factors {
		f.symbols(set)
	}
}

// Sin is the sine of its argument.
type Sin struct{ Arg Expr }

func (s Sin) String() string                 { return "sin(" + s.Arg.String() + ")" }
func (s Sin) symbols(set map[string]struct{}) { s.Arg.symbols(set) }

// Cos is the cosine of its argument.
type Cos struct{ Arg Expr }

func (c Cos) String() string                 { return "cos(" + c.Arg.String() + ")" }
func (c Cos) symbols(set map[string]struct{}) { c.Arg.symbols(set) }

// N wraps a constant.
func N(v float64) Expr { return Num(v) }

// S creates a named symbol.
func S(name string) Sym { return Sym(name) }

// Sum builds a simplified sum: constants fold, zeros drop, nested sums
// flatten. An empty sum is 0.
func Sum(terms ...Expr) Expr {
	flat := make([]Expr, 0, len(terms))
	constant := 0.0
	for _, t := range terms {
		switch v := t.(type) {
		case Num:
			constant += float64(v)
		case Add:
			for _, inner := range v.Terms {
				if n, ok := inner.(Num); ok {
					constant += float64(n)
				} else {
					flat = append(flat, inner)
				}
			}
		default:
			flat = append(flat, t)
		}
	}
	if constant != 0 {
		flat = append(flat, Num(constant))
	}
	switch len(flat) {
	case 0:
		return Num(0)
	case 1:
		return flat[0]
	}
	return Add{Terms: flat}
}

// Prod builds a simplified product: constants fold, ones drop, a zero factor
// collapses the whole product, nested products flatten.
func Prod(factors ...Expr) Expr {
	flat := make([]Expr, 0, len(factors))
	constant := 1.0
	for _, f := range factors {
		switch v := f.(type) {
		case Num:
			constant *= float64(v)
		case Mul:
			for _, inner := range v.Factors {
				if n, ok := inner.(Num); ok {
					constant *= float64(n)
				} else {
					flat = append(flat, inner)
				}
			}
		default:
			flat = append(flat, f)
		}
	}
	if constant == 0 {
		return Num(0)
	}
	if constant != 1 {
		flat = append([]Expr{Num(constant)}, flat...)
	}
	switch len(flat) {
	case 0:
		return Num(1)
	case 1:
		return flat[0]
	}
	return Mul{Factors: flat}
}

// Neg negates an expression.
func Neg(e Expr) Expr { return Prod(N(-1), e) }

// Sub builds a - b.
func Sub(a, b Expr) Expr { return Sum(a, Neg(b)) }

// SinOf builds sin(e), folding a constant argument.
func SinOf(e Expr) Expr {
	if n, ok := e.(Num); ok {
		return Num(math.Sin(float64(n)))
	}
	return Sin{Arg: e}
}

// CosOf builds cos(e), folding a constant argument.
func CosOf(e Expr) Expr {
	if n, ok := e.(Num); ok {
		return Num(math.Cos(float64(n)))
	}
	return Cos{Arg: e}
}

// Square builds e*e.
func Square(e Expr) Expr { return Prod(e, e) }

// Symbols returns the sorted names of all free symbols in e.
func Symbols(e Expr) []string {
	set := make(map[string]struct{})
	e.symbols(set)
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
