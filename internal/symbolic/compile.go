package symbolic

import (
	"fmt"
	"math"
)

type opcode uint8

const (
	opConst opcode = iota
	opLoad
	opAdd
	opMul
	opSin
	opCos
)

type instr struct {
	op  opcode
	// idx is the argument index for opLoad, or the operand count for
	// opAdd/opMul.
	idx int
	val float64
}

// maxStack bounds the evaluation stack of a compiled program. The dynamics
// expressions flatten to shallow sum-of-products trees, far below this.
const maxStack = 64

// Program is a compiled expression: a postfix instruction list evaluated
// against a positional argument slice. Programs hold no mutable state and may
// be evaluated concurrently.
type Program struct {
	code  []instr
	nargs int
	depth int
}

// Compile lowers e into a Program. Every free symbol of e must appear in
// order; symbols are resolved to argument positions at compile time, so
// evaluation never sees a name.
func Compile(e Expr, order []Sym) (*Program, error) {
	index := make(map[string]int, len(order))
	for i, s := range order {
		if _, dup := index[string(s)]; dup {
			return nil, fmt.Errorf("symbolic: duplicate symbol %q in argument order", s)
		}
		index[string(s)] = i
	}
	for _, name := range Symbols(e) {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("symbolic: symbol %q not in argument order", name)
		}
	}

	p := &Program{nargs: len(order)}
	if err := p.emit(e, index); err != nil {
		return nil, err
	}

	depth := 0
	peak := 0
	for _, in := range p.code {
		switch in.op {
		case opConst, opLoad:
			depth++
		case opAdd, opMul:
			depth -= in.idx - 1
		}
		if depth > peak {
			peak = depth
		}
	}
	if peak > maxStack {
		return nil, fmt.Errorf("symbolic: expression too deep (stack %d)", peak)
	}
	p.depth = peak
	return p, nil
}

// MustCompile is Compile for expressions known valid by construction.
func MustCompile(e Expr, order []Sym) *Program {
	p, err := Compile(e, order)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Program) emit(e Expr, index map[string]int) error {
	switch v := e.(type) {
	case Num:
		p.code = append(p.code, instr{op: opConst, val: float64(v)})
	case Sym:
		p.code = append(p.code, instr{op: opLoad, idx: index[string(v)]})
	case Add:
		for _, t := range v.Terms {
			if err := p.emit(t, index); err != nil {
				return err
			}
		}
		p.code = append(p.code, instr{op: opAdd, idx: len(v.Terms)})
	case Mul:
		for _, f := range v.Factors {
			if err := p.emit(f, index); err != nil {
				return err
			}
		}
		p.code = append(p.code, instr{op: opMul, idx: len(v.Factors)})
	case Sin:
		if err := p.emit(v.Arg, index); err != nil {
			return err
		}
		p.code = append(p.code, instr{op: opSin})
	case Cos:
		if err := p.emit(v.Arg, index); err != nil {
			return err
		}
		p.code = append(p.code, instr{op: opCos})
	default:
		return fmt.Errorf("symbolic: cannot compile %T", e)
	}
	return nil
}

// NumArgs returns the length of the argument slice Eval expects.
func (p *Program) NumArgs() int { return p.nargs }

// Eval runs the program. The args slice must follow the symbol order given
// at compile time; a mismatched order is a caller contract violation and is
// not detected here.
func (p *Program) Eval(args []float64) float64 {
	var stack [maxStack]float64
	top := -1
	for _, in := range p.code {
		switch in.op {
		case opConst:
			top++
			stack[top] = in.val
		case opLoad:
			top++
			stack[top] = args[in.idx]
		case opAdd:
			sum := 0.0
			for i := 0; i < in.idx; i++ {
				sum += stack[top]
				top--
			}
			top++
			stack[top] = sum
		case opMul:
			prod := 1.0
			for i := 0; i < in.idx; i++ {
				prod *= stack[top]
				top--
			}
			top++
			stack[top] = prod
		case opSin:
			stack[top] = math.Sin(stack[top])
		case opCos:
			stack[top] = math.Cos(stack[top])
		}
	}
	return stack[top]
}
