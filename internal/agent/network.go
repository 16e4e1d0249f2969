package agent

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// MLP is a fully-connected network with ReLU hidden layers and an optional
// tanh output squash. Gradients accumulate into gw/gb until an Adam step
// consumes them.
type MLP struct {
	sizes   []int
	tanhOut bool

	w []*mat.Dense
	b []*mat.VecDense

	gw []*mat.Dense
	gb []*mat.VecDense

	mw, vw []*mat.Dense
	mb, vb []*mat.VecDense
	step   int
}

// NewMLP builds a network with the given layer sizes (input first). Weights
// use He initialization from rng so runs are reproducible by seed.
func NewMLP(sizes []int, tanhOut bool, rng *rand.Rand) *MLP {
	layers := len(sizes) - 1
	m := &MLP{
		sizes:   append([]int(nil), sizes...),
		tanhOut: tanhOut,
		w:       make([]*mat.Dense, layers),
		b:       make([]*mat.VecDense, layers),
		gw:      make([]*mat.Dense, layers),
		gb:      make([]*mat.VecDense, layers),
		mw:      make([]*mat.Dense, layers),
		vw:      make([]*mat.Dense, layers),
		mb:      make([]*mat.VecDense, layers),
		vb:      make([]*mat.VecDense, layers),
	}
	for l := 0; l < layers; l++ {
		rows, cols := sizes[l+1], sizes[l]
		scale := math.Sqrt(2.0 / float64(cols))
		data := make([]float64, rows*cols)
		for i := range data {
			data[i] = rng.NormFloat64() * scale
		}
		m.w[l] = mat.NewDense(rows, cols, data)
		m.b[l] = mat.NewVecDense(rows, nil)
		m.gw[l] = mat.NewDense(rows, cols, nil)
		m.gb[l] = mat.NewVecDense(rows, nil)
		m.mw[l] = mat.NewDense(rows, cols, nil)
		m.vw[l] = mat.NewDense(rows, cols, nil)
		m.mb[l] = mat.NewVecDense(rows, nil)
		m.vb[l] = mat.NewVecDense(rows, nil)
	}
	return m
}

// InputDim returns the expected input length.
func (m *MLP) InputDim() int { return m.sizes[0] }

// OutputDim returns the output length.
func (m *MLP) OutputDim() int { return m.sizes[len(m.sizes)-1] }

// forward returns the post-activation output of every layer, input first.
func (m *MLP) forward(in []float64) []*mat.VecDense {
	acts := make([]*mat.VecDense, len(m.sizes))
	acts[0] = mat.NewVecDense(len(in), append([]float64(nil), in...))
	for l := range m.w {
		out := mat.NewVecDense(m.sizes[l+1], nil)
		out.MulVec(m.w[l], acts[l])
		out.AddVec(out, m.b[l])
		last := l == len(m.w)-1
		for i := 0; i < out.Len(); i++ {
			v := out.AtVec(i)
			switch {
			case last && m.tanhOut:
				out.SetVec(i, math.Tanh(v))
			case last:
				// linear output
			case v < 0:
				out.SetVec(i, 0)
			}
		}
		acts[l+1] = out
	}
	return acts
}

// Forward evaluates the network on one input.
func (m *MLP) Forward(in []float64) []float64 {
	acts := m.forward(in)
	out := acts[len(acts)-1]
	return append([]float64(nil), out.RawVector().Data...)
}

// backward propagates gradOut (gradient w.r.t. the network output) through
// the cached activations, accumulating parameter gradients, and returns the
// gradient w.r.t. the input.
func (m *MLP) backward(acts []*mat.VecDense, gradOut []float64) []float64 {
	delta := mat.NewVecDense(len(gradOut), append([]float64(nil), gradOut...))

	for l := len(m.w) - 1; l >= 0; l-- {
		out := acts[l+1]
		if l == len(m.w)-1 {
			if m.tanhOut {
				for i := 0; i < delta.Len(); i++ {
					y := out.AtVec(i)
					delta.SetVec(i, delta.AtVec(i)*(1-y*y))
				}
			}
		} else {
			// ReLU mask: post-activation zero means pre-activation
			// was clipped.
			for i := 0; i < delta.Len(); i++ {
				if out.AtVec(i) <= 0 {
					delta.SetVec(i, 0)
				}
			}
		}

		var outer mat.Dense
		outer.Outer(1, delta, acts[l])
		m.gw[l].Add(m.gw[l], &outer)
		m.gb[l].AddVec(m.gb[l], delta)

		prev := mat.NewVecDense(m.sizes[l], nil)
		prev.MulVec(m.w[l].T(), delta)
		delta = prev
	}
	return append([]float64(nil), delta.RawVector().Data...)
}

// ZeroGrad clears accumulated gradients.
func (m *MLP) ZeroGrad() {
	for l := range m.gw {
		m.gw[l].Zero()
		m.gb[l].Zero()
	}
}

// AdamStep applies one Adam update with the accumulated gradients and
// clears them.
func (m *MLP) AdamStep(lr float64) {
	const (
		beta1 = 0.9
		beta2 = 0.999
		eps   = 1e-8
	)
	m.step++
	bc1 := 1 - math.Pow(beta1, float64(m.step))
	bc2 := 1 - math.Pow(beta2, float64(m.step))

	for l := range m.w {
		rows, cols := m.w[l].Dims()
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				g := m.gw[l].At(i, j)
				mo := beta1*m.mw[l].At(i, j) + (1-beta1)*g
				vo := beta2*m.vw[l].At(i, j) + (1-beta2)*g*g
				m.mw[l].Set(i, j, mo)
				m.vw[l].Set(i, j, vo)
				m.w[l].Set(i, j, m.w[l].At(i, j)-lr*(mo/bc1)/(math.Sqrt(vo/bc2)+eps))
			}
			g := m.gb[l].AtVec(i)
			mo := beta1*m.mb[l].AtVec(i) + (1-beta1)*g
			vo := beta2*m.vb[l].AtVec(i) + (1-beta2)*g*g
			m.mb[l].SetVec(i, mo)
			m.vb[l].SetVec(i, vo)
			m.b[l].SetVec(i, m.b[l].AtVec(i)-lr*(mo/bc1)/(math.Sqrt(vo/bc2)+eps))
		}
	}
	m.ZeroGrad()
}

// CopyFrom overwrites this network's parameters with src's.
func (m *MLP) CopyFrom(src *MLP) {
	for l := range m.w {
		m.w[l].Copy(src.w[l])
		m.b[l].CopyVec(src.b[l])
	}
}

// SoftUpdate blends src parameters in: p = (1-tau)*p + tau*src.
func (m *MLP) SoftUpdate(src *MLP, tau float64) {
	for l := range m.w {
		rows, cols := m.w[l].Dims()
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				m.w[l].Set(i, j, (1-tau)*m.w[l].At(i, j)+tau*src.w[l].At(i, j))
			}
			m.b[l].SetVec(i, (1-tau)*m.b[l].AtVec(i)+tau*src.b[l].AtVec(i))
		}
	}
}

type netSnapshot struct {
	Sizes   []int         `json:"sizes"`
	TanhOut bool          `json:"tanh_out"`
	Weights [][]float64   `json:"weights"`
	Biases  [][]float64   `json:"biases"`
}

func (m *MLP) snapshot() netSnapshot {
	s := netSnapshot{
		Sizes:   append([]int(nil), m.sizes...),
		TanhOut: m.tanhOut,
	}
	for l := range m.w {
		s.Weights = append(s.Weights, append([]float64(nil), m.w[l].RawMatrix().Data...))
		s.Biases = append(s.Biases, append([]float64(nil), m.b[l].RawVector().Data...))
	}
	return s
}

func (m *MLP) restore(s netSnapshot) error {
	if len(s.Sizes) != len(m.sizes) {
		return fmt.Errorf("agent: checkpoint layer count %d, want %d", len(s.Sizes), len(m.sizes))
	}
	for i := range s.Sizes {
		if s.Sizes[i] != m.sizes[i] {
			return fmt.Errorf("agent: checkpoint layer %d size %d, want %d", i, s.Sizes[i], m.sizes[i])
		}
	}
	if len(s.Weights) != len(m.w) || len(s.Biases) != len(m.b) {
		return fmt.Errorf("agent: checkpoint holds %d weight and %d bias layers, want %d",
			len(s.Weights), len(s.Biases), len(m.w))
	}
	for l := range m.w {
		rows, cols := m.w[l].Dims()
		if len(s.Weights[l]) != rows*cols || len(s.Biases[l]) != rows {
			return fmt.Errorf("agent: checkpoint layer %d has wrong parameter count", l)
		}
		m.w[l] = mat.NewDense(rows, cols, append([]float64(nil), s.Weights[l]...))
		m.b[l] = mat.NewVecDense(rows, append([]float64(nil), s.Biases[l]...))
	}
	return nil
}
