package agent

import "math/rand"

// Transition is one environment step stored for replay.
type Transition struct {
	State     []float64
	Action    float64
	Reward    float64
	NextState []float64
	Done      bool
}

// Buffer is a fixed-capacity uniform replay buffer. Old transitions are
// overwritten once capacity is reached.
type Buffer struct {
	data []Transition
	next int
	full bool
}

func NewBuffer(capacity int) *Buffer {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer{data: make([]Transition, capacity)}
}

func (b *Buffer) Push(t Transition) {
	b.data[b.next] = t
	b.next++
	if b.next == len(b.data) {
		b.next = 0
		b.full = true
	}
}

func (b *Buffer) Len() int {
	if b.full {
		return len(b.data)
	}
	return b.next
}

// Sample draws batch transitions uniformly with replacement. It returns
// fewer when the buffer holds fewer.
func (b *Buffer) Sample(rng *rand.Rand, batch int) []Transition {
	n := b.Len()
	if n == 0 {
		return nil
	}
	if batch > n {
		batch = n
	}
	out := make([]Transition, batch)
	for i := range out {
		out[i] = b.data[rng.Intn(n)]
	}
	return out
}
