package agent

import (
	"math/rand"
)

// Hyper are the learning hyperparameters, fixed at construction.
type Hyper struct {
	HiddenDim int
	ActorLR   float64
	CriticLR  float64
	Gamma     float64
	Tau       float64
	NoiseStd  float64
	Seed      int64
}

// Agent is a DDPG-style actor-critic for a scalar action in [-1, 1]. One
// Agent serves one training loop; it is not safe for concurrent use.
type Agent struct {
	actor        *MLP
	critic       *MLP
	targetActor  *MLP
	targetCritic *MLP

	stateDim int
	h        Hyper
	rng      *rand.Rand
}

func New(stateDim int, h Hyper) *Agent {
	rng := rand.New(rand.NewSource(h.Seed))
	a := &Agent{
		actor:        NewMLP([]int{stateDim, h.HiddenDim, h.HiddenDim, 1}, true, rng),
		critic:       NewMLP([]int{stateDim + 1, h.HiddenDim, h.HiddenDim, 1}, false, rng),
		targetActor:  NewMLP([]int{stateDim, h.HiddenDim, h.HiddenDim, 1}, true, rng),
		targetCritic: NewMLP([]int{stateDim + 1, h.HiddenDim, h.HiddenDim, 1}, false, rng),
		stateDim:     stateDim,
		h:            h,
		rng:          rng,
	}
	a.targetActor.CopyFrom(a.actor)
	a.targetCritic.CopyFrom(a.critic)
	return a
}

// Act returns the policy action for state, with Gaussian exploration noise
// when explore is set. The result is clipped to [-1, 1].
func (a *Agent) Act(state []float64, explore bool) float64 {
	action := a.actor.Forward(state)[0]
	if explore {
		action += a.rng.NormFloat64() * a.h.NoiseStd
	}
	if action > 1 {
		action = 1
	} else if action < -1 {
		action = -1
	}
	return action
}

// Value returns the critic's estimate for a state-action pair.
func (a *Agent) Value(state []float64, action float64) float64 {
	in := make([]float64, 0, a.stateDim+1)
	in = append(in, state...)
	in = append(in, action)
	return a.critic.Forward(in)[0]
}

// Update runs one gradient step on a sampled batch and soft-updates the
// target networks. It returns the mean critic loss and the mean critic value
// under the current policy, for logging.
func (a *Agent) Update(batch []Transition) (criticLoss, policyValue float64) {
	if len(batch) == 0 {
		return 0, 0
	}
	invN := 1.0 / float64(len(batch))

	// Critic: minimize (Q(s,a) - y)^2 with y from the target networks.
	a.critic.ZeroGrad()
	for _, tr := range batch {
		nextAction := a.targetActor.Forward(tr.NextState)[0]
		nextIn := append(append([]float64(nil), tr.NextState...), nextAction)
		target := tr.Reward
		if !tr.Done {
			target += a.h.Gamma * a.targetCritic.Forward(nextIn)[0]
		}

		in := append(append([]float64(nil), tr.State...), tr.Action)
		acts := a.critic.forward(in)
		q := acts[len(acts)-1].AtVec(0)
		diff := q - target
		criticLoss += diff * diff * invN
		a.critic.backward(acts, []float64{2 * diff * invN})
	}
	a.critic.AdamStep(a.h.CriticLR)

	// Actor: ascend Q(s, pi(s)); the critic input gradient at the action
	// coordinate chains into the policy.
	a.actor.ZeroGrad()
	for _, tr := range batch {
		actorActs := a.actor.forward(tr.State)
		action := actorActs[len(actorActs)-1].AtVec(0)

		in := append(append([]float64(nil), tr.State...), action)
		a.critic.ZeroGrad()
		criticActs := a.critic.forward(in)
		policyValue += criticActs[len(criticActs)-1].AtVec(0) * invN
		gradIn := a.critic.backward(criticActs, []float64{1})

		a.actor.backward(actorActs, []float64{-gradIn[a.stateDim] * invN})
	}
	a.critic.ZeroGrad() // discard gradients borrowed for the chain rule
	a.actor.AdamStep(a.h.ActorLR)

	a.targetActor.SoftUpdate(a.actor, a.h.Tau)
	a.targetCritic.SoftUpdate(a.critic, a.h.Tau)
	return criticLoss, policyValue
}
