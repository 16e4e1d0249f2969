// Package trainer runs the actor-critic training loop against the
// cart-pendulum environment: bounded episodes, replay-buffer collection,
// a fixed number of gradient updates per episode, and periodic checkpoints.
package trainer

import (
	"context"
	"errors"
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/san-kum/pendlab/internal/agent"
	"github.com/san-kum/pendlab/internal/config"
	"github.com/san-kum/pendlab/internal/env"
	"github.com/san-kum/pendlab/internal/pend"
	"github.com/san-kum/pendlab/internal/storage"
)

type Trainer struct {
	cfg    *config.Config
	env    *env.Environment
	agent  *agent.Agent
	buffer *agent.Buffer
	store  *storage.Store
	rng    *rand.Rand
	log    zerolog.Logger

	history []float64
}

// New wires an environment, agent and replay buffer from one configuration.
// store may be nil to disable checkpointing.
func New(cfg *config.Config, store *storage.Store, log zerolog.Logger) (*Trainer, error) {
	environment, err := env.New(cfg)
	if err != nil {
		return nil, err
	}

	tr := cfg.Training
	a := agent.New(pend.Dim(cfg.Physics.Links), agent.Hyper{
		HiddenDim: tr.HiddenDim,
		ActorLR:   tr.ActorLR,
		CriticLR:  tr.CriticLR,
		Gamma:     tr.Gamma,
		Tau:       tr.Tau,
		NoiseStd:  tr.NoiseStd,
		Seed:      tr.Seed,
	})

	return &Trainer{
		cfg:    cfg,
		env:    environment,
		agent:  a,
		buffer: agent.NewBuffer(tr.BufferCapacity),
		store:  store,
		rng:    rand.New(rand.NewSource(tr.Seed)),
		log:    log,
	}, nil
}

// Agent exposes the trained policy.
func (t *Trainer) Agent() *agent.Agent { return t.agent }

// History returns the total reward of every completed episode.
func (t *Trainer) History() []float64 { return t.history }

// Run executes the configured number of episodes. A non-finite state aborts
// the current rollout and moves on; any other step error is fatal.
func (t *Trainer) Run(ctx context.Context) error {
	tr := t.cfg.Training

	for episode := 0; episode < tr.Episodes; episode++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		episodeReward, steps, err := t.runEpisode()
		if err != nil {
			if errors.Is(err, pend.ErrNonFiniteState) {
				t.log.Warn().Int("episode", episode).Err(err).
					Msg("rollout aborted on non-finite state")
				continue
			}
			return err
		}
		t.history = append(t.history, episodeReward)

		var criticLoss, policyValue float64
		for i := 0; i < tr.UpdatesPerEpisode; i++ {
			batch := t.buffer.Sample(t.rng, tr.BatchSize)
			criticLoss, policyValue = t.agent.Update(batch)
		}

		t.log.Info().
			Int("episode", episode).
			Int("steps", steps).
			Float64("reward", episodeReward).
			Float64("critic_loss", criticLoss).
			Float64("policy_value", policyValue).
			Msg("episode finished")

		if t.store != nil && tr.CheckpointEvery > 0 && (episode+1)%tr.CheckpointEvery == 0 {
			path := t.store.CheckpointPath("agent")
			if err := t.agent.Save(path); err != nil {
				t.log.Error().Err(err).Str("path", path).Msg("checkpoint failed")
			} else {
				t.log.Debug().Str("path", path).Msg("checkpoint written")
			}
		}
	}
	return nil
}

func (t *Trainer) runEpisode() (float64, int, error) {
	state := t.env.Reset()
	total := 0.0

	for step := 0; step < t.cfg.Training.MaxSteps; step++ {
		action := t.agent.Act(state, true)
		next, terminated, err := t.env.Step(action * t.cfg.Training.MaxForce)
		if err != nil {
			return total, step, err
		}
		r := t.env.LastReward().Total
		total += r

		t.buffer.Push(agent.Transition{
			State:     state,
			Action:    action,
			Reward:    r,
			NextState: next,
			Done:      terminated,
		})

		state = next
		if terminated {
			return total, step + 1, nil
		}
	}
	return total, t.cfg.Training.MaxSteps, nil
}
