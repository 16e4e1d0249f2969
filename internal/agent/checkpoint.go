package agent

import (
	"encoding/json"
	"os"
)

type checkpoint struct {
	Actor        netSnapshot `json:"actor"`
	Critic       netSnapshot `json:"critic"`
	TargetActor  netSnapshot `json:"target_actor"`
	TargetCritic netSnapshot `json:"target_critic"`
}

// Save writes the four networks to path as JSON.
func (a *Agent) Save(path string) error {
	ck := checkpoint{
		Actor:        a.actor.snapshot(),
		Critic:       a.critic.snapshot(),
		TargetActor:  a.targetActor.snapshot(),
		TargetCritic: a.targetCritic.snapshot(),
	}
	data, err := json.Marshal(ck)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Load restores networks saved by Save. The agent must have been built with
// the same state and hidden dimensions.
func (a *Agent) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var ck checkpoint
	if err := json.Unmarshal(data, &ck); err != nil {
		return err
	}
	if err := a.actor.restore(ck.Actor); err != nil {
		return err
	}
	if err := a.critic.restore(ck.Critic); err != nil {
		return err
	}
	if err := a.targetActor.restore(ck.TargetActor); err != nil {
		return err
	}
	return a.targetCritic.restore(ck.TargetCritic)
}
