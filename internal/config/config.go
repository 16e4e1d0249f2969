package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/pendlab/internal/pend"
)

const (
	DefaultLinks     = 3
	DefaultArmLength = 1.0 / 3.0
	DefaultBobMass   = 0.01 / 3.0
	DefaultFriction  = 0.1
	DefaultGravity   = 9.81
	DefaultDt        = 0.01

	DefaultTravelLimit = 2.5
	DefaultAngVelLimit = 15.0
	DefaultAngAccLimit = 150.0

	DefaultPositionWeight     = 1.0
	DefaultAlignmentWeight    = 0.1
	DefaultUprightWeight      = 1.0
	DefaultStabilityWeight    = 0.02
	DefaultTerminationPenalty = 10.0
)

// Config is the immutable construction surface for an environment plus the
// training hyperparameters. Loaded once, validated, never mutated after.
type Config struct {
	Physics    Physics  `yaml:"physics"`
	Limits     Limits   `yaml:"limits"`
	Reward     Reward   `yaml:"reward"`
	Training   Training `yaml:"training"`
	Integrator string   `yaml:"integrator"`
}

// Physics holds the fixed physical parameters of the cart-pendulum chain.
type Physics struct {
	Links     int     `yaml:"links"`
	ArmLength float64 `yaml:"arm_length"`
	BobMass   float64 `yaml:"bob_mass"`
	CartMass  float64 `yaml:"cart_mass"`
	Friction  float64 `yaml:"friction"`
	Gravity   float64 `yaml:"gravity"`
	Dt        float64 `yaml:"dt"`
}

// Lengths expands the per-link arm length into a slice.
func (p Physics) Lengths() []float64 {
	out := make([]float64, p.Links)
	for i := range out {
		out[i] = p.ArmLength
	}
	return out
}

// Masses expands the per-link bob mass into a slice.
func (p Physics) Masses() []float64 {
	out := make([]float64, p.Links)
	for i := range out {
		out[i] = p.BobMass
	}
	return out
}

// Limits are the safety bounds the termination predicate checks.
type Limits struct {
	Travel              float64 `yaml:"travel"`
	AngularVelocity     float64 `yaml:"angular_velocity"`
	AngularAcceleration float64 `yaml:"angular_acceleration"`
}

// Reward holds the shaping weights, fixed at construction.
type Reward struct {
	PositionWeight     float64 `yaml:"position_weight"`
	AlignmentWeight    float64 `yaml:"alignment_weight"`
	UprightWeight      float64 `yaml:"upright_weight"`
	StabilityWeight    float64 `yaml:"stability_weight"`
	TerminationPenalty float64 `yaml:"termination_penalty"`
}

// Training holds the actor-critic hyperparameters.
type Training struct {
	Episodes          int     `yaml:"episodes"`
	MaxSteps          int     `yaml:"max_steps"`
	ActorLR           float64 `yaml:"actor_lr"`
	CriticLR          float64 `yaml:"critic_lr"`
	Gamma             float64 `yaml:"gamma"`
	Tau               float64 `yaml:"tau"`
	BatchSize         int     `yaml:"batch_size"`
	HiddenDim         int     `yaml:"hidden_dim"`
	BufferCapacity    int     `yaml:"buffer_capacity"`
	UpdatesPerEpisode int     `yaml:"updates_per_episode"`
	NoiseStd          float64 `yaml:"noise_std"`
	MaxForce          float64 `yaml:"max_force"`
	Seed              int64   `yaml:"seed"`
	CheckpointEvery   int     `yaml:"checkpoint_every"`
}

func Default() *Config {
	return &Config{
		Physics: Physics{
			Links:     DefaultLinks,
			ArmLength: DefaultArmLength,
			BobMass:   DefaultBobMass,
			CartMass:  DefaultBobMass,
			Friction:  DefaultFriction,
			Gravity:   DefaultGravity,
			Dt:        DefaultDt,
		},
		Limits: Limits{
			Travel:              DefaultTravelLimit,
			AngularVelocity:     DefaultAngVelLimit,
			AngularAcceleration: DefaultAngAccLimit,
		},
		Reward: Reward{
			PositionWeight:     DefaultPositionWeight,
			AlignmentWeight:    DefaultAlignmentWeight,
			UprightWeight:      DefaultUprightWeight,
			StabilityWeight:    DefaultStabilityWeight,
			TerminationPenalty: DefaultTerminationPenalty,
		},
		Training: Training{
			Episodes:          10000,
			MaxSteps:          500,
			ActorLR:           3e-4,
			CriticLR:          3e-4,
			Gamma:             0.99,
			Tau:               0.005,
			BatchSize:         64,
			HiddenDim:         512,
			BufferCapacity:    100000,
			UpdatesPerEpisode: 10,
			NoiseStd:          0.1,
			MaxForce:          1.0,
			Seed:              1,
			CheckpointEvery:   100,
		},
		Integrator: "euler",
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate fails fast on physically invalid parameters.
func (c *Config) Validate() error {
	p := c.Physics
	switch {
	case p.Links < 1:
		return fmt.Errorf("%w: links = %d, need at least 1", pend.ErrConfiguration, p.Links)
	case p.ArmLength <= 0:
		return fmt.Errorf("%w: arm length = %g, must be positive", pend.ErrConfiguration, p.ArmLength)
	case p.BobMass <= 0:
		return fmt.Errorf("%w: bob mass = %g, must be positive", pend.ErrConfiguration, p.BobMass)
	case p.CartMass <= 0:
		return fmt.Errorf("%w: cart mass = %g, must be positive", pend.ErrConfiguration, p.CartMass)
	case p.Friction < 0:
		return fmt.Errorf("%w: friction = %g, must be non-negative", pend.ErrConfiguration, p.Friction)
	case p.Dt <= 0:
		return fmt.Errorf("%w: dt = %g, must be positive", pend.ErrConfiguration, p.Dt)
	}
	l := c.Limits
	if l.Travel <= 0 || l.AngularVelocity <= 0 || l.AngularAcceleration <= 0 {
		return fmt.Errorf("%w: limits must be positive", pend.ErrConfiguration)
	}
	return nil
}
