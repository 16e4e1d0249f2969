package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/pendlab/internal/config"
	"github.com/san-kum/pendlab/internal/control"
	"github.com/san-kum/pendlab/internal/env"
	"github.com/san-kum/pendlab/internal/metrics"
	"github.com/san-kum/pendlab/internal/pend"
	"github.com/san-kum/pendlab/internal/storage"
	"github.com/san-kum/pendlab/internal/trainer"
)

var (
	dataDir    string
	configFile string

	// run flags
	links      int
	steps      int
	controller string
	force      float64
	kp         float64
	ki         float64
	kd         float64
	saveRun    bool

	// train flags
	episodes int
	resume   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pendlab",
		Short: "n-link pendulum-on-cart simulation and control lab",
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".pendlab", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (yaml)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a scripted rollout and report metrics",
		RunE:  runRollout,
	}
	runCmd.Flags().IntVar(&links, "links", 0, "override link count")
	runCmd.Flags().IntVar(&steps, "steps", 500, "maximum steps")
	runCmd.Flags().StringVar(&controller, "controller", "zero", "cart controller: zero, constant, pid")
	runCmd.Flags().Float64Var(&force, "force", 0.1, "force for the constant controller")
	runCmd.Flags().Float64Var(&kp, "kp", 10.0, "PID proportional gain")
	runCmd.Flags().Float64Var(&ki, "ki", 0.1, "PID integral gain")
	runCmd.Flags().Float64Var(&kd, "kd", 5.0, "PID derivative gain")
	runCmd.Flags().BoolVar(&saveRun, "save", false, "persist the rollout to the data directory")

	trainCmd := &cobra.Command{
		Use:   "train",
		Short: "train the actor-critic policy",
		RunE:  runTraining,
	}
	trainCmd.Flags().IntVar(&episodes, "episodes", 0, "override episode count")
	trainCmd.Flags().BoolVar(&resume, "resume", false, "resume from the stored checkpoint")

	demoCmd := &cobra.Command{
		Use:   "demo",
		Short: "short unforced rollout, printed step by step",
		RunE:  runDemo,
	}

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "list stored rollouts",
		RunE:  listRuns,
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "configuration helpers",
	}
	configCmd.AddCommand(&cobra.Command{
		Use:   "init [path]",
		Short: "write the default configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "pendlab.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.Save(path, config.Default()); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", path)
			return nil
		},
	})

	rootCmd.AddCommand(runCmd, trainCmd, demoCmd, runsCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if configFile == "" {
		return config.Default(), nil
	}
	return config.Load(configFile)
}

func buildController(cfg *config.Config) (control.Controller, error) {
	switch controller {
	case "zero":
		return control.NewZero(), nil
	case "constant":
		return control.NewConstant(force), nil
	case "pid":
		return control.NewPID(kp, ki, kd, 0), nil
	default:
		return nil, fmt.Errorf("unknown controller %q", controller)
	}
}

func runRollout(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if links > 0 {
		cfg.Physics.Links = links
	}

	e, err := env.New(cfg)
	if err != nil {
		return err
	}
	ctrl, err := buildController(cfg)
	if err != nil {
		return err
	}

	effort := metrics.NewControlEffort()
	drift := metrics.NewEnergyDrift(cfg.Physics.Gravity, cfg.Physics.CartMass,
		cfg.Physics.Lengths(), cfg.Physics.Masses())
	stats := metrics.NewRewardStats()

	state := e.Reset()
	states := []pend.State{state}
	records := make([]storage.RolloutRecord, 0, steps)

	terminated := false
	for i := 0; i < steps && !terminated; i++ {
		u := ctrl.Compute(state, e.Time())
		effort.Observe(state, u, e.Time())
		drift.Observe(state, u, e.Time())

		state, terminated, err = e.Step(u)
		if err != nil {
			return err
		}
		c := e.LastReward()
		stats.Observe(c)

		records = append(records, storage.RolloutRecord{
			Step:         i,
			Time:         e.Time(),
			Control:      u,
			CartPos:      state.CartPos(),
			CartVel:      state.CartVel(),
			Reward:       c.Total,
			Uprightness:  c.Uprightness,
			Position:     c.Position,
			Misalignment: c.Misalignment,
			Stability:    c.Stability,
			Terminated:   terminated,
		})
		states = append(states, state)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "steps\t%d\n", len(records))
	fmt.Fprintf(w, "terminated\t%v\n", terminated)
	fmt.Fprintf(w, "final cart position\t%.4f\n", state.CartPos())
	fmt.Fprintf(w, "reward mean\t%.4f\n", stats.Mean())
	fmt.Fprintf(w, "reward min/max\t%.4f / %.4f\n", stats.Min(), stats.Max())
	fmt.Fprintf(w, "%s\t%.4g\n", effort.Name(), effort.Value())
	fmt.Fprintf(w, "%s\t%.4g\n", drift.Name(), drift.Value())
	w.Flush()

	if saveRun {
		store := storage.New(dataDir)
		if err := store.Init(); err != nil {
			return err
		}
		runID, err := store.SaveRun(storage.RunMetadata{
			Links:      cfg.Physics.Links,
			Dt:         cfg.Physics.Dt,
			Integrator: cfg.Integrator,
			Controller: controller,
			Metrics: map[string]float64{
				effort.Name(): effort.Value(),
				drift.Name():  drift.Value(),
				"reward_mean": stats.Mean(),
			},
		}, records, states)
		if err != nil {
			return err
		}
		fmt.Printf("saved %s\n", runID)
	}
	return nil
}

func runTraining(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if episodes > 0 {
		cfg.Training.Episodes = episodes
	}

	store := storage.New(dataDir)
	if err := store.Init(); err != nil {
		return err
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger()

	tr, err := trainer.New(cfg, store, logger)
	if err != nil {
		return err
	}
	if resume {
		path := store.CheckpointPath("agent")
		if err := tr.Agent().Load(path); err != nil {
			return fmt.Errorf("resume from %s: %w", path, err)
		}
		logger.Info().Str("path", path).Msg("resumed checkpoint")
	}

	if err := tr.Run(context.Background()); err != nil {
		return err
	}

	history := tr.History()
	if len(history) > 1 {
		fmt.Println(asciigraph.Plot(history,
			asciigraph.Height(12),
			asciigraph.Width(80),
			asciigraph.Caption("episode reward")))
	}
	if len(history) > 0 {
		fmt.Printf("episodes %d  mean reward %.4f  best %.4f\n",
			len(history), floats.Sum(history)/float64(len(history)), floats.Max(history))
	}
	return nil
}

func runDemo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	e, err := env.New(cfg)
	if err != nil {
		return err
	}
	e.Reset()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "step\ttime\tcart\tangle 1\treward")
	for i := 0; i < 50; i++ {
		state, terminated, err := e.Step(0)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%d\t%.2f\t%+.4f\t%+.4f\t%+.4f\n",
			i, e.Time(), state.CartPos(), state.Angle(1), e.LastReward().Total)
		if terminated {
			break
		}
	}
	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	runs, err := store.List()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "id\tlinks\tsteps\tcontroller\tintegrator")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\n", r.ID, r.Links, r.Steps, r.Controller, r.Integrator)
	}
	return w.Flush()
}
