package trainer

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/san-kum/pendlab/internal/config"
	"github.com/san-kum/pendlab/internal/storage"
)

func smallConfig() *config.Config {
	cfg := config.Default()
	cfg.Physics.Links = 1
	cfg.Training.Episodes = 3
	cfg.Training.MaxSteps = 20
	cfg.Training.HiddenDim = 8
	cfg.Training.BatchSize = 8
	cfg.Training.BufferCapacity = 256
	cfg.Training.UpdatesPerEpisode = 1
	cfg.Training.CheckpointEvery = 2
	return cfg
}

func TestRunCompletesEpisodes(t *testing.T) {
	tr, err := New(smallConfig(), nil, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if err := tr.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(tr.History()) != 3 {
		t.Errorf("history length = %d, want 3", len(tr.History()))
	}
}

func TestRunHonorsContext(t *testing.T) {
	cfg := smallConfig()
	cfg.Training.Episodes = 100000
	tr, err := New(cfg, nil, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := tr.Run(ctx); err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRunWritesCheckpoint(t *testing.T) {
	store := storage.New(t.TempDir())
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}

	tr, err := New(smallConfig(), store, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if err := tr.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	if err := tr.Agent().Load(store.CheckpointPath("agent")); err != nil {
		t.Errorf("checkpoint not loadable: %v", err)
	}
}

func TestDeterministicWithSeed(t *testing.T) {
	run := func() []float64 {
		tr, err := New(smallConfig(), nil, zerolog.Nop())
		if err != nil {
			t.Fatal(err)
		}
		if err := tr.Run(context.Background()); err != nil {
			t.Fatal(err)
		}
		return tr.History()
	}

	a := run()
	b := run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("episode %d reward differs: %v vs %v", i, a[i], b[i])
		}
	}
}
