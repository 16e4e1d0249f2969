// Package storage persists rollout runs and agent checkpoints under a data
// directory, one subdirectory per run.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/san-kum/pendlab/internal/pend"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunMetadata describes one recorded rollout.
type RunMetadata struct {
	ID         string             `json:"id"`
	Links      int                `json:"links"`
	Timestamp  time.Time          `json:"timestamp"`
	Dt         float64            `json:"dt"`
	Steps      int                `json:"steps"`
	Integrator string             `json:"integrator"`
	Controller string             `json:"controller"`
	Metrics    map[string]float64 `json:"metrics"`
}

// RolloutRecord is one step of a rollout in fixed columns: cart state,
// control, and the reward breakdown.
type RolloutRecord struct {
	Step         int     `csv:"step"`
	Time         float64 `csv:"time"`
	Control      float64 `csv:"control"`
	CartPos      float64 `csv:"cart_pos"`
	CartVel      float64 `csv:"cart_vel"`
	Reward       float64 `csv:"reward"`
	Uprightness  float64 `csv:"uprightness"`
	Position     float64 `csv:"position_penalty"`
	Misalignment float64 `csv:"misalignment_penalty"`
	Stability    float64 `csv:"stability_penalty"`
	Terminated   bool    `csv:"terminated"`
}

// SaveRun writes metadata, the per-step rollout records, and the raw state
// trajectory (whose width depends on the link count) into a fresh run
// directory and returns its ID.
func (s *Store) SaveRun(meta RunMetadata, records []RolloutRecord, states []pend.State) (string, error) {
	runID := fmt.Sprintf("run_%d", time.Now().UnixNano())
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = time.Now()
	meta.Steps = len(records)

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()
	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	rolloutFile, err := os.Create(filepath.Join(runDir, "rollout.csv"))
	if err != nil {
		return "", err
	}
	defer rolloutFile.Close()
	if err := gocsv.MarshalFile(&records, rolloutFile); err != nil {
		return "", err
	}

	if err := s.writeStates(filepath.Join(runDir, "states.csv"), meta.Dt, states); err != nil {
		return "", err
	}
	return runID, nil
}

func (s *Store) writeStates(path string, dt float64, states []pend.State) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	if len(states) == 0 {
		return nil
	}

	header := []string{"time"}
	for i := range states[0] {
		header = append(header, fmt.Sprintf("x%d", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i, state := range states {
		row := make([]string, 0, len(state)+1)
		row = append(row, strconv.FormatFloat(float64(i)*dt, 'f', 6, 64))
		for _, v := range state {
			row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// List returns metadata for every stored run.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}
		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		runs = append(runs, meta)
	}
	return runs, nil
}

// LoadRollout reads the per-step records of a stored run.
func (s *Store) LoadRollout(runID string) ([]RolloutRecord, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "rollout.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var records []RolloutRecord
	if err := gocsv.UnmarshalFile(file, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// CheckpointPath returns the location for a named agent checkpoint.
func (s *Store) CheckpointPath(name string) string {
	return filepath.Join(s.baseDir, name+".ckpt.json")
}
