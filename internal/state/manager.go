// Package state persists a summary of the most recent classification run
// and guards the output directory against concurrent instances.
package state

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	stateFileName = "state.json"
	lockFileName  = ".modchecker.lock"

	stateVersion = "1.0"
)

// RegistryStats is the registry call summary persisted with a run.
type RegistryStats struct {
	Calls    int64   `json:"calls"`
	MeanMs   float64 `json:"mean_ms"`
	P99Ms    int64   `json:"p99_ms"`
	Failures int64   `json:"failures"`
}

// RunState is the persisted summary of one classification run.
type RunState struct {
	RunID        string         `json:"run_id"`
	ManifestName string         `json:"manifest_name,omitempty"`
	Workers      int            `json:"workers"`
	TotalMods    int            `json:"total_mods"`
	Processed    int            `json:"processed"`
	Counts       map[string]int `json:"counts"`
	Interrupted  bool           `json:"interrupted"`
	Registry     *RegistryStats `json:"registry,omitempty"`
	StartedAt    time.Time      `json:"started_at"`
	FinishedAt   time.Time      `json:"finished_at"`
	Version      string         `json:"version"`
}

// NewRunState creates a run state with a fresh run ID.
func NewRunState(manifestName string, workers int) *RunState {
	return &RunState{
		RunID:        uuid.NewString(),
		ManifestName: manifestName,
		Workers:      workers,
		Counts:       make(map[string]int),
		StartedAt:    time.Now().UTC(),
		Version:      stateVersion,
	}
}

// Read loads the run state from a directory without taking the lock, for
// read-only consumers like the info command. It returns nil without error
// when no state file exists.
func Read(outputDir string) (*RunState, error) {
	data, err := os.ReadFile(filepath.Join(outputDir, stateFileName))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not read state file: %w", err)
	}

	var rs RunState
	if err := json.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("could not decode state file: %w", err)
	}
	return &rs, nil
}

// Manager handles the lifecycle of the state and lock files.
type Manager struct {
	lock      *flock.Flock
	statePath string
	logger    *slog.Logger
}

// NewManager creates a new Manager, creating the output directory and
// acquiring a file lock. It returns an error if the lock is already held.
func NewManager(outputDir string, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("could not create output directory %s: %w", outputDir, err)
	}

	lockPath := filepath.Join(outputDir, lockFileName)
	fileLock := flock.New(lockPath)

	locked, err := fileLock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("could not acquire file lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("output directory %s is locked by another modchecker instance", outputDir)
	}

	logger.Info("Acquired file lock.", "path", lockPath)

	return &Manager{
		lock:      fileLock,
		statePath: filepath.Join(outputDir, stateFileName),
		logger:    logger,
	}, nil
}

// ReadState reads the last saved run state. It returns nil without error
// when no state exists yet; a corrupted file is backed up and treated the
// same way so a bad shutdown never blocks the next run.
func (m *Manager) ReadState() (*RunState, error) {
	data, err := os.ReadFile(m.statePath)
	if os.IsNotExist(err) {
		m.logger.Info("State file not found, starting fresh.", "path", m.statePath)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not read state file: %w", err)
	}

	var rs RunState
	if err := json.Unmarshal(data, &rs); err != nil {
		m.backupCorrupted(err)
		return nil, nil
	}

	return &rs, nil
}

// WriteState atomically writes the run state to the state file.
func (m *Manager) WriteState(rs *RunState) error {
	data, err := json.MarshalIndent(rs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode run state: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(m.statePath), "state-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	defer os.Remove(tempFile.Name())

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to write to temp state file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp state file: %w", err)
	}

	if err := os.Rename(tempFile.Name(), m.statePath); err != nil {
		return fmt.Errorf("failed to atomically move state file: %w", err)
	}

	return nil
}

// backupCorrupted moves an unreadable state file aside so the run can
// start fresh without destroying the evidence.
func (m *Manager) backupCorrupted(cause error) {
	backupPath := m.statePath + ".corrupted." + time.Now().Format("20060102-150405")
	if err := os.Rename(m.statePath, backupPath); err != nil {
		m.logger.Error("Failed to back up corrupted state file.", "error", err, "path", m.statePath)
		return
	}
	m.logger.Warn("State file was corrupted, backed it up and starting fresh.",
		"cause", cause.Error(), "backup", backupPath)
}

// Close releases the file lock.
func (m *Manager) Close() {
	if err := m.lock.Unlock(); err != nil {
		m.logger.Error("Failed to release file lock.", "error", err)
	} else {
		m.logger.Info("Released file lock.")
	}
	// The lock file itself is left behind as a breadcrumb, which is fine.
}
