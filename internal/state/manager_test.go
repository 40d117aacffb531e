package state

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestNewRunState(t *testing.T) {
	first := NewRunState("All the Mods.mrpack", 6)
	second := NewRunState("All the Mods.mrpack", 6)

	if first.RunID == "" {
		t.Error("expected a run ID")
	}
	if first.RunID == second.RunID {
		t.Error("expected distinct run IDs per run")
	}
	if first.Workers != 6 {
		t.Errorf("expected 6 workers, got %d", first.Workers)
	}
	if first.Version != stateVersion {
		t.Errorf("expected version %s, got %s", stateVersion, first.Version)
	}
	if first.Counts == nil {
		t.Error("expected an initialized counts map")
	}
}

func TestManagerLockExcludesSecondInstance(t *testing.T) {
	dir := t.TempDir()

	mgr, err := NewManager(dir, testLogger())
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	defer mgr.Close()

	if _, err := NewManager(dir, testLogger()); err == nil {
		t.Fatal("expected second manager on the same directory to fail")
	} else if !strings.Contains(err.Error(), "locked by another") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestManagerReleaseAllowsReacquire(t *testing.T) {
	dir := t.TempDir()

	mgr, err := NewManager(dir, testLogger())
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	mgr.Close()

	second, err := NewManager(dir, testLogger())
	if err != nil {
		t.Fatalf("expected to reacquire after release: %v", err)
	}
	second.Close()
}

func TestReadStateMissing(t *testing.T) {
	mgr, err := NewManager(t.TempDir(), testLogger())
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	defer mgr.Close()

	rs, err := mgr.ReadState()
	if err != nil {
		t.Fatalf("ReadState failed: %v", err)
	}
	if rs != nil {
		t.Errorf("expected nil state for a fresh directory, got %+v", rs)
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	mgr, err := NewManager(dir, testLogger())
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	defer mgr.Close()

	rs := NewRunState("pack.mrpack", 3)
	rs.TotalMods = 42
	rs.Processed = 40
	rs.Counts["Both"] = 25
	rs.Counts["Client"] = 10
	rs.Interrupted = true
	rs.Registry = &RegistryStats{Calls: 42, MeanMs: 180.5, P99Ms: 900, Failures: 2}

	if err := mgr.WriteState(rs); err != nil {
		t.Fatalf("WriteState failed: %v", err)
	}

	loaded, err := mgr.ReadState()
	if err != nil {
		t.Fatalf("ReadState failed: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected a state, got nil")
	}
	if loaded.RunID != rs.RunID {
		t.Errorf("expected run ID %s, got %s", rs.RunID, loaded.RunID)
	}
	if loaded.Processed != 40 || loaded.Counts["Both"] != 25 {
		t.Errorf("round trip lost data: %+v", loaded)
	}
	if !loaded.Interrupted {
		t.Error("interrupted flag lost in round trip")
	}
	if loaded.Registry == nil || loaded.Registry.Calls != 42 || loaded.Registry.P99Ms != 900 {
		t.Errorf("registry stats lost in round trip: %+v", loaded.Registry)
	}
}

func TestReadWithoutLock(t *testing.T) {
	dir := t.TempDir()
	mgr, err := NewManager(dir, testLogger())
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	defer mgr.Close()

	rs := NewRunState("pack.mrpack", 2)
	rs.Processed = 7
	if err := mgr.WriteState(rs); err != nil {
		t.Fatalf("WriteState failed: %v", err)
	}

	// Read works while the manager still holds the lock.
	loaded, err := Read(dir)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if loaded == nil || loaded.Processed != 7 {
		t.Errorf("expected the stored state, got %+v", loaded)
	}

	if loaded, err := Read(t.TempDir()); err != nil || loaded != nil {
		t.Errorf("expected nil state for an empty directory, got %+v (%v)", loaded, err)
	}
}

func TestReadStateCorruptedBacksUp(t *testing.T) {
	dir := t.TempDir()
	mgr, err := NewManager(dir, testLogger())
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	defer mgr.Close()

	statePath := filepath.Join(dir, stateFileName)
	if err := os.WriteFile(statePath, []byte("{definitely not json"), 0644); err != nil {
		t.Fatalf("failed to plant corrupted state: %v", err)
	}

	rs, err := mgr.ReadState()
	if err != nil {
		t.Fatalf("ReadState should recover from corruption, got: %v", err)
	}
	if rs != nil {
		t.Errorf("expected nil state after corruption, got %+v", rs)
	}

	backups, err := filepath.Glob(statePath + ".corrupted.*")
	if err != nil {
		t.Fatalf("glob failed: %v", err)
	}
	if len(backups) != 1 {
		t.Errorf("expected one backup file, got %d", len(backups))
	}
	if _, err := os.Stat(statePath); !os.IsNotExist(err) {
		t.Error("corrupted state file should have been moved aside")
	}
}
