package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewFileOnlyWritesJSON(t *testing.T) {
	dir := t.TempDir()

	logger, file := NewFileOnly(dir, "test.log", slog.LevelInfo)
	if file == nil {
		t.Fatal("expected a log file handle")
	}

	logger.Info("hello", "component", "test")
	if err := file.Close(); err != nil {
		t.Fatalf("failed to close log file: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "test.log"))
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	line := string(data)
	if !strings.Contains(line, `"msg":"hello"`) {
		t.Errorf("expected JSON log line, got: %s", line)
	}
	if !strings.Contains(line, `"component":"test"`) {
		t.Errorf("expected component attribute, got: %s", line)
	}
}

func TestNewFileOnlyRespectsLevel(t *testing.T) {
	dir := t.TempDir()

	logger, file := NewFileOnly(dir, "test.log", slog.LevelWarn)
	logger.Info("dropped")
	logger.Warn("kept")
	if file != nil {
		file.Close()
	}

	data, err := os.ReadFile(filepath.Join(dir, "test.log"))
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	out := string(data)
	if strings.Contains(out, "dropped") {
		t.Error("info line should be filtered at warn level")
	}
	if !strings.Contains(out, "kept") {
		t.Error("warn line should be written")
	}
}

func TestNewFileOnlyEmptyName(t *testing.T) {
	logger, file := NewFileOnly(t.TempDir(), "", slog.LevelInfo)
	if file != nil {
		t.Error("expected no file handle for empty file name")
	}
	// Must not panic.
	logger.Info("discarded")
}
