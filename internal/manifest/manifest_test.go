package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleManifest = `{
	"formatVersion": 1,
	"game": "minecraft",
	"versionId": "1.2.0",
	"name": "Test Pack",
	"summary": "A pack for tests",
	"files": [
		{
			"path": "mods/sodium-fabric-0.5.8.jar",
			"hashes": {"sha1": "abc"},
			"env": {"client": "required", "server": "unsupported"},
			"downloads": ["https://cdn.modrinth.com/data/AANobbMI/versions/x/sodium-fabric-0.5.8.jar"],
			"fileSize": 1024
		},
		{
			"path": "mods/fabric-api-0.92.0.jar",
			"downloads": ["https://cdn.modrinth.com/data/P7dR8mSH/versions/y/fabric-api-0.92.0.jar"]
		}
	],
	"dependencies": {"minecraft": "1.20.1"}
}`

func writeManifest(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, DefaultIndexName, sampleManifest)

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if m.Name != "Test Pack" {
		t.Errorf("expected name 'Test Pack', got %q", m.Name)
	}
	if m.ModCount() != 2 {
		t.Errorf("expected 2 files, got %d", m.ModCount())
	}
	if m.Files[0].DisplayName() != "sodium-fabric-0.5.8.jar" {
		t.Errorf("unexpected display name %q", m.Files[0].DisplayName())
	}
	if m.Files[0].Env == nil || m.Files[0].Env.Client != "required" {
		t.Errorf("env hints not decoded: %+v", m.Files[0].Env)
	}
	if got := m.Files[1].PrimaryDownload(); !strings.Contains(got, "P7dR8mSH") {
		t.Errorf("unexpected primary download %q", got)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		setup   func() string
		errText string
	}{
		{
			name:    "missing file",
			setup:   func() string { return filepath.Join(dir, "nope.json") },
			errText: "not found",
		},
		{
			name: "invalid json",
			setup: func() string {
				return writeManifest(t, dir, "broken.json", "{not json")
			},
			errText: "decode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.setup())
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.errText) {
				t.Errorf("expected error containing %q, got %q", tt.errText, err.Error())
			}
		})
	}
}

func TestLoadFromDirDefaultsIndexName(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, DefaultIndexName, sampleManifest)

	m, err := LoadFromDir(dir, "")
	if err != nil {
		t.Fatalf("LoadFromDir failed: %v", err)
	}
	if m.ModCount() != 2 {
		t.Errorf("expected 2 files, got %d", m.ModCount())
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name  string
		entry ModEntry
		want  string
	}{
		{
			name:  "plain path",
			entry: ModEntry{Path: "mods/sodium.jar"},
			want:  "sodium.jar",
		},
		{
			name:  "nested path",
			entry: ModEntry{Path: "overrides/mods/fabric-api.jar"},
			want:  "fabric-api.jar",
		},
		{
			name:  "empty path",
			entry: ModEntry{},
			want:  "Unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.entry.DisplayName(); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPrimaryDownloadEmpty(t *testing.T) {
	entry := ModEntry{Path: "mods/x.jar"}
	if got := entry.PrimaryDownload(); got != "" {
		t.Errorf("expected empty primary download, got %q", got)
	}
}
