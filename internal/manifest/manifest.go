// Package manifest loads Modrinth modpack manifests and extracts mrpack
// archives into a working directory.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultIndexName is the manifest file name inside a modpack.
const DefaultIndexName = "modrinth.index.json"

// EnvHints carries the environment hints some manifests embed per file.
// They are informational only; classification always goes through the
// registry.
type EnvHints struct {
	Client string `json:"client"`
	Server string `json:"server"`
}

// ModEntry is one file entry from the manifest. Immutable once loaded;
// identity is the derived display name.
type ModEntry struct {
	Path      string            `json:"path"`
	Hashes    map[string]string `json:"hashes,omitempty"`
	Env       *EnvHints         `json:"env,omitempty"`
	Downloads []string          `json:"downloads"`
	FileSize  int64             `json:"fileSize,omitempty"`
}

// DisplayName derives the entry's identity from the basename of its path.
func (m ModEntry) DisplayName() string {
	if m.Path == "" {
		return "Unknown"
	}
	return filepath.Base(filepath.ToSlash(m.Path))
}

// PrimaryDownload returns the first download reference, or "" when the
// entry carries none.
func (m ModEntry) PrimaryDownload() string {
	if len(m.Downloads) == 0 {
		return ""
	}
	return m.Downloads[0]
}

// Manifest is the parsed modrinth.index.json document.
type Manifest struct {
	FormatVersion int               `json:"formatVersion"`
	Game          string            `json:"game"`
	VersionID     string            `json:"versionId"`
	Name          string            `json:"name"`
	Summary       string            `json:"summary,omitempty"`
	Files         []ModEntry        `json:"files"`
	Dependencies  map[string]string `json:"dependencies,omitempty"`
}

// ModCount returns the number of file entries.
func (m *Manifest) ModCount() int {
	return len(m.Files)
}

// Load reads and decodes a manifest from the given path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("manifest %s not found: %w", filepath.Base(path), err)
		}
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode manifest %s: %w", path, err)
	}

	return &m, nil
}

// LoadFromDir loads the named index file from a directory, falling back to
// the default index name when indexName is empty.
func LoadFromDir(dir, indexName string) (*Manifest, error) {
	if strings.TrimSpace(indexName) == "" {
		indexName = DefaultIndexName
	}
	return Load(filepath.Join(dir, indexName))
}
