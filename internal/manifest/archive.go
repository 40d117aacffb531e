package manifest

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FindModpack locates a .mrpack (or .zip) archive in the given directory.
// When several are present the lexicographically first is returned so runs
// are deterministic.
func FindModpack(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read input directory %s: %w", dir, err)
	}

	var candidates []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := strings.ToLower(entry.Name())
		if strings.HasSuffix(name, ".mrpack") || strings.HasSuffix(name, ".zip") {
			candidates = append(candidates, entry.Name())
		}
	}

	if len(candidates) == 0 {
		return "", fmt.Errorf("no .mrpack or .zip archive found in %s", dir)
	}

	sort.Strings(candidates)
	return filepath.Join(dir, candidates[0]), nil
}

// Extract unpacks a modpack archive into destDir. Entry paths are validated
// so an archive cannot write outside destDir.
func Extract(archivePath, destDir string) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive %s: %w", archivePath, err)
	}
	defer reader.Close()

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("failed to create extraction directory %s: %w", destDir, err)
	}

	for _, file := range reader.File {
		if err := extractFile(file, destDir); err != nil {
			return err
		}
	}

	return nil
}

func extractFile(file *zip.File, destDir string) error {
	target := filepath.Join(destDir, filepath.FromSlash(file.Name))

	// Reject entries that escape the extraction root.
	cleanDest := filepath.Clean(destDir) + string(os.PathSeparator)
	if !strings.HasPrefix(filepath.Clean(target)+string(os.PathSeparator), cleanDest) {
		return fmt.Errorf("archive entry %q escapes extraction directory", file.Name)
	}

	if file.FileInfo().IsDir() {
		return os.MkdirAll(target, 0755)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", file.Name, err)
	}

	src, err := file.Open()
	if err != nil {
		return fmt.Errorf("failed to open archive entry %s: %w", file.Name, err)
	}
	defer src.Close()

	dst, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", target, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("failed to extract %s: %w", file.Name, err)
	}

	return dst.Close()
}

// ExtractModpack extracts the archive into destDir and loads the manifest
// it contains.
func ExtractModpack(archivePath, destDir string) (*Manifest, error) {
	if err := Extract(archivePath, destDir); err != nil {
		return nil, err
	}

	m, err := Load(filepath.Join(destDir, DefaultIndexName))
	if err != nil {
		return nil, fmt.Errorf("archive %s contains no readable manifest: %w", filepath.Base(archivePath), err)
	}
	return m, nil
}

// ReadFromArchive decodes the manifest straight out of a modpack archive
// without extracting anything to disk.
func ReadFromArchive(archivePath string) (*Manifest, error) {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", archivePath, err)
	}
	defer reader.Close()

	for _, file := range reader.File {
		if file.Name != DefaultIndexName {
			continue
		}

		src, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open archive entry %s: %w", file.Name, err)
		}

		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s from %s: %w", file.Name, archivePath, err)
		}

		var m Manifest
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("failed to decode manifest in %s: %w", archivePath, err)
		}
		return &m, nil
	}

	return nil, fmt.Errorf("archive %s contains no %s", filepath.Base(archivePath), DefaultIndexName)
}

// Resolved is the outcome of resolving a manifest source: the parsed
// manifest, the directory holding mod jars when one is known, and the
// directory to clean up afterwards when an archive was extracted.
type Resolved struct {
	Manifest *Manifest
	ModsDir  string
	TempDir  string
}

// Resolve loads a manifest from source, which may be a manifest file, a
// modpack archive, or a directory holding either. Archives are extracted
// into tempDir so any bundled jars become available for packing.
func Resolve(source, indexName, tempDir string) (*Resolved, error) {
	info, err := os.Stat(source)
	if err != nil {
		return nil, fmt.Errorf("cannot access %s: %w", source, err)
	}

	if info.IsDir() {
		if m, err := LoadFromDir(source, indexName); err == nil {
			return &Resolved{Manifest: m, ModsDir: filepath.Join(source, "mods")}, nil
		}
		archive, err := FindModpack(source)
		if err != nil {
			return nil, fmt.Errorf("no manifest or modpack archive in %s", source)
		}
		source = archive
	}

	switch {
	case strings.HasSuffix(strings.ToLower(source), ".json"):
		m, err := Load(source)
		if err != nil {
			return nil, err
		}
		return &Resolved{Manifest: m}, nil
	case strings.HasSuffix(strings.ToLower(source), ".mrpack"),
		strings.HasSuffix(strings.ToLower(source), ".zip"):
		m, err := ExtractModpack(source, tempDir)
		if err != nil {
			return nil, err
		}
		return &Resolved{Manifest: m, ModsDir: ModsDir(tempDir), TempDir: tempDir}, nil
	default:
		return nil, fmt.Errorf("unsupported manifest source %s", source)
	}
}

// ModsDir returns the directory holding extracted mod binaries, preferring
// the mrpack overrides layout. The returned path may not exist when the
// archive carried no binaries.
func ModsDir(tempDir string) string {
	overrides := filepath.Join(tempDir, "overrides", "mods")
	if info, err := os.Stat(overrides); err == nil && info.IsDir() {
		return overrides
	}
	return filepath.Join(tempDir, "mods")
}

// CleanTemp removes the extraction directory and everything under it.
func CleanTemp(tempDir string) error {
	if tempDir == "" || tempDir == "/" {
		return fmt.Errorf("refusing to remove %q", tempDir)
	}
	if err := os.RemoveAll(tempDir); err != nil {
		return fmt.Errorf("failed to clean temp directory %s: %w", tempDir, err)
	}
	return nil
}
