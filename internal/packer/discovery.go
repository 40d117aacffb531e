// Package packer assembles side-specific modpack archives from classified
// mods: the server pack drops client-only mods, the client pack drops
// server-only ones. Mods whose jar cannot be located are listed as info
// records instead of silently vanishing.
package packer

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ScanJarFiles scans a mods directory for .jar files and returns them
// keyed by file name. Subdirectories are walked so overrides layouts with
// nested folders still resolve.
func ScanJarFiles(modsDir string, logger *slog.Logger) (map[string]string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	info, err := os.Stat(modsDir)
	if err != nil {
		return nil, fmt.Errorf("cannot access mods directory %s: %w", modsDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", modsDir)
	}

	jars := make(map[string]string)
	err = filepath.Walk(modsDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			logger.Warn("Error accessing path while scanning for jars.", "path", path, "error", err)
			return nil // Continue walking
		}

		if info.IsDir() || !strings.HasSuffix(strings.ToLower(info.Name()), ".jar") {
			return nil
		}

		// First hit wins so a duplicate name deeper in the tree cannot
		// shadow the top-level jar.
		if _, ok := jars[info.Name()]; !ok {
			jars[info.Name()] = path
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error scanning mods directory: %w", err)
	}

	logger.Info("Scanned mods directory.", "path", modsDir, "jars", len(jars))
	return jars, nil
}

// sortedNames returns map keys in a stable order for deterministic
// archive layouts.
func sortedNames(jars map[string]string) []string {
	names := make([]string, 0, len(jars))
	for name := range jars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
