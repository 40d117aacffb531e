package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Beelzebub2/mod-side-checker/internal/checker"
	"github.com/Beelzebub2/mod-side-checker/internal/registry"
	"github.com/Beelzebub2/mod-side-checker/internal/state"
)

// finishRunState fills the end-of-run fields from the report and the
// registry counters.
func finishRunState(rs *state.RunState, report *checker.Report, stats registry.Stats) {
	rs.Processed = report.Stats.Processed
	rs.Interrupted = report.Stats.Interrupted
	rs.FinishedAt = report.Stats.StartTime.Add(report.Stats.Duration).UTC()
	for side, count := range report.Results.Counts() {
		rs.Counts[string(side)] = count
	}
	rs.Registry = &state.RegistryStats{
		Calls:    stats.Calls,
		MeanMs:   stats.MeanMs,
		P99Ms:    stats.P99Ms,
		Failures: stats.Failures,
	}
}

// sideCountLines formats per-side counts for terminal summaries, most
// common side first.
func sideCountLines(results checker.Results) []string {
	counts := results.Counts()

	type sideCount struct {
		side  string
		count int
	}
	pairs := make([]sideCount, 0, len(counts))
	for side, count := range counts {
		pairs = append(pairs, sideCount{side: string(side), count: count})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].count != pairs[j].count {
			return pairs[i].count > pairs[j].count
		}
		return pairs[i].side < pairs[j].side
	})

	lines := make([]string, 0, len(pairs))
	for _, p := range pairs {
		lines = append(lines, fmt.Sprintf("  %s: %d", p.side, p.count))
	}
	return lines
}

// isModpackSource reports whether a file name looks like a modpack archive
// or a manifest file.
func isModpackSource(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".mrpack") ||
		strings.HasSuffix(lower, ".zip") ||
		strings.HasSuffix(lower, ".json")
}

// scanDirectoryForModpacks scans a directory for modpack archives and
// manifest files, sorted for deterministic processing order.
func scanDirectoryForModpacks(dirPath string, recursive bool) ([]string, error) {
	info, err := os.Stat(dirPath)
	if err != nil {
		return nil, fmt.Errorf("cannot access directory %s: %w", dirPath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", dirPath)
	}

	var sources []string
	if recursive {
		err = filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: error accessing %s: %v\n", path, err)
				return nil
			}
			if !info.IsDir() && isModpackSource(info.Name()) {
				sources = append(sources, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("error scanning directory: %w", err)
		}
	} else {
		entries, err := os.ReadDir(dirPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read directory %s: %w", dirPath, err)
		}
		for _, entry := range entries {
			if !entry.IsDir() && isModpackSource(entry.Name()) {
				sources = append(sources, filepath.Join(dirPath, entry.Name()))
			}
		}
	}

	sort.Strings(sources)
	return sources, nil
}
