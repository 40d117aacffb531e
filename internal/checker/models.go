// Package checker implements the classification pipeline: it partitions the
// manifest across a pool of workers, deduplicates mods by name, queries the
// registry through a Classifier, and survives mid-run interrupts with
// partial results.
package checker

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Beelzebub2/mod-side-checker/internal/registry"
)

// Classifier resolves a mod download URL to a side. Implementations must
// never fail hard; lookup problems map to SideUnknown.
type Classifier interface {
	Classify(ctx context.Context, downloadURL string) registry.Side
}

// Result is one classified mod.
type Result struct {
	Name        string        `json:"name"`
	Side        registry.Side `json:"side"`
	DownloadURL string        `json:"download_url"`
}

// Validate checks a result before it is written anywhere.
func (r *Result) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("result name cannot be empty")
	}
	if r.Side == "" {
		return fmt.Errorf("result side cannot be empty")
	}
	return nil
}

// Results is a collection of classified mods.
type Results []Result

// BySide returns the results whose side matches exactly.
func (rs Results) BySide(side registry.Side) Results {
	var filtered Results
	for _, r := range rs {
		if r.Side == side {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// Counts tallies results per side.
func (rs Results) Counts() map[registry.Side]int {
	counts := make(map[registry.Side]int)
	for _, r := range rs {
		counts[r.Side]++
	}
	return counts
}

// Sorted returns a copy ordered by mod name. Worker completion order is
// non-deterministic, so exports sort before writing.
func (rs Results) Sorted() Results {
	sorted := make(Results, len(rs))
	copy(sorted, rs)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})
	return sorted
}

// Names returns the mod names in result order.
func (rs Results) Names() []string {
	names := make([]string, 0, len(rs))
	for _, r := range rs {
		names = append(names, r.Name)
	}
	return names
}
