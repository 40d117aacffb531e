package checker

import (
	"fmt"
	"time"

	"github.com/Beelzebub2/mod-side-checker/internal/registry"
)

// RunStats summarizes one classification run.
type RunStats struct {
	TotalMods   int           `json:"total_mods"`
	Processed   int           `json:"processed"`
	Classified  int           `json:"classified"`
	Unknown     int           `json:"unknown"`
	Interrupted bool          `json:"interrupted"`
	StartTime   time.Time     `json:"start_time"`
	Duration    time.Duration `json:"duration"`
}

// BuildRunStats derives the run summary from the collected results.
func BuildRunStats(totalMods int, results Results, interrupted bool, start time.Time) RunStats {
	stats := RunStats{
		TotalMods:   totalMods,
		Processed:   len(results),
		Interrupted: interrupted,
		StartTime:   start,
		Duration:    time.Since(start),
	}

	for _, r := range results {
		if r.Side == registry.SideUnknown {
			stats.Unknown++
		} else {
			stats.Classified++
		}
	}

	return stats
}

// ClassifiedRate returns the share of processed mods with a known side, as
// a percentage.
func (rs *RunStats) ClassifiedRate() float64 {
	if rs.Processed == 0 {
		return 0.0
	}
	return float64(rs.Classified) / float64(rs.Processed) * 100.0
}

// UnknownRate returns the share of processed mods that stayed unknown, as
// a percentage.
func (rs *RunStats) UnknownRate() float64 {
	if rs.Processed == 0 {
		return 0.0
	}
	return float64(rs.Unknown) / float64(rs.Processed) * 100.0
}

// String returns a long form of the run summary.
func (rs *RunStats) String() string {
	return fmt.Sprintf("Mods: %d, Processed: %d, Classified: %d (%.2f%%), Unknown: %d (%.2f%%), Interrupted: %v, Duration: %v",
		rs.TotalMods, rs.Processed, rs.Classified, rs.ClassifiedRate(), rs.Unknown, rs.UnknownRate(), rs.Interrupted, rs.Duration)
}

// CompactFormat returns a short form for inline logging.
func (rs *RunStats) CompactFormat() string {
	durationSeconds := rs.Duration.Seconds()
	if rs.Interrupted {
		return fmt.Sprintf("%d/%d processed (interrupted), Duration: %.3fs", rs.Processed, rs.TotalMods, durationSeconds)
	}
	return fmt.Sprintf("%d processed, %d unknown, Duration: %.3fs", rs.Processed, rs.Unknown, durationSeconds)
}
