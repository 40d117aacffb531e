package checker

import (
	"context"
	"log/slog"
	"time"

	"github.com/Beelzebub2/mod-side-checker/internal/manifest"
)

// Report is the outcome of one classification run.
type Report struct {
	Results Results
	Stats   RunStats
}

// Pipeline wires the partitioner, the dedup set and the worker pool into
// one classification run. Create a fresh pipeline per run; the dedup set
// and counters do not carry over.
type Pipeline struct {
	coord   *Coordinator
	set     *ProcessedSet
	pool    *Pool
	logger  *slog.Logger
	workers int
}

// NewPipeline creates a pipeline with workerCount workers. A nil logger
// falls back to the default logger.
func NewPipeline(classifier Classifier, coord *Coordinator, workerCount int, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if workerCount < 1 {
		workerCount = 1
	}

	set := NewProcessedSet(workerCount)
	return &Pipeline{
		coord:   coord,
		set:     set,
		pool:    NewPool(classifier, coord, set, logger),
		logger:  logger.With("component", "pipeline"),
		workers: workerCount,
	}
}

// Progress returns a live snapshot of the run counters for displays.
func (p *Pipeline) Progress() Progress {
	return p.set.Snapshot()
}

// Check classifies every mod in the list and reports results plus
// aggregate stats. An interrupted run returns the partial results
// collected so far.
func (p *Pipeline) Check(ctx context.Context, mods []manifest.ModEntry) *Report {
	start := time.Now()

	batches := Partition(mods, p.workers)
	p.logger.Info("Starting classification run.",
		"mods", len(mods), "workers", p.workers, "batches", len(batches))

	results, interrupted := p.pool.Process(ctx, batches)
	stats := BuildRunStats(len(mods), results, interrupted, start)

	p.logger.Info("Classification run finished.",
		"processed", stats.Processed, "unknown", stats.Unknown,
		"interrupted", interrupted, "duration", stats.Duration.String())

	return &Report{Results: results, Stats: stats}
}
