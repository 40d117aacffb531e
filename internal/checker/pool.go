package checker

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Beelzebub2/mod-side-checker/internal/manifest"
)

// Pool fans batches out to one worker goroutine per batch and collects the
// classified results. Workers soft-fail: a lookup problem becomes an
// Unknown result, never an aborted run.
type Pool struct {
	classifier Classifier
	coord      *Coordinator
	set        *ProcessedSet
	logger     *slog.Logger
}

// NewPool creates a pool. A nil logger falls back to the default logger.
func NewPool(classifier Classifier, coord *Coordinator, set *ProcessedSet, logger *slog.Logger) *Pool {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pool{
		classifier: classifier,
		coord:      coord,
		set:        set,
		logger:     logger.With("component", "pool"),
	}
}

// Process runs one worker per batch and returns the collected results
// along with whether the run was interrupted. A cancelled context counts
// as a stop request; workers still finish their in-flight lookup.
func (p *Pool) Process(ctx context.Context, batches [][]manifest.ModEntry) (Results, bool) {
	if len(batches) == 0 {
		return nil, p.coord.Stopped()
	}

	resultsCh := make(chan Result, 64)

	var results Results
	collectDone := make(chan struct{})
	go func() {
		defer close(collectDone)
		for r := range resultsCh {
			results = append(results, r)
		}
	}()

	bridgeDone := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			p.coord.Trigger()
		case <-bridgeDone:
		}
	}()

	var wg sync.WaitGroup
	for i, batch := range batches {
		wg.Add(1)
		go p.runWorker(ctx, &wg, i, batch, resultsCh)
	}
	wg.Wait()

	close(bridgeDone)
	close(resultsCh)
	<-collectDone

	return results, p.coord.Stopped()
}

// runWorker classifies one batch sequentially. The stop flag is checked at
// every item boundary, so a stop never cuts a lookup short.
func (p *Pool) runWorker(ctx context.Context, wg *sync.WaitGroup, id int, batch []manifest.ModEntry, out chan<- Result) {
	defer wg.Done()

	logger := p.logger.With("worker_id", id)
	logger.Debug("Worker starting.", "mods", len(batch))

	for i, entry := range batch {
		if p.coord.Stopped() {
			logger.Info("Worker stopping early.", "done", i, "remaining", len(batch)-i)
			return
		}

		name := entry.DisplayName()
		if p.set.Seen(name) {
			logger.Debug("Skipping mod already claimed by another worker.", "mod", name)
			continue
		}

		side := p.classifier.Classify(ctx, entry.PrimaryDownload())

		if !p.set.Commit(name, id) {
			// Another worker finished the same mod while this lookup ran.
			logger.Debug("Discarding duplicate result.", "mod", name)
			continue
		}

		out <- Result{Name: name, Side: side, DownloadURL: entry.PrimaryDownload()}
	}

	logger.Debug("Worker finished batch.")
}
