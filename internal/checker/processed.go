package checker

import (
	"sync"
)

// Progress is a point-in-time snapshot of a run's counters.
type Progress struct {
	Processed int
	PerWorker []int
}

// ProcessedSet tracks which mod names have been classified and how many
// each worker has committed. One mutex guards both, so the dedup check and
// the counters can never drift apart. The lock is never held across a
// network call; workers check Seen before classifying and Commit after.
type ProcessedSet struct {
	mu        sync.Mutex
	seen      map[string]struct{}
	perWorker []int
	processed int
}

// NewProcessedSet creates an empty set with one counter per worker.
func NewProcessedSet(workerCount int) *ProcessedSet {
	if workerCount < 1 {
		workerCount = 1
	}
	return &ProcessedSet{
		seen:      make(map[string]struct{}),
		perWorker: make([]int, workerCount),
	}
}

// Seen reports whether a mod name has already been committed.
func (s *ProcessedSet) Seen(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seen[name]
	return ok
}

// Commit records a classified mod for a worker. It returns false when
// another worker committed the same name first; the caller must then
// discard its result so every mod is emitted exactly once.
func (s *ProcessedSet) Commit(name string, worker int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seen[name]; ok {
		return false
	}

	s.seen[name] = struct{}{}
	s.processed++
	if worker >= 0 && worker < len(s.perWorker) {
		s.perWorker[worker]++
	}
	return true
}

// Count returns the number of committed mods.
func (s *ProcessedSet) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processed
}

// Snapshot copies the current counters for progress displays.
func (s *ProcessedSet) Snapshot() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()

	per := make([]int, len(s.perWorker))
	copy(per, s.perWorker)
	return Progress{Processed: s.processed, PerWorker: per}
}
