package checker

import (
	"github.com/Beelzebub2/mod-side-checker/internal/manifest"
)

// Partition splits mods into contiguous batches, one per worker. The batch
// size is the floor of len(mods)/workerCount and the final batch absorbs
// the remainder, so the batch count never exceeds the worker count. When
// there are fewer mods than workers the worker count shrinks to match,
// one mod per batch. Zero mods yield zero batches.
func Partition(mods []manifest.ModEntry, workerCount int) [][]manifest.ModEntry {
	if len(mods) == 0 {
		return nil
	}

	if workerCount < 1 {
		workerCount = 1
	}
	if workerCount > len(mods) {
		workerCount = len(mods)
	}

	batchSize := len(mods) / workerCount

	batches := make([][]manifest.ModEntry, 0, workerCount)
	for i := 0; i < workerCount; i++ {
		start := i * batchSize
		end := start + batchSize
		if i == workerCount-1 {
			end = len(mods)
		}
		batches = append(batches, mods[start:end])
	}

	return batches
}

// BatchSizes reports how many mods each worker would receive for the given
// totals, without building the batches. Progress displays use this to size
// their per-worker bars.
func BatchSizes(totalMods, workerCount int) []int {
	if totalMods == 0 {
		return nil
	}

	if workerCount < 1 {
		workerCount = 1
	}
	if workerCount > totalMods {
		workerCount = totalMods
	}

	batchSize := totalMods / workerCount

	sizes := make([]int, workerCount)
	for i := range sizes {
		sizes[i] = batchSize
	}
	sizes[workerCount-1] = totalMods - batchSize*(workerCount-1)
	return sizes
}
