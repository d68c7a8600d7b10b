// Package testgen turns a recorded change list into crash-point
// filters. Every filter stands for "this subset of the writes between
// two sync barriers reached the disk before the power went out".
package testgen

import (
	"fmt"
	"math/rand"

	"github.com/outagefs/outagefs/journal"
)

// Generate emits filter strings for every sync window in changes. A
// window of at most maxLog2 changes is enumerated exhaustively in
// numeric order; a wider one is sampled with 2^maxLog2 distinct
// patterns from a correlated random walk in Hamming space, so that
// neighbouring patterns in the output differ in few bits. The bisect
// driver leans on that locality.
//
// rng drives the sampling; pass a seeded source for reproducible
// output.
func Generate(changes []journal.Change, maxLog2 int, rng *rand.Rand) []string {
	// A trailing write run still marks a legal crash boundary, so
	// account for a synthetic final sync.
	n := len(changes)
	syncIndexes := make([]int, 0, n+1)
	for i, change := range changes {
		if change.Sync {
			syncIndexes = append(syncIndexes, i)
		}
	}
	if n > 0 && !changes[n-1].Sync {
		syncIndexes = append(syncIndexes, n)
	}

	var filters []string
	start := 0
	for _, syncIndex := range syncIndexes {
		width := syncIndex - start
		switch {
		case width == 0:
			// No writes in this window.
		case width <= maxLog2:
			for bits := 0; bits < 1<<uint(width); bits++ {
				filters = append(filters, fmt.Sprintf("%d:%0*b", start, width, bits))
			}
		default:
			filters = append(filters, sampleWindow(start, width, maxLog2, rng)...)
		}
		start = syncIndex + 1
	}
	return filters
}

// sampleWindow walks Hamming space starting from all zeros, flipping a
// random number of random bits per step and emitting each pattern the
// first time it appears, until 2^maxLog2 distinct patterns are out.
func sampleWindow(start, width, maxLog2 int, rng *rand.Rand) []string {
	n := 1 << uint(maxLog2)
	maxFlips := width * 2 / maxLog2
	if maxFlips < 2 {
		maxFlips = 2
	}
	bits := make([]byte, width)
	for i := range bits {
		bits[i] = '0'
	}
	visited := make(map[string]bool, n)
	filters := make([]string, 0, n)
	for len(filters) < n {
		flips := 1 + rng.Intn(maxFlips-1)
		for i := 0; i < flips; i++ {
			idx := rng.Intn(width)
			if bits[idx] == '0' {
				bits[idx] = '1'
			} else {
				bits[idx] = '0'
			}
		}
		pattern := string(bits)
		if !visited[pattern] {
			visited[pattern] = true
			filters = append(filters, fmt.Sprintf("%d:%s", start, pattern))
		}
	}
	return filters
}
