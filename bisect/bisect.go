// Package bisect schedules crash-point verification runs. Verify
// scripts label each surviving state with a variant; the driver
// bisects the gaps between differing variants first, because the test
// generator's ordering keeps neighbouring filters close in Hamming
// space and a variant boundary between them is where crash bugs live.
package bisect

import (
	"fmt"

	"github.com/outagefs/outagefs/lib/log"
)

// Verify exit-code protocol: 0 is pass with variant 0, 10 through 19
// are pass with variants 0 through 9, anything else is a failure that
// halts the suite.
const (
	variantBase = 10
	variantMax  = 19
)

// FailError reports the first failing verification.
type FailError struct {
	Index    int
	ExitCode int
}

func (e *FailError) Error() string {
	return fmt.Sprintf("verify failed on test %d with exit code %d", e.Index, e.ExitCode)
}

// result is the recorded outcome for one test index.
type result struct {
	known   bool
	variant int
}

// Driver runs verifications one at a time over N generated filters,
// choosing the next index from the outcomes seen so far.
type Driver struct {
	run     func(i int) (exitCode int, err error)
	results []result
}

// New creates a driver over n test indexes. run executes the
// verification for one index and returns the script's exit code; it is
// never called twice for the same index.
func New(n int, run func(i int) (exitCode int, err error)) *Driver {
	return &Driver{run: run, results: make([]result, n)}
}

// Run drives verifications until every index is recorded or one
// fails. It returns the number of verifications performed; a failing
// script surfaces as *FailError, launch problems as ordinary errors.
func (d *Driver) Run() (tested int, err error) {
	n := len(d.results)
	if n == 0 {
		return 0, nil
	}
	last := 0
	for {
		i, ok := d.next(last)
		if !ok {
			return tested, nil
		}
		code, err := d.run(i)
		if err != nil {
			return tested, err
		}
		tested++
		variant, ok := passVariant(code)
		if !ok {
			return tested, &FailError{Index: i, ExitCode: code}
		}
		log.Debugf("test %d passed with variant %d", i, variant)
		d.results[i] = result{known: true, variant: variant}
		last = i
	}
}

// next picks the index to verify. The first two picks are the ends of
// the range. After that the widest gap between two recorded results
// with differing variants is bisected; once no such gap is wider than
// one, the remaining unknowns are filled linearly starting after the
// last run.
func (d *Driver) next(last int) (int, bool) {
	n := len(d.results)
	if !d.results[0].known {
		return 0, true
	}
	if !d.results[n-1].known {
		return n - 1, true
	}
	bestDist := 1
	bestMid := -1
	prev := 0
	for i := 1; i < n; i++ {
		if !d.results[i].known {
			continue
		}
		if d.results[i].variant != d.results[prev].variant && i-prev > bestDist {
			bestDist = i - prev
			bestMid = (i + prev) / 2
		}
		prev = i
	}
	if bestMid >= 0 {
		return bestMid, true
	}
	for off := 1; off <= n; off++ {
		i := (last + off) % n
		if !d.results[i].known {
			return i, true
		}
	}
	return 0, false
}

func passVariant(code int) (int, bool) {
	switch {
	case code == 0:
		return 0, true
	case code >= variantBase && code <= variantMax:
		return code - variantBase, true
	}
	return 0, false
}
