// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package waitfree

// DefaultThreshold is the number of guard-mismatches or retried help
// iterations a ContentionCounter tolerates before Detect reports
// contention. Matches the C++ source's ContentionFailureCounter /
// ContentionMeasure default of 2.
const DefaultThreshold = 2

// DefaultFastPathRetries is the number of times Handle.Submit retries
// an Algorithm's FastPath before falling through to the slow path.
const DefaultFastPathRetries = 3

// ContentionCounter measures the contention encountered during a single
// attempt at an operation (one fast-path try, or one pass through the
// help loop). It is cheap and stack-local: callers create a fresh one
// per attempt, never share it across attempts.
//
// Two near-identical reference implementations of this idea exist in
// the wild, one per contention-measuring call site; this module keeps
// one shared type.
type ContentionCounter struct {
	threshold int
	count     int
}

// NewContentionCounter creates a counter with the given threshold. A
// threshold of 0 uses DefaultThreshold.
func NewContentionCounter(threshold int) *ContentionCounter {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &ContentionCounter{threshold: threshold}
}

// Detect increments the counter and reports whether it has now exceeded
// the threshold.
func (c *ContentionCounter) Detect() bool {
	c.count++
	return c.count > c.threshold
}

// Count returns the number of times Detect has been called.
func (c *ContentionCounter) Count() int {
	return c.count
}
