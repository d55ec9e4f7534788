// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package waitfree

// config configures simulator creation.
type config struct {
	capacity        int
	threshold       int
	fastPathRetries int
	telemetry       *Collector
}

// Builder creates a Simulator with fluent configuration, the same
// shape as the wider lock-free queue family's queue Builder, adapted
// from its options.go: chainable setters over a private config,
// defaults applied by Build rather than by New.
type Builder struct {
	cfg config
}

// New creates a Builder for a Simulator serving participants numbered
// [0, n). n is the help queue's slot capacity and therefore the
// maximum number of distinct participant ids Fork can ever hand out.
//
// Panics if n < 1.
func New(n int) *Builder {
	if n < 1 {
		panic("waitfree: participant capacity must be >= 1")
	}
	return &Builder{cfg: config{capacity: n}}
}

// Threshold sets the number of CAS guard-mismatches a single
// ContentionCounter tolerates before reporting ErrContention. Defaults
// to DefaultThreshold if never called or called with n <= 0.
func (b *Builder) Threshold(n int) *Builder {
	b.cfg.threshold = n
	return b
}

// FastPathRetries sets how many times Submit retries an algorithm's
// FastPath before falling back to the cooperative slow path. Defaults
// to DefaultFastPathRetries if never called or called with n <= 0.
func (b *Builder) FastPathRetries(n int) *Builder {
	b.cfg.fastPathRetries = n
	return b
}

// Telemetry attaches a Collector that every completed Submit, and every
// help-queue cooperation step that hits contention, reports an Event
// to. Optional; a Simulator built
// without one simply never records anything.
func (b *Builder) Telemetry(c *Collector) *Builder {
	b.cfg.telemetry = c
	return b
}

// Build creates a Simulator for algorithm and returns its origin
// Handle, carrying participant id 0. Build itself cannot carry its own
// new type parameters as a method, so it is a free function taking
// the Builder as an argument. Every further Handle for this Simulator
// comes from Fork; the free list is seeded with [1, N).
func Build[Input, Output any, D CasDescriptor](b *Builder, algorithm Algorithm[Input, Output, D]) *Handle[Input, Output, D] {
	threshold := b.cfg.threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	retries := b.cfg.fastPathRetries
	if retries <= 0 {
		retries = DefaultFastPathRetries
	}
	core := newSimulator[Input, Output, D](algorithm, b.cfg.capacity, threshold, retries, b.cfg.telemetry)
	sim := &Simulator[Input, Output, D]{
		core:     core,
		capacity: b.cfg.capacity,
		free:     newIDPool(b.cfg.capacity),
	}
	return &Handle[Input, Output, D]{sim: sim, id: 0}
}
