// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package waitfree

import (
	"sync/atomic"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// cellSnapshot is the immutable payload a VersionedCell points to. Every
// successful mutation allocates a fresh snapshot and swings the cell's
// pointer to it; the old snapshot is left for the garbage collector,
// this module's reclamation scheme.
type cellSnapshot[V comparable, M any] struct {
	value   V
	version uint64
	meta    M
}

// VersionedCell is an atomic reference carrying a value, a monotonically
// increasing version, user-typed metadata, and a sticky modified-bit.
//
// The modified-bit lives on the cell itself, as an atomix.Bool
// alongside the snapshot pointer, rather than inside the snapshot, so
// a descriptor can clear it without allocating a fresh snapshot.
//
// VersionedCell never lowers version, and a reader who has observed
// version v never later observes a version less than v from the same
// cell, because every replace allocates strictly version+1 and readers
// always dereference the single current snapshot pointer.
type VersionedCell[V comparable, M any] struct {
	snapshot atomic.Pointer[cellSnapshot[V, M]]
	modified atomix.Bool
}

// NewVersionedCell creates a cell holding value at version 0.
func NewVersionedCell[V comparable, M any](value V, meta M) *VersionedCell[V, M] {
	c := &VersionedCell[V, M]{}
	c.snapshot.Store(&cellSnapshot[V, M]{value: value, meta: meta})
	return c
}

// Load returns a snapshot of the cell's value, version and metadata.
// Load linearizes at the atomic pointer read.
func (c *VersionedCell[V, M]) Load() (value V, version uint64, meta M) {
	s := c.snapshot.Load()
	return s.value, s.version, s.meta
}

// Store unconditionally replaces the cell's value and metadata. It
// always allocates and swings to a fresh snapshot, even when value is
// unchanged: metadata (see mark-bit clients such as a Harris-style
// linked list) can change independently of value, so a value-only
// equality shortcut would silently drop a metadata write. See
// DESIGN.md.
func (c *VersionedCell[V, M]) Store(value V, meta M) {
	for {
		old := c.snapshot.Load()
		next := &cellSnapshot[V, M]{value: value, version: old.version + 1, meta: meta}
		if c.snapshot.CompareAndSwap(old, next) {
			return
		}
	}
}

// Transform applies fn to the cell's current (value, version, metadata)
// atomically with respect to a single load. Go methods cannot introduce
// their own type parameters, so Transform is a free function rather
// than a method, matching the C++ source's templated `transform`.
func Transform[V comparable, M any, R any](c *VersionedCell[V, M], fn func(V, uint64, M) R) R {
	s := c.snapshot.Load()
	return fn(s.value, s.version, s.meta)
}

// CompareAndSwapWeak attempts to replace the cell's value. It succeeds
// only if the current value equals expected and, when expectedVersion
// is non-nil, the current version also matches.
//
// Returns (true, nil) if replaced, (false, nil) if the guards mismatched
// and no contention was detected yet, or (false, ErrContention) if
// repeated version mismatches or lost pointer swaps tripped the counter
// — the caller should back off (switch to the slow path, or retry via
// CompareAndSwapStrong). A value mismatch always returns (false, nil)
// and does not count toward the counter.
//
// On success the modified-bit is set. This is the sole way the bit is
// ever set: it is the shared witness the simulator reads after a
// CasDescriptor.Execute to tell "we performed this CAS" apart from "a
// helper already performed an equivalent CAS with a copy of this
// descriptor" — see commit in simulator.go.
func (c *VersionedCell[V, M]) CompareAndSwapWeak(expected V, expectedVersion *uint64, desired V, desiredMeta M, counter *ContentionCounter) (bool, error) {
	old := c.snapshot.Load()
	if old.value != expected {
		return false, nil
	}
	if expectedVersion != nil && *expectedVersion != old.version {
		if counter.Detect() {
			return false, ErrContention
		}
		return false, nil
	}

	// An unchanged value is not treated as an immediate success: this
	// cell's metadata can differ from the desired metadata even when
	// the value does not, and a shortcut here would silently drop that
	// metadata write. See Store.
	next := &cellSnapshot[V, M]{value: desired, version: old.version + 1, meta: desiredMeta}
	if c.snapshot.CompareAndSwap(old, next) {
		c.modified.StoreRelease(true)
		return true, nil
	}
	if counter.Detect() {
		return false, ErrContention
	}
	return false, nil
}

// CompareAndSwapStrong loops CompareAndSwapWeak until it returns a
// definite boolean result, absorbing transient ErrContention results
// from the weak form by spinning briefly rather than propagating them.
func (c *VersionedCell[V, M]) CompareAndSwapStrong(expected V, expectedVersion *uint64, desired V, desiredMeta M, counter *ContentionCounter) bool {
	sw := spin.Wait{}
	for {
		ok, err := c.CompareAndSwapWeak(expected, expectedVersion, desired, desiredMeta, counter)
		if err == nil {
			return ok
		}
		sw.Once()
	}
}

// HasModifiedBit reports whether the cell's modified-bit is currently
// set.
func (c *VersionedCell[V, M]) HasModifiedBit() bool {
	return c.modified.LoadAcquire()
}

// ClearModifiedBit clears the cell's modified-bit.
func (c *VersionedCell[V, M]) ClearModifiedBit() {
	c.modified.StoreRelease(false)
}
