// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package waitfree

import (
	"sync/atomic"

	"code.hybscloud.com/atomix"
)

// helpQueueNode is a singly linked help-queue node. Once linked, a node
// never changes its data or enqueuer id — only next, and the head/tail
// cell pointers, ever mutate.
type helpQueueNode[T comparable] struct {
	data     T
	enqueuer int
	next     atomic.Pointer[helpQueueNode[T]]
}

// slotDescription is the most recent operation description a
// participant has published to its help-queue slot. phase and node are
// fixed at creation; only pending flips, via CAS, possibly by a
// different thread than the one that created the description.
type slotDescription[T comparable] struct {
	phase   int64
	node    *helpQueueNode[T]
	pending atomix.Bool
}

// HelpQueue is a wait-free FIFO derived from the Kogan-Petrank queue:
// one announce slot per participant, cooperative helping for enqueues,
// a conditional pop for dequeues. It is the "cry for help" board the
// simulator publishes stalled operations to, but it is also useful
// standalone — it makes no reference to operations, records, or
// algorithms, only to a comparable payload type T.
//
// A slot is pending while and only while its announced node has not
// yet been linked as tail.next and published as the new tail. At most
// one node is ever linked for a given (slot, phase), because a slot is
// only overwritten by its own owner's next push, which bumps the
// phase — so two different pushes by the same participant can never
// race to install the same phase.
type HelpQueue[T comparable] struct {
	head     atomic.Pointer[helpQueueNode[T]]
	tail     atomic.Pointer[helpQueueNode[T]]
	states   []atomic.Pointer[slotDescription[T]]
	maxPhase atomix.Int64
}

// NewHelpQueue creates an empty help queue with capacity participant
// slots, numbered [0, capacity).
func NewHelpQueue[T comparable](capacity int) *HelpQueue[T] {
	if capacity <= 0 {
		panic("waitfree: help queue capacity must be > 0")
	}
	sentinel := &helpQueueNode[T]{}
	hq := &HelpQueue[T]{states: make([]atomic.Pointer[slotDescription[T]], capacity)}
	hq.head.Store(sentinel)
	hq.tail.Store(sentinel)
	for i := range hq.states {
		empty := &slotDescription[T]{phase: -1}
		hq.states[i].Store(empty)
	}
	return hq
}

// PushBack announces enqueuer's intent to append value, helps every
// slot whose announcement is at least as old as this one, then returns
// once value is linked into the list. PushBack happens-before any
// helper observing value via PeekFront.
func (hq *HelpQueue[T]) PushBack(enqueuer int, value T) {
	phase := hq.maxPhase.AddAcqRel(1)
	desc := &slotDescription[T]{
		phase: phase,
		node:  &helpQueueNode[T]{data: value, enqueuer: enqueuer},
	}
	desc.pending.StoreRelaxed(true)
	hq.states[enqueuer].Store(desc)

	for i := range hq.states {
		hq.helpEnqueue(i, phase)
	}
}

// helpEnqueue drives slot i's announced enqueue to completion, provided
// its phase is no newer than helperPhase (so a helper never does work
// on behalf of an announcement made after it started helping).
func (hq *HelpQueue[T]) helpEnqueue(i int, helperPhase int64) {
	for {
		desc := hq.states[i].Load()
		if desc.phase < 0 || desc.phase > helperPhase || !desc.pending.LoadAcquire() {
			return
		}

		tail := hq.tail.Load()
		next := tail.next.Load()
		if tail != hq.tail.Load() {
			continue
		}
		if next != nil {
			hq.helpFinishEnqueue()
			continue
		}
		if !desc.pending.LoadAcquire() {
			return
		}
		if tail.next.CompareAndSwap(nil, desc.node) {
			hq.helpFinishEnqueue()
			return
		}
	}
}

// helpFinishEnqueue links the current tail's successor as the new tail
// and clears the owning slot's pending flag, tolerating the case where
// another helper has already done either half of the work.
func (hq *HelpQueue[T]) helpFinishEnqueue() {
	tail := hq.tail.Load()
	next := tail.next.Load()
	if next == nil {
		return
	}
	desc := hq.states[next.enqueuer].Load()
	if desc.node == next {
		desc.pending.CompareAndSwapAcqRel(true, false)
	}
	hq.tail.CompareAndSwap(tail, next)
}

// PeekFront returns the value at the head of the queue, or ok=false if
// the queue is logically empty. PeekFront never observes an
// enqueue-in-progress whose node is not yet linked to head.next,
// because a node only becomes visible there once helpFinishEnqueue (or
// the producer's own CAS) has linked it.
func (hq *HelpQueue[T]) PeekFront() (value T, ok bool) {
	next := hq.head.Load().next.Load()
	if next == nil {
		var zero T
		return zero, false
	}
	return next.data, true
}

// TryPopFront conditionally advances the head, provided the current
// head's successor carries exactly expected (by equality). On success
// it runs one helpFinishEnqueue pass to drain any tail that is linked
// but not yet published, then returns true. The head advances first;
// the drain pass runs after, not before.
func (hq *HelpQueue[T]) TryPopFront(expected T) bool {
	head := hq.head.Load()
	next := head.next.Load()
	if next == nil || next.data != expected {
		return false
	}
	if !hq.head.CompareAndSwap(head, next) {
		return false
	}
	hq.helpFinishEnqueue()
	return true
}
