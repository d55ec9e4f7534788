// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package waitfree

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/spin"
)

// Event records one step a simulator took on behalf of a participant:
// a fast-path completion, a slow-path completion, or a single phase of
// help-queue cooperation that hit contention. Phase 0 marks a
// completion (ContentionObserved is false for the fast path and true
// for the slow path); 1, 2, 3 are contention in PreCas, ExecutingCas,
// PostCas.
type Event struct {
	ParticipantID      int
	Phase              int
	ContentionObserved bool
	Completed          bool
}

// Collector is an optional sink for Events, backed by a bounded
// single-consumer queue so publishing from a hot help loop never blocks
// on a slow or absent reader — a full Collector simply drops the event.
// Adapted from the FAA-based MPSC in the wider lock-free queue family
// this module is drawn from: producers still claim slots with
// AddAcqRel, but there is exactly one consumer goroutine, started by
// NewCollector, draining into a user callback instead of exposing
// Dequeue to callers.
type Collector struct {
	head     atomix.Uint64
	tail     atomix.Uint64
	draining atomix.Bool
	buffer   []collectorSlot
	capacity uint64
	size     uint64
	mask     uint64
	done     chan struct{}
}

type collectorSlot struct {
	cycle atomix.Uint64
	event Event
}

// NewCollector creates a Collector with room for capacity undelivered
// events (rounded up to a power of two) and starts a background
// goroutine that calls sink for every event published, in publish
// order for any single participant. Call Close to stop the goroutine.
func NewCollector(capacity int, sink func(Event)) *Collector {
	if capacity < 2 {
		capacity = 2
	}
	n := uint64(roundUpPow2(capacity))
	size := n * 2

	c := &Collector{
		buffer:   make([]collectorSlot, size),
		capacity: n,
		size:     size,
		mask:     size - 1,
		done:     make(chan struct{}),
	}
	for i := uint64(0); i < size; i++ {
		c.buffer[i].cycle.StoreRelaxed(i / n)
	}

	go c.drain(sink)
	return c
}

// publish enqueues event, dropping it if the Collector's buffer is
// currently full rather than blocking the caller's help loop.
func (c *Collector) publish(event Event) {
	if c == nil {
		return
	}
	sw := spin.Wait{}
	for {
		tail := c.tail.LoadAcquire()
		head := c.head.LoadRelaxed()
		if tail >= head+c.capacity {
			return
		}

		myTail := c.tail.AddAcqRel(1) - 1
		slot := &c.buffer[myTail&c.mask]
		expectedCycle := myTail / c.capacity

		slotCycle := slot.cycle.LoadAcquire()
		if slotCycle == expectedCycle {
			slot.event = event
			slot.cycle.StoreRelease(expectedCycle + 1)
			return
		}
		if int64(slotCycle) < int64(expectedCycle) {
			return
		}
		sw.Once()
	}
}

func (c *Collector) dequeue() (Event, bool) {
	head := c.head.LoadRelaxed()
	cycle := head / c.capacity
	slot := &c.buffer[head&c.mask]

	slotCycle := slot.cycle.LoadAcquire()
	if slotCycle != cycle+1 {
		return Event{}, false
	}

	event := slot.event
	nextEnqCycle := (head + c.size) / c.capacity
	slot.cycle.StoreRelease(nextEnqCycle)
	c.head.StoreRelease(head + 1)
	return event, true
}

func (c *Collector) drain(sink func(Event)) {
	backoff := iox.Backoff{}
	for {
		event, ok := c.dequeue()
		if !ok {
			select {
			case <-c.done:
				return
			default:
			}
			backoff.Wait()
			continue
		}
		backoff.Reset()
		sink(event)
	}
}

// Close signals the background drain goroutine to stop once the buffer
// is empty. It does not wait for in-flight publishes.
func (c *Collector) Close() {
	if c == nil {
		return
	}
	c.draining.StoreRelease(true)
	close(c.done)
}

func roundUpPow2(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
