// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package waitfree_test

import (
	"sync"
	"testing"

	"code.hybscloud.com/waitfree"
)

func TestHelpQueuePeekEmpty(t *testing.T) {
	hq := waitfree.NewHelpQueue[int](4)
	if _, ok := hq.PeekFront(); ok {
		t.Fatalf("PeekFront on empty queue: got ok=true, want false")
	}
}

func TestHelpQueueSingleThreadSequence(t *testing.T) {
	hq := waitfree.NewHelpQueue[int](4)

	hq.PushBack(0, 10)
	hq.PushBack(1, 20)
	hq.PushBack(2, 30)

	for _, want := range []int{10, 20, 30} {
		got, ok := hq.PeekFront()
		if !ok {
			t.Fatalf("PeekFront: got ok=false, want true (value %d)", want)
		}
		if got != want {
			t.Fatalf("PeekFront: got %d, want %d", got, want)
		}
		if !hq.TryPopFront(want) {
			t.Fatalf("TryPopFront(%d): got false, want true", want)
		}
	}

	if _, ok := hq.PeekFront(); ok {
		t.Fatalf("PeekFront after draining: got ok=true, want false")
	}
}

func TestHelpQueueTryPopFrontRejectsWrongValue(t *testing.T) {
	hq := waitfree.NewHelpQueue[int](2)
	hq.PushBack(0, 42)

	if hq.TryPopFront(41) {
		t.Fatalf("TryPopFront(41): got true, want false (head is 42)")
	}
	if !hq.TryPopFront(42) {
		t.Fatalf("TryPopFront(42): got false, want true")
	}
}

// TestHelpQueueMultiThreadEnqueueCount concurrently pushes from N
// participants and checks every enqueued value is eventually observed
// exactly once when the queue is drained sequentially afterward.
func TestHelpQueueMultiThreadEnqueueCount(t *testing.T) {
	if waitfree.RaceEnabled {
		t.Skip("skip: relies on happens-before edges the race detector cannot observe")
	}

	const participants = 3
	const perParticipant = 200

	hq := waitfree.NewHelpQueue[int](participants)
	var wg sync.WaitGroup
	for p := 0; p < participants; p++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < perParticipant; i++ {
				hq.PushBack(id, id*1000+i)
			}
		}(p)
	}
	wg.Wait()

	seen := make(map[int]bool)
	for {
		v, ok := hq.PeekFront()
		if !ok {
			break
		}
		if seen[v] {
			t.Fatalf("value %d observed twice", v)
		}
		seen[v] = true
		if !hq.TryPopFront(v) {
			t.Fatalf("TryPopFront(%d) failed on a single-goroutine drain", v)
		}
	}

	if len(seen) != participants*perParticipant {
		t.Fatalf("drained %d values, want %d", len(seen), participants*perParticipant)
	}
}
