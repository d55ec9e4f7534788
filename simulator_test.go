// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package waitfree_test

import (
	"sync"
	"testing"

	"code.hybscloud.com/waitfree"
	"code.hybscloud.com/waitfree/internal/sortedset"
)

func lessInt(a, b int) bool { return a < b }

func TestSimulatorFastPathInserts(t *testing.T) {
	set := sortedset.New[int](lessInt)
	origin := waitfree.Build[int, bool, *sortedset.Link[int]](waitfree.New(4), sortedset.InsertAlgorithm(set))

	const n = 100
	for i := 0; i < n; i++ {
		if ok := origin.Submit(i); !ok {
			t.Fatalf("Submit(%d): got false, want true", i)
		}
	}
	if got := set.Len(); got != n {
		t.Fatalf("Len: got %d, want %d", got, n)
	}
	for i := 0; i < n; i++ {
		if !set.Contains(i) {
			t.Fatalf("Contains(%d): got false, want true", i)
		}
	}
}

func TestSimulatorInsertIsIdempotent(t *testing.T) {
	set := sortedset.New[int](lessInt)
	origin := waitfree.Build[int, bool, *sortedset.Link[int]](waitfree.New(4), sortedset.InsertAlgorithm(set))

	if !origin.Submit(7) {
		t.Fatalf("first Submit(7): got false, want true")
	}
	if origin.Submit(7) {
		t.Fatalf("second Submit(7): got true, want false (already present)")
	}
	if got := set.Len(); got != 1 {
		t.Fatalf("Len: got %d, want 1", got)
	}
}

func TestSimulatorForkRetireIDReuse(t *testing.T) {
	set := sortedset.New[int](lessInt)
	origin := waitfree.Build[int, bool, *sortedset.Link[int]](waitfree.New(2), sortedset.InsertAlgorithm(set))

	a, ok := origin.Fork()
	if !ok {
		t.Fatalf("first Fork: got ok=false, want true")
	}
	if _, ok := origin.Fork(); ok {
		t.Fatalf("second Fork with capacity 2: got ok=true, want false (no ids left)")
	}

	a.Retire()
	b, ok := origin.Fork()
	if !ok {
		t.Fatalf("Fork after Retire: got ok=false, want true")
	}
	if b.ID() != a.ID() {
		t.Fatalf("Fork after Retire: got id %d, want reused id %d", b.ID(), a.ID())
	}
}

// TestSimulatorSlowPathContention forces every operation through the
// help queue (SubmitVia with forceSlowPath) across concurrent
// participants and checks every distinct value ends up in the set.
func TestSimulatorSlowPathContention(t *testing.T) {
	if waitfree.RaceEnabled {
		t.Skip("skip: relies on happens-before edges the race detector cannot observe")
	}

	const participants = 4
	const perParticipant = 1000

	set := sortedset.New[int](lessInt)
	origin := waitfree.Build[int, bool, *sortedset.Link[int]](waitfree.New(participants), sortedset.InsertAlgorithm(set))

	var wg sync.WaitGroup

	// Participant 0 is origin itself; fork the remaining participants.
	// The worker slice is typed by method set rather than by naming
	// Handle with its three type arguments.
	participantsHandles := []interface{ SubmitVia(int, bool) bool }{origin}
	for i := 1; i < participants; i++ {
		h, ok := origin.Fork()
		if !ok {
			t.Fatalf("Fork(%d): got ok=false, want true", i)
		}
		participantsHandles = append(participantsHandles, h)
	}

	for p, h := range participantsHandles {
		wg.Add(1)
		go func(id int, handle interface{ SubmitVia(int, bool) bool }) {
			defer wg.Done()
			base := id * perParticipant
			for i := 0; i < perParticipant; i++ {
				handle.SubmitVia(base+i, true)
			}
		}(p, h)
	}
	wg.Wait()

	if got := set.Len(); got != participants*perParticipant {
		t.Fatalf("Len: got %d, want %d", got, participants*perParticipant)
	}
	for p := 0; p < participants; p++ {
		base := p * perParticipant
		for i := 0; i < perParticipant; i++ {
			if !set.Contains(base + i) {
				t.Fatalf("Contains(%d): got false, want true", base+i)
			}
		}
	}
}
