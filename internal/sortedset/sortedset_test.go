// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sortedset_test

import (
	"testing"

	"code.hybscloud.com/waitfree"
	"code.hybscloud.com/waitfree/internal/sortedset"
)

func lessInt(a, b int) bool { return a < b }

func TestSortedSetInsertAndContains(t *testing.T) {
	set := sortedset.New[int](lessInt)
	insert := waitfree.Build[int, bool, *sortedset.Link[int]](waitfree.New(2), sortedset.InsertAlgorithm(set))

	for _, v := range []int{5, 1, 3, 2, 4} {
		if !insert.Submit(v) {
			t.Fatalf("Submit(%d): got false, want true", v)
		}
	}
	for _, v := range []int{5, 1, 3, 2, 4} {
		if !set.Contains(v) {
			t.Fatalf("Contains(%d): got false, want true", v)
		}
	}
	if got := set.Len(); got != 5 {
		t.Fatalf("Len: got %d, want 5", got)
	}
	if set.Contains(999) {
		t.Fatalf("Contains(999): got true, want false")
	}
}

func TestSortedSetRemove(t *testing.T) {
	set := sortedset.New[int](lessInt)
	insert := waitfree.Build[int, bool, *sortedset.Link[int]](waitfree.New(2), sortedset.InsertAlgorithm(set))
	for _, v := range []int{1, 2, 3} {
		insert.Submit(v)
	}

	remove := waitfree.Build[int, bool, *sortedset.Link[int]](waitfree.New(2), sortedset.RemoveAlgorithm(set))
	if !remove.Submit(2) {
		t.Fatalf("Submit-remove(2): got false, want true")
	}
	if set.Contains(2) {
		t.Fatalf("Contains(2) after removal: got true, want false")
	}
	if !set.Contains(1) || !set.Contains(3) {
		t.Fatalf("Contains(1)/Contains(3) after removing 2: want both true")
	}
	if got := set.Len(); got != 2 {
		t.Fatalf("Len after removal: got %d, want 2", got)
	}
}

func TestSortedSetRemoveAlreadySatisfied(t *testing.T) {
	set := sortedset.New[int](lessInt)
	remove := waitfree.Build[int, bool, *sortedset.Link[int]](waitfree.New(2), sortedset.RemoveAlgorithm(set))

	if remove.Submit(42) {
		t.Fatalf("Submit-remove(42) on empty set: got true, want false (nothing to remove)")
	}
}
