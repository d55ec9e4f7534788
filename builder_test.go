// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package waitfree_test

import (
	"testing"

	"code.hybscloud.com/waitfree"
	"code.hybscloud.com/waitfree/internal/sortedset"
)

func TestBuilderPanicsOnNonPositiveCapacity(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("New(0): got no panic, want panic")
		}
	}()
	waitfree.New(0)
}

func TestBuilderDefaultsApplyWhenUnset(t *testing.T) {
	set := sortedset.New[int](lessInt)
	origin := waitfree.Build[int, bool, *sortedset.Link[int]](waitfree.New(4), sortedset.InsertAlgorithm(set))
	if !origin.Submit(1) {
		t.Fatalf("Submit(1) with default Builder settings: got false, want true")
	}
}

func TestBuilderChainedConfiguration(t *testing.T) {
	set := sortedset.New[int](lessInt)
	b := waitfree.New(4).Threshold(5).FastPathRetries(1)
	origin := waitfree.Build[int, bool, *sortedset.Link[int]](b, sortedset.InsertAlgorithm(set))
	if !origin.Submit(1) {
		t.Fatalf("Submit(1): got false, want true")
	}
	if !set.Contains(1) {
		t.Fatalf("Contains(1): got false, want true")
	}
}
