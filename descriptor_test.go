// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package waitfree_test

import (
	"testing"

	"code.hybscloud.com/waitfree"
)

// intDescriptor is a minimal CasDescriptor over a VersionedCell[int,
// struct{}], used only to exercise the CasDescriptor state machine in
// isolation from any particular client algorithm.
type intDescriptor struct {
	target   *waitfree.VersionedCell[int, struct{}]
	expected int
	desired  int
	state    waitfree.CasStatus
}

func (d *intDescriptor) HasModifiedBit() bool { return d.target.HasModifiedBit() }
func (d *intDescriptor) ClearBit()            { d.target.ClearModifiedBit() }
func (d *intDescriptor) State() waitfree.CasStatus {
	return d.state
}
func (d *intDescriptor) SetState(s waitfree.CasStatus) { d.state = s }
func (d *intDescriptor) SwapState(expected, desired waitfree.CasStatus) bool {
	if d.state == waitfree.Success || d.state == waitfree.Failure {
		return false
	}
	if d.state != expected {
		return false
	}
	d.state = desired
	return true
}
func (d *intDescriptor) Execute(counter *waitfree.ContentionCounter) (bool, error) {
	return d.target.CompareAndSwapWeak(d.expected, nil, d.desired, struct{}{}, counter)
}

func TestCasStatusString(t *testing.T) {
	cases := map[waitfree.CasStatus]string{
		waitfree.Pending: "Pending",
		waitfree.Success: "Success",
		waitfree.Failure: "Failure",
	}
	for status, want := range cases {
		if got := status.String(); got != want {
			t.Fatalf("String(%d): got %q, want %q", status, got, want)
		}
	}
}

func TestCasDescriptorTerminalStatesAreSticky(t *testing.T) {
	target := waitfree.NewVersionedCell[int, struct{}](1, struct{}{})
	d := &intDescriptor{target: target, expected: 1, desired: 2, state: waitfree.Pending}

	if !d.SwapState(waitfree.Pending, waitfree.Success) {
		t.Fatalf("SwapState(Pending, Success): got false, want true")
	}
	if d.State() != waitfree.Success {
		t.Fatalf("State: got %v, want Success", d.State())
	}

	if d.SwapState(waitfree.Success, waitfree.Pending) {
		t.Fatalf("SwapState(Success, Pending): got true, want false once Success is reached")
	}
	if d.SwapState(waitfree.Success, waitfree.Failure) {
		t.Fatalf("SwapState(Success, Failure): got true, want false once Success is reached")
	}
	if d.State() != waitfree.Success {
		t.Fatalf("State after failed swaps: got %v, want Success (unchanged)", d.State())
	}
}
