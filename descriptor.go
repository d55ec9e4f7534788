// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package waitfree

// CasStatus is the lifecycle state of a CasDescriptor.
type CasStatus int

const (
	// Pending means the descriptor's CAS has not yet been linearized.
	Pending CasStatus = iota
	// Success means the descriptor's CAS has linearized successfully,
	// either because this thread executed it or because a helper did.
	Success
	// Failure is terminal: the descriptor's CAS cannot succeed.
	Failure
)

// String implements fmt.Stringer.
func (s CasStatus) String() string {
	switch s {
	case Pending:
		return "Pending"
	case Success:
		return "Success"
	case Failure:
		return "Failure"
	default:
		return "Unknown"
	}
}

// CasDescriptor is the contract every client CAS descriptor must
// implement. A descriptor pairs a target VersionedCell with an
// (expected, desired) pair and a lifecycle state. It must be
// copy-constructible in the sense that copying it re-reads its
// lifecycle state atomically (Go's implicit struct copy, plus an
// atomic field for state, satisfies this without extra work).
//
// Invariant: once State() is Success or Failure, a later SwapState must
// fail — terminal states are sticky.
type CasDescriptor interface {
	// HasModifiedBit reports whether the descriptor's target cell's
	// modified-bit is currently set.
	HasModifiedBit() bool
	// ClearBit clears the descriptor's target cell's modified-bit.
	ClearBit()
	// State returns the descriptor's current lifecycle state.
	State() CasStatus
	// SetState unconditionally writes the descriptor's lifecycle
	// state. Used only to stamp a terminal Failure.
	SetState(s CasStatus)
	// SwapState CASes the descriptor's lifecycle state from expected
	// to desired, returning whether it succeeded.
	SwapState(expected, desired CasStatus) bool
	// Execute performs the descriptor's underlying cell replace.
	// Returns (true, nil) if it linearized the CAS, (false, nil) if
	// the guards mismatched, or (false, ErrContention) if repeated
	// contention was detected.
	Execute(counter *ContentionCounter) (bool, error)
}
