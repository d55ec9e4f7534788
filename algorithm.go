// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package waitfree

// Outcome describes how a commit list's execution ended, the Go
// equivalent of the C++ source's
// `nonstd::expected<std::monostate, std::optional<int>>`: either every
// descriptor linearized, or execution stopped at a specific index.
type Outcome struct {
	ok          bool
	failedIndex int
}

// OutcomeOK reports that every descriptor in a commit list linearized
// successfully.
func OutcomeOK() Outcome { return Outcome{ok: true} }

// OutcomeFailedAt reports that commit execution stopped at descriptor
// index i (that descriptor reached Failure).
func OutcomeFailedAt(i int) Outcome { return Outcome{ok: false, failedIndex: i} }

// OK reports whether every descriptor linearized.
func (o Outcome) OK() bool { return o.ok }

// FailedIndex returns the index at which execution stopped. Only
// meaningful when OK is false.
func (o Outcome) FailedIndex() int { return o.failedIndex }

// Algorithm is the contract a client's normalized lock-free algorithm
// must satisfy. D is the client's CasDescriptor implementation;
// a single commit is represented as []D, the Go stand-in for the
// `Commit` associated type (a finite ordered sequence of
// descriptors — order matters, since Commit walks it left to right and
// the client is responsible for ordering descriptors so dependencies
// point left-to-right).
type Algorithm[Input, Output any, D CasDescriptor] interface {
	// Generator produces the commit list for this operation, given the
	// counter shared across this attempt. Returns (nil, ErrAlreadySatisfied)
	// when the operation's effect is already reflected in the
	// structure (e.g. inserting a key already present), (nil,
	// ErrContention) to ask the caller to retry, or (commit, nil) on
	// success.
	Generator(input Input, counter *ContentionCounter) (commit []D, err error)

	// WrapUp converts the execution outcome of a commit list into
	// either a final Output (done=true), a restart signal
	// (done=false, err=nil — go back to PreCas), or a contention
	// signal (err=ErrContention — retry WrapUp itself).
	WrapUp(outcome Outcome, commit []D, counter *ContentionCounter) (output Output, done bool, err error)

	// FastPath is an optimistic single-thread attempt made without
	// publishing to the help queue. ok=false means "abandon the fast
	// path, switch to help-queue cooperation".
	FastPath(input Input, counter *ContentionCounter) (output Output, ok bool)
}
