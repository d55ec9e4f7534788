// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package waitfree

import "sync/atomic"

// phaseKind tags an operationState. Go has no sum types, so the
// PreCas/ExecutingCas/PostCas/Completed variant is represented as a
// kind tag plus the union of payload fields any kind might need; only
// the fields relevant to the current kind are meaningful.
type phaseKind uint8

const (
	phasePreCas phaseKind = iota
	phaseExecutingCas
	phasePostCas
	phaseCompleted
)

// operationState is the payload of one phase of an operation's
// lifecycle. Which fields are meaningful depends on kind: commit for
// ExecutingCas, commit and outcome for PostCas, output for Completed,
// none for PreCas.
type operationState[Output any, D CasDescriptor] struct {
	kind    phaseKind
	commit  []D
	outcome Outcome
	output  Output
}

func preCasState[Output any, D CasDescriptor]() operationState[Output, D] {
	return operationState[Output, D]{kind: phasePreCas}
}

func executingCasState[Output any, D CasDescriptor](commit []D) operationState[Output, D] {
	return operationState[Output, D]{kind: phaseExecutingCas, commit: commit}
}

func postCasState[Output any, D CasDescriptor](commit []D, outcome Outcome) operationState[Output, D] {
	return operationState[Output, D]{kind: phasePostCas, commit: commit, outcome: outcome}
}

func completedState[Output any, D CasDescriptor](output Output) operationState[Output, D] {
	return operationState[Output, D]{kind: phaseCompleted, output: output}
}

// operationRecord is a single submitted operation: its owner, its
// immutable input, and its current phase. A record is never mutated in
// place — every phase transition allocates a new record (inheriting
// owner and input) and CASes the enclosing box's pointer from the prior
// record to it, avoiding any torn intermediate state a reader might
// observe.
type operationRecord[Input, Output any, D CasDescriptor] struct {
	owner int
	input Input
	state operationState[Output, D]
}

// operationBox is the single-pointer cell the help queue carries: its
// target operation record is logically owned by whichever thread most
// recently installed it. The record it replaces is left for the
// garbage collector once no atomic.Pointer load anywhere still holds
// it — this module's reclamation scheme.
type operationBox[Input, Output any, D CasDescriptor] struct {
	ptr atomic.Pointer[operationRecord[Input, Output, D]]
}

func newOperationBox[Input, Output any, D CasDescriptor](owner int, input Input) *operationBox[Input, Output, D] {
	b := &operationBox[Input, Output, D]{}
	b.ptr.Store(&operationRecord[Input, Output, D]{
		owner: owner,
		input: input,
		state: preCasState[Output, D](),
	})
	return b
}

func (b *operationBox[Input, Output, D]) load() *operationRecord[Input, Output, D] {
	return b.ptr.Load()
}

// transition CASes the box's pointer from old to next. A false return
// means a different thread already advanced this box past old; the
// caller's next record is simply discarded (the garbage collector
// reclaims it, since nothing ever shared it with another thread).
func (b *operationBox[Input, Output, D]) transition(old, next *operationRecord[Input, Output, D]) bool {
	return b.ptr.CompareAndSwap(old, next)
}
