// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package waitfree

import (
	"errors"

	"code.hybscloud.com/iox"
)

// simulator is the wait-free simulator core. It owns the algorithm
// being normalized, the help queue operations stall on, and the
// contention threshold shared across every fresh ContentionCounter it
// hands out.
type simulator[Input, Output any, D CasDescriptor] struct {
	algorithm       Algorithm[Input, Output, D]
	queue           *HelpQueue[*operationBox[Input, Output, D]]
	threshold       int
	fastPathRetries int
	telemetry       *Collector
}

func newSimulator[Input, Output any, D CasDescriptor](algorithm Algorithm[Input, Output, D], capacity, threshold, fastPathRetries int, telemetry *Collector) *simulator[Input, Output, D] {
	return &simulator[Input, Output, D]{
		algorithm:       algorithm,
		queue:           NewHelpQueue[*operationBox[Input, Output, D]](capacity),
		threshold:       threshold,
		fastPathRetries: fastPathRetries,
		telemetry:       telemetry,
	}
}

// submit runs input to completion on behalf of participant id, trying
// the algorithm's fast path fastPathRetries times before falling back
// to the cooperative slow path.
func (s *simulator[Input, Output, D]) submit(id int, input Input) Output {
	s.helpOthers(id)

	counter := NewContentionCounter(s.threshold)
	for i := 0; i < s.fastPathRetries; i++ {
		out, ok := s.algorithm.FastPath(input, counter)
		if ok {
			s.record(id, 0, false, true)
			return out
		}
		if counter.Detect() {
			break
		}
	}
	return s.slowPath(id, input)
}

// slowPath publishes input to the help queue under id's slot and waits
// for it to reach phaseCompleted, helping other stalled operations
// while it waits. This is the path that gives every operation a
// wait-free worst case: every participant's help pass makes bounded
// progress on the head-of-queue operation, so no operation can be
// starved indefinitely by contention on its own commit.
func (s *simulator[Input, Output, D]) slowPath(id int, input Input) Output {
	box := newOperationBox[Input, Output, D](id, input)
	s.queue.PushBack(id, box)

	backoff := iox.Backoff{}
	for {
		rec := box.load()
		if rec.state.kind == phaseCompleted {
			s.record(id, 0, true, true)
			return rec.state.output
		}
		if s.helpOthers(id) {
			backoff.Reset()
		} else {
			backoff.Wait()
		}
	}
}

// helpOthers advances whichever operation currently sits at the head of
// the help queue, if any, regardless of who owns it. Returns false only
// when the queue had nothing to help.
func (s *simulator[Input, Output, D]) helpOthers(id int) bool {
	front, ok := s.queue.PeekFront()
	if !ok {
		return false
	}
	s.help(id, front)
	return true
}

// help drives box through the PreCas -> ExecutingCas -> PostCas ->
// Completed state machine, restarting at PreCas when WrapUp asks for
// it, and popping box off the help queue once it reaches Completed.
// Every phase transition is attempted via a single CAS on the box; a
// lost race simply means another helper got there first, and the loop
// re-reads the box's current record and continues from wherever that
// helper left it.
func (s *simulator[Input, Output, D]) help(helperID int, box *operationBox[Input, Output, D]) {
	for {
		rec := box.load()
		switch rec.state.kind {
		case phasePreCas:
			s.helpGenerate(helperID, box, rec)
		case phaseExecutingCas:
			s.helpExecute(helperID, box, rec)
		case phasePostCas:
			s.helpWrapUp(helperID, box, rec)
		case phaseCompleted:
			s.queue.TryPopFront(box)
			return
		}
	}
}

func (s *simulator[Input, Output, D]) helpGenerate(helperID int, box *operationBox[Input, Output, D], rec *operationRecord[Input, Output, D]) {
	counter := NewContentionCounter(s.threshold)
	commit, err := s.algorithm.Generator(rec.input, counter)
	switch {
	case err == nil:
		next := &operationRecord[Input, Output, D]{owner: rec.owner, input: rec.input, state: executingCasState[Output, D](commit)}
		box.transition(rec, next)
	case errors.Is(err, ErrAlreadySatisfied):
		s.satisfyWithoutCommit(helperID, box, rec, counter)
	case IsContention(err):
		s.record(helperID, 1, true, false)
	}
}

// satisfyWithoutCommit handles a Generator that reported the operation
// is already reflected in the structure: WrapUp is consulted with an
// empty outcome and no commit list, since the C++ source treats
// std::nullopt-from-generator and an empty commit at wrap_up
// identically.
func (s *simulator[Input, Output, D]) satisfyWithoutCommit(helperID int, box *operationBox[Input, Output, D], rec *operationRecord[Input, Output, D], counter *ContentionCounter) {
	out, done, err := s.algorithm.WrapUp(OutcomeOK(), nil, counter)
	if err != nil {
		s.record(helperID, 1, true, false)
		return
	}
	if !done {
		return
	}
	next := &operationRecord[Input, Output, D]{owner: rec.owner, input: rec.input, state: completedState[Output, D](out)}
	box.transition(rec, next)
}

func (s *simulator[Input, Output, D]) helpExecute(helperID int, box *operationBox[Input, Output, D], rec *operationRecord[Input, Output, D]) {
	counter := NewContentionCounter(s.threshold)
	outcome, err := s.commit(rec.state.commit, counter)
	if err != nil {
		s.record(helperID, 2, true, false)
		return
	}
	next := &operationRecord[Input, Output, D]{owner: rec.owner, input: rec.input, state: postCasState[Output, D](rec.state.commit, outcome)}
	box.transition(rec, next)
}

func (s *simulator[Input, Output, D]) helpWrapUp(helperID int, box *operationBox[Input, Output, D], rec *operationRecord[Input, Output, D]) {
	counter := NewContentionCounter(s.threshold)
	out, done, err := s.algorithm.WrapUp(rec.state.outcome, rec.state.commit, counter)
	switch {
	case err != nil:
		s.record(helperID, 3, true, false)
	case done:
		next := &operationRecord[Input, Output, D]{owner: rec.owner, input: rec.input, state: completedState[Output, D](out)}
		box.transition(rec, next)
	default:
		next := &operationRecord[Input, Output, D]{owner: rec.owner, input: rec.input, state: preCasState[Output, D]()}
		box.transition(rec, next)
	}
}

// commit walks a commit list left to right, linearizing each pending
// descriptor in turn. It stops at the first descriptor that reaches
// Failure and reports OutcomeFailedAt that index; descriptors already
// Success are skipped after clearing their modified-bit, since a
// helper may arrive after another thread already linearized them.
func (s *simulator[Input, Output, D]) commit(list []D, counter *ContentionCounter) (Outcome, error) {
	for i, d := range list {
		switch d.State() {
		case Failure:
			return OutcomeFailedAt(i), nil
		case Success:
			d.ClearBit()
		case Pending:
			if _, err := d.Execute(counter); err != nil {
				return Outcome{}, err
			}
			if d.HasModifiedBit() {
				d.SwapState(Pending, Success)
				d.ClearBit()
			}
			if d.State() != Success {
				d.SetState(Failure)
				return OutcomeFailedAt(i), nil
			}
		}
	}
	return OutcomeOK(), nil
}

func (s *simulator[Input, Output, D]) record(participant, phase int, contended, completed bool) {
	if s.telemetry == nil {
		return
	}
	s.telemetry.publish(Event{
		ParticipantID:      participant,
		Phase:              phase,
		ContentionObserved: contended,
		Completed:          completed,
	})
}
