// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package sortedset is a Harris-style lock-free sorted linked list,
// normalized into a pair of waitfree.Algorithm implementations
// (insert and remove) over waitfree.VersionedCell successor links. It
// exists to exercise the simulator in this module's own tests; nothing
// outside those tests should depend on it.
package sortedset

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/waitfree"
)

// int32atomicState stores a waitfree.CasStatus atomically. CasStatus is
// an int underneath but atomix has no generic atomic-enum type, so the
// conversion to/from int32 happens at the edges.
type int32atomicState struct {
	v atomix.Int32
}

func (s *int32atomicState) store(status waitfree.CasStatus) { s.v.StoreRelease(int32(status)) }
func (s *int32atomicState) load() waitfree.CasStatus         { return waitfree.CasStatus(s.v.LoadAcquire()) }
func (s *int32atomicState) compareAndSwap(expected, desired waitfree.CasStatus) bool {
	return s.v.CompareAndSwapAcqRel(int32(expected), int32(desired))
}

// markMeta is a node's successor-link metadata: whether the node
// carrying that link has been logically removed.
type markMeta struct {
	marked bool
}

type node[T any] struct {
	value  T
	isTail bool
	next   *waitfree.VersionedCell[*node[T], markMeta]
}

func newNode[T any](value T, next *node[T], isTail bool) *node[T] {
	return &node[T]{
		value:  value,
		isTail: isTail,
		next:   waitfree.NewVersionedCell[*node[T], markMeta](next, markMeta{}),
	}
}

func (n *node[T]) isRemoved() bool {
	if n == nil {
		return true
	}
	return waitfree.Transform(n.next, func(_ *node[T], _ uint64, m markMeta) bool { return m.marked })
}

func (n *node[T]) nextNode() *node[T] {
	v, _, _ := n.next.Load()
	return v
}

func (n *node[T]) version() uint64 {
	_, v, _ := n.next.Load()
	return v
}

func (n *node[T]) meta() markMeta {
	_, _, m := n.next.Load()
	return m
}

// mark sets this node's own successor-link metadata to marked=true,
// leaving the successor pointer itself unchanged, guarded by the
// link's current version so a concurrent physical unlink is detected
// rather than silently overwritten.
func (n *node[T]) mark() bool {
	val := n.nextNode()
	ver := n.version()
	counter := waitfree.NewContentionCounter(waitfree.DefaultThreshold)
	return n.next.CompareAndSwapStrong(val, &ver, val, markMeta{marked: true}, counter)
}

// SortedSet is a set of comparable elements ordered by less, supporting
// wait-free Insert and Remove once wrapped by a waitfree.Simulator, and
// a lock-free Contains/Len usable directly.
type SortedSet[T any] struct {
	head *node[T]
	tail *node[T]
	less func(a, b T) bool
}

// New creates an empty SortedSet ordered by less.
func New[T any](less func(a, b T) bool) *SortedSet[T] {
	tail := &node[T]{isTail: true}
	tail.next = waitfree.NewVersionedCell[*node[T], markMeta](nil, markMeta{})
	head := newNode[T](*new(T), tail, false)
	return &SortedSet[T]{head: head, tail: tail, less: less}
}

func (s *SortedSet[T]) equal(a, b T) bool {
	return !s.less(a, b) && !s.less(b, a)
}

// currentLessThanTarget treats head as -infinity and tail as
// +infinity, so ordinary comparisons never need a sentinel value of T.
func (s *SortedSet[T]) currentLessThanTarget(current *node[T], target T) bool {
	if current == s.head {
		return true
	}
	if current == s.tail {
		return false
	}
	return s.less(current.value, target)
}

// search returns the adjacent (left, right) pair such that left is the
// rightmost unremoved node ordered before value and right is the first
// node not ordered before value, physically unlinking any marked nodes
// it passes over along the way.
func (s *SortedSet[T]) search(value T) (left, right *node[T]) {
	counter := waitfree.NewContentionCounter(waitfree.DefaultThreshold)
	for {
		var leftPtr, leftNext *node[T]
		current := s.head
		next := s.head.nextNode()

		for isRemoved(next) || s.currentLessThanTarget(current, value) {
			if !isRemoved(next) {
				leftPtr, leftNext = current, next
			}
			current = next
			if current == s.tail {
				break
			}
			next = current.nextNode()
		}
		rightPtr := current

		if leftNext == rightPtr {
			if rightPtr != s.tail && rightPtr.nextNode().isRemoved() {
				continue
			}
			return leftPtr, rightPtr
		}

		if leftPtr != nil {
			ver := leftPtr.version()
			leftPtr.next.CompareAndSwapStrong(leftNext, &ver, rightPtr, leftPtr.meta(), counter)
		}
		if rightPtr != s.tail && rightPtr.nextNode().isRemoved() {
			continue
		}
		return leftPtr, rightPtr
	}
}

func isRemoved[T any](n *node[T]) bool {
	if n == nil {
		return true
	}
	return n.isRemoved()
}

// Contains reports whether value is present and not logically removed.
func (s *SortedSet[T]) Contains(value T) bool {
	for it := s.head.nextNode(); it != s.tail; it = it.nextNode() {
		if isRemoved(it) {
			continue
		}
		if s.less(value, it.value) {
			return false
		}
		if s.equal(it.value, value) {
			return true
		}
	}
	return false
}

// Len counts the not-logically-removed elements by walking the list.
func (s *SortedSet[T]) Len() int {
	n := 0
	for it := s.head.nextNode(); it != s.tail; it = it.nextNode() {
		if !isRemoved(it) {
			n++
		}
	}
	return n
}

// Link is the CasDescriptor implementation shared by Insert
// and Remove: a single-slot successor-link replacement guarded by the
// link's version.
type Link[T any] struct {
	target   *waitfree.VersionedCell[*node[T], markMeta]
	expected *node[T]
	desired  *node[T]
	state    int32atomicState
}

func newLink[T any](target *waitfree.VersionedCell[*node[T], markMeta], expected, desired *node[T]) *Link[T] {
	d := &Link[T]{target: target, expected: expected, desired: desired}
	d.state.store(waitfree.Pending)
	return d
}

func (d *Link[T]) HasModifiedBit() bool { return d.target.HasModifiedBit() }
func (d *Link[T]) ClearBit()            { d.target.ClearModifiedBit() }
func (d *Link[T]) State() waitfree.CasStatus {
	return d.state.load()
}
func (d *Link[T]) SetState(s waitfree.CasStatus) { d.state.store(s) }
func (d *Link[T]) SwapState(expected, desired waitfree.CasStatus) bool {
	return d.state.compareAndSwap(expected, desired)
}

// Execute re-reads the target link's current version at call time
// (rather than the version observed when the descriptor was built) and
// carries the desired node's own successor-link metadata onto the
// target, matching NormalizedLinkedList.hh's execute.
func (d *Link[T]) Execute(counter *waitfree.ContentionCounter) (bool, error) {
	_, ver, _ := d.target.Load()
	return d.target.CompareAndSwapWeak(d.expected, &ver, d.desired, d.desired.meta(), counter)
}

// Insert is the normalized insert algorithm for a SortedSet.
type Insert[T any] struct {
	set *SortedSet[T]
}

// InsertAlgorithm returns an Insert algorithm over set, for use with
// waitfree.Build.
func InsertAlgorithm[T any](set *SortedSet[T]) *Insert[T] {
	return &Insert[T]{set: set}
}

func (a *Insert[T]) Generator(input T, counter *waitfree.ContentionCounter) ([]*Link[T], error) {
	left, right := a.set.search(input)
	if right != a.set.tail && a.set.equal(right.value, input) {
		return nil, waitfree.ErrAlreadySatisfied
	}
	desired := newNode[T](input, right, false)
	return []*Link[T]{newLink[T](left.next, right, desired)}, nil
}

func (a *Insert[T]) WrapUp(outcome waitfree.Outcome, commit []*Link[T], counter *waitfree.ContentionCounter) (bool, bool, error) {
	if len(commit) == 0 {
		return false, true, nil
	}
	if outcome.OK() {
		return true, true, nil
	}
	return false, false, nil
}

func (a *Insert[T]) FastPath(input T, counter *waitfree.ContentionCounter) (bool, bool) {
	left, right := a.set.search(input)
	if right != a.set.tail && a.set.equal(right.value, input) {
		return false, true
	}
	desired := newNode[T](input, right, false)
	ver := left.version()
	if left.next.CompareAndSwapStrong(right, &ver, desired, right.meta(), counter) {
		return true, true
	}
	return false, false
}

// Remove is the normalized remove algorithm for a SortedSet.
type Remove[T any] struct {
	set *SortedSet[T]
}

// RemoveAlgorithm returns a Remove algorithm over set, for use with
// waitfree.Build.
func RemoveAlgorithm[T any](set *SortedSet[T]) *Remove[T] {
	return &Remove[T]{set: set}
}

func (a *Remove[T]) Generator(input T, counter *waitfree.ContentionCounter) ([]*Link[T], error) {
	left, right := a.set.search(input)
	if right == a.set.tail || !a.set.equal(right.value, input) {
		return nil, waitfree.ErrAlreadySatisfied
	}
	updated := newNode[T](input, right.nextNode(), false)
	updated.mark()
	return []*Link[T]{newLink[T](left.next, right, updated)}, nil
}

func (a *Remove[T]) WrapUp(outcome waitfree.Outcome, commit []*Link[T], counter *waitfree.ContentionCounter) (bool, bool, error) {
	if len(commit) == 0 {
		return false, true, nil
	}
	if outcome.OK() {
		return true, true, nil
	}
	return false, false, nil
}

// FastPath's mark-failed case (a freshly built node's own mark CAS
// losing) has no equivalent original behavior to follow — that source
// returns a bare bool where its own signature calls for an optional,
// which cannot be translated literally. Resolved here as "abandon the
// fast path", the conservative reading: recorded in DESIGN.md.
func (a *Remove[T]) FastPath(input T, counter *waitfree.ContentionCounter) (bool, bool) {
	left, right := a.set.search(input)
	if right == a.set.tail || !a.set.equal(right.value, input) {
		return false, true
	}
	if right.isRemoved() {
		return false, true
	}
	updated := newNode[T](input, right.nextNode(), false)
	if !updated.mark() {
		return false, false
	}
	ver := left.version()
	if !left.next.CompareAndSwapStrong(right, &ver, updated, updated.meta(), counter) {
		return false, false
	}
	return true, true
}
