// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package waitfree provides a generic wait-free simulator.
//
// A caller who already has a correct lock-free algorithm, rewritten in
// the "normalized" form described by the Algorithm interface, submits
// operations through a Handle and gets back results with a wait-freedom
// guarantee: every submitted operation completes within a bounded number
// of steps of any participating thread, regardless of how many other
// threads stall.
//
// # Quick Start
//
//	origin := waitfree.Build[Input, Output, *myDescriptor](waitfree.New(16), algorithm)
//	worker, ok := origin.Fork()
//	if !ok {
//	    // no participant slots left
//	}
//	out := worker.Submit(input)
//	worker.Retire()
//
// # Fast Path and Slow Path
//
// Submit first retries the algorithm's own optimistic FastPath a bounded
// number of times. If contention keeps beating the fast path, the
// operation is published on the help queue (the slow path) and every
// participant that calls Submit or Help may complete it, not just its
// owner. This is what makes the simulator wait-free rather than merely
// lock-free: no operation can be starved by another thread's progress.
//
// # Client Contract
//
// A client algorithm supplies three associated types (Input, Output, and
// a CasDescriptor implementation) and three functions: Generator, WrapUp,
// FastPath. See the Algorithm and CasDescriptor interfaces. Descriptors
// are built over a VersionedCell, the only supported way to mutate
// shared state from inside a commit list.
//
// # Help Queue
//
// HelpQueue is also exported standalone: it is a complete wait-free FIFO
// in its own right (Kogan-Petrank), usable anywhere a bounded set of
// participants need to publish work for cooperative helping, independent
// of the simulator built on top of it.
//
// # Reclamation
//
// This package relies on the Go garbage collector for the safety of
// retired operation records and help-queue nodes: every pointer that
// must outlive a losing CAS is a real, GC-tracked pointer, never an
// unsafe.Pointer/uintptr erasure. No hazard-pointer or epoch scheme is
// implemented.
package waitfree
