// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package waitfree

import "errors"

// ErrContention signals that a fast-path attempt or a CAS loop has
// observed too many conflicting concurrent modifications.
//
// ErrContention is a control-flow signal, not a failure — it is how a
// VersionedCell, a CasDescriptor, or an Algorithm tells the simulator
// "back off and let the slow path take over" or "retry the help loop".
// It is never returned from Handle.Submit: the simulator always absorbs
// it internally, either by switching from the fast path to the slow
// path, or by re-entering the help loop for the operation on the queue.
//
// There is no [code.hybscloud.com/iox] classifier for this signal —
// iox's taxonomy covers queue backpressure (ErrWouldBlock), not CAS
// contention — so it is declared locally, mirroring iox's own style of
// a single sentinel plus an Is* predicate.
var ErrContention = errors.New("waitfree: contention threshold exceeded")

// IsContention reports whether err is ErrContention (possibly wrapped).
func IsContention(err error) bool {
	return errors.Is(err, ErrContention)
}

// ErrAlreadySatisfied is returned by an Algorithm's Generator when the
// operation's intended effect is already reflected in the data
// structure (for example, inserting a key that is already present). It
// is the Go stand-in for the C++ source's std::nullopt generator
// result and is handled internally by the simulator, never surfaced
// from Handle.Submit.
var ErrAlreadySatisfied = errors.New("waitfree: operation already satisfied")
