// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package waitfree

import "sync"

// idPool hands out and reclaims participant ids [1, capacity). Id 0 is
// reserved for the origin handle Build returns. A plain mutex is
// adequate here because fork/retire are cold paths relative to Submit,
// which never touches idPool.
type idPool struct {
	mu   sync.Mutex
	free []int
}

func newIDPool(capacity int) *idPool {
	free := make([]int, 0, capacity-1)
	for i := capacity - 1; i >= 1; i-- {
		free = append(free, i)
	}
	return &idPool{free: free}
}

func (p *idPool) take() (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.free) == 0 {
		return 0, false
	}
	id := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]
	return id, true
}

func (p *idPool) give(id int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.free = append(p.free, id)
}

// Simulator is the normalized wait-free engine for one Algorithm. It is
// shared by every Handle forked from it; callers obtain their first
// Handle via Build and every later one via Handle.Fork.
type Simulator[Input, Output any, D CasDescriptor] struct {
	core     *simulator[Input, Output, D]
	capacity int
	free     *idPool
}

// Fork obtains a new Handle with a freshly allocated participant id,
// or ok=false if every id [1, capacity) is currently checked out.
// The origin Handle (id 0) is returned once, by Build, and is never
// itself the product of a Fork.
func (s *Simulator[Input, Output, D]) Fork() (*Handle[Input, Output, D], bool) {
	id, ok := s.free.take()
	if !ok {
		return nil, false
	}
	return &Handle[Input, Output, D]{sim: s, id: id}, true
}

// Handle is a single participant's view of a Simulator: its id and a
// reference to the shared engine. A Handle is not safe for concurrent
// use by two goroutines at once — Fork a separate Handle per goroutine
// instead.
type Handle[Input, Output any, D CasDescriptor] struct {
	sim *Simulator[Input, Output, D]
	id  int
}

// ID returns the participant id this handle was allocated.
func (h *Handle[Input, Output, D]) ID() int { return h.id }

// Fork obtains a new Handle on the same Simulator with a freshly
// allocated participant id, or ok=false if no id is free. See
// Simulator.Fork.
func (h *Handle[Input, Output, D]) Fork() (*Handle[Input, Output, D], bool) {
	return h.sim.Fork()
}

// Submit runs input to completion on this handle's participant id,
// trying the algorithm's fast path before falling back to cooperative
// helping through the shared help queue.
func (h *Handle[Input, Output, D]) Submit(input Input) Output {
	return h.sim.core.submit(h.id, input)
}

// SubmitVia runs input to completion, skipping the fast path
// entirely when forceSlowPath is true. Exists for tests that need to
// force every operation through the help queue regardless of how
// uncontended the algorithm's FastPath would otherwise be.
func (h *Handle[Input, Output, D]) SubmitVia(input Input, forceSlowPath bool) Output {
	if !forceSlowPath {
		return h.sim.core.submit(h.id, input)
	}
	return h.sim.core.slowPath(h.id, input)
}

// Help makes one cooperative helping pass over whatever operation
// currently sits at the head of the shared help queue, without
// submitting an operation of its own. Returns false if there was
// nothing to help.
func (h *Handle[Input, Output, D]) Help() bool {
	return h.sim.core.helpOthers(h.id)
}

// Retire returns this handle's participant id to the shared pool so a
// later Fork can reuse it. Calling Submit or Help on a retired handle
// is a misuse the type system does not prevent; the caller carries
// that burden.
func (h *Handle[Input, Output, D]) Retire() {
	h.sim.free.give(h.id)
}
