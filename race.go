// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build race

package waitfree

// RaceEnabled is true when the race detector is active.
// Used by tests to skip concurrent scenarios whose correctness rests on
// atomix/atomic.Pointer happens-before edges the race detector cannot
// observe (it tracks mutexes, channels and sync.WaitGroup, not
// acquire-release pairs on unrelated variables).
const RaceEnabled = true
