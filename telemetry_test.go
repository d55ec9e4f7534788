// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package waitfree_test

import (
	"sync"
	"testing"
	"time"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/waitfree"
	"code.hybscloud.com/waitfree/internal/sortedset"
)

func TestCollectorReceivesEvents(t *testing.T) {
	var mu sync.Mutex
	var events []waitfree.Event
	collector := waitfree.NewCollector(8, func(e waitfree.Event) {
		mu.Lock()
		events = append(events, e)
		mu.Unlock()
	})
	defer collector.Close()

	set := sortedset.New[int](lessInt)
	b := waitfree.New(4).Telemetry(collector)
	origin := waitfree.Build[int, bool, *sortedset.Link[int]](b, sortedset.InsertAlgorithm(set))

	for i := 0; i < 20; i++ {
		origin.Submit(i)
	}

	deadline := time.Now().Add(2 * time.Second)
	backoff := iox.Backoff{}
	for {
		mu.Lock()
		n := len(events)
		mu.Unlock()
		if n >= 20 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("timeout waiting for collected events: got %d, want >= 20", n)
		}
		backoff.Wait()
	}
}

func TestCollectorCloseIsIdempotentOnNil(t *testing.T) {
	var c *waitfree.Collector
	c.Close()
}
