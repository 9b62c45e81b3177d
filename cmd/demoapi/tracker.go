package main

import (
	"sync"

	cuckoo "github.com/panmari/cuckoofilter"
)

// idTracker keeps approximate distinct counts of the correlation identifiers
// seen during a session, reported at shutdown. Cuckoo filters keep the memory
// bounded no matter how long the generator runs.
type idTracker struct {
	mut      sync.Mutex
	requests *cuckoo.Filter
	roots    *cuckoo.Filter
	bursts   *cuckoo.Filter
}

func newIDTracker() *idTracker {
	return &idTracker{
		requests: cuckoo.NewFilter(1000000),
		roots:    cuckoo.NewFilter(100000),
		bursts:   cuckoo.NewFilter(100000),
	}
}

func (t *idTracker) Observe(requestID, parentID, burstID string) {
	t.mut.Lock()
	defer t.mut.Unlock()
	insertOnce(t.requests, requestID)
	insertOnce(t.roots, parentID)
	insertOnce(t.bursts, burstID)
}

func (t *idTracker) Counts() (requests, roots, bursts uint) {
	t.mut.Lock()
	defer t.mut.Unlock()
	return t.requests.Count(), t.roots.Count(), t.bursts.Count()
}

func insertOnce(f *cuckoo.Filter, id string) {
	if id == "" {
		return
	}
	if !f.Lookup([]byte(id)) {
		f.Insert([]byte(id))
	}
}
