package api

import (
	"hash/fnv"
	"sync"
)

const ownerLockStripes = 64

// ownerLocks serializes the load, step and save cycle for one browser so
// concurrent tabs cannot overwrite each other's turns. Owners share a fixed
// set of stripes, which bounds memory regardless of how many browsers visit.
type ownerLocks struct {
	stripes [ownerLockStripes]sync.Mutex
}

func (l *ownerLocks) lock(owner string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(owner))
	mu := &l.stripes[h.Sum32()%ownerLockStripes]
	mu.Lock()
	return mu.Unlock
}
