package services

import (
	"sync"
)

// keyedMutex serializes the read-validate-write sequence per order id so
// that two conflicting transitions against the same order cannot both
// succeed. Entries are reference-counted and freed when uncontended.
type keyedMutex struct {
	mu      sync.Mutex
	entries map[uint]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{entries: make(map[uint]*lockEntry)}
}

// Lock blocks until the per-id lock is held and returns the unlock func.
func (k *keyedMutex) Lock(id uint) func() {
	k.mu.Lock()
	entry := k.entries[id]
	if entry == nil {
		entry = &lockEntry{}
		k.entries[id] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()
		k.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(k.entries, id)
		}
		k.mu.Unlock()
	}
}
