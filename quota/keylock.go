package quota

import "sync"

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// keyMutex is a per-user-id lock table. Entries are reference counted
// and removed once the last holder releases, so the table stays small.
type keyMutex struct {
	mu    sync.Mutex
	locks map[uint]*lockEntry
}

func newKeyMutex() *keyMutex {
	return &keyMutex{locks: make(map[uint]*lockEntry)}
}

func (km *keyMutex) Lock(key uint) {
	km.mu.Lock()
	e, ok := km.locks[key]
	if !ok {
		e = &lockEntry{}
		km.locks[key] = e
	}
	e.refs++
	km.mu.Unlock()

	e.mu.Lock()
}

func (km *keyMutex) Unlock(key uint) {
	km.mu.Lock()
	e := km.locks[key]
	e.refs--
	if e.refs == 0 {
		delete(km.locks, key)
	}
	km.mu.Unlock()

	e.mu.Unlock()
}
