// Package lock serializes ledger-account provisioning per (position, branch)
// key so concurrent configuration runs cannot create duplicate accounts.
package lock

import (
	"context"
	"sync"
)

// Locker acquires an exclusive lock for a key and returns its release func.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// Local is an in-process per-key mutex locker, sufficient for a single
// replica and for tests.
type Local struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

// NewLocal constructs an empty local locker.
func NewLocal() *Local {
	return &Local{locks: make(map[string]*entry)}
}

// Acquire blocks until the key's mutex is held. The returned release must be
// called exactly once.
func (l *Local) Acquire(_ context.Context, key string) (func(), error) {
	l.mu.Lock()
	e, ok := l.locks[key]
	if !ok {
		e = &entry{}
		l.locks[key] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}, nil
}
