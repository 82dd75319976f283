// Package lock provides per-session locking so that two requests for the
// same session never interleave their read-modify-write of game state.
package lock

import (
	"context"
	"sync"
	"time"
)

// sessionMutex is a one-slot semaphore, which lets acquisition observe a
// context. refs counts the holder plus waiters and is guarded by
// SessionLock.mu; the entry is dropped when it reaches zero.
type sessionMutex struct {
	ch   chan struct{}
	refs int
}

// SessionLock hands out one lock per session ID. Entries exist only while a
// session is held or awaited.
type SessionLock struct {
	mu    sync.Mutex
	locks map[string]*sessionMutex
}

// NewSessionLock creates a new SessionLock instance.
func NewSessionLock() *SessionLock {
	return &SessionLock{locks: make(map[string]*sessionMutex)}
}

// acquire returns the entry for id, creating it, and takes a reference.
func (sl *SessionLock) acquire(id string) *sessionMutex {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	m, ok := sl.locks[id]
	if !ok {
		m = &sessionMutex{ch: make(chan struct{}, 1)}
		sl.locks[id] = m
	}
	m.refs++
	return m
}

// release drops a reference. Callers hold sl.mu.
func (sl *SessionLock) release(id string, m *sessionMutex) {
	m.refs--
	if m.refs == 0 {
		delete(sl.locks, id)
	}
}

// Lock blocks until the lock for id is held or ctx is done.
func (sl *SessionLock) Lock(ctx context.Context, id string) error {
	m := sl.acquire(id)
	select {
	case m.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		sl.mu.Lock()
		sl.release(id, m)
		sl.mu.Unlock()
		return ErrLockTimeout
	}
}

// Unlock releases the lock for id. Unlocking an unheld lock is a no-op.
func (sl *SessionLock) Unlock(id string) {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	m, ok := sl.locks[id]
	if !ok {
		return
	}
	select {
	case <-m.ch:
		sl.release(id, m)
	default:
	}
}

// TryLock acquires the lock for id without blocking.
func (sl *SessionLock) TryLock(id string) bool {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	m, ok := sl.locks[id]
	if !ok {
		m = &sessionMutex{ch: make(chan struct{}, 1)}
		sl.locks[id] = m
	}
	select {
	case m.ch <- struct{}{}:
		m.refs++
		return true
	default:
		return false
	}
}

// IsLocked reports whether the lock for id is currently held.
func (sl *SessionLock) IsLocked(id string) bool {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	m, ok := sl.locks[id]
	return ok && len(m.ch) == 1
}

// Len returns the number of sessions currently held or awaited.
func (sl *SessionLock) Len() int {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	return len(sl.locks)
}

// WithLock runs fn while holding the lock for id. A timeout <= 0 waits as
// long as ctx allows.
func (sl *SessionLock) WithLock(ctx context.Context, id string, timeout time.Duration, fn func() error) error {
	lockCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		lockCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := sl.Lock(lockCtx, id); err != nil {
		return err
	}
	defer sl.Unlock(id)
	return fn()
}
