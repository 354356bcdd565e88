// Package userlock serializes mutations of a single user's state.
//
// Each user ID maps to a one-slot semaphore. Acquisition is bounded by a
// timeout so that a stuck holder surfaces as ErrBusy instead of a deadlock.
// Entries are removed once no goroutine holds or waits for them, so the map
// only grows with the number of users that are active at the same time.
package userlock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// ErrBusy is returned when the lock could not be acquired within the timeout.
var ErrBusy = errors.New("user lock busy")

// DefaultTimeout bounds acquisition when NewLocker is given a non-positive timeout.
const DefaultTimeout = 5 * time.Second

type entry struct {
	sem  *semaphore.Weighted
	refs int
}

// Locker hands out per-user mutual exclusion scopes.
type Locker struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*entry
	timeout time.Duration
}

// NewLocker creates a Locker whose acquisitions wait at most timeout.
func NewLocker(timeout time.Duration) *Locker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Locker{
		entries: make(map[uuid.UUID]*entry),
		timeout: timeout,
	}
}

// Acquire blocks until the caller holds the lock for userID and returns the
// function that releases it. It fails with ErrBusy when the timeout elapses
// and with the context's error when ctx is cancelled first.
func (l *Locker) Acquire(ctx context.Context, userID uuid.UUID) (func(), error) {
	e := l.ref(userID)

	waitCtx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	if err := e.sem.Acquire(waitCtx, 1); err != nil {
		l.unref(userID, e)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, ErrBusy
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			e.sem.Release(1)
			l.unref(userID, e)
		})
	}, nil
}

// WithLock runs fn while holding the lock for userID.
func (l *Locker) WithLock(ctx context.Context, userID uuid.UUID, fn func(ctx context.Context) error) error {
	release, err := l.Acquire(ctx, userID)
	if err != nil {
		return err
	}
	defer release()
	return fn(ctx)
}

func (l *Locker) ref(userID uuid.UUID) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[userID]
	if !ok {
		e = &entry{sem: semaphore.NewWeighted(1)}
		l.entries[userID] = e
	}
	e.refs++
	return e
}

func (l *Locker) unref(userID uuid.UUID, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.entries, userID)
	}
}

// size reports the number of tracked users.
func (l *Locker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
