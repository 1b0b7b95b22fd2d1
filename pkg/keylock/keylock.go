// Package keylock provides mutual exclusion keyed by an arbitrary string.
//
// Holders of different keys never block each other. Waiters for the same key
// are served one at a time and give up when their context is done, so a caller
// that times out never holds the key.
package keylock

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// WaitObserver receives how long an acquisition waited and whether it succeeded.
type WaitObserver func(wait time.Duration, acquired bool)

// Option configures a Locker.
type Option func(*Locker)

// WithWaitObserver reports every acquisition attempt to fn.
func WithWaitObserver(fn WaitObserver) Option {
	return func(l *Locker) {
		l.observe = fn
	}
}

type entry struct {
	sem  *semaphore.Weighted
	refs int
}

// Locker hands out one exclusive lock per key. Entries are reference counted
// and dropped once no holder or waiter remains.
type Locker struct {
	mu      sync.Mutex
	entries map[string]*entry
	observe WaitObserver
}

// New creates an empty Locker.
func New(opts ...Option) *Locker {
	l := &Locker{entries: make(map[string]*entry)}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Lock blocks until key is free or ctx is done. The returned unlock func is
// safe to call more than once.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	e := l.retain(key)

	start := time.Now()
	if err := e.sem.Acquire(ctx, 1); err != nil {
		l.release(key, e)
		l.report(time.Since(start), false)
		return nil, err
	}
	l.report(time.Since(start), true)

	var once sync.Once
	return func() {
		once.Do(func() {
			e.sem.Release(1)
			l.release(key, e)
		})
	}, nil
}

// Len returns the number of keys currently held or awaited.
func (l *Locker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *Locker) retain(key string) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		e = &entry{sem: semaphore.NewWeighted(1)}
		l.entries[key] = e
	}
	e.refs++
	return e
}

func (l *Locker) release(key string, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}

func (l *Locker) report(wait time.Duration, acquired bool) {
	if l.observe != nil {
		l.observe(wait, acquired)
	}
}
