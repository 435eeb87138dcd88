package services

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// turnLocks serialises flows that write the same conversation.
//
// Each id gets a weight-one semaphore. Waiters are admitted in the order
// they called acquire, so turns on one conversation apply in submission
// order. An entry is dropped once nobody holds or waits for it.
type turnLocks struct {
	mu    sync.Mutex
	locks map[string]*turnLock
}

type turnLock struct {
	sem  *semaphore.Weighted
	refs int
}

func newTurnLocks() *turnLocks {
	return &turnLocks{locks: make(map[string]*turnLock)}
}

// acquire blocks until the caller owns id or ctx is done.
// The returned release func is safe to call more than once.
func (l *turnLocks) acquire(ctx context.Context, id string) (func(), error) {
	l.mu.Lock()
	lock, ok := l.locks[id]
	if !ok {
		lock = &turnLock{sem: semaphore.NewWeighted(1)}
		l.locks[id] = lock
	}
	lock.refs++
	l.mu.Unlock()

	if err := lock.sem.Acquire(ctx, 1); err != nil {
		l.unref(id, lock)
		return nil, err
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			lock.sem.Release(1)
			l.unref(id, lock)
		})
	}, nil
}

func (l *turnLocks) unref(id string, lock *turnLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock.refs--
	if lock.refs == 0 {
		delete(l.locks, id)
	}
}

// size returns the number of ids currently held or waited on.
func (l *turnLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
