package queue

import (
	"context"
	"sync"
)

// registry hands out per-name exclusion. Each active name owns a one-slot
// semaphore so waiters can give up when their context ends; handles are
// reference counted and dropped once nobody holds or waits on them.
type registry struct {
	mu    sync.Mutex
	locks map[string]*nameLock
}

type nameLock struct {
	sem  chan struct{}
	refs int
}

func newRegistry() *registry {
	return &registry{locks: make(map[string]*nameLock)}
}

// acquire blocks until the caller holds name's exclusion or ctx is done. The
// returned release must be called exactly once.
func (r *registry) acquire(ctx context.Context, name string) (func(), error) {
	r.mu.Lock()
	l, ok := r.locks[name]
	if !ok {
		l = &nameLock{sem: make(chan struct{}, 1)}
		r.locks[name] = l
	}
	l.refs++
	r.mu.Unlock()

	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		r.unref(name, l)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-l.sem
			r.unref(name, l)
		})
	}, nil
}

func (r *registry) unref(name string, l *nameLock) {
	r.mu.Lock()
	l.refs--
	if l.refs == 0 {
		delete(r.locks, name)
	}
	r.mu.Unlock()
}

// size reports how many names currently have a live handle.
func (r *registry) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.locks)
}
