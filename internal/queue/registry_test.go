package queue

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestRegistrySerializesSameName(t *testing.T) {
	r := newRegistry()
	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := r.acquire(context.Background(), "q")
			if err != nil {
				t.Errorf("acquire: %v", err)
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			release()
		}()
	}
	wg.Wait()
	if maxInside != 1 {
		t.Fatalf("max concurrent holders = %d", maxInside)
	}
	if r.size() != 0 {
		t.Fatalf("registry leaked %d handles", r.size())
	}
}

func TestRegistryDifferentNamesDoNotBlock(t *testing.T) {
	r := newRegistry()
	releaseA, err := r.acquire(context.Background(), "a")
	if err != nil {
		t.Fatalf("acquire a: %v", err)
	}
	defer releaseA()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	releaseB, err := r.acquire(ctx, "b")
	if err != nil {
		t.Fatalf("acquire b while a held: %v", err)
	}
	releaseB()
}

func TestRegistryAcquireHonoursContext(t *testing.T) {
	r := newRegistry()
	release, _ := r.acquire(context.Background(), "q")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := r.acquire(ctx, "q"); err != context.DeadlineExceeded {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	release()
	release() // second call is a no-op
	if r.size() != 0 {
		t.Fatalf("registry leaked %d handles", r.size())
	}
}
