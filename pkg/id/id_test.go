package id

import (
	"sync"
	"testing"
	"time"
)

func fixedClock(ms *int64, mu *sync.Mutex) func() int64 {
	return func() int64 {
		mu.Lock()
		defer mu.Unlock()
		return *ms
	}
}

func TestNextIsMonotonicWithinMillisecond(t *testing.T) {
	ms := int64(1000)
	var mu sync.Mutex
	g := &Generator{now: fixedClock(&ms, &mu)}

	a := g.Next()
	b := g.Next()
	if a.Compare(b) >= 0 {
		t.Fatalf("expected %s < %s", a, b)
	}
	if a.Time().UnixMilli() != 1000 {
		t.Fatalf("embedded time = %d", a.Time().UnixMilli())
	}
}

func TestClockRegressionPinsToLastMillisecond(t *testing.T) {
	ms := int64(1000)
	var mu sync.Mutex
	g := &Generator{now: fixedClock(&ms, &mu)}

	a := g.Next()
	mu.Lock()
	ms = 900
	mu.Unlock()
	b := g.Next()
	if a.Compare(b) >= 0 {
		t.Fatalf("expected b>a despite clock regression")
	}
	if b.Time().UnixMilli() != 1000 {
		t.Fatalf("regressed id should keep last ms, got %d", b.Time().UnixMilli())
	}
}

func TestSequenceExhaustionWaitsForNextMillisecond(t *testing.T) {
	ms := int64(2000)
	var mu sync.Mutex
	g := &Generator{now: fixedClock(&ms, &mu), lastMs: 2000, seq: ^uint64(0)}

	done := make(chan ID)
	go func() { done <- g.Next() }()

	time.AfterFunc(10*time.Millisecond, func() {
		mu.Lock()
		ms = 2001
		mu.Unlock()
	})

	select {
	case got := <-done:
		if got.Time().UnixMilli() != 2001 {
			t.Fatalf("expected rollover to 2001, got %d", got.Time().UnixMilli())
		}
	case <-time.After(time.Second):
		t.Fatalf("timeout waiting for sequence rollover")
	}
}

func TestParseRoundTrip(t *testing.T) {
	g := NewGenerator()
	want := g.Next()
	got, err := Parse(want.String())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got != want {
		t.Fatalf("got %s want %s", got, want)
	}
	if _, err := Parse("zz"); err != ErrMalformed {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestNewRequestIDUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		rid := NewRequestID()
		if _, dup := seen[rid]; dup {
			t.Fatalf("duplicate request id %s", rid)
		}
		seen[rid] = struct{}{}
	}
}
