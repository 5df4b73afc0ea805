package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func countItems(t *testing.T, e *Engine, name string) int {
	t.Helper()
	lo, hi := itemBounds(name, 0, 0)
	n := 0
	require.NoError(t, e.store.Scan(lo, hi, func(_, _ []byte) bool { n++; return true }))
	return n
}

func TestCompactQueueRemovesOnlyDelivered(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t, Options{})
	for i := 0; i < 10; i++ {
		seedQueue(t, e, "q", "x")
	}
	for i := 0; i < 7; i++ {
		_, _, err := e.Dequeue(ctx, "q")
		require.NoError(t, err)
	}

	n, err := e.CompactQueue(ctx, "q", 3)
	require.NoError(t, err)
	require.Equal(t, 7, n)
	require.Equal(t, 3, countItems(t, e, "q"))

	n, err = e.CompactQueue(ctx, "q", 3)
	require.NoError(t, err)
	require.Zero(t, n)

	st, err := e.Status(ctx, "q")
	require.NoError(t, err)
	require.Equal(t, uint64(3), st.Depth)
	it, ok, err := e.Dequeue(ctx, "q")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(7), it.Seq)
}

func TestCompactorSweep(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t, Options{})
	seedQueue(t, e, "a", "1", "2", "3")
	seedQueue(t, e, "b", "1", "2")
	for _, name := range []string{"a", "a", "b"} {
		_, _, err := e.Dequeue(ctx, name)
		require.NoError(t, err)
	}

	var (
		mu      sync.Mutex
		removed = map[string]int{}
	)
	c := NewCompactor(e, CompactorOptions{OnCompact: func(name string, n int) {
		mu.Lock()
		removed[name] += n
		mu.Unlock()
	}})
	require.Equal(t, 3, c.Sweep(ctx))
	require.Equal(t, map[string]int{"a": 2, "b": 1}, removed)
	require.Equal(t, 1, countItems(t, e, "a"))
	require.Equal(t, 1, countItems(t, e, "b"))
}

func TestCompactorRunsInBackground(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t, Options{})
	seedQueue(t, e, "q", "1", "2")
	_, _, err := e.Dequeue(ctx, "q")
	require.NoError(t, err)

	done := make(chan struct{}, 1)
	c := NewCompactor(e, CompactorOptions{
		Interval: 10 * time.Millisecond,
		OnCompact: func(string, int) {
			select {
			case done <- struct{}{}:
			default:
			}
		},
	})
	c.Start()
	defer c.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("compactor did not sweep")
	}
	require.Equal(t, 1, countItems(t, e, "q"))
}

func TestCompactAfterResetKeepsNewItems(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t, Options{})
	seedQueue(t, e, "q", "old1", "old2")
	_, _, err := e.Dequeue(ctx, "q")
	require.NoError(t, err)
	require.NoError(t, e.Reset(ctx, "q"))
	seedQueue(t, e, "q", "new")

	n, err := e.CompactQueue(ctx, "q", 0)
	require.NoError(t, err)
	require.Zero(t, n)
	it, ok, err := e.Dequeue(ctx, "q")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "new", string(it.Payload))
}
