package metrics

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rzbill/httpmq/internal/queue"
)

type fakeSource struct {
	sts []queue.Status
	err error
}

func (f fakeSource) Statuses(context.Context) ([]queue.Status, error) { return f.sts, f.err }

func TestObserveOp(t *testing.T) {
	m := New()
	m.ObserveOp("put", ResultOK, time.Millisecond)
	m.ObserveOp("put", ResultOK, time.Millisecond)
	m.ObserveOp("get", ResultEmpty, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ops.WithLabelValues("put", ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ops.WithLabelValues("get", ResultEmpty)))
	assert.Equal(t, 2, testutil.CollectAndCount(m.opDuration))
}

func TestStorageHook(t *testing.T) {
	m := New()
	m.ObserveWrite(time.Millisecond, 10)
	m.ObserveRead(time.Millisecond, 4)
	m.ObserveBatchCommit(time.Millisecond, 2, 30)

	assert.Equal(t, 10.0, testutil.ToFloat64(m.storageBytes.WithLabelValues("write")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.storageBytes.WithLabelValues("read")))
	assert.Equal(t, 30.0, testutil.ToFloat64(m.storageBytes.WithLabelValues("commit")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.commitLatency))
}

func TestQueueCollector(t *testing.T) {
	m := New()
	m.RegisterQueues(fakeSource{sts: []queue.Status{
		{Name: "orders", Write: 5, Read: 2, Depth: 3},
		{Name: "jobs", Write: 1, Read: 1},
	}})
	m.RegisterQueues(fakeSource{}) // ignored

	expected := `
# HELP httpmq_queue_depth Number of undelivered items in the queue.
# TYPE httpmq_queue_depth gauge
httpmq_queue_depth{queue="jobs"} 0
httpmq_queue_depth{queue="orders"} 3
`
	err := testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "httpmq_queue_depth")
	require.NoError(t, err)
}

func TestQueueCollectorError(t *testing.T) {
	m := New()
	m.RegisterQueues(fakeSource{err: errors.New("boom")})
	_, err := m.Registry().Gather()
	require.Error(t, err)
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveCompaction("orders", 7)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()
	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `httpmq_compactor_removed_items_total{queue="orders"} 7`)
}

func TestQueueLabel(t *testing.T) {
	assert.Equal(t, "orders", QueueLabel("orders"))
	assert.Equal(t, "café", QueueLabel("café"))
	assert.Equal(t, "hex:ff", QueueLabel("\xff"))
	assert.Equal(t, "hex:6865783a6666", QueueLabel("hex:ff"))
	assert.NotEqual(t, QueueLabel("\xff"), QueueLabel("hex:ff"))
	assert.NotEqual(t, QueueLabel("\xff"), QueueLabel("\uFFFD"))
}

func TestQueueCollectorNonUTF8Name(t *testing.T) {
	m := New()
	m.RegisterQueues(fakeSource{sts: []queue.Status{
		{Name: "\xff", Write: 2, Depth: 2},
		{Name: "hex:ff", Write: 1, Depth: 1},
	}})

	require.NotPanics(t, func() {
		_, err := m.Registry().Gather()
		require.NoError(t, err)
	})
	expected := `
# HELP httpmq_queue_depth Number of undelivered items in the queue.
# TYPE httpmq_queue_depth gauge
httpmq_queue_depth{queue="hex:6865783a6666"} 1
httpmq_queue_depth{queue="hex:ff"} 2
`
	err := testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "httpmq_queue_depth")
	require.NoError(t, err)
}

func TestObserveCompactionNonUTF8Name(t *testing.T) {
	m := New()
	require.NotPanics(t, func() { m.ObserveCompaction("\xff", 1) })
	assert.Equal(t, 1.0, testutil.ToFloat64(m.compacted.WithLabelValues("hex:ff")))
}
