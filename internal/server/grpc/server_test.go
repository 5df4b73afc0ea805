package grpcserver

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	httpmqv1 "github.com/rzbill/httpmq/api/httpmq/v1"
	cfgpkg "github.com/rzbill/httpmq/internal/config"
	"github.com/rzbill/httpmq/internal/queue"
	"github.com/rzbill/httpmq/internal/runtime"
	logpkg "github.com/rzbill/httpmq/pkg/log"
)

const bufSize = 1 << 20

func dialer(s *grpc.Server) func(context.Context, string) (net.Conn, error) {
	lis := bufconn.Listen(bufSize)
	go func() { _ = s.Serve(lis) }()
	return func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }
}

func newTestConn(t *testing.T, mutate func(*cfgpkg.Config)) *grpc.ClientConn {
	t.Helper()
	cfg := cfgpkg.Default()
	cfg.Compaction.Enabled = false
	if mutate != nil {
		mutate(&cfg)
	}
	rt, err := runtime.Open(runtime.Options{InMemory: true, Config: cfg})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close() })

	srv := New(rt, logpkg.NewLogger(logpkg.WithOutput(logpkg.NullOutput{})))
	t.Cleanup(srv.Close)
	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(dialer(srv.grpc)),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestHealthOverGRPC(t *testing.T) {
	conn := newTestConn(t, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	c := healthpb.NewHealthClient(conn)
	res, err := c.Check(ctx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, res.GetStatus())

	res, err = c.Check(ctx, &healthpb.HealthCheckRequest{Service: httpmqv1.ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, res.GetStatus())
}

func TestQueuesOverGRPC(t *testing.T) {
	conn := newTestConn(t, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c := httpmqv1.NewQueuesClient(conn)

	put, err := c.Put(ctx, &httpmqv1.PutRequest{Name: "q", Payload: []byte("hello")})
	require.NoError(t, err)
	assert.Equal(t, uint64(0), put.Seq)
	put, err = c.Put(ctx, &httpmqv1.PutRequest{Name: "q", Payload: []byte("world")})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), put.Seq)

	st, err := c.Status(ctx, &httpmqv1.StatusRequest{Name: "q"})
	require.NoError(t, err)
	assert.Equal(t, httpmqv1.QueueStatus{Name: "q", Write: 2, Read: 0, Depth: 2, MaxQueue: cfgpkg.DefaultMaxQueue}, *st)

	got, err := c.Get(ctx, &httpmqv1.GetRequest{Name: "q"})
	require.NoError(t, err)
	require.True(t, got.Found)
	assert.Equal(t, "hello", string(got.Item.Payload))

	view, err := c.View(ctx, &httpmqv1.ViewRequest{Name: "q", Seq: 1})
	require.NoError(t, err)
	assert.Equal(t, "world", string(view.Payload))

	items, err := c.Items(ctx, &httpmqv1.ItemsRequest{Name: "q", Filter: `size == 5`})
	require.NoError(t, err)
	require.Len(t, items.Items, 1)

	list, err := c.List(ctx, &httpmqv1.ListRequest{})
	require.NoError(t, err)
	require.Len(t, list.Queues, 1)
	assert.Equal(t, uint64(1), list.Queues[0].Depth)

	_, err = c.Reset(ctx, &httpmqv1.ResetRequest{Name: "q"})
	require.NoError(t, err)
	got, err = c.Get(ctx, &httpmqv1.GetRequest{Name: "q"})
	require.NoError(t, err)
	assert.False(t, got.Found)
	assert.Nil(t, got.Item)
}

func TestNonUTF8NameOverGRPC(t *testing.T) {
	conn := newTestConn(t, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c := httpmqv1.NewQueuesClient(conn)

	const name = httpmqv1.QueueName("q\xff")
	_, err := c.Put(ctx, &httpmqv1.PutRequest{Name: name, Payload: []byte("x")})
	require.NoError(t, err)

	list, err := c.List(ctx, &httpmqv1.ListRequest{})
	require.NoError(t, err)
	require.Len(t, list.Queues, 1)
	assert.Equal(t, name, list.Queues[0].Name)

	// The name from List must address the same queue.
	got, err := c.Get(ctx, &httpmqv1.GetRequest{Name: list.Queues[0].Name})
	require.NoError(t, err)
	require.True(t, got.Found)
	assert.Equal(t, "x", string(got.Item.Payload))

	st, err := c.Status(ctx, &httpmqv1.StatusRequest{Name: "q\uFFFD"})
	require.NoError(t, err)
	assert.Equal(t, uint64(0), st.Write)
}

func TestErrorCodesOverGRPC(t *testing.T) {
	conn := newTestConn(t, func(c *cfgpkg.Config) { c.MaxQueue = 1 })
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c := httpmqv1.NewQueuesClient(conn)

	_, err := c.Status(ctx, &httpmqv1.StatusRequest{Name: ""})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = c.Put(ctx, &httpmqv1.PutRequest{Name: "q", Payload: []byte("a")})
	require.NoError(t, err)
	_, err = c.Put(ctx, &httpmqv1.PutRequest{Name: "q", Payload: []byte("b")})
	assert.Equal(t, codes.ResourceExhausted, status.Code(err))

	_, err = c.View(ctx, &httpmqv1.ViewRequest{Name: "q", Seq: 9})
	assert.Equal(t, codes.OutOfRange, status.Code(err))

	_, err = c.SetMaxQueue(ctx, &httpmqv1.SetMaxQueueRequest{Name: "q", Max: 0})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestRequestIDHeader(t *testing.T) {
	conn := newTestConn(t, nil)
	ctx := metadata.AppendToOutgoingContext(context.Background(), RequestIDMetadataKey, "rid-1")
	var header metadata.MD
	_, err := httpmqv1.NewQueuesClient(conn).Status(ctx, &httpmqv1.StatusRequest{Name: "q"}, grpc.Header(&header))
	require.NoError(t, err)
	assert.Equal(t, []string{"rid-1"}, header.Get(RequestIDMetadataKey))
}

func TestToStatus(t *testing.T) {
	tests := []struct {
		err  error
		want codes.Code
	}{
		{nil, codes.OK},
		{context.DeadlineExceeded, codes.DeadlineExceeded},
		{queue.ErrInvalidFilter, codes.InvalidArgument},
		{queue.ErrSequenceOverflow, codes.ResourceExhausted},
		{queue.ErrStoreUnavailable, codes.Unavailable},
		{queue.ErrInconsistentState, codes.DataLoss},
		{errors.New("other"), codes.Internal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, status.Code(toStatus(tt.err)), "err %v", tt.err)
	}
}
