// Package transports provides pluggable transport implementations for the CLI.
package transports

import (
	"context"

	"google.golang.org/grpc"

	httpmqv1 "github.com/rzbill/httpmq/api/httpmq/v1"
)

// GrpcTransport implements QueuesTransport over gRPC.
type GrpcTransport struct {
	dial func(ctx context.Context) (*grpc.ClientConn, error)
}

var _ QueuesTransport = (*GrpcTransport)(nil)

// NewGrpcTransport constructs a new GrpcTransport using the provided dialer.
func NewGrpcTransport(dial func(ctx context.Context) (*grpc.ClientConn, error)) *GrpcTransport {
	return &GrpcTransport{dial: dial}
}

func (t *GrpcTransport) withClient(ctx context.Context, fn func(cli httpmqv1.QueuesClient) error) error {
	conn, err := t.dial(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()
	return fn(httpmqv1.NewQueuesClient(conn))
}

// Put enqueues payload via gRPC.
func (t *GrpcTransport) Put(ctx context.Context, name string, payload []byte) (uint64, error) {
	var seq uint64
	err := t.withClient(ctx, func(cli httpmqv1.QueuesClient) error {
		resp, err := cli.Put(ctx, &httpmqv1.PutRequest{Name: httpmqv1.QueueName(name), Payload: payload})
		if err != nil {
			return err
		}
		seq = resp.Seq
		return nil
	})
	return seq, err
}

// Get dequeues the oldest item via gRPC.
func (t *GrpcTransport) Get(ctx context.Context, name string) (Item, bool, error) {
	var (
		it Item
		ok bool
	)
	err := t.withClient(ctx, func(cli httpmqv1.QueuesClient) error {
		resp, err := cli.Get(ctx, &httpmqv1.GetRequest{Name: httpmqv1.QueueName(name)})
		if err != nil {
			return err
		}
		if resp.Found && resp.Item != nil {
			it, ok = fromItem(*resp.Item), true
		}
		return nil
	})
	return it, ok, err
}

// Status returns queue positions.
func (t *GrpcTransport) Status(ctx context.Context, name string) (Status, error) {
	var st Status
	err := t.withClient(ctx, func(cli httpmqv1.QueuesClient) error {
		resp, err := cli.Status(ctx, &httpmqv1.StatusRequest{Name: httpmqv1.QueueName(name)})
		if err != nil {
			return err
		}
		st = fromStatus(*resp)
		return nil
	})
	return st, err
}

// Reset purges a queue.
func (t *GrpcTransport) Reset(ctx context.Context, name string) error {
	return t.withClient(ctx, func(cli httpmqv1.QueuesClient) error {
		_, err := cli.Reset(ctx, &httpmqv1.ResetRequest{Name: httpmqv1.QueueName(name)})
		return err
	})
}

// SetMaxQueue sets a per-queue depth limit.
func (t *GrpcTransport) SetMaxQueue(ctx context.Context, name string, limit uint64) error {
	return t.withClient(ctx, func(cli httpmqv1.QueuesClient) error {
		_, err := cli.SetMaxQueue(ctx, &httpmqv1.SetMaxQueueRequest{Name: httpmqv1.QueueName(name), Max: limit})
		return err
	})
}

// View reads one undelivered item without consuming it.
func (t *GrpcTransport) View(ctx context.Context, name string, seq uint64) (Item, error) {
	var it Item
	err := t.withClient(ctx, func(cli httpmqv1.QueuesClient) error {
		resp, err := cli.View(ctx, &httpmqv1.ViewRequest{Name: httpmqv1.QueueName(name), Seq: seq})
		if err != nil {
			return err
		}
		it = fromItem(*resp)
		return nil
	})
	return it, err
}

// List returns the status of every known queue.
func (t *GrpcTransport) List(ctx context.Context) ([]Status, error) {
	var out []Status
	err := t.withClient(ctx, func(cli httpmqv1.QueuesClient) error {
		resp, err := cli.List(ctx, &httpmqv1.ListRequest{})
		if err != nil {
			return err
		}
		out = make([]Status, 0, len(resp.Queues))
		for _, q := range resp.Queues {
			out = append(out, fromStatus(q))
		}
		return nil
	})
	return out, err
}

// Items browses undelivered items.
func (t *GrpcTransport) Items(ctx context.Context, req ItemsRequest) ([]Item, error) {
	var out []Item
	err := t.withClient(ctx, func(cli httpmqv1.QueuesClient) error {
		resp, err := cli.Items(ctx, &httpmqv1.ItemsRequest{Name: httpmqv1.QueueName(req.Name), From: req.From, Limit: int32(req.Limit), Filter: req.Filter})
		if err != nil {
			return err
		}
		out = make([]Item, 0, len(resp.Items))
		for _, it := range resp.Items {
			out = append(out, fromItem(it))
		}
		return nil
	})
	return out, err
}

func fromItem(it httpmqv1.Item) Item {
	return Item{Seq: it.Seq, Payload: it.Payload, EnqueuedAtMs: it.EnqueuedAtMs}
}

func fromStatus(st httpmqv1.QueueStatus) Status {
	return Status{Name: string(st.Name), Write: st.Write, Read: st.Read, Depth: st.Depth, MaxQueue: st.MaxQueue}
}
