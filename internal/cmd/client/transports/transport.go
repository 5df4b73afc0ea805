package transports

import "context"

// Item is a queue entry returned to the CLI.
type Item struct {
	Seq          uint64
	Payload      []byte
	EnqueuedAtMs int64
}

// Status reports the positions of one queue.
type Status struct {
	Name     string
	Write    uint64
	Read     uint64
	Depth    uint64
	MaxQueue uint64
}

// ItemsRequest describes a browse over undelivered items.
type ItemsRequest struct {
	Name   string
	From   uint64
	Limit  int
	Filter string
}

// QueuesTransport abstracts the transport used by the CLI.
type QueuesTransport interface {
	Put(ctx context.Context, name string, payload []byte) (seq uint64, err error)
	// Get returns ok == false when the queue is empty.
	Get(ctx context.Context, name string) (it Item, ok bool, err error)
	Status(ctx context.Context, name string) (Status, error)
	Reset(ctx context.Context, name string) error
	SetMaxQueue(ctx context.Context, name string, limit uint64) error
	View(ctx context.Context, name string, seq uint64) (Item, error)
	List(ctx context.Context) ([]Status, error)
	Items(ctx context.Context, req ItemsRequest) ([]Item, error)
}
