package queue

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rzbill/httpmq/internal/storage"
)

// DefaultNameMaxBytes bounds queue names when Options.NameMaxBytes is zero.
const DefaultNameMaxBytes = 256

// Options tunes an Engine.
type Options struct {
	// DefaultMaxQueue is the max depth of queues without an override and the
	// ceiling for SetMaxQueue. Zero means unlimited.
	DefaultMaxQueue uint64
	// NameMaxBytes bounds the length of queue names.
	NameMaxBytes int
	// Now supplies enqueue timestamps. Defaults to time.Now.
	Now func() time.Time
}

// Item is one delivered or browsed queue entry.
type Item struct {
	Seq        uint64
	Payload    []byte
	EnqueuedAt time.Time
}

// Status is a point-in-time view of one queue.
type Status struct {
	Name     string
	Write    uint64
	Read     uint64
	Depth    uint64
	MaxQueue uint64
}

// Engine implements named FIFO queues on top of a storage.Store. It is safe
// for concurrent use; operations on one name are linearized and operations on
// different names never wait on each other.
type Engine struct {
	store storage.Store
	reg   *registry
	opts  Options
}

// New returns an Engine over store.
func New(store storage.Store, opts Options) *Engine {
	if opts.NameMaxBytes <= 0 {
		opts.NameMaxBytes = DefaultNameMaxBytes
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Engine{store: store, reg: newRegistry(), opts: opts}
}

// DefaultMaxQueue returns the configured default max depth.
func (e *Engine) DefaultMaxQueue() uint64 { return e.opts.DefaultMaxQueue }

// ValidateName reports ErrInvalidQueueName for names the engine refuses.
func (e *Engine) ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty", ErrInvalidQueueName)
	case len(name) > e.opts.NameMaxBytes:
		return fmt.Errorf("%w: %d bytes exceeds %d", ErrInvalidQueueName, len(name), e.opts.NameMaxBytes)
	}
	return nil
}

// Enqueue appends payload to name and returns its sequence number. The item
// and the advanced write position are committed in one batch.
func (e *Engine) Enqueue(ctx context.Context, name string, payload []byte) (uint64, error) {
	if err := e.ValidateName(name); err != nil {
		return 0, err
	}
	release, err := e.reg.acquire(ctx, name)
	if err != nil {
		return 0, err
	}
	defer release()

	pos, err := e.readPosition(name)
	if err != nil {
		return 0, err
	}
	if pos.Write == math.MaxUint64 {
		return 0, ErrSequenceOverflow
	}
	limit, err := e.maxQueue(name)
	if err != nil {
		return 0, err
	}
	if limit > 0 && pos.Depth() >= limit {
		return 0, fmt.Errorf("%w: depth %d, limit %d", ErrQueueFull, pos.Depth(), limit)
	}

	seq := pos.Write
	b := e.store.NewWriteBatch()
	defer b.Close()
	if err := b.Set(itemKey(name, seq), encodeItem(e.opts.Now().UnixMilli(), payload)); err != nil {
		return 0, storeErr("enqueue", err)
	}
	if err := b.Set(positionKey(name), Position{Write: seq + 1, Read: pos.Read}.encode()); err != nil {
		return 0, storeErr("enqueue", err)
	}
	if err := commit(ctx, b, "enqueue"); err != nil {
		return 0, err
	}
	return seq, nil
}

// Dequeue removes and returns the oldest undelivered item of name. ok is
// false when the queue is empty. A missing or corrupt item below write_pos is
// reported as ErrInconsistentState and leaves the position untouched.
func (e *Engine) Dequeue(ctx context.Context, name string) (Item, bool, error) {
	if err := e.ValidateName(name); err != nil {
		return Item{}, false, err
	}
	release, err := e.reg.acquire(ctx, name)
	if err != nil {
		return Item{}, false, err
	}
	defer release()

	pos, err := e.readPosition(name)
	if err != nil {
		return Item{}, false, err
	}
	if pos.Empty() {
		return Item{}, false, nil
	}

	it, err := e.readItem(name, pos.Read)
	if err != nil {
		return Item{}, false, err
	}

	b := e.store.NewWriteBatch()
	defer b.Close()
	if err := b.Set(positionKey(name), Position{Write: pos.Write, Read: pos.Read + 1}.encode()); err != nil {
		return Item{}, false, storeErr("dequeue", err)
	}
	if err := commit(ctx, b, "dequeue"); err != nil {
		return Item{}, false, err
	}
	return it, true, nil
}

// Status reads the position record of name. A queue never written reports
// all zeros.
func (e *Engine) Status(_ context.Context, name string) (Status, error) {
	if err := e.ValidateName(name); err != nil {
		return Status{}, err
	}
	pos, err := e.readPosition(name)
	if err != nil {
		return Status{}, err
	}
	limit, err := e.maxQueue(name)
	if err != nil {
		return Status{}, err
	}
	return Status{Name: name, Write: pos.Write, Read: pos.Read, Depth: pos.Depth(), MaxQueue: limit}, nil
}

// Reset rewinds name to (0, 0), deletes all of its items and drops its max
// depth override, all in one batch. Resetting twice is the same as once.
func (e *Engine) Reset(ctx context.Context, name string) error {
	if err := e.ValidateName(name); err != nil {
		return err
	}
	release, err := e.reg.acquire(ctx, name)
	if err != nil {
		return err
	}
	defer release()

	lower, upper := itemBounds(name, 0, 0)
	b := e.store.NewWriteBatch()
	defer b.Close()
	if err := b.DeleteRange(lower, upper); err != nil {
		return storeErr("reset", err)
	}
	if err := b.Delete(maxQueueKey(name)); err != nil {
		return storeErr("reset", err)
	}
	if err := b.Set(positionKey(name), Position{}.encode()); err != nil {
		return storeErr("reset", err)
	}
	return commit(ctx, b, "reset")
}

// SetMaxQueue persists a max depth override for name. It is refused with
// ErrInvalidMaxQueue when limit is zero, above the engine's default ceiling, or
// below the queue's current depth.
func (e *Engine) SetMaxQueue(ctx context.Context, name string, limit uint64) error {
	if err := e.ValidateName(name); err != nil {
		return err
	}
	if limit == 0 {
		return fmt.Errorf("%w: must be positive", ErrInvalidMaxQueue)
	}
	if ceiling := e.opts.DefaultMaxQueue; ceiling > 0 && limit > ceiling {
		return fmt.Errorf("%w: %d exceeds ceiling %d", ErrInvalidMaxQueue, limit, ceiling)
	}
	release, err := e.reg.acquire(ctx, name)
	if err != nil {
		return err
	}
	defer release()

	pos, err := e.readPosition(name)
	if err != nil {
		return err
	}
	if limit < pos.Depth() {
		return fmt.Errorf("%w: %d below current depth %d", ErrInvalidMaxQueue, limit, pos.Depth())
	}
	b := e.store.NewWriteBatch()
	defer b.Close()
	if err := b.Set(maxQueueKey(name), appendBE8(nil, limit)); err != nil {
		return storeErr("maxqueue", err)
	}
	return commit(ctx, b, "maxqueue")
}

func (e *Engine) readPosition(name string) (Position, error) {
	raw, err := e.store.Get(positionKey(name))
	if errors.Is(err, storage.ErrNotFound) {
		return Position{}, nil
	}
	if err != nil {
		return Position{}, storeErr("read position", err)
	}
	return decodePosition(raw)
}

func (e *Engine) maxQueue(name string) (uint64, error) {
	raw, err := e.store.Get(maxQueueKey(name))
	if errors.Is(err, storage.ErrNotFound) {
		return e.opts.DefaultMaxQueue, nil
	}
	if err != nil {
		return 0, storeErr("read max queue", err)
	}
	if len(raw) != 8 {
		return 0, fmt.Errorf("%w: max queue record is %d bytes", ErrInconsistentState, len(raw))
	}
	return readBE8(raw), nil
}

func (e *Engine) readItem(name string, seq uint64) (Item, error) {
	raw, err := e.store.Get(itemKey(name, seq))
	if errors.Is(err, storage.ErrNotFound) {
		return Item{}, fmt.Errorf("%w: queue %q item %d missing", ErrInconsistentState, name, seq)
	}
	if err != nil {
		return Item{}, storeErr("read item", err)
	}
	ms, payload, ok := decodeItem(raw)
	if !ok {
		return Item{}, fmt.Errorf("%w: queue %q item %d fails checksum", ErrInconsistentState, name, seq)
	}
	return Item{Seq: seq, Payload: payload, EnqueuedAt: time.UnixMilli(ms)}, nil
}

// commit applies b. Context errors are returned as-is: the batch was not
// applied and the queue is unchanged.
func commit(ctx context.Context, b storage.Batch, op string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := b.Commit(ctx); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return storeErr(op, err)
	}
	return nil
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
}
