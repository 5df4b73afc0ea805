// Package queue implements httpmq's durable named FIFO queues.
//
// # Overview
//
// Each queue is a position record (write_pos, read_pos) plus one item per
// sequence number, stored in an ordered key-value store (see package
// storage). Enqueue writes the item at write_pos and advances write_pos in a
// single batch; Dequeue reads the item at read_pos and advances read_pos in a
// single batch; so a crash leaves either the old or the new state, never an
// advanced position without its item.
//
// Mutating operations on one name are serialized by an in-process registry
// of per-name locks. Different names never wait on each other. Status, View
// and Items read without taking the lock.
//
//	e := queue.New(store, queue.Options{DefaultMaxQueue: 100000000})
//	seq, _ := e.Enqueue(ctx, "orders", []byte("hello")) // 0
//	it, ok, _ := e.Dequeue(ctx, "orders")               // it.Seq == 0, ok
//	st, _ := e.Status(ctx, "orders")                    // Write 1, Read 1, Depth 0
//	_ = e.Reset(ctx, "orders")
//
// # Errors
//
// An empty queue is reported by Dequeue's ok result, not an error. Failures
// wrap ErrStoreUnavailable, ErrInconsistentState, ErrInvalidQueueName,
// ErrSequenceOverflow or ErrQueueFull and are matched with errors.Is.
//
// # Housekeeping
//
// Delivered items are left in place by Dequeue. Compactor removes them in the
// background; Reset purges all items of a queue immediately.
package queue
