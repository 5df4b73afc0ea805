// Package storage defines the small key-value capability surface the queue
// engine is written against. Keys and values are opaque bytes; keys are
// ordered byte-wise.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Store.Get when the key is absent.
var ErrNotFound = errors.New("storage: key not found")

// Store is an ordered, crash-safe key-value store.
type Store interface {
	// Get returns a copy of the value stored at key, or ErrNotFound.
	Get(key []byte) ([]byte, error)
	// NewWriteBatch starts an atomic group of mutations.
	NewWriteBatch() Batch
	// Scan calls fn for each key in [lower, upper) in ascending order until fn
	// returns false. Slices passed to fn are only valid during the call.
	Scan(lower, upper []byte, fn func(key, value []byte) bool) error
	// CompactRange hints that [start, end) was mostly deleted.
	CompactRange(start, end []byte) error
	Close() error
}

// Batch collects mutations that become visible together on Commit. Either all
// of them survive a crash or none do.
type Batch interface {
	Set(key, value []byte) error
	Delete(key []byte) error
	// DeleteRange removes every key in [start, end).
	DeleteRange(start, end []byte) error
	// Count reports the number of mutations queued so far.
	Count() uint32
	Commit(ctx context.Context) error
	Close() error
}
