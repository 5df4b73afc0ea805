package queue

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/rzbill/httpmq/internal/storage"
	pebblestore "github.com/rzbill/httpmq/internal/storage/pebble"
)

func newMemStore(t *testing.T) *pebblestore.DB {
	t.Helper()
	db, err := pebblestore.Open(pebblestore.Options{InMemory: true, Fsync: pebblestore.FsyncModeNever})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newTestEngine(t *testing.T, opts Options) (*Engine, *pebblestore.DB) {
	t.Helper()
	db := newMemStore(t)
	return New(db, opts), db
}

var errDiskGone = errors.New("disk gone")

// faultStore fails reads or commits on demand.
type faultStore struct {
	storage.Store
	failGet    atomic.Bool
	failCommit atomic.Bool
}

func (f *faultStore) Get(key []byte) ([]byte, error) {
	if f.failGet.Load() {
		return nil, errDiskGone
	}
	return f.Store.Get(key)
}

func (f *faultStore) NewWriteBatch() storage.Batch {
	return &faultBatch{Batch: f.Store.NewWriteBatch(), s: f}
}

type faultBatch struct {
	storage.Batch
	s *faultStore
}

func (b *faultBatch) Commit(ctx context.Context) error {
	if b.s.failCommit.Load() {
		return errDiskGone
	}
	return b.Batch.Commit(ctx)
}
