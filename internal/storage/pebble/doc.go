// Package pebblestore wraps Pebble with an fsync policy, a metrics hook and
// the storage.Store capability interface used by the queue engine.
//
// Usage:
//
//	db, err := pebblestore.Open(pebblestore.Options{
//	    DataDir: "./data",
//	    Fsync:   pebblestore.FsyncModeAlways,
//	})
//	if err != nil { /* handle */ }
//	defer db.Close()
//
//	b := db.NewWriteBatch()
//	_ = b.Set([]byte("k"), []byte("v"))
//	_ = b.Commit(context.Background())
//	_ = b.Close()
//
//	v, err := db.Get([]byte("k")) // storage.ErrNotFound when absent
//
// Options.InMemory backs the database with an in-memory filesystem, for tests.
package pebblestore
