// Package runtime wires storage, configuration, metrics and the queue engine
// into a single-node httpmq instance. It exposes Open/Start/Close, a basic
// health check, and accessors used by the services and servers.
//
// Example:
//
//	cfg := config.Default()
//	rt, _ := runtime.Open(runtime.Options{DataDir: "./data", Fsync: pebblestore.FsyncModeAlways, Config: cfg})
//	defer rt.Close()
//	rt.Start()
//	_, _ = rt.Engine().Enqueue(ctx, "orders", []byte("hello"))
package runtime
