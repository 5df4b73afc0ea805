// Package serverrun exposes the Run entrypoint used by the CLI to start the
// httpmq runtime with its HTTP and gRPC servers, handling lifecycle and
// shutdown.
//
// Example:
//
//	opts := serverrun.Options{DataDir: "./data", HTTPAddr: ":1218", GRPCAddr: ":50051", Fsync: pebblestore.FsyncModeAlways, Config: config.Default()}
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	_ = serverrun.Run(ctx, opts)
package serverrun
