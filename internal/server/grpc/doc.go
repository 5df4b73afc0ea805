// Package grpcserver serves the httpmq.v1.Queues service and the standard
// grpc.health.v1.Health service. Queue errors are mapped to gRPC status
// codes, and every call gets a request ID and a debug log line.
//
// Example:
//
//	rt, _ := runtime.Open(runtime.Options{DataDir: "./data", Config: config.Default()})
//	s := grpcserver.New(rt, logger)
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	_ = s.ListenAndServe(ctx, ":50051")
package grpcserver
