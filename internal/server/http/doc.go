// Package httpserver serves httpmq over HTTP: the classic query protocol on
// "/", a JSON API under /v1/queues, health at /v1/healthz and Prometheus
// metrics at /metrics. Requests pass through request-ID, CORS, load-shedding
// and timeout middleware.
//
// Example:
//
//	rt, _ := runtime.Open(runtime.Options{DataDir: "./data", Config: config.Default()})
//	s := httpserver.New(rt, logger)
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	_ = s.ListenAndServe(ctx, "127.0.0.1:1218")
package httpserver
