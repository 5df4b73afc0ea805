// Package metrics holds the Prometheus instruments for queue operations,
// storage traffic and compaction, plus a collector that reports per-queue
// positions on scrape.
package metrics
