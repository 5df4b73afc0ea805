package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "httpmq"

// Result labels for operation counters.
const (
	ResultOK      = "ok"
	ResultEmpty   = "empty"
	ResultFull    = "full"
	ResultInvalid = "invalid"
	ResultError   = "error"
)

// Metrics owns a registry with the queue and storage instruments.
type Metrics struct {
	registry *prometheus.Registry

	ops           *prometheus.CounterVec
	opDuration    *prometheus.HistogramVec
	storageBytes  *prometheus.CounterVec
	commitLatency prometheus.Histogram
	compacted     *prometheus.CounterVec

	registerQueues sync.Once
}

// New builds the instruments and registers them, together with the Go and
// process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ops: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "queue",
				Name:      "operations_total",
				Help:      "Count of queue operations by operation and result.",
			},
			[]string{"op", "result"},
		),
		opDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "queue",
				Name:      "operation_duration_seconds",
				Help:      "Latency of queue operations.",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 16),
			},
			[]string{"op"},
		),
		storageBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "storage",
				Name:      "bytes_total",
				Help:      "Bytes moved through the store by kind (read, write, commit).",
			},
			[]string{"kind"},
		),
		commitLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "storage",
				Name:      "commit_duration_seconds",
				Help:      "Latency of batch commits including WAL sync.",
				Buckets:   prometheus.ExponentialBuckets(0.00005, 2, 16),
			},
		),
		compacted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "compactor",
				Name:      "removed_items_total",
				Help:      "Delivered items removed by the compactor.",
			},
			[]string{"queue"},
		),
	}
	m.registry.MustRegister(
		m.ops,
		m.opDuration,
		m.storageBytes,
		m.commitLatency,
		m.compacted,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveOp records one queue operation.
func (m *Metrics) ObserveOp(op, result string, elapsed time.Duration) {
	m.ops.WithLabelValues(op, result).Inc()
	m.opDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// ObserveCompaction records items removed from name by the compactor.
func (m *Metrics) ObserveCompaction(name string, removed int) {
	m.compacted.WithLabelValues(QueueLabel(name)).Add(float64(removed))
}

// ObserveWrite, ObserveRead and ObserveBatchCommit make Metrics usable as the
// Pebble store's metrics hook.
func (m *Metrics) ObserveWrite(_ time.Duration, bytes int) {
	m.storageBytes.WithLabelValues("write").Add(float64(bytes))
}

func (m *Metrics) ObserveRead(_ time.Duration, bytes int) {
	m.storageBytes.WithLabelValues("read").Add(float64(bytes))
}

func (m *Metrics) ObserveBatchCommit(elapsed time.Duration, _ int, bytes int) {
	m.storageBytes.WithLabelValues("commit").Add(float64(bytes))
	m.commitLatency.Observe(elapsed.Seconds())
}
