package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rzbill/httpmq/internal/queue"
)

const collectTimeout = 10 * time.Second

// StatusSource lists the current status of every queue.
type StatusSource interface {
	Statuses(ctx context.Context) ([]queue.Status, error)
}

var (
	descDepth = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "queue", "depth"),
		"Number of undelivered items in the queue.",
		[]string{"queue"}, nil,
	)
	descWrite = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "queue", "write_position"),
		"Next sequence number to be assigned.",
		[]string{"queue"}, nil,
	)
	descRead = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "queue", "read_position"),
		"Next sequence number to be delivered.",
		[]string{"queue"}, nil,
	)
)

type queueCollector struct {
	src StatusSource
}

var _ prometheus.Collector = (*queueCollector)(nil)

// RegisterQueues exposes per-queue positions read from src at scrape time.
// Only the first call has an effect.
func (m *Metrics) RegisterQueues(src StatusSource) {
	m.registerQueues.Do(func() {
		m.registry.MustRegister(&queueCollector{src: src})
	})
}

func (c *queueCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- descDepth
	ch <- descWrite
	ch <- descRead
}

func (c *queueCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), collectTimeout)
	defer cancel()

	sts, err := c.src.Statuses(ctx)
	if err != nil {
		ch <- prometheus.NewInvalidMetric(descDepth, err)
		return
	}
	for _, st := range sts {
		label := QueueLabel(st.Name)
		gauge(ch, descDepth, st.Depth, label)
		gauge(ch, descWrite, st.Write, label)
		gauge(ch, descRead, st.Read, label)
	}
}

func gauge(ch chan<- prometheus.Metric, desc *prometheus.Desc, v uint64, label string) {
	m, err := prometheus.NewConstMetric(desc, prometheus.GaugeValue, float64(v), label)
	if err != nil {
		m = prometheus.NewInvalidMetric(desc, err)
	}
	ch <- m
}
