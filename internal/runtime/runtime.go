package runtime

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/multierr"

	cfgpkg "github.com/rzbill/httpmq/internal/config"
	"github.com/rzbill/httpmq/internal/metrics"
	"github.com/rzbill/httpmq/internal/queue"
	pebblestore "github.com/rzbill/httpmq/internal/storage/pebble"
	logpkg "github.com/rzbill/httpmq/pkg/log"
)

// Options for building the Runtime.
type Options struct {
	DataDir       string
	InMemory      bool
	Fsync         pebblestore.FsyncMode
	FsyncInterval time.Duration
	Config        cfgpkg.Config
	Logger        logpkg.Logger
	// Metrics is optional; New() is used when nil.
	Metrics *metrics.Metrics
}

// Runtime wires storage, the queue engine, the compactor and metrics for a
// single-node instance.
type Runtime struct {
	db        *pebblestore.DB
	engine    *queue.Engine
	compactor *queue.Compactor
	metrics   *metrics.Metrics
	config    cfgpkg.Config
	logger    logpkg.Logger

	healthMu sync.Mutex
}

// healthKey sorts before every queue key.
var healthKey = []byte("\x00health")

// Open initializes the underlying storage and returns a Runtime. The
// compactor is created but not started; see Start.
func Open(opts Options) (*Runtime, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logpkg.NewLogger(logpkg.WithLevel(logpkg.InfoLevel))
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.New()
	}
	db, err := pebblestore.Open(pebblestore.Options{
		DataDir:       opts.DataDir,
		InMemory:      opts.InMemory,
		Fsync:         opts.Fsync,
		FsyncInterval: opts.FsyncInterval,
		Metrics:       m,
		Logger:        logger,
	})
	if err != nil {
		return nil, err
	}

	engine := queue.New(db, queue.Options{
		DefaultMaxQueue: opts.Config.MaxQueue,
		NameMaxBytes:    opts.Config.QueueNameMaxBytes,
	})
	m.RegisterQueues(engine)

	rt := &Runtime{db: db, engine: engine, metrics: m, config: opts.Config, logger: logger}
	if opts.Config.Compaction.Enabled {
		rt.compactor = queue.NewCompactor(engine, queue.CompactorOptions{
			Interval:   opts.Config.CompactionInterval(),
			BatchLimit: opts.Config.Compaction.BatchLimit,
			Throttle:   time.Duration(opts.Config.Compaction.ThrottleMs) * time.Millisecond,
			OnCompact:  m.ObserveCompaction,
			Logger:     logger,
		})
	}
	return rt, nil
}

// Start launches background work.
func (r *Runtime) Start() {
	if r.compactor != nil {
		r.compactor.Start()
	}
}

// Close stops background work and closes underlying resources.
func (r *Runtime) Close() error {
	var err error
	if r.compactor != nil {
		r.compactor.Stop()
		r.compactor = nil
	}
	if r.db != nil {
		// Close runs even when the flush fails.
		err = multierr.Append(r.db.Flush(), r.db.Close())
		r.db = nil
	}
	return err
}

// CheckHealth writes, reads back and removes a marker key so a store that
// can serve reads but not commits reports unhealthy.
func (r *Runtime) CheckHealth(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.db == nil {
		return errors.New("db not open")
	}
	r.healthMu.Lock()
	defer r.healthMu.Unlock()

	want := []byte(strconv.FormatInt(time.Now().UnixNano(), 10))
	if err := r.db.Set(healthKey, want); err != nil {
		return fmt.Errorf("health write: %w", err)
	}
	got, err := r.db.Get(healthKey)
	if err != nil {
		return fmt.Errorf("health read: %w", err)
	}
	if !bytes.Equal(got, want) {
		return fmt.Errorf("health read: got %q, want %q", got, want)
	}
	if err := r.db.Delete(healthKey); err != nil {
		return fmt.Errorf("health delete: %w", err)
	}
	return nil
}

// Engine returns the queue engine.
func (r *Runtime) Engine() *queue.Engine { return r.engine }

// Compactor returns the compactor, or nil when compaction is disabled.
func (r *Runtime) Compactor() *queue.Compactor { return r.compactor }

// Metrics returns the metrics registry wrapper.
func (r *Runtime) Metrics() *metrics.Metrics { return r.metrics }

// Logger returns the runtime logger.
func (r *Runtime) Logger() logpkg.Logger { return r.logger }

// Config returns the runtime configuration.
func (r *Runtime) Config() cfgpkg.Config { return r.config }
