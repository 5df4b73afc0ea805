package queue

import (
	"context"
	"math/rand"
	"sync"
	"time"

	logpkg "github.com/rzbill/httpmq/pkg/log"
)

// CompactorOptions configures the background compactor.
type CompactorOptions struct {
	// Interval between sweeps (default 30s, with up to 10% jitter).
	Interval time.Duration
	// BatchLimit bounds keys deleted per committed batch (default 1024).
	BatchLimit int
	// Throttle pauses between queues within a sweep.
	Throttle time.Duration
	// OnCompact observes every queue that had items removed. Optional.
	OnCompact func(name string, removed int)
	Logger    logpkg.Logger
}

// Compactor periodically removes delivered items from every queue so
// dequeued payloads do not accumulate on disk.
type Compactor struct {
	engine *Engine
	opts   CompactorOptions
	logger logpkg.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewCompactor builds a compactor for e. Call Start to run it.
func NewCompactor(e *Engine, opts CompactorOptions) *Compactor {
	if opts.Interval <= 0 {
		opts.Interval = 30 * time.Second
	}
	if opts.BatchLimit <= 0 {
		opts.BatchLimit = 1024
	}
	logger := opts.Logger
	if logger == nil {
		logger = logpkg.NewLogger(logpkg.WithLevel(logpkg.InfoLevel))
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Compactor{
		engine: e,
		opts:   opts,
		logger: logger.WithComponent("compactor"),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start launches the sweep loop.
func (c *Compactor) Start() {
	c.wg.Add(1)
	go c.run()
}

// Stop cancels the loop and waits for an in-flight sweep to finish.
func (c *Compactor) Stop() {
	c.cancel()
	c.wg.Wait()
}

func (c *Compactor) run() {
	defer c.wg.Done()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	c.logger.Info("compactor started", logpkg.Dur("interval", c.opts.Interval))
	for {
		jitter := time.Duration(rng.Int63n(int64(c.opts.Interval/10) + 1))
		select {
		case <-c.ctx.Done():
			c.logger.Info("compactor stopped")
			return
		case <-time.After(c.opts.Interval + jitter):
			c.Sweep(c.ctx)
		}
	}
}

// Sweep compacts every queue once and returns the number of items removed.
func (c *Compactor) Sweep(ctx context.Context) int {
	names, err := c.engine.ListQueues(ctx)
	if err != nil {
		c.logger.Error("compactor: list queues failed", logpkg.Err(err))
		return 0
	}
	total := 0
	for _, name := range names {
		if ctx.Err() != nil {
			break
		}
		n, err := c.engine.CompactQueue(ctx, name, c.opts.BatchLimit)
		if err != nil {
			c.logger.Error("compactor: compact failed", logpkg.Queue(name), logpkg.Err(err))
			continue
		}
		if n > 0 {
			total += n
			c.logger.Debug("compactor: removed delivered items", logpkg.Queue(name), logpkg.Int("count", n))
			if c.opts.OnCompact != nil {
				c.opts.OnCompact(name, n)
			}
		}
		if c.opts.Throttle > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(c.opts.Throttle):
			}
		}
	}
	return total
}
