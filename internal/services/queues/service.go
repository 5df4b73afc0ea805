package queues

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/rzbill/httpmq/internal/metrics"
	"github.com/rzbill/httpmq/internal/queue"
	"github.com/rzbill/httpmq/internal/runtime"
	logpkg "github.com/rzbill/httpmq/pkg/log"
)

const tracerName = "github.com/rzbill/httpmq/internal/services/queues"

// ErrPayloadTooLarge rejects a put whose payload exceeds payloadMaxBytes.
var ErrPayloadTooLarge = errors.New("queues: payload too large")

// Service is the transport-neutral queue API shared by the HTTP and gRPC
// servers. Every call is traced, timed and counted.
type Service struct {
	engine     *queue.Engine
	metrics    *metrics.Metrics
	logger     logpkg.Logger
	tracer     trace.Tracer
	payloadMax int
}

// New creates a queues service with a default logger.
func New(rt *runtime.Runtime) *Service {
	logger := logpkg.NewLogger(logpkg.WithLevel(logpkg.InfoLevel))
	return NewWithLogger(rt, logger)
}

// NewWithLogger creates a queues service with a custom logger.
func NewWithLogger(rt *runtime.Runtime, logger logpkg.Logger) *Service {
	if logger == nil {
		logger = logpkg.NewLogger(logpkg.WithLevel(logpkg.InfoLevel))
	}
	return &Service{
		engine:     rt.Engine(),
		metrics:    rt.Metrics(),
		logger:     logger.WithComponent("queues"),
		tracer:     otel.Tracer(tracerName),
		payloadMax: rt.Config().PayloadMaxBytes,
	}
}

// WithTracer replaces the global tracer. It returns s for chaining.
func (s *Service) WithTracer(t trace.Tracer) *Service {
	if t != nil {
		s.tracer = t
	}
	return s
}

// DefaultMaxQueue reports the configured default depth limit.
func (s *Service) DefaultMaxQueue() uint64 { return s.engine.DefaultMaxQueue() }

// Put enqueues payload on name and returns its sequence.
func (s *Service) Put(ctx context.Context, name string, payload []byte) (uint64, error) {
	var seq uint64
	err := s.do(ctx, "put", name, func(ctx context.Context, span trace.Span) (string, error) {
		if s.payloadMax > 0 && len(payload) > s.payloadMax {
			return metrics.ResultInvalid, fmt.Errorf("%w: %d bytes exceeds %d", ErrPayloadTooLarge, len(payload), s.payloadMax)
		}
		span.SetAttributes(attribute.Int("httpmq.payload_size", len(payload)))
		var err error
		seq, err = s.engine.Enqueue(ctx, name, payload)
		if err == nil {
			span.SetAttributes(attribute.Int64("httpmq.seq", int64(seq)))
		}
		return "", err
	})
	return seq, err
}

// Get dequeues the oldest item of name. ok is false when the queue is empty.
func (s *Service) Get(ctx context.Context, name string) (queue.Item, bool, error) {
	var (
		it queue.Item
		ok bool
	)
	err := s.do(ctx, "get", name, func(ctx context.Context, span trace.Span) (string, error) {
		var err error
		it, ok, err = s.engine.Dequeue(ctx, name)
		if err != nil {
			return "", err
		}
		if !ok {
			return metrics.ResultEmpty, nil
		}
		span.SetAttributes(attribute.Int64("httpmq.seq", int64(it.Seq)))
		return "", nil
	})
	return it, ok, err
}

// Status reports the positions of name.
func (s *Service) Status(ctx context.Context, name string) (queue.Status, error) {
	var st queue.Status
	err := s.do(ctx, "status", name, func(ctx context.Context, _ trace.Span) (string, error) {
		var err error
		st, err = s.engine.Status(ctx, name)
		return "", err
	})
	return st, err
}

// Reset rewinds name and purges its items.
func (s *Service) Reset(ctx context.Context, name string) error {
	err := s.do(ctx, "reset", name, func(ctx context.Context, _ trace.Span) (string, error) {
		return "", s.engine.Reset(ctx, name)
	})
	if err == nil {
		s.logger.WithContext(ctx).Info("queue reset", logpkg.Queue(name))
	}
	return err
}

// SetMaxQueue sets the depth limit of name.
func (s *Service) SetMaxQueue(ctx context.Context, name string, limit uint64) error {
	return s.do(ctx, "maxqueue", name, func(ctx context.Context, span trace.Span) (string, error) {
		span.SetAttributes(attribute.Int64("httpmq.maxqueue", int64(limit)))
		return "", s.engine.SetMaxQueue(ctx, name, limit)
	})
}

// View returns the undelivered item at seq without consuming it.
func (s *Service) View(ctx context.Context, name string, seq uint64) (queue.Item, error) {
	var it queue.Item
	err := s.do(ctx, "view", name, func(ctx context.Context, _ trace.Span) (string, error) {
		var err error
		it, err = s.engine.View(ctx, name, seq)
		return "", err
	})
	return it, err
}

// List returns the status of every queue.
func (s *Service) List(ctx context.Context) ([]queue.Status, error) {
	var sts []queue.Status
	err := s.do(ctx, "list", "", func(ctx context.Context, _ trace.Span) (string, error) {
		var err error
		sts, err = s.engine.Statuses(ctx)
		return "", err
	})
	return sts, err
}

// Items browses undelivered items of name.
func (s *Service) Items(ctx context.Context, name string, opts queue.ItemsOptions) ([]queue.Item, error) {
	var items []queue.Item
	err := s.do(ctx, "items", name, func(ctx context.Context, span trace.Span) (string, error) {
		if opts.Filter != "" {
			span.SetAttributes(attribute.String("httpmq.filter", opts.Filter))
		}
		var err error
		items, err = s.engine.Items(ctx, name, opts)
		return "", err
	})
	return items, err
}

// do runs fn inside a span and records the outcome. fn may return a result
// label; otherwise one is derived from its error.
func (s *Service) do(ctx context.Context, op, name string, fn func(context.Context, trace.Span) (string, error)) error {
	ctx, span := s.tracer.Start(ctx, "queues."+op,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("httpmq.queue", name)),
	)
	defer span.End()

	start := time.Now()
	result, err := fn(ctx, span)
	elapsed := time.Since(start)
	if result == "" {
		result = resultOf(err)
	}
	span.SetAttributes(attribute.String("httpmq.result", result))
	if s.metrics != nil {
		s.metrics.ObserveOp(op, result, elapsed)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		l := s.logger.WithContext(ctx).With(logpkg.Str(logpkg.OperationKey, op), logpkg.Queue(name), logpkg.Err(err))
		if result == metrics.ResultError {
			l.Error("queue operation failed")
		} else {
			l.Debug("queue operation rejected")
		}
		return err
	}
	s.logger.WithContext(ctx).Debug("queue operation",
		logpkg.Str(logpkg.OperationKey, op), logpkg.Queue(name), logpkg.Dur("elapsed", elapsed))
	return nil
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return metrics.ResultOK
	case errors.Is(err, queue.ErrQueueFull):
		return metrics.ResultFull
	case errors.Is(err, queue.ErrInvalidQueueName),
		errors.Is(err, queue.ErrInvalidMaxQueue),
		errors.Is(err, queue.ErrInvalidFilter),
		errors.Is(err, queue.ErrPositionOutOfRange),
		errors.Is(err, ErrPayloadTooLarge):
		return metrics.ResultInvalid
	default:
		return metrics.ResultError
	}
}
