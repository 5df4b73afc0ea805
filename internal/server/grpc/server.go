package grpcserver

import (
	"context"
	"net"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	httpmqv1 "github.com/rzbill/httpmq/api/httpmq/v1"
	"github.com/rzbill/httpmq/internal/runtime"
	queuesvc "github.com/rzbill/httpmq/internal/services/queues"
	logpkg "github.com/rzbill/httpmq/pkg/log"
)

// Server owns the gRPC server instance and runtime.
type Server struct {
	rt     *runtime.Runtime
	svc    *queuesvc.Service
	grpc   *grpc.Server
	health *health.Server
	logger logpkg.Logger

	mu  sync.Mutex
	lis net.Listener
}

// New constructs a gRPC server and registers the Queues and Health services.
func New(rt *runtime.Runtime, logger logpkg.Logger, opts ...grpc.ServerOption) *Server {
	if logger == nil {
		logger = logpkg.NewLogger(logpkg.WithLevel(logpkg.InfoLevel))
	}
	logger = logger.WithComponent("grpc")
	opts = append([]grpc.ServerOption{grpc.ChainUnaryInterceptor(requestIDInterceptor, loggingInterceptor(logger))}, opts...)

	s := &Server{
		rt:     rt,
		svc:    queuesvc.NewWithLogger(rt, logger),
		grpc:   grpc.NewServer(opts...),
		health: health.NewServer(),
		logger: logger,
	}
	httpmqv1.RegisterQueuesServer(s.grpc, &queuesSvc{svc: s.svc})
	healthpb.RegisterHealthServer(s.grpc, s.health)
	s.updateHealth(context.Background())
	return s
}

// ListenAndServe binds to addr and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, l)
}

// Serve serves on l until ctx is done. Health status follows the runtime's
// health check while serving.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	s.mu.Lock()
	s.lis = l
	s.mu.Unlock()
	s.logger.Info("grpc server listening", logpkg.Str("addr", l.Addr().String()))

	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()
	go s.watchHealth(watchCtx, 5*time.Second)

	errCh := make(chan error, 1)
	go func() { errCh <- s.grpc.Serve(l) }()
	select {
	case <-ctx.Done():
		s.health.Shutdown()
		s.grpc.GracefulStop()
		return nil
	case err := <-errCh:
		return err
	}
}

// Addr returns the bound address once serving.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lis == nil {
		return nil
	}
	return s.lis.Addr()
}

// Close stops the server and closes the listener.
func (s *Server) Close() {
	if s.grpc != nil {
		s.grpc.GracefulStop()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lis != nil {
		_ = s.lis.Close()
	}
}
