package grpcserver

import (
	"context"
	"time"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	httpmqv1 "github.com/rzbill/httpmq/api/httpmq/v1"
	logpkg "github.com/rzbill/httpmq/pkg/log"
)

// updateHealth sets the overall and Queues service status from the runtime.
func (s *Server) updateHealth(ctx context.Context) {
	st := healthpb.HealthCheckResponse_SERVING
	if err := s.rt.CheckHealth(ctx); err != nil {
		st = healthpb.HealthCheckResponse_NOT_SERVING
		s.logger.Warn("runtime unhealthy", logpkg.Err(err))
	}
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(httpmqv1.ServiceName, st)
}

func (s *Server) watchHealth(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.updateHealth(ctx)
		}
	}
}
