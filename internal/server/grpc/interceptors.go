package grpcserver

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/rzbill/httpmq/pkg/id"
	logpkg "github.com/rzbill/httpmq/pkg/log"
)

// RequestIDMetadataKey is read from incoming metadata and echoed in headers.
const RequestIDMetadataKey = "x-request-id"

func requestIDInterceptor(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	rid := ""
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if v := md.Get(RequestIDMetadataKey); len(v) > 0 && len(v[0]) <= 128 {
			rid = v[0]
		}
	}
	if rid == "" {
		rid = id.NewRequestID()
	}
	_ = grpc.SetHeader(ctx, metadata.Pairs(RequestIDMetadataKey, rid))
	return handler(logpkg.ContextWithRequestID(ctx, rid), req)
}

func loggingInterceptor(logger logpkg.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		l := logger.WithContext(ctx).With(logpkg.Str("method", info.FullMethod), logpkg.Dur("elapsed", time.Since(start)))
		if err != nil {
			l.Debug("grpc call failed", logpkg.Str("code", status.Code(err).String()), logpkg.Err(err))
		} else {
			l.Debug("grpc call")
		}
		return resp, err
	}
}
