package grpcserver

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/rzbill/httpmq/internal/queue"
	queuesvc "github.com/rzbill/httpmq/internal/services/queues"
)

// toStatus maps queue and service errors to gRPC status errors.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	var code codes.Code
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		code = codes.DeadlineExceeded
	case errors.Is(err, context.Canceled):
		code = codes.Canceled
	case errors.Is(err, queue.ErrInvalidQueueName),
		errors.Is(err, queue.ErrInvalidMaxQueue),
		errors.Is(err, queue.ErrInvalidFilter),
		errors.Is(err, queuesvc.ErrPayloadTooLarge):
		code = codes.InvalidArgument
	case errors.Is(err, queue.ErrQueueFull), errors.Is(err, queue.ErrSequenceOverflow):
		code = codes.ResourceExhausted
	case errors.Is(err, queue.ErrPositionOutOfRange):
		code = codes.OutOfRange
	case errors.Is(err, queue.ErrStoreUnavailable):
		code = codes.Unavailable
	case errors.Is(err, queue.ErrInconsistentState):
		code = codes.DataLoss
	default:
		code = codes.Internal
	}
	return status.Error(code, err.Error())
}
