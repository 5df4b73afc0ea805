package controllers

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/rzbill/httpmq/internal/queue"
	queuesvc "github.com/rzbill/httpmq/internal/services/queues"
)

func TestStatusFromError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{context.DeadlineExceeded, http.StatusRequestTimeout},
		{fmt.Errorf("%w: empty", queue.ErrInvalidQueueName), http.StatusBadRequest},
		{queue.ErrInvalidFilter, http.StatusBadRequest},
		{queuesvc.ErrPayloadTooLarge, http.StatusRequestEntityTooLarge},
		{queue.ErrQueueFull, http.StatusTooManyRequests},
		{queue.ErrSequenceOverflow, http.StatusInsufficientStorage},
		{queue.ErrPositionOutOfRange, http.StatusNotFound},
		{fmt.Errorf("%w: commit: %w", queue.ErrStoreUnavailable, fmt.Errorf("io")), http.StatusServiceUnavailable},
		{queue.ErrInconsistentState, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFromError(tt.err); got != tt.want {
			t.Errorf("statusFromError(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestParseHelpers(t *testing.T) {
	if parseLimit("") != 0 || parseLimit("-3") != 0 || parseLimit("25") != 25 {
		t.Fatalf("parseLimit")
	}
	if _, ok := parseUint(""); ok {
		t.Fatalf("empty uint accepted")
	}
	if n, ok := parseUint("18446744073709551615"); !ok || n != ^uint64(0) {
		t.Fatalf("max uint rejected")
	}
}
