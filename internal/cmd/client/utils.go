package client

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"os"
	"unicode/utf8"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	transports "github.com/rzbill/httpmq/internal/cmd/client/transports"
)

// grpcAddrFromEnv returns the gRPC server address from HTTPMQ_GRPC or a default.
func grpcAddrFromEnv() string {
	if addr := os.Getenv("HTTPMQ_GRPC"); addr != "" {
		return addr
	}
	return "127.0.0.1:50051"
}

// dialGRPCContext creates a client for the httpmq gRPC endpoint with insecure
// transport for local/dev. The connection is established lazily on first call.
func dialGRPCContext(_ context.Context) (*grpc.ClientConn, error) {
	return grpc.NewClient(grpcAddrFromEnv(), grpc.WithTransportCredentials(insecure.NewCredentials()))
}

func getTransport() transports.QueuesTransport {
	return transports.NewGrpcTransport(dialGRPCContext)
}

// decodedItem returns a map with seq, enqueued_at_ms and one of payload_json,
// payload_text, or payload_b64.
func decodedItem(it transports.Item) map[string]any {
	out := map[string]any{
		"seq":            it.Seq,
		"enqueued_at_ms": it.EnqueuedAtMs,
	}
	payload := it.Payload
	if len(payload) > 0 && (payload[0] == '{' || payload[0] == '[') {
		var v any
		if json.Unmarshal(payload, &v) == nil {
			out["payload_json"] = v
			return out
		}
	}
	if utf8.Valid(payload) {
		out["payload_text"] = string(payload)
		return out
	}
	out["payload_b64"] = base64.StdEncoding.EncodeToString(payload)
	return out
}
