// Package client provides the `httpmq queue` command-line client.
//
// The CLI talks to the httpmq gRPC endpoint to perform queue operations from
// a terminal. It is primarily intended for developers and operators.
//
// # Address configuration
//
// The gRPC address is read from the HTTPMQ_GRPC environment variable
// (default 127.0.0.1:50051).
//
// Usage
//
//	httpmq queue put --name jobs --data '{"id":1}'
//	echo hello | httpmq queue put --name jobs --file -
//	httpmq queue get --name jobs --count 10
//	httpmq queue status --name jobs
//	httpmq queue view --name jobs --seq 3
//	httpmq queue items --name jobs --filter 'json.id > 0' --limit 20
//	httpmq queue maxqueue --name jobs --max 1000
//	httpmq queue reset --name jobs --confirm
//	httpmq queue list
//
// Notes
//
//   - Every command prints one JSON object per line. Payloads are shown as
//     payload_json when they parse as JSON, payload_text when they are valid
//     UTF-8 and payload_b64 otherwise.
//   - get stops at the first empty reply and prints {"found":false}.
package client
