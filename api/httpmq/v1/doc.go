// Package httpmqv1 defines the httpmq.v1.Queues gRPC service: its messages,
// service descriptor, client and the JSON codec the service is carried in.
package httpmqv1
