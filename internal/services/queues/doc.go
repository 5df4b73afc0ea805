// Package queues is the service layer between the transports and the queue
// engine. It enforces payload limits, emits OpenTelemetry spans, records
// operation metrics and logs failures with the request's context.
package queues
