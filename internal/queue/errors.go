package queue

import "errors"

// An empty queue is not an error: Dequeue reports it with ok == false.
var (
	// ErrStoreUnavailable wraps failures of the underlying store. The
	// operation had no effect and may be retried.
	ErrStoreUnavailable = errors.New("queue: store unavailable")
	// ErrInconsistentState means persisted data contradicts the position
	// record, e.g. an item below write_pos is missing or fails its checksum.
	ErrInconsistentState = errors.New("queue: inconsistent state")
	// ErrInvalidQueueName rejects empty or oversized names before any store access.
	ErrInvalidQueueName = errors.New("queue: invalid queue name")
	// ErrSequenceOverflow refuses an enqueue when write_pos is at its maximum.
	ErrSequenceOverflow = errors.New("queue: sequence overflow")
	// ErrQueueFull refuses an enqueue when depth has reached the queue's max depth.
	ErrQueueFull = errors.New("queue: queue full")
	// ErrInvalidMaxQueue rejects a max depth of zero, above the configured
	// ceiling, or below the current depth.
	ErrInvalidMaxQueue = errors.New("queue: invalid max queue")
	// ErrPositionOutOfRange is returned by View for a sequence outside [read, write).
	ErrPositionOutOfRange = errors.New("queue: position out of range")
	// ErrInvalidFilter is returned when a browse filter does not compile.
	ErrInvalidFilter = errors.New("queue: invalid filter")
)
