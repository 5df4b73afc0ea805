package httpmqv1

import "encoding/json"

// QueueName is a queue name. Names are arbitrary bytes, so on the wire they
// travel base64 encoded rather than as JSON strings, which cannot hold
// invalid UTF-8.
type QueueName string

func (n QueueName) MarshalJSON() ([]byte, error) { return json.Marshal([]byte(n)) }

func (n *QueueName) UnmarshalJSON(b []byte) error {
	var raw []byte
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*n = QueueName(raw)
	return nil
}

// Item is one queue entry.
type Item struct {
	Seq          uint64 `json:"seq"`
	Payload      []byte `json:"payload"`
	EnqueuedAtMs int64  `json:"enqueued_at_ms"`
}

// QueueStatus reports the positions of one queue.
type QueueStatus struct {
	Name     QueueName `json:"name"`
	Write    uint64    `json:"write"`
	Read     uint64    `json:"read"`
	Depth    uint64    `json:"depth"`
	MaxQueue uint64    `json:"max_queue"`
}

type PutRequest struct {
	Name    QueueName `json:"name"`
	Payload []byte    `json:"payload"`
}

type PutResponse struct {
	Seq uint64 `json:"seq"`
}

type GetRequest struct {
	Name QueueName `json:"name"`
}

// GetResponse has Found == false when the queue is empty.
type GetResponse struct {
	Found bool  `json:"found"`
	Item  *Item `json:"item,omitempty"`
}

type StatusRequest struct {
	Name QueueName `json:"name"`
}

type ResetRequest struct {
	Name QueueName `json:"name"`
}

type ResetResponse struct{}

type SetMaxQueueRequest struct {
	Name QueueName `json:"name"`
	Max  uint64    `json:"max"`
}

type SetMaxQueueResponse struct{}

type ViewRequest struct {
	Name QueueName `json:"name"`
	Seq  uint64    `json:"seq"`
}

type ListRequest struct{}

type ListResponse struct {
	Queues []QueueStatus `json:"queues"`
}

// ItemsRequest browses undelivered items; Filter is a CEL expression.
type ItemsRequest struct {
	Name   QueueName `json:"name"`
	From   uint64    `json:"from,omitempty"`
	Limit  int32     `json:"limit,omitempty"`
	Filter string    `json:"filter,omitempty"`
}

type ItemsResponse struct {
	Items []Item `json:"items"`
}
