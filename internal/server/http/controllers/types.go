package controllers

import (
	"unicode/utf8"

	"github.com/rzbill/httpmq/internal/queue"
)

// Request/response types for the JSON API.

// queueRef names a queue in a request body. NameB64, when set, wins over
// Name and is how clients address names that are not valid UTF-8.
type queueRef struct {
	Name    string `json:"name"`
	NameB64 []byte `json:"name_b64,omitempty"`
}

func (q queueRef) queueName() string {
	if q.NameB64 != nil {
		return string(q.NameB64)
	}
	return q.Name
}

// putReq enqueues payload (base64 in JSON) on name.
type putReq struct {
	queueRef
	Payload []byte `json:"payload"`
}

type putResp struct {
	Seq uint64 `json:"seq"`
}

// nameReq carries a queue name for get and reset.
type nameReq struct {
	queueRef
}

type maxQueueReq struct {
	queueRef
	Max uint64 `json:"max"`
}

type itemJSON struct {
	Seq          uint64 `json:"seq"`
	Payload      []byte `json:"payload"`
	EnqueuedAtMs int64  `json:"enqueued_at_ms"`
}

type getResp struct {
	Found bool      `json:"found"`
	Item  *itemJSON `json:"item,omitempty"`
}

// statusJSON carries NameB64 only for names that are not valid UTF-8; Name
// is lossy for those.
type statusJSON struct {
	Name     string `json:"name"`
	NameB64  []byte `json:"name_b64,omitempty"`
	Write    uint64 `json:"write"`
	Read     uint64 `json:"read"`
	Depth    uint64 `json:"depth"`
	MaxQueue uint64 `json:"max_queue"`
}

// legacyStatusJSON is the opt=status_json body.
type legacyStatusJSON struct {
	Name     string `json:"name"`
	MaxQueue uint64 `json:"maxqueue"`
	PutPos   uint64 `json:"putpos"`
	PutLap   int    `json:"putlap"`
	GetPos   uint64 `json:"getpos"`
	GetLap   int    `json:"getlap"`
	Unread   uint64 `json:"unread"`
}

func toItemJSON(it queue.Item) itemJSON {
	return itemJSON{Seq: it.Seq, Payload: it.Payload, EnqueuedAtMs: it.EnqueuedAt.UnixMilli()}
}

func toStatusJSON(st queue.Status) statusJSON {
	out := statusJSON{Name: st.Name, Write: st.Write, Read: st.Read, Depth: st.Depth, MaxQueue: st.MaxQueue}
	if !utf8.ValidString(st.Name) {
		out.NameB64 = []byte(st.Name)
	}
	return out
}
