package id

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"math"
	"sync"
	"time"
)

// ID is a 16-byte, byte-wise sortable identifier:
// [8 bytes unix ms][8 bytes per-ms sequence], both big-endian.
type ID [16]byte

// ErrMalformed is returned by Parse for input that is not 32 hex digits.
var ErrMalformed = errors.New("id: malformed")

// Time returns the millisecond timestamp embedded in the ID.
func (i ID) Time() time.Time {
	return time.UnixMilli(int64(binary.BigEndian.Uint64(i[:8])))
}

// String returns the lowercase hex form.
func (i ID) String() string { return hex.EncodeToString(i[:]) }

// Compare returns -1, 0 or 1 comparing i and other byte-wise.
func (i ID) Compare(other ID) int {
	for k := range i {
		switch {
		case i[k] < other[k]:
			return -1
		case i[k] > other[k]:
			return 1
		}
	}
	return 0
}

// Parse decodes the output of String.
func Parse(s string) (ID, error) {
	var out ID
	if len(s) != 2*len(out) {
		return out, ErrMalformed
	}
	if _, err := hex.Decode(out[:], []byte(s)); err != nil {
		return out, ErrMalformed
	}
	return out, nil
}

// Generator hands out strictly increasing IDs. The zero value is not usable;
// call NewGenerator.
type Generator struct {
	now func() int64

	mu     sync.Mutex
	lastMs int64
	seq    uint64
}

// NewGenerator returns a Generator reading the wall clock.
func NewGenerator() *Generator {
	return &Generator{now: func() int64 { return time.Now().UnixMilli() }}
}

// Next returns a new ID. A clock that moves backwards is pinned to the last
// millisecond seen; an exhausted sequence waits for the next millisecond.
func (g *Generator) Next() ID {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.now()
	if ms < g.lastMs {
		ms = g.lastMs
	}
	switch {
	case ms > g.lastMs:
		g.seq = 0
	case g.seq == math.MaxUint64:
		for ms <= g.lastMs {
			time.Sleep(time.Millisecond / 8)
			ms = g.now()
		}
		g.seq = 0
	default:
		g.seq++
	}
	g.lastMs = ms

	var out ID
	binary.BigEndian.PutUint64(out[:8], uint64(ms))
	binary.BigEndian.PutUint64(out[8:], g.seq)
	return out
}

var defaultGen = NewGenerator()

// NewRequestID returns the string form of a fresh ID from a process-wide
// generator. Used to correlate log lines and responses for one request.
func NewRequestID() string { return defaultGen.Next().String() }
