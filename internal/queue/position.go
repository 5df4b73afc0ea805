package queue

import (
	"encoding/binary"
	"fmt"
)

const positionSize = 16

// Position is the persisted cursor pair of one queue. Write is the sequence
// the next Enqueue receives; Read is the sequence the next Dequeue returns.
type Position struct {
	Write uint64
	Read  uint64
}

// Depth is the number of undelivered items.
func (p Position) Depth() uint64 { return p.Write - p.Read }

// Empty reports whether every written item has been delivered.
func (p Position) Empty() bool { return p.Read == p.Write }

func (p Position) encode() []byte {
	b := make([]byte, positionSize)
	binary.BigEndian.PutUint64(b[:8], p.Write)
	binary.BigEndian.PutUint64(b[8:], p.Read)
	return b
}

func decodePosition(b []byte) (Position, error) {
	if len(b) != positionSize {
		return Position{}, fmt.Errorf("%w: position record is %d bytes", ErrInconsistentState, len(b))
	}
	p := Position{
		Write: binary.BigEndian.Uint64(b[:8]),
		Read:  binary.BigEndian.Uint64(b[8:]),
	}
	if p.Read > p.Write {
		return Position{}, fmt.Errorf("%w: read %d ahead of write %d", ErrInconsistentState, p.Read, p.Write)
	}
	return p, nil
}
