package queue

import (
	"bytes"
	"encoding/binary"
)

// Keyspace (byte-wise ordered):
//
//	q/{escaped name}\x00\x01p             position record: be8(write) | be8(read)
//	q/{escaped name}\x00\x01i{seq_be8}    item
//	q/{escaped name}\x00\x01m             max depth override: be8(max)
//
// Names are escaped 0x00 -> 0x00 0xFF and terminated by 0x00 0x01, so no
// encoded name is a prefix of another and one queue's range never contains
// another queue's keys.

const (
	tagItem     byte = 'i'
	tagPosition byte = 'p'
	tagMax      byte = 'm'

	escByte  byte = 0x00
	escZero  byte = 0xFF
	termByte byte = 0x01
)

var keyPrefix = []byte("q/")

func appendBE8(dst []byte, v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return append(dst, b[:]...)
}

// queuePrefix returns q/{escaped name}\x00\x01.
func queuePrefix(name string) []byte {
	k := make([]byte, 0, len(keyPrefix)+len(name)+12)
	k = append(k, keyPrefix...)
	for i := 0; i < len(name); i++ {
		c := name[i]
		k = append(k, c)
		if c == escByte {
			k = append(k, escZero)
		}
	}
	return append(k, escByte, termByte)
}

func positionKey(name string) []byte {
	return append(queuePrefix(name), tagPosition)
}

func maxQueueKey(name string) []byte {
	return append(queuePrefix(name), tagMax)
}

func itemKey(name string, seq uint64) []byte {
	k := append(queuePrefix(name), tagItem)
	return appendBE8(k, seq)
}

// itemBounds returns [lower, upper) covering items with seq in [from, to).
// to == 0 means "through the last possible sequence".
func itemBounds(name string, from, to uint64) ([]byte, []byte) {
	p := queuePrefix(name)
	lower := appendBE8(append(append([]byte(nil), p...), tagItem), from)
	if to == 0 {
		return lower, append(p, tagItem+1)
	}
	return lower, appendBE8(append(p, tagItem), to)
}

// allQueuesBounds covers every key of every queue.
func allQueuesBounds() ([]byte, []byte) {
	upper := append([]byte(nil), keyPrefix...)
	upper[len(upper)-1]++
	return append([]byte(nil), keyPrefix...), upper
}

// parseKey splits a key into its queue name and the remainder after the
// terminator (tag byte onward).
func parseKey(key []byte) (string, []byte, bool) {
	if !bytes.HasPrefix(key, keyPrefix) {
		return "", nil, false
	}
	rest := key[len(keyPrefix):]
	name := make([]byte, 0, len(rest))
	for i := 0; i < len(rest); i++ {
		c := rest[i]
		if c != escByte {
			name = append(name, c)
			continue
		}
		if i+1 >= len(rest) {
			return "", nil, false
		}
		switch rest[i+1] {
		case escZero:
			name = append(name, escByte)
			i++
		case termByte:
			return string(name), rest[i+2:], true
		default:
			return "", nil, false
		}
	}
	return "", nil, false
}

func readBE8(b []byte) uint64 { return binary.BigEndian.Uint64(b) }

// seqFromItemKey extracts the sequence from a key built by itemKey.
func seqFromItemKey(key []byte) uint64 {
	return binary.BigEndian.Uint64(key[len(key)-8:])
}
