package queue

import (
	"encoding/binary"
	"hash/crc32"
)

// Item value encoding: uvarint(headerLen) | header | payload | crc32c(header|payload).
// The header currently holds be8(enqueued unix ms).

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

func encodeItem(enqueuedMs int64, payload []byte) []byte {
	var header [8]byte
	binary.BigEndian.PutUint64(header[:], uint64(enqueuedMs))

	out := make([]byte, 0, binary.MaxVarintLen64+len(header)+len(payload)+4)
	out = binary.AppendUvarint(out, uint64(len(header)))
	out = append(out, header[:]...)
	out = append(out, payload...)

	crc := crc32.Update(0, castagnoli, header[:])
	crc = crc32.Update(crc, castagnoli, payload)
	return binary.BigEndian.AppendUint32(out, crc)
}

// decodeItem verifies the checksum and returns the enqueue time and a copy of
// the payload.
func decodeItem(b []byte) (int64, []byte, bool) {
	if len(b) < 1+4 {
		return 0, nil, false
	}
	hlen, n := binary.Uvarint(b)
	if n <= 0 || n > len(b)-4 || hlen > uint64(len(b)) {
		return 0, nil, false
	}
	body := b[n : len(b)-4]
	if int(hlen) > len(body) {
		return 0, nil, false
	}
	header, payload := body[:hlen], body[hlen:]
	crc := crc32.Update(0, castagnoli, header)
	crc = crc32.Update(crc, castagnoli, payload)
	if crc != binary.BigEndian.Uint32(b[len(b)-4:]) {
		return 0, nil, false
	}
	var ms int64
	if len(header) >= 8 {
		ms = int64(binary.BigEndian.Uint64(header[:8]))
	}
	return ms, append([]byte{}, payload...), true
}
