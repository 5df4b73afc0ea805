// Package id generates 128-bit identifiers that sort by creation time.
//
// IDs are 16 bytes: an 8-byte big-endian millisecond timestamp followed by an
// 8-byte sequence that restarts every millisecond, so byte order equals
// generation order within one process. httpmq uses them as request ids on
// both transports.
//
//	g := id.NewGenerator()
//	rid := g.Next().String()
package id
