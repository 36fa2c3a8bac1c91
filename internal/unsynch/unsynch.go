// Package unsynch implements ID3v2's unsynchronisation scheme: every
// 0xFF byte followed by a byte with its top three bits set is escaped on
// the wire as 0xFF 0x00 <byte>, so that the encoded stream never contains
// what looks like an MPEG frame sync. Decoding reverses that escaping.
package unsynch

import "io"

// DecodeInPlace removes the 0x00 that follows every 0xFF in buf, returning
// the truncated slice (same backing array, shorter length).
func DecodeInPlace(buf []byte) []byte {
	out := buf[:0]
	prevFF := false
	for _, b := range buf {
		if prevFF && b == 0x00 {
			prevFF = false
			continue
		}
		out = append(out, b)
		prevFF = b == 0xFF
	}
	return out
}

// Reader is a streaming wrapper around an io.Reader that reverses
// unsynchronisation on the fly, one byte at a time. When Enabled is false
// it is a transparent passthrough.
//
// The 0xFF 0x00 0x00 edge case: the previous-byte tracker updates on
// every byte read, including the skipped 0x00, not just on the ones that
// are emitted, so that 0xFF 0x00 0x00 decodes to 0xFF 0x00 rather than
// 0xFF.
type Reader struct {
	inner   io.Reader
	Enabled bool
	prevFF  bool
	byteBuf [1]byte
}

// NewReader wraps inner. If enabled is false, Read is a plain passthrough.
func NewReader(inner io.Reader, enabled bool) *Reader {
	return &Reader{inner: inner, Enabled: enabled}
}

func (r *Reader) Read(p []byte) (int, error) {
	i := 0
	for i < len(p) {
		n, err := r.inner.Read(r.byteBuf[:])
		if n == 0 {
			if err != nil {
				return i, err
			}
			continue
		}
		b := r.byteBuf[0]
		if r.Enabled && r.prevFF && b == 0x00 {
			r.prevFF = false
			continue
		}
		p[i] = b
		i++
		r.prevFF = b == 0xFF
		if err != nil {
			return i, err
		}
	}
	return i, nil
}
