package audiometa

import "github.com/pkg/errors"

// Format-not-found sentinels: returned by a per-format parser when the
// bytes at the current position simply aren't that format. The discovery
// driver treats any of these (or anything wrapping one) as "try the next
// parser", never as fatal.
var (
	ErrNotID3v1 = errors.New("audiometa: not an ID3v1 tag")
	ErrNotID3v2 = errors.New("audiometa: not an ID3v2 tag")
	ErrNotAPE   = errors.New("audiometa: not an APE tag")
	ErrNotFLAC  = errors.New("audiometa: not a FLAC stream")
	ErrNotOgg   = errors.New("audiometa: not an Ogg-Vorbis stream")
	ErrNotMP4   = errors.New("audiometa: not an MP4/QuickTime stream")
)

// Per-frame recovery sentinels: encountering one of these while decoding
// a single ID3v2 frame causes the frame to be skipped, not the whole tag
// to be abandoned.
var (
	ErrInvalidTextEncodingByte = errors.New("audiometa: invalid text encoding byte")
	ErrZeroSizeFrame           = errors.New("audiometa: zero-size frame")
	ErrInvalidUTF16BOM         = errors.New("audiometa: invalid UTF-16 byte order mark")
	ErrUnexpectedTextDataEnd   = errors.New("audiometa: text data ended unexpectedly")
	ErrInvalidUserDefinedText  = errors.New("audiometa: invalid user-defined text frame")
	ErrInvalidUTF16Data        = errors.New("audiometa: invalid UTF-16 data")
	ErrMalformedFrameHeader    = errors.New("audiometa: malformed frame header")
)

// ErrInvalidSize is returned by APE's readFromFooter when the footer's
// declared tag_size is smaller than the 32-byte header record it must
// itself contain.
var ErrInvalidSize = errors.New("audiometa: invalid APE tag size")

// ErrDataAtomSizeTooLarge is returned by the MP4 parser when a "data"
// sub-atom's declared size exceeds the remaining space in its containing
// item.
var ErrDataAtomSizeTooLarge = errors.New("audiometa: MP4 data atom size too large")

// ErrTruncated wraps any error that reflects the stream ending inside a
// declared structure (as opposed to a clean EOF at a structure boundary).
var ErrTruncated = errors.New("audiometa: truncated stream")

// isRecoverableFrameError reports whether err is one of the frame-local
// errors that should cause only the current frame to be skipped (rewind
// to the frame's data start, seek size bytes forward), as opposed to
// abandoning the rest of the tag.
func isRecoverableFrameError(err error) bool {
	switch errors.Cause(err) {
	case ErrInvalidTextEncodingByte, ErrZeroSizeFrame, ErrInvalidUTF16BOM,
		ErrUnexpectedTextDataEnd, ErrInvalidUserDefinedText, ErrInvalidUTF16Data:
		return true
	}
	return false
}
