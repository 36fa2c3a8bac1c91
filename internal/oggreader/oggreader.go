// Package oggreader reassembles the logical byte stream carried across a
// sequence of physical Ogg pages into a single io.Reader, so that callers
// don't have to know where one page ends and the next begins.
package oggreader

import (
	"io"

	"github.com/pkg/errors"
)

const (
	pageMagic   = "OggS"
	headerFixed = 4 + 1 + 1 + 8 + 4 + 4 + 4 + 1 // magic..segment count, before the segment table
)

// ErrTruncated is returned when the stream ends inside a page header or
// payload, as opposed to cleanly between pages.
var ErrTruncated = errors.New("oggreader: truncated page")

// ErrInvalidMagic is returned when a page does not start with "OggS".
var ErrInvalidMagic = errors.New("oggreader: bad page magic")

// ErrUnsupportedVersion is returned when the page's structure version
// field is non-zero.
var ErrUnsupportedVersion = errors.New("oggreader: unsupported page version")

// ErrZeroLengthPage is returned for a page that carries no payload at all
// (segment count zero, or every segment length zero).
var ErrZeroLengthPage = errors.New("oggreader: zero-length page")

// Reader reassembles the logical packet-stream byte sequence across Ogg
// pages read from an underlying io.Reader.
type Reader struct {
	r         io.Reader
	remaining int  // bytes left in the current page's payload
	done      bool // true once a clean EOF between pages has been seen
}

// New wraps r, which must be positioned at the start of an Ogg page.
func New(r io.Reader) *Reader {
	return &Reader{r: r}
}

func (o *Reader) Read(p []byte) (int, error) {
	total := 0
	for total < len(p) {
		if o.remaining == 0 {
			if err := o.nextPage(); err != nil {
				if err == io.EOF && total > 0 {
					return total, nil
				}
				return total, err
			}
		}
		n := len(p) - total
		if n > o.remaining {
			n = o.remaining
		}
		read, err := io.ReadFull(o.r, p[total:total+n])
		total += read
		o.remaining -= read
		if err != nil {
			return total, errors.Wrap(ErrTruncated, err.Error())
		}
	}
	return total, nil
}

// nextPage reads the next page's header and arms o.remaining with its
// payload length. Returns io.EOF only if the stream ends cleanly before
// any byte of a new page is read.
func (o *Reader) nextPage() error {
	if o.done {
		return io.EOF
	}
	var magic [4]byte
	n, err := io.ReadFull(o.r, magic[:])
	if n == 0 && err == io.EOF {
		o.done = true
		return io.EOF
	}
	if err != nil {
		return errors.Wrap(ErrTruncated, err.Error())
	}
	if string(magic[:]) != pageMagic {
		return ErrInvalidMagic
	}

	rest := make([]byte, headerFixed-4)
	if _, err := io.ReadFull(o.r, rest); err != nil {
		return errors.Wrap(ErrTruncated, err.Error())
	}
	version := rest[0]
	if version != 0 {
		return ErrUnsupportedVersion
	}
	segCount := int(rest[len(rest)-1])
	if segCount == 0 {
		return ErrZeroLengthPage
	}

	segments := make([]byte, segCount)
	if _, err := io.ReadFull(o.r, segments); err != nil {
		return errors.Wrap(ErrTruncated, err.Error())
	}

	payloadLen := 0
	for _, s := range segments {
		payloadLen += int(s)
	}
	if payloadLen == 0 {
		return ErrZeroLengthPage
	}

	o.remaining = payloadLen
	return nil
}
