// Package streamio adapts a plain io.ReadSeeker into the narrow
// {Read, Seek, Tell} shape the parsers are written against, plus a
// length-constrained wrapper a caller can use to cap how far a nested
// reader is allowed to read. None of the module's parsers use the wrapper;
// the MP4 parser bounds its reads with each atom's explicit end offset.
package streamio

import (
	"io"

	"github.com/pkg/errors"
)

// ErrConstraintExceeded is returned by Constrained.Read once the declared
// limit has been reached.
var ErrConstraintExceeded = errors.New("streamio: read past declared end offset")

// Source is a random-access byte source with a known end position: the
// single interface every per-format parser in this module is written
// against.
type Source interface {
	io.Reader
	io.Seeker
	// Pos returns the current absolute offset.
	Pos() (int64, error)
	// EndPos returns the absolute offset of the end of the stream.
	EndPos() (int64, error)
}

// Stream wraps an io.ReadSeeker, caching the end position (computed once,
// lazily, via a Seek to io.SeekEnd and back) so repeated EndPos calls
// don't thrash the underlying reader.
type Stream struct {
	r      io.ReadSeeker
	endPos int64
	haveEnd bool
}

// New wraps r.
func New(r io.ReadSeeker) *Stream {
	return &Stream{r: r}
}

func (s *Stream) Read(p []byte) (int, error) { return s.r.Read(p) }

func (s *Stream) Seek(offset int64, whence int) (int64, error) { return s.r.Seek(offset, whence) }

// Pos returns the current absolute offset.
func (s *Stream) Pos() (int64, error) {
	return s.r.Seek(0, io.SeekCurrent)
}

// SeekTo moves to an absolute offset.
func (s *Stream) SeekTo(abs int64) error {
	_, err := s.r.Seek(abs, io.SeekStart)
	return err
}

// SeekBy moves by a relative delta.
func (s *Stream) SeekBy(delta int64) error {
	_, err := s.r.Seek(delta, io.SeekCurrent)
	return err
}

// EndPos returns the absolute offset of the end of the stream, restoring
// the prior position afterwards.
func (s *Stream) EndPos() (int64, error) {
	if s.haveEnd {
		return s.endPos, nil
	}
	cur, err := s.Pos()
	if err != nil {
		return 0, err
	}
	end, err := s.r.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	if _, err := s.r.Seek(cur, io.SeekStart); err != nil {
		return 0, err
	}
	s.endPos = end
	s.haveEnd = true
	return end, nil
}

// Constrained wraps an io.Reader (typically a Stream) so that reads past a
// declared byte limit fail with ErrConstraintExceeded instead of silently
// reading into whatever follows.
type Constrained struct {
	r         io.Reader
	remaining int64
}

// NewConstrained limits reads from r to at most limit bytes.
func NewConstrained(r io.Reader, limit int64) *Constrained {
	return &Constrained{r: r, remaining: limit}
}

func (c *Constrained) Read(p []byte) (int, error) {
	if c.remaining <= 0 {
		return 0, ErrConstraintExceeded
	}
	if int64(len(p)) > c.remaining {
		p = p[:c.remaining]
	}
	n, err := c.r.Read(p)
	c.remaining -= int64(n)
	return n, err
}

// Remaining reports the number of bytes still readable before the
// constraint is hit.
func (c *Constrained) Remaining() int64 { return c.remaining }
