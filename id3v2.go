package audiometa

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/squeek502/audiometa-sub000/internal/streamio"
	"github.com/squeek502/audiometa-sub000/internal/synchsafe"
	"github.com/squeek502/audiometa-sub000/internal/unsynch"
)

const id3v2HeaderSize = 10

// id3v2FrameFlags holds the two frame-level format flags this parser acts
// on; the message-preservation flags (tag/file alter, read-only) are
// inert for a read-only parser and aren't tracked.
type id3v2FrameFlags struct {
	unsynch             bool
	dataLengthIndicator bool
}

// readID3v2 reads an ID3v2.{2,3,4} tag with the stream positioned at its
// start, the "ID3" magic.
func readID3v2(s streamio.Source) (TypedMetadata, error) {
	start, err := s.Pos()
	if err != nil {
		return TypedMetadata{}, err
	}

	hdr := make([]byte, id3v2HeaderSize)
	if _, err := io.ReadFull(s, hdr); err != nil {
		return TypedMetadata{}, ErrNotID3v2
	}
	if string(hdr[0:3]) != "ID3" {
		return TypedMetadata{}, ErrNotID3v2
	}
	major := int(hdr[3])
	revision := int(hdr[4])
	if major != 2 && major != 3 && major != 4 {
		return TypedMetadata{}, ErrNotID3v2
	}
	flagsByte := hdr[5]
	size := int64(synchsafe.Decode[uint32](hdr[6:10]))

	header := ID3v2TagHeader{
		MajorVersion: major,
		Revision:     revision,
		Flags:        flagsByte,
		Size:         int(size),
	}

	bodyStart := start + id3v2HeaderSize
	tagEnd := bodyStart + size

	// v2.2 compression is not implemented; the whole body is skipped
	// rather than attempting to decode frames out of compressed bytes.
	if major == 2 && flagsByte&0x40 != 0 {
		if _, err := s.Seek(tagEnd, io.SeekStart); err != nil {
			return TypedMetadata{}, err
		}
		return TypedMetadata{
			Kind: KindID3v2,
			Metadata: Metadata{
				Map:         NewMetadataMap(),
				StartOffset: uint64(start),
				EndOffset:   uint64(tagEnd),
			},
			ID3v2Header: &header,
		}, nil
	}

	if major >= 3 && flagsByte&0x40 != 0 {
		if err := skipID3v2ExtendedHeader(s, major); err != nil {
			return TypedMetadata{}, err
		}
	}

	// Whole-tag unsynchronisation only applies below v2.4; v2.4 reverses
	// unsynchronisation per frame instead (handled in readID3v2FrameBody).
	fullTagUnsynch := flagsByte&0x80 != 0 && major < 4
	var fr io.Reader = s
	if fullTagUnsynch {
		fr = unsynch.NewReader(s, true)
	}

	m := NewMetadataMap()
	comments := NewFullTextMap()
	lyrics := NewFullTextMap()

	for {
		pos, err := s.Pos()
		if err != nil {
			return TypedMetadata{}, err
		}
		minHeader := int64(6)
		if major >= 3 {
			minHeader = 10
		}
		if pos+minHeader > tagEnd {
			break
		}

		id, frameSize, flags, err := readID3v2FrameHeader(s, fr, major, tagEnd)
		if err != nil {
			if errors.Cause(err) == ErrMalformedFrameHeader {
				break
			}
			return TypedMetadata{}, err
		}
		if id == "" {
			// All-zero frame id: padding reached.
			break
		}

		dataStart, err := s.Pos()
		if err != nil {
			return TypedMetadata{}, err
		}
		if dataStart+frameSize > tagEnd {
			break
		}

		body, err := readID3v2FrameBody(s, fr, major, frameSize, flags)
		if err != nil {
			if isRecoverableFrameError(err) {
				continue
			}
			return TypedMetadata{}, err
		}

		if err := decodeID3v2Frame(id, body, m, comments, lyrics); err != nil {
			if isRecoverableFrameError(err) {
				continue
			}
			return TypedMetadata{}, err
		}
	}

	pos, err := s.Pos()
	if err != nil {
		return TypedMetadata{}, err
	}
	if pos != tagEnd {
		if _, err := s.Seek(tagEnd, io.SeekStart); err != nil {
			return TypedMetadata{}, err
		}
	}

	end := tagEnd
	if major == 4 && flagsByte&0x10 != 0 {
		if err := skipID3v2Footer(s); err != nil {
			return TypedMetadata{}, err
		}
		end = tagEnd + id3v2HeaderSize
	}

	return TypedMetadata{
		Kind: KindID3v2,
		Metadata: Metadata{
			Map:         m,
			StartOffset: uint64(start),
			EndOffset:   uint64(end),
		},
		ID3v2Header:          &header,
		Comments:             comments,
		UnsynchronizedLyrics: lyrics,
	}, nil
}

// readID3v2FromFooter locates a v2.4 tag via its trailing 10-byte "3DI"
// footer block when the stream is positioned at end-of-footer (typically
// EOF): seeks back over the footer, recovers the tag size, seeks to the
// tag's head, and re-parses it there.
func readID3v2FromFooter(s streamio.Source) (TypedMetadata, error) {
	footerEnd, err := s.Pos()
	if err != nil {
		return TypedMetadata{}, err
	}
	if footerEnd < id3v2HeaderSize {
		return TypedMetadata{}, ErrNotID3v2
	}
	if _, err := s.Seek(footerEnd-id3v2HeaderSize, io.SeekStart); err != nil {
		return TypedMetadata{}, err
	}
	buf := make([]byte, id3v2HeaderSize)
	if _, err := io.ReadFull(s, buf); err != nil {
		return TypedMetadata{}, errors.Wrap(ErrTruncated, err.Error())
	}
	if string(buf[0:3]) != "3DI" {
		return TypedMetadata{}, ErrNotID3v2
	}
	size := int64(synchsafe.Decode[uint32](buf[6:10]))

	tagStart := footerEnd - id3v2HeaderSize - size - id3v2HeaderSize
	if tagStart < 0 {
		return TypedMetadata{}, ErrInvalidSize
	}
	if _, err := s.Seek(tagStart, io.SeekStart); err != nil {
		return TypedMetadata{}, err
	}
	return readID3v2(s)
}

func skipID3v2ExtendedHeader(s streamio.Source, major int) error {
	buf := make([]byte, 4)
	if _, err := io.ReadFull(s, buf); err != nil {
		return errors.Wrap(ErrTruncated, err.Error())
	}
	if major == 3 {
		// v2.3 extended size is plain big-endian and excludes the 4 bytes
		// that hold it.
		extSize := int64(binary.BigEndian.Uint32(buf))
		_, err := s.Seek(extSize, io.SeekCurrent)
		return err
	}
	// v2.4 extended size is synchsafe and counts its own 4 bytes.
	extSize := int64(synchsafe.Decode[uint32](buf))
	if extSize < 4 {
		return errors.Wrap(ErrMalformedFrameHeader, "extended header size too small")
	}
	_, err := s.Seek(extSize-4, io.SeekCurrent)
	return err
}

func skipID3v2Footer(s streamio.Source) error {
	buf := make([]byte, id3v2HeaderSize)
	if _, err := io.ReadFull(s, buf); err != nil {
		return errors.Wrap(ErrTruncated, err.Error())
	}
	if string(buf[0:3]) != "3DI" {
		return errors.Wrap(ErrMalformedFrameHeader, "missing 3DI footer identifier")
	}
	return nil
}

// readID3v2FrameHeader reads one frame header, dispatching on major
// version. It returns id == "" (with a nil error) when the frame id bytes
// are all zero, the padding/end-of-tag signal the caller breaks on.
func readID3v2FrameHeader(s streamio.Source, fr io.Reader, major int, tagEnd int64) (id string, size int64, flags *id3v2FrameFlags, err error) {
	if major == 2 {
		buf := make([]byte, 6)
		if _, err = io.ReadFull(fr, buf); err != nil {
			return "", 0, nil, errors.Wrap(ErrTruncated, err.Error())
		}
		if isAllZero(buf[:3]) {
			return "", 0, nil, nil
		}
		if !isValidFrameID(buf[:3]) {
			return "", 0, nil, ErrMalformedFrameHeader
		}
		size = int64(buf[3])<<16 | int64(buf[4])<<8 | int64(buf[5])
		return string(buf[:3]), size, nil, nil
	}

	idBuf := make([]byte, 4)
	if _, err = io.ReadFull(fr, idBuf); err != nil {
		return "", 0, nil, errors.Wrap(ErrTruncated, err.Error())
	}
	if isAllZero(idBuf) {
		return "", 0, nil, nil
	}

	if major == 3 && idBuf[3] == 0x00 {
		// iTunes workaround: a v2.3 frame whose 4th id byte is NUL is
		// actually shaped like a v2.2 frame (3-byte id, 3-byte size).
		if !isValidFrameID(idBuf[:3]) {
			return "", 0, nil, ErrMalformedFrameHeader
		}
		sizeBuf := make([]byte, 3)
		if _, err = io.ReadFull(fr, sizeBuf); err != nil {
			return "", 0, nil, errors.Wrap(ErrTruncated, err.Error())
		}
		size = int64(sizeBuf[0])<<16 | int64(sizeBuf[1])<<8 | int64(sizeBuf[2])
		return string(idBuf[:3]), size, nil, nil
	}

	if !isValidFrameID(idBuf) {
		return "", 0, nil, ErrMalformedFrameHeader
	}

	sizeBuf := make([]byte, 4)
	if _, err = io.ReadFull(fr, sizeBuf); err != nil {
		return "", 0, nil, errors.Wrap(ErrTruncated, err.Error())
	}
	flagBuf := make([]byte, 2)
	if _, err = io.ReadFull(fr, flagBuf); err != nil {
		return "", 0, nil, errors.Wrap(ErrTruncated, err.Error())
	}
	fl := &id3v2FrameFlags{
		dataLengthIndicator: flagBuf[1]&0x01 != 0,
		unsynch:             flagBuf[1]&0x02 != 0,
	}

	if major == 3 {
		return string(idBuf), int64(binary.BigEndian.Uint32(sizeBuf)), fl, nil
	}

	// major == 4: real-world encoders frequently write non-synchsafe
	// sizes despite the format requiring synchsafe; probe both
	// interpretations against what follows and prefer whichever lands on
	// something that looks like the next frame (or padding/end).
	synchsafeSize := int64(synchsafe.Decode[uint32](sizeBuf))
	rawSize := int64(binary.BigEndian.Uint32(sizeBuf))
	size = synchsafeSize
	if synchsafeSize != rawSize {
		if dataStart, perr := s.Pos(); perr == nil {
			if looksLikeNextFrameOrEnd(s, dataStart+synchsafeSize, tagEnd) {
				size = synchsafeSize
			} else if looksLikeNextFrameOrEnd(s, dataStart+rawSize, tagEnd) {
				size = rawSize
			}
		}
	}
	return string(idBuf), size, fl, nil
}

// looksLikeNextFrameOrEnd peeks at candidate (restoring the stream
// position afterwards) and reports whether it plausibly starts the next
// frame, padding, or the tag's end.
func looksLikeNextFrameOrEnd(s streamio.Source, candidate, tagEnd int64) bool {
	if candidate < 0 {
		return false
	}
	if candidate >= tagEnd {
		return true
	}
	cur, err := s.Pos()
	if err != nil {
		return false
	}
	defer s.Seek(cur, io.SeekStart)

	if _, err := s.Seek(candidate, io.SeekStart); err != nil {
		return false
	}
	buf := make([]byte, 4)
	n, err := io.ReadFull(s, buf)
	if err != nil {
		return n < 4 && (errors.Cause(err) == io.ErrUnexpectedEOF || errors.Cause(err) == io.EOF)
	}
	return isAllZero(buf) || isValidFrameID(buf)
}

// readID3v2FrameBody reads a frame's declared-size body, consuming (and
// discarding) the optional 4-byte data-length indicator first, and
// reversing per-frame unsynchronisation for v2.4 frames that declare it.
func readID3v2FrameBody(s streamio.Source, fr io.Reader, major int, size int64, flags *id3v2FrameFlags) ([]byte, error) {
	if flags != nil && flags.dataLengthIndicator {
		dli := make([]byte, 4)
		if _, err := io.ReadFull(fr, dli); err != nil {
			return nil, errors.Wrap(ErrTruncated, err.Error())
		}
		size -= 4
	}
	if size <= 0 {
		return nil, ErrZeroSizeFrame
	}

	buf := make([]byte, size)
	if flags != nil && flags.unsynch && major == 4 {
		if _, err := io.ReadFull(s, buf); err != nil {
			return nil, errors.Wrap(ErrTruncated, err.Error())
		}
		return unsynch.DecodeInPlace(buf), nil
	}
	if _, err := io.ReadFull(fr, buf); err != nil {
		return nil, errors.Wrap(ErrTruncated, err.Error())
	}
	return buf, nil
}

func isAllZero(b []byte) bool {
	for _, x := range b {
		if x != 0 {
			return false
		}
	}
	return true
}

func isValidFrameID(b []byte) bool {
	for _, x := range b {
		if (x < 'A' || x > 'Z') && (x < '0' || x > '9') {
			return false
		}
	}
	return true
}
