package audiometa

import (
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/squeek502/audiometa-sub000/internal/streamio"
	"github.com/squeek502/audiometa-sub000/internal/textenc"
)

const id3v1TagSize = 128

// readID3v1 expects the stream to be positioned at the end of the region
// it should scan (typically, but not necessarily, end-of-file: the
// discovery driver moves this inward as outer trailers are accepted). It
// seeks back 128 bytes from that position itself, verifies the "TAG"
// magic, and extracts the fixed-offset Latin-1 fields. Returns
// ErrNotID3v1 if fewer than 128 bytes precede that position or the magic
// doesn't match.
func readID3v1(s streamio.Source) (TypedMetadata, error) {
	end, err := s.Pos()
	if err != nil {
		return TypedMetadata{}, err
	}
	if end < id3v1TagSize {
		return TypedMetadata{}, ErrNotID3v1
	}
	start := end - id3v1TagSize
	if _, err := s.Seek(start, io.SeekStart); err != nil {
		return TypedMetadata{}, err
	}

	buf := make([]byte, id3v1TagSize)
	if _, err := io.ReadFull(s, buf); err != nil {
		return TypedMetadata{}, errors.Wrap(ErrTruncated, err.Error())
	}
	if string(buf[0:3]) != "TAG" {
		return TypedMetadata{}, ErrNotID3v1
	}

	m := NewMetadataMap()
	putLatin1Field := func(key string, b []byte) {
		s := strings.Trim(textenc.DecodeLatin1(b), " \x00")
		if s == "" {
			return
		}
		m.Append(key, s)
	}

	putLatin1Field("title", buf[3:33])
	putLatin1Field("artist", buf[33:63])
	putLatin1Field("album", buf[63:93])
	putLatin1Field("date", buf[93:97])

	// ID3v1.1: byte 125 == 0 means byte 126 is a track number and the
	// comment is truncated to 28 bytes (bytes 97..125).
	if buf[125] == 0 && buf[126] != 0 {
		putLatin1Field("comment", buf[97:125])
		m.Append("track", strconv.Itoa(int(buf[126])))
	} else {
		putLatin1Field("comment", buf[97:127])
	}

	if genre, ok := id3v1GenreName(buf[127]); ok {
		m.Append("genre", genre)
	}

	return TypedMetadata{
		Kind: KindID3v1,
		Metadata: Metadata{
			Map:         m,
			StartOffset: uint64(start),
			EndOffset:   uint64(end),
		},
	}, nil
}
