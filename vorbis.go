package audiometa

import (
	"encoding/binary"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// ErrVorbisCommentMissingEquals is returned when a Vorbis comment record
// has no "=" separator.
var ErrVorbisCommentMissingEquals = errors.New("audiometa: vorbis comment record has no '='")

// readVorbisCommentBody parses the Vorbis-comment payload shared by FLAC
// and standalone Ogg-Vorbis streams: a vendor string followed by a
// count-prefixed list of "KEY=VALUE" records. Keys are normalised to
// uppercase at store time so FLAC and Ogg tags see one canonical key
// regardless of the encoder's casing.
func readVorbisCommentBody(r io.Reader, blockLen int64, m *MetadataMap) error {
	limited := io.LimitReader(r, blockLen)

	var vendorLen uint32
	if err := binary.Read(limited, binary.LittleEndian, &vendorLen); err != nil {
		return errors.Wrap(ErrTruncated, err.Error())
	}
	if int64(vendorLen) > blockLen-4 {
		return errors.New("audiometa: vorbis vendor length exceeds block")
	}
	// The vendor string is a header field, not a KEY=VALUE comment record;
	// read and discard it rather than storing it as a tag-native key.
	vendor := make([]byte, vendorLen)
	if _, err := io.ReadFull(limited, vendor); err != nil {
		return errors.Wrap(ErrTruncated, err.Error())
	}

	var count uint32
	if err := binary.Read(limited, binary.LittleEndian, &count); err != nil {
		return errors.Wrap(ErrTruncated, err.Error())
	}

	for i := uint32(0); i < count; i++ {
		var recLen uint32
		if err := binary.Read(limited, binary.LittleEndian, &recLen); err != nil {
			return errors.Wrap(ErrTruncated, err.Error())
		}
		rec := make([]byte, recLen)
		if _, err := io.ReadFull(limited, rec); err != nil {
			return errors.Wrap(ErrTruncated, err.Error())
		}
		if !utf8.Valid(rec) {
			continue
		}
		idx := strings.IndexByte(string(rec), '=')
		if idx < 0 {
			return ErrVorbisCommentMissingEquals
		}
		key := strings.ToUpper(string(rec[:idx]))
		value := string(rec[idx+1:])
		m.Append(key, value)
	}
	return nil
}
