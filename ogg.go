package audiometa

import (
	"io"

	"github.com/pkg/errors"

	"github.com/squeek502/audiometa-sub000/internal/oggreader"
	"github.com/squeek502/audiometa-sub000/internal/streamio"
)

const (
	vorbisIDPacketType      = 0x01
	vorbisCommentPacketType = 0x03
	vorbisMagic             = "vorbis"
	vorbisIDHeaderParamsLen = 22
)

// readOggVorbis reads a standalone Ogg-Vorbis comment packet. The logical
// bitstream is reassembled across physical pages by the Ogg page reader,
// which transparently handles a comment packet that spans more than one
// page.
func readOggVorbis(s streamio.Source) (TypedMetadata, error) {
	start, err := s.Pos()
	if err != nil {
		return TypedMetadata{}, err
	}

	or := oggreader.New(s)

	idHeader := make([]byte, 1+len(vorbisMagic))
	if _, err := io.ReadFull(or, idHeader); err != nil {
		return TypedMetadata{}, translateOggErr(err)
	}
	if idHeader[0] != vorbisIDPacketType || string(idHeader[1:]) != vorbisMagic {
		return TypedMetadata{}, ErrNotOgg
	}
	// Skip the 22 bytes of identification-header parameters, then verify
	// the framing bit.
	rest := make([]byte, vorbisIDHeaderParamsLen+1)
	if _, err := io.ReadFull(or, rest); err != nil {
		return TypedMetadata{}, translateOggErr(err)
	}
	if rest[len(rest)-1]&0x1 == 0 {
		return TypedMetadata{}, errors.New("audiometa: invalid vorbis identification header framing bit")
	}

	commentHeader := make([]byte, 1+len(vorbisMagic))
	if _, err := io.ReadFull(or, commentHeader); err != nil {
		return TypedMetadata{}, translateOggErr(err)
	}
	if commentHeader[0] != vorbisCommentPacketType || string(commentHeader[1:]) != vorbisMagic {
		return TypedMetadata{}, ErrNotOgg
	}

	m := NewMetadataMap()
	// The comment body's own length-prefixed fields bound how much we
	// read; pass a generous cap (the Ogg reader itself enforces the real
	// page-backed boundaries and truncation errors).
	if err := readVorbisCommentBody(or, 1<<31-1, m); err != nil {
		return TypedMetadata{}, err
	}

	framing := make([]byte, 1)
	if _, err := io.ReadFull(or, framing); err != nil {
		return TypedMetadata{}, translateOggErr(err)
	}
	if framing[0]&0x1 == 0 {
		return TypedMetadata{}, errors.New("audiometa: invalid vorbis comment header framing bit")
	}

	end, err := s.Pos()
	if err != nil {
		return TypedMetadata{}, err
	}

	return TypedMetadata{
		Kind: KindVorbis,
		Metadata: Metadata{
			Map:         m,
			StartOffset: uint64(start),
			EndOffset:   uint64(end),
		},
	}, nil
}

func translateOggErr(err error) error {
	switch errors.Cause(err) {
	case oggreader.ErrInvalidMagic, oggreader.ErrUnsupportedVersion, oggreader.ErrZeroLengthPage:
		return ErrNotOgg
	}
	if errors.Cause(err) == oggreader.ErrTruncated || errors.Is(err, oggreader.ErrTruncated) {
		return errors.Wrap(ErrTruncated, err.Error())
	}
	return err
}
