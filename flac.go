package audiometa

import (
	"io"

	"github.com/pkg/errors"

	"github.com/squeek502/audiometa-sub000/internal/streamio"
)

const (
	flacVorbisCommentBlockType = 4
	flacLastBlockFlag          = 1 << 7
)

// readFLAC verifies the "fLaC" stream marker and walks metadata blocks,
// decoding the VORBIS_COMMENT block via the shared Vorbis-comment body
// parser and skipping everything else, stopping once the last-block flag
// is set.
func readFLAC(s streamio.Source) (TypedMetadata, error) {
	start, err := s.Pos()
	if err != nil {
		return TypedMetadata{}, err
	}
	magic := make([]byte, 4)
	if _, err := io.ReadFull(s, magic); err != nil {
		return TypedMetadata{}, ErrNotFLAC
	}
	if string(magic) != "fLaC" {
		return TypedMetadata{}, ErrNotFLAC
	}

	m := NewMetadataMap()
	for {
		last, err := readFLACMetadataBlock(s, m)
		if err != nil {
			return TypedMetadata{}, err
		}
		if last {
			break
		}
	}

	end, err := s.Pos()
	if err != nil {
		return TypedMetadata{}, err
	}
	return TypedMetadata{
		Kind: KindFLAC,
		Metadata: Metadata{
			Map:         m,
			StartOffset: uint64(start),
			EndOffset:   uint64(end),
		},
	}, nil
}

func readFLACMetadataBlock(s streamio.Source, m *MetadataMap) (last bool, err error) {
	header := make([]byte, 4)
	if _, err = io.ReadFull(s, header); err != nil {
		return false, errors.Wrap(ErrTruncated, err.Error())
	}
	last = header[0]&flacLastBlockFlag != 0
	blockType := header[0] &^ flacLastBlockFlag
	blockLen := int64(header[1])<<16 | int64(header[2])<<8 | int64(header[3])

	if blockType != flacVorbisCommentBlockType {
		_, err = s.Seek(blockLen, io.SeekCurrent)
		return last, err
	}

	if err = readVorbisCommentBody(s, blockLen, m); err != nil {
		return last, err
	}
	return last, nil
}
