package audiometa

import (
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/squeek502/audiometa-sub000/internal/streamio"
)

const mp4AtomHeaderSize = 8

// readMP4 reads an MP4/QuickTime container's ilst metadata atoms, with the
// stream positioned at the start of the first atom, which must be "ftyp".
func readMP4(s streamio.Source) (TypedMetadata, error) {
	start, err := s.Pos()
	if err != nil {
		return TypedMetadata{}, err
	}

	name, _, ftypEnd, err := readMP4AtomHeader(s)
	if err != nil || name != "ftyp" {
		return TypedMetadata{}, ErrNotMP4
	}

	streamEnd, err := s.EndPos()
	if err != nil {
		return TypedMetadata{}, err
	}
	if _, err := s.Seek(ftypEnd, io.SeekStart); err != nil {
		return TypedMetadata{}, err
	}

	m := NewMetadataMap()
	err = walkMP4Children(s, streamEnd, func(name string, bodyStart, end int64) error {
		if name != "moov" {
			return nil
		}
		return walkMP4Moov(s, bodyStart, end, m)
	})
	if err != nil {
		return TypedMetadata{}, err
	}

	return TypedMetadata{
		Kind: KindMP4,
		Metadata: Metadata{
			Map:         m,
			StartOffset: uint64(start),
			EndOffset:   uint64(streamEnd),
		},
	}, nil
}

// readMP4AtomHeader reads one atom's 8-byte (or 16-byte, for a 64-bit
// extended size) header, returning the absolute body-start and end
// offsets. Size == 0 extends the atom to end-of-stream; size == 1
// indicates a following 8-byte extended size.
func readMP4AtomHeader(s streamio.Source) (name string, bodyStart, end int64, err error) {
	start, err := s.Pos()
	if err != nil {
		return "", 0, 0, err
	}
	hdr := make([]byte, mp4AtomHeaderSize)
	if _, err = io.ReadFull(s, hdr); err != nil {
		return "", 0, 0, errors.Wrap(ErrTruncated, err.Error())
	}
	size := int64(binary.BigEndian.Uint32(hdr[0:4]))
	name = string(hdr[4:8])
	headerSize := int64(mp4AtomHeaderSize)

	switch size {
	case 0:
		endPos, eerr := s.EndPos()
		if eerr != nil {
			return "", 0, 0, eerr
		}
		return name, start + headerSize, endPos, nil
	case 1:
		ext := make([]byte, 8)
		if _, err = io.ReadFull(s, ext); err != nil {
			return "", 0, 0, errors.Wrap(ErrTruncated, err.Error())
		}
		size = int64(binary.BigEndian.Uint64(ext))
		headerSize = 16
	}

	if size < headerSize {
		return "", 0, 0, errors.New("audiometa: mp4 atom size smaller than its own header")
	}
	return name, start + headerSize, start + size, nil
}

// walkMP4Children iterates the direct children of an atom spanning
// [_, parentEnd), calling visit for each. If a child's header can't be
// parsed (truncated or otherwise malformed), the walk recovers by seeking
// to parentEnd and returning as though the parent's children ended there:
// the caller continues as the parent's next sibling rather than aborting
// the whole parse.
func walkMP4Children(s streamio.Source, parentEnd int64, visit func(name string, bodyStart, end int64) error) error {
	for {
		pos, err := s.Pos()
		if err != nil {
			return err
		}
		if pos >= parentEnd {
			return nil
		}
		if pos+mp4AtomHeaderSize > parentEnd {
			_, err := s.Seek(parentEnd, io.SeekStart)
			return err
		}

		name, bodyStart, end, herr := readMP4AtomHeader(s)
		if herr != nil {
			_, serr := s.Seek(parentEnd, io.SeekStart)
			if serr != nil {
				return serr
			}
			return nil
		}

		if err := visit(name, bodyStart, end); err != nil {
			return err
		}

		next := end
		if next > parentEnd {
			next = parentEnd
		}
		if _, err := s.Seek(next, io.SeekStart); err != nil {
			return err
		}
	}
}

func walkMP4Moov(s streamio.Source, bodyStart, end int64, m *MetadataMap) error {
	if _, err := s.Seek(bodyStart, io.SeekStart); err != nil {
		return err
	}
	return walkMP4Children(s, end, func(name string, cStart, cEnd int64) error {
		if name != "udta" {
			return nil
		}
		return walkMP4Udta(s, cStart, cEnd, m)
	})
}

func walkMP4Udta(s streamio.Source, bodyStart, end int64, m *MetadataMap) error {
	if _, err := s.Seek(bodyStart, io.SeekStart); err != nil {
		return err
	}
	return walkMP4Children(s, end, func(name string, cStart, cEnd int64) error {
		if name != "meta" {
			return nil
		}
		return walkMP4Meta(s, cStart, cEnd, m)
	})
}

// walkMP4Meta handles "meta", a full atom: 1 byte version + 3 bytes
// flags precede its children.
func walkMP4Meta(s streamio.Source, bodyStart, end int64, m *MetadataMap) error {
	if bodyStart+4 > end {
		return nil
	}
	if _, err := s.Seek(bodyStart+4, io.SeekStart); err != nil {
		return err
	}
	return walkMP4Children(s, end, func(name string, cStart, cEnd int64) error {
		if name != "ilst" {
			return nil
		}
		return walkMP4Ilst(s, cStart, cEnd, m)
	})
}

func walkMP4Ilst(s streamio.Source, bodyStart, end int64, m *MetadataMap) error {
	if _, err := s.Seek(bodyStart, io.SeekStart); err != nil {
		return err
	}
	return walkMP4Children(s, end, func(name string, cStart, cEnd int64) error {
		if name == "----" {
			return readMP4FreeformItem(s, cStart, cEnd, m)
		}
		return readMP4StandardItem(s, name, cStart, cEnd, m)
	})
}

// readMP4StandardItem reads every "data" sub-atom of a standard ilst item
// (e.g. "\xa9nam") and stores each decoded value under the item's name.
func readMP4StandardItem(s streamio.Source, name string, bodyStart, end int64, m *MetadataMap) error {
	if _, err := s.Seek(bodyStart, io.SeekStart); err != nil {
		return err
	}
	return walkMP4Children(s, end, func(childName string, cStart, cEnd int64) error {
		if childName != "data" {
			return nil
		}
		if cEnd > end {
			return ErrDataAtomSizeTooLarge
		}
		value, derr := readMP4DataAtom(s, name, cStart, cEnd)
		if derr != nil {
			return nil
		}
		if value != "" {
			m.Append(name, value)
		}
		return nil
	})
}

// readMP4FreeformItem reads a "----" item's "mean"/"name"/"data" children
// and stores the result under the composite key mean.value + "." +
// name.value (or just mean.value when "name" is absent).
func readMP4FreeformItem(s streamio.Source, bodyStart, end int64, m *MetadataMap) error {
	if _, err := s.Seek(bodyStart, io.SeekStart); err != nil {
		return err
	}
	var mean, nameVal string
	var haveName bool
	var values []string

	err := walkMP4Children(s, end, func(childName string, cStart, cEnd int64) error {
		switch childName {
		case "mean":
			if v, err := readMP4FullAtomUTF8(s, cStart, cEnd); err == nil {
				mean = v
			}
		case "name":
			if v, err := readMP4FullAtomUTF8(s, cStart, cEnd); err == nil {
				nameVal = v
				haveName = true
			}
		case "data":
			if cEnd > end {
				return ErrDataAtomSizeTooLarge
			}
			if v, err := readMP4DataAtom(s, "----", cStart, cEnd); err == nil && v != "" {
				values = append(values, v)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if mean == "" || len(values) == 0 {
		return nil
	}
	key := mean
	if haveName {
		key = mean + "." + nameVal
	}
	for _, v := range values {
		m.Append(key, v)
	}
	return nil
}

func readMP4FullAtomUTF8(s streamio.Source, bodyStart, end int64) (string, error) {
	if bodyStart+4 > end {
		return "", errors.New("audiometa: mp4 full atom too small")
	}
	if _, err := s.Seek(bodyStart+4, io.SeekStart); err != nil {
		return "", err
	}
	b := make([]byte, end-(bodyStart+4))
	if _, err := io.ReadFull(s, b); err != nil {
		return "", errors.Wrap(ErrTruncated, err.Error())
	}
	if !utf8.Valid(b) {
		return "", errors.New("audiometa: mp4 full atom is not valid utf-8")
	}
	return string(b), nil
}

// readMP4DataAtom decodes a "data" sub-atom's body: a 4-byte type
// indicator (top byte = type-set, low 24 bits = basic type when
// type-set == 0), a 4-byte locale indicator (unused), then the raw
// value.
func readMP4DataAtom(s streamio.Source, itemName string, bodyStart, end int64) (string, error) {
	if bodyStart+8 > end {
		return "", errors.New("audiometa: mp4 data atom too small")
	}
	if _, err := s.Seek(bodyStart, io.SeekStart); err != nil {
		return "", err
	}
	hdr := make([]byte, 8)
	if _, err := io.ReadFull(s, hdr); err != nil {
		return "", errors.Wrap(ErrTruncated, err.Error())
	}
	typeIndicator := binary.BigEndian.Uint32(hdr[0:4])

	value := make([]byte, end-(bodyStart+8))
	if _, err := io.ReadFull(s, value); err != nil {
		return "", errors.Wrap(ErrTruncated, err.Error())
	}

	if typeIndicator>>24 != 0 {
		return "", errors.New("audiometa: unsupported mp4 data atom type-set")
	}
	basicType := typeIndicator & 0x00FFFFFF

	switch basicType {
	case 1: // utf8
		if !utf8.Valid(value) {
			return "", errors.New("audiometa: mp4 data atom is not valid utf-8")
		}
		return string(value), nil
	case 2: // utf16-be
		out, err := utf16BEDecoder.Bytes(value)
		if err != nil {
			return "", errors.New("audiometa: mp4 data atom has invalid utf-16")
		}
		return string(out), nil
	case 21: // be-signed-integer
		return decodeMP4BESignedInteger(value)
	case 0: // implicit, interpreted per item name
		return decodeMP4ImplicitData(itemName, value)
	default:
		return "", nil
	}
}

func decodeMP4BESignedInteger(b []byte) (string, error) {
	var v int64
	switch len(b) {
	case 1:
		v = int64(int8(b[0]))
	case 2:
		v = int64(int16(binary.BigEndian.Uint16(b)))
	case 3:
		u := uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
		if u&0x800000 != 0 {
			u |= 0xFF000000
		}
		v = int64(int32(u))
	case 4:
		v = int64(int32(binary.BigEndian.Uint32(b)))
	case 8:
		v = int64(binary.BigEndian.Uint64(b))
	default:
		return "", errors.New("audiometa: unsupported be-signed-integer width")
	}
	return strconv.FormatInt(v, 10), nil
}

// decodeMP4ImplicitData interprets an "implicit" basic-type data body
// according to the containing item's name: "trkn"/"disk" hold a packed
// current/total pair, "gnre" holds an ID3v1-style genre index read as a
// full big-endian u16, not just its low byte. Every other implicit body
// is left unrecognised.
func decodeMP4ImplicitData(itemName string, b []byte) (string, error) {
	switch itemName {
	case "trkn", "disk":
		if len(b) < 6 {
			return "", errors.New("audiometa: mp4 trkn/disk atom too small")
		}
		current := binary.BigEndian.Uint16(b[2:4])
		var total uint16
		if len(b) >= 6 {
			total = binary.BigEndian.Uint16(b[4:6])
		}
		if total == 0 {
			return strconv.Itoa(int(current)), nil
		}
		return fmt.Sprintf("%d/%d", current, total), nil
	case "gnre":
		if len(b) < 2 {
			return "", errors.New("audiometa: mp4 gnre atom too small")
		}
		id := binary.BigEndian.Uint16(b)
		if id == 0 || id > 256 {
			return "", nil
		}
		name, ok := id3v1GenreName(byte(id - 1))
		if !ok {
			return "", nil
		}
		return name, nil
	default:
		return "", nil
	}
}
