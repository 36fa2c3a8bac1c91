package audiometa

import (
	"encoding/binary"
	"io"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/squeek502/audiometa-sub000/internal/streamio"
)

const (
	apeMagic      = "APETAGEX"
	apeRecordSize = 32
)

type apeItemDataType int

const (
	apeItemUTF8 apeItemDataType = iota
	apeItemBinary
	apeItemExternal
	apeItemReserved
)

func readAPERecord(s streamio.Source) (APEHeaderRecord, error) {
	buf := make([]byte, apeRecordSize)
	if _, err := io.ReadFull(s, buf); err != nil {
		return APEHeaderRecord{}, errors.Wrap(ErrTruncated, err.Error())
	}
	if string(buf[0:8]) != apeMagic {
		return APEHeaderRecord{}, ErrNotAPE
	}
	return APEHeaderRecord{
		Version:   binary.LittleEndian.Uint32(buf[8:12]),
		TagSize:   binary.LittleEndian.Uint32(buf[12:16]),
		ItemCount: binary.LittleEndian.Uint32(buf[16:20]),
		Flags:     binary.LittleEndian.Uint32(buf[20:24]),
	}, nil
}

// readAPEFromHeader parses an APE tag whose stream is positioned at the
// tag's start (the "APETAGEX" header).
func readAPEFromHeader(s streamio.Source) (TypedMetadata, error) {
	start, err := s.Pos()
	if err != nil {
		return TypedMetadata{}, err
	}
	rec, err := readAPERecord(s)
	if err != nil {
		return TypedMetadata{}, err
	}

	itemsSize := int64(rec.TagSize)
	if rec.HasFooter() {
		itemsSize -= apeRecordSize
	}
	if itemsSize < 0 {
		return TypedMetadata{}, ErrInvalidSize
	}

	m := NewMetadataMap()
	if err := readAPEItems(s, m, rec, itemsSize); err != nil {
		return TypedMetadata{}, err
	}

	end := start + apeRecordSize + itemsSize
	if rec.HasFooter() {
		end += apeRecordSize
	}
	return TypedMetadata{
		Kind: KindAPE,
		Metadata: Metadata{
			Map:         m,
			StartOffset: uint64(start),
			EndOffset:   uint64(end),
		},
		APEHeader: &rec,
	}, nil
}

// readAPEFromFooter parses an APE tag whose stream is positioned at
// end-of-footer (i.e. the caller has already seeked to where the footer
// ends, typically EOF). A footer whose tag_size is smaller than the
// 32-byte record it must itself describe is rejected as ErrInvalidSize,
// not retried at alternative offsets.
func readAPEFromFooter(s streamio.Source) (TypedMetadata, error) {
	footerEnd, err := s.Pos()
	if err != nil {
		return TypedMetadata{}, err
	}
	footerStart := footerEnd - apeRecordSize
	if footerStart < 0 {
		return TypedMetadata{}, ErrNotAPE
	}
	if _, err := s.Seek(footerStart, io.SeekStart); err != nil {
		return TypedMetadata{}, err
	}
	rec, err := readAPERecord(s)
	if err != nil {
		return TypedMetadata{}, err
	}
	if int64(rec.TagSize) < apeRecordSize {
		return TypedMetadata{}, ErrInvalidSize
	}

	itemsSize := int64(rec.TagSize) - apeRecordSize
	itemsStart := footerStart - itemsSize
	headerSize := int64(0)
	if rec.HasHeader() {
		headerSize = apeRecordSize
	}
	tagStart := itemsStart - headerSize
	if tagStart < 0 {
		return TypedMetadata{}, ErrInvalidSize
	}

	if _, err := s.Seek(itemsStart, io.SeekStart); err != nil {
		return TypedMetadata{}, err
	}
	m := NewMetadataMap()
	if err := readAPEItems(s, m, rec, itemsSize); err != nil {
		return TypedMetadata{}, err
	}

	return TypedMetadata{
		Kind: KindAPE,
		Metadata: Metadata{
			Map:         m,
			StartOffset: uint64(tagStart),
			EndOffset:   uint64(footerEnd),
		},
		APEHeader: &rec,
	}, nil
}

// readAPEItems reads rec.ItemCount items from s into m, stopping early
// (cleanly, not as an error) once fewer than 9 bytes remain before the end
// of the items region: the minimum size of a well-formed item header
// (u32 size + u32 flags + a 1-byte NUL key).
func readAPEItems(s streamio.Source, m *MetadataMap, rec APEHeaderRecord, itemsSize int64) error {
	remaining := itemsSize
	for i := uint32(0); i < rec.ItemCount && remaining >= 9; i++ {
		header := make([]byte, 8)
		if _, err := io.ReadFull(s, header); err != nil {
			return errors.Wrap(ErrTruncated, err.Error())
		}
		remaining -= 8
		valueSize := binary.LittleEndian.Uint32(header[0:4])
		itemFlags := binary.LittleEndian.Uint32(header[4:8])
		dataType := apeItemDataType((itemFlags >> 1) & 0x3)

		key, n, err := readNulTerminated(s)
		if err != nil {
			return errors.Wrap(ErrTruncated, err.Error())
		}
		remaining -= int64(n)

		if dataType != apeItemUTF8 {
			if _, err := s.Seek(int64(valueSize), io.SeekCurrent); err != nil {
				return errors.Wrap(ErrTruncated, err.Error())
			}
			remaining -= int64(valueSize)
			continue
		}

		value := make([]byte, valueSize)
		if _, err := io.ReadFull(s, value); err != nil {
			return errors.Wrap(ErrTruncated, err.Error())
		}
		remaining -= int64(valueSize)
		if !utf8.Valid(key) || !utf8.Valid(value) {
			continue
		}
		m.Append(string(key), string(value))
	}
	return nil
}

// readNulTerminated reads bytes up to and including a NUL terminator,
// returning the bytes before it and the total number of bytes consumed
// (including the terminator).
func readNulTerminated(s streamio.Source) ([]byte, int, error) {
	var out []byte
	b := make([]byte, 1)
	n := 0
	for {
		if _, err := io.ReadFull(s, b); err != nil {
			return nil, n, err
		}
		n++
		if b[0] == 0 {
			return out, n, nil
		}
		out = append(out, b[0])
	}
}
