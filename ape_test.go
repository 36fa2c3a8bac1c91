package audiometa

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/squeek502/audiometa-sub000/internal/streamio"
)

func apeItem(key, value string) []byte {
	var buf bytes.Buffer
	var sizeBuf [4]byte
	binary.LittleEndian.PutUint32(sizeBuf[:], uint32(len(value)))
	buf.Write(sizeBuf[:])
	var flagsBuf [4]byte // utf8 item, writable
	buf.Write(flagsBuf[:])
	buf.WriteString(key)
	buf.WriteByte(0)
	buf.WriteString(value)
	return buf.Bytes()
}

func apeRecord(version, tagSize, itemCount, flags uint32) []byte {
	var buf bytes.Buffer
	buf.WriteString(apeMagic)
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], version)
	buf.Write(b[:])
	binary.LittleEndian.PutUint32(b[:], tagSize)
	buf.Write(b[:])
	binary.LittleEndian.PutUint32(b[:], itemCount)
	buf.Write(b[:])
	binary.LittleEndian.PutUint32(b[:], flags)
	buf.Write(b[:])
	buf.Write(make([]byte, 8))
	return buf.Bytes()
}

func TestReadAPEFromHeader(t *testing.T) {
	items := apeItem("Artist", "An Artist")
	footerFlags := uint32(apeFlagHasHeader | apeFlagHasFooter)
	tagSize := uint32(len(items) + apeRecordSize)
	header := apeRecord(2000, tagSize, 1, footerFlags)

	var file bytes.Buffer
	file.Write(header)
	file.Write(items)
	file.Write(apeRecord(2000, tagSize, 1, footerFlags&^apeFlagIsHeader))

	s := streamio.New(bytes.NewReader(file.Bytes()))
	md, err := readAPEFromHeader(s)
	require.NoError(t, err)
	assert.Equal(t, KindAPE, md.Kind)
	v, ok := md.Map.GetFirst("Artist")
	require.True(t, ok)
	assert.Equal(t, "An Artist", v)
	assert.Equal(t, uint64(len(file.Bytes())), md.EndOffset)
}

func TestReadAPEFromFooter(t *testing.T) {
	items := apeItem("Album", "An Album")
	flags := uint32(apeFlagHasFooter)
	tagSize := uint32(len(items) + apeRecordSize)
	footer := apeRecord(2000, tagSize, 1, flags)

	var file bytes.Buffer
	file.Write(items)
	file.Write(footer)

	s := streamio.New(bytes.NewReader(file.Bytes()))
	if _, err := s.Seek(0, io.SeekEnd); err != nil {
		t.Fatal(err)
	}

	md, err := readAPEFromFooter(s)
	require.NoError(t, err)
	v, ok := md.Map.GetFirst("Album")
	require.True(t, ok)
	assert.Equal(t, "An Album", v)
	assert.Equal(t, uint64(0), md.StartOffset)
}

func TestReadAPEFromFooterInvalidSize(t *testing.T) {
	footer := apeRecord(2000, 4, 0, 0) // smaller than the 32-byte record itself
	s := streamio.New(bytes.NewReader(footer))
	if _, err := s.Seek(0, io.SeekEnd); err != nil {
		t.Fatal(err)
	}
	_, err := readAPEFromFooter(s)
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestReadAPENotAPE(t *testing.T) {
	s := streamio.New(bytes.NewReader([]byte("NOTAPETAGEXXXXXXXXXXXXXXXXXXXXXX")))
	_, err := readAPEFromHeader(s)
	assert.ErrorIs(t, err, ErrNotAPE)
}
