package oggreader

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildPage(t *testing.T, headerType byte, payload []byte, segLens []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString("OggS")
	buf.WriteByte(0) // version
	buf.WriteByte(headerType)
	buf.Write(make([]byte, 8)) // granule pos
	buf.Write(make([]byte, 4)) // serial
	buf.Write(make([]byte, 4)) // page seq
	buf.Write(make([]byte, 4)) // checksum
	buf.WriteByte(byte(len(segLens)))
	buf.Write(segLens)
	buf.Write(payload)
	return buf.Bytes()
}

func TestSinglePage(t *testing.T) {
	payload := []byte("hello, vorbis")
	page := buildPage(t, 0, payload, []byte{byte(len(payload))})
	r := New(bytes.NewReader(page))
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestSpansTwoPages(t *testing.T) {
	p1 := buildPage(t, 0, []byte("hello, "), []byte{7})
	p2 := buildPage(t, 1, []byte("vorbis"), []byte{6})
	r := New(io.MultiReader(bytes.NewReader(p1), bytes.NewReader(p2)))
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "hello, vorbis", string(got))
}

func TestTruncatedInsideHeader(t *testing.T) {
	page := buildPage(t, 0, []byte("x"), []byte{1})
	r := New(bytes.NewReader(page[:10]))
	_, err := io.ReadAll(r)
	assert.Error(t, err)
}

func TestTruncatedInsidePayload(t *testing.T) {
	page := buildPage(t, 0, []byte("hello"), []byte{5})
	r := New(bytes.NewReader(page[:len(page)-2]))
	_, err := io.ReadAll(r)
	assert.Error(t, err)
}

func TestCleanEOFBetweenPages(t *testing.T) {
	page := buildPage(t, 0, []byte("hi"), []byte{2})
	r := New(bytes.NewReader(page))
	buf := make([]byte, 2)
	n, err := io.ReadFull(r, buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	_, err = r.Read(make([]byte, 1))
	assert.Equal(t, io.EOF, err)
}

func TestZeroLengthPageRejected(t *testing.T) {
	page := buildPage(t, 0, nil, []byte{0, 0})
	r := New(bytes.NewReader(page))
	_, err := io.ReadAll(r)
	assert.ErrorIs(t, err, ErrZeroLengthPage)
}
