package audiometa

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/squeek502/audiometa-sub000/internal/streamio"
)

func buildID3v1Tag(title, artist, album, date, comment string, track, genre byte) []byte {
	var buf bytes.Buffer
	buf.WriteString("TAG")
	writeFixed(&buf, title, 30)
	writeFixed(&buf, artist, 30)
	writeFixed(&buf, album, 30)
	writeFixed(&buf, date, 4)
	if track != 0 {
		writeFixed(&buf, comment, 28)
		buf.WriteByte(0)
		buf.WriteByte(track)
	} else {
		writeFixed(&buf, comment, 30)
	}
	buf.WriteByte(genre)
	return buf.Bytes()
}

func TestReadID3v1(t *testing.T) {
	tag := buildID3v1Tag("A Title", "An Artist", "An Album", "1999", "a comment", 5, 0)
	s := streamio.New(bytes.NewReader(tag))
	if _, err := s.Seek(0, io.SeekEnd); err != nil {
		t.Fatal(err)
	}

	md, err := readID3v1(s)
	require.NoError(t, err)
	assert.Equal(t, KindID3v1, md.Kind)

	v, ok := md.Map.GetFirst("title")
	require.True(t, ok)
	assert.Equal(t, "A Title", v)

	v, ok = md.Map.GetFirst("artist")
	require.True(t, ok)
	assert.Equal(t, "An Artist", v)

	v, ok = md.Map.GetFirst("track")
	require.True(t, ok)
	assert.Equal(t, "5", v)

	v, ok = md.Map.GetFirst("genre")
	require.True(t, ok)
	assert.Equal(t, "Blues", v)
}

func TestReadID3v1NoTrackKeepsFullComment(t *testing.T) {
	comment := "a comment that spans the whole field nicely"
	tag := buildID3v1Tag("T", "A", "Al", "2001", comment[:30], 0, 255)
	s := streamio.New(bytes.NewReader(tag))
	if _, err := s.Seek(0, io.SeekEnd); err != nil {
		t.Fatal(err)
	}

	md, err := readID3v1(s)
	require.NoError(t, err)
	_, hasTrack := md.Map.GetFirst("track")
	assert.False(t, hasTrack)
	v, ok := md.Map.GetFirst("comment")
	require.True(t, ok)
	assert.Equal(t, comment[:30], v)
	_, hasGenre := md.Map.GetFirst("genre")
	assert.False(t, hasGenre, "genre byte 255 is out of range and should be dropped")
}

func TestReadID3v1NotID3v1(t *testing.T) {
	s := streamio.New(bytes.NewReader([]byte("too short")))
	if _, err := s.Seek(0, io.SeekEnd); err != nil {
		t.Fatal(err)
	}
	_, err := readID3v1(s)
	assert.ErrorIs(t, err, ErrNotID3v1)
}
