package audiometa

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/squeek502/audiometa-sub000/internal/streamio"
	"github.com/squeek502/audiometa-sub000/internal/synchsafe"
)

func buildID3v2Frame34(id string, flags uint16, body []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString(id)
	var size [4]byte
	be := synchsafe.Encode[uint32](uint32(len(body)), 4)
	copy(size[:], be)
	buf.Write(size[:])
	buf.WriteByte(byte(flags >> 8))
	buf.WriteByte(byte(flags))
	buf.Write(body)
	return buf.Bytes()
}

func buildID3v2Tag(major byte, flags byte, frames []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString("ID3")
	buf.WriteByte(major)
	buf.WriteByte(0) // revision
	buf.WriteByte(flags)
	sizeBytes := synchsafe.Encode[uint32](uint32(len(frames)), 4)
	buf.Write(sizeBytes)
	buf.Write(frames)
	return buf.Bytes()
}

func newSourceFromBytes(b []byte) streamio.Source {
	return streamio.New(bytes.NewReader(b))
}

func TestReadID3v2TextFrame(t *testing.T) {
	frame := buildID3v2Frame34("TIT2", 0, append([]byte{3}, []byte("Title Here")...))
	tag := buildID3v2Tag(3, 0, frame)

	md, err := readID3v2(newSourceFromBytes(tag))
	require.NoError(t, err)
	assert.Equal(t, KindID3v2, md.Kind)
	v, ok := md.Map.GetFirst("TIT2")
	require.True(t, ok)
	assert.Equal(t, "Title Here", v)
	assert.Equal(t, uint64(len(tag)), md.EndOffset)
}

func TestReadID3v2UserDefinedText(t *testing.T) {
	body := []byte{3}
	body = append(body, []byte("REPLAYGAIN_TRACK_GAIN")...)
	body = append(body, 0x00)
	body = append(body, []byte("-3.2 dB")...)
	frame := buildID3v2Frame34("TXXX", 0, body)
	tag := buildID3v2Tag(4, 0, frame)

	md, err := readID3v2(newSourceFromBytes(tag))
	require.NoError(t, err)
	v, ok := md.Map.GetFirst("REPLAYGAIN_TRACK_GAIN")
	require.True(t, ok)
	assert.Equal(t, "-3.2 dB", v)
}

func TestReadID3v2Comment(t *testing.T) {
	body := []byte{3, 'e', 'n', 'g'}
	body = append(body, 0x00) // empty description
	body = append(body, []byte("a neat album")...)
	frame := buildID3v2Frame34("COMM", 0, body)
	tag := buildID3v2Tag(3, 0, frame)

	md, err := readID3v2(newSourceFromBytes(tag))
	require.NoError(t, err)
	require.Equal(t, 1, md.Comments.Len())
	entries := md.Comments.ByLanguage([3]byte{'e', 'n', 'g'})
	require.Len(t, entries, 1)
	assert.Equal(t, "a neat album", entries[0].Value)
}

func TestReadID3v2v22FrameHeader(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("TT2")
	body := append([]byte{0}, []byte("Old Skool")...)
	buf.WriteByte(byte(len(body) >> 16))
	buf.WriteByte(byte(len(body) >> 8))
	buf.WriteByte(byte(len(body)))
	buf.Write(body)

	var tagBuf bytes.Buffer
	tagBuf.WriteString("ID3")
	tagBuf.WriteByte(2)
	tagBuf.WriteByte(0)
	tagBuf.WriteByte(0)
	tagBuf.Write(synchsafe.Encode[uint32](uint32(buf.Len()), 4))
	tagBuf.Write(buf.Bytes())

	md, err := readID3v2(newSourceFromBytes(tagBuf.Bytes()))
	require.NoError(t, err)
	v, ok := md.Map.GetFirst("TT2")
	require.True(t, ok)
	assert.Equal(t, "Old Skool", v)
}

func TestReadID3v2ITunesV22IDInV23Tag(t *testing.T) {
	// A v2.3-shaped frame whose 4th id byte is NUL: id="TT2", size is the
	// next 3 bytes (v2.2 shape), no flags.
	var frame bytes.Buffer
	frame.WriteString("TT2")
	frame.WriteByte(0x00)
	body := append([]byte{0}, []byte("Disguised")...)
	frame.WriteByte(byte(len(body) >> 16))
	frame.WriteByte(byte(len(body) >> 8))
	frame.WriteByte(byte(len(body)))
	frame.Write(body)

	tag := buildID3v2Tag(3, 0, frame.Bytes())

	md, err := readID3v2(newSourceFromBytes(tag))
	require.NoError(t, err)
	v, ok := md.Map.GetFirst("TT2")
	require.True(t, ok)
	assert.Equal(t, "Disguised", v)
}

func TestReadID3v2NonSynchsafeV24FrameSizeProbe(t *testing.T) {
	// First frame's size is written as plain big-endian (not synchsafe)
	// by a buggy encoder; its high bit would make the synchsafe
	// interpretation land somewhere that doesn't look like a frame, so
	// the raw interpretation must be selected instead.
	text := append([]byte("hello"), bytes.Repeat([]byte("o"), 124)...)
	body1 := append([]byte{3}, text...) // 130 bytes, raw size 0x82
	var f1 bytes.Buffer
	f1.WriteString("TIT2")
	// Raw size bytes 00 00 00 82 read as synchsafe give 2, which lands on
	// "ello" inside the text; the raw size 130 lands on the TPE1 header.
	f1.Write([]byte{0, 0, 0, byte(len(body1))})
	f1.WriteByte(0)
	f1.WriteByte(0)
	f1.Write(body1)

	body2 := append([]byte{3}, []byte("Second")...)
	f2 := buildID3v2Frame34("TPE1", 0, body2)

	var frames bytes.Buffer
	frames.Write(f1.Bytes())
	frames.Write(f2.Bytes())

	tag := buildID3v2Tag(4, 0, frames.Bytes())
	md, err := readID3v2(newSourceFromBytes(tag))
	require.NoError(t, err)
	v1, _ := md.Map.GetFirst("TIT2")
	assert.Equal(t, string(text), v1)
	v2, _ := md.Map.GetFirst("TPE1")
	assert.Equal(t, "Second", v2)
}

func TestReadID3v2MalformedFrameHeaderAbandonsRest(t *testing.T) {
	good := buildID3v2Frame34("TIT2", 0, append([]byte{3}, []byte("Keep")...))
	var frames bytes.Buffer
	frames.Write(good)
	frames.WriteString("!@#$") // invalid id bytes
	frames.Write([]byte{0, 0, 0, 10, 0, 0})
	frames.Write([]byte("0123456789"))

	tag := buildID3v2Tag(3, 0, frames.Bytes())
	md, err := readID3v2(newSourceFromBytes(tag))
	require.NoError(t, err)
	v, ok := md.Map.GetFirst("TIT2")
	require.True(t, ok)
	assert.Equal(t, "Keep", v)
}

func TestReadID3v2NotID3v2(t *testing.T) {
	_, err := readID3v2(newSourceFromBytes([]byte("NOPE000000")))
	assert.ErrorIs(t, err, ErrNotID3v2)
}

func TestReadID3v2FullTagUnsynch(t *testing.T) {
	// A lone 0xFF 0x00 inside a v2.3 text frame body must be reversed to
	// a single 0xFF by the whole-tag unsynchronisation reader. The frame
	// size counts the 4 bytes left once the stuffed 0x00 is removed, and
	// the Latin-1 byte 0xFF decodes to U+00FF.
	raw := []byte{0, 'A', 0xFF, 0x00, 'B'}
	var frame bytes.Buffer
	frame.WriteString("TIT2")
	frame.Write([]byte{0, 0, 0, 4})
	frame.Write([]byte{0, 0})
	frame.Write(raw)
	tag := buildID3v2Tag(3, 0x80, frame.Bytes())

	md, err := readID3v2(newSourceFromBytes(tag))
	require.NoError(t, err)
	v, ok := md.Map.GetFirst("TIT2")
	require.True(t, ok)
	assert.Equal(t, "AÿB", v)
}
