package audiometa

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/squeek502/audiometa-sub000/internal/streamio"
)

func TestReadAllPrefixedThenSuffixed(t *testing.T) {
	id3v2 := buildID3v2Tag(3, 0, buildID3v2Frame34("TIT2", 0, append([]byte{3}, []byte("Prefixed")...)))

	audio := []byte("not really mpeg audio but that's fine here")

	var id3v1 bytes.Buffer
	id3v1.WriteString("TAG")
	writeFixed(&id3v1, "Suffixed Title", 30)
	writeFixed(&id3v1, "", 30)
	writeFixed(&id3v1, "", 30)
	id3v1.WriteString("2024")
	writeFixed(&id3v1, "", 30)
	id3v1.WriteByte(12)

	var file bytes.Buffer
	file.Write(id3v2)
	file.Write(audio)
	file.Write(id3v1.Bytes())

	s := streamio.New(bytes.NewReader(file.Bytes()))
	all, err := ReadAll(s)
	require.NoError(t, err)
	require.Len(t, all.Tags, 2)
	assert.Equal(t, KindID3v2, all.Tags[0].Kind)
	assert.Equal(t, KindID3v1, all.Tags[1].Kind)

	v, ok := all.Tags[0].Map.GetFirst("TIT2")
	require.True(t, ok)
	assert.Equal(t, "Prefixed", v)

	v, ok = all.Tags[1].Map.GetFirst("title")
	require.True(t, ok)
	assert.Equal(t, "Suffixed Title", v)
}

func writeFixed(buf *bytes.Buffer, s string, width int) {
	b := make([]byte, width)
	copy(b, s)
	buf.Write(b)
}

func TestReadAllMP4OnlyAtStart(t *testing.T) {
	item := mp4Atom("\xa9nam", mp4DataAtom(1, []byte("MP4 Title")))
	file := buildMP4File(item)

	s := streamio.New(bytes.NewReader(file))
	all, err := ReadAll(s)
	require.NoError(t, err)
	require.Len(t, all.Tags, 1)
	assert.Equal(t, KindMP4, all.Tags[0].Kind)
}

func TestReadAllNoTagsFound(t *testing.T) {
	s := streamio.New(bytes.NewReader([]byte("plain audio bytes, nothing tagged here at all")))
	all, err := ReadAll(s)
	require.NoError(t, err)
	assert.Empty(t, all.Tags)
}

func TestReadAllAPEFooterAtEOF(t *testing.T) {
	audio := []byte("not really mpeg audio but that's fine here")

	items := apeItem("Album", "Footer Album")
	flags := uint32(apeFlagHasFooter)
	tagSize := uint32(len(items) + apeRecordSize)
	footer := apeRecord(2000, tagSize, 1, flags)

	var file bytes.Buffer
	file.Write(audio)
	file.Write(items)
	file.Write(footer)

	s := streamio.New(bytes.NewReader(file.Bytes()))
	all, err := ReadAll(s)
	require.NoError(t, err)
	require.Len(t, all.Tags, 1)
	assert.Equal(t, KindAPE, all.Tags[0].Kind)

	v, ok := all.Tags[0].Map.GetFirst("Album")
	require.True(t, ok)
	assert.Equal(t, "Footer Album", v)
}

// buildID3v2FooterTag builds a v2.4 tag with its footer-presence flag set
// and an actual trailing "3DI" footer block, so it can be discovered by
// scanning backward from a later offset rather than only forward from its
// own head.
func buildID3v2FooterTag(frames []byte) []byte {
	const footerFlag = 0x10
	tag := buildID3v2Tag(4, footerFlag, frames)

	var footer bytes.Buffer
	footer.WriteString("3DI")
	footer.WriteByte(4) // major
	footer.WriteByte(0) // revision
	footer.WriteByte(footerFlag)
	footer.Write(tag[6:10]) // same synchsafe size field as the header

	return append(tag, footer.Bytes()...)
}

func TestReadAllStackedID3v2FooterAndAPEAndID3v1(t *testing.T) {
	audio := []byte("leading audio bytes, not a tag of any kind")

	id3v2Frame := buildID3v2Frame34("TIT2", 0, append([]byte{3}, []byte("Stacked Title")...))
	id3v2Tag := buildID3v2FooterTag(id3v2Frame)

	apeItems := apeItem("Artist", "Stacked Artist")
	apeFlags := uint32(apeFlagHasHeader | apeFlagHasFooter)
	apeTagSize := uint32(len(apeItems) + apeRecordSize)
	apeHeader := apeRecord(2000, apeTagSize, 1, apeFlags)
	apeFooter := apeRecord(2000, apeTagSize, 1, apeFlags&^apeFlagIsHeader)

	var id3v1 bytes.Buffer
	id3v1.WriteString("TAG")
	writeFixed(&id3v1, "Stacked ID3v1 Title", 30)
	writeFixed(&id3v1, "", 30)
	writeFixed(&id3v1, "", 30)
	id3v1.WriteString("2024")
	writeFixed(&id3v1, "", 30)
	id3v1.WriteByte(0)

	var file bytes.Buffer
	file.Write(audio)
	file.Write(id3v2Tag)
	file.Write(apeHeader)
	file.Write(apeItems)
	file.Write(apeFooter)
	file.Write(id3v1.Bytes())

	s := streamio.New(bytes.NewReader(file.Bytes()))
	all, err := ReadAll(s)
	require.NoError(t, err)
	require.Len(t, all.Tags, 3)

	assert.Equal(t, KindID3v1, all.Tags[0].Kind)
	v, ok := all.Tags[0].Map.GetFirst("title")
	require.True(t, ok)
	assert.Equal(t, "Stacked ID3v1 Title", v)

	assert.Equal(t, KindAPE, all.Tags[1].Kind)
	v, ok = all.Tags[1].Map.GetFirst("Artist")
	require.True(t, ok)
	assert.Equal(t, "Stacked Artist", v)

	assert.Equal(t, KindID3v2, all.Tags[2].Kind)
	v, ok = all.Tags[2].Map.GetFirst("TIT2")
	require.True(t, ok)
	assert.Equal(t, "Stacked Title", v)
}
