package unsynch

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeInPlace(t *testing.T) {
	cases := []struct {
		in, want []byte
	}{
		{[]byte{0x01, 0x02, 0x03}, []byte{0x01, 0x02, 0x03}},
		{[]byte{0xFF, 0x00, 0x02}, []byte{0xFF, 0x02}},
		{[]byte{0xFF, 0x00, 0x00}, []byte{0xFF, 0x00}},
		{[]byte{0xFF, 0x00, 0x00, 0x00}, []byte{0xFF, 0x00, 0x00}},
	}
	for _, c := range cases {
		got := DecodeInPlace(append([]byte(nil), c.in...))
		assert.Equal(t, c.want, got, "in=%x", c.in)
	}
}

func TestReaderEdgeCase(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0xFF, 0x00, 0x00}), true)
	got, err := io.ReadAll(r)
	assert.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0x00}, got)
}

func TestReaderDisabled(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0xFF, 0x00, 0x02}), false)
	got, err := io.ReadAll(r)
	assert.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0x00, 0x02}, got)
}

func TestRoundTripNoFF(t *testing.T) {
	in := []byte("hello world, no sync bytes here")
	r := NewReader(bytes.NewReader(in), true)
	got, err := io.ReadAll(r)
	assert.NoError(t, err)
	assert.Equal(t, in, got)
}
