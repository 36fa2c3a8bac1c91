package synchsafe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundTrip(t *testing.T) {
	for _, n := range []uint32{0, 1, 127, 128, 255, 16384, 1<<28 - 1} {
		enc := Encode(n, 4)
		assert.True(t, IsSliceSynchsafe(enc), "n=%d", n)
		assert.Equal(t, n, Decode[uint32](enc), "n=%d", n)
	}
}

func TestIsBelowThreshold(t *testing.T) {
	assert.True(t, IsBelowThreshold[uint32](0))
	assert.True(t, IsBelowThreshold[uint32](127))
	assert.False(t, IsBelowThreshold[uint32](128))
}

func TestIsSliceSynchsafe(t *testing.T) {
	assert.True(t, IsSliceSynchsafe([]byte{0x00, 0x7F, 0x01}))
	assert.False(t, IsSliceSynchsafe([]byte{0x00, 0xFF}))
}

func TestKnownEncodings(t *testing.T) {
	// 257 bytes == 0x00000101 synchsafe-encodes to 0x00 0x00 0x02 0x01
	assert.Equal(t, []byte{0x00, 0x00, 0x02, 0x01}, Encode[uint32](257, 4))
	assert.Equal(t, uint32(257), Decode[uint32]([]byte{0x00, 0x00, 0x02, 0x01}))
}
