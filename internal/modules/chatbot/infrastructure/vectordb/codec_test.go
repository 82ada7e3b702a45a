package vectordb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeVector_Layout(t *testing.T) {
	buf := EncodeVector([]float32{1.0})
	require.Len(t, buf, 4)
	// 1.0 的 IEEE754 大端表示
	assert.Equal(t, []byte{0x3f, 0x80, 0x00, 0x00}, buf)

	assert.Len(t, EncodeVector([]float32{1, 2, 3}), 12)
	assert.Len(t, EncodeVector(nil), 0)
}

func TestDecodeVector_RoundTrip(t *testing.T) {
	cases := [][]float32{
		{},
		{0},
		{1.5, -2.25, 3.75},
		{1e-7, -1e7, 0.1},
	}
	for _, vec := range cases {
		got, err := DecodeVector(EncodeVector(vec))
		require.NoError(t, err)
		assert.Equal(t, vec, got)
	}
}

func TestDecodeVector_InvalidLength(t *testing.T) {
	for _, n := range []int{1, 2, 3, 5, 7} {
		_, err := DecodeVector(make([]byte, n))
		assert.ErrorIs(t, err, ErrInvalidEncoding, "len=%d", n)
	}

	got, err := DecodeVector([]byte{})
	require.NoError(t, err)
	assert.Empty(t, got)
}
