package leb128

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeUint32(t *testing.T) {
	// 624485 encodes to 0xE5 0x8E 0x26 per the canonical LEB128 example.
	r := bytes.NewReader([]byte{0xE5, 0x8E, 0x26})
	v, err := DecodeUint32(r)
	require.NoError(t, err)
	require.Equal(t, uint32(624485), v)
}

func TestDecodeInt32Negative(t *testing.T) {
	// -624485 encodes to 0x9B 0xF1 0x59.
	r := bytes.NewReader([]byte{0x9B, 0xF1, 0x59})
	v, err := DecodeInt32(r)
	require.NoError(t, err)
	require.Equal(t, int32(-624485), v)
}

func TestDecodeInt32SmallValues(t *testing.T) {
	r := bytes.NewReader([]byte{0x7F}) // -1
	v, err := DecodeInt32(r)
	require.NoError(t, err)
	require.Equal(t, int32(-1), v)
}

func TestDecodeUint32UnexpectedEOF(t *testing.T) {
	r := bytes.NewReader([]byte{0x80})
	_, err := DecodeUint32(r)
	require.Error(t, err)
}
