package wasm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func i32Result() *ValueKind { v := I32; return &v }

func TestCanonicalTypeIndicesStructuralEquivalence(t *testing.T) {
	types := []TypeSignature{
		{Params: []ValueKind{I32, I32}, Result: i32Result()}, // 0
		{Params: []ValueKind{I32}, Result: i32Result()},      // 1, distinct
		{Params: []ValueKind{I32, I32}, Result: i32Result()}, // 2, == 0
	}
	canon := CanonicalTypeIndices(types)
	require.Equal(t, []uint32{0, 1, 0}, canon)

	c := NewCanonical(types)
	require.True(t, c.Equal(0, 2))
	require.False(t, c.Equal(0, 1))
}

func TestCanonicalTypeIndicesNoResult(t *testing.T) {
	types := []TypeSignature{
		{Params: []ValueKind{I32}},
		{Params: []ValueKind{I32}, Result: i32Result()},
	}
	canon := CanonicalTypeIndices(types)
	require.Equal(t, []uint32{0, 1}, canon)
}
