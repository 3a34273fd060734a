package cache

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCachePutGet(t *testing.T) {
	c := New(8)
	key := KeyFor([]byte("\x00asm"), 0)

	_, ok := c.Get(key)
	require.False(t, ok)

	entry := c.Put(key, []byte("package generated"))
	require.Equal(t, HashBytes([]byte("package generated")), entry.Hash)

	got, ok := c.Get(key)
	require.True(t, ok)
	require.Equal(t, entry, got)
}

func TestHashBytesDeterministic(t *testing.T) {
	a := HashBytes([]byte("same input"))
	b := HashBytes([]byte("same input"))
	require.Equal(t, a, b)
}
