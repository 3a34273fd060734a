package rt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryStoreLoadRoundtrip(t *testing.T) {
	m := NewMemory(1, 1)
	require.Equal(t, Trap(0), m.StoreI32(0, 0x12345678))
	v, trap := m.LoadI32(0)
	require.Equal(t, Trap(0), trap)
	require.Equal(t, int32(0x12345678), v)
}

func TestMemoryOutOfBounds(t *testing.T) {
	m := NewMemory(1, 1)
	_, trap := m.LoadI32(65533)
	require.Equal(t, TrapOutOfBounds, trap)
}

func TestMemoryGrow(t *testing.T) {
	m := NewMemory(1, 4)
	prev := m.Grow(2)
	require.Equal(t, int32(1), prev)
	require.Equal(t, int32(3), m.Size())

	require.Equal(t, int32(-1), m.Grow(5))
	require.Equal(t, int32(3), m.Size())

	// grow(0) is a no-op that reports the current size.
	require.Equal(t, int32(3), m.Grow(0))
}

func TestMemoryGrowZeroesNewPages(t *testing.T) {
	m := NewMemory(1, 2)
	require.Equal(t, Trap(0), m.StoreU8(PageSize-1, 0xFF))
	m.Grow(1)
	v, trap := m.LoadU8(PageSize)
	require.Equal(t, Trap(0), trap)
	require.Equal(t, int32(0), v)
}

func TestMemoryExtendingLoads(t *testing.T) {
	m := NewMemory(1, 1)
	require.Equal(t, Trap(0), m.StoreU8(0, 0xFF))
	u8, _ := m.LoadU8(0)
	require.Equal(t, int32(0xFF), u8)
	i8, _ := m.LoadI8(0)
	require.Equal(t, int32(-1), i8)
}
