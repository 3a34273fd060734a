package rt

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDivS32Trap(t *testing.T) {
	_, trap := DivS32(10, 0)
	require.Equal(t, TrapDivisionByZero, trap)

	_, trap = DivS32(math.MinInt32, -1)
	require.Equal(t, TrapIntegerOverflow, trap)

	v, trap := DivS32(-10, 3)
	require.Equal(t, Trap(0), trap)
	require.Equal(t, int32(-3), v)
}

func TestRemS32MinByMinusOneDoesNotTrap(t *testing.T) {
	v, trap := RemS32(math.MinInt32, -1)
	require.Equal(t, Trap(0), trap)
	require.Equal(t, int32(0), v)
}

func TestDivU32Traps(t *testing.T) {
	_, trap := DivU32(10, 0)
	require.Equal(t, TrapDivisionByZero, trap)
}

func TestShiftMasking(t *testing.T) {
	// i32 shifts mask to 5 bits: a shift count of 33 behaves like 1.
	require.Equal(t, Shl32(1, 1), Shl32(1, 33))
	require.Equal(t, Shl64(1, 1), Shl64(1, 65))
}

func TestRotate(t *testing.T) {
	require.Equal(t, uint32(0x80000000), Rotr32(1, 1))
	require.Equal(t, uint32(1), Rotl32(0x80000000, 1))
}

func TestTruncTraps(t *testing.T) {
	_, trap := TruncI32S(math.NaN())
	require.Equal(t, TrapIntegerOverflow, trap)

	_, trap = TruncI32S(math.Inf(1))
	require.Equal(t, TrapIntegerOverflow, trap)

	_, trap = TruncI32S(2147483648)
	require.Equal(t, TrapIntegerOverflow, trap)

	v, trap := TruncI32S(3.9)
	require.Equal(t, Trap(0), trap)
	require.Equal(t, int32(3), v)
}

func TestWasmCompatMinMax(t *testing.T) {
	require.True(t, math.IsNaN(WasmCompatMin(math.NaN(), math.Inf(-1))))
	require.True(t, math.IsNaN(WasmCompatMax(math.NaN(), math.Inf(1))))
	require.Equal(t, math.Inf(-1), WasmCompatMin(1, math.Inf(-1)))
}
