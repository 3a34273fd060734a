package rt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTableGetSet(t *testing.T) {
	tbl := NewTable(3, 3)
	require.Equal(t, Trap(0), tbl.Set(0, &FuncRef{CanonicalTypeIndex: 1, LocalFunctionIndex: 5}))
	v, trap := tbl.Get(0)
	require.Equal(t, Trap(0), trap)
	require.Equal(t, FuncRef{CanonicalTypeIndex: 1, LocalFunctionIndex: 5}, v)
}

func TestTableOutOfBounds(t *testing.T) {
	tbl := NewTable(3, 3)
	_, trap := tbl.Get(99)
	require.Equal(t, TrapTableOutOfBounds, trap)
}

func TestTableUndefinedElement(t *testing.T) {
	tbl := NewTable(3, 3)
	_, trap := tbl.Get(1)
	require.Equal(t, TrapUndefinedElement, trap)
}

func TestTableGrow(t *testing.T) {
	tbl := NewTable(1, 4)
	init := &FuncRef{CanonicalTypeIndex: 2, LocalFunctionIndex: 9}
	prev := tbl.Grow(2, init)
	require.Equal(t, int32(1), prev)
	v, trap := tbl.Get(2)
	require.Equal(t, Trap(0), trap)
	require.Equal(t, *init, v)

	require.Equal(t, int32(-1), tbl.Grow(10, init))
}
