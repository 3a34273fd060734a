package binary

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wasmforge/wasmforge/internal/wasm"
)

// addModuleBytes hand-assembles a minimal binary module exporting
// add(i32,i32)->i32 implementing `local.get 0; local.get 1; i32.add`.
func addModuleBytes() []byte {
	b := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00} // \0asm, version 1

	// type section: 1 functype (i32,i32)->i32
	b = append(b, 0x01, 0x07, 0x01, 0x60, 0x02, 0x7F, 0x7F, 0x01, 0x7F)
	// function section: 1 function, type index 0
	b = append(b, 0x03, 0x02, 0x01, 0x00)
	// export section: "add" -> func 0
	b = append(b, 0x07, 0x07, 0x01, 0x03, 'a', 'd', 'd', 0x00, 0x00)
	// code section: 1 body, no locals, local.get 0; local.get 1; i32.add; end
	b = append(b, 0x0A, 0x09, 0x01, 0x07, 0x00, 0x20, 0x00, 0x20, 0x01, 0x6A, 0x0B)
	return b
}

func TestParseAddModule(t *testing.T) {
	m, err := Parse(addModuleBytes())
	require.NoError(t, err)

	require.Len(t, m.Types, 1)
	require.Equal(t, []wasm.ValueKind{wasm.I32, wasm.I32}, m.Types[0].Params)
	require.NotNil(t, m.Types[0].Result)
	require.Equal(t, wasm.I32, *m.Types[0].Result)

	require.Len(t, m.Funcs, 1)
	require.False(t, m.Funcs[0].Imported)
	require.Equal(t, uint32(0), m.ImportedFuncCount())

	require.Len(t, m.Bodies, 1)
	require.Equal(t, []byte{0x20, 0x00, 0x20, 0x01, 0x6A, 0x0B}, m.Bodies[0].Code)

	require.Len(t, m.Exports, 1)
	require.Equal(t, "add", m.Exports[0].Name)
	require.Equal(t, wasm.ExportFunction, m.Exports[0].Kind)
	require.Equal(t, uint32(0), m.Exports[0].Index)
}

func TestParseRejectsBadMagic(t *testing.T) {
	_, err := Parse([]byte{0x00, 0x00, 0x00, 0x00})
	require.Error(t, err)
}

func TestParseRejectsOutOfRangeExport(t *testing.T) {
	b := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	b = append(b, 0x01, 0x07, 0x01, 0x60, 0x02, 0x7F, 0x7F, 0x01, 0x7F)
	b = append(b, 0x03, 0x02, 0x01, 0x00)
	// export "add" -> function index 5, but only one function (index 0) exists.
	b = append(b, 0x07, 0x07, 0x01, 0x03, 'a', 'd', 'd', 0x00, 0x05)
	b = append(b, 0x0A, 0x09, 0x01, 0x07, 0x00, 0x20, 0x00, 0x20, 0x01, 0x6A, 0x0B)

	_, err := Parse(b)
	require.Error(t, err)
}
