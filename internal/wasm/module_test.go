package wasm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCombinedFunctionIndexSpace(t *testing.T) {
	m := &Module{
		Imports: []ImportDecl{
			{Module: "env", Field: "log", Kind: ImportFunction, FuncTypeIndex: 0},
			{Module: "env", Field: "abort", Kind: ImportFunction, FuncTypeIndex: 0},
		},
		Funcs: []FuncSignature{
			{TypeIndex: 0, Imported: true},
			{TypeIndex: 0, Imported: true},
			{TypeIndex: 1, Imported: false},
		},
		Bodies: []FunctionBody{{}},
	}

	require.Equal(t, uint32(2), m.ImportedFuncCount())
	require.True(t, m.IsImportedFunc(0))
	require.True(t, m.IsImportedFunc(1))
	require.False(t, m.IsImportedFunc(2))
	require.Equal(t, uint32(0), m.LocalFuncIndex(2))
}

func TestImportsByModuleGrouping(t *testing.T) {
	m := &Module{
		Imports: []ImportDecl{
			{Module: "env", Field: "log", Kind: ImportFunction},
			{Module: "wasi_snapshot_preview1", Field: "fd_write", Kind: ImportFunction},
			{Module: "env", Field: "abort", Kind: ImportFunction},
		},
	}
	groups := m.ImportsByModule()
	require.Len(t, groups, 2)
	require.Equal(t, "env", groups[0].Name)
	require.Len(t, groups[0].Imports, 2)
	require.Equal(t, "wasi_snapshot_preview1", groups[1].Name)
}
