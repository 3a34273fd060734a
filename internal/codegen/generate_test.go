package codegen

import (
	"go/parser"
	"go/token"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wasmforge/wasmforge/internal/ir"
	"github.com/wasmforge/wasmforge/internal/wasm"
)

func i32Kind() *wasm.ValueKind { k := wasm.I32; return &k }

// buildAllFunctions runs ir.Build over every local function of m, in
// combined-index-space order, the same ordering Generate always produces
// output in regardless of how its fns argument is handed to it.
func buildAllFunctions(t *testing.T, m *wasm.Module, canon *wasm.Canonical) []*ir.IrFunction {
	t.Helper()
	imported := m.ImportedFuncCount()
	var out []*ir.IrFunction
	for i := 0; i < len(m.Bodies); i++ {
		fn, err := ir.Build(m, canon, imported+uint32(i))
		require.NoError(t, err)
		out = append(out, fn)
	}
	return out
}

// requireValidGo parses src as a Go source file, failing the test with the
// parser's error if it isn't syntactically valid — the cheapest available
// substitute for running the module through the Go compiler, which these
// tests may not invoke.
func requireValidGo(t *testing.T, src []byte) {
	t.Helper()
	_, err := parser.ParseFile(token.NewFileSet(), "generated.go", src, 0)
	require.NoError(t, err, "generated source does not parse:\n%s", src)
}

// local.get 0; local.get 1; i32.add; end, exported as "add".
func TestGenerateSimpleAddFunction(t *testing.T) {
	sig := wasm.TypeSignature{Params: []wasm.ValueKind{wasm.I32, wasm.I32}, Result: i32Kind()}
	m := &wasm.Module{
		Types:   []wasm.TypeSignature{sig},
		Funcs:   []wasm.FuncSignature{{TypeIndex: 0}},
		Bodies:  []wasm.FunctionBody{{Code: []byte{0x20, 0x00, 0x20, 0x01, 0x6A, 0x0B}}},
		Exports: []wasm.ExportDecl{{Name: "add", Kind: wasm.ExportFunction, Index: 0}},
	}
	canon := wasm.NewCanonical(m.Types)
	fns := buildAllFunctions(t, m, canon)

	src, err := Generate(m, canon, fns, "generated", nil)
	require.NoError(t, err)
	requireValidGo(t, src)

	text := string(src)
	require.Contains(t, text, "func (m *Module) func_0(a0 int32, a1 int32) (int32, rt.Trap)")
	require.Contains(t, text, "func (m *Module) Add(")
	require.NotContains(t, text, "\"math\"")
}

// Two local functions sharing a canonical type (() -> i32), reached only
// through call_indirect from a third function taking the table index as its
// sole parameter — §4.5's "Indirect call emission" static dispatch.
func TestGenerateIndirectCallDispatch(t *testing.T) {
	calleeSig := wasm.TypeSignature{Result: i32Kind()}           // type 0: () -> i32
	callerSig := wasm.TypeSignature{Params: []wasm.ValueKind{wasm.I32}, Result: i32Kind()} // type 1: (i32) -> i32

	m := &wasm.Module{
		Types: []wasm.TypeSignature{calleeSig, callerSig},
		Funcs: []wasm.FuncSignature{
			{TypeIndex: 1}, // func 0: caller, exported
			{TypeIndex: 0}, // func 1: callee A
			{TypeIndex: 0}, // func 2: callee B
		},
		Bodies: []wasm.FunctionBody{
			// local.get 0; call_indirect (type 0, table 0); end
			{Code: []byte{0x20, 0x00, 0x11, 0x00, 0x00, 0x0B}},
			// i32.const 11; end
			{Code: []byte{0x41, 0x0B, 0x0B}},
			// i32.const 22; end
			{Code: []byte{0x41, 0x16, 0x0B}},
		},
		Table: &wasm.TableDecl{InitialSize: 2, MaxSize: uint32Ptr(2)},
		ElementSegments: []wasm.ElementSegment{
			{Offset: wasm.ConstExpr{Op: wasm.ConstExprI32Const, I32Value: 0}, FuncIndices: []uint32{1, 2}},
		},
		Exports: []wasm.ExportDecl{{Name: "call_it", Kind: wasm.ExportFunction, Index: 0}},
	}
	canon := wasm.NewCanonical(m.Types)
	fns := buildAllFunctions(t, m, canon)

	src, err := Generate(m, canon, fns, "generated", nil)
	require.NoError(t, err)
	requireValidGo(t, src)

	text := string(src)
	require.Contains(t, text, "m.table.Get(uint32(")
	require.Contains(t, text, ".CanonicalTypeIndex !=")
	require.Contains(t, text, "case 1:")
	require.Contains(t, text, "case 2:")
	require.Contains(t, text, "m.func_1(")
	require.Contains(t, text, "m.func_2(")
	require.Contains(t, text, "rt.TrapIndirectCallTypeMismatch")
	require.Contains(t, text, "rt.TrapUndefinedElement")
}

// A module with no functions at all, whose only content is an F32 global
// initialized to NaN — regression coverage for the bit-pattern rendering
// fix: a naive %v-formatted float literal cannot spell NaN as Go source.
func TestGenerateFloatGlobalConstantRendersAsBitPattern(t *testing.T) {
	m := &wasm.Module{
		Globals: []wasm.GlobalDecl{
			{Kind: wasm.F32, Mutable: false, Init: wasm.ConstExpr{Op: wasm.ConstExprF32Const, F32Value: float32(math.NaN())}},
		},
	}
	canon := wasm.NewCanonical(nil)

	src, err := Generate(m, canon, nil, "generated", nil)
	require.NoError(t, err)
	requireValidGo(t, src)

	text := string(src)
	require.Contains(t, text, "math.Float32frombits(0x")
	require.NotContains(t, text, "float32(NaN)")
	require.Contains(t, text, "\"math\"")
}

// One imported function and one export that calls it — exercises the host
// capability interface (§4.5 "Interfaces from imports") and confirms the
// constructor takes a host parameter when the module has imports.
func TestGenerateHostImportInterface(t *testing.T) {
	sig := wasm.TypeSignature{Params: []wasm.ValueKind{wasm.I32}}
	m := &wasm.Module{
		Types: []wasm.TypeSignature{sig},
		Imports: []wasm.ImportDecl{
			{Module: "env", Field: "log", Kind: wasm.ImportFunction, FuncTypeIndex: 0},
		},
		Funcs: []wasm.FuncSignature{
			{TypeIndex: 0, Imported: true},
			{TypeIndex: 0},
		},
		Bodies: []wasm.FunctionBody{
			// local.get 0; call 0 (the imported log); end
			{Code: []byte{0x20, 0x00, 0x10, 0x00, 0x0B}},
		},
		Exports: []wasm.ExportDecl{{Name: "run", Kind: wasm.ExportFunction, Index: 1}},
	}
	canon := wasm.NewCanonical(m.Types)
	fns := buildAllFunctions(t, m, canon)

	src, err := Generate(m, canon, fns, "generated", nil)
	require.NoError(t, err)
	requireValidGo(t, src)

	text := string(src)
	require.Contains(t, text, "type EnvHost interface")
	require.Contains(t, text, "type Host interface")
	require.True(t, strings.Contains(text, "host Host") || strings.Contains(text, "host,"))
}

func uint32Ptr(v uint32) *uint32 { return &v }
