package codegen

import (
	"fmt"
	"math"

	"github.com/wasmforge/wasmforge/internal/wasm"
)

// globalInfo classifies one entry of the combined global index space for
// emission purposes (§4.5 "Immutable globals ... Mutable globals").
type globalInfo struct {
	Kind     wasm.ValueKind
	Mutable  bool
	Imported bool

	// ImportField is the exported host-interface field name, set only when
	// Imported is true.
	ImportField string

	// Literal is true when the global is local, immutable, and initialized
	// by a constant literal — the only case emitted at package level: a Go
	// const, or a var for F32/F64, whose bit-pattern initializer is not a Go
	// constant expression. A local immutable global initialized from another (always
	// imported) global via global.get cannot be a Go const, since its value
	// is only known once the host is supplied at construction; it is
	// emitted as a struct field instead and set once in the constructor.
	Literal bool

	Init wasm.ConstExpr
}

// globalTable classifies every entry of m.Globals in combined-index-space
// order.
func globalTable(m *wasm.Module) []globalInfo {
	out := make([]globalInfo, len(m.Globals))
	var importIdx uint32
	importFieldOf := map[uint32]string{}
	for _, imp := range m.Imports {
		if imp.Kind != wasm.ImportGlobal {
			continue
		}
		importFieldOf[importIdx] = imp.Field
		importIdx++
	}
	for i, g := range m.Globals {
		idx := uint32(i)
		info := globalInfo{Kind: g.Kind, Mutable: g.Mutable, Init: g.Init}
		if field, ok := importFieldOf[idx]; ok {
			info.Imported = true
			info.ImportField = field
		} else {
			info.Literal = !g.Mutable && g.Init.Op != wasm.ConstExprGlobalGet
		}
		out[i] = info
	}
	return out
}

// isStructField reports whether a local (non-imported) global is stored as
// a ModuleGlobals field rather than a package-level const.
func (g globalInfo) isStructField() bool {
	return !g.Imported && !g.Literal
}

// getExpr produces the Go expression reading this global's current value,
// used both by GlobalGet emission and by later const/struct initializers
// that reference an earlier global.
func (g globalInfo) getExpr(idx uint32) string {
	switch {
	case g.Imported:
		return fmt.Sprintf("m.host.Get%s()", exportedName(g.ImportField))
	case g.Literal:
		return globalConstName(idx)
	default:
		return fmt.Sprintf("m.%s", globalFieldName(idx))
	}
}

// setStmt produces the Go statement assigning value to this global, used by
// GlobalSet emission. Only ever called for mutable globals.
func (g globalInfo) setStmt(idx uint32, value string) string {
	if g.Imported {
		return fmt.Sprintf("m.host.Set%s(%s)", exportedName(g.ImportField), value)
	}
	return fmt.Sprintf("m.%s = %s", globalFieldName(idx), value)
}

// initExpr renders a ConstExpr as a Go expression in constructor context,
// where m and (if the module has imports) host are in scope. A GlobalGet
// initializer always refers to an already-resolved earlier global (the
// WebAssembly spec only allows referencing an imported immutable global),
// so it reads through that global's own getExpr.
func initExpr(globals []globalInfo, c wasm.ConstExpr) string {
	switch c.Op {
	case wasm.ConstExprI32Const:
		return fmt.Sprintf("%d", c.I32Value)
	case wasm.ConstExprI64Const:
		return fmt.Sprintf("%d", c.I64Value)
	case wasm.ConstExprF32Const:
		// Rendered as the exact bit pattern, matching function-body Const
		// emission (codegen/function.go), so a NaN payload or signed zero
		// initializer survives verbatim rather than going through a
		// formatted float literal that cannot spell NaN/Inf as Go source.
		return fmt.Sprintf("math.Float32frombits(0x%08x)", math.Float32bits(c.F32Value))
	case wasm.ConstExprF64Const:
		return fmt.Sprintf("math.Float64frombits(0x%016x)", math.Float64bits(c.F64Value))
	case wasm.ConstExprGlobalGet:
		return globals[c.GlobalIndex].getExpr(c.GlobalIndex)
	default:
		return "0"
	}
}
