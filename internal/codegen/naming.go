// Package codegen implements §4.5: lowering the parsed module plus its
// per-function IR into Go source text — a module type, a globals aggregate,
// host capability interfaces grouped by import module-name, an export
// interface, and one function per WebAssembly function whose body is a
// dispatch-over-control-variable state machine (§4.4's "no labeled break
// assumed" requirement).
//
// Nothing in the retrieval pack performs source-to-source Go generation
// (wazero and the other teachers compile to machine code or interpret
// directly), so this package's text-emission mechanics are grounded on the
// standard idiom every Go code generator uses: build the source with
// strings.Builder/fmt.Fprintf and canonicalize it with go/format (see
// DESIGN.md).
package codegen

import (
	"fmt"

	"github.com/wasmforge/wasmforge/internal/ir"
	"github.com/wasmforge/wasmforge/internal/wasm"
)

func varName(id ir.VarId) string {
	return fmt.Sprintf("v%d", id)
}

func localName(idx uint32) string {
	return fmt.Sprintf("local%d", idx)
}

func blockLabel(id ir.BlockId) string {
	return fmt.Sprintf("%d", id)
}

// funcName names an internal function by combined-index-space function
// index, per §6's "internal functions are named by local index (func_0,
// func_1, …)".
func funcName(idx uint32) string {
	return fmt.Sprintf("func_%d", idx)
}

func goType(k wasm.ValueKind) string {
	switch k {
	case wasm.I32:
		return "int32"
	case wasm.I64:
		return "int64"
	case wasm.F32:
		return "float32"
	case wasm.F64:
		return "float64"
	case wasm.FuncRef:
		return "*rt.FuncRef"
	default:
		return "int32"
	}
}

func zeroLiteral(k wasm.ValueKind) string {
	switch k {
	case wasm.F32, wasm.F64:
		return "0"
	case wasm.FuncRef:
		return "nil"
	default:
		return "0"
	}
}

// exportedName produces an exported Go identifier from a WebAssembly export
// or import field name, which may contain characters Go identifiers don't
// allow (`.`, `-`, etc).
func exportedName(s string) string {
	return sanitizeIdent(s, true)
}

func unexportedName(s string) string {
	return sanitizeIdent(s, false)
}

func sanitizeIdent(s string, exported bool) string {
	out := make([]byte, 0, len(s)+1)
	upperNext := exported
	for i := 0; i < len(s); i++ {
		c := s[i]
		isLetter := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		isDigit := c >= '0' && c <= '9'
		if !isLetter && !isDigit {
			upperNext = true
			continue
		}
		if upperNext && c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		upperNext = false
		out = append(out, c)
	}
	if len(out) == 0 {
		return "Field"
	}
	if out[0] >= '0' && out[0] <= '9' {
		out = append([]byte{'F'}, out...)
	}
	return string(out)
}
