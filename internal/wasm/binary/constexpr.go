package binary

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"

	"github.com/wasmforge/wasmforge/internal/diag"
	"github.com/wasmforge/wasmforge/internal/wasm"
	"github.com/wasmforge/wasmforge/internal/wasm/leb128"
)

// decodeConstExpr reads a single-operator constant initializer expression
// (global/data/element offsets) terminated by `end` (0x0B), per §3's
// ConstExpr.
func decodeConstExpr(r *bytes.Reader) (wasm.ConstExpr, error) {
	op, err := r.ReadByte()
	if err != nil {
		return wasm.ConstExpr{}, diag.Wrap(err, "const expr opcode")
	}
	var expr wasm.ConstExpr
	switch op {
	case 0x41: // i32.const
		v, err := leb128.DecodeInt32(r)
		if err != nil {
			return wasm.ConstExpr{}, diag.Wrap(err, "i32.const operand")
		}
		expr = wasm.ConstExpr{Op: wasm.ConstExprI32Const, I32Value: v}
	case 0x42: // i64.const
		v, err := leb128.DecodeInt64(r)
		if err != nil {
			return wasm.ConstExpr{}, diag.Wrap(err, "i64.const operand")
		}
		expr = wasm.ConstExpr{Op: wasm.ConstExprI64Const, I64Value: v}
	case 0x43: // f32.const
		buf := make([]byte, 4)
		if _, err := io.ReadFull(r, buf); err != nil {
			return wasm.ConstExpr{}, diag.Wrap(err, "f32.const operand")
		}
		expr = wasm.ConstExpr{Op: wasm.ConstExprF32Const, F32Value: math.Float32frombits(binary.LittleEndian.Uint32(buf))}
	case 0x44: // f64.const
		buf := make([]byte, 8)
		if _, err := io.ReadFull(r, buf); err != nil {
			return wasm.ConstExpr{}, diag.Wrap(err, "f64.const operand")
		}
		expr = wasm.ConstExpr{Op: wasm.ConstExprF64Const, F64Value: math.Float64frombits(binary.LittleEndian.Uint64(buf))}
	case 0x23: // global.get
		idx, err := leb128.DecodeUint32(r)
		if err != nil {
			return wasm.ConstExpr{}, diag.Wrap(err, "global.get operand")
		}
		expr = wasm.ConstExpr{Op: wasm.ConstExprGlobalGet, GlobalIndex: idx}
	default:
		return wasm.ConstExpr{}, diag.UnsupportedFeaturef("unsupported const expr opcode 0x%02x", op)
	}
	end, err := r.ReadByte()
	if err != nil || end != 0x0B {
		return wasm.ConstExpr{}, diag.MalformedInput("const expr missing end opcode")
	}
	return expr, nil
}

// EvalConstExprOffset resolves an i32 ConstExpr to a uint32 byte offset, the
// only shape data/element segment offsets take. A global.get reference must
// name an already-defined immutable imported global (per the WebAssembly
// spec); resolvedGlobals is the evaluated initializer of every earlier global.
func EvalConstExprOffset(expr wasm.ConstExpr, resolvedGlobals []int32) (uint32, error) {
	switch expr.Op {
	case wasm.ConstExprI32Const:
		return uint32(expr.I32Value), nil
	case wasm.ConstExprGlobalGet:
		if int(expr.GlobalIndex) >= len(resolvedGlobals) {
			return 0, diag.InvalidIndexf("const expr references out-of-range global %d", expr.GlobalIndex)
		}
		return uint32(resolvedGlobals[expr.GlobalIndex]), nil
	default:
		return 0, diag.UnsupportedFeaturef("const expr of kind %d is not a valid offset expression", expr.Op)
	}
}
