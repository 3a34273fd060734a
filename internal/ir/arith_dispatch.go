package ir

import (
	"github.com/wasmforge/wasmforge/internal/diag"
	"github.com/wasmforge/wasmforge/internal/wasm"
)

// doArithmetic handles every opcode not given its own case in run: the
// comparison, arithmetic, bitwise, and conversion operators, each mapping to
// exactly one UnOp or BinOp (§3, §4.4).
func (b *builder) doArithmetic(op byte) error {
	switch op {
	case opI32Eqz:
		b.unOp(UnEqz, wasm.I32)
	case opI32Eq:
		b.binOp(BinEq, wasm.I32)
	case opI32Ne:
		b.binOp(BinNe, wasm.I32)
	case opI32LtS:
		b.binOp(BinLtS, wasm.I32)
	case opI32LtU:
		b.binOp(BinLtU, wasm.I32)
	case opI32GtS:
		b.binOp(BinGtS, wasm.I32)
	case opI32GtU:
		b.binOp(BinGtU, wasm.I32)
	case opI32LeS:
		b.binOp(BinLeS, wasm.I32)
	case opI32LeU:
		b.binOp(BinLeU, wasm.I32)
	case opI32GeS:
		b.binOp(BinGeS, wasm.I32)
	case opI32GeU:
		b.binOp(BinGeU, wasm.I32)

	case opI64Eqz:
		b.unOp(UnEqz, wasm.I32)
	case opI64Eq:
		b.binOp(BinEq, wasm.I32)
	case opI64Ne:
		b.binOp(BinNe, wasm.I32)
	case opI64LtS:
		b.binOp(BinLtS, wasm.I32)
	case opI64LtU:
		b.binOp(BinLtU, wasm.I32)
	case opI64GtS:
		b.binOp(BinGtS, wasm.I32)
	case opI64GtU:
		b.binOp(BinGtU, wasm.I32)
	case opI64LeS:
		b.binOp(BinLeS, wasm.I32)
	case opI64LeU:
		b.binOp(BinLeU, wasm.I32)
	case opI64GeS:
		b.binOp(BinGeS, wasm.I32)
	case opI64GeU:
		b.binOp(BinGeU, wasm.I32)

	case opF32Eq:
		b.binOp(BinEq, wasm.I32)
	case opF32Ne:
		b.binOp(BinNe, wasm.I32)
	case opF32Lt:
		b.binOp(BinLtS, wasm.I32) // float comparisons have no signedness split; reuse the S-named slot.
	case opF32Gt:
		b.binOp(BinGtS, wasm.I32)
	case opF32Le:
		b.binOp(BinLeS, wasm.I32)
	case opF32Ge:
		b.binOp(BinGeS, wasm.I32)

	case opF64Eq:
		b.binOp(BinEq, wasm.I32)
	case opF64Ne:
		b.binOp(BinNe, wasm.I32)
	case opF64Lt:
		b.binOp(BinLtS, wasm.I32)
	case opF64Gt:
		b.binOp(BinGtS, wasm.I32)
	case opF64Le:
		b.binOp(BinLeS, wasm.I32)
	case opF64Ge:
		b.binOp(BinGeS, wasm.I32)

	case opI32Clz:
		b.unOp(UnClz, wasm.I32)
	case opI32Ctz:
		b.unOp(UnCtz, wasm.I32)
	case opI32Popcnt:
		b.unOp(UnPopcnt, wasm.I32)
	case opI32Add:
		b.binOp(BinAdd, wasm.I32)
	case opI32Sub:
		b.binOp(BinSub, wasm.I32)
	case opI32Mul:
		b.binOp(BinMul, wasm.I32)
	case opI32DivS:
		b.binOp(BinDivS, wasm.I32)
	case opI32DivU:
		b.binOp(BinDivU, wasm.I32)
	case opI32RemS:
		b.binOp(BinRemS, wasm.I32)
	case opI32RemU:
		b.binOp(BinRemU, wasm.I32)
	case opI32And:
		b.binOp(BinAnd, wasm.I32)
	case opI32Or:
		b.binOp(BinOr, wasm.I32)
	case opI32Xor:
		b.binOp(BinXor, wasm.I32)
	case opI32Shl:
		b.binOp(BinShl, wasm.I32)
	case opI32ShrS:
		b.binOp(BinShrS, wasm.I32)
	case opI32ShrU:
		b.binOp(BinShrU, wasm.I32)
	case opI32Rotl:
		b.binOp(BinRotl, wasm.I32)
	case opI32Rotr:
		b.binOp(BinRotr, wasm.I32)

	case opI64Clz:
		b.unOp(UnClz, wasm.I64)
	case opI64Ctz:
		b.unOp(UnCtz, wasm.I64)
	case opI64Popcnt:
		b.unOp(UnPopcnt, wasm.I64)
	case opI64Add:
		b.binOp(BinAdd, wasm.I64)
	case opI64Sub:
		b.binOp(BinSub, wasm.I64)
	case opI64Mul:
		b.binOp(BinMul, wasm.I64)
	case opI64DivS:
		b.binOp(BinDivS, wasm.I64)
	case opI64DivU:
		b.binOp(BinDivU, wasm.I64)
	case opI64RemS:
		b.binOp(BinRemS, wasm.I64)
	case opI64RemU:
		b.binOp(BinRemU, wasm.I64)
	case opI64And:
		b.binOp(BinAnd, wasm.I64)
	case opI64Or:
		b.binOp(BinOr, wasm.I64)
	case opI64Xor:
		b.binOp(BinXor, wasm.I64)
	case opI64Shl:
		b.binOp(BinShl, wasm.I64)
	case opI64ShrS:
		b.binOp(BinShrS, wasm.I64)
	case opI64ShrU:
		b.binOp(BinShrU, wasm.I64)
	case opI64Rotl:
		b.binOp(BinRotl, wasm.I64)
	case opI64Rotr:
		b.binOp(BinRotr, wasm.I64)

	case opF32Abs:
		b.unOp(UnAbs, wasm.F32)
	case opF32Neg:
		b.unOp(UnNeg, wasm.F32)
	case opF32Ceil:
		b.unOp(UnCeil, wasm.F32)
	case opF32Floor:
		b.unOp(UnFloor, wasm.F32)
	case opF32Trunc:
		b.unOp(UnTrunc, wasm.F32)
	case opF32Nearest:
		b.unOp(UnNearest, wasm.F32)
	case opF32Sqrt:
		b.unOp(UnSqrt, wasm.F32)
	case opF32Add:
		b.binOp(BinAdd, wasm.F32)
	case opF32Sub:
		b.binOp(BinSub, wasm.F32)
	case opF32Mul:
		b.binOp(BinMul, wasm.F32)
	case opF32Div:
		b.binOp(BinDivS, wasm.F32)
	case opF32Min:
		b.binOp(BinMin, wasm.F32)
	case opF32Max:
		b.binOp(BinMax, wasm.F32)
	case opF32Copysign:
		b.binOp(BinCopysign, wasm.F32)

	case opF64Abs:
		b.unOp(UnAbs, wasm.F64)
	case opF64Neg:
		b.unOp(UnNeg, wasm.F64)
	case opF64Ceil:
		b.unOp(UnCeil, wasm.F64)
	case opF64Floor:
		b.unOp(UnFloor, wasm.F64)
	case opF64Trunc:
		b.unOp(UnTrunc, wasm.F64)
	case opF64Nearest:
		b.unOp(UnNearest, wasm.F64)
	case opF64Sqrt:
		b.unOp(UnSqrt, wasm.F64)
	case opF64Add:
		b.binOp(BinAdd, wasm.F64)
	case opF64Sub:
		b.binOp(BinSub, wasm.F64)
	case opF64Mul:
		b.binOp(BinMul, wasm.F64)
	case opF64Div:
		b.binOp(BinDivS, wasm.F64)
	case opF64Min:
		b.binOp(BinMin, wasm.F64)
	case opF64Max:
		b.binOp(BinMax, wasm.F64)
	case opF64Copysign:
		b.binOp(BinCopysign, wasm.F64)

	case opI32WrapI64:
		b.unOp(UnWrapI64ToI32, wasm.I32)
	case opI32TruncF32S:
		b.unOp(UnTruncF32SToI32, wasm.I32)
	case opI32TruncF32U:
		b.unOp(UnTruncF32UToI32, wasm.I32)
	case opI32TruncF64S:
		b.unOp(UnTruncF64SToI32, wasm.I32)
	case opI32TruncF64U:
		b.unOp(UnTruncF64UToI32, wasm.I32)
	case opI64ExtendI32S:
		b.unOp(UnExtendI32SToI64, wasm.I64)
	case opI64ExtendI32U:
		b.unOp(UnExtendI32UToI64, wasm.I64)
	case opI64TruncF32S:
		b.unOp(UnTruncF32SToI64, wasm.I64)
	case opI64TruncF32U:
		b.unOp(UnTruncF32UToI64, wasm.I64)
	case opI64TruncF64S:
		b.unOp(UnTruncF64SToI64, wasm.I64)
	case opI64TruncF64U:
		b.unOp(UnTruncF64UToI64, wasm.I64)
	case opF32ConvertI32S:
		b.unOp(UnConvertI32SToF32, wasm.F32)
	case opF32ConvertI32U:
		b.unOp(UnConvertI32UToF32, wasm.F32)
	case opF32ConvertI64S:
		b.unOp(UnConvertI64SToF32, wasm.F32)
	case opF32ConvertI64U:
		b.unOp(UnConvertI64UToF32, wasm.F32)
	case opF32DemoteF64:
		b.unOp(UnDemoteF64ToF32, wasm.F32)
	case opF64ConvertI32S:
		b.unOp(UnConvertI32SToF64, wasm.F64)
	case opF64ConvertI32U:
		b.unOp(UnConvertI32UToF64, wasm.F64)
	case opF64ConvertI64S:
		b.unOp(UnConvertI64SToF64, wasm.F64)
	case opF64ConvertI64U:
		b.unOp(UnConvertI64UToF64, wasm.F64)
	case opF64PromoteF32:
		b.unOp(UnPromoteF32ToF64, wasm.F64)
	case opI32ReinterpretF32:
		b.unOp(UnReinterpretF32AsI32, wasm.I32)
	case opI64ReinterpretF64:
		b.unOp(UnReinterpretF64AsI64, wasm.I64)
	case opF32ReinterpretI32:
		b.unOp(UnReinterpretI32AsF32, wasm.F32)
	case opF64ReinterpretI64:
		b.unOp(UnReinterpretI64AsF64, wasm.F64)

	case opI32Extend8S:
		b.unOp(UnExtend8SToI32, wasm.I32)
	case opI32Extend16S:
		b.unOp(UnExtend16SToI32, wasm.I32)
	case opI64Extend8S:
		b.unOp(UnExtend8SToI64, wasm.I64)
	case opI64Extend16S:
		b.unOp(UnExtend16SToI64, wasm.I64)
	case opI64Extend32S:
		b.unOp(UnExtend32SToI64, wasm.I64)

	default:
		return diag.UnsupportedFeaturef("unsupported opcode 0x%02x", op)
	}
	return nil
}
