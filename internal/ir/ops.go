package ir

// UnOpKind enumerates the unary operators §3 groups under UnOp.
type UnOpKind uint8

const (
	UnClz UnOpKind = iota
	UnCtz
	UnPopcnt
	UnEqz
	UnAbs
	UnNeg
	UnSqrt
	UnCeil
	UnFloor
	UnTrunc
	UnNearest
	// Conversions, extensions, wraps, reinterprets: one Instr.Op value per
	// distinct WebAssembly opcode, all carried as a UnOp since each takes a
	// single operand and produces a single result.
	UnWrapI64ToI32
	UnExtendI32SToI64
	UnExtendI32UToI64
	UnExtend8SToI32
	UnExtend16SToI32
	UnExtend8SToI64
	UnExtend16SToI64
	UnExtend32SToI64
	UnTruncF32SToI32
	UnTruncF32UToI32
	UnTruncF64SToI32
	UnTruncF64UToI32
	UnTruncF32SToI64
	UnTruncF32UToI64
	UnTruncF64SToI64
	UnTruncF64UToI64
	UnConvertI32SToF32
	UnConvertI32UToF32
	UnConvertI64SToF32
	UnConvertI64UToF32
	UnConvertI32SToF64
	UnConvertI32UToF64
	UnConvertI64SToF64
	UnConvertI64UToF64
	UnDemoteF64ToF32
	UnPromoteF32ToF64
	UnReinterpretF32AsI32
	UnReinterpretI32AsF32
	UnReinterpretF64AsI64
	UnReinterpretI64AsF64
)

// BinOpKind enumerates the ~60 binary arithmetic/bitwise/comparison
// operators §3 groups under BinOp. Signedness where relevant (division,
// remainder, shifts, comparisons) is folded into the Kind, matching how the
// WebAssembly opcode space itself assigns a distinct opcode per signedness.
type BinOpKind uint8

const (
	BinAdd BinOpKind = iota
	BinSub
	BinMul
	BinDivS
	BinDivU
	BinRemS
	BinRemU
	BinAnd
	BinOr
	BinXor
	BinShl
	BinShrS
	BinShrU
	BinRotl
	BinRotr
	BinEq
	BinNe
	BinLtS
	BinLtU
	BinGtS
	BinGtU
	BinLeS
	BinLeU
	BinGeS
	BinGeU
	// Float-only operators.
	BinMin
	BinMax
	BinCopysign
	// Float comparisons reuse BinEq/BinNe/Bin{Lt,Gt,Le,Ge}{S -- the signed
	// variant, reused since float comparisons have no signedness split}.
)
