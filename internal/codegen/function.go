package codegen

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/wasmforge/wasmforge/internal/ir"
	"github.com/wasmforge/wasmforge/internal/wasm"
)

// tempCounter hands out unique numeric suffixes for the throwaway tmpN/trapN/
// entryN bindings a fallible operation's emission needs. Reusing the same two
// names across different blocks would be fine (each case is its own Go block
// scope) but a single function-wide counter keeps generated names easy to
// read top to bottom.
type tempCounter struct{ n int }

func (t *tempCounter) fresh() int {
	t.n++
	return t.n
}

// emitFunction lowers one IrFunction to a Go method on *Module, appending it
// to w.functions (§4.5 "Function emission — state-machine lowering").
func emitFunction(w *moduleWriter, fn *ir.IrFunction) {
	if w.log != nil {
		w.log.WithField("function", fn.Index).Debug("emitting function")
	}

	sig := w.module.FuncSignatureOf(fn.Index)
	b := &w.functions

	fmt.Fprintf(b, "func (m *Module) %s(%s) (%s, rt.Trap) {\n", funcName(fn.Index), paramList(sig.Params), resultTypeOrEmpty(sig.Result))

	zero := zeroResultLiteral(sig.Result)
	reads := readLocals(fn)

	for i := range fn.Params {
		idx := uint32(i)
		if reads[idx] {
			fmt.Fprintf(b, "\t%s := a%d\n", localName(idx), i)
		}
	}
	for i, l := range fn.Locals {
		idx := uint32(len(fn.Params) + i)
		if reads[idx] {
			fmt.Fprintf(b, "\t%s := %s(%s)\n", localName(idx), goType(l.Kind), zeroLiteral(l.Kind))
		}
	}

	for _, v := range collectUsedVars(fn) {
		fmt.Fprintf(b, "\tvar %s %s\n", varName(v), goType(fn.VarKinds[v]))
	}

	fmt.Fprintf(b, "\tstate := uint32(%d)\n", fn.EntryBlock)
	b.WriteString("\tfor {\n\t\tswitch state {\n")

	tmp := &tempCounter{}
	for _, blk := range fn.Blocks {
		fmt.Fprintf(b, "\t\tcase %s:\n", blockLabel(blk.ID))
		for _, instr := range blk.Instructions {
			emitInstr(w, fn, instr, zero, reads, tmp)
		}
		emitTerminator(b, blk.Terminator, zero)
	}
	fmt.Fprintf(b, "\t\tdefault:\n\t\t\treturn %s, 0\n", zero)
	b.WriteString("\t\t}\n\t}\n}\n\n")
}

func zeroResultLiteral(r *wasm.ValueKind) string {
	if r == nil {
		return "struct{}{}"
	}
	return zeroLiteral(*r)
}

// readLocals reports which local-slot indices (combined params+declared
// locals, in the same order builder.go assigns them) are ever read by a
// LocalGet. A slot that is only ever written (LocalSet/LocalTee) and never
// read needs no Go variable of its own — declaring one and never reading it
// back would fail the "declared and not used" check, so emitFunction skips
// the declaration and the corresponding writes become a bare discard.
func readLocals(fn *ir.IrFunction) map[uint32]bool {
	reads := map[uint32]bool{}
	for _, blk := range fn.Blocks {
		for _, instr := range blk.Instructions {
			if g, ok := instr.(ir.LocalGet); ok {
				reads[g.Local] = true
			}
		}
	}
	return reads
}

// collectUsedVars returns, in ascending VarId order, every VarId some
// instruction assigns. Every IrFunction parameter also receives a VarId at
// build time (see builder.Build), but it is never the Dest of any
// instruction — locals are accessed by plain index via LocalGet/Set/Tee
// instead — so those VarIds are correctly absent here and never get a
// Go declaration that would sit unused.
func collectUsedVars(fn *ir.IrFunction) []ir.VarId {
	seen := map[ir.VarId]bool{}
	add := func(id ir.VarId) { seen[id] = true }
	for _, blk := range fn.Blocks {
		for _, instr := range blk.Instructions {
			switch in := instr.(type) {
			case ir.Const:
				add(in.Dest)
			case ir.UnOp:
				add(in.Dest)
			case ir.BinOp:
				add(in.Dest)
			case ir.Load:
				add(in.Dest)
			case ir.Select:
				add(in.Dest)
			case ir.LocalGet:
				add(in.Dest)
			case ir.LocalTee:
				add(in.Dest)
			case ir.GlobalGet:
				add(in.Dest)
			case ir.MemorySize:
				add(in.Dest)
			case ir.MemoryGrow:
				add(in.Dest)
			case ir.Call:
				if in.HasDest {
					add(in.Dest)
				}
			case ir.CallImport:
				if in.HasDest {
					add(in.Dest)
				}
			case ir.CallIndirect:
				if in.HasDest {
					add(in.Dest)
				}
			case ir.Copy:
				add(in.Dest)
			}
		}
	}
	out := make([]ir.VarId, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func varNames(ids []ir.VarId) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = varName(id)
	}
	return out
}

func emitInstr(w *moduleWriter, fn *ir.IrFunction, instr ir.Instr, zero string, reads map[uint32]bool, tmp *tempCounter) {
	b := &w.functions
	switch in := instr.(type) {
	case ir.Const:
		emitConst(b, in)
	case ir.UnOp:
		emitUnOp(b, fn, in, zero, tmp)
	case ir.BinOp:
		emitBinOp(b, fn, in, zero, tmp)
	case ir.Load:
		emitLoad(b, in, zero, tmp)
	case ir.Store:
		emitStore(b, in, zero, tmp)
	case ir.Select:
		fmt.Fprintf(b, "\t\t\tif %s != 0 {\n\t\t\t\t%s = %s\n\t\t\t} else {\n\t\t\t\t%s = %s\n\t\t\t}\n",
			varName(in.Condition), varName(in.Dest), varName(in.TrueValue), varName(in.Dest), varName(in.FalseValue))
	case ir.LocalGet:
		fmt.Fprintf(b, "\t\t\t%s = %s\n", varName(in.Dest), localName(in.Local))
	case ir.LocalSet:
		if reads[in.Local] {
			fmt.Fprintf(b, "\t\t\t%s = %s\n", localName(in.Local), varName(in.Source))
		} else {
			fmt.Fprintf(b, "\t\t\t_ = %s\n", varName(in.Source))
		}
	case ir.LocalTee:
		if reads[in.Local] {
			fmt.Fprintf(b, "\t\t\t%s = %s\n", localName(in.Local), varName(in.Source))
		}
		fmt.Fprintf(b, "\t\t\t%s = %s\n", varName(in.Dest), varName(in.Source))
	case ir.GlobalGet:
		globals := w.globalInfos()
		fmt.Fprintf(b, "\t\t\t%s = %s\n", varName(in.Dest), globals[in.Global].getExpr(in.Global))
	case ir.GlobalSet:
		globals := w.globalInfos()
		fmt.Fprintf(b, "\t\t\t%s\n", globals[in.Global].setStmt(in.Global, varName(in.Source)))
	case ir.MemorySize:
		fmt.Fprintf(b, "\t\t\t%s = m.memory.Size()\n", varName(in.Dest))
	case ir.MemoryGrow:
		fmt.Fprintf(b, "\t\t\t%s = m.memory.Grow(uint32(%s))\n", varName(in.Dest), varName(in.Delta))
	case ir.Call:
		emitCall(b, in, zero, tmp)
	case ir.CallImport:
		emitCallImport(b, in)
	case ir.CallIndirect:
		emitCallIndirect(w, in, zero, tmp)
	case ir.Drop:
		fmt.Fprintf(b, "\t\t\t_ = %s\n", varName(in.Source))
	case ir.Copy:
		fmt.Fprintf(b, "\t\t\t%s = %s\n", varName(in.Dest), varName(in.Source))
	}
}

func emitConst(b *strings.Builder, in ir.Const) {
	switch in.Kind {
	case wasm.I32:
		fmt.Fprintf(b, "\t\t\t%s = int32(%d)\n", varName(in.Dest), int32(in.I32))
	case wasm.I64:
		fmt.Fprintf(b, "\t\t\t%s = int64(%d)\n", varName(in.Dest), in.I64)
	case wasm.F32:
		// Emitted as the exact bit pattern rather than a formatted float
		// literal so NaN payloads and signed zero survive verbatim.
		fmt.Fprintf(b, "\t\t\t%s = math.Float32frombits(0x%08x)\n", varName(in.Dest), math.Float32bits(in.F32))
	case wasm.F64:
		fmt.Fprintf(b, "\t\t\t%s = math.Float64frombits(0x%016x)\n", varName(in.Dest), math.Float64bits(in.F64))
	}
}

// emitFallible renders the common "call, check trap, store result" shape
// shared by every runtime operation that can fail. castTo, if given, wraps
// the successful result before assigning it to dest (needed when the runtime
// function returns an unsigned type but dest is declared signed).
func emitFallible(b *strings.Builder, dest, call, zero string, tmp *tempCounter, castTo ...string) {
	n := tmp.fresh()
	fmt.Fprintf(b, "\t\t\ttmp%d, trap%d := %s\n", n, n, call)
	fmt.Fprintf(b, "\t\t\tif trap%d != 0 {\n\t\t\t\treturn %s, trap%d\n\t\t\t}\n", n, zero, n)
	if len(castTo) > 0 {
		fmt.Fprintf(b, "\t\t\t%s = %s(tmp%d)\n", dest, castTo[0], n)
	} else {
		fmt.Fprintf(b, "\t\t\t%s = tmp%d\n", dest, n)
	}
}

func emitFloatUnary(b *strings.Builder, dest, v string, kind wasm.ValueKind, mathFn string) {
	if kind == wasm.F32 {
		fmt.Fprintf(b, "\t\t\t%s = float32(math.%s(float64(%s)))\n", dest, mathFn, v)
	} else {
		fmt.Fprintf(b, "\t\t\t%s = math.%s(%s)\n", dest, mathFn, v)
	}
}

func emitUnOp(b *strings.Builder, fn *ir.IrFunction, in ir.UnOp, zero string, tmp *tempCounter) {
	dest := varName(in.Dest)
	v := varName(in.Operand)
	destKind := fn.VarKinds[in.Dest]
	is64 := destKind == wasm.I64

	switch in.Op {
	case ir.UnClz:
		if is64 {
			fmt.Fprintf(b, "\t\t\t%s = int64(bits.LeadingZeros64(uint64(%s)))\n", dest, v)
		} else {
			fmt.Fprintf(b, "\t\t\t%s = int32(bits.LeadingZeros32(uint32(%s)))\n", dest, v)
		}
	case ir.UnCtz:
		if is64 {
			fmt.Fprintf(b, "\t\t\t%s = int64(bits.TrailingZeros64(uint64(%s)))\n", dest, v)
		} else {
			fmt.Fprintf(b, "\t\t\t%s = int32(bits.TrailingZeros32(uint32(%s)))\n", dest, v)
		}
	case ir.UnPopcnt:
		if is64 {
			fmt.Fprintf(b, "\t\t\t%s = int64(bits.OnesCount64(uint64(%s)))\n", dest, v)
		} else {
			fmt.Fprintf(b, "\t\t\t%s = int32(bits.OnesCount32(uint32(%s)))\n", dest, v)
		}
	case ir.UnEqz:
		// Works whether the operand is i32 or i64: the untyped constant 0
		// adopts whichever width v already has.
		fmt.Fprintf(b, "\t\t\t%s = rt.BoolToI32(%s == 0)\n", dest, v)
	case ir.UnAbs:
		if destKind == wasm.F32 {
			fmt.Fprintf(b, "\t\t\t%s = float32(math.Abs(float64(%s)))\n", dest, v)
		} else {
			fmt.Fprintf(b, "\t\t\t%s = math.Abs(%s)\n", dest, v)
		}
	case ir.UnNeg:
		fmt.Fprintf(b, "\t\t\t%s = -%s\n", dest, v)
	case ir.UnSqrt:
		if destKind == wasm.F32 {
			fmt.Fprintf(b, "\t\t\t%s = float32(math.Sqrt(float64(%s)))\n", dest, v)
		} else {
			fmt.Fprintf(b, "\t\t\t%s = math.Sqrt(%s)\n", dest, v)
		}
	case ir.UnCeil:
		emitFloatUnary(b, dest, v, destKind, "Ceil")
	case ir.UnFloor:
		emitFloatUnary(b, dest, v, destKind, "Floor")
	case ir.UnTrunc:
		emitFloatUnary(b, dest, v, destKind, "Trunc")
	case ir.UnNearest:
		emitFloatUnary(b, dest, v, destKind, "RoundToEven")
	case ir.UnWrapI64ToI32:
		fmt.Fprintf(b, "\t\t\t%s = int32(%s)\n", dest, v)
	case ir.UnExtendI32SToI64:
		fmt.Fprintf(b, "\t\t\t%s = int64(%s)\n", dest, v)
	case ir.UnExtendI32UToI64:
		fmt.Fprintf(b, "\t\t\t%s = int64(uint32(%s))\n", dest, v)
	case ir.UnExtend8SToI32:
		fmt.Fprintf(b, "\t\t\t%s = int32(int8(%s))\n", dest, v)
	case ir.UnExtend16SToI32:
		fmt.Fprintf(b, "\t\t\t%s = int32(int16(%s))\n", dest, v)
	case ir.UnExtend8SToI64:
		fmt.Fprintf(b, "\t\t\t%s = int64(int8(%s))\n", dest, v)
	case ir.UnExtend16SToI64:
		fmt.Fprintf(b, "\t\t\t%s = int64(int16(%s))\n", dest, v)
	case ir.UnExtend32SToI64:
		fmt.Fprintf(b, "\t\t\t%s = int64(int32(%s))\n", dest, v)
	case ir.UnTruncF32SToI32:
		emitFallible(b, dest, fmt.Sprintf("rt.TruncI32S(float64(%s))", v), zero, tmp)
	case ir.UnTruncF32UToI32:
		emitFallible(b, dest, fmt.Sprintf("rt.TruncI32U(float64(%s))", v), zero, tmp)
	case ir.UnTruncF64SToI32:
		emitFallible(b, dest, fmt.Sprintf("rt.TruncI32S(%s)", v), zero, tmp)
	case ir.UnTruncF64UToI32:
		emitFallible(b, dest, fmt.Sprintf("rt.TruncI32U(%s)", v), zero, tmp)
	case ir.UnTruncF32SToI64:
		emitFallible(b, dest, fmt.Sprintf("rt.TruncI64S(float64(%s))", v), zero, tmp)
	case ir.UnTruncF32UToI64:
		emitFallible(b, dest, fmt.Sprintf("rt.TruncI64U(float64(%s))", v), zero, tmp)
	case ir.UnTruncF64SToI64:
		emitFallible(b, dest, fmt.Sprintf("rt.TruncI64S(%s)", v), zero, tmp)
	case ir.UnTruncF64UToI64:
		emitFallible(b, dest, fmt.Sprintf("rt.TruncI64U(%s)", v), zero, tmp)
	case ir.UnConvertI32SToF32:
		fmt.Fprintf(b, "\t\t\t%s = float32(%s)\n", dest, v)
	case ir.UnConvertI32UToF32:
		fmt.Fprintf(b, "\t\t\t%s = float32(uint32(%s))\n", dest, v)
	case ir.UnConvertI64SToF32:
		fmt.Fprintf(b, "\t\t\t%s = float32(%s)\n", dest, v)
	case ir.UnConvertI64UToF32:
		fmt.Fprintf(b, "\t\t\t%s = float32(uint64(%s))\n", dest, v)
	case ir.UnConvertI32SToF64:
		fmt.Fprintf(b, "\t\t\t%s = float64(%s)\n", dest, v)
	case ir.UnConvertI32UToF64:
		fmt.Fprintf(b, "\t\t\t%s = float64(uint32(%s))\n", dest, v)
	case ir.UnConvertI64SToF64:
		fmt.Fprintf(b, "\t\t\t%s = float64(%s)\n", dest, v)
	case ir.UnConvertI64UToF64:
		fmt.Fprintf(b, "\t\t\t%s = float64(uint64(%s))\n", dest, v)
	case ir.UnDemoteF64ToF32:
		fmt.Fprintf(b, "\t\t\t%s = float32(%s)\n", dest, v)
	case ir.UnPromoteF32ToF64:
		fmt.Fprintf(b, "\t\t\t%s = float64(%s)\n", dest, v)
	case ir.UnReinterpretF32AsI32:
		fmt.Fprintf(b, "\t\t\t%s = int32(math.Float32bits(%s))\n", dest, v)
	case ir.UnReinterpretI32AsF32:
		fmt.Fprintf(b, "\t\t\t%s = math.Float32frombits(uint32(%s))\n", dest, v)
	case ir.UnReinterpretF64AsI64:
		fmt.Fprintf(b, "\t\t\t%s = int64(math.Float64bits(%s))\n", dest, v)
	case ir.UnReinterpretI64AsF64:
		fmt.Fprintf(b, "\t\t\t%s = math.Float64frombits(uint64(%s))\n", dest, v)
	}
}

func emitUnsignedCompare(b *strings.Builder, dest, lhs, rhs string, kind wasm.ValueKind, op string) {
	width := "uint32"
	if kind == wasm.I64 {
		width = "uint64"
	}
	fmt.Fprintf(b, "\t\t\t%s = rt.BoolToI32(%s(%s) %s %s(%s))\n", dest, width, lhs, op, width, rhs)
}

func emitBinOp(b *strings.Builder, fn *ir.IrFunction, in ir.BinOp, zero string, tmp *tempCounter) {
	dest := varName(in.Dest)
	lhs := varName(in.Lhs)
	rhs := varName(in.Rhs)
	destKind := fn.VarKinds[in.Dest]
	lhsKind := fn.VarKinds[in.Lhs]
	is64 := destKind == wasm.I64

	switch in.Op {
	case ir.BinAdd:
		fmt.Fprintf(b, "\t\t\t%s = %s + %s\n", dest, lhs, rhs)
	case ir.BinSub:
		fmt.Fprintf(b, "\t\t\t%s = %s - %s\n", dest, lhs, rhs)
	case ir.BinMul:
		fmt.Fprintf(b, "\t\t\t%s = %s * %s\n", dest, lhs, rhs)
	case ir.BinDivS:
		if destKind == wasm.F32 || destKind == wasm.F64 {
			fmt.Fprintf(b, "\t\t\t%s = %s / %s\n", dest, lhs, rhs)
		} else if is64 {
			emitFallible(b, dest, fmt.Sprintf("rt.DivS64(%s, %s)", lhs, rhs), zero, tmp)
		} else {
			emitFallible(b, dest, fmt.Sprintf("rt.DivS32(%s, %s)", lhs, rhs), zero, tmp)
		}
	case ir.BinDivU:
		if is64 {
			emitFallible(b, dest, fmt.Sprintf("rt.DivU64(uint64(%s), uint64(%s))", lhs, rhs), zero, tmp, "int64")
		} else {
			emitFallible(b, dest, fmt.Sprintf("rt.DivU32(uint32(%s), uint32(%s))", lhs, rhs), zero, tmp, "int32")
		}
	case ir.BinRemS:
		if is64 {
			emitFallible(b, dest, fmt.Sprintf("rt.RemS64(%s, %s)", lhs, rhs), zero, tmp)
		} else {
			emitFallible(b, dest, fmt.Sprintf("rt.RemS32(%s, %s)", lhs, rhs), zero, tmp)
		}
	case ir.BinRemU:
		if is64 {
			emitFallible(b, dest, fmt.Sprintf("rt.RemU64(uint64(%s), uint64(%s))", lhs, rhs), zero, tmp, "int64")
		} else {
			emitFallible(b, dest, fmt.Sprintf("rt.RemU32(uint32(%s), uint32(%s))", lhs, rhs), zero, tmp, "int32")
		}
	case ir.BinAnd:
		fmt.Fprintf(b, "\t\t\t%s = %s & %s\n", dest, lhs, rhs)
	case ir.BinOr:
		fmt.Fprintf(b, "\t\t\t%s = %s | %s\n", dest, lhs, rhs)
	case ir.BinXor:
		fmt.Fprintf(b, "\t\t\t%s = %s ^ %s\n", dest, lhs, rhs)
	case ir.BinShl:
		if is64 {
			fmt.Fprintf(b, "\t\t\t%s = rt.Shl64(%s, uint64(%s))\n", dest, lhs, rhs)
		} else {
			fmt.Fprintf(b, "\t\t\t%s = rt.Shl32(%s, uint32(%s))\n", dest, lhs, rhs)
		}
	case ir.BinShrS:
		if is64 {
			fmt.Fprintf(b, "\t\t\t%s = rt.ShrS64(%s, uint64(%s))\n", dest, lhs, rhs)
		} else {
			fmt.Fprintf(b, "\t\t\t%s = rt.ShrS32(%s, uint32(%s))\n", dest, lhs, rhs)
		}
	case ir.BinShrU:
		if is64 {
			fmt.Fprintf(b, "\t\t\t%s = int64(rt.ShrU64(uint64(%s), uint64(%s)))\n", dest, lhs, rhs)
		} else {
			fmt.Fprintf(b, "\t\t\t%s = int32(rt.ShrU32(uint32(%s), uint32(%s)))\n", dest, lhs, rhs)
		}
	case ir.BinRotl:
		if is64 {
			fmt.Fprintf(b, "\t\t\t%s = int64(rt.Rotl64(uint64(%s), uint64(%s)))\n", dest, lhs, rhs)
		} else {
			fmt.Fprintf(b, "\t\t\t%s = int32(rt.Rotl32(uint32(%s), uint32(%s)))\n", dest, lhs, rhs)
		}
	case ir.BinRotr:
		if is64 {
			fmt.Fprintf(b, "\t\t\t%s = int64(rt.Rotr64(uint64(%s), uint64(%s)))\n", dest, lhs, rhs)
		} else {
			fmt.Fprintf(b, "\t\t\t%s = int32(rt.Rotr32(uint32(%s), uint32(%s)))\n", dest, lhs, rhs)
		}
	case ir.BinEq:
		fmt.Fprintf(b, "\t\t\t%s = rt.BoolToI32(%s == %s)\n", dest, lhs, rhs)
	case ir.BinNe:
		fmt.Fprintf(b, "\t\t\t%s = rt.BoolToI32(%s != %s)\n", dest, lhs, rhs)
	case ir.BinLtS:
		// Also the float less-than slot (§ops.go comment); Go's native `<`
		// already gives the right answer for both signed ints and floats.
		fmt.Fprintf(b, "\t\t\t%s = rt.BoolToI32(%s < %s)\n", dest, lhs, rhs)
	case ir.BinGtS:
		fmt.Fprintf(b, "\t\t\t%s = rt.BoolToI32(%s > %s)\n", dest, lhs, rhs)
	case ir.BinLeS:
		fmt.Fprintf(b, "\t\t\t%s = rt.BoolToI32(%s <= %s)\n", dest, lhs, rhs)
	case ir.BinGeS:
		fmt.Fprintf(b, "\t\t\t%s = rt.BoolToI32(%s >= %s)\n", dest, lhs, rhs)
	case ir.BinLtU:
		emitUnsignedCompare(b, dest, lhs, rhs, lhsKind, "<")
	case ir.BinGtU:
		emitUnsignedCompare(b, dest, lhs, rhs, lhsKind, ">")
	case ir.BinLeU:
		emitUnsignedCompare(b, dest, lhs, rhs, lhsKind, "<=")
	case ir.BinGeU:
		emitUnsignedCompare(b, dest, lhs, rhs, lhsKind, ">=")
	case ir.BinMin:
		if destKind == wasm.F32 {
			fmt.Fprintf(b, "\t\t\t%s = rt.WasmCompatMin32(%s, %s)\n", dest, lhs, rhs)
		} else {
			fmt.Fprintf(b, "\t\t\t%s = rt.WasmCompatMin(%s, %s)\n", dest, lhs, rhs)
		}
	case ir.BinMax:
		if destKind == wasm.F32 {
			fmt.Fprintf(b, "\t\t\t%s = rt.WasmCompatMax32(%s, %s)\n", dest, lhs, rhs)
		} else {
			fmt.Fprintf(b, "\t\t\t%s = rt.WasmCompatMax(%s, %s)\n", dest, lhs, rhs)
		}
	case ir.BinCopysign:
		if destKind == wasm.F32 {
			fmt.Fprintf(b, "\t\t\t%s = rt.Copysign32(%s, %s)\n", dest, lhs, rhs)
		} else {
			fmt.Fprintf(b, "\t\t\t%s = math.Copysign(%s, %s)\n", dest, lhs, rhs)
		}
	}
}

func loadMethod(kind wasm.ValueKind, width uint8, signed bool) string {
	switch kind {
	case wasm.I32:
		switch width {
		case 1:
			if signed {
				return "LoadI8"
			}
			return "LoadU8"
		case 2:
			if signed {
				return "LoadI16"
			}
			return "LoadU16"
		default:
			return "LoadI32"
		}
	case wasm.I64:
		switch width {
		case 1:
			if signed {
				return "LoadI8AsI64"
			}
			return "LoadU8AsI64"
		case 2:
			if signed {
				return "LoadI16AsI64"
			}
			return "LoadU16AsI64"
		case 4:
			if signed {
				return "LoadI32AsI64"
			}
			return "LoadU32AsI64"
		default:
			return "LoadI64"
		}
	case wasm.F32:
		return "LoadF32"
	default:
		return "LoadF64"
	}
}

func storeMethod(kind wasm.ValueKind, width uint8) string {
	switch kind {
	case wasm.I32:
		switch width {
		case 1:
			return "StoreU8"
		case 2:
			return "StoreU16"
		default:
			return "StoreI32"
		}
	case wasm.I64:
		switch width {
		case 1:
			return "StoreU8FromI64"
		case 2:
			return "StoreU16FromI64"
		case 4:
			return "StoreU32FromI64"
		default:
			return "StoreI64"
		}
	case wasm.F32:
		return "StoreF32"
	default:
		return "StoreF64"
	}
}

// emitLoad/emitStore combine base and static offset in 64 bits before
// truncating to the memory container's uint32 offset parameter, so a
// base+offset sum that overflows 32 bits always traps rather than silently
// wrapping into an in-bounds address (§4.5 "combine base and static offset
// with overflow-checked addition").
func emitLoad(b *strings.Builder, in ir.Load, zero string, tmp *tempCounter) {
	n := tmp.fresh()
	fmt.Fprintf(b, "\t\t\toff%d := uint64(uint32(%s)) + %d\n", n, varName(in.Base), in.StaticOffset)
	fmt.Fprintf(b, "\t\t\tif off%d > 0xFFFFFFFF {\n\t\t\t\treturn %s, rt.TrapOutOfBounds\n\t\t\t}\n", n, zero)
	method := loadMethod(in.ResultKind, in.StorageWidth, in.Signed)
	emitFallible(b, varName(in.Dest), fmt.Sprintf("m.memory.%s(uint32(off%d))", method, n), zero, tmp)
}

func emitStore(b *strings.Builder, in ir.Store, zero string, tmp *tempCounter) {
	n := tmp.fresh()
	fmt.Fprintf(b, "\t\t\toff%d := uint64(uint32(%s)) + %d\n", n, varName(in.Base), in.StaticOffset)
	fmt.Fprintf(b, "\t\t\tif off%d > 0xFFFFFFFF {\n\t\t\t\treturn %s, rt.TrapOutOfBounds\n\t\t\t}\n", n, zero)
	m := tmp.fresh()
	method := storeMethod(in.ValueKind, in.StorageWidth)
	fmt.Fprintf(b, "\t\t\ttrap%d := m.memory.%s(uint32(off%d), %s)\n", m, method, n, varName(in.Value))
	fmt.Fprintf(b, "\t\t\tif trap%d != 0 {\n\t\t\t\treturn %s, trap%d\n\t\t\t}\n", m, zero, m)
}

func emitCall(b *strings.Builder, in ir.Call, zero string, tmp *tempCounter) {
	n := tmp.fresh()
	call := fmt.Sprintf("m.%s(%s)", funcName(in.FuncIndex), strings.Join(varNames(in.Args), ", "))
	resultVar := "_"
	if in.HasDest {
		resultVar = fmt.Sprintf("tmp%d", n)
	}
	fmt.Fprintf(b, "\t\t\t%s, trap%d := %s\n", resultVar, n, call)
	fmt.Fprintf(b, "\t\t\tif trap%d != 0 {\n\t\t\t\treturn %s, trap%d\n\t\t\t}\n", n, zero, n)
	if in.HasDest {
		fmt.Fprintf(b, "\t\t\t%s = tmp%d\n", varName(in.Dest), n)
	}
}

// emitCallImport routes straight to the host interface method named after
// the import's field name (§4.5 "CallImport"). Host interface methods
// return no rt.Trap (see writeInterfaces), so the call is emitted without a
// trap check.
func emitCallImport(b *strings.Builder, in ir.CallImport) {
	call := fmt.Sprintf("m.host.%s(%s)", exportedName(in.Field), strings.Join(varNames(in.Args), ", "))
	if in.HasDest {
		fmt.Fprintf(b, "\t\t\t%s = %s\n", varName(in.Dest), call)
	} else {
		fmt.Fprintf(b, "\t\t\t%s\n", call)
	}
}

// localFuncsWithCanonicalType lists every local (non-imported) function
// whose signature's canonical type index equals target, in combined-index-
// space order — the static case-arm enumeration §4.5's indirect call
// dispatch requires.
func localFuncsWithCanonicalType(m *wasm.Module, canon *wasm.Canonical, target uint32) []uint32 {
	imported := m.ImportedFuncCount()
	var out []uint32
	for i, f := range m.Funcs {
		idx := uint32(i)
		if idx < imported {
			continue
		}
		if canon.Of(f.TypeIndex) == target {
			out = append(out, idx)
		}
	}
	return out
}

func emitCallIndirect(w *moduleWriter, in ir.CallIndirect, zero string, tmp *tempCounter) {
	b := &w.functions
	n := tmp.fresh()
	fmt.Fprintf(b, "\t\t\tentry%d, trap%d := m.table.Get(uint32(%s))\n", n, n, varName(in.TableIndex))
	fmt.Fprintf(b, "\t\t\tif trap%d != 0 {\n\t\t\t\treturn %s, trap%d\n\t\t\t}\n", n, zero, n)
	fmt.Fprintf(b, "\t\t\tif entry%d.CanonicalTypeIndex != %d {\n\t\t\t\treturn %s, rt.TrapIndirectCallTypeMismatch\n\t\t\t}\n", n, in.CanonicalTypeIndex, zero)

	args := strings.Join(varNames(in.Args), ", ")
	fmt.Fprintf(b, "\t\t\tswitch entry%d.LocalFunctionIndex {\n", n)
	for _, f := range localFuncsWithCanonicalType(w.module, w.canon, in.CanonicalTypeIndex) {
		m := tmp.fresh()
		resultVar := "_"
		if in.HasDest {
			resultVar = fmt.Sprintf("tmp%d", m)
		}
		fmt.Fprintf(b, "\t\t\tcase %d:\n", f)
		fmt.Fprintf(b, "\t\t\t\t%s, trap%d := m.%s(%s)\n", resultVar, m, funcName(f), args)
		fmt.Fprintf(b, "\t\t\t\tif trap%d != 0 {\n\t\t\t\t\treturn %s, trap%d\n\t\t\t\t}\n", m, zero, m)
		if in.HasDest {
			fmt.Fprintf(b, "\t\t\t\t%s = tmp%d\n", varName(in.Dest), m)
		}
	}
	fmt.Fprintf(b, "\t\t\tdefault:\n\t\t\t\treturn %s, rt.TrapUndefinedElement\n\t\t\t}\n", zero)
}

func emitTerminator(b *strings.Builder, t ir.Terminator, zero string) {
	switch term := t.(type) {
	case ir.Return:
		if term.HasValue {
			fmt.Fprintf(b, "\t\t\treturn %s, 0\n", varName(term.Value))
		} else {
			fmt.Fprintf(b, "\t\t\treturn %s, 0\n", zero)
		}
	case ir.Jump:
		fmt.Fprintf(b, "\t\t\tstate = %s\n", blockLabel(term.Target))
	case ir.BranchIf:
		fmt.Fprintf(b, "\t\t\tif %s != 0 {\n\t\t\t\tstate = %s\n\t\t\t} else {\n\t\t\t\tstate = %s\n\t\t\t}\n",
			varName(term.Condition), blockLabel(term.TrueTarget), blockLabel(term.FalseTarget))
	case ir.BranchTable:
		fmt.Fprintf(b, "\t\t\tswitch uint32(%s) {\n", varName(term.Index))
		for i, tgt := range term.Targets {
			fmt.Fprintf(b, "\t\t\tcase %d:\n\t\t\t\tstate = %s\n", i, blockLabel(tgt))
		}
		fmt.Fprintf(b, "\t\t\tdefault:\n\t\t\t\tstate = %s\n\t\t\t}\n", blockLabel(term.DefaultTarget))
	case ir.Unreachable:
		fmt.Fprintf(b, "\t\t\treturn %s, rt.TrapUnreachable\n", zero)
	}
}
