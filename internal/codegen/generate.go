package codegen

import (
	"fmt"
	"go/format"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/wasmforge/wasmforge/internal/ir"
	"github.com/wasmforge/wasmforge/internal/wasm"
)

// Generate renders the parsed module and its per-function IR into a single
// Go source file in package pkg. fns need not be sorted or complete in a
// single pass — callers that build IR concurrently (see internal/driver) may
// hand them back in any order; Generate always emits functions in ascending
// combined-index-space order so the output is deterministic regardless of
// how fns was produced (§5). log may be nil (tests construct modules without
// a pipeline around them); when non-nil it receives per-function Debug
// entries and a Warn for any silently-defaulted declaration this module's
// codegen falls back on.
func Generate(module *wasm.Module, canon *wasm.Canonical, fns []*ir.IrFunction, pkg string, log *logrus.Entry) ([]byte, error) {
	sorted := append([]*ir.IrFunction(nil), fns...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })

	w := newModuleWriter(module, canon, pkg, log)
	w.writeInterfaces()
	w.writeGlobals()
	for _, fn := range sorted {
		emitFunction(w, fn)
	}
	w.writeAggregate()
	w.writeConstructor()
	w.writeExports()

	needsMath, needsBits := computeImportNeeds(sorted)
	if moduleHasFloatConstExpr(module) {
		needsMath = true
	}

	var src strings.Builder
	fmt.Fprintf(&src, "// Code generated by wasmforge. DO NOT EDIT.\n\npackage %s\n\n", pkg)
	src.WriteString("import (\n")
	if needsMath {
		src.WriteString("\t\"math\"\n")
	}
	if needsBits {
		src.WriteString("\t\"math/bits\"\n")
	}
	if needsMath || needsBits {
		src.WriteString("\n")
	}
	src.WriteString("\t\"github.com/wasmforge/wasmforge/rt\"\n")
	src.WriteString(")\n\n")
	src.WriteString(w.interfaces.String())
	src.WriteString(w.globals.String())
	src.WriteString(w.functions.String())
	src.WriteString(w.constants.String())
	src.WriteString(w.aggregate.String())
	src.WriteString(w.ctor.String())
	src.WriteString(w.exports.String())

	out, err := format.Source([]byte(src.String()))
	if err != nil {
		return nil, errors.Wrap(err, "codegen: formatting generated source")
	}
	return out, nil
}

// moduleHasFloatConstExpr reports whether any global's initializer is an
// f32.const/f64.const — those render through
// math.Float32frombits/Float64frombits (globals.go's initExpr) regardless of
// whether any function body touches floating point at all. Data/element
// segment offsets are always i32 per the WebAssembly spec (see
// binary.EvalConstExprOffset), so only globals need checking here.
func moduleHasFloatConstExpr(m *wasm.Module) bool {
	for _, g := range m.Globals {
		if g.Init.Op == wasm.ConstExprF32Const || g.Init.Op == wasm.ConstExprF64Const {
			return true
		}
	}
	return false
}

// computeImportNeeds reports whether the generated function bodies reference
// anything from "math" or "math/bits", so Generate can skip an import
// neither the module's instructions nor constants ever use — an unconditional
// import would fail to compile against a module that, say, never touches
// floating point or population count.
func computeImportNeeds(fns []*ir.IrFunction) (needsMath, needsBits bool) {
	for _, fn := range fns {
		for _, blk := range fn.Blocks {
			for _, instr := range blk.Instructions {
				switch in := instr.(type) {
				case ir.Const:
					if in.Kind == wasm.F32 || in.Kind == wasm.F64 {
						needsMath = true
					}
				case ir.UnOp:
					switch in.Op {
					case ir.UnClz, ir.UnCtz, ir.UnPopcnt:
						needsBits = true
					case ir.UnAbs, ir.UnSqrt, ir.UnCeil, ir.UnFloor, ir.UnTrunc, ir.UnNearest,
						ir.UnReinterpretF32AsI32, ir.UnReinterpretI32AsF32,
						ir.UnReinterpretF64AsI64, ir.UnReinterpretI64AsF64:
						needsMath = true
					}
				case ir.BinOp:
					if in.Op == ir.BinCopysign && fn.VarKinds[in.Dest] == wasm.F64 {
						needsMath = true
					}
				}
			}
		}
		if needsMath && needsBits {
			return
		}
	}
	return
}
