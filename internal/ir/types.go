// Package ir implements §4.4: translating a parsed function's WebAssembly
// opcode stream into the per-function single-assignment IR of §3 — a
// labeled basic-block graph where every produced value gets exactly one
// fresh VarId.
//
// Each WebAssembly operator maps to exactly one Instr variant, following the
// teacher's own pattern of one concrete Go type per operation kind, switched
// on at consumption time (internal/engine/interpreter in the teacher
// switches on *wazeroir.OperationXxx the same way codegen here switches on
// these Instr implementations).
package ir

import "github.com/wasmforge/wasmforge/internal/wasm"

// VarId is the identity of one produced value. Dense per function; valid
// only within its owning IrFunction.
type VarId uint32

// BlockId is the identity of one basic block. Dense per function.
type BlockId uint32

// Instr is implemented by every instruction variant. It is a closed set:
// adding a case means adding both an Instr implementation here and an
// emission case in internal/codegen.
type Instr interface {
	isInstr()
}

// Const loads a literal of ValueKind-appropriate shape. Exactly one of the
// typed fields is meaningful, selected by Kind.
type Const struct {
	Dest     VarId
	Kind     wasm.ValueKind
	I32, I64 int64 // I32 stored sign-extended into int64 for uniform field reuse.
	F32      float32
	F64      float64
}

func (Const) isInstr() {}

// UnOp applies a unary operator (§3: clz/ctz/popcnt/eqz, float
// abs/neg/sqrt/ceil/floor/trunc/nearest, and all conversion/extension/wrap/
// reinterpret operators).
type UnOp struct {
	Dest    VarId
	Op      UnOpKind
	Operand VarId
}

func (UnOp) isInstr() {}

// BinOp applies one of the ~60 WebAssembly arithmetic/bitwise/comparison
// binary operators.
type BinOp struct {
	Dest     VarId
	Op       BinOpKind
	Lhs, Rhs VarId
}

func (BinOp) isInstr() {}

// Load reads from linear memory. StorageWidth < result kind's natural width
// means an extending load (Signed selects sign- vs zero-extension).
type Load struct {
	Dest          VarId
	ResultKind    wasm.ValueKind
	StorageWidth  uint8 // in bytes: 1, 2, 4, or 8.
	Signed        bool
	Base          VarId
	StaticOffset  uint32
	Align         uint32
}

func (Load) isInstr() {}

// Store writes to linear memory. StorageWidth < ValueKind's natural width
// means a wrapping (narrowing) store.
type Store struct {
	ValueKind    wasm.ValueKind
	StorageWidth uint8
	Base         VarId
	Value        VarId
	StaticOffset uint32
	Align        uint32
}

func (Store) isInstr() {}

// Select picks TrueValue or FalseValue based on Condition, branchlessly.
type Select struct {
	Dest                  VarId
	TrueValue, FalseValue VarId
	Condition             VarId
}

func (Select) isInstr() {}

type LocalGet struct {
	Dest  VarId
	Local uint32
}

func (LocalGet) isInstr() {}

type LocalSet struct {
	Local  uint32
	Source VarId
}

func (LocalSet) isInstr() {}

type LocalTee struct {
	Dest   VarId
	Local  uint32
	Source VarId
}

func (LocalTee) isInstr() {}

type GlobalGet struct {
	Dest   VarId
	Global uint32
}

func (GlobalGet) isInstr() {}

type GlobalSet struct {
	Global uint32
	Source VarId
}

func (GlobalSet) isInstr() {}

type MemorySize struct {
	Dest VarId
}

func (MemorySize) isInstr() {}

type MemoryGrow struct {
	Dest  VarId
	Delta VarId
}

func (MemoryGrow) isInstr() {}

// Call invokes a local function by combined-index-space function index.
// Dest is nil (zero VarId with HasDest false) if the callee has no result.
type Call struct {
	Dest       VarId
	HasDest    bool
	FuncIndex  uint32
	Args       []VarId
}

func (Call) isInstr() {}

// CallImport invokes an imported function, named by its (module, field)
// pair so codegen can route it to the corresponding host-interface method.
type CallImport struct {
	Dest        VarId
	HasDest     bool
	ImportIndex uint32
	Module      string
	Field       string
	Args        []VarId
}

func (CallImport) isInstr() {}

// CallIndirect invokes a function found in the table at runtime, subject to
// a canonical-type-index check (§4.5 "Indirect call emission").
type CallIndirect struct {
	Dest               VarId
	HasDest            bool
	CanonicalTypeIndex uint32
	TableIndex         VarId
	Args               []VarId
}

func (CallIndirect) isInstr() {}

// Drop consumes one stack value with no other effect.
type Drop struct {
	Source VarId
}

func (Drop) isInstr() {}

// Copy assigns Source into Dest. The builder emits one Copy per predecessor
// edge into a block that carries a value (§4.4's "merge variable": rather
// than a phi instruction, every predecessor writes the same VarId before
// jumping, and the successor block simply reads it).
type Copy struct {
	Dest   VarId
	Source VarId
}

func (Copy) isInstr() {}

// Terminator is implemented by every block-terminating instruction. Every
// IrBlock ends with exactly one.
type Terminator interface {
	isTerminator()
}

type Return struct {
	HasValue bool
	Value    VarId
}

func (Return) isTerminator() {}

type Jump struct {
	Target BlockId
}

func (Jump) isTerminator() {}

type BranchIf struct {
	Condition   VarId
	TrueTarget  BlockId
	FalseTarget BlockId
}

func (BranchIf) isTerminator() {}

type BranchTable struct {
	Index        VarId
	Targets      []BlockId
	DefaultTarget BlockId
}

func (BranchTable) isTerminator() {}

type Unreachable struct{}

func (Unreachable) isTerminator() {}

// IrBlock is one basic block: a straight-line instruction sequence ending in
// exactly one Terminator.
type IrBlock struct {
	ID           BlockId
	Instructions []Instr
	Terminator   Terminator
}

// IrFunction is the per-function IR, the unit of work the driver's fork/join
// parallelism (§5) operates on.
type IrFunction struct {
	Index      uint32 // combined-index-space function index.
	Params     []TypedVar
	Locals     []TypedVar
	Blocks     []*IrBlock
	EntryBlock BlockId
	ResultKind *wasm.ValueKind

	// VarKinds records the ValueKind every VarId produced in this function
	// carries, so the code generator can declare a correctly-typed binding
	// for each one without re-deriving it from the producing Instr.
	VarKinds map[VarId]wasm.ValueKind

	// UsesMemory/UsesTable/UsesGlobals/ImportsUsed record which module-level
	// resources and host capabilities this function touches, computed
	// during the build. internal/codegen does not read them: every generated
	// method reaches memory, table, globals and host through its receiver.
	UsesMemory  bool
	UsesTable   bool
	UsesGlobals bool
	ImportsUsed map[uint32]bool
}

// TypedVar pairs a VarId with its value-kind.
type TypedVar struct {
	ID   VarId
	Kind wasm.ValueKind
}

// BlockByID finds a block by ID. O(n) but n is the function's block count,
// tiny relative to module size.
func (f *IrFunction) BlockByID(id BlockId) *IrBlock {
	for _, b := range f.Blocks {
		if b.ID == id {
			return b
		}
	}
	return nil
}
