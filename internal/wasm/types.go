// Package wasm holds the parsed-module data model: the frozen, immutable
// description produced by the binary parser and consumed by the IR builder
// and code generator. Nothing in this package mutates a Module after parse.
package wasm

import "fmt"

// ValueKind is one of the value types the WebAssembly subset in scope here
// supports. v128 and externref are out of scope (§1 non-goals).
type ValueKind uint8

const (
	I32 ValueKind = iota
	I64
	F32
	F64
	FuncRef
)

func (k ValueKind) String() string {
	switch k {
	case I32:
		return "i32"
	case I64:
		return "i64"
	case F32:
		return "f32"
	case F64:
		return "f64"
	case FuncRef:
		return "funcref"
	default:
		return fmt.Sprintf("valuekind(%d)", uint8(k))
	}
}

// TypeSignature is a function signature: an ordered parameter list and at
// most one result (multi-value blocks/returns are out of scope, §1).
type TypeSignature struct {
	Params []ValueKind
	Result *ValueKind
}

// Equal reports structural equality: same parameter kinds in order, same
// (absent or present-and-equal) result kind. Used to build the canonical
// type index table (§4.3).
func (t TypeSignature) Equal(o TypeSignature) bool {
	if len(t.Params) != len(o.Params) {
		return false
	}
	for i := range t.Params {
		if t.Params[i] != o.Params[i] {
			return false
		}
	}
	if (t.Result == nil) != (o.Result == nil) {
		return false
	}
	if t.Result != nil && *t.Result != *o.Result {
		return false
	}
	return true
}

// FuncSignature is one entry of the combined function index space.
type FuncSignature struct {
	TypeIndex uint32
	Imported  bool
}

// MemoryDecl describes a memory's page bounds.
type MemoryDecl struct {
	InitialPages uint32
	MaxPages     *uint32 // nil means the module declared no maximum.
}

// TableDecl describes the module's sole funcref table.
type TableDecl struct {
	InitialSize uint32
	MaxSize     *uint32
}

// GlobalDecl describes one global variable.
type GlobalDecl struct {
	Kind    ValueKind
	Mutable bool
	Init    ConstExpr
}

// ImportKind enumerates the four importable entity kinds.
type ImportKind uint8

const (
	ImportFunction ImportKind = iota
	ImportMemory
	ImportGlobal
	ImportTable
)

// ImportDecl describes one entry of the import section. Exactly one of the
// kind-specific payload fields is populated, selected by Kind.
type ImportDecl struct {
	Module string
	Field  string
	Kind   ImportKind

	FuncTypeIndex uint32 // ImportFunction
	Memory        *MemoryDecl
	Global        *GlobalType // ImportGlobal
	Table         *TableDecl
}

// GlobalType is the declared shape of an imported (or local) global, absent
// the initializer a local GlobalDecl carries.
type GlobalType struct {
	Kind    ValueKind
	Mutable bool
}

// ExportKind mirrors ImportKind for the four exportable entity kinds.
type ExportKind = ImportKind

const (
	ExportFunction = ImportFunction
	ExportMemory   = ImportMemory
	ExportGlobal   = ImportGlobal
	ExportTable    = ImportTable
)

// ExportDecl describes one entry of the export section. Index is into the
// combined index space of the exported kind (imports-first, then locals).
type ExportDecl struct {
	Name  string
	Kind  ExportKind
	Index uint32
}

// DataSegment initializes a byte range of memory 0 at module-construction
// time.
type DataSegment struct {
	MemoryIndex uint32 // always 0 in the scope considered here.
	Offset      ConstExpr
	Bytes       []byte
}

// ElementSegment initializes a range of table 0's entries with function
// references at module-construction time.
type ElementSegment struct {
	TableIndex  uint32 // always 0.
	Offset      ConstExpr
	FuncIndices []uint32
}

// LocalGroup is a run-length encoded group of declared locals sharing one
// value kind, as the binary format stores them.
type LocalGroup struct {
	Count uint32
	Kind  ValueKind
}

// FunctionBody is a local function's declared locals and raw opcode stream.
// The opcode stream is left undecoded by the parser; the IR builder decodes
// it on demand (§4.2 "no IR construction" in the parser).
type FunctionBody struct {
	Locals []LocalGroup
	Code   []byte
}

// ConstExprOp is the small set of constant-initializer operators the binary
// format allows for global/data/element offsets.
type ConstExprOp uint8

const (
	ConstExprI32Const ConstExprOp = iota
	ConstExprI64Const
	ConstExprF32Const
	ConstExprF64Const
	ConstExprGlobalGet
)

// ConstExpr is a single-operator constant expression: a literal, or a
// reference to an already-defined immutable imported global.
type ConstExpr struct {
	Op          ConstExprOp
	I32Value    int32
	I64Value    int64
	F32Value    float32
	F64Value    float64
	GlobalIndex uint32
}
