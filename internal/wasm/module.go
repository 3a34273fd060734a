package wasm

// Module is the frozen, parsed description of a WebAssembly binary. It is
// produced once by the parser and shared read-only by every later pipeline
// stage; nothing after parse mutates it (§3 "Ownership").
type Module struct {
	Types []TypeSignature

	// Funcs is the combined function index space: every imported function
	// (in import order) precedes every local function (in declaration
	// order), per §4.2.
	Funcs []FuncSignature
	// Bodies holds one FunctionBody per *local* function, in local-index
	// order (imported functions have no body).
	Bodies []FunctionBody

	Memory *MemoryDecl // nil if the module neither declares nor imports one.
	Table  *TableDecl  // nil if the module neither declares nor imports one.

	// Globals is the combined global index space (imports first, then
	// locally declared). Imported globals carry Init with a zero value;
	// their real value comes from the host at instantiation.
	Globals []GlobalDecl

	Imports []ImportDecl
	Exports []ExportDecl

	DataSegments    []DataSegment
	ElementSegments []ElementSegment

	// StartFunc, if non-nil, is the combined-index-space function index to
	// invoke once construction finishes (§4.5 "Constructor", step 4).
	StartFunc *uint32

	// MemoryImported/TableImported record whether Memory/Table (if present)
	// came from an import, which selects the module-aggregate shape in
	// §4.5 ("owning vs. borrowing memory").
	MemoryImported bool
	TableImported  bool
}

// ImportedFuncCount returns how many entries of the combined function index
// space are imports (and therefore have no FunctionBody).
func (m *Module) ImportedFuncCount() uint32 {
	var n uint32
	for _, imp := range m.Imports {
		if imp.Kind == ImportFunction {
			n++
		}
	}
	return n
}

// LocalFuncIndex converts a combined-index-space function index into an
// index into Bodies. The caller must already know idx is not imported.
func (m *Module) LocalFuncIndex(idx uint32) uint32 {
	return idx - m.ImportedFuncCount()
}

// IsImportedFunc reports whether a combined-index-space function index
// refers to an imported function.
func (m *Module) IsImportedFunc(idx uint32) bool {
	return idx < m.ImportedFuncCount()
}

// FuncSignatureOf returns the TypeSignature for a combined-index-space
// function index.
func (m *Module) FuncSignatureOf(idx uint32) TypeSignature {
	return m.Types[m.Funcs[idx].TypeIndex]
}

// ImportsByModule groups import declarations by their module_name string,
// preserving first-seen order — the grouping §4.5 "Interfaces from imports"
// uses to build one capability interface per import module-name.
func (m *Module) ImportsByModule() []ImportGroup {
	var groups []ImportGroup
	index := map[string]int{}
	for _, imp := range m.Imports {
		i, ok := index[imp.Module]
		if !ok {
			i = len(groups)
			index[imp.Module] = i
			groups = append(groups, ImportGroup{Name: imp.Module})
		}
		groups[i].Imports = append(groups[i].Imports, imp)
	}
	return groups
}

// ImportGroup is every import sharing one module_name string.
type ImportGroup struct {
	Name    string
	Imports []ImportDecl
}
