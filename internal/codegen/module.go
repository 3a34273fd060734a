package codegen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/wasmforge/wasmforge/internal/wasm"
)

// moduleWriter accumulates the module-level sections in the canonical order
// §5 requires: interfaces, globals aggregate, free functions, constants,
// module aggregate, constructor, export interface and implementation.
type moduleWriter struct {
	module *wasm.Module
	canon  *wasm.Canonical
	pkg    string
	log    *logrus.Entry

	interfaces strings.Builder
	constants  strings.Builder
	globals    strings.Builder
	aggregate  strings.Builder
	ctor       strings.Builder
	exports    strings.Builder
	functions  strings.Builder

	globalsCache []globalInfo
}

// globalInfos returns the memoized classification of every combined-index-
// space global, computed once per module (§4.3's canonical table gets the
// same once-per-module treatment).
func (w *moduleWriter) globalInfos() []globalInfo {
	if w.globalsCache == nil {
		w.globalsCache = globalTable(w.module)
	}
	return w.globalsCache
}

func newModuleWriter(m *wasm.Module, canon *wasm.Canonical, pkg string, log *logrus.Entry) *moduleWriter {
	return &moduleWriter{module: m, canon: canon, pkg: pkg, log: log}
}

func (w *moduleWriter) hasImports() bool {
	return len(w.module.ImportsByModule()) > 0
}

// writeInterfaces emits one capability interface per import module-name
// (§4.5 "Interfaces from imports") plus a Host interface embedding all of
// them — the combined type every import-using method's receiver can read
// from its own `host` field, set once at construction (mirroring the
// teacher's instantiation-time import resolution rather than threading a
// host parameter through every call).
func (w *moduleWriter) writeInterfaces() {
	groups := w.module.ImportsByModule()
	if len(groups) == 0 {
		return
	}
	var names []string
	for _, g := range groups {
		ifaceName := exportedName(g.Name) + "Host"
		names = append(names, ifaceName)
		fmt.Fprintf(&w.interfaces, "// %s is the capability interface for imports from %q.\n", ifaceName, g.Name)
		fmt.Fprintf(&w.interfaces, "type %s interface {\n", ifaceName)
		for _, imp := range g.Imports {
			switch imp.Kind {
			case wasm.ImportFunction:
				sig := w.module.Types[imp.FuncTypeIndex]
				fmt.Fprintf(&w.interfaces, "\t%s(%s)%s\n", exportedName(imp.Field), paramList(sig.Params), resultList(sig.Result))
			case wasm.ImportGlobal:
				fmt.Fprintf(&w.interfaces, "\tGet%s() %s\n", exportedName(imp.Field), goType(imp.Global.Kind))
				if imp.Global.Mutable {
					fmt.Fprintf(&w.interfaces, "\tSet%s(v %s)\n", exportedName(imp.Field), goType(imp.Global.Kind))
				}
			case wasm.ImportMemory:
				fmt.Fprintf(&w.interfaces, "\t%sMemory() *rt.Memory\n", exportedName(imp.Field))
			case wasm.ImportTable:
				fmt.Fprintf(&w.interfaces, "\t%sTable() *rt.Table\n", exportedName(imp.Field))
			}
		}
		w.interfaces.WriteString("}\n\n")
	}

	w.interfaces.WriteString("// Host composes every capability interface the module's imports require.\n")
	w.interfaces.WriteString("type Host interface {\n")
	for _, n := range names {
		fmt.Fprintf(&w.interfaces, "\t%s\n", n)
	}
	w.interfaces.WriteString("}\n\n")
}

func paramList(params []wasm.ValueKind) string {
	parts := make([]string, len(params))
	for i, k := range params {
		parts[i] = fmt.Sprintf("a%d %s", i, goType(k))
	}
	return strings.Join(parts, ", ")
}

func resultList(result *wasm.ValueKind) string {
	if result == nil {
		return ""
	}
	return " " + goType(*result)
}

// writeGlobals emits a package-level constant per literal-initialized
// immutable global and one field per struct-backed global (every mutable
// global, plus any immutable global whose initializer itself reads another
// global — see globalInfo.isStructField) in the aggregate struct (§4.5
// "Immutable globals ... Mutable globals"). Imported globals are not stored
// here at all — GlobalGet/GlobalSet on an imported index reads the `host`
// field instead.
func (w *moduleWriter) writeGlobals() {
	globals := w.globalInfos()

	w.globals.WriteString("// ModuleGlobals holds every locally-declared global stored as state:\n")
	w.globals.WriteString("// every mutable global, and any immutable global whose initializer reads\n")
	w.globals.WriteString("// another (always imported) global rather than a literal.\n")
	w.globals.WriteString("type ModuleGlobals struct {\n")
	for i, g := range globals {
		if !g.isStructField() {
			continue
		}
		fmt.Fprintf(&w.globals, "\t%s %s\n", globalFieldName(uint32(i)), goType(g.Kind))
	}
	w.globals.WriteString("}\n\n")

	for i, g := range globals {
		if !g.Literal {
			continue
		}
		// Float kinds render their literal as an exact-bit-pattern function
		// call (globals.go's initExpr) so a NaN payload survives verbatim;
		// that is not a Go constant expression, so those get a package-level
		// var, initialized once at program init, instead of a const.
		keyword := "const"
		if g.Kind == wasm.F32 || g.Kind == wasm.F64 {
			keyword = "var"
		}
		fmt.Fprintf(&w.constants, "%s %s %s = %s\n", keyword, globalConstName(uint32(i)), goType(g.Kind), initExpr(globals, g.Init))
	}
	if w.constants.Len() > 0 {
		w.constants.WriteString("\n")
	}
}

func globalFieldName(idx uint32) string { return fmt.Sprintf("Global%d", idx) }
func globalConstName(idx uint32) string { return fmt.Sprintf("global%dConst", idx) }

// writeAggregate emits the Module struct. Both shapes of §4.5's "Module
// aggregate" hold memory and table as pointers; they differ only in where
// the pointer comes from: NewModule allocates an owned memory/table itself
// and receives an imported one as a constructor argument.
func (w *moduleWriter) writeAggregate() {
	w.aggregate.WriteString("// Module is the transpiled instance: its generated methods are the\n")
	w.aggregate.WriteString("// WebAssembly module's functions, each a method so memory, table, globals,\n")
	w.aggregate.WriteString("// and the host capability set are all reached through the receiver instead\n")
	w.aggregate.WriteString("// of being threaded through every call.\n")
	w.aggregate.WriteString("type Module struct {\n")
	if w.module.Memory != nil {
		w.aggregate.WriteString("\tmemory *rt.Memory\n")
	}
	if w.module.Table != nil {
		w.aggregate.WriteString("\ttable *rt.Table\n")
	}
	w.aggregate.WriteString("\tglobals ModuleGlobals\n")
	if w.hasImports() {
		w.aggregate.WriteString("\thost Host\n")
	}
	w.aggregate.WriteString("}\n\n")
}

// writeConstructor emits the construction sequence §4.5 specifies: build (or
// accept) the linear memory, run data segments byte-by-byte, run element
// segments, then invoke the start function if declared.
func (w *moduleWriter) writeConstructor() {
	var params []string
	if w.module.Memory != nil {
		if w.module.MemoryImported {
			params = append(params, "memory *rt.Memory")
		} else {
			params = append(params, "initialPages uint32")
		}
	}
	if w.module.Table != nil {
		if w.module.TableImported {
			params = append(params, "table *rt.Table")
		} else {
			params = append(params, fmt.Sprintf("tableMaxSize uint32"))
		}
	}
	if w.hasImports() {
		params = append(params, "host Host")
	}

	fmt.Fprintf(&w.ctor, "// NewModule constructs the module: linear memory, data segments, element\n")
	fmt.Fprintf(&w.ctor, "// segments, and (if declared) the start function, in that order.\n")
	fmt.Fprintf(&w.ctor, "func NewModule(%s) (*Module, rt.Trap) {\n", strings.Join(params, ", "))
	w.ctor.WriteString("\tm := &Module{}\n")
	if w.module.Memory != nil {
		if w.module.MemoryImported {
			w.ctor.WriteString("\tm.memory = memory\n")
		} else {
			max := uint32(0)
			if w.module.Memory.MaxPages != nil {
				max = *w.module.Memory.MaxPages
			} else {
				max = 65536
				if w.log != nil {
					w.log.WithField("default_max_pages", max).Warn("module declares no memory maximum, falling back to configured default")
				}
			}
			fmt.Fprintf(&w.ctor, "\tm.memory = rt.NewMemory(initialPages, %d)\n", max)
		}
	}
	if w.module.Table != nil {
		if w.module.TableImported {
			w.ctor.WriteString("\tm.table = table\n")
		} else {
			fmt.Fprintf(&w.ctor, "\tm.table = rt.NewTable(%d, tableMaxSize)\n", w.module.Table.InitialSize)
		}
	}
	if w.hasImports() {
		w.ctor.WriteString("\tm.host = host\n")
	}

	globals := w.globalInfos()
	for i, g := range globals {
		if !g.isStructField() {
			continue
		}
		fmt.Fprintf(&w.ctor, "\tm.%s = %s\n", globalFieldName(uint32(i)), initExpr(globals, g.Init))
	}

	for i, seg := range w.module.DataSegments {
		offset := initExpr(globals, seg.Offset)
		fmt.Fprintf(&w.ctor, "\tdata%d := []byte{%s}\n", i, byteSliceLiteral(seg.Bytes))
		fmt.Fprintf(&w.ctor, "\tfor i, b := range data%d {\n", i)
		fmt.Fprintf(&w.ctor, "\t\tif trap := m.memory.StoreU8(uint32(%s)+uint32(i), b); trap != 0 {\n", offset)
		w.ctor.WriteString("\t\t\treturn nil, trap\n\t\t}\n\t}\n")
	}

	for i, seg := range w.module.ElementSegments {
		offset := initExpr(globals, seg.Offset)
		fmt.Fprintf(&w.ctor, "\telem%d := []rt.FuncRef{%s}\n", i, funcRefSliceLiteral(w, seg.FuncIndices))
		fmt.Fprintf(&w.ctor, "\tfor i := range elem%d {\n", i)
		fmt.Fprintf(&w.ctor, "\t\tif trap := m.table.Set(uint32(%s)+uint32(i), &elem%d[i]); trap != 0 {\n", offset, i)
		w.ctor.WriteString("\t\t\treturn nil, trap\n\t\t}\n\t}\n")
	}

	if w.module.StartFunc != nil {
		fmt.Fprintf(&w.ctor, "\tif _, trap := m.%s(); trap != 0 {\n", funcName(*w.module.StartFunc))
		w.ctor.WriteString("\t\treturn nil, trap\n\t}\n")
	}

	w.ctor.WriteString("\treturn m, 0\n}\n\n")
}

func byteSliceLiteral(b []byte) string {
	parts := make([]string, len(b))
	for i, v := range b {
		parts[i] = fmt.Sprintf("0x%02x", v)
	}
	return strings.Join(parts, ", ")
}

func funcRefSliceLiteral(w *moduleWriter, indices []uint32) string {
	parts := make([]string, len(indices))
	for i, f := range indices {
		typeIdx := w.module.Funcs[f].TypeIndex
		parts[i] = fmt.Sprintf("{CanonicalTypeIndex: %d, LocalFunctionIndex: %d}", w.canon.Of(typeIdx), f)
	}
	return strings.Join(parts, ", ")
}

// writeExports emits the export interface and the Module methods
// implementing it (§4.5 "Interfaces from imports and exports").
func (w *moduleWriter) writeExports() {
	var funcExports []wasm.ExportDecl
	for _, e := range w.module.Exports {
		if e.Kind == wasm.ExportFunction {
			funcExports = append(funcExports, e)
		}
	}
	sort.Slice(funcExports, func(i, j int) bool { return funcExports[i].Name < funcExports[j].Name })

	w.exports.WriteString("// Exports is every function the module exports.\n")
	w.exports.WriteString("type Exports interface {\n")
	for _, e := range funcExports {
		sig := w.module.FuncSignatureOf(e.Index)
		fmt.Fprintf(&w.exports, "\t%s(%s) (%s, rt.Trap)\n", exportedName(e.Name), paramList(sig.Params), resultTypeOrEmpty(sig.Result))
	}
	w.exports.WriteString("}\n\n")

	for _, e := range funcExports {
		sig := w.module.FuncSignatureOf(e.Index)
		args := make([]string, len(sig.Params))
		for i := range sig.Params {
			args[i] = fmt.Sprintf("a%d", i)
		}
		fmt.Fprintf(&w.exports, "func (m *Module) %s(%s) (%s, rt.Trap) {\n", exportedName(e.Name), paramList(sig.Params), resultTypeOrEmpty(sig.Result))
		fmt.Fprintf(&w.exports, "\treturn m.%s(%s)\n", funcName(e.Index), strings.Join(args, ", "))
		w.exports.WriteString("}\n\n")
	}
}

func resultTypeOrEmpty(r *wasm.ValueKind) string {
	if r == nil {
		return "struct{}"
	}
	return goType(*r)
}
