// Package binary is the WebAssembly binary-format reader: §4.2's parser.
// It produces a *wasm.Module and has no other effect — no IR construction,
// no type checking beyond what the format itself requires, no name
// mangling.
package binary

import (
	"bytes"
	"io"

	"github.com/wasmforge/wasmforge/internal/diag"
	"github.com/wasmforge/wasmforge/internal/wasm"
	"github.com/wasmforge/wasmforge/internal/wasm/leb128"
)

var magic = []byte{0x00, 0x61, 0x73, 0x6d} // "\0asm"

const version1 = uint32(1)

// Parse decodes a WebAssembly binary module. It fails with diag.ErrMalformedInput
// on a malformed stream, diag.ErrUnsupportedFeature on a section or feature
// outside the implemented subset, and diag.ErrInvalidIndex when an import,
// export, or segment references an index outside the combined space its
// kind defines (§4.2 "Failure conditions").
func Parse(data []byte) (*wasm.Module, error) {
	r := bytes.NewReader(data)

	hdr := make([]byte, 4)
	if _, err := io.ReadFull(r, hdr); err != nil || !bytes.Equal(hdr, magic) {
		return nil, diag.MalformedInput("missing \\0asm header")
	}
	verBuf := make([]byte, 4)
	if _, err := io.ReadFull(r, verBuf); err != nil {
		return nil, diag.MalformedInput("missing version field")
	}
	version := uint32(verBuf[0]) | uint32(verBuf[1])<<8 | uint32(verBuf[2])<<16 | uint32(verBuf[3])<<24
	if version != version1 {
		return nil, diag.MalformedInputf("unsupported binary version %d", version)
	}

	d := &decoder{m: &wasm.Module{}}
	for {
		id, err := r.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, diag.Wrap(err, "reading section id")
		}
		size, err := leb128.DecodeUint32(r)
		if err != nil {
			return nil, diag.Wrap(err, "reading section size")
		}
		body := make([]byte, size)
		if _, err := io.ReadFull(r, body); err != nil {
			return nil, diag.Wrap(err, "reading section body")
		}
		if err := d.decodeSection(sectionID(id), body); err != nil {
			return nil, err
		}
	}

	if err := d.finalize(); err != nil {
		return nil, err
	}
	return d.m, nil
}

type decoder struct {
	m           *wasm.Module
	funcTypeIdx []uint32 // function section: type index per local function, in order.
}

func (d *decoder) decodeSection(id sectionID, body []byte) error {
	r := bytes.NewReader(body)
	switch id {
	case sectionCustom:
		// Custom sections (including name/debug sections) carry no
		// semantic content this transpiler preserves (§1 non-goal:
		// preserving symbol names from source debug info).
		return nil
	case sectionType:
		return d.decodeTypeSection(r)
	case sectionImport:
		return d.decodeImportSection(r)
	case sectionFunction:
		return d.decodeFunctionSection(r)
	case sectionTable:
		return d.decodeTableSection(r)
	case sectionMemory:
		return d.decodeMemorySection(r)
	case sectionGlobal:
		return d.decodeGlobalSection(r)
	case sectionExport:
		return d.decodeExportSection(r)
	case sectionStart:
		return d.decodeStartSection(r)
	case sectionElement:
		return d.decodeElementSection(r)
	case sectionCode:
		return d.decodeCodeSection(r)
	case sectionData:
		return d.decodeDataSection(r)
	default:
		return diag.UnsupportedFeaturef("unsupported section id %d", id)
	}
}

// finalize cross-checks the invariants §3 assigns to the parser: function
// signatures/bodies line up, exports/segments stay in range.
func (d *decoder) finalize() error {
	m := d.m
	if len(m.Funcs)-int(m.ImportedFuncCount()) != len(m.Bodies) {
		return diag.InvalidIndexf(
			"function count mismatch: %d declared local functions, %d bodies",
			len(m.Funcs)-int(m.ImportedFuncCount()), len(m.Bodies))
	}
	for _, imp := range m.Imports {
		if imp.Kind == wasm.ImportFunction && imp.FuncTypeIndex >= uint32(len(m.Types)) {
			return diag.InvalidIndexf("import %q.%q: type index %d out of range", imp.Module, imp.Field, imp.FuncTypeIndex)
		}
	}
	funcSpace := uint32(len(m.Funcs))
	globalSpace := uint32(len(m.Globals))
	for _, exp := range m.Exports {
		switch exp.Kind {
		case wasm.ExportFunction:
			if exp.Index >= funcSpace {
				return diag.InvalidIndexf("export %q: function index %d out of range", exp.Name, exp.Index)
			}
		case wasm.ExportGlobal:
			if exp.Index >= globalSpace {
				return diag.InvalidIndexf("export %q: global index %d out of range", exp.Name, exp.Index)
			}
		case wasm.ExportMemory, wasm.ExportTable:
			if exp.Index != 0 {
				return diag.InvalidIndexf("export %q: only index 0 is supported for memory/table", exp.Name)
			}
		}
	}
	for _, seg := range m.DataSegments {
		if seg.MemoryIndex != 0 {
			return diag.InvalidIndexf("data segment references memory index %d, only 0 is supported", seg.MemoryIndex)
		}
	}
	for _, seg := range m.ElementSegments {
		if seg.TableIndex != 0 {
			return diag.InvalidIndexf("element segment references table index %d, only 0 is supported", seg.TableIndex)
		}
		for _, fi := range seg.FuncIndices {
			if fi >= funcSpace {
				return diag.InvalidIndexf("element segment references out-of-range function index %d", fi)
			}
		}
	}
	if m.StartFunc != nil && *m.StartFunc >= funcSpace {
		return diag.InvalidIndexf("start function index %d out of range", *m.StartFunc)
	}
	return nil
}
