package binary

import (
	"bytes"
	"io"

	"github.com/wasmforge/wasmforge/internal/diag"
	"github.com/wasmforge/wasmforge/internal/wasm"
	"github.com/wasmforge/wasmforge/internal/wasm/leb128"
)

type sectionID uint8

const (
	sectionCustom sectionID = iota
	sectionType
	sectionImport
	sectionFunction
	sectionTable
	sectionMemory
	sectionGlobal
	sectionExport
	sectionStart
	sectionElement
	sectionCode
	sectionData
)

const funcTypeTag = 0x60

func decodeValueKind(b byte) (wasm.ValueKind, error) {
	switch b {
	case 0x7F:
		return wasm.I32, nil
	case 0x7E:
		return wasm.I64, nil
	case 0x7D:
		return wasm.F32, nil
	case 0x7C:
		return wasm.F64, nil
	case 0x70:
		return wasm.FuncRef, nil
	default:
		return 0, diag.UnsupportedFeaturef("unsupported value type byte 0x%02x", b)
	}
}

func (d *decoder) decodeTypeSection(r *bytes.Reader) error {
	count, err := leb128.DecodeUint32(r)
	if err != nil {
		return diag.Wrap(err, "type section count")
	}
	d.m.Types = make([]wasm.TypeSignature, count)
	for i := range d.m.Types {
		tag, err := r.ReadByte()
		if err != nil || tag != funcTypeTag {
			return diag.MalformedInputf("type %d: expected func type tag 0x60", i)
		}
		pc, err := leb128.DecodeUint32(r)
		if err != nil {
			return diag.Wrap(err, "type param count")
		}
		params := make([]wasm.ValueKind, pc)
		for j := range params {
			b, err := r.ReadByte()
			if err != nil {
				return diag.Wrap(err, "type param kind")
			}
			if params[j], err = decodeValueKind(b); err != nil {
				return err
			}
		}
		rc, err := leb128.DecodeUint32(r)
		if err != nil {
			return diag.Wrap(err, "type result count")
		}
		if rc > 1 {
			return diag.UnsupportedFeaturef("type %d: multi-value results are unsupported", i)
		}
		var result *wasm.ValueKind
		if rc == 1 {
			b, err := r.ReadByte()
			if err != nil {
				return diag.Wrap(err, "type result kind")
			}
			k, err := decodeValueKind(b)
			if err != nil {
				return err
			}
			result = &k
		}
		d.m.Types[i] = wasm.TypeSignature{Params: params, Result: result}
	}
	return nil
}

func decodeLimits(r *bytes.Reader) (initial uint32, max *uint32, err error) {
	flag, err := r.ReadByte()
	if err != nil {
		return 0, nil, diag.Wrap(err, "limits flag")
	}
	initial, err = leb128.DecodeUint32(r)
	if err != nil {
		return 0, nil, diag.Wrap(err, "limits initial")
	}
	if flag == 1 {
		m, err := leb128.DecodeUint32(r)
		if err != nil {
			return 0, nil, diag.Wrap(err, "limits max")
		}
		max = &m
	}
	return initial, max, nil
}

func decodeName(r *bytes.Reader) (string, error) {
	n, err := leb128.DecodeUint32(r)
	if err != nil {
		return "", diag.Wrap(err, "name length")
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", diag.Wrap(err, "name bytes")
	}
	return string(buf), nil
}

func (d *decoder) decodeImportSection(r *bytes.Reader) error {
	count, err := leb128.DecodeUint32(r)
	if err != nil {
		return diag.Wrap(err, "import count")
	}
	for i := uint32(0); i < count; i++ {
		mod, err := decodeName(r)
		if err != nil {
			return err
		}
		field, err := decodeName(r)
		if err != nil {
			return err
		}
		kindByte, err := r.ReadByte()
		if err != nil {
			return diag.Wrap(err, "import kind")
		}
		imp := wasm.ImportDecl{Module: mod, Field: field}
		switch kindByte {
		case 0x00: // func
			typeIdx, err := leb128.DecodeUint32(r)
			if err != nil {
				return diag.Wrap(err, "import func type index")
			}
			imp.Kind = wasm.ImportFunction
			imp.FuncTypeIndex = typeIdx
			d.m.Funcs = append(d.m.Funcs, wasm.FuncSignature{TypeIndex: typeIdx, Imported: true})
		case 0x01: // table
			elemKind, err := r.ReadByte()
			if err != nil {
				return diag.Wrap(err, "import table element kind")
			}
			if elemKind != 0x70 {
				return diag.UnsupportedFeaturef("non-funcref table import")
			}
			initial, max, err := decodeLimits(r)
			if err != nil {
				return err
			}
			if d.m.Table != nil {
				return diag.UnsupportedFeaturef("multiple tables are unsupported")
			}
			imp.Kind = wasm.ImportTable
			imp.Table = &wasm.TableDecl{InitialSize: initial, MaxSize: max}
			d.m.Table = imp.Table
			d.m.TableImported = true
		case 0x02: // memory
			initial, max, err := decodeLimits(r)
			if err != nil {
				return err
			}
			if d.m.Memory != nil {
				return diag.UnsupportedFeaturef("multiple memories are unsupported")
			}
			imp.Kind = wasm.ImportMemory
			imp.Memory = &wasm.MemoryDecl{InitialPages: initial, MaxPages: max}
			d.m.Memory = imp.Memory
			d.m.MemoryImported = true
		case 0x03: // global
			kb, err := r.ReadByte()
			if err != nil {
				return diag.Wrap(err, "import global kind")
			}
			kind, err := decodeValueKind(kb)
			if err != nil {
				return err
			}
			mb, err := r.ReadByte()
			if err != nil {
				return diag.Wrap(err, "import global mutability")
			}
			imp.Kind = wasm.ImportGlobal
			imp.Global = &wasm.GlobalType{Kind: kind, Mutable: mb == 1}
			d.m.Globals = append(d.m.Globals, wasm.GlobalDecl{Kind: kind, Mutable: mb == 1})
		default:
			return diag.UnsupportedFeaturef("unsupported import kind byte 0x%02x", kindByte)
		}
		d.m.Imports = append(d.m.Imports, imp)
	}
	return nil
}

func (d *decoder) decodeFunctionSection(r *bytes.Reader) error {
	count, err := leb128.DecodeUint32(r)
	if err != nil {
		return diag.Wrap(err, "function section count")
	}
	for i := uint32(0); i < count; i++ {
		typeIdx, err := leb128.DecodeUint32(r)
		if err != nil {
			return diag.Wrap(err, "function type index")
		}
		d.m.Funcs = append(d.m.Funcs, wasm.FuncSignature{TypeIndex: typeIdx})
	}
	return nil
}

func (d *decoder) decodeTableSection(r *bytes.Reader) error {
	count, err := leb128.DecodeUint32(r)
	if err != nil {
		return diag.Wrap(err, "table section count")
	}
	if count == 0 {
		return nil
	}
	if count > 1 || d.m.Table != nil {
		return diag.UnsupportedFeaturef("multiple tables are unsupported")
	}
	elemKind, err := r.ReadByte()
	if err != nil {
		return diag.Wrap(err, "table element kind")
	}
	if elemKind != 0x70 {
		return diag.UnsupportedFeaturef("non-funcref table")
	}
	initial, max, err := decodeLimits(r)
	if err != nil {
		return err
	}
	d.m.Table = &wasm.TableDecl{InitialSize: initial, MaxSize: max}
	return nil
}

func (d *decoder) decodeMemorySection(r *bytes.Reader) error {
	count, err := leb128.DecodeUint32(r)
	if err != nil {
		return diag.Wrap(err, "memory section count")
	}
	if count == 0 {
		return nil
	}
	if count > 1 || d.m.Memory != nil {
		return diag.UnsupportedFeaturef("multiple memories are unsupported")
	}
	initial, max, err := decodeLimits(r)
	if err != nil {
		return err
	}
	d.m.Memory = &wasm.MemoryDecl{InitialPages: initial, MaxPages: max}
	return nil
}

func (d *decoder) decodeGlobalSection(r *bytes.Reader) error {
	count, err := leb128.DecodeUint32(r)
	if err != nil {
		return diag.Wrap(err, "global section count")
	}
	for i := uint32(0); i < count; i++ {
		kb, err := r.ReadByte()
		if err != nil {
			return diag.Wrap(err, "global kind")
		}
		kind, err := decodeValueKind(kb)
		if err != nil {
			return err
		}
		mb, err := r.ReadByte()
		if err != nil {
			return diag.Wrap(err, "global mutability")
		}
		init, err := decodeConstExpr(r)
		if err != nil {
			return err
		}
		d.m.Globals = append(d.m.Globals, wasm.GlobalDecl{Kind: kind, Mutable: mb == 1, Init: init})
	}
	return nil
}

func (d *decoder) decodeExportSection(r *bytes.Reader) error {
	count, err := leb128.DecodeUint32(r)
	if err != nil {
		return diag.Wrap(err, "export section count")
	}
	for i := uint32(0); i < count; i++ {
		name, err := decodeName(r)
		if err != nil {
			return err
		}
		kindByte, err := r.ReadByte()
		if err != nil {
			return diag.Wrap(err, "export kind")
		}
		idx, err := leb128.DecodeUint32(r)
		if err != nil {
			return diag.Wrap(err, "export index")
		}
		var kind wasm.ExportKind
		switch kindByte {
		case 0x00:
			kind = wasm.ExportFunction
		case 0x01:
			kind = wasm.ExportTable
		case 0x02:
			kind = wasm.ExportMemory
		case 0x03:
			kind = wasm.ExportGlobal
		default:
			return diag.UnsupportedFeaturef("unsupported export kind byte 0x%02x", kindByte)
		}
		d.m.Exports = append(d.m.Exports, wasm.ExportDecl{Name: name, Kind: kind, Index: idx})
	}
	return nil
}

func (d *decoder) decodeStartSection(r *bytes.Reader) error {
	idx, err := leb128.DecodeUint32(r)
	if err != nil {
		return diag.Wrap(err, "start function index")
	}
	d.m.StartFunc = &idx
	return nil
}

func (d *decoder) decodeElementSection(r *bytes.Reader) error {
	count, err := leb128.DecodeUint32(r)
	if err != nil {
		return diag.Wrap(err, "element section count")
	}
	for i := uint32(0); i < count; i++ {
		tableIdx, err := leb128.DecodeUint32(r)
		if err != nil {
			return diag.Wrap(err, "element table index")
		}
		offset, err := decodeConstExpr(r)
		if err != nil {
			return err
		}
		n, err := leb128.DecodeUint32(r)
		if err != nil {
			return diag.Wrap(err, "element count")
		}
		indices := make([]uint32, n)
		for j := range indices {
			indices[j], err = leb128.DecodeUint32(r)
			if err != nil {
				return diag.Wrap(err, "element function index")
			}
		}
		d.m.ElementSegments = append(d.m.ElementSegments, wasm.ElementSegment{
			TableIndex: tableIdx, Offset: offset, FuncIndices: indices,
		})
	}
	return nil
}

func (d *decoder) decodeDataSection(r *bytes.Reader) error {
	count, err := leb128.DecodeUint32(r)
	if err != nil {
		return diag.Wrap(err, "data section count")
	}
	for i := uint32(0); i < count; i++ {
		memIdx, err := leb128.DecodeUint32(r)
		if err != nil {
			return diag.Wrap(err, "data memory index")
		}
		offset, err := decodeConstExpr(r)
		if err != nil {
			return err
		}
		n, err := leb128.DecodeUint32(r)
		if err != nil {
			return diag.Wrap(err, "data length")
		}
		bytes := make([]byte, n)
		if _, err := io.ReadFull(r, bytes); err != nil {
			return diag.Wrap(err, "data bytes")
		}
		d.m.DataSegments = append(d.m.DataSegments, wasm.DataSegment{
			MemoryIndex: memIdx, Offset: offset, Bytes: bytes,
		})
	}
	return nil
}

func (d *decoder) decodeCodeSection(r *bytes.Reader) error {
	count, err := leb128.DecodeUint32(r)
	if err != nil {
		return diag.Wrap(err, "code section count")
	}
	d.m.Bodies = make([]wasm.FunctionBody, count)
	for i := uint32(0); i < count; i++ {
		size, err := leb128.DecodeUint32(r)
		if err != nil {
			return diag.Wrap(err, "function body size")
		}
		bodyBytes := make([]byte, size)
		if _, err := io.ReadFull(r, bodyBytes); err != nil {
			return diag.Wrap(err, "function body bytes")
		}
		body, err := decodeFunctionBody(bodyBytes)
		if err != nil {
			return err
		}
		d.m.Bodies[i] = body
	}
	return nil
}

func decodeFunctionBody(b []byte) (wasm.FunctionBody, error) {
	r := bytes.NewReader(b)
	groupCount, err := leb128.DecodeUint32(r)
	if err != nil {
		return wasm.FunctionBody{}, diag.Wrap(err, "local group count")
	}
	groups := make([]wasm.LocalGroup, groupCount)
	for i := range groups {
		n, err := leb128.DecodeUint32(r)
		if err != nil {
			return wasm.FunctionBody{}, diag.Wrap(err, "local group count field")
		}
		kb, err := r.ReadByte()
		if err != nil {
			return wasm.FunctionBody{}, diag.Wrap(err, "local group kind")
		}
		kind, err := decodeValueKind(kb)
		if err != nil {
			return wasm.FunctionBody{}, err
		}
		groups[i] = wasm.LocalGroup{Count: n, Kind: kind}
	}
	// The remainder of the body is the raw opcode stream: the parser leaves
	// it undecoded (§4.2), to be walked by the IR builder.
	rest := make([]byte, r.Len())
	if _, err := io.ReadFull(r, rest); err != nil {
		return wasm.FunctionBody{}, diag.Wrap(err, "function body code")
	}
	return wasm.FunctionBody{Locals: groups, Code: rest}, nil
}
