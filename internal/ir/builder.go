package ir

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"

	"github.com/pkg/errors"

	"github.com/wasmforge/wasmforge/internal/diag"
	"github.com/wasmforge/wasmforge/internal/wasm"
	"github.com/wasmforge/wasmforge/internal/wasm/leb128"
)

// frameKind is the shape of one open control-flow-stack frame (§4.4).
type frameKind uint8

const (
	frameBlock frameKind = iota
	frameLoop
	frameIf
)

// frame is one entry of the builder's control-flow stack. continuation is
// only meaningful for frameLoop (the loop header, the target a `br` to this
// depth re-enters); every other kind branches to exitBlock.
type frame struct {
	kind         frameKind
	resultKind   *wasm.ValueKind
	mergeVar     VarId
	exitBlock    BlockId
	continuation BlockId
	elseBlock    BlockId
	hasElse      bool
	dead         bool // true if this frame was pushed while already in dead code.
	entryStack   []VarId
	entryKinds   []wasm.ValueKind
}

// builder holds the mutable state of one function's translation. It
// simulates a stack machine over VarIds exactly as §4.4 describes: the value
// stack never holds real numbers, only the identities of the IR values that
// will compute them.
type builder struct {
	module *wasm.Module
	canon  *wasm.Canonical
	fn     *IrFunction

	nextVar   VarId
	nextBlock BlockId
	blocks    []*IrBlock
	cur       *IrBlock

	stack      []VarId
	stackKinds []wasm.ValueKind
	localKinds []wasm.ValueKind

	frames      []*frame
	unreachable bool
}

// Build translates one local function's declared locals and opcode stream
// into its IrFunction (§4.4). funcIndex is a combined-index-space function
// index; it must name a local (non-imported) function.
func Build(module *wasm.Module, canon *wasm.Canonical, funcIndex uint32) (*IrFunction, error) {
	sig := module.FuncSignatureOf(funcIndex)
	body := module.Bodies[module.LocalFuncIndex(funcIndex)]

	b := &builder{
		module: module,
		canon:  canon,
		fn: &IrFunction{
			Index:       funcIndex,
			ImportsUsed: map[uint32]bool{},
			VarKinds:    map[VarId]wasm.ValueKind{},
		},
	}
	if sig.Result != nil {
		rk := *sig.Result
		b.fn.ResultKind = &rk
	}

	for _, k := range sig.Params {
		id := b.newVar()
		b.setKind(id, k)
		b.fn.Params = append(b.fn.Params, TypedVar{ID: id, Kind: k})
		b.localKinds = append(b.localKinds, k)
	}
	for _, g := range body.Locals {
		for i := uint32(0); i < g.Count; i++ {
			id := b.newVar()
			b.setKind(id, g.Kind)
			b.fn.Locals = append(b.fn.Locals, TypedVar{ID: id, Kind: g.Kind})
			b.localKinds = append(b.localKinds, g.Kind)
		}
	}

	entry := b.newBlock()
	b.fn.EntryBlock = entry.ID
	b.cur = entry

	r := bytes.NewReader(body.Code)
	if err := b.run(r); err != nil {
		return nil, errors.Wrapf(err, "function %d", funcIndex)
	}
	b.fn.Blocks = b.blocks
	Optimize(b.fn)
	return b.fn, nil
}

func (b *builder) newVar() VarId {
	v := b.nextVar
	b.nextVar++
	return v
}

func (b *builder) setKind(id VarId, k wasm.ValueKind) {
	b.fn.VarKinds[id] = k
}

func (b *builder) newBlock() *IrBlock {
	blk := &IrBlock{ID: b.nextBlock}
	b.nextBlock++
	b.blocks = append(b.blocks, blk)
	return blk
}

func (b *builder) blockByID(id BlockId) *IrBlock {
	for _, blk := range b.blocks {
		if blk.ID == id {
			return blk
		}
	}
	return nil
}

func (b *builder) push(id VarId, k wasm.ValueKind) {
	b.setKind(id, k)
	if b.unreachable {
		return
	}
	b.stack = append(b.stack, id)
	b.stackKinds = append(b.stackKinds, k)
}

func (b *builder) pop() (VarId, wasm.ValueKind) {
	if b.unreachable || len(b.stack) == 0 {
		return 0, wasm.I32
	}
	n := len(b.stack) - 1
	id, k := b.stack[n], b.stackKinds[n]
	b.stack = b.stack[:n]
	b.stackKinds = b.stackKinds[:n]
	return id, k
}

func (b *builder) peek() VarId {
	if b.unreachable || len(b.stack) == 0 {
		return 0
	}
	return b.stack[len(b.stack)-1]
}

func (b *builder) emit(instr Instr) {
	if b.unreachable {
		return
	}
	b.cur.Instructions = append(b.cur.Instructions, instr)
}

// terminate seals the current block with t. A no-op if the block is already
// sealed (dead code past an earlier terminator keeps decoding opcodes to
// stay byte-aligned with the stream, but never mutates a sealed block).
func (b *builder) terminate(t Terminator) {
	if b.unreachable {
		return
	}
	b.cur.Terminator = t
	b.unreachable = true
}

func (b *builder) binOp(op BinOpKind, resultKind wasm.ValueKind) {
	rhs, _ := b.pop()
	lhs, _ := b.pop()
	dest := b.newVar()
	b.push(dest, resultKind)
	b.emit(BinOp{Dest: dest, Op: op, Lhs: lhs, Rhs: rhs})
}

func (b *builder) unOp(op UnOpKind, resultKind wasm.ValueKind) {
	v, _ := b.pop()
	dest := b.newVar()
	b.push(dest, resultKind)
	b.emit(UnOp{Dest: dest, Op: op, Operand: v})
}

func (b *builder) newFrame(kind frameKind, rk *wasm.ValueKind, exitBlock, continuation BlockId) *frame {
	fr := &frame{
		kind:         kind,
		resultKind:   rk,
		exitBlock:    exitBlock,
		continuation: continuation,
		dead:         b.unreachable,
		entryStack:   append([]VarId(nil), b.stack...),
		entryKinds:   append([]wasm.ValueKind(nil), b.stackKinds...),
	}
	if rk != nil {
		fr.mergeVar = b.newVar()
		b.setKind(fr.mergeVar, *rk)
	}
	return fr
}

func (b *builder) resolveBranch(depth uint32) (target BlockId, mergeVar VarId, carries bool) {
	fr := b.frames[len(b.frames)-1-int(depth)]
	if fr.kind == frameLoop {
		return fr.continuation, 0, false
	}
	if fr.resultKind != nil {
		return fr.exitBlock, fr.mergeVar, true
	}
	return fr.exitBlock, 0, false
}

// closeFrameEdge writes the frame's merge variable (if it carries a result)
// and terminates the current block with a Jump to the frame's exit. Called
// whenever a frame's body falls off its end still reachable.
func (b *builder) closeFrameEdge(fr *frame) {
	if fr.resultKind != nil {
		v, _ := b.pop()
		b.emit(Copy{Dest: fr.mergeVar, Source: v})
	}
	b.terminate(Jump{Target: fr.exitBlock})
}

func (b *builder) pushBlockFrame(rk *wasm.ValueKind) {
	exitBlk := b.newBlock()
	fr := b.newFrame(frameBlock, rk, exitBlk.ID, exitBlk.ID)
	b.frames = append(b.frames, fr)
}

func (b *builder) pushLoopFrame(rk *wasm.ValueKind) {
	dead := b.unreachable
	loopHead := b.newBlock()
	exitBlk := b.newBlock()
	fr := b.newFrame(frameLoop, rk, exitBlk.ID, loopHead.ID)
	if !dead {
		b.terminate(Jump{Target: loopHead.ID})
	}
	b.frames = append(b.frames, fr)
	b.cur = loopHead
	b.unreachable = dead
}

func (b *builder) pushIfFrame(rk *wasm.ValueKind) {
	cond, _ := b.pop()
	wasDead := b.unreachable
	thenBlk := b.newBlock()
	elseBlk := b.newBlock()
	exitBlk := b.newBlock()
	fr := b.newFrame(frameIf, rk, exitBlk.ID, 0)
	fr.elseBlock = elseBlk.ID
	b.terminate(BranchIf{Condition: cond, TrueTarget: thenBlk.ID, FalseTarget: elseBlk.ID})
	b.frames = append(b.frames, fr)
	b.cur = thenBlk
	b.unreachable = wasDead
}

func (b *builder) elseFrame() {
	fr := b.frames[len(b.frames)-1]
	if !b.unreachable {
		b.closeFrameEdge(fr)
	}
	fr.hasElse = true
	b.cur = b.blockByID(fr.elseBlock)
	b.stack = append([]VarId(nil), fr.entryStack...)
	b.stackKinds = append([]wasm.ValueKind(nil), fr.entryKinds...)
	b.unreachable = fr.dead
}

func (b *builder) endFrame() {
	fr := b.frames[len(b.frames)-1]
	b.frames = b.frames[:len(b.frames)-1]

	if fr.kind == frameIf && !fr.hasElse {
		elseBlk := b.blockByID(fr.elseBlock)
		if !fr.dead {
			elseBlk.Terminator = Jump{Target: fr.exitBlock}
		} else {
			elseBlk.Terminator = Unreachable{}
		}
	}

	if !b.unreachable {
		b.closeFrameEdge(fr)
	}

	b.cur = b.blockByID(fr.exitBlock)
	b.stack = append([]VarId(nil), fr.entryStack...)
	b.stackKinds = append([]wasm.ValueKind(nil), fr.entryKinds...)
	if fr.resultKind != nil {
		b.stack = append(b.stack, fr.mergeVar)
		b.stackKinds = append(b.stackKinds, *fr.resultKind)
	}
	b.unreachable = fr.dead
}

func (b *builder) doBr(depth uint32) {
	target, mergeVar, carries := b.resolveBranch(depth)
	if carries {
		v, _ := b.pop()
		b.emit(Copy{Dest: mergeVar, Source: v})
	}
	b.terminate(Jump{Target: target})
}

func (b *builder) doBrIf(depth uint32) {
	wasDead := b.unreachable
	cond, _ := b.pop()
	target, mergeVar, carries := b.resolveBranch(depth)
	if carries {
		b.emit(Copy{Dest: mergeVar, Source: b.peek()})
	}
	contBlk := b.newBlock()
	b.terminate(BranchIf{Condition: cond, TrueTarget: target, FalseTarget: contBlk.ID})
	b.cur = contBlk
	b.unreachable = wasDead
}

func (b *builder) doBrTable(r *bytes.Reader) error {
	count, err := leb128.DecodeUint32(r)
	if err != nil {
		return diag.Wrap(err, "br_table target count")
	}
	depths := make([]uint32, count)
	for i := range depths {
		depths[i], err = leb128.DecodeUint32(r)
		if err != nil {
			return diag.Wrap(err, "br_table target")
		}
	}
	defaultDepth, err := leb128.DecodeUint32(r)
	if err != nil {
		return diag.Wrap(err, "br_table default target")
	}

	idx, _ := b.pop()
	seen := map[BlockId]bool{}
	var copies []Instr
	resolve := func(depth uint32) BlockId {
		target, mergeVar, carries := b.resolveBranch(depth)
		if carries && !seen[target] {
			seen[target] = true
			copies = append(copies, Copy{Dest: mergeVar, Source: b.peek()})
		}
		return target
	}
	targets := make([]BlockId, len(depths))
	for i, d := range depths {
		targets[i] = resolve(d)
	}
	defTarget := resolve(defaultDepth)
	for _, c := range copies {
		b.emit(c)
	}
	b.terminate(BranchTable{Index: idx, Targets: targets, DefaultTarget: defTarget})
	return nil
}

func (b *builder) doReturn() {
	if b.fn.ResultKind != nil {
		v, _ := b.pop()
		b.terminate(Return{HasValue: true, Value: v})
	} else {
		b.terminate(Return{})
	}
}

func (b *builder) doLocalGet(idx uint32) {
	kind := b.localKinds[idx]
	dest := b.newVar()
	b.push(dest, kind)
	b.emit(LocalGet{Dest: dest, Local: idx})
}

func (b *builder) doLocalSet(idx uint32) {
	v, _ := b.pop()
	b.emit(LocalSet{Local: idx, Source: v})
}

func (b *builder) doLocalTee(idx uint32) {
	v, kind := b.pop()
	dest := b.newVar()
	b.push(dest, kind)
	b.emit(LocalTee{Dest: dest, Local: idx, Source: v})
}

func (b *builder) doGlobalGet(idx uint32) {
	g := b.module.Globals[idx]
	dest := b.newVar()
	b.push(dest, g.Kind)
	b.emit(GlobalGet{Dest: dest, Global: idx})
	b.fn.UsesGlobals = true
}

func (b *builder) doGlobalSet(idx uint32) {
	v, _ := b.pop()
	b.emit(GlobalSet{Global: idx, Source: v})
	b.fn.UsesGlobals = true
}

func decodeMemArg(r *bytes.Reader) (align, offset uint32, err error) {
	align, err = leb128.DecodeUint32(r)
	if err != nil {
		return 0, 0, diag.Wrap(err, "memarg align")
	}
	offset, err = leb128.DecodeUint32(r)
	if err != nil {
		return 0, 0, diag.Wrap(err, "memarg offset")
	}
	return align, offset, nil
}

func (b *builder) doLoad(r *bytes.Reader, resultKind wasm.ValueKind, width uint8, signed bool) error {
	align, offset, err := decodeMemArg(r)
	if err != nil {
		return err
	}
	base, _ := b.pop()
	dest := b.newVar()
	b.push(dest, resultKind)
	b.emit(Load{Dest: dest, ResultKind: resultKind, StorageWidth: width, Signed: signed, Base: base, StaticOffset: offset, Align: align})
	b.fn.UsesMemory = true
	return nil
}

func (b *builder) doStore(r *bytes.Reader, valueKind wasm.ValueKind, width uint8) error {
	align, offset, err := decodeMemArg(r)
	if err != nil {
		return err
	}
	value, _ := b.pop()
	base, _ := b.pop()
	b.emit(Store{ValueKind: valueKind, StorageWidth: width, Base: base, Value: value, StaticOffset: offset, Align: align})
	b.fn.UsesMemory = true
	return nil
}

// importFuncDecl returns the ImportDecl for the idx-th entry of the combined
// function index space, which must be an import.
func (b *builder) importFuncDecl(idx uint32) wasm.ImportDecl {
	var n uint32
	for _, imp := range b.module.Imports {
		if imp.Kind != wasm.ImportFunction {
			continue
		}
		if n == idx {
			return imp
		}
		n++
	}
	return wasm.ImportDecl{}
}

func (b *builder) doCall(idx uint32) {
	sig := b.module.FuncSignatureOf(idx)
	args := make([]VarId, len(sig.Params))
	for i := len(sig.Params) - 1; i >= 0; i-- {
		args[i], _ = b.pop()
	}
	var dest VarId
	hasDest := false
	if sig.Result != nil {
		dest = b.newVar()
		b.push(dest, *sig.Result)
		hasDest = true
	}
	if b.module.IsImportedFunc(idx) {
		imp := b.importFuncDecl(idx)
		b.emit(CallImport{Dest: dest, HasDest: hasDest, ImportIndex: idx, Module: imp.Module, Field: imp.Field, Args: args})
		b.fn.ImportsUsed[idx] = true
	} else {
		b.emit(Call{Dest: dest, HasDest: hasDest, FuncIndex: idx, Args: args})
	}
}

func (b *builder) doCallIndirect(typeIdx uint32) {
	tableIdx, _ := b.pop()
	sig := b.module.Types[typeIdx]
	args := make([]VarId, len(sig.Params))
	for i := len(sig.Params) - 1; i >= 0; i-- {
		args[i], _ = b.pop()
	}
	var dest VarId
	hasDest := false
	if sig.Result != nil {
		dest = b.newVar()
		b.push(dest, *sig.Result)
		hasDest = true
	}
	b.emit(CallIndirect{Dest: dest, HasDest: hasDest, CanonicalTypeIndex: b.canon.Of(typeIdx), TableIndex: tableIdx, Args: args})
	b.fn.UsesTable = true
}

func valueKindFromByte(v byte) (wasm.ValueKind, error) {
	switch v {
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
		return 0, diag.MalformedInput("unrecognized value type byte")
	}
}

// decodeBlockType reads the single-byte block type encoding in scope here:
// either the empty marker or one concrete result value type (multi-value
// blocks, which would need a signed LEB128 type-section index, are out of
// scope, §1).
func decodeBlockType(r *bytes.Reader) (*wasm.ValueKind, error) {
	v, err := r.ReadByte()
	if err != nil {
		return nil, diag.Wrap(err, "block type")
	}
	if v == blockTypeEmpty {
		return nil, nil
	}
	k, err := valueKindFromByte(v)
	if err != nil {
		return nil, diag.UnsupportedFeaturef("block type byte 0x%02x is not a supported single-result type", v)
	}
	return &k, nil
}

func readF32(r *bytes.Reader) (float32, error) {
	buf := make([]byte, 4)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, diag.Wrap(err, "f32.const operand")
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(buf)), nil
}

func readF64(r *bytes.Reader) (float64, error) {
	buf := make([]byte, 8)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, diag.Wrap(err, "f64.const operand")
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(buf)), nil
}

// run walks the opcode stream, mutating b until the function body's closing
// `end` opcode is consumed.
func (b *builder) run(r *bytes.Reader) error {
	for {
		op, err := r.ReadByte()
		if err != nil {
			return diag.Wrap(err, "unexpected end of function body")
		}

		switch op {
		case opEnd:
			if len(b.frames) == 0 {
				b.doReturn()
				return nil
			}
			b.endFrame()
		case opElse:
			b.elseFrame()
		case opNop:
			// no effect.
		case opUnreachable:
			b.terminate(Unreachable{})
		case opBlock:
			rk, err := decodeBlockType(r)
			if err != nil {
				return err
			}
			b.pushBlockFrame(rk)
		case opLoop:
			rk, err := decodeBlockType(r)
			if err != nil {
				return err
			}
			b.pushLoopFrame(rk)
		case opIf:
			rk, err := decodeBlockType(r)
			if err != nil {
				return err
			}
			b.pushIfFrame(rk)
		case opBr:
			depth, err := leb128.DecodeUint32(r)
			if err != nil {
				return diag.Wrap(err, "br depth")
			}
			b.doBr(depth)
		case opBrIf:
			depth, err := leb128.DecodeUint32(r)
			if err != nil {
				return diag.Wrap(err, "br_if depth")
			}
			b.doBrIf(depth)
		case opBrTable:
			if err := b.doBrTable(r); err != nil {
				return err
			}
		case opReturn:
			b.doReturn()
		case opCall:
			idx, err := leb128.DecodeUint32(r)
			if err != nil {
				return diag.Wrap(err, "call function index")
			}
			b.doCall(idx)
		case opCallIndirect:
			typeIdx, err := leb128.DecodeUint32(r)
			if err != nil {
				return diag.Wrap(err, "call_indirect type index")
			}
			if _, err := leb128.DecodeUint32(r); err != nil { // table index, always 0 in scope.
				return diag.Wrap(err, "call_indirect table index")
			}
			b.doCallIndirect(typeIdx)
		case opDrop:
			v, _ := b.pop()
			b.emit(Drop{Source: v})
		case opSelect:
			cond, _ := b.pop()
			f, _ := b.pop()
			t, kt := b.pop()
			dest := b.newVar()
			b.push(dest, kt)
			b.emit(Select{Dest: dest, TrueValue: t, FalseValue: f, Condition: cond})
		case opLocalGet:
			idx, err := leb128.DecodeUint32(r)
			if err != nil {
				return diag.Wrap(err, "local.get index")
			}
			b.doLocalGet(idx)
		case opLocalSet:
			idx, err := leb128.DecodeUint32(r)
			if err != nil {
				return diag.Wrap(err, "local.set index")
			}
			b.doLocalSet(idx)
		case opLocalTee:
			idx, err := leb128.DecodeUint32(r)
			if err != nil {
				return diag.Wrap(err, "local.tee index")
			}
			b.doLocalTee(idx)
		case opGlobalGet:
			idx, err := leb128.DecodeUint32(r)
			if err != nil {
				return diag.Wrap(err, "global.get index")
			}
			b.doGlobalGet(idx)
		case opGlobalSet:
			idx, err := leb128.DecodeUint32(r)
			if err != nil {
				return diag.Wrap(err, "global.set index")
			}
			b.doGlobalSet(idx)
		case opMemorySize:
			if _, err := r.ReadByte(); err != nil { // reserved byte
				return diag.Wrap(err, "memory.size reserved byte")
			}
			dest := b.newVar()
			b.push(dest, wasm.I32)
			b.emit(MemorySize{Dest: dest})
			b.fn.UsesMemory = true
		case opMemoryGrow:
			if _, err := r.ReadByte(); err != nil { // reserved byte
				return diag.Wrap(err, "memory.grow reserved byte")
			}
			delta, _ := b.pop()
			dest := b.newVar()
			b.push(dest, wasm.I32)
			b.emit(MemoryGrow{Dest: dest, Delta: delta})
			b.fn.UsesMemory = true
		case opI32Const:
			v, err := leb128.DecodeInt32(r)
			if err != nil {
				return diag.Wrap(err, "i32.const operand")
			}
			dest := b.newVar()
			b.push(dest, wasm.I32)
			b.emit(Const{Dest: dest, Kind: wasm.I32, I32: int64(v)})
		case opI64Const:
			v, err := leb128.DecodeInt64(r)
			if err != nil {
				return diag.Wrap(err, "i64.const operand")
			}
			dest := b.newVar()
			b.push(dest, wasm.I64)
			b.emit(Const{Dest: dest, Kind: wasm.I64, I64: v})
		case opF32Const:
			v, err := readF32(r)
			if err != nil {
				return err
			}
			dest := b.newVar()
			b.push(dest, wasm.F32)
			b.emit(Const{Dest: dest, Kind: wasm.F32, F32: v})
		case opF64Const:
			v, err := readF64(r)
			if err != nil {
				return err
			}
			dest := b.newVar()
			b.push(dest, wasm.F64)
			b.emit(Const{Dest: dest, Kind: wasm.F64, F64: v})

		case opI32Load:
			if err := b.doLoad(r, wasm.I32, 4, false); err != nil {
				return err
			}
		case opI64Load:
			if err := b.doLoad(r, wasm.I64, 8, false); err != nil {
				return err
			}
		case opF32Load:
			if err := b.doLoad(r, wasm.F32, 4, false); err != nil {
				return err
			}
		case opF64Load:
			if err := b.doLoad(r, wasm.F64, 8, false); err != nil {
				return err
			}
		case opI32Load8S:
			if err := b.doLoad(r, wasm.I32, 1, true); err != nil {
				return err
			}
		case opI32Load8U:
			if err := b.doLoad(r, wasm.I32, 1, false); err != nil {
				return err
			}
		case opI32Load16S:
			if err := b.doLoad(r, wasm.I32, 2, true); err != nil {
				return err
			}
		case opI32Load16U:
			if err := b.doLoad(r, wasm.I32, 2, false); err != nil {
				return err
			}
		case opI64Load8S:
			if err := b.doLoad(r, wasm.I64, 1, true); err != nil {
				return err
			}
		case opI64Load8U:
			if err := b.doLoad(r, wasm.I64, 1, false); err != nil {
				return err
			}
		case opI64Load16S:
			if err := b.doLoad(r, wasm.I64, 2, true); err != nil {
				return err
			}
		case opI64Load16U:
			if err := b.doLoad(r, wasm.I64, 2, false); err != nil {
				return err
			}
		case opI64Load32S:
			if err := b.doLoad(r, wasm.I64, 4, true); err != nil {
				return err
			}
		case opI64Load32U:
			if err := b.doLoad(r, wasm.I64, 4, false); err != nil {
				return err
			}

		case opI32Store:
			if err := b.doStore(r, wasm.I32, 4); err != nil {
				return err
			}
		case opI64Store:
			if err := b.doStore(r, wasm.I64, 8); err != nil {
				return err
			}
		case opF32Store:
			if err := b.doStore(r, wasm.F32, 4); err != nil {
				return err
			}
		case opF64Store:
			if err := b.doStore(r, wasm.F64, 8); err != nil {
				return err
			}
		case opI32Store8:
			if err := b.doStore(r, wasm.I32, 1); err != nil {
				return err
			}
		case opI32Store16:
			if err := b.doStore(r, wasm.I32, 2); err != nil {
				return err
			}
		case opI64Store8:
			if err := b.doStore(r, wasm.I64, 1); err != nil {
				return err
			}
		case opI64Store16:
			if err := b.doStore(r, wasm.I64, 2); err != nil {
				return err
			}
		case opI64Store32:
			if err := b.doStore(r, wasm.I64, 4); err != nil {
				return err
			}

		default:
			if err := b.doArithmetic(op); err != nil {
				return err
			}
		}
	}
}
