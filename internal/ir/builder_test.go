package ir

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wasmforge/wasmforge/internal/wasm"
)

func i32() *wasm.ValueKind {
	k := wasm.I32
	return &k
}

func newTestModule(params []wasm.ValueKind, result *wasm.ValueKind, locals []wasm.LocalGroup, code []byte) (*wasm.Module, *wasm.Canonical) {
	sig := wasm.TypeSignature{Params: params, Result: result}
	m := &wasm.Module{
		Types: []wasm.TypeSignature{sig},
		Funcs: []wasm.FuncSignature{{TypeIndex: 0}},
		Bodies: []wasm.FunctionBody{
			{Locals: locals, Code: code},
		},
	}
	return m, wasm.NewCanonical(m.Types)
}

func terminatorOf(fn *IrFunction, id BlockId) Terminator {
	return fn.BlockByID(id).Terminator
}

// local.get 0; local.get 1; i32.add; end
func TestBuildArithmetic(t *testing.T) {
	code := []byte{0x20, 0x00, 0x20, 0x01, opI32Add, opEnd}
	m, canon := newTestModule([]wasm.ValueKind{wasm.I32, wasm.I32}, i32(), nil, code)

	fn, err := Build(m, canon, 0)
	require.NoError(t, err)
	require.Len(t, fn.Blocks, 1)

	entry := fn.BlockByID(fn.EntryBlock)
	require.Len(t, entry.Instructions, 3) // LocalGet, LocalGet, BinOp
	add, ok := entry.Instructions[2].(BinOp)
	require.True(t, ok)
	require.Equal(t, BinAdd, add.Op)

	ret, ok := entry.Terminator.(Return)
	require.True(t, ok)
	require.True(t, ret.HasValue)
	require.Equal(t, add.Dest, ret.Value)
}

// local.get 0; i32.const 0; i32.eq; if (result i32); i32.const 1; else; i32.const 2; end; end
func TestBuildIfElseResult(t *testing.T) {
	code := []byte{
		0x20, 0x00, // local.get 0
		opI32Const, 0x00, // i32.const 0
		opI32Eq,
		opIf, 0x7F, // if (result i32)
		opI32Const, 0x01, // i32.const 1
		opElse,
		opI32Const, 0x02, // i32.const 2
		opEnd, // end if
		opEnd, // end function
	}
	m, canon := newTestModule([]wasm.ValueKind{wasm.I32}, i32(), nil, code)

	fn, err := Build(m, canon, 0)
	require.NoError(t, err)
	Optimize(fn)

	require.Len(t, fn.Blocks, 4) // entry, then, else, exit

	entry := fn.BlockByID(fn.EntryBlock)
	branchIf, ok := entry.Terminator.(BranchIf)
	require.True(t, ok)

	thenBlk := fn.BlockByID(branchIf.TrueTarget)
	require.Len(t, thenBlk.Instructions, 2) // Const 1, Copy into merge var
	_, ok = thenBlk.Instructions[0].(Const)
	require.True(t, ok)
	thenCopy, ok := thenBlk.Instructions[1].(Copy)
	require.True(t, ok)
	thenJump, ok := thenBlk.Terminator.(Jump)
	require.True(t, ok)

	elseBlk := fn.BlockByID(branchIf.FalseTarget)
	require.Len(t, elseBlk.Instructions, 2)
	elseCopy, ok := elseBlk.Instructions[1].(Copy)
	require.True(t, ok)
	require.Equal(t, thenCopy.Dest, elseCopy.Dest) // both predecessors write the same merge variable.

	elseJump, ok := elseBlk.Terminator.(Jump)
	require.True(t, ok)
	require.Equal(t, thenJump.Target, elseJump.Target)

	exitBlk := fn.BlockByID(thenJump.Target)
	ret, ok := exitBlk.Terminator.(Return)
	require.True(t, ok)
	require.True(t, ret.HasValue)
	require.Equal(t, thenCopy.Dest, ret.Value)
}

// param 0 is the counter; loop (no result):
//   local.get 0; i32.const 1; i32.sub; local.tee 0; i32.const 0; i32.gt_s; br_if 0
// end; i32.const 0; end
func TestBuildLoopBranch(t *testing.T) {
	code := []byte{
		opLoop, blockTypeEmpty,
		0x20, 0x00, // local.get 0
		opI32Const, 0x01,
		opI32Sub,
		0x22, 0x00, // local.tee 0
		opI32Const, 0x00,
		opI32GtS,
		opBrIf, 0x00,
		opEnd, // end loop
		opI32Const, 0x00,
		opEnd, // end function
	}
	m, canon := newTestModule([]wasm.ValueKind{wasm.I32}, i32(), nil, code)

	fn, err := Build(m, canon, 0)
	require.NoError(t, err)
	Optimize(fn)

	// entry -> loop head (via Jump), loop head ends in BranchIf{true: loop head, false: continuation}.
	entry := fn.BlockByID(fn.EntryBlock)
	jump, ok := entry.Terminator.(Jump)
	require.True(t, ok)

	loopHead := fn.BlockByID(jump.Target)
	branchIf, ok := loopHead.Terminator.(BranchIf)
	require.True(t, ok)
	require.Equal(t, loopHead.ID, branchIf.TrueTarget) // br_if 0 re-enters the loop header.
	require.NotEqual(t, loopHead.ID, branchIf.FalseTarget)
}

func TestOptimizeRemovesDeadBlocks(t *testing.T) {
	// block (result i32): i32.const 1; br 0; i32.const -29; block; end; end; end
	//
	// Everything after the unconditional `br 0` is dead. The builder emits no
	// instructions for it, but the dead nested `block` still allocates an
	// exit block that nothing branches to; Build runs Optimize internally
	// (§4.6 "before codegen"), so by the time it returns that block has
	// already been pruned.
	code := []byte{
		opBlock, 0x7F,
		opI32Const, 0x01,
		opBr, 0x00,
		opI32Const, 0x63, // dead code after the unconditional branch (0x63 is -29 as signed LEB128).
		opBlock, blockTypeEmpty, // dead nested block: its exit block is never reached.
		opEnd,
		opEnd,
		opEnd,
	}
	m, canon := newTestModule(nil, i32(), nil, code)

	fn, err := Build(m, canon, 0)
	require.NoError(t, err)

	// entry and the outer block's exit are both reachable; the dead nested
	// block's exit is not, and Optimize has dropped it.
	require.Len(t, fn.Blocks, 2)

	for _, blk := range fn.Blocks {
		require.NotNil(t, blk.Terminator)
	}

	// Optimize is idempotent (§8): re-running it changes nothing further.
	again := len(fn.Blocks)
	Optimize(fn)
	require.Equal(t, again, len(fn.Blocks))
}
