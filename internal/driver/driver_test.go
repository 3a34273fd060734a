package driver

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wasmforge/wasmforge/internal/logging"
	"github.com/wasmforge/wasmforge/internal/wasm"
	"github.com/wasmforge/wasmforge/internal/wasm/binary"
)

// uleb128 is a minimal unsigned-LEB128 encoder for hand-assembling test
// module bytes; internal/wasm/leb128 only decodes, since nothing in the
// transpiler itself ever emits the WebAssembly binary format.
func uleb128(v uint32) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if v == 0 {
			break
		}
	}
	return out
}

// moduleWithFunctions assembles a valid WebAssembly binary declaring n local
// functions, all of type () -> i32, each body just `i32.const (i%64); end`.
// Used to drive Transpile/buildFunctions across both the sequential and the
// errgroup-parallel code path by varying n relative to parallelThreshold.
func moduleWithFunctions(n int) []byte {
	var b []byte
	b = append(b, 0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00) // \0asm, version 1

	typeContent := []byte{0x01, 0x60, 0x00, 0x01, 0x7F} // 1 type: () -> i32
	b = append(b, 0x01)
	b = append(b, uleb128(uint32(len(typeContent)))...)
	b = append(b, typeContent...)

	funcContent := uleb128(uint32(n))
	for i := 0; i < n; i++ {
		funcContent = append(funcContent, 0x00) // type index 0
	}
	b = append(b, 0x03)
	b = append(b, uleb128(uint32(len(funcContent)))...)
	b = append(b, funcContent...)

	codeContent := uleb128(uint32(n))
	for i := 0; i < n; i++ {
		body := []byte{0x00, 0x41, byte(i % 64), 0x0B} // no locals; i32.const i%64; end
		codeContent = append(codeContent, uleb128(uint32(len(body)))...)
		codeContent = append(codeContent, body...)
	}
	b = append(b, 0x0A)
	b = append(b, uleb128(uint32(len(codeContent)))...)
	b = append(b, codeContent...)

	return b
}

func parseForTest(t *testing.T, data []byte) (*wasm.Module, *wasm.Canonical) {
	t.Helper()
	m, err := binary.Parse(data)
	require.NoError(t, err)
	return m, wasm.NewCanonical(m.Types)
}

// buildFunctions writes every result to a slot fixed by function index
// before any goroutine races to completion (§5), so the ordering invariant
// must hold identically whether the sequential or the errgroup path ran.
func testBuildFunctionsOrdering(t *testing.T, n int) {
	t.Helper()
	module, canon := parseForTest(t, moduleWithFunctions(n))
	log := logging.New("ordering-test", logging.StageIR)

	for run := 0; run < 5; run++ {
		out, err := buildFunctions(module, canon, log)
		require.NoError(t, err)
		require.Len(t, out, n)
		for i, fn := range out {
			require.Equal(t, uint32(i), fn.Index, "run %d: slot %d holds the wrong function", run, i)
		}
	}
}

func TestBuildFunctionsOrderingSequential(t *testing.T) {
	require.Less(t, 5, parallelThreshold)
	testBuildFunctionsOrdering(t, 5)
}

func TestBuildFunctionsOrderingParallel(t *testing.T) {
	require.GreaterOrEqual(t, 25, parallelThreshold)
	testBuildFunctionsOrdering(t, 25)
}

// TestTranspileDeterministicAcrossRepeatedRuns exercises §8's "running the
// core transpile path on the same input and options twice, in any order and
// on any number of threads, must produce byte-identical output" directly
// against the fork/join path: 25 functions clears parallelThreshold, so every
// one of these repeated calls runs buildFunctions through the bounded
// errgroup, not the sequential loop.
func TestTranspileDeterministicAcrossRepeatedRuns(t *testing.T) {
	input := moduleWithFunctions(25)

	first, err := Transpile(input, NewOptions())
	require.NoError(t, err)
	require.NotEmpty(t, first.Source)

	for i := 0; i < 5; i++ {
		result, err := Transpile(input, NewOptions())
		require.NoError(t, err)
		require.Equal(t, first.Hash, result.Hash, "run %d produced a different hash", i)
		require.Equal(t, first.Source, result.Source, "run %d produced different source", i)
	}
}

// Same property below parallelThreshold, where buildFunctions takes the
// sequential loop instead.
func TestTranspileDeterministicSequentialPath(t *testing.T) {
	input := moduleWithFunctions(5)

	first, err := Transpile(input, NewOptions())
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		result, err := Transpile(input, NewOptions())
		require.NoError(t, err)
		require.Equal(t, first.Hash, result.Hash)
		require.Equal(t, first.Source, result.Source)
	}
}

// A module declaring no memory maximum falls back to codegen's configured
// default (internal/codegen/module.go) without being rejected — this is the
// currently-undecided Open Question (spec §9) resolved as "accept and log a
// Warn", not "reject at parse time".
func TestTranspileAcceptsModuleWithNoMemoryMaximum(t *testing.T) {
	// Memory section: one memory, limits flag 0 (no maximum), 1 initial
	// page. Appended after the code section; the parser does not check
	// section order.
	input := append(moduleWithFunctions(1), 0x05, 0x03, 0x01, 0x00, 0x01)
	result, err := Transpile(input, NewOptions())
	require.NoError(t, err)
	require.NotEmpty(t, result.Source)
}
