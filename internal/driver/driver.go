package driver

import (
	"context"
	"runtime"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/wasmforge/wasmforge/internal/cache"
	"github.com/wasmforge/wasmforge/internal/codegen"
	"github.com/wasmforge/wasmforge/internal/diag"
	"github.com/wasmforge/wasmforge/internal/ir"
	"github.com/wasmforge/wasmforge/internal/logging"
	"github.com/wasmforge/wasmforge/internal/wasm"
	"github.com/wasmforge/wasmforge/internal/wasm/binary"
)

// parallelThreshold is §5's fork/join activation heuristic: below twenty
// functions the thread-pool overhead outweighs the benefit.
const parallelThreshold = 20

// Result is one Transpile call's output.
type Result struct {
	Source []byte
	// Hash is the determinism self-check of §8: xxhash of Source, stable
	// across repeated runs over identical input and Options.
	Hash uint64
}

// Transpile runs the full pipeline: parse, build IR per function, generate
// Go source (§2's three-stage pipeline). The first failure at any stage
// aborts with no output, per §5's cancellation policy.
func Transpile(input []byte, opts *Options) (*Result, error) {
	if opts == nil {
		opts = NewOptions()
	}
	log := logging.ForModule(opts.packageName)

	var key cache.Key
	if opts.cache != nil {
		key = cache.KeyFor(input, opts.optionHash())
		if entry, ok := opts.cache.Get(key); ok {
			logging.ForStage(log, logging.StageDriver).Debug("cache hit")
			return &Result{Source: entry.Source, Hash: entry.Hash}, nil
		}
	}

	parseLog := logging.ForStage(log, logging.StageParse)
	parseLog.Info("parsing module")
	module, err := binary.Parse(input)
	if err != nil {
		return nil, diag.Wrap(err, "parsing module")
	}

	if opts.hasMaxPages && module.Memory != nil && module.Memory.MaxPages == nil {
		// Apply the override to a copy so the parsed Module stays unmodified.
		max := opts.maxPages
		mem := *module.Memory
		mem.MaxPages = &max
		overridden := *module
		overridden.Memory = &mem
		module = &overridden
	}

	canon := wasm.NewCanonical(module.Types)

	irLog := logging.ForStage(log, logging.StageIR)
	fns, err := buildFunctions(module, canon, irLog)
	if err != nil {
		return nil, err
	}

	codegenLog := logging.ForStage(log, logging.StageCodegen)
	codegenLog.WithField("functions", len(fns)).Info("generating source")
	source, err := codegen.Generate(module, canon, fns, opts.packageName, codegenLog)
	if err != nil {
		return nil, diag.Wrap(err, "generating source")
	}
	codegenLog.WithField("bytes", len(source)).Info("generated source")

	result := &Result{Source: source, Hash: cache.HashBytes(source)}
	if opts.cache != nil {
		entry := opts.cache.Put(key, source)
		result.Hash = entry.Hash
	}
	return result, nil
}

// buildFunctions runs ir.Build over every local function, sequentially below
// parallelThreshold and via a bounded errgroup above it. Each goroutine owns
// a disjoint slot of out by local function index, so results land in a
// stable order regardless of completion order or goroutine scheduling (§5
// "joining results into an ordered container indexed by function number") —
// no lock, no unordered map, is ever in the loop.
func buildFunctions(module *wasm.Module, canon *wasm.Canonical, log *logrus.Entry) ([]*ir.IrFunction, error) {
	imported := module.ImportedFuncCount()
	count := len(module.Funcs) - int(imported)
	if count <= 0 {
		return nil, nil
	}

	out := make([]*ir.IrFunction, count)
	build := func(i int) error {
		idx := imported + uint32(i)
		fn, err := ir.Build(module, canon, idx)
		if err != nil {
			return diag.Wrapf(err, "building function %d", idx)
		}
		log.WithField("function", idx).Debug("built function")
		out[i] = fn
		return nil
	}

	if count < parallelThreshold {
		for i := 0; i < count; i++ {
			if err := build(i); err != nil {
				return nil, err
			}
		}
		log.WithField("functions", count).Debug("built IR sequentially")
		return out, nil
	}

	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < count; i++ {
		i := i
		g.Go(func() error { return build(i) })
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	log.WithField("functions", count).Debug("built IR in parallel")
	return out, nil
}
