// Package driver implements §5 and §6: the single entry point that parses a
// WebAssembly binary, builds per-function IR (in parallel once a module
// clears the twenty-function threshold), and emits the generated Go source.
package driver

import (
	"fmt"

	"github.com/wasmforge/wasmforge/internal/cache"
)

// Mode mirrors §6's --mode flag. Only ModeSafe currently changes behavior;
// the others are accepted and recorded for forward compatibility.
type Mode string

const (
	ModeSafe     Mode = "safe"
	ModeHybrid   Mode = "hybrid"
	ModeVerified Mode = "verified"
)

// Options controls one Transpile call, following the teacher's
// clone-and-chain config pattern (wazero.RuntimeConfig) rather than a
// one-shot functional-options constructor, so a caller can derive variant
// configs from a shared base without the base being mutated out from under
// it.
type Options struct {
	mode        Mode
	maxPages    uint32
	hasMaxPages bool
	packageName string
	cache       *cache.Cache
}

var defaultOptions = &Options{mode: ModeSafe, packageName: "wasmforgeout"}

// NewOptions returns the default Options: safe mode, no max-pages override,
// package name "wasmforgeout", no result cache.
func NewOptions() *Options {
	return defaultOptions.clone()
}

func (o *Options) clone() *Options {
	ret := *o
	return &ret
}

// WithMode sets --mode.
func (o *Options) WithMode(m Mode) *Options {
	ret := o.clone()
	ret.mode = m
	return ret
}

// WithMaxPages sets --max-pages: the memory page maximum the generated
// constructor enforces when the module itself declares no maximum.
func (o *Options) WithMaxPages(pages uint32) *Options {
	ret := o.clone()
	ret.maxPages = pages
	ret.hasMaxPages = true
	return ret
}

// WithPackageName sets the package clause of the generated source.
func (o *Options) WithPackageName(name string) *Options {
	ret := o.clone()
	ret.packageName = name
	return ret
}

// WithCache attaches a result cache. A nil cache (the default) disables
// caching entirely.
func (o *Options) WithCache(c *cache.Cache) *Options {
	ret := o.clone()
	ret.cache = c
	return ret
}

// optionHash fingerprints every field that affects emitted output, so two
// Transpile calls over identical bytes under different Options never collide
// in the cache (internal/cache.Key combines this with the input hash).
func (o *Options) optionHash() uint64 {
	return cache.HashBytes([]byte(fmt.Sprintf("%s|%d|%t|%s", o.mode, o.maxPages, o.hasMaxPages, o.packageName)))
}
