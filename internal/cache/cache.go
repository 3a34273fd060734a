// Package cache memoizes transpile results by content hash, generalizing
// the teacher's own wazero.CompilationCache (a cache of
// compiled-for-execution modules) to a cache of compiled-to-source modules
// (see SPEC_FULL.md §12). Only the generated source and its hash are stored;
// the canonical type table is not cached.
package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/cespare/xxhash/v2"
)

// Key identifies one cache entry: the content hash of the input module bytes
// combined with the resolved options that affect emission (mode, max-pages
// override), since the same bytes under different options produce different
// output.
type Key struct {
	ModuleHash uint64
	OptionHash uint64
}

// Entry is one cached transpile result.
type Entry struct {
	Source []byte
	Hash   uint64 // xxhash of Source, the determinism self-check of §8.
}

// Cache is a bounded LRU of Key to Entry.
type Cache struct {
	lru *lru.Cache[Key, Entry]
}

// New constructs a Cache holding at most capacity entries.
func New(capacity int) *Cache {
	c, err := lru.New[Key, Entry](capacity)
	if err != nil {
		// Only returns an error for a non-positive capacity; callers pass a
		// static positive constant, so this is unreachable in practice.
		panic(err)
	}
	return &Cache{lru: c}
}

// Get returns the cached entry for key, if any.
func (c *Cache) Get(key Key) (Entry, bool) {
	return c.lru.Get(key)
}

// Put stores source under key, stamping its determinism hash.
func (c *Cache) Put(key Key, source []byte) Entry {
	e := Entry{Source: source, Hash: HashBytes(source)}
	c.lru.Add(key, e)
	return e
}

// HashBytes is the non-cryptographic content hash used both as the cache key
// component and as the determinism self-check: running the pipeline twice on
// identical input must produce an identical hash (§8).
func HashBytes(b []byte) uint64 {
	return xxhash.Sum64(b)
}

// KeyFor builds a Key from module bytes and an option fingerprint (itself
// typically HashBytes over an encoded options struct).
func KeyFor(moduleBytes []byte, optionHash uint64) Key {
	return Key{ModuleHash: HashBytes(moduleBytes), OptionHash: optionHash}
}
