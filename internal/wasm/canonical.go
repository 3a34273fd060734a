package wasm

// CanonicalTypeIndices computes, for each declared signature index i, the
// smallest j <= i such that types[j] and types[i] are structurally equal
// (§4.3). This is the table call_indirect type-checks against, so that
// structurally equal but index-distinct signatures compare equal as the
// WebAssembly spec requires (spec §4.4.9).
func CanonicalTypeIndices(types []TypeSignature) []uint32 {
	canonical := make([]uint32, len(types))
	for i := range types {
		canonical[i] = uint32(i)
		for j := 0; j < i; j++ {
			if types[j].Equal(types[i]) {
				canonical[i] = uint32(j)
				break
			}
		}
	}
	return canonical
}

// Canonical is a memoized view over a Module's canonical type table,
// computed once per Transpile call and shared read-only with the IR builder
// and code generator.
type Canonical struct {
	table []uint32
}

// NewCanonical computes the canonical type table for m.Types.
func NewCanonical(types []TypeSignature) *Canonical {
	return &Canonical{table: CanonicalTypeIndices(types)}
}

// Of returns the canonical index for declared type index i.
func (c *Canonical) Of(i uint32) uint32 { return c.table[i] }

// Equal reports whether two declared type indices are canonically
// equivalent.
func (c *Canonical) Equal(a, b uint32) bool { return c.table[a] == c.table[b] }
