package rt

// FuncRef is one entry of a dispatch table: the canonical type index of the
// referenced function's signature, and the local function index the
// generator should dispatch to.
type FuncRef struct {
	CanonicalTypeIndex uint32
	LocalFunctionIndex uint32
}

// Table is the indirect-call dispatch table container, bounded by a
// construction-time maximum size (see the comment on Memory for why this is
// a runtime field rather than a type parameter: Go has no const generics).
type Table struct {
	entries    []*FuncRef
	activeSize uint32
	maxSize    uint32
}

// NewTable constructs a Table with initialSize live (empty) slots, bounded
// by maxSize.
func NewTable(initialSize, maxSize uint32) *Table {
	return &Table{
		entries:    make([]*FuncRef, maxSize),
		activeSize: initialSize,
		maxSize:    maxSize,
	}
}

// Get returns the entry at index, or TrapTableOutOfBounds /
// TrapUndefinedElement.
func (t *Table) Get(index uint32) (FuncRef, Trap) {
	e, trap := tableGet(t.entries, t.activeSize, index)
	if trap != 0 {
		return FuncRef{}, trap
	}
	return *e, 0
}

// Set installs entry at index, which may be nil to clear the slot.
func (t *Table) Set(index uint32, entry *FuncRef) Trap {
	return tableSet(t.entries, t.activeSize, index, entry)
}

// Grow adds delta slots initialized to init, returning the previous size, or
// -1 (no state change) if that would exceed maxSize.
func (t *Table) Grow(delta uint32, init *FuncRef) int32 {
	prev, ok := tableGrow(&t.entries, &t.activeSize, delta, t.maxSize, init)
	if !ok {
		return -1
	}
	return int32(prev)
}

func tableGet(entries []*FuncRef, activeSize, index uint32) (*FuncRef, Trap) {
	if index >= activeSize {
		return nil, TrapTableOutOfBounds
	}
	e := entries[index]
	if e == nil {
		return nil, TrapUndefinedElement
	}
	return e, 0
}

func tableSet(entries []*FuncRef, activeSize, index uint32, entry *FuncRef) Trap {
	if index >= activeSize {
		return TrapTableOutOfBounds
	}
	entries[index] = entry
	return 0
}

func tableGrow(entries *[]*FuncRef, activeSize *uint32, delta, max uint32, init *FuncRef) (prev uint32, ok bool) {
	prev = *activeSize
	if delta == 0 {
		return prev, true
	}
	next := prev + delta
	if next < prev || next > max {
		return 0, false
	}
	for i := prev; i < next; i++ {
		(*entries)[i] = init
	}
	*activeSize = next
	return prev, true
}
