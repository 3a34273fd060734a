package ir

// Optimize applies §4.6's dead-block elimination: blocks unreachable from
// the function's entry (orphans left behind by unconditional branches, or by
// the synthetic then/else arms the builder allocates even when one side is
// never taken) are dropped, and the survivors are renumbered densely in
// reachable order so codegen's dispatch-table emission has no gaps.
func Optimize(fn *IrFunction) {
	reachable := reachableBlocks(fn)

	order := make([]BlockId, 0, len(reachable))
	byID := map[BlockId]*IrBlock{}
	for _, blk := range fn.Blocks {
		byID[blk.ID] = blk
	}
	seen := map[BlockId]bool{}
	var walk func(id BlockId)
	walk = func(id BlockId) {
		if seen[id] || !reachable[id] {
			return
		}
		seen[id] = true
		order = append(order, id)
		blk := byID[id]
		for _, succ := range successors(blk.Terminator) {
			walk(succ)
		}
	}
	walk(fn.EntryBlock)

	renumber := make(map[BlockId]BlockId, len(order))
	for i, id := range order {
		renumber[id] = BlockId(i)
	}

	kept := make([]*IrBlock, 0, len(order))
	for _, id := range order {
		blk := byID[id]
		blk.ID = renumber[id]
		blk.Terminator = remapTerminator(blk.Terminator, renumber)
		kept = append(kept, blk)
	}

	fn.Blocks = kept
	fn.EntryBlock = renumber[fn.EntryBlock]
}

func successors(t Terminator) []BlockId {
	switch term := t.(type) {
	case Jump:
		return []BlockId{term.Target}
	case BranchIf:
		return []BlockId{term.TrueTarget, term.FalseTarget}
	case BranchTable:
		ids := make([]BlockId, 0, len(term.Targets)+1)
		ids = append(ids, term.Targets...)
		ids = append(ids, term.DefaultTarget)
		return ids
	default: // Return, Unreachable: no successors.
		return nil
	}
}

func remapTerminator(t Terminator, renumber map[BlockId]BlockId) Terminator {
	switch term := t.(type) {
	case Jump:
		return Jump{Target: renumber[term.Target]}
	case BranchIf:
		return BranchIf{Condition: term.Condition, TrueTarget: renumber[term.TrueTarget], FalseTarget: renumber[term.FalseTarget]}
	case BranchTable:
		targets := make([]BlockId, len(term.Targets))
		for i, t := range term.Targets {
			targets[i] = renumber[t]
		}
		return BranchTable{Index: term.Index, Targets: targets, DefaultTarget: renumber[term.DefaultTarget]}
	default:
		return t
	}
}

func reachableBlocks(fn *IrFunction) map[BlockId]bool {
	byID := map[BlockId]*IrBlock{}
	for _, blk := range fn.Blocks {
		byID[blk.ID] = blk
	}
	reach := map[BlockId]bool{}
	var walk func(id BlockId)
	walk = func(id BlockId) {
		if reach[id] {
			return
		}
		reach[id] = true
		blk := byID[id]
		if blk == nil || blk.Terminator == nil {
			return
		}
		for _, succ := range successors(blk.Terminator) {
			walk(succ)
		}
	}
	walk(fn.EntryBlock)
	return reach
}
