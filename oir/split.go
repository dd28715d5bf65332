package oir

// SplitBlockAfter splits block's control list after its first idx
// instructions (idx counts positions in the *live* control list): block
// keeps those idx instructions and every later one moves into a new block. The new block inherits
// block's terminator, successors and Ctrl; block itself falls through to the
// new block via an unconditional edge. Any phi in a successor that
// referenced block as a predecessor is retargeted to the new tail block.
//
// This is the structural primitive the inliner uses to carve a call site's
// block into a "before the call" prefix and an "after the call" suffix that
// the callee's cloned blocks are spliced between (spec.md §4.3 step 3).
func (f *Func) SplitBlockAfter(block BlockRef, idx int) BlockRef {
	tail := f.NewBlock(f.blocks[block].Kind)
	b := &f.blocks[block] // taken after NewBlock, which may reallocate f.blocks
	t := &f.blocks[tail]

	if idx < 0 {
		idx = 0
	}
	if idx > len(b.Instrs) {
		idx = len(b.Instrs)
	}
	moved := append([]InstrRef(nil), b.Instrs[idx:]...)
	b.Instrs = b.Instrs[:idx]

	for _, iref := range moved {
		f.instrs[iref].Block = tail
	}
	t.Instrs = moved
	t.Cases = b.Cases
	t.Ctrl = b.Ctrl
	t.Succs = b.Succs
	b.Cases = nil
	b.Ctrl = NoInstr

	for _, succ := range t.Succs {
		sp := &f.blocks[succ]
		for i, p := range sp.Preds {
			if p == block {
				sp.Preds[i] = tail
			}
		}
		for _, pref := range sp.Phis {
			p := &f.phis[pref]
			for i := range p.Incoming {
				if p.Incoming[i].Pred == block {
					p.Incoming[i].Pred = tail
				}
			}
		}
	}

	b.Kind = BlockGoto
	b.Succs = []BlockRef{tail}
	t.Preds = append(t.Preds, block)
	return tail
}
