package opt

import (
	"occ/config"
	"occ/ir"
	"occ/oir"
)

// runSimplifyPhi replaces a phi with a single distinct incoming value by
// that value directly, mirroring y1yang0-falcon's simplifyPhi: phi(v) -> v,
// phi(v,v,...,v) -> v, and phi(v, self, self, ...) -> v (a phi that only
// ever refers to itself and one other value collapses to that value).
func runSimplifyPhi(_ *ir.IrModule, fn *oir.Func, _ config.PipelineConfig) (bool, error) {
	changed := false
	for _, bref := range fn.Blocks() {
		b := fn.Block(bref)
		for _, pref := range append([]int(nil), intRange(len(b.Phis))...) {
			p := fn.Phi(b.Phis[pref])
			if len(p.Incoming) == 0 {
				continue
			}
			var distinct oir.InstrRef
			found := false
			uniform := true
			for _, edge := range p.Incoming {
				if edge.Value == p.Self {
					continue
				}
				if !found {
					distinct = edge.Value
					found = true
					continue
				}
				if edge.Value != distinct {
					uniform = false
					break
				}
			}
			if found && uniform {
				fn.ReplaceUses(p.Self, distinct)
				if err := fn.DropInstr(p.Self); err == nil {
					changed = true
				}
			}
		}
	}
	return changed, nil
}

func intRange(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// runSimplifyCFG collapses a BlockIf with a constant-boolean condition into
// an unconditional jump, and merges a goto-only block with a single
// predecessor/successor into its predecessor, mirroring y1yang0-falcon's
// simplifyCFG.
func runSimplifyCFG(_ *ir.IrModule, fn *oir.Func, _ config.PipelineConfig) (bool, error) {
	changed := false

	for _, bref := range fn.Blocks() {
		b := fn.Block(bref)
		if b.Kind != oir.BlockIf || b.Ctrl == oir.NoInstr {
			continue
		}
		ctrl := fn.Instr(b.Ctrl)
		taken, ok := constBoolTaken(ctrl)
		if !ok {
			continue
		}
		keep := b.Succs[taken]
		drop := b.Succs[1-taken]
		fn.UnwireEdge(bref, drop)
		dropPhiEdges(fn, drop, bref)
		b.Kind = oir.BlockGoto
		b.Succs = []oir.BlockRef{keep}
		b.Ctrl = oir.NoInstr
		changed = true
	}

	for _, bref := range fn.Blocks() {
		b := fn.Block(bref)
		if b.Kind != oir.BlockGoto || len(b.Succs) != 1 || len(b.Phis) != 0 {
			continue
		}
		succ := b.Succs[0]
		sb := fn.Block(succ)
		if succ == bref || len(sb.Preds) != 1 || len(sb.Phis) != 0 {
			continue
		}
		mergeBlocks(fn, bref, succ)
		changed = true
	}

	return changed, nil
}

func constBoolTaken(ctrl *oir.Instr) (int, bool) {
	if ctrl.Op != oir.OpConstInt {
		return 0, false
	}
	if ctrl.AuxInt != 0 {
		return 0, true
	}
	return 1, true
}

func dropPhiEdges(fn *oir.Func, block, removedPred oir.BlockRef) {
	b := fn.Block(block)
	for _, pref := range b.Phis {
		p := fn.Phi(pref)
		for i, e := range p.Incoming {
			if e.Pred == removedPred {
				p.Incoming = append(p.Incoming[:i], p.Incoming[i+1:]...)
				break
			}
		}
	}
}

func mergeBlocks(fn *oir.Func, pred, succ oir.BlockRef) {
	pb := fn.Block(pred)
	sb := fn.Block(succ)
	fn.UnwireEdge(pred, succ)
	pb.Instrs = append(pb.Instrs, sb.Instrs...)
	for _, iref := range sb.Instrs {
		fn.Instr(iref).Block = pred
	}
	pb.Kind = sb.Kind
	pb.Ctrl = sb.Ctrl
	pb.Cases = sb.Cases
	pb.Succs = sb.Succs
	for _, s := range sb.Succs {
		ss := fn.Block(s)
		for i, p := range ss.Preds {
			if p == succ {
				ss.Preds[i] = pred
			}
		}
		for _, pr := range ss.Phis {
			phi := fn.Phi(pr)
			for i := range phi.Incoming {
				if phi.Incoming[i].Pred == succ {
					phi.Incoming[i].Pred = pred
				}
			}
		}
	}
	fn.MarkBlockDead(succ)
}
