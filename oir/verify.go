package oir

import "occ/diag"

// Verify checks the structural invariants every pass (C3), the lowering
// layer (C4) and the back-end must preserve: every argument reference
// resolves to a live instruction, every predecessor/successor edge is
// mirrored on both ends, every phi has exactly one incoming edge per
// predecessor, and dominance holds for every def/use pair (spec.md §3's
// five invariants, §8's testable properties).
func Verify(fn *Func) error {
	for _, bref := range fn.Blocks() {
		b := fn.Block(bref)
		for _, succ := range b.Succs {
			if !hasBlockRef(fn.blocks[succ].Preds, bref) {
				return diag.New(diag.InvalidState, "block %d lists successor %d that does not list it as a predecessor", bref, succ).WithComponent("oir")
			}
		}
		for _, pred := range b.Preds {
			if !hasBlockRef(fn.blocks[pred].Succs, bref) {
				return diag.New(diag.InvalidState, "block %d lists predecessor %d that does not list it as a successor", bref, pred).WithComponent("oir")
			}
		}
		for _, pref := range b.Phis {
			p := fn.Phi(pref)
			if len(p.Incoming) != len(b.Preds) {
				return diag.New(diag.InvalidState, "phi %d in block %d has %d incoming edges, want %d (one per predecessor)", pref, bref, len(p.Incoming), len(b.Preds)).WithComponent("oir")
			}
			for _, pred := range b.Preds {
				if !phiHasPred(p, pred) {
					return diag.New(diag.InvalidState, "phi %d in block %d missing edge from predecessor %d", pref, bref, pred).WithComponent("oir")
				}
			}
		}
		for _, iref := range b.Instrs {
			in := fn.Instr(iref)
			if in.dead {
				return diag.New(diag.InvalidState, "dead instruction %d still present in block %d's control list", iref, bref).WithComponent("oir")
			}
			for _, arg := range in.Args {
				if arg == NoInstr || int(arg) >= len(fn.instrs) || fn.instrs[arg].dead {
					return diag.New(diag.InvalidState, "instruction %d references invalid argument %d", iref, arg).WithComponent("oir")
				}
			}
		}
	}
	return VerifyDom(fn)
}

func hasBlockRef(s []BlockRef, v BlockRef) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

func phiHasPred(p *Phi, pred BlockRef) bool {
	for _, e := range p.Incoming {
		if e.Pred == pred {
			return true
		}
	}
	return false
}
