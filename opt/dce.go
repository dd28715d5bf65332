package opt

import (
	"occ/config"
	"occ/ir"
	"occ/oir"
)

// isPinned mirrors y1yang0-falcon's conservative pinning rule: without memory
// SSA we cannot prove a load/store/call is dead even with no uses, so these
// opcodes are never eliminated by this pass.
func isPinned(op oir.Opcode) bool {
	switch op {
	case oir.OpLoad, oir.OpStore, oir.OpCall, oir.OpTailCall, oir.OpInlineAsm,
		oir.OpVaStart, oir.OpVaArg, oir.OpVaEnd, oir.OpVaCopy:
		return true
	}
	return op.IsTerminator()
}

func runDCE(_ *ir.IrModule, fn *oir.Func, _ config.PipelineConfig) (bool, error) {
	changed := false

	tracer := oir.NewTracer(fn)
	reachable := tracer.ReachableBlocks()

	for _, bref := range fn.Blocks() {
		if !reachable[bref] {
			continue
		}
		b := fn.Block(bref)
		for i := len(b.Instrs) - 1; i >= 0; i-- {
			iref := b.Instrs[i]
			in := fn.Instr(iref)
			if len(in.Uses) == 0 && !isPinned(in.Op) {
				if err := fn.DropInstr(iref); err == nil {
					changed = true
				}
			}
		}
	}

	// Unreachable blocks are skipped and left in place (simplify-cfg marks
	// only blocks it merges as dead); DCE only cleans up instructions within
	// still-reachable blocks.
	return changed, nil
}
