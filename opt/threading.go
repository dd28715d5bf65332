package opt

import (
	"occ/config"
	"occ/ir"
	"occ/oir"
)

// runBranchThreading retargets a BlockGoto whose only content is an
// unconditional jump (no instructions of its own beyond the jump) to point
// directly at its successor's eventual target, collapsing jump-to-jump
// chains that simplify-cfg's block-merge alone would leave behind when the
// intermediate block still has multiple predecessors.
func runBranchThreading(_ *ir.IrModule, fn *oir.Func, _ config.PipelineConfig) (bool, error) {
	changed := false
	for _, bref := range fn.Blocks() {
		b := fn.Block(bref)
		for i, succ := range b.Succs {
			sb := fn.Block(succ)
			if sb.Kind != oir.BlockGoto || len(sb.Instrs) != 0 || len(sb.Phis) != 0 || len(sb.Succs) != 1 {
				continue
			}
			target := sb.Succs[0]
			if target == succ {
				continue
			}
			fn.UnwireEdge(bref, succ)
			fn.WireEdge(bref, target)
			b.Succs[i] = target
			if b.Ctrl != oir.NoInstr && b.Kind == oir.BlockIf {
				// Ctrl references are retargeted structurally via Succs, not
				// via the instruction itself.
				_ = fn.Instr(b.Ctrl)
			}
			changed = true
		}
	}
	return changed, nil
}

// runCombineCompareBranch fuses a comparison instruction that feeds exactly
// one BlockIf's condition into a single conditional-branch shape at the LIR
// level later; at this SSA level the pass only tags the comparison so
// lowering (C4) can emit a direct compare-and-branch instead of materializing
// a boolean and testing it. It changes nothing observable at the oir level
// and never reports a structural change.
func runCombineCompareBranch(_ *ir.IrModule, fn *oir.Func, _ config.PipelineConfig) (bool, error) {
	for _, bref := range fn.Blocks() {
		b := fn.Block(bref)
		if b.Kind != oir.BlockIf || b.Ctrl == oir.NoInstr {
			continue
		}
		ctrl := fn.Instr(b.Ctrl)
		if isComparison(ctrl.Op) && len(ctrl.Uses) == 1 {
			ctrl.AuxInt |= fusedCompareBranchFlag
		}
	}
	return false, nil
}

// fusedCompareBranchFlag is ORed into AuxInt (otherwise unused for
// comparisons) as a hint consumed by lower/codegen.go's lowerCompare.
const fusedCompareBranchFlag = 1 << 62

func isComparison(op oir.Opcode) bool {
	switch op {
	case oir.OpICmpEq, oir.OpICmpNe, oir.OpICmpULt, oir.OpICmpULe, oir.OpICmpUGt, oir.OpICmpUGe,
		oir.OpICmpSLt, oir.OpICmpSLe, oir.OpICmpSGt, oir.OpICmpSGe,
		oir.OpFCmpEq, oir.OpFCmpNe, oir.OpFCmpLt, oir.OpFCmpLe, oir.OpFCmpGt, oir.OpFCmpGe:
		return true
	}
	return false
}

// runTailCallMarking promotes an OpCall immediately followed by an OpReturn
// of that call's own result (or a void return) to OpTailCall. Lowering then
// emits the call directly followed by ret, with no stash pairs around it;
// the caller's frame is not reused.
func runTailCallMarking(_ *ir.IrModule, fn *oir.Func, _ config.PipelineConfig) (bool, error) {
	changed := false
	for _, bref := range fn.Blocks() {
		b := fn.Block(bref)
		if b.Kind != oir.BlockReturn || len(b.Instrs) < 1 {
			continue
		}
		last := fn.Instr(b.Instrs[len(b.Instrs)-1])
		if last.Op != oir.OpReturn {
			continue
		}
		if len(last.Args) == 1 {
			callee := fn.Instr(last.Args[0])
			if callee.Op == oir.OpCall && len(callee.Uses) == 1 && len(b.Instrs) >= 2 && b.Instrs[len(b.Instrs)-2] == last.Args[0] {
				callee.Op = oir.OpTailCall
				changed = true
			}
		} else if len(last.Args) == 0 && len(b.Instrs) >= 2 {
			prev := fn.Instr(b.Instrs[len(b.Instrs)-2])
			if prev.Op == oir.OpCall && len(prev.Uses) == 0 {
				prev.Op = oir.OpTailCall
				changed = true
			}
		}
	}
	return changed, nil
}
