package opt

import (
	"occ/config"
	"occ/ir"
	"occ/oir"
)

// runConstantFold replaces an arithmetic instruction whose operands are all
// OpConstInt with a single OpConstInt carrying the folded value. Grounded on
// y1yang0-falcon's peephole-style Ideal() loop, extended to actually fold
// values (y1yang0-falcon's pass only simplified phis/CFG, never folded
// arithmetic) since spec.md lists constant folding among the pipeline's
// passes.
func runConstantFold(_ *ir.IrModule, fn *oir.Func, _ config.PipelineConfig) (bool, error) {
	changed := false
	for _, bref := range fn.Blocks() {
		b := fn.Block(bref)
		for _, iref := range append([]oir.InstrRef(nil), b.Instrs...) {
			in := fn.Instr(iref)
			folded, ok := foldConst(fn, in)
			if !ok {
				continue
			}
			newRef := fn.InsertBefore(bref, iref, oir.Instr{Op: oir.OpConstInt, Type: in.Type, AuxInt: folded})
			fn.ReplaceUses(iref, newRef)
			if err := fn.DropInstr(iref); err == nil {
				changed = true
			}
		}
	}
	return changed, nil
}

func foldConst(fn *oir.Func, in *oir.Instr) (int64, bool) {
	if len(in.Args) != 2 {
		return 0, false
	}
	a := fn.Instr(in.Args[0])
	b := fn.Instr(in.Args[1])
	if a.Op != oir.OpConstInt || b.Op != oir.OpConstInt {
		return 0, false
	}
	x, y := a.AuxInt, b.AuxInt
	switch in.Op {
	case oir.OpAdd:
		return x + y, true
	case oir.OpSub:
		return x - y, true
	case oir.OpMul:
		return x * y, true
	case oir.OpAnd:
		return x & y, true
	case oir.OpOr:
		return x | y, true
	case oir.OpXor:
		return x ^ y, true
	case oir.OpShl:
		return x << uint(y), true
	case oir.OpSDiv:
		if y == 0 {
			return 0, false
		}
		return x / y, true
	case oir.OpICmpEq:
		return boolInt(x == y), true
	case oir.OpICmpNe:
		return boolInt(x != y), true
	case oir.OpICmpSLt:
		return boolInt(x < y), true
	case oir.OpICmpSLe:
		return boolInt(x <= y), true
	case oir.OpICmpSGt:
		return boolInt(x > y), true
	case oir.OpICmpSGe:
		return boolInt(x >= y), true
	}
	return 0, false
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
