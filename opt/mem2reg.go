package opt

import (
	"occ/config"
	"occ/ir"
	"occ/oir"
)

// runMemToReg replaces a load from an OpAlloc slot with the value most
// recently stored to that slot earlier in the same block, when no call
// intervenes (a call may alias the slot through a taken address, so it
// conservatively blocks the forward substitution) and the slot's address is
// never taken anywhere in the function. This is the single-block special
// case of the standard mem2reg transform; loads with no earlier store in
// their own block, and alloc slots whose address escapes, are left for the
// back-end's spill/reload machinery, matching spec.md's note that "simpler
// C-isms" may be handled at reduced generality.
func runMemToReg(_ *ir.IrModule, fn *oir.Func, _ config.PipelineConfig) (bool, error) {
	changed := false
	addrTaken := map[oir.InstrRef]bool{}
	for _, bref := range fn.Blocks() {
		for _, iref := range fn.Block(bref).Instrs {
			if in := fn.Instr(iref); in.Op == oir.OpAddrOf && len(in.Args) == 1 {
				addrTaken[in.Args[0]] = true
			}
		}
	}
	for _, bref := range fn.Blocks() {
		b := fn.Block(bref)
		lastStore := map[oir.InstrRef]oir.InstrRef{}
		escaped := map[oir.InstrRef]bool{}
		for _, iref := range append([]oir.InstrRef(nil), b.Instrs...) {
			in := fn.Instr(iref)
			switch in.Op {
			case oir.OpAddrOf:
				if len(in.Args) == 1 {
					escaped[in.Args[0]] = true
				}
			case oir.OpCall, oir.OpTailCall:
				for slot := range lastStore {
					escaped[slot] = true
				}
			case oir.OpStore:
				if len(in.Args) == 2 {
					if alloc := fn.Instr(in.Args[0]); alloc.Op == oir.OpAlloc {
						lastStore[in.Args[0]] = in.Args[1]
					}
				}
			case oir.OpLoad:
				if len(in.Args) == 1 {
					slot := in.Args[0]
					if alloc := fn.Instr(slot); alloc.Op == oir.OpAlloc && !escaped[slot] && !addrTaken[slot] {
						if val, ok := lastStore[slot]; ok {
							fn.ReplaceUses(iref, val)
							if err := fn.DropInstr(iref); err == nil {
								changed = true
							}
						}
					}
				}
			}
		}
	}
	return changed, nil
}
