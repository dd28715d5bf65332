package oir

import (
	"occ/diag"
	"occ/ir"
)

// AppendInstr creates an instruction and appends it to block's control list,
// returning its InstrRef. Callers pass Args already set, and AppendInstr
// adds the new instruction to each operand's use list immediately so every
// live instruction's Uses list stays accurate.
func (f *Func) AppendInstr(block BlockRef, in Instr) InstrRef {
	in.Block = block
	ref := InstrRef(len(f.instrs))
	f.instrs = append(f.instrs, in)
	for _, arg := range in.Args {
		f.instrs[arg].Uses = append(f.instrs[arg].Uses, ref)
	}
	f.blocks[block].Instrs = append(f.blocks[block].Instrs, ref)
	return ref
}

// InsertBefore inserts a new instruction into block's control list
// immediately before "before", without disturbing instructions already
// referencing later positions (the control list is a slice of InstrRefs, not
// addressed by position elsewhere).
func (f *Func) InsertBefore(block BlockRef, before InstrRef, in Instr) InstrRef {
	in.Block = block
	ref := InstrRef(len(f.instrs))
	f.instrs = append(f.instrs, in)
	for _, arg := range in.Args {
		f.instrs[arg].Uses = append(f.instrs[arg].Uses, ref)
	}
	list := f.blocks[block].Instrs
	idx := indexOfInstr(list, before)
	if idx < 0 {
		f.blocks[block].Instrs = append(list, ref)
		return ref
	}
	list = append(list, NoInstr)
	copy(list[idx+1:], list[idx:])
	list[idx] = ref
	f.blocks[block].Instrs = list
	return ref
}

func indexOfInstr(list []InstrRef, target InstrRef) int {
	for i, r := range list {
		if r == target {
			return i
		}
	}
	return -1
}

// DropInstr removes a dead instruction from its block's control list and
// clears it from its operands' use lists. The caller must have already
// verified the instruction has no remaining uses (spec.md's "drop from
// control list" precondition); DropInstr returns InvalidRequest otherwise.
func (f *Func) DropInstr(ref InstrRef) error {
	in := &f.instrs[ref]
	if len(in.Uses) > 0 {
		return diag.New(diag.InvalidRequest, "instruction %d still has %d use(s)", ref, len(in.Uses)).WithComponent("oir")
	}
	for _, arg := range in.Args {
		f.instrs[arg].Uses = removeInstrRef(f.instrs[arg].Uses, ref)
	}
	f.blocks[in.Block].Instrs = removeInstrRef(f.blocks[in.Block].Instrs, ref)
	in.dead = true
	in.Args = nil
	return nil
}

func removeInstrRef(s []InstrRef, v InstrRef) []InstrRef {
	for i, x := range s {
		if x == v {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}

// ReplaceUses rewrites every use of old to refer to repl instead, matching
// y1yang0-falcon's Value.ReplaceUses but operating over index-addressed
// instructions. Used by constant folding, simplify-phi and the inliner's
// return-value merge step.
func (f *Func) ReplaceUses(old, repl InstrRef) {
	oldInstr := &f.instrs[old]
	for _, useRef := range oldInstr.Uses {
		use := &f.instrs[useRef]
		for i, a := range use.Args {
			if a == old {
				use.Args[i] = repl
			}
		}
		f.instrs[repl].Uses = append(f.instrs[repl].Uses, useRef)
	}
	for _, phiRef := range f.allPhiRefsUsing(old) {
		p := &f.phis[phiRef]
		for i := range p.Incoming {
			if p.Incoming[i].Value == old {
				p.Incoming[i].Value = repl
			}
		}
	}
	oldInstr.Uses = nil
}

func (f *Func) allPhiRefsUsing(ref InstrRef) []PhiRef {
	var out []PhiRef
	for i, p := range f.phis {
		for _, e := range p.Incoming {
			if e.Value == ref {
				out = append(out, PhiRef(i))
				break
			}
		}
	}
	return out
}

// NewPhi allocates a phi node at the start of block's control list,
// mirroring y1yang0-falcon's convention of prepending OpPhi values so they
// always precede ordinary instructions.
func (f *Func) NewPhi(block BlockRef, typ ir.TypeRef) PhiRef {
	pref := PhiRef(len(f.phis))
	f.phis = append(f.phis, Phi{Block: block, Type: typ})
	ref := f.newInstrRaw(Instr{Op: OpPhi, Type: typ, Block: block, AuxPhi: pref})
	f.phis[pref].Self = ref
	f.blocks[block].Phis = append(f.blocks[block].Phis, pref)
	f.blocks[block].Instrs = append([]InstrRef{ref}, f.blocks[block].Instrs...)
	return pref
}

func (f *Func) newInstrRaw(in Instr) InstrRef {
	ref := InstrRef(len(f.instrs))
	f.instrs = append(f.instrs, in)
	return ref
}

// PhiAttach records that pred feeds value into phi's merge.
func (f *Func) PhiAttach(pref PhiRef, pred BlockRef, value InstrRef) {
	p := &f.phis[pref]
	p.Incoming = append(p.Incoming, PhiEdge{Pred: pred, Value: value})
	f.instrs[value].Uses = append(f.instrs[value].Uses, p.Self)
}

// NewCall allocates a call node and its owning instruction, returning the
// InstrRef (the value callers wire as an operand if the callee is
// non-void) and the CallRef (for call-set-argument / ABI annotation).
func (f *Func) NewCall(block BlockRef, typ ir.TypeRef, node CallNode) (InstrRef, CallRef) {
	cref := CallRef(len(f.calls))
	f.calls = append(f.calls, node)
	ref := f.AppendInstr(block, Instr{Op: OpCall, Type: typ, Args: append([]InstrRef(nil), node.Args...), AuxCall: cref})
	return ref, cref
}

// CallSetArgument appends an additional argument to an existing call node
// (used when vararg lowering splits a call's variadic tail into explicit
// per-argument marshalling instructions).
func (f *Func) CallSetArgument(cref CallRef, arg InstrRef) {
	c := &f.calls[cref]
	c.Args = append(c.Args, arg)
	for i := range f.instrs {
		if f.instrs[i].Op == OpCall && f.instrs[i].AuxCall == cref {
			f.instrs[i].Args = append(f.instrs[i].Args, arg)
			f.instrs[arg].Uses = append(f.instrs[arg].Uses, InstrRef(i))
			return
		}
	}
}

// RetagAsCall converts an already-existing instruction in place into an
// OpCall backed by a new CallNode, reusing its current Args as the call's
// argument list. Used by lowering (C4) when a wide-primitive opcode's
// replacement is itself a runtime-helper call rather than an inline
// expansion — the instruction's identity (and therefore its existing uses)
// is preserved, unlike allocating a brand new instruction would.
func (f *Func) RetagAsCall(ref InstrRef, calleeSymbol int) CallRef {
	in := &f.instrs[ref]
	cref := CallRef(len(f.calls))
	f.calls = append(f.calls, CallNode{Callee: calleeSymbol, Args: append([]InstrRef(nil), in.Args...)})
	in.Op = OpCall
	in.AuxCall = cref
	return cref
}

// NewAsm allocates an inline-asm node and its owning instruction.
func (f *Func) NewAsm(block BlockRef, typ ir.TypeRef, node AsmNode, inputs []InstrRef) InstrRef {
	aref := AsmRef(len(f.asms))
	f.asms = append(f.asms, node)
	return f.AppendInstr(block, Instr{Op: OpInlineAsm, Type: typ, Args: inputs, AuxAsm: aref})
}
