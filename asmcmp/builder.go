package asmcmp

import "occ/abi"

// NewVReg allocates a fresh virtual register.
func (p *Program) NewVReg(kind VRegKind, bank abi.Bank, width int) VReg {
	p.nextVReg++
	return VReg{ID: p.nextVReg, Kind: kind, Bank: bank, Width: width}
}

// NewLabel allocates a fresh jump-target label, not yet placed.
func (p *Program) NewLabel() Label {
	p.nextLbl++
	return Label{ID: p.nextLbl}
}

// NewStash reserves a save area for reg across the instruction range
// [saveBefore, restoreAt), returning its StashRef.
func (p *Program) NewStash(reg VReg, saveBefore, restoreAt InstrRef) StashRef {
	id := StashRef(len(p.stashes))
	p.stashes = append(p.stashes, Stash{Reg: reg, SaveBefore: saveBefore, RestoreAt: restoreAt})
	return id
}

func (p *Program) GetStash(ref StashRef) *Stash { return &p.stashes[ref] }

// append links a new instruction onto the tail of the program.
func (p *Program) append(in Instr) InstrRef {
	ref := InstrRef(len(p.instrs))
	in.Prev = p.tail
	in.Next = NoInstr
	p.instrs = append(p.instrs, in)
	if p.tail != NoInstr {
		p.instrs[p.tail].Next = ref
	} else {
		p.head = ref
	}
	p.tail = ref
	return ref
}

// InsertBefore splices a new instruction immediately before at, returning
// its ref. Used by devirtualization to realize a stash's save/restore pair
// or acquire a temporary register around a single use (spec.md §5/§7).
func (p *Program) InsertBefore(at InstrRef, in Instr) InstrRef {
	ref := InstrRef(len(p.instrs))
	prev := p.instrs[at].Prev
	in.Prev = prev
	in.Next = at
	p.instrs = append(p.instrs, in)
	if prev != NoInstr {
		p.instrs[prev].Next = ref
	} else {
		p.head = ref
	}
	p.instrs[at].Prev = ref
	return ref
}

// InsertAfter splices a new instruction immediately after at.
func (p *Program) InsertAfter(at InstrRef, in Instr) InstrRef {
	ref := InstrRef(len(p.instrs))
	next := p.instrs[at].Next
	in.Prev = at
	in.Next = next
	p.instrs = append(p.instrs, in)
	if next != NoInstr {
		p.instrs[next].Prev = ref
	} else {
		p.tail = ref
	}
	p.instrs[at].Next = ref
	return ref
}

// Remove unlinks an instruction from the list without reclaiming its pool
// slot (other InstrRefs may still reference it for diagnostics).
func (p *Program) Remove(ref InstrRef) {
	in := &p.instrs[ref]
	if in.Prev != NoInstr {
		p.instrs[in.Prev].Next = in.Next
	} else {
		p.head = in.Next
	}
	if in.Next != NoInstr {
		p.instrs[in.Next].Prev = in.Prev
	} else {
		p.tail = in.Prev
	}
	in.dead = true
}

// Each walks the program in list order, Prev/Next pointers rather than pool
// index, so instructions spliced in mid-walk (by devirtualization) are
// naturally visited too.
func (p *Program) Each(visit func(InstrRef, *Instr)) {
	for r := p.head; r != NoInstr; r = p.instrs[r].Next {
		visit(r, &p.instrs[r])
	}
}

func vreg(r VReg) Arg  { return ArgVReg{Reg: r} }
func imm(v int64) Arg  { return ArgImm{Value: v} }

func (p *Program) bin(op AsmOp, dst, src Arg) InstrRef {
	return p.append(Instr{Op: op, Dst: dst, Src: src})
}

func (p *Program) AsmMov(dst, src Arg) InstrRef   { return p.bin(OpMov, dst, src) }
func (p *Program) AsmMovF(dst, src Arg) InstrRef  { return p.bin(OpMovF, dst, src) }
func (p *Program) AsmLea(dst, src Arg) InstrRef   { return p.bin(OpLea, dst, src) }
func (p *Program) AsmAdd(dst, src Arg) InstrRef   { return p.bin(OpAdd, dst, src) }
func (p *Program) AsmSub(dst, src Arg) InstrRef   { return p.bin(OpSub, dst, src) }
func (p *Program) AsmIMul(dst, src Arg) InstrRef  { return p.bin(OpIMul, dst, src) }
func (p *Program) AsmIDiv(dst, src Arg) InstrRef  { return p.bin(OpIDiv, dst, src) }
func (p *Program) AsmUDiv(dst, src Arg) InstrRef  { return p.bin(OpUDiv, dst, src) }
func (p *Program) AsmAnd(dst, src Arg) InstrRef   { return p.bin(OpAnd, dst, src) }
func (p *Program) AsmOr(dst, src Arg) InstrRef    { return p.bin(OpOr, dst, src) }
func (p *Program) AsmXor(dst, src Arg) InstrRef   { return p.bin(OpXor, dst, src) }
func (p *Program) AsmNot(dst Arg) InstrRef        { return p.bin(OpNot, dst, nil) }
func (p *Program) AsmNeg(dst Arg) InstrRef        { return p.bin(OpNeg, dst, nil) }
func (p *Program) AsmShl(dst, src Arg) InstrRef   { return p.bin(OpShl, dst, src) }
func (p *Program) AsmShr(dst, src Arg) InstrRef   { return p.bin(OpShr, dst, src) }
func (p *Program) AsmSar(dst, src Arg) InstrRef   { return p.bin(OpSar, dst, src) }
func (p *Program) AsmAddF(dst, src Arg) InstrRef  { return p.bin(OpAddF, dst, src) }
func (p *Program) AsmSubF(dst, src Arg) InstrRef  { return p.bin(OpSubF, dst, src) }
func (p *Program) AsmMulF(dst, src Arg) InstrRef  { return p.bin(OpMulF, dst, src) }
func (p *Program) AsmDivF(dst, src Arg) InstrRef  { return p.bin(OpDivF, dst, src) }
func (p *Program) AsmCmp(a, b Arg) InstrRef       { return p.bin(OpCmp, a, b) }
func (p *Program) AsmCmpF(a, b Arg) InstrRef      { return p.bin(OpCmpF, a, b) }
func (p *Program) AsmTest(a, b Arg) InstrRef      { return p.bin(OpTest, a, b) }

func (p *Program) AsmSetCC(dst Arg, cc CondCode) InstrRef {
	return p.append(Instr{Op: OpSetCC, Dst: dst, Cond: cc})
}

func (p *Program) AsmJmp(l Label) InstrRef {
	return p.append(Instr{Op: OpJmp, Dst: ArgLabel{L: l}})
}

func (p *Program) AsmJcc(l Label, cc CondCode) InstrRef {
	return p.append(Instr{Op: OpJcc, Dst: ArgLabel{L: l}, Cond: cc})
}

func (p *Program) AsmLabel(l Label) InstrRef {
	return p.append(Instr{Op: OpLabel, L: l})
}

func (p *Program) AsmCall(target string, args []VReg) InstrRef {
	return p.append(Instr{Op: OpCall, CallTarget: target, CallArgs: args})
}

func (p *Program) AsmCallIndirect(target Arg, args []VReg) InstrRef {
	return p.append(Instr{Op: OpCallIndirect, Dst: target, CallArgs: args})
}

func (p *Program) AsmRet() InstrRef { return p.append(Instr{Op: OpRet}) }

func (p *Program) AsmPush(src Arg) InstrRef { return p.append(Instr{Op: OpPush, Src: src}) }
func (p *Program) AsmPop(dst Arg) InstrRef  { return p.append(Instr{Op: OpPop, Dst: dst}) }

func (p *Program) AsmFLD(src Arg) InstrRef   { return p.append(Instr{Op: OpFLD, Src: src}) }
func (p *Program) AsmFSTP(dst Arg) InstrRef  { return p.append(Instr{Op: OpFSTP, Dst: dst}) }
func (p *Program) AsmFADDP() InstrRef        { return p.append(Instr{Op: OpFADDP}) }
func (p *Program) AsmFSUBP() InstrRef        { return p.append(Instr{Op: OpFSUBP}) }
func (p *Program) AsmFMULP() InstrRef        { return p.append(Instr{Op: OpFMULP}) }
func (p *Program) AsmFDIVP() InstrRef        { return p.append(Instr{Op: OpFDIVP}) }

func (p *Program) AsmStashSave(ref StashRef) InstrRef {
	return p.append(Instr{Op: OpStashSave, AsmTemplate: "", CallTarget: "", Dst: ArgImm{Value: int64(ref)}})
}

func (p *Program) AsmStashRestore(ref StashRef) InstrRef {
	return p.append(Instr{Op: OpStashRestore, Dst: ArgImm{Value: int64(ref)}})
}

func (p *Program) AsmInlineAsm(template string) InstrRef {
	return p.append(Instr{Op: OpInlineAsm, AsmTemplate: template})
}
