package lower

import (
	"occ/abi"
	"occ/asmcmp"
	"occ/oir"
)

// lowerBlock emits the AsmCmp instructions for one oir block: its label,
// every non-phi instruction in control-list order, phi resolution on each
// outgoing edge, and its terminator.
func (lw *Lowerer) lowerBlock(bref oir.BlockRef) {
	lw.prog.AsmLabel(lw.blockLbl[bref])
	b := lw.fn.Block(bref)
	for _, iref := range b.Instrs {
		in := lw.fn.Instr(iref)
		if in.Op == oir.OpPhi {
			continue // resolved on the predecessor side, see resolvePhi
		}
		lw.lowerInstr(bref, iref, in)
	}
	lw.lowerBlockControl(bref, b)
}

func (lw *Lowerer) lowerInstr(bref oir.BlockRef, iref oir.InstrRef, in *oir.Instr) {
	switch {
	case isConstOp(in.Op):
		lw.lowerConst(iref, in)
	case isArithOp(in.Op):
		lw.lowerArithmetic(iref, in)
	case isCompareOp(in.Op):
		lw.lowerCompare(iref, in)
	case in.Op == oir.OpLoad:
		lw.lowerLoad(iref, in)
	case in.Op == oir.OpStore:
		lw.lowerStore(in)
	case in.Op == oir.OpCall, in.Op == oir.OpTailCall:
		lw.lowerCall(iref, in)
	case in.Op == oir.OpReturn:
		lw.lowerReturn(in)
	case in.Op == oir.OpBitcast:
		lw.prog.AsmMov(asmcmp.ArgVReg{Reg: lw.regFor(iref)}, asmcmp.ArgVReg{Reg: lw.regFor(in.Args[0])})
	}
}

func isConstOp(op oir.Opcode) bool {
	switch op {
	case oir.OpConstInt, oir.OpConstFloat, oir.OpConstZero, oir.OpConstBigInt:
		return true
	}
	return false
}

func isArithOp(op oir.Opcode) bool {
	switch op {
	case oir.OpAdd, oir.OpSub, oir.OpMul, oir.OpUDiv, oir.OpSDiv, oir.OpUMod, oir.OpSMod,
		oir.OpNeg, oir.OpNot, oir.OpAnd, oir.OpOr, oir.OpXor, oir.OpShl, oir.OpLShr, oir.OpAShr:
		return true
	}
	return false
}

func isCompareOp(op oir.Opcode) bool {
	switch op {
	case oir.OpICmpEq, oir.OpICmpNe, oir.OpICmpULt, oir.OpICmpULe, oir.OpICmpUGt, oir.OpICmpUGe,
		oir.OpICmpSLt, oir.OpICmpSLe, oir.OpICmpSGt, oir.OpICmpSGe,
		oir.OpFCmpEq, oir.OpFCmpNe, oir.OpFCmpLt, oir.OpFCmpLe, oir.OpFCmpGt, oir.OpFCmpGe:
		return true
	}
	return false
}

// lowerConst materializes an integer or float constant into its value's
// vreg with a single mov.
func (lw *Lowerer) lowerConst(iref oir.InstrRef, in *oir.Instr) {
	dst := asmcmp.ArgVReg{Reg: lw.regFor(iref)}
	switch in.Op {
	case oir.OpConstFloat:
		lw.prog.AsmMovF(dst, asmcmp.ArgImmF{Value: float64(in.AuxInt)})
	default:
		lw.prog.AsmMov(dst, asmcmp.ArgImm{Value: in.AuxInt})
	}
}

// lowerArithmetic lowers a two-operand SSA arithmetic instruction to
// compile/codegen/lir.go's three-operand-to-two-operand shape: move the left
// operand into the result vreg, then apply the op against the right operand
// in place (its documented rationale for x86's destructive two-operand
// form).
func (lw *Lowerer) lowerArithmetic(iref oir.InstrRef, in *oir.Instr) {
	dst := asmcmp.ArgVReg{Reg: lw.regFor(iref)}
	lhs := asmcmp.ArgVReg{Reg: lw.regFor(in.Args[0])}
	isFloat := lw.isFloatVal(in.Args[0])

	if isFloat {
		lw.prog.AsmMovF(dst, lhs)
	} else {
		lw.prog.AsmMov(dst, lhs)
	}

	if len(in.Args) == 1 {
		switch in.Op {
		case oir.OpNeg:
			lw.prog.AsmNeg(dst)
		case oir.OpNot:
			lw.prog.AsmNot(dst)
		}
		return
	}

	rhs := asmcmp.ArgVReg{Reg: lw.regFor(in.Args[1])}
	switch in.Op {
	case oir.OpAdd:
		if isFloat {
			lw.prog.AsmAddF(dst, rhs)
		} else {
			lw.prog.AsmAdd(dst, rhs)
		}
	case oir.OpSub:
		if isFloat {
			lw.prog.AsmSubF(dst, rhs)
		} else {
			lw.prog.AsmSub(dst, rhs)
		}
	case oir.OpMul:
		if isFloat {
			lw.prog.AsmMulF(dst, rhs)
		} else {
			lw.prog.AsmIMul(dst, rhs)
		}
	case oir.OpSDiv:
		lw.prog.AsmIDiv(dst, rhs)
	case oir.OpUDiv:
		lw.prog.AsmUDiv(dst, rhs)
	case oir.OpAnd:
		lw.prog.AsmAnd(dst, rhs)
	case oir.OpOr:
		lw.prog.AsmOr(dst, rhs)
	case oir.OpXor:
		lw.prog.AsmXor(dst, rhs)
	case oir.OpShl:
		lw.prog.AsmShl(dst, rhs)
	case oir.OpLShr:
		lw.prog.AsmShr(dst, rhs)
	case oir.OpAShr:
		lw.prog.AsmSar(dst, rhs)
	}
}

func (lw *Lowerer) isFloatVal(ref oir.InstrRef) bool {
	r, ok := lw.valueReg[ref]
	return ok && r.Bank == abi.BankFP
}

// lowerCompare emits a compare followed by setcc, unless the
// combine-compare-branch pass (opt) flagged the comparison's AuxInt with
// fusedCompareBranchFlag — in that case no setcc is emitted at all, and
// lowerBlockControl's BlockIf handling reads the comparison's operator
// directly to choose the conditional jump's condition code, producing a
// single fused compare+jump pair instead of compare+setcc+test+jump.
func (lw *Lowerer) lowerCompare(iref oir.InstrRef, in *oir.Instr) {
	const fusedCompareBranchFlag = 1 << 62
	lhs := asmcmp.ArgVReg{Reg: lw.regFor(in.Args[0])}
	rhs := asmcmp.ArgVReg{Reg: lw.regFor(in.Args[1])}
	if lw.isFloatVal(in.Args[0]) {
		lw.prog.AsmCmpF(lhs, rhs)
	} else {
		lw.prog.AsmCmp(lhs, rhs)
	}
	if in.AuxInt&fusedCompareBranchFlag != 0 {
		return
	}
	lw.prog.AsmSetCC(asmcmp.ArgVReg{Reg: lw.regFor(iref)}, condFor(in.Op))
}

func condFor(op oir.Opcode) asmcmp.CondCode {
	switch op {
	case oir.OpICmpEq, oir.OpFCmpEq:
		return asmcmp.CondEQ
	case oir.OpICmpNe, oir.OpFCmpNe:
		return asmcmp.CondNE
	case oir.OpICmpSLt, oir.OpFCmpLt:
		return asmcmp.CondLT
	case oir.OpICmpSLe, oir.OpFCmpLe:
		return asmcmp.CondLE
	case oir.OpICmpSGt, oir.OpFCmpGt:
		return asmcmp.CondGT
	case oir.OpICmpSGe, oir.OpFCmpGe:
		return asmcmp.CondGE
	case oir.OpICmpULt:
		return asmcmp.CondULT
	case oir.OpICmpULe:
		return asmcmp.CondULE
	case oir.OpICmpUGt:
		return asmcmp.CondUGT
	case oir.OpICmpUGe:
		return asmcmp.CondUGE
	}
	return asmcmp.CondEQ
}

func (lw *Lowerer) lowerLoad(iref oir.InstrRef, in *oir.Instr) {
	if len(in.Args) == 0 {
		// A load with no address operand is a parameter read (the shape
		// opt's isParamRead matches): its vreg is allocated and no memory
		// access is emitted.
		lw.regFor(iref)
		return
	}
	base := lw.regFor(in.Args[0])
	lw.prog.AsmMov(asmcmp.ArgVReg{Reg: lw.regFor(iref)}, asmcmp.ArgMem{Base: base})
}

func (lw *Lowerer) lowerStore(in *oir.Instr) {
	base := lw.regFor(in.Args[0])
	src := asmcmp.ArgVReg{Reg: lw.regFor(in.Args[1])}
	lw.prog.AsmMov(asmcmp.ArgMem{Base: base}, src)
}

// lowerCall emits argument-register moves for the System V integer/SSE
// argument classes (a simplified, register-only view — spilled/stack
// arguments are handled by the allocator reserving outgoing-argument stack
// slots, not by this pass) followed by the call itself, copying the return
// value out of RAX/XMM0 into the call's result vreg.
//
// A call clobbers every caller-saved register, but which physical register
// (if any) ends up holding a given live value is only decided much later, by
// regalloc. So every value live across the call gets a stash pseudo-op pair
// here instead: devirtualization resolves each one once it knows the
// assigned register, turning it into a real save/restore around the call
// when that register is caller-saved, or dropping it entirely otherwise (a
// spilled value, or one already in a callee-saved register, needs no help).
// A tail call has nothing live past it — the function returns immediately
// after — so it skips this.
func (lw *Lowerer) lowerCall(iref oir.InstrRef, in *oir.Instr) {
	node := lw.fn.Call(in.AuxCall)
	calleeName, _ := lw.mod.Symbol(node.Callee)

	var argVRegs []asmcmp.VReg
	for _, a := range node.Args {
		argVRegs = append(argVRegs, lw.regFor(a))
	}

	if in.Op == oir.OpTailCall {
		lw.prog.AsmCall(calleeName, argVRegs)
		lw.prog.AsmRet()
		return
	}

	var stashes []asmcmp.StashRef
	for _, r := range lw.liveAcrossCall(iref) {
		s := lw.prog.NewStash(r, asmcmp.NoInstr, asmcmp.NoInstr)
		lw.prog.AsmStashSave(s)
		stashes = append(stashes, s)
	}

	lw.prog.AsmCall(calleeName, argVRegs)
	if len(in.Uses) > 0 {
		resultVReg := lw.regFor(iref)
		retReg := abi.ReturnReg(resultVReg.Bank)
		lw.prog.AsmMov(asmcmp.ArgVReg{Reg: resultVReg}, asmcmp.ArgPhys{Reg: retReg})
	}

	for i := len(stashes) - 1; i >= 0; i-- {
		lw.prog.AsmStashRestore(stashes[i])
	}
}

// lowerReturn copies a function's return value(s) into the ABI return
// registers (RAX/XMM0, plus RDX/XMM1 for a second word of a two-eightbyte
// aggregate) ahead of the block's terminating ret, emitted separately by
// lowerBlockControl once every instruction in the control list has run.
func (lw *Lowerer) lowerReturn(in *oir.Instr) {
	for i, a := range in.Args {
		src := asmcmp.ArgVReg{Reg: lw.regFor(a)}
		bank := abi.BankGP
		if lw.isFloatVal(a) {
			bank = abi.BankFP
		}
		reg := abi.ReturnReg(bank)
		if i == 1 {
			reg = abi.SecondReturnReg(bank)
		}
		if bank == abi.BankFP {
			lw.prog.AsmMovF(asmcmp.ArgPhys{Reg: reg}, src)
		} else {
			lw.prog.AsmMov(asmcmp.ArgPhys{Reg: reg}, src)
		}
	}
}

// lowerBlockControl emits a block's terminator and resolves phi nodes on
// each outgoing edge by inserting a mov for each phi immediately before the
// jump, y1yang0-falcon's resolvePhi approach of materializing the merge as
// parallel copies on every predecessor edge rather than as a single
// instruction at the join point.
func (lw *Lowerer) lowerBlockControl(bref oir.BlockRef, b *oir.Block) {
	switch b.Kind {
	case oir.BlockReturn:
		lw.prog.AsmRet()
	case oir.BlockGoto:
		if len(b.Succs) == 1 {
			lw.resolvePhi(bref, b.Succs[0])
			lw.prog.AsmJmp(lw.blockLbl[b.Succs[0]])
		}
	case oir.BlockIf:
		if len(b.Succs) != 2 {
			return
		}
		taken, notTaken := b.Succs[0], b.Succs[1]
		cond := asmcmp.CondNE
		if b.Ctrl != oir.NoInstr {
			ctrl := lw.fn.Instr(b.Ctrl)
			if isCompareOp(ctrl.Op) {
				cond = condFor(ctrl.Op)
			} else {
				lw.prog.AsmTest(asmcmp.ArgVReg{Reg: lw.regFor(b.Ctrl)}, asmcmp.ArgVReg{Reg: lw.regFor(b.Ctrl)})
			}
		}
		lw.resolvePhi(bref, taken)
		lw.prog.AsmJcc(lw.blockLbl[taken], cond)
		lw.resolvePhi(bref, notTaken)
		lw.prog.AsmJmp(lw.blockLbl[notTaken])
	}
}

// resolvePhi emits a mov for every phi in dest whose incoming edge is from
// bref, copying the edge's value into the phi's own vreg.
func (lw *Lowerer) resolvePhi(bref, dest oir.BlockRef) {
	db := lw.fn.Block(dest)
	for _, pref := range db.Phis {
		p := lw.fn.Phi(pref)
		for _, edge := range p.Incoming {
			if edge.Pred != bref {
				continue
			}
			lw.prog.AsmMov(asmcmp.ArgVReg{Reg: lw.regFor(p.Self)}, asmcmp.ArgVReg{Reg: lw.regFor(edge.Value)})
		}
	}
}
