package asmsink

import (
	"fmt"

	"occ/abi"
	"occ/asmcmp"
)

// operand renders one devirtualized Arg. By the time a Program reaches this
// package every ArgVReg has been rewritten to ArgPhys/ArgPhysMem by
// devirtualization (C7); encountering one here is an internal-consistency
// failure, rendered as a visibly broken placeholder rather than a panic so
// a partially-wired pipeline still produces inspectable output.
func (s *Sink) operand(a asmcmp.Arg) string {
	switch v := a.(type) {
	case asmcmp.ArgPhys:
		return s.reg(v.Reg, regWidth(v.Reg))
	case asmcmp.ArgPhysMem:
		return s.mem(v.Base, v.Disp)
	case asmcmp.ArgImm:
		return s.imm(v.Value)
	case asmcmp.ArgImmF:
		return fmt.Sprintf("%v", v.Value)
	case asmcmp.ArgLabel:
		return Quote(fmt.Sprintf(".L%d", v.L.ID))
	case asmcmp.ArgSymbol:
		if v.PCRelative && s.syntax == SyntaxATT {
			return Quote(v.Name) + "(%rip)"
		}
		return Quote(v.Name)
	case nil:
		return ""
	default:
		return "<unresolved-vreg>"
	}
}

func regWidth(r abi.PhysReg) int { return 8 } // physical regs here are always full-width; sub-width views are a future extension point

// emitInstr renders one AsmCmp instruction in the active syntax.
func (s *Sink) emitInstr(in *asmcmp.Instr) {
	switch in.Op {
	case asmcmp.OpLabel:
		s.line("%s:", Quote(fmt.Sprintf(".L%d", in.L.ID)))
	case asmcmp.OpMov:
		s.two("mov", s.operand(in.Dst), s.operand(in.Src), s.suffixFor(in.Dst))
	case asmcmp.OpMovF:
		s.two("movs", s.operand(in.Dst), s.operand(in.Src), floatSuffix(in.Dst))
	case asmcmp.OpLea:
		s.two("lea", s.operand(in.Dst), s.operand(in.Src), s.suffixFor(in.Dst))
	case asmcmp.OpAdd:
		s.two("add", s.operand(in.Dst), s.operand(in.Src), s.suffixFor(in.Dst))
	case asmcmp.OpSub:
		s.two("sub", s.operand(in.Dst), s.operand(in.Src), s.suffixFor(in.Dst))
	case asmcmp.OpIMul:
		s.two("imul", s.operand(in.Dst), s.operand(in.Src), s.suffixFor(in.Dst))
	case asmcmp.OpIDiv:
		s.one("idiv", s.operand(in.Src), s.suffixFor(in.Src))
	case asmcmp.OpUDiv:
		s.one("div", s.operand(in.Src), s.suffixFor(in.Src))
	case asmcmp.OpAnd:
		s.two("and", s.operand(in.Dst), s.operand(in.Src), s.suffixFor(in.Dst))
	case asmcmp.OpOr:
		s.two("or", s.operand(in.Dst), s.operand(in.Src), s.suffixFor(in.Dst))
	case asmcmp.OpXor:
		s.two("xor", s.operand(in.Dst), s.operand(in.Src), s.suffixFor(in.Dst))
	case asmcmp.OpNot:
		s.one("not", s.operand(in.Dst), s.suffixFor(in.Dst))
	case asmcmp.OpNeg:
		s.one("neg", s.operand(in.Dst), s.suffixFor(in.Dst))
	case asmcmp.OpShl:
		s.two("shl", s.operand(in.Dst), s.operand(in.Src), s.suffixFor(in.Dst))
	case asmcmp.OpShr:
		s.two("shr", s.operand(in.Dst), s.operand(in.Src), s.suffixFor(in.Dst))
	case asmcmp.OpSar:
		s.two("sar", s.operand(in.Dst), s.operand(in.Src), s.suffixFor(in.Dst))
	case asmcmp.OpAddF:
		s.two("adds", s.operand(in.Dst), s.operand(in.Src), floatSuffix(in.Dst))
	case asmcmp.OpSubF:
		s.two("subs", s.operand(in.Dst), s.operand(in.Src), floatSuffix(in.Dst))
	case asmcmp.OpMulF:
		s.two("muls", s.operand(in.Dst), s.operand(in.Src), floatSuffix(in.Dst))
	case asmcmp.OpDivF:
		s.two("divs", s.operand(in.Dst), s.operand(in.Src), floatSuffix(in.Dst))
	case asmcmp.OpCmp:
		s.two("cmp", s.operand(in.Dst), s.operand(in.Src), s.suffixFor(in.Dst))
	case asmcmp.OpCmpF:
		s.two("ucomis", s.operand(in.Dst), s.operand(in.Src), floatSuffix(in.Dst))
	case asmcmp.OpTest:
		s.two("test", s.operand(in.Dst), s.operand(in.Src), s.suffixFor(in.Dst))
	case asmcmp.OpSetCC:
		s.one("set"+in.Cond.Suffix(), s.operand(in.Dst), "")
	case asmcmp.OpJmp:
		s.one("jmp", s.operand(in.Dst), "")
	case asmcmp.OpJcc:
		s.one("j"+in.Cond.Suffix(), s.operand(in.Dst), "")
	case asmcmp.OpCall:
		s.line("  call %s", Quote(in.CallTarget))
	case asmcmp.OpCallIndirect:
		s.line("  call *%s", s.operand(in.Dst))
	case asmcmp.OpRet:
		s.line("  ret")
	case asmcmp.OpPush:
		s.one("push", s.operand(in.Src), "")
	case asmcmp.OpPop:
		s.one("pop", s.operand(in.Dst), "")
	case asmcmp.OpFLD:
		s.one("fld", s.operand(in.Src), "t")
	case asmcmp.OpFSTP:
		s.one("fstp", s.operand(in.Dst), "t")
	case asmcmp.OpFADDP:
		s.line("  faddp")
	case asmcmp.OpFSUBP:
		s.line("  fsubp")
	case asmcmp.OpFMULP:
		s.line("  fmulp")
	case asmcmp.OpFDIVP:
		s.line("  fdivp")
	case asmcmp.OpStashSave, asmcmp.OpStashRestore:
		// realized into ordinary OpMov pairs by devirtualization (C7); a
		// program reaching asmsink should never still carry one.
		s.comment("unresolved stash pseudo-op")
	case asmcmp.OpInlineAsm:
		s.line("  %s", in.AsmTemplate)
	}
}

func (s *Sink) suffixFor(a asmcmp.Arg) string {
	switch v := a.(type) {
	case asmcmp.ArgPhys:
		return s.widthSuffix(regWidth(v.Reg))
	case asmcmp.ArgPhysMem:
		return s.widthSuffix(8)
	}
	return s.widthSuffix(8)
}

func floatSuffix(a asmcmp.Arg) string {
	// scalar double suffix by default; single-precision callers distinguish
	// via the vreg width recorded before devirtualization discarded it —
	// SPEC_FULL.md's float lowering always widens float to double before
	// this stage, so "d" is the only suffix this back end actually emits.
	return "d"
}
