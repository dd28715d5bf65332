package oir

import (
	"testing"

	"occ/ir"
)

func newTestFunc(name string) *Func {
	mod := ir.NewModule()
	return NewFunc(name, ir.FunctionDecl{Name: name}, mod)
}

// TestTrivialReturnVerifies builds `int f(void) { return 42; }`'s OIR shape
// directly and checks it satisfies the structural invariants (spec.md §8
// scenario 1).
func TestTrivialReturnVerifies(t *testing.T) {
	f := newTestFunc("f")
	c := f.AppendInstr(f.Entry, Instr{Op: OpConstInt, AuxInt: 42})
	ret := f.AppendInstr(f.Entry, Instr{Op: OpReturn, Args: []InstrRef{c}})
	f.Block(f.Entry).Ctrl = ret
	f.Block(f.Entry).Kind = BlockReturn

	if err := Verify(f); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got := f.Instr(ret).Args[0]; got != c {
		t.Fatalf("return instruction args = %v, want [%d]", f.Instr(ret).Args, c)
	}
}

func TestAppendInstrWiresUses(t *testing.T) {
	f := newTestFunc("f")
	c := f.AppendInstr(f.Entry, Instr{Op: OpConstInt, AuxInt: 1})
	add := f.AppendInstr(f.Entry, Instr{Op: OpAdd, Args: []InstrRef{c, c}})

	uses := f.Instr(c).Uses
	if len(uses) != 2 || uses[0] != add || uses[1] != add {
		t.Fatalf("Uses(c) = %v, want two uses of %d", uses, add)
	}
}

func TestDropInstrRejectsLiveUses(t *testing.T) {
	f := newTestFunc("f")
	c := f.AppendInstr(f.Entry, Instr{Op: OpConstInt, AuxInt: 1})
	f.AppendInstr(f.Entry, Instr{Op: OpAdd, Args: []InstrRef{c, c}})

	if err := f.DropInstr(c); err == nil {
		t.Fatalf("expected DropInstr to reject an instruction with remaining uses")
	}
}

func TestDropInstrRemovesDeadInstruction(t *testing.T) {
	f := newTestFunc("f")
	c := f.AppendInstr(f.Entry, Instr{Op: OpConstInt, AuxInt: 1})
	add := f.AppendInstr(f.Entry, Instr{Op: OpAdd, Args: []InstrRef{c, c}})

	if err := f.DropInstr(add); err != nil {
		t.Fatalf("DropInstr: %v", err)
	}
	if len(f.Instr(c).Uses) != 0 {
		t.Fatalf("Uses(c) after dropping its only use = %v, want empty", f.Instr(c).Uses)
	}
	for _, r := range f.Block(f.Entry).Instrs {
		if r == add {
			t.Fatalf("dropped instruction %d still present in the control list", add)
		}
	}
}

func TestReplaceUsesRewritesArgsAndPhis(t *testing.T) {
	f := newTestFunc("f")
	other := f.NewBlock(BlockGoto)
	c1 := f.AppendInstr(f.Entry, Instr{Op: OpConstInt, AuxInt: 1})
	c2 := f.AppendInstr(f.Entry, Instr{Op: OpConstInt, AuxInt: 2})
	add := f.AppendInstr(f.Entry, Instr{Op: OpAdd, Args: []InstrRef{c1, c1}})

	pref := f.NewPhi(other, ir.TypeRef{})
	f.PhiAttach(pref, f.Entry, c1)

	f.ReplaceUses(c1, c2)

	if got := f.Instr(add).Args[0]; got != c2 {
		t.Fatalf("add.Args[0] = %d, want %d after ReplaceUses", got, c2)
	}
	if got := f.Phi(pref).Incoming[0].Value; got != c2 {
		t.Fatalf("phi incoming value = %d, want %d after ReplaceUses", got, c2)
	}
	if len(f.Instr(c1).Uses) != 0 {
		t.Fatalf("old ref retains uses after ReplaceUses: %v", f.Instr(c1).Uses)
	}
}

func TestNewCallAndSetArgument(t *testing.T) {
	f := newTestFunc("f")
	a := f.AppendInstr(f.Entry, Instr{Op: OpConstInt, AuxInt: 1})
	ref, cref := f.NewCall(f.Entry, ir.TypeRef{}, CallNode{Args: []InstrRef{a}})

	if len(f.Call(cref).Args) != 1 {
		t.Fatalf("call args = %v, want 1 entry", f.Call(cref).Args)
	}
	b := f.AppendInstr(f.Entry, Instr{Op: OpConstInt, AuxInt: 2})
	f.CallSetArgument(cref, b)
	if len(f.Call(cref).Args) != 2 {
		t.Fatalf("call args after CallSetArgument = %v, want 2 entries", f.Call(cref).Args)
	}
	if got := f.Instr(ref).Args; len(got) != 2 || got[1] != b {
		t.Fatalf("call instr args = %v, want second arg %d", got, b)
	}
}

func TestSplitBlockAfterPreservesTerminatorAndPhis(t *testing.T) {
	f := newTestFunc("f")
	succ := f.NewBlock(BlockReturn)
	f.WireEdge(f.Entry, succ)
	f.Block(f.Entry).Kind = BlockGoto

	pref := f.NewPhi(succ, ir.TypeRef{})
	c := f.AppendInstr(f.Entry, Instr{Op: OpConstInt, AuxInt: 7})
	f.PhiAttach(pref, f.Entry, c)

	nop := f.AppendInstr(f.Entry, Instr{Op: OpNop})
	tail := f.SplitBlockAfter(f.Entry, 1)

	if got := f.Block(f.Entry).Succs; len(got) != 1 || got[0] != tail {
		t.Fatalf("entry successors after split = %v, want [%d]", got, tail)
	}
	if got := f.Block(tail).Succs; len(got) != 1 || got[0] != succ {
		t.Fatalf("tail successors after split = %v, want [%d]", got, succ)
	}
	if got := f.Phi(pref).Incoming[0].Pred; got != tail {
		t.Fatalf("phi predecessor after split = %d, want %d (the new tail block)", got, tail)
	}
	if got := f.Block(f.Entry).Instrs; len(got) != 1 || got[0] != c {
		t.Fatalf("entry control list after split = %v, want [%d]", got, c)
	}
	if got := f.Block(tail).Instrs; len(got) != 1 || got[0] != nop {
		t.Fatalf("tail control list after split = %v, want [%d]", got, nop)
	}
}

func TestVerifyRejectsMismatchedPhiEdgeCount(t *testing.T) {
	f := newTestFunc("f")
	succ := f.NewBlock(BlockReturn)
	f.WireEdge(f.Entry, succ)
	f.Block(f.Entry).Kind = BlockGoto

	f.NewPhi(succ, ir.TypeRef{}) // no incoming edges attached

	if err := Verify(f); err == nil {
		t.Fatalf("expected Verify to reject a phi missing an incoming edge for its only predecessor")
	}
}
