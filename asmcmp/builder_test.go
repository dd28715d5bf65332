package asmcmp

import (
	"testing"

	"occ/abi"
)

func TestAppendLinksInProgramOrder(t *testing.T) {
	p := NewProgram()
	a := p.AsmMov(ArgImm{Value: 1}, ArgImm{Value: 2})
	b := p.AsmAdd(ArgImm{Value: 1}, ArgImm{Value: 3})
	c := p.AsmRet()

	if p.Head() != a {
		t.Fatalf("Head() = %d, want %d", p.Head(), a)
	}
	if p.Tail() != c {
		t.Fatalf("Tail() = %d, want %d", p.Tail(), c)
	}
	var order []InstrRef
	p.Each(func(r InstrRef, _ *Instr) { order = append(order, r) })
	if len(order) != 3 || order[0] != a || order[1] != b || order[2] != c {
		t.Fatalf("Each() order = %v, want [%d %d %d]", order, a, b, c)
	}
}

func TestInsertBeforeAndAfterSplice(t *testing.T) {
	p := NewProgram()
	a := p.AsmRet()
	before := p.InsertBefore(a, Instr{Op: OpLabel})
	after := p.InsertAfter(a, Instr{Op: OpLabel})

	var order []InstrRef
	p.Each(func(r InstrRef, _ *Instr) { order = append(order, r) })
	if len(order) != 3 || order[0] != before || order[1] != a || order[2] != after {
		t.Fatalf("order after splice = %v, want [%d %d %d]", order, before, a, after)
	}
	if p.Head() != before {
		t.Fatalf("Head() = %d, want %d (the newly inserted front instruction)", p.Head(), before)
	}
	if p.Tail() != after {
		t.Fatalf("Tail() = %d, want %d (the newly inserted back instruction)", p.Tail(), after)
	}
}

func TestRemoveUnlinksInstruction(t *testing.T) {
	p := NewProgram()
	a := p.AsmRet()
	mid := p.InsertAfter(a, Instr{Op: OpLabel})
	c := p.InsertAfter(mid, Instr{Op: OpLabel})

	p.Remove(mid)

	var order []InstrRef
	p.Each(func(r InstrRef, _ *Instr) { order = append(order, r) })
	if len(order) != 2 || order[0] != a || order[1] != c {
		t.Fatalf("order after removing the middle instruction = %v, want [%d %d]", order, a, c)
	}
}

func TestNewVRegAndLabelAreUnique(t *testing.T) {
	p := NewProgram()
	v1 := p.NewVReg(VRegGP, abi.BankGP, 8)
	v2 := p.NewVReg(VRegGP, abi.BankGP, 8)
	if v1.ID == v2.ID {
		t.Fatalf("two NewVReg calls returned the same id %d", v1.ID)
	}

	l1 := p.NewLabel()
	l2 := p.NewLabel()
	if l1.ID == l2.ID {
		t.Fatalf("two NewLabel calls returned the same id %d", l1.ID)
	}
}

func TestStashRoundTrip(t *testing.T) {
	p := NewProgram()
	v := p.NewVReg(VRegGP, abi.BankGP, 8)
	saveAt := p.AsmMov(ArgImm{Value: 0}, ArgImm{Value: 0})
	restoreAt := p.AsmMov(ArgImm{Value: 0}, ArgImm{Value: 0})

	ref := p.NewStash(v, saveAt, restoreAt)
	got := p.GetStash(ref)
	if got.Reg.ID != v.ID || got.SaveBefore != saveAt || got.RestoreAt != restoreAt {
		t.Fatalf("GetStash(%d) = %+v, want {Reg:%v SaveBefore:%d RestoreAt:%d}", ref, got, v, saveAt, restoreAt)
	}
}
