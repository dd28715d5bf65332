package abi

import (
	"testing"

	"occ/ir"
)

func TestClassifyScalarIntParamsFillIntRegsInOrder(t *testing.T) {
	mod := ir.NewModule()
	intType := mod.NewType("int", []ir.TypeEntry{{Kind: ir.KindI32}})
	ref := ir.TypeRef{Type: intType}

	c := NewClassifier(SystemV)
	want := IntArgRegs(SystemV)
	for i, w := range want {
		loc := c.ClassifyParam(mod, ref)
		if loc.InMemory {
			t.Fatalf("param %d unexpectedly classified in memory", i)
		}
		if len(loc.Regs) != 1 || loc.Regs[0] != w {
			t.Fatalf("param %d assigned %v, want %v", i, loc.Regs, w)
		}
	}
	// One more than the register file holds must fall back to the stack.
	overflow := c.ClassifyParam(mod, ref)
	if !overflow.InMemory {
		t.Fatalf("expected the (len(IntArgRegs)+1)-th integer param to spill to the stack")
	}
}

func TestClassifyFloatParamUsesSSEBank(t *testing.T) {
	mod := ir.NewModule()
	floatType := mod.NewType("double", []ir.TypeEntry{{Kind: ir.KindF64}})
	ref := ir.TypeRef{Type: floatType}

	c := NewClassifier(SystemV)
	loc := c.ClassifyParam(mod, ref)
	if loc.InMemory {
		t.Fatalf("float param unexpectedly classified in memory")
	}
	if len(loc.Classes) != 1 || loc.Classes[0] != ClassSSE {
		t.Fatalf("float param classes = %v, want [ClassSSE]", loc.Classes)
	}
	if loc.Regs[0] != FPArgRegs(SystemV)[0] {
		t.Fatalf("first float param register = %v, want %v", loc.Regs[0], FPArgRegs(SystemV)[0])
	}
}

func TestClassifyReturnScalarInt(t *testing.T) {
	mod := ir.NewModule()
	intType := mod.NewType("int", []ir.TypeEntry{{Kind: ir.KindI32}})
	ref := ir.TypeRef{Type: intType}

	c := NewClassifier(SystemV)
	loc := c.ClassifyReturn(mod, ref)
	if loc.InMemory {
		t.Fatalf("scalar int return unexpectedly classified in memory")
	}
	if len(loc.Regs) != 1 || loc.Regs[0] != RAX {
		t.Fatalf("scalar int return register = %v, want [RAX]", loc.Regs)
	}
}

func TestClassifyLargeStructReturnIsMemory(t *testing.T) {
	mod := ir.NewModule()
	intType := mod.NewType("int", []ir.TypeEntry{{Kind: ir.KindI32}})
	memberRef := ir.TypeRef{Type: intType}
	// A five-member struct exceeds the two-eightbyte register-return limit.
	members := make([]ir.TypeRef, 5)
	for i := range members {
		members[i] = memberRef
	}
	structType := mod.NewType("big", []ir.TypeEntry{{Kind: ir.KindStruct, Members: members}})
	ref := ir.TypeRef{Type: structType}

	c := NewClassifier(SystemV)
	loc := c.ClassifyReturn(mod, ref)
	if !loc.InMemory {
		t.Fatalf("expected a struct spanning more than two eightbytes to classify as memory")
	}
}

func TestWin64UsesDistinctRegisterSets(t *testing.T) {
	if len(IntArgRegs(Win64)) != 4 {
		t.Fatalf("Win64 IntArgRegs has %d entries, want 4", len(IntArgRegs(Win64)))
	}
	if len(IntArgRegs(SystemV)) != 6 {
		t.Fatalf("SystemV IntArgRegs has %d entries, want 6", len(IntArgRegs(SystemV)))
	}
}
