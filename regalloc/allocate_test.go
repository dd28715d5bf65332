package regalloc

import (
	"testing"

	"occ/abi"
	"occ/asmcmp"
)

func liveThroughout(id int, bank abi.Bank) *Interval {
	return &Interval{
		VReg:   asmcmp.VReg{ID: id, Bank: bank},
		Ranges: []Range{{From: 0, To: 100}},
		Uses:   []UsePoint{{Pos: 0}, {Pos: 99}},
	}
}

// TestAllocateSpillsUnderPressure reproduces spec.md §8 scenario 2: more
// concurrently live GP values than the register file holds forces at least
// one of them into the spill area.
func TestAllocateSpillsUnderPressure(t *testing.T) {
	a := NewAllocator(abi.SystemV)
	budget := len(a.gpPool)

	var intervals []*Interval
	for i := 0; i < budget+3; i++ {
		intervals = append(intervals, liveThroughout(i+1, abi.BankGP))
	}

	allocated, err := a.Allocate(intervals)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}

	spilled := 0
	for _, iv := range allocated {
		if iv.IsSpill {
			spilled++
		}
	}
	if spilled < 3 {
		t.Fatalf("spilled %d intervals for %d concurrently live values over a %d-register budget, want at least 3", spilled, budget+3, budget)
	}
	if err := CheckPressure(allocated, abi.SystemV); err != nil {
		t.Fatalf("CheckPressure after Allocate: %v", err)
	}
}

func TestAllocateFitsWithinBudgetWithoutSpilling(t *testing.T) {
	a := NewAllocator(abi.SystemV)
	budget := len(a.gpPool)

	var intervals []*Interval
	for i := 0; i < budget; i++ {
		intervals = append(intervals, liveThroughout(i+1, abi.BankGP))
	}

	allocated, err := a.Allocate(intervals)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	for _, iv := range allocated {
		if iv.IsSpill {
			t.Fatalf("vreg %d spilled even though live values (%d) fit within the %d-register budget", iv.VReg.ID, budget, budget)
		}
	}

	seen := map[abi.PhysReg]bool{}
	for _, iv := range allocated {
		if seen[iv.AssignedReg] {
			t.Fatalf("register %v assigned to two simultaneously live intervals", iv.AssignedReg)
		}
		seen[iv.AssignedReg] = true
	}
}

func TestAllocateDisjointIntervalsShareARegister(t *testing.T) {
	a := NewAllocator(abi.SystemV)
	first := &Interval{VReg: asmcmp.VReg{ID: 1, Bank: abi.BankGP}, Ranges: []Range{{From: 0, To: 10}}}
	second := &Interval{VReg: asmcmp.VReg{ID: 2, Bank: abi.BankGP}, Ranges: []Range{{From: 10, To: 20}}}

	allocated, err := a.Allocate([]*Interval{first, second})
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if allocated[0].IsSpill || allocated[1].IsSpill {
		t.Fatalf("two non-overlapping intervals should never need to spill")
	}
}

func TestBuildIntervalsTracksDefToLastUse(t *testing.T) {
	p := asmcmp.NewProgram()
	v := p.NewVReg(asmcmp.VRegGP, abi.BankGP, 8)
	p.AsmMov(asmcmp.ArgVReg{Reg: v}, asmcmp.ArgImm{Value: 42})
	p.AsmAdd(asmcmp.ArgVReg{Reg: v}, asmcmp.ArgImm{Value: 1})
	p.AsmRet()

	intervals := BuildIntervals(p)
	if len(intervals) != 1 {
		t.Fatalf("BuildIntervals found %d vregs, want 1", len(intervals))
	}
	iv := intervals[0]
	if iv.From() >= iv.To() {
		t.Fatalf("interval [%d, %d) is not a forward range", iv.From(), iv.To())
	}
}
