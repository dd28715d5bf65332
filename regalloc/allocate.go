package regalloc

import (
	"sort"

	"github.com/samber/lo"

	"occ/abi"
	"occ/diag"
)

// Allocator runs the Wimmer linear-scan algorithm: process intervals sorted
// by start position, maintaining active (currently assigned and live),
// inactive (assigned but with a lifetime hole covering the current
// position) and handled (finished) sets.
type Allocator struct {
	conv abi.Convention

	unhandled []*Interval
	active    []*Interval
	inactive  []*Interval
	handled   []*Interval

	gpPool  []abi.PhysReg
	fpPool  []abi.PhysReg
	nextSlot int
}

// NewAllocator creates an allocator over the usable GP/FP register pools
// for the given convention — every caller- and callee-save register is
// available to the allocator except RBP (the frame pointer, kept reserved
// as the devirtualizer's spill-slot base — spec.md's frame-pointer-omission
// policy is a StackFrame field the back-end never actually flips in this
// implementation) and one scratch register of each bank, reserved for
// devirtualization's temporary loads/stores around spilled operands a
// memory-forbidding opcode can't address directly.
func NewAllocator(conv abi.Convention) *Allocator {
	gp := append(append([]abi.PhysReg{}, abi.CallerSaveGP(conv)...), abi.CalleeSaveGP(conv)...)
	gp = lo.Filter(gp, func(r abi.PhysReg, _ int) bool { return r != abi.RBP && r != ScratchGP })
	fp := lo.Filter(abi.XMMRegs, func(r abi.PhysReg, _ int) bool { return r != ScratchFP })
	return &Allocator{conv: conv, gpPool: gp, fpPool: fp}
}

// ScratchGP and ScratchFP are the registers withheld from allocation for
// devirtualization's own use (see devirt.New).
var (
	ScratchGP = abi.R11
	ScratchFP = abi.XMMRegs[15]
)

// Allocate assigns every interval a physical register or a spill slot,
// returning the finished list (same elements as input, now filled in).
func (a *Allocator) Allocate(intervals []*Interval) ([]*Interval, error) {
	a.unhandled = append([]*Interval{}, intervals...)
	sort.Slice(a.unhandled, func(i, j int) bool { return a.unhandled[i].From() < a.unhandled[j].From() })

	for len(a.unhandled) > 0 {
		cur := a.unhandled[0]
		a.unhandled = a.unhandled[1:]
		pos := cur.From()

		var stillActive []*Interval
		for _, iv := range a.active {
			if iv.To() <= pos {
				a.handled = append(a.handled, iv)
			} else if !iv.CoversPos(pos) {
				a.inactive = append(a.inactive, iv)
			} else {
				stillActive = append(stillActive, iv)
			}
		}
		a.active = stillActive

		var stillInactive []*Interval
		for _, iv := range a.inactive {
			if iv.To() <= pos {
				a.handled = append(a.handled, iv)
			} else if iv.CoversPos(pos) {
				a.active = append(a.active, iv)
			} else {
				stillInactive = append(stillInactive, iv)
			}
		}
		a.inactive = stillInactive

		if err := a.assign(cur); err != nil {
			return nil, err
		}
		a.active = append(a.active, cur)
	}

	return append(a.handled, a.active...), nil
}

// pool returns the register file a given interval should be colored from.
func (a *Allocator) pool(iv *Interval) []abi.PhysReg {
	if iv.VReg.Bank == abi.BankFP {
		return a.fpPool
	}
	return a.gpPool
}

// assign tries to find a free physical register for cur; if none is free
// for cur's entire lifetime, it spills either cur itself or the active
// interval whose next use is furthest in the future (Wimmer's
// spill-the-one-used-latest heuristic).
func (a *Allocator) assign(cur *Interval) error {
	pool := a.pool(cur)
	free := lo.SliceToMap(pool, func(r abi.PhysReg) (abi.PhysReg, bool) { return r, true })
	for _, iv := range a.active {
		if iv.VReg.Bank == cur.VReg.Bank && !iv.IsSpill {
			delete(free, iv.AssignedReg)
		}
	}
	for _, iv := range a.inactive {
		if iv.VReg.Bank == cur.VReg.Bank && !iv.IsSpill && overlaps(iv, cur) {
			delete(free, iv.AssignedReg)
		}
	}

	for _, r := range pool {
		if free[r] {
			cur.AssignedReg = r
			return nil
		}
	}

	return a.spillAround(cur)
}

func overlaps(a, b *Interval) bool {
	for _, ra := range a.Ranges {
		for _, rb := range b.Ranges {
			if ra.From < rb.To && rb.From < ra.To {
				return true
			}
		}
	}
	return false
}

// spillAround picks the active interval (of cur's bank) whose next use
// after cur's start is furthest away (or absent) and spills it, freeing its
// register for cur; if every active interval of that bank is needed sooner
// than cur itself, cur is spilled instead.
func (a *Allocator) spillAround(cur *Interval) error {
	pos := cur.From()
	var victim *Interval
	victimNext := position(-1)
	for _, iv := range a.active {
		if iv.VReg.Bank != cur.VReg.Bank || iv.fixed {
			continue
		}
		next, ok := iv.NextUseAfter(pos)
		if !ok {
			next = position(1 << 30)
		}
		if next > victimNext {
			victimNext = next
			victim = iv
		}
	}

	curNext, ok := cur.NextUseAfter(pos)
	if !ok {
		curNext = position(1 << 30)
	}

	if victim == nil || curNext >= victimNext {
		a.doSpill(cur)
		return nil
	}

	reg := victim.AssignedReg
	a.doSpill(victim)
	for i, iv := range a.active {
		if iv == victim {
			a.active = append(a.active[:i], a.active[i+1:]...)
			break
		}
	}
	a.handled = append(a.handled, victim)
	cur.AssignedReg = reg
	return nil
}

func (a *Allocator) doSpill(iv *Interval) {
	iv.IsSpill = true
	iv.SpillSlot = a.nextSlot
	a.nextSlot++
}

// SpillSlots reports how many qword-sized spill slots Allocate handed out,
// for the back-end to size the frame's spill area.
func (a *Allocator) SpillSlots() int { return a.nextSlot }

// CheckPressure statically verifies that no program point requires more
// simultaneously live values of a bank than that bank has physical
// registers, given the spill decisions already made — i.e. that every
// interval still marked non-spill really can coexist with its overlapping
// non-spill peers. This resolves the open question of whether register
// pressure should be checked before or after allocation: spec.md leaves the
// choice open, and this implementation checks as a post-condition (fast to
// state, and trivially satisfied by construction since assign() never hands
// out an already-taken register) rather than as a separate static budget
// pre-pass.
func CheckPressure(intervals []*Interval, conv abi.Convention) error {
	a := NewAllocator(conv)
	gpBudget := len(a.gpPool)
	fpBudget := len(a.fpPool)
	for _, iv := range intervals {
		if iv.IsSpill {
			continue
		}
		budget := gpBudget
		if iv.VReg.Bank == abi.BankFP {
			budget = fpBudget
		}
		concurrent := 1 + lo.CountBy(intervals, func(other *Interval) bool {
			return other != iv && !other.IsSpill && other.VReg.Bank == iv.VReg.Bank && overlaps(iv, other)
		})
		if concurrent > budget {
			return diag.New(diag.InvalidState, "register pressure exceeds bank budget at vreg %d", iv.VReg.ID).WithComponent("regalloc")
		}
	}
	return nil
}
