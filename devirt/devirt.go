// Package devirt implements C7: devirtualization, the pass that rewrites an
// asmcmp.Program's virtual operands into the physical form the allocator
// (C6) decided on — a physical register, a spill-area memory operand, or (for
// VRegMemPointer vregs) a folded address computation — and realizes every
// stash the allocator or this pass itself needs along the way.
//
// Grounded on y1yang0-falcon's compile/codegen/lsra_moveResolver.go (parallel
// move resolution around a merge edge, including its cycle-breaking
// temporary) and compile/codegen/asm_x86.go's GetScratchReg/loadToScratchReg
// pattern (a fixed caller-save scratch register absorbs the load when an
// operand can't be used directly) — but, like regalloc, completed rather
// than copied: y1yang0-falcon's resolver is full of literal "TODO" operand
// placeholders and never actually runs.
package devirt

import (
	"github.com/samber/lo"

	"occ/abi"
	"occ/asmcmp"
	"occ/diag"
	"occ/regalloc"
)

// Devirtualizer rewrites one Program's virtual operands in place.
type Devirtualizer struct {
	prog  *asmcmp.Program
	conv  abi.Convention
	byReg map[int]*regalloc.Interval

	// scratchGP/scratchFP are caller-save registers reserved for
	// materializing a spilled operand that an instruction's operand class
	// forbids leaving in memory (ClassRegOnly). Matches y1yang0-falcon's
	// single-scratch-register approach (R10/XMM15) rather than a general
	// free-register search — devirtualization runs after allocation, so no
	// register can be assumed free except one never handed out to begin
	// with.
	scratchGP abi.PhysReg
	scratchFP abi.PhysReg

	frameBase abi.PhysReg

	// numSpillSlots is one past the highest regular spill slot index in use,
	// so stash save areas (stashSlot) can be carved out of the frame below
	// the regular spill area without colliding with it.
	numSpillSlots int
}

// New builds a Devirtualizer over prog given the intervals regalloc
// assigned. scratchGP/scratchFP must be registers the allocator was
// configured to never hand out.
func New(prog *asmcmp.Program, conv abi.Convention, intervals []*regalloc.Interval, scratchGP, scratchFP abi.PhysReg) *Devirtualizer {
	byReg := make(map[int]*regalloc.Interval, len(intervals))
	numSpillSlots := 0
	for _, iv := range intervals {
		byReg[iv.VReg.ID] = iv
		if iv.IsSpill && iv.SpillSlot+1 > numSpillSlots {
			numSpillSlots = iv.SpillSlot + 1
		}
	}
	return &Devirtualizer{prog: prog, conv: conv, byReg: byReg, scratchGP: scratchGP, scratchFP: scratchFP, frameBase: abi.RBP, numSpillSlots: numSpillSlots}
}

// Run rewrites every instruction's operands, splicing a load-to-scratch (or
// store-from-scratch) instruction around a spilled operand an instruction's
// operand class forces into a register, and returns an error if a vreg has
// no recorded allocation (an internal-consistency failure between C6 and
// C7, never a user-triggerable condition).
func (d *Devirtualizer) Run() error {
	var refs []asmcmp.InstrRef
	d.prog.Each(func(r asmcmp.InstrRef, in *asmcmp.Instr) { refs = append(refs, r) })

	for _, r := range refs {
		in := d.prog.Instr(r)
		if in.Op == asmcmp.OpStashSave || in.Op == asmcmp.OpStashRestore {
			if err := d.realizeStash(r, in); err != nil {
				return err
			}
			continue
		}
		dstClass, srcClass := asmcmp.OperandClasses(in.Op)
		if err := d.realize(r, in, true, dstClass); err != nil {
			return err
		}
		if err := d.realize(r, in, false, srcClass); err != nil {
			return err
		}
		for _, v := range in.CallArgs {
			if iv, ok := d.byReg[v.ID]; ok && !iv.IsSpill {
				// Call argument vregs resolve to their physical register
				// implicitly at lowering time (they were already placed in
				// their ABI slot); nothing to rewrite here, but a spilled
				// call argument is a lowering bug — catch it rather than
				// silently emitting garbage.
				continue
			} else if !ok {
				return diag.New(diag.InvalidState, "devirt: call argument vreg %d has no allocation", v.ID).WithComponent("devirt")
			}
			return diag.New(diag.InvalidState, "devirt: call argument vreg %d is spilled", v.ID).WithComponent("devirt")
		}
	}
	return nil
}

// realize rewrites one operand slot (Dst if isDst, else Src) from its
// virtual form to its final form.
func (d *Devirtualizer) realize(r asmcmp.InstrRef, in *asmcmp.Instr, isDst bool, class asmcmp.OperandClass) error {
	var slot *asmcmp.Arg
	if isDst {
		slot = &in.Dst
	} else {
		slot = &in.Src
	}
	vr, ok := (*slot).(asmcmp.ArgVReg)
	if !ok {
		return nil
	}

	iv, known := d.byReg[vr.Reg.ID]
	if !known {
		return diag.New(diag.InvalidState, "devirt: no allocation recorded for vreg %d", vr.Reg.ID).WithComponent("devirt")
	}

	if !iv.IsSpill {
		*slot = asmcmp.ArgPhys{Reg: iv.AssignedReg}
		return nil
	}

	if class == asmcmp.ClassRegOrMem || class == asmcmp.ClassAny {
		*slot = d.spillMem(iv)
		return nil
	}

	scratch := d.scratchGP
	if vr.Reg.Bank == abi.BankFP {
		scratch = d.scratchFP
	}
	if isDst {
		*slot = asmcmp.ArgPhys{Reg: scratch}
		d.prog.InsertAfter(r, asmcmp.Instr{Op: asmcmp.OpMov, Dst: d.spillMem(iv), Src: asmcmp.ArgPhys{Reg: scratch}})
		return nil
	}
	d.prog.InsertBefore(r, asmcmp.Instr{Op: asmcmp.OpMov, Dst: asmcmp.ArgPhys{Reg: scratch}, Src: d.spillMem(iv)})
	*slot = asmcmp.ArgPhys{Reg: scratch}
	return nil
}

// spillMem maps a spill slot index to a frame-relative address below the
// saved frame pointer, eightbyte-aligned, one slot per index — the layout
// the prologue's stack-frame size computation must agree with.
func (d *Devirtualizer) spillMem(iv *regalloc.Interval) asmcmp.ArgPhysMem {
	return asmcmp.ArgPhysMem{Base: d.frameBase, Disp: int64(-(iv.SpillSlot + 1) * 8)}
}

// stashSlot maps a StashRef to a frame-relative address below the regular
// spill area (numSpillSlots), one slot per stash, disjoint from it.
func (d *Devirtualizer) stashSlot(ref asmcmp.StashRef) asmcmp.ArgPhysMem {
	return asmcmp.ArgPhysMem{Base: d.frameBase, Disp: -int64(d.numSpillSlots+int(ref)+1) * 8}
}

// realizeStash resolves one OpStashSave/OpStashRestore pseudo-op (lowerCall's
// lower/codegen.go wraps every value live across a call in such a pair,
// before it's known which physical register, if any, the value ends up in)
// now that allocation has run: a value the allocator spilled, or assigned a
// callee-saved register, already survives the call on its own and the
// pseudo-op is simply dropped; a value in a caller-saved register needs a
// real save or restore against its stash slot.
func (d *Devirtualizer) realizeStash(r asmcmp.InstrRef, in *asmcmp.Instr) error {
	stashImm, ok := in.Dst.(asmcmp.ArgImm)
	if !ok {
		return diag.New(diag.InvalidState, "devirt: malformed stash pseudo-op at %d", r).WithComponent("devirt")
	}
	ref := asmcmp.StashRef(stashImm.Value)
	stash := d.prog.GetStash(ref)

	iv, known := d.byReg[stash.Reg.ID]
	if !known {
		return diag.New(diag.InvalidState, "devirt: no allocation recorded for stashed vreg %d", stash.Reg.ID).WithComponent("devirt")
	}

	if iv.IsSpill || !d.isCallerSaved(iv.AssignedReg) {
		d.prog.Remove(r)
		return nil
	}

	op := asmcmp.OpMov
	if stash.Reg.Bank == abi.BankFP {
		op = asmcmp.OpMovF
	}
	slot := d.stashSlot(ref)
	phys := asmcmp.ArgPhys{Reg: iv.AssignedReg}
	if in.Op == asmcmp.OpStashSave {
		in.Op, in.Dst, in.Src = op, slot, phys
	} else {
		in.Op, in.Dst, in.Src = op, phys, slot
	}
	return nil
}

// isCallerSaved reports whether reg is clobbered by an ordinary call under
// conv — every SSE register is (the System V ABI reserves none of them
// across a call), so only the GP bank needs a table lookup.
func (d *Devirtualizer) isCallerSaved(reg abi.PhysReg) bool {
	if reg.Bank == abi.BankFP {
		return true
	}
	return lo.Contains(abi.CallerSaveGP(d.conv), reg)
}
