// Package lower implements C4: rewriting wide/non-native primitives
// (arbitrary-width _BitInt, long double, complex numbers, varargs) into
// machine-level shapes, and lowering the resulting oir.Func into an
// asmcmp.Program. Grounded on y1yang0-falcon's compile/codegen/lower_x86.go
// (resolvePhi, lowerCompare, lowerArithmetic, lowerCall, lowerConst,
// lowerBlockControl, the top-level Lower(fn) entry point), generalized from
// a fixed scalar type set to the opcode-specific rewrite tables
// SPEC_FULL.md §4 supplements from kefir's lowering.c/vararg.c/
// long_double_ops.c.
package lower

import (
	"occ/abi"
	"occ/asmcmp"
	"occ/ir"
	"occ/oir"
)

// Lowerer holds the state threaded through one function's lowering: the
// virtual-register each SSA value maps to, the block-label each oir block
// maps to, and the module for type/bigint lookups.
type Lowerer struct {
	mod   *ir.IrModule
	fn    *oir.Func
	prog  *asmcmp.Program
	conv  abi.Convention

	valueReg map[oir.InstrRef]asmcmp.VReg
	blockLbl map[oir.BlockRef]asmcmp.Label

	// defPos/lastUse record each oir value's definition position and its
	// furthest-reaching use position, in the same block-then-control-list
	// order Lower walks (so they match the straight-line order the emitted
	// asmcmp stream ends up in). lowerCall consults them to find values that
	// live across a call and need a register stash.
	defPos  map[oir.InstrRef]int
	lastUse map[oir.InstrRef]int
}

// New creates a lowerer for fn.
func New(mod *ir.IrModule, fn *oir.Func, conv abi.Convention) *Lowerer {
	return &Lowerer{
		mod:      mod,
		fn:       fn,
		prog:     asmcmp.NewProgram(),
		conv:     conv,
		valueReg: make(map[oir.InstrRef]asmcmp.VReg),
		blockLbl: make(map[oir.BlockRef]asmcmp.Label),
	}
}

// Lower runs C4's two phases — first rewriting wide-primitive opcodes in
// place on the SSA function (so later phases only ever see native shapes),
// then walking the resulting blocks in layout order to emit an AsmCmp
// program — and returns the finished Program.
func (lw *Lowerer) Lower() *asmcmp.Program {
	lw.rewriteWidePrimitives()
	lw.allocateLabels()
	lw.computeLiveness()
	for _, bref := range lw.fn.Blocks() {
		lw.lowerBlock(bref)
	}
	return lw.prog
}

// computeLiveness assigns every oir value a definition position and its
// furthest-reaching use position, walking blocks in fn.Blocks() order (the
// same order lowerBlock consumes them in, so position order here matches
// final program order) — regalloc/liveness.go's BuildIntervals later
// re-derives the same kind of first-def-to-last-use range from the emitted
// asmcmp stream; this is that same approximation one layer up, over oir
// values instead of vregs, so lowerCall can tell which values survive past a
// call before any vreg or physical register even exists yet.
func (lw *Lowerer) computeLiveness() {
	lw.defPos = make(map[oir.InstrRef]int)
	lw.lastUse = make(map[oir.InstrRef]int)

	blocks := lw.fn.Blocks()
	blockEnd := make(map[oir.BlockRef]int, len(blocks))
	pos := 0
	for _, bref := range blocks {
		pos += len(lw.fn.Block(bref).Instrs)
		blockEnd[bref] = pos
	}

	touch := func(ref oir.InstrRef, p int) {
		if ref == oir.NoInstr {
			return
		}
		if _, ok := lw.defPos[ref]; !ok {
			lw.defPos[ref] = p
		}
		if p > lw.lastUse[ref] {
			lw.lastUse[ref] = p
		}
	}

	pos = 0
	for _, bref := range blocks {
		b := lw.fn.Block(bref)
		for _, pref := range b.Phis {
			ph := lw.fn.Phi(pref)
			touch(ph.Self, pos)
			for _, e := range ph.Incoming {
				// the edge's value is really consumed at the end of its
				// predecessor block (see resolvePhi), which may lie after
				// this block in program order across a loop back-edge —
				// blockEnd was precomputed for every block up front so that
				// case still resolves correctly.
				touch(e.Value, blockEnd[e.Pred]-1)
			}
		}
		for _, iref := range b.Instrs {
			in := lw.fn.Instr(iref)
			touch(iref, pos)
			for _, a := range in.Args {
				touch(a, pos)
			}
			pos++
		}
	}
}

// liveAcrossCall reports the vregs already materialized for oir values that
// are defined strictly before callRef and still used strictly after it —
// the values a call's caller-saved register clobbers would otherwise
// silently corrupt.
func (lw *Lowerer) liveAcrossCall(callRef oir.InstrRef) []asmcmp.VReg {
	callPos, ok := lw.defPos[callRef]
	if !ok {
		return nil
	}
	var live []asmcmp.VReg
	seen := make(map[int]bool)
	for i := 1; i < lw.fn.NumInstrs(); i++ {
		iref := oir.InstrRef(i)
		if iref == callRef {
			continue
		}
		def, ok := lw.defPos[iref]
		if !ok || def >= callPos || lw.lastUse[iref] <= callPos {
			continue
		}
		r, ok := lw.valueReg[iref]
		if !ok || (r.Kind != asmcmp.VRegGP && r.Kind != asmcmp.VRegFP) {
			continue
		}
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		live = append(live, r)
	}
	return live
}

func (lw *Lowerer) allocateLabels() {
	for _, bref := range lw.fn.Blocks() {
		lw.blockLbl[bref] = lw.prog.NewLabel()
	}
}

// BlockLabel resolves the asmcmp label a given oir block lowered to, for
// callers (the DWARF emitter's low_pc/high_pc resolution) that need to
// correlate debug-entry code ranges back to emitted labels after Lower has
// run.
func (lw *Lowerer) BlockLabel(bref oir.BlockRef) (asmcmp.Label, bool) {
	l, ok := lw.blockLbl[bref]
	return l, ok
}

// EntryBlock reports the function's entry block reference.
func (lw *Lowerer) EntryBlock() oir.BlockRef { return lw.fn.Entry }

func (lw *Lowerer) regFor(ref oir.InstrRef) asmcmp.VReg {
	if r, ok := lw.valueReg[ref]; ok {
		return r
	}
	in := lw.fn.Instr(ref)
	kind, bank, width := shapeOf(lw.mod, in.Type)
	r := lw.prog.NewVReg(kind, bank, width)
	lw.valueReg[ref] = r
	return r
}

// shapeOf maps an oir value's declared type to the vreg kind/bank/width it
// should be materialized in: i8/16/32/64 and pointer-width words in a GP
// vreg, f32/f64 in an FP vreg, a long double in a 10-byte spill-space vreg
// on the x87 bank, and a bitint wider than 64 bits in a 16-byte GP pair.
func shapeOf(mod *ir.IrModule, ref ir.TypeRef) (asmcmp.VRegKind, abi.Bank, int) {
	t, err := mod.GetType(ref.Type)
	if err != nil {
		return asmcmp.VRegGP, abi.BankGP, 8
	}
	if t.IsLongDouble() {
		return asmcmp.VRegSpillSpace, abi.BankX87, 10
	}
	if t.IsFloat() {
		head := t.Head()
		width := 8
		if head.Kind == ir.KindF32 {
			width = 4
		}
		return asmcmp.VRegFP, abi.BankFP, width
	}
	if width, ok := t.IsBitInt(); ok && width > 64 {
		return asmcmp.VRegPair, abi.BankGP, 16
	}
	return asmcmp.VRegGP, abi.BankGP, nativeWidth(t)
}

func nativeWidth(t *ir.IrType) int {
	switch t.Head().Kind {
	case ir.KindI8, ir.KindBool, ir.KindChar:
		return 1
	case ir.KindI16, ir.KindShort:
		return 2
	case ir.KindI32, ir.KindInt:
		return 4
	default:
		return 8
	}
}
