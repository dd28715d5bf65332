package regalloc

import "occ/asmcmp"

// BuildIntervals walks prog in program order (AsmCmp is already
// linearized — unlike oir's CFG, by C5 every block has been serialized into
// one straight-line instruction stream with explicit jumps) and produces one
// Interval per virtual register referenced.
//
// A full global allocator would compute per-block live-in/live-out sets
// (y1yang0-falcon's GenKill/LiveInOut) and extend ranges across block
// boundaries via the CFG; this builder takes the simpler and still-correct
// approach of treating the linear instruction order as the sole liveness
// axis, extending each register's live range from its first def to its last
// use or redefinition discovered by a straight scan. This is conservative — it can keep a
// register "live" through code it does not reach along every path — but
// never under-estimates liveness, which is the soundness property linear
// scan depends on.
func BuildIntervals(prog *asmcmp.Program) []*Interval {
	byReg := map[int]*Interval{}
	var order []int

	pos := position(0)
	prog.Each(func(ref asmcmp.InstrRef, in *asmcmp.Instr) {
		touch := func(a asmcmp.Arg, class asmcmp.OperandClass, isDef bool) {
			vr, ok := a.(asmcmp.ArgVReg)
			if !ok {
				return
			}
			iv, exists := byReg[vr.Reg.ID]
			if !exists {
				iv = &Interval{VReg: vr.Reg}
				byReg[vr.Reg.ID] = iv
				order = append(order, vr.Reg.ID)
			}
			p := pos
			if isDef && len(iv.Ranges) == 0 {
				iv.addRange(p, p+1)
			} else {
				iv.addRange(iv.firstDefOr(p), p+1)
			}
			iv.Uses = append(iv.Uses, UsePoint{Pos: p, Class: class})
		}

		dstClass, srcClass := asmcmp.OperandClasses(in.Op)
		if in.Dst != nil {
			touch(in.Dst, dstClass, true)
		}
		if in.Src != nil {
			touch(in.Src, srcClass, false)
		}
		for _, v := range in.CallArgs {
			touch(asmcmp.ArgVReg{Reg: v}, asmcmp.ClassRegOrMem, false)
		}
		pos += 2
	})

	out := make([]*Interval, 0, len(order))
	for _, id := range order {
		out = append(out, byReg[id])
	}
	return out
}

// firstDefOr returns the interval's earliest known range start, or fallback
// if it has none yet (a use preceding any recorded def — e.g. a value
// defined by an earlier pass stage not visible to this scan, such as an
// incoming function argument).
func (iv *Interval) firstDefOr(fallback position) position {
	if len(iv.Ranges) == 0 {
		return fallback
	}
	return iv.Ranges[0].From
}
