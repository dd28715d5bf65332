// Package regalloc implements C6: a Wimmer-style linear-scan register
// allocator over an asmcmp.Program. Grounded on y1yang0-falcon's
// compile/codegen/lsra.go (Interval/Range/UsePoint shapes, active/
// inactive/handled interval sets), but completed rather than copied:
// compile/codegen/lsra.go's allocator stops short of a working
// implementation (most of its allocation loop is commented out and the file
// ends in os.Exit(1)) — this package implements the algorithm its comments
// describe rather than its partial code.
package regalloc

import (
	"sort"

	"occ/abi"
	"occ/asmcmp"
)

// position is a linearized program point: 2*instructionIndex, with odd
// positions (2*i+1) denoting "after instruction i" so a def and a use at
// the same instruction can still be ordered.
type position int

// Range is a contiguous live range [From, To) in linearized positions.
type Range struct {
	From, To position
}

// UsePoint records one use of an interval's value, with the operand class
// the allocator must satisfy there (spec.md §5's operand-class-driven
// model: a ClassRegOnly use forces the value out of memory first).
type UsePoint struct {
	Pos   position
	Class asmcmp.OperandClass
}

// Interval is one virtual register's liveness, expressed as a sorted,
// disjoint list of ranges plus the use points within them.
type Interval struct {
	VReg   asmcmp.VReg
	Ranges []Range
	Uses   []UsePoint

	// Assigned is set once the allocator has decided this interval's
	// storage: either a physical register (AssignedReg, IsSpill == false)
	// or a spill-area slot index (SpillSlot, IsSpill == true).
	AssignedReg abi.PhysReg
	IsSpill     bool
	SpillSlot   int

	// fixed marks a short, pre-colored interval inserted for a call's
	// argument/return register or a temporary acquired by devirtualization;
	// fixed intervals are never themselves spilled, only forced others to
	// spill around them.
	fixed bool
}

func (iv *Interval) From() position { return iv.Ranges[0].From }
func (iv *Interval) To() position   { return iv.Ranges[len(iv.Ranges)-1].To }

func (iv *Interval) CoversPos(p position) bool {
	for _, r := range iv.Ranges {
		if p >= r.From && p < r.To {
			return true
		}
	}
	return false
}

func (iv *Interval) addRange(from, to position) {
	iv.Ranges = append(iv.Ranges, Range{From: from, To: to})
	sort.Slice(iv.Ranges, func(i, j int) bool { return iv.Ranges[i].From < iv.Ranges[j].From })
	iv.Ranges = mergeRanges(iv.Ranges)
}

func mergeRanges(rs []Range) []Range {
	if len(rs) <= 1 {
		return rs
	}
	out := rs[:1]
	for _, r := range rs[1:] {
		last := &out[len(out)-1]
		if r.From <= last.To {
			if r.To > last.To {
				last.To = r.To
			}
			continue
		}
		out = append(out, r)
	}
	return out
}

// NextUseAfter returns the position of the first use at or after p, and
// true if one exists — used to pick which active interval to spill (always
// spill the one whose next use is furthest away).
func (iv *Interval) NextUseAfter(p position) (position, bool) {
	best := position(-1)
	found := false
	for _, u := range iv.Uses {
		if u.Pos >= p && (!found || u.Pos < best) {
			best = u.Pos
			found = true
		}
	}
	return best, found
}
