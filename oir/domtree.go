package oir

// DomTree is the dominator relation over a function's block pool, computed
// with y1yang0-falcon's iterative data-flow fixed point (domtree.go) adapted
// from pointer sets to BlockRef sets. O(n^2) is acceptable here: functions
// worth inlining are small by construction (spec.md §4.3's size eligibility
// rule), and this is recomputed on demand rather than kept incrementally
// maintained across edits.
type DomTree struct {
	fn  *Func
	dom map[BlockRef]map[BlockRef]bool
}

// IsDominate reports whether a dominates b (every path from entry to b
// passes through a).
func (dt *DomTree) IsDominate(a, b BlockRef) bool { return dt.dom[b][a] }

// IsStrictDominate reports a sdom b: a dom b and a != b.
func (dt *DomTree) IsStrictDominate(a, b BlockRef) bool { return a != b && dt.IsDominate(a, b) }

// IsImmediateDominate reports a idom b.
func (dt *DomTree) IsImmediateDominate(a, b BlockRef) bool {
	if !dt.IsStrictDominate(a, b) {
		return false
	}
	for c := range dt.dom[b] {
		if c != a && c != b && dt.IsStrictDominate(a, c) && dt.IsStrictDominate(c, b) {
			return false
		}
	}
	return true
}

// BuildDomTree computes the dominator sets for every live block in fn.
func BuildDomTree(fn *Func) *DomTree {
	live := fn.Blocks()
	all := make(map[BlockRef]bool, len(live))
	for _, b := range live {
		all[b] = true
	}

	dom := make(map[BlockRef]map[BlockRef]bool, len(live))
	dom[fn.Entry] = map[BlockRef]bool{fn.Entry: true}
	for _, b := range live {
		if b == fn.Entry {
			continue
		}
		dom[b] = cloneSet(all)
	}

	changed := true
	for changed {
		changed = false
		for _, b := range live {
			if b == fn.Entry {
				continue
			}
			preds := liveBlockRefs(fn, fn.blocks[b].Preds)
			if len(preds) == 0 {
				continue
			}
			newdom := cloneSet(dom[preds[0]])
			for _, p := range preds[1:] {
				newdom = intersectSets(newdom, dom[p])
			}
			newdom[b] = true
			if !setsEqual(newdom, dom[b]) {
				dom[b] = newdom
				changed = true
			}
		}
	}
	return &DomTree{fn: fn, dom: dom}
}

func liveBlockRefs(fn *Func, refs []BlockRef) []BlockRef {
	out := make([]BlockRef, 0, len(refs))
	for _, r := range refs {
		if !fn.blocks[r].dead {
			out = append(out, r)
		}
	}
	return out
}

func cloneSet(s map[BlockRef]bool) map[BlockRef]bool {
	out := make(map[BlockRef]bool, len(s))
	for k, v := range s {
		if v {
			out[k] = true
		}
	}
	return out
}

func intersectSets(a, b map[BlockRef]bool) map[BlockRef]bool {
	out := make(map[BlockRef]bool)
	for k := range a {
		if b[k] {
			out[k] = true
		}
	}
	return out
}

func setsEqual(a, b map[BlockRef]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}

// VerifyDom checks that every definition dominates each of its uses
// (phi incoming values need only dominate the corresponding predecessor),
// the core SSA well-formedness invariant the optimizer and the inliner's
// output must preserve (spec.md §3 invariant 2, §8).
func VerifyDom(fn *Func) error {
	dt := BuildDomTree(fn)
	for _, bref := range fn.Blocks() {
		b := fn.Block(bref)
		for _, iref := range b.Instrs {
			in := fn.Instr(iref)
			for _, use := range in.Uses {
				useInstr := fn.Instr(use)
				if useInstr.Op == OpPhi {
					p := fn.Phi(useInstr.AuxPhi)
					for _, edge := range p.Incoming {
						if edge.Value != iref {
							continue
						}
						if !dt.IsDominate(in.Block, edge.Pred) {
							return domError(iref, in.Block, use, edge.Pred)
						}
					}
					continue
				}
				if !dt.IsDominate(in.Block, useInstr.Block) {
					return domError(iref, in.Block, use, useInstr.Block)
				}
			}
		}
	}
	return nil
}

func domError(def InstrRef, defBlock BlockRef, use InstrRef, useBlock BlockRef) error {
	return blockDomErr{def, defBlock, use, useBlock}
}

type blockDomErr struct {
	def      InstrRef
	defBlock BlockRef
	use      InstrRef
	useBlock BlockRef
}

func (e blockDomErr) Error() string {
	return "definition does not dominate its use"
}
