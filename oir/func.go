package oir

import "occ/ir"

// InstrRef addresses an instruction in a function's instruction pool. The
// zero value is never a valid reference; pool index 0 is reserved as a
// sentinel (spec.md §3's invariant that InstrRef 0 never denotes a live
// instruction).
type InstrRef int

const NoInstr InstrRef = 0

// BlockRef addresses a block in a function's block pool.
type BlockRef int

const NoBlock BlockRef = -1

// PhiRef addresses an entry in a function's phi-node pool.
type PhiRef int

// CallRef addresses an entry in a function's call-node pool.
type CallRef int

// AsmRef addresses an entry in a function's inline-asm-node pool.
type AsmRef int

// Instr is one SSA instruction. Exactly one of the Aux* fields is
// meaningful, selected by Op.
type Instr struct {
	Op    Opcode
	Type  ir.TypeRef
	Block BlockRef
	Args  []InstrRef
	Uses  []InstrRef

	AuxInt    int64
	AuxBigInt ir.BigIntId
	AuxSymbol int // ir.Module.InternSymbol index
	AuxPhi    PhiRef
	AuxCall   CallRef
	AuxAsm    AsmRef

	DebugPos ir.DebugEntryId

	dead bool
}

// PhiEdge pairs a predecessor block with the value flowing in from it.
type PhiEdge struct {
	Pred  BlockRef
	Value InstrRef
}

// Phi is a block-entry merge point, stored out of line from the instruction
// pool because its incoming-edge count varies with predecessor count and
// changes across CFG edits (block splitting, inlining) without needing to
// relocate the Instr that references it.
type Phi struct {
	Block    BlockRef
	Type     ir.TypeRef
	Self     InstrRef // the Instr (Op==OpPhi) that owns this phi
	Incoming []PhiEdge
}

// CallNode carries a call's extended metadata: the callee symbol (or an
// indirect callee InstrRef, if Indirect), its argument list and ABI-relevant
// flags consumed by lowering and devirtualization.
type CallNode struct {
	Callee       int // ir.Module.InternSymbol index; ignored if Indirect
	Indirect     InstrRef
	IsIndirect   bool
	Args         []InstrRef
	ReturnsTwice bool
	Vararg       bool
	FixedArgs    int // count of named (non-vararg) arguments, when Vararg
}

// AsmNode carries an inline-assembly instruction's template and operand
// bindings. Kept as a distinct pool (rather than Instr fields) because its
// shape — a text template plus named operand classes — has nothing in
// common with ordinary arithmetic/call instructions.
type AsmNode struct {
	Template string
	Inputs   []InstrRef
	Outputs  int // number of result values the template produces
	Clobbers []string
}

// BlockKind mirrors y1yang0-falcon's classification of a block's terminator
// shape, extended with Switch and Unreachable (spec.md's control-flow
// opcodes).
type BlockKind int

const (
	BlockGoto BlockKind = iota
	BlockIf
	BlockSwitch
	BlockReturn
	BlockUnreachable
	BlockDead
)

// SwitchCase pairs a case constant with its target block, for BlockSwitch.
type SwitchCase struct {
	Value int64
	Dest  BlockRef
}

// Block is a straight-line control-list of instruction references with
// explicit predecessor/successor edges.
type Block struct {
	Kind    BlockKind
	Instrs  []InstrRef // the control list, in program order
	Phis    []PhiRef
	Preds   []BlockRef
	Succs   []BlockRef
	Ctrl    InstrRef // the terminator's condition/value, or NoInstr
	Cases   []SwitchCase

	// PublicLabel mirrors ir.IrBlock.PublicLabel: non-empty when this block
	// answers to an externally-referenced label, pinning it against
	// duplication by inlining.
	PublicLabel string

	dead bool
}

// Func is C2: the SSA-form container for one function body, the unit the
// optimizer's passes (C3), the lowering layer (C4) and the back-end (C5-C9)
// operate over.
type Func struct {
	Name   string
	Decl   ir.FunctionDecl
	Module *ir.IrModule

	blocks []Block
	instrs []Instr
	phis   []Phi
	calls  []CallNode
	asms   []AsmNode

	Entry BlockRef

	// NumInlines tracks how many call sites have been inlined into this
	// function, enforcing the per-function inline budget (spec.md §4.3's
	// eligibility rule d).
	NumInlines int

	DebugRoot ir.DebugEntryId
}

// NewFunc creates an empty function with a single empty entry block. Index 0
// of the instruction pool is reserved as the NoInstr sentinel.
func NewFunc(name string, decl ir.FunctionDecl, mod *ir.IrModule) *Func {
	f := &Func{Name: name, Decl: decl, Module: mod}
	f.instrs = make([]Instr, 1) // reserve index 0
	f.Entry = f.NewBlock(BlockReturn)
	return f
}

func (f *Func) NewBlock(kind BlockKind) BlockRef {
	id := BlockRef(len(f.blocks))
	f.blocks = append(f.blocks, Block{Kind: kind, Ctrl: NoInstr})
	return id
}

func (f *Func) Block(r BlockRef) *Block { return &f.blocks[r] }

func (f *Func) Blocks() []BlockRef {
	out := make([]BlockRef, 0, len(f.blocks))
	for i, b := range f.blocks {
		if !b.dead {
			out = append(out, BlockRef(i))
		}
	}
	return out
}

func (f *Func) NumBlocks() int { return len(f.blocks) }

func (f *Func) Instr(r InstrRef) *Instr { return &f.instrs[r] }

func (f *Func) NumInstrs() int { return len(f.instrs) }

// Phi resolves a phi reference.
func (f *Func) Phi(r PhiRef) *Phi { return &f.phis[r] }

func (f *Func) Call(r CallRef) *CallNode { return &f.calls[r] }

func (f *Func) Asm(r AsmRef) *AsmNode { return &f.asms[r] }

// MarkBlockDead excludes a block from future Blocks() traversals, used when
// simplify-CFG merges it into a predecessor.
func (f *Func) MarkBlockDead(r BlockRef) {
	f.blocks[r].dead = true
	f.blocks[r].Kind = BlockDead
}

// WireEdge records a predecessor/successor relationship between two blocks.
func (f *Func) WireEdge(from, to BlockRef) {
	f.blocks[from].Succs = append(f.blocks[from].Succs, to)
	f.blocks[to].Preds = append(f.blocks[to].Preds, from)
}

// UnwireEdge removes a predecessor/successor relationship, used by
// simplify-CFG and the inliner when retargeting branches.
func (f *Func) UnwireEdge(from, to BlockRef) {
	f.blocks[from].Succs = removeBlockRef(f.blocks[from].Succs, to)
	f.blocks[to].Preds = removeBlockRef(f.blocks[to].Preds, from)
}

func removeBlockRef(s []BlockRef, v BlockRef) []BlockRef {
	for i, x := range s {
		if x == v {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}
