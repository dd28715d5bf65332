package ir

// Opcode enumerates the pre-SSA instruction set a front-end emits into an
// IrFunctionBody. It is deliberately smaller than the optimizer's own opcode
// set (oir.Opcode). Control flow is already explicit (branches name their
// successor blocks through Targets) and merges arrive as OpPhiPlaceholder
// instructions; oir.Translate copies a function body into an oir.Func,
// turning each placeholder into a phi (spec.md §3, "an external translator").
type Opcode int

const (
	OpNop Opcode = iota
	OpIntConst
	OpBigIntConst
	OpFloatConst
	OpStringLiteral
	OpGetLocal
	OpSetLocal
	OpGetGlobal
	OpSetGlobal
	OpLoad
	OpStore
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpNeg
	OpNot
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr
	OpCmpEq
	OpCmpNe
	OpCmpLt
	OpCmpLe
	OpCmpGt
	OpCmpGe
	OpCast
	OpCall
	OpReturn
	OpBranch
	OpCondBranch
	OpPhiPlaceholder // resolved into an oir Phi by the translator
)

// InstrId addresses an instruction within an IrBlock's instruction list.
type InstrId int

// IrInstr is one pre-SSA instruction. Operands name either a prior
// instruction within the same block (by index) or a cross-block value via a
// front-end-assigned local id — the translator resolves both into oir
// InstrRefs as it builds the SSA form.
type IrInstr struct {
	Op       Opcode
	Type     TypeRef
	Operands []InstrId
	Int      int64
	BigInt   BigIntId
	Symbol   int // InternSymbol index, for OpGetGlobal/OpSetGlobal/OpCall callee name
	Targets  []int
	DebugPos DebugEntryId
}

// IrBlock is a straight-line instruction sequence with explicit successor
// labels (by index into IrFunctionBody.Blocks), not yet the block-argument /
// control-list shape the optimizer's CFG uses.
type IrBlock struct {
	Instrs []IrInstr

	// PublicLabel names this block's externally-referenced label (e.g. a
	// computed-goto target whose address escapes via &&label), if any. A
	// block with a non-empty PublicLabel is pinned: the optimizer must not
	// duplicate it, since inlining would otherwise produce two blocks
	// answering to the same label (spec.md §3, "Block public label").
	PublicLabel string
}

// IrFunctionBody is the front-end's pre-SSA representation of one function
// definition, consumed by oir's builder to produce an OirFunction.
type IrFunctionBody struct {
	Blocks     []IrBlock
	EntryBlock int
	NumLocals  int
	DebugRoot  DebugEntryId
}

// NewFunctionBody creates an empty body with a single empty entry block.
func NewFunctionBody() *IrFunctionBody {
	return &IrFunctionBody{Blocks: []IrBlock{{}}, EntryBlock: 0}
}

// AppendBlock adds a new empty block and returns its index.
func (b *IrFunctionBody) AppendBlock() int {
	b.Blocks = append(b.Blocks, IrBlock{})
	return len(b.Blocks) - 1
}

// Append appends an instruction to the given block and returns its id.
func (b *IrFunctionBody) Append(block int, instr IrInstr) InstrId {
	b.Blocks[block].Instrs = append(b.Blocks[block].Instrs, instr)
	return InstrId(len(b.Blocks[block].Instrs) - 1)
}
