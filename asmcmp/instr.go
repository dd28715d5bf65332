package asmcmp

// InstrRef addresses a node in a Program's doubly-linked instruction list.
// 0 is reserved as the sentinel meaning "no instruction" (list head/tail
// boundary), matching oir's InstrRef convention.
type InstrRef int

const NoInstr InstrRef = 0

// Instr is one AsmCmp instruction, linked into program order via Prev/Next
// rather than addressed by position — devirtualization splices stash
// save/restore instructions around a use without touching any reference
// held elsewhere (spec.md §5).
type Instr struct {
	Op   AsmOp
	Dst  Arg
	Src  Arg
	Cond CondCode

	// Call-specific: populated when Op==OpCall/OpCallIndirect.
	CallTarget string
	CallArgs   []VReg

	// Label position, populated when Op==OpLabel.
	L Label

	// Asm template, populated when Op==OpInlineAsm.
	AsmTemplate string

	Prev, Next InstrRef

	dead bool
}

// Program is a function's AsmCmp instruction stream: the doubly-linked
// instruction pool, its virtual-register/label/stash namespaces.
type Program struct {
	instrs []Instr
	head   InstrRef
	tail   InstrRef

	nextVReg int
	nextLbl  int

	stashes []Stash
}

// NewProgram creates an empty instruction stream.
func NewProgram() *Program {
	p := &Program{instrs: make([]Instr, 1)} // reserve index 0 as sentinel
	p.head = NoInstr
	p.tail = NoInstr
	return p
}

func (p *Program) Instr(r InstrRef) *Instr { return &p.instrs[r] }

func (p *Program) Head() InstrRef { return p.head }
func (p *Program) Tail() InstrRef { return p.tail }

