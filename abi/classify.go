package abi

import "occ/ir"

// Class is a System V AMD64 eightbyte class (AMD64 ABI §3.2.3), restricted
// to the classes this compiler needs to distinguish: whether an eightbyte
// travels in a general-purpose register, an SSE register, or memory.
type Class int

const (
	ClassInteger Class = iota
	ClassSSE
	ClassMemory
	ClassX87 // long double occupies the x87 stack, never classified eightbyte-wise
	ClassNone
)

// Location describes where one function argument or return value lives.
type Location struct {
	// Classes holds one entry per eightbyte (1 or 2 entries for a register
	// candidate, unused for ClassMemory).
	Classes []Class
	// Regs holds the concrete registers assigned, parallel to Classes; it
	// is empty when InMemory.
	Regs []PhysReg
	// InMemory is true when the value is passed/returned on the stack
	// (aggregate exceeded two eightbytes, or argument registers of the
	// needed bank were exhausted).
	InMemory bool
	// StackOffset is meaningful only when InMemory.
	StackOffset int
}

// Classifier assigns the System V AMD64 eightbyte classes and concrete
// registers to a function's parameters and return value, consuming the
// INTEGER/SSE/MEMORY bank counters as it goes — the supplemented detail
// spec.md's "ABI" mention left to the back-end to work out.
type Classifier struct {
	conv      Convention
	intUsed   int
	sseUsed   int
	stackOff  int
}

func NewClassifier(conv Convention) *Classifier {
	return &Classifier{conv: conv}
}

// ClassifyParam classifies one parameter type in declaration order.
func (c *Classifier) ClassifyParam(mod *ir.IrModule, ref ir.TypeRef) Location {
	t, err := mod.GetType(ref.Type)
	if err != nil {
		return Location{InMemory: true}
	}
	classes := classifyType(mod, t)
	if len(classes) == 0 {
		return Location{InMemory: true}
	}
	return c.allocate(classes)
}

// ClassifyReturn classifies a function's return type. The System V ABI
// reuses the same eightbyte rules for returns as for arguments, except
// register exhaustion falls back to a hidden pointer rather than the stack
// (spec.md's ambient-stack "caller allocates return memory, passes its
// address in RDI" convention for large aggregates) — callers of
// ClassifyReturn treat InMemory specially for that reason.
func (c *Classifier) ClassifyReturn(mod *ir.IrModule, ref ir.TypeRef) Location {
	t, err := mod.GetType(ref.Type)
	if err != nil {
		return Location{InMemory: true}
	}
	classes := classifyType(mod, t)
	if len(classes) == 0 || len(classes) > 2 {
		return Location{InMemory: true}
	}
	regs := make([]PhysReg, 0, len(classes))
	intIdx, sseIdx := 0, 0
	for _, cl := range classes {
		switch cl {
		case ClassInteger:
			if intIdx == 0 {
				regs = append(regs, ReturnReg(BankGP))
			} else {
				regs = append(regs, RDX)
			}
			intIdx++
		case ClassSSE:
			if sseIdx == 0 {
				regs = append(regs, ReturnReg(BankFP))
			} else {
				regs = append(regs, SecondReturnReg(BankFP))
			}
			sseIdx++
		}
	}
	return Location{Classes: classes, Regs: regs}
}

func (c *Classifier) allocate(classes []Class) Location {
	if len(classes) > 2 {
		return c.spill(classes)
	}
	needInt, needSSE := 0, 0
	for _, cl := range classes {
		if cl == ClassInteger {
			needInt++
		} else if cl == ClassSSE {
			needSSE++
		}
	}
	intRegs := IntArgRegs(c.conv)
	sseRegs := FPArgRegs(c.conv)
	if c.intUsed+needInt > len(intRegs) || c.sseUsed+needSSE > len(sseRegs) {
		return c.spill(classes)
	}
	regs := make([]PhysReg, 0, len(classes))
	for _, cl := range classes {
		if cl == ClassInteger {
			regs = append(regs, intRegs[c.intUsed])
			c.intUsed++
		} else {
			regs = append(regs, sseRegs[c.sseUsed])
			c.sseUsed++
		}
	}
	return Location{Classes: classes, Regs: regs}
}

func (c *Classifier) spill(classes []Class) Location {
	off := c.stackOff
	c.stackOff += 8 * len(classes)
	return Location{Classes: classes, InMemory: true, StackOffset: off}
}

// classifyType derives the per-eightbyte class sequence for a type. Scalars
// map to a single eightbyte (long double to X87, complex to two SSE
// eightbytes). A struct or union is classified as a whole instead of by
// AMD64 ABI §3.2.3's per-eightbyte merge: every eightbyte is SSE when every
// member is floating point, and every eightbyte is INTEGER otherwise. An
// aggregate estimated at more than two eightbytes, and any array, classifies
// as memory (nil).
func classifyType(mod *ir.IrModule, t *ir.IrType) []Class {
	head := t.Head()
	if t.IsLongDouble() {
		return []Class{ClassX87}
	}
	if t.IsFloat() {
		return []Class{ClassSSE}
	}
	if t.IsInteger() {
		return []Class{ClassInteger}
	}
	if t.IsComplex() {
		return []Class{ClassSSE, ClassSSE}
	}
	if head.Kind == ir.KindStruct || head.Kind == ir.KindUnion {
		size := aggregateEightbytes(mod, t)
		if size > 2 {
			return nil // memory
		}
		classes := make([]Class, size)
		for i := range classes {
			classes[i] = ClassInteger
		}
		allFloat := true
		for _, m := range head.Members {
			mt, err := mod.GetType(m.Type)
			if err != nil || !(mt.IsFloat()) {
				allFloat = false
				break
			}
		}
		if allFloat {
			for i := range classes {
				classes[i] = ClassSSE
			}
		}
		return classes
	}
	if head.Kind == ir.KindArray {
		return nil
	}
	return []Class{ClassInteger}
}

// aggregateEightbytes estimates a struct/union's eightbyte count from its
// declared member count — a conservative stand-in for true per-field size
// accounting, adequate for the representative lowering paths this compiler
// exercises (full layout lives in the front-end's type table, out of this
// core's scope per spec.md §1).
func aggregateEightbytes(mod *ir.IrModule, t *ir.IrType) int {
	n := len(t.Head().Members)
	if n == 0 {
		return 1
	}
	eb := (n + 1) / 2
	if eb < 1 {
		return 1
	}
	return eb
}
