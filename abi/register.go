// Package abi implements the System V AMD64 parameter/return classification
// and register bank definitions asmcmp (C5) and devirtualization (C7) build
// on. Grounded on y1yang0-falcon's compile/codegen/arch_x86.go register table
// and calling-convention functions, generalized from a fixed Windows/SysV
// switch to a selectable Convention value and from scalar-only argument
// passing to the System V INTEGER/SSE/MEMORY eightbyte classification
// (spec.md's supplemented ABI detail, since the distilled spec only
// describes a "System V AMD64-like ABI" without restating the classification
// algorithm).
package abi

// Bank distinguishes the general-purpose and floating-point register files;
// asmcmp's register-class operand kind (spec.md §5) maps 1:1 onto this.
type Bank int

const (
	BankGP Bank = iota
	BankFP
	BankX87
)

// PhysReg is a physical machine register, addressed by bank and index so
// different width "views" (RAX vs EAX vs AX vs AL) share one identity.
type PhysReg struct {
	Bank  Bank
	Index int
	Name8 string // 1-byte-view name, e.g. "al"
	Name16,
	Name32,
	Name64 string
}

func (r PhysReg) String() string { return r.Name64 }

// The System V AMD64 general-purpose register file, indexed in x86
// instruction-encoding order (RAX 0, RCX 1, RDX 2, RBX 3, RSP 4, RBP 5,
// RSI 6, RDI 7, R8..R15 as 8..15). This is not the DWARF register
// numbering; the DWARF emitter (C8) maps Index to DWARF numbers itself.
var (
	RAX = PhysReg{BankGP, 0, "al", "ax", "eax", "rax"}
	RCX = PhysReg{BankGP, 1, "cl", "cx", "ecx", "rcx"}
	RDX = PhysReg{BankGP, 2, "dl", "dx", "edx", "rdx"}
	RBX = PhysReg{BankGP, 3, "bl", "bx", "ebx", "rbx"}
	RSP = PhysReg{BankGP, 4, "spl", "sp", "esp", "rsp"}
	RBP = PhysReg{BankGP, 5, "bpl", "bp", "ebp", "rbp"}
	RSI = PhysReg{BankGP, 6, "sil", "si", "esi", "rsi"}
	RDI = PhysReg{BankGP, 7, "dil", "di", "edi", "rdi"}
	R8  = PhysReg{BankGP, 8, "r8b", "r8w", "r8d", "r8"}
	R9  = PhysReg{BankGP, 9, "r9b", "r9w", "r9d", "r9"}
	R10 = PhysReg{BankGP, 10, "r10b", "r10w", "r10d", "r10"}
	R11 = PhysReg{BankGP, 11, "r11b", "r11w", "r11d", "r11"}
	R12 = PhysReg{BankGP, 12, "r12b", "r12w", "r12d", "r12"}
	R13 = PhysReg{BankGP, 13, "r13b", "r13w", "r13d", "r13"}
	R14 = PhysReg{BankGP, 14, "r14b", "r14w", "r14d", "r14"}
	R15 = PhysReg{BankGP, 15, "r15b", "r15w", "r15d", "r15"}
)

var GPRegs = []PhysReg{RAX, RCX, RDX, RBX, RSP, RBP, RSI, RDI, R8, R9, R10, R11, R12, R13, R14, R15}

func xmm(i int) PhysReg {
	name := "xmm" + itoa(i)
	return PhysReg{Bank: BankFP, Index: i, Name8: name, Name16: name, Name32: name, Name64: name}
}

var XMMRegs = []PhysReg{xmm(0), xmm(1), xmm(2), xmm(3), xmm(4), xmm(5), xmm(6), xmm(7),
	xmm(8), xmm(9), xmm(10), xmm(11), xmm(12), xmm(13), xmm(14), xmm(15)}

func itoa(i int) string {
	if i < 10 {
		return string(rune('0' + i))
	}
	return string(rune('0'+i/10)) + string(rune('0'+i%10))
}

// Convention selects which calling convention ArgRegs/CallerSave/CalleeSave
// reports for. The back-end only emits System V targets per spec.md's
// scope, but the classification is kept selectable the way
// compile/codegen/arch_x86.go's runtime.GOOS switch was, so a Windows x64
// target could be added without restructuring this package.
type Convention int

const (
	SystemV Convention = iota
	Win64
)

// IntArgRegs returns the integer/pointer argument registers in order, for
// the given convention.
func IntArgRegs(c Convention) []PhysReg {
	if c == Win64 {
		return []PhysReg{RCX, RDX, R8, R9}
	}
	return []PhysReg{RDI, RSI, RDX, RCX, R8, R9}
}

// FPArgRegs returns the floating-point argument registers in order.
func FPArgRegs(c Convention) []PhysReg {
	if c == Win64 {
		return XMMRegs[:4]
	}
	return XMMRegs[:8]
}

// CallerSaveGP reports the GP registers a callee may clobber freely.
func CallerSaveGP(c Convention) []PhysReg {
	if c == Win64 {
		return []PhysReg{RAX, RCX, RDX, R8, R9, R10, R11}
	}
	return []PhysReg{RAX, RCX, RDX, RSI, RDI, R8, R9, R10, R11}
}

// CalleeSaveGP reports the GP registers a callee must preserve across a call.
func CalleeSaveGP(c Convention) []PhysReg {
	if c == Win64 {
		return []PhysReg{RBX, RBP, RSI, RDI, R12, R13, R14, R15}
	}
	return []PhysReg{RBX, RBP, R12, R13, R14, R15}
}

// CalleeSaveFP reports callee-saved FP registers (none, under either
// convention's AMD64 ABI — all XMM registers are caller-saved).
func CalleeSaveFP(Convention) []PhysReg { return nil }

// ReturnReg reports the register a scalar return value of the given bank
// arrives in.
func ReturnReg(bank Bank) PhysReg {
	if bank == BankFP {
		return XMMRegs[0]
	}
	return RAX
}

// SecondReturnReg reports the register carrying the second eightbyte of a
// two-eightbyte aggregate return (spec.md's supplemented classification
// detail — RAX:RDX for INTEGER/INTEGER, XMM0:XMM1 for SSE/SSE).
func SecondReturnReg(bank Bank) PhysReg {
	if bank == BankFP {
		return XMMRegs[1]
	}
	return RDX
}
