// Package asmsink implements C9: the final textual assembly emitter, taking
// a fully devirtualized asmcmp.Program (every operand now a physical
// register, an immediate, or a frame-relative address) and dwarfgen's
// section bytes, and rendering one assembler-ready text file.
//
// Grounded on y1yang0-falcon's compile/codegen/asm_x86.go (AT&T mnemonic
// suffixing by operand width, comment/prologue/epilogue emission, operand
// stringification), generalized into a Sink type parameterized by Syntax so
// Intel-syntax output is a second rendering path rather than a mode flag
// threaded through every emit call. The AT&T output is run through
// github.com/klauspost/asmfmt before being returned, the same normalization
// gofmt gives Go source — Intel output skips it, since asmfmt only
// understands Plan9/GNU AT&T-flavored assembly.
package asmsink

import (
	"bytes"
	"fmt"

	"github.com/klauspost/asmfmt"

	"occ/abi"
	"occ/asmcmp"
)

// Syntax selects which textual dialect a Sink renders.
type Syntax int

const (
	SyntaxATT Syntax = iota
	SyntaxIntel
)

// Sink accumulates rendered assembly text for one translation unit.
type Sink struct {
	syntax Syntax
	buf    bytes.Buffer
}

// New creates a Sink rendering in the given syntax.
func New(syntax Syntax) *Sink { return &Sink{syntax: syntax} }

// Bytes returns the accumulated text, normalized through asmfmt when
// rendering AT&T syntax.
func (s *Sink) Bytes() ([]byte, error) {
	raw := s.buf.Bytes()
	if s.syntax != SyntaxATT {
		return raw, nil
	}
	formatted, err := asmfmt.Format(bytes.NewReader(raw))
	if err != nil {
		return raw, nil // prefer unformatted text over losing output to a cosmetic pass
	}
	var out bytes.Buffer
	if _, err := out.ReadFrom(formatted); err != nil {
		return raw, nil
	}
	return out.Bytes(), nil
}

func (s *Sink) line(format string, args ...interface{}) {
	fmt.Fprintf(&s.buf, format+"\n", args...)
}

// RoDataEntry is one constant-pool blob destined for .rodata: a string
// literal, or a raw byte blob (e.g. a _BitInt constant too wide for an
// immediate, or a long-double/complex constant).
type RoDataEntry struct {
	Label string
	Bytes []byte
	Text  string // set instead of Bytes for a string literal
}

// EmitRoData writes the .rodata section header and one labeled blob per
// entry.
func (s *Sink) EmitRoData(entries []RoDataEntry) {
	if len(entries) == 0 {
		return
	}
	s.line("  .section .rodata")
	for _, e := range entries {
		s.line("%s:", Quote(e.Label))
		if e.Text != "" {
			s.line("  .asciz %q", e.Text)
			continue
		}
		for i := 0; i < len(e.Bytes); i += 8 {
			end := i + 8
			if end > len(e.Bytes) {
				end = len(e.Bytes)
			}
			s.line("  .byte %s", byteList(e.Bytes[i:end]))
		}
	}
}

// EmitDebugSection writes one raw DWARF section's bytes as a sequence of
// .byte directives under its section name.
func (s *Sink) EmitDebugSection(name string, data []byte) {
	if len(data) == 0 {
		return
	}
	s.line("  .section %s", name)
	for i := 0; i < len(data); i += 12 {
		end := i + 12
		if end > len(data) {
			end = len(data)
		}
		s.line("  .byte %s", byteList(data[i:end]))
	}
}

func byteList(bs []byte) string {
	out := ""
	for i, b := range bs {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("0x%02x", b)
	}
	return out
}

// EmitFunction renders one function's prologue, devirtualized body, and
// epilogue. calleeSaved lists the callee-save registers the allocator
// actually used and so must be preserved — not every callee-save register
// unconditionally, matching y1yang0-falcon's frame-size-driven prologue rather
// than a fixed save set.
func (s *Sink) EmitFunction(name string, externallyVisible bool, frameSize int, prog *asmcmp.Program, calleeSaved []abi.PhysReg) {
	s.line("  .text")
	if externallyVisible {
		s.line("  .globl %s", Quote(name))
	}
	s.line("%s:", Quote(name))
	s.comment("prologue")
	s.emitPushPop("push", abi.RBP)
	s.two("mov", s.reg(abi.RBP, 8), s.reg(abi.RSP, 8), "")
	if frameSize > 0 {
		s.two("sub", s.reg(abi.RSP, 8), s.imm(int64(frameSize)), "")
	}
	for _, r := range calleeSaved {
		s.emitPushPop("push", r)
	}

	prog.Each(func(_ asmcmp.InstrRef, in *asmcmp.Instr) { s.emitInstr(in) })

	s.comment("epilogue")
	for i := len(calleeSaved) - 1; i >= 0; i-- {
		s.emitPushPop("pop", calleeSaved[i])
	}
	if frameSize > 0 {
		s.two("add", s.reg(abi.RSP, 8), s.imm(int64(frameSize)), "")
	}
	s.emitPushPop("pop", abi.RBP)
	s.line("  ret")
}

func (s *Sink) emitPushPop(mnemonic string, r abi.PhysReg) {
	s.line("  %s %s", mnemonic, s.reg(r, 8))
}

func (s *Sink) comment(text string) { s.line("  # %s", text) }
