package asmsink

import (
	"fmt"
	"strings"

	"occ/abi"
)

// Quote renders an identifier (label or external symbol) safely for either
// syntax: wrapped in double quotes whenever it contains a character the
// assembler would otherwise treat specially, matching y1yang0-falcon's
// approach of never emitting a bare identifier it can't prove is safe.
func Quote(name string) string {
	safe := true
	for _, r := range name {
		if !(r == '_' || r == '.' || r == '$' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			safe = false
			break
		}
	}
	if safe && name != "" {
		return name
	}
	return fmt.Sprintf("%q", name)
}

func (s *Sink) reg(r abi.PhysReg, width int) string {
	name := widthName(r, width)
	if s.syntax == SyntaxIntel {
		return name
	}
	return "%" + name
}

func widthName(r abi.PhysReg, width int) string {
	switch width {
	case 1:
		return r.Name8
	case 2:
		return r.Name16
	case 4:
		return r.Name32
	default:
		return r.Name64
	}
}

func (s *Sink) imm(v int64) string {
	if s.syntax == SyntaxIntel {
		return fmt.Sprintf("%d", v)
	}
	return fmt.Sprintf("$%d", v)
}

func (s *Sink) mem(base abi.PhysReg, disp int64) string {
	baseReg := s.reg(base, 8)
	if s.syntax == SyntaxIntel {
		return fmt.Sprintf("[%s%+d]", baseReg, disp)
	}
	if disp == 0 {
		return fmt.Sprintf("(%s)", baseReg)
	}
	return fmt.Sprintf("%d(%s)", disp, baseReg)
}

// widthSuffix returns the AT&T mnemonic width suffix for an operand
// register's width; Intel syntax encodes width in the operand itself and
// never suffixes the mnemonic.
func (s *Sink) widthSuffix(width int) string {
	if s.syntax == SyntaxIntel {
		return ""
	}
	switch width {
	case 1:
		return "b"
	case 2:
		return "w"
	case 4:
		return "l"
	default:
		return "q"
	}
}

// order returns operand strings in the correct left-to-right order for the
// active syntax: AT&T is src, dst; Intel is dst, src.
func (s *Sink) order(dst, src string) (first, second string) {
	if s.syntax == SyntaxIntel {
		return dst, src
	}
	return src, dst
}

func (s *Sink) two(mnemonic string, dst, src string, suffix string) {
	a, b := s.order(dst, src)
	s.line("  %s%s %s, %s", mnemonic, suffix, a, b)
}

func (s *Sink) one(mnemonic string, operand string, suffix string) {
	s.line("  %s%s %s", mnemonic, suffix, operand)
}

// stripPercent returns a register name without its AT&T "%" prefix; kept
// separate from reg() so syntax selection stays the single source of truth
// for the "%" prefix. Nothing in this package calls it.
func stripPercent(s string) string { return strings.TrimPrefix(s, "%") }
