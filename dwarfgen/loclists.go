package dwarfgen

import "occ/abi"

// VarLocation describes where one local variable's value lives over its
// lifetime: either a fixed frame-relative offset (the common case once
// devirtualization has assigned it a spill slot) or a register, each valid
// only within [lowLabel, highLabel).
type VarLocation struct {
	LowLabel, HighLabel string
	FrameOffset         int64
	HasFrameOffset      bool
	Reg                 abi.PhysReg
}

const (
	dwOpBreg6 = 0x76 // DW_OP_breg6: RBP-relative offset, SLEB128 operand
	dwOpReg   = 0x50 // DW_OP_reg0 base; add the DWARF register number
	lleStartEnd = 0x06
	lleEndOfList = 0x00
)

// LocListsSection renders a .debug_loclists unit covering every location
// list this emitter was asked to record, returning the section bytes and
// each list's byte offset within them (for the AttrLocation attribute's
// DW_FORM_sec_offset to reference).
func LocListsSection(lists [][]VarLocation) (section []byte, offsets []uint32) {
	var header []byte
	header = appendU32(header, 0) // unit_length placeholder
	header = appendU16(header, Version4+1) // .debug_loclists is a DWARF5 section; version tag kept distinct from the CU's own DW_FORM_sec_offset unit version
	header = append(header, 8) // address_size
	header = append(header, 0) // segment_selector_size
	header = appendU32(header, uint32(len(lists)))

	body := []byte{}
	for _, list := range lists {
		offsets = append(offsets, uint32(len(header)+len(body)))
		for _, loc := range list {
			body = append(body, lleStartEnd)
			body = appendU64(body, 0) // low_pc relocation against loc.LowLabel
			body = appendU64(body, 0) // high_pc relocation against loc.HighLabel
			expr := encodeLocExpr(loc)
			body = AppendUleb128(body, uint64(len(expr)))
			body = append(body, expr...)
		}
		body = append(body, lleEndOfList)
	}

	section = append(header, body...)
	total := uint32(len(section) - 4)
	section[0], section[1], section[2], section[3] = byte(total), byte(total>>8), byte(total>>16), byte(total>>24)
	return section, offsets
}

func encodeLocExpr(loc VarLocation) []byte {
	if loc.HasFrameOffset {
		var e []byte
		e = append(e, dwOpBreg6)
		e = AppendSleb128(e, loc.FrameOffset)
		return e
	}
	n := loc.Reg.Index + 17 // DWARF numbers xmm0..xmm15 as 17..32
	if loc.Reg.Bank == abi.BankGP {
		n = loc.Reg.Index
		if n < 8 {
			// Index follows x86 encoding order; DWARF orders the first
			// eight as rax, rdx, rcx, rbx, rsi, rdi, rbp, rsp.
			n = [...]int{0, 2, 1, 3, 7, 6, 4, 5}[n]
		}
	}
	if n < 32 {
		return []byte{byte(dwOpReg + n)}
	}
	return AppendUleb128([]byte{0x90}, uint64(n)) // DW_OP_regx
}
