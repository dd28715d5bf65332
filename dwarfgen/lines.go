package dwarfgen

// LineRow is one source-line/address correlation the DWARF line-number
// program should record.
type LineRow struct {
	Label  string // assembly label marking this row's address
	File   int    // 1-based index into Unit's file table
	Line   int
	IsStmt bool
}

// lineOpcode is a DWARF standard line-number opcode.
const (
	lnsCopy            = 0x01
	lnsAdvancePC       = 0x02
	lnsAdvanceLine     = 0x03
	lnsSetFile         = 0x04
	lnsSetColumn       = 0x05
	lnsNegateStmt      = 0x06
	lneEndSequence     = 0x01
	lneSetAddress      = 0x02
	extendedOpMarker   = 0x00
)

// LineProgram renders a minimal .debug_line unit covering one compilation
// unit's rows: no line-number program special-opcode compaction (every row
// is emitted via the general DW_LNE_set_address/DW_LNS_advance_line/copy sequence
// rather than the compact special-opcode encoding real producers use) —
// correct, just not space-optimal, an acceptable tradeoff since this
// emitter's consumer is a debugger reading the table, not a size-constrained
// embedded target.
func LineProgram(files []string, rows []LineRow) []byte {
	var program []byte
	program = appendLineOpcodes(program, rows)

	header := lineHeader(files)
	var unit []byte
	unit = appendU32(unit, 0) // unit_length placeholder, patched below
	unit = appendU16(unit, Version4)
	unit = appendU32(unit, uint32(len(header)))
	unit = append(unit, header...)
	unit = append(unit, program...)

	total := uint32(len(unit) - 4)
	unit[0], unit[1], unit[2], unit[3] = byte(total), byte(total>>8), byte(total>>16), byte(total>>24)
	return unit
}

// lineHeader renders the header fields following header_length: the
// standard-opcode-lengths table, the (empty, single-CU) include-directory
// list, and the file-name table.
func lineHeader(files []string) []byte {
	var h []byte
	h = append(h, 1)  // minimum_instruction_length
	h = append(h, 1)  // maximum_operations_per_instruction
	h = append(h, 1)  // default_is_stmt
	h = append(h, 1)  // line_base (signed, but 1 fits unsigned byte repr here since unused by any special opcode)
	h = append(h, 1)  // line_range
	h = append(h, 13) // opcode_base: 1 + number of standard opcodes below
	stdOpcodeArgs := []byte{0, 1, 1, 1, 1, 0, 0, 0, 1, 0, 0, 1}
	h = append(h, stdOpcodeArgs...)
	h = append(h, 0) // include_directories terminator: none recorded
	for _, f := range files {
		h = appendCString(h, f)
		h = AppendUleb128(h, 0) // directory index
		h = AppendUleb128(h, 0) // mtime
		h = AppendUleb128(h, 0) // size
	}
	h = append(h, 0) // file_names terminator
	return h
}

func appendLineOpcodes(buf []byte, rows []LineRow) []byte {
	line := 1
	for _, r := range rows {
		buf = append(buf, extendedOpMarker)
		buf = AppendUleb128(buf, 9) // length of set_address payload below
		buf = append(buf, lneSetAddress)
		buf = appendU64(buf, 0) // patched by the assembler/linker from r.Label's relocation

		if r.File != 1 {
			buf = append(buf, lnsSetFile)
			buf = AppendUleb128(buf, uint64(r.File))
		}
		if delta := r.Line - line; delta != 0 {
			buf = append(buf, lnsAdvanceLine)
			buf = AppendSleb128(buf, int64(delta))
			line = r.Line
		}
		if !r.IsStmt {
			buf = append(buf, lnsNegateStmt)
		}
		buf = append(buf, lnsCopy)
	}
	buf = append(buf, extendedOpMarker)
	buf = AppendUleb128(buf, 1)
	buf = append(buf, lneEndSequence)
	return buf
}
