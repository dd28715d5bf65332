package dwarfgen

import (
	"testing"

	"occ/abi"
)

func TestLineProgramUnitLengthMatchesEncodedSize(t *testing.T) {
	out := LineProgram([]string{"main.c"}, []LineRow{
		{Label: "L0", File: 1, Line: 1, IsStmt: true},
		{Label: "L1", File: 1, Line: 3, IsStmt: true},
	})
	if len(out) < 4 {
		t.Fatalf("LineProgram produced %d bytes, too short for a header", len(out))
	}
	gotLen := uint32(out[0]) | uint32(out[1])<<8 | uint32(out[2])<<16 | uint32(out[3])<<24
	if want := uint32(len(out)) - 4; gotLen != want {
		t.Fatalf("unit_length = %d, want %d", gotLen, want)
	}
}

func TestLineProgramEmptyRowsStillTerminates(t *testing.T) {
	out := LineProgram(nil, nil)
	if len(out) == 0 {
		t.Fatalf("LineProgram(nil, nil) produced no output")
	}
}

func TestLocListsSectionReturnsOneOffsetPerList(t *testing.T) {
	lists := [][]VarLocation{
		{{LowLabel: "a0", HighLabel: "a1", FrameOffset: -8, HasFrameOffset: true}},
		{{LowLabel: "b0", HighLabel: "b1", Reg: abi.RBX}},
	}
	section, offsets := LocListsSection(lists)
	if len(offsets) != len(lists) {
		t.Fatalf("LocListsSection returned %d offsets for %d lists", len(offsets), len(lists))
	}
	for i, off := range offsets {
		if off >= uint32(len(section)) {
			t.Fatalf("list %d offset %d is past the section's %d bytes", i, off, len(section))
		}
	}
	gotLen := uint32(section[0]) | uint32(section[1])<<8 | uint32(section[2])<<16 | uint32(section[3])<<24
	if want := uint32(len(section)) - 4; gotLen != want {
		t.Fatalf("unit_length = %d, want %d", gotLen, want)
	}
}

func TestEncodeLocExprFrameOffsetVsRegister(t *testing.T) {
	frame := encodeLocExpr(VarLocation{HasFrameOffset: true, FrameOffset: -16})
	if len(frame) == 0 || frame[0] != dwOpBreg6 {
		t.Fatalf("frame-relative location expr = %v, want it to start with DW_OP_breg6", frame)
	}
	reg := encodeLocExpr(VarLocation{Reg: abi.RBX})
	if len(reg) != 1 {
		t.Fatalf("register location expr = %v, want a single DW_OP_regN byte", reg)
	}
}
