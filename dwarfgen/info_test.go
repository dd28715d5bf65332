package dwarfgen

import (
	"testing"

	"occ/ir"
)

type fakeLabels struct{}

func (fakeLabels) LabelFor(int) (string, bool)                           { return "", false }
func (fakeLabels) FunctionBounds(ir.DebugEntryId) (string, string, bool) { return "", "", false }

func TestEmitProducesNonEmptySections(t *testing.T) {
	tree := ir.NewDebugTree()
	root := tree.Root()
	tree.AddAttr(root, ir.Attr{Name: "producer", Kind: ir.AttrString, Str: "occ"})
	fn := tree.NewChild(root, ir.TagSubprogram)
	tree.AddAttr(fn, ir.Attr{Name: "name", Kind: ir.AttrString, Str: "main"})

	u := NewUnit(tree, fakeLabels{})
	abbrev, info := u.Emit()

	if len(abbrev) == 0 {
		t.Fatalf("Emit produced an empty .debug_abbrev section")
	}
	if len(info) == 0 {
		t.Fatalf("Emit produced an empty .debug_info section")
	}
	// The compile unit and the subprogram each need a distinct abbreviation
	// code, so the table must cover both tags.
	if len(u.abbrevs.order) != 2 {
		t.Fatalf("abbreviation table has %d entries, want 2 (compile unit + subprogram)", len(u.abbrevs.order))
	}
}

func TestAbbrevTableAssignsStableCodesOnRepeat(t *testing.T) {
	table := newAbbrevTable()
	first := table.codeFor(ir.TagBaseType)
	second := table.codeFor(ir.TagBaseType)
	if first != second {
		t.Fatalf("codeFor(TagBaseType) returned %d then %d, want a stable code across repeated calls", first, second)
	}
	other := table.codeFor(ir.TagPointerType)
	if other == first {
		t.Fatalf("two distinct tags received the same abbreviation code %d", first)
	}
}

func TestInfoHeaderEncodesUnitLengthAndVersion(t *testing.T) {
	tree := ir.NewDebugTree()
	u := NewUnit(tree, fakeLabels{})
	_, info := u.Emit()

	if len(info) < int(headerLen()) {
		t.Fatalf("info section shorter than its own header: %d bytes", len(info))
	}
	gotLen := uint32(info[0]) | uint32(info[1])<<8 | uint32(info[2])<<16 | uint32(info[3])<<24
	if want := uint32(len(info)) - 4; gotLen != want {
		t.Fatalf("unit_length = %d, want %d (total size minus its own 4 bytes)", gotLen, want)
	}
	gotVersion := uint16(info[4]) | uint16(info[5])<<8
	if gotVersion != Version4 {
		t.Fatalf("version field = %d, want %d", gotVersion, Version4)
	}
}
