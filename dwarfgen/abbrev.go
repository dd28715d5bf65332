package dwarfgen

import "occ/ir"

// abbrevSpec is one entry in the abbreviation table: a tag plus its
// attribute/form list, addressed by the abbreviation code (1-based, per
// DWARF convention — 0 means "no children"/sentinel).
type abbrevSpec struct {
	tag      Tag
	children Children
	attrs    []abbrevAttr
}

type abbrevAttr struct {
	attr Attribute
	form Form
}

// tagTable maps ir.DebugTag to the DWARF tag and fixed attribute list this
// emitter always writes for that kind — every instance of a given DebugTag
// shares one abbreviation code, DWARF's intended use of the table (kefir
// allocates a fresh abbreviation per compile-unit entry instead, a
// simplification this emitter does not follow since it makes the abbrev
// section grow per-entry instead of per-kind).
func tagTable() map[ir.DebugTag]abbrevSpec {
	return map[ir.DebugTag]abbrevSpec{
		ir.TagCompileUnit: {TagCompileUnit, ChildrenYes, []abbrevAttr{
			{AttrLanguage, FormData2},
			{AttrProducer, FormString},
			{AttrLowPC, FormAddr},
			{AttrHighPC, FormData8},
			{AttrStmtList, FormSecOffset},
		}},
		ir.TagSubprogram: {TagSubprogram, ChildrenYes, []abbrevAttr{
			{AttrName, FormString},
			{AttrLowPC, FormAddr},
			{AttrHighPC, FormData8},
			{AttrExternal, FormFlagPresent},
		}},
		ir.TagLexicalBlock: {TagLexicalBlock, ChildrenYes, []abbrevAttr{
			{AttrLowPC, FormAddr},
			{AttrHighPC, FormData8},
		}},
		ir.TagFormalParameter: {TagFormalParameter, ChildrenNo, []abbrevAttr{
			{AttrName, FormString},
			{AttrType, FormRef4},
		}},
		ir.TagLocalVariable: {TagVariable, ChildrenNo, []abbrevAttr{
			{AttrName, FormString},
			{AttrType, FormRef4},
			{AttrLocation, FormSecOffset},
		}},
		ir.TagGlobalVariable: {TagVariable, ChildrenNo, []abbrevAttr{
			{AttrName, FormString},
			{AttrType, FormRef4},
			{AttrExternal, FormFlagPresent},
		}},
		ir.TagTypedef: {TagTypedef, ChildrenNo, []abbrevAttr{
			{AttrName, FormString},
			{AttrType, FormRef4},
		}},
		ir.TagStructureType: {TagStructureType, ChildrenYes, []abbrevAttr{
			{AttrName, FormString},
			{AttrByteSize, FormData4},
		}},
		ir.TagUnionType: {TagUnionType, ChildrenYes, []abbrevAttr{
			{AttrName, FormString},
			{AttrByteSize, FormData4},
		}},
		ir.TagArrayType: {TagArrayType, ChildrenYes, []abbrevAttr{
			{AttrType, FormRef4},
		}},
		ir.TagPointerType: {TagPointerType, ChildrenNo, []abbrevAttr{
			{AttrType, FormRef4},
			{AttrByteSize, FormData1},
		}},
		ir.TagBaseType: {TagBaseType, ChildrenNo, []abbrevAttr{
			{AttrName, FormString},
			{AttrByteSize, FormData1},
		}},
		ir.TagEnumerator: {TagEnumerator, ChildrenNo, []abbrevAttr{
			{AttrName, FormString},
			{AttrConstValue, FormSdata},
		}},
		ir.TagMember: {TagMember, ChildrenNo, []abbrevAttr{
			{AttrName, FormString},
			{AttrType, FormRef4},
			{AttrMemberLoc, FormData4},
		}},
		ir.TagSubroutineType: {TagSubroutineType, ChildrenYes, []abbrevAttr{
			{AttrType, FormRef4},
		}},
		ir.TagSubrange: {TagSubrangeType, ChildrenNo, []abbrevAttr{
			{AttrUpperBound, FormData8},
		}},
	}
}

// abbrevTable assigns a stable 1-based code to each ir.DebugTag encountered
// and renders the .debug_abbrev section bytes.
type abbrevTable struct {
	codeOf map[ir.DebugTag]uint64
	order  []ir.DebugTag
	specs  map[ir.DebugTag]abbrevSpec
}

func newAbbrevTable() *abbrevTable {
	return &abbrevTable{codeOf: map[ir.DebugTag]uint64{}, specs: tagTable()}
}

// codeFor returns the abbreviation code for tag, assigning a fresh one on
// first use.
func (t *abbrevTable) codeFor(tag ir.DebugTag) uint64 {
	if c, ok := t.codeOf[tag]; ok {
		return c
	}
	c := uint64(len(t.order) + 1)
	t.codeOf[tag] = c
	t.order = append(t.order, tag)
	return c
}

// render produces the .debug_abbrev section: a sequence of
// (code, tag-uleb128, children-byte, (attr-uleb128, form-uleb128)*, 0, 0)
// tuples terminated by a zero code.
func (t *abbrevTable) render() []byte {
	var buf []byte
	for _, tag := range t.order {
		spec := t.specs[tag]
		code := t.codeOf[tag]
		buf = AppendUleb128(buf, code)
		buf = AppendUleb128(buf, uint64(spec.tag))
		buf = append(buf, byte(spec.children))
		for _, a := range spec.attrs {
			buf = AppendUleb128(buf, uint64(a.attr))
			buf = AppendUleb128(buf, uint64(a.form))
		}
		buf = AppendUleb128(buf, uint64(AttrEndOfList))
		buf = AppendUleb128(buf, uint64(FormEndOfList))
	}
	buf = AppendUleb128(buf, 0) // table terminator
	return buf
}
