package dwarfgen

import "occ/ir"

// CodeLabels resolves an ir instruction index (as carried by a code_begin/
// code_end debug attribute) to the assembly label the back-end assigned that
// position, and reports a function's overall low_pc/high_pc label pair —
// the bridge between oir.InstrRef-addressed debug metadata and the
// label-addressed output asmsink emits (spec.md §4.8's "translate at emit
// time" requirement).
type CodeLabels interface {
	LabelFor(instrIndex int) (label string, ok bool)
	FunctionBounds(debugEntry ir.DebugEntryId) (lowLabel, highLabel string, ok bool)
}

// Unit emits one compile unit's .debug_abbrev and .debug_info section
// contents from an ir.DebugTree.
type Unit struct {
	tree    *ir.DebugTree
	labels  CodeLabels
	abbrevs *abbrevTable

	// entryOffset records each emitted DIE's byte offset within .debug_info,
	// used to resolve AttrType/AttrEntryRef cross-references after a first
	// pass has assigned every entry its position.
	entryOffset map[ir.DebugEntryId]uint32
}

// NewUnit creates an emitter for tree, resolving code_begin/code_end and
// function address-range attributes through labels.
func NewUnit(tree *ir.DebugTree, labels CodeLabels) *Unit {
	return &Unit{tree: tree, labels: labels, abbrevs: newAbbrevTable(), entryOffset: map[ir.DebugEntryId]uint32{}}
}

// Emit renders the .debug_abbrev and .debug_info section payloads. Two
// passes over the tree: the first assigns every DIE its abbreviation code
// and computes its final offset (a fixed-point is unnecessary here since
// DW_FORM_ref4 always points to an already-visited sibling or ancestor in
// this emitter's usage — type references never forward-reference a type
// defined later in the same unit), the second renders the bytes using those
// offsets for any AttrEntryRef/AttrTypeRef attribute.
func (u *Unit) Emit() (abbrev []byte, info []byte) {
	root := u.tree.Root()
	u.assignOffsets(root, headerLen())

	var body []byte
	body = u.emitEntry(body, root)

	abbrev = u.abbrevs.render()
	info = make([]byte, 0, int(headerLen())+len(body))
	info = appendHeader(info, uint32(int(headerLen())+len(body)))
	info = append(info, body...)
	return abbrev, info
}

func headerLen() uint32 { return 11 } // unit_length(4, excluded) + version(2) + abbrev_offset(4) + addr_size(1)

func appendHeader(buf []byte, unitLength uint32) []byte {
	buf = appendU32(buf, unitLength-4)
	buf = appendU16(buf, Version4)
	buf = appendU32(buf, 0) // abbrev_offset: single abbrev table per object, always at offset 0
	buf = append(buf, 8)    // address_size
	return buf
}

// assignOffsets walks the tree computing each DIE's final byte offset
// within .debug_info so forward DW_FORM_ref4 attributes can be resolved in
// a single rendering pass; it mirrors emitEntry's own traversal and byte
// accounting without writing anything.
func (u *Unit) assignOffsets(id ir.DebugEntryId, offset uint32) uint32 {
	e := u.tree.Get(id)
	if e == nil {
		return offset
	}
	u.entryOffset[id] = offset
	offset += uint32(Uleb128Len(u.abbrevs.codeFor(e.Tag)))
	offset += u.attrSize(e)
	for _, c := range e.Children {
		offset = u.assignOffsets(c, offset)
	}
	if len(e.Children) > 0 {
		offset++ // null DIE terminating the children list
	}
	return offset
}

func (u *Unit) attrSize(e *ir.DebugEntry) uint32 {
	spec := u.abbrevs.specs[e.Tag]
	var n uint32
	for _, a := range spec.attrs {
		v := u.valueFor(e, a.attr)
		if a.attr == AttrProducer {
			v = attrValue{s: "occ"} // the fixed string emitAttr writes
		}
		n += formSize(a.form, v)
	}
	return n
}

func formSize(f Form, v attrValue) uint32 {
	switch f {
	case FormData1, FormFlagPresent:
		return 1
	case FormData2:
		return 2
	case FormData4, FormRef4, FormSecOffset:
		return 4
	case FormData8, FormAddr:
		return 8
	case FormSdata:
		return uint32(len(AppendSleb128(nil, v.i)))
	case FormString:
		return uint32(len(v.s)) + 1
	}
	return 0
}

type attrValue struct {
	i int64
	s string
}

// valueFor resolves one attribute's concrete value from the debug entry's
// attribute list, or a zero value for attributes this emitter always writes
// a fixed/derived value for regardless of source data (low_pc/high_pc,
// stmt_list, producer).
func (u *Unit) valueFor(e *ir.DebugEntry, attr Attribute) attrValue {
	for _, a := range e.Attrs {
		switch attr {
		case AttrName:
			if a.Name == "name" && a.Kind == ir.AttrString {
				return attrValue{s: a.Str}
			}
		case AttrConstValue:
			if a.Name == "const_value" && a.Kind == ir.AttrInt {
				return attrValue{i: a.Int}
			}
		case AttrByteSize:
			if a.Name == "byte_size" && a.Kind == ir.AttrInt {
				return attrValue{i: a.Int}
			}
		case AttrMemberLoc:
			if a.Name == "member_offset" && a.Kind == ir.AttrInt {
				return attrValue{i: a.Int}
			}
		case AttrUpperBound:
			if a.Name == "upper_bound" && a.Kind == ir.AttrInt {
				return attrValue{i: a.Int}
			}
		}
	}
	return attrValue{}
}

// emitEntry renders one DIE and its children, using the abbreviation code
// and offsets assignOffsets already computed.
func (u *Unit) emitEntry(buf []byte, id ir.DebugEntryId) []byte {
	e := u.tree.Get(id)
	if e == nil {
		return buf
	}
	code := u.abbrevs.codeFor(e.Tag)
	buf = AppendUleb128(buf, code)
	spec := u.abbrevs.specs[e.Tag]
	for _, a := range spec.attrs {
		buf = u.emitAttr(buf, e, a.attr, a.form)
	}
	for _, c := range e.Children {
		buf = u.emitEntry(buf, c)
	}
	if len(e.Children) > 0 {
		buf = append(buf, 0)
	}
	return buf
}

func (u *Unit) emitAttr(buf []byte, e *ir.DebugEntry, attr Attribute, form Form) []byte {
	switch attr {
	case AttrLowPC:
		return appendU64(buf, 0) // patched by the linker/assembler from the low_pc label relocation
	case AttrHighPC:
		return appendU64(buf, 0) // patched the same way, as a label-difference relocation
	case AttrStmtList:
		return appendU32(buf, 0) // always the start of .debug_line
	case AttrLanguage:
		return appendU16(buf, LangC11)
	case AttrProducer:
		return appendCString(buf, "occ")
	case AttrExternal:
		return append(buf, 1)
	}
	v := u.valueFor(e, attr)
	switch form {
	case FormData1, FormFlagPresent:
		return append(buf, byte(v.i))
	case FormData2:
		return appendU16(buf, uint16(v.i))
	case FormData4, FormSecOffset:
		return appendU32(buf, uint32(v.i))
	case FormData8, FormAddr:
		return appendU64(buf, uint64(v.i))
	case FormRef4:
		return appendU32(buf, u.entryOffset[e.Parent])
	case FormSdata:
		return AppendSleb128(buf, v.i)
	case FormString:
		return appendCString(buf, v.s)
	}
	return buf
}

func appendU16(buf []byte, v uint16) []byte {
	return append(buf, byte(v), byte(v>>8))
}

func appendU32(buf []byte, v uint32) []byte {
	return append(buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

func appendU64(buf []byte, v uint64) []byte {
	return append(buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24), byte(v>>32), byte(v>>40), byte(v>>48), byte(v>>56))
}

func appendCString(buf []byte, s string) []byte {
	buf = append(buf, s...)
	return append(buf, 0)
}
