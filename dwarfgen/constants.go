// Package dwarfgen implements C8: emission of DWARF debug information
// (.debug_abbrev, .debug_info, .debug_line, .debug_loclists) from a
// function's ir.DebugTree, translating code_begin/code_end IR-instruction
// indices into the assembly labels the back-end assigned them.
//
// Grounded on kefir's codegen/amd64/dwarf.c and target/dwarf/generator.c
// (original_source/_INDEX.md): the per-entry abbreviation-then-info-entry
// emission shape, and the compile_unit's low_pc/high_pc/stmt_list attribute
// set, translated from kefir's xasmgen-directive calls into Go functions
// building byte buffers directly (this package has no separate textual
// assembler to delegate to — its output is the opaque section payload
// asmsink's sink interface accepts as a pre-formed blob, the same way
// kefir's generator emits the DWARF sections through its xasmgen rather than
// through its LIR/instruction pipeline).
package dwarfgen

// Tag is a DWARF DW_TAG_* constant restricted to the subset this emitter
// produces.
type Tag uint64

const (
	TagCompileUnit     Tag = 0x11
	TagSubprogram      Tag = 0x2e
	TagLexicalBlock    Tag = 0x0b
	TagFormalParameter Tag = 0x05
	TagVariable        Tag = 0x34
	TagTypedef         Tag = 0x16
	TagStructureType   Tag = 0x13
	TagUnionType       Tag = 0x17
	TagArrayType       Tag = 0x01
	TagPointerType     Tag = 0x0f
	TagBaseType        Tag = 0x24
	TagEnumerator      Tag = 0x28
	TagMember          Tag = 0x0d
	TagSubroutineType  Tag = 0x15
	TagSubrangeType    Tag = 0x21
)

// Attribute is a DWARF DW_AT_* constant.
type Attribute uint64

const (
	AttrName       Attribute = 0x03
	AttrByteSize   Attribute = 0x0b
	AttrStmtList   Attribute = 0x10
	AttrLowPC      Attribute = 0x11
	AttrHighPC     Attribute = 0x12
	AttrLanguage   Attribute = 0x13
	AttrMemberLoc  Attribute = 0x38
	AttrType       Attribute = 0x49
	AttrProducer   Attribute = 0x25
	AttrDeclFile   Attribute = 0x3a
	AttrDeclLine   Attribute = 0x3b
	AttrLocation   Attribute = 0x02
	AttrConstValue Attribute = 0x1c
	AttrUpperBound Attribute = 0x2f
	AttrExternal   Attribute = 0x3f
	AttrEndOfList  Attribute = 0x00
)

// Form is a DWARF DW_FORM_* constant.
type Form uint64

const (
	FormAddr       Form = 0x01
	FormData1      Form = 0x0b
	FormData2      Form = 0x05
	FormData4      Form = 0x06
	FormData8      Form = 0x07
	FormString     Form = 0x08
	FormSecOffset  Form = 0x17
	FormRef4       Form = 0x13
	FormSdata      Form = 0x0d
	FormFlagPresent Form = 0x19
	FormEndOfList  Form = 0x00
)

// Children flags whether an abbreviation's DIE has nested children.
type Children uint8

const (
	ChildrenNo  Children = 0x00
	ChildrenYes Children = 0x01
)

const (
	// LangC11 is DW_LANG_C11, the only source language the front end
	// produces debug info for.
	LangC11 = 0x001d
	// Version4 is the DWARF version this emitter targets — version 4
	// dropped the base-type-reference indirection version 5 requires for
	// .debug_str_offsets, keeping this emitter's string handling (inline
	// DW_FORM_string) simple, matching kefir's own DWARF version choice.
	Version4 = 4
)
