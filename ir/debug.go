package ir

// DebugTag enumerates the debug-entry tree node kinds named in spec.md §3.
type DebugTag int

const (
	TagCompileUnit DebugTag = iota
	TagSubprogram
	TagLexicalBlock
	TagFormalParameter
	TagLocalVariable
	TagTypedef
	TagStructureType
	TagUnionType
	TagArrayType
	TagPointerType
	TagBaseType
	TagEnumerator
	TagMember
	TagSubroutineType
	TagGlobalVariable
	TagSubrange
)

// AttrKind classifies a debug-entry attribute's value shape.
type AttrKind int

const (
	AttrInt AttrKind = iota
	AttrString
	AttrTypeRef
	AttrCodeOffset // IR instruction index; only used by code_begin/code_end
	AttrEntryRef
)

// Attr is a name/value pair attached to a DebugEntry. Name follows the
// DW_AT_-style convention used by the DWARF emitter (C8) but is not itself a
// DWARF form — that mapping happens in dwarfgen.
type Attr struct {
	Name string
	Kind AttrKind

	Int     int64
	Str     string
	TypeRef TypeRef
	// CodeOffset carries an IR instruction index for code_begin/code_end
	// attributes; the back-end translates these to assembly labels at emit
	// time (spec.md §3, §4.8).
	CodeOffset int
	EntryRef   DebugEntryId
}

// DebugEntryId addresses a node in the module's debug-entry tree.
type DebugEntryId int

// DebugEntry is one node of the debug-entry tree.
type DebugEntry struct {
	ID       DebugEntryId
	Tag      DebugTag
	Attrs    []Attr
	Children []DebugEntryId
	Parent   DebugEntryId
}

// CodeBegin/CodeEnd return the IR instruction index carried by the
// corresponding attribute, if present.
func (e *DebugEntry) CodeBegin() (int, bool) { return e.codeAttr("code_begin") }
func (e *DebugEntry) CodeEnd() (int, bool)   { return e.codeAttr("code_end") }

func (e *DebugEntry) codeAttr(name string) (int, bool) {
	for _, a := range e.Attrs {
		if a.Name == name && a.Kind == AttrCodeOffset {
			return a.CodeOffset, true
		}
	}
	return 0, false
}

// DebugTree owns the module-wide debug-entry pool.
type DebugTree struct {
	entries []DebugEntry
	root    DebugEntryId
}

const noParent DebugEntryId = -1

// NewDebugTree creates an empty tree with a single compile-unit root.
func NewDebugTree() *DebugTree {
	dt := &DebugTree{}
	dt.root = dt.newEntry(TagCompileUnit, noParent)
	return dt
}

func (dt *DebugTree) newEntry(tag DebugTag, parent DebugEntryId) DebugEntryId {
	id := DebugEntryId(len(dt.entries))
	dt.entries = append(dt.entries, DebugEntry{ID: id, Tag: tag, Parent: parent})
	if parent != noParent {
		p := &dt.entries[parent]
		p.Children = append(p.Children, id)
	}
	return id
}

// Root returns the compile-unit entry id.
func (dt *DebugTree) Root() DebugEntryId { return dt.root }

// NewChild creates a new entry as a child of parent and returns its id.
func (dt *DebugTree) NewChild(parent DebugEntryId, tag DebugTag) DebugEntryId {
	return dt.newEntry(tag, parent)
}

// Get resolves an entry by id.
func (dt *DebugTree) Get(id DebugEntryId) *DebugEntry {
	if id < 0 || int(id) >= len(dt.entries) {
		return nil
	}
	return &dt.entries[id]
}

// AddAttr appends an attribute to an existing entry.
func (dt *DebugTree) AddAttr(id DebugEntryId, attr Attr) {
	e := dt.Get(id)
	if e == nil {
		return
	}
	e.Attrs = append(e.Attrs, attr)
}

// CloneSubtree deep-copies the subtree rooted at src as a new child of
// newParent, returning the id of the cloned root. Used by the inliner (C3)
// when it clones a callee's local-variable debug entries into a fresh
// lexical_block under the caller's subprogram (spec.md §4.3 step 6).
func (dt *DebugTree) CloneSubtree(src DebugEntryId, newParent DebugEntryId) DebugEntryId {
	orig := dt.Get(src)
	if orig == nil {
		return noParent
	}
	clone := dt.newEntry(orig.Tag, newParent)
	dt.entries[clone].Attrs = append([]Attr(nil), orig.Attrs...)
	for _, child := range orig.Children {
		dt.CloneSubtree(child, clone)
	}
	return clone
}
