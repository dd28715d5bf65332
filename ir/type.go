// Package ir implements C1: IrModule, the read-only container the front-end
// hands to the core — named types, a big-integer literal pool, a module-wide
// symbol pool, and the debug-entry tree. Grounded on y1yang0-falcon's ast/type.go
// type-predicate style, generalized from a fixed handful of language types to
// an indexed sequence of arbitrary type entries as spec.md §3 describes.
package ir

import "fmt"

// TypeId addresses a named type entry within a module's type sequence. Handles
// are stable for the module's lifetime.
type TypeId int

// TypeKind enumerates the IrType entry variants named in spec.md §3.
type TypeKind int

const (
	KindI8 TypeKind = iota
	KindI16
	KindI32
	KindI64
	KindBitInt // arbitrary bit-width integer; Width holds the bit count
	KindBool
	KindChar
	KindShort
	KindInt
	KindLong
	KindWord // target machine word, used for pointers and bitint<=64 shapes
	KindF32
	KindF64
	KindLongDouble
	KindComplexF32
	KindComplexF64
	KindComplexLongDouble
	KindStruct
	KindUnion
	KindArray
	KindBuiltin
)

func (k TypeKind) String() string {
	switch k {
	case KindI8:
		return "i8"
	case KindI16:
		return "i16"
	case KindI32:
		return "i32"
	case KindI64:
		return "i64"
	case KindBitInt:
		return "bitint"
	case KindBool:
		return "bool"
	case KindChar:
		return "char"
	case KindShort:
		return "short"
	case KindInt:
		return "int"
	case KindLong:
		return "long"
	case KindWord:
		return "word"
	case KindF32:
		return "f32"
	case KindF64:
		return "f64"
	case KindLongDouble:
		return "long_double"
	case KindComplexF32:
		return "complex_f32"
	case KindComplexF64:
		return "complex_f64"
	case KindComplexLongDouble:
		return "complex_long_double"
	case KindStruct:
		return "struct"
	case KindUnion:
		return "union"
	case KindArray:
		return "array"
	case KindBuiltin:
		return "builtin"
	}
	return "<unknown-type-kind>"
}

// TypeEntry is one slot in a type's sequence. Structs and arrays are
// represented by a head entry (Kind==KindStruct/KindUnion/KindArray) followed
// by their member entries; a (TypeId, index) pair addresses a specific entry.
type TypeEntry struct {
	Kind TypeKind

	// Width is meaningful for KindBitInt (bit width) and KindArray (element
	// count, aliasing the "array(n)" variant in spec.md §3).
	Width int

	// Name is the builtin/struct/union tag name, when applicable.
	Name string

	// Members lists the (TypeId, index) pairs of nested entries for
	// struct/union/array heads.
	Members []TypeRef
}

// TypeRef addresses a specific entry within a type's sequence.
type TypeRef struct {
	Type  TypeId
	Index int
}

func (r TypeRef) String() string { return fmt.Sprintf("t%d[%d]", r.Type, r.Index) }

// IrType is a named sequence of type entries.
type IrType struct {
	Name    string
	Entries []TypeEntry
}

func (t *IrType) Head() TypeEntry { return t.Entries[0] }

// Entry resolves a TypeRef's entry, given that ref.Type == this type's id is
// assumed to have already been checked by the caller (IrModule.GetType does
// that check).
func (t *IrType) Entry(index int) (TypeEntry, bool) {
	if index < 0 || index >= len(t.Entries) {
		return TypeEntry{}, false
	}
	return t.Entries[index], true
}

func isScalarKind(k TypeKind, want TypeKind) bool { return k == want }

// IsInteger reports whether the head entry is an integral scalar (including
// bitint and bool/char).
func (t *IrType) IsInteger() bool {
	switch t.Head().Kind {
	case KindI8, KindI16, KindI32, KindI64, KindBitInt, KindBool, KindChar, KindShort, KindInt, KindLong, KindWord:
		return true
	}
	return false
}

// IsFloat reports whether the head entry is a binary floating-point scalar.
func (t *IrType) IsFloat() bool {
	k := t.Head().Kind
	return k == KindF32 || k == KindF64
}

// IsLongDouble reports whether the head entry is the extended x87 type.
func (t *IrType) IsLongDouble() bool { return isScalarKind(t.Head().Kind, KindLongDouble) }

// IsComplex reports whether the head entry is any complex variant.
func (t *IrType) IsComplex() bool {
	switch t.Head().Kind {
	case KindComplexF32, KindComplexF64, KindComplexLongDouble:
		return true
	}
	return false
}

// IsBitInt reports whether the head entry is an arbitrary-width integer, and
// if so returns its declared bit width.
func (t *IrType) IsBitInt() (width int, ok bool) {
	if t.Head().Kind == KindBitInt {
		return t.Head().Width, true
	}
	return 0, false
}

// IsAggregate reports whether the head entry is a struct, union or array.
func (t *IrType) IsAggregate() bool {
	switch t.Head().Kind {
	case KindStruct, KindUnion, KindArray:
		return true
	}
	return false
}
