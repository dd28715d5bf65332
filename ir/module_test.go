package ir

import (
	"math/big"
	"testing"
)

func TestInternSymbolStable(t *testing.T) {
	m := NewModule()
	a := m.InternSymbol("foo")
	b := m.InternSymbol("bar")
	c := m.InternSymbol("foo")
	if a != c {
		t.Fatalf("interning %q twice produced different ids: %d vs %d", "foo", a, c)
	}
	if a == b {
		t.Fatalf("distinct symbols got the same id")
	}
	name, ok := m.Symbol(a)
	if !ok || name != "foo" {
		t.Fatalf("Symbol(%d) = %q, %v, want %q, true", a, name, ok, "foo")
	}
}

func TestNewTypeAndResolveTypeRef(t *testing.T) {
	m := NewModule()
	id := m.NewType("int", []TypeEntry{{Kind: KindI32}})
	ref := TypeRef{Type: id, Index: 0}
	e, err := m.ResolveTypeRef(ref)
	if err != nil {
		t.Fatalf("ResolveTypeRef: %v", err)
	}
	if e.Kind != KindI32 {
		t.Fatalf("resolved entry kind = %v, want KindI32", e.Kind)
	}

	if _, err := m.ResolveTypeRef(TypeRef{Type: id, Index: 5}); err == nil {
		t.Fatalf("expected an error resolving an out-of-range entry index")
	}
	if _, err := m.GetType(TypeId(99)); err == nil {
		t.Fatalf("expected an error resolving an out-of-range type id")
	}
}

func TestBigIntPoolRoundTrip(t *testing.T) {
	m := NewModule()
	v := big.NewInt(123456789)
	id := m.InternBigInt(v)
	got, err := m.GetBigInt(id)
	if err != nil {
		t.Fatalf("GetBigInt: %v", err)
	}
	if got.Cmp(v) != 0 {
		t.Fatalf("GetBigInt(%d) = %v, want %v", id, got, v)
	}
	if _, err := m.GetBigInt(BigIntId(999)); err == nil {
		t.Fatalf("expected an error resolving an out-of-range bigint id")
	}
}

func TestDeclareThenDefineFunction(t *testing.T) {
	m := NewModule()
	decl := FunctionDecl{Name: "f", Vararg: true}
	if err := m.DeclareFunction(decl); err != nil {
		t.Fatalf("DeclareFunction: %v", err)
	}
	gotDecl, body, err := m.GetFunction("f")
	if err != nil {
		t.Fatalf("GetFunction: %v", err)
	}
	if body != nil {
		t.Fatalf("expected a declared-only function to have a nil body")
	}
	if !gotDecl.Vararg {
		t.Fatalf("expected the declared vararg flag to survive")
	}

	if err := m.DefineFunction(decl, &IrFunctionBody{}); err != nil {
		t.Fatalf("DefineFunction: %v", err)
	}
	_, body2, err := m.GetFunction("f")
	if err != nil {
		t.Fatalf("GetFunction after define: %v", err)
	}
	if body2 == nil {
		t.Fatalf("expected a body after DefineFunction")
	}

	if funcs := m.Functions(); len(funcs) != 1 || funcs[0] != "f" {
		t.Fatalf("Functions() = %v, want [f]", funcs)
	}
}

func TestGetFunctionNotFound(t *testing.T) {
	m := NewModule()
	if _, _, err := m.GetFunction("missing"); err == nil {
		t.Fatalf("expected an error looking up an undeclared function")
	}
}

func TestDeclareFunctionRequiresName(t *testing.T) {
	m := NewModule()
	if err := m.DeclareFunction(FunctionDecl{}); err == nil {
		t.Fatalf("expected an error declaring a function with no name")
	}
}
