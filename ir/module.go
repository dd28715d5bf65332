package ir

import (
	"math/big"

	"occ/diag"
)

// FunctionDecl is a function's declared shape: parameter/return types and the
// calling-convention flags that affect both lowering (C4) and devirtualization
// (C7) — most importantly ReturnsTwice, which setjmp-style functions require.
type FunctionDecl struct {
	Name         string
	Params       []TypeRef
	Returns      []TypeRef
	Vararg       bool
	ReturnsTwice bool
	Inline       bool
}

// function bundles a declaration with its optional body. A declared-only
// function (an external symbol) has Body == nil.
type function struct {
	Decl FunctionDecl
	Body *IrFunctionBody
}

// IrModule is the read-only container the front-end populates and hands to
// the optimizing core: named types, the big-integer literal pool, the
// module-wide symbol pool and the debug-entry tree (spec.md §3's C1).
//
// IrModule itself is mutated only while the front-end builds it; once handed
// to the core its type/bigint/symbol pools are treated as append-only shared
// resources (spec.md §5); after that only lowering appends to them, by
// interning the runtime-helper symbol names it calls.
type IrModule struct {
	types   []IrType
	bigints BigIntPool
	symbols map[string]int
	symList []string
	debug   *DebugTree

	funcOrder []string
	funcs     map[string]*function
}

// NewModule creates an empty module with an initialized debug-entry tree.
func NewModule() *IrModule {
	return &IrModule{
		symbols: make(map[string]int),
		debug:   NewDebugTree(),
		funcs:   make(map[string]*function),
	}
}

// InternSymbol returns a stable index for name, registering it on first use.
func (m *IrModule) InternSymbol(name string) int {
	if idx, ok := m.symbols[name]; ok {
		return idx
	}
	idx := len(m.symList)
	m.symbols[name] = idx
	m.symList = append(m.symList, name)
	return idx
}

// Symbol resolves an interned symbol index back to its name.
func (m *IrModule) Symbol(idx int) (string, bool) {
	if idx < 0 || idx >= len(m.symList) {
		return "", false
	}
	return m.symList[idx], true
}

// NewType registers a named type and returns its id.
func (m *IrModule) NewType(name string, entries []TypeEntry) TypeId {
	id := TypeId(len(m.types))
	m.types = append(m.types, IrType{Name: name, Entries: entries})
	return id
}

// GetType resolves a type id to its IrType.
func (m *IrModule) GetType(id TypeId) (*IrType, error) {
	if id < 0 || int(id) >= len(m.types) {
		return nil, diag.New(diag.OutOfBounds, "type id %d out of range", id).WithComponent("ir")
	}
	return &m.types[id], nil
}

// ResolveTypeRef resolves a TypeRef's entry in one step.
func (m *IrModule) ResolveTypeRef(ref TypeRef) (TypeEntry, error) {
	t, err := m.GetType(ref.Type)
	if err != nil {
		return TypeEntry{}, err
	}
	e, ok := t.Entry(ref.Index)
	if !ok {
		return TypeEntry{}, diag.New(diag.OutOfBounds, "type %d has no entry %d", ref.Type, ref.Index).WithComponent("ir")
	}
	return e, nil
}

// InternBigInt stores a constant in the big-integer pool.
func (m *IrModule) InternBigInt(v *big.Int) BigIntId {
	return m.bigints.Intern(v)
}

// GetBigInt resolves a big-integer pool entry.
func (m *IrModule) GetBigInt(id BigIntId) (*big.Int, error) {
	v, ok := m.bigints.Get(id)
	if !ok {
		return nil, diag.New(diag.OutOfBounds, "bigint id %d out of range", id).WithComponent("ir")
	}
	return v, nil
}

// DebugEntries returns the module's debug-entry tree.
func (m *IrModule) DebugEntries() *DebugTree { return m.debug }

// DeclareFunction registers a function's declared shape without a body (an
// external symbol, or a forward declaration later completed by
// DefineFunction).
func (m *IrModule) DeclareFunction(decl FunctionDecl) error {
	if decl.Name == "" {
		return diag.New(diag.InvalidParameter, "function declaration requires a name").WithComponent("ir")
	}
	if _, exists := m.funcs[decl.Name]; !exists {
		m.funcOrder = append(m.funcOrder, decl.Name)
	}
	existing := m.funcs[decl.Name]
	if existing != nil {
		existing.Decl = decl
		return nil
	}
	m.funcs[decl.Name] = &function{Decl: decl}
	return nil
}

// DefineFunction attaches a body to a previously or implicitly declared
// function, registering the declaration if it is not yet known.
func (m *IrModule) DefineFunction(decl FunctionDecl, body *IrFunctionBody) error {
	if err := m.DeclareFunction(decl); err != nil {
		return err
	}
	m.funcs[decl.Name].Body = body
	return nil
}

// GetFunction resolves a function by name.
func (m *IrModule) GetFunction(name string) (FunctionDecl, *IrFunctionBody, error) {
	f, ok := m.funcs[name]
	if !ok {
		return FunctionDecl{}, nil, diag.New(diag.NotFound, "no function named %q", name).WithComponent("ir")
	}
	return f.Decl, f.Body, nil
}

// Functions returns every declared function name in declaration order.
func (m *IrModule) Functions() []string {
	out := make([]string, len(m.funcOrder))
	copy(out, m.funcOrder)
	return out
}
