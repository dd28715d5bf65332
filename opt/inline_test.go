package opt

import (
	"testing"

	"occ/config"
	"occ/ir"
	"occ/oir"
)

// buildSquareAndCaller reproduces spec.md §8 scenario 3:
//
//	static inline int sq(int x){ return x*x; }
//	int g(int a){ return sq(a)+1; }
func buildSquareAndCaller(t *testing.T) (*ir.IrModule, ir.FunctionDecl, *ir.IrFunctionBody) {
	t.Helper()
	mod := ir.NewModule()
	typ := mod.NewType("int", []ir.TypeEntry{{Kind: ir.KindI32}})
	tref := ir.TypeRef{Type: typ, Index: 0}

	sqBody := ir.NewFunctionBody()
	sqBody.Append(0, ir.IrInstr{Op: ir.OpLoad, Type: tref})                                     // 0: param x
	sqBody.Append(0, ir.IrInstr{Op: ir.OpMul, Type: tref, Operands: []ir.InstrId{0, 0}})         // 1: x*x
	sqBody.Append(0, ir.IrInstr{Op: ir.OpReturn, Operands: []ir.InstrId{1}})                     // 2: return
	sqDecl := ir.FunctionDecl{Name: "sq", Params: []ir.TypeRef{tref}, Returns: []ir.TypeRef{tref}, Inline: true}
	if err := mod.DefineFunction(sqDecl, sqBody); err != nil {
		t.Fatalf("DefineFunction(sq): %v", err)
	}

	sym := mod.InternSymbol("sq")
	gBody := ir.NewFunctionBody()
	gBody.Append(0, ir.IrInstr{Op: ir.OpLoad, Type: tref})                                                   // 0: param a
	gBody.Append(0, ir.IrInstr{Op: ir.OpCall, Type: tref, Symbol: sym, Operands: []ir.InstrId{0}})            // 1: sq(a)
	gBody.Append(0, ir.IrInstr{Op: ir.OpIntConst, Type: tref, Int: 1})                                        // 2: 1
	gBody.Append(0, ir.IrInstr{Op: ir.OpAdd, Type: tref, Operands: []ir.InstrId{1, 2}})                       // 3: +1
	gBody.Append(0, ir.IrInstr{Op: ir.OpReturn, Operands: []ir.InstrId{3}})                                   // 4: return
	gDecl := ir.FunctionDecl{Name: "g", Params: []ir.TypeRef{tref}, Returns: []ir.TypeRef{tref}}
	if err := mod.DefineFunction(gDecl, gBody); err != nil {
		t.Fatalf("DefineFunction(g): %v", err)
	}
	return mod, gDecl, gBody
}

func TestInlineEligibleLeafRemovesCall(t *testing.T) {
	mod, gDecl, gBody := buildSquareAndCaller(t)
	fn := oir.Translate(mod, gDecl, gBody)

	cfg := config.DefaultPipelineConfig()
	if _, err := runInlinePass(mod, fn, cfg); err != nil {
		t.Fatalf("runInlinePass: %v", err)
	}

	for _, bref := range fn.Blocks() {
		for _, iref := range fn.Block(bref).Instrs {
			if fn.Instr(iref).Op == oir.OpCall {
				t.Fatalf("found a surviving call instruction %d after inlining an eligible leaf", iref)
			}
		}
	}
	if fn.NumInlines != 1 {
		t.Fatalf("NumInlines = %d, want 1", fn.NumInlines)
	}
	if err := oir.Verify(fn); err != nil {
		t.Fatalf("Verify after inlining: %v", err)
	}
}

func TestInlineNonInlineDeclaredCalleeLeavesCallIntact(t *testing.T) {
	mod := ir.NewModule()
	typ := mod.NewType("int", []ir.TypeEntry{{Kind: ir.KindI32}})
	tref := ir.TypeRef{Type: typ, Index: 0}

	// sq is not declared Inline, unlike buildSquareAndCaller's fixture.
	sqBody := ir.NewFunctionBody()
	sqBody.Append(0, ir.IrInstr{Op: ir.OpLoad, Type: tref})
	sqBody.Append(0, ir.IrInstr{Op: ir.OpMul, Type: tref, Operands: []ir.InstrId{0, 0}})
	sqBody.Append(0, ir.IrInstr{Op: ir.OpReturn, Operands: []ir.InstrId{1}})
	sqDecl := ir.FunctionDecl{Name: "sq", Params: []ir.TypeRef{tref}, Returns: []ir.TypeRef{tref}}
	if err := mod.DefineFunction(sqDecl, sqBody); err != nil {
		t.Fatalf("DefineFunction(sq): %v", err)
	}

	sym := mod.InternSymbol("sq")
	gBody := ir.NewFunctionBody()
	gBody.Append(0, ir.IrInstr{Op: ir.OpLoad, Type: tref})
	gBody.Append(0, ir.IrInstr{Op: ir.OpCall, Type: tref, Symbol: sym, Operands: []ir.InstrId{0}})
	gBody.Append(0, ir.IrInstr{Op: ir.OpReturn, Operands: []ir.InstrId{1}})
	gDecl := ir.FunctionDecl{Name: "g", Params: []ir.TypeRef{tref}, Returns: []ir.TypeRef{tref}}
	if err := mod.DefineFunction(gDecl, gBody); err != nil {
		t.Fatalf("DefineFunction(g): %v", err)
	}

	fn := oir.Translate(mod, gDecl, gBody)
	cfg := config.DefaultPipelineConfig()
	if _, err := runInlinePass(mod, fn, cfg); err != nil {
		t.Fatalf("runInlinePass: %v", err)
	}

	found := false
	for _, bref := range fn.Blocks() {
		for _, iref := range fn.Block(bref).Instrs {
			if fn.Instr(iref).Op == oir.OpCall {
				found = true
			}
		}
	}
	if !found {
		t.Fatalf("expected the call to a non-inline-declared callee to survive unchanged")
	}
	if fn.NumInlines != 0 {
		t.Fatalf("NumInlines = %d, want 0 for a callee not declared inline", fn.NumInlines)
	}
}

func TestInlinePublicLabelCalleeLeavesCallIntact(t *testing.T) {
	mod := ir.NewModule()
	typ := mod.NewType("int", []ir.TypeEntry{{Kind: ir.KindI32}})
	tref := ir.TypeRef{Type: typ, Index: 0}

	sqBody := ir.NewFunctionBody()
	sqBody.Blocks[0].PublicLabel = "retry"
	sqBody.Append(0, ir.IrInstr{Op: ir.OpLoad, Type: tref})
	sqBody.Append(0, ir.IrInstr{Op: ir.OpMul, Type: tref, Operands: []ir.InstrId{0, 0}})
	sqBody.Append(0, ir.IrInstr{Op: ir.OpReturn, Operands: []ir.InstrId{1}})
	sqDecl := ir.FunctionDecl{Name: "sq", Params: []ir.TypeRef{tref}, Returns: []ir.TypeRef{tref}, Inline: true}
	if err := mod.DefineFunction(sqDecl, sqBody); err != nil {
		t.Fatalf("DefineFunction(sq): %v", err)
	}

	sym := mod.InternSymbol("sq")
	gBody := ir.NewFunctionBody()
	gBody.Append(0, ir.IrInstr{Op: ir.OpLoad, Type: tref})
	gBody.Append(0, ir.IrInstr{Op: ir.OpCall, Type: tref, Symbol: sym, Operands: []ir.InstrId{0}})
	gBody.Append(0, ir.IrInstr{Op: ir.OpReturn, Operands: []ir.InstrId{1}})
	gDecl := ir.FunctionDecl{Name: "g", Params: []ir.TypeRef{tref}, Returns: []ir.TypeRef{tref}}
	if err := mod.DefineFunction(gDecl, gBody); err != nil {
		t.Fatalf("DefineFunction(g): %v", err)
	}

	fn := oir.Translate(mod, gDecl, gBody)
	cfg := config.DefaultPipelineConfig()
	if _, err := runInlinePass(mod, fn, cfg); err != nil {
		t.Fatalf("runInlinePass: %v", err)
	}

	found := false
	for _, bref := range fn.Blocks() {
		for _, iref := range fn.Block(bref).Instrs {
			if fn.Instr(iref).Op == oir.OpCall {
				found = true
			}
		}
	}
	if !found {
		t.Fatalf("expected the call to a callee with a public-labeled block to survive unchanged")
	}
	if fn.NumInlines != 0 {
		t.Fatalf("NumInlines = %d, want 0 for a callee carrying a public label", fn.NumInlines)
	}
}

func TestInlineIneligibleVariadicCalleeLeavesCallIntact(t *testing.T) {
	mod := ir.NewModule()
	typ := mod.NewType("int", []ir.TypeEntry{{Kind: ir.KindI32}})
	tref := ir.TypeRef{Type: typ, Index: 0}

	// static inline int v(const char*, ...); — declared, variadic, no body.
	vDecl := ir.FunctionDecl{Name: "v", Params: []ir.TypeRef{tref}, Returns: []ir.TypeRef{tref}, Vararg: true, Inline: true}
	if err := mod.DeclareFunction(vDecl); err != nil {
		t.Fatalf("DeclareFunction(v): %v", err)
	}

	sym := mod.InternSymbol("v")
	hBody := ir.NewFunctionBody()
	hBody.Append(0, ir.IrInstr{Op: ir.OpIntConst, Type: tref, Int: 1})
	hBody.Append(0, ir.IrInstr{Op: ir.OpCall, Type: tref, Symbol: sym, Operands: []ir.InstrId{0}})
	hBody.Append(0, ir.IrInstr{Op: ir.OpReturn, Operands: []ir.InstrId{1}})
	hDecl := ir.FunctionDecl{Name: "h", Returns: []ir.TypeRef{tref}}
	if err := mod.DefineFunction(hDecl, hBody); err != nil {
		t.Fatalf("DefineFunction(h): %v", err)
	}

	fn := oir.Translate(mod, hDecl, hBody)
	cfg := config.DefaultPipelineConfig()
	if _, err := runInlinePass(mod, fn, cfg); err != nil {
		t.Fatalf("runInlinePass: %v", err)
	}

	found := false
	for _, bref := range fn.Blocks() {
		for _, iref := range fn.Block(bref).Instrs {
			if fn.Instr(iref).Op == oir.OpCall {
				found = true
			}
		}
	}
	if !found {
		t.Fatalf("expected the call to a declared-only (bodyless) function to survive unchanged")
	}
	if fn.NumInlines != 0 {
		t.Fatalf("NumInlines = %d, want 0 for an ineligible callee", fn.NumInlines)
	}
}
