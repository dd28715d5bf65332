// Package testfixture builds miniature ir.IrModule fixtures from literal C
// source snippets, standing in for the front end spec.md's Non-goals place
// out of scope. Used by the end-to-end scenarios in spec.md §8 that are
// phrased as "front-end IR fixture → final textual assembly string".
//
// Grounded on ajroetker-goat's main.go parseSource/convertFunction/
// convertFunctionParameters (the cc.NewConfig/cc.Parse/TranslationUnit-walk
// pattern, and DirectDeclarator/ParameterList field access for recovering a
// function's name, return-type keyword and parameter names, plus
// Position().Line/Filename for locating a declaration in its source file).
// That code only ever reads declarations — it never walks into a function's
// statement or expression tree, since goat only generates Go call stubs for
// declared signatures. This package follows it exactly for the declaration
// half and, for each function's body, parses its single return expression
// itself with a small hand-written recursive-descent reader over the raw
// source text rather than guessing at cc/v4's statement/expression AST
// shape: a deliberate, explicitly scoped stand-in, not a general C front
// end.
package testfixture

import (
	"strconv"
	"strings"

	"modernc.org/cc/v4"

	"occ/diag"
	"occ/ir"
)

// Fixture is a translated C snippet: every function definition the snippet
// declared, in source order, sharing one module.
type Fixture struct {
	Module *ir.IrModule
	Decls  []ir.FunctionDecl
}

// Build parses source (a small, self-contained C translation unit) and
// translates every function definition it contains into the returned
// module.
func Build(source string) (*Fixture, error) {
	cfg, err := cc.NewConfig("linux", "amd64")
	if err != nil {
		return nil, diag.Wrap(diag.OsError, err, "failed to build cc/v4 target config").WithComponent("testfixture")
	}
	ast, err := cc.Parse(cfg, []cc.Source{
		{Name: "<predefined>", Value: cfg.Predefined},
		{Name: "<builtin>", Value: cc.Builtin},
		{Name: "fixture.c", Value: source},
	})
	if err != nil {
		return nil, diag.Wrap(diag.NotSupported, err, "failed to parse fixture source").WithComponent("testfixture")
	}

	var fns []*cc.FunctionDefinition
	for tu := ast.TranslationUnit; tu != nil; tu = tu.TranslationUnit {
		ed := tu.ExternalDeclaration
		if ed == nil || ed.Case != cc.ExternalDeclarationFuncDef {
			continue
		}
		if ed.Position().Filename != "fixture.c" {
			continue
		}
		fns = append(fns, ed.FunctionDefinition)
	}
	if len(fns) == 0 {
		return nil, diag.New(diag.NotSupported, "fixture source declares no function definition").WithComponent("testfixture")
	}

	mod := ir.NewModule()
	intType := mod.NewType("int64", []ir.TypeEntry{{Kind: ir.KindI64}})
	intRef := ir.TypeRef{Type: intType, Index: 0}

	lines := strings.Split(source, "\n")

	var decls []ir.FunctionDecl
	for _, fn := range fns {
		name, paramNames, variadic, err := convertSignature(fn)
		if err != nil {
			return nil, err
		}

		decl := ir.FunctionDecl{
			Name:    name,
			Params:  make([]ir.TypeRef, len(paramNames)),
			Returns: []ir.TypeRef{intRef},
			Vararg:  variadic,
		}
		for i := range decl.Params {
			decl.Params[i] = intRef
		}

		if variadic {
			// spec.md §8 scenario 4: a variadic function is parsed for its
			// signature only — the inliner's eligibility check rejects it
			// before a body would ever be needed, so no body is modeled.
			if err := mod.DeclareFunction(decl); err != nil {
				return nil, err
			}
			decls = append(decls, decl)
			continue
		}

		bodySrc, err := extractReturnExpr(lines, fn.CompoundStatement.Position().Line-1)
		if err != nil {
			return nil, err
		}

		params := make(map[string]int, len(paramNames))
		for i, p := range paramNames {
			params[p] = i
		}
		p := &bodyParser{src: bodySrc, params: params, body: ir.NewFunctionBody(), typ: intRef}
		p.body.NumLocals = len(paramNames)
		retId, err := p.parseExpr(mod, p.body.EntryBlock)
		if err != nil {
			return nil, err
		}
		p.body.Append(p.body.EntryBlock, ir.IrInstr{Op: ir.OpReturn, Operands: []ir.InstrId{retId}})

		if err := mod.DefineFunction(decl, p.body); err != nil {
			return nil, err
		}
		decls = append(decls, decl)
	}

	return &Fixture{Module: mod, Decls: decls}, nil
}

// convertSignature extracts a function's name, parameter names and
// variadic-ness, following ajroetker-goat's convertFunction/
// convertFunctionParameters field-access pattern.
func convertSignature(fn *cc.FunctionDefinition) (name string, params []string, variadic bool, err error) {
	directDeclarator := fn.Declarator.DirectDeclarator
	if directDeclarator.Case != cc.DirectDeclaratorFuncParam {
		return "", nil, false, diag.New(diag.NotSupported, "fixture function has no parameter list").WithComponent("testfixture")
	}
	name = directDeclarator.DirectDeclarator.Token.SrcStr()

	ptl := directDeclarator.ParameterTypeList
	if ptl == nil {
		return name, nil, false, nil
	}
	variadic = ptl.Case == cc.ParameterTypeListVar
	for pl := ptl.ParameterList; pl != nil; pl = pl.ParameterList {
		pd := pl.ParameterDeclaration
		if pd == nil || pd.Declarator == nil {
			continue
		}
		params = append(params, pd.Declarator.DirectDeclarator.Token.SrcStr())
	}
	return name, params, variadic, nil
}

// extractReturnExpr scans lines starting at fromLine (0-indexed, the body's
// opening brace line) for a "return <expr>;" statement and returns expr's
// raw text, ignoring preceding declaration or expression statements this
// front end's grammar does not model.
func extractReturnExpr(lines []string, fromLine int) (string, error) {
	if fromLine < 0 {
		fromLine = 0
	}
	body := strings.Join(lines[fromLine:], "\n")
	idx := strings.Index(body, "return")
	if idx < 0 {
		return "", diag.New(diag.NotSupported, "fixture function body has no return statement").WithComponent("testfixture")
	}
	rest := body[idx+len("return"):]
	end := strings.IndexByte(rest, ';')
	if end < 0 {
		return "", diag.New(diag.NotSupported, "fixture function's return statement is not terminated").WithComponent("testfixture")
	}
	return strings.TrimSpace(rest[:end]), nil
}

// bodyParser is a minimal recursive-descent reader over the restricted
// expression grammar the §8 scenarios need: integer literals, parameter
// references, binary +,-,*,^,|, and calls to other functions by name.
type bodyParser struct {
	src    string
	pos    int
	params map[string]int
	body   *ir.IrFunctionBody
	typ    ir.TypeRef
}

// parseExpr parses a left-to-right chain of +,-,^,| terms, all treated as
// equal precedence (below '*', handled by parseTerm) — sufficient for the
// flat arithmetic the fixture grammar needs, not general C operator
// precedence.
func (p *bodyParser) parseExpr(mod *ir.IrModule, block int) (ir.InstrId, error) {
	lhs, err := p.parseTerm(mod, block)
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpace()
		op, ok := p.peekBinOp()
		if !ok {
			return lhs, nil
		}
		p.pos++
		rhs, err := p.parseTerm(mod, block)
		if err != nil {
			return 0, err
		}
		lhs = p.body.Append(block, ir.IrInstr{Op: op, Type: p.typ, Operands: []ir.InstrId{lhs, rhs}})
	}
}

func (p *bodyParser) parseTerm(mod *ir.IrModule, block int) (ir.InstrId, error) {
	lhs, err := p.parseFactor(mod, block)
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpace()
		if p.pos >= len(p.src) || p.src[p.pos] != '*' {
			return lhs, nil
		}
		p.pos++
		rhs, err := p.parseFactor(mod, block)
		if err != nil {
			return 0, err
		}
		lhs = p.body.Append(block, ir.IrInstr{Op: ir.OpMul, Type: p.typ, Operands: []ir.InstrId{lhs, rhs}})
	}
}

func (p *bodyParser) parseFactor(mod *ir.IrModule, block int) (ir.InstrId, error) {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return 0, diag.New(diag.NotSupported, "unexpected end of fixture expression").WithComponent("testfixture")
	}
	if p.src[p.pos] == '(' {
		p.pos++
		id, err := p.parseExpr(mod, block)
		if err != nil {
			return 0, err
		}
		p.skipSpace()
		if p.pos >= len(p.src) || p.src[p.pos] != ')' {
			return 0, diag.New(diag.NotSupported, "unbalanced parenthesis in fixture expression").WithComponent("testfixture")
		}
		p.pos++
		return id, nil
	}

	start := p.pos
	for p.pos < len(p.src) && isIdentRune(p.src[p.pos]) {
		p.pos++
	}
	if p.pos == start {
		return 0, diag.New(diag.NotSupported, "unsupported token in fixture expression at offset %d", p.pos).WithComponent("testfixture")
	}
	tok := p.src[start:p.pos]

	if isDigit(tok[0]) {
		v, err := strconv.ParseInt(tok, 0, 64)
		if err != nil {
			return 0, diag.Wrap(diag.NotSupported, err, "unparseable integer constant %q", tok).WithComponent("testfixture")
		}
		return p.body.Append(block, ir.IrInstr{Op: ir.OpIntConst, Type: p.typ, Int: v}), nil
	}

	p.skipSpace()
	if p.pos < len(p.src) && p.src[p.pos] == '(' {
		p.pos++
		var args []ir.InstrId
		p.skipSpace()
		if p.pos < len(p.src) && p.src[p.pos] != ')' {
			for {
				a, err := p.parseExpr(mod, block)
				if err != nil {
					return 0, err
				}
				args = append(args, a)
				p.skipSpace()
				if p.pos < len(p.src) && p.src[p.pos] == ',' {
					p.pos++
					continue
				}
				break
			}
		}
		if p.pos >= len(p.src) || p.src[p.pos] != ')' {
			return 0, diag.New(diag.NotSupported, "unterminated call in fixture expression").WithComponent("testfixture")
		}
		p.pos++
		sym := mod.InternSymbol(tok)
		return p.body.Append(block, ir.IrInstr{Op: ir.OpCall, Type: p.typ, Symbol: sym, Operands: args}), nil
	}

	idx, ok := p.params[tok]
	if !ok {
		return 0, diag.New(diag.NotSupported, "reference to undeclared identifier %q in fixture expression", tok).WithComponent("testfixture")
	}
	return p.body.Append(block, ir.IrInstr{Op: ir.OpGetLocal, Type: p.typ, Int: int64(idx)}), nil
}

func (p *bodyParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t' || p.src[p.pos] == '\n' || p.src[p.pos] == '\r') {
		p.pos++
	}
}

func (p *bodyParser) peekBinOp() (ir.Opcode, bool) {
	if p.pos >= len(p.src) {
		return ir.OpNop, false
	}
	switch p.src[p.pos] {
	case '+':
		return ir.OpAdd, true
	case '-':
		return ir.OpSub, true
	case '^':
		return ir.OpXor, true
	case '|':
		return ir.OpOr, true
	}
	return ir.OpNop, false
}

func isIdentRune(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || isDigit(b)
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
