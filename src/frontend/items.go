package frontend

import "pawc/src/ast"

// parseItem parses one declaration or statement. It is used both for
// top-level Program items and for nested declarations inside a block, since
// the grammar allows struct/enum/type/extern/import to appear in either
// position.
func (p *parser) parseItem() *ast.Stmt {
	pub := false
	start := p.cur()
	if p.check(PUB) {
		pub = true
		p.advance()
		start = p.cur()
	}

	switch {
	case p.check(FN):
		fn := p.parseFuncDecl(pub, false)
		return &ast.Stmt{Span: p.span(start), Data: fn}
	case p.check(STRUCT):
		return &ast.Stmt{Span: p.span(start), Data: p.parseStructDecl(pub)}
	case p.check(ENUM):
		return &ast.Stmt{Span: p.span(start), Data: p.parseEnumDecl(pub)}
	case p.check(TYPE):
		return &ast.Stmt{Span: p.span(start), Data: p.parseTypeAlias(pub)}
	case p.check(EXTERN):
		return &ast.Stmt{Span: p.span(start), Data: p.parseExternDecl()}
	case p.check(IMPORT):
		return &ast.Stmt{Span: p.span(start), Data: p.parseImportDecl()}
	default:
		if pub {
			p.errorf("expected a declaration after 'pub', found %q", p.cur().val)
			panic(parseError{})
		}
		return p.parseStmt()
	}
}

// parseStmt parses one executable statement (not a top-level declaration,
// though struct/enum/type/extern/import still fall through to parseItem).
func (p *parser) parseStmt() *ast.Stmt {
	start := p.cur()
	switch {
	case p.check(LET):
		return &ast.Stmt{Span: p.span(start), Data: p.parseLet()}
	case p.check(RETURN):
		return &ast.Stmt{Span: p.span(start), Data: p.parseReturn()}
	case p.check(LOOP):
		return &ast.Stmt{Span: p.span(start), Data: p.parseLoop()}
	case p.check(BREAK):
		p.advance()
		p.expect(SEMI, "';'")
		return &ast.Stmt{Span: p.span(start), Data: &ast.BreakStmt{}}
	case p.check(CONTINUE):
		p.advance()
		p.expect(SEMI, "';'")
		return &ast.Stmt{Span: p.span(start), Data: &ast.ContinueStmt{}}
	case p.check(LBRACE):
		return &ast.Stmt{Span: p.span(start), Data: p.parseBlock()}
	case p.check(FN), p.check(STRUCT), p.check(ENUM), p.check(TYPE), p.check(EXTERN), p.check(IMPORT), p.check(PUB):
		return p.parseItem()
	default:
		x := p.parseExpr()
		blockLike := false
		switch x.Data.(type) {
		case *ast.If, *ast.Match:
			blockLike = true
		}
		if blockLike {
			p.match(SEMI) // trailing semicolon optional after a brace-terminated expression
		} else {
			p.expect(SEMI, "';'")
		}
		return &ast.Stmt{Span: p.span(start), Data: &ast.ExprStmt{X: x}}
	}
}

// parseBlock parses a `{ ... }` statement sequence.
func (p *parser) parseBlock() *ast.Block {
	p.expect(LBRACE, "'{'")
	b := &ast.Block{}
	for !p.check(RBRACE) && !p.atEOF() {
		if s := p.parseItemRecovering(); s != nil {
			b.Stmts = append(b.Stmts, s)
		}
	}
	p.expect(RBRACE, "'}'")
	return b
}

func (p *parser) parseLet() *ast.LetStmt {
	p.expect(LET, "'let'")
	mut := p.match(MUT)
	name := p.expect(IDENTIFIER, "identifier").val
	var typ *ast.Type
	if p.match(COLON) {
		typ = p.parseType()
	}
	var init *ast.Expr
	if p.match(ASSIGN) {
		init = p.parseExpr()
	}
	p.expect(SEMI, "';'")
	return &ast.LetStmt{Name: name, Mut: mut, Type: typ, Init: init}
}

func (p *parser) parseReturn() *ast.ReturnStmt {
	p.expect(RETURN, "'return'")
	var val *ast.Expr
	if !p.check(SEMI) {
		val = p.parseExpr()
	}
	p.expect(SEMI, "';'")
	return &ast.ReturnStmt{Value: val}
}

// parseLoop parses all four loop shapes: infinite, condition, range and
// iterator. `var in a..b` is a range loop; `var in expr` without `..` is an
// iterator loop.
func (p *parser) parseLoop() *ast.LoopStmt {
	p.expect(LOOP, "'loop'")

	if p.check(LBRACE) {
		return &ast.LoopStmt{Kind: ast.LoopInfinite, Body: p.parseBlock()}
	}

	if p.check(IDENTIFIER) && p.peekAt(1).typ == IN {
		varName := p.advance().val
		p.advance() // IN
		first := p.parseExprNoStructLit()
		if p.match(DOTDOT) {
			end := p.parseExprNoStructLit()
			body := p.parseBlock()
			return &ast.LoopStmt{Kind: ast.LoopRange, Var: varName, Start: first, End: end, Body: body}
		}
		body := p.parseBlock()
		return &ast.LoopStmt{Kind: ast.LoopIter, Var: varName, Iter: first, Body: body}
	}

	cond := p.parseExprNoStructLit()
	body := p.parseBlock()
	return &ast.LoopStmt{Kind: ast.LoopCond, Cond: cond, Body: body}
}

// parseOptGenerics parses an optional `<T, U>` generic parameter list
// attached to a function, struct, enum or type-alias declaration.
func (p *parser) parseOptGenerics() []string {
	if !p.match(LT) {
		return nil
	}
	var names []string
	for {
		names = append(names, p.expect(IDENTIFIER, "generic parameter name").val)
		if !p.match(COMMA) {
			break
		}
	}
	p.expect(GT, "'>'")
	return names
}

func (p *parser) parseParams(allowSelf bool) []ast.Param {
	p.expect(LPAREN, "'('")
	var params []ast.Param
	for !p.check(RPAREN) {
		if len(params) > 0 {
			p.expect(COMMA, "','")
		}
		mut := p.match(MUT)
		if allowSelf && p.check(SELF) {
			p.advance()
			params = append(params, ast.Param{Name: "self", IsSelf: true, Mut: mut})
			continue
		}
		name := p.expect(IDENTIFIER, "parameter name").val
		p.expect(COLON, "':'")
		typ := p.parseType()
		params = append(params, ast.Param{Name: name, Type: typ, Mut: mut})
	}
	p.expect(RPAREN, "')'")
	return params
}

func (p *parser) parseFuncDecl(pub, isMethod bool) *ast.FuncDecl {
	p.expect(FN, "'fn'")
	name := p.expect(IDENTIFIER, "function name").val
	generics := p.parseOptGenerics()
	params := p.parseParams(isMethod)
	var ret *ast.Type
	if p.match(ARROW) {
		ret = p.parseType()
	}
	body := p.parseBlock()
	return &ast.FuncDecl{Name: name, Generics: generics, Params: params, Ret: ret, Body: body, Public: pub, IsMethod: isMethod}
}

func (p *parser) parseStructDecl(pub bool) *ast.StructDecl {
	p.expect(STRUCT, "'struct'")
	name := p.expect(IDENTIFIER, "struct name").val
	generics := p.parseOptGenerics()
	p.expect(LBRACE, "'{'")
	d := &ast.StructDecl{Name: name, Generics: generics, Public: pub}
	for !p.check(RBRACE) && !p.atEOF() {
		methodPub := p.match(PUB)
		if p.check(FN) {
			d.Methods = append(d.Methods, p.parseFuncDecl(methodPub, true))
			continue
		}
		fname := p.expect(IDENTIFIER, "field name").val
		p.expect(COLON, "':'")
		ftyp := p.parseType()
		d.Fields = append(d.Fields, ast.Field{Name: fname, Type: ftyp})
		p.match(COMMA)
	}
	p.expect(RBRACE, "'}'")
	return d
}

func (p *parser) parseEnumDecl(pub bool) *ast.EnumDecl {
	p.expect(ENUM, "'enum'")
	name := p.expect(IDENTIFIER, "enum name").val
	generics := p.parseOptGenerics()
	p.expect(LBRACE, "'{'")
	d := &ast.EnumDecl{Name: name, Generics: generics, Public: pub}
	for !p.check(RBRACE) && !p.atEOF() {
		vname := p.expect(IDENTIFIER, "variant name").val
		var fields []*ast.Type
		if p.match(LPAREN) {
			for !p.check(RPAREN) {
				if len(fields) > 0 {
					p.expect(COMMA, "','")
				}
				fields = append(fields, p.parseType())
			}
			p.expect(RPAREN, "')'")
		}
		d.Variants = append(d.Variants, ast.EnumVariantDecl{Name: vname, Fields: fields})
		if !p.match(COMMA) {
			break
		}
	}
	p.expect(RBRACE, "'}'")
	return d
}

func (p *parser) parseTypeAlias(pub bool) *ast.TypeAliasDecl {
	p.expect(TYPE, "'type'")
	name := p.expect(IDENTIFIER, "type name").val
	generics := p.parseOptGenerics()
	p.expect(ASSIGN, "'='")
	target := p.parseType()
	p.expect(SEMI, "';'")
	return &ast.TypeAliasDecl{Name: name, Generics: generics, Target: target, Public: pub}
}

// parseExternDecl parses `extern fn name(params) -> Ret;`. Variadic externs
// (e.g. a C `printf`) are modeled by ExternDecl.Varargs but the grammar has
// no surface syntax for them yet; callers that need one set the flag by
// other means (a future `...` parameter marker).
func (p *parser) parseExternDecl() *ast.ExternDecl {
	p.expect(EXTERN, "'extern'")
	p.expect(FN, "'fn'")
	name := p.expect(IDENTIFIER, "function name").val
	params := p.parseParams(false)
	var ret *ast.Type
	if p.match(ARROW) {
		ret = p.parseType()
	}
	p.expect(SEMI, "';'")
	return &ast.ExternDecl{Name: name, Params: params, Ret: ret}
}

func (p *parser) parseImportDecl() *ast.ImportDecl {
	p.expect(IMPORT, "'import'")
	var parts []string
	parts = append(parts, p.expect(IDENTIFIER, "module path segment").val)
	for p.match(COLONCOLON) {
		parts = append(parts, p.expect(IDENTIFIER, "module path segment").val)
	}
	p.expect(SEMI, "';'")
	return &ast.ImportDecl{Path: joinPath(parts)}
}

func joinPath(parts []string) string {
	s := parts[0]
	for _, p := range parts[1:] {
		s += "::" + p
	}
	return s
}
