package frontend

import (
	"strconv"

	"pawc/src/ast"
)

// parseExpr parses a full expression at the lowest precedence (assignment).
func (p *parser) parseExpr() *ast.Expr { return p.parseAssign() }

// parseExprNoStructLit parses an expression with bare `Name { ... }` struct
// literals disabled, used for if/loop condition positions so `if cond { }`
// never misparses `cond` as a struct literal swallowing the block that
// should belong to the if.
func (p *parser) parseExprNoStructLit() *ast.Expr {
	saved := p.noLit
	p.noLit = true
	x := p.parseAssign()
	p.noLit = saved
	return x
}

func (p *parser) parseAssign() *ast.Expr {
	start := p.cur()
	lhs := p.parseMatchLevel()
	op := ""
	switch {
	case p.check(ASSIGN):
		p.advance()
	case p.check(PLUSEQ):
		op = "+"
		p.advance()
	case p.check(MINUSEQ):
		op = "-"
		p.advance()
	default:
		return lhs
	}
	rhs := p.parseAssign()
	return &ast.Expr{Span: p.span(start), Data: &ast.Assign{Op: op, Target: lhs, Value: rhs}}
}

// parseMatchLevel handles `match` at its grammar precedence (between
// assignment and logical-or) and otherwise falls through to the binary
// operator chain.
func (p *parser) parseMatchLevel() *ast.Expr {
	if p.check(MATCH) {
		return p.parseMatch()
	}
	return p.parseLogicalOr()
}

func (p *parser) parseMatch() *ast.Expr {
	start := p.cur()
	p.expect(MATCH, "'match'")
	value := p.parseExprNoStructLit()
	p.expect(LBRACE, "'{'")
	m := &ast.Match{Value: value}
	for !p.check(RBRACE) && !p.atEOF() {
		pat := p.parsePattern()
		var guard *ast.Expr
		if p.check(IF) {
			p.advance()
			guard = p.parseExpr()
		}
		p.expect(FATARROW, "'=>'")
		arm := p.parseExpr()
		m.Arms = append(m.Arms, ast.MatchArm{Pattern: pat, Guard: guard, Value: arm})
		if !p.match(COMMA) {
			break
		}
	}
	p.expect(RBRACE, "'}'")
	return &ast.Expr{Span: p.span(start), Data: m}
}

func (p *parser) parseLogicalOr() *ast.Expr {
	x := p.parseLogicalAnd()
	for p.check(OR) {
		start := p.cur()
		p.advance()
		rhs := p.parseLogicalAnd()
		x = &ast.Expr{Span: p.span(start), Data: &ast.Binary{Op: "||", L: x, R: rhs}}
	}
	return x
}

func (p *parser) parseLogicalAnd() *ast.Expr {
	x := p.parseEquality()
	for p.check(AND) {
		start := p.cur()
		p.advance()
		rhs := p.parseEquality()
		x = &ast.Expr{Span: p.span(start), Data: &ast.Binary{Op: "&&", L: x, R: rhs}}
	}
	return x
}

func (p *parser) parseEquality() *ast.Expr {
	x := p.parseComparison()
	for p.check(EQ) || p.check(NEQ) {
		start := p.cur()
		op := "=="
		if p.check(NEQ) {
			op = "!="
		}
		p.advance()
		rhs := p.parseComparison()
		x = &ast.Expr{Span: p.span(start), Data: &ast.Binary{Op: op, L: x, R: rhs}}
	}
	return x
}

func (p *parser) parseComparison() *ast.Expr {
	x := p.parseIs()
	for p.check(LT) || p.check(LE) || p.check(GT) || p.check(GE) {
		start := p.cur()
		op := tokOpStr(p.cur().typ)
		p.advance()
		rhs := p.parseIs()
		x = &ast.Expr{Span: p.span(start), Data: &ast.Binary{Op: op, L: x, R: rhs}}
	}
	return x
}

func tokOpStr(tt itemType) string {
	switch tt {
	case LT:
		return "<"
	case LE:
		return "<="
	case GT:
		return ">"
	case GE:
		return ">="
	default:
		return "?"
	}
}

// parseIs handles the `value is Pattern` boolean test, which sits at
// comparison precedence: it produces a bool, usable directly in `&&`/`||`
// chains, and its bindings are threaded through to an enclosing `if`.
func (p *parser) parseIs() *ast.Expr {
	x := p.parseAdditive()
	if p.check(IS) {
		start := p.cur()
		p.advance()
		pat := p.parsePattern()
		return &ast.Expr{Span: p.span(start), Data: &ast.IsExpr{Value: x, Pattern: pat}}
	}
	return x
}

func (p *parser) parseAdditive() *ast.Expr {
	x := p.parseMultiplicative()
	for p.check(PLUS) || p.check(MINUS) {
		start := p.cur()
		op := "+"
		if p.check(MINUS) {
			op = "-"
		}
		p.advance()
		rhs := p.parseMultiplicative()
		x = &ast.Expr{Span: p.span(start), Data: &ast.Binary{Op: op, L: x, R: rhs}}
	}
	return x
}

func (p *parser) parseMultiplicative() *ast.Expr {
	x := p.parseUnary()
	for p.check(STAR) || p.check(SLASH) || p.check(PERCENT) {
		start := p.cur()
		op := map[itemType]string{STAR: "*", SLASH: "/", PERCENT: "%"}[p.cur().typ]
		p.advance()
		rhs := p.parseUnary()
		x = &ast.Expr{Span: p.span(start), Data: &ast.Binary{Op: op, L: x, R: rhs}}
	}
	return x
}

func (p *parser) parseUnary() *ast.Expr {
	if p.check(MINUS) || p.check(NOT) {
		start := p.cur()
		op := "-"
		if p.check(NOT) {
			op = "!"
		}
		p.advance()
		x := p.parseUnary()
		return &ast.Expr{Span: p.span(start), Data: &ast.Unary{Op: op, X: x}}
	}
	return p.parsePostfix()
}

// parsePostfix parses a primary expression followed by any chain of
// `.field`, `[index]`, `(args)`, `?` and `as Type` suffixes.
func (p *parser) parsePostfix() *ast.Expr {
	x := p.parsePrimary()
	for {
		start := p.cur()
		switch {
		case p.check(DOT):
			p.advance()
			name := p.expect(IDENTIFIER, "field or method name").val
			x = &ast.Expr{Span: p.span(start), Data: &ast.Member{X: x, Name: name}}
		case p.check(LBRACKET):
			p.advance()
			idx := p.parseExpr()
			p.expect(RBRACKET, "']'")
			x = &ast.Expr{Span: p.span(start), Data: &ast.Index{X: x, Idx: idx}}
		case p.check(LPAREN):
			args := p.parseArgList()
			x = &ast.Expr{Span: p.span(start), Data: &ast.Call{Callee: x, Args: args}}
		case p.check(QUESTION):
			p.advance()
			x = &ast.Expr{Span: p.span(start), Data: &ast.Try{X: x}}
		case p.check(AS):
			p.advance()
			to := p.parseType()
			x = &ast.Expr{Span: p.span(start), Data: &ast.Cast{X: x, To: to}}
		default:
			return x
		}
	}
}

// parseArgList parses a parenthesized, comma-separated argument list. The
// opening '(' must be the current token.
func (p *parser) parseArgList() []*ast.Expr {
	p.expect(LPAREN, "'('")
	var args []*ast.Expr
	for !p.check(RPAREN) {
		if len(args) > 0 {
			p.expect(COMMA, "','")
		}
		args = append(args, p.parseExpr())
	}
	p.expect(RPAREN, "')'")
	return args
}

func (p *parser) parsePrimary() *ast.Expr {
	start := p.cur()
	switch {
	case p.check(INT_LIT):
		p.advance()
		v, _ := strconv.ParseInt(start.val, 10, 64)
		return &ast.Expr{Span: p.span(start), Data: &ast.IntLit{Value: v}}
	case p.check(FLOAT_LIT):
		p.advance()
		v, _ := strconv.ParseFloat(start.val, 64)
		return &ast.Expr{Span: p.span(start), Data: &ast.FloatLit{Value: v}}
	case p.check(STRING_LIT):
		p.advance()
		return &ast.Expr{Span: p.span(start), Data: &ast.StringLit{Value: unescape(start.val)}}
	case p.check(CHAR_LIT):
		p.advance()
		s := unescape(start.val)
		var r rune
		for _, c := range s {
			r = c
			break
		}
		return &ast.Expr{Span: p.span(start), Data: &ast.CharLit{Value: r}}
	case p.check(TRUE):
		p.advance()
		return &ast.Expr{Span: p.span(start), Data: &ast.BoolLit{Value: true}}
	case p.check(FALSE):
		p.advance()
		return &ast.Expr{Span: p.span(start), Data: &ast.BoolLit{Value: false}}
	case p.check(SELF):
		p.advance()
		return &ast.Expr{Span: p.span(start), Data: &ast.Ident{Name: "self"}}
	case p.check(OK):
		p.advance()
		p.expect(LPAREN, "'('")
		x := p.parseExpr()
		p.expect(RPAREN, "')'")
		return &ast.Expr{Span: p.span(start), Data: &ast.Ok{X: x}}
	case p.check(ERR):
		p.advance()
		p.expect(LPAREN, "'('")
		x := p.parseExpr()
		p.expect(RPAREN, "')'")
		return &ast.Expr{Span: p.span(start), Data: &ast.Err{X: x}}
	case p.check(IF):
		return p.parseIfExpr()
	case p.check(LPAREN):
		p.advance()
		saved := p.noLit
		p.noLit = false
		x := p.parseExpr()
		p.noLit = saved
		p.expect(RPAREN, "')'")
		return x
	case p.check(LBRACKET):
		p.advance()
		lit := &ast.ArrayLit{}
		for !p.check(RBRACKET) {
			if len(lit.Elems) > 0 {
				p.expect(COMMA, "','")
			}
			lit.Elems = append(lit.Elems, p.parseExpr())
		}
		p.expect(RBRACKET, "']'")
		return &ast.Expr{Span: p.span(start), Data: lit}
	case p.check(IDENTIFIER):
		return p.parseIdentOrVariant()
	default:
		p.errorf("expected an expression, found %q", p.cur().val)
		panic(parseError{})
	}
}

// parseIdentOrVariant resolves the `X`, `X::Y`, `X<T>(...)` and
// `Name { field: e, ... }` forms that all start with a bare identifier.
func (p *parser) parseIdentOrVariant() *ast.Expr {
	start := p.cur()
	name := p.advance().val

	if p.check(COLONCOLON) {
		p.advance()
		member := p.expect(IDENTIFIER, "name after '::'").val
		if p.enums[name] {
			var args []*ast.Expr
			if p.check(LPAREN) {
				args = p.parseArgList()
			}
			return &ast.Expr{Span: p.span(start), Data: &ast.EnumVariant{Enum: name, Variant: member, Args: args}}
		}
		ident := &ast.Expr{Span: p.span(start), Data: &ast.Ident{Module: name, Name: member}}
		typeArgs := p.tryCallTypeArgs()
		if typeArgs != nil || p.check(LPAREN) {
			return &ast.Expr{Span: p.span(start), Data: &ast.Call{Callee: ident, TypeArgs: typeArgs, Args: p.parseArgList()}}
		}
		return ident
	}

	typeArgs := p.tryCallTypeArgs()
	if typeArgs != nil {
		if p.check(LPAREN) {
			return &ast.Expr{Span: p.span(start), Data: &ast.Call{Callee: &ast.Expr{Span: p.span(start), Data: &ast.Ident{Name: name}}, TypeArgs: typeArgs, Args: p.parseArgList()}}
		}
		return p.parseStructLit(start, name, typeArgs)
	}

	if !p.noLit && p.check(LBRACE) {
		return p.parseStructLit(start, name, nil)
	}

	return &ast.Expr{Span: p.span(start), Data: &ast.Ident{Name: name}}
}

// tryCallTypeArgs tentatively parses `<T, U>` immediately followed by '(' or
// '{', rolling back if what follows isn't a call or struct literal (so a
// bare `x < y` comparison is never misparsed).
func (p *parser) tryCallTypeArgs() []*ast.Type {
	if !p.check(LT) {
		return nil
	}
	save := p.pos
	p.advance()
	args, ok := p.tryGenericArgList()
	if !ok || !(p.check(LPAREN) || p.check(LBRACE)) {
		p.pos = save
		return nil
	}
	return args
}

func (p *parser) parseStructLit(start item, name string, typeArgs []*ast.Type) *ast.Expr {
	p.expect(LBRACE, "'{'")
	lit := &ast.StructLit{Name: name, TypeArgs: typeArgs}
	for !p.check(RBRACE) && !p.atEOF() {
		if len(lit.Fields) > 0 {
			p.expect(COMMA, "','")
			if p.check(RBRACE) {
				break
			}
		}
		fname := p.expect(IDENTIFIER, "field name").val
		p.expect(COLON, "':'")
		val := p.parseExpr()
		lit.Fields = append(lit.Fields, ast.FieldInit{Name: fname, Value: val})
	}
	p.expect(RBRACE, "'}'")
	return &ast.Expr{Span: p.span(start), Data: lit}
}

// parseIfExpr parses `if cond { ... } else { ... }`, usable both as a
// statement (wrapped in an ExprStmt) and as an expression whose value is
// the taken branch's trailing expression-statement.
func (p *parser) parseIfExpr() *ast.Expr {
	start := p.cur()
	p.expect(IF, "'if'")
	cond := p.parseExprNoStructLit()
	then := p.parseBlock()
	var els *ast.Block
	if p.match(ELSE) {
		if p.check(IF) {
			inner := p.parseIfExpr()
			els = &ast.Block{Stmts: []*ast.Stmt{{Span: inner.Span, Data: &ast.ExprStmt{X: inner}}}}
		} else {
			els = p.parseBlock()
		}
	}
	return &ast.Expr{Span: p.span(start), Data: &ast.If{Cond: cond, Then: then, Else: els}}
}

// ---------------------
// ----- Patterns ------
// ---------------------

// parsePatternArgs parses an optional parenthesized, comma-separated
// sub-pattern list shared by the qualified and bare enum-variant patterns.
func (p *parser) parsePatternArgs() []*ast.Pattern {
	var sub []*ast.Pattern
	if p.match(LPAREN) {
		for !p.check(RPAREN) {
			if len(sub) > 0 {
				p.expect(COMMA, "','")
			}
			sub = append(sub, p.parsePattern())
		}
		p.expect(RPAREN, "')'")
	}
	return sub
}

func (p *parser) parsePattern() *ast.Pattern {
	start := p.cur()
	switch {
	case p.check(IDENTIFIER) && start.val == "_":
		p.advance()
		return &ast.Pattern{Span: p.span(start), Data: &ast.Wildcard{}}
	case p.check(INT_LIT):
		p.advance()
		v, _ := strconv.ParseInt(start.val, 10, 64)
		return &ast.Pattern{Span: p.span(start), Data: &ast.PLiteral{Value: &ast.IntLit{Value: v}}}
	case p.check(FLOAT_LIT):
		p.advance()
		v, _ := strconv.ParseFloat(start.val, 64)
		return &ast.Pattern{Span: p.span(start), Data: &ast.PLiteral{Value: &ast.FloatLit{Value: v}}}
	case p.check(STRING_LIT):
		p.advance()
		return &ast.Pattern{Span: p.span(start), Data: &ast.PLiteral{Value: &ast.StringLit{Value: unescape(start.val)}}}
	case p.check(TRUE), p.check(FALSE):
		p.advance()
		return &ast.Pattern{Span: p.span(start), Data: &ast.PLiteral{Value: &ast.BoolLit{Value: start.typ == TRUE}}}
	case p.check(IDENTIFIER):
		name := p.advance().val
		switch {
		case p.match(COLONCOLON):
			variant := p.expect(IDENTIFIER, "variant name").val
			sub := p.parsePatternArgs()
			return &ast.Pattern{Span: p.span(start), Data: &ast.PEnum{Enum: name, Variant: variant, Sub: sub}}
		case p.check(LPAREN):
			// Bare `Variant(subpats)`, resolved against the matched value's
			// enum type by variant name alone (no Enum qualifier), the
			// surface form the original `is`/match grammar accepts alongside
			// the qualified `Enum::Variant(...)` form.
			sub := p.parsePatternArgs()
			return &ast.Pattern{Span: p.span(start), Data: &ast.PEnum{Variant: name, Sub: sub}}
		case p.check(LBRACE):
			p.advance()
			var fields []ast.FieldPattern
			for !p.check(RBRACE) && !p.atEOF() {
				if len(fields) > 0 {
					p.expect(COMMA, "','")
					if p.check(RBRACE) {
						break
					}
				}
				fname := p.expect(IDENTIFIER, "field name").val
				var sub *ast.Pattern
				if p.match(COLON) {
					sub = p.parsePattern()
				} else {
					sub = &ast.Pattern{Span: p.span(start), Data: &ast.PIdent{Name: fname}}
				}
				fields = append(fields, ast.FieldPattern{Name: fname, Sub: sub})
			}
			p.expect(RBRACE, "'}'")
			return &ast.Pattern{Span: p.span(start), Data: &ast.PStruct{Name: name, Fields: fields}}
		default:
			return &ast.Pattern{Span: p.span(start), Data: &ast.PIdent{Name: name}}
		}
	default:
		p.errorf("expected a pattern, found %q", p.cur().val)
		panic(parseError{})
	}
}
