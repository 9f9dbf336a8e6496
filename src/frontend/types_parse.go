package frontend

import "pawc/src/ast"

var primKeywords = map[string]ast.PrimKind{
	"i8": ast.I8, "i16": ast.I16, "i32": ast.I32, "i64": ast.I64, "i128": ast.I128,
	"u8": ast.U8, "u16": ast.U16, "u32": ast.U32, "u64": ast.U64, "u128": ast.U128,
	"f32": ast.F32, "f64": ast.F64,
	"bool": ast.Bool, "char": ast.Char, "string": ast.Str, "void": ast.Void,
}

// parseType parses a type expression: a primitive name, a possibly
// generic-instantiated named type, an array type, Self, or any of those
// followed by a trailing `?` marking it Optional.
func (p *parser) parseType() *ast.Type {
	start := p.cur()
	var base *ast.Type

	switch {
	case p.check(SELFTYPE):
		p.advance()
		base = &ast.Type{Span: p.span(start), Data: &ast.SelfType{}}
	case p.check(LBRACKET):
		p.advance()
		elem := p.parseType()
		size := -1
		if p.match(SEMI) {
			tok := p.expect(INT_LIT, "array size")
			size = parseIntLit(tok.val)
		}
		p.expect(RBRACKET, "']'")
		base = &ast.Type{Span: p.span(start), Data: &ast.Array{Elem: elem, Size: size}}
	case p.check(IDENTIFIER):
		name := p.advance().val
		if kind, ok := primKeywords[name]; ok {
			base = &ast.Type{Span: p.span(start), Data: &ast.Primitive{Kind: kind}}
		} else {
			args := p.parseOptGenericArgs()
			base = &ast.Type{Span: p.span(start), Data: &ast.Named{Name: name, Args: args}}
		}
	default:
		p.errorf("expected a type, found %q", p.cur().val)
		panic(parseError{})
	}

	for p.match(QUESTION) {
		base = &ast.Type{Span: base.Span, Data: &ast.Optional{Inner: base}}
	}
	return base
}

// parseOptGenericArgs parses an optional `<T, U>` type-argument list on a
// named type reference, e.g. Pair<i32, string>.
func (p *parser) parseOptGenericArgs() []*ast.Type {
	if !p.check(LT) {
		return nil
	}
	save := p.pos
	p.advance()
	args, ok := p.tryGenericArgList()
	if !ok {
		p.pos = save
		return nil
	}
	return args
}

// tryGenericArgList parses a comma-separated type list terminated by '>',
// returning ok=false without consuming anything durable on failure so the
// caller can reinterpret '<' as the less-than operator.
func (p *parser) tryGenericArgList() (args []*ast.Type, ok bool) {
	p.speculative++
	defer func() {
		p.speculative--
		if recover() != nil {
			ok = false
		}
	}()
	for !p.check(GT) {
		if len(args) > 0 {
			if !p.match(COMMA) {
				return nil, false
			}
		}
		args = append(args, p.parseType())
	}
	p.advance() // '>'
	return args, true
}

func parseIntLit(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}
