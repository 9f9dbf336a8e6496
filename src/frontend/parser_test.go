// Tests the recursive-descent parser against small paw snippets, checking
// the resulting AST shapes the way lexer_test.go checks token sequences.

package frontend

import (
	"testing"

	"pawc/src/ast"
)

func parseExprStmt(t *testing.T, src string) *ast.Expr {
	t.Helper()
	prog, errs := Parse("test.paw", "main", src)
	if len(errs) > 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	fn, ok := prog.Items[0].Data.(*ast.FuncDecl)
	if !ok {
		t.Fatalf("expected a function declaration, got %#v", prog.Items[0].Data)
	}
	es, ok := fn.Body.Stmts[0].Data.(*ast.ExprStmt)
	if !ok {
		t.Fatalf("expected an expression statement, got %#v", fn.Body.Stmts[0].Data)
	}
	return es.X
}

func TestParsePatternAcceptsQualifiedEnumVariant(t *testing.T) {
	src := `fn f(r: Result) -> bool { r is Result::Error(m); }
`
	ret := parseExprStmt(t, src)
	is, ok := ret.Data.(*ast.IsExpr)
	if !ok {
		t.Fatalf("expected an is-expression, got %#v", ret.Data)
	}
	pe, ok := is.Pattern.Data.(*ast.PEnum)
	if !ok {
		t.Fatalf("expected a PEnum pattern, got %#v", is.Pattern.Data)
	}
	if pe.Enum != "Result" || pe.Variant != "Error" {
		t.Fatalf("expected Result::Error, got %s::%s", pe.Enum, pe.Variant)
	}
	if len(pe.Sub) != 1 {
		t.Fatalf("expected one sub-pattern, got %d", len(pe.Sub))
	}
	sub, ok := pe.Sub[0].Data.(*ast.PIdent)
	if !ok || sub.Name != "m" {
		t.Fatalf("expected sub-pattern binding %q, got %#v", "m", pe.Sub[0].Data)
	}
}

func TestParsePatternAcceptsBareEnumVariant(t *testing.T) {
	src := `fn f(r: Result) -> bool { r is Error(m); }
`
	ret := parseExprStmt(t, src)
	is, ok := ret.Data.(*ast.IsExpr)
	if !ok {
		t.Fatalf("expected an is-expression, got %#v", ret.Data)
	}
	pe, ok := is.Pattern.Data.(*ast.PEnum)
	if !ok {
		t.Fatalf("expected a PEnum pattern, got %#v", is.Pattern.Data)
	}
	if pe.Enum != "" {
		t.Fatalf("expected no Enum qualifier on a bare variant pattern, got %q", pe.Enum)
	}
	if pe.Variant != "Error" {
		t.Fatalf("expected variant %q, got %q", "Error", pe.Variant)
	}
	if len(pe.Sub) != 1 {
		t.Fatalf("expected one sub-pattern, got %d", len(pe.Sub))
	}
	sub, ok := pe.Sub[0].Data.(*ast.PIdent)
	if !ok || sub.Name != "m" {
		t.Fatalf("expected sub-pattern binding %q, got %#v", "m", pe.Sub[0].Data)
	}
}

func TestParsePatternAcceptsBareEnumVariantInMatch(t *testing.T) {
	// A zero-argument bare variant like `None` is still indistinguishable
	// from a bind-all identifier pattern at parse time (no parens to
	// disambiguate), so that case is left as a PIdent default arm; only the
	// parenthesized form is resolvable as an enum variant without the
	// `Enum::` qualifier.
	src := `fn f(o: Option) -> i32 {
    match o {
        Some(x) => x,
        _ => 0,
    }
}
`
	prog, errs := Parse("test.paw", "main", src)
	if len(errs) > 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	fn, ok := prog.Items[0].Data.(*ast.FuncDecl)
	if !ok {
		t.Fatalf("expected a function declaration, got %#v", prog.Items[0].Data)
	}
	es, ok := fn.Body.Stmts[0].Data.(*ast.ExprStmt)
	if !ok {
		t.Fatalf("expected an expression statement, got %#v", fn.Body.Stmts[0].Data)
	}
	m, ok := es.X.Data.(*ast.Match)
	if !ok {
		t.Fatalf("expected a match expression, got %#v", es.X.Data)
	}
	if len(m.Arms) != 2 {
		t.Fatalf("expected two arms, got %d", len(m.Arms))
	}
	some, ok := m.Arms[0].Pattern.Data.(*ast.PEnum)
	if !ok || some.Enum != "" || some.Variant != "Some" || len(some.Sub) != 1 {
		t.Fatalf("expected a bare Some(x) pattern, got %#v", m.Arms[0].Pattern.Data)
	}
	if _, ok := m.Arms[1].Pattern.Data.(*ast.Wildcard); !ok {
		t.Fatalf("expected a wildcard default arm, got %#v", m.Arms[1].Pattern.Data)
	}
}
