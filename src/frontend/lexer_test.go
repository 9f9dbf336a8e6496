// Tests the lexer by verifying that small sample paw snippets are tokenized
// into the expected item sequence, including exact source positions, the
// way the teacher's own lexer_test.go checked bitops.vsl token-for-token.

package frontend

import "testing"

func TestLexerTokens(t *testing.T) {
	src := "fn add<T>(a: T, b: T) -> T {\n    return a + b;\n}\n"

	exp := []item{
		{val: "fn", typ: FN, line: 1, pos: 1},
		{val: "add", typ: IDENTIFIER, line: 1, pos: 4},
		{val: "<", typ: LT, line: 1, pos: 7},
		{val: "T", typ: IDENTIFIER, line: 1, pos: 8},
		{val: ">", typ: GT, line: 1, pos: 9},
		{val: "(", typ: LPAREN, line: 1, pos: 10},
		{val: "a", typ: IDENTIFIER, line: 1, pos: 11},
		{val: ":", typ: COLON, line: 1, pos: 12},
		{val: "T", typ: IDENTIFIER, line: 1, pos: 14},
		{val: ",", typ: COMMA, line: 1, pos: 15},
		{val: "b", typ: IDENTIFIER, line: 1, pos: 17},
		{val: ":", typ: COLON, line: 1, pos: 18},
		{val: "T", typ: IDENTIFIER, line: 1, pos: 20},
		{val: ")", typ: RPAREN, line: 1, pos: 21},
		{val: "->", typ: ARROW, line: 1, pos: 23},
		{val: "T", typ: IDENTIFIER, line: 1, pos: 26},
		{val: "{", typ: LBRACE, line: 1, pos: 28},
		{val: "return", typ: RETURN, line: 2, pos: 5},
		{val: "a", typ: IDENTIFIER, line: 2, pos: 12},
		{val: "+", typ: PLUS, line: 2, pos: 14},
		{val: "b", typ: IDENTIFIER, line: 2, pos: 16},
		{val: ";", typ: SEMI, line: 2, pos: 17},
		{val: "}", typ: RBRACE, line: 3, pos: 1},
	}

	l := newLexer("test.paw", src, lexGlobal)
	go l.run()

	for i, want := range exp {
		got := l.nextItem()
		if got.typ != want.typ || got.val != want.val {
			t.Fatalf("token %d: expected %q, got %q", i, want.val, got.String())
		}
		if got.line != want.line || got.pos != want.pos {
			t.Errorf("token %d (%q): expected position %d:%d, got %d:%d",
				i, want.val, want.line, want.pos, got.line, got.pos)
		}
	}
	if eof := l.nextItem(); eof.typ != itemEOF {
		t.Fatalf("expected EOF after %d tokens, got %q", len(exp), eof.String())
	}
}

func TestLexerStringAndCharLiterals(t *testing.T) {
	l := newLexer("test.paw", `"a\tb" 'x' '\n'`, lexGlobal)
	go l.run()

	str := l.nextItem()
	if str.typ != STRING_LIT || str.val != `a\tb` {
		t.Fatalf(`expected raw string literal a\tb, got %q (%v)`, str.val, str.typ)
	}
	if got := unescape(str.val); got != "a\tb" {
		t.Errorf("unescape(%q) = %q, want a tab-separated string", str.val, got)
	}

	ch := l.nextItem()
	if ch.typ != CHAR_LIT || ch.val != "x" {
		t.Fatalf("expected char literal x, got %q", ch.val)
	}

	esc := l.nextItem()
	if esc.typ != CHAR_LIT || esc.val != `\n` {
		t.Fatalf(`expected escaped char literal \n, got %q`, esc.val)
	}
	if got := unescape(esc.val); got != "\n" {
		t.Errorf("unescape(%q) = %q, want a newline", esc.val, got)
	}
}

func TestLexerSkipsLineComments(t *testing.T) {
	l := newLexer("test.paw", "let x = 1; // trailing comment\nlet y = 2;\n", lexGlobal)
	go l.run()

	var kinds []itemType
	for {
		it := l.nextItem()
		if it.typ == itemEOF {
			break
		}
		kinds = append(kinds, it.typ)
	}
	want := []itemType{LET, IDENTIFIER, ASSIGN, INT_LIT, SEMI, LET, IDENTIFIER, ASSIGN, INT_LIT, SEMI}
	if len(kinds) != len(want) {
		t.Fatalf("expected %d tokens (comment stripped), got %d: %v", len(want), len(kinds), kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("token %d: expected %d, got %d", i, want[i], kinds[i])
		}
	}
}
