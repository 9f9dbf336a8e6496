package module

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pawc/src/ast"
)

func TestToFilePath(t *testing.T) {
	cases := map[string]string{
		"std::math": filepath.Join("std", "math.paw"),
		"geometry":  "geometry.paw",
	}
	for in, want := range cases {
		if got := ToFilePath(in); got != want {
			t.Errorf("ToFilePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func writeFile(t *testing.T, dir, relPath, content string) {
	t.Helper()
	full := filepath.Join(dir, relPath)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoaderTopologicalOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.paw", `import geometry;
fn main() -> i32 { return 0; }
`)
	writeFile(t, dir, "geometry.paw", `import std::math;
fn area(r: i32) -> i32 { return r; }
`)
	writeFile(t, dir, filepath.Join("std", "math.paw"), `fn sqrt(x: i32) -> i32 { return x; }
`)

	l := NewLoader(dir, "")
	order, err := l.Load(filepath.Join(dir, "main.paw"))
	if err != nil {
		t.Fatalf("Load failed: %v (%s)", err, l.Diagnostics())
	}

	pos := make(map[string]int)
	for i, m := range order {
		pos[m] = i
	}
	if pos["std::math"] >= pos["geometry"] {
		t.Errorf("expected std::math before geometry, got order %v", order)
	}
	if pos["geometry"] >= pos[EntryModule] {
		t.Errorf("expected geometry before %s, got order %v", EntryModule, order)
	}
}

func TestLoaderDetectsCycle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.paw", `import a;
`)
	writeFile(t, dir, "a.paw", `import b;
`)
	writeFile(t, dir, "b.paw", `import a;
`)

	l := NewLoader(dir, "")
	_, err := l.Load(filepath.Join(dir, "main.paw"))
	if err == nil {
		t.Fatal("expected a cyclic import error, got nil")
	}
	want := "a -> b -> a"
	if !strings.Contains(err.Error(), want) {
		t.Errorf("expected the error to name the full cycle chain %q, got %q", want, err.Error())
	}
}

// TestLoaderPrefersStdlibRoot verifies the fixed search sequence: a module
// present under stdlibRoot is loaded from there even when a same-named file
// also exists under the entry file's directory.
func TestLoaderPrefersStdlibRoot(t *testing.T) {
	dir := t.TempDir()
	stdlib := t.TempDir()
	writeFile(t, dir, "main.paw", `import math;
fn main() -> i32 { return 0; }
`)
	writeFile(t, dir, "math.paw", `fn sqrt(x: i32) -> i32 { return 0; }
`)
	writeFile(t, stdlib, "math.paw", `fn sqrt(x: i32) -> i32 { return x; }
`)

	l := NewLoader(dir, stdlib)
	if _, err := l.Load(filepath.Join(dir, "main.paw")); err != nil {
		t.Fatalf("Load failed: %v (%s)", err, l.Diagnostics())
	}

	prog, ok := l.Program("math")
	if !ok {
		t.Fatal("expected module \"math\" to be loaded")
	}
	fn, ok := prog.Items[0].Data.(*ast.FuncDecl)
	if !ok || fn.Name != "sqrt" {
		t.Fatalf("expected the stdlib copy of math.paw to win, got %#v", prog.Items[0].Data)
	}
	if len(fn.Body.Stmts) == 0 {
		t.Fatal("expected sqrt's body to be parsed")
	}
	ret, ok := fn.Body.Stmts[0].Data.(*ast.ReturnStmt)
	if !ok {
		t.Fatalf("expected a return statement, got %#v", fn.Body.Stmts[0].Data)
	}
	ident, ok := ret.Value.Data.(*ast.Ident)
	if !ok || ident.Name != "x" {
		t.Fatalf("expected the stdlib sqrt to return its parameter, got %#v", ret.Value.Data)
	}
}
