package types

import (
	"testing"

	"pawc/src/ast"
	"pawc/src/symtab"
)

func primType(k ast.PrimKind) *ast.Type {
	return &ast.Type{Data: &ast.Primitive{Kind: k}}
}

func named(name string, args ...*ast.Type) *ast.Type {
	return &ast.Type{Data: &ast.Named{Name: name, Args: args}}
}

func TestResolvePrimitives(t *testing.T) {
	r := NewResolver("main", NewRegistry(), symtab.New())
	rt, err := r.Resolve(primType(ast.I32), -1)
	if err != nil {
		t.Fatal(err)
	}
	if got := rt.String(); got != "i32" {
		t.Fatalf("expected i32, got %s", got)
	}
	rt, err = r.Resolve(primType(ast.Str), -1)
	if err != nil {
		t.Fatal(err)
	}
	if !IsStringPointer(rt) {
		t.Fatalf("expected string to resolve to a pointer-to-char, got %v", rt)
	}
}

func TestResolveStructIsPointer(t *testing.T) {
	reg := NewRegistry()
	prog := &ast.Program{
		Module: "main",
		Items: []*ast.Stmt{
			{Data: &ast.StructDecl{
				Name: "Point",
				Fields: []ast.Field{
					{Name: "x", Type: primType(ast.I32)},
					{Name: "y", Type: primType(ast.I32)},
				},
			}},
		},
	}
	reg.Index(prog)
	r := NewResolver("main", reg, symtab.New())
	rt, err := r.Resolve(named("Point"), -1)
	if err != nil {
		t.Fatal(err)
	}
	ptr, ok := rt.(*Pointer)
	if !ok {
		t.Fatalf("expected a pointer to Point, got %T", rt)
	}
	st, ok := ptr.Elem.(*StructT)
	if !ok || st.Name != "Point" || len(st.Fields) != 2 {
		t.Fatalf("expected StructT Point with 2 fields, got %+v", ptr.Elem)
	}
	if st.FieldIndex("y") != 1 {
		t.Fatalf("expected y at index 1, got %d", st.FieldIndex("y"))
	}
}

func TestResolveEnumOrdinals(t *testing.T) {
	reg := NewRegistry()
	prog := &ast.Program{
		Module: "main",
		Items: []*ast.Stmt{
			{Data: &ast.EnumDecl{
				Name: "Color",
				Variants: []ast.EnumVariantDecl{
					{Name: "Red"}, {Name: "Green"}, {Name: "Blue"},
				},
			}},
		},
	}
	reg.Index(prog)
	r := NewResolver("main", reg, symtab.New())
	rt, err := r.Resolve(named("Color"), -1)
	if err != nil {
		t.Fatal(err)
	}
	et, ok := rt.(*EnumT)
	if !ok {
		t.Fatalf("expected EnumT, got %T", rt)
	}
	if et.Ordinal("Green") != 1 {
		t.Fatalf("expected Green at ordinal 1, got %d", et.Ordinal("Green"))
	}
}

func TestMonomorphizationMangling(t *testing.T) {
	reg := NewRegistry()
	prog := &ast.Program{
		Module: "main",
		Items: []*ast.Stmt{
			{Data: &ast.StructDecl{
				Name:     "Box",
				Generics: []string{"T"},
				Fields: []ast.Field{
					{Name: "value", Type: &ast.Type{Data: &ast.GenericParam{Name: "T"}}},
				},
			}},
		},
	}
	reg.Index(prog)

	r1 := NewResolver("main", reg, symtab.New())
	t1, err := r1.Resolve(named("Box", primType(ast.I32)), -1)
	if err != nil {
		t.Fatal(err)
	}
	r2 := NewResolver("main", reg, symtab.New())
	t2, err := r2.Resolve(named("Box", primType(ast.I32)), -1)
	if err != nil {
		t.Fatal(err)
	}
	if t1.String() != t2.String() {
		t.Fatalf("expected identical type-argument lists to mangle the same, got %s vs %s", t1, t2)
	}
	if t1.String() != "Box_i32" {
		t.Fatalf("expected mangled name Box_i32, got %s", t1)
	}

	t3, err := r1.Resolve(named("Box", primType(ast.Str)), -1)
	if err != nil {
		t.Fatal(err)
	}
	if t1.String() == t3.String() {
		t.Fatal("expected a different type argument to produce a different mangled name")
	}
}

func TestArrayElidedSizeRequiresOverride(t *testing.T) {
	r := NewResolver("main", NewRegistry(), symtab.New())
	arr := &ast.Type{Data: &ast.Array{Elem: primType(ast.I32), Size: -1}}
	if _, err := r.Resolve(arr, -1); err == nil {
		t.Fatal("expected an error resolving an elided array size with no initializer")
	}
	rt, err := r.Resolve(arr, 4)
	if err != nil {
		t.Fatal(err)
	}
	at, ok := rt.(*ArrayT)
	if !ok || at.Len != 4 {
		t.Fatalf("expected ArrayT of length 4, got %+v", rt)
	}
}

func TestSelfOutsideStructIsError(t *testing.T) {
	r := NewResolver("main", NewRegistry(), symtab.New())
	self := &ast.Type{Data: &ast.SelfType{}}
	if _, err := r.Resolve(self, -1); err == nil {
		t.Fatal("expected Self to be illegal outside a struct declaration")
	}
}

func TestSelfInsideMethodIsPointerInsideAssocIsValue(t *testing.T) {
	reg := NewRegistry()
	prog := &ast.Program{
		Module: "main",
		Items: []*ast.Stmt{
			{Data: &ast.StructDecl{
				Name:   "Counter",
				Fields: []ast.Field{{Name: "n", Type: primType(ast.I32)}},
			}},
		},
	}
	reg.Index(prog)
	r := NewResolver("main", reg, symtab.New())
	self := &ast.Type{Data: &ast.SelfType{}}

	r.EnterStruct("Counter", true)
	rt, err := r.Resolve(self, -1)
	r.Leave()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := rt.(*Pointer); !ok {
		t.Fatalf("expected Self in a method to be a pointer, got %T", rt)
	}

	r.EnterStruct("Counter", false)
	rt, err = r.Resolve(self, -1)
	r.Leave()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := rt.(*StructT); !ok {
		t.Fatalf("expected Self in an associated function to be the struct value, got %T", rt)
	}
}

func TestCrossModuleFallbackRespectsVisibility(t *testing.T) {
	reg := NewRegistry()
	geometry := &ast.Program{
		Module: "geometry",
		Items: []*ast.Stmt{
			{Data: &ast.StructDecl{
				Name:   "Point",
				Public: true,
				Fields: []ast.Field{{Name: "x", Type: primType(ast.I32)}},
			}},
		},
	}
	reg.Index(geometry)

	sym := symtab.New()
	if err := sym.Register(&symtab.Symbol{Module: "geometry", Name: "Point", Kind: symtab.Type, Public: true}); err != nil {
		t.Fatal(err)
	}

	r := NewResolver("main", reg, sym)
	rt, err := r.Resolve(named("Point"), -1)
	if err != nil {
		t.Fatalf("expected cross-module fallback to resolve Point, got %v", err)
	}
	ptr, ok := rt.(*Pointer)
	if !ok {
		t.Fatalf("expected pointer-to-struct, got %T", rt)
	}
	if st, ok := ptr.Elem.(*StructT); !ok || st.Name != "Point" {
		t.Fatalf("expected StructT Point, got %+v", ptr.Elem)
	}
}
