package types

import (
	"testing"

	"pawc/src/ast"
)

func TestValidateGenericsRejectsDuplicateNames(t *testing.T) {
	err := ValidateGenerics("pair", []string{"T", "T"}, nil)
	if err == nil {
		t.Fatal("expected an error for duplicate generic parameter names")
	}
}

func TestValidateGenericsRejectsUndeclaredReference(t *testing.T) {
	sig := []*ast.Type{{Data: &ast.GenericParam{Name: "U"}}}
	if err := ValidateGenerics("id", []string{"T"}, sig); err == nil {
		t.Fatal("expected an error for a Generic(U) not in the parameter list")
	}
}

func TestValidateGenericsAcceptsNestedUsage(t *testing.T) {
	sig := []*ast.Type{
		{Data: &ast.Named{Name: "Box", Args: []*ast.Type{{Data: &ast.GenericParam{Name: "T"}}}}},
		{Data: &ast.Array{Elem: &ast.Type{Data: &ast.GenericParam{Name: "T"}}, Size: 4}},
		{Data: &ast.Optional{Inner: &ast.Type{Data: &ast.GenericParam{Name: "T"}}}},
	}
	if err := ValidateGenerics("f", []string{"T"}, sig); err != nil {
		t.Fatalf("expected nested Generic(T) references to be accepted, got %v", err)
	}
}

func TestSelfParamValid(t *testing.T) {
	params := []ast.Param{{IsSelf: true}, {Name: "x"}}
	if err := SelfParamValid(params, true); err != nil {
		t.Fatalf("expected self at position 0 in a method to be valid, got %v", err)
	}
	if err := SelfParamValid(params, false); err == nil {
		t.Fatal("expected self outside a method to be rejected")
	}

	badPos := []ast.Param{{Name: "x"}, {IsSelf: true}}
	if err := SelfParamValid(badPos, true); err == nil {
		t.Fatal("expected self not at position 0 to be rejected")
	}
}
