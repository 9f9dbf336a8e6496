package types

import (
	"fmt"

	"pawc/src/ast"
)

// ValidateGenerics checks one declaration's own generic parameter list
// against the §3 invariants: pairwise-distinct names, and every
// Generic(name) occurring anywhere in exprTypes must appear in the list.
// exprTypes is the declaration's own parameter/return/field types — not the
// bodies of any nested declaration, which validate their own lists
// independently.
func ValidateGenerics(declName string, generics []string, exprTypes []*ast.Type) error {
	seen := make(map[string]bool, len(generics))
	for _, g := range generics {
		if seen[g] {
			return fmt.Errorf("%s: duplicate generic parameter %q", declName, g)
		}
		seen[g] = true
	}
	for _, t := range exprTypes {
		if name, ok := firstUnboundGeneric(t, seen); ok {
			return fmt.Errorf("%s: generic parameter %q is used but not declared", declName, name)
		}
	}
	return nil
}

// firstUnboundGeneric walks t looking for a GenericParam whose name is not
// in bound, returning the first one found.
func firstUnboundGeneric(t *ast.Type, bound map[string]bool) (string, bool) {
	if t == nil {
		return "", false
	}
	switch d := t.Data.(type) {
	case *ast.GenericParam:
		if !bound[d.Name] {
			return d.Name, true
		}
	case *ast.Named:
		for _, a := range d.Args {
			if name, ok := firstUnboundGeneric(a, bound); ok {
				return name, true
			}
		}
	case *ast.Array:
		return firstUnboundGeneric(d.Elem, bound)
	case *ast.Optional:
		return firstUnboundGeneric(d.Inner, bound)
	}
	return "", false
}

// SelfParamValid checks the §3 invariant that a `self`/`mut self` parameter,
// if present, is the first parameter and occurs only in a method (isMethod
// true, i.e. the declaration is nested in a struct body).
func SelfParamValid(params []ast.Param, isMethod bool) error {
	for i, p := range params {
		if !p.IsSelf {
			continue
		}
		if i != 0 {
			return fmt.Errorf("self must be the first parameter")
		}
		if !isMethod {
			return fmt.Errorf("self is only legal in a struct method")
		}
	}
	return nil
}
