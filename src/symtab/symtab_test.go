package symtab

import "testing"

func TestRegisterAndLookup(t *testing.T) {
	tab := New()
	if err := tab.Register(&Symbol{Module: "geometry", Name: "area", Kind: Function, Public: true}); err != nil {
		t.Fatal(err)
	}
	sym, ok := tab.Lookup("geometry", "area")
	if !ok || sym.Kind != Function {
		t.Fatalf("expected to find geometry::area as a Function, got %v %v", sym, ok)
	}
	if _, ok := tab.Lookup("geometry", "missing"); ok {
		t.Fatal("expected missing symbol lookup to fail")
	}
}

func TestRegisterDuplicateSameKindErrors(t *testing.T) {
	tab := New()
	if err := tab.Register(&Symbol{Module: "m", Name: "f", Kind: Function}); err != nil {
		t.Fatal(err)
	}
	if err := tab.Register(&Symbol{Module: "m", Name: "f", Kind: Function}); err == nil {
		t.Fatal("expected a duplicate-name error")
	}
}

func TestRegisterSameNameDifferentKindAllowed(t *testing.T) {
	tab := New()
	if err := tab.Register(&Symbol{Module: "m", Name: "Point", Kind: Type}); err != nil {
		t.Fatal(err)
	}
	if err := tab.Register(&Symbol{Module: "m", Name: "Point", Kind: Function}); err != nil {
		t.Fatalf("expected a same-name different-kind symbol to coexist, got %v", err)
	}
	if sym, ok := tab.LookupKind("m", "Point", Type); !ok || sym.Kind != Type {
		t.Fatalf("expected LookupKind(Type) to find the struct symbol, got %v %v", sym, ok)
	}
	if sym, ok := tab.LookupKind("m", "Point", Function); !ok || sym.Kind != Function {
		t.Fatalf("expected LookupKind(Function) to find the constructor symbol, got %v %v", sym, ok)
	}
}

func TestAccessibility(t *testing.T) {
	tab := New()
	_ = tab.Register(&Symbol{Module: "geometry", Name: "privateHelper", Kind: Function, Public: false})
	_ = tab.Register(&Symbol{Module: "geometry", Name: "area", Kind: Function, Public: true})

	if _, ok := tab.LookupAccessible("geometry", "privateHelper", "main"); ok {
		t.Fatal("expected private symbol to be inaccessible from another module")
	}
	if _, ok := tab.LookupAccessible("geometry", "privateHelper", "geometry"); !ok {
		t.Fatal("expected private symbol to be accessible from its own module")
	}
	if _, ok := tab.LookupAccessible("geometry", "area", "main"); !ok {
		t.Fatal("expected public symbol to be accessible from another module")
	}
}

func TestLookupAnyFallsBackToOtherPublicModule(t *testing.T) {
	tab := New()
	_ = tab.Register(&Symbol{Module: "geometry", Name: "Point", Kind: Type, Public: true})
	_ = tab.Register(&Symbol{Module: "geometry", Name: "privateHelper", Kind: Function, Public: false})

	if sym, ok := tab.LookupAny("Point", "main"); !ok || sym.Module != "geometry" {
		t.Fatalf("expected LookupAny to find geometry::Point from main, got %v %v", sym, ok)
	}
	if _, ok := tab.LookupAny("privateHelper", "main"); ok {
		t.Fatal("expected LookupAny to skip a private symbol in another module")
	}
	if _, ok := tab.LookupAny("nope", "main"); ok {
		t.Fatal("expected LookupAny to fail for an unregistered name")
	}
}

func TestPublicSymbols(t *testing.T) {
	tab := New()
	_ = tab.Register(&Symbol{Module: "geometry", Name: "area", Kind: Function, Public: true})
	_ = tab.Register(&Symbol{Module: "geometry", Name: "helper", Kind: Function, Public: false})

	pub := tab.PublicSymbols("geometry")
	if len(pub) != 1 || pub[0].Name != "area" {
		t.Fatalf("expected exactly [area], got %v", pub)
	}
}
