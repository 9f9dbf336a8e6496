// Package symtab is the cross-module symbol table: a (module, name) -> Symbol
// map that lives for the whole compilation and is consulted by the lowerer
// whenever a call, type reference or variable use needs resolving outside the
// module currently being lowered. The table itself is adapted from the
// original compiler's SymbolTable (symbol_table.cpp); the embedded
// sync.RWMutex mirrors the teacher's own symTab type in
// src/ir/llvm/transform.go.
package symtab

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Kind differentiates the four symbol kinds the language produces.
type Kind uint8

const (
	Function Kind = iota
	GenericFunction
	Type
	Variable
)

func (k Kind) String() string {
	switch k {
	case Function:
		return "fn"
	case GenericFunction:
		return "fn<T>"
	case Type:
		return "type"
	case Variable:
		return "var"
	default:
		return "?"
	}
}

// Symbol is one registered name. Value and BackendType hold whatever handle
// the backend produced for a Function/Variable or a Type symbol
// respectively (an llvm.Value or llvm.Type in the concrete backend); Node
// holds the originating declaration, used to re-lower a generic on first
// cross-module instantiation.
type Symbol struct {
	Module      string
	Name        string
	Kind        Kind
	Public      bool
	Value       interface{}
	BackendType interface{}
	Node        interface{}
}

// Table is the symbol table for one compilation. It is safe for concurrent
// use; entries are append-only for the lifetime of a Table.
//
// Names are unique per symbol kind within a module, not globally: a struct
// named Point and a constructor function named Point may coexist, but two
// functions named Point may not. mods[module][name][kind] holds the entry.
type Table struct {
	sync.RWMutex
	mods map[string]map[string]map[Kind]*Symbol
}

// New returns an empty symbol table.
func New() *Table {
	return &Table{mods: make(map[string]map[string]map[Kind]*Symbol)}
}

// Register adds sym to the table. It is an error to register two symbols
// under the same (module, name, kind).
func (t *Table) Register(sym *Symbol) error {
	t.Lock()
	defer t.Unlock()
	m, ok := t.mods[sym.Module]
	if !ok {
		m = make(map[string]map[Kind]*Symbol)
		t.mods[sym.Module] = m
	}
	byKind, ok := m[sym.Name]
	if !ok {
		byKind = make(map[Kind]*Symbol)
		m[sym.Name] = byKind
	}
	if _, dup := byKind[sym.Kind]; dup {
		return fmt.Errorf("%s::%s is already declared as a %s", sym.Module, sym.Name, sym.Kind)
	}
	byKind[sym.Kind] = sym
	return nil
}

// lookupPriority is the kind search order Lookup falls back to when a name
// is ambiguous between kinds in the same module (e.g. a struct and a
// same-named free function); callers that care should use LookupKind.
var lookupPriority = [...]Kind{Function, GenericFunction, Type, Variable}

// Lookup resolves name directly within module, with no fallback to other
// modules. Cross-module references must name their module explicitly
// (`Mod::name` at the surface syntax level); this is the one place that
// invariant is enforced.
func (t *Table) Lookup(module, name string) (*Symbol, bool) {
	t.RLock()
	defer t.RUnlock()
	byKind, ok := t.mods[module][name]
	if !ok {
		return nil, false
	}
	for _, k := range lookupPriority {
		if sym, ok := byKind[k]; ok {
			return sym, true
		}
	}
	return nil, false
}

// LookupAny resolves an unqualified name (one with no explicit `Mod::`
// prefix at the surface syntax level, e.g. a bare type name in a type
// position) by first checking fromModule, then, if absent, returning the
// first public symbol with that name found in any other module. Module
// iteration order is otherwise unspecified; callers needing a specific
// module must name it and use Lookup instead.
func (t *Table) LookupAny(name, fromModule string) (*Symbol, bool) {
	if sym, ok := t.Lookup(fromModule, name); ok {
		return sym, true
	}
	t.RLock()
	defer t.RUnlock()
	for mod, names := range t.mods {
		if mod == fromModule {
			continue
		}
		byKind, ok := names[name]
		if !ok {
			continue
		}
		for _, k := range lookupPriority {
			if sym, ok := byKind[k]; ok && sym.Public {
				return sym, true
			}
		}
	}
	return nil, false
}

// LookupKind resolves name within module under a specific kind, the
// unambiguous form used once a use-site already knows whether it wants a
// function, a type, or a variable.
func (t *Table) LookupKind(module, name string, kind Kind) (*Symbol, bool) {
	t.RLock()
	defer t.RUnlock()
	sym, ok := t.mods[module][name][kind]
	return sym, ok
}

// LookupAccessible resolves name in module as seen from fromModule: it
// succeeds if the symbol exists in module and either module == fromModule
// or the symbol is public.
func (t *Table) LookupAccessible(module, name, fromModule string) (*Symbol, bool) {
	sym, ok := t.Lookup(module, name)
	if !ok {
		return nil, false
	}
	if !t.IsAccessible(sym, fromModule) {
		return nil, false
	}
	return sym, true
}

// IsAccessible reports whether sym can be referenced from fromModule.
func (t *Table) IsAccessible(sym *Symbol, fromModule string) bool {
	return sym.Module == fromModule || sym.Public
}

// PublicSymbols returns every public symbol registered in module, the set a
// consumer of that module may import.
func (t *Table) PublicSymbols(module string) []*Symbol {
	t.RLock()
	defer t.RUnlock()
	var out []*Symbol
	for _, byKind := range t.mods[module] {
		for _, sym := range byKind {
			if sym.Public {
				out = append(out, sym)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}

// Dump renders every registered symbol, grouped by module, for -vb
// diagnostics.
func (t *Table) Dump() string {
	t.RLock()
	defer t.RUnlock()
	var sb strings.Builder
	sb.WriteString("=== Symbol Table ===\n")
	mods := make([]string, 0, len(t.mods))
	for m := range t.mods {
		mods = append(mods, m)
	}
	sort.Strings(mods)
	for _, m := range mods {
		fmt.Fprintf(&sb, "module %s\n", m)
		names := make([]string, 0, len(t.mods[m]))
		for n := range t.mods[m] {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			for _, sym := range t.mods[m][n] {
				vis := "    "
				if sym.Public {
					vis = "pub "
				}
				fmt.Fprintf(&sb, "  %s%s (%s)\n", vis, n, sym.Kind)
			}
		}
	}
	sb.WriteString("====================\n")
	return sb.String()
}
