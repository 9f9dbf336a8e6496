package types

import "pawc/src/ast"

// ModuleDecls indexes one module's type-bearing declarations by name so the
// resolver can find a struct/enum/alias body without a linear scan of the
// module's Program every time a Named type is resolved.
type ModuleDecls struct {
	Structs map[string]*ast.StructDecl
	Enums   map[string]*ast.EnumDecl
	Aliases map[string]*ast.TypeAliasDecl
}

// Registry collects the ModuleDecls of every module the compilation has
// loaded, keyed by module path; it is the cross-module half of type
// resolution, consulted when a name is not declared in the resolver's own
// module.
type Registry struct {
	mods map[string]*ModuleDecls
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{mods: make(map[string]*ModuleDecls)}
}

// Index walks prog's top-level items and records its type-bearing
// declarations under prog.Module, overwriting any previous index for that
// module (re-indexing is idempotent).
func (r *Registry) Index(prog *ast.Program) {
	decls := &ModuleDecls{
		Structs: make(map[string]*ast.StructDecl),
		Enums:   make(map[string]*ast.EnumDecl),
		Aliases: make(map[string]*ast.TypeAliasDecl),
	}
	for _, item := range prog.Items {
		switch d := item.Data.(type) {
		case *ast.StructDecl:
			decls.Structs[d.Name] = d
		case *ast.EnumDecl:
			decls.Enums[d.Name] = d
		case *ast.TypeAliasDecl:
			decls.Aliases[d.Name] = d
		}
	}
	r.mods[prog.Module] = decls
}

// Module returns the indexed declarations for module, or nil if it has not
// been indexed.
func (r *Registry) Module(module string) *ModuleDecls {
	return r.mods[module]
}
