package types

import (
	"fmt"

	"pawc/src/ast"
	"pawc/src/symtab"
	"pawc/src/util"
)

// Resolver converts AST type expressions to Type within one module, given a
// Registry of every module's struct/enum/alias declarations and the shared
// symbol table for cross-module fallback and generic-instance caching.
//
// Self resolves differently inside an instance method (pointer to the
// enclosing struct) than inside an associated function (the struct value
// itself); EnterStruct/Leave set that context the way the original
// compiler tracked current_struct_name_/current_is_method_ as plain
// fields, since method bodies never nest.
type Resolver struct {
	Module string
	Reg    *Registry
	Sym    *symtab.Table

	typeParams *util.Stack // frames of map[string]Type, pushed per instantiation

	structCache map[string]*StructT // mangled/base name -> built layout, recursion guard
	enumCache   map[string]*EnumT

	curStruct string
	curMethod bool
}

// NewResolver returns a resolver for module, backed by reg and sym.
func NewResolver(module string, reg *Registry, sym *symtab.Table) *Resolver {
	return &Resolver{
		Module:      module,
		Reg:         reg,
		Sym:         sym,
		typeParams:  &util.Stack{},
		structCache: make(map[string]*StructT),
		enumCache:   make(map[string]*EnumT),
	}
}

// EnterStruct sets the Self context for resolving a method or associated
// function body nested inside struct name; isMethod distinguishes an
// instance method (Self -> pointer) from an associated function (Self ->
// value). Callers must pair it with Leave.
func (r *Resolver) EnterStruct(name string, isMethod bool) {
	r.curStruct, r.curMethod = name, isMethod
}

// Leave clears the Self context set by EnterStruct.
func (r *Resolver) Leave() {
	r.curStruct, r.curMethod = "", false
}

// PushParams pushes a type-parameter substitution frame, active until the
// matching Pop. Frames nest: an inner generic instantiation's names shadow
// an outer one's, and Pop strictly unwinds one level, matching the
// type-parameter map's stack discipline.
func (r *Resolver) PushParams(frame map[string]Type) {
	r.typeParams.Push(frame)
}

// Pop removes the innermost type-parameter substitution frame.
func (r *Resolver) Pop() {
	r.typeParams.Pop()
}

func (r *Resolver) lookupParam(name string) (Type, bool) {
	// Get(1) is the top of the stack (innermost, most recently pushed frame);
	// searching top-down lets an inner instantiation's names shadow an outer
	// one's.
	for i := 1; i <= r.typeParams.Size(); i++ {
		frame, _ := r.typeParams.Get(i).(map[string]Type)
		if t, ok := frame[name]; ok {
			return t, true
		}
	}
	return nil, false
}

// Resolve converts an AST type expression to its backend-facing Type.
// letArrayLen supplies the array length to substitute for an elided
// `Array(elem, -1)` size (-1 everywhere else, meaning "no override"); only a
// `let` with an array-literal initializer may pass a real value.
func (r *Resolver) Resolve(t *ast.Type, letArrayLen int) (Type, error) {
	if t == nil {
		return &Void{}, nil
	}
	switch d := t.Data.(type) {
	case *ast.Primitive:
		return resolvePrimitive(d.Kind), nil
	case *ast.GenericParam:
		if rt, ok := r.lookupParam(d.Name); ok {
			return rt, nil
		}
		return nil, fmt.Errorf("type parameter %q has no active substitution at %s", d.Name, t.Span)
	case *ast.Array:
		return r.resolveArray(d, letArrayLen, t.Span)
	case *ast.Optional:
		inner, err := r.Resolve(d.Inner, -1)
		if err != nil {
			return nil, err
		}
		// Always a pointer to the record (§4.8: "passed and stored as
		// pointers ... for uniformity between local variables, parameters,
		// and return values"), the same convention resolveNamed applies to
		// every struct value.
		return &Pointer{Elem: &OptionalT{Inner: inner}}, nil
	case *ast.SelfType:
		return r.resolveSelf(t.Span)
	case *ast.Named:
		return r.resolveNamed(d, t.Span)
	default:
		return nil, fmt.Errorf("unresolvable type expression at %s", t.Span)
	}
}

func resolvePrimitive(k ast.PrimKind) Type {
	switch k {
	case ast.I8:
		return &Int{Width: 8, Signed: true}
	case ast.I16:
		return &Int{Width: 16, Signed: true}
	case ast.I32:
		return &Int{Width: 32, Signed: true}
	case ast.I64:
		return &Int{Width: 64, Signed: true}
	case ast.I128:
		return &Int{Width: 128, Signed: true}
	case ast.U8:
		return &Int{Width: 8, Signed: false}
	case ast.U16:
		return &Int{Width: 16, Signed: false}
	case ast.U32:
		return &Int{Width: 32, Signed: false}
	case ast.U64:
		return &Int{Width: 64, Signed: false}
	case ast.U128:
		return &Int{Width: 128, Signed: false}
	case ast.F32:
		return &Float{Width: 32}
	case ast.F64:
		return &Float{Width: 64}
	case ast.Bool:
		return &Bool{}
	case ast.Char:
		return &Char{}
	case ast.Str:
		return Str()
	default:
		return &Void{}
	}
}

func (r *Resolver) resolveArray(d *ast.Array, letArrayLen int, span ast.Span) (Type, error) {
	elem, err := r.Resolve(d.Elem, -1)
	if err != nil {
		return nil, err
	}
	n := d.Size
	if n < 0 {
		if letArrayLen < 0 {
			return nil, fmt.Errorf("array type at %s has no size and no initializer to infer it from", span)
		}
		n = letArrayLen
	}
	return &ArrayT{Elem: elem, Len: n}, nil
}

func (r *Resolver) resolveSelf(span ast.Span) (Type, error) {
	if r.curStruct == "" {
		return nil, fmt.Errorf("Self used outside a struct declaration at %s", span)
	}
	st, err := r.structType(r.curStruct)
	if err != nil {
		return nil, err
	}
	if r.curMethod {
		return &Pointer{Elem: st}, nil
	}
	return st, nil
}

// resolveNamed resolves a possibly-generic Named type: a plain struct/enum
// reference, a monomorphized instance when generic_args is non-empty, or a
// type alias. Order follows the original compiler's convertType: generic
// instantiation first, then enum (a value type), then struct (a pointer
// type), then a cross-module symbol-table fallback, then alias expansion.
func (r *Resolver) resolveNamed(d *ast.Named, span ast.Span) (Type, error) {
	if len(d.Args) > 0 {
		return r.instantiate(d.Name, d.Args, span)
	}
	owner, decls := r.declsFor(d.Name)
	if decls != nil {
		if _, ok := decls.Enums[d.Name]; ok {
			return r.enumType(owner, d.Name)
		}
		if _, ok := decls.Structs[d.Name]; ok {
			st, err := r.structType(d.Name)
			if err != nil {
				return nil, err
			}
			return &Pointer{Elem: st}, nil
		}
		if alias, ok := decls.Aliases[d.Name]; ok {
			if len(alias.Generics) > 0 {
				return nil, fmt.Errorf("generic alias %q used without type arguments at %s", d.Name, span)
			}
			return r.Resolve(alias.Target, -1)
		}
	}
	return nil, fmt.Errorf("unknown type %q at %s", d.Name, span)
}

// declsFor returns the owning module path and ModuleDecls that declare
// name, checking the resolver's own module first and falling back to the
// symbol table's cross-module search (matching §4.4's
// lookup(name, current_module)).
func (r *Resolver) declsFor(name string) (string, *ModuleDecls) {
	if local := r.Reg.Module(r.Module); local != nil {
		if _, ok := local.Structs[name]; ok {
			return r.Module, local
		}
		if _, ok := local.Enums[name]; ok {
			return r.Module, local
		}
		if _, ok := local.Aliases[name]; ok {
			return r.Module, local
		}
	}
	if r.Sym == nil {
		return "", nil
	}
	sym, ok := r.Sym.LookupAny(name, r.Module)
	if !ok || sym.Kind != symtab.Type {
		return "", nil
	}
	return sym.Module, r.Reg.Module(sym.Module)
}

// structType builds (or returns the cached) StructT for a non-generic
// struct declared in the resolver's module or reachable through the symbol
// table. The cache also breaks recursion for self-referential fields
// (a struct containing Pointer{Self}).
func (r *Resolver) structType(name string) (*StructT, error) {
	if st, ok := r.structCache[name]; ok {
		return st, nil
	}
	_, decls := r.declsFor(name)
	if decls == nil {
		return nil, fmt.Errorf("unknown struct %q", name)
	}
	decl, ok := decls.Structs[name]
	if !ok {
		return nil, fmt.Errorf("%q is not a struct", name)
	}
	st := &StructT{Name: name}
	r.structCache[name] = st // recursion guard: visible before fields are filled in
	fields := make([]FieldT, 0, len(decl.Fields))
	for _, f := range decl.Fields {
		ft, err := r.Resolve(f.Type, -1)
		if err != nil {
			return nil, fmt.Errorf("field %s.%s: %w", name, f.Name, err)
		}
		fields = append(fields, FieldT{Name: f.Name, Type: ft})
	}
	st.Fields = fields
	return st, nil
}

// enumType builds (or returns the cached) EnumT for a non-generic enum
// declared in module.
func (r *Resolver) enumType(module, name string) (*EnumT, error) {
	key := module + "::" + name
	if et, ok := r.enumCache[key]; ok {
		return et, nil
	}
	decls := r.Reg.Module(module)
	if decls == nil {
		return nil, fmt.Errorf("unknown module %q for enum %q", module, name)
	}
	decl, ok := decls.Enums[name]
	if !ok {
		return nil, fmt.Errorf("%q is not an enum in module %q", name, module)
	}
	variants := make([]string, len(decl.Variants))
	fields := make([][]Type, len(decl.Variants))
	for i, v := range decl.Variants {
		variants[i] = v.Name
		vf := make([]Type, len(v.Fields))
		for j, ft := range v.Fields {
			rt, err := r.Resolve(ft, -1)
			if err != nil {
				return nil, fmt.Errorf("%s::%s field %d: %w", name, v.Name, j, err)
			}
			vf[j] = rt
		}
		fields[i] = vf
	}
	et := &EnumT{Name: name, Variants: variants, Fields: fields}
	r.enumCache[key] = et
	return et, nil
}

// instantiate resolves a generic struct or enum reference Name<args...> to
// its monomorphized Type, building the mangled name and a substitution
// frame from the declaration's own generic parameter list, the way
// Instantiation of a struct/enum is described in §4.9: the args are
// resolved in the *caller's* scope (so an outer type parameter can flow
// into a nested instantiation) before the frame is pushed.
func (r *Resolver) instantiate(name string, argExprs []*ast.Type, span ast.Span) (Type, error) {
	args := make([]Type, len(argExprs))
	for i, a := range argExprs {
		rt, err := r.Resolve(a, -1)
		if err != nil {
			return nil, err
		}
		args[i] = rt
	}
	mangled := Mangle(name, args)

	_, decls := r.declsFor(name)
	if decls == nil {
		return nil, fmt.Errorf("unknown generic type %q at %s", name, span)
	}
	if enumDecl, ok := decls.Enums[name]; ok {
		if len(enumDecl.Generics) != len(args) {
			return nil, fmt.Errorf("%s expects %d type argument(s), got %d at %s", name, len(enumDecl.Generics), len(args), span)
		}
		if et, ok := r.enumCache[mangled]; ok {
			return et, nil
		}
		frame := make(map[string]Type, len(args))
		for i, g := range enumDecl.Generics {
			frame[g] = args[i]
		}
		r.PushParams(frame)
		variants := make([]string, len(enumDecl.Variants))
		fields := make([][]Type, len(enumDecl.Variants))
		for i, v := range enumDecl.Variants {
			variants[i] = v.Name
			vf := make([]Type, len(v.Fields))
			for j, ft := range v.Fields {
				rt, err := r.Resolve(ft, -1)
				if err != nil {
					r.Pop()
					return nil, fmt.Errorf("%s::%s field %d: %w", mangled, v.Name, j, err)
				}
				vf[j] = rt
			}
			fields[i] = vf
		}
		r.Pop()
		et := &EnumT{Name: mangled, Variants: variants, Fields: fields}
		r.enumCache[mangled] = et
		return et, nil
	}
	structDecl, ok := decls.Structs[name]
	if !ok {
		return nil, fmt.Errorf("%q is not a generic struct or enum at %s", name, span)
	}
	if len(structDecl.Generics) != len(args) {
		return nil, fmt.Errorf("%s expects %d type argument(s), got %d at %s", name, len(structDecl.Generics), len(args), span)
	}
	if st, ok := r.structCache[mangled]; ok {
		return &Pointer{Elem: st}, nil
	}
	frame := make(map[string]Type, len(args))
	for i, g := range structDecl.Generics {
		frame[g] = args[i]
	}
	st := &StructT{Name: mangled}
	r.structCache[mangled] = st // opaque first, to allow recursive fields, per §4.9
	r.PushParams(frame)
	defer r.Pop()
	fields := make([]FieldT, 0, len(structDecl.Fields))
	for _, f := range structDecl.Fields {
		ft, err := r.Resolve(f.Type, -1)
		if err != nil {
			return nil, fmt.Errorf("field %s.%s: %w", mangled, f.Name, err)
		}
		fields = append(fields, FieldT{Name: f.Name, Type: ft})
	}
	st.Fields = fields
	return &Pointer{Elem: st}, nil
}
