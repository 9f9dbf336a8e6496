package llvm

import (
	"fmt"

	"tinygo.org/x/go-llvm"

	"pawc/src/ast"
	"pawc/src/symtab"
)

// LowerProgram declares and lowers every top-level item of prog into this
// module's llvm.Module. It runs in passes so a forward reference — a
// function calling one declared later in the same file, a struct field
// naming a struct declared later — always resolves by the time it is used:
// first every struct/enum/function AST handle is indexed, then externs and
// non-generic signatures are declared as llvm.Function/struct values, and
// only then are non-generic bodies lowered. Generic declarations are never
// lowered here; they are materialized on first instantiation by mono.go.
func (lo *Lowerer) LowerProgram(prog *ast.Program) error {
	for _, item := range prog.Items {
		switch d := item.Data.(type) {
		case *ast.StructDecl:
			lo.structDecls[d.Name] = d
		case *ast.EnumDecl:
			lo.enumDecls[d.Name] = d
		case *ast.FuncDecl:
			lo.funcDecls[d.Name] = d
		}
	}

	for _, item := range prog.Items {
		if d, ok := item.Data.(*ast.ExternDecl); ok {
			if err := lo.declareExtern(d); err != nil {
				return err
			}
		}
	}

	for _, item := range prog.Items {
		switch d := item.Data.(type) {
		case *ast.EnumDecl:
			if err := lo.declareEnum(d); err != nil {
				return err
			}
		case *ast.TypeAliasDecl:
			if err := lo.sym.Register(&symtab.Symbol{
				Module: lo.Module, Name: d.Name, Kind: symtab.Type, Public: d.Public, Node: d,
			}); err != nil {
				return err
			}
		}
	}

	for _, item := range prog.Items {
		switch d := item.Data.(type) {
		case *ast.StructDecl:
			if err := lo.declareStruct(d); err != nil {
				return err
			}
		case *ast.FuncDecl:
			if d.IsMethod {
				continue // reached through its enclosing StructDecl.Methods
			}
			if _, err := lo.declareFunc(d, ""); err != nil {
				return err
			}
		}
	}

	for _, item := range prog.Items {
		switch d := item.Data.(type) {
		case *ast.StructDecl:
			if err := lo.lowerStructMethodBodies(d); err != nil {
				return err
			}
		case *ast.FuncDecl:
			if d.IsMethod || len(d.Generics) > 0 {
				continue
			}
			if err := lo.lowerFuncBody(d, ""); err != nil {
				return err
			}
		}
	}
	return nil
}

// resolveParamTypes resolves every parameter's type, substituting the
// struct-as-value-or-pointer rule for a `self`/`mut self` receiver via
// SelfType (the resolver's EnterStruct context must already be set for a
// method's own parameter list).
func (lo *Lowerer) resolveParamTypes(params []ast.Param) ([]llvm.Type, error) {
	out := make([]llvm.Type, 0, len(params))
	for _, p := range params {
		if p.IsSelf {
			st, err := lo.resolver.Resolve(&ast.Type{Data: &ast.SelfType{}}, -1)
			if err != nil {
				return nil, err
			}
			out = append(out, lo.llvmType(st))
			continue
		}
		t, err := lo.resolver.Resolve(p.Type, -1)
		if err != nil {
			return nil, err
		}
		out = append(out, lo.llvmType(t))
	}
	return out, nil
}

// declareExtern declares a foreign function for the linker to resolve; it
// has no body and is never revisited by the lowering passes.
func (lo *Lowerer) declareExtern(ed *ast.ExternDecl) error {
	llParams, err := lo.resolveParamTypes(ed.Params)
	if err != nil {
		return fmt.Errorf("extern %s: %w", ed.Name, err)
	}
	ret, err := lo.resolver.Resolve(ed.Ret, -1)
	if err != nil {
		return fmt.Errorf("extern %s: %w", ed.Name, err)
	}
	fnType := llvm.FunctionType(lo.llvmType(ret), llParams, ed.Varargs)
	fn := llvm.AddFunction(lo.mod, ed.Name, fnType)
	lo.funcs[ed.Name] = fn
	lo.funcReturnTypes[ed.Name] = ret
	return lo.sym.Register(&symtab.Symbol{
		Module: lo.Module, Name: ed.Name, Kind: symtab.Function, Public: true, Value: fn, Node: ed,
	})
}

// declareEnum registers a non-generic enum's symbol; its backend layout is
// the shared {i32 tag, i64 payload} record every enum uses, obtained from
// enumRecordType here and stored as the symbol's BackendType. A generic
// enum is registered without a BackendType.
func (lo *Lowerer) declareEnum(ed *ast.EnumDecl) error {
	if len(ed.Generics) > 0 {
		return lo.sym.Register(&symtab.Symbol{
			Module: lo.Module, Name: ed.Name, Kind: symtab.Type, Public: ed.Public, Node: ed,
		})
	}
	return lo.sym.Register(&symtab.Symbol{
		Module: lo.Module, Name: ed.Name, Kind: symtab.Type, Public: ed.Public,
		BackendType: lo.enumRecordType(), Node: ed,
	})
}

// declareStruct builds a non-generic struct's backend layout and declares
// every one of its non-generic methods as an llvm.Function named
// "Struct_method" (methods live in the struct's own namespace, not the
// module's — two different structs in one module may both declare a method
// named `get` without conflict, so methods are never registered in the
// shared symbol table; call sites resolve them through lo.funcs by that
// mangled key once they already know the receiver's struct name).
func (lo *Lowerer) declareStruct(sd *ast.StructDecl) error {
	if len(sd.Generics) > 0 {
		return lo.sym.Register(&symtab.Symbol{
			Module: lo.Module, Name: sd.Name, Kind: symtab.Type, Public: sd.Public, Node: sd,
		})
	}
	t, err := lo.resolver.Resolve(&ast.Type{Data: &ast.Named{Name: sd.Name}}, -1)
	if err != nil {
		return fmt.Errorf("struct %s: %w", sd.Name, err)
	}
	if err := lo.sym.Register(&symtab.Symbol{
		Module: lo.Module, Name: sd.Name, Kind: symtab.Type, Public: sd.Public,
		BackendType: lo.llvmType(t), Node: sd,
	}); err != nil {
		return err
	}
	for _, m := range sd.Methods {
		if len(m.Generics) > 0 {
			continue
		}
		if _, err := lo.declareFunc(m, sd.Name); err != nil {
			return err
		}
	}
	return nil
}

// declareFunc declares fd's llvm.Function header (no body). A generic
// top-level function's symbol is registered under GenericFunction so a
// caller's Lookup finds it and hands it to mono.go; a generic method is not
// registered at all, since methods are resolved by struct name, not by a
// module-global symtab entry, and mono.go reaches it through
// lo.structDecls[structName].Methods instead.
func (lo *Lowerer) declareFunc(fd *ast.FuncDecl, structName string) (llvm.Value, error) {
	if len(fd.Generics) > 0 {
		if structName != "" {
			return llvm.Value{}, nil
		}
		return llvm.Value{}, lo.sym.Register(&symtab.Symbol{
			Module: lo.Module, Name: fd.Name, Kind: symtab.GenericFunction, Public: fd.Public, Node: fd,
		})
	}

	mangled := fd.Name
	if structName != "" {
		mangled = structName + "_" + fd.Name
		lo.resolver.EnterStruct(structName, fd.IsMethod)
		defer lo.resolver.Leave()
	}

	llParams, err := lo.resolveParamTypes(fd.Params)
	if err != nil {
		return llvm.Value{}, fmt.Errorf("%s: %w", mangled, err)
	}
	ret, err := lo.resolver.Resolve(fd.Ret, -1)
	if err != nil {
		return llvm.Value{}, fmt.Errorf("%s: %w", mangled, err)
	}
	fnType := llvm.FunctionType(lo.llvmType(ret), llParams, false)
	fn := llvm.AddFunction(lo.mod, mangled, fnType)
	for i, p := range fd.Params {
		name := p.Name
		if p.IsSelf {
			name = "self"
		}
		fn.Param(i).SetName(name)
	}
	lo.funcs[mangled] = fn
	lo.funcReturnTypes[mangled] = ret

	if structName == "" {
		if err := lo.sym.Register(&symtab.Symbol{
			Module: lo.Module, Name: fd.Name, Kind: symtab.Function, Public: fd.Public, Value: fn, Node: fd,
		}); err != nil {
			return llvm.Value{}, err
		}
	}
	return fn, nil
}

// lowerStructMethodBodies lowers every non-generic method body of sd, with
// the resolver's Self context entered for the duration of each one.
func (lo *Lowerer) lowerStructMethodBodies(sd *ast.StructDecl) error {
	if len(sd.Generics) > 0 {
		return nil
	}
	for _, m := range sd.Methods {
		if len(m.Generics) > 0 {
			continue
		}
		if err := lo.lowerFuncBody(m, sd.Name); err != nil {
			return err
		}
	}
	return nil
}
