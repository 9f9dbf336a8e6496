package llvm

import (
	"fmt"

	"tinygo.org/x/go-llvm"

	"pawc/src/ast"
	"pawc/src/symtab"
	"pawc/src/types"
)

// monoFunc implements §4.9's function-instantiation algorithm for a generic
// free function: compute the mangled name, return the cached definition if
// this exact tuple of type arguments was already instantiated, otherwise
// push a type-parameter map, declare and lower the concrete body under that
// substitution, register it in the symbol table as public iff the generic
// was, and emit the call.
func (lo *Lowerer) monoFunc(sym *symtab.Symbol, typeArgs []*ast.Type, callArgs []*ast.Expr) (llvm.Value, types.Type, error) {
	fd, ok := sym.Node.(*ast.FuncDecl)
	if !ok {
		return llvm.Value{}, nil, fmt.Errorf("%s::%s is not a generic function", sym.Module, sym.Name)
	}
	if len(typeArgs) != len(fd.Generics) {
		return llvm.Value{}, nil, fmt.Errorf("%s expects %d type argument(s), got %d", fd.Name, len(fd.Generics), len(typeArgs))
	}

	args := make([]types.Type, len(typeArgs))
	for i, ta := range typeArgs {
		t, err := lo.resolver.Resolve(ta, -1)
		if err != nil {
			return llvm.Value{}, nil, err
		}
		args[i] = t
	}
	mangled := types.Mangle(fd.Name, args)

	if fn, ok := lo.funcs[mangled]; ok {
		argVals, err := lo.lowerArgs(callArgs)
		if err != nil {
			return llvm.Value{}, nil, err
		}
		return lo.finishCall(fn, argVals)
	}

	frame := make(map[string]types.Type, len(args))
	for i, g := range fd.Generics {
		frame[g] = args[i]
	}
	lo.resolver.PushParams(frame)
	defer lo.resolver.Pop()

	prevGeneric := lo.inGenericBody
	lo.inGenericBody = true
	defer func() { lo.inGenericBody = prevGeneric }()

	llParams := make([]llvm.Type, 0, len(fd.Params))
	for _, p := range fd.Params {
		pt, err := lo.paramType(p)
		if err != nil {
			return llvm.Value{}, nil, fmt.Errorf("%s: %w", mangled, err)
		}
		llParams = append(llParams, lo.llvmType(pt))
	}
	ret, err := lo.resolver.Resolve(fd.Ret, -1)
	if err != nil {
		return llvm.Value{}, nil, fmt.Errorf("%s: %w", mangled, err)
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

	if err := lo.lowerFuncBodyNamed(fd, mangled, ""); err != nil {
		return llvm.Value{}, nil, err
	}

	if err := lo.sym.Register(&symtab.Symbol{
		Module: lo.Module, Name: mangled, Kind: symtab.Function, Public: sym.Public, Value: fn, Node: fd,
	}); err != nil {
		return llvm.Value{}, nil, err
	}

	argVals, err := lo.lowerArgs(callArgs)
	if err != nil {
		return llvm.Value{}, nil, err
	}
	return lo.finishCall(fn, argVals)
}

// lowerExternMirror implements priority 3: `M::f(args)` with no type
// arguments. f is non-generic, so no substitution is needed — the call
// only needs a local declaration of f's already-resolved signature,
// expressed in this module's own backend types, for the linker to tie
// together with M's definition.
func (lo *Lowerer) lowerExternMirror(sym *symtab.Symbol, d *ast.Call) (llvm.Value, types.Type, error) {
	fd, ok := sym.Node.(*ast.FuncDecl)
	if !ok {
		return llvm.Value{}, nil, fmt.Errorf("%s::%s is not a function", sym.Module, sym.Name)
	}
	mangled := sym.Module + "$" + fd.Name
	fn, ok := lo.funcs[mangled]
	if !ok {
		mirror := types.NewResolver(sym.Module, lo.reg, lo.sym)
		llParams := make([]llvm.Type, 0, len(fd.Params))
		for _, p := range fd.Params {
			var t types.Type
			var err error
			if p.IsSelf {
				t, err = mirror.Resolve(&ast.Type{Data: &ast.SelfType{}}, -1)
			} else {
				t, err = mirror.Resolve(p.Type, -1)
			}
			if err != nil {
				return llvm.Value{}, nil, fmt.Errorf("%s::%s: %w", sym.Module, fd.Name, err)
			}
			llParams = append(llParams, lo.llvmType(t))
		}
		ret, err := mirror.Resolve(fd.Ret, -1)
		if err != nil {
			return llvm.Value{}, nil, fmt.Errorf("%s::%s: %w", sym.Module, fd.Name, err)
		}
		fnType := llvm.FunctionType(lo.llvmType(ret), llParams, false)
		fn = llvm.AddFunction(lo.mod, fd.Name, fnType)
		lo.funcs[mangled] = fn
		lo.funcReturnTypes[mangled] = ret
	}
	argVals, err := lo.lowerArgs(d.Args)
	if err != nil {
		return llvm.Value{}, nil, err
	}
	return lo.finishCall(fn, argVals)
}

// monoStructAssoc implements priority 5: `Struct::assoc<Ts>(args)` where
// Struct is a generic struct. It instantiates the struct (building its
// backend layout under the type-parameter map) and then monomorphizes
// assoc as an associated (non-method, Self-by-value) function in the same
// substitution, the way declareStruct walks a non-generic struct's Methods.
func (lo *Lowerer) monoStructAssoc(structName, assoc string, typeArgs []*ast.Type, callArgs []*ast.Expr) (llvm.Value, types.Type, error) {
	sd, ok := lo.structDecls[structName]
	if !ok {
		return llvm.Value{}, nil, fmt.Errorf("%q is not a known generic struct", structName)
	}
	if len(typeArgs) != len(sd.Generics) {
		return llvm.Value{}, nil, fmt.Errorf("%s expects %d type argument(s), got %d", structName, len(sd.Generics), len(typeArgs))
	}
	args := make([]types.Type, len(typeArgs))
	for i, ta := range typeArgs {
		t, err := lo.resolver.Resolve(ta, -1)
		if err != nil {
			return llvm.Value{}, nil, err
		}
		args[i] = t
	}
	structMangled := types.Mangle(structName, args)

	// Force the struct instance's backend layout into existence (and its
	// entry in lo.structDecls under the mangled name, so a later method
	// call on a value of this instance type can find Methods too).
	if _, ok := lo.types[structMangled]; !ok {
		named := lo.ctx.StructCreateNamed(structMangled)
		lo.types[structMangled] = named
		frame := make(map[string]types.Type, len(args))
		for i, g := range sd.Generics {
			frame[g] = args[i]
		}
		lo.resolver.PushParams(frame)
		fields := make([]llvm.Type, len(sd.Fields))
		for i, f := range sd.Fields {
			ft, err := lo.resolver.Resolve(f.Type, -1)
			if err != nil {
				lo.resolver.Pop()
				return llvm.Value{}, nil, fmt.Errorf("%s.%s: %w", structMangled, f.Name, err)
			}
			fields[i] = lo.llvmType(ft)
		}
		lo.resolver.Pop()
		named.StructSetBody(fields, false)
		lo.structDecls[structMangled] = sd
	}

	fnMangled := structMangled + "_" + assoc
	if fn, ok := lo.funcs[fnMangled]; ok {
		argVals, err := lo.lowerArgs(callArgs)
		if err != nil {
			return llvm.Value{}, nil, err
		}
		return lo.finishCall(fn, argVals)
	}

	var target *ast.FuncDecl
	for _, m := range sd.Methods {
		if m.Name == assoc {
			target = m
			break
		}
	}
	if target == nil {
		return llvm.Value{}, nil, fmt.Errorf("%s has no associated function %q", structName, assoc)
	}

	frame := make(map[string]types.Type, len(args))
	for i, g := range sd.Generics {
		frame[g] = args[i]
	}
	lo.resolver.PushParams(frame)
	defer lo.resolver.Pop()
	lo.resolver.EnterStruct(structMangled, target.IsMethod)
	defer lo.resolver.Leave()

	prevGeneric := lo.inGenericBody
	lo.inGenericBody = true
	defer func() { lo.inGenericBody = prevGeneric }()

	llParams := make([]llvm.Type, 0, len(target.Params))
	for _, p := range target.Params {
		pt, err := lo.paramType(p)
		if err != nil {
			return llvm.Value{}, nil, fmt.Errorf("%s: %w", fnMangled, err)
		}
		llParams = append(llParams, lo.llvmType(pt))
	}
	ret, err := lo.resolver.Resolve(target.Ret, -1)
	if err != nil {
		return llvm.Value{}, nil, fmt.Errorf("%s: %w", fnMangled, err)
	}
	fnType := llvm.FunctionType(lo.llvmType(ret), llParams, false)
	fn := llvm.AddFunction(lo.mod, fnMangled, fnType)
	for i, p := range target.Params {
		name := p.Name
		if p.IsSelf {
			name = "self"
		}
		fn.Param(i).SetName(name)
	}
	lo.funcs[fnMangled] = fn
	lo.funcReturnTypes[fnMangled] = ret

	if err := lo.lowerFuncBodyNamed(target, fnMangled, structMangled); err != nil {
		return llvm.Value{}, nil, err
	}

	argVals, err := lo.lowerArgs(callArgs)
	if err != nil {
		return llvm.Value{}, nil, err
	}
	return lo.finishCall(fn, argVals)
}
