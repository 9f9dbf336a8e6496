// Package llvm lowers a parsed paw module to LLVM IR against the system
// LLVM installation via tinygo.org/x/go-llvm. It replaces the teacher's
// VSL-specific transform.go wholesale but keeps its shape: a scope stack of
// name->llvm.Value frames pushed on block entry and popped on exit, a loop
// label stack of (continue, break) basic block pairs, and one llvm.Module
// per compilation unit built through a Builder positioned at the current
// instruction insertion point.
package llvm

import (
	"fmt"
	"sync"

	"tinygo.org/x/go-llvm"

	"pawc/src/ast"
	"pawc/src/symtab"
	"pawc/src/types"
	"pawc/src/util"
)

// binding is one local variable's storage slot: an alloca holding either the
// value itself (primitive/array), a pointer to a struct, or a pointer to an
// Optional record, per §4.7. Mut mirrors the source-level `mut` keyword;
// lowering rejects a store to a non-mut binding.
type binding struct {
	alloca llvm.Value
	typ    types.Type
	mut    bool
}

// scope is one block's name->binding frame.
type scope struct {
	m  map[string]*binding
	mx sync.Mutex
}

func newScope() *scope { return &scope{m: make(map[string]*binding, 8)} }

func (s *scope) put(name string, b *binding) {
	s.mx.Lock()
	defer s.mx.Unlock()
	s.m[name] = b
}

func (s *scope) get(name string) (*binding, bool) {
	s.mx.Lock()
	defer s.mx.Unlock()
	b, ok := s.m[name]
	return b, ok
}

// loopLabels is the (continue, break) target pair for the loop currently
// being lowered; break/continue jump to the nearest enclosing pair.
type loopLabels struct {
	cont, brk llvm.BasicBlock
}

// Lowerer lowers one module to its own llvm.Context/Module/Builder. Every
// generic instantiation triggered while lowering this module — even one
// whose generic declaration lives in another module — is materialized here,
// never in the defining module's own backend module (§4.9).
type Lowerer struct {
	Module string

	ctx     llvm.Context
	mod     llvm.Module
	builder llvm.Builder

	resolver *types.Resolver
	sym      *symtab.Table
	reg      *types.Registry

	scopes *util.Stack // frames of *scope
	loops  *util.Stack // frames of loopLabels

	funcs           map[string]llvm.Value // mangled name -> defined/declared function, this module only
	funcReturnTypes map[string]types.Type // llvm function name -> resolved return type, for call-site lowering
	types           map[string]llvm.Type  // mangled struct/optional name -> llvm struct type, this module only

	structDecls map[string]*ast.StructDecl // every struct declared in this module, plus generic instances under their mangled names
	enumDecls   map[string]*ast.EnumDecl
	funcDecls   map[string]*ast.FuncDecl // every top-level function declared in this module

	curFunc   llvm.Value
	curRetT   types.Type // the enclosing function's declared return type, for bare `ok`/`err`
	curStruct string
	curIsOpt  bool // enclosing function returns T? (a pointer to an OptionalT record)

	// inGenericBody is true while lowering a monomorphized instance's body,
	// so paramType applies the Array-parameter-to-pointer conversion §4.9
	// requires only inside a generic instantiation.
	inGenericBody bool

	// pendingBind carries an `is`-pattern binding computed while lowering an
	// If's condition through to the Then block lowerIf is about to enter;
	// see lowerIs/lowerBlockExprBound in expr.go.
	pendingBind *pendingBind

	runtime runtimeFuncs
}

// NewLowerer creates the backend module for `module`, named after it so
// --emit-llvm output is traceable back to its source file.
func NewLowerer(module string, reg *types.Registry, sym *symtab.Table) *Lowerer {
	ctx := llvm.NewContext()
	mod := ctx.NewModule(module)
	lo := &Lowerer{
		Module:          module,
		ctx:             ctx,
		mod:             mod,
		builder:         ctx.NewBuilder(),
		sym:             sym,
		reg:             reg,
		scopes:          &util.Stack{},
		loops:           &util.Stack{},
		funcs:           make(map[string]llvm.Value),
		funcReturnTypes: make(map[string]types.Type),
		types:           make(map[string]llvm.Type),
		structDecls:     make(map[string]*ast.StructDecl),
		enumDecls:       make(map[string]*ast.EnumDecl),
		funcDecls:       make(map[string]*ast.FuncDecl),
	}
	lo.resolver = types.NewResolver(module, reg, sym)
	lo.declareRuntime()
	return lo
}

// Dispose releases the context's native LLVM resources. Must be called
// exactly once after the module's object file (or textual IR) has been
// emitted.
func (lo *Lowerer) Dispose() {
	lo.builder.Dispose()
	lo.mod.Dispose()
	lo.ctx.Dispose()
}

// LLVMModule returns the underlying llvm.Module, for --emit-llvm/--emit-obj and
// the backend glue's object-emission step.
func (lo *Lowerer) LLVMModule() llvm.Module { return lo.mod }

func (lo *Lowerer) pushScope() { lo.scopes.Push(newScope()) }
func (lo *Lowerer) popScope()  { lo.scopes.Pop() }

// lookup searches the scope stack top-down (innermost block first).
func (lo *Lowerer) lookup(name string) (*binding, bool) {
	for i := 1; i <= lo.scopes.Size(); i++ {
		sc, _ := lo.scopes.Get(i).(*scope)
		if sc == nil {
			continue
		}
		if b, ok := sc.get(name); ok {
			return b, true
		}
	}
	return nil, false
}

// declare adds name to the innermost (top) scope.
func (lo *Lowerer) declare(name string, b *binding) {
	sc, _ := lo.scopes.Get(1).(*scope)
	if sc == nil {
		sc = newScope()
		lo.scopes.Push(sc)
	}
	sc.put(name, b)
}

func (lo *Lowerer) pushLoop(l loopLabels) { lo.loops.Push(l) }
func (lo *Lowerer) popLoop()              { lo.loops.Pop() }

func (lo *Lowerer) currentLoop() (loopLabels, error) {
	l, _ := lo.loops.Peek().(loopLabels)
	if l.cont.IsNil() && l.brk.IsNil() {
		return loopLabels{}, fmt.Errorf("break/continue used outside a loop")
	}
	return l, nil
}

// llvmType converts a resolved Type to its llvm.Type, building (and
// caching) named struct/Optional record types the first time each is seen.
func (lo *Lowerer) llvmType(t types.Type) llvm.Type {
	switch v := t.(type) {
	case *types.Void:
		return lo.ctx.VoidType()
	case *types.Int:
		return lo.ctx.IntType(v.Width)
	case *types.Float:
		if v.Width == 32 {
			return lo.ctx.FloatType()
		}
		return lo.ctx.DoubleType()
	case *types.Bool:
		return lo.ctx.Int1Type()
	case *types.Char:
		return lo.ctx.Int8Type()
	case *types.Pointer:
		return llvm.PointerType(lo.llvmType(v.Elem), 0)
	case *types.ArrayT:
		return llvm.ArrayType(lo.llvmType(v.Elem), v.Len)
	case *types.StructT:
		return lo.structLLVM(v)
	case *types.EnumT:
		return lo.enumRecordType()
	case *types.OptionalT:
		return lo.optionalLLVM(v)
	case *types.FuncT:
		params := make([]llvm.Type, len(v.Params))
		for i, p := range v.Params {
			params[i] = lo.llvmType(p)
		}
		return llvm.FunctionType(lo.llvmType(v.Ret), params, v.Varargs)
	default:
		return lo.ctx.VoidType()
	}
}

// structLLVM builds (or returns the cached) named struct type for st,
// creating it opaque first so a self-referential field (Pointer{Self})
// resolves to the same handle before the body is set (§4.9).
func (lo *Lowerer) structLLVM(st *types.StructT) llvm.Type {
	if t, ok := lo.types[st.Name]; ok {
		return t
	}
	named := lo.ctx.StructCreateNamed(st.Name)
	lo.types[st.Name] = named
	fields := make([]llvm.Type, len(st.Fields))
	for i, f := range st.Fields {
		fields[i] = lo.llvmType(f.Type)
	}
	named.StructSetBody(fields, false)
	return named
}

// enumRecordType returns the single {i32 tag, i64 payload} layout every
// enum — including the virtual Optional enum used by is/match — shares.
func (lo *Lowerer) enumRecordType() llvm.Type {
	const name = "$enum"
	if t, ok := lo.types[name]; ok {
		return t
	}
	named := lo.ctx.StructCreateNamed(name)
	lo.types[name] = named
	named.StructSetBody([]llvm.Type{lo.ctx.Int32Type(), lo.ctx.Int64Type()}, false)
	return named
}

// optionalLLVM builds (or returns the cached) { i32 tag, T value, ptr
// error_msg } record for T? (§4.8), named per its inner type so e.g. i32?
// and string? get distinct, stable backend types.
func (lo *Lowerer) optionalLLVM(ot *types.OptionalT) llvm.Type {
	name := "Optional_" + ot.Inner.String()
	if t, ok := lo.types[name]; ok {
		return t
	}
	named := lo.ctx.StructCreateNamed(name)
	lo.types[name] = named
	fields := []llvm.Type{
		lo.ctx.Int32Type(),
		lo.llvmType(ot.Inner),
		llvm.PointerType(lo.ctx.Int8Type(), 0),
	}
	named.StructSetBody(fields, false)
	return named
}
