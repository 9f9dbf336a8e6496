package llvm

import (
	"fmt"

	"tinygo.org/x/go-llvm"

	"pawc/src/ast"
	"pawc/src/types"
)

// lowerFuncBody lowers fd's body into the llvm.Function already declared by
// declareFunc, pushing a fresh scope for its parameters and sinking the
// resolver's Self context back in for the duration (methods need it for any
// Self-typed local, not just the signature declareFunc already resolved).
func (lo *Lowerer) lowerFuncBody(fd *ast.FuncDecl, structName string) error {
	mangled := fd.Name
	if structName != "" {
		mangled = structName + "_" + fd.Name
	}
	return lo.lowerFuncBodyNamed(fd, mangled, structName)
}

// lowerFuncBodyNamed is lowerFuncBody generalized to an explicit mangled
// name, so a monomorphized generic instance (whose mangled name carries its
// type arguments, not just its struct prefix) can share the same body
// lowering as an ordinary function or method.
func (lo *Lowerer) lowerFuncBodyNamed(fd *ast.FuncDecl, mangled, structName string) error {
	if fd.Body == nil {
		return nil // declared but bodyless, e.g. a trait stub — nothing to lower
	}
	if structName != "" {
		lo.resolver.EnterStruct(structName, fd.IsMethod)
		defer lo.resolver.Leave()
	}
	fn, ok := lo.funcs[mangled]
	if !ok {
		return fmt.Errorf("internal error: %s has no declared header", mangled)
	}

	retT, err := lo.resolver.Resolve(fd.Ret, -1)
	if err != nil {
		return err
	}
	prevFunc, prevRet, prevOpt, prevStruct := lo.curFunc, lo.curRetT, lo.curIsOpt, lo.curStruct
	isOpt := false
	if p, ok := retT.(*types.Pointer); ok {
		_, isOpt = p.Elem.(*types.OptionalT)
	}
	lo.curFunc, lo.curRetT, lo.curIsOpt, lo.curStruct = fn, retT, isOpt, structName
	defer func() { lo.curFunc, lo.curRetT, lo.curIsOpt, lo.curStruct = prevFunc, prevRet, prevOpt, prevStruct }()
	if prevBlock := lo.builder.GetInsertBlock(); !prevBlock.IsNil() {
		defer lo.builder.SetInsertPointAtEnd(prevBlock)
	}

	entry := llvm.AddBasicBlock(fn, "entry")
	lo.builder.SetInsertPointAtEnd(entry)

	lo.pushScope()
	defer lo.popScope()

	for i, p := range fd.Params {
		pt, err := lo.paramType(p)
		if err != nil {
			return fmt.Errorf("%s: %w", mangled, err)
		}
		name := p.Name
		if p.IsSelf {
			name = "self"
		}
		llt := lo.llvmType(pt)
		alloca := lo.builder.CreateAlloca(llt, name)
		lo.builder.CreateStore(fn.Param(i), alloca)
		lo.declare(name, &binding{alloca: alloca, typ: pt, mut: p.Mut})
	}

	if err := lo.lowerBlockStmts(fd.Body); err != nil {
		return fmt.Errorf("%s: %w", mangled, err)
	}

	if !lo.blockTerminated() {
		if _, ok := retT.(*types.Void); ok {
			lo.builder.CreateRetVoid()
		} else {
			return fmt.Errorf("%s: missing return on a path reaching the end of a non-void function", mangled)
		}
	}
	return nil
}

func (lo *Lowerer) paramType(p ast.Param) (types.Type, error) {
	if p.IsSelf {
		return lo.resolver.Resolve(&ast.Type{Data: &ast.SelfType{}}, -1)
	}
	t, err := lo.resolver.Resolve(p.Type, -1)
	if err != nil {
		return nil, err
	}
	// §4.9: a generic function's Array-typed parameter is passed as a
	// pointer to its element, the element type recorded by the Pointer
	// itself, so indexing inside the body still works after substitution.
	if lo.inGenericBody {
		if at, ok := t.(*types.ArrayT); ok {
			return &types.Pointer{Elem: at.Elem}, nil
		}
	}
	return t, nil
}

// blockTerminated reports whether the builder's current insertion block
// already ends in a terminator (ret/br/switch), so lowerFuncBody and
// lowerIf don't append a second one.
func (lo *Lowerer) blockTerminated() bool {
	blk := lo.builder.GetInsertBlock()
	if blk.IsNil() {
		return false
	}
	term := blk.LastInstruction()
	return !term.IsNil() && !term.IsATerminatorInst().IsNil()
}

// lowerBlockStmts lowers every statement of b in its own scope, without
// producing a value — used for function, loop and then/else bodies that
// are never themselves an expression.
func (lo *Lowerer) lowerBlockStmts(b *ast.Block) error {
	lo.pushScope()
	defer lo.popScope()
	for _, s := range b.Stmts {
		if err := lo.lowerStmt(s); err != nil {
			return err
		}
		if lo.blockTerminated() {
			break // dead code after return/break/continue is never lowered
		}
	}
	return nil
}

// lowerBlockExpr lowers b the same way but additionally returns the value
// of a trailing ExprStmt, for a Block used in expression position (an If
// whose result is assigned or returned, a match arm's block form).
func (lo *Lowerer) lowerBlockExpr(b *ast.Block) (llvm.Value, types.Type, error) {
	lo.pushScope()
	defer lo.popScope()
	var (
		val  llvm.Value
		typ  types.Type = &types.Void{}
		last            = len(b.Stmts) - 1
	)
	for i, s := range b.Stmts {
		if i == last {
			if es, ok := s.Data.(*ast.ExprStmt); ok {
				v, t, err := lo.lowerExpr(es.X)
				if err != nil {
					return llvm.Value{}, nil, err
				}
				val, typ = v, t
				continue
			}
		}
		if err := lo.lowerStmt(s); err != nil {
			return llvm.Value{}, nil, err
		}
		if lo.blockTerminated() {
			break
		}
	}
	return val, typ, nil
}

func (lo *Lowerer) lowerStmt(s *ast.Stmt) error {
	switch d := s.Data.(type) {
	case *ast.ExprStmt:
		_, _, err := lo.lowerExpr(d.X)
		return err
	case *ast.LetStmt:
		return lo.lowerLet(d)
	case *ast.ReturnStmt:
		return lo.lowerReturn(d)
	case *ast.LoopStmt:
		return lo.lowerLoop(d)
	case *ast.BreakStmt:
		l, err := lo.currentLoop()
		if err != nil {
			return err
		}
		lo.builder.CreateBr(l.brk)
		return nil
	case *ast.ContinueStmt:
		l, err := lo.currentLoop()
		if err != nil {
			return err
		}
		lo.builder.CreateBr(l.cont)
		return nil
	case *ast.Block:
		return lo.lowerBlockStmts(d)
	default:
		return fmt.Errorf("%s: unlowerable statement kind %T", s.Span, d)
	}
}

// lowerLet lowers a `let`/`let mut` binding: the initializer's resolved type
// wins when the declaration elides its own (Type == nil), so `let x = 4;`
// gets i32 from the literal rather than a guessed default, per §4.7.
func (lo *Lowerer) lowerLet(d *ast.LetStmt) error {
	initVal, initT, err := lo.lowerExpr(d.Init)
	if err != nil {
		return fmt.Errorf("let %s: %w", d.Name, err)
	}
	declT := initT
	if d.Type != nil {
		arrLen := -1
		if arr, ok := initT.(*types.ArrayT); ok {
			arrLen = arr.Len
		}
		declT, err = lo.resolver.Resolve(d.Type, arrLen)
		if err != nil {
			return fmt.Errorf("let %s: %w", d.Name, err)
		}
	}
	llt := lo.llvmType(declT)
	alloca := lo.builder.CreateAlloca(llt, d.Name)
	lo.builder.CreateStore(initVal, alloca)
	lo.declare(d.Name, &binding{alloca: alloca, typ: declT, mut: d.Mut})
	return nil
}

// lowerReturn lowers `return`/`return value;`. A bare `return ok(...)`/
// `return err(...)` inside a function whose declared return type is T? is
// handled by Ok/Err lowering in expr.go, which already builds the Optional
// record; lowerReturn only has to emit the ret instruction itself.
func (lo *Lowerer) lowerReturn(d *ast.ReturnStmt) error {
	if d.Value == nil {
		lo.builder.CreateRetVoid()
		return nil
	}
	v, _, err := lo.lowerExpr(d.Value)
	if err != nil {
		return err
	}
	lo.builder.CreateRet(v)
	return nil
}

// lowerLoop lowers every LoopKind to the same head/body/end three-block
// shape the teacher's genWhile uses, generalized to cover the infinite,
// range and iterator forms too (§4.7).
func (lo *Lowerer) lowerLoop(d *ast.LoopStmt) error {
	switch d.Kind {
	case ast.LoopInfinite:
		return lo.lowerLoopInfinite(d)
	case ast.LoopCond:
		return lo.lowerLoopCond(d)
	case ast.LoopRange:
		return lo.lowerLoopRange(d)
	case ast.LoopIter:
		return lo.lowerLoopIter(d)
	default:
		return fmt.Errorf("unknown loop kind %d", d.Kind)
	}
}

func (lo *Lowerer) lowerLoopInfinite(d *ast.LoopStmt) error {
	head := llvm.AddBasicBlock(lo.curFunc, "loop_head")
	end := llvm.AddBasicBlock(lo.curFunc, "loop_end")
	lo.builder.CreateBr(head)

	lo.builder.SetInsertPointAtEnd(head)
	lo.pushLoop(loopLabels{cont: head, brk: end})
	if err := lo.lowerBlockStmts(d.Body); err != nil {
		lo.popLoop()
		return err
	}
	lo.popLoop()
	if !lo.blockTerminated() {
		lo.builder.CreateBr(head)
	}

	lo.builder.SetInsertPointAtEnd(end)
	return nil
}

func (lo *Lowerer) lowerLoopCond(d *ast.LoopStmt) error {
	head := llvm.AddBasicBlock(lo.curFunc, "loop_head")
	body := llvm.AddBasicBlock(lo.curFunc, "loop_body")
	end := llvm.AddBasicBlock(lo.curFunc, "loop_end")
	lo.builder.CreateBr(head)

	lo.builder.SetInsertPointAtEnd(head)
	cond, _, err := lo.lowerExpr(d.Cond)
	if err != nil {
		return err
	}
	lo.builder.CreateCondBr(cond, body, end)

	lo.builder.SetInsertPointAtEnd(body)
	lo.pushLoop(loopLabels{cont: head, brk: end})
	if err := lo.lowerBlockStmts(d.Body); err != nil {
		lo.popLoop()
		return err
	}
	lo.popLoop()
	if !lo.blockTerminated() {
		lo.builder.CreateBr(head)
	}

	lo.builder.SetInsertPointAtEnd(end)
	return nil
}

// lowerLoopRange lowers `loop i in start..end { ... }` as an implicit mutable
// counter: alloca i, init to start, test i < end at the head, increment
// after the body, mirroring the teacher's genWhile shape with the
// index-variable bookkeeping a C-style for loop needs that a plain while
// does not.
func (lo *Lowerer) lowerLoopRange(d *ast.LoopStmt) error {
	startV, startT, err := lo.lowerExpr(d.Start)
	if err != nil {
		return err
	}
	endV, _, err := lo.lowerExpr(d.End)
	if err != nil {
		return err
	}
	llt := lo.llvmType(startT)
	iAlloca := lo.builder.CreateAlloca(llt, d.Var)
	lo.builder.CreateStore(startV, iAlloca)

	head := llvm.AddBasicBlock(lo.curFunc, "loop_head")
	body := llvm.AddBasicBlock(lo.curFunc, "loop_body")
	end := llvm.AddBasicBlock(lo.curFunc, "loop_end")
	lo.builder.CreateBr(head)

	lo.builder.SetInsertPointAtEnd(head)
	cur := lo.builder.CreateLoad(llt, iAlloca, d.Var)
	cond := lo.builder.CreateICmp(llvm.IntSLT, cur, endV, "")
	lo.builder.CreateCondBr(cond, body, end)

	lo.builder.SetInsertPointAtEnd(body)
	lo.pushScope()
	lo.declare(d.Var, &binding{alloca: iAlloca, typ: startT, mut: false})
	lo.pushLoop(loopLabels{cont: head, brk: end})
	bodyErr := lo.lowerBlockStmtsNoScope(d.Body)
	lo.popLoop()
	lo.popScope()
	if bodyErr != nil {
		return bodyErr
	}
	if !lo.blockTerminated() {
		cur2 := lo.builder.CreateLoad(llt, iAlloca, "")
		next := lo.builder.CreateAdd(cur2, llvm.ConstInt(llt, 1, false), "")
		lo.builder.CreateStore(next, iAlloca)
		lo.builder.CreateBr(head)
	}

	lo.builder.SetInsertPointAtEnd(end)
	return nil
}

// lowerLoopIter lowers `loop x in arr { ... }` as index-based traversal of
// arr's known length (§4.7), the same head/body/end shape lowerLoopRange
// uses with the range's start/end replaced by 0/len(arr) and the induction
// variable rebound each iteration to arr[i] instead of the index itself.
func (lo *Lowerer) lowerLoopIter(d *ast.LoopStmt) error {
	arrPtr, iterT, err := lo.lowerExpr(d.Iter)
	if err != nil {
		return err
	}
	arrT, ok := iterT.(*types.ArrayT)
	if !ok {
		return fmt.Errorf("%s: %s is not an array, iterator loops require a known-length array", d.Iter.Span, iterT.String())
	}

	idxT := &types.Int{Width: 32, Signed: true}
	llIdxT := lo.llvmType(idxT)
	iAlloca := lo.builder.CreateAlloca(llIdxT, d.Var+"_idx")
	lo.builder.CreateStore(llvm.ConstInt(llIdxT, 0, false), iAlloca)

	head := llvm.AddBasicBlock(lo.curFunc, "loop_head")
	body := llvm.AddBasicBlock(lo.curFunc, "loop_body")
	end := llvm.AddBasicBlock(lo.curFunc, "loop_end")
	lo.builder.CreateBr(head)

	lo.builder.SetInsertPointAtEnd(head)
	cur := lo.builder.CreateLoad(llIdxT, iAlloca, "")
	limit := llvm.ConstInt(llIdxT, uint64(arrT.Len), false)
	cond := lo.builder.CreateICmp(llvm.IntSLT, cur, limit, "")
	lo.builder.CreateCondBr(cond, body, end)

	lo.builder.SetInsertPointAtEnd(body)
	zero := llvm.ConstInt(lo.ctx.Int32Type(), 0, false)
	idx := lo.builder.CreateLoad(llIdxT, iAlloca, "")
	elemPtr := lo.builder.CreateGEP(lo.llvmType(arrT), arrPtr, []llvm.Value{zero, idx}, "")
	var elemVal llvm.Value
	if _, isStruct := underlyingStruct(arrT.Elem); isStruct {
		elemVal = elemPtr
	} else {
		elemVal = lo.builder.CreateLoad(lo.llvmType(arrT.Elem), elemPtr, "")
	}
	xAlloca := lo.builder.CreateAlloca(lo.llvmType(arrT.Elem), d.Var)
	lo.builder.CreateStore(elemVal, xAlloca)

	lo.pushScope()
	lo.declare(d.Var, &binding{alloca: xAlloca, typ: arrT.Elem, mut: false})
	lo.pushLoop(loopLabels{cont: head, brk: end})
	bodyErr := lo.lowerBlockStmtsNoScope(d.Body)
	lo.popLoop()
	lo.popScope()
	if bodyErr != nil {
		return bodyErr
	}
	if !lo.blockTerminated() {
		cur2 := lo.builder.CreateLoad(llIdxT, iAlloca, "")
		next := lo.builder.CreateAdd(cur2, llvm.ConstInt(llIdxT, 1, false), "")
		lo.builder.CreateStore(next, iAlloca)
		lo.builder.CreateBr(head)
	}

	lo.builder.SetInsertPointAtEnd(end)
	return nil
}

// lowerBlockStmtsNoScope lowers b's statements into the scope already
// pushed by the caller, for the range loop's induction variable, which must
// be visible to the body without an extra nested frame hiding it.
func (lo *Lowerer) lowerBlockStmtsNoScope(b *ast.Block) error {
	for _, s := range b.Stmts {
		if err := lo.lowerStmt(s); err != nil {
			return err
		}
		if lo.blockTerminated() {
			break
		}
	}
	return nil
}
