package llvm

import (
	"fmt"

	"tinygo.org/x/go-llvm"

	"pawc/src/ast"
	"pawc/src/symtab"
	"pawc/src/types"
)

// lowerExpr lowers e to an SSA value and the backend type describing it.
// Struct, Optional and array values are always represented by a pointer to
// their storage (heap for struct/Optional, the owning alloca for an array);
// everything else is lowered to its value directly, matching the
// alloca-or-not convention §4.7 fixes per kind.
func (lo *Lowerer) lowerExpr(e *ast.Expr) (llvm.Value, types.Type, error) {
	switch d := e.Data.(type) {
	case *ast.IntLit:
		t := &types.Int{Width: 32, Signed: true}
		return llvm.ConstInt(lo.llvmType(t), uint64(d.Value), true), t, nil
	case *ast.FloatLit:
		t := &types.Float{Width: 64}
		return llvm.ConstFloat(lo.llvmType(t), d.Value), t, nil
	case *ast.BoolLit:
		v := uint64(0)
		if d.Value {
			v = 1
		}
		return llvm.ConstInt(lo.ctx.Int1Type(), v, false), &types.Bool{}, nil
	case *ast.CharLit:
		return llvm.ConstInt(lo.ctx.Int8Type(), uint64(d.Value), false), &types.Char{}, nil
	case *ast.StringLit:
		v := lo.builder.CreateGlobalStringPtr(d.Value, "$str")
		return v, types.Str(), nil
	case *ast.Ident:
		return lo.lowerIdent(d, e.Span)
	case *ast.Unary:
		return lo.lowerUnary(d)
	case *ast.Binary:
		return lo.lowerBinary(d)
	case *ast.Assign:
		return lo.lowerAssign(d)
	case *ast.Member:
		return lo.lowerMember(d)
	case *ast.Index:
		return lo.lowerIndex(d)
	case *ast.ArrayLit:
		return lo.lowerArrayLit(d)
	case *ast.StructLit:
		return lo.lowerStructLit(d)
	case *ast.EnumVariant:
		return lo.lowerEnumVariant(d)
	case *ast.Call:
		return lo.lowerCall(d)
	case *ast.Match:
		return lo.lowerMatch(d)
	case *ast.IsExpr:
		return lo.lowerIs(d, nil)
	case *ast.If:
		return lo.lowerIf(d)
	case *ast.Cast:
		return lo.lowerCast(d)
	case *ast.Try:
		return lo.lowerTry(d)
	case *ast.Ok:
		return lo.lowerOk(d)
	case *ast.Err:
		return lo.lowerErr(d)
	default:
		return llvm.Value{}, nil, fmt.Errorf("%s: unlowerable expression kind %T", e.Span, d)
	}
}

// lvalue resolves e to a storage pointer and its pointee type, for the
// target of an Assign and the receiver of a field GEP.
func (lo *Lowerer) lvalue(e *ast.Expr) (llvm.Value, types.Type, bool, error) {
	switch d := e.Data.(type) {
	case *ast.Ident:
		b, ok := lo.lookup(d.Name)
		if !ok {
			return llvm.Value{}, nil, false, fmt.Errorf("%s: undefined variable %q", e.Span, d.Name)
		}
		return b.alloca, b.typ, b.mut, nil
	case *ast.Member:
		recv, recvT, _, err := lo.lvalue(d.X)
		if err != nil {
			return llvm.Value{}, nil, false, err
		}
		st, ptr, err := lo.structGEP(recv, recvT, d.Name, d.X.Span)
		if err != nil {
			return llvm.Value{}, nil, false, err
		}
		return ptr, st, true, nil
	case *ast.Index:
		ptr, elemT, err := lo.indexGEP(d)
		if err != nil {
			return llvm.Value{}, nil, false, err
		}
		return ptr, elemT, true, nil
	default:
		return llvm.Value{}, nil, false, fmt.Errorf("%s: not an assignable location", e.Span)
	}
}

func (lo *Lowerer) lowerIdent(d *ast.Ident, span ast.Span) (llvm.Value, types.Type, error) {
	if d.Module == "" {
		if b, ok := lo.lookup(d.Name); ok {
			switch b.typ.(type) {
			case *types.ArrayT:
				return b.alloca, b.typ, nil
			default:
				return lo.builder.CreateLoad(lo.llvmType(b.typ), b.alloca, d.Name), b.typ, nil
			}
		}
	}
	return llvm.Value{}, nil, fmt.Errorf("%s: undefined name %q", span, d.Name)
}

func (lo *Lowerer) lowerUnary(d *ast.Unary) (llvm.Value, types.Type, error) {
	v, t, err := lo.lowerExpr(d.X)
	if err != nil {
		return llvm.Value{}, nil, err
	}
	switch d.Op {
	case "-":
		if _, ok := t.(*types.Float); ok {
			return lo.builder.CreateFNeg(v, ""), t, nil
		}
		return lo.builder.CreateNeg(v, ""), t, nil
	case "!":
		return lo.builder.CreateNot(v, ""), t, nil
	default:
		return llvm.Value{}, nil, fmt.Errorf("unknown unary operator %q", d.Op)
	}
}

// promote sign-extends the narrower of two integer operands up to the
// wider's width, per §4.6's "narrower operand is sign-extended to the
// wider" rule; non-integer operands pass through unchanged.
func (lo *Lowerer) promote(lv, rv llvm.Value, lt, rt types.Type) (llvm.Value, llvm.Value, types.Type) {
	li, lok := lt.(*types.Int)
	ri, rok := rt.(*types.Int)
	if !lok || !rok || li.Width == ri.Width {
		return lv, rv, lt
	}
	if li.Width < ri.Width {
		return lo.builder.CreateSExt(lv, lo.llvmType(ri), ""), rv, rt
	}
	return lv, lo.builder.CreateSExt(rv, lo.llvmType(li), ""), lt
}

func (lo *Lowerer) lowerBinary(d *ast.Binary) (llvm.Value, types.Type, error) {
	if d.Op == "&&" || d.Op == "||" {
		return lo.lowerShortCircuit(d)
	}

	lv, lt, err := lo.lowerExpr(d.L)
	if err != nil {
		return llvm.Value{}, nil, err
	}
	rv, rt, err := lo.lowerExpr(d.R)
	if err != nil {
		return llvm.Value{}, nil, err
	}

	if d.Op == "+" && types.IsStringPointer(lt) {
		v, err := lo.concatStrings(lv, rv)
		return v, types.Str(), err
	}

	_, isFloat := lt.(*types.Float)
	lv, rv, opT := lo.promote(lv, rv, lt, rt)

	switch d.Op {
	case "+", "-", "*", "/", "%":
		return lo.arith(d.Op, lv, rv, opT, isFloat), opT, nil
	case "==", "!=", "<", "<=", ">", ">=":
		return lo.compare(d.Op, lv, rv, isFloat), &types.Bool{}, nil
	case "&", "|", "^", "<<", ">>":
		return lo.bitwise(d.Op, lv, rv), opT, nil
	default:
		return llvm.Value{}, nil, fmt.Errorf("unknown binary operator %q", d.Op)
	}
}

func (lo *Lowerer) arith(op string, lv, rv llvm.Value, t types.Type, isFloat bool) llvm.Value {
	b := lo.builder
	if isFloat {
		switch op {
		case "+":
			return b.CreateFAdd(lv, rv, "")
		case "-":
			return b.CreateFSub(lv, rv, "")
		case "*":
			return b.CreateFMul(lv, rv, "")
		case "/":
			return b.CreateFDiv(lv, rv, "")
		default: // "%"
			return b.CreateFRem(lv, rv, "")
		}
	}
	switch op {
	case "+":
		return b.CreateAdd(lv, rv, "")
	case "-":
		return b.CreateSub(lv, rv, "")
	case "*":
		return b.CreateMul(lv, rv, "")
	case "/":
		return b.CreateSDiv(lv, rv, "")
	default: // "%", signed per §4.6
		return b.CreateSRem(lv, rv, "")
	}
}

func (lo *Lowerer) compare(op string, lv, rv llvm.Value, isFloat bool) llvm.Value {
	if isFloat {
		var pred llvm.FloatPredicate
		switch op {
		case "==":
			pred = llvm.FloatOEQ
		case "!=":
			pred = llvm.FloatONE
		case "<":
			pred = llvm.FloatOLT
		case "<=":
			pred = llvm.FloatOLE
		case ">":
			pred = llvm.FloatOGT
		default:
			pred = llvm.FloatOGE
		}
		return lo.builder.CreateFCmp(pred, lv, rv, "")
	}
	var pred llvm.IntPredicate
	switch op {
	case "==":
		pred = llvm.IntEQ
	case "!=":
		pred = llvm.IntNE
	case "<":
		pred = llvm.IntSLT
	case "<=":
		pred = llvm.IntSLE
	case ">":
		pred = llvm.IntSGT
	default:
		pred = llvm.IntSGE
	}
	return lo.builder.CreateICmp(pred, lv, rv, "")
}

func (lo *Lowerer) bitwise(op string, lv, rv llvm.Value) llvm.Value {
	b := lo.builder
	switch op {
	case "&":
		return b.CreateAnd(lv, rv, "")
	case "|":
		return b.CreateOr(lv, rv, "")
	case "^":
		return b.CreateXor(lv, rv, "")
	case "<<":
		return b.CreateShl(lv, rv, "")
	default: // ">>"
		return b.CreateLShr(lv, rv, "")
	}
}

// lowerShortCircuit lowers && and || with the usual two-predecessor phi,
// evaluating the right operand only when the left doesn't already decide
// the result.
func (lo *Lowerer) lowerShortCircuit(d *ast.Binary) (llvm.Value, types.Type, error) {
	lv, _, err := lo.lowerExpr(d.L)
	if err != nil {
		return llvm.Value{}, nil, err
	}
	lhsBlock := lo.builder.GetInsertBlock()
	rhsBlock := llvm.AddBasicBlock(lo.curFunc, "")
	mergeBlock := llvm.AddBasicBlock(lo.curFunc, "")

	if d.Op == "&&" {
		lo.builder.CreateCondBr(lv, rhsBlock, mergeBlock)
	} else {
		lo.builder.CreateCondBr(lv, mergeBlock, rhsBlock)
	}

	lo.builder.SetInsertPointAtEnd(rhsBlock)
	rv, _, err := lo.lowerExpr(d.R)
	if err != nil {
		return llvm.Value{}, nil, err
	}
	rhsEnd := lo.builder.GetInsertBlock()
	lo.builder.CreateBr(mergeBlock)

	lo.builder.SetInsertPointAtEnd(mergeBlock)
	phi := lo.builder.CreatePHI(lo.ctx.Int1Type(), "")
	phi.AddIncoming([]llvm.Value{lv, rv}, []llvm.BasicBlock{lhsBlock, rhsEnd})
	return phi, &types.Bool{}, nil
}

// concatStrings implements the runtime-helper lowering of string `+`:
// len1+len2+1 via strlen, malloc, strcpy then strcat (§4.6).
func (lo *Lowerer) concatStrings(lv, rv llvm.Value) (llvm.Value, error) {
	b := lo.builder
	i64 := lo.ctx.Int64Type()
	l1 := b.CreateCall(lo.runtime.strlen, []llvm.Value{lv}, "")
	l2 := b.CreateCall(lo.runtime.strlen, []llvm.Value{rv}, "")
	total := b.CreateAdd(l1, l2, "")
	total = b.CreateAdd(total, llvm.ConstInt(i64, 1, false), "")
	buf := b.CreateCall(lo.runtime.malloc, []llvm.Value{total}, "")
	b.CreateCall(lo.runtime.strcpy, []llvm.Value{buf, lv}, "")
	b.CreateCall(lo.runtime.strcat, []llvm.Value{buf, rv}, "")
	return buf, nil
}

func (lo *Lowerer) lowerAssign(d *ast.Assign) (llvm.Value, types.Type, error) {
	ptr, ptrT, mut, err := lo.lvalue(d.Target)
	if err != nil {
		return llvm.Value{}, nil, err
	}
	if !mut {
		return llvm.Value{}, nil, fmt.Errorf("%s: assignment to a non-mut binding", d.Target.Span)
	}
	val, _, err := lo.lowerExpr(d.Value)
	if err != nil {
		return llvm.Value{}, nil, err
	}
	if d.Op != "" {
		cur := lo.builder.CreateLoad(lo.llvmType(ptrT), ptr, "")
		_, isFloat := ptrT.(*types.Float)
		val = lo.arith(d.Op, cur, val, ptrT, isFloat)
	}
	lo.builder.CreateStore(val, ptr)
	return val, ptrT, nil
}

// structGEP returns the field's type and its storage pointer, given recv
// (a pointer to a struct) and recvT describing it.
func (lo *Lowerer) structGEP(recv llvm.Value, recvT types.Type, field string, span ast.Span) (types.Type, llvm.Value, error) {
	p, ok := recvT.(*types.Pointer)
	if !ok {
		return nil, llvm.Value{}, fmt.Errorf("%s: %s is not a struct value", span, recvT.String())
	}
	st, ok := p.Elem.(*types.StructT)
	if !ok {
		return nil, llvm.Value{}, fmt.Errorf("%s: %s is not a struct value", span, recvT.String())
	}
	idx := st.FieldIndex(field)
	if idx < 0 {
		return nil, llvm.Value{}, fmt.Errorf("%s: %s has no field %q", span, st.Name, field)
	}
	structLL := lo.structLLVM(st)
	ptr := lo.builder.CreateStructGEP(structLL, recv, idx, field)
	return st.Fields[idx].Type, ptr, nil
}

// lowerMember lowers `x.name` when name is a field (a method access must be
// the callee of a Call, handled in lowerCall instead).
func (lo *Lowerer) lowerMember(d *ast.Member) (llvm.Value, types.Type, error) {
	recv, recvT, err := lo.lowerExpr(d.X)
	if err != nil {
		return llvm.Value{}, nil, err
	}
	ft, ptr, err := lo.structGEP(recv, recvT, d.Name, d.X.Span)
	if err != nil {
		return llvm.Value{}, nil, err
	}
	if _, isStruct := underlyingStruct(ft); isStruct {
		return ptr, ft, nil // struct-typed fields are returned by pointer, never loaded
	}
	return lo.builder.CreateLoad(lo.llvmType(ft), ptr, d.Name), ft, nil
}

func underlyingStruct(t types.Type) (*types.StructT, bool) {
	if p, ok := t.(*types.Pointer); ok {
		if st, ok := p.Elem.(*types.StructT); ok {
			return st, true
		}
	}
	return nil, false
}

// indexGEP resolves x[i]'s storage pointer and element type, dispatching on
// the base's storage kind per §4.6: fixed array (GEP 0, i), string (byte
// GEP i), or a pointer already pointing at element storage.
func (lo *Lowerer) indexGEP(d *ast.Index) (llvm.Value, types.Type, error) {
	base, baseT, err := lo.lowerExpr(d.X)
	if err != nil {
		return llvm.Value{}, nil, err
	}
	idx, _, err := lo.lowerExpr(d.Idx)
	if err != nil {
		return llvm.Value{}, nil, err
	}
	switch bt := baseT.(type) {
	case *types.ArrayT:
		zero := llvm.ConstInt(lo.ctx.Int32Type(), 0, false)
		ptr := lo.builder.CreateGEP(lo.llvmType(bt), base, []llvm.Value{zero, idx}, "")
		return ptr, bt.Elem, nil
	case *types.Pointer:
		if _, ok := bt.Elem.(*types.Char); ok {
			ptr := lo.builder.CreateGEP(lo.ctx.Int8Type(), base, []llvm.Value{idx}, "")
			return ptr, &types.Char{}, nil
		}
		ptr := lo.builder.CreateGEP(lo.llvmType(bt.Elem), base, []llvm.Value{idx}, "")
		return ptr, bt.Elem, nil
	default:
		return llvm.Value{}, nil, fmt.Errorf("%s: %s is not indexable", d.X.Span, baseT.String())
	}
}

func (lo *Lowerer) lowerIndex(d *ast.Index) (llvm.Value, types.Type, error) {
	ptr, elemT, err := lo.indexGEP(d)
	if err != nil {
		return llvm.Value{}, nil, err
	}
	if _, isStruct := underlyingStruct(elemT); isStruct {
		return ptr, elemT, nil
	}
	return lo.builder.CreateLoad(lo.llvmType(elemT), ptr, ""), elemT, nil
}

// lowerArrayLit is only ever reached as a `let`'s initializer (§4.6);
// it allocates the array's own storage and returns the alloca pointer,
// matching the "array values are always referenced by their storage
// pointer" convention lowerIdent/indexGEP rely on.
func (lo *Lowerer) lowerArrayLit(d *ast.ArrayLit) (llvm.Value, types.Type, error) {
	if len(d.Elems) == 0 {
		return llvm.Value{}, nil, fmt.Errorf("an empty array literal has no element type to infer")
	}
	vals := make([]llvm.Value, len(d.Elems))
	var elemT types.Type
	for i, e := range d.Elems {
		v, t, err := lo.lowerExpr(e)
		if err != nil {
			return llvm.Value{}, nil, err
		}
		vals[i] = v
		if i == 0 {
			elemT = t
		}
	}
	arrT := &types.ArrayT{Elem: elemT, Len: len(vals)}
	llArr := lo.llvmType(arrT)
	alloca := lo.builder.CreateAlloca(llArr, "")
	for i, v := range vals {
		idx := llvm.ConstInt(lo.ctx.Int32Type(), uint64(i), false)
		zero := llvm.ConstInt(lo.ctx.Int32Type(), 0, false)
		ptr := lo.builder.CreateGEP(llArr, alloca, []llvm.Value{zero, idx}, "")
		lo.builder.CreateStore(v, ptr)
	}
	return alloca, arrT, nil
}

// lowerStructLit computes each field, mallocs the struct and stores them,
// returning the heap pointer (§4.6).
func (lo *Lowerer) lowerStructLit(d *ast.StructLit) (llvm.Value, types.Type, error) {
	namedT := &ast.Named{Name: d.Name, Args: d.TypeArgs}
	rt, err := lo.resolver.Resolve(&ast.Type{Data: namedT}, -1)
	if err != nil {
		return llvm.Value{}, nil, err
	}
	p, ok := rt.(*types.Pointer)
	if !ok {
		return llvm.Value{}, nil, fmt.Errorf("%s is not a struct type", d.Name)
	}
	st := p.Elem.(*types.StructT)
	structLL := lo.structLLVM(st)

	vals := make(map[string]llvm.Value, len(d.Fields))
	for _, f := range d.Fields {
		v, _, err := lo.lowerExpr(f.Value)
		if err != nil {
			return llvm.Value{}, nil, err
		}
		vals[f.Name] = v
	}

	size := lo.sizeOf(structLL)
	raw := lo.builder.CreateCall(lo.runtime.malloc, []llvm.Value{size}, "")
	ptr := lo.builder.CreateBitCast(raw, llvm.PointerType(structLL, 0), "")
	for i, field := range st.Fields {
		v, ok := vals[field.Name]
		if !ok {
			return llvm.Value{}, nil, fmt.Errorf("struct literal %s is missing field %q", d.Name, field.Name)
		}
		fp := lo.builder.CreateStructGEP(structLL, ptr, i, field.Name)
		lo.builder.CreateStore(v, fp)
	}
	return ptr, &types.Pointer{Elem: st}, nil
}

// sizeOf computes sizeof(t) with the classic null-pointer GEP trick, since
// the lowerer has no DataLayout handle of its own.
func (lo *Lowerer) sizeOf(t llvm.Type) llvm.Value {
	i64 := lo.ctx.Int64Type()
	nullPtr := llvm.ConstNull(llvm.PointerType(t, 0))
	one := llvm.ConstInt(i64, 1, false)
	gep := lo.builder.CreateGEP(t, nullPtr, []llvm.Value{one}, "")
	return lo.builder.CreatePtrToInt(gep, i64, "")
}

// lowerEnumVariant builds the shared {tag, payload} record value for
// Enum::Variant(args): tag is the variant's ordinal, payload holds the
// first argument zero-extended (or truncated, for a 128-bit integer) into the i64 bit-bag
// (§4.6); an enum value is never heap-allocated, it is carried by value.
func (lo *Lowerer) lowerEnumVariant(d *ast.EnumVariant) (llvm.Value, types.Type, error) {
	rt, err := lo.resolver.Resolve(&ast.Type{Data: &ast.Named{Name: d.Enum}}, -1)
	if err != nil {
		return llvm.Value{}, nil, err
	}
	et, ok := rt.(*types.EnumT)
	if !ok {
		return llvm.Value{}, nil, fmt.Errorf("%s is not an enum", d.Enum)
	}
	ord := et.Ordinal(d.Variant)
	if ord < 0 {
		return llvm.Value{}, nil, fmt.Errorf("%s has no variant %q", d.Enum, d.Variant)
	}
	recordT := lo.enumRecordType()
	i64 := lo.ctx.Int64Type()
	payload := llvm.ConstInt(i64, 0, false)
	if len(d.Args) > 0 {
		v, vt, err := lo.lowerExpr(d.Args[0])
		if err != nil {
			return llvm.Value{}, nil, err
		}
		payload = lo.widenToPayload(v, vt)
	}
	alloca := lo.builder.CreateAlloca(recordT, "")
	tagPtr := lo.builder.CreateStructGEP(recordT, alloca, 0, "tag")
	lo.builder.CreateStore(llvm.ConstInt(lo.ctx.Int32Type(), uint64(ord), false), tagPtr)
	payloadPtr := lo.builder.CreateStructGEP(recordT, alloca, 1, "payload")
	lo.builder.CreateStore(payload, payloadPtr)
	return lo.builder.CreateLoad(recordT, alloca, ""), et, nil
}

// widenToPayload packs v (of type vt) into the enum record's i64 payload
// slot, zero-extending integer/bool/char kinds and truncating an integer
// wider than 64 bits; a pointer-shaped value (string, struct) is carried
// through a ptrtoint.
func (lo *Lowerer) widenToPayload(v llvm.Value, vt types.Type) llvm.Value {
	i64 := lo.ctx.Int64Type()
	switch t := vt.(type) {
	case *types.Pointer:
		return lo.builder.CreatePtrToInt(v, i64, "")
	case *types.Int:
		if t.Width > 64 {
			return lo.builder.CreateTrunc(v, i64, "")
		}
		return lo.builder.CreateZExt(v, i64, "")
	default:
		return lo.builder.CreateZExt(v, i64, "")
	}
}

// narrowFromPayload is the inverse of widenToPayload, used when a match/is
// pattern binds a sub-pattern name to the variant's payload.
func (lo *Lowerer) narrowFromPayload(payload llvm.Value, t types.Type) llvm.Value {
	switch tt := t.(type) {
	case *types.Pointer:
		return lo.builder.CreateIntToPtr(payload, lo.llvmType(tt), "")
	case *types.Int:
		if tt.Width == 64 {
			return payload
		}
		return lo.builder.CreateTrunc(payload, lo.llvmType(tt), "")
	case *types.Bool:
		return lo.builder.CreateTrunc(payload, lo.ctx.Int1Type(), "")
	case *types.Char:
		return lo.builder.CreateTrunc(payload, lo.ctx.Int8Type(), "")
	default:
		return payload
	}
}

// lowerCast implements `as` per §4.6's conversion table.
func (lo *Lowerer) lowerCast(d *ast.Cast) (llvm.Value, types.Type, error) {
	v, from, err := lo.lowerExpr(d.X)
	if err != nil {
		return llvm.Value{}, nil, err
	}
	to, err := lo.resolver.Resolve(d.To, -1)
	if err != nil {
		return llvm.Value{}, nil, err
	}
	if types.Equal(from, to) {
		return v, to, nil
	}
	llTo := lo.llvmType(to)
	fi, fInt := from.(*types.Int)
	ti, tInt := to.(*types.Int)
	_, fFloat := from.(*types.Float)
	_, tFloat := to.(*types.Float)
	switch {
	case fInt && tInt:
		if ti.Width > fi.Width {
			return lo.builder.CreateSExt(v, llTo, ""), to, nil
		}
		return lo.builder.CreateTrunc(v, llTo, ""), to, nil
	case fInt && tFloat:
		return lo.builder.CreateSIToFP(v, llTo, ""), to, nil
	case fFloat && tInt:
		return lo.builder.CreateFPToSI(v, llTo, ""), to, nil
	case fFloat && tFloat:
		if to.(*types.Float).Width > from.(*types.Float).Width {
			return lo.builder.CreateFPExt(v, llTo, ""), to, nil
		}
		return lo.builder.CreateFPTrunc(v, llTo, ""), to, nil
	default:
		return lo.builder.CreateBitCast(v, llTo, ""), to, nil
	}
}

// optionalInner extracts the T in a T? backend type (always Pointer{OptionalT}).
func optionalInner(t types.Type) (*types.OptionalT, bool) {
	p, ok := t.(*types.Pointer)
	if !ok {
		return nil, false
	}
	ot, ok := p.Elem.(*types.OptionalT)
	return ot, ok
}

// lowerOk builds `ok(e)`: tag=0, value=e, error_msg=null, heap-allocated.
func (lo *Lowerer) lowerOk(d *ast.Ok) (llvm.Value, types.Type, error) {
	ot, ok := optionalInner(lo.curRetT)
	if !ok {
		return llvm.Value{}, nil, fmt.Errorf("ok(...) used outside a function returning an Optional type")
	}
	v, _, err := lo.lowerExpr(d.X)
	if err != nil {
		return llvm.Value{}, nil, err
	}
	return lo.buildOptional(ot, 0, v, llvm.Value{}), lo.curRetT, nil
}

// lowerErr builds `err(msg)`: tag=1, value=zero-of-T, error_msg=msg. T comes
// from the enclosing function's declared T? return type.
func (lo *Lowerer) lowerErr(d *ast.Err) (llvm.Value, types.Type, error) {
	ot, ok := optionalInner(lo.curRetT)
	if !ok {
		return llvm.Value{}, nil, fmt.Errorf("err(...) used outside a function returning an Optional type")
	}
	msg, _, err := lo.lowerExpr(d.X)
	if err != nil {
		return llvm.Value{}, nil, err
	}
	zero := llvm.ConstNull(lo.llvmType(ot.Inner))
	return lo.buildOptional(ot, 1, zero, msg), lo.curRetT, nil
}

// buildOptional mallocs and populates an Optional record and returns the
// heap pointer (§4.8). msg may be the nil llvm.Value for the Value case.
func (lo *Lowerer) buildOptional(ot *types.OptionalT, tag uint64, value, msg llvm.Value) llvm.Value {
	recordT := lo.optionalLLVM(ot)
	size := lo.sizeOf(recordT)
	raw := lo.builder.CreateCall(lo.runtime.malloc, []llvm.Value{size}, "")
	ptr := lo.builder.CreateBitCast(raw, llvm.PointerType(recordT, 0), "")

	tagPtr := lo.builder.CreateStructGEP(recordT, ptr, 0, "tag")
	lo.builder.CreateStore(llvm.ConstInt(lo.ctx.Int32Type(), tag, false), tagPtr)

	valPtr := lo.builder.CreateStructGEP(recordT, ptr, 1, "value")
	lo.builder.CreateStore(value, valPtr)

	errPtr := lo.builder.CreateStructGEP(recordT, ptr, 2, "error_msg")
	i8p := llvm.PointerType(lo.ctx.Int8Type(), 0)
	if msg.IsNil() {
		lo.builder.CreateStore(llvm.ConstNull(i8p), errPtr)
	} else {
		lo.builder.CreateStore(lo.builder.CreateBitCast(msg, i8p, ""), errPtr)
	}
	return ptr
}

// lowerTry implements `e?`: branch on e's tag, returning the whole Optional
// on Error and continuing with the unwrapped value on Value (§4.6).
func (lo *Lowerer) lowerTry(d *ast.Try) (llvm.Value, types.Type, error) {
	v, t, err := lo.lowerExpr(d.X)
	if err != nil {
		return llvm.Value{}, nil, err
	}
	ot, ok := optionalInner(t)
	if !ok {
		return llvm.Value{}, nil, fmt.Errorf("%s: ? applied to a non-Optional value", d.X.Span)
	}
	recordT := lo.optionalLLVM(ot)
	tagPtr := lo.builder.CreateStructGEP(recordT, v, 0, "tag")
	tag := lo.builder.CreateLoad(lo.ctx.Int32Type(), tagPtr, "")
	isErr := lo.builder.CreateICmp(llvm.IntEQ, tag, llvm.ConstInt(lo.ctx.Int32Type(), 1, false), "")

	errBlock := llvm.AddBasicBlock(lo.curFunc, "")
	okBlock := llvm.AddBasicBlock(lo.curFunc, "")
	lo.builder.CreateCondBr(isErr, errBlock, okBlock)

	lo.builder.SetInsertPointAtEnd(errBlock)
	lo.builder.CreateRet(v)

	lo.builder.SetInsertPointAtEnd(okBlock)
	valPtr := lo.builder.CreateStructGEP(recordT, v, 1, "value")
	val := lo.builder.CreateLoad(lo.llvmType(ot.Inner), valPtr, "")
	return val, ot.Inner, nil
}

// lowerIf lowers `if`/`if-else` as a value-producing diamond with a phi
// when both branches reach the merge block, or as a plain conditional when
// used for its side effect only (Else == nil or both branches terminate).
// `if (v is E::V(x)) {...}` introduces x only inside Then, via lowerIs.
func (lo *Lowerer) lowerIf(d *ast.If) (llvm.Value, types.Type, error) {
	var (
		cond    llvm.Value
		bindErr error
	)
	lo.pendingBind = nil
	if isExpr, ok := d.Cond.Data.(*ast.IsExpr); ok {
		cond, _, bindErr = lo.lowerIs(isExpr, d.Then)
	} else {
		cond, _, bindErr = lo.lowerExpr(d.Cond)
	}
	if bindErr != nil {
		return llvm.Value{}, nil, bindErr
	}
	bind := lo.pendingBind
	lo.pendingBind = nil

	thenBlock := llvm.AddBasicBlock(lo.curFunc, "")
	elseBlock := llvm.AddBasicBlock(lo.curFunc, "")
	mergeBlock := llvm.AddBasicBlock(lo.curFunc, "")
	lo.builder.CreateCondBr(cond, thenBlock, elseBlock)

	lo.builder.SetInsertPointAtEnd(thenBlock)
	thenV, thenT, err := lo.lowerBlockExprBound(d.Then, bind)
	if err != nil {
		return llvm.Value{}, nil, err
	}
	thenEnd := lo.builder.GetInsertBlock()
	thenTerminated := lo.blockTerminated()
	if !thenTerminated {
		lo.builder.CreateBr(mergeBlock)
	}

	lo.builder.SetInsertPointAtEnd(elseBlock)
	var (
		elseV          llvm.Value
		elseT          types.Type = &types.Void{}
		elseTerminated bool
	)
	if d.Else != nil {
		elseV, elseT, err = lo.lowerBlockExpr(d.Else)
		if err != nil {
			return llvm.Value{}, nil, err
		}
	}
	elseEnd := lo.builder.GetInsertBlock()
	elseTerminated = lo.blockTerminated()
	if !elseTerminated {
		lo.builder.CreateBr(mergeBlock)
	}

	lo.builder.SetInsertPointAtEnd(mergeBlock)
	if thenTerminated && elseTerminated {
		return llvm.Value{}, &types.Void{}, nil
	}
	if _, isVoid := thenT.(*types.Void); isVoid || d.Else == nil {
		return llvm.Value{}, &types.Void{}, nil
	}
	phi := lo.builder.CreatePHI(lo.llvmType(thenT), "")
	var incoming []llvm.Value
	var blocks []llvm.BasicBlock
	if !thenTerminated {
		incoming = append(incoming, thenV)
		blocks = append(blocks, thenEnd)
	}
	if !elseTerminated {
		incoming = append(incoming, elseV)
		blocks = append(blocks, elseEnd)
	}
	phi.AddIncoming(incoming, blocks)
	_ = elseT
	return phi, thenT, nil
}

// lowerIs implements `v is Pattern`, optionally binding the pattern's
// sub-pattern names into thenScope for the duration of that block (used
// only when called from lowerIf; a standalone `is` never binds).
func (lo *Lowerer) lowerIs(d *ast.IsExpr, thenScope *ast.Block) (llvm.Value, types.Type, error) {
	v, t, err := lo.lowerExpr(d.Value)
	if err != nil {
		return llvm.Value{}, nil, err
	}
	et, ok := t.(*types.EnumT)
	if !ok {
		if ot, ok := optionalInner(t); ok {
			et = &types.EnumT{Name: "Optional", Variants: []string{"Value", "Error"}}
			return lo.isOptional(v, ot, et, d, thenScope)
		}
		return llvm.Value{}, nil, fmt.Errorf("%s: is-pattern applied to a non-enum value", d.Value.Span)
	}

	pe, ok := d.Pattern.Data.(*ast.PEnum)
	if !ok {
		return llvm.Value{}, nil, fmt.Errorf("%s: unsupported is-pattern kind", d.Pattern.Span)
	}
	ord := et.Ordinal(pe.Variant)
	if ord < 0 {
		return llvm.Value{}, nil, fmt.Errorf("%s has no variant %q", et.Name, pe.Variant)
	}

	recordT := lo.enumRecordType()
	alloca := lo.builder.CreateAlloca(recordT, "")
	lo.builder.CreateStore(v, alloca)
	tagPtr := lo.builder.CreateStructGEP(recordT, alloca, 0, "")
	tag := lo.builder.CreateLoad(lo.ctx.Int32Type(), tagPtr, "")
	cond := lo.builder.CreateICmp(llvm.IntEQ, tag, llvm.ConstInt(lo.ctx.Int32Type(), uint64(ord), false), "")

	if thenScope != nil && len(pe.Sub) > 0 {
		if sub, ok := pe.Sub[0].Data.(*ast.PIdent); ok {
			var fieldT types.Type = &types.Int{Width: 64, Signed: true}
			if len(et.Fields) > ord && len(et.Fields[ord]) > 0 {
				fieldT = et.Fields[ord][0]
			}
			payloadPtr := lo.builder.CreateStructGEP(recordT, alloca, 1, "")
			raw := lo.builder.CreateLoad(lo.ctx.Int64Type(), payloadPtr, "")
			lo.pendingBind = &pendingBind{name: sub.Name, value: lo.narrowFromPayload(raw, fieldT), typ: fieldT}
		}
	}
	return cond, &types.Bool{}, nil
}

// isOptional specializes lowerIs for a T? value tested against the virtual
// Optional enum's Value/Error variants (§4.8).
func (lo *Lowerer) isOptional(v llvm.Value, ot *types.OptionalT, et *types.EnumT, d *ast.IsExpr, thenScope *ast.Block) (llvm.Value, types.Type, error) {
	pe, ok := d.Pattern.Data.(*ast.PEnum)
	if !ok {
		return llvm.Value{}, nil, fmt.Errorf("%s: unsupported is-pattern kind", d.Pattern.Span)
	}
	ord := et.Ordinal(pe.Variant)
	if ord < 0 {
		return llvm.Value{}, nil, fmt.Errorf("Optional has no variant %q", pe.Variant)
	}
	recordT := lo.optionalLLVM(ot)
	tagPtr := lo.builder.CreateStructGEP(recordT, v, 0, "")
	tag := lo.builder.CreateLoad(lo.ctx.Int32Type(), tagPtr, "")
	cond := lo.builder.CreateICmp(llvm.IntEQ, tag, llvm.ConstInt(lo.ctx.Int32Type(), uint64(ord), false), "")

	if thenScope != nil && len(pe.Sub) > 0 {
		if sub, ok := pe.Sub[0].Data.(*ast.PIdent); ok {
			fieldIdx := 1
			fieldT := ot.Inner
			if pe.Variant == "Error" {
				fieldIdx = 2
				fieldT = types.Str()
			}
			fp := lo.builder.CreateStructGEP(recordT, v, fieldIdx, "")
			lo.pendingBind = &pendingBind{name: sub.Name, value: lo.builder.CreateLoad(lo.llvmType(fieldT), fp, ""), typ: fieldT}
		}
	}
	return cond, &types.Bool{}, nil
}

// pendingBind carries an is-pattern binding from lowerIs into the Then
// block lowerIf is about to enter: value is already narrowed to typ by the
// time lowerIs sets it (narrowFromPayload for an enum's bit-bag, a direct
// field load for the Optional case).
type pendingBind struct {
	name  string
	value llvm.Value
	typ   types.Type
}

// lowerBlockExprBound lowers b as lowerBlockExpr does, but first declares
// bind (if non-nil) in the block's own scope — the mechanism that gives
// `if (v is E::V(x)) { ... }` a binding visible only inside Then.
func (lo *Lowerer) lowerBlockExprBound(b *ast.Block, bind *pendingBind) (llvm.Value, types.Type, error) {
	lo.pushScope()
	defer lo.popScope()
	if bind != nil {
		alloca := lo.builder.CreateAlloca(lo.llvmType(bind.typ), bind.name)
		lo.builder.CreateStore(bind.value, alloca)
		lo.declare(bind.name, &binding{alloca: alloca, typ: bind.typ, mut: false})
	}
	var (
		val llvm.Value
		typ types.Type = &types.Void{}
	)
	last := len(b.Stmts) - 1
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

// lowerMatch lowers `match v { pattern => value, ... }`: v's tag selects a
// switch case per `Enum::Variant` arm (against the variant's declared
// ordinal); a wildcard or bare-identifier arm becomes the switch default.
// Each arm's sub-patterns extract and bind the payload, narrowed to the
// binding's declared type. The result merges through a phi fed by every
// non-terminating arm, the SSA-form equivalent of "assembled from each
// arm's expression value" (§4.6).
//
// Limitation: a per-arm `if` guard only gates that arm's own body (falling
// through to the switch default when false); two guarded arms dispatching
// to the same variant with different guards are not distinguished.
func (lo *Lowerer) lowerMatch(d *ast.Match) (llvm.Value, types.Type, error) {
	v, t, err := lo.lowerExpr(d.Value)
	if err != nil {
		return llvm.Value{}, nil, err
	}

	var (
		et      *types.EnumT
		recordT llvm.Type
		base    llvm.Value
	)
	if ot, ok := optionalInner(t); ok {
		et = &types.EnumT{
			Name:     "Optional",
			Variants: []string{"Value", "Error"},
			Fields:   [][]types.Type{{ot.Inner}, {types.Str()}},
		}
		recordT = lo.optionalLLVM(ot)
		base = v
	} else if enumT, ok := t.(*types.EnumT); ok {
		et = enumT
		recordT = lo.enumRecordType()
		base = lo.builder.CreateAlloca(recordT, "")
		lo.builder.CreateStore(v, base)
	} else {
		return llvm.Value{}, nil, fmt.Errorf("%s: match on a non-enum value", d.Value.Span)
	}

	tagPtr := lo.builder.CreateStructGEP(recordT, base, 0, "")
	tag := lo.builder.CreateLoad(lo.ctx.Int32Type(), tagPtr, "")

	type armInfo struct {
		block     llvm.BasicBlock
		arm       ast.MatchArm
		isDefault bool
	}
	arms := make([]armInfo, len(d.Arms))
	defaultIdx := -1
	for i, arm := range d.Arms {
		arms[i] = armInfo{block: llvm.AddBasicBlock(lo.curFunc, ""), arm: arm}
		switch arm.Pattern.Data.(type) {
		case *ast.Wildcard, *ast.PIdent:
			arms[i].isDefault = true
			if defaultIdx < 0 {
				defaultIdx = i
			}
		}
	}
	endBlock := llvm.AddBasicBlock(lo.curFunc, "")
	defaultBlock := llvm.AddBasicBlock(lo.curFunc, "")
	if defaultIdx >= 0 {
		defaultBlock = arms[defaultIdx].block
	}
	sw := lo.builder.CreateSwitch(tag, defaultBlock, len(d.Arms))
	for i, a := range arms {
		if a.isDefault {
			continue
		}
		pe, ok := a.arm.Pattern.Data.(*ast.PEnum)
		if !ok {
			return llvm.Value{}, nil, fmt.Errorf("%s: unsupported match-pattern kind", a.arm.Pattern.Span)
		}
		ord := et.Ordinal(pe.Variant)
		if ord < 0 {
			return llvm.Value{}, nil, fmt.Errorf("%s has no variant %q", et.Name, pe.Variant)
		}
		sw.AddCase(llvm.ConstInt(lo.ctx.Int32Type(), uint64(ord), false), arms[i].block)
	}
	if defaultIdx < 0 {
		lo.builder.SetInsertPointAtEnd(defaultBlock)
		lo.builder.CreateUnreachable()
	}

	var (
		incoming []llvm.Value
		blocks   []llvm.BasicBlock
		resultT  types.Type = &types.Void{}
		gotType             = false
	)
	for _, a := range arms {
		lo.builder.SetInsertPointAtEnd(a.block)
		lo.pushScope()

		if pe, ok := a.arm.Pattern.Data.(*ast.PEnum); ok && len(pe.Sub) > 0 {
			if sub, ok := pe.Sub[0].Data.(*ast.PIdent); ok {
				ord := et.Ordinal(pe.Variant)
				var fieldT types.Type = &types.Int{Width: 64, Signed: true}
				if ord >= 0 && len(et.Fields) > ord && len(et.Fields[ord]) > 0 {
					fieldT = et.Fields[ord][0]
				}
				var bound llvm.Value
				if et.Name == "Optional" {
					fp := lo.builder.CreateStructGEP(recordT, base, ord+1, "")
					bound = lo.builder.CreateLoad(lo.llvmType(fieldT), fp, "")
				} else {
					payloadPtr := lo.builder.CreateStructGEP(recordT, base, 1, "")
					raw := lo.builder.CreateLoad(lo.ctx.Int64Type(), payloadPtr, "")
					bound = lo.narrowFromPayload(raw, fieldT)
				}
				alloca := lo.builder.CreateAlloca(lo.llvmType(fieldT), sub.Name)
				lo.builder.CreateStore(bound, alloca)
				lo.declare(sub.Name, &binding{alloca: alloca, typ: fieldT})
			}
		}

		if a.arm.Guard != nil {
			guardVal, _, err := lo.lowerExpr(a.arm.Guard)
			if err != nil {
				lo.popScope()
				return llvm.Value{}, nil, err
			}
			pass := llvm.AddBasicBlock(lo.curFunc, "")
			lo.builder.CreateCondBr(guardVal, pass, defaultBlock)
			lo.builder.SetInsertPointAtEnd(pass)
		}

		val, vt, err := lo.lowerExpr(a.arm.Value)
		lo.popScope()
		if err != nil {
			return llvm.Value{}, nil, err
		}
		if !lo.blockTerminated() {
			lo.builder.CreateBr(endBlock)
			incoming = append(incoming, val)
			blocks = append(blocks, lo.builder.GetInsertBlock())
			if !gotType {
				resultT, gotType = vt, true
			}
		}
	}

	lo.builder.SetInsertPointAtEnd(endBlock)
	if len(incoming) == 0 {
		return llvm.Value{}, &types.Void{}, nil
	}
	if _, isVoid := resultT.(*types.Void); isVoid {
		return llvm.Value{}, &types.Void{}, nil
	}
	phi := lo.builder.CreatePHI(lo.llvmType(resultT), "")
	phi.AddIncoming(incoming, blocks)
	return phi, resultT, nil
}

// lowerCall dispatches a Call in the five-priority order §4.6 specifies:
// method call, qualified+monomorphized, qualified extern mirror, bare
// identifier (generic, user function, builtin), then a generic struct's
// associated function.
func (lo *Lowerer) lowerCall(d *ast.Call) (llvm.Value, types.Type, error) {
	switch callee := d.Callee.Data.(type) {
	case *ast.Member:
		return lo.lowerMethodCall(callee, d)
	case *ast.Ident:
		if callee.Module != "" {
			return lo.lowerQualifiedCall(callee, d)
		}
		return lo.lowerBareCall(callee, d)
	default:
		return llvm.Value{}, nil, fmt.Errorf("%s: unsupported call target", d.Callee.Span)
	}
}

// lowerMethodCall implements priority 1: `obj.name(args)` where name
// resolves to a method on obj's struct type. The receiver's storage
// pointer becomes the first argument; a generic struct's own associated
// function (`Struct::assoc<Ts>(args)`, parsed as a qualified Ident call,
// not a Member) never reaches this path — see lowerBareCall/monoStructAssoc.
func (lo *Lowerer) lowerMethodCall(callee *ast.Member, d *ast.Call) (llvm.Value, types.Type, error) {
	recv, recvT, err := lo.lowerExpr(callee.X)
	if err != nil {
		return llvm.Value{}, nil, err
	}
	p, ok := recvT.(*types.Pointer)
	if !ok {
		return llvm.Value{}, nil, fmt.Errorf("%s: %s has no methods", callee.X.Span, recvT.String())
	}
	st, ok := p.Elem.(*types.StructT)
	if !ok {
		return llvm.Value{}, nil, fmt.Errorf("%s: %s has no methods", callee.X.Span, recvT.String())
	}
	mangled := st.Name + "_" + callee.Name
	fn, ok := lo.funcs[mangled]
	if !ok {
		sd, ok := lo.structDecls[st.Name]
		if !ok {
			return llvm.Value{}, nil, fmt.Errorf("%s: unknown struct %s for method %s", callee.X.Span, st.Name, callee.Name)
		}
		found := false
		for _, m := range sd.Methods {
			if m.Name == callee.Name && len(m.Generics) == 0 {
				if _, err := lo.declareFunc(m, st.Name); err != nil {
					return llvm.Value{}, nil, err
				}
				if err := lo.lowerFuncBody(m, st.Name); err != nil {
					return llvm.Value{}, nil, err
				}
				fn, found = lo.funcs[mangled], true
				break
			}
		}
		if !found {
			return llvm.Value{}, nil, fmt.Errorf("%s: %s has no method %q", callee.X.Span, st.Name, callee.Name)
		}
	}
	args := []llvm.Value{recv}
	argVals, err := lo.lowerArgs(d.Args)
	if err != nil {
		return llvm.Value{}, nil, err
	}
	args = append(args, argVals...)
	return lo.finishCall(fn, args)
}

func (lo *Lowerer) lowerArgs(exprs []*ast.Expr) ([]llvm.Value, error) {
	out := make([]llvm.Value, len(exprs))
	for i, e := range exprs {
		v, _, err := lo.lowerExpr(e)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// finishCall emits the call instruction and looks up the callee's return
// type by its llvm name, recorded by declareFunc/declareExtern/monoFunc in
// funcReturnTypes at declaration time (the llvm.Value alone carries no
// reference back to the resolver's Type).
func (lo *Lowerer) finishCall(fn llvm.Value, args []llvm.Value) (llvm.Value, types.Type, error) {
	ret := lo.builder.CreateCall(fn, args, "")
	retT := lo.funcReturnTypes[fn.Name()]
	if retT == nil {
		retT = &types.Void{}
	}
	return ret, retT, nil
}

// lowerQualifiedCall implements priorities 2, 3 and 5: `M::f(args)` with or
// without type arguments, and `Struct::assoc<Ts>(args)` where Struct (not a
// module) names a generic struct declared or visible in this module —
// distinguished by checking structDecls before falling back to the module
// symbol table, since both forms share the same `Name::name<Ts>(args)`
// surface syntax.
func (lo *Lowerer) lowerQualifiedCall(callee *ast.Ident, d *ast.Call) (llvm.Value, types.Type, error) {
	if sd, ok := lo.structDecls[callee.Module]; ok && len(sd.Generics) > 0 {
		return lo.monoStructAssoc(callee.Module, callee.Name, d.TypeArgs, d.Args)
	}
	sym, ok := lo.sym.LookupAccessible(callee.Module, callee.Name, lo.Module)
	if !ok {
		return llvm.Value{}, nil, fmt.Errorf("%s: %s::%s is undefined or not visible from %s", d.Callee.Span, callee.Module, callee.Name, lo.Module)
	}
	if len(d.TypeArgs) > 0 {
		return lo.monoFunc(sym, d.TypeArgs, d.Args)
	}
	return lo.lowerExternMirror(sym, d)
}

// lowerBareCall implements priority 4: an unqualified identifier callee —
// a generic function (only valid with explicit type arguments), else a
// registered user function (including the built-in print family, declared
// the same way as any other function in lo.funcs).
func (lo *Lowerer) lowerBareCall(callee *ast.Ident, d *ast.Call) (llvm.Value, types.Type, error) {
	if len(d.TypeArgs) > 0 {
		sym, ok := lo.sym.LookupKind(lo.Module, callee.Name, symtab.GenericFunction)
		if !ok {
			return llvm.Value{}, nil, fmt.Errorf("%s: generic function %q is not declared", d.Callee.Span, callee.Name)
		}
		return lo.monoFunc(sym, d.TypeArgs, d.Args)
	}
	if fn, ok := lo.funcs[callee.Name]; ok {
		args, err := lo.lowerArgs(d.Args)
		if err != nil {
			return llvm.Value{}, nil, err
		}
		return lo.finishCall(fn, args)
	}
	return llvm.Value{}, nil, fmt.Errorf("%s: %q is undefined", d.Callee.Span, callee.Name)
}
