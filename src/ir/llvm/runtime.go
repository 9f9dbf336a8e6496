package llvm

import "tinygo.org/x/go-llvm"

// runtimeFuncs caches the handles of the externs every module declares on
// creation, so expression lowering never has to re-probe the module for
// them (mirrors the teacher's genPrintf/genAtoi one-shot declarations in
// transform.go, generalized to the full runtime helper list §6 names).
type runtimeFuncs struct {
	printf, malloc, memcpy, strlen, strcpy, strcat, write llvm.Value
}

// declareRuntime declares every runtime helper the lowerer may call into
// (printf, malloc, memcpy, strlen, strcpy, strcat, write) and the four
// built-in print wrappers, in every module, under link-once semantics.
func (lo *Lowerer) declareRuntime() {
	i8p := llvm.PointerType(lo.ctx.Int8Type(), 0)
	i32 := lo.ctx.Int32Type()
	i64 := lo.ctx.Int64Type()

	lo.runtime.printf = llvm.AddFunction(lo.mod, "printf", llvm.FunctionType(i32, []llvm.Type{i8p}, true))
	lo.runtime.malloc = llvm.AddFunction(lo.mod, "malloc", llvm.FunctionType(i8p, []llvm.Type{i64}, false))
	lo.runtime.memcpy = llvm.AddFunction(lo.mod, "memcpy", llvm.FunctionType(i8p, []llvm.Type{i8p, i8p, i64}, false))
	lo.runtime.strlen = llvm.AddFunction(lo.mod, "strlen", llvm.FunctionType(i64, []llvm.Type{i8p}, false))
	lo.runtime.strcpy = llvm.AddFunction(lo.mod, "strcpy", llvm.FunctionType(i8p, []llvm.Type{i8p, i8p}, false))
	lo.runtime.strcat = llvm.AddFunction(lo.mod, "strcat", llvm.FunctionType(i8p, []llvm.Type{i8p, i8p}, false))
	lo.runtime.write = llvm.AddFunction(lo.mod, "write", llvm.FunctionType(i64, []llvm.Type{i32, i8p, i64}, false))

	lo.declarePrintWrappers(i8p, i32)
}

// declarePrintWrappers defines print/println/eprint/eprintln as thin
// wrappers over write, one identical copy per module, each given
// linkonce_odr linkage so the external linker folds the copies (§6).
func (lo *Lowerer) declarePrintWrappers(i8p, i32 llvm.Type) {
	const stdout, stderr = 1, 2
	def := func(name string, nl bool, fd int64) {
		fn := llvm.AddFunction(lo.mod, name, llvm.FunctionType(lo.ctx.VoidType(), []llvm.Type{i8p}, false))
		fn.Param(0).SetName("s")
		entry := llvm.AddBasicBlock(fn, "")
		b := lo.ctx.NewBuilder()
		defer b.Dispose()
		b.SetInsertPointAtEnd(entry)

		s := fn.Param(0)
		if nl {
			// Append "\n" the same way string `+` does: malloc len+2, strcpy, strcat.
			nlStr := b.CreateGlobalStringPtr("\n", "$nl")
			length := b.CreateCall(lo.runtime.strlen, []llvm.Value{s}, "")
			total := b.CreateAdd(length, llvm.ConstInt(lo.ctx.Int64Type(), 2, false), "")
			buf := b.CreateCall(lo.runtime.malloc, []llvm.Value{total}, "")
			b.CreateCall(lo.runtime.strcpy, []llvm.Value{buf, s}, "")
			b.CreateCall(lo.runtime.strcat, []llvm.Value{buf, nlStr}, "")
			s = buf
		}
		n := b.CreateCall(lo.runtime.strlen, []llvm.Value{s}, "")
		b.CreateCall(lo.runtime.write, []llvm.Value{llvm.ConstInt(i32, uint64(fd), false), s, n}, "")
		b.CreateRetVoid()
		// Every module defines its own copy; linkonce_odr lets the external
		// linker fold the duplicates instead of rejecting them as multiply
		// defined symbols across the compilation's object files.
		fn.SetLinkage(llvm.LinkOnceODRLinkage)
		lo.funcs[name] = fn
	}
	def("print", false, stdout)
	def("println", true, stdout)
	def("eprint", false, stderr)
	def("eprintln", true, stderr)
}
