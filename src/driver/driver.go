// Package driver orchestrates a full compilation run: load every module
// reachable from the entry file, lower each to its own LLVM module, emit one
// object file per module, then invoke an external linker to produce the
// final binary. It is the replacement for the teacher's single-module
// GenLLVM, generalized to spec.md §5's "one module lowered to completion
// before the next is started" and "one temporary object file per module in
// the current working directory, deleted after the linker returns" rules.
package driver

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"pawc/src/ast"
	backend "pawc/src/backend/llvm"
	"pawc/src/diag"
	ir "pawc/src/ir/llvm"
	"pawc/src/module"
	"pawc/src/symtab"
	"pawc/src/types"
	"pawc/src/util"
)

// Result carries what a Run produced, for cmd/pawc to act on.
type Result struct {
	Diagnostics *diag.Log
	TextAST     map[string]string // module path -> printed syntax tree, populated iff opt.PrintAST
	TextIR      map[string]string // module path -> textual IR, populated iff opt.PrintIR/EmitLLVM
	OutputPath  string            // the linked binary, empty if EmitObj/EmitLLVM/PrintAST stopped short of linking
}

// Run executes one full compile: load, lower every module, emit objects,
// link. It stops and returns as soon as any stage fails, per spec.md §7's
// "exits with status 1 after the first error that prevents continued
// semantic work" policy — except the module loader, which the Loader itself
// already lets accumulate multiple parse diagnostics before aborting.
func Run(opt util.Options) (*Result, error) {
	root := filepath.Dir(opt.Src)
	stdlibRoot := os.Getenv("PAWC_STDLIB_ROOT")
	loader := module.NewLoader(root, stdlibRoot)
	order, err := loader.Load(opt.Src)
	res := &Result{
		Diagnostics: loader.Diagnostics(),
		TextAST:     make(map[string]string),
		TextIR:      make(map[string]string),
	}
	if err != nil {
		return res, fmt.Errorf("loading modules: %w", err)
	}
	if res.Diagnostics.HasErrors() {
		return res, fmt.Errorf("%d module(s) failed to parse", len(order))
	}

	reg := types.NewRegistry()
	for _, modPath := range order {
		prog, _ := loader.Program(modPath)
		reg.Index(prog)
	}

	if opt.PrintAST {
		for _, modPath := range order {
			prog, _ := loader.Program(modPath)
			res.TextAST[modPath] = ast.Print(prog)
		}
		return res, nil
	}

	sym := symtab.New()

	// Temp objects are only ever the link step's own scratch files; an
	// explicit --emit-obj writes its persistent copy separately and is
	// never subject to this cleanup.
	var tempObjPaths []string
	defer func() { cleanupObjects(tempObjPaths) }()

	for _, modPath := range order {
		prog, _ := loader.Program(modPath)
		lo := ir.NewLowerer(prog.Module, reg, sym)
		err := lo.LowerProgram(prog)
		if err != nil {
			lo.Dispose()
			return res, fmt.Errorf("module %q: %w", modPath, err)
		}

		if opt.PrintIR || opt.EmitLLVM {
			text := backend.EmitTextIR(lo.LLVMModule())
			res.TextIR[modPath] = text
			if opt.EmitLLVM {
				path := llOutputPath(opt, modPath, len(order))
				if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
					lo.Dispose()
					return res, fmt.Errorf("module %q: writing textual IR: %w", modPath, err)
				}
			}
		}

		needObj := opt.EmitObj || !(opt.EmitLLVM || opt.PrintAST)
		var obj []byte
		if needObj {
			obj, err = backend.EmitObject(lo.LLVMModule(), opt)
		}
		lo.Dispose()
		if err != nil {
			return res, fmt.Errorf("module %q: emitting object: %w", modPath, err)
		}
		if !needObj {
			continue
		}

		if opt.EmitObj {
			path := objOutputPath(opt, modPath, len(order))
			if err := os.WriteFile(path, obj, 0o644); err != nil {
				return res, fmt.Errorf("module %q: writing object file: %w", modPath, err)
			}
			continue
		}

		path := tempObjectPath(modPath)
		if err := os.WriteFile(path, obj, 0o644); err != nil {
			return res, fmt.Errorf("module %q: writing temporary object file: %w", modPath, err)
		}
		tempObjPaths = append(tempObjPaths, path)
	}

	if opt.EmitLLVM || opt.EmitObj {
		// Caller asked to stop at IR/object emission; no link step.
		return res, nil
	}

	out := opt.Out
	if out == "" {
		out = defaultOutputName(opt.Src)
	}
	if err := link(tempObjPaths, out); err != nil {
		return res, fmt.Errorf("linking: %w", err)
	}
	res.OutputPath = out
	return res, nil
}

// llOutputPath mirrors objOutputPath for --emit-llvm's textual output.
func llOutputPath(opt util.Options, modPath string, moduleCount int) string {
	if opt.Out != "" && moduleCount == 1 {
		return opt.Out
	}
	if opt.Out != "" {
		return opt.Out + "." + modPath + ".ll"
	}
	return modPath + ".ll"
}

// objOutputPath names a persistent --emit-obj output: opt.Out when there is
// exactly one module to emit (the common single-file case spec.md's
// scenarios all use), else one file per module so a multi-module build
// doesn't overwrite itself.
func objOutputPath(opt util.Options, modPath string, moduleCount int) string {
	if opt.Out != "" && moduleCount == 1 {
		return opt.Out
	}
	if opt.Out != "" {
		return opt.Out + "." + modPath + ".o"
	}
	return modPath + ".o"
}

// tempObjectPath names a module's object file uniquely so two overlapping
// compiler invocations in the same working directory never collide, per
// SPEC_FULL.md's domain-stack note on github.com/google/uuid.
func tempObjectPath(module string) string {
	return fmt.Sprintf(".%s-%s.o", module, uuid.NewString())
}

func defaultOutputName(src string) string {
	base := filepath.Base(src)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// cleanupObjects removes every temporary object file, even when Run is
// returning early on error — spec.md §5 requires deletion "even on linker
// failure".
func cleanupObjects(paths []string) {
	for _, p := range paths {
		_ = os.Remove(p)
	}
}

// link invokes the system's default C compiler driver as the linker, the
// same external-tool boundary spec.md §1 names as out of scope for the
// compiler itself to implement.
func link(objPaths []string, out string) error {
	if len(objPaths) == 0 {
		return fmt.Errorf("no object files produced")
	}
	args := append(append([]string{}, objPaths...), "-o", out)
	cmd := exec.Command("cc", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("external linker failed: %w", err)
	}
	return nil
}
