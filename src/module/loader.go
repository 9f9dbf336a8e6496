// Package module discovers, parses and orders every source file a
// compilation needs, starting from the entry module and following `import`
// declarations. The DFS walk, cycle detection via a recursion stack, and
// post-order topological load list are adapted from the original compiler's
// ModuleLoader (module_loader.cpp); that implementation ran load-then-detect
// as two separate passes over the whole module set, which this version folds
// into a single DFS since a recursion stack already distinguishes "currently
// being visited" from "already visited".
package module

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pawc/src/ast"
	"pawc/src/diag"
	"pawc/src/frontend"
	"pawc/src/util"
)

// EntryModule is the fixed module path assigned to the compiler's entry file.
const EntryModule = "main"

// DefaultStdlibRoot is the standard-library search root used when no
// override is given, mirroring the original loader's literal "stdlib/".
const DefaultStdlibRoot = "stdlib"

// Loader resolves import paths against a fixed search sequence (standard
// library root first, then root, the entry file's base directory) and
// accumulates every module reachable from the entry file.
type Loader struct {
	root       string
	stdlibRoot string
	programs   map[string]*ast.Program
	byKey      map[ModKey]string // file fingerprint -> module path that first claimed it
	visiting   map[string]bool   // DFS recursion stack: cycle detection
	visitOrder []string          // visiting, in call order, so a cycle can report its full chain
	visited    map[string]bool
	order      []string // post-order: dependencies before dependents
	diags      *diag.Log
}

// NewLoader returns a Loader that resolves module paths relative to root,
// falling back from stdlibRoot first per §4.3's fixed search sequence. An
// empty stdlibRoot uses DefaultStdlibRoot.
func NewLoader(root, stdlibRoot string) *Loader {
	if stdlibRoot == "" {
		stdlibRoot = DefaultStdlibRoot
	}
	return &Loader{
		root:       root,
		stdlibRoot: stdlibRoot,
		programs:   make(map[string]*ast.Program),
		byKey:      make(map[ModKey]string),
		visiting:   make(map[string]bool),
		visited:    make(map[string]bool),
		diags:      diag.NewLog(),
	}
}

// Load parses entryFile as EntryModule and every module it transitively
// imports, returning the load order (dependencies first) and the combined
// diagnostics from every parse. A cyclic import is reported as a single
// error naming the full chain (e.g. "a -> b -> a"); on any error the
// returned order is the partial walk completed so far.
func (l *Loader) Load(entryFile string) ([]string, error) {
	if err := l.load(EntryModule, entryFile); err != nil {
		return l.order, err
	}
	return l.order, nil
}

// Program returns the parsed AST for a previously loaded module.
func (l *Loader) Program(modPath string) (*ast.Program, bool) {
	p, ok := l.programs[modPath]
	return p, ok
}

// Diagnostics returns every diagnostic accumulated across all parses.
func (l *Loader) Diagnostics() *diag.Log { return l.diags }

func (l *Loader) load(modPath, filePath string) error {
	if l.visited[modPath] {
		return nil
	}
	if l.visiting[modPath] {
		return fmt.Errorf("cyclic import detected: %s", cycleChain(l.visitOrder, modPath))
	}
	l.visiting[modPath] = true
	l.visitOrder = append(l.visitOrder, modPath)
	defer func() {
		delete(l.visiting, modPath)
		l.visitOrder = l.visitOrder[:len(l.visitOrder)-1]
	}()

	src, err := util.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("cannot load module %q: %w", modPath, err)
	}

	if key, err := modKeyOf(filePath); err == nil && !key.isZero() {
		if owner, ok := l.byKey[key]; ok && owner != modPath {
			// Two import spellings (e.g. via different relative paths) resolved
			// to the same file on disk; alias modPath to the already-loaded
			// module instead of parsing it a second time.
			l.programs[modPath] = l.programs[owner]
			l.visited[modPath] = true
			l.order = append(l.order, modPath)
			return nil
		}
		l.byKey[key] = modPath
	}

	prog, errs := frontend.Parse(filePath, modPath, src)
	for _, e := range errs {
		if m, ok := e.(diag.Msg); ok {
			l.diags.Add(m)
		} else {
			l.diags.Add(diag.Msg{Kind: diag.Error, Text: e.Error()})
		}
	}
	if l.diags.HasErrors() {
		return fmt.Errorf("module %q failed to parse", modPath)
	}
	l.programs[modPath] = prog

	for _, dep := range imports(prog) {
		if err := l.load(dep, l.resolve(dep)); err != nil {
			return err
		}
	}

	l.visited[modPath] = true
	l.order = append(l.order, modPath)
	return nil
}

// resolve maps dep to a source file per §4.3's fixed search sequence: the
// standard library root first, falling back to the entry file's directory
// when no matching file exists there.
func (l *Loader) resolve(dep string) string {
	rel := ToFilePath(dep)
	stdPath := filepath.Join(l.stdlibRoot, rel)
	if _, err := os.Stat(stdPath); err == nil {
		return stdPath
	}
	return filepath.Join(l.root, rel)
}

// cycleChain renders the DFS stack as "a -> b -> c", with closing back to
// the module that re-entered the stack, so the diagnostic names every
// module in the cycle rather than only the one that triggered detection.
func cycleChain(stack []string, reentered string) string {
	start := 0
	for i, m := range stack {
		if m == reentered {
			start = i
			break
		}
	}
	chain := append(append([]string{}, stack[start:]...), reentered)
	return strings.Join(chain, " -> ")
}

// imports extracts every top-level import declaration's module path.
func imports(prog *ast.Program) []string {
	var out []string
	for _, item := range prog.Items {
		if imp, ok := item.Data.(*ast.ImportDecl); ok {
			out = append(out, imp.Path)
		}
	}
	return out
}
