// Package ast is the sum-type syntax tree the parser builds and the lowerer
// consumes. Every node family (Type, Expr, Pattern, Stmt) follows the same
// "tagged interface" shape esbuild's internal/js_ast uses: a thin wrapper
// struct carrying a Span plus a marker interface (TypeData, ExprData, ...)
// implemented by one concrete struct per node kind. Callers exhaustively
// type-switch on the concrete kind rather than branching on a numeric tag,
// so the compiler flags missing cases.
package ast

import "fmt"

// Span locates a node in source text. Every node has a non-nil Span.
type Span struct {
	File string
	Line int
	Col  int
}

func (s Span) String() string {
	return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Col)
}
