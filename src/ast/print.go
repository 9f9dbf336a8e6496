package ast

import (
	"fmt"
	"strings"
)

// Print recursively renders the program as an indented tree, one node per
// line, padding two spaces per depth level. It is the --print-ast backend:
// the caller prints the returned string.
func Print(p *Program) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "module %s\n", p.Module)
	for _, it := range p.Items {
		printStmt(&sb, it, 1)
	}
	return sb.String()
}

func pad(sb *strings.Builder, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
}

func printStmt(sb *strings.Builder, s *Stmt, depth int) {
	if s == nil {
		pad(sb, depth)
		sb.WriteString("---> NIL\n")
		return
	}
	switch d := s.Data.(type) {
	case *Block:
		pad(sb, depth)
		sb.WriteString("Block\n")
		for _, c := range d.Stmts {
			printStmt(sb, c, depth+1)
		}
	case *ExprStmt:
		pad(sb, depth)
		sb.WriteString("ExprStmt\n")
		printExpr(sb, d.X, depth+1)
	case *LetStmt:
		pad(sb, depth)
		fmt.Fprintf(sb, "LetStmt [%s mut=%t]\n", d.Name, d.Mut)
		printExpr(sb, d.Init, depth+1)
	case *ReturnStmt:
		pad(sb, depth)
		sb.WriteString("ReturnStmt\n")
		if d.Value != nil {
			printExpr(sb, d.Value, depth+1)
		}
	case *LoopStmt:
		pad(sb, depth)
		fmt.Fprintf(sb, "LoopStmt [kind=%d var=%s]\n", d.Kind, d.Var)
		if d.Body != nil {
			printStmt(sb, &Stmt{Data: d.Body}, depth+1)
		}
	case *BreakStmt:
		pad(sb, depth)
		sb.WriteString("BreakStmt\n")
	case *ContinueStmt:
		pad(sb, depth)
		sb.WriteString("ContinueStmt\n")
	case *FuncDecl:
		pad(sb, depth)
		fmt.Fprintf(sb, "FuncDecl [%s public=%t method=%t]\n", d.Name, d.Public, d.IsMethod)
		if d.Body != nil {
			printStmt(sb, &Stmt{Data: d.Body}, depth+1)
		}
	case *StructDecl:
		pad(sb, depth)
		fmt.Fprintf(sb, "StructDecl [%s fields=%d methods=%d]\n", d.Name, len(d.Fields), len(d.Methods))
		for _, m := range d.Methods {
			printStmt(sb, &Stmt{Data: m}, depth+1)
		}
	case *EnumDecl:
		pad(sb, depth)
		fmt.Fprintf(sb, "EnumDecl [%s variants=%d]\n", d.Name, len(d.Variants))
	case *TypeAliasDecl:
		pad(sb, depth)
		fmt.Fprintf(sb, "TypeAliasDecl [%s]\n", d.Name)
	case *ExternDecl:
		pad(sb, depth)
		fmt.Fprintf(sb, "ExternDecl [%s]\n", d.Name)
	case *ImportDecl:
		pad(sb, depth)
		fmt.Fprintf(sb, "ImportDecl [%s]\n", d.Path)
	default:
		pad(sb, depth)
		fmt.Fprintf(sb, "---> UNKNOWN STMT %T\n", d)
	}
}

func printExpr(sb *strings.Builder, e *Expr, depth int) {
	if e == nil {
		pad(sb, depth)
		sb.WriteString("---> NIL\n")
		return
	}
	switch d := e.Data.(type) {
	case *IntLit:
		pad(sb, depth)
		fmt.Fprintf(sb, "IntLit [%d]\n", d.Value)
	case *FloatLit:
		pad(sb, depth)
		fmt.Fprintf(sb, "FloatLit [%g]\n", d.Value)
	case *BoolLit:
		pad(sb, depth)
		fmt.Fprintf(sb, "BoolLit [%t]\n", d.Value)
	case *CharLit:
		pad(sb, depth)
		fmt.Fprintf(sb, "CharLit [%q]\n", d.Value)
	case *StringLit:
		pad(sb, depth)
		fmt.Fprintf(sb, "StringLit [%q]\n", d.Value)
	case *Ident:
		pad(sb, depth)
		if d.Module != "" {
			fmt.Fprintf(sb, "Ident [%s::%s]\n", d.Module, d.Name)
		} else {
			fmt.Fprintf(sb, "Ident [%s]\n", d.Name)
		}
	case *Unary:
		pad(sb, depth)
		fmt.Fprintf(sb, "Unary [%s]\n", d.Op)
		printExpr(sb, d.X, depth+1)
	case *Binary:
		pad(sb, depth)
		fmt.Fprintf(sb, "Binary [%s]\n", d.Op)
		printExpr(sb, d.L, depth+1)
		printExpr(sb, d.R, depth+1)
	case *Assign:
		pad(sb, depth)
		fmt.Fprintf(sb, "Assign [%s]\n", d.Op)
		printExpr(sb, d.Target, depth+1)
		printExpr(sb, d.Value, depth+1)
	case *Member:
		pad(sb, depth)
		fmt.Fprintf(sb, "Member [%s]\n", d.Name)
		printExpr(sb, d.X, depth+1)
	case *Index:
		pad(sb, depth)
		sb.WriteString("Index\n")
		printExpr(sb, d.X, depth+1)
		printExpr(sb, d.Idx, depth+1)
	case *ArrayLit:
		pad(sb, depth)
		fmt.Fprintf(sb, "ArrayLit [%d elems]\n", len(d.Elems))
		for _, el := range d.Elems {
			printExpr(sb, el, depth+1)
		}
	case *StructLit:
		pad(sb, depth)
		fmt.Fprintf(sb, "StructLit [%s]\n", d.Name)
		for _, f := range d.Fields {
			pad(sb, depth+1)
			fmt.Fprintf(sb, "Field [%s]\n", f.Name)
			printExpr(sb, f.Value, depth+2)
		}
	case *EnumVariant:
		pad(sb, depth)
		fmt.Fprintf(sb, "EnumVariant [%s::%s]\n", d.Enum, d.Variant)
		for _, a := range d.Args {
			printExpr(sb, a, depth+1)
		}
	case *Call:
		pad(sb, depth)
		sb.WriteString("Call\n")
		printExpr(sb, d.Callee, depth+1)
		for _, a := range d.Args {
			printExpr(sb, a, depth+1)
		}
	case *Match:
		pad(sb, depth)
		fmt.Fprintf(sb, "Match [%d arms]\n", len(d.Arms))
		printExpr(sb, d.Value, depth+1)
	case *IsExpr:
		pad(sb, depth)
		sb.WriteString("IsExpr\n")
		printExpr(sb, d.Value, depth+1)
	case *If:
		pad(sb, depth)
		sb.WriteString("If\n")
		printExpr(sb, d.Cond, depth+1)
		if d.Then != nil {
			printStmt(sb, &Stmt{Data: d.Then}, depth+1)
		}
		if d.Else != nil {
			printStmt(sb, &Stmt{Data: d.Else}, depth+1)
		}
	case *Cast:
		pad(sb, depth)
		sb.WriteString("Cast\n")
		printExpr(sb, d.X, depth+1)
	case *Try:
		pad(sb, depth)
		sb.WriteString("Try\n")
		printExpr(sb, d.X, depth+1)
	case *Ok:
		pad(sb, depth)
		sb.WriteString("Ok\n")
		printExpr(sb, d.X, depth+1)
	case *Err:
		pad(sb, depth)
		sb.WriteString("Err\n")
		printExpr(sb, d.X, depth+1)
	default:
		pad(sb, depth)
		fmt.Fprintf(sb, "---> UNKNOWN EXPR %T\n", d)
	}
}
