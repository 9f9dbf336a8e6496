package ast

// Expr wraps an ExprData node with its source location.
type Expr struct {
	Span Span
	Data ExprData
}

// ExprData is implemented by every concrete expression kind.
type ExprData interface{ isExpr() }

type IntLit struct{ Value int64 }
type FloatLit struct{ Value float64 }
type BoolLit struct{ Value bool }
type CharLit struct{ Value rune }
type StringLit struct{ Value string }

// Ident is a bare name reference, optionally qualified by a module alias
// (Module != "" for `geometry::PI`).
type Ident struct {
	Module string
	Name   string
}

type Unary struct {
	Op string // "-", "!"
	X  *Expr
}

type Binary struct {
	Op   string // "+", "==", "&&", ...
	L, R *Expr
}

// Assign is `target = value` or a compound form (`+=`, ...); Op is "" for
// plain assignment.
type Assign struct {
	Op     string
	Target *Expr
	Value  *Expr
}

// Member is field or method-name access: x.field, x.method.
type Member struct {
	X    *Expr
	Name string
}

// Index is array subscripting: x[i].
type Index struct {
	X   *Expr
	Idx *Expr
}

type ArrayLit struct{ Elems []*Expr }

// FieldInit is one `name: value` entry in a struct literal.
type FieldInit struct {
	Name  string
	Value *Expr
}

// StructLit constructs a struct value: Point{x: 1, y: 2}.
type StructLit struct {
	Name     string
	TypeArgs []*Type
	Fields   []FieldInit
}

// EnumVariant constructs an enum value: Shape::Circle(r).
type EnumVariant struct {
	Enum    string
	Variant string
	Args    []*Expr
}

// Call is a function, method or free-function call. Callee is an Ident (for
// `f(...)` and `Module::f(...)`) or a Member (for `recv.method(...)`).
type Call struct {
	Callee   *Expr
	TypeArgs []*Type
	Args     []*Expr
}

// MatchArm is one `pattern => value` arm of a match expression.
type MatchArm struct {
	Pattern *Pattern
	Guard   *Expr // optional `if` guard, nil when absent
	Value   *Expr
}

type Match struct {
	Value *Expr
	Arms  []MatchArm
}

// IsExpr is the `value is Pattern` boolean test, usable standalone or as an
// if-condition that introduces bindings visible only in the then-branch.
type IsExpr struct {
	Value   *Expr
	Pattern *Pattern
}

// If is used both as a statement (wrapped in an ExprStmt) and as an
// expression producing the last expression-statement's value of whichever
// branch was taken. Else is nil for a bodyless else.
type If struct {
	Cond *Expr
	Then *Block
	Else *Block
}

// Cast is an explicit `as` conversion: x as i64.
type Cast struct {
	X  *Expr
	To *Type
}

// Try is the trailing `?` operator: propagate X's error to the caller if
// X holds one, otherwise unwrap to its success value.
type Try struct{ X *Expr }

// Ok and Err construct the success/failure states of a fallible (Optional)
// value explicitly, e.g. from a `return err("message")` statement.
type Ok struct{ X *Expr }
type Err struct{ X *Expr }

func (*IntLit) isExpr()      {}
func (*FloatLit) isExpr()    {}
func (*BoolLit) isExpr()     {}
func (*CharLit) isExpr()     {}
func (*StringLit) isExpr()   {}
func (*Ident) isExpr()       {}
func (*Unary) isExpr()       {}
func (*Binary) isExpr()      {}
func (*Assign) isExpr()      {}
func (*Member) isExpr()      {}
func (*Index) isExpr()       {}
func (*ArrayLit) isExpr()    {}
func (*StructLit) isExpr()   {}
func (*EnumVariant) isExpr() {}
func (*Call) isExpr()        {}
func (*Match) isExpr()       {}
func (*IsExpr) isExpr()      {}
func (*If) isExpr()          {}
func (*Cast) isExpr()        {}
func (*Try) isExpr()         {}
func (*Ok) isExpr()          {}
func (*Err) isExpr()         {}
