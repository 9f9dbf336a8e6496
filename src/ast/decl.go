package ast

// Param is one function or method parameter. IsSelf marks the implicit
// receiver parameter of a struct method (`self` or `mut self`); Type is nil
// in that case, since the receiver's type is always the enclosing struct.
type Param struct {
	Name   string
	Type   *Type
	IsSelf bool
	Mut    bool
}

// FuncDecl is a free function or, when IsMethod is true, a method nested
// inside a StructDecl. FuncDecl is a StmtData so it can appear directly as a
// top-level Program item or inside StructDecl.Methods.
type FuncDecl struct {
	Name     string
	Generics []string
	Params   []Param
	Ret      *Type // nil means void
	Body     *Block
	Public   bool
	IsMethod bool
}

// Field is one struct field declaration.
type Field struct {
	Name string
	Type *Type
}

// StructDecl declares a struct type and its inline methods.
type StructDecl struct {
	Name     string
	Generics []string
	Fields   []Field
	Methods  []*FuncDecl
	Public   bool
}

// EnumVariantDecl is one variant of an EnumDecl; Fields holds the tuple
// payload types, empty for a unit variant.
type EnumVariantDecl struct {
	Name   string
	Fields []*Type
}

// EnumDecl declares a tagged-union type.
type EnumDecl struct {
	Name     string
	Generics []string
	Variants []EnumVariantDecl
	Public   bool
}

// TypeAliasDecl declares `type Name<Generics> = Target;`.
type TypeAliasDecl struct {
	Name     string
	Generics []string
	Target   *Type
	Public   bool
}

// ExternDecl declares a foreign function implemented outside paw, resolved
// by the linker rather than lowered to an LLIR body.
type ExternDecl struct {
	Name    string
	Params  []Param
	Ret     *Type
	Varargs bool
}

// ImportDecl brings another module into scope by its `a::b::c` path.
type ImportDecl struct{ Path string }

func (*FuncDecl) isStmt()      {}
func (*StructDecl) isStmt()    {}
func (*EnumDecl) isStmt()      {}
func (*TypeAliasDecl) isStmt() {}
func (*ExternDecl) isStmt()    {}
func (*ImportDecl) isStmt()    {}

// Program is one parsed source module: its dotted path name and its
// top-level items in source order.
type Program struct {
	Module string
	File   string
	Items  []*Stmt
}
