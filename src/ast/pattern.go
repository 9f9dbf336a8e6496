package ast

// Pattern wraps a PatternData node with its source location. Patterns occur
// in match arms and in `is` expressions/if-bindings.
type Pattern struct {
	Span Span
	Data PatternData
}

// PatternData is implemented by every concrete pattern kind.
type PatternData interface{ isPattern() }

// Wildcard matches anything and binds nothing: `_`.
type Wildcard struct{}

// PIdent names a binding. As a sub-pattern of an enum pattern it binds the
// payload to Name; as a top-level match arm it is the default arm, like
// Wildcard, and binds nothing. A name that spells a payload-less variant is
// not resolved to that variant.
type PIdent struct{ Name string }

// PLiteral matches an exact literal value.
type PLiteral struct{ Value ExprData }

// PEnum matches an enum variant and destructures its payload positionally.
type PEnum struct {
	Enum    string
	Variant string
	Sub     []*Pattern
}

// FieldPattern is one `name: pattern` entry in a struct pattern. A bare
// `name` shorthand desugars to Sub == &Pattern{Data: &PIdent{Name: name}}.
type FieldPattern struct {
	Name string
	Sub  *Pattern
}

// PStruct matches a struct value and destructures named fields.
type PStruct struct {
	Name   string
	Fields []FieldPattern
}

func (*Wildcard) isPattern() {}
func (*PIdent) isPattern()   {}
func (*PLiteral) isPattern() {}
func (*PEnum) isPattern()    {}
func (*PStruct) isPattern()  {}
