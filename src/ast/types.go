package ast

// Type wraps a TypeData node with its source location.
type Type struct {
	Span Span
	Data TypeData
}

// TypeData is implemented by every concrete type-expression kind.
type TypeData interface{ isType() }

// PrimKind enumerates the built-in scalar kinds.
type PrimKind int

const (
	I8 PrimKind = iota
	I16
	I32
	I64
	I128
	U8
	U16
	U32
	U64
	U128
	F32
	F64
	Bool
	Char
	Str
	Void
)

// Primitive is a built-in scalar type, e.g. i32, f64, bool.
type Primitive struct{ Kind PrimKind }

// Named is a reference to a struct, enum or type alias, optionally
// instantiated with type arguments: Box<i32>, Pair<K, V>.
type Named struct {
	Name string
	Args []*Type
}

// GenericParam is a bare generic type parameter used inside a generic
// declaration's own body, e.g. T inside fn identity<T>(x: T) -> T.
type GenericParam struct{ Name string }

// Array is a fixed-size array type, e.g. [i32; 4]. Size < 0 means the size
// is elided and must be inferred from an initializer.
type Array struct {
	Elem *Type
	Size int
}

// SelfType is the receiver type `Self` used inside struct method bodies.
type SelfType struct{}

// Optional is the T? sugar for a fallible value: {tag, value, error_msg}.
type Optional struct{ Inner *Type }

func (*Primitive) isType()    {}
func (*Named) isType()        {}
func (*GenericParam) isType() {}
func (*Array) isType()        {}
func (*SelfType) isType()     {}
func (*Optional) isType()     {}

// PrimKindName maps a PrimKind back to its source spelling, used by the
// printer and by mangled generic-instantiation names.
func PrimKindName(k PrimKind) string {
	switch k {
	case I8:
		return "i8"
	case I16:
		return "i16"
	case I32:
		return "i32"
	case I64:
		return "i64"
	case I128:
		return "i128"
	case U8:
		return "u8"
	case U16:
		return "u16"
	case U32:
		return "u32"
	case U64:
		return "u64"
	case U128:
		return "u128"
	case F32:
		return "f32"
	case F64:
		return "f64"
	case Bool:
		return "bool"
	case Char:
		return "char"
	case Str:
		return "string"
	case Void:
		return "void"
	default:
		return "<unknown>"
	}
}
