// Package types resolves AST type expressions to the backend-facing type
// vocabulary the lowerer and the backend abstract interface share: void,
// signed/unsigned integers, floats, pointer, fixed-length array, named
// struct and enum records, and function signatures. It is adapted from the
// original compiler's CodeGenerator::convertType (codegen_type.cpp),
// generalized from "AST type -> llvm::Type*" to "AST type -> Type", a
// backend-agnostic description the concrete backend later turns into real
// handles.
package types

import "fmt"

// Type is a resolved type. Modelled as a sum type so every consumer
// (mangler, lowerer, backend glue) switches exhaustively on concrete kind
// rather than branching on a tag field.
type Type interface {
	isType()
	// String returns the canonical printable form used both in diagnostics
	// and as the per-argument fragment of a monomorphization's mangled name
	// (e.g. "i32", "string", "Pair_i32_string").
	String() string
}

// Void is the absence of a value, used for a function with no return type.
type Void struct{}

// Int is a signed or unsigned integer of a fixed bit width.
type Int struct {
	Width  int
	Signed bool
}

// Float is an IEEE float of width 32 or 64.
type Float struct{ Width int }

// Bool is the one-bit boolean type.
type Bool struct{}

// Char is an 8-bit character, distinct from Int(8) only for diagnostics and
// mangling; it lowers to the same backend integer type as an unsigned i8.
type Char struct{}

// Pointer is a pointer to Elem. Strings lower to Pointer{Elem: Char} (a
// pointer-to-byte); structs lower to Pointer{Elem: StructT} in every value
// position per the struct-as-heap-pointer representation.
type Pointer struct{ Elem Type }

// ArrayT is a fixed-length array, its length always known by the time a
// value reaches this representation (elided sizes are inferred from the
// enclosing let's initializer before resolution runs).
type ArrayT struct {
	Elem Type
	Len  int
}

// FieldT is one struct field, in declaration order.
type FieldT struct {
	Name string
	Type Type
}

// StructT is a named struct's backend layout: its field types in
// declaration order. Struct values are always passed as Pointer{StructT};
// StructT itself only appears as a Pointer's Elem.
type StructT struct {
	Name   string
	Fields []FieldT
}

// FieldIndex returns the declaration-order index of name, or -1.
func (s *StructT) FieldIndex(name string) int {
	for i, f := range s.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// EnumT is a named enum's backend layout: the fixed {tag: i32, payload: i64}
// record every enum (and the virtual Optional enum, see OptionalT) shares.
// Unlike a struct, an enum is a value type, never wrapped in Pointer.
type EnumT struct {
	Name     string
	Variants []string // declaration order; index is the stable ordinal
	// Fields holds each variant's tuple payload types in the same order as
	// Variants, empty for a unit variant. Used to type a match/is
	// sub-pattern binding extracted from the payload bit-bag.
	Fields [][]Type
}

// Ordinal returns variant's declaration-order tag, or -1 if unknown.
func (e *EnumT) Ordinal(variant string) int {
	for i, v := range e.Variants {
		if v == variant {
			return i
		}
	}
	return -1
}

// OptionalT is the lowering of T? to its record layout
// { tag: i32, value: T, error_msg: ptr-to-byte }. tag 0 is Value, 1 is Error.
type OptionalT struct{ Inner Type }

// FuncT is a function signature: parameter types, return type (Void for
// none) and whether the last parameter is a C-style varargs marker.
type FuncT struct {
	Params  []Type
	Ret     Type
	Varargs bool
}

func (*Void) isType()      {}
func (*Int) isType()       {}
func (*Float) isType()     {}
func (*Bool) isType()      {}
func (*Char) isType()      {}
func (*Pointer) isType()   {}
func (*ArrayT) isType()    {}
func (*StructT) isType()   {}
func (*EnumT) isType()     {}
func (*OptionalT) isType() {}
func (*FuncT) isType()     {}

func (*Void) String() string { return "void" }

func (t *Int) String() string {
	if t.Signed {
		return fmt.Sprintf("i%d", t.Width)
	}
	return fmt.Sprintf("u%d", t.Width)
}

func (t *Float) String() string { return fmt.Sprintf("f%d", t.Width) }
func (*Bool) String() string    { return "bool" }
func (*Char) String() string    { return "char" }

func (t *Pointer) String() string {
	switch elem := t.Elem.(type) {
	case *Char:
		return "string"
	case *StructT:
		// Structs are always passed as pointers; their canonical/mangled
		// form is the struct's own name, not a "ptr_" wrapper.
		return elem.Name
	default:
		return "ptr_" + t.Elem.String()
	}
}

func (t *ArrayT) String() string { return fmt.Sprintf("%s_%d", t.Elem.String(), t.Len) }
func (t *StructT) String() string { return t.Name }
func (t *EnumT) String() string   { return t.Name }

func (t *OptionalT) String() string { return t.Inner.String() + "_opt" }

func (t *FuncT) String() string { return "fn" }

// Str returns the pointer-to-byte representation every `string` value uses.
func Str() Type { return &Pointer{Elem: &Char{}} }

// IsStringPointer reports whether t is the pointer-to-byte representation a
// `string` value always takes, distinguishing it from a pointer-to-struct.
func IsStringPointer(t Type) bool {
	p, ok := t.(*Pointer)
	if !ok {
		return false
	}
	_, isChar := p.Elem.(*Char)
	return isChar
}

// Equal reports whether a and b describe the same backend type structurally.
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	switch av := a.(type) {
	case *Void:
		_, ok := b.(*Void)
		return ok
	case *Int:
		bv, ok := b.(*Int)
		return ok && av.Width == bv.Width && av.Signed == bv.Signed
	case *Float:
		bv, ok := b.(*Float)
		return ok && av.Width == bv.Width
	case *Bool:
		_, ok := b.(*Bool)
		return ok
	case *Char:
		_, ok := b.(*Char)
		return ok
	case *Pointer:
		bv, ok := b.(*Pointer)
		return ok && Equal(av.Elem, bv.Elem)
	case *ArrayT:
		bv, ok := b.(*ArrayT)
		return ok && av.Len == bv.Len && Equal(av.Elem, bv.Elem)
	case *StructT:
		bv, ok := b.(*StructT)
		return ok && av.Name == bv.Name
	case *EnumT:
		bv, ok := b.(*EnumT)
		return ok && av.Name == bv.Name
	case *OptionalT:
		bv, ok := b.(*OptionalT)
		return ok && Equal(av.Inner, bv.Inner)
	case *FuncT:
		bv, ok := b.(*FuncT)
		if !ok || len(av.Params) != len(bv.Params) || av.Varargs != bv.Varargs || !Equal(av.Ret, bv.Ret) {
			return false
		}
		for i := range av.Params {
			if !Equal(av.Params[i], bv.Params[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
