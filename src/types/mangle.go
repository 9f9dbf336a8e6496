package types

import "strings"

// Mangle builds the deterministic backend symbol name for a generic
// declaration applied to args: "N<T1,...,Tn>" becomes "N_t1_..._tn" where
// each ti is its canonical printable form (per §4.9). Two call sites with
// identical argument lists always produce the same string, and different
// lists always differ, since Type.String is injective over the supported
// type universe (primitives by fixed spelling, structs/enums by name,
// nested generics already mangled before they reach here).
func Mangle(name string, args []Type) string {
	if len(args) == 0 {
		return name
	}
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, name)
	for _, a := range args {
		parts = append(parts, a.String())
	}
	return strings.Join(parts, "_")
}
