package util

// Options carries the command-line configuration for a single compiler run.
// cmd/pawc decodes a urfave/cli.Context into one of these; every other
// package in the compiler takes an Options value rather than touching the
// CLI layer directly, so the core never imports urfave/cli.
type Options struct {
	Src      string // Path to the entry source file.
	Out      string // Path to the output file (-o).
	EmitLLVM bool   // --emit-llvm: write textual LLIR.
	EmitObj  bool   // --emit-obj: write an object file.
	PrintAST bool   // --print-ast
	PrintIR  bool   // --print-ir
	Verbose  bool   // -vb: log compiler statistics to stdout.

	TargetArch   int // Output target architecture. 0 = host default.
	TargetVendor int
	TargetOS     int
}

// Target machine architectures.
const (
	UnknownArch = iota
	X86_64
	X86_32
	Aarch64
	Riscv64
	Riscv32
)

// Target operating system.
const (
	UnknownOS = iota
	Linux
	Windows
	MAC
)

// Target vendor.
const (
	UnknownVendor = iota
	Apple
	PC
	IBM
)
