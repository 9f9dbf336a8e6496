package llvm

import (
	"testing"

	"pawc/src/util"
)

func TestTripleUsesHostDefaultWhenArchUnset(t *testing.T) {
	got, err := Triple(util.Options{})
	if err != nil {
		t.Fatalf("Triple: %v", err)
	}
	if got == "" {
		t.Fatal("expected a non-empty default triple")
	}
}

func TestTripleBuildsArchVendorOSTuple(t *testing.T) {
	got, err := Triple(util.Options{
		TargetArch:   util.Aarch64,
		TargetVendor: util.Apple,
		TargetOS:     util.MAC,
	})
	if err != nil {
		t.Fatalf("Triple: %v", err)
	}
	want := "aarch64-apple-darwin-gnu"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestTripleDefaultsVendorToPC(t *testing.T) {
	got, err := Triple(util.Options{
		TargetArch: util.X86_64,
		TargetOS:   util.Linux,
	})
	if err != nil {
		t.Fatalf("Triple: %v", err)
	}
	want := "x86_64-pc-linux-gnu"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestTripleRejectsUnknownArch(t *testing.T) {
	if _, err := Triple(util.Options{TargetArch: 999}); err == nil {
		t.Fatal("expected an error for an unrecognized architecture identifier")
	}
}

func TestCPUForRiscv64UsesGenericRV64(t *testing.T) {
	if got := cpuFor(util.Riscv64); got != "generic-rv64" {
		t.Fatalf("expected %q, got %q", "generic-rv64", got)
	}
}

func TestCPUForDefaultsToGeneric(t *testing.T) {
	if got := cpuFor(util.X86_64); got != "generic" {
		t.Fatalf("expected %q, got %q", "generic", got)
	}
}
