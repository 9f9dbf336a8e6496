package driver

import (
	"testing"

	"pawc/src/util"
)

func TestDefaultOutputNameStripsDirAndExtension(t *testing.T) {
	if got := defaultOutputName("/tmp/project/main.paw"); got != "main" {
		t.Fatalf("expected %q, got %q", "main", got)
	}
}

func TestObjOutputPathUsesExplicitOutForSingleModule(t *testing.T) {
	opt := util.Options{Out: "a.out"}
	if got := objOutputPath(opt, "main", 1); got != "a.out" {
		t.Fatalf("expected %q, got %q", "a.out", got)
	}
}

func TestObjOutputPathNamesPerModuleWhenMultiple(t *testing.T) {
	opt := util.Options{Out: "a.out"}
	got := objOutputPath(opt, "helper", 2)
	want := "a.out.helper.o"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestObjOutputPathDefaultsToModuleName(t *testing.T) {
	opt := util.Options{}
	if got := objOutputPath(opt, "helper", 2); got != "helper.o" {
		t.Fatalf("expected %q, got %q", "helper.o", got)
	}
}

func TestLLOutputPathMirrorsObjOutputPath(t *testing.T) {
	opt := util.Options{Out: "a.out"}
	if got := llOutputPath(opt, "main", 1); got != "a.out" {
		t.Fatalf("expected %q, got %q", "a.out", got)
	}
	if got := llOutputPath(util.Options{}, "helper", 2); got != "helper.ll" {
		t.Fatalf("expected %q, got %q", "helper.ll", got)
	}
}
