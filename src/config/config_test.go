package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Default()
	if cfg != want {
		t.Fatalf("expected defaults %+v, got %+v", want, cfg)
	}
}

func TestLoadParsesSections(t *testing.T) {
	dir := t.TempDir()
	content := `
# a comment
[package]
name = "demo"
version = "1.2.3"
edition = "2024"
description = "a demo project"

[lib]
type = "lib"

[build]
target = "x86_64"
opt_level = 0
debug = true
`
	if err := os.WriteFile(filepath.Join(dir, "paw.toml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Config{
		Name:        "demo",
		Version:     "1.2.3",
		Edition:     "2024",
		Description: "a demo project",
		LibType:     "lib",
		Target:      "x86_64",
		OptLevel:    0,
		Debug:       true,
	}
	if cfg != want {
		t.Fatalf("expected %+v, got %+v", want, cfg)
	}
}

func TestLoadRejectsInvalidVersion(t *testing.T) {
	dir := t.TempDir()
	content := "[package]\nversion = \"not-a-version\"\n"
	if err := os.WriteFile(filepath.Join(dir, "paw.toml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil {
		t.Fatal("expected an error for an invalid semantic version")
	}
}

func TestLoadRejectsMalformedLine(t *testing.T) {
	dir := t.TempDir()
	content := "[package]\nnot a key value line\n"
	if err := os.WriteFile(filepath.Join(dir, "paw.toml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil {
		t.Fatal("expected an error for a malformed line")
	}
}
