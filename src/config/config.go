// Package config reads an optional paw.toml project file: [package] (name,
// version, edition, description), [lib] (type = bin|lib), [build] (target,
// opt_level, debug). The scanner is a small hand-rolled section/key-value
// reader, the same shape as the original loadPawConfig/TomlParser
// (toml_parser.cpp): one pass over the text, no nested tables, no arrays of
// tables — this project's paw.toml never needs more than that. A missing
// file is not an error; it yields the documented defaults.
package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// Config is a parsed (or defaulted) paw.toml.
type Config struct {
	Name        string
	Version     string
	Edition     string
	Description string

	LibType string // "bin" or "lib"

	Target   string
	OptLevel int
	Debug    bool
}

// Default returns the documented defaults for a project with no paw.toml.
func Default() Config {
	return Config{
		Name:     "unnamed",
		Version:  "0.1.0",
		LibType:  "bin",
		Target:   "native",
		OptLevel: 2,
		Debug:    false,
	}
}

// Load reads paw.toml from dir, returning the documented defaults if the
// file does not exist. A malformed [package].version (not valid semver) is
// reported as an error rather than silently ignored, since it is the one
// field this package validates beyond plain key/value scanning.
func Load(dir string) (Config, error) {
	path := filepath.Join(dir, "paw.toml")
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	cfg := Default()
	section := ""
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") {
			end := strings.IndexByte(line, ']')
			if end < 0 {
				return Config{}, fmt.Errorf("%s: expected ']' to close section header %q", path, line)
			}
			section = strings.TrimSpace(line[1:end])
			continue
		}
		key, val, ok := splitKeyValue(line)
		if !ok {
			return Config{}, fmt.Errorf("%s: expected 'key = value', got %q", path, line)
		}
		if err := apply(&cfg, section, key, val); err != nil {
			return Config{}, fmt.Errorf("%s: %w", path, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return Config{}, fmt.Errorf("reading %s: %w", path, err)
	}

	if cfg.Version != "" && !semver.IsValid("v"+cfg.Version) {
		return Config{}, fmt.Errorf("%s: [package].version %q is not a valid semantic version", path, cfg.Version)
	}
	return cfg, nil
}

// splitKeyValue splits "key = value" on the first '=', trimming whitespace
// and an optional trailing comment on the value side.
func splitKeyValue(line string) (key, value string, ok bool) {
	i := strings.IndexByte(line, '=')
	if i < 0 {
		return "", "", false
	}
	key = strings.TrimSpace(line[:i])
	value = strings.TrimSpace(line[i+1:])
	if h := strings.IndexByte(value, '#'); h >= 0 {
		value = strings.TrimSpace(value[:h])
	}
	return key, value, key != ""
}

// apply assigns one key/value pair from section into cfg, mirroring the
// original's per-section if/else-if dispatch.
func apply(cfg *Config, section, key, val string) error {
	switch section {
	case "package":
		switch key {
		case "name":
			cfg.Name = unquote(val)
		case "version":
			cfg.Version = unquote(val)
		case "edition":
			cfg.Edition = unquote(val)
		case "description":
			cfg.Description = unquote(val)
		}
	case "lib":
		if key == "type" {
			cfg.LibType = unquote(val)
		}
	case "build":
		switch key {
		case "target":
			cfg.Target = unquote(val)
		case "opt_level":
			n, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("[build].opt_level must be an integer, got %q", val)
			}
			cfg.OptLevel = n
		case "debug":
			cfg.Debug = val == "true"
		}
	}
	return nil
}

// unquote strips a surrounding pair of double quotes, if present.
func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
