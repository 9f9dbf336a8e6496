package module

import (
	"path/filepath"
	"strings"
)

// ToFilePath maps a dotted-or-nested module path such as "std::math" to its
// source file relative to the project root, "std/math.paw".
func ToFilePath(importPath string) string {
	segs := strings.Split(importPath, "::")
	return filepath.Join(segs...) + ".paw"
}
