// Package pyimport maps Python source files to dotted module names and
// extracts the module names each file imports.
package pyimport

import (
	"path/filepath"
	"strings"
)

const (
	// SourceExt is the extension of files that define modules.
	SourceExt = ".py"

	// InitBasename is the package initializer. Its own name is dropped so
	// that pkg/__init__.py names the module "pkg".
	InitBasename = "__init__"
)

// ModuleName converts a file path to a dotted module name relative to root.
//
// A file outside root has no relative form and its path is returned as an
// opaque name. A root-level __init__.py yields "", which callers must not
// register as a module.
func ModuleName(file, root string) string {
	rel, err := filepath.Rel(root, file)
	if err != nil || !filepath.IsLocal(rel) {
		return file
	}

	rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	parts := strings.Split(filepath.ToSlash(rel), "/")

	if parts[len(parts)-1] == InitBasename {
		parts = parts[:len(parts)-1]
	}

	return strings.Join(parts, ".")
}

// Parent returns name without its last dotted segment, or "" for a
// top-level name.
func Parent(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return ""
	}
	return name[:i]
}
