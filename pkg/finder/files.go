package finder

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"

	"github.com/ritzau/check-circular-import/pkg/logging"
	"github.com/ritzau/check-circular-import/pkg/pyimport"
)

// DefaultIgnoreDirs are directory names never descended into: VCS metadata,
// virtual environments, caches and build output.
var DefaultIgnoreDirs = []string{
	"venv",
	"env",
	"__pycache__",
	".git",
	"node_modules",
	".venv",
	".tox",
	"build",
	"dist",
	"*.egg-info",
}

// ErrInvalidPattern is returned when an ignore pattern does not compile.
var ErrInvalidPattern = errors.New("invalid ignore pattern")

// Finder lists Python source files below a root, skipping ignored
// directories.
type Finder struct {
	globs []glob.Glob
}

// New creates a Finder that skips directories whose name matches one of
// patterns. Patterns are shell style: "build" matches exactly, "*.egg-info"
// matches any name with that suffix.
func New(patterns []string) (*Finder, error) {
	f := &Finder{
		globs: make([]glob.Glob, 0, len(patterns)),
	}
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrInvalidPattern, p, err)
		}
		f.globs = append(f.globs, g)
	}
	return f, nil
}

// MergeIgnoreDirs returns DefaultIgnoreDirs followed by the extra patterns
// not already present.
func MergeIgnoreDirs(extra []string) []string {
	merged := append([]string(nil), DefaultIgnoreDirs...)
	seen := make(map[string]bool, len(merged)+len(extra))
	for _, p := range merged {
		seen[p] = true
	}
	for _, p := range extra {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		merged = append(merged, p)
	}
	return merged
}

// Ignored reports whether a directory with the given base name is skipped.
func (f *Finder) Ignored(name string) bool {
	for _, g := range f.globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// FindSourceFiles walks root and returns every .py file outside ignored
// directories, in lexical walk order. A missing root or an unreadable
// directory yields fewer files, never an error.
func (f *Finder) FindSourceFiles(root string) []string {
	var sourceFiles []string

	f.walk(root, func(path string, d fs.DirEntry) {
		if !d.IsDir() && strings.HasSuffix(d.Name(), pyimport.SourceExt) {
			sourceFiles = append(sourceFiles, path)
		}
	})

	return sourceFiles
}

// Directories returns root and every directory below it that is not
// ignored.
func (f *Finder) Directories(root string) []string {
	var dirs []string

	f.walk(root, func(path string, d fs.DirEntry) {
		if d.IsDir() {
			dirs = append(dirs, path)
		}
	})

	return dirs
}

func (f *Finder) walk(root string, visit func(path string, d fs.DirEntry)) {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logging.Debug("skipping unreadable path", "path", path, "error", err)
			if d != nil && d.IsDir() && path != root {
				return filepath.SkipDir
			}
			return nil
		}

		// The root itself is never filtered, only what is below it
		if d.IsDir() && path != root && f.Ignored(d.Name()) {
			logging.Trace("skipping ignored directory", "path", path)
			return filepath.SkipDir
		}

		visit(path, d)
		return nil
	})
	if err != nil {
		logging.Debug("walk stopped early", "root", root, "error", err)
	}
}
