package pyimport

import "strings"

const wildcard = "*"

// fromImport is one "from M import a, b" statement. Both extraction
// strategies reduce from-imports to this shape.
type fromImport struct {
	level  int      // number of leading dots
	module string   // dotted name after the dots, may be empty
	names  []string // imported names with aliases stripped
}

// parseFromTarget splits "..pkg.mod" into its dot count and module.
// Whitespace between the dots and the name is legal Python and dropped.
func parseFromTarget(target string) (level int, module string) {
	target = strings.Join(strings.Fields(target), "")
	module = strings.TrimLeft(target, ".")
	return len(target) - len(module), module
}

// addTo adds the candidate module names of f to out. importer is the
// dotted name of the importing module and anchors relative imports.
//
// Every explicitly named symbol also yields base.symbol, since the symbol
// may be a submodule rather than an attribute.
func (f fromImport) addTo(out Set, importer string) {
	if f.level == 0 {
		if f.module == "" {
			return
		}
		out.Add(f.module)
		for _, name := range f.names {
			if name == "" || name == wildcard {
				continue
			}
			out.Add(f.module + "." + name)
		}
		return
	}

	parts := strings.Split(importer, ".")
	if f.level > len(parts) {
		// More dots than packages to climb: unresolvable
		return
	}

	base := append([]string(nil), parts[:len(parts)-f.level]...)
	if f.module != "" {
		base = append(base, f.module)
	}
	prefix := strings.Join(base, ".")
	out.Add(prefix)

	for _, name := range f.names {
		if name == "" || name == wildcard {
			continue
		}
		if prefix == "" {
			out.Add(name)
		} else {
			out.Add(prefix + "." + name)
		}
	}
}
