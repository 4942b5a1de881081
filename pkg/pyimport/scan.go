package pyimport

import (
	"regexp"
	"strings"
)

var (
	importLine = regexp.MustCompile(`(?m)^\s*import\s+([A-Za-z0-9_.]+)`)
	fromLine   = regexp.MustCompile(`(?m)^\s*from\s+([A-Za-z0-9_.]+)\s+import\s+([^\n#]+)`)
)

// ScanImports finds import statements line by line without parsing. It is
// the fallback for files that do not parse, so it accepts any bytes.
//
// Only the first name of "import a, b" is seen, and a parenthesized
// from-import only contributes the names on its first line.
func ScanImports(src []byte, importer string) Set {
	out := Set{}

	for _, m := range importLine.FindAllSubmatch(src, -1) {
		out.Add(string(m[1]))
	}

	for _, m := range fromLine.FindAllSubmatch(src, -1) {
		var f fromImport
		f.level, f.module = parseFromTarget(strings.TrimSpace(string(m[1])))
		for _, part := range strings.Split(string(m[2]), ",") {
			name := strings.Trim(part, " \t\r()\\")
			if name == "" || name == wildcard {
				continue
			}
			// "x as y" imports x
			name, _, _ = strings.Cut(name, " as ")
			f.names = append(f.names, strings.TrimSpace(name))
		}
		f.addTo(out, importer)
	}

	return out
}
