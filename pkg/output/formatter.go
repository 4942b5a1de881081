package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

const rule = "============================================================"

// FormatCycle renders a cycle one module per line, closing back on the
// first module. A trailing repeat of the first module is dropped.
func FormatCycle(cycle []string) string {
	display := cycle
	if len(display) > 1 && display[0] == display[len(display)-1] {
		display = display[:len(display)-1]
	}
	if len(display) == 0 {
		return ""
	}

	var b strings.Builder
	for _, m := range display {
		b.WriteString("  ")
		b.WriteString(m)
		b.WriteString("\n    ↓ imports\n")
	}
	b.WriteString("  ")
	b.WriteString(display[0])
	b.WriteString(" (cycle completes)")
	return b.String()
}

// PrintText writes the human readable report.
func PrintText(w io.Writer, r *Report) {
	bold := color.New(color.Bold)
	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)

	// Header
	fmt.Fprintln(w)
	bold.Fprintln(w, rule)
	bold.Fprintln(w, "CIRCULAR IMPORT DETECTION REPORT")
	bold.Fprintln(w, rule)

	fmt.Fprintf(w, "\nProject root: %s\n", r.Root)
	fmt.Fprintln(w, "\nStatistics:")
	fmt.Fprintf(w, "  - Total modules analyzed: %d\n", r.Stats.TotalModules)
	fmt.Fprintf(w, "  - Total dependencies: %d\n", r.Stats.TotalDependencies)
	fmt.Fprintf(w, "  - Modules with dependencies: %d\n", r.Stats.ModulesWithDependencies)

	statColor := green
	if r.Stats.CircularDependencies > 0 {
		statColor = red
	}
	statColor.Fprintf(w, "  - Circular dependencies found: %d\n", r.Stats.CircularDependencies)

	if len(r.Cycles) == 0 {
		green.Fprintln(w, "\n✅ No circular imports detected!")
		bold.Fprintln(w, rule)
		return
	}

	yellow.Fprintf(w, "\n⚠️  Found %d circular import(s):\n\n", len(r.Cycles))
	for i, c := range r.Cycles {
		cyan.Fprintf(w, "Cycle %d:\n", i+1)
		fmt.Fprintln(w, FormatCycle(c))
		fmt.Fprintln(w)
	}

	if len(r.Components) > 0 {
		yellow.Fprintf(w, "Tangled module groups: %d\n", len(r.Components))
		for _, comp := range r.Components {
			fmt.Fprintf(w, "  - %s\n", strings.Join(comp, ", "))
		}
		fmt.Fprintln(w)
	}

	bold.Fprintln(w, rule)
}

// PrintSettings writes the effective root and ignore list, shown before a
// verbose text report.
func PrintSettings(w io.Writer, root string, ignore []string) {
	fmt.Fprintf(w, "Analyzing Python files in: %s\n", root)
	fmt.Fprintf(w, "Ignoring directories: %s\n", strings.Join(ignore, ", "))
	fmt.Fprintln(w)
}
