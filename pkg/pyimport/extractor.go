package pyimport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/ritzau/check-circular-import/pkg/logging"
)

// Strategy records how a Result was produced.
type Strategy int

const (
	// StrategyNone means the file could not be read; the result is empty.
	StrategyNone Strategy = iota
	// StrategyTree means the file parsed cleanly and the syntax tree was walked.
	StrategyTree
	// StrategyLexical means parsing failed and lines were pattern matched.
	StrategyLexical
)

func (s Strategy) String() string {
	switch s {
	case StrategyTree:
		return "tree"
	case StrategyLexical:
		return "lexical"
	default:
		return "none"
	}
}

// Result is the set of candidate module names one file imports.
type Result struct {
	Names    Set
	Strategy Strategy
}

// ErrInvalidEncoding is returned for source that is not valid UTF-8.
var ErrInvalidEncoding = errors.New("source is not valid UTF-8")

// SyntaxError reports the first syntax error found in a file.
type SyntaxError struct {
	Line   int
	Column int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid syntax at line %d, column %d", e.Line, e.Column)
}

// Extractor reads Python files and returns the module names they import.
// It never fails: unreadable or unparsable files degrade to a lexical scan
// and then to an empty result, with a warning logged.
type Extractor struct {
	logger   *slog.Logger
	readFile func(string) ([]byte, error)
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the sink for parse warnings.
func WithLogger(l *slog.Logger) Option {
	return func(e *Extractor) {
		e.logger = l
	}
}

// NewExtractor creates an Extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{readFile: os.ReadFile}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Extractor) log() *slog.Logger {
	if e.logger != nil {
		return e.logger
	}
	return logging.New("pyimport")
}

// Imports returns the names imported by path. importer is the module name
// of path and anchors relative imports.
func (e *Extractor) Imports(path, importer string) Set {
	return e.Extract(path, importer).Names
}

// Extract is Imports but also reports which strategy produced the names.
func (e *Extractor) Extract(path, importer string) Result {
	src, err := e.readFile(path)
	if err == nil {
		names, perr := ParseImports(src, importer)
		if perr == nil {
			return Result{Names: names, Strategy: StrategyTree}
		}
		err = perr
	}

	e.log().Warn("could not parse file", "file", path, "error", err)

	// Second, best-effort pass over the raw text
	src, err = e.readFile(path)
	if err != nil {
		e.log().Debug("fallback read failed", "file", path, "error", err)
		return Result{Names: Set{}, Strategy: StrategyNone}
	}
	return Result{Names: ScanImports(src, importer), Strategy: StrategyLexical}
}

// ParseImports parses src as Python and walks every import statement,
// including those nested in functions, classes and conditionals. It fails
// with a *SyntaxError if the source does not parse cleanly.
func ParseImports(src []byte, importer string) (Set, error) {
	if !utf8.Valid(src) {
		return nil, ErrInvalidEncoding
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, errors.New("tree-sitter returned nil root node")
	}
	if root.HasError() {
		if bad := findFirstError(root); bad != nil {
			p := bad.StartPoint()
			return nil, &SyntaxError{Line: int(p.Row) + 1, Column: int(p.Column) + 1}
		}
		return nil, &SyntaxError{Line: 1, Column: 1}
	}

	out := Set{}
	stack := []*sitter.Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch n.Type() {
		case "import_statement":
			addImportStatement(n, src, out)
			continue
		case "import_from_statement":
			fromStatement(n, src).addTo(out, importer)
			continue
		case "future_import_statement":
			f := fromStatement(n, src)
			f.module = "__future__"
			f.addTo(out, importer)
			continue
		}

		for i := int(n.NamedChildCount()) - 1; i >= 0; i-- {
			stack = append(stack, n.NamedChild(i))
		}
	}

	return out, nil
}

// findFirstError finds the first error node in the tree.
func findFirstError(node *sitter.Node) *sitter.Node {
	if node == nil {
		return nil
	}
	if node.IsError() || node.IsMissing() {
		return node
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if bad := findFirstError(node.Child(i)); bad != nil {
			return bad
		}
	}
	return nil
}

func text(n *sitter.Node, src []byte) string {
	return string(src[n.StartByte():n.EndByte()])
}

// addImportStatement handles "import a.b" and "import a.b as c". The
// dotted name is recorded; aliases never are.
func addImportStatement(node *sitter.Node, src []byte, out Set) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "dotted_name":
			out.Add(text(child, src))
		case "aliased_import":
			if name := child.ChildByFieldName("name"); name != nil {
				out.Add(text(name, src))
			}
		}
	}
}

// fromStatement reads "from X import a, b as c" into a fromImport. For
// __future__ imports the module is filled in by the caller.
func fromStatement(node *sitter.Node, src []byte) fromImport {
	var f fromImport
	sawImport := false

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "import":
			sawImport = true
		case "relative_import":
			f.level, f.module = parseFromTarget(text(child, src))
		case "dotted_name":
			if sawImport {
				f.names = append(f.names, text(child, src))
			} else {
				f.module = text(child, src)
			}
		case "aliased_import":
			if name := child.ChildByFieldName("name"); name != nil {
				f.names = append(f.names, text(name, src))
			}
		case "wildcard_import":
			f.names = append(f.names, wildcard)
		}
	}

	return f
}
