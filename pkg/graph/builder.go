package graph

import (
	"context"

	"github.com/ritzau/check-circular-import/pkg/logging"
	"github.com/ritzau/check-circular-import/pkg/pyimport"
)

// SourceLister enumerates the source files below a root.
type SourceLister interface {
	FindSourceFiles(root string) []string
}

// ImportExtractor returns the module names one file imports.
type ImportExtractor interface {
	Extract(path, importer string) pyimport.Result
}

// Builder builds the dependency graph of a project.
type Builder struct {
	lister    SourceLister
	extractor ImportExtractor
}

// NewBuilder creates a builder from a file lister and an import extractor.
func NewBuilder(lister SourceLister, extractor ImportExtractor) *Builder {
	return &Builder{
		lister:    lister,
		extractor: extractor,
	}
}

// Build returns a fresh graph and module index for the project at root.
func (b *Builder) Build(ctx context.Context, root string) (*Graph, Index) {
	g := New()
	ix := Index{}
	b.Populate(ctx, root, g, ix)
	return g, ix
}

// Populate fills g and ix from the project at root. Both should be empty.
//
// Every module must be indexed before any import is classified, or an
// import of a module whose file comes later in the walk would be taken for
// an external one. So files are read twice: once to name them, once to
// extract their imports.
func (b *Builder) Populate(ctx context.Context, root string, g *Graph, ix Index) {
	files := b.lister.FindSourceFiles(root)
	logging.DebugContext(ctx, "found source files", "root", root, "count", len(files))

	// Pass 1: module index. Later files win on name collisions.
	names := make([]string, len(files))
	for i, file := range files {
		names[i] = pyimport.ModuleName(file, root)
		if names[i] != "" {
			ix[names[i]] = file
		}
	}

	// Pass 2: internal edges
	var lexical, unreadable int
	for i, file := range files {
		module := names[i]
		if module == "" {
			continue
		}

		res := b.extractor.Extract(file, module)
		switch res.Strategy {
		case pyimport.StrategyLexical:
			lexical++
		case pyimport.StrategyNone:
			unreadable++
		}

		for name := range res.Names {
			if ix.Resolves(name) {
				g.AddDependency(module, name)
			} else {
				logging.TraceContext(ctx, "dropping external import", "module", module, "import", name)
			}
		}
	}

	logging.InfoContext(ctx, "built dependency graph",
		"modules", len(ix),
		"edges", g.EdgeCount(),
		"lexicalFallbacks", lexical,
		"unreadable", unreadable,
	)
}
