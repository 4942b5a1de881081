// Package detector runs one circular import analysis over a Python project.
package detector

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/ritzau/check-circular-import/pkg/cycles"
	"github.com/ritzau/check-circular-import/pkg/finder"
	"github.com/ritzau/check-circular-import/pkg/graph"
	"github.com/ritzau/check-circular-import/pkg/logging"
	"github.com/ritzau/check-circular-import/pkg/model"
	"github.com/ritzau/check-circular-import/pkg/pyimport"
)

// Stats summarizes one analysis run.
type Stats struct {
	TotalModules            int `json:"total_modules" yaml:"total_modules"`
	TotalDependencies       int `json:"total_dependencies" yaml:"total_dependencies"`
	ModulesWithDependencies int `json:"modules_with_dependencies" yaml:"modules_with_dependencies"`
	CircularDependencies    int `json:"circular_dependencies_found" yaml:"circular_dependencies_found"`
}

// Result is the outcome of Analyze.
type Result struct {
	Root       string
	Cycles     []cycles.Cycle
	Stats      Stats
	Components [][]string
	Graph      *model.Graph
}

// HasCycles reports whether any cycle was found.
func (r *Result) HasCycles() bool {
	return len(r.Cycles) > 0
}

// Option configures a Detector.
type Option func(*Detector)

// WithExtractor replaces the default import extractor.
func WithExtractor(e graph.ImportExtractor) Option {
	return func(d *Detector) {
		d.extractor = e
	}
}

// Detector finds circular imports below a project root. It can be reused:
// every Analyze starts from an empty graph and index.
type Detector struct {
	root      string
	ignore    []string
	finder    *finder.Finder
	extractor graph.ImportExtractor

	graph *graph.Graph
	index graph.Index
}

// New creates a detector for the project at root. extraIgnore adds
// directory patterns to finder.DefaultIgnoreDirs.
func New(root string, extraIgnore []string, opts ...Option) (*Detector, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root %q: %w", root, err)
	}

	ignore := finder.MergeIgnoreDirs(extraIgnore)
	f, err := finder.New(ignore)
	if err != nil {
		return nil, err
	}

	d := &Detector{
		root:      abs,
		ignore:    ignore,
		finder:    f,
		extractor: pyimport.NewExtractor(),
		graph:     graph.New(),
		index:     graph.Index{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Root returns the absolute project root.
func (d *Detector) Root() string {
	return d.root
}

// IgnoreDirs returns the effective directory ignore patterns.
func (d *Detector) IgnoreDirs() []string {
	return append([]string(nil), d.ignore...)
}

// Finder returns the file lister the detector walks the project with.
func (d *Detector) Finder() *finder.Finder {
	return d.finder
}

// Analyze builds the dependency graph and reports its cycles. Problems with
// individual files never fail the run; they show up as missing edges.
func (d *Detector) Analyze(ctx context.Context) *Result {
	ctx, _ = logging.StartRun(ctx)

	d.graph.Reset()
	clear(d.index)

	graph.NewBuilder(d.finder, d.extractor).Populate(ctx, d.root, d.graph, d.index)

	found := cycles.Find(d.graph)
	res := &Result{
		Root:   d.root,
		Cycles: found,
		Stats: Stats{
			TotalModules:            len(d.index),
			TotalDependencies:       d.graph.EdgeCount(),
			ModulesWithDependencies: d.graph.Len(),
			CircularDependencies:    len(found),
		},
		Components: cycles.Components(d.graph),
		Graph:      graph.Export(d.graph, d.index),
	}

	logging.InfoContext(ctx, "analysis complete",
		"modules", res.Stats.TotalModules,
		"cycles", res.Stats.CircularDependencies,
	)
	return res
}
