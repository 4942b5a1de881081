package graph

import (
	"sort"

	"gonum.org/v1/gonum/graph/simple"

	"github.com/ritzau/check-circular-import/pkg/pyimport"
)

// Index maps a module name to the file that defines it.
type Index map[string]string

// Resolves reports whether name, or a parent of name formed by dropping
// trailing dotted segments, is a module in the index. "pkg.mod.func"
// resolves through "pkg.mod".
func (ix Index) Resolves(name string) bool {
	return ix.Owner(name) != ""
}

// Owner returns the longest prefix of name that is an indexed module, or ""
// if there is none.
func (ix Index) Owner(name string) string {
	for n := name; n != ""; n = pyimport.Parent(n) {
		if _, ok := ix[n]; ok {
			return n
		}
	}
	return ""
}

// Modules returns the indexed module names in lexical order.
func (ix Index) Modules() []string {
	names := make([]string, 0, len(ix))
	for n := range ix {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Graph is the module dependency graph. Only modules with at least one
// outgoing edge have an entry. Self edges are allowed.
type Graph struct {
	deps map[string]pyimport.Set
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{deps: make(map[string]pyimport.Set)}
}

// Reset removes every edge so the graph can be rebuilt.
func (g *Graph) Reset() {
	clear(g.deps)
}

// AddDependency adds an edge from module to dep. Duplicate edges collapse.
func (g *Graph) AddDependency(module, dep string) {
	if module == "" || dep == "" {
		return
	}
	set, ok := g.deps[module]
	if !ok {
		set = pyimport.Set{}
		g.deps[module] = set
	}
	set.Add(dep)
}

// HasDependency reports whether the edge module -> dep exists.
func (g *Graph) HasDependency(module, dep string) bool {
	return g.deps[module].Has(dep)
}

// Modules returns the modules with outgoing edges in lexical order.
func (g *Graph) Modules() []string {
	names := make([]string, 0, len(g.deps))
	for n := range g.deps {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Dependencies returns the modules that module depends on in lexical order.
func (g *Graph) Dependencies(module string) []string {
	set, ok := g.deps[module]
	if !ok {
		return nil
	}
	return set.Sorted()
}

// Len returns the number of modules with outgoing edges.
func (g *Graph) Len() int {
	return len(g.deps)
}

// EdgeCount returns the total number of edges.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, set := range g.deps {
		n += len(set)
	}
	return n
}

// Directed is a gonum view of a Graph. Node IDs are assigned in lexical
// order of module names, so the view is stable for a given graph.
type Directed struct {
	graph *simple.DirectedGraph
	ids   map[string]int64
	names map[int64]string
}

// Directed builds a gonum view of g. simple.DirectedGraph has no self
// edges, so those are left out; use HasDependency(m, m) to find them.
func (g *Graph) Directed() *Directed {
	d := &Directed{
		graph: simple.NewDirectedGraph(),
		ids:   make(map[string]int64),
		names: make(map[int64]string),
	}

	nodes := pyimport.Set{}
	for from, set := range g.deps {
		nodes.Add(from)
		for to := range set {
			nodes.Add(to)
		}
	}
	for _, name := range nodes.Sorted() {
		id := int64(len(d.ids))
		d.ids[name] = id
		d.names[id] = name
		d.graph.AddNode(simple.Node(id))
	}

	for _, from := range g.Modules() {
		for _, to := range g.Dependencies(from) {
			if from == to {
				continue
			}
			d.graph.SetEdge(d.graph.NewEdge(d.graph.Node(d.ids[from]), d.graph.Node(d.ids[to])))
		}
	}

	return d
}

// Graph returns the underlying directed graph
func (d *Directed) Graph() *simple.DirectedGraph {
	return d.graph
}

// ID returns the node ID of a module.
func (d *Directed) ID(name string) (int64, bool) {
	id, ok := d.ids[name]
	return id, ok
}

// Name returns the module name of a node ID.
func (d *Directed) Name(id int64) string {
	return d.names[id]
}
