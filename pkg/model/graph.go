package model

import "sort"

// Node types
const (
	NodeModule  = "module"  // a .py file
	NodePackage = "package" // a package __init__.py
	NodeSymbol  = "symbol"  // an imported name that is not itself a module
)

// EdgeImport is the only edge type: the source module imports the target.
const EdgeImport = "import"

// Graph is the serializable form of a module dependency graph, used when
// a report includes the full graph.
type Graph struct {
	Nodes map[string]*Node `json:"nodes" yaml:"nodes"`
	Edges []*Edge          `json:"edges" yaml:"edges"`
}

// NewGraph creates a new empty graph.
func NewGraph() *Graph {
	return &Graph{
		Nodes: make(map[string]*Node),
		Edges: make([]*Edge, 0),
	}
}

// Node is a module, package or imported symbol.
type Node struct {
	ID       string            `json:"id" yaml:"id"`
	Type     string            `json:"type" yaml:"type"`
	Parent   string            `json:"parent,omitempty" yaml:"parent,omitempty"` // for symbols: the module that owns them
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Edge represents a directed connection between two nodes.
type Edge struct {
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
	Type   string `json:"type" yaml:"type"`
}

// AddNode adds a node to the graph. If a node with the same ID exists, it updates it.
func (g *Graph) AddNode(node *Node) {
	g.Nodes[node.ID] = node
}

// AddEdge adds an edge to the graph.
func (g *Graph) AddEdge(edge *Edge) {
	g.Edges = append(g.Edges, edge)
}

// SortEdges orders edges by source, then target.
func (g *Graph) SortEdges() {
	sort.Slice(g.Edges, func(i, j int) bool {
		if g.Edges[i].Source != g.Edges[j].Source {
			return g.Edges[i].Source < g.Edges[j].Source
		}
		return g.Edges[i].Target < g.Edges[j].Target
	})
}
