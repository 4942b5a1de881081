package graph

import (
	"path/filepath"

	"github.com/ritzau/check-circular-import/pkg/model"
	"github.com/ritzau/check-circular-import/pkg/pyimport"
)

// Export converts g and its index to the serializable model. Every indexed
// module becomes a node; an edge target that is not a module (an imported
// function or class) becomes a symbol node whose parent is its owning module.
func Export(g *Graph, ix Index) *model.Graph {
	out := model.NewGraph()

	for _, name := range ix.Modules() {
		file := ix[name]
		kind := model.NodeModule
		if filepath.Base(file) == pyimport.InitBasename+pyimport.SourceExt {
			kind = model.NodePackage
		}
		out.AddNode(&model.Node{
			ID:       name,
			Type:     kind,
			Metadata: map[string]string{"file": file},
		})
	}

	for _, from := range g.Modules() {
		for _, to := range g.Dependencies(from) {
			if _, ok := out.Nodes[to]; !ok {
				out.AddNode(&model.Node{
					ID:     to,
					Type:   model.NodeSymbol,
					Parent: ix.Owner(to),
				})
			}
			out.AddEdge(&model.Edge{Source: from, Target: to, Type: model.EdgeImport})
		}
	}

	out.SortEdges()
	return out
}
