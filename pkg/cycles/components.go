package cycles

import (
	"sort"

	"gonum.org/v1/gonum/graph/topo"

	"github.com/ritzau/check-circular-import/pkg/graph"
)

// Components returns the strongly connected components of g that contain a
// cycle: every component of two or more modules, and single modules that
// import themselves. Each component is sorted, and components are ordered
// by their first module.
//
// Components complement Find: every module of every cycle Find reports is
// in exactly one component, and a component shows the full tangle that has
// to be broken up.
func Components(g *graph.Graph) [][]string {
	d := g.Directed()

	var out [][]string
	for _, scc := range topo.TarjanSCC(d.Graph()) {
		names := make([]string, 0, len(scc))
		for _, n := range scc {
			names = append(names, d.Name(n.ID()))
		}
		if len(names) == 1 && !g.HasDependency(names[0], names[0]) {
			continue
		}
		sort.Strings(names)
		out = append(out, names)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i][0] < out[j][0]
	})
	return out
}
