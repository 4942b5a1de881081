package cycles

import (
	"strings"
)

// Cycle is a closed walk of module names. The first module is not repeated
// at the end: [a b] means a imports b and b imports a.
type Cycle []string

// Graph is the view of a dependency graph the finder walks.
type Graph interface {
	// Modules returns the modules to start walks from, in walk order.
	Modules() []string
	// Dependencies returns the modules a module imports, in walk order.
	Dependencies(module string) []string
}

// Normalize rotates a cycle to start at its lexically smallest module,
// after dropping a trailing repeat of the first module. Rotations of the
// same walk normalize to the same Cycle.
func Normalize(walk []string) Cycle {
	c := append(Cycle(nil), walk...)
	if len(c) <= 1 {
		return c
	}
	if c[0] == c[len(c)-1] {
		c = c[:len(c)-1]
	}

	start := 0
	for i := range c {
		if c[i] < c[start] {
			start = i
		}
	}
	return append(append(Cycle(nil), c[start:]...), c[:start]...)
}

// key identifies a normalized cycle. Module names never contain NUL.
func (c Cycle) key() string {
	return strings.Join(c, "\x00")
}

// Modules returns the distinct modules in the cycle.
func (c Cycle) Modules() []string {
	seen := make(map[string]bool, len(c))
	out := make([]string, 0, len(c))
	for _, m := range c {
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out
}

// frame is one module on the active DFS path.
type frame struct {
	module string
	deps   []string
	next   int
}

// Find returns the distinct cycles of g, normalized, in the order they are
// first found.
//
// It is a depth-first walk from every module not yet explored. Reaching a
// module that is on the current path closes a cycle; reaching one that was
// explored from an earlier path is a dead end. Each module is therefore
// expanded once, which bounds the walk by nodes plus edges. The same cycle
// can be reached more than once, so results are normalized and deduplicated.
//
// The path is an explicit stack rather than recursion, so import chains of
// any length are safe.
func Find(g Graph) []Cycle {
	var found []Cycle
	visited := make(map[string]bool)

	for _, start := range g.Modules() {
		if visited[start] {
			continue
		}
		found = walk(g, start, visited, found)
	}

	return dedupe(found)
}

func walk(g Graph, start string, visited map[string]bool, found []Cycle) []Cycle {
	var path []frame
	onPath := make(map[string]int)

	visit := func(module string) {
		if at, ok := onPath[module]; ok {
			cycle := make(Cycle, 0, len(path)-at+1)
			for _, f := range path[at:] {
				cycle = append(cycle, f.module)
			}
			found = append(found, append(cycle, module))
			return
		}
		if visited[module] {
			return
		}
		visited[module] = true
		onPath[module] = len(path)
		path = append(path, frame{module: module, deps: g.Dependencies(module)})
	}

	visit(start)
	for len(path) > 0 {
		top := &path[len(path)-1]
		if top.next < len(top.deps) {
			dep := top.deps[top.next]
			top.next++
			visit(dep)
			continue
		}
		delete(onPath, top.module)
		path = path[:len(path)-1]
	}

	return found
}

func dedupe(found []Cycle) []Cycle {
	unique := make([]Cycle, 0, len(found))
	seen := make(map[string]bool, len(found))
	for _, c := range found {
		n := Normalize(c)
		k := n.key()
		if seen[k] {
			continue
		}
		seen[k] = true
		unique = append(unique, n)
	}
	return unique
}
