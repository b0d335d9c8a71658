// Package scc schedules both type and value declarations by strongly
// connected component, via Tarjan's algorithm, and tracks the
// reference buckets (values, constructors, types) used by the LSP for
// unused-import diagnostics and go-to-definition.
package scc

import "sort"

// Node is one module-local declaration (a type decl or a value decl),
// identified by name, with the set of names it references.
type Node struct {
	Name       string
	References map[string]bool
}

// Graph is a declaration dependency graph: one node per declaration,
// edges are name references.
type Graph struct {
	nodes   []*Node
	byName  map[string]*Node
}

func NewGraph() *Graph {
	return &Graph{byName: make(map[string]*Node)}
}

func (g *Graph) AddNode(name string) *Node {
	if n, ok := g.byName[name]; ok {
		return n
	}
	n := &Node{Name: name, References: make(map[string]bool)}
	g.nodes = append(g.nodes, n)
	g.byName[name] = n
	return n
}

// AddEdge records that `from` references `to`. Edges to names with no
// corresponding node (qualified imports, builtins) are no-ops: only
// module-local declarations participate in SCC scheduling, since a
// qualified reference can never close a same-module cycle.
func (g *Graph) AddEdge(from, to string) {
	if n, ok := g.byName[from]; ok {
		if _, isLocal := g.byName[to]; isLocal {
			n.References[to] = true
		}
	}
}

// Group is one strongly connected component, in dependency order (a
// group never references a later group).
type Group struct {
	Names       []string
	IsRecursive bool // true for a true cycle, or a node referencing itself
}

// SCCs computes Tarjan's strongly connected components and returns them
// in reverse topological order (dependencies before dependents): each
// SCC may assume every earlier SCC is already checked.
//
// deterministic selects between the two scheduling entry points: true
// sorts tie-breaking nodes by name (debug builds, tests); false relies
// on the graph's node insertion order, i.e. whatever order the caller
// built it in (the production variant).
func (g *Graph) SCCs(deterministic bool) []Group {
	t := &tarjan{
		graph:   g,
		index:   make(map[string]int),
		lowlink: make(map[string]int),
		onStack: make(map[string]bool),
	}

	order := g.nodes
	if deterministic {
		order = append([]*Node(nil), g.nodes...)
		sort.Slice(order, func(i, j int) bool { return order[i].Name < order[j].Name })
	}

	for _, n := range order {
		if _, visited := t.index[n.Name]; !visited {
			t.strongconnect(n, deterministic)
		}
	}

	// Tarjan emits SCCs in reverse topological order already (a
	// component is only completed once everything it points to has
	// been completed), so t.groups is already in the order we want.
	for i := range t.groups {
		if deterministic {
			sort.Strings(t.groups[i].Names)
		}
	}
	return t.groups
}

type tarjan struct {
	graph   *Graph
	index   map[string]int
	lowlink map[string]int
	onStack map[string]bool
	stack   []*Node
	counter int
	groups  []Group
}

func (t *tarjan) strongconnect(v *Node, deterministic bool) {
	t.index[v.Name] = t.counter
	t.lowlink[v.Name] = t.counter
	t.counter++
	t.stack = append(t.stack, v)
	t.onStack[v.Name] = true

	refs := sortedRefs(v.References, deterministic)
	for _, wname := range refs {
		w := t.graph.byName[wname]
		if w == nil {
			continue
		}
		if _, visited := t.index[w.Name]; !visited {
			t.strongconnect(w, deterministic)
			if t.lowlink[w.Name] < t.lowlink[v.Name] {
				t.lowlink[v.Name] = t.lowlink[w.Name]
			}
		} else if t.onStack[w.Name] {
			if t.index[w.Name] < t.lowlink[v.Name] {
				t.lowlink[v.Name] = t.index[w.Name]
			}
		}
	}

	if t.lowlink[v.Name] == t.index[v.Name] {
		var names []string
		for {
			n := len(t.stack) - 1
			w := t.stack[n]
			t.stack = t.stack[:n]
			t.onStack[w.Name] = false
			names = append(names, w.Name)
			if w.Name == v.Name {
				break
			}
		}
		recursive := len(names) > 1
		if len(names) == 1 && t.graph.byName[names[0]].References[names[0]] {
			recursive = true
		}
		t.groups = append(t.groups, Group{Names: names, IsRecursive: recursive})
	}
}

func sortedRefs(refs map[string]bool, deterministic bool) []string {
	out := make([]string, 0, len(refs))
	for r := range refs {
		out = append(out, r)
	}
	if deterministic {
		sort.Strings(out)
	}
	return out
}
