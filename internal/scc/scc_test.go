package scc

import "testing"

func namesOf(groups []Group) []string {
	var out []string
	for _, g := range groups {
		out = append(out, g.Names...)
	}
	return out
}

func TestSCCsOrdersDependenciesBeforeDependents(t *testing.T) {
	g := NewGraph()
	g.AddNode("a")
	g.AddNode("b")
	g.AddNode("c")
	g.AddEdge("c", "b")
	g.AddEdge("b", "a")

	groups := g.SCCs(true)
	order := namesOf(groups)
	posA, posB, posC := indexOf(order, "a"), indexOf(order, "b"), indexOf(order, "c")
	if !(posA < posB && posB < posC) {
		t.Fatalf("expected a before b before c, got %v", order)
	}
	for _, grp := range groups {
		if grp.IsRecursive {
			t.Errorf("no group should be recursive in an acyclic graph, got %v", grp)
		}
	}
}

func TestSCCsDetectsCycle(t *testing.T) {
	// a = b; b = a; — Scenario F, a true mutual cycle.
	g := NewGraph()
	g.AddNode("a")
	g.AddNode("b")
	g.AddEdge("a", "b")
	g.AddEdge("b", "a")

	groups := g.SCCs(true)
	if len(groups) != 1 {
		t.Fatalf("expected a and b in one SCC, got %d groups", len(groups))
	}
	if !groups[0].IsRecursive {
		t.Error("expected the mutual cycle to be marked recursive")
	}
}

func TestSCCsSelfReferenceIsRecursive(t *testing.T) {
	g := NewGraph()
	g.AddNode("fact")
	g.AddEdge("fact", "fact")

	groups := g.SCCs(true)
	if len(groups) != 1 || !groups[0].IsRecursive {
		t.Fatalf("expected a self-referencing node to form one recursive group, got %v", groups)
	}
}

func TestAddEdgeIgnoresQualifiedOrUnknownTargets(t *testing.T) {
	g := NewGraph()
	g.AddNode("a")
	g.AddEdge("a", "M.foo") // qualified import reference: not a local node
	groups := g.SCCs(true)
	if len(groups) != 1 || len(groups[0].Names) != 1 {
		t.Fatalf("expected a single isolated node, got %v", groups)
	}
}

func TestScopeRestoresShadowedCounts(t *testing.T) {
	b := NewBuckets()
	b.Value("x")
	b.Value("x")

	scope := &Scope{}
	scope.Shadow(b.Values, "x")
	if _, ok := b.Values["x"]; ok {
		t.Fatal("expected x to be hidden while shadowed")
	}
	b.Value("x") // the inner binder's own use

	scope.Exit()
	if b.Values["x"] != 2 {
		t.Errorf("expected outer count restored to 2, got %d", b.Values["x"])
	}
}

func indexOf(xs []string, target string) int {
	for i, x := range xs {
		if x == target {
			return i
		}
	}
	return -1
}
