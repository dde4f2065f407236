package unlock

import (
	"testing"
)

func diamond() []Node {
	return []Node{
		{ID: "d", Prerequisites: []string{"b", "c"}},
		{ID: "b", Prerequisites: []string{"a"}},
		{ID: "c", Prerequisites: []string{"a"}},
		{ID: "a"},
	}
}

func TestBuild_TopologicalOrder(t *testing.T) {
	g := Build(diamond())
	order := g.Order()
	if len(order) != 4 {
		t.Fatalf("got %d nodes in order, want 4", len(order))
	}

	pos := make(map[string]int, len(order))
	for i, id := range order {
		pos[id] = i
	}
	for _, n := range diamond() {
		for _, p := range n.Prerequisites {
			if pos[p] >= pos[n.ID] {
				t.Errorf("%q (pos %d) appears before prerequisite %q (pos %d)", n.ID, pos[n.ID], p, pos[p])
			}
		}
	}
}

func TestBuild_DeterministicOrder(t *testing.T) {
	a := Build(diamond()).Order()
	nodes := diamond()
	nodes[0], nodes[3] = nodes[3], nodes[0]
	nodes[1], nodes[2] = nodes[2], nodes[1]
	b := Build(nodes).Order()

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("order differs by input order: %v vs %v", a, b)
		}
	}
}

func TestBuild_PrerequisitesAndDependents(t *testing.T) {
	g := Build(diamond())

	prereqs := g.Prerequisites("d")
	if len(prereqs) != 2 {
		t.Fatalf("d: got %d prereqs, want 2", len(prereqs))
	}
	deps := g.Dependents("a")
	if len(deps) != 2 || deps[0] != "b" || deps[1] != "c" {
		t.Errorf("a dependents = %v, want [b c]", deps)
	}
	if g.Prerequisites("missing") != nil {
		t.Error("unknown node should have no prerequisites")
	}
}

func TestBuild_DetectsCycle(t *testing.T) {
	g := Build([]Node{
		{ID: "a", Prerequisites: []string{"b"}},
		{ID: "b", Prerequisites: []string{"a"}},
		{ID: "c", Prerequisites: []string{"a"}},
		{ID: "root"},
	})

	if !g.InCycle("a") || !g.InCycle("b") {
		t.Error("a and b should be reported on a cycle")
	}
	if g.InCycle("c") {
		t.Error("c depends on a cycle but is not on one")
	}
	if g.InCycle("root") {
		t.Error("root is not on a cycle")
	}

	order := g.Order()
	if len(order) != 1 || order[0] != "root" {
		t.Errorf("order = %v, want only [root]", order)
	}

	cycles := 0
	for _, is := range g.Issues() {
		if is.Kind == IssueCycle {
			cycles++
		}
	}
	if cycles != 2 {
		t.Errorf("got %d cycle issues, want 2", cycles)
	}
}

func TestBuild_SelfLoop(t *testing.T) {
	g := Build([]Node{{ID: "a", Prerequisites: []string{"a"}}})
	if !g.InCycle("a") {
		t.Error("self-referencing node should be on a cycle")
	}
}

func TestBuild_CycleThroughSideBranch(t *testing.T) {
	// a -> b -> c -> a and b -> d -> c: d is on the second cycle.
	g := Build([]Node{
		{ID: "a", Prerequisites: []string{"c"}},
		{ID: "b", Prerequisites: []string{"a"}},
		{ID: "c", Prerequisites: []string{"b", "d"}},
		{ID: "d", Prerequisites: []string{"b"}},
	})
	for _, id := range []string{"a", "b", "c", "d"} {
		if !g.InCycle(id) {
			t.Errorf("%q should be on a cycle", id)
		}
	}
}

func TestBuild_DanglingPrerequisite(t *testing.T) {
	g := Build([]Node{
		{ID: "a"},
		{ID: "b", Prerequisites: []string{"a", "Intro to Flight"}},
	})

	issues := g.Issues()
	if len(issues) != 1 {
		t.Fatalf("got %d issues, want 1", len(issues))
	}
	if issues[0].Kind != IssueDangling || issues[0].NodeID != "b" || issues[0].Ref != "Intro to Flight" {
		t.Errorf("unexpected issue: %+v", issues[0])
	}
	if got := g.Prerequisites("b"); len(got) != 1 || got[0] != "a" {
		t.Errorf("b prereqs = %v, want [a]", got)
	}
}

func TestBuild_DuplicateID(t *testing.T) {
	g := Build([]Node{
		{ID: "a"},
		{ID: "a", Prerequisites: []string{"zzz"}},
	})
	if g.Len() != 1 {
		t.Errorf("Len = %d, want 1", g.Len())
	}
	issues := g.Issues()
	if len(issues) != 1 || issues[0].Kind != IssueDuplicate {
		t.Errorf("issues = %+v, want one duplicate", issues)
	}
}

func TestBuild_Empty(t *testing.T) {
	g := Build(nil)
	if g.Len() != 0 || len(g.Order()) != 0 || len(g.Issues()) != 0 {
		t.Error("empty graph should have no nodes, order, or issues")
	}
}
