package unlock

import (
	"slices"
	"sort"
)

// Node is one vertex of a prerequisite graph: a module or a skill node.
// Prerequisites reference other nodes by stable id only.
type Node struct {
	ID            string
	Prerequisites []string
	XPRequired    int64
}

// IssueKind classifies a content-authoring problem found while building a graph.
type IssueKind string

const (
	IssueDuplicate IssueKind = "duplicate_id"
	IssueDangling  IssueKind = "dangling_prerequisite"
	IssueCycle     IssueKind = "cycle"
)

// Issue is a malformed-content finding. Ref names the offending prerequisite
// for dangling references.
type Issue struct {
	Kind   IssueKind
	NodeID string
	Ref    string
}

type vertex struct {
	id         string
	prereqs    []int
	dependents []int
	dangling   bool
	xpRequired int64
}

// Graph is an arena of nodes with index-based prerequisite edges and a
// precomputed topological order.
type Graph struct {
	vertices []vertex
	index    map[string]int
	order    []int  // topological order of nodes not blocked by a cycle
	blocked  []bool // on a cycle or downstream of one
	cyclic   []bool
	issues   []Issue
}

// Build constructs the graph and its topological order (Kahn's algorithm).
// Duplicate ids keep the first node. Unknown prerequisite ids are dropped from
// the edge list and flag the node as dangling.
func Build(nodes []Node) *Graph {
	g := &Graph{
		index: make(map[string]int, len(nodes)),
	}

	for _, n := range nodes {
		if _, dup := g.index[n.ID]; dup {
			g.issues = append(g.issues, Issue{Kind: IssueDuplicate, NodeID: n.ID})
			continue
		}
		g.index[n.ID] = len(g.vertices)
		g.vertices = append(g.vertices, vertex{id: n.ID, xpRequired: n.XPRequired})
	}

	// Resolve edges by id, once.
	seen := make(map[string]bool)
	for _, n := range nodes {
		i := g.index[n.ID]
		v := &g.vertices[i]
		if v.prereqs != nil || v.dangling {
			continue // duplicate id; first definition wins
		}
		clear(seen)
		v.prereqs = make([]int, 0, len(n.Prerequisites))
		for _, ref := range n.Prerequisites {
			if seen[ref] {
				continue
			}
			seen[ref] = true
			j, ok := g.index[ref]
			if !ok {
				v.dangling = true
				g.issues = append(g.issues, Issue{Kind: IssueDangling, NodeID: n.ID, Ref: ref})
				continue
			}
			v.prereqs = append(v.prereqs, j)
		}
	}
	for i := range g.vertices {
		for _, j := range g.vertices[i].prereqs {
			g.vertices[j].dependents = append(g.vertices[j].dependents, i)
		}
	}

	g.sort()
	g.markCycles()
	return g
}

// sort computes the topological order with deterministic tie-breaking by id.
func (g *Graph) sort() {
	n := len(g.vertices)
	inDegree := make([]int, n)
	var queue []int
	for i := range g.vertices {
		inDegree[i] = len(g.vertices[i].prereqs)
		if inDegree[i] == 0 {
			queue = append(queue, i)
		}
	}
	g.sortByID(queue)

	g.order = make([]int, 0, n)
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		g.order = append(g.order, i)

		deps := slices.Clone(g.vertices[i].dependents)
		g.sortByID(deps)
		for _, d := range deps {
			inDegree[d]--
			if inDegree[d] == 0 {
				queue = append(queue, d)
			}
		}
	}

	g.blocked = make([]bool, n)
	for i := range inDegree {
		if inDegree[i] > 0 {
			g.blocked[i] = true
		}
	}
}

// markCycles finds the nodes that sit on a cycle (Tarjan's strongly connected
// components restricted to blocked nodes). Blocked nodes that are not on a
// cycle only depend on one.
func (g *Graph) markCycles() {
	n := len(g.vertices)
	g.cyclic = make([]bool, n)

	idx := make([]int, n)
	low := make([]int, n)
	onStack := make([]bool, n)
	for i := range idx {
		idx[i] = -1
	}
	var stack []int
	next := 0

	var connect func(v int)
	connect = func(v int) {
		idx[v] = next
		low[v] = next
		next++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.vertices[v].prereqs {
			if !g.blocked[w] {
				continue
			}
			if idx[w] == -1 {
				connect(w)
				low[v] = min(low[v], low[w])
			} else if onStack[w] {
				low[v] = min(low[v], idx[w])
			}
		}

		if low[v] != idx[v] {
			return
		}
		var component []int
		for {
			w := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[w] = false
			component = append(component, w)
			if w == v {
				break
			}
		}
		if len(component) > 1 || slices.Contains(g.vertices[v].prereqs, v) {
			for _, w := range component {
				g.cyclic[w] = true
			}
		}
	}

	for i := range g.vertices {
		if g.blocked[i] && idx[i] == -1 {
			connect(i)
		}
	}

	var cycleIDs []string
	for i, c := range g.cyclic {
		if c {
			cycleIDs = append(cycleIDs, g.vertices[i].id)
		}
	}
	sort.Strings(cycleIDs)
	for _, id := range cycleIDs {
		g.issues = append(g.issues, Issue{Kind: IssueCycle, NodeID: id})
	}
}

func (g *Graph) sortByID(ids []int) {
	sort.Slice(ids, func(a, b int) bool {
		return g.vertices[ids[a]].id < g.vertices[ids[b]].id
	})
}

// Len returns the number of distinct nodes.
func (g *Graph) Len() int {
	return len(g.vertices)
}

// Has reports whether id is a node of the graph.
func (g *Graph) Has(id string) bool {
	_, ok := g.index[id]
	return ok
}

// Order returns the ids of all nodes not blocked by a cycle, prerequisites first.
func (g *Graph) Order() []string {
	ids := make([]string, len(g.order))
	for i, v := range g.order {
		ids[i] = g.vertices[v].id
	}
	return ids
}

// Prerequisites returns the resolved prerequisite ids of a node.
func (g *Graph) Prerequisites(id string) []string {
	i, ok := g.index[id]
	if !ok {
		return nil
	}
	ids := make([]string, len(g.vertices[i].prereqs))
	for k, j := range g.vertices[i].prereqs {
		ids[k] = g.vertices[j].id
	}
	return ids
}

// Dependents returns the ids of nodes that directly require id.
func (g *Graph) Dependents(id string) []string {
	i, ok := g.index[id]
	if !ok {
		return nil
	}
	ids := make([]string, len(g.vertices[i].dependents))
	for k, j := range g.vertices[i].dependents {
		ids[k] = g.vertices[j].id
	}
	sort.Strings(ids)
	return ids
}

// InCycle reports whether id sits on a prerequisite cycle.
func (g *Graph) InCycle(id string) bool {
	i, ok := g.index[id]
	return ok && g.cyclic[i]
}

// Issues returns the malformed-content findings in discovery order.
func (g *Graph) Issues() []Issue {
	return slices.Clone(g.issues)
}
