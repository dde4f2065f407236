package unlock

// State is a node's position relative to a learner.
type State string

const (
	StateLocked     State = "locked"
	StateAvailable  State = "available"
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
)

// Label returns the display label for a state.
func (s State) Label() string {
	switch s {
	case StateLocked:
		return "Locked"
	case StateAvailable:
		return "Available"
	case StateInProgress:
		return "In progress"
	case StateCompleted:
		return "Completed"
	default:
		return "Unknown"
	}
}

// Record is a learner's own progress on one node, before gating.
type Record struct {
	Started   bool
	Completed bool
}

// Input is everything Resolve needs besides the graph.
type Input struct {
	Records map[string]Record
	TotalXP int64

	// Preview renders an unpersonalized view: every well-formed node is
	// available and no learner records are read.
	Preview bool
}

// Resolution is the resolved state of every node in a graph.
type Resolution struct {
	States map[string]State
	Order  []string
	Issues []Issue
}

// State returns the resolved state of id; unknown ids are locked.
func (r Resolution) State(id string) State {
	if s, ok := r.States[id]; ok {
		return s
	}
	return StateLocked
}

// Count returns how many nodes resolved to s. With ids it only counts those
// nodes, treating unknown ids as locked.
func (r Resolution) Count(s State, ids ...string) int {
	n := 0
	if len(ids) > 0 {
		for _, id := range ids {
			if r.State(id) == s {
				n++
			}
		}
		return n
	}
	for _, st := range r.States {
		if st == s {
			n++
		}
	}
	return n
}

// Resolve computes every node's state in dependency order.
//
// A node is gated open when all prerequisites resolved to completed and the
// learner has at least XPRequired total XP. A closed gate locks the node
// whatever its own progress says, except that a recorded completion is never
// taken back. Nodes on or behind a cycle are always locked, and nodes with a
// dangling prerequisite can never open their gate.
func Resolve(g *Graph, in Input) Resolution {
	res := Resolution{
		States: make(map[string]State, len(g.vertices)),
		Order:  g.Order(),
		Issues: g.Issues(),
	}

	for i := range g.vertices {
		if g.blocked[i] {
			res.States[g.vertices[i].id] = StateLocked
		}
	}

	for _, i := range g.order {
		v := g.vertices[i]

		if in.Preview {
			if v.dangling {
				res.States[v.id] = StateLocked
			} else {
				res.States[v.id] = StateAvailable
			}
			continue
		}

		open := !v.dangling && in.TotalXP >= v.xpRequired
		for _, p := range v.prereqs {
			if res.States[g.vertices[p].id] != StateCompleted {
				open = false
				break
			}
		}

		rec := in.Records[v.id]
		switch {
		case rec.Completed:
			res.States[v.id] = StateCompleted
		case !open:
			res.States[v.id] = StateLocked
		case rec.Started:
			res.States[v.id] = StateInProgress
		default:
			res.States[v.id] = StateAvailable
		}
	}

	return res
}
