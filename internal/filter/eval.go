package filter

import (
	"github.com/jacobarthurs/profileviz/internal/graph"
)

// NodeState is how a node is drawn under a filter.
type NodeState int

const (
	Normal NodeState = iota
	Matched
	Dimmed
	Hidden
)

func (s NodeState) String() string {
	switch s {
	case Matched:
		return "matched"
	case Dimmed:
		return "dimmed"
	case Hidden:
		return "hidden"
	default:
		return "normal"
	}
}

func (s NodeState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Result is a query evaluated against one graph.
type Result struct {
	Active   bool
	Hide     bool
	Matching graph.VisitSet
	// IDs lists the matching nodes in topology order.
	IDs []graph.NodeID
}

// Evaluate intersects the terms of each group and unions the groups. Only
// nodes reachable from the root can match. An empty spec evaluates to an
// inactive result.
func Evaluate(g *graph.Graph, spec Spec) Result {
	if spec.Empty() {
		return Result{}
	}

	reachable := graph.VisitSet{}
	for _, id := range g.Preorder() {
		reachable.Mark(id)
	}

	matching := graph.VisitSet{}
	for _, group := range spec.Groups {
		if len(group) == 0 {
			continue
		}
		acc := group[0].Select(g)
		for _, sel := range group[1:] {
			acc = intersect(acc, sel.Select(g))
		}
		for id := range acc {
			if reachable.Has(id) {
				matching.Mark(id)
			}
		}
	}

	res := Result{Active: true, Hide: spec.Hide, Matching: matching}
	for _, id := range g.Order {
		if matching.Has(id) {
			res.IDs = append(res.IDs, id)
		}
	}
	return res
}

func (r Result) State(id graph.NodeID) NodeState {
	switch {
	case !r.Active:
		return Normal
	case r.Matching.Has(id):
		return Matched
	case r.Hide:
		return Hidden
	default:
		return Dimmed
	}
}

// EdgeVisible reports whether an edge is drawn at full strength: both ends
// must match an active filter.
func (r Result) EdgeVisible(from, to graph.NodeID) bool {
	if !r.Active {
		return true
	}
	return r.Matching.Has(from) && r.Matching.Has(to)
}

func intersect(a, b graph.VisitSet) graph.VisitSet {
	out := graph.VisitSet{}
	for id := range a {
		if b.Has(id) {
			out.Mark(id)
		}
	}
	return out
}
