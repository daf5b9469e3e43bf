package graph

// VisitSet records nodes already reached by a traversal.
type VisitSet map[NodeID]struct{}

// Mark adds id and reports whether it was new.
func (v VisitSet) Mark(id NodeID) bool {
	if _, seen := v[id]; seen {
		return false
	}
	v[id] = struct{}{}
	return true
}

func (v VisitSet) Has(id NodeID) bool {
	_, ok := v[id]
	return ok
}

// Visitor holds the callbacks of Walk. Either may be nil.
type Visitor struct {
	// Enter runs before a node's children; returning false skips them.
	Enter func(n *Node, parent *Node, depth int) bool
	// Leave runs after a node's children, receiving only the children this
	// walk actually descended into.
	Leave func(n *Node, children []*Node)
}

// Walk performs a depth-first traversal from id. Nodes already in seen, and
// ids missing from the graph, are skipped, so the walk terminates on cyclic
// or duplicated topologies. It reports whether id was visited.
func (g *Graph) Walk(id NodeID, seen VisitSet, v Visitor) bool {
	return g.walk(id, nil, 0, seen, v)
}

func (g *Graph) walk(id NodeID, parent *Node, depth int, seen VisitSet, v Visitor) bool {
	n, ok := g.Nodes[id]
	if !ok || !seen.Mark(id) {
		return false
	}

	descend := true
	if v.Enter != nil {
		descend = v.Enter(n, parent, depth)
	}

	var visited []*Node
	if descend {
		for _, child := range n.Children {
			if g.walk(child, n, depth+1, seen, v) {
				visited = append(visited, g.Nodes[child])
			}
		}
	}

	if v.Leave != nil {
		v.Leave(n, visited)
	}
	return true
}

// Preorder lists the nodes reachable from the root in depth-first order.
func (g *Graph) Preorder() []NodeID {
	var ids []NodeID
	g.Walk(g.Root, VisitSet{}, Visitor{
		Enter: func(n *Node, _ *Node, _ int) bool {
			ids = append(ids, n.ID)
			return true
		},
	})
	return ids
}

// Edge is a parent->child link of the plan tree.
type Edge struct {
	From NodeID
	To   NodeID
}

// Edges lists the tree edges reached from the root, parents first.
func (g *Graph) Edges() []Edge {
	var edges []Edge
	g.Walk(g.Root, VisitSet{}, Visitor{
		Enter: func(n *Node, parent *Node, _ int) bool {
			if parent != nil {
				edges = append(edges, Edge{From: parent.ID, To: n.ID})
			}
			return true
		},
	})
	return edges
}

// Descendants returns id and every node below it, breadth first. An unknown
// id yields nil.
func (g *Graph) Descendants(id NodeID) []NodeID {
	if _, ok := g.Nodes[id]; !ok {
		return nil
	}

	seen := VisitSet{}
	seen.Mark(id)
	queue := []NodeID{id}

	idx := 0
	for idx < len(queue) {
		current := queue[idx]
		idx++

		for _, child := range g.Nodes[current].Children {
			if _, ok := g.Nodes[child]; !ok {
				continue
			}
			if seen.Mark(child) {
				queue = append(queue, child)
			}
		}
	}
	return queue
}

// Parents maps every reachable non-root node to its parent. It is computed
// from the root on first use and cached for the graph's lifetime.
func (g *Graph) Parents() map[NodeID]NodeID {
	if g.parents != nil {
		return g.parents
	}
	parents := make(map[NodeID]NodeID, len(g.Nodes))
	g.Walk(g.Root, VisitSet{}, Visitor{
		Enter: func(n *Node, parent *Node, _ int) bool {
			if parent != nil {
				parents[n.ID] = parent.ID
			}
			return true
		},
	})
	g.parents = parents
	return parents
}

// Ancestors returns id followed by its parent chain up to the root. An
// unknown id yields nil.
func (g *Graph) Ancestors(id NodeID) []NodeID {
	if _, ok := g.Nodes[id]; !ok {
		return nil
	}

	parents := g.Parents()
	seen := VisitSet{}
	var chain []NodeID
	for current := id; seen.Mark(current); {
		chain = append(chain, current)
		parent, ok := parents[current]
		if !ok {
			break
		}
		current = parent
	}
	return chain
}
