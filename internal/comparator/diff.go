package comparator

import (
	"math"

	"github.com/jacobarthurs/profileviz/internal/graph"
)

type walker struct {
	c       *Comparator
	oldG    *graph.Graph
	newG    *graph.Graph
	oldSeen graph.VisitSet
	newSeen graph.VisitSet
}

func (w *walker) diffNodes(old, new *graph.Node) NodeDelta {
	w.oldSeen.Mark(old.ID)
	w.newSeen.Mark(new.ID)

	delta := NodeDelta{
		OldID: old.ID,
		NewID: new.ID,
		Table: coalesce(old.TableName(), new.TableName()),
	}

	if old.Name != new.Name {
		delta.ChangeType = TypeChanged
		delta.OldName = old.Name
		delta.NewName = new.Name
		delta.Name = new.Name
	} else {
		delta.ChangeType = Modified
		delta.Name = old.Name
	}

	delta.OldTime = old.TotalTime()
	delta.NewTime = new.TotalTime()
	delta.TimeDelta = delta.NewTime - delta.OldTime
	delta.TimePct = pctChange(delta.OldTime, delta.NewTime)
	delta.TimeDir = w.c.direction(delta.OldTime, delta.NewTime, true)

	delta.OldRows = old.OutputRows()
	delta.NewRows = new.OutputRows()
	delta.RowsPct = pctChange(float64(delta.OldRows), float64(delta.NewRows))

	delta.OldSkew, _ = old.Metrics.Skew()
	delta.NewSkew, _ = new.Metrics.Skew()

	if delta.ChangeType == Modified && !w.c.isSignificant(delta) {
		delta.ChangeType = NoChange
	}

	delta.Children = w.diffChildren(w.children(w.oldG, w.oldSeen, old), w.children(w.newG, w.newSeen, new))

	return delta
}

// children lists the existing, not yet visited children of n.
func (w *walker) children(g *graph.Graph, seen graph.VisitSet, n *graph.Node) []*graph.Node {
	var kids []*graph.Node
	for _, id := range n.Children {
		if child, ok := g.Nodes[id]; ok && !seen.Has(id) {
			kids = append(kids, child)
		}
	}
	return kids
}

func (w *walker) diffChildren(oldKids, newKids []*graph.Node) []NodeDelta {
	var deltas []NodeDelta

	for i := 0; i < max(len(oldKids), len(newKids)); i++ {
		if i >= len(oldKids) {
			deltas = append(deltas, w.addedNode(newKids[i]))
			continue
		}
		if i >= len(newKids) {
			deltas = append(deltas, w.removedNode(oldKids[i]))
			continue
		}
		deltas = append(deltas, w.diffNodes(oldKids[i], newKids[i]))
	}

	return deltas
}

func (w *walker) addedNode(node *graph.Node) NodeDelta {
	w.newSeen.Mark(node.ID)
	delta := NodeDelta{
		ChangeType: Added,
		Name:       node.Name,
		Table:      node.TableName(),
		NewID:      node.ID,
		NewTime:    node.TotalTime(),
		NewRows:    node.OutputRows(),
	}

	for _, child := range w.children(w.newG, w.newSeen, node) {
		delta.Children = append(delta.Children, w.addedNode(child))
	}

	return delta
}

func (w *walker) removedNode(node *graph.Node) NodeDelta {
	w.oldSeen.Mark(node.ID)
	delta := NodeDelta{
		ChangeType: Removed,
		Name:       node.Name,
		Table:      node.TableName(),
		OldID:      node.ID,
		OldTime:    node.TotalTime(),
		OldRows:    node.OutputRows(),
	}

	for _, child := range w.children(w.oldG, w.oldSeen, node) {
		delta.Children = append(delta.Children, w.removedNode(child))
	}

	return delta
}

func (c *Comparator) isSignificant(d NodeDelta) bool {
	if math.Abs(d.TimePct) > c.Threshold {
		return true
	}
	if math.Abs(d.RowsPct) > c.Threshold {
		return true
	}
	return false
}

func (c *Comparator) direction(old, new float64, lowerPreference bool) Direction {
	if math.Abs(pctChange(old, new)) < c.Threshold {
		return Unchanged
	}
	if lowerPreference {
		if new < old {
			return Improved
		}
		return Regressed
	}
	if new > old {
		return Improved
	}
	return Regressed
}

func pctChange(old, new float64) float64 {
	if old == 0 {
		if new == 0 {
			return 0
		}
		return 100
	}
	return ((new - old) / old) * 100
}

func coalesce(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
