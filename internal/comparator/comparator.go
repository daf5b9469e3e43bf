package comparator

import (
	"github.com/jacobarthurs/profileviz/internal/analyzer"
	"github.com/jacobarthurs/profileviz/internal/graph"
)

type Comparator struct {
	Threshold float64
}

// Compare aligns the two plan trees by position from the root and reports
// per-node time changes.
func (c *Comparator) Compare(old, new *graph.Graph) ComparisonResult {
	oldTotal := analyzer.Summarize(old, analyzer.Rank(old)).TotalTime
	newTotal := analyzer.Summarize(new, analyzer.Rank(new)).TotalTime

	w := &walker{c: c, oldG: old, newG: new, oldSeen: graph.VisitSet{}, newSeen: graph.VisitSet{}}
	rootDelta := w.diffNodes(old.Nodes[old.Root], new.Nodes[new.Root])

	summary := Summary{
		OldTotalTime: oldTotal,
		NewTotalTime: newTotal,
		TimeDelta:    newTotal - oldTotal,
		TimePct:      pctChange(oldTotal, newTotal),
		TimeDir:      c.direction(oldTotal, newTotal, true),

		OldNodes: len(old.Nodes),
		NewNodes: len(new.Nodes),
	}

	countChanges(&rootDelta, &summary)
	summary.Verdict = verdict(summary)

	return ComparisonResult{
		Deltas:  []NodeDelta{rootDelta},
		Summary: summary,
	}
}

func countChanges(delta *NodeDelta, summary *Summary) {
	switch delta.ChangeType {
	case Added:
		summary.NodesAdded++
	case Removed:
		summary.NodesRemoved++
	case Modified:
		summary.NodesModified++
	case TypeChanged:
		summary.NodesTypeChanged++
	}

	for i := range delta.Children {
		countChanges(&delta.Children[i], summary)
	}
}

func verdict(s Summary) string {
	reshaped := s.NodesAdded+s.NodesRemoved+s.NodesTypeChanged > 0
	switch {
	case s.TimeDir == Improved && reshaped:
		return "faster with a different plan"
	case s.TimeDir == Improved:
		return "faster"
	case s.TimeDir == Regressed && reshaped:
		return "slower with a different plan"
	case s.TimeDir == Regressed:
		return "slower"
	case reshaped:
		return "similar time with a different plan"
	default:
		return "no significant change"
	}
}
