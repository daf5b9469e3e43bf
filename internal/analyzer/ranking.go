package analyzer

import (
	"sort"

	"github.com/jacobarthurs/profileviz/internal/graph"
	"github.com/jacobarthurs/profileviz/internal/metrics"
)

// TopN is how many ranked operators receive a highlight.
const TopN = 5

// Highlight marks a node as one of the plan's slowest operators.
type Highlight int

const (
	HighlightNone Highlight = iota
	HighlightSlowest
	HighlightTop5
)

func (h Highlight) String() string {
	switch h {
	case HighlightSlowest:
		return "slowest"
	case HighlightTop5:
		return "top5"
	default:
		return ""
	}
}

func (h Highlight) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// Rank orders the nodes with a positive total time, slowest first. Nodes
// with equal time keep their depth-first order from the root.
func Rank(g *graph.Graph) []RankedOperator {
	var ranked []RankedOperator
	for _, id := range g.Preorder() {
		n := g.Nodes[id]
		t := n.TotalTime()
		if t <= 0 {
			continue
		}
		ranked = append(ranked, RankedOperator{
			ID:       n.ID,
			Name:     n.Name,
			Class:    n.Class,
			Time:     t,
			TimeText: metrics.FormatTime(t),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Time > ranked[j].Time
	})
	return ranked
}

// Highlights assigns Slowest to the first ranked operator and Top5 to the
// next four. The result depends only on ranked, so recomputing it from the
// same ranking never accumulates marks.
func Highlights(ranked []RankedOperator) map[graph.NodeID]Highlight {
	marks := make(map[graph.NodeID]Highlight, min(len(ranked), TopN))
	for i, op := range ranked {
		if i >= TopN {
			break
		}
		if i == 0 {
			marks[op.ID] = HighlightSlowest
		} else {
			marks[op.ID] = HighlightTop5
		}
	}
	return marks
}

// Summarize totals the ranked times against the graph.
func Summarize(g *graph.Graph, ranked []RankedOperator) Summary {
	s := Summary{
		NodeCount:  len(g.Nodes),
		TimedNodes: len(ranked),
		Shares:     make(map[graph.NodeID]float64, len(ranked)),
	}
	for _, op := range ranked {
		s.TotalTime += op.Time
	}
	if s.TotalTime == 0 {
		return s
	}
	for _, op := range ranked {
		s.Shares[op.ID] = op.Time / s.TotalTime * 100
	}
	return s
}
