package analyzer

import (
	"sort"

	"github.com/jacobarthurs/profileviz/internal/graph"
)

// PlanContext carries plan-wide figures that rules compare a node against.
type PlanContext struct {
	Graph   *graph.Graph
	Summary Summary
}

func Analyze(g *graph.Graph) AnalysisResult {
	ranked := Rank(g)
	result := AnalysisResult{
		Ranked:  ranked,
		Summary: Summarize(g, ranked),
	}
	ctx := &PlanContext{Graph: g, Summary: result.Summary}

	g.Walk(g.Root, graph.VisitSet{}, graph.Visitor{
		Enter: func(n *graph.Node, parent *graph.Node, _ int) bool {
			for _, rule := range defaultRules {
				result.Findings = append(result.Findings, rule(n, parent, ctx)...)
			}
			return true
		},
	})

	// Sort findings
	sort.SliceStable(result.Findings, func(i, j int) bool {
		return result.Findings[i].Severity > result.Findings[j].Severity
	})

	return result
}
