package analyzer

import (
	"fmt"

	"github.com/jacobarthurs/profileviz/internal/graph"
	"github.com/jacobarthurs/profileviz/internal/metrics"
)

const (
	DominantWarningPct  = 25.0
	DominantCriticalPct = 50.0

	SkewWarningRatio  = 2.0
	SkewCriticalRatio = 5.0
	MinTimeForSkew    = 1000.0 // us

	MinRowsForBuildWarning = 10000

	NetworkSharePct          = 50.0
	MinTimeForNetworkFinding = 1000.0 // us

	MinRowsForLargeScan    = 1000000
	MinRowsForCriticalScan = 100000000

	HashTableWarningBytes = 1 << 30
)

type Rule func(node *graph.Node, parent *graph.Node, ctx *PlanContext) []Finding

var defaultRules = []Rule{
	checkDominantOperator,
	checkTimeSkew,
	checkBuildLargerThanProbe,
	checkNetworkBoundExchange,
	checkLargeScan,
	checkLargeHashTable,
}

func checkDominantOperator(node *graph.Node, parent *graph.Node, ctx *PlanContext) []Finding {
	share, ok := ctx.Summary.Shares[node.ID]
	if !ok || share < DominantWarningPct {
		return nil
	}

	severity := Warning
	if share >= DominantCriticalPct {
		severity = Critical
	}

	var suggestion string
	switch node.Class {
	case metrics.ClassJoin:
		suggestion = "Check the join order and distribution mode; a large build side or broadcast is a common cause"
	case metrics.ClassScan:
		suggestion = fmt.Sprintf("Check predicate pushdown and partition pruning on %s", orUnknown(node.TableName()))
	case metrics.ClassExchange:
		suggestion = "Reduce the rows shuffled by filtering or pre-aggregating below the exchange"
	case metrics.ClassAggregate:
		suggestion = "Check grouping key cardinality; consider pre-aggregation or a streaming aggregate"
	case metrics.ClassProject, metrics.ClassUnion, metrics.ClassOther:
		suggestion = "Inspect the operator's detail metrics"
	}

	return []Finding{{
		Severity:    severity,
		NodeID:      node.ID,
		Label:       node.Label(),
		Description: fmt.Sprintf("%s accounts for %.2f%% of operator time (%s)", node.Label(), share, metrics.FormatTime(node.TotalTime())),
		Suggestion:  suggestion,
	}}
}

func checkTimeSkew(node *graph.Node, parent *graph.Node, ctx *PlanContext) []Finding {
	if node.TotalTime() < MinTimeForSkew {
		return nil
	}
	ratio, ok := node.Metrics.Skew()
	if !ok || ratio < SkewWarningRatio {
		return nil
	}

	severity := Warning
	if ratio >= SkewCriticalRatio {
		severity = Critical
	}

	return []Finding{{
		Severity:    severity,
		NodeID:      node.ID,
		Label:       node.Label(),
		Description: fmt.Sprintf("%s parallel instances differ %.2fx in operator time", node.Label(), ratio),
		Suggestion:  "Check for data skew on the distribution or bucketing key",
	}}
}

func checkBuildLargerThanProbe(node *graph.Node, parent *graph.Node, ctx *PlanContext) []Finding {
	if node.Class != metrics.ClassJoin {
		return nil
	}
	v := node.Metrics.JoinView()
	if v.Build == nil || v.Probe == nil {
		return nil
	}
	if v.BuildRows < MinRowsForBuildWarning || v.BuildRows <= v.ProbeRows {
		return nil
	}

	return []Finding{{
		Severity: Warning,
		NodeID:   node.ID,
		Label:    node.Label(),
		Description: fmt.Sprintf("%s builds a hash table from %s rows but probes only %s",
			node.Label(), metrics.FormatRows(v.BuildRows), metrics.FormatRows(v.ProbeRows)),
		Suggestion: "Swap the join sides so the smaller input is built; refresh table statistics",
	}}
}

func checkNetworkBoundExchange(node *graph.Node, parent *graph.Node, ctx *PlanContext) []Finding {
	if node.Class != metrics.ClassExchange {
		return nil
	}
	v := node.Metrics.ExchangeView()
	if v.Total < MinTimeForNetworkFinding {
		return nil
	}
	pct := v.NetworkTime / v.Total * 100
	if pct < NetworkSharePct {
		return nil
	}

	return []Finding{{
		Severity: Info,
		NodeID:   node.ID,
		Label:    node.Label(),
		Description: fmt.Sprintf("%s spends %.0f%% of its time on the network (%s, %s sent)",
			node.Label(), pct, metrics.FormatTime(v.NetworkTime), metrics.FormatBytes(v.BytesSent)),
		Suggestion: "Consider a colocated or bucket shuffle join to avoid moving rows",
	}}
}

func checkLargeScan(node *graph.Node, parent *graph.Node, ctx *PlanContext) []Finding {
	if node.Class != metrics.ClassScan {
		return nil
	}
	rows := node.OutputRows()
	if rows < MinRowsForLargeScan {
		return nil
	}

	severity := Info
	if rows >= MinRowsForCriticalScan {
		severity = Warning
	}

	desc := fmt.Sprintf("Scan of %s returns %s rows", orUnknown(node.TableName()), metrics.FormatRows(rows))
	if parent != nil && parent.Class == metrics.ClassJoin {
		desc += fmt.Sprintf(" into %s", parent.Label())
	}

	return []Finding{{
		Severity:    severity,
		NodeID:      node.ID,
		Label:       node.Label(),
		Description: desc,
		Suggestion:  "Add a selective predicate, partition filter or runtime filter on the scan",
	}}
}

func checkLargeHashTable(node *graph.Node, parent *graph.Node, ctx *PlanContext) []Finding {
	if node.Class != metrics.ClassJoin && node.Class != metrics.ClassAggregate {
		return nil
	}
	if node.Metrics == nil {
		return nil
	}

	var largest float64
	for _, inst := range node.Metrics.Instances {
		largest = max(largest, metrics.ParseBytes(inst.Metric(metrics.HashTableMemoryUsage)))
	}
	if largest < HashTableWarningBytes {
		return nil
	}

	return []Finding{{
		Severity:    Warning,
		NodeID:      node.ID,
		Label:       node.Label(),
		Description: fmt.Sprintf("%s hash table uses %s", node.Label(), metrics.FormatBytes(largest)),
		Suggestion:  "Check whether spilling is enabled and that the smaller input is on the build side",
	}}
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown table"
	}
	return s
}
