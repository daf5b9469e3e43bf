package comparator

import (
	"testing"

	"github.com/jacobarthurs/profileviz/internal/fixture"
	"github.com/jacobarthurs/profileviz/internal/graph"
	"github.com/jacobarthurs/profileviz/internal/metrics"
	"github.com/jacobarthurs/profileviz/internal/profile"
)

func defaultComparator() *Comparator {
	return &Comparator{Threshold: 5.0}
}

type planNode struct {
	id       graph.NodeID
	name     string
	time     string
	rows     string
	children []graph.NodeID
}

// buildGraph makes a graph whose nodes each carry one instance with the
// given OperatorTotalTime and PullRowNum.
func buildGraph(t *testing.T, nodes ...planNode) *graph.Graph {
	t.Helper()
	topology := profile.Topology{RootID: nodes[0].id}
	m := make(map[graph.NodeID]*metrics.NodeMetrics)
	for _, n := range nodes {
		topology.Nodes = append(topology.Nodes, profile.TopologyNode{ID: n.id, Name: n.name, Children: n.children})
		m[n.id] = &metrics.NodeMetrics{Instances: []*metrics.OperatorInstance{{
			Name:   "PROJECT",
			Common: map[string]string{metrics.OperatorTotalTime: n.time, metrics.PullRowNum: n.rows},
		}}}
	}
	g, err := graph.Build(topology, m)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return g
}

func loadGraph(t *testing.T, name string) *graph.Graph {
	t.Helper()
	doc := fixture.Load(t, name)
	g, err := graph.Build(doc.Topology, metrics.Extract(doc.Execution))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return g
}

func TestCompare_IdenticalPlans(t *testing.T) {
	g := loadGraph(t, "sample.json")
	result := defaultComparator().Compare(g, g)

	s := result.Summary
	if s.NodesModified+s.NodesAdded+s.NodesRemoved+s.NodesTypeChanged != 0 {
		t.Errorf("expected no changes, got %+v", s)
	}
	if s.TimeDir != Unchanged {
		t.Errorf("TimeDir = %v, want Unchanged", s.TimeDir)
	}
	if s.Verdict != "no significant change" {
		t.Errorf("Verdict = %q, want 'no significant change'", s.Verdict)
	}
	if result.Deltas[0].ChangeType != NoChange {
		t.Errorf("root ChangeType = %v, want NoChange", result.Deltas[0].ChangeType)
	}
}

func TestDiffNodes_TimeRegressed(t *testing.T) {
	old := buildGraph(t, planNode{id: 1, name: "PROJECT", time: "10ms", rows: "100"})
	new := buildGraph(t, planNode{id: 1, name: "PROJECT", time: "20ms", rows: "100"})

	delta := defaultComparator().Compare(old, new).Deltas[0]

	if delta.ChangeType != Modified {
		t.Errorf("ChangeType = %v, want Modified", delta.ChangeType)
	}
	if delta.TimeDir != Regressed {
		t.Errorf("TimeDir = %v, want Regressed", delta.TimeDir)
	}
	if delta.TimeDelta != 10000 {
		t.Errorf("TimeDelta = %f, want 10000", delta.TimeDelta)
	}
	if delta.TimePct != 100 {
		t.Errorf("TimePct = %f, want 100", delta.TimePct)
	}
}

func TestDiffNodes_RowsChangeIsSignificant(t *testing.T) {
	old := buildGraph(t, planNode{id: 1, name: "PROJECT", time: "10ms", rows: "100"})
	new := buildGraph(t, planNode{id: 1, name: "PROJECT", time: "10ms", rows: "1000"})

	delta := defaultComparator().Compare(old, new).Deltas[0]
	if delta.ChangeType != Modified {
		t.Errorf("ChangeType = %v, want Modified", delta.ChangeType)
	}
	if delta.TimeDir != Unchanged {
		t.Errorf("TimeDir = %v, want Unchanged", delta.TimeDir)
	}
}

func TestDiffNodes_TinyChange(t *testing.T) {
	old := buildGraph(t, planNode{id: 1, name: "PROJECT", time: "100ms", rows: "100"})
	new := buildGraph(t, planNode{id: 1, name: "PROJECT", time: "101ms", rows: "100"})

	if got := defaultComparator().Compare(old, new).Deltas[0].ChangeType; got != NoChange {
		t.Errorf("ChangeType = %v, want NoChange", got)
	}
}

func TestDiffNodes_TypeChanged(t *testing.T) {
	old := buildGraph(t, planNode{id: 1, name: "HASH_JOIN", time: "1ms"})
	new := buildGraph(t, planNode{id: 7, name: "NESTLOOP_JOIN", time: "1ms"})

	delta := defaultComparator().Compare(old, new).Deltas[0]
	if delta.ChangeType != TypeChanged {
		t.Errorf("ChangeType = %v, want TypeChanged", delta.ChangeType)
	}
	if delta.OldName != "HASH_JOIN" || delta.NewName != "NESTLOOP_JOIN" {
		t.Errorf("names = %q -> %q", delta.OldName, delta.NewName)
	}
	if delta.OldID != 1 || delta.NewID != 7 {
		t.Errorf("ids = %d -> %d, want 1 -> 7", delta.OldID, delta.NewID)
	}
}

func TestDiffChildren_AddedNode(t *testing.T) {
	old := buildGraph(t, planNode{id: 1, name: "PROJECT", time: "1ms"})
	new := buildGraph(t,
		planNode{id: 1, name: "PROJECT", time: "1ms", children: []graph.NodeID{2}},
		planNode{id: 2, name: "OLAP_SCAN", time: "2ms", children: []graph.NodeID{3}},
		planNode{id: 3, name: "PROJECT", time: "1ms"},
	)

	result := defaultComparator().Compare(old, new)
	root := result.Deltas[0]
	if len(root.Children) != 1 {
		t.Fatalf("expected 1 child delta, got %d", len(root.Children))
	}
	added := root.Children[0]
	if added.ChangeType != Added || added.NewID != 2 {
		t.Errorf("child = %+v, want added node 2", added)
	}
	if len(added.Children) != 1 || added.Children[0].ChangeType != Added {
		t.Errorf("expected added grandchild, got %+v", added.Children)
	}
	if result.Summary.NodesAdded != 2 {
		t.Errorf("NodesAdded = %d, want 2", result.Summary.NodesAdded)
	}
}

func TestDiffChildren_RemovedNode(t *testing.T) {
	old := buildGraph(t,
		planNode{id: 1, name: "PROJECT", time: "1ms", children: []graph.NodeID{2, 3}},
		planNode{id: 2, name: "OLAP_SCAN", time: "2ms"},
		planNode{id: 3, name: "OLAP_SCAN", time: "2ms"},
	)
	new := buildGraph(t,
		planNode{id: 1, name: "PROJECT", time: "1ms", children: []graph.NodeID{2}},
		planNode{id: 2, name: "OLAP_SCAN", time: "2ms"},
	)

	result := defaultComparator().Compare(old, new)
	kids := result.Deltas[0].Children
	if len(kids) != 2 {
		t.Fatalf("expected 2 child deltas, got %d", len(kids))
	}
	if kids[0].ChangeType != NoChange {
		t.Errorf("first child = %v, want NoChange", kids[0].ChangeType)
	}
	if kids[1].ChangeType != Removed || kids[1].OldID != 3 {
		t.Errorf("second child = %+v, want removed node 3", kids[1])
	}
	if result.Summary.NodesRemoved != 1 {
		t.Errorf("NodesRemoved = %d, want 1", result.Summary.NodesRemoved)
	}
}

func TestDiffChildren_Cycle(t *testing.T) {
	old := buildGraph(t,
		planNode{id: 1, name: "PROJECT", time: "1ms", children: []graph.NodeID{2}},
		planNode{id: 2, name: "PROJECT", time: "1ms", children: []graph.NodeID{1}},
	)

	result := defaultComparator().Compare(old, old)
	if len(result.Deltas[0].Children) != 1 || len(result.Deltas[0].Children[0].Children) != 0 {
		t.Errorf("cycle was followed: %+v", result.Deltas[0])
	}
}

func TestCompare_SampleAgainstChain(t *testing.T) {
	result := defaultComparator().Compare(loadGraph(t, "sample.json"), loadGraph(t, "chain.json"))
	s := result.Summary

	if s.NodesTypeChanged != 2 {
		t.Errorf("NodesTypeChanged = %d, want 2", s.NodesTypeChanged)
	}
	if s.NodesRemoved != 3 {
		t.Errorf("NodesRemoved = %d, want 3", s.NodesRemoved)
	}
	if s.TimeDir != Improved {
		t.Errorf("TimeDir = %v, want Improved", s.TimeDir)
	}
	if s.Verdict != "faster with a different plan" {
		t.Errorf("Verdict = %q", s.Verdict)
	}
	if s.OldNodes != 6 || s.NewNodes != 3 {
		t.Errorf("nodes = %d -> %d, want 6 -> 3", s.OldNodes, s.NewNodes)
	}
}

func TestCompare_Verdicts(t *testing.T) {
	fast := buildGraph(t, planNode{id: 1, name: "PROJECT", time: "1ms"})
	slow := buildGraph(t, planNode{id: 1, name: "PROJECT", time: "9ms"})

	if v := defaultComparator().Compare(slow, fast).Summary.Verdict; v != "faster" {
		t.Errorf("Verdict = %q, want faster", v)
	}
	if v := defaultComparator().Compare(fast, slow).Summary.Verdict; v != "slower" {
		t.Errorf("Verdict = %q, want slower", v)
	}
}

func TestPctChange(t *testing.T) {
	tests := []struct {
		old, new, want float64
	}{
		{100, 150, 50},
		{100, 50, -50},
		{0, 0, 0},
		{0, 10, 100},
	}
	for _, tt := range tests {
		if got := pctChange(tt.old, tt.new); got != tt.want {
			t.Errorf("pctChange(%v, %v) = %v, want %v", tt.old, tt.new, got, tt.want)
		}
	}
}

func TestDirection(t *testing.T) {
	c := defaultComparator()
	if d := c.direction(100, 50, true); d != Improved {
		t.Errorf("lower is better, 100->50 = %v, want Improved", d)
	}
	if d := c.direction(100, 150, true); d != Regressed {
		t.Errorf("lower is better, 100->150 = %v, want Regressed", d)
	}
	if d := c.direction(100, 102, true); d != Unchanged {
		t.Errorf("100->102 = %v, want Unchanged", d)
	}
	if d := c.direction(100, 150, false); d != Improved {
		t.Errorf("higher is better, 100->150 = %v, want Improved", d)
	}
}
