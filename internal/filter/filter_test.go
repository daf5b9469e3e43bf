package filter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacobarthurs/profileviz/internal/fixture"
	"github.com/jacobarthurs/profileviz/internal/graph"
	"github.com/jacobarthurs/profileviz/internal/metrics"
	"github.com/jacobarthurs/profileviz/internal/profile"
)

func sampleGraph(t *testing.T) *graph.Graph {
	t.Helper()
	doc := fixture.Load(t, "sample.json")
	g, err := graph.Build(doc.Topology, metrics.Extract(doc.Execution))
	require.NoError(t, err)
	return g
}

// chainGraph is root(0) -> A(1) -> B(2) -> C(3), with a second child D(4)
// under A.
func chainGraph(t *testing.T) *graph.Graph {
	t.Helper()
	topology := profile.Topology{RootID: 0, Nodes: []profile.TopologyNode{
		{ID: 0, Name: "EXCHANGE", Children: []graph.NodeID{1}},
		{ID: 1, Name: "HASH_JOIN", Children: []graph.NodeID{2, 4}},
		{ID: 2, Name: "PROJECT", Children: []graph.NodeID{3}},
		{ID: 3, Name: "OLAP_SCAN"},
		{ID: 4, Name: "OLAP_SCAN"},
	}}
	g, err := graph.Build(topology, nil)
	require.NoError(t, err)
	return g
}

func TestParse_Grammar(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  Spec
	}{
		{"node", "node=5", Spec{Groups: [][]Selector{{NodeSelector{ID: 5}}}}},
		{"ancestors", "+node=5", Spec{Groups: [][]Selector{{NodeSelector{ID: 5, IncludeAncestors: true}}}}},
		{"descendants", "node=5+", Spec{Groups: [][]Selector{{NodeSelector{ID: 5, IncludeDescendants: true}}}}},
		{"lineage", "+node=5+", Spec{Groups: [][]Selector{{NodeSelector{ID: 5, IncludeAncestors: true, IncludeDescendants: true}}}}},
		{"negative id", "node=-1", Spec{Groups: [][]Selector{{NodeSelector{ID: -1}}}}},
		{"type", "type=Scan", Spec{Groups: [][]Selector{{TypeSelector{Class: metrics.ClassScan}}}}},
		{"table keeps case", "table=Customer", Spec{Groups: [][]Selector{{TableSelector{Table: "Customer"}}}}},
		{"comma and ampersand", "type=scan, type=join & node=2", Spec{Groups: [][]Selector{
			{TypeSelector{Class: metrics.ClassScan}},
			{TypeSelector{Class: metrics.ClassJoin}, NodeSelector{ID: 2}},
		}}},
		{"words", "type=scan OR type=join and node=2", Spec{Groups: [][]Selector{
			{TypeSelector{Class: metrics.ClassScan}},
			{TypeSelector{Class: metrics.ClassJoin}, NodeSelector{ID: 2}},
		}}},
		{"hide anywhere", "--hide type=exchange", Spec{Groups: [][]Selector{{TypeSelector{Class: metrics.ClassExchange}}}, Hide: true}},
		{"hide trailing", "type=exchange --hide", Spec{Groups: [][]Selector{{TypeSelector{Class: metrics.ClassExchange}}}, Hide: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.query))
		})
	}
}

func TestParse_HideFlagPlacement(t *testing.T) {
	scan := TypeSelector{Class: metrics.ClassScan}
	join := TypeSelector{Class: metrics.ClassJoin}
	tests := []struct {
		name  string
		query string
		want  [][]Selector
	}{
		{"after comma", "type=scan, --hide", [][]Selector{{scan}}},
		{"glued after comma", "type=scan,--hide", [][]Selector{{scan}}},
		{"after or", "type=scan or --hide", [][]Selector{{scan}}},
		{"after ampersand", "type=scan & --hide", [][]Selector{{scan}}},
		{"glued after and", "type=scan and--hide", [][]Selector{{scan}}},
		{"before comma", "--hide, type=join", [][]Selector{{join}}},
		{"before or", "--hide or type=join", [][]Selector{{join}}},
		{"repeated", "--hide --hide type=scan", [][]Selector{{scan}}},
		{"between groups", "type=scan, --hide, type=join", [][]Selector{{scan}, {join}}},
		{"between terms", "type=scan & --hide & table=orders", [][]Selector{{scan, TableSelector{Table: "orders"}}}},
		{"upper case", "type=scan --HIDE", [][]Selector{{scan}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := parse(tt.query)
			require.NoError(t, err)
			assert.Equal(t, Spec{Groups: tt.want, Hide: true}, spec)
		})
	}
}

func TestParse_HideFlagNeedsWordEnd(t *testing.T) {
	assert.True(t, Parse("type=scan --hidden").Empty())
}

func TestParse_MalformedYieldsEmptySpec(t *testing.T) {
	for _, query := range []string{
		"",
		"   ",
		"--hide",
		"type=banana",
		"type=other",
		"type=scan &",
		"type=scan,",
		", type=scan",
		"node=abc",
		"node=",
		"colour=red",
		"scan",
	} {
		t.Run(query, func(t *testing.T) {
			assert.True(t, Parse(query).Empty())
		})
	}
}

func TestCheck(t *testing.T) {
	assert.NoError(t, Check(""))
	assert.NoError(t, Check("type=scan & table=orders --hide"))

	err := Check("type=banana")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformed))
	assert.Contains(t, err.Error(), "banana")

	err = Check("type=scan &")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty term")
}

func TestSpecString_RoundTrip(t *testing.T) {
	spec := Parse("+node=3+ and type=scan or table=Orders --hide")
	assert.Equal(t, "+node=3+ & type=scan, table=Orders --hide", spec.String())
	assert.Equal(t, spec, Parse(spec.String()))
	assert.Equal(t, "", Spec{}.String())
}

func TestEvaluate_Union(t *testing.T) {
	g := sampleGraph(t)
	res := Evaluate(g, Parse("type=scan, type=join"))

	assert.True(t, res.Active)
	assert.Equal(t, []graph.NodeID{2, 0, 5}, res.IDs)
}

func TestEvaluate_DescendantsIntersectType(t *testing.T) {
	g := sampleGraph(t)

	assert.Equal(t, []graph.NodeID{5}, Evaluate(g, Parse("node=1+ & type=scan")).IDs)
	assert.Equal(t, []graph.NodeID{5}, Evaluate(g, Parse("node=5+ & type=scan")).IDs)
	assert.Equal(t, []graph.NodeID{0, 5}, Evaluate(g, Parse("node=2+ & type=scan")).IDs)
}

func TestEvaluate_IgnoresUnreachableNodes(t *testing.T) {
	topology := profile.Topology{RootID: 0, Nodes: []profile.TopologyNode{
		{ID: 0, Name: "EXCHANGE", Children: []graph.NodeID{1}},
		{ID: 1, Name: "OLAP_SCAN"},
		{ID: 2, Name: "OLAP_SCAN", Children: []graph.NodeID{3}},
		{ID: 3, Name: "OLAP_SCAN"},
	}}
	g, err := graph.Build(topology, nil)
	require.NoError(t, err)
	require.Error(t, g.Problems())

	assert.Equal(t, []graph.NodeID{1}, Evaluate(g, Parse("type=scan")).IDs)
	assert.Empty(t, Evaluate(g, Parse("node=2+")).IDs)
	assert.Equal(t, []graph.NodeID{1}, Evaluate(g, Parse("node=3, node=1")).IDs)
}

func TestEvaluate_Ancestors(t *testing.T) {
	g := sampleGraph(t)
	assert.Equal(t, []graph.NodeID{4, 3, 2, 0}, Evaluate(g, Parse("+node=0")).IDs)
}

func TestEvaluate_ChainLineage(t *testing.T) {
	g := chainGraph(t)

	assert.Equal(t, []graph.NodeID{0, 1, 2, 3}, Evaluate(g, Parse("+node=3")).IDs)
	assert.Equal(t, []graph.NodeID{1, 2, 3, 4}, Evaluate(g, Parse("node=1+")).IDs)
	assert.Equal(t, []graph.NodeID{0, 1, 2, 3}, Evaluate(g, Parse("+node=2+")).IDs)
	assert.Equal(t, []graph.NodeID{2}, Evaluate(g, Parse("node=2")).IDs)
}

func TestEvaluate_Table(t *testing.T) {
	g := sampleGraph(t)

	assert.Equal(t, []graph.NodeID{5}, Evaluate(g, Parse("table=customer")).IDs)
	assert.Equal(t, []graph.NodeID{0}, Evaluate(g, Parse("table=ORDERS")).IDs)

	partial := Evaluate(g, Parse("table=cust"))
	assert.True(t, partial.Active)
	assert.Empty(t, partial.IDs)
}

func TestEvaluate_UnknownNode(t *testing.T) {
	g := sampleGraph(t)
	res := Evaluate(g, Parse("node=99, type=aggregate"))

	assert.Equal(t, []graph.NodeID{3}, res.IDs)
	assert.Empty(t, Evaluate(g, Parse("+node=99+")).IDs)
}

func TestEvaluate_EmptyAndGroupContributesNothing(t *testing.T) {
	g := sampleGraph(t)
	res := Evaluate(g, Spec{Groups: [][]Selector{{}, {NodeSelector{ID: 3}}}})
	assert.Equal(t, []graph.NodeID{3}, res.IDs)
}

func TestResult_States(t *testing.T) {
	g := sampleGraph(t)

	idle := Evaluate(g, Parse(""))
	assert.False(t, idle.Active)
	assert.Equal(t, Normal, idle.State(2))
	assert.True(t, idle.EdgeVisible(4, 3))

	dim := Evaluate(g, Parse("node=2+"))
	assert.Equal(t, Matched, dim.State(2))
	assert.Equal(t, Dimmed, dim.State(3))
	assert.True(t, dim.EdgeVisible(2, 0))
	assert.False(t, dim.EdgeVisible(3, 2))

	hide := Evaluate(g, Parse("node=2+ --hide"))
	assert.Equal(t, Matched, hide.State(5))
	assert.Equal(t, Hidden, hide.State(4))
}

func TestState_ApplyAndClear(t *testing.T) {
	s := NewState(sampleGraph(t))
	assert.Equal(t, Idle, s.Phase())

	res := s.Apply("type=exchange")
	assert.Equal(t, Applied, s.Phase())
	assert.Equal(t, []graph.NodeID{4, 1}, res.IDs)
	assert.Equal(t, "type=exchange", s.Query())

	s.Clear()
	assert.Equal(t, Idle, s.Phase())
	assert.False(t, s.Result().Active)
}

func TestState_ApplyMalformedResets(t *testing.T) {
	s := NewState(sampleGraph(t))
	s.Apply("type=scan")

	s.Apply("type=")
	assert.Equal(t, Idle, s.Phase())
	assert.Equal(t, "", s.Query())
}

func TestState_PreviewKeepsAppliedWhileIncomplete(t *testing.T) {
	s := NewState(sampleGraph(t))
	s.Apply("type=scan")

	for _, partial := range []string{"type=scan &", "type=scan & no", "type=scan & node="} {
		res, ok := s.Preview(partial)
		assert.False(t, ok, partial)
		assert.Equal(t, []graph.NodeID{0, 5}, res.IDs, partial)
		assert.Equal(t, "type=scan", s.Query())
	}

	res, ok := s.Preview("type=scan & node=5")
	assert.True(t, ok)
	assert.Equal(t, []graph.NodeID{5}, res.IDs)

	_, ok = s.Preview("")
	assert.True(t, ok)
	assert.Equal(t, Idle, s.Phase())
}

func TestState_RemoveTerm(t *testing.T) {
	s := NewState(sampleGraph(t))
	s.Apply("type=scan & table=orders, node=4 --hide")

	require.True(t, s.RemoveTerm(1))
	assert.Equal(t, "type=scan, node=4 --hide", s.Query())
	assert.Equal(t, []graph.NodeID{4, 0, 5}, s.Result().IDs)
	assert.True(t, s.Result().Hide)

	require.True(t, s.RemoveTerm(1))
	assert.Equal(t, "type=scan --hide", s.Query())

	assert.False(t, s.RemoveTerm(3))
	assert.False(t, s.RemoveTerm(-1))

	require.True(t, s.RemoveTerm(0))
	assert.Equal(t, Idle, s.Phase())
}
