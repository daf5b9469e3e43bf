package layout

import (
	"math"
	"reflect"
	"testing"

	"github.com/jacobarthurs/profileviz/internal/fixture"
	"github.com/jacobarthurs/profileviz/internal/graph"
	"github.com/jacobarthurs/profileviz/internal/metrics"
	"github.com/jacobarthurs/profileviz/internal/profile"
)

func buildGraph(t *testing.T, topology profile.Topology) *graph.Graph {
	t.Helper()
	g, err := graph.Build(topology, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return g
}

func sampleGraph(t *testing.T) *graph.Graph {
	t.Helper()
	doc := fixture.Load(t, "sample.json")
	g, err := graph.Build(doc.Topology, metrics.Extract(doc.Execution))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return g
}

func tn(id graph.NodeID, children ...graph.NodeID) profile.TopologyNode {
	return profile.TopologyNode{ID: id, Name: "NODE", Children: children}
}

func TestCompute_Sample(t *testing.T) {
	res := Compute(sampleGraph(t), DefaultConfig())

	want := map[graph.NodeID]Position{
		4: {X: 110, Y: 0},
		3: {X: 110, Y: 134},
		2: {X: 110, Y: 268},
		0: {X: 0, Y: 402},
		1: {X: 220, Y: 402},
		5: {X: 220, Y: 536},
	}
	if !reflect.DeepEqual(res.Positions, want) {
		t.Errorf("Positions = %v, want %v", res.Positions, want)
	}
	if res.Width != 400 || res.Height != 600 {
		t.Errorf("size = %gx%g, want 400x600", res.Width, res.Height)
	}
}

func TestCompute_Deterministic(t *testing.T) {
	g := sampleGraph(t)
	first := Compute(g, DefaultConfig())
	second := Compute(g, DefaultConfig())

	if !reflect.DeepEqual(first, second) {
		t.Error("layout differs between runs")
	}
}

func TestCompute_ChainHeight(t *testing.T) {
	cfg := DefaultConfig()
	g := buildGraph(t, profile.Topology{RootID: 2, Nodes: []profile.TopologyNode{tn(2, 1), tn(1, 0), tn(0)}})
	res := Compute(g, cfg)

	if len(res.Positions) != 3 {
		t.Fatalf("expected 3 positions, got %d", len(res.Positions))
	}
	wantHeight := 2*(cfg.NodeHeight+cfg.VerticalSpacing) + cfg.NodeHeight
	if res.Height != wantHeight {
		t.Errorf("Height = %g, want %g", res.Height, wantHeight)
	}
	if res.Width != cfg.NodeWidth {
		t.Errorf("Width = %g, want %g", res.Width, cfg.NodeWidth)
	}
}

func TestCompute_NoSiblingOverlap(t *testing.T) {
	cfg := DefaultConfig()
	// A wide, uneven tree.
	g := buildGraph(t, profile.Topology{RootID: 0, Nodes: []profile.TopologyNode{
		tn(0, 1, 2, 3),
		tn(1, 4, 5, 6),
		tn(2),
		tn(3, 7),
		tn(4), tn(5, 8, 9), tn(6), tn(7, 10, 11, 12), tn(8), tn(9), tn(10), tn(11), tn(12),
	}})
	res := Compute(g, cfg)

	for _, id := range g.Preorder() {
		n := g.Nodes[id]
		for i := 1; i < len(n.Children); i++ {
			prev := res.Positions[n.Children[i-1]]
			cur := res.Positions[n.Children[i]]
			if prev.X+cfg.NodeWidth > cur.X {
				t.Errorf("children %d and %d of %d overlap: %v %v", n.Children[i-1], n.Children[i], id, prev, cur)
			}
		}
	}

	// Each parent's centre lies inside the span covered by its subtree.
	for _, id := range g.Preorder() {
		lo, hi := res.Positions[id].X, res.Positions[id].X+cfg.NodeWidth
		for _, d := range g.Descendants(id) {
			lo = min(lo, res.Positions[d].X)
			hi = max(hi, res.Positions[d].X+cfg.NodeWidth)
		}
		centre := res.Positions[id].X + cfg.NodeWidth/2
		if centre < lo || centre > hi {
			t.Errorf("node %d centre %g outside subtree span [%g, %g]", id, centre, lo, hi)
		}
	}

	// No two boxes on the same row overlap.
	byRow := map[float64][]Position{}
	for _, p := range res.Positions {
		byRow[p.Y] = append(byRow[p.Y], p)
	}
	for y, row := range byRow {
		for i := range row {
			for j := i + 1; j < len(row); j++ {
				if row[i].X < row[j].X+cfg.NodeWidth && row[j].X < row[i].X+cfg.NodeWidth {
					t.Errorf("boxes overlap on row %g: %v %v", y, row[i], row[j])
				}
			}
		}
	}
}

func TestCompute_RevisitedNodeLaidOutOnce(t *testing.T) {
	g := buildGraph(t, profile.Topology{RootID: 0, Nodes: []profile.TopologyNode{
		tn(0, 1, 2), tn(1, 3), tn(2, 3, 0), tn(3),
	}})
	res := Compute(g, DefaultConfig())

	if len(res.Positions) != 4 {
		t.Fatalf("expected 4 positions, got %d", len(res.Positions))
	}
	// 3 hangs under 1 only, so 2 is a leaf and the root spans two columns.
	if res.Width != 2*180+40 {
		t.Errorf("Width = %g, want 400", res.Width)
	}
	if res.Positions[3].X != res.Positions[1].X {
		t.Errorf("3 should sit under 1: %v vs %v", res.Positions[3], res.Positions[1])
	}
}

func TestBoxAndBounds(t *testing.T) {
	res := Compute(sampleGraph(t), DefaultConfig())

	box, ok := res.Box(5)
	if !ok {
		t.Fatal("box for node 5 missing")
	}
	if box != (Rect{X: 220, Y: 536, Width: 180, Height: 64}) {
		t.Errorf("Box(5) = %+v", box)
	}
	if _, ok := res.Box(99); ok {
		t.Error("unknown node should have no box")
	}
	if res.Bounds() != (Rect{Width: 400, Height: 600}) {
		t.Errorf("Bounds = %+v", res.Bounds())
	}

	u := Rect{X: 0, Y: 0, Width: 10, Height: 10}.Union(Rect{X: 20, Y: -5, Width: 5, Height: 5})
	if u != (Rect{X: 0, Y: -5, Width: 25, Height: 15}) {
		t.Errorf("Union = %+v", u)
	}
}

func TestEdgeCurve(t *testing.T) {
	parent := Rect{X: 110, Y: 0, Width: 180, Height: 64}
	child := Rect{X: 0, Y: 134, Width: 180, Height: 64}
	c := EdgeCurve(parent, child)

	if c.Start != (Point{200, 64}) || c.End != (Point{90, 134}) {
		t.Errorf("endpoints = %v -> %v", c.Start, c.End)
	}
	if c.C1 != (Point{200, 99}) || c.C2 != (Point{90, 99}) {
		t.Errorf("control points = %v %v", c.C1, c.C2)
	}
	if c.Path() != "M 200 64 C 200 99, 90 99, 90 134" {
		t.Errorf("Path = %q", c.Path())
	}
}

func TestStrokeWidth(t *testing.T) {
	if w := StrokeWidth(0, 1, 8); w != 1 {
		t.Errorf("zero rows = %g, want min", w)
	}
	if w := StrokeWidth(999, 1, 8); math.Abs(w-4) > 1e-9 {
		t.Errorf("999 rows = %g, want 4", w)
	}
	if w := StrokeWidth(1_000_000_000_000, 1, 8); w != 8 {
		t.Errorf("huge rows = %g, want max", w)
	}
	if StrokeWidth(10, 1, 8) >= StrokeWidth(10000, 1, 8) {
		t.Error("stroke should grow with rows")
	}
}
