package layout

import (
	"github.com/jacobarthurs/profileviz/internal/graph"
)

// Config holds the fixed box size and spacing of the tree layout, in world pixels.
type Config struct {
	NodeWidth         float64 `yaml:"node_width" json:"nodeWidth"`
	NodeHeight        float64 `yaml:"node_height" json:"nodeHeight"`
	HorizontalSpacing float64 `yaml:"horizontal_spacing" json:"horizontalSpacing"`
	VerticalSpacing   float64 `yaml:"vertical_spacing" json:"verticalSpacing"`
}

func DefaultConfig() Config {
	return Config{
		NodeWidth:         180,
		NodeHeight:        64,
		HorizontalSpacing: 40,
		VerticalSpacing:   70,
	}
}

// Position is the top-left corner of a node box in world space.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned box in world space.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (r Rect) Right() float64  { return r.X + r.Width }
func (r Rect) Bottom() float64 { return r.Y + r.Height }

func (r Rect) Centre() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Union returns the smallest rect covering both r and o.
func (r Rect) Union(o Rect) Rect {
	x := min(r.X, o.X)
	y := min(r.Y, o.Y)
	return Rect{
		X:      x,
		Y:      y,
		Width:  max(r.Right(), o.Right()) - x,
		Height: max(r.Bottom(), o.Bottom()) - y,
	}
}

// Result is the positioned tree.
type Result struct {
	Config    Config
	Positions map[graph.NodeID]Position
	Width     float64
	Height    float64
}

// Bounds is the box covering every laid out node.
func (r *Result) Bounds() Rect {
	return Rect{Width: r.Width, Height: r.Height}
}

// Box returns the rect occupied by a node.
func (r *Result) Box(id graph.NodeID) (Rect, bool) {
	p, ok := r.Positions[id]
	if !ok {
		return Rect{}, false
	}
	return Rect{X: p.X, Y: p.Y, Width: r.Config.NodeWidth, Height: r.Config.NodeHeight}, true
}

// Compute lays the tree out top-down. Each node is centred over the span of
// its subtree; siblings are packed left to right in child order. A node
// reached twice is laid out only under its first parent.
func Compute(g *graph.Graph, cfg Config) *Result {
	res := &Result{
		Config:    cfg,
		Positions: make(map[graph.NodeID]Position, len(g.Nodes)),
	}

	// Pass 1: subtree widths, bottom-up.
	widths := make(map[graph.NodeID]float64, len(g.Nodes))
	kids := make(map[graph.NodeID][]graph.NodeID, len(g.Nodes))
	if !g.Walk(g.Root, graph.VisitSet{}, graph.Visitor{
		Leave: func(n *graph.Node, children []*graph.Node) {
			if len(children) == 0 {
				widths[n.ID] = cfg.NodeWidth
				return
			}
			var w float64
			for i, c := range children {
				if i > 0 {
					w += cfg.HorizontalSpacing
				}
				w += widths[c.ID]
				kids[n.ID] = append(kids[n.ID], c.ID)
			}
			widths[n.ID] = max(w, cfg.NodeWidth)
		},
	}) {
		return res
	}

	// Pass 2: positions, top-down.
	lefts := map[graph.NodeID]float64{g.Root: 0}
	maxDepth := 0
	g.Walk(g.Root, graph.VisitSet{}, graph.Visitor{
		Enter: func(n *graph.Node, _ *graph.Node, depth int) bool {
			left := lefts[n.ID]
			res.Positions[n.ID] = Position{
				X: left + (widths[n.ID]-cfg.NodeWidth)/2,
				Y: float64(depth) * (cfg.NodeHeight + cfg.VerticalSpacing),
			}
			maxDepth = max(maxDepth, depth)

			offset := left
			for _, c := range kids[n.ID] {
				lefts[c] = offset
				offset += widths[c] + cfg.HorizontalSpacing
			}
			return true
		},
	})

	res.Width = widths[g.Root]
	res.Height = float64(maxDepth)*(cfg.NodeHeight+cfg.VerticalSpacing) + cfg.NodeHeight
	return res
}
