package session

import (
	"github.com/jacobarthurs/profileviz/internal/analyzer"
	"github.com/jacobarthurs/profileviz/internal/filter"
	"github.com/jacobarthurs/profileviz/internal/graph"
	"github.com/jacobarthurs/profileviz/internal/layout"
	"github.com/jacobarthurs/profileviz/internal/metrics"
	"github.com/jacobarthurs/profileviz/internal/viewport"
)

// SceneNode is a positioned node box ready to draw.
type SceneNode struct {
	ID        graph.NodeID
	Label     string
	Class     metrics.OperatorClass
	Box       layout.Rect
	Time      string
	Rows      string
	Table     string
	State     filter.NodeState
	Highlight analyzer.Highlight
	// OnScreen is false for boxes entirely outside the current view.
	OnScreen bool
}

// SceneEdge is a positioned parent->child curve ready to draw.
type SceneEdge struct {
	From   graph.NodeID
	To     graph.NodeID
	Curve  layout.Curve
	Stroke float64
	State  filter.NodeState
}

// Scene is a snapshot of what the session would draw.
type Scene struct {
	Width     float64
	Height    float64
	Camera    viewport.Camera
	ViewBox   layout.Rect
	Transform string
	Query     string
	Nodes     []SceneNode
	Edges     []SceneEdge
}

// Scene assembles the drawable nodes and edges under the current camera and
// filter. Nodes come in depth-first order from the root.
func (s *Session) Scene() Scene {
	res := s.filter.Result()
	scene := Scene{
		Width:     s.Layout.Width,
		Height:    s.Layout.Height,
		Camera:    s.Viewport.Camera,
		ViewBox:   s.Viewport.ViewBox(),
		Transform: s.Viewport.Transform(),
		Query:     s.filter.Query(),
	}

	for _, id := range s.Graph.Preorder() {
		box, ok := s.Layout.Box(id)
		if !ok {
			continue
		}
		n := s.Graph.Nodes[id]
		sn := SceneNode{
			ID:        id,
			Label:     n.Label(),
			Class:     n.Class,
			Box:       box,
			Table:     n.TableName(),
			State:     res.State(id),
			Highlight: s.highlights[id],
			OnScreen:  s.Viewport.Visible(box),
		}
		if t := n.TotalTime(); t > 0 {
			sn.Time = metrics.FormatTime(t)
		}
		if rows := n.OutputRows(); rows > 0 {
			sn.Rows = metrics.FormatRows(rows)
		}
		scene.Nodes = append(scene.Nodes, sn)
	}

	for _, e := range s.Graph.Edges() {
		parent, okParent := s.Layout.Box(e.From)
		child, okChild := s.Layout.Box(e.To)
		if !okParent || !okChild {
			continue
		}
		scene.Edges = append(scene.Edges, SceneEdge{
			From:   e.From,
			To:     e.To,
			Curve:  layout.EdgeCurve(parent, child),
			Stroke: layout.StrokeWidth(s.Graph.Nodes[e.To].OutputRows(), s.edges.MinStroke, s.edges.MaxStroke),
			State:  edgeState(res, e),
		})
	}
	return scene
}

// edgeState hides every edge without a matched node at both ends, in dim
// mode as well as hide mode.
func edgeState(res filter.Result, e graph.Edge) filter.NodeState {
	switch {
	case !res.Active:
		return filter.Normal
	case res.EdgeVisible(e.From, e.To):
		return filter.Matched
	default:
		return filter.Hidden
	}
}
