// Package session holds everything derived from one loaded profile: the
// graph, its layout, the camera, the ranking and the applied filter.
package session

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/jacobarthurs/profileviz/internal/analyzer"
	"github.com/jacobarthurs/profileviz/internal/config"
	"github.com/jacobarthurs/profileviz/internal/filter"
	"github.com/jacobarthurs/profileviz/internal/graph"
	"github.com/jacobarthurs/profileviz/internal/layout"
	"github.com/jacobarthurs/profileviz/internal/metrics"
	"github.com/jacobarthurs/profileviz/internal/profile"
	"github.com/jacobarthurs/profileviz/internal/viewport"
)

type Options struct {
	Logger logrus.FieldLogger
	// Width and Height are the screen size; zero uses the configured size.
	Width  float64
	Height float64
}

// Session is the view state of one loaded profile. It is built as a unit by
// New and never rebuilt in place; loading another profile means a new
// Session.
type Session struct {
	ID       uuid.UUID
	QueryID  string
	Graph    *graph.Graph
	Layout   *layout.Result
	Viewport *viewport.Viewport
	Analysis analyzer.AnalysisResult

	highlights map[graph.NodeID]analyzer.Highlight
	filter     *filter.State
	edges      config.Edges
	log        logrus.FieldLogger
}

// NodeDetail is the popover content of one node.
type NodeDetail struct {
	ID        graph.NodeID   `json:"id"`
	Label     string         `json:"label"`
	Class     string         `json:"class"`
	Table     string         `json:"table,omitempty"`
	Highlight string         `json:"highlight,omitempty"`
	Rows      []metrics.Row  `json:"rows"`
	State     string         `json:"state"`
	Children  []graph.NodeID `json:"children"`
}

func New(doc *profile.Document, cfg config.Config, opts Options) (*Session, error) {
	g, err := graph.Build(doc.Topology, metrics.Extract(doc.Execution))
	if err != nil {
		return nil, fmt.Errorf("building session: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	width, height := opts.Width, opts.Height
	if width <= 0 || height <= 0 {
		width, height = cfg.Viewport.Width, cfg.Viewport.Height
	}

	id := uuid.New()
	s := &Session{
		ID:       id,
		QueryID:  doc.QueryID,
		Graph:    g,
		Layout:   layout.Compute(g, cfg.Layout),
		Analysis: analyzer.Analyze(g),
		filter:   filter.NewState(g),
		edges:    cfg.Edges,
		log:      logger.WithField("session", id.String()),
	}
	s.highlights = analyzer.Highlights(s.Analysis.Ranked)
	s.Viewport = viewport.New(width, height, s.Layout.Bounds(), cfg.Viewport)
	s.Viewport.FitToContent()

	if problems := g.Problems(); problems != nil {
		entry := s.log.WithField("query", doc.QueryID)
		var merr *multierror.Error
		if errors.As(problems, &merr) {
			for _, p := range merr.Errors {
				entry.WithError(p).Warn("tolerated topology problem")
			}
		} else {
			entry.WithError(problems).Warn("tolerated topology problem")
		}
	}

	s.log.WithFields(logrus.Fields{
		"query": doc.QueryID,
		"nodes": len(s.Layout.Positions),
		"timed": len(s.Analysis.Ranked),
	}).Debug("session loaded")
	return s, nil
}

func (s *Session) PanBy(dx, dy float64) {
	s.Viewport.PanBy(dx, dy)
}

func (s *Session) ZoomAtPoint(x, y, factor float64) {
	s.Viewport.ZoomAtPoint(layout.Point{X: x, Y: y}, factor)
}

func (s *Session) BeginGesture() { s.Viewport.BeginGesture() }
func (s *Session) EndGesture()   { s.Viewport.EndGesture() }

func (s *Session) Resize(width, height float64) {
	s.Viewport.Resize(width, height)
}

func (s *Session) FitToContent() {
	s.Viewport.FitToContent()
}

func (s *Session) Camera() viewport.Camera {
	return s.Viewport.Camera
}

// NavigateTo frames one node and reports whether it exists.
func (s *Session) NavigateTo(id graph.NodeID) bool {
	box, ok := s.Layout.Box(id)
	if !ok {
		s.log.WithField("node", id).Debug("navigate to unknown node")
		return false
	}
	s.Viewport.FitToSubset([]layout.Rect{box})
	s.log.WithField("node", id).Debug("navigated")
	return true
}

// FocusMatches frames the nodes matched by the applied filter. It reports
// false when nothing matches.
func (s *Session) FocusMatches() bool {
	var boxes []layout.Rect
	for _, id := range s.filter.Result().IDs {
		if box, ok := s.Layout.Box(id); ok {
			boxes = append(boxes, box)
		}
	}
	return s.Viewport.FitToSubset(boxes)
}

// ApplyFilter commits a query. A query that does not parse clears the filter.
func (s *Session) ApplyFilter(query string) filter.Result {
	entry := s.log.WithField("query", query)
	if err := filter.Check(query); err != nil {
		entry.WithError(err).Debug("filter query ignored")
	}
	res := s.filter.Apply(query)
	entry.WithFields(logrus.Fields{
		"active":  res.Active,
		"matches": len(res.IDs),
	}).Info("filter applied")
	return res
}

// PreviewFilter evaluates a query while it is being typed; see filter.State.Preview.
func (s *Session) PreviewFilter(query string) (filter.Result, bool) {
	return s.filter.Preview(query)
}

func (s *Session) ClearFilter() {
	s.filter.Clear()
	s.log.Debug("filter cleared")
}

func (s *Session) RemoveFilterTerm(i int) bool {
	ok := s.filter.RemoveTerm(i)
	if ok {
		s.log.WithField("query", s.filter.Query()).Debug("filter term removed")
	}
	return ok
}

func (s *Session) Filter() *filter.State {
	return s.filter
}

// Slowest returns the ranking, slowest first.
func (s *Session) Slowest() []analyzer.RankedOperator {
	return append([]analyzer.RankedOperator(nil), s.Analysis.Ranked...)
}

func (s *Session) Highlight(id graph.NodeID) analyzer.Highlight {
	return s.highlights[id]
}

func (s *Session) Detail(id graph.NodeID) (NodeDetail, bool) {
	n, ok := s.Graph.Node(id)
	if !ok {
		return NodeDetail{}, false
	}
	return NodeDetail{
		ID:        n.ID,
		Label:     n.Label(),
		Class:     n.Class.String(),
		Table:     n.TableName(),
		Highlight: s.highlights[id].String(),
		Rows:      n.Detail(),
		State:     s.filter.Result().State(id).String(),
		Children:  append([]graph.NodeID(nil), n.Children...),
	}, true
}
