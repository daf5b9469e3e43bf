package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/jacobarthurs/profileviz/internal/analyzer"
	"github.com/jacobarthurs/profileviz/internal/comparator"
	"github.com/jacobarthurs/profileviz/internal/filter"
	"github.com/jacobarthurs/profileviz/internal/graph"
	"github.com/jacobarthurs/profileviz/internal/metrics"
	"github.com/jacobarthurs/profileviz/internal/session"
	"github.com/jacobarthurs/profileviz/internal/viewport"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
)

type textWriter struct {
	w   io.Writer
	err error
}

func (tw *textWriter) printf(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.w, format, args...)
}

// RenderAnalysisText prints the plan summary, the slowest operators (at most
// limit, all when limit <= 0) and the findings.
func RenderAnalysisText(w io.Writer, queryID string, result analyzer.AnalysisResult, limit int) error {
	tw := &textWriter{w: w}
	s := result.Summary

	tw.printf("%s%sPlan Summary%s\n\n", colorBold, colorCyan, colorReset)
	if queryID != "" {
		tw.printf("  Query:          %s\n", queryID)
	}
	tw.printf("  Nodes:          %d (%d timed)\n", s.NodeCount, s.TimedNodes)
	tw.printf("  Operator Time:  %s\n", metrics.FormatTime(s.TotalTime))
	tw.printf("\n")

	ranked := result.Ranked
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	if len(ranked) > 0 {
		tw.printf("%s%sSlowest Operators%s\n\n", colorBold, colorCyan, colorReset)
		for i, op := range ranked {
			color := ""
			if i == 0 {
				color = colorRed
			} else if i < analyzer.TopN {
				color = colorYellow
			}
			tw.printf("  %s%2d. %-28s%s %-10s %10s %6.2f%%\n",
				color, i+1, fmt.Sprintf("%s (%d)", op.Name, op.ID), colorReset,
				op.Class, op.TimeText, s.Shares[op.ID])
		}
		tw.printf("\n")
	}

	if len(result.Findings) == 0 {
		tw.printf("%s%sNo issues found.%s\n", colorBold, colorGreen, colorReset)
		return tw.err
	}

	tw.printf("%s%sFindings (%d)%s\n\n", colorBold, colorCyan, len(result.Findings), colorReset)

	for i, f := range result.Findings {
		label, color := severityFormat(f.Severity)
		tw.printf("  %s%-8s%s %s%s\n", color, label, colorReset, f.Description, colorReset)
		tw.printf("  %s→ %s%s\n", colorDim, f.Suggestion, colorReset)
		if i < len(result.Findings)-1 {
			tw.printf("\n")
		}
	}

	return tw.err
}

func severityFormat(s analyzer.Severity) (string, string) {
	switch s {
	case analyzer.Critical:
		return "CRITICAL", colorRed
	case analyzer.Warning:
		return "WARNING", colorYellow
	default:
		return "INFO", colorCyan
	}
}

// RenderFilterText prints the applied query, the matching nodes and the
// plan outline under that filter.
func RenderFilterText(w io.Writer, g *graph.Graph, query string, res filter.Result) error {
	tw := &textWriter{w: w}

	if !res.Active {
		tw.printf("%s%sNo filter applied.%s\n\n", colorBold, colorYellow, colorReset)
	} else {
		mode := "dim"
		if res.Hide {
			mode = "hide"
		}
		tw.printf("%s%sFilter%s %s (%s)\n", colorBold, colorCyan, colorReset, query, mode)
		tw.printf("  %d of %d nodes match\n\n", len(res.IDs), len(g.Nodes))
	}

	tw.renderOutline(g, res, nil)
	return tw.err
}

// RenderOutlineText prints the plan as an indented tree with times,
// highlights and filter states.
func RenderOutlineText(w io.Writer, g *graph.Graph, res filter.Result, highlights map[graph.NodeID]analyzer.Highlight) error {
	tw := &textWriter{w: w}
	tw.renderOutline(g, res, highlights)
	return tw.err
}

func (tw *textWriter) renderOutline(g *graph.Graph, res filter.Result, highlights map[graph.NodeID]analyzer.Highlight) {
	g.Walk(g.Root, graph.VisitSet{}, graph.Visitor{
		Enter: func(n *graph.Node, _ *graph.Node, depth int) bool {
			state := res.State(n.ID)
			if state == filter.Hidden {
				return true
			}
			indent := strings.Repeat("  ", depth+1)

			color := ""
			switch state {
			case filter.Matched:
				color = colorBold + colorGreen
			case filter.Dimmed:
				color = colorDim
			}
			tw.printf("%s%s%s%s", indent, color, n.Label(), colorReset)

			if t := n.TotalTime(); t > 0 {
				tw.printf(" %s", metrics.FormatTime(t))
			}
			if table := n.TableName(); table != "" {
				tw.printf(" %son %s%s", colorDim, table, colorReset)
			}
			switch highlights[n.ID] {
			case analyzer.HighlightSlowest:
				tw.printf(" %s[slowest]%s", colorRed, colorReset)
			case analyzer.HighlightTop5:
				tw.printf(" %s[top5]%s", colorYellow, colorReset)
			}
			tw.printf("\n")
			return true
		},
	})
}

// RenderDetailText prints the metric rows of one node.
func RenderDetailText(w io.Writer, d session.NodeDetail) error {
	tw := &textWriter{w: w}

	tw.printf("%s%s%s%s  %s%s%s\n", colorBold, colorCyan, d.Label, colorReset, colorDim, d.Class, colorReset)
	if d.Highlight != "" {
		tw.printf("  %s%s%s\n", colorYellow, d.Highlight, colorReset)
	}
	tw.printf("\n")

	if len(d.Rows) == 0 {
		tw.printf("  %sNo metrics recorded for this node.%s\n", colorDim, colorReset)
		return tw.err
	}

	width := 0
	for _, row := range d.Rows {
		width = max(width, len(row.Key))
	}
	for _, row := range d.Rows {
		color := ""
		if row.Value == metrics.NotAvailable {
			color = colorDim
		}
		tw.printf("  %-*s  %s%s%s\n", width, row.Key, color, row.Value, colorReset)
	}
	return tw.err
}

// RenderCameraText prints the camera and the visible world rect.
func RenderCameraText(w io.Writer, v *viewport.Viewport) error {
	tw := &textWriter{w: w}
	c := v.Camera
	view := v.ViewBox()
	tw.printf("camera x=%.1f y=%.1f zoom=%.3f  view %.0fx%.0f at (%.1f, %.1f)\n",
		c.X, c.Y, c.Zoom, view.Width, view.Height, view.X, view.Y)
	return tw.err
}

func RenderComparisonText(w io.Writer, result comparator.ComparisonResult) error {
	tw := &textWriter{w: w}
	s := result.Summary

	tw.printf("%s%sSummary%s\n\n", colorBold, colorCyan, colorReset)
	if result.OldQueryID != "" || result.NewQueryID != "" {
		tw.printf("  Queries:        %s → %s\n", result.OldQueryID, result.NewQueryID)
	}
	tw.printf("  Operator Time:  %s\n", formatTimeDelta(s.OldTotalTime, s.NewTotalTime, s.TimePct, s.TimeDir))
	tw.printf("  Nodes:          %d → %d\n", s.OldNodes, s.NewNodes)
	tw.printf("\n")

	changes := s.NodesAdded + s.NodesRemoved + s.NodesModified + s.NodesTypeChanged
	if changes == 0 {
		tw.printf("%s%sProfiles are equivalent.%s\n", colorBold, colorGreen, colorReset)
		return tw.err
	}

	tw.printf("  Changes: %d modified, %d type changed, %d added, %d removed\n\n",
		s.NodesModified, s.NodesTypeChanged, s.NodesAdded, s.NodesRemoved)

	tw.printf("%s%sNode Details%s\n\n", colorBold, colorCyan, colorReset)

	for _, delta := range result.Deltas {
		tw.renderDelta(delta, 0)
	}

	tw.renderVerdict(s)

	return tw.err
}

func (tw *textWriter) renderDelta(d comparator.NodeDelta, depth int) {
	indent := strings.Repeat("  ", depth+1)

	switch d.ChangeType {
	case comparator.NoChange:
		for _, child := range d.Children {
			tw.renderDelta(child, depth)
		}
		return
	case comparator.Added:
		tw.printf("%s%s+ %s%s", indent, colorGreen, nodeLabel(d.Name, d.NewID, d.Table), colorReset)
		if d.NewTime > 0 {
			tw.printf(" (time=%s)", metrics.FormatTime(d.NewTime))
		}
		tw.printf("\n")
	case comparator.Removed:
		tw.printf("%s%s- %s%s", indent, colorRed, nodeLabel(d.Name, d.OldID, d.Table), colorReset)
		if d.OldTime > 0 {
			tw.printf(" (time=%s)", metrics.FormatTime(d.OldTime))
		}
		tw.printf("\n")
	case comparator.TypeChanged:
		tw.printf("%s%s~ %s → %s%s\n", indent, colorYellow,
			nodeLabel(d.OldName, d.OldID, ""), nodeLabel(d.NewName, d.NewID, ""), colorReset)
		tw.renderNodeMetrics(indent, d)
	case comparator.Modified:
		tw.printf("%s%s~ %s%s\n", indent, colorYellow, nodeLabel(d.Name, d.NewID, d.Table), colorReset)
		tw.renderNodeMetrics(indent, d)
	}

	for _, child := range d.Children {
		tw.renderDelta(child, depth+1)
	}
}

func (tw *textWriter) renderNodeMetrics(indent string, d comparator.NodeDelta) {
	if d.OldTime > 0 || d.NewTime > 0 {
		tw.printf("%s  time: %s\n", indent, formatTimeDelta(d.OldTime, d.NewTime, d.TimePct, d.TimeDir))
	}
	if d.OldRows != d.NewRows {
		tw.printf("%s  rows: %s → %s (%+.1f%%)\n", indent,
			metrics.FormatRows(d.OldRows), metrics.FormatRows(d.NewRows), d.RowsPct)
	}
	if d.OldSkew != d.NewSkew {
		color, arrow := deltaIndicator(d.OldSkew, d.NewSkew)
		tw.printf("%s  skew: %.2fx → %s%.2fx %s%s\n", indent, d.OldSkew, color, d.NewSkew, arrow, colorReset)
	}
}

func deltaIndicator(oldVal, newVal float64) (string, string) {
	if newVal > oldVal {
		return colorRed, "↑"
	}
	return colorGreen, "↓"
}

func formatTimeDelta(oldVal, newVal, pct float64, dir comparator.Direction) string {
	color := dirColor(dir)
	arrow := dirArrow(dir)
	return fmt.Sprintf("%s → %s%s %s (%+.1f%%)%s",
		metrics.FormatTime(oldVal), color, metrics.FormatTime(newVal), arrow, pct, colorReset)
}

func dirColor(d comparator.Direction) string {
	switch d {
	case comparator.Improved:
		return colorGreen
	case comparator.Regressed:
		return colorRed
	default:
		return ""
	}
}

func dirArrow(d comparator.Direction) string {
	switch d {
	case comparator.Improved:
		return "↓"
	case comparator.Regressed:
		return "↑"
	default:
		return ""
	}
}

func (tw *textWriter) renderVerdict(s comparator.Summary) {
	var color string
	switch s.TimeDir {
	case comparator.Improved:
		color = colorGreen
	case comparator.Regressed:
		color = colorRed
	}
	if color != "" {
		tw.printf("\n%sVerdict: %s%s\n", color, s.Verdict, colorReset)
	} else {
		tw.printf("\nVerdict: %s\n", s.Verdict)
	}
}

func nodeLabel(name string, id graph.NodeID, table string) string {
	if table != "" {
		return fmt.Sprintf("%s (%d) on %s", name, id, table)
	}
	return fmt.Sprintf("%s (%d)", name, id)
}
