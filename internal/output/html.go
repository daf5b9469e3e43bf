package output

import (
	"fmt"
	"html/template"
	"io"
	"strconv"
	"strings"

	"github.com/jacobarthurs/profileviz/internal/analyzer"
	"github.com/jacobarthurs/profileviz/internal/filter"
	"github.com/jacobarthurs/profileviz/internal/graph"
	"github.com/jacobarthurs/profileviz/internal/session"
)

// HTMLOptions configures the HTML renderer.
type HTMLOptions struct {
	Title         string
	IncludeStyles bool
}

// RenderHTML writes a standalone page with the plan drawn as inline SVG,
// framed by the session's camera.
func RenderHTML(w io.Writer, s *session.Session, opts HTMLOptions) error {
	if s == nil {
		return fmt.Errorf("html render: no session")
	}
	if opts.Title == "" {
		opts.Title = "profileviz"
		if s.QueryID != "" {
			opts.Title += " " + s.QueryID
		}
	}

	data := buildPageData(s, opts)
	tpl, err := template.New("page").Funcs(template.FuncMap{"num": num}).Parse(pageTemplate)
	if err != nil {
		return fmt.Errorf("html render: compile template: %w", err)
	}
	if err := tpl.Execute(w, data); err != nil {
		return fmt.Errorf("html render: execute template: %w", err)
	}
	return nil
}

type pageData struct {
	Title         string
	IncludeStyles bool
	QueryID       string
	Query         string
	Width         float64
	Height        float64
	ViewBox       string
	Nodes         []nodeShape
	Edges         []edgeShape
	Slowest       []slowRow
	Findings      []findingRow
}

type nodeShape struct {
	Anchor  string
	Class   string
	X, Y    float64
	W, H    float64
	Label   string
	Sub     string
	Tooltip string
}

type edgeShape struct {
	Class  string
	Path   string
	Stroke float64
}

type slowRow struct {
	Rank   int
	Anchor string
	Label  string
	Time   string
	Share  string
}

type findingRow struct {
	Severity string
	Anchor   string
	Text     string
	Hint     string
}

func buildPageData(s *session.Session, opts HTMLOptions) pageData {
	scene := s.Scene()
	view := scene.ViewBox

	data := pageData{
		Title:         opts.Title,
		IncludeStyles: opts.IncludeStyles,
		QueryID:       s.QueryID,
		Query:         scene.Query,
		Width:         s.Viewport.Width,
		Height:        s.Viewport.Height,
		ViewBox:       fmt.Sprintf("%s %s %s %s", num(view.X), num(view.Y), num(view.Width), num(view.Height)),
	}

	for _, e := range scene.Edges {
		if e.State == filter.Hidden {
			continue
		}
		data.Edges = append(data.Edges, edgeShape{
			Class:  "edge " + e.State.String(),
			Path:   e.Curve.Path(),
			Stroke: e.Stroke,
		})
	}

	for _, n := range scene.Nodes {
		if n.State == filter.Hidden {
			continue
		}
		classes := []string{"node", n.Class.String(), n.State.String()}
		if hl := n.Highlight.String(); hl != "" {
			classes = append(classes, hl)
		}
		sub := n.Time
		if n.Table != "" {
			sub = strings.TrimSpace(sub + " " + n.Table)
		}
		data.Nodes = append(data.Nodes, nodeShape{
			Anchor:  anchor(n.ID),
			Class:   strings.Join(classes, " "),
			X:       n.Box.X,
			Y:       n.Box.Y,
			W:       n.Box.Width,
			H:       n.Box.Height,
			Label:   n.Label,
			Sub:     sub,
			Tooltip: tooltip(s, n),
		})
	}

	shares := s.Analysis.Summary.Shares
	for i, op := range s.Slowest() {
		if i >= analyzer.TopN {
			break
		}
		data.Slowest = append(data.Slowest, slowRow{
			Rank:   i + 1,
			Anchor: anchor(op.ID),
			Label:  fmt.Sprintf("%s (%d)", op.Name, op.ID),
			Time:   op.TimeText,
			Share:  fmt.Sprintf("%.1f%%", shares[op.ID]),
		})
	}

	for _, f := range s.Analysis.Findings {
		data.Findings = append(data.Findings, findingRow{
			Severity: f.Severity.String(),
			Anchor:   anchor(f.NodeID),
			Text:     f.Description,
			Hint:     f.Suggestion,
		})
	}
	return data
}

func tooltip(s *session.Session, n session.SceneNode) string {
	d, ok := s.Detail(n.ID)
	if !ok {
		return n.Label
	}
	lines := []string{d.Label}
	for _, row := range d.Rows {
		lines = append(lines, row.Key+": "+row.Value)
	}
	return strings.Join(lines, "\n")
}

func anchor(id graph.NodeID) string {
	return "node-" + id.String()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
{{- if .IncludeStyles}}
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; margin: 0; display: flex; color: #1f2328; }
main { flex: 1; }
aside { width: 360px; padding: 16px; border-left: 1px solid #d0d7de; overflow-y: auto; height: 100vh; box-sizing: border-box; }
header { padding: 12px 16px; border-bottom: 1px solid #d0d7de; }
.query { font-family: monospace; color: #0969da; }
svg { display: block; background: #f6f8fa; }
.node rect { fill: #fff; stroke: #8c959f; stroke-width: 1.5; rx: 6; }
.node text { font-size: 13px; fill: #1f2328; }
.node text.sub { font-size: 11px; fill: #57606a; }
.node.scan rect { stroke: #1a7f37; }
.node.join rect { stroke: #8250df; }
.node.exchange rect { stroke: #0969da; }
.node.aggregate rect { stroke: #bf8700; }
.node.slowest rect { fill: #ffebe9; stroke: #cf222e; stroke-width: 3; }
.node.top5 rect { fill: #fff8c5; stroke-width: 2.5; }
.node.matched rect { stroke: #0969da; stroke-width: 3; }
.node.dimmed, .edge.dimmed { opacity: 0.25; }
.edge { fill: none; stroke: #8c959f; }
.edge.matched { stroke: #0969da; }
table { border-collapse: collapse; width: 100%; font-size: 13px; }
td { padding: 4px 6px; border-bottom: 1px solid #eaeef2; }
.critical { color: #cf222e; } .warning { color: #9a6700; } .info { color: #0969da; }
.hint { color: #57606a; font-size: 12px; }
</style>
{{- end}}
</head>
<body>
<main>
<header>
<strong>{{.Title}}</strong>
{{- if .Query}} <span class="query">{{.Query}}</span>{{end}}
</header>
<svg xmlns="http://www.w3.org/2000/svg" width="{{num .Width}}" height="{{num .Height}}" viewBox="{{.ViewBox}}">
<g class="edges">
{{- range .Edges}}
<path class="{{.Class}}" d="{{.Path}}" stroke-width="{{num .Stroke}}"/>
{{- end}}
</g>
<g class="nodes">
{{- range .Nodes}}
<g id="{{.Anchor}}" class="{{.Class}}" transform="translate({{num .X}} {{num .Y}})">
<title>{{.Tooltip}}</title>
<rect width="{{num .W}}" height="{{num .H}}"/>
<text x="10" y="24">{{.Label}}</text>
<text class="sub" x="10" y="46">{{.Sub}}</text>
</g>
{{- end}}
</g>
</svg>
</main>
<aside>
<h3>Slowest operators</h3>
{{- if .Slowest}}
<table>
{{- range .Slowest}}
<tr><td>{{.Rank}}</td><td><a href="#{{.Anchor}}">{{.Label}}</a></td><td>{{.Time}}</td><td>{{.Share}}</td></tr>
{{- end}}
</table>
{{- else}}
<p>No timed operators.</p>
{{- end}}
<h3>Findings</h3>
{{- range .Findings}}
<p><span class="{{.Severity}}">{{.Severity}}</span> <a href="#{{.Anchor}}">{{.Text}}</a><br><span class="hint">{{.Hint}}</span></p>
{{- else}}
<p>No issues found.</p>
{{- end}}
</aside>
</body>
</html>
`
