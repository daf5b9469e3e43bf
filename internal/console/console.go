// Package console drives a plan view session from line-oriented commands,
// one command per line.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/jacobarthurs/profileviz/internal/analyzer"
	"github.com/jacobarthurs/profileviz/internal/output"
	"github.com/jacobarthurs/profileviz/internal/profile"
	"github.com/jacobarthurs/profileviz/internal/session"
)

const prompt = "> "

// ErrQuit is returned by Exec for the quit command.
var ErrQuit = errors.New("quit")

// ErrNoSession is returned by view commands before a profile is loaded.
var ErrNoSession = errors.New("no profile loaded")

// LoadFunc reads the profile named by a load command argument.
type LoadFunc func(ctx context.Context, arg string) (*profile.Document, error)

type Console struct {
	view *session.View
	out  io.Writer
	load LoadFunc
	log  logrus.FieldLogger
}

func New(view *session.View, out io.Writer, load LoadFunc, log logrus.FieldLogger) *Console {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Console{view: view, out: out, load: load, log: log}
}

// Run reads commands from in until it is exhausted, ctx is cancelled or a
// quit command is read. Command errors are printed and do not stop the loop.
func (c *Console) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	fmt.Fprint(c.out, prompt)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := c.Exec(ctx, scanner.Text())
		if errors.Is(err, ErrQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(c.out, "error: %v\n", err)
		}
		fmt.Fprint(c.out, prompt)
	}
	fmt.Fprintln(c.out)
	return scanner.Err()
}

// Exec runs one command line.
func (c *Console) Exec(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}
	name, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	args := strings.Fields(rest)
	c.log.WithField("command", name).Debug("console command")

	switch strings.ToLower(name) {
	case "quit", "exit", "q":
		return ErrQuit
	case "help", "?":
		_, err := io.WriteString(c.out, helpText)
		return err
	case "load":
		return c.loadProfile(ctx, rest)
	}

	s := c.view.Current()
	if s == nil {
		return ErrNoSession
	}

	switch strings.ToLower(name) {
	case "pan":
		v, err := floats(args, 2)
		if err != nil {
			return fmt.Errorf("pan: %w", err)
		}
		s.PanBy(v[0], v[1])
		return output.RenderCameraText(c.out, s.Viewport)
	case "zoom":
		return c.zoom(s, args)
	case "grab":
		s.BeginGesture()
		return nil
	case "release":
		s.EndGesture()
		return output.RenderCameraText(c.out, s.Viewport)
	case "resize":
		v, err := floats(args, 2)
		if err != nil {
			return fmt.Errorf("resize: %w", err)
		}
		s.Resize(v[0], v[1])
		return output.RenderCameraText(c.out, s.Viewport)
	case "fit":
		s.FitToContent()
		return output.RenderCameraText(c.out, s.Viewport)
	case "camera":
		return output.RenderCameraText(c.out, s.Viewport)
	case "focus":
		return c.focus(s, args)
	case "filter":
		res := s.ApplyFilter(rest)
		return output.RenderFilterText(c.out, s.Graph, s.Filter().Query(), res)
	case "preview":
		res, ok := s.PreviewFilter(rest)
		if !ok {
			fmt.Fprintf(c.out, "incomplete query; keeping %q\n", s.Filter().Query())
		}
		return output.RenderFilterText(c.out, s.Graph, rest, res)
	case "unfilter":
		s.ClearFilter()
		return output.RenderFilterText(c.out, s.Graph, "", s.Filter().Result())
	case "remove":
		if len(args) != 1 {
			return fmt.Errorf("remove: expected a term index")
		}
		i, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("remove: invalid term index %q", args[0])
		}
		if !s.RemoveFilterTerm(i) {
			return fmt.Errorf("remove: no term %d in %q", i, s.Filter().Query())
		}
		return output.RenderFilterText(c.out, s.Graph, s.Filter().Query(), s.Filter().Result())
	case "terms":
		for i, term := range s.Filter().Spec().Terms() {
			fmt.Fprintf(c.out, "  %d  %s\n", i, term)
		}
		return nil
	case "top":
		limit := 0
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 0 {
				return fmt.Errorf("top: invalid count %q", args[0])
			}
			limit = n
		}
		return output.RenderAnalysisText(c.out, s.QueryID, s.Analysis, limit)
	case "detail":
		id, err := nodeArg(args)
		if err != nil {
			return fmt.Errorf("detail: %w", err)
		}
		d, ok := s.Detail(id)
		if !ok {
			return fmt.Errorf("detail: node %d not found", id)
		}
		return output.RenderDetailText(c.out, d)
	case "outline":
		return output.RenderOutlineText(c.out, s.Graph, s.Filter().Result(), analyzer.Highlights(s.Analysis.Ranked))
	default:
		return fmt.Errorf("unknown command %q (try help)", name)
	}
}

func (c *Console) loadProfile(ctx context.Context, arg string) error {
	if c.load == nil {
		return fmt.Errorf("load: not supported")
	}
	if arg == "" {
		return fmt.Errorf("load: expected a file or query id")
	}
	doc, err := c.load(ctx, arg)
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}
	s, err := c.view.Load(doc)
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}
	fmt.Fprintf(c.out, "loaded %s (%d nodes)\n", orUnnamed(s.QueryID), len(s.Graph.Nodes))
	return nil
}

// zoom takes a factor and an optional screen anchor; the anchor defaults to
// the centre of the screen.
func (c *Console) zoom(s *session.Session, args []string) error {
	if len(args) != 1 && len(args) != 3 {
		return fmt.Errorf("zoom: expected <factor> [x y]")
	}
	v, err := floats(args, len(args))
	if err != nil {
		return fmt.Errorf("zoom: %w", err)
	}
	x, y := s.Viewport.Width/2, s.Viewport.Height/2
	if len(v) == 3 {
		x, y = v[1], v[2]
	}
	s.ZoomAtPoint(x, y, v[0])
	return output.RenderCameraText(c.out, s.Viewport)
}

func (c *Console) focus(s *session.Session, args []string) error {
	if len(args) == 0 {
		if !s.FocusMatches() {
			return fmt.Errorf("focus: no filter matches to frame")
		}
		return output.RenderCameraText(c.out, s.Viewport)
	}
	id, err := nodeArg(args)
	if err != nil {
		return fmt.Errorf("focus: %w", err)
	}
	if !s.NavigateTo(id) {
		return fmt.Errorf("focus: node %d not found", id)
	}
	return output.RenderCameraText(c.out, s.Viewport)
}

func floats(args []string, n int) ([]float64, error) {
	if len(args) != n {
		return nil, fmt.Errorf("expected %d numbers, got %d", n, len(args))
	}
	v := make([]float64, n)
	for i, a := range args {
		f, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", a)
		}
		v[i] = f
	}
	return v, nil
}

func nodeArg(args []string) (profile.NodeID, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expected a node id")
	}
	return profile.ParseNodeID(args[0])
}

func orUnnamed(queryID string) string {
	if queryID == "" {
		return "profile"
	}
	return queryID
}

const helpText = `Commands:
  load <file|query-id>     replace the current profile
  pan <dx> <dy>            move the camera by a screen delta
  zoom <factor> [x y]      zoom about a screen point (default: centre)
  grab / release           start and end a drag; clamping waits for release
  resize <w> <h>           change the screen size
  fit                      frame the whole plan
  focus [node]             frame a node, or every filter match
  filter <query>           apply a filter, e.g. node=3+ & type=scan --hide
  preview <query>          evaluate a query without applying it
  terms                    list the applied filter terms
  remove <i>               drop filter term i
  unfilter                 clear the filter
  top [n]                  slowest operators and findings
  detail <node>            metric rows of one node
  outline                  the plan as an indented tree
  camera                   current camera
  quit
`
