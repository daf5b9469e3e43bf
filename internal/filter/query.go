// Package filter implements the plan filter language: OR-groups of AND-terms
// over node ids, operator classes and scanned tables.
package filter

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/jacobarthurs/profileviz/internal/graph"
	"github.com/jacobarthurs/profileviz/internal/metrics"
)

// HideFlag switches non-matching nodes from dimmed to hidden.
const HideFlag = "--hide"

var ErrMalformed = errors.New("malformed filter query")

var (
	hideRe  = regexp.MustCompile(`(?i)--hide\b`)
	orRe    = regexp.MustCompile(`(?i)\s*,\s*|\s+or\s+`)
	andRe   = regexp.MustCompile(`(?i)\s*&\s*|\s+and\s+`)
	nodeRe  = regexp.MustCompile(`(?i)^(\+)?node\s*=\s*(-?\d+)(\+)?$`)
	typeRe  = regexp.MustCompile(`(?i)^type\s*=\s*(\S+)$`)
	tableRe = regexp.MustCompile(`(?i)^table\s*=\s*(\S.*)$`)

	// Separators next to a stripped hide flag, marked by hideMark.
	hideBetweenRe = regexp.MustCompile(`(?i)(\s*[,&]\s*|\s+(?:or|and)\s+)\s*\x00\s*(?:\s*[,&]\s*|\s+(?:or|and)\s+)`)
	hideAfterRe   = regexp.MustCompile(`(?i)(?:\s*[,&]\s*|\s+(?:or|and)\s+)\s*\x00`)
	hideBeforeRe  = regexp.MustCompile(`(?i)\x00\s*(?:\s*[,&]\s*|\s+(?:or|and)\s+)`)
)

const hideMark = " \x00 "

// Selector resolves one term of a query to a node set.
type Selector interface {
	Select(g *graph.Graph) graph.VisitSet
	String() string
}

// NodeSelector matches one node, optionally widened to its ancestors and
// descendants.
type NodeSelector struct {
	ID                 graph.NodeID
	IncludeAncestors   bool
	IncludeDescendants bool
}

func (s NodeSelector) Select(g *graph.Graph) graph.VisitSet {
	set := graph.VisitSet{}
	if _, ok := g.Node(s.ID); !ok {
		return set
	}
	set.Mark(s.ID)
	if s.IncludeAncestors {
		for _, id := range g.Ancestors(s.ID) {
			set.Mark(id)
		}
	}
	if s.IncludeDescendants {
		for _, id := range g.Descendants(s.ID) {
			set.Mark(id)
		}
	}
	return set
}

func (s NodeSelector) String() string {
	var b strings.Builder
	if s.IncludeAncestors {
		b.WriteByte('+')
	}
	fmt.Fprintf(&b, "node=%d", s.ID)
	if s.IncludeDescendants {
		b.WriteByte('+')
	}
	return b.String()
}

// TypeSelector matches every node of an operator class.
type TypeSelector struct {
	Class metrics.OperatorClass
}

func (s TypeSelector) Select(g *graph.Graph) graph.VisitSet {
	set := graph.VisitSet{}
	for _, id := range g.Preorder() {
		if g.Nodes[id].Class == s.Class {
			set.Mark(id)
		}
	}
	return set
}

func (s TypeSelector) String() string {
	return "type=" + s.Class.String()
}

// TableSelector matches scan nodes whose table equals Table, ignoring case.
type TableSelector struct {
	Table string
}

func (s TableSelector) Select(g *graph.Graph) graph.VisitSet {
	set := graph.VisitSet{}
	for _, id := range g.Preorder() {
		if table := g.Nodes[id].TableName(); table != "" && strings.EqualFold(table, s.Table) {
			set.Mark(id)
		}
	}
	return set
}

func (s TableSelector) String() string {
	return "table=" + s.Table
}

// Spec is a parsed query. A Spec without groups means no filter.
type Spec struct {
	Groups [][]Selector
	Hide   bool
}

func (s Spec) Empty() bool {
	return len(s.Groups) == 0
}

// Terms lists every selector in query order.
func (s Spec) Terms() []Selector {
	var terms []Selector
	for _, group := range s.Groups {
		terms = append(terms, group...)
	}
	return terms
}

// String renders the query in canonical form; Parse(s.String()) yields an
// equivalent Spec.
func (s Spec) String() string {
	groups := make([]string, 0, len(s.Groups))
	for _, group := range s.Groups {
		terms := make([]string, len(group))
		for i, sel := range group {
			terms[i] = sel.String()
		}
		groups = append(groups, strings.Join(terms, " & "))
	}
	query := strings.Join(groups, ", ")
	if s.Hide && query != "" {
		query += " " + HideFlag
	}
	return query
}

// Parse reads a filter query. Malformed or blank input yields an empty Spec.
func Parse(raw string) Spec {
	spec, err := parse(raw)
	if err != nil {
		return Spec{}
	}
	return spec
}

// Check reports why a query does not parse. Blank queries are valid and
// mean no filter.
func Check(raw string) error {
	_, err := parse(raw)
	return err
}

// stripHide removes every hide flag from raw along with the separator that
// joined it to the rest of the query.
func stripHide(raw string) (string, bool) {
	hide := false
	query := hideRe.ReplaceAllStringFunc(raw, func(string) string {
		hide = true
		return hideMark
	})
	if !hide {
		return raw, false
	}
	query = hideBetweenRe.ReplaceAllString(query, "$1")
	query = hideAfterRe.ReplaceAllString(query, "")
	query = hideBeforeRe.ReplaceAllString(query, "")
	query = strings.ReplaceAll(query, "\x00", " ")
	return query, true
}

func parse(raw string) (Spec, error) {
	var spec Spec
	query, hide := stripHide(raw)
	spec.Hide = hide
	query = strings.TrimSpace(query)
	if query == "" {
		return Spec{}, nil
	}

	for gi, group := range orRe.Split(query, -1) {
		group = strings.TrimSpace(group)
		if group == "" {
			return Spec{}, fmt.Errorf("%w: group %d is empty", ErrMalformed, gi+1)
		}
		var selectors []Selector
		for _, term := range andRe.Split(group, -1) {
			term = strings.TrimSpace(term)
			if term == "" {
				return Spec{}, fmt.Errorf("%w: group %d has an empty term", ErrMalformed, gi+1)
			}
			sel, err := parseTerm(term)
			if err != nil {
				return Spec{}, err
			}
			selectors = append(selectors, sel)
		}
		spec.Groups = append(spec.Groups, selectors)
	}
	return spec, nil
}

func parseTerm(term string) (Selector, error) {
	if m := nodeRe.FindStringSubmatch(term); m != nil {
		id, err := strconv.ParseInt(m[2], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: node id %q: %v", ErrMalformed, m[2], err)
		}
		return NodeSelector{
			ID:                 graph.NodeID(id),
			IncludeAncestors:   m[1] != "",
			IncludeDescendants: m[3] != "",
		}, nil
	}
	if m := typeRe.FindStringSubmatch(term); m != nil {
		class, ok := metrics.ParseClass(m[1])
		if !ok {
			return nil, fmt.Errorf("%w: unknown operator type %q", ErrMalformed, m[1])
		}
		return TypeSelector{Class: class}, nil
	}
	if m := tableRe.FindStringSubmatch(term); m != nil {
		return TableSelector{Table: strings.TrimSpace(m[1])}, nil
	}
	return nil, fmt.Errorf("%w: unrecognized term %q", ErrMalformed, term)
}
