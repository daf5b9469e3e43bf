package filter

import (
	"github.com/jacobarthurs/profileviz/internal/graph"
)

type Phase int

const (
	Idle Phase = iota
	Applied
)

func (p Phase) String() string {
	if p == Applied {
		return "applied"
	}
	return "idle"
}

// State tracks the filter applied to one graph.
type State struct {
	g      *graph.Graph
	spec   Spec
	result Result
}

func NewState(g *graph.Graph) *State {
	return &State{g: g}
}

func (s *State) Phase() Phase {
	if s.spec.Empty() {
		return Idle
	}
	return Applied
}

func (s *State) Spec() Spec {
	return s.spec
}

// Query is the applied query in canonical form, or "" when idle.
func (s *State) Query() string {
	return s.spec.String()
}

func (s *State) Result() Result {
	return s.result
}

// Apply commits a query. Blank or malformed input clears the filter.
func (s *State) Apply(raw string) Result {
	s.set(Parse(raw))
	return s.result
}

// Preview applies a query that is still being typed. Blank input clears the
// filter; a query that does not parse yet leaves the applied filter in place
// and reports false.
func (s *State) Preview(raw string) (Result, bool) {
	spec, err := parse(raw)
	if err != nil {
		return s.result, false
	}
	s.set(spec)
	return s.result, true
}

func (s *State) Clear() {
	s.set(Spec{})
}

// RemoveTerm drops the i-th term, counted across groups in query order, and
// re-applies what is left. Removing the last term returns to Idle.
func (s *State) RemoveTerm(i int) bool {
	terms := s.spec.Terms()
	if i < 0 || i >= len(terms) {
		return false
	}

	next := Spec{Hide: s.spec.Hide}
	n := 0
	for _, group := range s.spec.Groups {
		var kept []Selector
		for _, sel := range group {
			if n != i {
				kept = append(kept, sel)
			}
			n++
		}
		if len(kept) > 0 {
			next.Groups = append(next.Groups, kept)
		}
	}
	s.Apply(next.String())
	return true
}

func (s *State) set(spec Spec) {
	s.spec = spec
	s.result = Evaluate(s.g, spec)
}
