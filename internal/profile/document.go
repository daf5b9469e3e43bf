package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

var (
	ErrMissingExecution = errors.New("profile has no Execution section")
	ErrMissingTopology  = errors.New("profile has no Topology in its Execution section")
)

// NodeID identifies a plan node. Negative ids are valid and denote synthetic
// nodes such as result sinks.
type NodeID int64

func (id NodeID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseNodeID parses a decimal, possibly negative, node id.
func ParseNodeID(s string) (NodeID, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid node id %q", s)
	}
	return NodeID(v), nil
}

// TopologyNode is one plan node of the topology description.
type TopologyNode struct {
	ID         NodeID         `json:"id"`
	Name       string         `json:"name"`
	Properties map[string]any `json:"properties,omitempty"`
	Children   []NodeID       `json:"children"`
}

// Topology is the parent->children adjacency of the plan, independent of runtime metrics.
type Topology struct {
	RootID NodeID         `json:"rootId"`
	Nodes  []TopologyNode `json:"nodes"`
}

// Document is a parsed query profile.
type Document struct {
	QueryID   string
	Summary   Object
	Execution Object
	Topology  Topology
}

// Parse decodes a query profile. The profile may be wrapped in a top-level
// "Query" object or start directly at that level.
func Parse(data []byte) (*Document, error) {
	root, err := DecodeObject(data)
	if err != nil {
		return nil, err
	}

	query := root
	if q := root.Object("Query"); q != nil {
		query = q
	}

	execution := query.Object("Execution")
	if execution == nil {
		return nil, ErrMissingExecution
	}

	raw, ok := execution.Get("Topology")
	if !ok {
		return nil, ErrMissingTopology
	}
	topology, err := parseTopology(raw)
	if err != nil {
		return nil, err
	}

	summary := query.Object("Summary")
	return &Document{
		QueryID:   summary.String("Query ID"),
		Summary:   summary,
		Execution: execution,
		Topology:  topology,
	}, nil
}

// parseTopology accepts the topology either as embedded JSON text (the usual
// form) or as an inline object.
func parseTopology(raw any) (Topology, error) {
	var text []byte
	switch v := raw.(type) {
	case string:
		text = []byte(v)
	case Object:
		b, err := json.Marshal(v.toMap())
		if err != nil {
			return Topology{}, fmt.Errorf("parsing topology: %w", err)
		}
		text = b
	default:
		return Topology{}, ErrMissingTopology
	}

	var topo Topology
	if err := json.Unmarshal(text, &topo); err != nil {
		return Topology{}, fmt.Errorf("parsing topology: %w", err)
	}
	if len(topo.Nodes) == 0 {
		return Topology{}, fmt.Errorf("parsing topology: %w", ErrMissingTopology)
	}
	return topo, nil
}

func (o Object) toMap() map[string]any {
	m := make(map[string]any, len(o))
	for _, e := range o {
		m[e.Key] = plainValue(e.Value)
	}
	return m
}

func plainValue(v any) any {
	switch val := v.(type) {
	case Object:
		return val.toMap()
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = plainValue(item)
		}
		return out
	default:
		return v
	}
}
