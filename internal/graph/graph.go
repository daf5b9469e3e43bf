package graph

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/jacobarthurs/profileviz/internal/metrics"
	"github.com/jacobarthurs/profileviz/internal/profile"
)

// NodeID identifies a plan node.
type NodeID = profile.NodeID

var ErrRootNotFound = errors.New("declared root is not in the topology node list")

// Node is one plan node annotated with its runtime metrics. Metrics is nil
// when the profile has no operator instances for the node.
type Node struct {
	ID         NodeID
	Name       string
	Class      metrics.OperatorClass
	Children   []NodeID
	Properties map[string]any
	Metrics    *metrics.NodeMetrics
}

// TotalTime is the node's aggregated time in microseconds.
func (n *Node) TotalTime() float64 {
	return n.Metrics.TotalTime(n.Class)
}

// OutputRows is the number of rows the node produced.
func (n *Node) OutputRows() int64 {
	return n.Metrics.OutputRows(n.Class)
}

// Detail lists the node's metric rows for display.
func (n *Node) Detail() []metrics.Row {
	return n.Metrics.Detail(n.Class)
}

// TableName resolves the table a scan node reads. It is empty for every
// other class.
func (n *Node) TableName() string {
	if n.Class != metrics.ClassScan {
		return ""
	}
	if table := n.Metrics.ScanView().Table; table != "" {
		return table
	}
	if table, ok := n.Properties["table"].(string); ok {
		return table
	}
	return ""
}

// Graph is the plan tree of one loaded profile. It is built once and never
// mutated, apart from the memoised parent map.
type Graph struct {
	Root  NodeID
	Nodes map[NodeID]*Node
	// Order lists node ids as they appear in the topology.
	Order []NodeID

	problems *multierror.Error
	parents  map[NodeID]NodeID
}

// Build assembles the graph from a topology and the extracted metrics.
func Build(topology profile.Topology, m map[NodeID]*metrics.NodeMetrics) (*Graph, error) {
	g := &Graph{
		Root:  topology.RootID,
		Nodes: make(map[NodeID]*Node, len(topology.Nodes)),
	}

	for _, tn := range topology.Nodes {
		if _, dup := g.Nodes[tn.ID]; dup {
			g.problems = multierror.Append(g.problems, fmt.Errorf("node %d listed more than once; keeping the first", tn.ID))
			continue
		}
		node := &Node{
			ID:         tn.ID,
			Name:       tn.Name,
			Class:      metrics.Classify(tn.Name),
			Children:   append([]NodeID(nil), tn.Children...),
			Properties: tn.Properties,
			Metrics:    m[tn.ID],
		}
		if node.Class == metrics.ClassOther && node.Metrics != nil {
			node.Class = node.Metrics.Class
		}
		g.Nodes[tn.ID] = node
		g.Order = append(g.Order, tn.ID)
	}

	if _, ok := g.Nodes[g.Root]; !ok {
		return nil, fmt.Errorf("building graph: root %d: %w", g.Root, ErrRootNotFound)
	}

	for _, id := range g.Order {
		for _, child := range g.Nodes[id].Children {
			if _, ok := g.Nodes[child]; !ok {
				g.problems = multierror.Append(g.problems, fmt.Errorf("node %d references missing child %d", id, child))
			}
		}
	}

	reached := len(g.Preorder())
	if reached < len(g.Nodes) {
		g.problems = multierror.Append(g.problems, fmt.Errorf("%d of %d nodes are unreachable from root %d", len(g.Nodes)-reached, len(g.Nodes), g.Root))
	}

	return g, nil
}

// Problems reports topology defects that were tolerated while building:
// duplicate ids, dangling children and unreachable nodes. It is nil for a
// well-formed tree.
func (g *Graph) Problems() error {
	return g.problems.ErrorOrNil()
}

func (g *Graph) Node(id NodeID) (*Node, bool) {
	n, ok := g.Nodes[id]
	return n, ok
}

// Label is the short name shown for a node, e.g. "HASH_JOIN (2)".
func (n *Node) Label() string {
	return fmt.Sprintf("%s (%d)", strings.TrimSpace(n.Name), n.ID)
}
