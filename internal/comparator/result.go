package comparator

import (
	"github.com/jacobarthurs/profileviz/internal/graph"
)

type Direction int

const (
	Unchanged Direction = 0
	Improved  Direction = 1
	Regressed Direction = 2

	SignificanceThresholdPct = 1.0
)

func (d Direction) String() string {
	switch d {
	case Improved:
		return "improved"
	case Regressed:
		return "regressed"
	default:
		return "unchanged"
	}
}

type ChangeType int

const (
	NoChange    ChangeType = 0
	Modified    ChangeType = 1
	Added       ChangeType = 2
	Removed     ChangeType = 3
	TypeChanged ChangeType = 4
)

func (c ChangeType) String() string {
	switch c {
	case Modified:
		return "modified"
	case Added:
		return "added"
	case Removed:
		return "removed"
	case TypeChanged:
		return "type_changed"
	default:
		return "no_change"
	}
}

// NodeDelta pairs a node of the old plan with the node at the same tree
// position in the new plan. Ids may differ between the two profiles.
type NodeDelta struct {
	Name       string
	Table      string
	ChangeType ChangeType

	OldID graph.NodeID
	NewID graph.NodeID

	OldName string
	NewName string

	// Times in microseconds
	OldTime   float64
	NewTime   float64
	TimeDelta float64
	TimePct   float64
	TimeDir   Direction

	OldRows int64
	NewRows int64
	RowsPct float64

	// Parallel instance spread, 0 when the profile carries none
	OldSkew float64
	NewSkew float64

	Children []NodeDelta
}

type ComparisonResult struct {
	OldQueryID string
	NewQueryID string
	Deltas     []NodeDelta
	Summary    Summary
}

type Summary struct {
	OldTotalTime float64
	NewTotalTime float64
	TimeDelta    float64
	TimePct      float64
	TimeDir      Direction

	OldNodes int
	NewNodes int

	NodesAdded       int
	NodesRemoved     int
	NodesModified    int
	NodesTypeChanged int

	Verdict string
}
