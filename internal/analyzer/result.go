package analyzer

import (
	"github.com/jacobarthurs/profileviz/internal/graph"
	"github.com/jacobarthurs/profileviz/internal/metrics"
)

type Severity int

const (
	Info     Severity = 0
	Warning  Severity = 1
	Critical Severity = 2
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Critical:
		return "critical"
	default:
		return "unknown"
	}
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type Finding struct {
	Severity    Severity     `json:"severity"`
	NodeID      graph.NodeID `json:"nodeId"`
	Label       string       `json:"label"`
	Description string       `json:"description"`
	Suggestion  string       `json:"suggestion"`
}

// RankedOperator is one timed node in the slowest-first ranking.
type RankedOperator struct {
	ID       graph.NodeID          `json:"id"`
	Name     string                `json:"name"`
	Class    metrics.OperatorClass `json:"class"`
	Time     float64               `json:"timeUs"`
	TimeText string                `json:"time"`
}

// Summary aggregates node times over the whole plan.
type Summary struct {
	NodeCount  int     `json:"nodeCount"`
	TimedNodes int     `json:"timedNodes"`
	TotalTime  float64 `json:"totalTimeUs"`
	// Shares is each timed node's percentage of TotalTime.
	Shares map[graph.NodeID]float64 `json:"shares"`
}

type AnalysisResult struct {
	Findings []Finding        `json:"findings"`
	Ranked   []RankedOperator `json:"ranked"`
	Summary  Summary          `json:"summary"`
}
