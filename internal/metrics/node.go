package metrics

import "strings"

// Metric names read from operator instances.
const (
	OperatorTotalTime    = "OperatorTotalTime"
	ScanTime             = "ScanTime"
	NetworkTime          = "NetworkTime"
	PullRowNum           = "PullRowNum"
	PushRowNum           = "PushRowNum"
	TableName            = "Table"
	BytesRead            = "BytesRead"
	BytesSent            = "BytesSent"
	JoinType             = "JoinType"
	DistributionMode     = "DistributionMode"
	HashTableMemoryUsage = "HashTableMemoryUsage"

	maxPrefix = "__MAX_OF_"
	minPrefix = "__MIN_OF_"
)

// Operator names with special meaning when reconciling instances of one node.
const (
	ConnectorScan  = "CONNECTOR_SCAN"
	OlapScan       = "OLAP_SCAN"
	ExchangeSource = "EXCHANGE_SOURCE"
	ExchangeSink   = "EXCHANGE_SINK"
	joinProbe      = "JOIN_PROBE"
	joinBuild      = "JOIN_BUILD"
)

// OperatorInstance is one physical operator found in the profile.
type OperatorInstance struct {
	Name   string
	Common map[string]string
	Unique map[string]string
}

// Metric looks a metric up in the common metrics first, then the
// operator-specific ones. Missing metrics yield "".
func (o *OperatorInstance) Metric(key string) string {
	if o == nil {
		return ""
	}
	if v, ok := o.Common[key]; ok {
		return v
	}
	return o.Unique[key]
}

func (o *OperatorInstance) Time(key string) float64 {
	return ParseTime(o.Metric(key))
}

func (o *OperatorInstance) Rows(key string) int64 {
	return ParseRows(o.Metric(key))
}

// NodeMetrics gathers every operator instance that belongs to one plan node,
// in the order they were discovered.
type NodeMetrics struct {
	Class     OperatorClass
	Instances []*OperatorInstance
}

// ScanView is the scan reading of a node's instances.
type ScanView struct {
	Instance     *OperatorInstance
	OperatorTime float64
	ScanTime     float64
	Total        float64
	Table        string
	Rows         int64
	BytesRead    float64
}

// JoinView pairs the probe and build halves of a join. Either may be nil.
type JoinView struct {
	Probe     *OperatorInstance
	Build     *OperatorInstance
	ProbeTime float64
	BuildTime float64
	Total     float64
	ProbeRows int64
	BuildRows int64
	JoinType  string
}

// ExchangeView pairs the source and sink halves of an exchange. Either may be nil.
type ExchangeView struct {
	Source      *OperatorInstance
	Sink        *OperatorInstance
	SourceTime  float64
	SinkTime    float64
	NetworkTime float64
	Total       float64
	Rows        int64
	BytesSent   float64
}

func (m *NodeMetrics) ScanView() ScanView {
	if m == nil || len(m.Instances) == 0 {
		return ScanView{}
	}
	inst := m.find(func(name string) bool { return name == ConnectorScan || name == OlapScan })
	if inst == nil {
		inst = m.find(func(name string) bool { return strings.Contains(name, "SCAN") })
	}
	if inst == nil {
		inst = m.Instances[0]
	}

	v := ScanView{
		Instance:     inst,
		OperatorTime: inst.Time(OperatorTotalTime),
		ScanTime:     inst.Time(ScanTime),
		Table:        inst.Metric(TableName),
		Rows:         inst.Rows(PullRowNum),
		BytesRead:    ParseBytes(inst.Metric(BytesRead)),
	}
	v.Total = v.OperatorTime + v.ScanTime
	return v
}

func (m *NodeMetrics) JoinView() JoinView {
	if m == nil {
		return JoinView{}
	}
	probe := m.find(func(name string) bool { return strings.Contains(name, joinProbe) })
	build := m.find(func(name string) bool { return strings.Contains(name, joinBuild) })

	v := JoinView{
		Probe:     probe,
		Build:     build,
		ProbeTime: probe.Time(OperatorTotalTime),
		BuildTime: build.Time(OperatorTotalTime),
		ProbeRows: probe.Rows(PullRowNum),
		BuildRows: build.Rows(PushRowNum),
		JoinType:  probe.Metric(JoinType),
	}
	if v.JoinType == "" {
		v.JoinType = build.Metric(JoinType)
	}
	v.Total = v.ProbeTime + v.BuildTime
	return v
}

func (m *NodeMetrics) ExchangeView() ExchangeView {
	if m == nil {
		return ExchangeView{}
	}
	source := m.find(func(name string) bool { return name == ExchangeSource })
	sink := m.find(func(name string) bool { return name == ExchangeSink })

	v := ExchangeView{
		Source:      source,
		Sink:        sink,
		SourceTime:  source.Time(OperatorTotalTime),
		SinkTime:    sink.Time(OperatorTotalTime),
		NetworkTime: sink.Time(NetworkTime),
		Rows:        source.Rows(PullRowNum),
		BytesSent:   ParseBytes(sink.Metric(BytesSent)),
	}
	if source == nil {
		v.Rows = sink.Rows(PushRowNum)
	}
	v.Total = v.SourceTime + v.SinkTime + v.NetworkTime
	return v
}

// TotalTime is the node's time in microseconds when read as class.
func (m *NodeMetrics) TotalTime(class OperatorClass) float64 {
	if m == nil {
		return 0
	}
	switch class {
	case ClassScan:
		return m.ScanView().Total
	case ClassJoin:
		return m.JoinView().Total
	case ClassExchange:
		return m.ExchangeView().Total
	case ClassAggregate, ClassProject, ClassUnion, ClassOther:
		return m.sumTime(OperatorTotalTime)
	}
	return 0
}

// OutputRows is the number of rows the node hands to its parent.
func (m *NodeMetrics) OutputRows(class OperatorClass) int64 {
	if m == nil {
		return 0
	}
	switch class {
	case ClassScan:
		return m.ScanView().Rows
	case ClassJoin:
		return m.JoinView().ProbeRows
	case ClassExchange:
		return m.ExchangeView().Rows
	case ClassAggregate, ClassProject, ClassUnion, ClassOther:
		for _, inst := range m.Instances {
			if rows := inst.Rows(PullRowNum); rows > 0 {
				return rows
			}
		}
		for _, inst := range m.Instances {
			if rows := inst.Rows(PushRowNum); rows > 0 {
				return rows
			}
		}
	}
	return 0
}

// Skew is the ratio between the slowest and fastest parallel instance of
// the node's heaviest operator. ok is false when the profile carries no
// per-instance spread.
func (m *NodeMetrics) Skew() (ratio float64, ok bool) {
	if m == nil {
		return 0, false
	}
	for _, inst := range m.Instances {
		hi := inst.Time(maxPrefix + OperatorTotalTime)
		lo := inst.Time(minPrefix + OperatorTotalTime)
		if lo > 0 && hi >= lo && hi/lo > ratio {
			ratio = hi / lo
			ok = true
		}
	}
	return ratio, ok
}

func (m *NodeMetrics) sumTime(key string) float64 {
	var total float64
	for _, inst := range m.Instances {
		total += inst.Time(key)
	}
	return total
}

func (m *NodeMetrics) find(match func(name string) bool) *OperatorInstance {
	for _, inst := range m.Instances {
		if match(inst.Name) {
			return inst
		}
	}
	return nil
}
