package metrics

import (
	"strconv"
)

// Row is one key/value line of a node's detail popover.
type Row struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Detail lists the metrics worth showing for a node read as class. Values
// that the profile does not carry are shown as NotAvailable.
func (m *NodeMetrics) Detail(class OperatorClass) []Row {
	if m == nil || len(m.Instances) == 0 {
		return nil
	}

	var rows []Row
	switch class {
	case ClassScan:
		v := m.ScanView()
		rows = []Row{
			{"Table", orNA(v.Table)},
			{"Operator", v.Instance.Name},
			{"Total Time", FormatTime(v.Total)},
			{"Operator Time", timeOrNA(v.Instance, OperatorTotalTime)},
			{"Scan Time", timeOrNA(v.Instance, ScanTime)},
			{"Rows", rowsOrNA(v.Instance, PullRowNum)},
			{"Bytes Read", bytesOrNA(v.Instance, BytesRead)},
		}
	case ClassJoin:
		v := m.JoinView()
		rows = []Row{
			{"Join Type", orNA(v.JoinType)},
			{"Distribution", orNA(v.Probe.Metric(DistributionMode))},
			{"Total Time", FormatTime(v.Total)},
			{"Probe Time", timeOrNA(v.Probe, OperatorTotalTime)},
			{"Build Time", timeOrNA(v.Build, OperatorTotalTime)},
			{"Probe Rows", rowsOrNA(v.Probe, PullRowNum)},
			{"Build Rows", rowsOrNA(v.Build, PushRowNum)},
			{"Hash Table Memory", bytesOrNA(v.Build, HashTableMemoryUsage)},
		}
	case ClassExchange:
		v := m.ExchangeView()
		rows = []Row{
			{"Total Time", FormatTime(v.Total)},
			{"Source Time", timeOrNA(v.Source, OperatorTotalTime)},
			{"Sink Time", timeOrNA(v.Sink, OperatorTotalTime)},
			{"Network Time", timeOrNA(v.Sink, NetworkTime)},
			{"Rows", rowsOrNA(v.Source, PullRowNum)},
			{"Bytes Sent", bytesOrNA(v.Sink, BytesSent)},
		}
	case ClassAggregate, ClassProject, ClassUnion, ClassOther:
		rows = []Row{{"Total Time", FormatTime(m.TotalTime(class))}}
		for _, inst := range m.Instances {
			rows = append(rows, Row{inst.Name, timeOrNA(inst, OperatorTotalTime)})
		}
		if out := m.OutputRows(class); out > 0 {
			rows = append(rows, Row{"Rows", FormatRows(out)})
		}
	}

	if ratio, ok := m.Skew(); ok {
		rows = append(rows, Row{"Time Skew", strconv.FormatFloat(ratio, 'f', 2, 64) + "x"})
	}
	return rows
}

func orNA(s string) string {
	if s == "" {
		return NotAvailable
	}
	return s
}

func timeOrNA(inst *OperatorInstance, key string) string {
	raw := inst.Metric(key)
	if raw == "" {
		return NotAvailable
	}
	return FormatTime(ParseTime(raw))
}

func rowsOrNA(inst *OperatorInstance, key string) string {
	raw := inst.Metric(key)
	if raw == "" {
		return NotAvailable
	}
	return FormatRows(ParseRows(raw))
}

func bytesOrNA(inst *OperatorInstance, key string) string {
	raw := inst.Metric(key)
	if raw == "" {
		return NotAvailable
	}
	return FormatBytes(ParseBytes(raw))
}
