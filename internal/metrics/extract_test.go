package metrics

import (
	"testing"

	"github.com/jacobarthurs/profileviz/internal/fixture"
	"github.com/jacobarthurs/profileviz/internal/profile"
)

func instanceNames(m *NodeMetrics) []string {
	var names []string
	for _, inst := range m.Instances {
		names = append(names, inst.Name)
	}
	return names
}

func TestExtract_Sample(t *testing.T) {
	doc := fixture.Load(t, "sample.json")
	got := Extract(doc.Execution)

	if len(got) != 7 {
		t.Fatalf("expected 7 indexed nodes (6 plan nodes + result sink), got %d", len(got))
	}

	sink, ok := got[-1]
	if !ok {
		t.Fatal("negative plan node id -1 was dropped")
	}
	if sink.Instances[0].Name != "RESULT_SINK" {
		t.Errorf("sink instance = %q", sink.Instances[0].Name)
	}

	exchange := got[4]
	names := instanceNames(exchange)
	if len(names) != 2 || names[0] != ExchangeSource || names[1] != ExchangeSink {
		t.Errorf("exchange instances = %v, want source then sink", names)
	}
	if exchange.Class != ClassExchange {
		t.Errorf("exchange class = %v", exchange.Class)
	}

	scan := got[5]
	if names := instanceNames(scan); len(names) != 2 || names[0] != "LOCAL_EXCHANGE_SINK" {
		t.Errorf("scan instances = %v, want discovery order", names)
	}
	if scan.Class != ClassScan {
		t.Errorf("scan class = %v, want scan", scan.Class)
	}

	if got[3].Class != ClassAggregate || got[2].Class != ClassJoin {
		t.Errorf("classes = %v / %v", got[3].Class, got[2].Class)
	}
}

func TestExtract_SkipsUnrecognizedKeys(t *testing.T) {
	exec, err := profile.DecodeObject([]byte(`{
		"Topology": "{}",
		"Fragment 0": {
			"BackendNum": 3,
			"Pipeline (id=0)": {
				"DegreeOfParallelism": 4,
				"OLAP_SCAN (plan_node_id=7)": {"CommonMetrics": {"OperatorTotalTime": "1ms"}},
				"garbage": {"CommonMetrics": {"OperatorTotalTime": "9ms"}}
			},
			"Pipeline id=1": {
				"OLAP_SCAN (plan_node_id=8)": {"CommonMetrics": {"OperatorTotalTime": "1ms"}}
			}
		},
		"Fragment x": {
			"Pipeline (id=0)": {
				"OLAP_SCAN (plan_node_id=9)": {"CommonMetrics": {"OperatorTotalTime": "1ms"}}
			}
		}
	}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	got := Extract(exec)
	if len(got) != 1 {
		t.Fatalf("expected only node 7, got %d nodes", len(got))
	}
	if _, ok := got[7]; !ok {
		t.Error("node 7 missing")
	}
}

func TestExtract_FlatOperatorMetrics(t *testing.T) {
	exec, err := profile.DecodeObject([]byte(`{
		"Fragment 0": {"Pipeline (id=0)": {
			"PROJECT (plan_node_id=3)": {"OperatorTotalTime": "2ms", "PullRowNum": 10}
		}}
	}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	got := Extract(exec)
	project := got[3]
	if project == nil {
		t.Fatal("node 3 missing")
	}
	if tt := project.TotalTime(ClassProject); tt != 2000 {
		t.Errorf("TotalTime = %g, want 2000", tt)
	}
	if rows := project.OutputRows(ClassProject); rows != 10 {
		t.Errorf("OutputRows = %d, want 10", rows)
	}
}
