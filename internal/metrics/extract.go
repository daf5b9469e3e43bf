package metrics

import (
	"regexp"
	"strconv"

	"github.com/jacobarthurs/profileviz/internal/profile"
)

var (
	fragmentKeyRe = regexp.MustCompile(`^Fragment \d+$`)
	pipelineKeyRe = regexp.MustCompile(`^Pipeline \(id=\d+\)$`)
	operatorKeyRe = regexp.MustCompile(`^(.+) \(plan_node_id=(-?\d+)\)$`)
)

const (
	commonMetricsKey = "CommonMetrics"
	uniqueMetricsKey = "UniqueMetrics"
)

// Extract indexes every operator instance of an Execution section by plan
// node id. Instances keep the order they appear in the document.
func Extract(execution profile.Object) map[profile.NodeID]*NodeMetrics {
	out := make(map[profile.NodeID]*NodeMetrics)

	for _, fragment := range execution {
		fragmentObj, ok := fragment.Value.(profile.Object)
		if !ok || !fragmentKeyRe.MatchString(fragment.Key) {
			continue
		}
		for _, pipeline := range fragmentObj {
			pipelineObj, ok := pipeline.Value.(profile.Object)
			if !ok || !pipelineKeyRe.MatchString(pipeline.Key) {
				continue
			}
			for _, op := range pipelineObj {
				collectOperator(op, out)
			}
		}
	}

	for _, m := range out {
		m.Class = classifyInstances(m.Instances)
	}
	return out
}

func collectOperator(op profile.Entry, out map[profile.NodeID]*NodeMetrics) {
	opObj, ok := op.Value.(profile.Object)
	if !ok {
		return
	}
	match := operatorKeyRe.FindStringSubmatch(op.Key)
	if match == nil {
		return
	}
	id, err := strconv.ParseInt(match[2], 10, 64)
	if err != nil {
		return
	}

	inst := &OperatorInstance{
		Name:   match[1],
		Common: opObj.Object(commonMetricsKey).Strings(),
		Unique: opObj.Object(uniqueMetricsKey).Strings(),
	}
	if _, ok := opObj.Get(commonMetricsKey); !ok {
		if _, ok := opObj.Get(uniqueMetricsKey); !ok {
			inst.Common = opObj.Strings()
		}
	}

	node := out[profile.NodeID(id)]
	if node == nil {
		node = &NodeMetrics{}
		out[profile.NodeID(id)] = node
	}
	node.Instances = append(node.Instances, inst)
}

func classifyInstances(instances []*OperatorInstance) OperatorClass {
	for _, inst := range instances {
		if c := Classify(inst.Name); c != ClassOther {
			return c
		}
	}
	return ClassOther
}
