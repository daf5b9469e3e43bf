package metrics

import "strings"

// OperatorClass is the closed set of operator kinds the plan view treats differently.
type OperatorClass int

const (
	ClassOther OperatorClass = iota
	ClassScan
	ClassJoin
	ClassExchange
	ClassAggregate
	ClassProject
	ClassUnion
)

func (c OperatorClass) String() string {
	switch c {
	case ClassScan:
		return "scan"
	case ClassJoin:
		return "join"
	case ClassExchange:
		return "exchange"
	case ClassAggregate:
		return "aggregate"
	case ClassProject:
		return "project"
	case ClassUnion:
		return "union"
	default:
		return "other"
	}
}

func (c OperatorClass) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Classify maps an operator or plan node name to its class. This is the only
// place that inspects operator names; everything downstream switches on the class.
func Classify(name string) OperatorClass {
	upper := strings.ToUpper(name)
	switch {
	case strings.Contains(upper, "LOCAL_EXCHANGE"):
		return ClassOther
	case strings.Contains(upper, "SCAN"):
		return ClassScan
	case strings.Contains(upper, "JOIN"):
		return ClassJoin
	case strings.Contains(upper, "EXCHANGE"):
		return ClassExchange
	case strings.Contains(upper, "AGG"):
		return ClassAggregate
	case strings.Contains(upper, "PROJECT"):
		return ClassProject
	case strings.Contains(upper, "UNION"):
		return ClassUnion
	default:
		return ClassOther
	}
}

// ParseClass reads the lower-case class names used by filter queries.
// "other" is not selectable.
func ParseClass(s string) (OperatorClass, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "scan":
		return ClassScan, true
	case "join":
		return ClassJoin, true
	case "exchange":
		return ClassExchange, true
	case "aggregate":
		return ClassAggregate, true
	case "project":
		return ClassProject, true
	case "union":
		return ClassUnion, true
	default:
		return ClassOther, false
	}
}
