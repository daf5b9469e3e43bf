package metrics

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// NotAvailable is displayed in place of a metric that is missing or unreadable.
const NotAvailable = "N/A"

var (
	timePartRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(ns|us|µs|ms|h|m|s)`)
	bytesRe    = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*([KMGTP]?B)?$`)
	rowsRe     = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*([KMB])?$`)
	exactRe    = regexp.MustCompile(`\((\d+)\)\s*$`)
)

var timeUnits = map[string]float64{
	"ns": 1e-3,
	"us": 1,
	"µs": 1,
	"ms": 1e3,
	"s":  1e6,
	"m":  60e6,
	"h":  3600e6,
}

var byteUnits = []string{"B", "KB", "MB", "GB", "TB", "PB"}

// ParseTime converts a duration string such as "1.592ms" or "26s134ms" to
// microseconds. A bare number is read as nanoseconds. Anything unreadable is 0.
func ParseTime(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == NotAvailable {
		return 0
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v * timeUnits["ns"]
	}

	matches := timePartRe.FindAllStringSubmatchIndex(s, -1)
	if matches == nil {
		return 0
	}

	var total float64
	pos := 0
	for _, m := range matches {
		if strings.TrimSpace(s[pos:m[0]]) != "" {
			return 0
		}
		v, err := strconv.ParseFloat(s[m[2]:m[3]], 64)
		if err != nil {
			return 0
		}
		total += v * timeUnits[s[m[4]:m[5]]]
		pos = m[1]
	}
	if strings.TrimSpace(s[pos:]) != "" {
		return 0
	}
	return total
}

// FormatTime renders microseconds in the largest unit that keeps the
// magnitude at or above one.
func FormatTime(us float64) string {
	switch {
	case us <= 0 || math.IsNaN(us):
		return "0"
	case us < 1:
		return formatNum(us*1e3) + "ns"
	case us < 1e3:
		return formatNum(us) + "us"
	case us < 1e6:
		return formatNum(us/1e3) + "ms"
	case us < 60e6:
		return formatNum(us/1e6) + "s"
	case us < 3600e6:
		return formatNum(us/60e6) + "m"
	default:
		return formatNum(us/3600e6) + "h"
	}
}

// ParseBytes converts strings such as "1.500 KB" to a byte count using
// binary prefixes.
func ParseBytes(s string) float64 {
	m := bytesRe.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(s)))
	if m == nil {
		return 0
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	for i, unit := range byteUnits {
		if m[2] == unit {
			return v * math.Pow(1024, float64(i))
		}
	}
	return v
}

func FormatBytes(b float64) string {
	if b <= 0 || math.IsNaN(b) {
		return "0 B"
	}
	i := 0
	for b >= 1024 && i < len(byteUnits)-1 {
		b /= 1024
		i++
	}
	return formatNum(b) + " " + byteUnits[i]
}

// ParseRows reads a row count. When the text carries the exact count in
// parentheses, as in "207.615K (207615)", that value wins over the shorthand.
func ParseRows(s string) int64 {
	s = strings.TrimSpace(s)
	if m := exactRe.FindStringSubmatch(s); m != nil {
		if v, err := strconv.ParseInt(m[1], 10, 64); err == nil {
			return v
		}
	}

	m := rowsRe.FindStringSubmatch(strings.ToUpper(s))
	if m == nil {
		return 0
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	switch m[2] {
	case "K":
		v *= 1e3
	case "M":
		v *= 1e6
	case "B":
		v *= 1e9
	}
	return int64(math.Round(v))
}

func FormatRows(n int64) string {
	switch {
	case n < 1000:
		return strconv.FormatInt(n, 10)
	case n < 1e6:
		return strconv.FormatFloat(float64(n)/1e3, 'f', 3, 64) + "K (" + strconv.FormatInt(n, 10) + ")"
	case n < 1e9:
		return strconv.FormatFloat(float64(n)/1e6, 'f', 3, 64) + "M (" + strconv.FormatInt(n, 10) + ")"
	default:
		return strconv.FormatFloat(float64(n)/1e9, 'f', 3, 64) + "B (" + strconv.FormatInt(n, 10) + ")"
	}
}

func formatNum(v float64) string {
	return strconv.FormatFloat(math.Round(v*1000)/1000, 'f', -1, 64)
}
