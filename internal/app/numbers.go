package app

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	commaThousands = regexp.MustCompile(`^\d{1,3}(,\d{3})+$`)
	dotThousands   = regexp.MustCompile(`^\d{1,3}(\.\d{3})+$`)
)

// ParseNumber converts a spreadsheet number in either Chilean ("1.234.567,89")
// or US ("1,234,567.89") notation, with currency symbols or percent signs, to a
// float. Empty or unparsable input returns def.
//
// With a single kind of separator, a value made of well-formed triplets is
// read as thousands grouping: "1.234" is 1234, not 1.234. A signed value never
// is, so "-70.650" stays -70.65.
func ParseNumber(raw string, def float64) float64 {
	if strings.TrimSpace(raw) == "" {
		return def
	}

	s := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' || r == ',' || r == '.' || r == '-' {
			return r
		}
		return -1
	}, raw)
	if s == "" {
		return def
	}

	hasDot := strings.Contains(s, ".")
	hasComma := strings.Contains(s, ",")
	switch {
	case hasDot && hasComma:
		// the separator that appears last is the decimal one
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case hasComma:
		if commaThousands.MatchString(s) {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.ReplaceAll(s, ",", ".")
		}
	case hasDot:
		if dotThousands.MatchString(s) {
			s = strings.ReplaceAll(s, ".", "")
		}
	}

	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return def
	}
	return n
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
