package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// Matches either an optional FY prefix with a 4-digit year (1900-2099),
	// or an FY prefix with a 2-digit year (interpreted as 2000+).
	yearRE = regexp.MustCompile(`(?i)(?:FY\s?)?((?:20|19)\d{2})|(?:FY\s?)(\d{2})`)

	// Bounded estimate marker appended near the year digits.
	estimateRE = regexp.MustCompile(`(?i)(?:e|est)\b`)
)

// YearLabel resolves a raw cell value to a canonical fiscal-year label
// (`FY<2-digit-year>`, with an `E` suffix for estimates). The second return
// is false when the value contains no year. Only the first match in the
// string is considered.
func YearLabel(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}

	m := yearRE.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}

	var year int
	switch {
	case m[1] != "":
		year, _ = strconv.Atoi(m[1])
	case m[2] != "":
		short, _ := strconv.Atoi(m[2])
		year = 2000 + short
	default:
		return "", false
	}

	label := fmt.Sprintf("FY%02d", year%100)
	if estimateRE.MatchString(s) {
		label += "E"
	}
	return label, true
}

// LooksLikeYear reports whether the raw value contains a resolvable year.
func LooksLikeYear(raw string) bool {
	s := strings.TrimSpace(raw)
	if s == "" {
		return false
	}
	return yearRE.MatchString(s)
}
