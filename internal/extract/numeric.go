package extract

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Placeholder tokens that normalize to "absent".
var placeholderTokens = map[string]struct{}{
	"-": {}, "nan": {}, "none": {}, "null": {}, "n/a": {}, "na": {},
}

var (
	currencyRE   = regexp.MustCompile(`[₹$€£,]`)
	unitSuffixRE = regexp.MustCompile(`(?i)\s*(cr|crore|lakhs?|lacs?|mn|m|k|billion|bn)\s*$`)
	trailerRE    = regexp.MustCompile(`[%x]$`)
)

// NormalizeNumber converts a raw cell value to a canonical float. The second
// return is false when the value is empty, a placeholder token, or
// unparseable ("absent"). Malformed input never produces an error or a
// fabricated number.
//
// A trailing unit qualifier (crore/lakh/mn/k/bn/...) is stripped textually
// but the magnitude is NOT rescaled. This is a carried-over heuristic from
// the source data pipeline, kept as specified behavior rather than silently
// corrected; see DESIGN.md.
func NormalizeNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	if _, ok := placeholderTokens[strings.ToLower(s)]; ok {
		return 0, false
	}

	s = currencyRE.ReplaceAllString(s, "")
	s = unitSuffixRE.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)

	// Accounting-style parentheses mark negatives.
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") && len(s) >= 2 {
		neg = true
		s = s[1 : len(s)-1]
	}

	s = strings.TrimSpace(trailerRE.ReplaceAllString(s, ""))

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if neg {
		f = -f
	}
	return f, true
}
