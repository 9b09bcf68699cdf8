package extract

import (
	"regexp"
	"strings"

	"github.com/sells-group/teaser-cli/internal/model"
)

// kpiPattern pairs a KPI key with its value-capturing pattern. Patterns are
// evaluated in this fixed order; the first match in the text wins per key.
type kpiPattern struct {
	key string
	re  *regexp.Regexp
}

var kpiPatterns = []kpiPattern{
	{"ebitda_margin", regexp.MustCompile(`(?i)EBITDA\s*Margin\s*[:\-]?\s*([~]?\d{1,2}\.?\d{0,2}\s*%)`)},
	{"pat_margin", regexp.MustCompile(`(?i)(?:PAT|Net\s+Profit)\s*Margin\s*[:\-]?\s*([~]?\d{1,2}\.?\d{0,2}\s*%)`)},
	{"roe", regexp.MustCompile(`(?i)\bRo[EA]\b\s*[:\-]?\s*([~]?\d{1,2}\.?\d{0,2}\s*%)`)},
	{"roce", regexp.MustCompile(`(?i)\bRoCE\b\s*[:\-]?\s*([~]?\d{1,2}\.?\d{0,2}\s*%)`)},
	{"revenue_cagr", regexp.MustCompile(`(?i)Revenue\s*CAGR\s*[:\-]?\s*([~]?\d{1,2}\.?\d{0,2}\s*%)`)},
	{"employees", regexp.MustCompile(`(?i)(?:Employees?|Headcount|Team\s+Size)\s*[:\-]?\s*([\d,]+(?:\+)?)`)},
	{"facilities", regexp.MustCompile(`(?i)(?:Facilities?|Plants?|Units?)\s*[:\-]?\s*(\d+)`)},
	{"countries", regexp.MustCompile(`(?i)(?:Countries|Markets)\s*[:\-]?\s*(\d+\+?)`)},
	{"customers", regexp.MustCompile(`(?i)(?:Customers?|Clients?)\s*[:\-]?\s*([\d,]+\+?)`)},
}

// Boolean flag phrases, presence-tested over the whole text. Unlike the
// numeric keys, flags are always present in the result.
var kpiFlags = []struct {
	key string
	re  *regexp.Regexp
}{
	{model.KPIZeroDebt, regexp.MustCompile(`(?i)\bzero\s+debt\b`)},
	{model.KPIProfitable, regexp.MustCompile(`(?i)\bprofitable\b|\bprofit\s+making\b`)},
	{model.KPIISOCertified, regexp.MustCompile(`(?i)\bISO\s*\d{4}\b`)},
	{model.KPIWHOGMP, regexp.MustCompile(`(?i)\bWHO[\-\s]?GMP\b`)},
	{model.KPIFDAApproved, regexp.MustCompile(`(?i)\bFDA\s*(?:approved|approval)\b`)},
}

// ExtractKPIs scans raw text for financial and operational indicators.
// Numeric keys are omitted entirely when not found; omission means "not
// found", never zero.
func ExtractKPIs(text string) model.KPIMap {
	kpis := make(model.KPIMap)
	if text == "" {
		for _, f := range kpiFlags {
			kpis[f.key] = false
		}
		return kpis
	}

	for _, p := range kpiPatterns {
		if m := p.re.FindStringSubmatch(text); m != nil {
			kpis[p.key] = strings.TrimSpace(m[1])
		}
	}
	for _, f := range kpiFlags {
		kpis[f.key] = f.re.MatchString(text)
	}
	return kpis
}
