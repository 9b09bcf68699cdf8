package merge

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sells-group/teaser-cli/internal/extract"
	"github.com/sells-group/teaser-cli/internal/model"
)

// Inputs carries everything one profile build consumes. Packets arrive in
// document order; earlier packets win ties during merge.
type Inputs struct {
	CompanyName string
	Website     string
	Packets     []model.Packet
	Public      *model.PublicContext
	Generated   model.NarrativeProfile
	Vocab       *extract.Vocabulary
}

// BuildProfile folds per-document packets and public context into one
// CompanyProfile, recording a citation for every accepted fact. The returned
// profile is complete; callers must not mutate it afterwards.
func BuildProfile(in Inputs) *model.CompanyProfile {
	vocab := in.Vocab
	if vocab == nil {
		vocab = extract.DefaultVocabulary()
	}
	cs := NewCitationStore()

	var aggregated strings.Builder
	var financials *model.Financials
	kpis := make(model.KPIMap)
	var narrative model.NarrativeProfile

	for _, pkt := range in.Packets {
		if pkt.Err != "" {
			continue
		}
		if pkt.Financials != nil {
			financials = MergeFinancials(financials, pkt.Financials)
			cs.Add("Financial time-series extracted", model.SourcePrivateFile,
				pkt.SourceFile, "Workbook parse: revenue/EBITDA/PAT series (best-effort).")
		}
		if pkt.Text != "" {
			aggregated.WriteString("\n")
			aggregated.WriteString(pkt.Text)
		}
		mergeKPIs(kpis, pkt.KPIs, pkt.SourceFile, cs)
		if pkt.Narrative != nil {
			// Earlier packets win: the running merge overlays the new packet.
			narrative = MergeNarrative(*pkt.Narrative, narrative)
		}
	}

	publicUsed := false
	if in.Public != nil && in.Public.CombinedText != "" {
		publicUsed = true
		aggregated.WriteString("\n")
		aggregated.WriteString(in.Public.CombinedText)
		for _, page := range in.Public.Pages {
			if page.URL == "" {
				continue
			}
			cs.Add("Public qualitative context used (business model/products/market)",
				model.SourcePublicURL, page.URL, pickNonEmpty(page.Description, page.Title))
		}
	}

	text := strings.TrimSpace(aggregated.String())
	if text == "" {
		text = in.CompanyName
	}
	sector := extract.DetectSector(text, vocab)

	if !in.Generated.IsZero() {
		narrative = MergeNarrative(in.Generated, narrative)
		cs.Add("Narrative bullets generated (blind teaser)", model.SourceGenerated,
			"internal", fmt.Sprintf("Sector=%s; financials_used=%t; public_used=%t",
				sector, financials != nil, publicUsed))
	}

	deriveMargin(financials, kpis, cs)

	website := in.Website
	if website == "" {
		website = narrative.Website
	}

	return &model.CompanyProfile{
		CompanyName: in.CompanyName,
		Website:     website,
		Sector:      sector,
		Financials:  financials,
		KPIs:        kpis,
		Narrative:   narrative,
		Citations:   cs.List(),
	}
}

// mergeKPIs folds a packet's KPI map in with first-wins semantics. Falsy
// values (nil, false, empty string) never claim a key, so a later document
// can still provide a real value. Keys are visited in sorted order to keep
// citation output stable.
func mergeKPIs(dst, src model.KPIMap, sourceFile string, cs *CitationStore) {
	if len(src) == 0 {
		return
	}
	keys := make([]string, 0, len(src))
	for k := range src {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := src[k]
		if isFalsy(v) {
			continue
		}
		if _, ok := dst[k]; ok {
			continue
		}
		dst[k] = v
		cs.Add(fmt.Sprintf("KPI extracted: %s = %v", k, v), model.SourcePrivateFile,
			sourceFile, "Text pattern extraction (best-effort).")
	}
}

// deriveMargin computes the latest-year EBITDA margin when both series are
// present, aligned, and the latest revenue is nonzero. Derived values never
// displace an extracted ebitda_margin and are cited as generated.
func deriveMargin(fin *model.Financials, kpis model.KPIMap, cs *CitationStore) {
	if fin == nil {
		return
	}
	if _, ok := kpis["ebitda_margin"]; ok {
		return
	}
	rev, eb := fin.Revenue, fin.EBITDA
	if len(rev) == 0 || len(rev) != len(eb) || rev[len(rev)-1] == 0 {
		return
	}
	m := eb[len(eb)-1] / rev[len(rev)-1] * 100
	value := fmt.Sprintf("~%.1f%%", m)
	kpis["ebitda_margin"] = value
	cs.Add(fmt.Sprintf("KPI derived: ebitda_margin = %s", value), model.SourceGenerated,
		"internal", "Derived from EBITDA/Revenue latest year")
}

func isFalsy(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case bool:
		return !t
	case string:
		return strings.TrimSpace(t) == ""
	case float64:
		return t == 0
	case int:
		return t == 0
	}
	return false
}

func pickNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
