package narrative

import (
	"fmt"
	"math"
	"strings"

	"github.com/sells-group/teaser-cli/internal/extract"
	"github.com/sells-group/teaser-cli/internal/model"
)

const (
	// defaultGrowthPct stands in when a CAGR cannot be computed.
	defaultGrowthPct = 15

	maxFallbackCerts     = 5
	maxFallbackCustomers = 6
	descSnippetChars     = 250
)

// CAGR returns the compound annual growth rate of the series as a rounded
// integer percent. Series shorter than two points or with non-positive
// endpoints yield the default growth rate.
func CAGR(series []float64) int {
	if len(series) < 2 {
		return defaultGrowthPct
	}
	start, end := series[0], series[len(series)-1]
	if start <= 0 || end <= 0 {
		return defaultGrowthPct
	}
	n := float64(len(series) - 1)
	return int(math.Round((math.Pow(end/start, 1/n) - 1) * 100))
}

// Fallback builds a deterministic sector-template profile when no model
// output is available. Certifications and customers come from the sector
// vocabulary and are illustrative; highlights are sector hooks seeded with
// the revenue CAGR where one exists.
func Fallback(in Input, vocab *extract.Vocabulary) model.NarrativeProfile {
	if vocab == nil {
		vocab = extract.DefaultVocabulary()
	}
	sector := vocab.Sector(in.Sector)

	desc := fmt.Sprintf("The Company is a player in %s.", in.Sector)
	if len(in.PublicText) > 100 {
		desc = truncate(strings.TrimSpace(in.PublicText), descSnippetChars) + "..."
	}

	var revenue []float64
	if in.Financials != nil {
		revenue = in.Financials.Revenue
	}

	return model.NarrativeProfile{
		BizDesc:        desc,
		Certifications: capList(sector.Certifications, maxFallbackCerts),
		Customers:      capList(sector.Customers, maxFallbackCustomers),
		Highlights:     sectorHighlights(in.Sector, CAGR(revenue)),
	}
}

func capList(items []string, n int) []string {
	if len(items) > n {
		items = items[:n]
	}
	return append([]string(nil), items...)
}

// sectorHighlights returns five investment-highlight hooks for the sector
// family. Matching is on sector-name substrings so related sectors share a
// template.
func sectorHighlights(sector string, cagr int) []string {
	s := strings.ToLower(sector)
	growth := fmt.Sprintf("Revenue CAGR ~%d%% where applicable", cagr)

	switch {
	case strings.Contains(s, "chemical") || strings.Contains(s, "manufact"):
		return []string{
			"Leading position in a niche portfolio with differentiated processing know-how and high entry barriers.",
			"Exposure to recession-resistant end-markets with strong customer stickiness and repeat business characteristics.",
			"Strategically located manufacturing footprint enabling efficient raw material procurement and logistics.",
			"Established presence in high-compliance export markets supported by certifications and quality systems.",
			fmt.Sprintf("Superior financial profile with consistent growth (%s) and healthy margins.", growth),
		}
	case strings.Contains(s, "consumer") || strings.Contains(s, "d2c"):
		return []string{
			"Strong brand traction across key online marketplaces supported by high customer repeat behavior.",
			"Attractive unit economics with improving contribution margins and operating leverage potential.",
			"Scaled product portfolio addressing multiple adjacencies with whitespace for category expansion.",
			"Efficient go-to-market supported by data-driven marketing and retention-led growth levers.",
			fmt.Sprintf("High growth trajectory (%s) with clear path to profitability.", growth),
		}
	case strings.Contains(s, "pharma") || strings.Contains(s, "health"):
		return []string{
			"Compliance-led operating model with strong quality systems and process controls.",
			"Diversified product/therapy exposure with potential for complex, higher-margin offerings.",
			"Export-ready footprint supported by certifications and regulatory readiness.",
			"Sticky customer relationships supported by long qualification cycles and switching costs.",
			fmt.Sprintf("Consistent scale-up with improving margins (%s).", growth),
		}
	case strings.Contains(s, "logistics"):
		return []string{
			"Network density and service breadth enabling high utilization and strong customer retention.",
			"Strategically located hubs supporting efficient throughput and reduced transit times.",
			"Growing exposure to structurally growing end-markets (e-commerce, pharma, industrial).",
			"Operational levers to expand margins via automation, routing optimization, and scale benefits.",
			fmt.Sprintf("Visible growth runway with expanding capacity (%s).", growth),
		}
	case strings.Contains(s, "saas") || strings.Contains(s, "tech"):
		return []string{
			"Mission-critical product positioning with high switching costs and sticky customer workflows.",
			"Scalable software economics with strong gross margins and operating leverage potential.",
			"Multiple expansion levers via add-ons, integrations, and enterprise upsell.",
			"Large addressable market with whitespace across verticals and geographies.",
			fmt.Sprintf("Healthy growth profile (%s) supported by retention-led expansion.", growth),
		}
	}
	return []string{
		"Defensible positioning with clear differentiation and durable customer demand drivers.",
		"Operational scale-up with identifiable levers for margin improvement.",
		"Diversified customer/end-market exposure to reduce cyclicality.",
		"Opportunity to accelerate growth via capacity, distribution, or product expansion initiatives.",
		fmt.Sprintf("Consistent financial trajectory (%s).", growth),
	}
}
