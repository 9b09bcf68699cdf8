package extract

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/teaser-cli/internal/model"
)

// Field caps carried from the teaser layout: the renderer has fixed slots.
const (
	maxProducts     = 6
	maxApplications = 6
	maxCerts        = 5
	maxAssets       = 4
	maxMarkets      = 5
	maxCustomers    = 6
	maxBullets      = 5
	maxDescChars    = 400
)

var (
	urlRE        = regexp.MustCompile(`https?://\S+`)
	whitespaceRE = regexp.MustCompile(`\s+`)
	subsidiaryRE = regexp.MustCompile(`(?i)subsidiary\s+in\s+(\w+)`)
	customersRE  = regexp.MustCompile(`(?i)(?:customers?|clients?)\s+(?:include|such as|like)\s*:?\s*([^\n.]+)`)
	mncRE        = regexp.MustCompile(`(?i)(?:new\s+)?MNC\s+customer`)

	titleCaser = cases.Title(language.English)
)

// Asset count patterns, in the fixed output order they map to.
var assetPatterns = []struct {
	key string
	re  *regexp.Regexp
}{
	{"plants", regexp.MustCompile(`(?i)(\d+)\s*(?:plants?|manufacturing\s+(?:units?|facilities?))`)},
	{"facilities", regexp.MustCompile(`(?i)(\d+)\s*(?:facilities?|factories?)`)},
	{"employees", regexp.MustCompile(`(?i)(\d+[\d,]*)\+?\s*(?:employees?|people|team\s*(?:members?)?|staff)`)},
	{"rd_centers", regexp.MustCompile(`(?i)(\d+)\s*(?:R&D|research|development)\s*(?:centers?|labs?|facilities?)`)},
	{"countries", regexp.MustCompile(`(?i)(\d+)\+?\s*countries`)},
	{"years", regexp.MustCompile(`(?i)(?:over\s+)?(\d+)\+?\s*(?:years?|decades?)\s*(?:of\s+)?(?:experience|expertise|in\s+business)?`)},
}

// Phrases marking an operational bullet as a future/upcoming item.
var futureMarkers = []string{"upcoming", "planned", "fy25", "fy26", "new", "expansion", "capex"}

// NarrativeExtractor pulls structured narrative fields out of raw document
// text. All output fields are optional; a miss leaves the field zero.
type NarrativeExtractor struct {
	vocab *Vocabulary
}

// NewNarrativeExtractor creates an extractor bound to a vocabulary.
func NewNarrativeExtractor(vocab *Vocabulary) *NarrativeExtractor {
	return &NarrativeExtractor{vocab: vocab}
}

// Extract builds a NarrativeProfile from raw text.
func (e *NarrativeExtractor) Extract(text string) model.NarrativeProfile {
	var n model.NarrativeProfile
	if text == "" {
		return n
	}

	n.BizDesc = e.bizDesc(text)
	n.Website = website(text)
	n.Products = e.products(text)
	n.Applications = e.applications(text)
	n.Certifications = e.certifications(text)
	n.Assets = assets(text)
	n.ExportMarkets = e.exportMarkets(text)
	n.Customers = customers(text)
	n.UpcomingFacilities, n.Highlights = e.operational(text)

	if len(n.ExportMarkets) > 0 {
		named := n.ExportMarkets
		if len(named) > 4 {
			named = named[:4]
		}
		n.GlobalReach = fmt.Sprintf("Exports to %d+ global markets including %s.",
			len(n.ExportMarkets), strings.Join(named, ", "))
	}

	return n
}

// section returns the body of a named section: the text between the end of
// its header match and the start of the nearest following header match of
// any section. Empty when the header is missing.
func (e *NarrativeExtractor) section(text, name string) string {
	re := e.vocab.SectionRE(name)
	if re == nil {
		return ""
	}
	loc := re.FindStringIndex(text)
	if loc == nil {
		return ""
	}

	start := loc[1]
	end := len(text)
	rest := text[start:]
	for i := range e.vocab.Sections {
		if next := e.vocab.Sections[i].re.FindStringIndex(rest); next != nil && start+next[0] < end {
			end = start + next[0]
		}
	}
	return strings.TrimSpace(text[start:end])
}

func (e *NarrativeExtractor) bizDesc(text string) string {
	if body := e.section(text, "business_description"); body != "" {
		sentences := splitSentences(body)
		if len(sentences) > 3 {
			sentences = sentences[:3]
		}
		return truncate(strings.Join(sentences, " "), maxDescChars)
	}

	// Fallback: first paragraph-looking line.
	for _, line := range strings.Split(text, "\n") {
		if len(line) > 100 && !strings.HasPrefix(line, "•") && !strings.HasPrefix(line, "*") {
			return truncate(line, maxDescChars)
		}
	}
	return ""
}

func website(text string) string {
	m := urlRE.FindString(text)
	if m == "" {
		return ""
	}
	return strings.TrimRight(m, ".,;:")
}

func (e *NarrativeExtractor) products(text string) []model.Product {
	body := e.section(text, "products")
	if body == "" {
		return nil
	}

	var products []model.Product
	for _, line := range strings.Split(body, "\n") {
		t := strings.TrimSpace(line)
		if !strings.HasPrefix(t, "•") && !strings.HasPrefix(t, "*") {
			continue
		}
		category, details := splitBulletEntry(t)
		if len(category) <= 2 {
			continue
		}
		if details == "" {
			details = fmt.Sprintf("Key %s segment", strings.ToLower(category))
		}
		products = append(products, model.Product{
			Category: truncate(category, 50),
			Details:  truncate(details, 80),
		})
		if len(products) == maxProducts {
			return products
		}
	}
	if len(products) > 0 {
		return products
	}

	// No bullets recognized: treat each line as a bare category.
	for _, line := range strings.Split(body, "\n") {
		t := strings.Trim(strings.TrimSpace(line), "•* ")
		if len(t) > 3 && len(t) < 100 {
			products = append(products, model.Product{Category: truncate(t, 50)})
		}
		if len(products) == maxProducts {
			break
		}
	}
	return products
}

// splitBulletEntry parses a bulleted line as "category (details)" or
// "category: details" / "category - details".
func splitBulletEntry(line string) (category, details string) {
	t := strings.Trim(strings.TrimLeft(line, "•* \t"), "*")
	t = strings.TrimSpace(t)

	if i := strings.Index(t, "("); i >= 0 && strings.HasSuffix(t, ")") {
		return strings.TrimSpace(t[:i]), strings.TrimSpace(t[i+1 : len(t)-1])
	}
	if i := strings.Index(t, ":"); i >= 0 {
		return strings.TrimSpace(t[:i]), strings.TrimSpace(t[i+1:])
	}
	if i := strings.Index(t, " - "); i >= 0 {
		return strings.TrimSpace(t[:i]), strings.TrimSpace(t[i+3:])
	}
	return t, ""
}

func (e *NarrativeExtractor) applications(text string) []model.Application {
	body := e.section(text, "applications")
	if body == "" {
		return nil
	}

	clean := strings.NewReplacer("•", "", "*", "").Replace(body)
	var items []string
	if strings.Contains(clean, ",") {
		items = strings.Split(clean, ",")
	} else {
		items = strings.Split(clean, "\n")
	}
	if len(items) > maxApplications {
		items = items[:maxApplications]
	}

	var apps []model.Application
	for i, item := range items {
		item = strings.TrimSpace(item)
		if len(item) <= 2 {
			continue
		}
		// Position-based share heuristic: illustrative, not a measured split.
		share := 60 - i*10
		if share < 10 {
			share = 10
		}
		apps = append(apps, model.Application{
			Industry: truncate(item, 40),
			Share:    fmt.Sprintf("%d%%", share),
		})
	}
	return apps
}

func (e *NarrativeExtractor) certifications(text string) []string {
	var certs []string
	seen := map[string]struct{}{}
	for _, re := range e.vocab.certRE {
		for _, m := range re.FindAllString(text, -1) {
			cert := whitespaceRE.ReplaceAllString(strings.ToUpper(strings.TrimSpace(m)), " ")
			if _, ok := seen[cert]; ok {
				continue
			}
			seen[cert] = struct{}{}
			certs = append(certs, cert)
			if len(certs) == maxCerts {
				return certs
			}
		}
	}
	return certs
}

func assets(text string) []model.Asset {
	found := map[string]string{}
	for _, p := range assetPatterns {
		if _, ok := found[p.key]; ok {
			continue
		}
		if m := p.re.FindStringSubmatch(text); m != nil {
			found[p.key] = strings.ReplaceAll(m[1], ",", "")
		}
	}

	var out []model.Asset
	if v := firstNonEmpty(found["plants"], found["facilities"]); v != "" {
		out = append(out, model.Asset{Label: "Manufacturing Units", Value: v})
	}
	if v := found["rd_centers"]; v != "" {
		out = append(out, model.Asset{Label: "R&D Centers", Value: v})
	}
	if v := found["employees"]; v != "" {
		out = append(out, model.Asset{Label: "Employees", Value: v + "+"})
	}
	if v := found["years"]; v != "" {
		out = append(out, model.Asset{Label: "Years in Business", Value: v + "+"})
	}
	if v := found["countries"]; v != "" {
		out = append(out, model.Asset{Label: "Countries Presence", Value: v + "+"})
	}
	if len(out) > maxAssets {
		out = out[:maxAssets]
	}
	return out
}

func (e *NarrativeExtractor) exportMarkets(text string) []string {
	upper := strings.ToUpper(text)

	var markets []string
	for _, region := range e.vocab.Regions {
		if strings.Contains(upper, strings.ToUpper(region)) {
			markets = append(markets, region)
		}
	}

	if m := subsidiaryRE.FindStringSubmatch(text); m != nil {
		country := titleCaser.String(strings.ToLower(m[1]))
		if !containsString(markets, country) {
			markets = append(markets, country)
		}
	}

	if len(markets) > maxMarkets {
		markets = markets[:maxMarkets]
	}
	return markets
}

func customers(text string) []string {
	var out []string
	if m := customersRE.FindStringSubmatch(text); m != nil {
		for _, name := range strings.Split(m[1], ",") {
			name = strings.TrimSpace(name)
			if len(name) > 2 {
				out = append(out, name)
			}
			if len(out) == maxCustomers {
				return out
			}
		}
	}
	if len(out) == 0 && mncRE.MatchString(text) {
		out = append(out, "Major MNC Customer")
	}
	return out
}

// operational splits the operational-indicators section into upcoming
// facilities and general highlights.
func (e *NarrativeExtractor) operational(text string) (upcoming, highlights []string) {
	body := e.section(text, "operational")
	if body == "" {
		return nil, nil
	}

	n := 0
	for _, line := range strings.Split(body, "\n") {
		t := strings.TrimSpace(line)
		if !strings.HasPrefix(t, "•") && !strings.HasPrefix(t, "*") {
			continue
		}
		title, details := splitBulletEntry(t)
		if title == "" {
			continue
		}
		full := title
		if details != "" {
			full = title + ": " + details
		}
		full = truncate(full, 100)

		if hasFutureMarker(full) {
			upcoming = append(upcoming, full)
		} else {
			highlights = append(highlights, full)
		}
		n++
		if n == maxBullets {
			break
		}
	}
	return upcoming, highlights
}

func hasFutureMarker(s string) bool {
	low := strings.ToLower(s)
	for _, kw := range futureMarkers {
		if strings.Contains(low, kw) {
			return true
		}
	}
	return false
}

// splitSentences splits on sentence-ending punctuation followed by
// whitespace.
func splitSentences(s string) []string {
	var out []string
	start := 0
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '.', '!', '?':
			if i+1 < len(runes) && (runes[i+1] == ' ' || runes[i+1] == '\n' || runes[i+1] == '\t') {
				out = append(out, strings.TrimSpace(string(runes[start:i+1])))
				start = i + 1
			}
		}
	}
	if tail := strings.TrimSpace(string(runes[start:])); tail != "" {
		out = append(out, tail)
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
