// Package anonymize scrubs identifying details from profile text before it
// leaves the pipeline. Blind teasers must not leak the company's name,
// website, or contact details.
package anonymize

import (
	"math/rand"
	"regexp"
	"strings"

	"github.com/sells-group/teaser-cli/internal/model"
)

var (
	emailRE = regexp.MustCompile(`[\w.-]+@[\w.-]+`)
	phoneRE = regexp.MustCompile(`\+?\d[\d -]{8,12}\d`)
)

// codenames for blind-teaser project names.
var codenames = []string{
	"Apex", "Stellar", "Horizon", "Summit", "Pinnacle", "Titan", "Orion",
	"Nova", "Zenith",
}

// Codename returns a random blind-teaser project name.
func Codename() string {
	return "Project " + codenames[rand.Intn(len(codenames))]
}

// Anonymizer masks contact details and, when configured, the company's own
// name and website wherever they appear in free text.
type Anonymizer struct {
	nameRE *regexp.Regexp
	siteRE *regexp.Regexp
}

// New creates an Anonymizer for one company. Either identifier may be empty.
func New(companyName, website string) *Anonymizer {
	a := &Anonymizer{}
	if strings.TrimSpace(companyName) != "" {
		a.nameRE = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(strings.TrimSpace(companyName)))
	}
	if site := strings.TrimSpace(website); site != "" {
		site = strings.TrimPrefix(site, "https://")
		site = strings.TrimPrefix(site, "http://")
		site = strings.TrimSuffix(site, "/")
		if site != "" {
			a.siteRE = regexp.MustCompile(`(?i)(?:https?://)?` + regexp.QuoteMeta(site) + `/?`)
		}
	}
	return a
}

// Text masks emails, phone numbers, and the configured identifiers.
func (a *Anonymizer) Text(s string) string {
	if s == "" {
		return ""
	}
	s = emailRE.ReplaceAllString(s, "[EMAIL_REDACTED]")
	s = phoneRE.ReplaceAllString(s, "[PHONE_REDACTED]")
	if a.siteRE != nil {
		s = a.siteRE.ReplaceAllString(s, "[WEBSITE_REDACTED]")
	}
	if a.nameRE != nil {
		s = a.nameRE.ReplaceAllString(s, "the Company")
	}
	return s
}

// Profile scrubs every free-text narrative field in place. Structured values
// (series, KPIs, citations) are left alone: citations are an internal
// reference document, not teaser content.
func (a *Anonymizer) Profile(p *model.CompanyProfile) {
	if p == nil {
		return
	}
	n := &p.Narrative
	n.BizDesc = a.Text(n.BizDesc)
	n.GlobalReach = a.Text(n.GlobalReach)
	for i := range n.Products {
		n.Products[i].Category = a.Text(n.Products[i].Category)
		n.Products[i].Details = a.Text(n.Products[i].Details)
	}
	for i := range n.Highlights {
		n.Highlights[i] = a.Text(n.Highlights[i])
	}
	for i := range n.UpcomingFacilities {
		n.UpcomingFacilities[i] = a.Text(n.UpcomingFacilities[i])
	}
	for i := range n.Customers {
		n.Customers[i] = a.Text(n.Customers[i])
	}
}

// Blind replaces the profile's own identity fields with a codename. The
// original name survives only in the citation list.
func Blind(p *model.CompanyProfile) {
	if p == nil {
		return
	}
	p.CompanyName = Codename()
	p.Website = ""
	p.Narrative.Website = ""
}
