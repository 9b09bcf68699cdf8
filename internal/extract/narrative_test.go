package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/teaser-cli/internal/model"
)

const narrativeFixture = `Company Overview
Acme Specialty makes advanced polymer compounds for heavy machinery. It ships to customers across several continents. Operations began in 2001. A fourth sentence that should be dropped.

Product Portfolio
• Polymer Compounds (engineering grade masterbatches)
• Specialty Additives: stabilizers and antioxidants
• Coatings

Key Applications
Automotive, Packaging, Construction

Key Operational Indicators
• Upcoming facility: greenfield plant in Gujarat
• Capacity utilization - 85 percent

Website
https://www.acme-example.com/.

The company operates 3 manufacturing units and 2 R&D centers with 450+
employees, with over 20 years of experience. Exports to USA, Europe and the
Middle East with a subsidiary in Singapore. Certified for ISO 9001:2015 and
WHO-GMP; FDA approved. Clients include Asian Paints, Pidilite, BASF.`

func TestNarrativeExtractor(t *testing.T) {
	e := NewNarrativeExtractor(DefaultVocabulary())
	n := e.Extract(narrativeFixture)

	assert.Equal(t,
		"Acme Specialty makes advanced polymer compounds for heavy machinery. "+
			"It ships to customers across several continents. Operations began in 2001.",
		n.BizDesc)

	assert.Equal(t, "https://www.acme-example.com/", n.Website)

	require.Len(t, n.Products, 3)
	assert.Equal(t, model.Product{Category: "Polymer Compounds", Details: "engineering grade masterbatches"}, n.Products[0])
	assert.Equal(t, model.Product{Category: "Specialty Additives", Details: "stabilizers and antioxidants"}, n.Products[1])
	// Bare bullet gets a templated details line.
	assert.Equal(t, model.Product{Category: "Coatings", Details: "Key coatings segment"}, n.Products[2])

	require.Len(t, n.Applications, 3)
	assert.Equal(t, model.Application{Industry: "Automotive", Share: "60%"}, n.Applications[0])
	assert.Equal(t, model.Application{Industry: "Packaging", Share: "50%"}, n.Applications[1])
	assert.Equal(t, model.Application{Industry: "Construction", Share: "40%"}, n.Applications[2])

	assert.Equal(t, []string{"ISO 9001:2015", "WHO-GMP", "FDA APPROVED"}, n.Certifications)

	// Fixed label order, capped at four entries.
	require.Len(t, n.Assets, 4)
	assert.Equal(t, model.Asset{Label: "Manufacturing Units", Value: "3"}, n.Assets[0])
	assert.Equal(t, model.Asset{Label: "R&D Centers", Value: "2"}, n.Assets[1])
	assert.Equal(t, model.Asset{Label: "Employees", Value: "450+"}, n.Assets[2])
	assert.Equal(t, model.Asset{Label: "Years in Business", Value: "20+"}, n.Assets[3])

	assert.Equal(t, []string{"USA", "Europe", "Middle East", "Asia", "Singapore"}, n.ExportMarkets)
	assert.Equal(t, "Exports to 5+ global markets including USA, Europe, Middle East, Asia.", n.GlobalReach)

	assert.Equal(t, []string{"Asian Paints", "Pidilite", "BASF"}, n.Customers)

	assert.Equal(t, []string{"Upcoming facility: greenfield plant in Gujarat"}, n.UpcomingFacilities)
	assert.Equal(t, []string{"Capacity utilization: 85 percent"}, n.Highlights)
}

func TestNarrativeExtractor_BizDescFallback(t *testing.T) {
	e := NewNarrativeExtractor(DefaultVocabulary())

	text := "• a bullet line that is quite long but starts with a bullet so it is skipped entirely here\n" +
		"The firm is a precision components maker serving several industrial segments across the region with steady demand."
	n := e.Extract(text)

	assert.Equal(t,
		"The firm is a precision components maker serving several industrial segments across the region with steady demand.",
		n.BizDesc)
}

func TestNarrativeExtractor_CustomerFallback(t *testing.T) {
	e := NewNarrativeExtractor(DefaultVocabulary())

	n := e.Extract("Added a new MNC customer during the year.")
	assert.Equal(t, []string{"Major MNC Customer"}, n.Customers)
}

func TestNarrativeExtractor_EmptyText(t *testing.T) {
	e := NewNarrativeExtractor(DefaultVocabulary())

	n := e.Extract("")
	assert.True(t, n.IsZero())
}

func TestSplitBulletEntry(t *testing.T) {
	tests := []struct {
		line     string
		category string
		details  string
	}{
		{"• Valves (industrial grade)", "Valves", "industrial grade"},
		{"* Pumps: centrifugal and gear", "Pumps", "centrifugal and gear"},
		{"• Seals - custom moulded", "Seals", "custom moulded"},
		{"• Gaskets", "Gaskets", ""},
	}
	for _, tt := range tests {
		category, details := splitBulletEntry(tt.line)
		assert.Equal(t, tt.category, category, tt.line)
		assert.Equal(t, tt.details, details, tt.line)
	}
}
