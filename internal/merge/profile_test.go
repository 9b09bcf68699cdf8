package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/teaser-cli/internal/model"
)

func TestBuildProfile(t *testing.T) {
	packets := []model.Packet{
		{
			SourceFile: "financials.xlsx",
			Financials: &model.Financials{
				Years:   []string{"FY22", "FY23"},
				Revenue: []float64{100, 120},
				EBITDA:  []float64{18, 24},
				Sources: map[string]model.Provenance{
					model.MetricRevenue: {SourceFile: "financials.xlsx"},
				},
			},
		},
		{
			SourceFile: "teaser.txt",
			Text:       "Pharmaceutical formulations maker with WHO-GMP plants and API exports.",
			KPIs: model.KPIMap{
				"roce":          "22%",
				"who_gmp":       true,
				"zero_debt":     false,
				"fda_approved":  false,
				"iso_certified": false,
				"profitable":    false,
			},
			Narrative: &model.NarrativeProfile{
				BizDesc: "Formulations maker.",
			},
		},
	}
	public := &model.PublicContext{
		CombinedText: "Contract manufacturer of generic drugs.",
		Pages: []model.CrawledPage{
			{URL: "https://example.com/about", Title: "About", Description: "Company overview"},
		},
	}
	generated := model.NarrativeProfile{
		BizDesc:   "Generated description.",
		Customers: []string{"Customer A"},
	}

	profile := BuildProfile(Inputs{
		CompanyName: "Project Neptune",
		Packets:     packets,
		Public:      public,
		Generated:   generated,
	})

	assert.Equal(t, "Project Neptune", profile.CompanyName)
	assert.Equal(t, "Pharma / Healthcare", profile.Sector)

	require.NotNil(t, profile.Financials)
	assert.Equal(t, []float64{100, 120}, profile.Financials.Revenue)

	// Extracted fields win; generated only fills gaps.
	assert.Equal(t, "Formulations maker.", profile.Narrative.BizDesc)
	assert.Equal(t, []string{"Customer A"}, profile.Narrative.Customers)

	// Falsy flags never claim a KPI key.
	assert.Equal(t, "22%", profile.KPIs["roce"])
	assert.Equal(t, true, profile.KPIs["who_gmp"])
	_, ok := profile.KPIs["zero_debt"]
	assert.False(t, ok)

	// Latest-year margin 24/120 derived once and tagged generated.
	assert.Equal(t, "~20.0%", profile.KPIs["ebitda_margin"])

	var sources []model.SourceType
	for _, c := range profile.Citations {
		sources = append(sources, c.SourceType)
	}
	assert.Contains(t, sources, model.SourcePrivateFile)
	assert.Contains(t, sources, model.SourcePublicURL)
	assert.Contains(t, sources, model.SourceGenerated)
}

func TestBuildProfile_FirstPacketWinsKPIs(t *testing.T) {
	packets := []model.Packet{
		{SourceFile: "a.txt", KPIs: model.KPIMap{"roce": "22%"}},
		{SourceFile: "b.txt", KPIs: model.KPIMap{"roce": "99%", "roe": "21%"}},
	}

	profile := BuildProfile(Inputs{CompanyName: "X", Packets: packets})
	assert.Equal(t, "22%", profile.KPIs["roce"])
	assert.Equal(t, "21%", profile.KPIs["roe"])
}

func TestBuildProfile_ErroredPacketSkipped(t *testing.T) {
	packets := []model.Packet{
		{SourceFile: "bad.xlsx", Err: "decode failed", KPIs: model.KPIMap{"roce": "1%"}},
	}

	profile := BuildProfile(Inputs{CompanyName: "X", Packets: packets})
	assert.Empty(t, profile.KPIs)
	assert.Empty(t, profile.Citations)
	assert.Nil(t, profile.Financials)
}

func TestBuildProfile_SectorFallsBackToCompanyName(t *testing.T) {
	profile := BuildProfile(Inputs{CompanyName: "Apex Pharma Labs"})
	assert.Equal(t, "Pharma / Healthcare", profile.Sector)
}

func TestBuildProfile_DerivedMarginGuards(t *testing.T) {
	// Misaligned series never produce a derived margin.
	packets := []model.Packet{
		{
			SourceFile: "f.xlsx",
			Financials: &model.Financials{
				Years:   []string{"FY22", "FY23"},
				Revenue: []float64{100, 120},
				EBITDA:  []float64{18},
			},
		},
	}
	profile := BuildProfile(Inputs{CompanyName: "X", Packets: packets})
	_, ok := profile.KPIs["ebitda_margin"]
	assert.False(t, ok)

	// An extracted margin is never displaced.
	packets = []model.Packet{
		{
			SourceFile: "f.xlsx",
			Financials: &model.Financials{
				Years:   []string{"FY22", "FY23"},
				Revenue: []float64{100, 120},
				EBITDA:  []float64{18, 24},
			},
			KPIs: model.KPIMap{"ebitda_margin": "~19%"},
		},
	}
	profile = BuildProfile(Inputs{CompanyName: "X", Packets: packets})
	assert.Equal(t, "~19%", profile.KPIs["ebitda_margin"])
}
