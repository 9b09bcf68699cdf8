package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/teaser-cli/internal/model"
)

func TestExtractKPIs(t *testing.T) {
	text := `Company Overview
EBITDA Margin: ~18.5%
Net Profit Margin: 9%
RoE: 21%
RoCE: 22%
Revenue CAGR - 15%
Employees: 1,200+
Plants: 4
Countries: 15+
The company is a zero debt, profitable business with ISO 9001
certification and WHO-GMP compliance.`

	kpis := ExtractKPIs(text)

	assert.Equal(t, "~18.5%", kpis["ebitda_margin"])
	assert.Equal(t, "9%", kpis["pat_margin"])
	assert.Equal(t, "21%", kpis["roe"])
	assert.Equal(t, "22%", kpis["roce"])
	assert.Equal(t, "15%", kpis["revenue_cagr"])
	assert.Equal(t, "1,200+", kpis["employees"])
	assert.Equal(t, "4", kpis["facilities"])
	assert.Equal(t, "15+", kpis["countries"])

	assert.Equal(t, true, kpis[model.KPIZeroDebt])
	assert.Equal(t, true, kpis[model.KPIProfitable])
	assert.Equal(t, true, kpis[model.KPIISOCertified])
	assert.Equal(t, true, kpis[model.KPIWHOGMP])
	assert.Equal(t, false, kpis[model.KPIFDAApproved])
}

func TestExtractKPIs_TildeKept(t *testing.T) {
	// An approximation tilde is part of the captured value.
	kpis := ExtractKPIs("RoCE: ~22%")
	assert.Equal(t, "~22%", kpis["roce"])
}

func TestExtractKPIs_MissingNumericKeysOmitted(t *testing.T) {
	kpis := ExtractKPIs("A trading house operating since 1995.")

	_, ok := kpis["roe"]
	assert.False(t, ok)
	_, ok = kpis["employees"]
	assert.False(t, ok)

	// Flags are present regardless.
	assert.Equal(t, false, kpis[model.KPIProfitable])
	assert.Equal(t, false, kpis[model.KPIZeroDebt])
}

func TestExtractKPIs_EmptyText(t *testing.T) {
	kpis := ExtractKPIs("")

	assert.Len(t, kpis, 5)
	for _, key := range []string{
		model.KPIZeroDebt, model.KPIProfitable, model.KPIISOCertified,
		model.KPIWHOGMP, model.KPIFDAApproved,
	} {
		assert.Equal(t, false, kpis[key])
	}
}

func TestExtractKPIs_RoceDoesNotFeedRoe(t *testing.T) {
	kpis := ExtractKPIs("RoCE: 22%")

	assert.Equal(t, "22%", kpis["roce"])
	_, ok := kpis["roe"]
	assert.False(t, ok)
}
