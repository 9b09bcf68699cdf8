package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadVocabulary(t *testing.T) {
	v, err := LoadVocabulary()
	require.NoError(t, err)

	// Metric vocabularies keep their priority order.
	require.Len(t, v.Metrics, 3)
	assert.Equal(t, "revenue", v.Metrics[0].Metric)
	assert.Equal(t, "ebitda", v.Metrics[1].Metric)
	assert.Equal(t, "pat", v.Metrics[2].Metric)
	assert.NotEmpty(t, v.Metrics[0].Keywords)

	assert.NotEmpty(t, v.Regions)
	assert.NotEmpty(t, v.Sectors)
}

func TestVocabulary_SectionRE(t *testing.T) {
	v := DefaultVocabulary()

	re := v.SectionRE("products")
	require.NotNil(t, re)
	assert.True(t, re.MatchString("Product Portfolio\n"))
	assert.True(t, re.MatchString("product portfolio\n"))

	assert.Nil(t, v.SectionRE("no_such_section"))
}

func TestVocabulary_Sector(t *testing.T) {
	v := DefaultVocabulary()

	fintech := v.Sector("Fintech")
	assert.Equal(t, "Fintech", fintech.Name)
	assert.Contains(t, fintech.Keywords, "payment")
	assert.NotEmpty(t, fintech.Certifications)
	assert.NotEmpty(t, fintech.Customers)

	// Unknown names resolve to the catch-all sector.
	general := v.Sector("Space Mining")
	assert.Equal(t, GeneralSector, general.Name)
}

func TestDefaultVocabulary_Cached(t *testing.T) {
	assert.Same(t, DefaultVocabulary(), DefaultVocabulary())
}
