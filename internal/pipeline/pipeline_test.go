package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/teaser-cli/internal/model"
	"github.com/sells-group/teaser-cli/internal/narrative"
	"github.com/sells-group/teaser-cli/internal/store"
)

const teaserText = `Company Overview
Acme Precision Components is a manufacturing business producing industrial components for OEM customers across durable end-markets with deep precision engineering capability.

Key Financial Indicators
EBITDA Margin: 18%
Employees: 450+
`

func writeWorkbook(t *testing.T, dir, name string, rows [][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("P&L")
	require.NoError(t, err)
	for _, rowData := range rows {
		row := sheet.AddRow()
		for _, cellData := range rowData {
			row.AddCell().SetString(cellData)
		}
	}
	path := filepath.Join(dir, name)
	require.NoError(t, f.Save(path))
	return path
}

func writeText(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func financialsRows() [][]string {
	return [][]string{
		{"Particulars", "FY22", "FY23", "FY24"},
		{"Revenue", "100", "120", "140"},
		{"EBITDA", "20", "24", "28"},
		{"PAT", "10", "12", "14"},
	}
}

// stubScraper returns canned public context and counts invocations.
type stubScraper struct {
	calls  int
	public *model.PublicContext
	err    error
}

func (s *stubScraper) GatherContext(_ context.Context, _ []string) (*model.PublicContext, error) {
	s.calls++
	return s.public, s.err
}

func TestProcess_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	wb := writeWorkbook(t, dir, "financials.xlsx", financialsRows())
	txt := writeText(t, dir, "teaser.txt", teaserText)

	p := New(Config{})
	profile, err := p.Process(context.Background(), "Acme Precision Components", "", []Document{
		{Path: wb, Kind: model.FileKindWorkbook},
		{Path: txt, Kind: model.FileKindText},
	})
	require.NoError(t, err)

	assert.Equal(t, "Acme Precision Components", profile.CompanyName)
	assert.Equal(t, "B2B Manufacturing", profile.Sector)
	assert.Equal(t, []string{"FY22", "FY23", "FY24"}, profile.Financials.Years)
	assert.Equal(t, []float64{100, 120, 140}, profile.Financials.Revenue)
	assert.Equal(t, []float64{20, 24, 28}, profile.Financials.EBITDA)

	// Extracted margin survives; flags that tested false never claim keys.
	assert.Equal(t, "18%", profile.KPIs["ebitda_margin"])
	assert.Equal(t, "450+", profile.KPIs["employees"])
	assert.NotContains(t, profile.KPIs, "zero_debt")

	// The overview paragraph names the company; anonymization rewrites it.
	assert.NotContains(t, profile.Narrative.BizDesc, "Acme Precision Components")
	assert.NotEmpty(t, profile.Citations)
}

func TestProcess_MultiSheetWorkbook(t *testing.T) {
	// Sheet 1 carries no recognizable year row; the financial series comes
	// from sheet 2 and the run still succeeds.
	dir := t.TempDir()
	f := xlsx.NewFile()
	notes, err := f.AddSheet("Notes")
	require.NoError(t, err)
	for _, rowData := range [][]string{
		{"Prepared by management"},
		{"All figures are provisional"},
	} {
		row := notes.AddRow()
		for _, cellData := range rowData {
			row.AddCell().SetString(cellData)
		}
	}
	pnl, err := f.AddSheet("P&L")
	require.NoError(t, err)
	for _, rowData := range financialsRows() {
		row := pnl.AddRow()
		for _, cellData := range rowData {
			row.AddCell().SetString(cellData)
		}
	}
	path := filepath.Join(dir, "pack.xlsx")
	require.NoError(t, f.Save(path))

	p := New(Config{})
	profile, err := p.Process(context.Background(), "Acme", "", []Document{
		{Path: path, Kind: model.FileKindWorkbook},
	})
	require.NoError(t, err)

	require.NotNil(t, profile.Financials)
	assert.Equal(t, []string{"FY22", "FY23", "FY24"}, profile.Financials.Years)
	assert.Equal(t, []float64{100, 120, 140}, profile.Financials.Revenue)
	assert.Equal(t, "P&L", profile.Financials.Sources[model.MetricRevenue].Sheet)
}

func TestProcess_DecodeFailureIsPerDocument(t *testing.T) {
	dir := t.TempDir()
	corrupt := writeText(t, dir, "broken.xlsx", "not a zip archive")
	txt := writeText(t, dir, "teaser.txt", teaserText)

	p := New(Config{})
	profile, err := p.Process(context.Background(), "Acme", "", []Document{
		{Path: corrupt, Kind: model.FileKindWorkbook},
		{Path: txt, Kind: model.FileKindText},
	})
	require.NoError(t, err)
	assert.Equal(t, "18%", profile.KPIs["ebitda_margin"])
}

func TestProcess_AllDocumentsFailed(t *testing.T) {
	dir := t.TempDir()
	corrupt := writeText(t, dir, "broken.xlsx", "not a zip archive")

	p := New(Config{})
	_, err := p.Process(context.Background(), "Acme", "", []Document{
		{Path: corrupt, Kind: model.FileKindWorkbook},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "every document failed")
}

func TestProcess_NothingToProcess(t *testing.T) {
	p := New(Config{})
	_, err := p.Process(context.Background(), "Acme", "", nil)
	assert.Error(t, err)
}

func TestProcess_PublicContextAndCache(t *testing.T) {
	st := newTestStore(t)
	scraper := &stubScraper{public: &model.PublicContext{
		Pages:        []model.CrawledPage{{URL: "https://acme.example", Title: "Acme", Text: "Industrial coatings."}},
		CombinedText: "URL: https://acme.example\nTEXT: Industrial coatings and specialty chemical formulations.",
	}}

	p := New(Config{Store: st, Scraper: scraper})

	profile, err := p.Process(context.Background(), "Acme", "https://acme.example", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, scraper.calls)
	assert.Equal(t, "Chemicals / Specialty", profile.Sector)

	hasPublic := false
	for _, c := range profile.Citations {
		if c.SourceType == model.SourcePublicURL {
			hasPublic = true
		}
	}
	assert.True(t, hasPublic)

	// Second run hits the cache.
	_, err = p.Process(context.Background(), "Acme", "https://acme.example", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, scraper.calls)
}

func TestProcess_ScrapeFailureNonFatal(t *testing.T) {
	dir := t.TempDir()
	txt := writeText(t, dir, "teaser.txt", teaserText)
	scraper := &stubScraper{err: eris.New("dns failure")}

	p := New(Config{Scraper: scraper})
	profile, err := p.Process(context.Background(), "Acme", "https://acme.example", []Document{
		{Path: txt, Kind: model.FileKindText},
	})
	require.NoError(t, err)
	assert.Equal(t, "B2B Manufacturing", profile.Sector)
}

func TestProcess_GeneratedNarrativeFillsGaps(t *testing.T) {
	dir := t.TempDir()
	wb := writeWorkbook(t, dir, "financials.xlsx", financialsRows())

	p := New(Config{Narrative: narrative.New(nil, nil, narrative.Options{})})
	profile, err := p.Process(context.Background(), "Acme", "", []Document{
		{Path: wb, Kind: model.FileKindWorkbook},
	})
	require.NoError(t, err)

	// No text documents, so the sector template supplies the narrative.
	assert.NotEmpty(t, profile.Narrative.BizDesc)
	assert.Len(t, profile.Narrative.Highlights, 5)

	hasGenerated := false
	for _, c := range profile.Citations {
		if c.SourceType == model.SourceGenerated {
			hasGenerated = true
		}
	}
	assert.True(t, hasGenerated)
}

func TestProcess_Blind(t *testing.T) {
	dir := t.TempDir()
	txt := writeText(t, dir, "teaser.txt", teaserText)

	p := New(Config{Blind: true})
	profile, err := p.Process(context.Background(), "Acme Precision Components", "", []Document{
		{Path: txt, Kind: model.FileKindText},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(profile.CompanyName, "Project "))
	assert.Empty(t, profile.Website)
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() {
		st.Close() //nolint:errcheck
	})
	return st
}

func TestRun_CompletesProject(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	dir := t.TempDir()
	wb := writeWorkbook(t, dir, "financials.xlsx", financialsRows())
	txt := writeText(t, dir, "teaser.txt", teaserText)

	proj, err := st.CreateProject(ctx, "Acme Precision Components", "")
	require.NoError(t, err)
	_, err = st.AddFile(ctx, proj.ID, wb, model.FileKindWorkbook)
	require.NoError(t, err)
	_, err = st.AddFile(ctx, proj.ID, txt, model.FileKindText)
	require.NoError(t, err)

	p := New(Config{Store: st})
	profile, err := p.Run(ctx, proj.ID)
	require.NoError(t, err)
	assert.Equal(t, "B2B Manufacturing", profile.Sector)

	stored, err := st.GetProject(ctx, proj.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ProjectStatusComplete, stored.Status)
	require.NotNil(t, stored.Profile)
	assert.Equal(t, []float64{100, 120, 140}, stored.Profile.Financials.Revenue)
}

func TestRun_FailureMarksProject(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	dir := t.TempDir()
	corrupt := writeText(t, dir, "broken.xlsx", "not a zip archive")

	proj, err := st.CreateProject(ctx, "Acme", "")
	require.NoError(t, err)
	_, err = st.AddFile(ctx, proj.ID, corrupt, model.FileKindWorkbook)
	require.NoError(t, err)

	p := New(Config{Store: st})
	_, err = p.Run(ctx, proj.ID)
	require.Error(t, err)

	stored, err := st.GetProject(ctx, proj.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ProjectStatusFailed, stored.Status)
	assert.NotEmpty(t, stored.Error)
}

func TestRun_UnknownProject(t *testing.T) {
	st := newTestStore(t)
	p := New(Config{Store: st})
	_, err := p.Run(context.Background(), "no-such-id")
	assert.Error(t, err)
}

func TestDiscoverDocuments(t *testing.T) {
	dir := t.TempDir()
	writeText(t, dir, "b-notes.md", "notes")
	writeText(t, dir, "a-teaser.txt", "teaser")
	writeWorkbook(t, dir, "financials.xlsx", financialsRows())
	writeText(t, dir, "ignore.pdf", "binary")

	docs, err := DiscoverDocuments(dir)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "a-teaser.txt", filepath.Base(docs[0].Path))
	assert.Equal(t, model.FileKindText, docs[0].Kind)
	assert.Equal(t, "b-notes.md", filepath.Base(docs[1].Path))
	assert.Equal(t, "financials.xlsx", filepath.Base(docs[2].Path))
	assert.Equal(t, model.FileKindWorkbook, docs[2].Kind)
}
