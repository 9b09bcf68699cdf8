package extract

import (
	"sort"
	"strings"

	"github.com/sells-group/teaser-cli/internal/model"
)

const (
	// Year labels are searched in the first N rows (horizontal) and metric
	// headers in the first N rows of each column (vertical).
	horizontalYearScanRows = 10
	verticalHeaderScanRows = 5
)

// TableExtractor detects the orientation of a financial table and produces
// aligned metric series. It is a pure function of the grid: no state is
// carried between calls and a failed strategy leaves nothing behind.
type TableExtractor struct {
	vocab *Vocabulary
}

// NewTableExtractor creates an extractor bound to a vocabulary.
func NewTableExtractor(vocab *Vocabulary) *TableExtractor {
	return &TableExtractor{vocab: vocab}
}

// Extract attempts horizontal parsing (years across columns), then vertical
// (years down rows). The second return is false when neither strategy finds
// a usable revenue or EBITDA series.
func (e *TableExtractor) Extract(grid model.CellGrid, file, sheet string) (*model.Financials, bool) {
	if grid.Empty() {
		return nil, false
	}
	if fin, ok := e.parseHorizontal(grid, file, sheet); ok {
		return fin, true
	}
	return e.parseVertical(grid, file)
}

// matchMetric tests header text against the metric vocabularies in priority
// order (revenue, ebitda, pat). Returns "" when no vocabulary matches.
func (e *TableExtractor) matchMetric(text string) string {
	for _, mv := range e.vocab.Metrics {
		for _, kw := range mv.Keywords {
			if strings.Contains(text, kw) {
				return mv.Metric
			}
		}
	}
	return ""
}

type yearPos struct {
	col   int
	label string
}

// parseHorizontal handles layouts with years across columns and one metric
// per row.
func (e *TableExtractor) parseHorizontal(grid model.CellGrid, file, sheet string) (*model.Financials, bool) {
	rows := grid.NumRows()
	cols := grid.NumCols()

	// Collect first-seen (column, label) pairs from the top rows. A column
	// carrying an already-seen label is dropped: duplicate year headers in
	// different columns are silently ignored.
	var positions []yearPos
	scanRows := rows
	if scanRows > horizontalYearScanRows {
		scanRows = horizontalYearScanRows
	}
	for r := 0; r < scanRows; r++ {
		for c := 0; c < cols; c++ {
			label, ok := YearLabel(grid.Cell(r, c))
			if !ok {
				continue
			}
			if hasLabel(positions, label) {
				continue
			}
			positions = append(positions, yearPos{col: c, label: label})
		}
	}

	if len(positions) < 2 {
		return nil, false
	}

	// Order by column index, not by chronology: columns authored out of
	// chronological order yield years out of chronological order.
	sortByColumn(positions)

	fin := &model.Financials{
		Years:   make([]string, len(positions)),
		Sources: make(map[string]model.Provenance),
	}
	for i, p := range positions {
		fin.Years[i] = p.label
	}

	for r := 0; r < rows; r++ {
		// Row identity comes from the first three cells, case-folded.
		var sb strings.Builder
		for c := 0; c < 3 && c < cols; c++ {
			if c > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(strings.ToLower(grid.Cell(r, c)))
		}

		metric := e.matchMetric(sb.String())
		if metric == "" {
			continue
		}
		if _, claimed := fin.Sources[metric]; claimed {
			continue
		}

		values := make([]float64, len(positions))
		nonzero := false
		for i, p := range positions {
			v, ok := NormalizeNumber(grid.Cell(r, p.col))
			if !ok {
				v = 0
			}
			values[i] = v
			if v != 0 {
				nonzero = true
			}
		}

		// A row of all zeros does not claim the metric; a later matching
		// row may still provide it.
		if !nonzero {
			continue
		}

		row := r
		setMetric(fin, metric, values)
		fin.Sources[metric] = model.Provenance{
			SourceFile: file,
			Sheet:      sheet,
			Row:        &row,
			Metric:     metric,
		}
	}

	if !fin.HasSeries() {
		return nil, false
	}
	return fin, true
}

// parseVertical handles layouts with years down a column and one metric per
// column.
func (e *TableExtractor) parseVertical(grid model.CellGrid, file string) (*model.Financials, bool) {
	rows := grid.NumRows()
	cols := grid.NumCols()

	// First column with at least two year-like cells anchors the layout.
	yearCol := -1
	for c := 0; c < cols; c++ {
		n := 0
		for r := 0; r < rows; r++ {
			if LooksLikeYear(grid.Cell(r, c)) {
				n++
			}
		}
		if n >= 2 {
			yearCol = c
			break
		}
	}
	if yearCol == -1 {
		return nil, false
	}

	var yearRows []int
	var years []string
	for r := 0; r < rows; r++ {
		if label, ok := YearLabel(grid.Cell(r, yearCol)); ok {
			yearRows = append(yearRows, r)
			years = append(years, label)
		}
	}
	if len(yearRows) < 2 {
		return nil, false
	}

	// Map metrics to columns from the header rows. A later header match for
	// the same metric overrides an earlier one.
	columns := map[string]int{}
	scanRows := rows
	if scanRows > verticalHeaderScanRows {
		scanRows = verticalHeaderScanRows
	}
	for r := 0; r < scanRows; r++ {
		for c := 0; c < cols; c++ {
			if c == yearCol {
				continue
			}
			if metric := e.matchMetric(strings.ToLower(grid.Cell(r, c))); metric != "" {
				columns[metric] = c
			}
		}
	}
	if len(columns) == 0 {
		return nil, false
	}

	fin := &model.Financials{
		Years:   years,
		Sources: make(map[string]model.Provenance),
	}
	for _, metric := range []string{model.MetricRevenue, model.MetricEBITDA, model.MetricPAT} {
		col, ok := columns[metric]
		if !ok {
			continue
		}
		values := make([]float64, len(yearRows))
		for i, r := range yearRows {
			v, ok := NormalizeNumber(grid.Cell(r, col))
			if !ok {
				v = 0
			}
			values[i] = v
		}
		setMetric(fin, metric, values)
		fin.Sources[metric] = model.Provenance{
			SourceFile: file,
			Metric:     metric,
		}
	}

	if !fin.HasSeries() {
		return nil, false
	}
	return fin, true
}

func hasLabel(positions []yearPos, label string) bool {
	for _, p := range positions {
		if p.label == label {
			return true
		}
	}
	return false
}

func sortByColumn(positions []yearPos) {
	sort.SliceStable(positions, func(i, j int) bool {
		return positions[i].col < positions[j].col
	})
}

func setMetric(fin *model.Financials, metric string, values []float64) {
	switch metric {
	case model.MetricRevenue:
		fin.Revenue = values
	case model.MetricEBITDA:
		fin.EBITDA = values
	case model.MetricPAT:
		fin.PAT = values
	}
}
