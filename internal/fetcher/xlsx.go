package fetcher

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/teaser-cli/internal/model"
)

// WorkbookOptions configures workbook decoding.
type WorkbookOptions struct {
	SheetName string // if set, decode only this sheet
	MaxRows   int    // per-sheet row cap, 0 = no cap
}

// ReadWorkbook decodes an xlsx file into one grid per sheet, in workbook
// order. Cell values are the raw display strings; no numeric interpretation
// happens here.
func ReadWorkbook(path string, opts WorkbookOptions) ([]model.Sheet, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: open workbook")
	}

	if opts.SheetName != "" {
		sheet, ok := f.Sheet[opts.SheetName]
		if !ok {
			return nil, eris.Errorf("fetcher: sheet %q not found", opts.SheetName)
		}
		return []model.Sheet{sheetToGrid(sheet, opts.MaxRows)}, nil
	}

	sheets := make([]model.Sheet, 0, len(f.Sheets))
	for _, sheet := range f.Sheets {
		sheets = append(sheets, sheetToGrid(sheet, opts.MaxRows))
	}
	if len(sheets) == 0 {
		return nil, eris.New("fetcher: workbook has no sheets")
	}
	return sheets, nil
}

func sheetToGrid(sheet *xlsx.Sheet, maxRows int) model.Sheet {
	grid := make(model.CellGrid, 0, len(sheet.Rows))
	for i, row := range sheet.Rows {
		if maxRows > 0 && i >= maxRows {
			break
		}
		grid = append(grid, rowToStrings(row))
	}
	return model.Sheet{Name: sheet.Name, Grid: grid}
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}
