package model

// CellGrid is an immutable 2-D array of raw cell values from one sheet of a
// decoded document. Rows may be ragged; Cell returns "" for any index outside
// the grid so extractors never need bounds checks.
type CellGrid [][]string

// Cell returns the raw value at (row, col), or "" if out of range.
func (g CellGrid) Cell(row, col int) string {
	if row < 0 || row >= len(g) {
		return ""
	}
	r := g[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// NumRows returns the number of rows in the grid.
func (g CellGrid) NumRows() int {
	return len(g)
}

// NumCols returns the width of the widest row.
func (g CellGrid) NumCols() int {
	max := 0
	for _, r := range g {
		if len(r) > max {
			max = len(r)
		}
	}
	return max
}

// Empty reports whether the grid has no cells.
func (g CellGrid) Empty() bool {
	for _, r := range g {
		if len(r) > 0 {
			return false
		}
	}
	return true
}

// Sheet pairs a grid with the sheet name it was decoded from.
type Sheet struct {
	Name string   `json:"name"`
	Grid CellGrid `json:"grid"`
}
