// Package fetcher decodes project documents into the pipeline's input
// shapes: workbooks become cell grids, text documents become capped strings.
// Decode failures are reported per document; callers skip and continue.
package fetcher

import (
	"path/filepath"
	"strings"

	"github.com/sells-group/teaser-cli/internal/model"
)

// KindOf maps a file name to its decode kind by extension. The second
// return is false for extensions the pipeline does not decode.
func KindOf(name string) (model.FileKind, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm", ".csv":
		return model.FileKindWorkbook, true
	case ".txt", ".md", ".text":
		return model.FileKindText, true
	default:
		return "", false
	}
}

// ReadSheets decodes any workbook-kind document into grids, dispatching on
// extension. A csv yields exactly one sheet.
func ReadSheets(path string, opts WorkbookOptions) ([]model.Sheet, error) {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return ReadCSV(path, opts.MaxRows)
	}
	return ReadWorkbook(path, opts)
}
