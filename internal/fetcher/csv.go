package fetcher

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/teaser-cli/internal/model"
)

// ReadCSV decodes a csv file into a single grid named after the file. Rows
// may have uneven field counts; fields are whitespace-trimmed and a UTF-8
// BOM on the first field is stripped so header matching stays exact.
func ReadCSV(path string, maxRows int) ([]model.Sheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: open csv")
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var grid model.CellGrid
	for {
		if maxRows > 0 && len(grid) >= maxRows {
			break
		}
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "fetcher: read csv row")
		}
		for i, field := range record {
			record[i] = strings.TrimSpace(field)
		}
		if len(grid) == 0 && len(record) > 0 {
			record[0] = strings.TrimPrefix(record[0], "\uFEFF")
		}
		grid = append(grid, record)
	}
	if len(grid) == 0 {
		return nil, eris.New("fetcher: csv is empty")
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return []model.Sheet{{Name: name, Grid: grid}}, nil
}
