package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// utf8BOM is the byte order mark Excel prepends to CSV exports.
const utf8BOM = "\ufeff"

// ReadTable reads a delimited tabular file and returns its raw header row
// and data rows. CSV is the primary format; .xlsx workbooks are read through
// excelize for files that come straight from a spreadsheet. Any failure to
// open or parse is reported as a *LoadError naming the attempted path.
func ReadTable(path string) (header []string, rows [][]string, err error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return readWorkbook(path)
	default:
		return readCSV(path)
	}
}

func readCSV(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, NewLoadError(path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, NewLoadError(path, fmt.Errorf("not parseable as delimited tabular text: %w", err))
	}
	if len(records) == 0 {
		return nil, nil, NewLoadError(path, errors.New("file contains no data"))
	}

	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}
	return header, records[1:], nil
}

func readWorkbook(path string) ([]string, [][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, NewLoadError(path, err)
	}
	defer f.Close()

	// Use the first sheet that actually contains rows; workbooks exported
	// from dashboards often carry empty placeholder sheets first.
	var records [][]string
	for _, name := range f.GetSheetList() {
		sheetRows, rowErr := f.GetRows(name)
		if rowErr == nil && len(sheetRows) > 0 {
			records = sheetRows
			break
		}
	}
	if len(records) == 0 {
		return nil, nil, NewLoadError(path, errors.New("workbook contains no data"))
	}

	return records[0], records[1:], nil
}
