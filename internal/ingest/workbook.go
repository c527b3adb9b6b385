package ingest

// workbook.go extracts the header row and data rows from an uploaded file.
// XLSX workbooks are decoded with excelize; plain comma-separated text is
// accepted as a degenerate single-sheet workbook. Only the first sheet of a
// workbook is read.

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decodeRows returns the raw cell grid of the file's first sheet.
// The returned rows are ragged: short rows are not padded to header width.
func decodeRows(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	// XLSX files are zip archives; anything else is treated as CSV.
	if bytes.HasPrefix(data, []byte("PK")) {
		return decodeWorkbook(data)
	}
	return decodeCSV(data)
}

func decodeWorkbook(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func decodeCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1 // tolerate ragged rows
	r.TrimLeadingSpace = true

	var rows [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		rows = append(rows, record)
	}
	return rows, nil
}

// extractSheet splits raw rows into the header list and keyed data rows.
// Fully empty data rows are dropped and do not count toward totals; cells
// missing from a short row stay absent from the keyed map rather than
// becoming empty strings.
func extractSheet(raw [][]string) (headers []string, rows []Row) {
	if len(raw) == 0 {
		return nil, nil
	}

	headers = make([]string, len(raw[0]))
	for i, h := range raw[0] {
		headers[i] = strings.TrimSpace(h)
	}

	for _, cells := range raw[1:] {
		if isEmptyRow(cells) {
			continue
		}
		row := make(Row, len(headers))
		for i, h := range headers {
			if h == "" || i >= len(cells) {
				continue
			}
			row[h] = cells[i]
		}
		rows = append(rows, row)
	}
	return headers, rows
}

func isEmptyRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
