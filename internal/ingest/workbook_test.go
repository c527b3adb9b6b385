package ingest

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"
)

// ----------------------------------------------------------------------------
// CSV Decoding Tests
// ----------------------------------------------------------------------------

func TestDecodeRowsCSV(t *testing.T) {
	data := []byte("Email,First Name,Last Name\n" +
		"a@b.com,Ann,Brown\n" +
		"c@d.com,Carl\n") // ragged short row

	rows, err := decodeRows(data)
	if err != nil {
		t.Fatalf("decodeRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if len(rows[2]) != 2 {
		t.Errorf("short row padded: %v", rows[2])
	}
}

func TestDecodeRowsStripsBOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Email,Name\na@b.com,Ann\n")...)

	rows, err := decodeRows(data)
	if err != nil {
		t.Fatalf("decodeRows: %v", err)
	}
	if rows[0][0] != "Email" {
		t.Errorf("BOM not stripped from first header: %q", rows[0][0])
	}
}

func TestDecodeRowsQuotedFields(t *testing.T) {
	data := []byte("Title,Description\n\"CAPA, phase 1\",\"multi\nline\"\n")

	rows, err := decodeRows(data)
	if err != nil {
		t.Fatalf("decodeRows: %v", err)
	}
	if rows[1][0] != "CAPA, phase 1" {
		t.Errorf("quoted comma mangled: %q", rows[1][0])
	}
}

func TestDecodeRowsBadZip(t *testing.T) {
	// Starts with the zip magic but is not a workbook.
	if _, err := decodeRows([]byte("PK\x03\x04 not really a workbook")); err == nil {
		t.Fatal("expected error for corrupt workbook")
	}
}

// ----------------------------------------------------------------------------
// XLSX Decoding Tests
// ----------------------------------------------------------------------------

func TestDecodeRowsXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	cells := [][]any{
		{"Email", "First Name", "Last Name"},
		{"a@b.com", "Ann", "Brown"},
	}
	for r, row := range cells {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				t.Fatalf("SetCellValue: %v", err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	rows, err := decodeRows(buf.Bytes())
	if err != nil {
		t.Fatalf("decodeRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[1][0] != "a@b.com" {
		t.Errorf("cell A2 = %q, want a@b.com", rows[1][0])
	}
}

// ----------------------------------------------------------------------------
// Sheet Extraction Tests
// ----------------------------------------------------------------------------

func TestExtractSheet(t *testing.T) {
	raw := [][]string{
		{" Email ", "Name", ""},
		{"a@b.com", "Ann"},
		{"", "  ", ""}, // fully empty, dropped
		{"c@d.com", "Carl", "stray"},
	}

	headers, rows := extractSheet(raw)

	if headers[0] != "Email" {
		t.Errorf("header not trimmed: %q", headers[0])
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2 (empty row dropped)", len(rows))
	}
	if _, ok := rows[0]["Name"]; !ok {
		t.Error("Name cell missing from first row")
	}
	// Short first row: Email and Name only, nothing keyed by the blank header.
	if len(rows[0]) != 2 {
		t.Errorf("row 0 = %v, want 2 cells", rows[0])
	}
	// Third raw column has an empty header; its cell must not leak through.
	if len(rows[1]) != 2 {
		t.Errorf("row 1 = %v, want 2 cells", rows[1])
	}
}

func TestExtractSheetEmpty(t *testing.T) {
	if h, r := extractSheet(nil); h != nil || r != nil {
		t.Errorf("extractSheet(nil) = %v, %v", h, r)
	}
	// Header only, no data rows.
	h, r := extractSheet([][]string{{"Email", "Name"}})
	if len(h) != 2 || len(r) != 0 {
		t.Errorf("header-only sheet: headers=%v rows=%v", h, r)
	}
}
