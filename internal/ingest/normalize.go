package ingest

// normalize.go converts raw spreadsheet cell values into canonical typed
// values. Sheets arrive with every date format users can produce: ISO
// strings, US/EU slash dates, and bare Excel date serials when a cell was
// never given a number format.

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Date layouts split by year format for proper 2-digit year handling.
var (
	twoDigitYearLayouts = []string{
		"1/2/06", "01/02/06", "1-2-06", "1.2.06", "01.02.06",
	}
	fourDigitYearLayouts = []string{
		"2006-01-02", "2006/01/02", "2006.01.02",
		"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006", "1.2.2006", "01.02.2006",
		"Jan 2, 2006", "2 Jan 2006",
		"20060102",
	}
)

// TwoDigitYearPivot defines how 2-digit years are interpreted.
// Years that would land more than this many years in the future are assumed
// to be in the previous century.
var TwoDigitYearPivot = 20

// Excel date serials are only trusted inside this window (1954-2119).
// Anything below it is more likely a plain number such as a year or an hour
// count that happened to land in a date column.
const (
	minDateSerial = 20000
	maxDateSerial = 80000
)

// NormalizeDate converts a cell value to a YYYY-MM-DD string.
// It accepts an already-canonical ISO date (returned unchanged), the common
// string layouts above, and a numeric Excel date serial (serial 25569 is
// 1970-01-01 UTC). Returns "" when the value is absent or not a valid date;
// callers treat "" as missing for required-field checks.
func NormalizeDate(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}

	// Numeric date serial from an unformatted spreadsheet cell. Numbers
	// outside the trusted window fall through to the string layouts, so a
	// compact 20060102 date is not mistaken for a serial.
	if serial, err := strconv.ParseFloat(v, 64); err == nil {
		if serial >= minDateSerial && serial <= maxDateSerial {
			t, err := excelize.ExcelDateToTime(serial, false)
			if err != nil {
				return ""
			}
			return t.UTC().Format("2006-01-02")
		}
	}

	// 4-digit year layouts first (unambiguous); ISO leads so canonical input
	// round-trips to itself.
	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format("2006-01-02")
		}
	}

	// 2-digit year layouts with pivot adjustment.
	pivotYear := time.Now().Year() + TwoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			if t.Year() > pivotYear {
				t = t.AddDate(-100, 0, 0)
			}
			return t.Format("2006-01-02")
		}
	}

	return ""
}

// NormalizeEmail lowercases and trims an email cell.
func NormalizeEmail(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

// NormalizeText trims a free-text cell.
func NormalizeText(v string) string {
	return strings.TrimSpace(v)
}

// normalizeHeaderToken reduces a header string to a comparable token:
// lowercase with everything but letters removed, so "Employee Email",
// "employee_email" and "employeeEmail" all become "employeeemail".
func normalizeHeaderToken(h string) string {
	var b strings.Builder
	b.Grow(len(h))
	for _, r := range strings.ToLower(h) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// parseIntCell parses an integer cell, tolerating a float representation
// ("2025.0") the way spreadsheet exports often encode numbers.
func parseIntCell(v string) (int, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n, true
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil && f == float64(int(f)) {
		return int(f), true
	}
	return 0, false
}
