package ingest

// parse.go turns classified raw rows into canonical records. A row either
// becomes exactly one record or contributes exactly one error string; soft
// corrections (unknown priority, out-of-range quarter, unparseable numbers)
// never reject a row.

import (
	"fmt"
	"strings"
	"time"
)

// headerLookup resolves schema tokens to original header strings for one
// sheet. Exact token matches win; otherwise the first header related to the
// token by bidirectional substring is used, so "Email" still feeds the
// training schema's "employeeemail" field.
type headerLookup struct {
	headers []string // original header strings, sheet order
	tokens  []string // normalized form of each header
}

func newHeaderLookup(headers []string) *headerLookup {
	l := &headerLookup{
		headers: headers,
		tokens:  make([]string, len(headers)),
	}
	for i, h := range headers {
		l.tokens[i] = normalizeHeaderToken(h)
	}
	return l
}

// header returns the original header string backing a schema token,
// or "" when the sheet has no matching column.
func (l *headerLookup) header(token string) string {
	for i, t := range l.tokens {
		if t == token {
			return l.headers[i]
		}
	}
	for i, t := range l.tokens {
		if t == "" {
			continue
		}
		if strings.Contains(t, token) || strings.Contains(token, t) {
			return l.headers[i]
		}
	}
	return ""
}

// cell returns the raw cell value for a schema token in the given row.
func (l *headerLookup) cell(row Row, token string) string {
	h := l.header(token)
	if h == "" {
		return ""
	}
	return row[h]
}

// rowError formats a per-row validation error. rowNum is the 1-based
// spreadsheet row number: the header occupies row 1, so the first data row
// reports as row 2.
func rowError(rowNum int, format string, args ...any) string {
	return fmt.Sprintf("Row %d: %s", rowNum, fmt.Sprintf(format, args...))
}

// checkRequired walks a schema's field rules and returns the first
// validation failure for the row, normalized values keyed by token, and
// whether the row is valid. Exactly one error per rejected row keeps the
// error count equal to the rejected-row count.
func checkRequired(rules []fieldRule, l *headerLookup, row Row, rowNum int) (map[string]string, string) {
	vals := make(map[string]string, len(rules))
	for _, rule := range rules {
		raw := l.cell(row, rule.Token)
		var v string
		switch rule.Kind {
		case fieldDate:
			v = NormalizeDate(raw)
		case fieldEmail:
			v = NormalizeEmail(raw)
		default:
			v = NormalizeText(raw)
		}

		if v == "" {
			if rule.Required {
				return nil, rowError(rowNum, "missing required field %q", rule.Label)
			}
			vals[rule.Token] = ""
			continue
		}

		// An optional email that is present is validated as if required.
		if rule.Kind == fieldEmail && !strings.Contains(v, "@") {
			return nil, rowError(rowNum, "invalid email format in %q", rule.Label)
		}

		vals[rule.Token] = v
	}
	return vals, ""
}

// ParseRows applies the schema for the classified record type across all
// data rows. firstDataRow is the spreadsheet row number of rows[0], used in
// error messages (2 for a sheet whose header is row 1).
func ParseRows(t RecordType, headers []string, rows []Row, firstDataRow int) *ParseResult {
	result := &ParseResult{Type: t}
	lookup := newHeaderLookup(headers)

	for i, row := range rows {
		rowNum := firstDataRow + i
		var errMsg string

		switch t {
		case TypeEmployees:
			var rec EmployeeRecord
			rec, errMsg = parseEmployee(lookup, row, rowNum)
			if errMsg == "" {
				result.Employees = append(result.Employees, rec)
			}
		case TypeTrainingAssignments:
			var rec TrainingAssignmentRecord
			rec, errMsg = parseTrainingAssignment(lookup, row, rowNum)
			if errMsg == "" {
				result.Assignments = append(result.Assignments, rec)
			}
		case TypeQMSUpdates:
			var rec QMSUpdateRecord
			rec, errMsg = parseQMSUpdate(lookup, row, rowNum)
			if errMsg == "" {
				result.QMSUpdates = append(result.QMSUpdates, rec)
			}
		default:
			errMsg = rowError(rowNum, "no schema for record type %q", t)
		}

		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
		}
	}

	result.Summary = Summary{
		TotalRows: len(rows),
		ValidRows: result.RecordCount(),
		ErrorRows: len(result.Errors),
	}
	return result
}

func parseEmployee(l *headerLookup, row Row, rowNum int) (EmployeeRecord, string) {
	vals, errMsg := checkRequired(employeeRules, l, row, rowNum)
	if errMsg != "" {
		return EmployeeRecord{}, errMsg
	}

	rec := EmployeeRecord{
		Email:      vals["email"],
		FirstName:  vals["firstname"],
		LastName:   vals["lastname"],
		Department: vals["department"],
		Position:   vals["position"],
		HireDate:   vals["hiredate"],
	}
	if rec.Department == "" {
		rec.Department = defaultDepartment
	}
	if rec.Position == "" {
		rec.Position = defaultPosition
	}
	return rec, ""
}

func parseTrainingAssignment(l *headerLookup, row Row, rowNum int) (TrainingAssignmentRecord, string) {
	vals, errMsg := checkRequired(trainingRules, l, row, rowNum)
	if errMsg != "" {
		return TrainingAssignmentRecord{}, errMsg
	}

	rec := TrainingAssignmentRecord{
		EmployeeEmail: vals["employeeemail"],
		CourseTitle:   vals["coursetitle"],
		AssignedDate:  vals["assigneddate"],
		DueDate:       vals["duedate"],
		Priority:      normalizePriority(vals["priority"]),
		Description:   vals["description"],
		Category:      vals["category"],
		DurationHours: defaultDuration,
	}
	if rec.Category == "" {
		rec.Category = defaultCategory
	}
	if n, ok := parseIntCell(vals["duration"]); ok && n > 0 {
		rec.DurationHours = n
	}
	return rec, ""
}

func parseQMSUpdate(l *headerLookup, row Row, rowNum int) (QMSUpdateRecord, string) {
	vals, errMsg := checkRequired(qmsRules, l, row, rowNum)
	if errMsg != "" {
		return QMSUpdateRecord{}, errMsg
	}

	rec := QMSUpdateRecord{
		Title:                  vals["title"],
		Description:            vals["description"],
		Category:               vals["category"],
		PlannedStartDate:       vals["plannedstartdate"],
		PlannedEndDate:         vals["plannedenddate"],
		ResponsiblePersonEmail: vals["responsiblepersonemail"],
		Priority:               normalizePriority(vals["priority"]),
		Year:                   time.Now().Year(),
	}
	if n, ok := parseIntCell(vals["year"]); ok {
		rec.Year = n
	}
	// Out-of-range quarters drop to absent, never reject.
	if n, ok := parseIntCell(vals["quarter"]); ok && n >= 1 && n <= 4 {
		rec.Quarter = n
	}
	return rec, ""
}
