// Package ingest implements the spreadsheet import pipeline: it decodes
// uploaded workbook files, detects which of the three known record shapes
// a sheet carries, and normalizes rows into canonical records.
// This package has no UI or database dependencies.
package ingest

// RecordType identifies which of the three known schemas a sheet matched.
type RecordType string

const (
	TypeEmployees           RecordType = "employees"
	TypeTrainingAssignments RecordType = "training_assignments"
	TypeQMSUpdates          RecordType = "qms_updates"
	TypeUnknown             RecordType = "unknown"
)

// EmployeeRecord is one normalized employee row.
// Email is the natural key: always lowercase and never empty.
type EmployeeRecord struct {
	Email      string `json:"email"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Department string `json:"department"`
	Position   string `json:"position"`
	HireDate   string `json:"hire_date,omitempty"` // YYYY-MM-DD, empty when absent
}

// TrainingAssignmentRecord is one normalized training assignment row.
// EmployeeEmail references an employee by value; resolution to an identity
// happens in the persistence adapter, not here.
type TrainingAssignmentRecord struct {
	EmployeeEmail string `json:"employee_email"`
	CourseTitle   string `json:"course_title"`
	AssignedDate  string `json:"assigned_date"` // YYYY-MM-DD
	DueDate       string `json:"due_date"`      // YYYY-MM-DD
	Priority      string `json:"priority"`      // low, medium, high
	Description   string `json:"description,omitempty"`
	Category      string `json:"category"`
	DurationHours int    `json:"duration_hours"`
}

// QMSUpdateRecord is one normalized QMS plan row.
// Quarter is 0 when absent; Year always carries a value (current year when the
// sheet had none).
type QMSUpdateRecord struct {
	Title                  string `json:"title"`
	Description            string `json:"description"`
	Category               string `json:"category"`
	PlannedStartDate       string `json:"planned_start_date"` // YYYY-MM-DD
	PlannedEndDate         string `json:"planned_end_date"`   // YYYY-MM-DD
	ResponsiblePersonEmail string `json:"responsible_person_email,omitempty"`
	Priority               string `json:"priority"` // low, medium, high
	Year                   int    `json:"year"`
	Quarter                int    `json:"quarter,omitempty"` // 1-4, 0 when absent
}

// Summary holds the row accounting for one parsed file.
// ValidRows + ErrorRows == TotalRows always; fully empty rows are dropped
// before counting and appear in none of the three.
type Summary struct {
	TotalRows int `json:"total_rows"`
	ValidRows int `json:"valid_rows"`
	ErrorRows int `json:"error_rows"`
}

// ParseResult is the outcome of parsing a single uploaded file.
// Exactly one of the record slices is populated, matching Type.
// A ParseResult is never mutated after ParseFile returns it.
type ParseResult struct {
	FileName    string                     `json:"file_name"`
	Type        RecordType                 `json:"type"`
	Employees   []EmployeeRecord           `json:"employees,omitempty"`
	Assignments []TrainingAssignmentRecord `json:"assignments,omitempty"`
	QMSUpdates  []QMSUpdateRecord          `json:"qms_updates,omitempty"`
	Errors      []string                   `json:"errors,omitempty"`
	Summary     Summary                    `json:"summary"`
}

// RecordCount returns the number of valid records regardless of type.
func (r *ParseResult) RecordCount() int {
	return len(r.Employees) + len(r.Assignments) + len(r.QMSUpdates)
}

// Row is one data row keyed by its original header strings.
// Cells missing in the sheet are absent from the map, not empty strings.
type Row map[string]string
