package ingest

// schema.go declares the three record schemas as data: each record type
// owns its field rules (lookup token, kind, required flag) and defaults.
// The parser walks these rules instead of scattering per-field conditionals.

import "strings"

// fieldKind selects the normalization and validation applied to a cell.
type fieldKind int

const (
	fieldText fieldKind = iota
	fieldDate
	fieldEmail
)

// fieldRule describes one logical field of a record schema.
// Label is the name surfaced in row error messages; Token is the normalized
// header token the field is looked up by.
type fieldRule struct {
	Label    string
	Token    string
	Kind     fieldKind
	Required bool
}

// An email field that is optional may still reject the row: when the cell is
// non-empty it is validated exactly as if it were required. Date fields that
// fail to normalize count as missing, so a required date that cannot be
// parsed surfaces as a missing-field error.

var employeeRules = []fieldRule{
	{Label: "Email", Token: "email", Kind: fieldEmail, Required: true},
	{Label: "First Name", Token: "firstname", Kind: fieldText, Required: true},
	{Label: "Last Name", Token: "lastname", Kind: fieldText, Required: true},
	{Label: "Department", Token: "department", Kind: fieldText},
	{Label: "Position", Token: "position", Kind: fieldText},
	{Label: "Hire Date", Token: "hiredate", Kind: fieldDate},
}

var trainingRules = []fieldRule{
	{Label: "Employee Email", Token: "employeeemail", Kind: fieldEmail, Required: true},
	{Label: "Course Title", Token: "coursetitle", Kind: fieldText, Required: true},
	{Label: "Assigned Date", Token: "assigneddate", Kind: fieldDate, Required: true},
	{Label: "Due Date", Token: "duedate", Kind: fieldDate, Required: true},
	{Label: "Priority", Token: "priority", Kind: fieldText},
	{Label: "Description", Token: "description", Kind: fieldText},
	{Label: "Category", Token: "category", Kind: fieldText},
	{Label: "Duration", Token: "duration", Kind: fieldText},
}

var qmsRules = []fieldRule{
	{Label: "Title", Token: "title", Kind: fieldText, Required: true},
	{Label: "Category", Token: "category", Kind: fieldText, Required: true},
	{Label: "Planned Start Date", Token: "plannedstartdate", Kind: fieldDate, Required: true},
	{Label: "Planned End Date", Token: "plannedenddate", Kind: fieldDate, Required: true},
	{Label: "Responsible Person Email", Token: "responsiblepersonemail", Kind: fieldEmail},
	{Label: "Priority", Token: "priority", Kind: fieldText},
	{Label: "Description", Token: "description", Kind: fieldText},
	{Label: "Year", Token: "year", Kind: fieldText},
	{Label: "Quarter", Token: "quarter", Kind: fieldText},
}

// Schema defaults.
const (
	defaultDepartment = "General"
	defaultPosition   = "Employee"
	defaultCategory   = "General"
	defaultPriority   = "medium"
	defaultDuration   = 1
)

// normalizePriority coerces a priority cell into the low/medium/high enum.
// Anything unrecognized ("critical", "urgent", typos) becomes medium rather
// than rejecting the row.
func normalizePriority(v string) string {
	switch strings.ToLower(NormalizeText(v)) {
	case "low":
		return "low"
	case "high":
		return "high"
	default:
		return defaultPriority
	}
}
