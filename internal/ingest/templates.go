package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// templateSpec describes one downloadable CSV starter template.
type templateSpec struct {
	fileName string
	headers  []string
	samples  [][]string
}

var templates = map[RecordType]templateSpec{
	TypeEmployees: {
		fileName: "employee_template.csv",
		headers:  []string{"Email", "First Name", "Last Name", "Department", "Position", "Hire Date"},
		samples: [][]string{
			{"john.doe@company.com", "John", "Doe", "Engineering", "Software Engineer", "2023-01-15"},
			{"jane.smith@company.com", "Jane", "Smith", "Marketing", "Marketing Manager", "2023-02-01"},
			{"mike.johnson@company.com", "Mike", "Johnson", "Sales", "Sales Representative", "2023-03-10"},
		},
	},
	TypeTrainingAssignments: {
		fileName: "training_template.csv",
		headers:  []string{"Employee Email", "Course Title", "Assigned Date", "Due Date", "Priority"},
		samples: [][]string{
			{"john.doe@company.com", "Security Awareness Training", "2024-01-01", "2024-12-31", "high"},
			{"jane.smith@company.com", "Data Privacy & GDPR", "2024-01-15", "2024-06-15", "critical"},
			{"mike.johnson@company.com", "Leadership Development", "2024-02-01", "2024-08-01", "medium"},
		},
	},
	TypeQMSUpdates: {
		fileName: "qms_template.csv",
		headers: []string{
			"Title", "Description", "Category", "Planned Start Date", "Planned End Date",
			"Responsible Person Email", "Year", "Quarter", "Priority",
		},
		samples: [][]string{
			{"Document Control Update", "Update document control procedures", "process",
				"2025-01-01", "2025-03-31", "john.doe@company.com", "2025", "1", "high"},
			{"Risk Assessment Review", "Annual risk assessment review", "system",
				"2025-04-01", "2025-06-30", "jane.smith@company.com", "2025", "2", "medium"},
			{"Training Program Overhaul", "Redesign training programs", "process",
				"2025-07-01", "2025-09-30", "mike.johnson@company.com", "2025", "3", "high"},
		},
	},
}

// Template renders the starter CSV for the given record type. The sample
// rows round-trip through the import pipeline unchanged.
func Template(t RecordType) (fileName string, content []byte, err error) {
	spec, ok := templates[t]
	if !ok {
		return "", nil, fmt.Errorf("no template for record type %q", t)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(spec.headers); err != nil {
		return "", nil, err
	}
	for _, row := range spec.samples {
		if err := w.Write(row); err != nil {
			return "", nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", nil, err
	}
	return spec.fileName, buf.Bytes(), nil
}
