package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// ----------------------------------------------------------------------------
// ParseFile Tests
// ----------------------------------------------------------------------------

func TestParseFileCSV(t *testing.T) {
	csv := "Email,First Name,Last Name\n" +
		"a@b.com,Ann,Brown\n" +
		",Carl,Jones\n"

	res, err := im().ParseFile(context.Background(), "staff.csv", strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if res.FileName != "staff.csv" || res.Type != TypeEmployees {
		t.Fatalf("result = %q/%q", res.FileName, res.Type)
	}
	if res.Summary.ValidRows != 1 || res.Summary.ErrorRows != 1 {
		t.Fatalf("summary = %+v", res.Summary)
	}
	if want := `Row 3: missing required field "Email"`; res.Errors[0] != want {
		t.Errorf("error = %q, want %q", res.Errors[0], want)
	}
}

func TestParseFileUnknownHeaders(t *testing.T) {
	csv := "Invoice,Amount,Currency\nINV-1,100,EUR\nINV-2,250,USD\n"

	res, err := im().ParseFile(context.Background(), "invoices.csv", strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if res.Type != TypeUnknown {
		t.Fatalf("type = %q, want unknown", res.Type)
	}
	// Every data row counts as an error row, and the message names the
	// headers so the user can see what was not recognized.
	if res.Summary.TotalRows != 2 || res.Summary.ErrorRows != 2 || res.Summary.ValidRows != 0 {
		t.Fatalf("summary = %+v", res.Summary)
	}
	if len(res.Errors) != 1 || !strings.Contains(res.Errors[0], "Invoice") {
		t.Errorf("errors = %v, want one naming the headers", res.Errors)
	}
}

func TestParseFileNoDataRows(t *testing.T) {
	res, err := im().ParseFile(context.Background(), "empty.csv",
		strings.NewReader("Email,First Name,Last Name\n"))
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if res.Type != TypeUnknown || len(res.Errors) != 1 {
		t.Fatalf("result = %+v", res)
	}
}

func TestParseFileUndecodable(t *testing.T) {
	_, err := im().ParseFile(context.Background(), "broken.xlsx",
		strings.NewReader("PK\x03\x04garbage"))
	if err == nil {
		t.Fatal("expected decode error")
	}
	if !strings.Contains(err.Error(), "broken.xlsx") {
		t.Errorf("error does not name the file: %v", err)
	}
}

// ----------------------------------------------------------------------------
// ImportFiles Tests
// ----------------------------------------------------------------------------

func TestImportFilesInMemory(t *testing.T) {
	importer := NewImporter(nil)

	files := []File{
		{Name: "staff.csv", Reader: strings.NewReader(
			"Email,First Name,Last Name\na@b.com,Ann,Brown\n")},
		{Name: "broken.xlsx", Reader: strings.NewReader("PK\x03\x04garbage")},
		{Name: "training.csv", Reader: strings.NewReader(
			"Employee Email,Course Title,Assigned Date,Due Date\n" +
				"a@b.com,Safety 101,2025-01-01,2025-06-30\n")},
	}

	report := importer.ImportFiles(context.Background(), files)

	if report.ID == "" {
		t.Error("report has no ID")
	}
	if len(report.Results) != 3 {
		t.Fatalf("got %d results, want 3", len(report.Results))
	}

	// Input order preserved, and the broken file fails alone in its slot.
	if report.Results[0].FileName != "staff.csv" ||
		report.Results[1].FileName != "broken.xlsx" ||
		report.Results[2].FileName != "training.csv" {
		t.Fatalf("result order wrong: %v, %v, %v",
			report.Results[0].FileName, report.Results[1].FileName, report.Results[2].FileName)
	}
	if len(report.Results[1].Errors) == 0 {
		t.Error("broken file reported no error")
	}
	if report.Results[2].Summary.ValidRows != 1 {
		t.Errorf("third file did not survive the broken second: %+v", report.Results[2].Summary)
	}

	if report.Persisted {
		t.Error("no store configured but report claims persistence")
	}
	if report.Summary.Employees != 1 || report.Summary.Assignments != 1 {
		t.Errorf("summary = %+v", report.Summary)
	}

	snap := importer.Snapshot()
	if len(snap.Employees) != 1 || len(snap.Assignments) != 1 {
		t.Errorf("snapshot = %d employees, %d assignments", len(snap.Employees), len(snap.Assignments))
	}
}

// fakeStore records what it was handed and can fail one record type.
type fakeStore struct {
	employees   []EmployeeRecord
	assignments []TrainingAssignmentRecord
	qmsUpdates  []QMSUpdateRecord
	failQMS     bool
}

func (s *fakeStore) UpsertEmployees(_ context.Context, recs []EmployeeRecord) ([]EmployeeRecord, error) {
	s.employees = append(s.employees, recs...)
	return recs, nil
}

func (s *fakeStore) UpsertTrainingAssignments(_ context.Context, recs []TrainingAssignmentRecord) ([]TrainingAssignmentRecord, error) {
	s.assignments = append(s.assignments, recs...)
	return recs, nil
}

func (s *fakeStore) UpsertQMSUpdates(_ context.Context, recs []QMSUpdateRecord) ([]QMSUpdateRecord, error) {
	if s.failQMS {
		return nil, errors.New("boom")
	}
	s.qmsUpdates = append(s.qmsUpdates, recs...)
	return recs, nil
}

func TestImportFilesWithStore(t *testing.T) {
	store := &fakeStore{failQMS: true}
	importer := NewImporter(store)

	files := []File{
		{Name: "staff.csv", Reader: strings.NewReader(
			"Email,First Name,Last Name\na@b.com,Ann,Brown\nc@d.com,Carl,Jones\n")},
		{Name: "qms.csv", Reader: strings.NewReader(
			"Title,Category,Planned Start Date,Planned End Date\n" +
				"Doc Control,process,2025-01-01,2025-03-31\n")},
	}

	report := importer.ImportFiles(context.Background(), files)

	if !report.Persisted {
		t.Error("store configured but report not marked persisted")
	}
	if len(store.employees) != 2 {
		t.Errorf("store got %d employees, want 2", len(store.employees))
	}

	// A store failure on one type is reported, not silently absorbed, and
	// does not inflate the persisted counts.
	if report.Summary.QMSUpdates != 0 {
		t.Errorf("qms summary = %d, want 0 after store failure", report.Summary.QMSUpdates)
	}
	if len(report.StoreErrors) != 1 || !strings.Contains(report.StoreErrors[0], "qms.csv") {
		t.Errorf("store errors = %v", report.StoreErrors)
	}
	if report.Summary.Employees != 2 {
		t.Errorf("employee summary = %d, want 2", report.Summary.Employees)
	}
}

func im() *Importer { return NewImporter(nil) }
