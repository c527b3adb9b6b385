package web

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/openqms/qmsboard/internal/config"
	"github.com/openqms/qmsboard/internal/ingest"
	"github.com/openqms/qmsboard/internal/mail"
)

// newTestServer builds a demo-mode server: no database, no SMTP.
func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:           8080,
			RequestTimeout: time.Minute,
		},
		Upload: config.UploadConfig{
			MaxFileSize: 1 << 20,
			MaxFiles:    5,
			Timeout:     time.Minute,
		},
		Rate: config.RateLimitConfig{Enabled: false},
	}
	return NewServer(cfg, ingest.NewImporter(nil), nil, mail.New(mail.Config{}))
}

func multipartBody(t *testing.T, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, content := range files {
		fw, err := mw.CreateFormFile("files", name)
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		if _, err := fw.Write([]byte(content)); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

// ----------------------------------------------------------------------------
// Import Endpoint Tests
// ----------------------------------------------------------------------------

func TestHandleImport(t *testing.T) {
	s := newTestServer(t)

	body, contentType := multipartBody(t, map[string]string{
		"staff.csv": "Email,First Name,Last Name\na@b.com,Ann,Brown\n,Carl,Jones\n",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/import", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var report ingest.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Summary.ValidRows != 1 || report.Summary.ErrorRows != 1 {
		t.Errorf("summary = %+v", report.Summary)
	}
	if report.Persisted {
		t.Error("demo mode import marked persisted")
	}
	if len(report.Results) != 1 || report.Results[0].Type != ingest.TypeEmployees {
		t.Errorf("results = %+v", report.Results)
	}
}

func TestHandleImportNoFiles(t *testing.T) {
	s := newTestServer(t)

	body, contentType := multipartBody(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/import", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

// ----------------------------------------------------------------------------
// Template Endpoint Tests
// ----------------------------------------------------------------------------

func TestHandleDownloadTemplate(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/template/training", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("content type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "training_template.csv") {
		t.Errorf("content disposition = %q", cd)
	}
	if !strings.HasPrefix(rec.Body.String(), "Employee Email,Course Title") {
		t.Errorf("unexpected template body: %q", rec.Body.String())
	}
}

func TestHandleDownloadTemplateUnknown(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/template/payroll", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

// ----------------------------------------------------------------------------
// Listing and Stats Tests
// ----------------------------------------------------------------------------

func TestStatsAndListingsAfterImport(t *testing.T) {
	s := newTestServer(t)

	body, contentType := multipartBody(t, map[string]string{
		"staff.csv": "Email,First Name,Last Name\na@b.com,Ann,Brown\n",
		"training.csv": "Employee Email,Course Title,Assigned Date,Due Date\n" +
			"a@b.com,Safety 101,2020-01-01,2020-06-30\n",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/import", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("import status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	var stats struct {
		TotalEmployees           int `json:"total_employees"`
		TotalTrainingAssignments int `json:"total_training_assignments"`
		OverdueTraining          int `json:"overdue_training"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.TotalEmployees != 1 || stats.TotalTrainingAssignments != 1 {
		t.Errorf("stats = %+v", stats)
	}
	// Due date long past: overdue in the snapshot view too
	if stats.OverdueTraining != 1 {
		t.Errorf("overdue = %d, want 1", stats.OverdueTraining)
	}

	rec = httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/employees", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "a@b.com") {
		t.Errorf("employees listing: %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/assignments", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Safety 101") {
		t.Errorf("assignments listing: %d %s", rec.Code, rec.Body.String())
	}
}

// ----------------------------------------------------------------------------
// Dashboard Page Tests
// ----------------------------------------------------------------------------

func TestHandleDashboard(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "QMS Dashboard") {
		t.Error("page title missing")
	}
	if !strings.Contains(body, "Demo mode") {
		t.Error("demo banner missing without a database")
	}
}

// ----------------------------------------------------------------------------
// Reminder Endpoint Tests
// ----------------------------------------------------------------------------

func TestHandleSendReminderDemo(t *testing.T) {
	s := newTestServer(t)

	payload := `{"employee_email":"a@b.com","employee_name":"Ann","course_title":"Safety 101","due_date":"2025-06-30"}`
	req := httptest.NewRequest(http.MethodPost, "/api/reminders", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "demo mode") {
		t.Errorf("expected demo mode note: %s", rec.Body.String())
	}
}

func TestHandleSendReminderMissingFields(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/reminders", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleSendBulkReminders(t *testing.T) {
	s := newTestServer(t)

	payload := `{"assignments":[
		{"employee_email":"a@b.com","employee_name":"Ann","course_title":"X","due_date":"2025-01-01"},
		{"employee_email":"c@d.com","employee_name":"Carl","course_title":"Y","due_date":"2025-02-01"}
	],"custom_message":"please finish this week"}`
	req := httptest.NewRequest(http.MethodPost, "/api/reminders/bulk", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success bool            `json:"success"`
		Details mail.BulkResult `json:"details"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || resp.Details.Successful != 2 || resp.Details.Failed != 0 {
		t.Errorf("response = %+v", resp)
	}
}

// ----------------------------------------------------------------------------
// Security Header Tests
// ----------------------------------------------------------------------------

func TestSecurityHeaders(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))

	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q", got)
	}
}
