package web

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/openqms/qmsboard/internal/ingest"
	"github.com/openqms/qmsboard/internal/logging"
	"github.com/openqms/qmsboard/internal/mail"
	"github.com/openqms/qmsboard/internal/store"
	"github.com/openqms/qmsboard/internal/web/templates"
)

// handleDashboard renders the dashboard page.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	stats, err := s.stats(r)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		templates.ErrorAlert("failed to load dashboard stats").Render(r.Context(), w)
		return
	}

	templates.Dashboard(templates.DashboardParams{
		Stats:    stats,
		DemoMode: s.store == nil,
	}).Render(r.Context(), w)
}

// handleImport accepts one or more spreadsheet files under the "files"
// multipart field and runs them through the import pipeline.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize*int64(s.cfg.Upload.MaxFiles))

	if err := r.ParseMultipartForm(maxSize); err != nil {
		writeError(w, http.StatusBadRequest, "file too large or invalid form")
		return
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeError(w, http.StatusBadRequest, "no files provided")
		return
	}
	if len(headers) > s.cfg.Upload.MaxFiles {
		writeError(w, http.StatusBadRequest, "too many files in one request")
		return
	}

	var files []ingest.File
	for _, fh := range headers {
		if fh.Size > maxSize {
			writeError(w, http.StatusBadRequest, "file too large: "+fh.Filename)
			return
		}
		f, err := fh.Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, "cannot read file: "+fh.Filename)
			return
		}
		defer f.Close()
		files = append(files, ingest.File{Name: fh.Filename, Reader: f})
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Upload.Timeout)
	defer cancel()

	logger.Info("import started", "files", len(files))
	report := s.importer.ImportFiles(ctx, files)

	writeJSON(w, report)
}

// handleDownloadTemplate serves a starter CSV for one record kind.
func (s *Server) handleDownloadTemplate(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")

	var t ingest.RecordType
	switch kind {
	case "employees":
		t = ingest.TypeEmployees
	case "training":
		t = ingest.TypeTrainingAssignments
	case "qms":
		t = ingest.TypeQMSUpdates
	default:
		writeError(w, http.StatusNotFound, "unknown template kind: "+kind)
		return
	}

	name, content, err := ingest.Template(t)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to build template")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Write(content)
}

// handleStats serves the dashboard's headline numbers.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.stats(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}
	writeJSON(w, stats)
}

// stats computes headline numbers from the database, or from the in-memory
// snapshot in demo mode.
func (s *Server) stats(r *http.Request) (store.Stats, error) {
	if s.store != nil {
		return s.store.DashboardStats(r.Context())
	}

	snap := s.importer.Snapshot()
	st := store.Stats{
		TotalEmployees:           len(snap.Employees),
		TotalTrainingAssignments: len(snap.Assignments),
		TotalQMSUpdates:          len(snap.QMSUpdates),
	}
	today := time.Now().Format("2006-01-02")
	for _, a := range snap.Assignments {
		if a.DueDate < today {
			st.OverdueTraining++
		}
	}
	return st, nil
}

// handleListEmployees serves the employee listing.
func (s *Server) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	if s.store != nil {
		employees, err := s.store.ListEmployees(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to list employees")
			return
		}
		writeJSON(w, employees)
		return
	}

	snap := s.importer.Snapshot()
	out := make([]store.Employee, 0, len(snap.Employees))
	for _, e := range snap.Employees {
		out = append(out, store.Employee{
			Email:      e.Email,
			FirstName:  e.FirstName,
			LastName:   e.LastName,
			Department: e.Department,
			Position:   e.Position,
			HireDate:   e.HireDate,
		})
	}
	writeJSON(w, out)
}

// handleListAssignments serves the training assignment listing.
func (s *Server) handleListAssignments(w http.ResponseWriter, r *http.Request) {
	if s.store != nil {
		assignments, err := s.store.ListAssignments(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to list assignments")
			return
		}
		writeJSON(w, assignments)
		return
	}

	snap := s.importer.Snapshot()
	out := make([]store.Assignment, 0, len(snap.Assignments))
	for _, a := range snap.Assignments {
		out = append(out, store.Assignment{
			EmployeeEmail: a.EmployeeEmail,
			CourseTitle:   a.CourseTitle,
			AssignedDate:  a.AssignedDate,
			DueDate:       a.DueDate,
			Status:        "assigned",
			Priority:      a.Priority,
			DurationHours: a.DurationHours,
		})
	}
	writeJSON(w, out)
}

// handleListQMSUpdates serves the QMS plan listing.
func (s *Server) handleListQMSUpdates(w http.ResponseWriter, r *http.Request) {
	if s.store != nil {
		updates, err := s.store.ListQMSUpdates(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to list qms plans")
			return
		}
		writeJSON(w, updates)
		return
	}

	snap := s.importer.Snapshot()
	out := make([]store.QMSUpdate, 0, len(snap.QMSUpdates))
	for _, u := range snap.QMSUpdates {
		out = append(out, store.QMSUpdate{
			Title:                  u.Title,
			Description:            u.Description,
			Category:               u.Category,
			PlannedStartDate:       u.PlannedStartDate,
			PlannedEndDate:         u.PlannedEndDate,
			Status:                 "planned",
			Priority:               u.Priority,
			Year:                   u.Year,
			Quarter:                u.Quarter,
			ResponsiblePersonEmail: u.ResponsiblePersonEmail,
		})
	}
	writeJSON(w, out)
}

// handleSendReminder sends one training reminder email.
func (s *Server) handleSendReminder(w http.ResponseWriter, r *http.Request) {
	var req mail.Reminder
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.EmployeeEmail == "" || req.CourseTitle == "" {
		writeError(w, http.StatusBadRequest, "employee_email and course_title are required")
		return
	}

	if err := s.mailer.SendReminder(req); err != nil {
		writeError(w, http.StatusBadGateway, "failed to send reminder")
		return
	}

	msg := "Training reminder sent successfully"
	if s.mailer.DemoMode() {
		msg = "Email sent successfully (demo mode - check logs for details)"
	}
	writeJSON(w, map[string]any{"success": true, "message": msg})
}

type bulkReminderRequest struct {
	Assignments   []mail.Reminder `json:"assignments"`
	CustomMessage string          `json:"custom_message,omitempty"`
}

// handleSendBulkReminders sends a reminder per assignment, in parallel.
func (s *Server) handleSendBulkReminders(w http.ResponseWriter, r *http.Request) {
	var req bulkReminderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Assignments) == 0 {
		writeError(w, http.StatusBadRequest, "no assignments provided")
		return
	}

	// A request-level message applies to every reminder that has none.
	if req.CustomMessage != "" {
		for i := range req.Assignments {
			if req.Assignments[i].CustomMessage == "" {
				req.Assignments[i].CustomMessage = req.CustomMessage
			}
		}
	}

	res := s.mailer.SendBulk(req.Assignments)
	writeJSON(w, map[string]any{
		"success": res.Successful > 0,
		"details": res,
	})
}
