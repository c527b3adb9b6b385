package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/openqms/qmsboard/internal/ingest"
)

// Assignment is one training assignment joined with its employee and
// course, as served to the dashboard.
type Assignment struct {
	ID            string `json:"id"`
	EmployeeEmail string `json:"employee_email"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	CourseTitle   string `json:"course_title"`
	AssignedDate  string `json:"assigned_date"`
	DueDate       string `json:"due_date"`
	Status        string `json:"status"`
	Priority      string `json:"priority"`
	DurationHours int    `json:"duration_hours"`
}

// UpsertTrainingAssignments writes assignment records. The employee is
// resolved by email; records whose email matches no active employee are
// skipped, not failed. Courses are created on first reference by title, and
// the assignment itself upserts on (employee, course).
func (s *Store) UpsertTrainingAssignments(ctx context.Context, recs []ingest.TrainingAssignmentRecord) ([]ingest.TrainingAssignmentRecord, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx) // No-op if already committed

	var saved []ingest.TrainingAssignmentRecord
	for _, rec := range recs {
		employeeID, err := resolveEmployee(ctx, tx, rec.EmployeeEmail)
		if err != nil {
			return nil, err
		}
		if employeeID == "" {
			slog.Warn("assignment skipped, employee not found", "email", rec.EmployeeEmail)
			continue
		}

		courseID, err := findOrCreateCourse(ctx, tx, rec)
		if err != nil {
			return nil, err
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO training_assignments (employee_id, course_id, assigned_date, due_date, status, priority)
			VALUES ($1, $2, $3, $4, 'assigned', $5)
			ON CONFLICT (employee_id, course_id) DO UPDATE SET
				assigned_date = EXCLUDED.assigned_date,
				due_date      = EXCLUDED.due_date,
				priority      = EXCLUDED.priority,
				updated_at    = NOW()`,
			employeeID, courseID,
			toPgDate(rec.AssignedDate), toPgDate(rec.DueDate), rec.Priority,
		); err != nil {
			return nil, fmt.Errorf("upsert assignment for %s: %w", rec.EmployeeEmail, err)
		}
		saved = append(saved, rec)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return saved, nil
}

// resolveEmployee returns the id of the active employee with the given
// email, or "" when no such employee exists.
func resolveEmployee(ctx context.Context, tx pgx.Tx, email string) (string, error) {
	var id pgtype.UUID
	err := tx.QueryRow(ctx,
		`SELECT id FROM employees WHERE email = $1 AND is_active = true`, email,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("resolve employee %s: %w", email, err)
	}
	return uuidToString(id), nil
}

func findOrCreateCourse(ctx context.Context, tx pgx.Tx, rec ingest.TrainingAssignmentRecord) (string, error) {
	var id pgtype.UUID
	err := tx.QueryRow(ctx,
		`SELECT id FROM training_courses WHERE title = $1`, rec.CourseTitle,
	).Scan(&id)
	if err == nil {
		return uuidToString(id), nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("find course %q: %w", rec.CourseTitle, err)
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO training_courses (title, description, duration_hours, category)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		rec.CourseTitle, rec.Description, rec.DurationHours, rec.Category,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("create course %q: %w", rec.CourseTitle, err)
	}
	return uuidToString(id), nil
}

// ListAssignments returns assignments for active employees, newest first.
func (s *Store) ListAssignments(ctx context.Context) ([]Assignment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT ta.id, e.email, e.first_name, e.last_name,
		       tc.title, ta.assigned_date, ta.due_date,
		       ta.status, ta.priority, tc.duration_hours
		FROM training_assignments ta
		JOIN employees e ON ta.employee_id = e.id
		JOIN training_courses tc ON ta.course_id = tc.id
		WHERE e.is_active = true
		ORDER BY ta.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	var out []Assignment
	for rows.Next() {
		var (
			id           pgtype.UUID
			assignedDate pgtype.Date
			dueDate      pgtype.Date
			a            Assignment
		)
		if err := rows.Scan(&id, &a.EmployeeEmail, &a.FirstName, &a.LastName,
			&a.CourseTitle, &assignedDate, &dueDate,
			&a.Status, &a.Priority, &a.DurationHours); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		a.ID = uuidToString(id)
		a.AssignedDate = pgDateToString(assignedDate)
		a.DueDate = pgDateToString(dueDate)
		out = append(out, a)
	}
	return out, rows.Err()
}
