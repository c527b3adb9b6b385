package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/openqms/qmsboard/internal/ingest"
)

// Employee is one stored employee row as served to the dashboard.
type Employee struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Department string `json:"department"`
	Position   string `json:"position"`
	HireDate   string `json:"hire_date,omitempty"`
	CreatedAt  string `json:"created_at"`
}

// UpsertEmployees writes employee records keyed by email. An email seen
// before updates the existing row in place.
func (s *Store) UpsertEmployees(ctx context.Context, recs []ingest.EmployeeRecord) ([]ingest.EmployeeRecord, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx) // No-op if already committed

	const q = `
		INSERT INTO employees (email, first_name, last_name, department, position, hire_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (email) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name  = EXCLUDED.last_name,
			department = EXCLUDED.department,
			position   = EXCLUDED.position,
			hire_date  = EXCLUDED.hire_date,
			is_active  = true,
			updated_at = NOW()`

	for _, rec := range recs {
		if _, err := tx.Exec(ctx, q,
			rec.Email, rec.FirstName, rec.LastName,
			rec.Department, rec.Position, toPgDate(rec.HireDate),
		); err != nil {
			return nil, fmt.Errorf("upsert employee %s: %w", rec.Email, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return recs, nil
}

// ListEmployees returns active employees, newest first.
func (s *Store) ListEmployees(ctx context.Context) ([]Employee, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, email, first_name, last_name, department, position, hire_date, created_at
		FROM employees
		WHERE is_active = true
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanEmployee(rows pgx.Rows) (Employee, error) {
	var (
		id        pgtype.UUID
		hireDate  pgtype.Date
		createdAt pgtype.Timestamptz
		e         Employee
	)
	if err := rows.Scan(&id, &e.Email, &e.FirstName, &e.LastName,
		&e.Department, &e.Position, &hireDate, &createdAt); err != nil {
		return Employee{}, fmt.Errorf("scan employee: %w", err)
	}
	e.ID = uuidToString(id)
	e.HireDate = pgDateToString(hireDate)
	e.CreatedAt = createdAt.Time.Format("2006-01-02T15:04:05Z07:00")
	return e, nil
}

func uuidToString(u pgtype.UUID) string {
	if !u.Valid {
		return ""
	}
	v, err := u.Value()
	if err != nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
