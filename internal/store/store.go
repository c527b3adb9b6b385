// Package store persists imported records in PostgreSQL and serves the
// dashboard's read queries. All writes are idempotent upserts keyed by the
// records' natural keys, so re-importing the same sheet never duplicates
// rows.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store wraps a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store backed by the given pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Ping verifies database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the underlying pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Migrate creates the schema if it does not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("applying schema: %w", err)
		}
	}
	return nil
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS employees (
		id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		email       TEXT NOT NULL UNIQUE,
		first_name  TEXT NOT NULL,
		last_name   TEXT NOT NULL,
		department  TEXT NOT NULL DEFAULT 'General',
		position    TEXT NOT NULL DEFAULT 'Employee',
		hire_date   DATE,
		is_active   BOOLEAN NOT NULL DEFAULT true,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS training_courses (
		id             UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		title          TEXT NOT NULL UNIQUE,
		description    TEXT NOT NULL DEFAULT '',
		duration_hours INT NOT NULL DEFAULT 1,
		category       TEXT NOT NULL DEFAULT 'General',
		is_mandatory   BOOLEAN NOT NULL DEFAULT false,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS training_assignments (
		id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		employee_id   UUID NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		course_id     UUID NOT NULL REFERENCES training_courses(id) ON DELETE CASCADE,
		assigned_date DATE NOT NULL,
		due_date      DATE NOT NULL,
		status        TEXT NOT NULL DEFAULT 'assigned',
		priority      TEXT NOT NULL DEFAULT 'medium',
		completed_at  TIMESTAMPTZ,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (employee_id, course_id)
	)`,
	`CREATE TABLE IF NOT EXISTS qms_updates (
		id                    UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		title                 TEXT NOT NULL,
		description           TEXT NOT NULL DEFAULT '',
		category              TEXT NOT NULL,
		planned_start_date    DATE NOT NULL,
		planned_end_date      DATE NOT NULL,
		responsible_person_id UUID REFERENCES employees(id) ON DELETE SET NULL,
		status                TEXT NOT NULL DEFAULT 'planned',
		priority              TEXT NOT NULL DEFAULT 'medium',
		year                  INT NOT NULL,
		quarter               INT,
		progress              INT NOT NULL DEFAULT 0,
		created_at            TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at            TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_assignments_due ON training_assignments (due_date) WHERE status <> 'completed'`,
	`CREATE INDEX IF NOT EXISTS idx_qms_year_quarter ON qms_updates (year, quarter)`,
}

// ----------------------------------------------------------------------------
// pgtype Helpers
// ----------------------------------------------------------------------------

// toPgDate converts a canonical YYYY-MM-DD string to a nullable DATE.
// An empty string maps to NULL.
func toPgDate(s string) pgtype.Date {
	if s == "" {
		return pgtype.Date{}
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: t, Valid: true}
}

// pgDateToString renders a nullable DATE back to YYYY-MM-DD, or "".
func pgDateToString(d pgtype.Date) string {
	if !d.Valid {
		return ""
	}
	return d.Time.Format("2006-01-02")
}

// toPgInt4 converts an int to a nullable INT, mapping 0 to NULL.
func toPgInt4(n int) pgtype.Int4 {
	if n == 0 {
		return pgtype.Int4{}
	}
	return pgtype.Int4{Int32: int32(n), Valid: true}
}

// textOr returns the nullable text's value, or "" when NULL.
func textOr(t pgtype.Text) string {
	if !t.Valid {
		return ""
	}
	return t.String
}
