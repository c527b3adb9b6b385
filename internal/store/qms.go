package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/openqms/qmsboard/internal/ingest"
)

// QMSUpdate is one stored QMS plan joined with its responsible person, as
// served to the dashboard.
type QMSUpdate struct {
	ID                     string `json:"id"`
	Title                  string `json:"title"`
	Description            string `json:"description"`
	Category               string `json:"category"`
	PlannedStartDate       string `json:"planned_start_date"`
	PlannedEndDate         string `json:"planned_end_date"`
	Status                 string `json:"status"`
	Priority               string `json:"priority"`
	Year                   int    `json:"year"`
	Quarter                int    `json:"quarter,omitempty"`
	Progress               int    `json:"progress"`
	ResponsiblePersonEmail string `json:"responsible_person_email,omitempty"`
	ResponsibleFirstName   string `json:"first_name,omitempty"`
	ResponsibleLastName    string `json:"last_name,omitempty"`
}

// UpsertQMSUpdates writes QMS plan records. A record naming a responsible
// person whose email matches no active employee is dropped; a record with
// no responsible person inserts with a NULL reference.
func (s *Store) UpsertQMSUpdates(ctx context.Context, recs []ingest.QMSUpdateRecord) ([]ingest.QMSUpdateRecord, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx) // No-op if already committed

	var saved []ingest.QMSUpdateRecord
	for _, rec := range recs {
		var responsibleID any
		if rec.ResponsiblePersonEmail != "" {
			id, err := resolveEmployee(ctx, tx, rec.ResponsiblePersonEmail)
			if err != nil {
				return nil, err
			}
			if id == "" {
				slog.Warn("qms plan skipped, responsible person not found",
					"title", rec.Title, "email", rec.ResponsiblePersonEmail)
				continue
			}
			responsibleID = id
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO qms_updates (title, description, category,
				planned_start_date, planned_end_date,
				responsible_person_id, status, priority, year, quarter)
			VALUES ($1, $2, $3, $4, $5, $6, 'planned', $7, $8, $9)`,
			rec.Title, rec.Description, rec.Category,
			toPgDate(rec.PlannedStartDate), toPgDate(rec.PlannedEndDate),
			responsibleID, rec.Priority, rec.Year, toPgInt4(rec.Quarter),
		); err != nil {
			return nil, fmt.Errorf("insert qms plan %q: %w", rec.Title, err)
		}
		saved = append(saved, rec)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return saved, nil
}

// ListQMSUpdates returns QMS plans, latest planned start first.
func (s *Store) ListQMSUpdates(ctx context.Context) ([]QMSUpdate, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT qu.id, qu.title, qu.description, qu.category,
		       qu.planned_start_date, qu.planned_end_date,
		       qu.status, qu.priority, qu.year, qu.quarter, qu.progress,
		       e.email, e.first_name, e.last_name
		FROM qms_updates qu
		LEFT JOIN employees e ON qu.responsible_person_id = e.id
		ORDER BY qu.planned_start_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("list qms plans: %w", err)
	}
	defer rows.Close()

	var out []QMSUpdate
	for rows.Next() {
		var (
			id        pgtype.UUID
			startDate pgtype.Date
			endDate   pgtype.Date
			quarter   pgtype.Int4
			email     pgtype.Text
			firstName pgtype.Text
			lastName  pgtype.Text
			u         QMSUpdate
		)
		if err := rows.Scan(&id, &u.Title, &u.Description, &u.Category,
			&startDate, &endDate, &u.Status, &u.Priority, &u.Year, &quarter,
			&u.Progress, &email, &firstName, &lastName); err != nil {
			return nil, fmt.Errorf("scan qms plan: %w", err)
		}
		u.ID = uuidToString(id)
		u.PlannedStartDate = pgDateToString(startDate)
		u.PlannedEndDate = pgDateToString(endDate)
		if quarter.Valid {
			u.Quarter = int(quarter.Int32)
		}
		u.ResponsiblePersonEmail = textOr(email)
		u.ResponsibleFirstName = textOr(firstName)
		u.ResponsibleLastName = textOr(lastName)
		out = append(out, u)
	}
	return out, rows.Err()
}
