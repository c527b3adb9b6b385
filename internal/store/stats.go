package store

import (
	"context"
	"fmt"
)

// Stats is the dashboard's headline numbers.
type Stats struct {
	TotalEmployees           int `json:"total_employees"`
	TotalTrainingAssignments int `json:"total_training_assignments"`
	CompletedTraining        int `json:"completed_training"`
	OverdueTraining          int `json:"overdue_training"`
	TotalQMSUpdates          int `json:"total_qms_updates"`
	CompletedQMS             int `json:"completed_qms"`
	InProgressQMS            int `json:"in_progress_qms"`
}

// DashboardStats computes the headline counts in a single round trip.
// Overdue means past its due date and not completed.
func (s *Store) DashboardStats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM employees WHERE is_active = true),
			(SELECT COUNT(*) FROM training_assignments ta
				JOIN employees e ON ta.employee_id = e.id
				WHERE e.is_active = true),
			(SELECT COUNT(*) FROM training_assignments WHERE status = 'completed'),
			(SELECT COUNT(*) FROM training_assignments
				WHERE status <> 'completed' AND due_date < CURRENT_DATE),
			(SELECT COUNT(*) FROM qms_updates),
			(SELECT COUNT(*) FROM qms_updates WHERE status = 'completed'),
			(SELECT COUNT(*) FROM qms_updates WHERE status = 'in_progress')`,
	).Scan(
		&st.TotalEmployees,
		&st.TotalTrainingAssignments,
		&st.CompletedTraining,
		&st.OverdueTraining,
		&st.TotalQMSUpdates,
		&st.CompletedQMS,
		&st.InProgressQMS,
	)
	if err != nil {
		return Stats{}, fmt.Errorf("dashboard stats: %w", err)
	}
	return st, nil
}
