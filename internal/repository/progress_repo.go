package repository

import (
	"database/sql"
	"fmt"

	"literacytrack/internal/database"
	"literacytrack/internal/models"
)

const progressColumns = `id, plan_id, student_id, completed_activities, total_activities, percent_complete,
	correct_answers, incorrect_answers, percent_correct, passed_threshold, last_activity_at, notes,
	created_at, updated_at`

// ProgressRepository handles database operations for intervention progress
type ProgressRepository struct {
	db database.DBTX
}

// NewProgressRepository creates a new progress repository
func NewProgressRepository(db database.DBTX) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// Create inserts the progress record of a plan. It returns ErrDuplicate when
// the plan already has one.
func (r *ProgressRepository) Create(progress *models.InterventionProgress) error {
	if progress.ID == "" {
		progress.ID = newID()
	}
	progress.CreatedAt = now()
	progress.UpdatedAt = progress.CreatedAt

	query := "INSERT INTO intervention_progress (" + progressColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
	_, err := r.db.Exec(query,
		progress.ID,
		progress.PlanID,
		progress.StudentID,
		progress.CompletedActivities,
		progress.TotalActivities,
		progress.PercentComplete,
		progress.CorrectAnswers,
		progress.IncorrectAnswers,
		progress.PercentCorrect,
		progress.PassedThreshold,
		nullTime(progress),
		progress.Notes,
		progress.CreatedAt,
		progress.UpdatedAt,
	)
	if err != nil {
		if r.db.GetDialect().IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create intervention progress: %w", err)
	}
	return nil
}

// GetByPlanID retrieves the progress record of a plan
func (r *ProgressRepository) GetByPlanID(planID string) (*models.InterventionProgress, error) {
	query := "SELECT " + progressColumns + " FROM intervention_progress WHERE plan_id = ?"
	progress, err := scanProgress(r.db.QueryRow(query, planID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get intervention progress: %w", err)
	}
	return progress, nil
}

// Update stores the counters, derived fields and notes of a progress record
func (r *ProgressRepository) Update(progress *models.InterventionProgress) error {
	progress.UpdatedAt = now()

	query := `
		UPDATE intervention_progress
		SET completed_activities = ?, total_activities = ?, percent_complete = ?,
			correct_answers = ?, incorrect_answers = ?, percent_correct = ?,
			passed_threshold = ?, last_activity_at = ?, notes = ?, updated_at = ?
		WHERE id = ?
	`
	_, err := r.db.Exec(query,
		progress.CompletedActivities,
		progress.TotalActivities,
		progress.PercentComplete,
		progress.CorrectAnswers,
		progress.IncorrectAnswers,
		progress.PercentCorrect,
		progress.PassedThreshold,
		nullTime(progress),
		progress.Notes,
		progress.UpdatedAt,
		progress.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update intervention progress: %w", err)
	}
	return nil
}

// ListAll retrieves every progress record
func (r *ProgressRepository) ListAll() ([]models.InterventionProgress, error) {
	query := "SELECT " + progressColumns + " FROM intervention_progress ORDER BY student_id ASC, created_at ASC"
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query intervention progress: %w", err)
	}
	defer rows.Close()

	var records []models.InterventionProgress
	for rows.Next() {
		progress, err := scanProgress(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan intervention progress: %w", err)
		}
		records = append(records, *progress)
	}
	return records, rows.Err()
}

func nullTime(progress *models.InterventionProgress) sql.NullTime {
	if progress.LastActivityAt == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *progress.LastActivityAt, Valid: true}
}

func scanProgress(row rowScanner) (*models.InterventionProgress, error) {
	var progress models.InterventionProgress
	var lastActivity sql.NullTime
	if err := row.Scan(
		&progress.ID,
		&progress.PlanID,
		&progress.StudentID,
		&progress.CompletedActivities,
		&progress.TotalActivities,
		&progress.PercentComplete,
		&progress.CorrectAnswers,
		&progress.IncorrectAnswers,
		&progress.PercentCorrect,
		&progress.PassedThreshold,
		&lastActivity,
		&progress.Notes,
		&progress.CreatedAt,
		&progress.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if lastActivity.Valid {
		t := lastActivity.Time
		progress.LastActivityAt = &t
	}
	return &progress, nil
}
