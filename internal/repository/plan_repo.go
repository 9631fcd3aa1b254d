package repository

import (
	"database/sql"
	"fmt"

	"gorm.io/datatypes"

	"literacytrack/internal/database"
	"literacytrack/internal/models"
)

const planColumns = `id, student_id, analysis_id, assessment_result_id, category, pass_threshold,
	questions, status, created_by, created_at, updated_at`

// PlanRepository handles database operations for intervention plans
type PlanRepository struct {
	db database.DBTX
}

// NewPlanRepository creates a new plan repository
func NewPlanRepository(db database.DBTX) *PlanRepository {
	return &PlanRepository{db: db}
}

// Create stores a new intervention plan
func (r *PlanRepository) Create(plan *models.InterventionPlan) error {
	if plan.ID == "" {
		plan.ID = newID()
	}
	plan.CreatedAt = now()
	plan.UpdatedAt = plan.CreatedAt
	if plan.Questions == nil {
		plan.Questions = []models.QuestionSpec{}
	}

	questions, err := jsonText(plan.Questions)
	if err != nil {
		return err
	}

	query := "INSERT INTO intervention_plans (" + planColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
	_, err = r.db.Exec(query,
		plan.ID,
		plan.StudentID,
		nullString(plan.AnalysisID),
		nullString(plan.AssessmentResultID),
		string(plan.Category),
		plan.PassThreshold,
		questions,
		string(plan.Status),
		nullString(plan.CreatedBy),
		plan.CreatedAt,
		plan.UpdatedAt,
	)
	if err != nil {
		if r.db.GetDialect().IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create intervention plan: %w", err)
	}
	return nil
}

// GetByID retrieves a plan by ID
func (r *PlanRepository) GetByID(id string) (*models.InterventionPlan, error) {
	query := "SELECT " + planColumns + " FROM intervention_plans WHERE id = ?"
	plan, err := scanPlan(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get intervention plan: %w", err)
	}
	return plan, nil
}

// ListForStudent retrieves a student's plans, newest first
func (r *PlanRepository) ListForStudent(studentID string) ([]models.InterventionPlan, error) {
	query := `
		SELECT ` + planColumns + `
		FROM intervention_plans
		WHERE student_id = ?
		ORDER BY created_at DESC
	`
	return r.list(query, studentID)
}

// ListAll retrieves every plan
func (r *PlanRepository) ListAll() ([]models.InterventionPlan, error) {
	query := "SELECT " + planColumns + " FROM intervention_plans ORDER BY student_id ASC, created_at ASC"
	return r.list(query)
}

// CountActiveForStudent counts the student's plans in the active state
func (r *PlanRepository) CountActiveForStudent(studentID string) (int, error) {
	query := "SELECT COUNT(*) FROM intervention_plans WHERE student_id = ? AND status = ?"
	var count int
	if err := r.db.QueryRow(query, studentID, string(models.PlanStatusActive)).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count active plans: %w", err)
	}
	return count, nil
}

// TransitionStatus moves a plan from one status to another. It reports false
// when the plan was not in the from status, which keeps transitions one-way.
func (r *PlanRepository) TransitionStatus(id string, from, to models.PlanStatus) (bool, error) {
	query := "UPDATE intervention_plans SET status = ?, updated_at = ? WHERE id = ? AND status = ?"
	result, err := r.db.Exec(query, string(to), now(), id, string(from))
	if err != nil {
		return false, fmt.Errorf("failed to update plan status: %w", err)
	}
	return changed(result)
}

// UpdateQuestions replaces the question list of a plan that is not completed
func (r *PlanRepository) UpdateQuestions(id string, questions []models.QuestionSpec) (bool, error) {
	if questions == nil {
		questions = []models.QuestionSpec{}
	}
	text, err := jsonText(datatypes.JSONSlice[models.QuestionSpec](questions))
	if err != nil {
		return false, err
	}

	query := "UPDATE intervention_plans SET questions = ?, updated_at = ? WHERE id = ? AND status <> ?"
	result, err := r.db.Exec(query, text, now(), id, string(models.PlanStatusCompleted))
	if err != nil {
		return false, fmt.Errorf("failed to update plan questions: %w", err)
	}
	return changed(result)
}

func (r *PlanRepository) list(query string, args ...interface{}) ([]models.InterventionPlan, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query intervention plans: %w", err)
	}
	defer rows.Close()

	var plans []models.InterventionPlan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan intervention plan: %w", err)
		}
		plans = append(plans, *plan)
	}
	return plans, rows.Err()
}

func scanPlan(row rowScanner) (*models.InterventionPlan, error) {
	var plan models.InterventionPlan
	var category, status string
	var analysisID, resultID, createdBy sql.NullString
	if err := row.Scan(
		&plan.ID,
		&plan.StudentID,
		&analysisID,
		&resultID,
		&category,
		&plan.PassThreshold,
		&plan.Questions,
		&status,
		&createdBy,
		&plan.CreatedAt,
		&plan.UpdatedAt,
	); err != nil {
		return nil, err
	}

	plan.AnalysisID = stringPtr(analysisID)
	plan.AssessmentResultID = stringPtr(resultID)
	plan.CreatedBy = stringPtr(createdBy)
	plan.Category = models.Category(category)
	plan.Status = models.PlanStatus(status)
	return &plan, nil
}
