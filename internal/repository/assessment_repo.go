package repository

import (
	"database/sql"
	"fmt"

	"literacytrack/internal/database"
	"literacytrack/internal/models"
)

const assessmentColumns = `id, student_id, kind, reading_level, category_results, overall_score,
	all_categories_passed, reading_level_propagated, taken_at, created_at`

// AssessmentRepository handles database operations for assessment results
type AssessmentRepository struct {
	db database.DBTX
}

// NewAssessmentRepository creates a new assessment repository
func NewAssessmentRepository(db database.DBTX) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

// Create stores a new assessment result
func (r *AssessmentRepository) Create(result *models.AssessmentResult) error {
	if result.ID == "" {
		result.ID = newID()
	}
	result.CreatedAt = now()
	if result.TakenAt.IsZero() {
		result.TakenAt = result.CreatedAt
	}

	categories, err := jsonText(result.CategoryResults)
	if err != nil {
		return err
	}

	query := "INSERT INTO assessment_results (" + assessmentColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
	_, err = r.db.Exec(query,
		result.ID,
		result.StudentID,
		string(result.Kind),
		string(result.ReadingLevel),
		categories,
		result.OverallScore,
		result.AllCategoriesPassed,
		result.ReadingLevelPropagated,
		result.TakenAt,
		result.CreatedAt,
	)
	if err != nil {
		if r.db.GetDialect().IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create assessment result: %w", err)
	}
	return nil
}

// GetByID retrieves an assessment result by ID
func (r *AssessmentRepository) GetByID(id string) (*models.AssessmentResult, error) {
	query := "SELECT " + assessmentColumns + " FROM assessment_results WHERE id = ?"
	result, err := scanAssessment(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get assessment result: %w", err)
	}
	return result, nil
}

// ListForStudent retrieves a student's results, most recent first
func (r *AssessmentRepository) ListForStudent(studentID string) ([]models.AssessmentResult, error) {
	query := `
		SELECT ` + assessmentColumns + `
		FROM assessment_results
		WHERE student_id = ?
		ORDER BY taken_at DESC, created_at DESC
	`
	return r.list(query, studentID)
}

// GetLatestForStudent retrieves the most recent result for a student
func (r *AssessmentRepository) GetLatestForStudent(studentID string) (*models.AssessmentResult, error) {
	query := `
		SELECT ` + assessmentColumns + `
		FROM assessment_results
		WHERE student_id = ?
		ORDER BY taken_at DESC, created_at DESC
		LIMIT 1
	`
	result, err := scanAssessment(r.db.QueryRow(query, studentID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest assessment result: %w", err)
	}
	return result, nil
}

// MarkReadingLevelPropagated flags a result whose reading level has been
// copied to the student. It reports false if the flag was already set.
func (r *AssessmentRepository) MarkReadingLevelPropagated(id string) (bool, error) {
	query := "UPDATE assessment_results SET reading_level_propagated = ? WHERE id = ? AND reading_level_propagated = ?"
	result, err := r.db.Exec(query, true, id, false)
	if err != nil {
		return false, fmt.Errorf("failed to mark reading level propagated: %w", err)
	}
	return changed(result)
}

// ListAll retrieves every assessment result
func (r *AssessmentRepository) ListAll() ([]models.AssessmentResult, error) {
	query := "SELECT " + assessmentColumns + " FROM assessment_results ORDER BY student_id ASC, taken_at ASC"
	return r.list(query)
}

func (r *AssessmentRepository) list(query string, args ...interface{}) ([]models.AssessmentResult, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query assessment results: %w", err)
	}
	defer rows.Close()

	var results []models.AssessmentResult
	for rows.Next() {
		result, err := scanAssessment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assessment result: %w", err)
		}
		results = append(results, *result)
	}
	return results, rows.Err()
}

func scanAssessment(row rowScanner) (*models.AssessmentResult, error) {
	var result models.AssessmentResult
	var kind, level string
	if err := row.Scan(
		&result.ID,
		&result.StudentID,
		&kind,
		&level,
		&result.CategoryResults,
		&result.OverallScore,
		&result.AllCategoriesPassed,
		&result.ReadingLevelPropagated,
		&result.TakenAt,
		&result.CreatedAt,
	); err != nil {
		return nil, err
	}
	result.Kind = models.AssessmentKind(kind)
	result.ReadingLevel = models.ReadingLevel(level)
	return &result, nil
}
