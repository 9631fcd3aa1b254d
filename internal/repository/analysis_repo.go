package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"gorm.io/datatypes"

	"literacytrack/internal/database"
	"literacytrack/internal/models"
)

const analysisColumns = `id, student_id, category, reading_level, strengths, weaknesses, recommendations,
	assessment_result_id, created_by, created_at, updated_at`

// AnalysisRepository handles database operations for prescriptive analyses
type AnalysisRepository struct {
	db database.DBTX
}

// NewAnalysisRepository creates a new analysis repository
func NewAnalysisRepository(db database.DBTX) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// Create inserts an analysis. It returns ErrDuplicate when the student already
// has an analysis for the category.
func (r *AnalysisRepository) Create(analysis *models.PrescriptiveAnalysis) error {
	if analysis.ID == "" {
		analysis.ID = newID()
	}
	analysis.CreatedAt = now()
	analysis.UpdatedAt = analysis.CreatedAt
	normalizeContent(analysis)

	strengths, weaknesses, recommendations, err := contentText(analysis)
	if err != nil {
		return err
	}

	query := "INSERT INTO prescriptive_analyses (" + analysisColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
	_, err = r.db.Exec(query,
		analysis.ID,
		analysis.StudentID,
		string(analysis.Category),
		string(analysis.ReadingLevel),
		strengths,
		weaknesses,
		recommendations,
		nullString(analysis.AssessmentResultID),
		nullString(analysis.CreatedBy),
		analysis.CreatedAt,
		analysis.UpdatedAt,
	)
	if err != nil {
		if r.db.GetDialect().IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create analysis: %w", err)
	}
	return nil
}

// GetByID retrieves an analysis by ID
func (r *AnalysisRepository) GetByID(id string) (*models.PrescriptiveAnalysis, error) {
	query := "SELECT " + analysisColumns + " FROM prescriptive_analyses WHERE id = ?"
	return r.getOne(query, id)
}

// GetByStudentAndCategory retrieves the analysis for one student and category
func (r *AnalysisRepository) GetByStudentAndCategory(studentID string, category models.Category) (*models.PrescriptiveAnalysis, error) {
	query := "SELECT " + analysisColumns + " FROM prescriptive_analyses WHERE student_id = ? AND category = ?"
	return r.getOne(query, studentID, string(category))
}

// ListForStudent retrieves a student's analyses sorted by category name
func (r *AnalysisRepository) ListForStudent(studentID string) ([]models.PrescriptiveAnalysis, error) {
	query := `
		SELECT ` + analysisColumns + `
		FROM prescriptive_analyses
		WHERE student_id = ?
		ORDER BY category ASC
	`
	return r.list(query, studentID)
}

// ListMissingBackReference retrieves analyses not linked to an assessment result
func (r *AnalysisRepository) ListMissingBackReference() ([]models.PrescriptiveAnalysis, error) {
	query := `
		SELECT ` + analysisColumns + `
		FROM prescriptive_analyses
		WHERE assessment_result_id IS NULL OR assessment_result_id = ''
		ORDER BY student_id ASC, category ASC
	`
	return r.list(query)
}

// ListAll retrieves every analysis
func (r *AnalysisRepository) ListAll() ([]models.PrescriptiveAnalysis, error) {
	query := "SELECT " + analysisColumns + " FROM prescriptive_analyses ORDER BY student_id ASC, category ASC"
	return r.list(query)
}

// UpdateReadingLevel sets the denormalized reading level. It reports false when
// the stored level already matches.
func (r *AnalysisRepository) UpdateReadingLevel(id string, level models.ReadingLevel) (bool, error) {
	query := "UPDATE prescriptive_analyses SET reading_level = ?, updated_at = ? WHERE id = ? AND reading_level <> ?"
	result, err := r.db.Exec(query, string(level), now(), id, string(level))
	if err != nil {
		return false, fmt.Errorf("failed to update analysis reading level: %w", err)
	}
	return changed(result)
}

// FillEmptyContent writes each non-empty list into its column only while that
// column is still empty. Content already in the store is never replaced, so a
// concurrent edit always wins. It reports whether any column was filled.
func (r *AnalysisRepository) FillEmptyContent(id string, strengths, weaknesses, recommendations []string) (bool, error) {
	fields := []struct {
		column string
		items  []string
	}{
		{column: "strengths", items: strengths},
		{column: "weaknesses", items: weaknesses},
		{column: "recommendations", items: recommendations},
	}

	var sets, conds []string
	var args []interface{}
	for _, f := range fields {
		if len(f.items) == 0 {
			continue
		}
		text, err := jsonText(models.StringList(f.items))
		if err != nil {
			return false, err
		}
		sets = append(sets, fmt.Sprintf("%s = CASE WHEN %s IN %s THEN ? ELSE %s END", f.column, f.column, emptyJSON, f.column))
		conds = append(conds, fmt.Sprintf("%s IN %s", f.column, emptyJSON))
		args = append(args, text)
	}
	if len(sets) == 0 {
		return false, nil
	}

	query := fmt.Sprintf(
		"UPDATE prescriptive_analyses SET %s, updated_at = ? WHERE id = ? AND (%s)",
		strings.Join(sets, ", "),
		strings.Join(conds, " OR "),
	)
	args = append(args, now(), id)

	result, err := r.db.Exec(query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to fill analysis content: %w", err)
	}
	return changed(result)
}

// Update overwrites the editable fields of an analysis
func (r *AnalysisRepository) Update(analysis *models.PrescriptiveAnalysis) error {
	analysis.UpdatedAt = now()
	normalizeContent(analysis)

	strengths, weaknesses, recommendations, err := contentText(analysis)
	if err != nil {
		return err
	}

	query := `
		UPDATE prescriptive_analyses
		SET reading_level = ?, strengths = ?, weaknesses = ?, recommendations = ?,
			assessment_result_id = ?, created_by = ?, updated_at = ?
		WHERE id = ?
	`
	_, err = r.db.Exec(query,
		string(analysis.ReadingLevel),
		strengths,
		weaknesses,
		recommendations,
		nullString(analysis.AssessmentResultID),
		nullString(analysis.CreatedBy),
		analysis.UpdatedAt,
		analysis.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update analysis: %w", err)
	}
	return nil
}

// SetAssessmentResultIfMissing links the analysis to a result unless it already
// has a back-reference
func (r *AnalysisRepository) SetAssessmentResultIfMissing(id, resultID string) (bool, error) {
	query := `
		UPDATE prescriptive_analyses
		SET assessment_result_id = ?, updated_at = ?
		WHERE id = ? AND (assessment_result_id IS NULL OR assessment_result_id = '')
	`
	result, err := r.db.Exec(query, resultID, now(), id)
	if err != nil {
		return false, fmt.Errorf("failed to set analysis back-reference: %w", err)
	}
	return changed(result)
}

func (r *AnalysisRepository) getOne(query string, args ...interface{}) (*models.PrescriptiveAnalysis, error) {
	analysis, err := scanAnalysis(r.db.QueryRow(query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}
	return analysis, nil
}

func (r *AnalysisRepository) list(query string, args ...interface{}) ([]models.PrescriptiveAnalysis, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query analyses: %w", err)
	}
	defer rows.Close()

	var analyses []models.PrescriptiveAnalysis
	for rows.Next() {
		analysis, err := scanAnalysis(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		analyses = append(analyses, *analysis)
	}
	return analyses, rows.Err()
}

func scanAnalysis(row rowScanner) (*models.PrescriptiveAnalysis, error) {
	var analysis models.PrescriptiveAnalysis
	var category, level string
	var resultID, createdBy sql.NullString
	if err := row.Scan(
		&analysis.ID,
		&analysis.StudentID,
		&category,
		&level,
		&analysis.Strengths,
		&analysis.Weaknesses,
		&analysis.Recommendations,
		&resultID,
		&createdBy,
		&analysis.CreatedAt,
		&analysis.UpdatedAt,
	); err != nil {
		return nil, err
	}

	analysis.Category = models.Category(category)
	analysis.ReadingLevel = models.ReadingLevel(level)
	analysis.AssessmentResultID = stringPtr(resultID)
	analysis.CreatedBy = stringPtr(createdBy)
	normalizeContent(&analysis)
	return &analysis, nil
}

// normalizeContent replaces nil lists so they are stored as [] rather than null
func normalizeContent(a *models.PrescriptiveAnalysis) {
	for _, list := range []*datatypes.JSONSlice[string]{&a.Strengths, &a.Weaknesses, &a.Recommendations} {
		if *list == nil {
			*list = datatypes.JSONSlice[string]{}
		}
	}
}

func contentText(a *models.PrescriptiveAnalysis) (string, string, string, error) {
	strengths, err := jsonText(a.Strengths)
	if err != nil {
		return "", "", "", err
	}
	weaknesses, err := jsonText(a.Weaknesses)
	if err != nil {
		return "", "", "", err
	}
	recommendations, err := jsonText(a.Recommendations)
	if err != nil {
		return "", "", "", err
	}
	return strengths, weaknesses, recommendations, nil
}
