package service

import (
	"errors"
	"fmt"
	"log"

	"literacytrack/internal/models"
	"literacytrack/internal/repository"
	"literacytrack/internal/rules"
)

// ReconcileStats counts the writes made by one reconciler pass
type ReconcileStats struct {
	Created   int
	Updated   int
	Populated int
}

func (s *ReconcileStats) add(other ReconcileStats) {
	s.Created += other.Created
	s.Updated += other.Updated
	s.Populated += other.Populated
}

// Reconciler keeps a student's analyses at one per category with content
// filled in. Every operation is safe to repeat.
type Reconciler struct {
	resolver    *StudentResolver
	assessments AssessmentStore
	analyses    AnalysisStore
}

// NewReconciler creates a new reconciler
func NewReconciler(resolver *StudentResolver, assessments AssessmentStore, analyses AnalysisStore) *Reconciler {
	return &Reconciler{
		resolver:    resolver,
		assessments: assessments,
		analyses:    analyses,
	}
}

// EnsureAllCategoriesExist creates any missing category analysis for the student
// and brings stored reading levels up to date. It returns the student's
// analyses, or nothing when level is not assessed.
func (r *Reconciler) EnsureAllCategoriesExist(rawStudentID string, level models.ReadingLevel) ([]models.PrescriptiveAnalysis, error) {
	studentID, err := r.resolver.Resolve(rawStudentID)
	if err != nil {
		return nil, err
	}
	analyses, _, err := r.ensureAll(studentID, level)
	return analyses, err
}

// DeriveFromAssessmentResult fills empty content of the analyses for every
// category in result, using the category's actual score
func (r *Reconciler) DeriveFromAssessmentResult(rawStudentID string, result *models.AssessmentResult) ([]models.PrescriptiveAnalysis, error) {
	student, err := r.resolver.ResolveStudent(rawStudentID)
	if err != nil {
		return nil, err
	}
	analyses, _, err := r.deriveFrom(student, result)
	return analyses, err
}

// RefillEmptyAnalyses fills every empty field of the student's analyses from the
// latest assessment, or from the reading level when the assessment has no score
// for the category
func (r *Reconciler) RefillEmptyAnalyses(rawStudentID string) ([]models.PrescriptiveAnalysis, error) {
	student, err := r.resolver.ResolveStudent(rawStudentID)
	if err != nil {
		return nil, err
	}
	analyses, _, err := r.refill(student)
	return analyses, err
}

// ReconcileBackReference links an analysis to the most recent assessment result
// covering its category, when it has no link yet
func (r *Reconciler) ReconcileBackReference(analysisID string) (*models.PrescriptiveAnalysis, error) {
	analysis, err := r.analyses.GetByID(analysisID)
	if err != nil {
		return nil, persistErr("get analysis", err)
	}
	if analysis == nil {
		return nil, ErrAnalysisNotFound
	}
	if analysis.HasBackReference() {
		return analysis, nil
	}

	results, err := r.assessments.ListForStudent(analysis.StudentID)
	if err != nil {
		return nil, persistErr("list assessment results", err)
	}

	for _, result := range results {
		if !result.HasCategory(analysis.Category) {
			continue
		}
		if _, err := r.analyses.SetAssessmentResultIfMissing(analysis.ID, result.ID); err != nil {
			return nil, persistErr("link analysis to assessment result", err)
		}
		linked, err := r.analyses.GetByID(analysis.ID)
		if err != nil {
			return nil, persistErr("get analysis", err)
		}
		return linked, nil
	}

	return analysis, nil
}

func (r *Reconciler) ensureAll(studentID string, level models.ReadingLevel) ([]models.PrescriptiveAnalysis, ReconcileStats, error) {
	var stats ReconcileStats
	if !level.IsAssessed() {
		return nil, stats, nil
	}

	var failures []UnitFailure
	for _, category := range models.RequiredCategories() {
		_, created, updated, err := r.ensureCategory(studentID, category, level)
		if err != nil {
			log.Printf("Failed to ensure analysis student=%s category=%s: %v", studentID, category, err)
			failures = append(failures, UnitFailure{StudentID: studentID, Category: category, Step: "ensure", Err: err})
			continue
		}
		if created {
			stats.Created++
		}
		if updated {
			stats.Updated++
		}
	}

	analyses, err := r.analyses.ListForStudent(studentID)
	if err != nil {
		return nil, stats, persistErr("list analyses", err)
	}
	return analyses, stats, partialFailure(failures)
}

// ensureCategory returns the student's analysis for category, creating it if
// needed and updating its reading level when it differs
func (r *Reconciler) ensureCategory(studentID string, category models.Category, level models.ReadingLevel) (*models.PrescriptiveAnalysis, bool, bool, error) {
	existing, err := r.analyses.GetByStudentAndCategory(studentID, category)
	if err != nil {
		return nil, false, false, persistErr("get analysis", err)
	}

	if existing == nil {
		analysis := &models.PrescriptiveAnalysis{
			StudentID:       studentID,
			Category:        category,
			ReadingLevel:    level,
			Strengths:       models.StringList(nil),
			Weaknesses:      models.StringList(nil),
			Recommendations: models.StringList(nil),
		}
		err := r.analyses.Create(analysis)
		if err == nil {
			return analysis, true, false, nil
		}
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, false, false, persistErr("create analysis", err)
		}

		// Another writer created it first
		existing, err = r.analyses.GetByStudentAndCategory(studentID, category)
		if err != nil {
			return nil, false, false, persistErr("get analysis", err)
		}
		if existing == nil {
			return nil, false, false, fmt.Errorf("analysis for %s missing after duplicate insert", category)
		}
	}

	if existing.ReadingLevel == level {
		return existing, false, false, nil
	}

	updated, err := r.analyses.UpdateReadingLevel(existing.ID, level)
	if err != nil {
		return nil, false, false, persistErr("update analysis reading level", err)
	}
	existing.ReadingLevel = level
	return existing, false, updated, nil
}

func (r *Reconciler) deriveFrom(student *models.Student, result *models.AssessmentResult) ([]models.PrescriptiveAnalysis, ReconcileStats, error) {
	var stats ReconcileStats
	level := student.CurrentReadingLevel()
	if !level.IsAssessed() || result == nil {
		return nil, stats, nil
	}

	var failures []UnitFailure
	for _, cr := range result.CategoryResults {
		if !cr.Category.IsValid() {
			log.Printf("Warning: assessment %s has unknown category %q", result.ID, cr.Category)
			failures = append(failures, UnitFailure{StudentID: student.ID, Category: cr.Category, Step: "derive", Err: ErrUnknownCategory})
			continue
		}

		analysis, created, updated, err := r.ensureCategory(student.ID, cr.Category, level)
		if err != nil {
			log.Printf("Failed to derive analysis student=%s category=%s: %v", student.ID, cr.Category, err)
			failures = append(failures, UnitFailure{StudentID: student.ID, Category: cr.Category, Step: "derive", Err: err})
			continue
		}
		if created {
			stats.Created++
		}
		if updated {
			stats.Updated++
		}

		content := rules.DeriveContent(cr.Category, cr.Score, result.ReadingLevel)
		filled, err := r.fillEmpty(analysis, content)
		if err != nil {
			log.Printf("Failed to fill analysis student=%s category=%s: %v", student.ID, cr.Category, err)
			failures = append(failures, UnitFailure{StudentID: student.ID, Category: cr.Category, Step: "derive", Err: err})
			continue
		}
		if filled {
			stats.Populated++
		}

		if !analysis.HasBackReference() && result.ID != "" {
			if _, err := r.analyses.SetAssessmentResultIfMissing(analysis.ID, result.ID); err != nil {
				failures = append(failures, UnitFailure{
					StudentID: student.ID,
					Category:  cr.Category,
					Step:      "derive",
					Err:       persistErr("link analysis to assessment result", err),
				})
			}
		}
	}

	analyses, err := r.analyses.ListForStudent(student.ID)
	if err != nil {
		return nil, stats, persistErr("list analyses", err)
	}
	return analyses, stats, partialFailure(failures)
}

func (r *Reconciler) refill(student *models.Student) ([]models.PrescriptiveAnalysis, ReconcileStats, error) {
	var stats ReconcileStats
	level := student.CurrentReadingLevel()
	if !level.IsAssessed() {
		return nil, stats, nil
	}

	analyses, err := r.analyses.ListForStudent(student.ID)
	if err != nil {
		return nil, stats, persistErr("list analyses", err)
	}

	var latest *models.AssessmentResult
	var failures []UnitFailure
	loadedLatest := false

	for i := range analyses {
		analysis := &analyses[i]
		if !analysis.HasEmptyField() {
			continue
		}

		if !loadedLatest {
			latest, err = r.assessments.GetLatestForStudent(student.ID)
			if err != nil {
				return nil, stats, persistErr("get latest assessment result", err)
			}
			loadedLatest = true
		}

		score := rules.NoScore
		if latest != nil {
			if s, ok := latest.CategoryScore(analysis.Category); ok {
				score = s
			}
		}

		content := rules.DeriveContent(analysis.Category, score, level)
		filled, err := r.fillEmpty(analysis, content)
		if err != nil {
			log.Printf("Failed to refill analysis student=%s category=%s: %v", student.ID, analysis.Category, err)
			failures = append(failures, UnitFailure{StudentID: student.ID, Category: analysis.Category, Step: "refill", Err: err})
			continue
		}
		if filled {
			stats.Populated++
		}
	}

	if stats.Populated == 0 {
		return analyses, stats, partialFailure(failures)
	}

	analyses, err = r.analyses.ListForStudent(student.ID)
	if err != nil {
		return nil, stats, persistErr("list analyses", err)
	}
	return analyses, stats, partialFailure(failures)
}

// fillEmpty writes derived content into the fields that were empty when the
// analysis was read. The store re-checks emptiness, so an edit made since the
// read is kept.
func (r *Reconciler) fillEmpty(analysis *models.PrescriptiveAnalysis, content rules.Content) (bool, error) {
	var strengths, weaknesses, recommendations []string
	if len(analysis.Strengths) == 0 {
		strengths = content.Strengths
	}
	if len(analysis.Weaknesses) == 0 {
		weaknesses = content.Weaknesses
	}
	if len(analysis.Recommendations) == 0 {
		recommendations = content.Recommendations
	}
	if len(strengths) == 0 && len(weaknesses) == 0 && len(recommendations) == 0 {
		return false, nil
	}

	filled, err := r.analyses.FillEmptyContent(analysis.ID, strengths, weaknesses, recommendations)
	if err != nil {
		return false, persistErr("fill analysis content", err)
	}
	return filled, nil
}

// failuresOf extracts unit failures from an error returned by a reconciler pass
func failuresOf(err error, studentID, step string) []UnitFailure {
	if err == nil {
		return nil
	}
	var partial *PartialFailureError
	if errors.As(err, &partial) {
		return partial.Failures
	}
	return []UnitFailure{{StudentID: studentID, Step: step, Err: err}}
}
