package service

import (
	"fmt"
	"log"
	"time"

	"literacytrack/internal/models"
	"literacytrack/internal/validation"
)

// CategoryScoreInput is the raw count for one category of an assessment
type CategoryScoreInput struct {
	Category       models.Category `json:"category" validate:"category"`
	TotalQuestions int             `json:"totalQuestions" validate:"gte=1"`
	CorrectAnswers int             `json:"correctAnswers" validate:"gte=0,ltefield=TotalQuestions"`
}

// RecordResultInput is a completed assessment to store
type RecordResultInput struct {
	StudentID    string                `json:"studentId" validate:"required"`
	Kind         models.AssessmentKind `json:"kind" validate:"required,oneof=pre post intervention"`
	ReadingLevel models.ReadingLevel   `json:"readingLevel" validate:"readinglevel"`
	Categories   []CategoryScoreInput  `json:"categories" validate:"required,min=1,dive"`
	TakenAt      time.Time             `json:"takenAt"`
}

// CascadeReport describes what one run of the cascade changed
type CascadeReport struct {
	StudentID              string
	ReadingLevelPropagated bool
	Skipped                bool
	Created                int
	Updated                int
	Populated              int
	Failures               []UnitFailure
}

// AssessmentService stores assessment results and runs the reconciliation
// cascade after each write
type AssessmentService struct {
	resolver    *StudentResolver
	students    StudentStore
	assessments AssessmentStore
	reconciler  *Reconciler
	passScore   float64
}

// NewAssessmentService creates a new assessment service. passScore is the
// category score needed for a category to count as passed.
func NewAssessmentService(resolver *StudentResolver, students StudentStore, assessments AssessmentStore, reconciler *Reconciler, passScore float64) *AssessmentService {
	return &AssessmentService{
		resolver:    resolver,
		students:    students,
		assessments: assessments,
		reconciler:  reconciler,
		passScore:   passScore,
	}
}

// RecordResult scores and stores an assessment, then runs the cascade. Cascade
// failures are reported in the CascadeReport and do not fail the call.
func (s *AssessmentService) RecordResult(input RecordResultInput) (*models.AssessmentResult, *CascadeReport, error) {
	if err := validation.Struct(input); err != nil {
		return nil, nil, err
	}

	seen := make(map[models.Category]bool, len(input.Categories))
	for _, c := range input.Categories {
		if seen[c.Category] {
			return nil, nil, validation.ValidationError{Field: "categories", Message: fmt.Sprintf("duplicate category %s", c.Category)}
		}
		seen[c.Category] = true
	}

	studentID, err := s.resolver.Resolve(input.StudentID)
	if err != nil {
		return nil, nil, err
	}

	level := input.ReadingLevel
	if level == "" {
		level = models.ReadingLevelNotAssessed
	}

	result := &models.AssessmentResult{
		StudentID:    studentID,
		Kind:         input.Kind,
		ReadingLevel: level,
		TakenAt:      input.TakenAt.UTC(),
	}
	for _, c := range input.Categories {
		result.CategoryResults = append(result.CategoryResults, models.CategoryResult{
			Category:       c.Category,
			TotalQuestions: c.TotalQuestions,
			CorrectAnswers: c.CorrectAnswers,
		})
	}
	result.ScoreCategories(s.passScore)

	if err := s.assessments.Create(result); err != nil {
		return nil, nil, persistErr("create assessment result", err)
	}

	report, err := s.RunCascade(result)
	if err != nil {
		log.Printf("Cascade for assessment %s finished with errors: %v", result.ID, err)
	}
	return result, report, nil
}

// RunCascade brings the student's analyses in line with a stored assessment
// result: reading level propagation, then category coverage, derivation from
// the result and refill of any remaining empty fields. Each step is idempotent
// so the cascade may be re-run for the same result.
func (s *AssessmentService) RunCascade(result *models.AssessmentResult) (*CascadeReport, error) {
	student, err := s.resolver.ResolveStudent(result.StudentID)
	if err != nil {
		return nil, err
	}

	report := &CascadeReport{StudentID: student.ID}

	propagated, err := s.propagateReadingLevel(student, result)
	if err != nil {
		log.Printf("Failed to propagate reading level student=%s: %v", student.ID, err)
		report.Failures = append(report.Failures, UnitFailure{StudentID: student.ID, Step: "propagate", Err: err})
	}
	report.ReadingLevelPropagated = propagated

	level := student.CurrentReadingLevel()
	if !level.IsAssessed() {
		report.Skipped = true
		return report, partialFailure(report.Failures)
	}

	_, stats, err := s.reconciler.ensureAll(student.ID, level)
	s.collect(report, stats, err, "ensure")

	_, stats, err = s.reconciler.deriveFrom(student, result)
	s.collect(report, stats, err, "derive")

	_, stats, err = s.reconciler.refill(student)
	s.collect(report, stats, err, "refill")

	log.Printf("Cascade complete student=%s result=%s created=%d updated=%d populated=%d failures=%d",
		student.ID, result.ID, report.Created, report.Updated, report.Populated, len(report.Failures))

	return report, partialFailure(report.Failures)
}

// propagateReadingLevel copies the result's reading level to the student when
// the result is the student's latest and has not been propagated yet. The
// student value is updated in place.
func (s *AssessmentService) propagateReadingLevel(student *models.Student, result *models.AssessmentResult) (bool, error) {
	if result.ReadingLevelPropagated || !result.ReadingLevel.IsAssessed() {
		return false, nil
	}

	latest, err := s.assessments.GetLatestForStudent(student.ID)
	if err != nil {
		return false, persistErr("get latest assessment result", err)
	}
	if latest != nil && latest.ID != result.ID {
		// An older result arriving late must not replace a newer level
		return false, nil
	}

	if student.CurrentReadingLevel() != result.ReadingLevel {
		if err := s.students.UpdateReadingLevel(student.ID, result.ReadingLevel); err != nil {
			return false, persistErr("update student reading level", err)
		}
		level := result.ReadingLevel
		student.ReadingLevel = &level
	}

	if _, err := s.assessments.MarkReadingLevelPropagated(result.ID); err != nil {
		return false, persistErr("mark reading level propagated", err)
	}
	result.ReadingLevelPropagated = true
	return true, nil
}

func (s *AssessmentService) collect(report *CascadeReport, stats ReconcileStats, err error, step string) {
	report.Created += stats.Created
	report.Updated += stats.Updated
	report.Populated += stats.Populated
	report.Failures = append(report.Failures, failuresOf(err, report.StudentID, step)...)
}
