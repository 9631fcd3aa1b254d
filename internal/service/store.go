package service

import "literacytrack/internal/models"

// StudentStore is the student directory the pipeline reads from
type StudentStore interface {
	GetByID(id string) (*models.Student, error)
	GetByExternalNumber(number string) (*models.Student, error)
	ListAll() ([]models.Student, error)
	ListWithGradeLevel() ([]models.Student, error)
	UpdateReadingLevel(id string, level models.ReadingLevel) error
}

// AssessmentStore persists assessment results
type AssessmentStore interface {
	Create(result *models.AssessmentResult) error
	GetByID(id string) (*models.AssessmentResult, error)
	ListForStudent(studentID string) ([]models.AssessmentResult, error)
	GetLatestForStudent(studentID string) (*models.AssessmentResult, error)
	MarkReadingLevelPropagated(id string) (bool, error)
}

// AnalysisStore persists prescriptive analyses
type AnalysisStore interface {
	Create(analysis *models.PrescriptiveAnalysis) error
	GetByID(id string) (*models.PrescriptiveAnalysis, error)
	GetByStudentAndCategory(studentID string, category models.Category) (*models.PrescriptiveAnalysis, error)
	ListForStudent(studentID string) ([]models.PrescriptiveAnalysis, error)
	ListMissingBackReference() ([]models.PrescriptiveAnalysis, error)
	UpdateReadingLevel(id string, level models.ReadingLevel) (bool, error)
	FillEmptyContent(id string, strengths, weaknesses, recommendations []string) (bool, error)
	Update(analysis *models.PrescriptiveAnalysis) error
	SetAssessmentResultIfMissing(id, resultID string) (bool, error)
}

// PlanStore persists intervention plans
type PlanStore interface {
	Create(plan *models.InterventionPlan) error
	GetByID(id string) (*models.InterventionPlan, error)
	ListForStudent(studentID string) ([]models.InterventionPlan, error)
	CountActiveForStudent(studentID string) (int, error)
	TransitionStatus(id string, from, to models.PlanStatus) (bool, error)
	UpdateQuestions(id string, questions []models.QuestionSpec) (bool, error)
}

// ProgressStore persists intervention progress
type ProgressStore interface {
	Create(progress *models.InterventionProgress) error
	GetByPlanID(planID string) (*models.InterventionProgress, error)
	Update(progress *models.InterventionProgress) error
}
