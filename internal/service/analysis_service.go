package service

import (
	"errors"
	"sort"

	"literacytrack/internal/models"
	"literacytrack/internal/repository"
	"literacytrack/internal/validation"
)

// AnalysisInput is a teacher's edit of one analysis. A nil list leaves the
// stored field as it is.
type AnalysisInput struct {
	StudentID          string          `json:"studentId" validate:"required"`
	Category           models.Category `json:"category" validate:"category"`
	Strengths          []string        `json:"strengths" validate:"omitempty,dive,required"`
	Weaknesses         []string        `json:"weaknesses" validate:"omitempty,dive,required"`
	Recommendations    []string        `json:"recommendations" validate:"omitempty,dive,required"`
	AssessmentResultID string          `json:"assessmentResultId"`
	CreatedBy          string          `json:"createdBy"`
}

// AnalysisService reads analyses and applies explicit edits to them
type AnalysisService struct {
	resolver *StudentResolver
	analyses AnalysisStore
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(resolver *StudentResolver, analyses AnalysisStore) *AnalysisService {
	return &AnalysisService{resolver: resolver, analyses: analyses}
}

// GetStudentAnalyses returns the student's analyses sorted by category name
func (s *AnalysisService) GetStudentAnalyses(rawStudentID string) ([]models.PrescriptiveAnalysis, error) {
	studentID, err := s.resolver.Resolve(rawStudentID)
	if err != nil {
		return nil, err
	}

	analyses, err := s.analyses.ListForStudent(studentID)
	if err != nil {
		return nil, persistErr("list analyses", err)
	}

	sort.SliceStable(analyses, func(i, j int) bool {
		return analyses[i].Category < analyses[j].Category
	})
	return analyses, nil
}

// CreateOrUpdateAnalysis stores a teacher's edit. Unlike the reconciler this
// overwrites the fields it is given.
func (s *AnalysisService) CreateOrUpdateAnalysis(input AnalysisInput) (*models.PrescriptiveAnalysis, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	student, err := s.resolver.ResolveStudent(input.StudentID)
	if err != nil {
		return nil, err
	}
	if !student.IsAssessed() {
		return nil, ErrNotAssessed
	}

	existing, err := s.analyses.GetByStudentAndCategory(student.ID, input.Category)
	if err != nil {
		return nil, persistErr("get analysis", err)
	}

	if existing == nil {
		analysis := &models.PrescriptiveAnalysis{
			StudentID:       student.ID,
			Category:        input.Category,
			ReadingLevel:    student.CurrentReadingLevel(),
			Strengths:       models.StringList(input.Strengths),
			Weaknesses:      models.StringList(input.Weaknesses),
			Recommendations: models.StringList(input.Recommendations),
		}
		applyReferences(analysis, input)

		err := s.analyses.Create(analysis)
		if err == nil {
			return analysis, nil
		}
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, persistErr("create analysis", err)
		}

		existing, err = s.analyses.GetByStudentAndCategory(student.ID, input.Category)
		if err != nil {
			return nil, persistErr("get analysis", err)
		}
		if existing == nil {
			return nil, ErrAnalysisNotFound
		}
	}

	existing.ReadingLevel = student.CurrentReadingLevel()
	if input.Strengths != nil {
		existing.Strengths = models.StringList(input.Strengths)
	}
	if input.Weaknesses != nil {
		existing.Weaknesses = models.StringList(input.Weaknesses)
	}
	if input.Recommendations != nil {
		existing.Recommendations = models.StringList(input.Recommendations)
	}
	applyReferences(existing, input)

	if err := s.analyses.Update(existing); err != nil {
		return nil, persistErr("update analysis", err)
	}
	return existing, nil
}

func applyReferences(analysis *models.PrescriptiveAnalysis, input AnalysisInput) {
	if input.AssessmentResultID != "" {
		id := input.AssessmentResultID
		analysis.AssessmentResultID = &id
	}
	if input.CreatedBy != "" {
		by := input.CreatedBy
		analysis.CreatedBy = &by
	}
}
