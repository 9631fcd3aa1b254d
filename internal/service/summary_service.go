package service

import (
	"literacytrack/internal/models"
)

// SummaryService builds the per-student progress overview
type SummaryService struct {
	students    StudentStore
	assessments AssessmentStore
	plans       PlanStore
}

// NewSummaryService creates a new summary service
func NewSummaryService(students StudentStore, assessments AssessmentStore, plans PlanStore) *SummaryService {
	return &SummaryService{
		students:    students,
		assessments: assessments,
		plans:       plans,
	}
}

// GetProgressSummary returns one row per student with the latest overall score
// and the number of active intervention plans
func (s *SummaryService) GetProgressSummary() ([]models.StudentProgressSummary, error) {
	students, err := s.students.ListAll()
	if err != nil {
		return nil, persistErr("list students", err)
	}

	summaries := make([]models.StudentProgressSummary, 0, len(students))
	for _, student := range students {
		summary := models.StudentProgressSummary{
			StudentID:    student.ID,
			Name:         student.Name,
			ReadingLevel: student.CurrentReadingLevel(),
		}
		if summary.ReadingLevel == "" {
			summary.ReadingLevel = models.ReadingLevelNotAssessed
		}

		latest, err := s.assessments.GetLatestForStudent(student.ID)
		if err != nil {
			return nil, persistErr("get latest assessment result", err)
		}
		if latest != nil {
			score := latest.OverallScore
			summary.LastScore = &score
			summary.AllCategoriesPassed = latest.AllCategoriesPassed
		}

		active, err := s.plans.CountActiveForStudent(student.ID)
		if err != nil {
			return nil, persistErr("count active plans", err)
		}
		summary.ActiveInterventionCount = active

		summaries = append(summaries, summary)
	}

	return summaries, nil
}
