package service

import (
	"errors"
	"log"
	"time"

	"literacytrack/internal/models"
	"literacytrack/internal/repository"
	"literacytrack/internal/validation"
)

// CreatePlanInput describes a new intervention plan
type CreatePlanInput struct {
	StudentID          string                `json:"studentId" validate:"required"`
	Category           models.Category       `json:"category" validate:"category"`
	AnalysisID         string                `json:"analysisId"`
	AssessmentResultID string                `json:"assessmentResultId"`
	PassThreshold      *float64              `json:"passThreshold" validate:"omitempty,gte=0,lte=100"`
	Questions          []models.QuestionSpec `json:"questions" validate:"dive"`
	CreatedBy          string                `json:"createdBy"`
	Draft              bool                  `json:"draft"`
}

// ProgressUpdate is one progress report for a plan
type ProgressUpdate struct {
	CompletedActivities int    `json:"completedActivities" validate:"gte=0"`
	CorrectAnswers      int    `json:"correctAnswers" validate:"gte=0"`
	IncorrectAnswers    int    `json:"incorrectAnswers" validate:"gte=0"`
	Notes               string `json:"notes"`
}

// InterventionService manages intervention plans and their progress
type InterventionService struct {
	resolver         *StudentResolver
	analyses         AnalysisStore
	plans            PlanStore
	progress         ProgressStore
	defaultThreshold float64
}

// NewInterventionService creates a new intervention service
func NewInterventionService(resolver *StudentResolver, analyses AnalysisStore, plans PlanStore, progress ProgressStore, defaultThreshold float64) *InterventionService {
	if defaultThreshold <= 0 {
		defaultThreshold = models.DefaultPassThreshold
	}
	return &InterventionService{
		resolver:         resolver,
		analyses:         analyses,
		plans:            plans,
		progress:         progress,
		defaultThreshold: defaultThreshold,
	}
}

// CreateInterventionPlan creates a plan and its zeroed progress record
func (s *InterventionService) CreateInterventionPlan(input CreatePlanInput) (*models.InterventionPlan, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	studentID, err := s.resolver.Resolve(input.StudentID)
	if err != nil {
		return nil, err
	}

	plan := &models.InterventionPlan{
		StudentID:     studentID,
		Category:      input.Category,
		PassThreshold: s.defaultThreshold,
		Questions:     input.Questions,
		Status:        models.PlanStatusActive,
	}
	if input.PassThreshold != nil {
		plan.PassThreshold = *input.PassThreshold
	}
	if input.Draft {
		plan.Status = models.PlanStatusDraft
	}
	if input.CreatedBy != "" {
		plan.CreatedBy = &input.CreatedBy
	}
	if input.AssessmentResultID != "" {
		plan.AssessmentResultID = &input.AssessmentResultID
	}

	if input.AnalysisID != "" {
		analysis, err := s.analyses.GetByID(input.AnalysisID)
		if err != nil {
			return nil, persistErr("get analysis", err)
		}
		if analysis == nil {
			return nil, ErrAnalysisNotFound
		}
		if analysis.StudentID != studentID || analysis.Category != input.Category {
			return nil, validation.ValidationError{Field: "analysisId", Message: "analysis belongs to a different student or category"}
		}
		plan.AnalysisID = &analysis.ID
	}

	if err := s.plans.Create(plan); err != nil {
		return nil, persistErr("create intervention plan", err)
	}

	if _, err := s.ensureProgress(plan); err != nil {
		// RecordProgress creates the record later if this write was lost
		log.Printf("Warning: plan %s created without progress record: %v", plan.ID, err)
	}

	return plan, nil
}

// ActivatePlan moves a draft plan to active. Active and completed plans are
// returned unchanged.
func (s *InterventionService) ActivatePlan(planID string) (*models.InterventionPlan, error) {
	plan, err := s.getPlan(planID)
	if err != nil {
		return nil, err
	}
	if plan.Status != models.PlanStatusDraft {
		return plan, nil
	}

	if _, err := s.plans.TransitionStatus(plan.ID, models.PlanStatusDraft, models.PlanStatusActive); err != nil {
		return nil, persistErr("activate intervention plan", err)
	}
	return s.getPlan(planID)
}

// RecordProgress applies a progress report to a plan. Total activities always
// come from the plan's current questions. When every activity is complete the
// plan is marked completed in a second write.
func (s *InterventionService) RecordProgress(planID string, update ProgressUpdate) (*models.InterventionProgress, error) {
	if err := validation.Struct(update); err != nil {
		return nil, err
	}

	plan, err := s.getPlan(planID)
	if err != nil {
		return nil, err
	}
	if plan.Status == models.PlanStatusDraft {
		return nil, ErrPlanNotActive
	}

	progress, err := s.ensureProgress(plan)
	if err != nil {
		return nil, err
	}

	total := len(plan.Questions)
	completed := update.CompletedActivities
	if completed > total {
		log.Printf("Warning: plan %s reported %d of %d activities, clamping", plan.ID, completed, total)
		completed = total
	}

	at := time.Now().UTC()
	progress.TotalActivities = total
	progress.CompletedActivities = completed
	progress.CorrectAnswers = update.CorrectAnswers
	progress.IncorrectAnswers = update.IncorrectAnswers
	progress.LastActivityAt = &at
	if update.Notes != "" {
		progress.Notes = update.Notes
	}
	progress.Recompute(plan.PassThreshold)

	if err := s.progress.Update(progress); err != nil {
		return nil, persistErr("update intervention progress", err)
	}

	if progress.IsComplete() && plan.Status != models.PlanStatusCompleted {
		if _, err := s.plans.TransitionStatus(plan.ID, models.PlanStatusActive, models.PlanStatusCompleted); err != nil {
			return progress, persistErr("complete intervention plan", err)
		}
		log.Printf("Intervention plan %s completed", plan.ID)
	}

	return progress, nil
}

// UpdatePlanQuestions replaces the questions of a plan that is not completed.
// The new count is picked up by the next progress report.
func (s *InterventionService) UpdatePlanQuestions(planID string, questions []models.QuestionSpec) (*models.InterventionPlan, error) {
	for i := range questions {
		if err := validation.Struct(questions[i]); err != nil {
			return nil, err
		}
	}

	plan, err := s.getPlan(planID)
	if err != nil {
		return nil, err
	}
	if plan.Status == models.PlanStatusCompleted {
		return nil, ErrPlanNotActive
	}

	updated, err := s.plans.UpdateQuestions(plan.ID, questions)
	if err != nil {
		return nil, persistErr("update plan questions", err)
	}
	if !updated {
		// Completed between the read and the write
		return nil, ErrPlanNotActive
	}
	return s.getPlan(planID)
}

// GetPlanProgress returns the progress of a plan. A plan whose progress record
// has not been written yet reports zero progress.
func (s *InterventionService) GetPlanProgress(planID string) (*models.InterventionProgress, error) {
	plan, err := s.getPlan(planID)
	if err != nil {
		return nil, err
	}

	progress, err := s.progress.GetByPlanID(plan.ID)
	if err != nil {
		return nil, persistErr("get intervention progress", err)
	}
	if progress == nil {
		progress = &models.InterventionProgress{
			PlanID:          plan.ID,
			StudentID:       plan.StudentID,
			TotalActivities: len(plan.Questions),
		}
		progress.Recompute(plan.PassThreshold)
	}
	return progress, nil
}

func (s *InterventionService) getPlan(planID string) (*models.InterventionPlan, error) {
	plan, err := s.plans.GetByID(planID)
	if err != nil {
		return nil, persistErr("get intervention plan", err)
	}
	if plan == nil {
		return nil, ErrPlanNotFound
	}
	return plan, nil
}

// ensureProgress returns the plan's progress record, creating a zeroed one when
// missing so each plan has exactly one
func (s *InterventionService) ensureProgress(plan *models.InterventionPlan) (*models.InterventionProgress, error) {
	progress, err := s.progress.GetByPlanID(plan.ID)
	if err != nil {
		return nil, persistErr("get intervention progress", err)
	}
	if progress != nil {
		return progress, nil
	}

	progress = &models.InterventionProgress{
		PlanID:          plan.ID,
		StudentID:       plan.StudentID,
		TotalActivities: len(plan.Questions),
	}
	progress.Recompute(plan.PassThreshold)

	err = s.progress.Create(progress)
	if err == nil {
		return progress, nil
	}
	if !errors.Is(err, repository.ErrDuplicate) {
		return nil, persistErr("create intervention progress", err)
	}

	existing, err := s.progress.GetByPlanID(plan.ID)
	if err != nil {
		return nil, persistErr("get intervention progress", err)
	}
	if existing == nil {
		return nil, persistErr("get intervention progress", errors.New("progress missing after duplicate insert"))
	}
	return existing, nil
}
