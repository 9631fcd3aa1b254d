package models

import (
	"time"

	"gorm.io/datatypes"
)

// DefaultPassThreshold is the percent-correct a plan needs when none is given
const DefaultPassThreshold = 75.0

// PlanStatus is the lifecycle state of an intervention plan
type PlanStatus string

const (
	PlanStatusDraft     PlanStatus = "draft"
	PlanStatusActive    PlanStatus = "active"
	PlanStatusCompleted PlanStatus = "completed"
)

// QuestionSpec describes one activity in an intervention plan
type QuestionSpec struct {
	Prompt       string   `json:"prompt" validate:"required"`
	Source       string   `json:"source,omitempty"`
	QuestionType string   `json:"questionType" validate:"required,oneof=multiple_choice true_false short_answer oral_reading"`
	Choices      []string `json:"choices,omitempty"`
	Answer       string   `json:"answer,omitempty"`
}

// InterventionPlan is a remediation plan for one student and category
type InterventionPlan struct {
	ID                 string                            `json:"id"`
	StudentID          string                            `json:"student_id"`
	AnalysisID         *string                           `json:"analysis_id,omitempty"`
	AssessmentResultID *string                           `json:"assessment_result_id,omitempty"`
	Category           Category                          `json:"category"`
	PassThreshold      float64                           `json:"pass_threshold"`
	Questions          datatypes.JSONSlice[QuestionSpec] `json:"questions"`
	Status             PlanStatus                        `json:"status"`
	CreatedBy          *string                           `json:"created_by,omitempty"`
	CreatedAt          time.Time                         `json:"created_at"`
	UpdatedAt          time.Time                         `json:"updated_at"`
}

// InterventionProgress tracks completion of a plan. The percentages and
// PassedThreshold are derived from the counters by Recompute.
type InterventionProgress struct {
	ID                  string     `json:"id"`
	PlanID              string     `json:"plan_id"`
	StudentID           string     `json:"student_id"`
	CompletedActivities int        `json:"completed_activities"`
	TotalActivities     int        `json:"total_activities"`
	PercentComplete     float64    `json:"percent_complete"`
	CorrectAnswers      int        `json:"correct_answers"`
	IncorrectAnswers    int        `json:"incorrect_answers"`
	PercentCorrect      float64    `json:"percent_correct"`
	PassedThreshold     bool       `json:"passed_threshold"`
	LastActivityAt      *time.Time `json:"last_activity_at,omitempty"`
	Notes               string     `json:"notes"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// Recompute derives PercentComplete, PercentCorrect and PassedThreshold from
// the counters. It is the only place those fields are written.
func (p *InterventionProgress) Recompute(passThreshold float64) {
	p.PercentComplete = 0
	if p.TotalActivities > 0 {
		p.PercentComplete = float64(p.CompletedActivities) / float64(p.TotalActivities) * 100
	}

	answered := p.CorrectAnswers + p.IncorrectAnswers
	p.PercentCorrect = 0
	if answered > 0 {
		p.PercentCorrect = float64(p.CorrectAnswers) / float64(answered) * 100
	}

	p.PassedThreshold = p.PercentCorrect >= passThreshold
}

// IsComplete reports whether every activity of the plan has been completed
func (p *InterventionProgress) IsComplete() bool {
	return p.PercentComplete >= 100
}
