package models

import (
	"math"
	"time"

	"gorm.io/datatypes"
)

// AssessmentKind identifies when in the remediation cycle an assessment was taken
type AssessmentKind string

const (
	AssessmentPre          AssessmentKind = "pre"
	AssessmentPost         AssessmentKind = "post"
	AssessmentIntervention AssessmentKind = "intervention"
)

// IsValid reports whether k is a known assessment kind
func (k AssessmentKind) IsValid() bool {
	return k == AssessmentPre || k == AssessmentPost || k == AssessmentIntervention
}

// CategoryResult is the score for one category within an assessment
type CategoryResult struct {
	Category       Category `json:"category"`
	TotalQuestions int      `json:"totalQuestions"`
	CorrectAnswers int      `json:"correctAnswers"`
	Score          float64  `json:"score"`
	Passed         bool     `json:"passed"`
}

// AssessmentResult is one assessment event for a student. It is immutable once
// stored except for ReadingLevelPropagated.
type AssessmentResult struct {
	ID                     string                              `json:"id"`
	StudentID              string                              `json:"student_id"`
	Kind                   AssessmentKind                      `json:"kind"`
	ReadingLevel           ReadingLevel                        `json:"reading_level"`
	CategoryResults        datatypes.JSONSlice[CategoryResult] `json:"category_results"`
	OverallScore           float64                             `json:"overall_score"`
	AllCategoriesPassed    bool                                `json:"all_categories_passed"`
	ReadingLevelPropagated bool                                `json:"reading_level_propagated"`
	TakenAt                time.Time                           `json:"taken_at"`
	CreatedAt              time.Time                           `json:"created_at"`
}

// CategoryScore returns the score recorded for category, if the assessment covered it
func (r *AssessmentResult) CategoryScore(category Category) (float64, bool) {
	for _, cr := range r.CategoryResults {
		if cr.Category == category {
			return cr.Score, true
		}
	}
	return 0, false
}

// HasCategory reports whether the assessment covered category
func (r *AssessmentResult) HasCategory(category Category) bool {
	_, ok := r.CategoryScore(category)
	return ok
}

// ScoreCategories fills Score and Passed for every category result and derives
// the overall score and the all-passed flag from the raw counts.
func (r *AssessmentResult) ScoreCategories(passScore float64) {
	totalQuestions, totalCorrect := 0, 0
	allPassed := len(r.CategoryResults) > 0

	for i := range r.CategoryResults {
		cr := &r.CategoryResults[i]
		cr.Score = percentage(cr.CorrectAnswers, cr.TotalQuestions)
		cr.Passed = cr.Score >= passScore
		if !cr.Passed {
			allPassed = false
		}
		totalQuestions += cr.TotalQuestions
		totalCorrect += cr.CorrectAnswers
	}

	r.OverallScore = percentage(totalCorrect, totalQuestions)
	r.AllCategoriesPassed = allPassed
}

// percentage returns part/whole*100 rounded to two decimals, or 0 for an empty whole
func percentage(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	return math.Round(float64(part)/float64(whole)*10000) / 100
}
