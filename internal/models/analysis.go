package models

import (
	"time"

	"gorm.io/datatypes"
)

// PrescriptiveAnalysis holds the strengths, weaknesses and recommendations for
// one student in one category. At most one exists per (StudentID, Category).
type PrescriptiveAnalysis struct {
	ID                 string                      `json:"id"`
	StudentID          string                      `json:"student_id"`
	Category           Category                    `json:"category"`
	ReadingLevel       ReadingLevel                `json:"reading_level"`
	Strengths          datatypes.JSONSlice[string] `json:"strengths"`
	Weaknesses         datatypes.JSONSlice[string] `json:"weaknesses"`
	Recommendations    datatypes.JSONSlice[string] `json:"recommendations"`
	AssessmentResultID *string                     `json:"assessment_result_id,omitempty"`
	CreatedBy          *string                     `json:"created_by,omitempty"`
	CreatedAt          time.Time                   `json:"created_at"`
	UpdatedAt          time.Time                   `json:"updated_at"`
}

// HasEmptyField reports whether any of the three content lists is empty
func (a *PrescriptiveAnalysis) HasEmptyField() bool {
	return len(a.Strengths) == 0 || len(a.Weaknesses) == 0 || len(a.Recommendations) == 0
}

// HasBackReference reports whether the analysis points at an assessment result
func (a *PrescriptiveAnalysis) HasBackReference() bool {
	return a.AssessmentResultID != nil && *a.AssessmentResultID != ""
}

// StringList converts a plain slice to the stored list type, never nil
func StringList(items []string) datatypes.JSONSlice[string] {
	if items == nil {
		return datatypes.JSONSlice[string]{}
	}
	out := make(datatypes.JSONSlice[string], len(items))
	copy(out, items)
	return out
}
