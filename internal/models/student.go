package models

import "time"

// Student is the directory record the pipeline reads. ID is the canonical
// identifier; ExternalNumber is the enrollment number issued by the school.
type Student struct {
	ID             string
	ExternalNumber string
	Name           string
	GradeLevel     *string
	ReadingLevel   *ReadingLevel
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CurrentReadingLevel returns the student's level or the empty level when unset
func (s *Student) CurrentReadingLevel() ReadingLevel {
	return LevelOf(s.ReadingLevel)
}

// IsAssessed reports whether the student takes part in reconciliation
func (s *Student) IsAssessed() bool {
	return s.CurrentReadingLevel().IsAssessed()
}

// HasGradeLevel reports whether a grade level has been assigned
func (s *Student) HasGradeLevel() bool {
	return s.GradeLevel != nil && *s.GradeLevel != ""
}

// StudentProgressSummary is one row of the progress overview
type StudentProgressSummary struct {
	StudentID               string       `json:"studentId"`
	Name                    string       `json:"name"`
	ReadingLevel            ReadingLevel `json:"readingLevel"`
	LastScore               *float64     `json:"lastScore"`
	AllCategoriesPassed     bool         `json:"allCategoriesPassed"`
	ActiveInterventionCount int          `json:"activeInterventionCount"`
}
