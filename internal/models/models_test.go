package models

import (
	"testing"
)

func TestReadingLevelIsAssessed(t *testing.T) {
	tests := []struct {
		level ReadingLevel
		want  bool
	}{
		{level: "", want: false},
		{level: ReadingLevelNotAssessed, want: false},
		{level: ReadingLevelLowEmerging, want: true},
		{level: ReadingLevelAtGradeLevel, want: true},
	}

	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			if got := tt.level.IsAssessed(); got != tt.want {
				t.Errorf("IsAssessed(%q) = %v, want %v", tt.level, got, tt.want)
			}
		})
	}
}

func TestStudentIsAssessedWithNilLevel(t *testing.T) {
	student := Student{ID: "s1", Name: "Ana"}
	if student.IsAssessed() {
		t.Error("student with nil reading level should not be assessed")
	}

	level := ReadingLevelDeveloping
	student.ReadingLevel = &level
	if !student.IsAssessed() {
		t.Error("student with Developing level should be assessed")
	}
}

func TestCategoryIsValid(t *testing.T) {
	for _, c := range RequiredCategories() {
		if !c.IsValid() {
			t.Errorf("required category %q reported invalid", c)
		}
	}

	// Matching is exact, not fuzzy
	for _, c := range []Category{"decoding", "Reading comprehension", "Vocabulary", ""} {
		if c.IsValid() {
			t.Errorf("category %q should be invalid", c)
		}
	}
}

func TestInterventionProgressRecompute(t *testing.T) {
	tests := []struct {
		name            string
		progress        InterventionProgress
		threshold       float64
		wantComplete    float64
		wantCorrect     float64
		wantPassed      bool
		wantIsCompleted bool
	}{
		{
			name:         "partial progress at threshold",
			progress:     InterventionProgress{CompletedActivities: 3, TotalActivities: 4, CorrectAnswers: 6, IncorrectAnswers: 2},
			threshold:    75,
			wantComplete: 75,
			wantCorrect:  75,
			wantPassed:   true,
		},
		{
			name:            "all activities done",
			progress:        InterventionProgress{CompletedActivities: 4, TotalActivities: 4, CorrectAnswers: 2, IncorrectAnswers: 2},
			threshold:       75,
			wantComplete:    100,
			wantCorrect:     50,
			wantPassed:      false,
			wantIsCompleted: true,
		},
		{
			name:         "no activities and no answers",
			progress:     InterventionProgress{},
			threshold:    75,
			wantComplete: 0,
			wantCorrect:  0,
			wantPassed:   false,
		},
		{
			name: "stale derived fields are overwritten",
			progress: InterventionProgress{
				CompletedActivities: 1, TotalActivities: 2, CorrectAnswers: 0, IncorrectAnswers: 1,
				PercentComplete: 100, PercentCorrect: 100, PassedThreshold: true,
			},
			threshold:    75,
			wantComplete: 50,
			wantCorrect:  0,
			wantPassed:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.progress
			p.Recompute(tt.threshold)
			if p.PercentComplete != tt.wantComplete {
				t.Errorf("PercentComplete = %v, want %v", p.PercentComplete, tt.wantComplete)
			}
			if p.PercentCorrect != tt.wantCorrect {
				t.Errorf("PercentCorrect = %v, want %v", p.PercentCorrect, tt.wantCorrect)
			}
			if p.PassedThreshold != tt.wantPassed {
				t.Errorf("PassedThreshold = %v, want %v", p.PassedThreshold, tt.wantPassed)
			}
			if p.IsComplete() != tt.wantIsCompleted {
				t.Errorf("IsComplete() = %v, want %v", p.IsComplete(), tt.wantIsCompleted)
			}
		})
	}
}

func TestAssessmentResultScoreCategories(t *testing.T) {
	result := AssessmentResult{
		CategoryResults: []CategoryResult{
			{Category: CategoryDecoding, TotalQuestions: 4, CorrectAnswers: 3},
			{Category: CategoryWordRecognition, TotalQuestions: 6, CorrectAnswers: 2},
		},
	}

	result.ScoreCategories(75)

	if got := result.CategoryResults[0].Score; got != 75 {
		t.Errorf("Decoding score = %v, want 75", got)
	}
	if !result.CategoryResults[0].Passed {
		t.Error("Decoding should pass at 75")
	}
	if got := result.CategoryResults[1].Score; got != 33.33 {
		t.Errorf("Word Recognition score = %v, want 33.33", got)
	}
	if result.CategoryResults[1].Passed {
		t.Error("Word Recognition should not pass")
	}
	if result.OverallScore != 50 {
		t.Errorf("OverallScore = %v, want 50", result.OverallScore)
	}
	if result.AllCategoriesPassed {
		t.Error("AllCategoriesPassed should be false")
	}

	score, ok := result.CategoryScore(CategoryWordRecognition)
	if !ok || score != 33.33 {
		t.Errorf("CategoryScore() = %v, %v", score, ok)
	}
	if result.HasCategory(CategoryAlphabetKnowledge) {
		t.Error("HasCategory(Alphabet Knowledge) should be false")
	}
}

func TestAnalysisHasEmptyField(t *testing.T) {
	analysis := PrescriptiveAnalysis{
		Strengths:       StringList([]string{"Knows letter names"}),
		Weaknesses:      StringList(nil),
		Recommendations: StringList([]string{"Practice daily"}),
	}
	if !analysis.HasEmptyField() {
		t.Error("expected empty weaknesses to be detected")
	}

	analysis.Weaknesses = StringList([]string{"Letter sounds"})
	if analysis.HasEmptyField() {
		t.Error("no field should be empty")
	}
}
