package models

// Category is one of the fixed reading skill categories. Values are compared by
// exact string match across every collection.
type Category string

const (
	CategoryAlphabetKnowledge     Category = "Alphabet Knowledge"
	CategoryPhonologicalAwareness Category = "Phonological Awareness"
	CategoryWordRecognition       Category = "Word Recognition"
	CategoryDecoding              Category = "Decoding"
	CategoryReadingComprehension  Category = "Reading Comprehension"
)

// RequiredCategories returns the closed category set in its canonical order
func RequiredCategories() []Category {
	return []Category{
		CategoryAlphabetKnowledge,
		CategoryPhonologicalAwareness,
		CategoryWordRecognition,
		CategoryDecoding,
		CategoryReadingComprehension,
	}
}

// IsValid reports whether c belongs to the closed category set
func (c Category) IsValid() bool {
	switch c {
	case CategoryAlphabetKnowledge,
		CategoryPhonologicalAwareness,
		CategoryWordRecognition,
		CategoryDecoding,
		CategoryReadingComprehension:
		return true
	}
	return false
}

// ReadingLevel is a student's overall reading placement
type ReadingLevel string

const (
	ReadingLevelLowEmerging   ReadingLevel = "Low Emerging"
	ReadingLevelHighEmerging  ReadingLevel = "High Emerging"
	ReadingLevelDeveloping    ReadingLevel = "Developing"
	ReadingLevelTransitioning ReadingLevel = "Transitioning"
	ReadingLevelAtGradeLevel  ReadingLevel = "At Grade Level"
	ReadingLevelNotAssessed   ReadingLevel = "Not Assessed"
)

// IsAssessed is false for the empty level and for "Not Assessed"
func (l ReadingLevel) IsAssessed() bool {
	return l != "" && l != ReadingLevelNotAssessed
}

// LevelOf dereferences an optional reading level, mapping nil to the empty level
func LevelOf(level *ReadingLevel) ReadingLevel {
	if level == nil {
		return ""
	}
	return *level
}
