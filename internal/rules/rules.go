// Package rules maps a category score to fixed prescriptive content.
// Everything here is a pure lookup; the same input always yields the same content.
package rules

import "literacytrack/internal/models"

// NoScore asks DeriveContent to use the reading-level surrogate score
const NoScore = -1.0

const (
	masteryScore = 90
	midHighFloor = 50
	midLowFloor  = 25
)

// Band is a score range that selects fixed content
type Band string

const (
	BandLow     Band = "low"      // [0,25)
	BandMidLow  Band = "mid-low"  // [25,50)
	BandMidHigh Band = "mid-high" // [50,90)
	BandMastery Band = "mastery"  // [90,100]
)

// Content is the derived strengths, weaknesses and recommendations
type Content struct {
	Strengths       []string
	Weaknesses      []string
	Recommendations []string
}

// BandFor returns the band a score falls in
func BandFor(score float64) Band {
	switch {
	case score >= masteryScore:
		return BandMastery
	case score >= midHighFloor:
		return BandMidHigh
	case score >= midLowFloor:
		return BandMidLow
	default:
		return BandLow
	}
}

// SurrogateScore stands in for a category score when only the reading level is known
func SurrogateScore(level models.ReadingLevel) float64 {
	switch level {
	case models.ReadingLevelAtGradeLevel:
		return 85
	case models.ReadingLevelTransitioning:
		return 70
	case models.ReadingLevelDeveloping:
		return 45
	case models.ReadingLevelHighEmerging:
		return 25
	default:
		return 15
	}
}

// DeriveContent returns the fixed content for category at score. A negative
// score (NoScore) is replaced by the surrogate score for level.
func DeriveContent(category models.Category, score float64, level models.ReadingLevel) Content {
	if score < 0 {
		score = SurrogateScore(level)
	}

	table, known := categoryContent[category]
	band := BandFor(score)

	if band == BandMastery {
		if !known {
			return defaultMastery.clone()
		}
		return table.mastery.clone()
	}

	if !known {
		return genericContent.clone()
	}

	switch band {
	case BandMidHigh:
		return table.midHigh.clone()
	case BandMidLow:
		return table.midLow.clone()
	default:
		return table.low.clone()
	}
}

// IsEmpty reports whether no field carries any content
func (c Content) IsEmpty() bool {
	return len(c.Strengths) == 0 && len(c.Weaknesses) == 0 && len(c.Recommendations) == 0
}

// clone copies the lists so callers cannot mutate the decision table
func (c Content) clone() Content {
	return Content{
		Strengths:       cloneList(c.Strengths),
		Weaknesses:      cloneList(c.Weaknesses),
		Recommendations: cloneList(c.Recommendations),
	}
}

func cloneList(items []string) []string {
	out := make([]string, len(items))
	copy(out, items)
	return out
}
