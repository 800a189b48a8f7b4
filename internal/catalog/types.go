// Package catalog defines the lesson content model and its stores.
package catalog

import (
	"fmt"
	"strings"
)

// Difficulty is an ordered lesson difficulty level. The zero value means
// the lesson declares no difficulty.
type Difficulty int

const (
	DifficultyUnknown Difficulty = iota
	DifficultyBeginner
	DifficultyEasy
	DifficultyMedium
	DifficultyHard
	DifficultyAdvanced
)

// difficultyNames is indexed by position in the total order.
var difficultyNames = []string{"beginner", "easy", "medium", "hard", "advanced"}

// MaxDifficultyIndex is the index of the hardest level in the total order.
const MaxDifficultyIndex = 4

func (d Difficulty) String() string {
	if d.Index() < 0 {
		return "unknown"
	}
	return difficultyNames[d.Index()]
}

// Index returns the position of d in the fixed total order
// beginner < easy < medium < hard < advanced, or -1 for the zero value.
func (d Difficulty) Index() int {
	if d < DifficultyBeginner || d > DifficultyAdvanced {
		return -1
	}
	return int(d) - 1
}

// ParseDifficulty maps a stored difficulty label to its level.
// Unrecognized or empty labels map to DifficultyUnknown.
func ParseDifficulty(s string) Difficulty {
	for i, name := range difficultyNames {
		if strings.EqualFold(s, name) {
			return Difficulty(i + 1)
		}
	}
	return DifficultyUnknown
}

// LearningStyle is one of the product's four onboarding learning-style
// choices.
type LearningStyle string

const (
	StyleVisual      LearningStyle = "visual"
	StyleAuditory    LearningStyle = "auditory"
	StyleKinesthetic LearningStyle = "kinesthetic"
	StyleReading     LearningStyle = "reading"
)

// ParseLearningStyle validates a stored style label.
func ParseLearningStyle(s string) (LearningStyle, error) {
	switch style := LearningStyle(strings.ToLower(strings.TrimSpace(s))); style {
	case StyleVisual, StyleAuditory, StyleKinesthetic, StyleReading:
		return style, nil
	default:
		return "", fmt.Errorf("unknown learning style: %q", s)
	}
}

// GradeBand is an ordered grade level, each mapped to an age range.
type GradeBand string

const (
	GradePreschool    GradeBand = "preschool"
	GradeKindergarten GradeBand = "kindergarten"
	GradeFirst        GradeBand = "grade1"
	GradeSecond       GradeBand = "grade2"
	GradeThird        GradeBand = "grade3"
	GradeFourth       GradeBand = "grade4"
	GradeFifth        GradeBand = "grade5"
)

type ageRange struct {
	min, max int
}

var gradeAges = map[GradeBand]ageRange{
	GradePreschool:    {3, 5},
	GradeKindergarten: {5, 6},
	GradeFirst:        {6, 7},
	GradeSecond:       {7, 8},
	GradeThird:        {8, 9},
	GradeFourth:       {9, 10},
	GradeFifth:        {10, 11},
}

// ParseGradeBand validates a stored grade label.
func ParseGradeBand(s string) (GradeBand, error) {
	g := GradeBand(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := gradeAges[g]; !ok {
		return "", fmt.Errorf("unknown grade band: %q", s)
	}
	return g, nil
}

// AgeMidpoint returns the midpoint of the band's mapped age range, used as
// the effective age when a learner states a grade but no age.
func (g GradeBand) AgeMidpoint() (float64, bool) {
	r, ok := gradeAges[g]
	if !ok {
		return 0, false
	}
	return float64(r.min+r.max) / 2, true
}

// Lesson is one catalog entry. AvgRating, RatingCount and CompletionCount
// are aggregates across all learners, filled in by the store.
type Lesson struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	Subject    string          `json:"subject"`
	Difficulty Difficulty      `json:"difficulty"`
	AgeMin     *int            `json:"age_min,omitempty"`
	AgeMax     *int            `json:"age_max,omitempty"`
	Grade      *GradeBand      `json:"grade,omitempty"`
	Styles     []LearningStyle `json:"styles,omitempty"` // first entry is the primary style
	Tags       []string        `json:"tags,omitempty"`
	Topics     []string        `json:"topics,omitempty"`
	Published  bool            `json:"published"`

	AvgRating       float64 `json:"avg_rating"`
	RatingCount     int     `json:"rating_count"`
	CompletionCount int     `json:"completion_count"`
}
