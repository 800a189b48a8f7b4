// Package learner holds learner profiles and progress, and derives the
// progress summary the matching engine scores against.
package learner

import (
	"time"

	"github.com/readnest/readnest-server/internal/catalog"
)

// Profile is a learner's static onboarding profile. Every signal except
// the id is optional; absent fields mean "no signal", never an error.
type Profile struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name,omitempty"`
	Age       *int                   `json:"age,omitempty"`
	Grade     *catalog.GradeBand     `json:"grade,omitempty"`
	Style     *catalog.LearningStyle `json:"style,omitempty"`
	Interests []string               `json:"interests,omitempty"`
}

// EffectiveAge resolves the age used for scoring: the stated age when
// present, otherwise the midpoint of the stated grade band's age range.
func (p Profile) EffectiveAge() (float64, bool) {
	if p.Age != nil {
		return float64(*p.Age), true
	}
	if p.Grade != nil {
		return p.Grade.AgeMidpoint()
	}
	return 0, false
}

// ProgressRecord is one completed lesson in a learner's progress log,
// joined with the lesson's subject and difficulty.
type ProgressRecord struct {
	LearnerID   string             `json:"learner_id"`
	LessonID    string             `json:"lesson_id"`
	Subject     string             `json:"subject"`
	Difficulty  catalog.Difficulty `json:"difficulty"`
	Score       *float64           `json:"score,omitempty"`
	CompletedAt time.Time          `json:"completed_at"`
}

// SubjectProgress is a running (count, average score) pair for one subject.
type SubjectProgress struct {
	Count    int     `json:"count"`
	AvgScore float64 `json:"avg_score"`
}

// ProgressSummary is a derived view over the progress log. It is rebuilt
// from the raw log on every scoring call and never persisted or cached, so
// it always agrees with the log at read time.
type ProgressSummary struct {
	CompletedLessons      map[string]bool
	CompletedDifficulties map[catalog.Difficulty]bool
	Subjects              map[string]SubjectProgress
}

// BuildSummary folds the progress log into a summary. The per-subject
// average updates incrementally as (oldAvg*n + score) / (n+1), with a
// missing score accumulated as 0.
func BuildSummary(records []ProgressRecord) ProgressSummary {
	sum := ProgressSummary{
		CompletedLessons:      make(map[string]bool, len(records)),
		CompletedDifficulties: make(map[catalog.Difficulty]bool),
		Subjects:              make(map[string]SubjectProgress),
	}
	for _, rec := range records {
		sum.CompletedLessons[rec.LessonID] = true
		if rec.Difficulty != catalog.DifficultyUnknown {
			sum.CompletedDifficulties[rec.Difficulty] = true
		}

		score := 0.0
		if rec.Score != nil {
			score = *rec.Score
		}
		sp := sum.Subjects[rec.Subject]
		sp.AvgScore = (sp.AvgScore*float64(sp.Count) + score) / float64(sp.Count+1)
		sp.Count++
		sum.Subjects[rec.Subject] = sp
	}
	return sum
}
