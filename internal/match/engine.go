// Package match scores the lesson catalog against a learner's profile and
// progress along five dimensions and ranks the results.
package match

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/readnest/readnest-server/internal/catalog"
	"github.com/readnest/readnest-server/internal/learner"
)

const defaultLimit = 20

// Options configures one matching call. The zero value gives the default
// behavior: 20 results, completed lessons excluded, no subject filter, no
// minimum score.
type Options struct {
	Limit            int    `json:"limit,omitempty"`
	IncludeCompleted bool   `json:"include_completed,omitempty"`
	Subject          string `json:"subject,omitempty"`
	MinScore         int    `json:"min_score,omitempty"`
}

// Breakdown carries the five dimension sub-scores alongside a result so a
// ranking can be explained.
type Breakdown struct {
	Age        int `json:"age"`
	Interest   int `json:"interest"`
	Style      int `json:"style"`
	Difficulty int `json:"difficulty"`
	Popularity int `json:"popularity"`
}

// ScoredLesson is a lesson plus its composite match score and breakdown.
type ScoredLesson struct {
	catalog.Lesson
	MatchScore int       `json:"match_score"`
	Breakdown  Breakdown `json:"breakdown"`
}

// Engine ranks catalog lessons for a learner. It is stateless: every call
// fetches fresh profile, progress and candidates, scores synchronously,
// and shares nothing between calls.
type Engine struct {
	learners learner.Store
	catalog  catalog.Store
}

// NewEngine creates a matching engine over the given stores.
func NewEngine(learners learner.Store, lessons catalog.Store) *Engine {
	return &Engine{learners: learners, catalog: lessons}
}

// MatchLessons scores every eligible lesson for the learner and returns
// the ranked list. It fails with learner.ErrNotFound when the id does not
// resolve; every other missing signal degrades to a neutral score inside
// the dimension scorers.
//
// Lessons with equal composite scores keep their candidate order, which is
// itself unspecified; callers must not rely on tie order.
func (e *Engine) MatchLessons(ctx context.Context, learnerID string, opts Options) ([]ScoredLesson, error) {
	if opts.Limit <= 0 {
		opts.Limit = defaultLimit
	}

	prof, err := e.learners.GetProfile(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("load profile %s: %w", learnerID, err)
	}
	records, err := e.learners.CompletedProgress(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("load progress %s: %w", learnerID, err)
	}
	summary := learner.BuildSummary(records)

	candidates, err := e.catalog.PublishedLessons(ctx, opts.Subject)
	if err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}

	scored := make([]ScoredLesson, 0, len(candidates))
	for _, lesson := range candidates {
		if !opts.IncludeCompleted && summary.CompletedLessons[lesson.ID] {
			continue
		}
		sl := scoreLesson(lesson, *prof, summary)
		if sl.MatchScore < opts.MinScore {
			continue
		}
		scored = append(scored, sl)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].MatchScore > scored[j].MatchScore
	})
	if len(scored) > opts.Limit {
		scored = scored[:opts.Limit]
	}

	slog.Debug("lessons matched",
		"learner_id", learnerID,
		"candidates", len(candidates),
		"returned", len(scored),
	)
	return scored, nil
}

// scoreLesson computes the five dimension scores and their weighted
// composite for one candidate.
func scoreLesson(lesson catalog.Lesson, prof learner.Profile, sum learner.ProgressSummary) ScoredLesson {
	b := Breakdown{
		Age:        scoreAge(lesson, prof),
		Interest:   scoreInterest(lesson, prof),
		Style:      scoreStyle(lesson, prof),
		Difficulty: scoreDifficulty(lesson, sum),
		Popularity: scorePopularity(lesson),
	}
	composite := weightAge*float64(b.Age) +
		weightInterest*float64(b.Interest) +
		weightStyle*float64(b.Style) +
		weightDifficulty*float64(b.Difficulty) +
		weightPopularity*float64(b.Popularity)

	return ScoredLesson{
		Lesson:     lesson,
		MatchScore: int(math.Round(composite)),
		Breakdown:  b,
	}
}

// QuickRecommendations returns up to limit published lessons adjacent to
// the one currently being viewed: same subject or grade band, compatible
// with the learner's stated age, and carrying the learner's style tag when
// both sides declare one. The selection is an unseeded random sample, so
// repeated calls shuffle the shelf.
//
// This path backs an optional UI affordance: an unknown learner or lesson
// yields an empty list, never an error, and no progress summary is built.
func (e *Engine) QuickRecommendations(ctx context.Context, learnerID, lessonID string, limit int) ([]catalog.Lesson, error) {
	if limit <= 0 {
		return nil, nil
	}

	prof, err := e.learners.GetProfile(ctx, learnerID)
	if err != nil {
		slog.Debug("quick recommendations skipped", "learner_id", learnerID, "error", err)
		return nil, nil
	}
	current, err := e.catalog.GetLesson(ctx, lessonID)
	if err != nil {
		slog.Debug("quick recommendations skipped", "lesson_id", lessonID, "error", err)
		return nil, nil
	}

	candidates, err := e.catalog.PublishedLessons(ctx, "")
	if err != nil {
		slog.Debug("quick recommendations skipped", "error", err)
		return nil, nil
	}

	var pool []catalog.Lesson
	for _, l := range candidates {
		if l.ID == current.ID {
			continue
		}
		if !adjacent(l, *current) {
			continue
		}
		if prof.Age != nil && !ageCompatible(l, *prof.Age) {
			continue
		}
		if prof.Style != nil && len(l.Styles) > 0 && !hasStyle(l, *prof.Style) {
			continue
		}
		pool = append(pool, l)
	}

	rand.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	if len(pool) > limit {
		pool = pool[:limit]
	}
	return pool, nil
}

func adjacent(l, current catalog.Lesson) bool {
	if l.Subject == current.Subject {
		return true
	}
	return l.Grade != nil && current.Grade != nil && *l.Grade == *current.Grade
}

func ageCompatible(l catalog.Lesson, age int) bool {
	if l.AgeMin != nil && age < *l.AgeMin {
		return false
	}
	if l.AgeMax != nil && age > *l.AgeMax {
		return false
	}
	return true
}

func hasStyle(l catalog.Lesson, style catalog.LearningStyle) bool {
	for _, st := range l.Styles {
		if st == style {
			return true
		}
	}
	return false
}
