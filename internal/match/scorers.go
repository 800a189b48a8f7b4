package match

import (
	"math"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/readnest/readnest-server/internal/catalog"
	"github.com/readnest/readnest-server/internal/learner"
)

// Composite weights. They must sum to exactly 1.00.
const (
	weightAge        = 0.30
	weightInterest   = 0.25
	weightStyle      = 0.20
	weightDifficulty = 0.15
	weightPopularity = 0.10
)

// Neutral defaults for absent signals. scoreNeutral neither helps nor
// hurts; the others mark the slight preferences the product wants when a
// lesson carries no metadata for a dimension.
const (
	scoreNeutral        = 50
	scoreNoAgeBounds    = 60 // no stated restriction: assumed broadly suitable
	scoreNoInterestMeta = 40 // zero interest metadata: slightly disfavored
)

// scoreAge rates how well the lesson's age range fits the learner's
// effective age (stated age, else grade-band midpoint). Inside the range
// the score runs from 100 at the center down to 80 at either edge; outside
// it drops 15 points per year past the nearest bound.
func scoreAge(lesson catalog.Lesson, prof learner.Profile) int {
	age, ok := prof.EffectiveAge()
	if !ok {
		return scoreNeutral
	}
	if lesson.AgeMin == nil && lesson.AgeMax == nil {
		return scoreNoAgeBounds
	}

	lo, hi := 0.0, 100.0
	if lesson.AgeMin != nil {
		lo = float64(*lesson.AgeMin)
	}
	if lesson.AgeMax != nil {
		hi = float64(*lesson.AgeMax)
	}

	if age >= lo && age <= hi {
		if hi == lo {
			return 100
		}
		center := (lo + hi) / 2
		half := (hi - lo) / 2
		return roundScore(100 - 20*math.Abs(age-center)/half)
	}

	dist := lo - age
	if age > hi {
		dist = age - hi
	}
	return roundScore(math.Max(0, 50-15*dist))
}

// scoreInterest rates the overlap between the learner's interest keywords
// and the lesson's interest tags, topic tags and subject. The matched
// fraction maps linearly onto [40, 100].
func scoreInterest(lesson catalog.Lesson, prof learner.Profile) int {
	if len(prof.Interests) == 0 {
		return scoreNeutral
	}

	var keywords []string
	for _, t := range lesson.Tags {
		keywords = append(keywords, foldKeyword(t))
	}
	for _, t := range lesson.Topics {
		keywords = append(keywords, foldKeyword(t))
	}
	if subject := foldKeyword(lesson.Subject); subject != "" {
		keywords = append(keywords, subject)
	}
	if len(keywords) == 0 {
		return scoreNoInterestMeta
	}

	matched := 0
	for _, interest := range prof.Interests {
		folded := foldKeyword(interest)
		if folded == "" {
			continue
		}
		for _, kw := range keywords {
			if kw == folded || strings.Contains(kw, folded) || strings.Contains(folded, kw) {
				matched++
				break
			}
		}
	}

	fraction := float64(matched) / float64(len(prof.Interests))
	return roundScore(40 + fraction*60)
}

// scoreStyle rates the lesson against the learner's stated learning-style
// preference. The first style tag is the lesson's primary style.
func scoreStyle(lesson catalog.Lesson, prof learner.Profile) int {
	if prof.Style == nil || len(lesson.Styles) == 0 {
		return scoreNeutral
	}
	if lesson.Styles[0] == *prof.Style {
		return 100
	}
	for _, st := range lesson.Styles[1:] {
		if st == *prof.Style {
			return 85
		}
	}
	return 30
}

// scoreDifficulty rates the lesson's difficulty against the learner's ideal
// next level: one step past their highest completed difficulty, advanced a
// further step when their running average in this lesson's subject is 80 or
// better. Easier-than-ideal lessons are penalized gently (review is fine);
// harder ones steeply.
func scoreDifficulty(lesson catalog.Lesson, sum learner.ProgressSummary) int {
	idx := lesson.Difficulty.Index()
	if idx < 0 {
		return scoreNeutral
	}

	mastery := -1
	for d := range sum.CompletedDifficulties {
		if d.Index() > mastery {
			mastery = d.Index()
		}
	}
	if sp, ok := sum.Subjects[lesson.Subject]; ok && sp.AvgScore >= 80 && mastery < catalog.MaxDifficultyIndex {
		mastery++
	}

	ideal := mastery + 1
	if ideal > catalog.MaxDifficultyIndex {
		ideal = catalog.MaxDifficultyIndex
	}

	switch dist := idx - ideal; {
	case dist == 0:
		return 100
	case dist < 0:
		return max(50, 100+20*dist)
	default:
		return max(20, 100-30*dist)
	}
}

// scorePopularity blends crowd signals: up to 30 points from the average
// rating and up to 20 from completions on a log curve, over a base of 50.
func scorePopularity(lesson catalog.Lesson) int {
	score := 50.0
	score += lesson.AvgRating / 5 * 30
	score += math.Min(20, math.Log10(float64(lesson.CompletionCount)+1)*10)
	return roundScore(score)
}

// foldKeyword normalizes child-entered free text for matching: unicode
// normalization so composed and decomposed accents compare equal, then
// case folding.
func foldKeyword(s string) string {
	return strings.ToLower(norm.NFC.String(strings.TrimSpace(s)))
}

// roundScore rounds and clamps to the [0, 100] score range.
func roundScore(v float64) int {
	n := int(math.Round(v))
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}
