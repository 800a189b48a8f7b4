package speech

import (
	"fmt"
	"sync"
	"time"
)

// BudgetChecker checks and records synthesized characters against a daily
// cap. TTS providers bill per character, and a looping game screen can
// burn through a surprising amount of spend.
type BudgetChecker interface {
	// Check returns true if the learner has budget remaining today.
	Check(learnerID string) (bool, error)
	// Record records synthesized characters for a learner.
	Record(learnerID string, chars int) error
	// Usage returns today's usage and the configured limit for a learner.
	Usage(learnerID string) (used int64, limit int64, err error)
}

// InMemoryBudget is a per-day in-memory character budget tracker.
type InMemoryBudget struct {
	mu    sync.RWMutex
	limit int64
	usage map[string]int64 // learner id -> characters used today
	day   string           // day the usage map belongs to
	now   func() time.Time
}

// NewInMemoryBudget creates a budget tracker with the given daily
// character limit per learner. A zero or negative limit means unlimited.
func NewInMemoryBudget(dailyChars int64) *InMemoryBudget {
	return &InMemoryBudget{
		limit: dailyChars,
		usage: make(map[string]int64),
		now:   time.Now,
	}
}

func (b *InMemoryBudget) Check(learnerID string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.limit <= 0 {
		return true, nil
	}
	b.rolloverLocked()
	return b.usage[learnerID] < b.limit, nil
}

func (b *InMemoryBudget) Record(learnerID string, chars int) error {
	if chars < 0 {
		return fmt.Errorf("chars must be non-negative, got %d", chars)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.rolloverLocked()
	b.usage[learnerID] += int64(chars)
	return nil
}

func (b *InMemoryBudget) Usage(learnerID string) (int64, int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.rolloverLocked()
	return b.usage[learnerID], b.limit, nil
}

// rolloverLocked resets usage when the day changes. Caller holds b.mu.
func (b *InMemoryBudget) rolloverLocked() {
	day := b.now().Format("2006-01-02")
	if day != b.day {
		b.day = day
		b.usage = make(map[string]int64)
	}
}
