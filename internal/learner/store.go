package learner

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotFound is returned when a learner id does not resolve to a profile.
// It is the only hard failure in the matching pipeline.
var ErrNotFound = errors.New("learner not found")

// Store persists learner profiles and the completed-lesson progress log.
type Store interface {
	// GetProfile returns the learner's profile, or ErrNotFound.
	GetProfile(ctx context.Context, id string) (*Profile, error)
	UpsertProfile(ctx context.Context, profile Profile) error
	// CompletedProgress returns the learner's completed progress records,
	// each joined with the lesson's subject and difficulty.
	CompletedProgress(ctx context.Context, learnerID string) ([]ProgressRecord, error)
	RecordProgress(ctx context.Context, rec ProgressRecord) error
}

// MemoryStore is an in-memory Store for tests and dev mode.
type MemoryStore struct {
	profiles map[string]Profile
	progress map[string][]ProgressRecord
	mu       sync.RWMutex
}

// NewMemoryStore creates an empty in-memory learner store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles: make(map[string]Profile),
		progress: make(map[string][]ProgressRecord),
	}
}

func (s *MemoryStore) GetProfile(_ context.Context, id string) (*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *MemoryStore) UpsertProfile(_ context.Context, profile Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[profile.ID] = profile
	return nil
}

func (s *MemoryStore) CompletedProgress(_ context.Context, learnerID string) ([]ProgressRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := s.progress[learnerID]
	out := make([]ProgressRecord, len(records))
	copy(out, records)
	return out, nil
}

func (s *MemoryStore) RecordProgress(_ context.Context, rec ProgressRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.CompletedAt.IsZero() {
		rec.CompletedAt = time.Now()
	}
	s.progress[rec.LearnerID] = append(s.progress[rec.LearnerID], rec)
	return nil
}
