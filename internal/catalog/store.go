package catalog

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned when a lesson id does not exist.
var ErrNotFound = errors.New("lesson not found")

// Store provides read and upsert access to the lesson catalog.
// PublishedLessons never filters per learner; completed-lesson exclusion
// belongs to the matching engine so catalog reads stay shareable.
type Store interface {
	// PublishedLessons returns all published lessons, optionally filtered
	// by subject, each enriched with rating and completion aggregates.
	PublishedLessons(ctx context.Context, subject string) ([]Lesson, error)
	GetLesson(ctx context.Context, id string) (*Lesson, error)
	UpsertLesson(ctx context.Context, lesson Lesson) error
}

// MemoryStore is an in-memory Store for tests and dev mode.
type MemoryStore struct {
	lessons map[string]Lesson
	order   []string // insertion order, kept so reads are deterministic
	mu      sync.RWMutex
}

// NewMemoryStore creates an empty in-memory catalog.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{lessons: make(map[string]Lesson)}
}

func (s *MemoryStore) PublishedLessons(_ context.Context, subject string) ([]Lesson, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Lesson
	for _, id := range s.order {
		l := s.lessons[id]
		if !l.Published {
			continue
		}
		if subject != "" && l.Subject != subject {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (s *MemoryStore) GetLesson(_ context.Context, id string) (*Lesson, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.lessons[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &l, nil
}

func (s *MemoryStore) UpsertLesson(_ context.Context, lesson Lesson) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lessons[lesson.ID]; !ok {
		s.order = append(s.order, lesson.ID)
	}
	s.lessons[lesson.ID] = lesson
	return nil
}
