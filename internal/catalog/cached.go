package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultCatalogTTL = 5 * time.Minute

// CachedStore is a read-through cache over a catalog Store. Only
// PublishedLessons is cached: it is the one learner-independent read, so
// one entry serves every learner. Lookups and upserts pass through, and an
// upsert drops the cached entries so the next read sees the change.
type CachedStore struct {
	inner  Store
	client *redis.Client
	ttl    time.Duration
}

// NewCachedStore wraps a Store with a Redis cache. A zero ttl uses the
// default of five minutes.
func NewCachedStore(inner Store, client *redis.Client, ttl time.Duration) *CachedStore {
	if ttl <= 0 {
		ttl = defaultCatalogTTL
	}
	return &CachedStore{inner: inner, client: client, ttl: ttl}
}

func catalogKey(subject string) string {
	if subject == "" {
		return "catalog:published:all"
	}
	return "catalog:published:subject:" + subject
}

func (s *CachedStore) PublishedLessons(ctx context.Context, subject string) ([]Lesson, error) {
	key := catalogKey(subject)

	data, err := s.client.Get(ctx, key).Bytes()
	if err == nil {
		var lessons []Lesson
		if err := json.Unmarshal(data, &lessons); err == nil {
			return lessons, nil
		}
		// Corrupt entry: fall through to the source and overwrite it.
		slog.Warn("dropping unreadable catalog cache entry", "key", key)
	} else if err != redis.Nil {
		slog.Warn("catalog cache read failed", "key", key, "error", err)
	}

	lessons, err := s.inner.PublishedLessons(ctx, subject)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(lessons); err == nil {
		if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
			slog.Warn("catalog cache write failed", "key", key, "error", err)
		}
	}
	return lessons, nil
}

func (s *CachedStore) GetLesson(ctx context.Context, id string) (*Lesson, error) {
	return s.inner.GetLesson(ctx, id)
}

func (s *CachedStore) UpsertLesson(ctx context.Context, lesson Lesson) error {
	if err := s.inner.UpsertLesson(ctx, lesson); err != nil {
		return err
	}
	keys := []string{catalogKey(""), catalogKey(lesson.Subject)}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("invalidate catalog cache: %w", err)
	}
	return nil
}
