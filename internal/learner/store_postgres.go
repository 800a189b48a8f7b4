package learner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/readnest/readnest-server/internal/catalog"
)

const dbTimeout = 5 * time.Second

// PostgresStore is a PostgreSQL-backed learner Store.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed learner store.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) GetProfile(ctx context.Context, id string) (*Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var (
		p     Profile
		age   *int
		grade *string
		style *string
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, age, grade, learning_style, interests
		 FROM learners
		 WHERE id = $1
		 LIMIT 1`,
		id,
	).Scan(&p.ID, &p.Name, &age, &grade, &style, &p.Interests)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}

	p.Age = age
	if grade != nil {
		if g, err := catalog.ParseGradeBand(*grade); err == nil {
			p.Grade = &g
		}
	}
	if style != nil {
		if st, err := catalog.ParseLearningStyle(*style); err == nil {
			p.Style = &st
		}
	}
	return &p, nil
}

func (s *PostgresStore) UpsertProfile(ctx context.Context, profile Profile) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	if profile.ID == "" {
		return fmt.Errorf("learner id is required")
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO learners (id, name, age, grade, learning_style, interests)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE SET
		   name = EXCLUDED.name,
		   age = EXCLUDED.age,
		   grade = EXCLUDED.grade,
		   learning_style = EXCLUDED.learning_style,
		   interests = EXCLUDED.interests`,
		profile.ID,
		profile.Name,
		profile.Age,
		stringPtr((*string)(profile.Grade)),
		stringPtr((*string)(profile.Style)),
		profile.Interests,
	)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

func (s *PostgresStore) CompletedProgress(ctx context.Context, learnerID string) ([]ProgressRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT p.learner_id, p.lesson_id, l.subject, l.difficulty, p.score, p.completed_at
		 FROM progress p
		 JOIN lessons l ON l.id = p.lesson_id
		 WHERE p.learner_id = $1
		   AND p.status = 'completed'
		 ORDER BY p.completed_at ASC`,
		learnerID,
	)
	if err != nil {
		return nil, fmt.Errorf("query progress: %w", err)
	}
	defer rows.Close()

	var records []ProgressRecord
	for rows.Next() {
		var (
			rec        ProgressRecord
			difficulty *string
		)
		if err := rows.Scan(
			&rec.LearnerID,
			&rec.LessonID,
			&rec.Subject,
			&difficulty,
			&rec.Score,
			&rec.CompletedAt,
		); err != nil {
			return nil, fmt.Errorf("scan progress: %w", err)
		}
		if difficulty != nil {
			rec.Difficulty = catalog.ParseDifficulty(*difficulty)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate progress: %w", err)
	}
	return records, nil
}

func (s *PostgresStore) RecordProgress(ctx context.Context, rec ProgressRecord) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	if rec.LearnerID == "" || rec.LessonID == "" {
		return fmt.Errorf("learner id and lesson id are required")
	}
	completedAt := rec.CompletedAt
	if completedAt.IsZero() {
		completedAt = time.Now()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO progress (learner_id, lesson_id, status, score, completed_at)
		 VALUES ($1, $2, 'completed', $3, $4)`,
		rec.LearnerID,
		rec.LessonID,
		rec.Score,
		completedAt,
	)
	if err != nil {
		return fmt.Errorf("record progress: %w", err)
	}
	return nil
}

func stringPtr(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
