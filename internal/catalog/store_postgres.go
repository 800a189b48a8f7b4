package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 5 * time.Second

// PostgresStore is a PostgreSQL-backed catalog Store. Rating and completion
// aggregates are computed at read time from the ratings and progress tables.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed catalog store.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

const lessonColumns = `l.id, l.title, l.subject, l.difficulty, l.age_min, l.age_max, l.grade,
	 l.styles, l.tags, l.topics, l.published,
	 COALESCE(r.avg_rating, 0), COALESCE(r.rating_count, 0), COALESCE(p.completion_count, 0)`

const lessonAggregates = `LEFT JOIN (
	   SELECT lesson_id, AVG(rating)::float8 AS avg_rating, COUNT(*) AS rating_count
	   FROM lesson_ratings GROUP BY lesson_id
	 ) r ON r.lesson_id = l.id
	 LEFT JOIN (
	   SELECT lesson_id, COUNT(*) AS completion_count
	   FROM progress WHERE status = 'completed' GROUP BY lesson_id
	 ) p ON p.lesson_id = l.id`

func (s *PostgresStore) PublishedLessons(ctx context.Context, subject string) ([]Lesson, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	query := `SELECT ` + lessonColumns + `
	 FROM lessons l
	 ` + lessonAggregates + `
	 WHERE l.published
	   AND ($1 = '' OR l.subject = $1)
	 ORDER BY l.created_at ASC`

	rows, err := s.pool.Query(ctx, query, subject)
	if err != nil {
		return nil, fmt.Errorf("query lessons: %w", err)
	}
	defer rows.Close()

	var lessons []Lesson
	for rows.Next() {
		l, err := scanLesson(rows)
		if err != nil {
			return nil, err
		}
		lessons = append(lessons, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lessons: %w", err)
	}
	return lessons, nil
}

func (s *PostgresStore) GetLesson(ctx context.Context, id string) (*Lesson, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	query := `SELECT ` + lessonColumns + `
	 FROM lessons l
	 ` + lessonAggregates + `
	 WHERE l.id = $1
	 LIMIT 1`

	rows, err := s.pool.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("query lesson: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("query lesson: %w", err)
		}
		return nil, ErrNotFound
	}
	l, err := scanLesson(rows)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *PostgresStore) UpsertLesson(ctx context.Context, lesson Lesson) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	if lesson.ID == "" {
		return fmt.Errorf("lesson id is required")
	}

	styles := make([]string, len(lesson.Styles))
	for i, st := range lesson.Styles {
		styles[i] = string(st)
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO lessons (id, title, subject, difficulty, age_min, age_max, grade, styles, tags, topics, published)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (id) DO UPDATE SET
		   title = EXCLUDED.title,
		   subject = EXCLUDED.subject,
		   difficulty = EXCLUDED.difficulty,
		   age_min = EXCLUDED.age_min,
		   age_max = EXCLUDED.age_max,
		   grade = EXCLUDED.grade,
		   styles = EXCLUDED.styles,
		   tags = EXCLUDED.tags,
		   topics = EXCLUDED.topics,
		   published = EXCLUDED.published`,
		lesson.ID,
		lesson.Title,
		lesson.Subject,
		nullIfEmpty(lesson.Difficulty.String(), "unknown"),
		lesson.AgeMin,
		lesson.AgeMax,
		gradePtr(lesson.Grade),
		styles,
		lesson.Tags,
		lesson.Topics,
		lesson.Published,
	)
	if err != nil {
		return fmt.Errorf("upsert lesson: %w", err)
	}
	return nil
}

// scanLesson reads one lesson row, parsing stored labels into typed values
// at the boundary. Unrecognized difficulty or style labels degrade to "no
// signal" rather than failing the read.
func scanLesson(rows pgx.Rows) (Lesson, error) {
	var (
		l          Lesson
		difficulty *string
		grade      *string
		styles     []string
	)
	if err := rows.Scan(
		&l.ID,
		&l.Title,
		&l.Subject,
		&difficulty,
		&l.AgeMin,
		&l.AgeMax,
		&grade,
		&styles,
		&l.Tags,
		&l.Topics,
		&l.Published,
		&l.AvgRating,
		&l.RatingCount,
		&l.CompletionCount,
	); err != nil {
		return Lesson{}, fmt.Errorf("scan lesson: %w", err)
	}

	if difficulty != nil {
		l.Difficulty = ParseDifficulty(*difficulty)
	}
	if grade != nil {
		if g, err := ParseGradeBand(*grade); err == nil {
			l.Grade = &g
		}
	}
	for _, raw := range styles {
		if st, err := ParseLearningStyle(raw); err == nil {
			l.Styles = append(l.Styles, st)
		}
	}
	return l, nil
}

func nullIfEmpty(v, empty string) any {
	if v == "" || v == empty {
		return nil
	}
	return v
}

func gradePtr(g *GradeBand) any {
	if g == nil {
		return nil
	}
	return string(*g)
}
