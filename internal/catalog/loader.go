package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// lessonSchema is the contract every lesson content file must satisfy
// before it enters the catalog. Validation happens once here, at the
// boundary, so the scoring core never sees malformed content.
const lessonSchema = `{
  "type": "object",
  "required": ["id", "title", "subject"],
  "properties": {
    "id": {"type": "string", "minLength": 1},
    "title": {"type": "string", "minLength": 1},
    "subject": {"type": "string", "minLength": 1},
    "difficulty": {"enum": ["beginner", "easy", "medium", "hard", "advanced"]},
    "age_min": {"type": "integer", "minimum": 0},
    "age_max": {"type": "integer", "minimum": 0},
    "grade": {"enum": ["preschool", "kindergarten", "grade1", "grade2", "grade3", "grade4", "grade5"]},
    "styles": {"type": "array", "items": {"enum": ["visual", "auditory", "kinesthetic", "reading"]}},
    "tags": {"type": "array", "items": {"type": "string"}},
    "topics": {"type": "array", "items": {"type": "string"}},
    "published": {"type": "boolean"}
  }
}`

// lessonDoc is the YAML shape of a lesson content file.
type lessonDoc struct {
	ID         string   `yaml:"id"`
	Title      string   `yaml:"title"`
	Subject    string   `yaml:"subject"`
	Difficulty string   `yaml:"difficulty"`
	AgeMin     *int     `yaml:"age_min"`
	AgeMax     *int     `yaml:"age_max"`
	Grade      string   `yaml:"grade"`
	Styles     []string `yaml:"styles"`
	Tags       []string `yaml:"tags"`
	Topics     []string `yaml:"topics"`
	Published  *bool    `yaml:"published"`
}

// Loader reads lesson YAML files from a content directory into a store.
type Loader struct {
	rootDir string
	store   Store
	schema  *gojsonschema.Schema
}

// NewLoader creates a content loader for the given directory and store.
func NewLoader(rootDir string, store Store) (*Loader, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(lessonSchema))
	if err != nil {
		return nil, fmt.Errorf("compiling lesson schema: %w", err)
	}
	return &Loader{rootDir: rootDir, store: store, schema: schema}, nil
}

// LoadAll walks the content directory and upserts every valid lesson file.
// Invalid files are logged and skipped so one bad file never blocks the
// rest of the catalog.
func (l *Loader) LoadAll(ctx context.Context) (int, error) {
	loaded := 0
	err := filepath.Walk(l.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if !strings.HasSuffix(path, ".yaml") && !strings.HasSuffix(path, ".yml") {
			return nil
		}
		lesson, err := l.loadFile(path)
		if err != nil {
			slog.Warn("skipping invalid lesson file", "path", path, "error", err)
			return nil
		}
		if err := l.store.UpsertLesson(ctx, *lesson); err != nil {
			return fmt.Errorf("storing %s: %w", path, err)
		}
		loaded++
		return nil
	})
	if err != nil {
		return loaded, err
	}
	slog.Info("lesson content loaded", "dir", l.rootDir, "lessons", loaded)
	return loaded, nil
}

func (l *Loader) loadFile(path string) (*Lesson, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Validate the raw document before decoding into typed fields.
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	result, err := l.schema.Validate(gojsonschema.NewGoLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("schema violations: %s", strings.Join(msgs, "; "))
	}

	var doc lessonDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return docToLesson(doc)
}

func docToLesson(doc lessonDoc) (*Lesson, error) {
	lesson := &Lesson{
		ID:         doc.ID,
		Title:      doc.Title,
		Subject:    strings.ToLower(strings.TrimSpace(doc.Subject)),
		Difficulty: ParseDifficulty(doc.Difficulty),
		AgeMin:     doc.AgeMin,
		AgeMax:     doc.AgeMax,
		Tags:       doc.Tags,
		Topics:     doc.Topics,
		Published:  true,
	}
	if doc.Published != nil {
		lesson.Published = *doc.Published
	}
	if doc.Grade != "" {
		g, err := ParseGradeBand(doc.Grade)
		if err != nil {
			return nil, err
		}
		lesson.Grade = &g
	}
	for _, raw := range doc.Styles {
		st, err := ParseLearningStyle(raw)
		if err != nil {
			return nil, err
		}
		lesson.Styles = append(lesson.Styles, st)
	}
	return lesson, nil
}
