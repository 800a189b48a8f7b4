package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Importer reads the content team's lesson spreadsheet into a store.
// The expected sheet has a header row with the columns
// id, title, subject, difficulty, age_min, age_max, grade, styles, tags,
// topics, published; list cells are |-separated.
type Importer struct {
	store Store
}

// NewImporter creates a spreadsheet importer.
func NewImporter(store Store) *Importer {
	return &Importer{store: store}
}

// ImportFile imports every lesson row from the first sheet of the file.
// Returns the number of lessons imported. A malformed row aborts the
// import with an error naming the row, so content mistakes surface at
// import time instead of as bad catalog data.
func (im *Importer) ImportFile(ctx context.Context, path string) (int, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return 0, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return 0, fmt.Errorf("spreadsheet has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return 0, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) < 2 {
		return 0, nil
	}

	cols := headerIndex(rows[0])
	for _, required := range []string{"id", "title", "subject"} {
		if _, ok := cols[required]; !ok {
			return 0, fmt.Errorf("missing required column %q", required)
		}
	}

	imported := 0
	for i, row := range rows[1:] {
		lesson, err := rowToLesson(row, cols)
		if err != nil {
			return imported, fmt.Errorf("row %d: %w", i+2, err)
		}
		if lesson == nil {
			continue // blank row
		}
		if err := im.store.UpsertLesson(ctx, *lesson); err != nil {
			return imported, fmt.Errorf("row %d: %w", i+2, err)
		}
		imported++
	}

	slog.Info("spreadsheet imported", "path", path, "lessons", imported)
	return imported, nil
}

func headerIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return cols
}

func rowToLesson(row []string, cols map[string]int) (*Lesson, error) {
	cell := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	id := cell("id")
	if id == "" {
		return nil, nil
	}

	doc := lessonDoc{
		ID:         id,
		Title:      cell("title"),
		Subject:    cell("subject"),
		Difficulty: cell("difficulty"),
		Grade:      cell("grade"),
		Styles:     splitList(cell("styles")),
		Tags:       splitList(cell("tags")),
		Topics:     splitList(cell("topics")),
	}
	if doc.Title == "" || doc.Subject == "" {
		return nil, fmt.Errorf("lesson %s: title and subject are required", id)
	}

	var err error
	if doc.AgeMin, err = intCell(cell("age_min")); err != nil {
		return nil, fmt.Errorf("lesson %s: age_min: %w", id, err)
	}
	if doc.AgeMax, err = intCell(cell("age_max")); err != nil {
		return nil, fmt.Errorf("lesson %s: age_max: %w", id, err)
	}
	if raw := cell("published"); raw != "" {
		published := strings.EqualFold(raw, "true") || raw == "1" || strings.EqualFold(raw, "yes")
		doc.Published = &published
	}

	lesson, err := docToLesson(doc)
	if err != nil {
		return nil, fmt.Errorf("lesson %s: %w", id, err)
	}
	return lesson, nil
}

func splitList(cell string) []string {
	if cell == "" {
		return nil
	}
	parts := strings.Split(cell, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func intCell(cell string) (*int, error) {
	if cell == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(cell)
	if err != nil {
		return nil, fmt.Errorf("not an integer: %q", cell)
	}
	return &n, nil
}
