package catalog

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func writeSheet(t *testing.T, rows [][]string) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("writing row %d: %v", i+1, err)
		}
	}

	path := filepath.Join(t.TempDir(), "lessons.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("saving spreadsheet: %v", err)
	}
	return path
}

func TestImporterImportFile(t *testing.T) {
	path := writeSheet(t, [][]string{
		{"id", "title", "subject", "difficulty", "age_min", "age_max", "grade", "styles", "tags", "topics", "published"},
		{"dino-reading", "Dinosaur Reading", "Phonics", "easy", "5", "9", "grade1", "visual|reading", "dinosaurs|animals", "short vowels", "true"},
		{"space-words", "Space Words", "vocabulary", "", "", "", "", "", "", "", "false"},
		{"", "orphan row without an id", "", "", "", "", "", "", "", "", ""},
	})

	store := NewMemoryStore()
	imported, err := NewImporter(store).ImportFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ImportFile() error = %v", err)
	}
	if imported != 2 {
		t.Errorf("ImportFile() = %d, want 2", imported)
	}

	dino, err := store.GetLesson(context.Background(), "dino-reading")
	if err != nil {
		t.Fatalf("GetLesson(dino-reading) error = %v", err)
	}
	if dino.Subject != "phonics" {
		t.Errorf("Subject = %q, want %q", dino.Subject, "phonics")
	}
	if dino.Difficulty != DifficultyEasy {
		t.Errorf("Difficulty = %v, want %v", dino.Difficulty, DifficultyEasy)
	}
	if dino.AgeMin == nil || *dino.AgeMin != 5 {
		t.Errorf("AgeMin = %v, want 5", dino.AgeMin)
	}
	if len(dino.Styles) != 2 || dino.Styles[0] != StyleVisual || dino.Styles[1] != StyleReading {
		t.Errorf("Styles = %v, want [visual reading]", dino.Styles)
	}
	if len(dino.Tags) != 2 || dino.Tags[0] != "dinosaurs" {
		t.Errorf("Tags = %v, want [dinosaurs animals]", dino.Tags)
	}
	if !dino.Published {
		t.Error("Published = false, want true")
	}

	space, err := store.GetLesson(context.Background(), "space-words")
	if err != nil {
		t.Fatalf("GetLesson(space-words) error = %v", err)
	}
	if space.Published {
		t.Error("Published = true, want false")
	}
	if space.Difficulty != DifficultyUnknown {
		t.Errorf("Difficulty = %v, want unknown", space.Difficulty)
	}
}

func TestImporterMalformedRow(t *testing.T) {
	path := writeSheet(t, [][]string{
		{"id", "title", "subject", "age_min"},
		{"ok-lesson", "Fine", "phonics", "6"},
		{"bad-lesson", "Broken", "phonics", "six"},
	})

	store := NewMemoryStore()
	imported, err := NewImporter(store).ImportFile(context.Background(), path)
	if err == nil {
		t.Fatal("ImportFile() error = nil, want row error")
	}
	if !strings.Contains(err.Error(), "row 3") {
		t.Errorf("error = %v, want it to name row 3", err)
	}
	if imported != 1 {
		t.Errorf("imported = %d, want 1 before the failure", imported)
	}
}

func TestImporterMissingRequiredColumn(t *testing.T) {
	path := writeSheet(t, [][]string{
		{"id", "title"},
		{"a", "A"},
	})

	if _, err := NewImporter(NewMemoryStore()).ImportFile(context.Background(), path); err == nil {
		t.Fatal("ImportFile() error = nil, want missing column error")
	}
}
