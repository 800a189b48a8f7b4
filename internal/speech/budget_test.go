package speech

import (
	"testing"
	"time"
)

func TestBudgetEnforcesDailyLimit(t *testing.T) {
	b := NewInMemoryBudget(100)

	ok, err := b.Check("kid-1")
	if err != nil || !ok {
		t.Fatalf("Check() = %v, %v, want true with no usage", ok, err)
	}

	if err := b.Record("kid-1", 60); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	ok, _ = b.Check("kid-1")
	if !ok {
		t.Error("Check() = false under the limit")
	}

	if err := b.Record("kid-1", 60); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	ok, _ = b.Check("kid-1")
	if ok {
		t.Error("Check() = true at 120/100 chars")
	}

	// Other learners have their own budget.
	ok, _ = b.Check("kid-2")
	if !ok {
		t.Error("Check() = false for an unrelated learner")
	}

	used, limit, err := b.Usage("kid-1")
	if err != nil {
		t.Fatalf("Usage() error = %v", err)
	}
	if used != 120 || limit != 100 {
		t.Errorf("Usage() = %d/%d, want 120/100", used, limit)
	}
}

func TestBudgetUnlimitedWhenZero(t *testing.T) {
	b := NewInMemoryBudget(0)
	if err := b.Record("kid-1", 1_000_000); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	ok, err := b.Check("kid-1")
	if err != nil || !ok {
		t.Errorf("Check() = %v, %v, want always true with no limit", ok, err)
	}
}

func TestBudgetRejectsNegativeChars(t *testing.T) {
	b := NewInMemoryBudget(100)
	if err := b.Record("kid-1", -5); err == nil {
		t.Error("Record(-5) error = nil, want error")
	}
}

func TestBudgetDayRollover(t *testing.T) {
	b := NewInMemoryBudget(100)
	day := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return day }

	if err := b.Record("kid-1", 100); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if ok, _ := b.Check("kid-1"); ok {
		t.Fatal("Check() = true at the limit")
	}

	// Midnight passes; usage resets.
	day = day.Add(24 * time.Hour)
	if ok, _ := b.Check("kid-1"); !ok {
		t.Error("Check() = false after day rollover")
	}
	used, _, _ := b.Usage("kid-1")
	if used != 0 {
		t.Errorf("Usage() = %d after rollover, want 0", used)
	}
}
