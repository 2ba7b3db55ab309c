package store

import (
	"testing"

	"github.com/dukerupert/dayboard/internal/model"
)

func TestHabitCreateAndList(t *testing.T) {
	db := setupTestDB(t)
	hs := NewHabitStore(db)
	u := createTestUser(t, db, "alice@example.com")
	other := createTestUser(t, db, "bob@example.com")

	for _, h := range []model.Habit{
		{UserID: u.ID, Date: "2026-10-15", Name: "Read", Category: "Mind", Status: model.HabitDone},
		{UserID: u.ID, Date: "2026-10-15", Name: "Run", Category: "Health", Status: model.HabitMissed},
		{UserID: u.ID, Date: "2026-10-14", Name: "Read", Category: "Mind", Status: model.HabitDone},
		{UserID: other.ID, Date: "2026-10-15", Name: "Code", Category: "Work", Status: model.HabitDone},
	} {
		if _, err := hs.Create(h); err != nil {
			t.Fatalf("create habit: %v", err)
		}
	}

	habits, err := hs.ListByUserDate(u.ID, "2026-10-15")
	if err != nil {
		t.Fatalf("list habits: %v", err)
	}
	if len(habits) != 2 {
		t.Fatalf("expected 2 habits, got %d", len(habits))
	}
	if habits[0].Name != "Read" || habits[1].Name != "Run" {
		t.Errorf("names = [%s %s], want [Read Run]", habits[0].Name, habits[1].Name)
	}
}

func TestHabitInvalidStatus(t *testing.T) {
	db := setupTestDB(t)
	hs := NewHabitStore(db)
	u := createTestUser(t, db, "alice@example.com")

	_, err := hs.Create(model.Habit{UserID: u.ID, Date: "2026-10-15", Name: "Read", Category: "Mind", Status: "Maybe"})
	if err == nil {
		t.Fatal("expected error for invalid status")
	}
}

func TestHabitSetStatus(t *testing.T) {
	db := setupTestDB(t)
	hs := NewHabitStore(db)
	u := createTestUser(t, db, "alice@example.com")

	h, _ := hs.Create(model.Habit{UserID: u.ID, Date: "2026-10-15", Name: "Read", Category: "Mind", Status: model.HabitMissed})
	updated, err := hs.SetStatus(h.ID, model.HabitDone)
	if err != nil {
		t.Fatalf("set status: %v", err)
	}
	if !updated.Done() {
		t.Errorf("status = %q, want %q", updated.Status, model.HabitDone)
	}
}
