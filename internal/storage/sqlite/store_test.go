package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	pocketerrors "github.com/julianstephens/pocket/internal/errors"
	"github.com/julianstephens/pocket/internal/models"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "nested", "test.db"))
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestInitAndLoad(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")

	if err := NewStore(path).Load(ctx); err == nil {
		t.Fatal("Load() on missing database should fail")
	}

	store := NewStore(path)
	if err := store.Init(ctx); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	store.Close()

	reopened := NewStore(path)
	if err := reopened.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	defer reopened.Close()

	current, latest, err := reopened.SchemaVersion(ctx)
	if err != nil {
		t.Fatalf("SchemaVersion failed: %v", err)
	}
	if current != latest || current == 0 {
		t.Errorf("schema version %d, latest %d", current, latest)
	}
}

func TestHabitCRUD(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	created := time.Date(2024, 1, 1, 8, 0, 0, 123, time.UTC)
	id, err := store.CreateHabit(ctx, models.Habit{
		UserID:      "local",
		Name:        "Read",
		Cue:         "after dinner",
		Identity:    "a reader",
		CreatedAt:   created,
		Completions: models.Completions{},
	})
	if err != nil {
		t.Fatalf("CreateHabit failed: %v", err)
	}
	if id == "" {
		t.Fatal("CreateHabit returned empty id")
	}

	got, err := store.GetHabit(ctx, id)
	if err != nil {
		t.Fatalf("GetHabit failed: %v", err)
	}
	if got.Name != "Read" || got.Cue != "after dinner" || got.Identity != "a reader" || got.UserID != "local" {
		t.Errorf("unexpected habit: %+v", got)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, created)
	}
	if got.Completions == nil || got.Completions.Count() != 0 || got.Streak != 0 {
		t.Errorf("new habit should start empty: %+v", got)
	}

	c := models.Completions{"2024-01-01": true, "2024-01-02": true}
	streak := 2
	if err := store.UpdateHabit(ctx, id, models.HabitPatch{Completions: &c, Streak: &streak}); err != nil {
		t.Fatalf("UpdateHabit failed: %v", err)
	}
	got, _ = store.GetHabit(ctx, id)
	if !got.Completions.Equal(c) || got.Streak != 2 {
		t.Errorf("after update: %+v", got)
	}

	name := "Read fiction"
	if err := store.UpdateHabit(ctx, id, models.HabitPatch{Name: &name}); err != nil {
		t.Fatalf("rename failed: %v", err)
	}
	got, _ = store.GetHabit(ctx, id)
	if got.Name != name || got.Streak != 2 {
		t.Errorf("rename touched other fields: %+v", got)
	}

	if err := store.DeleteHabit(ctx, id); err != nil {
		t.Fatalf("DeleteHabit failed: %v", err)
	}
	if _, err := store.GetHabit(ctx, id); !pocketerrors.IsNotFound(err) {
		t.Errorf("GetHabit after delete = %v, want not found", err)
	}
}

func TestUpdateHabit_Errors(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	c := models.Completions{"2024-01-01": true}
	streak := 1

	err := store.UpdateHabit(ctx, "missing", models.HabitPatch{Completions: &c, Streak: &streak})
	if !pocketerrors.IsNotFound(err) || !pocketerrors.IsStorage(err) {
		t.Errorf("update missing = %v, want not-found storage error", err)
	}

	id, _ := store.CreateHabit(ctx, models.Habit{UserID: "local", Name: "Run"})
	err = store.UpdateHabit(ctx, id, models.HabitPatch{Completions: &c})
	if !errors.Is(err, models.ErrPatchUnpairedStreak) {
		t.Errorf("unpaired patch = %v, want %v", err, models.ErrPatchUnpairedStreak)
	}

	if err := store.DeleteHabit(ctx, "missing"); !pocketerrors.IsNotFound(err) {
		t.Errorf("delete missing = %v, want not found", err)
	}
}

func TestListHabits_NewestFirstPerUser(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, name := range []string{"first", "second", "third"} {
		if _, err := store.CreateHabit(ctx, models.Habit{
			UserID:    "local",
			Name:      name,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}); err != nil {
			t.Fatalf("CreateHabit(%s) failed: %v", name, err)
		}
	}
	if _, err := store.CreateHabit(ctx, models.Habit{UserID: "other", Name: "theirs", CreatedAt: base}); err != nil {
		t.Fatalf("CreateHabit failed: %v", err)
	}

	habits, err := store.ListHabits(ctx, "local")
	if err != nil {
		t.Fatalf("ListHabits failed: %v", err)
	}
	want := []string{"third", "second", "first"}
	if len(habits) != len(want) {
		t.Fatalf("got %d habits, want %d", len(habits), len(want))
	}
	for i, h := range habits {
		if h.Name != want[i] {
			t.Errorf("habits[%d] = %s, want %s", i, h.Name, want[i])
		}
	}

	all, err := store.ListHabits(ctx, "")
	if err != nil || len(all) != 4 {
		t.Errorf("ListHabits(all) = %d, %v", len(all), err)
	}

	empty, err := store.ListHabits(ctx, "nobody")
	if err != nil || empty == nil || len(empty) != 0 {
		t.Errorf("ListHabits(nobody) = %v, %v", empty, err)
	}
}

func TestCorruptCompletionsReadAsEmpty(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	id, _ := store.CreateHabit(ctx, models.Habit{UserID: "local", Name: "Meditate"})
	if _, err := store.GetDB().Exec("UPDATE habits SET completions = ? WHERE id = ?", `{"2024-01-01": tru`, id); err != nil {
		t.Fatalf("failed to corrupt row: %v", err)
	}

	h, err := store.GetHabit(ctx, id)
	if err != nil {
		t.Fatalf("GetHabit failed: %v", err)
	}
	if h.Completions == nil || h.Completions.Count() != 0 {
		t.Errorf("corrupt completions = %v, want empty", h.Completions)
	}
}

func TestSettings(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	settings, err := store.GetSettings(ctx)
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if settings.StreakMode != models.StreakTotal || settings.RatioWindowDays != 7 || settings.HeatmapWindowDays != 28 {
		t.Errorf("unexpected defaults: %+v", settings)
	}

	settings.StreakMode = models.StreakConsecutive
	settings.Timezone = "America/New_York"
	if err := store.SaveSettings(ctx, settings); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}

	got, err := store.GetSettings(ctx)
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if got != settings {
		t.Errorf("GetSettings() = %+v, want %+v", got, settings)
	}
}
