package habits

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/pocket/internal/cli"
	"github.com/julianstephens/pocket/internal/storage/sqlite"
)

func setupTestDB(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	out := &bytes.Buffer{}
	ctx := &cli.Context{
		Store: store,
		Now:   func() time.Time { return time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC) },
		Out:   out,
	}
	if err := store.Init(ctx.Ctx()); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})
	if err := ctx.Wire(ctx.Ctx()); err != nil {
		t.Fatalf("failed to wire context: %v", err)
	}
	// Pin the calendar to UTC so the fixed clock maps to 2024-01-10.
	ctx.Settings.Timezone = "UTC"
	return ctx, out
}

func addHabit(t *testing.T, ctx *cli.Context, name string) {
	t.Helper()
	if err := (&HabitAddCmd{Name: name}).Run(ctx); err != nil {
		t.Fatalf("habit add %q failed: %v", name, err)
	}
}

func TestHabitAddAndList(t *testing.T) {
	ctx, out := setupTestDB(t)

	addHabit(t, ctx, "  Read  ")
	if err := (&HabitAddCmd{Name: "   "}).Run(ctx); err == nil {
		t.Error("expected validation error for blank name")
	}

	out.Reset()
	if err := (&HabitListCmd{}).Run(ctx); err != nil {
		t.Fatalf("habit list failed: %v", err)
	}
	if !strings.Contains(out.String(), "[ ]") || !strings.Contains(out.String(), "Read ") {
		t.Errorf("unexpected list output:\n%s", out.String())
	}
}

func TestHabitToggle(t *testing.T) {
	ctx, out := setupTestDB(t)
	addHabit(t, ctx, "Read")

	if err := (&HabitToggleCmd{Habit: "read", Date: "today"}).Run(ctx); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if err := (&HabitToggleCmd{Habit: "Read", Date: "2024-01-08"}).Run(ctx); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}

	habits, err := ctx.Habits(ctx.Ctx())
	if err != nil {
		t.Fatal(err)
	}
	if len(habits) != 1 || habits[0].Streak != 2 {
		t.Fatalf("habits = %+v, want one habit with streak 2", habits)
	}
	if !habits[0].CompletedOn("2024-01-10") || !habits[0].CompletedOn("2024-01-08") {
		t.Errorf("completions = %v", habits[0].Completions)
	}

	// Toggling again unmarks.
	out.Reset()
	if err := (&HabitToggleCmd{Habit: "Read", Date: "2024-01-08"}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "unmarked") {
		t.Errorf("output = %q", out.String())
	}

	if err := (&HabitToggleCmd{Habit: "Read", Date: "2024-13-01"}).Run(ctx); err == nil {
		t.Error("expected error for invalid date")
	}
	if err := (&HabitToggleCmd{Habit: "Write", Date: "today"}).Run(ctx); err == nil {
		t.Error("expected error for unknown habit")
	}
}

func TestHabitEdit(t *testing.T) {
	ctx, _ := setupTestDB(t)
	addHabit(t, ctx, "Read")

	name, cue := "Read 10 pages", "after dinner"
	if err := (&HabitEditCmd{Habit: "Read", Name: &name, Cue: &cue}).Run(ctx); err != nil {
		t.Fatalf("edit failed: %v", err)
	}
	habits, _ := ctx.Habits(ctx.Ctx())
	if habits[0].Name != name || habits[0].Cue != cue {
		t.Errorf("habit = %+v", habits[0])
	}

	if err := (&HabitEditCmd{Habit: name}).Run(ctx); err == nil {
		t.Error("expected error when nothing changes")
	}
}

func TestHabitDelete(t *testing.T) {
	ctx, out := setupTestDB(t)
	addHabit(t, ctx, "Read")

	ctx.In = strings.NewReader("n\n")
	if err := (&HabitDeleteCmd{Habit: "Read"}).Run(ctx); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if !strings.Contains(out.String(), "cancelled") {
		t.Errorf("expected cancellation, got %q", out.String())
	}
	if habits, _ := ctx.Habits(ctx.Ctx()); len(habits) != 1 {
		t.Fatal("habit deleted without confirmation")
	}

	ctx.In = strings.NewReader("yes\n")
	if err := (&HabitDeleteCmd{Habit: "Read"}).Run(ctx); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if habits, _ := ctx.Habits(ctx.Ctx()); len(habits) != 0 {
		t.Errorf("habit still present after confirmed delete")
	}
}

func TestHabitShowAndLog(t *testing.T) {
	ctx, out := setupTestDB(t)
	addHabit(t, ctx, "Read")
	for _, day := range []string{"2024-01-09", "2024-01-10"} {
		if err := (&HabitToggleCmd{Habit: "Read", Date: day}).Run(ctx); err != nil {
			t.Fatal(err)
		}
	}

	out.Reset()
	if err := (&HabitShowCmd{Habit: "Read"}).Run(ctx); err != nil {
		t.Fatalf("show failed: %v", err)
	}
	if !strings.Contains(out.String(), "Longest run: 2") || !strings.Contains(out.String(), "Last done:   2024-01-10") {
		t.Errorf("unexpected show output:\n%s", out.String())
	}

	out.Reset()
	if err := (&HabitLogCmd{Days: 3}).Run(ctx); err != nil {
		t.Fatalf("log failed: %v", err)
	}
	if !strings.Contains(out.String(), "·██") {
		t.Errorf("unexpected log output:\n%s", out.String())
	}
	if err := (&HabitLogCmd{Days: 0}).Run(ctx); err == nil {
		t.Error("expected error for non-positive days")
	}
}

func TestLogLine(t *testing.T) {
	today := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	c := map[string]bool{"2024-02-28": true, "2024-03-01": true}
	if got := logLine(c, today, 4); got != "·█·█" {
		t.Errorf("logLine = %q", got)
	}
}
