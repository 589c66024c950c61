package habits

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/pocket/internal/analytics"
	"github.com/julianstephens/pocket/internal/cli"
	"github.com/julianstephens/pocket/internal/constants"
	"github.com/julianstephens/pocket/internal/models"
	"github.com/julianstephens/pocket/internal/storage"
	"github.com/julianstephens/pocket/internal/tracker"
	"github.com/julianstephens/pocket/internal/utils"
)

type HabitCmd struct {
	Add    HabitAddCmd    `cmd:"" help:"Add a new habit."`
	List   HabitListCmd   `cmd:"" help:"List habits with today's status."`
	Toggle HabitToggleCmd `cmd:"" help:"Mark or unmark a habit for a day."`
	Edit   HabitEditCmd   `cmd:"" help:"Edit a habit's name, cue or identity."`
	Delete HabitDeleteCmd `cmd:"" help:"Delete a habit permanently."`
	Show   HabitShowCmd   `cmd:"" help:"Show details for a habit."`
	Log    HabitLogCmd    `cmd:"" help:"Show habit log (ASCII history)."`
}

type HabitAddCmd struct {
	Name     string `arg:"" help:"Habit name."`
	Cue      string `help:"When and where the habit happens (\"after my morning coffee\")."`
	Identity string `help:"Who you become by doing it (\"a reader\")."`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	habit, err := ctx.Tracker.Create(ctx.Ctx(), tracker.Draft{Name: c.Name, Cue: c.Cue, Identity: c.Identity})
	if err != nil {
		return err
	}
	ctx.Printf("Added habit: %s (%s)\n", habit.Name, shortID(habit.ID))
	return nil
}

type HabitListCmd struct{}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	habits, err := ctx.Habits(ctx.Ctx())
	if err != nil {
		return err
	}
	if len(habits) == 0 {
		ctx.Println("No habits found. Add one with: pocket habit add <name>")
		return nil
	}

	today := analytics.DayKey(ctx.Today())
	for _, h := range habits {
		mark := "[ ]"
		if h.CompletedOn(today) {
			mark = "[x]"
		}
		ctx.Printf("%s %-8s %-30s streak %d\n", mark, shortID(h.ID), h.Name, h.Streak)
	}
	return nil
}

type HabitToggleCmd struct {
	Habit string `arg:"" help:"Habit name or id prefix."`
	Date  string `help:"Date in YYYY-MM-DD format, \"today\" or \"yesterday\"." default:"today"`
}

func (c *HabitToggleCmd) Run(ctx *cli.Context) error {
	habit, err := storage.Resolve(ctx.Ctx(), ctx.Feed, ctx.Settings.UserID, c.Habit)
	if err != nil {
		return err
	}
	day, err := utils.ParseDay(c.Date, ctx.Today())
	if err != nil {
		return err
	}

	updated, err := ctx.Tracker.Toggle(ctx.Ctx(), habit.ID, day)
	if err != nil {
		return err
	}
	if updated.CompletedOn(day) {
		ctx.Printf("✓ %s done on %s (streak %d)\n", updated.Name, day, updated.Streak)
	} else {
		ctx.Printf("○ %s unmarked on %s (streak %d)\n", updated.Name, day, updated.Streak)
	}
	return nil
}

type HabitEditCmd struct {
	Habit    string  `arg:"" help:"Habit name or id prefix."`
	Name     *string `help:"New name."`
	Cue      *string `help:"New cue."`
	Identity *string `help:"New identity statement."`
}

func (c *HabitEditCmd) Run(ctx *cli.Context) error {
	habit, err := storage.Resolve(ctx.Ctx(), ctx.Feed, ctx.Settings.UserID, c.Habit)
	if err != nil {
		return err
	}
	if err := ctx.Tracker.Update(ctx.Ctx(), habit.ID, c.Name, c.Cue, c.Identity); err != nil {
		return err
	}
	ctx.Printf("Updated habit: %s\n", shortID(habit.ID))
	return nil
}

type HabitDeleteCmd struct {
	Habit string `arg:"" help:"Habit name or id prefix."`
	Yes   bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	habit, err := storage.Resolve(ctx.Ctx(), ctx.Feed, ctx.Settings.UserID, c.Habit)
	if err != nil {
		return err
	}

	confirmed := c.Yes
	if !confirmed {
		ctx.Printf("Delete %q and its %d completion(s)? This cannot be undone.\n", habit.Name, habit.Completions.Count())
		if confirmed, err = ctx.Confirm("Continue?"); err != nil {
			return err
		}
	}
	if !confirmed {
		ctx.Println("Delete cancelled.")
		return nil
	}

	if err := ctx.Tracker.Delete(ctx.Ctx(), habit.ID, true); err != nil {
		return err
	}
	ctx.Printf("Deleted habit: %s\n", habit.Name)
	return nil
}

type HabitShowCmd struct {
	Habit string `arg:"" help:"Habit name or id prefix."`
}

func (c *HabitShowCmd) Run(ctx *cli.Context) error {
	habit, err := storage.Resolve(ctx.Ctx(), ctx.Feed, ctx.Settings.UserID, c.Habit)
	if err != nil {
		return err
	}

	ctx.Printf("Name:        %s\n", habit.Name)
	ctx.Printf("ID:          %s\n", habit.ID)
	if habit.Cue != "" {
		ctx.Printf("Cue:         %s\n", habit.Cue)
	}
	if habit.Identity != "" {
		ctx.Printf("Identity:    %s\n", habit.Identity)
	}
	ctx.Printf("Created:     %s\n", habit.CreatedAt.In(ctx.Today().Location()).Format("2006-01-02 15:04"))
	ctx.Printf("Streak:      %d (%s)\n", habit.Streak, ctx.Settings.StreakMode)
	ctx.Printf("Completions: %d\n", habit.Completions.Count())
	ctx.Printf("Longest run: %d day(s)\n", analytics.LongestRun(habit.Completions))
	if dates := habit.Completions.Dates(); len(dates) > 0 {
		ctx.Printf("Last done:   %s\n", dates[len(dates)-1])
	}
	return nil
}

type HabitLogCmd struct {
	Days  int    `help:"Number of days to show." default:"14"`
	Habit string `arg:"" optional:"" help:"Only show this habit."`
}

func (c *HabitLogCmd) Run(ctx *cli.Context) error {
	if c.Days <= 0 {
		return fmt.Errorf("--days must be positive")
	}

	var habits []models.Habit
	if c.Habit != "" {
		habit, err := storage.Resolve(ctx.Ctx(), ctx.Feed, ctx.Settings.UserID, c.Habit)
		if err != nil {
			return err
		}
		habits = []models.Habit{habit}
	} else {
		var err error
		if habits, err = ctx.Habits(ctx.Ctx()); err != nil {
			return err
		}
	}
	if len(habits) == 0 {
		ctx.Println("No habits found.")
		return nil
	}

	today := ctx.Today()
	start := today.AddDate(0, 0, -(c.Days - 1))
	ctx.Printf("%-20s %s → %s\n", "", start.Format(constants.DateFormat), today.Format(constants.DateFormat))
	for _, h := range habits {
		ctx.Printf("%-20s %s\n", truncate(h.Name, 20), logLine(h.Completions, today, c.Days))
	}
	return nil
}

// logLine renders one character per day, oldest first.
func logLine(c models.Completions, today time.Time, days int) string {
	var b strings.Builder
	for i := days - 1; i >= 0; i-- {
		if c.Has(analytics.DayKey(today.AddDate(0, 0, -i))) {
			b.WriteString("█")
		} else {
			b.WriteString("·")
		}
	}
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
