package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/julianstephens/pocket/internal/analytics"
	"github.com/julianstephens/pocket/internal/backup"
	"github.com/julianstephens/pocket/internal/coach"
	"github.com/julianstephens/pocket/internal/logger"
	"github.com/julianstephens/pocket/internal/models"
	"github.com/julianstephens/pocket/internal/storage"
	"github.com/julianstephens/pocket/internal/tracker"
	"github.com/julianstephens/pocket/internal/utils"
)

// Context is the explicit configuration object handed to every command. It is
// built once in main; Wire fills in the pieces that need a loaded store.
type Context struct {
	Store     storage.Provider
	ConfigDir string
	UserID    string // overrides the stored user_id setting when set

	Feed     *storage.Feed
	Tracker  *tracker.Tracker
	Settings models.Settings
	Coach    coach.Coach

	Parent context.Context
	Now    func() time.Time
	In     io.Reader
	Out    io.Writer
}

// Ctx returns the context commands pass to blocking calls.
func (c *Context) Ctx() context.Context {
	if c.Parent == nil {
		return context.Background()
	}
	return c.Parent
}

func (c *Context) clock() func() time.Time {
	if c.Now == nil {
		return time.Now
	}
	return c.Now
}

// Printf writes to the command output.
func (c *Context) Printf(format string, args ...any) {
	out := c.Out
	if out == nil {
		out = os.Stdout
	}
	fmt.Fprintf(out, format, args...)
}

// Println writes a line to the command output.
func (c *Context) Println(args ...any) {
	out := c.Out
	if out == nil {
		out = os.Stdout
	}
	fmt.Fprintln(out, args...)
}

// Wire reads settings from the loaded store and builds the feed and tracker.
func (c *Context) Wire(ctx context.Context) error {
	settings, err := c.Store.GetSettings(ctx)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	models.ApplyDefaultSettings(&settings)
	if c.UserID != "" {
		settings.UserID = c.UserID
	}
	loc, err := utils.LoadLocation(settings.Timezone)
	if err != nil {
		logger.Warn("Falling back to local timezone", "error", err)
		loc = time.Local
	}

	c.Settings = settings
	if c.Coach.Fallback == nil {
		c.Coach = coach.Default()
	}
	base := c.clock()
	local := func() time.Time { return base().In(loc) }
	c.Feed = storage.NewFeed(c.Store)
	c.Tracker = tracker.New(c.Feed, settings.UserID,
		tracker.WithClock(local),
		tracker.WithStreakMode(settings.StreakMode),
	)
	return nil
}

// Today returns the current moment in the user's timezone.
func (c *Context) Today() time.Time {
	now, err := utils.TodayFromSettings(c.clock(), c.Settings)
	if err != nil {
		return c.clock()()
	}
	return now
}

// Habits lists the current user's habits, newest first.
func (c *Context) Habits(ctx context.Context) ([]models.Habit, error) {
	return c.Feed.ListHabits(ctx, c.Settings.UserID)
}

// Report builds the analytics report for the current user. Zero window sizes
// fall back to the stored settings.
func (c *Context) Report(ctx context.Context, ratioDays, heatmapDays int) (analytics.Report, error) {
	habits, err := c.Habits(ctx)
	if err != nil {
		return analytics.Report{}, err
	}
	if ratioDays <= 0 {
		ratioDays = c.Settings.RatioWindowDays
	}
	if heatmapDays <= 0 {
		heatmapDays = c.Settings.HeatmapWindowDays
	}
	return analytics.Build(habits, c.Today(), ratioDays, heatmapDays), nil
}

// Confirm asks a yes/no question on the command input. Anything but y/yes is no.
func (c *Context) Confirm(prompt string) (bool, error) {
	c.Printf("%s [y/N]: ", prompt)
	in := c.In
	if in == nil {
		in = os.Stdin
	}
	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}

// PerformAutomaticBackup backs up a SQLite store and only logs failures.
func (c *Context) PerformAutomaticBackup() {
	if !storage.IsSQLite(c.Store) {
		return
	}
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.CreateBackup(c.Ctx()); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}
