package system

import (
	"encoding/json"
	"fmt"

	"github.com/julianstephens/pocket/internal/cli"
	"github.com/julianstephens/pocket/internal/storage"
	"github.com/julianstephens/pocket/internal/utils"
)

type DebugCmd struct {
	DBPath    DebugDBPathCmd    `cmd:"" help:"Show database path."`
	DumpHabit DebugDumpHabitCmd `cmd:"" help:"Dump a habit record as JSON."`
	DumpDay   DebugDumpDayCmd   `cmd:"" help:"Dump every habit's status for a day as JSON."`
}

func printJSON(ctx *cli.Context, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	ctx.Println(string(data))
	return nil
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *cli.Context) error {
	return printJSON(ctx, map[string]string{
		"path":       ctx.Store.GetConfigPath(),
		"config_dir": ctx.ConfigDir,
	})
}

type DebugDumpHabitCmd struct {
	Habit string `arg:"" help:"Habit name, id or id prefix."`
}

func (cmd *DebugDumpHabitCmd) Run(ctx *cli.Context) error {
	habit, err := storage.Resolve(ctx.Ctx(), ctx.Feed, ctx.Settings.UserID, cmd.Habit)
	if err != nil {
		return err
	}
	return printJSON(ctx, habit)
}

type DebugDumpDayCmd struct {
	Date string `arg:"" help:"Day to dump (YYYY-MM-DD, 'today' or 'yesterday')." default:"today"`
}

type dayEntry struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Done   bool   `json:"done"`
	Streak int    `json:"streak"`
}

func (cmd *DebugDumpDayCmd) Run(ctx *cli.Context) error {
	day, err := utils.ParseDay(cmd.Date, ctx.Today())
	if err != nil {
		return err
	}
	habits, err := ctx.Habits(ctx.Ctx())
	if err != nil {
		return err
	}
	entries := make([]dayEntry, 0, len(habits))
	for _, h := range habits {
		entries = append(entries, dayEntry{ID: h.ID, Name: h.Name, Done: h.CompletedOn(day), Streak: h.Streak})
	}
	return printJSON(ctx, map[string]any{"date": day, "habits": entries})
}
