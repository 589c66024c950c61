package system

import (
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/pocket/internal/analytics"
	"github.com/julianstephens/pocket/internal/backup"
	"github.com/julianstephens/pocket/internal/cli"
	"github.com/julianstephens/pocket/internal/constants"
	"github.com/julianstephens/pocket/internal/instance"
	"github.com/julianstephens/pocket/internal/keyring"
	"github.com/julianstephens/pocket/internal/models"
	"github.com/julianstephens/pocket/internal/storage"
	"github.com/julianstephens/pocket/internal/utils"
)

type DoctorCmd struct {
	Fix bool `help:"Recompute cached streaks that differ from their completions."`
}

// errStaleStreaks marks a habit check that found recomputable drift only.
var errStaleStreaks = errors.New("cached streaks differ from completions")

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false
	fail := func(name string, err error) {
		ctx.Printf("❌ %s: FAIL\n", name)
		ctx.Printf("   Error: %v\n", err)
		hasError = true
	}

	dbReachable := false
	if err := ctx.Store.Load(ctx.Ctx()); err != nil {
		fail("Database reachable", err)
	} else {
		ctx.Println("✓ Database reachable: OK")
		dbReachable = true
	}

	if !dbReachable {
		ctx.Println("⊘ Schema version: SKIPPED (database not reachable)")
		ctx.Println("⊘ Settings: SKIPPED (database not reachable)")
		ctx.Println("⊘ Habit data: SKIPPED (database not reachable)")
	} else {
		if err := checkSchemaVersion(ctx); err != nil {
			fail("Schema version", err)
		} else {
			ctx.Println("✓ Schema version: OK")
		}

		if err := checkSettings(ctx); err != nil {
			fail("Settings", err)
		} else {
			ctx.Println("✓ Settings: OK")
		}

		switch err := checkHabits(ctx); {
		case errors.Is(err, errStaleStreaks) && cmd.Fix:
			n, err := ctx.Tracker.Recompute(ctx.Ctx(), ctx.Tracker.Mode())
			if err != nil {
				fail("Habit data", fmt.Errorf("failed to recompute streaks: %w", err))
			} else {
				ctx.Printf("✓ Habit data: FIXED (recomputed %d streak(s))\n", n)
			}
		case errors.Is(err, errStaleStreaks):
			ctx.Println("⚠ Habit data: WARNING")
			ctx.Printf("   %v\n", err)
		case err != nil:
			fail("Habit data", err)
		default:
			ctx.Println("✓ Habit data: OK")
		}
	}

	if storage.IsSQLite(ctx.Store) {
		if err := checkBackupsPresent(ctx); err != nil {
			ctx.Println("⚠ Backups present: WARNING")
			ctx.Printf("   %v\n", err)
		} else {
			ctx.Println("✓ Backups present: OK")
		}
	}

	if holder, err := instance.Check(ctx.ConfigDir); err == nil {
		ctx.Printf("ℹ Instance lock: held by pid %d (%s)\n", holder.PID, holder.Purpose)
	} else {
		ctx.Println("✓ Instance lock: free")
	}

	if keyring.IsAvailable() {
		ctx.Println("✓ OS keyring: available")
	} else {
		ctx.Println("ℹ OS keyring: not available (use POCKET_DB_CONNECTION for PostgreSQL)")
	}

	if err := checkClock(ctx); err != nil {
		fail("Clock/timezone", err)
	} else {
		ctx.Println("✓ Clock/timezone: OK")
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	ctx.Println("All diagnostics passed!")
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	current, latest, err := ctx.Store.SchemaVersion(ctx.Ctx())
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d (run '%s migrate')", current, latest, constants.AppName)
	}
	return nil
}

func checkSettings(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings(ctx.Ctx())
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	models.ApplyDefaultSettings(&settings)
	if _, err := utils.LoadLocation(settings.Timezone); err != nil {
		return fmt.Errorf("timezone %q is not valid: %w", settings.Timezone, err)
	}
	if !settings.StreakMode.Valid() {
		return fmt.Errorf("unknown streak mode %q", settings.StreakMode)
	}
	return nil
}

// checkHabits verifies stored completion keys and compares cached streaks
// against a recomputation in the active mode.
func checkHabits(ctx *cli.Context) error {
	if err := ctx.Wire(ctx.Ctx()); err != nil {
		return err
	}
	habits, err := ctx.Habits(ctx.Ctx())
	if err != nil {
		return fmt.Errorf("failed to list habits: %w", err)
	}

	ids := make(map[string]bool, len(habits))
	stale := 0
	now := ctx.Today()
	mode := ctx.Tracker.Mode()
	for _, h := range habits {
		if ids[h.ID] {
			return fmt.Errorf("duplicate habit ID found: %s", h.ID)
		}
		ids[h.ID] = true
		for day := range h.Completions {
			if !models.ValidDay(day) {
				return fmt.Errorf("habit %q has malformed completion date %q", h.Name, day)
			}
		}
		if analytics.ComputeStreak(h.Completions, now, mode) != h.Streak {
			stale++
		}
	}
	if stale > 0 {
		return fmt.Errorf("%w: %d habit(s); run '%s doctor --fix' to recompute", errStaleStreaks, stale, constants.AppName)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found, consider creating one with '%s backup create'", constants.AppName)
	}
	return nil
}

func checkClock(ctx *cli.Context) error {
	now := ctx.Today()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	if now.Location() == time.UTC {
		ctx.Println("   Note: timezone is UTC")
	}
	return nil
}
