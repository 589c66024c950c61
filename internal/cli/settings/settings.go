package settings

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/julianstephens/pocket/internal/cli"
	"github.com/julianstephens/pocket/internal/constants"
	"github.com/julianstephens/pocket/internal/models"
	"github.com/julianstephens/pocket/internal/utils"
)

type SettingsCmd struct {
	Show SettingsShowCmd `cmd:"" help:"Show current settings." default:"1"`
	Set  SettingsSetCmd  `cmd:"" help:"Change a setting."`
}

type SettingsShowCmd struct{}

func (c *SettingsShowCmd) Run(ctx *cli.Context) error {
	s := ctx.Settings
	ctx.Println("Current Settings:")
	ctx.Printf("  Timezone:            %s\n", s.Timezone)
	ctx.Printf("  Streak mode:         %s\n", s.StreakMode)
	ctx.Printf("  Ratio window:        %d days\n", s.RatioWindowDays)
	ctx.Printf("  Heatmap window:      %d days\n", s.HeatmapWindowDays)
	ctx.Printf("  User ID:             %s\n", s.UserID)
	return nil
}

type SettingsSetCmd struct {
	Key   string `arg:"" enum:"timezone,streak_mode,ratio_window_days,heatmap_window_days,user_id" help:"Setting key (${enum})."`
	Value string `arg:"" help:"New value."`
}

func (c *SettingsSetCmd) Run(ctx *cli.Context) error {
	stored, err := ctx.Store.GetSettings(ctx.Ctx())
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	models.ApplyDefaultSettings(&stored)

	value := strings.TrimSpace(c.Value)
	modeChanged := false
	switch c.Key {
	case constants.SettingTimezone:
		if _, err := utils.LoadLocation(value); err != nil {
			return err
		}
		stored.Timezone = value
	case constants.SettingStreakMode:
		mode := models.StreakMode(value)
		if !mode.Valid() {
			return fmt.Errorf("streak_mode must be %q or %q", models.StreakTotal, models.StreakConsecutive)
		}
		modeChanged = mode != stored.StreakMode
		stored.StreakMode = mode
	case constants.SettingRatioWindowDays, constants.SettingHeatmapWindowDays:
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 || n > 366 {
			return fmt.Errorf("%s must be a number of days between 1 and 366", c.Key)
		}
		if c.Key == constants.SettingRatioWindowDays {
			stored.RatioWindowDays = n
		} else {
			stored.HeatmapWindowDays = n
		}
	case constants.SettingUserID:
		if value == "" {
			return fmt.Errorf("user_id cannot be empty")
		}
		stored.UserID = value
	default:
		return fmt.Errorf("unknown setting %q", c.Key)
	}

	if err := ctx.Store.SaveSettings(ctx.Ctx(), stored); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	if err := ctx.Wire(ctx.Ctx()); err != nil {
		return err
	}
	ctx.Printf("Set %s = %s\n", c.Key, value)

	// Cached streaks follow the mode, so switching it rewrites them.
	if modeChanged {
		n, err := ctx.Tracker.Recompute(ctx.Ctx(), stored.StreakMode)
		if err != nil {
			return fmt.Errorf("failed to recompute streaks: %w", err)
		}
		ctx.Printf("Recomputed %d streak(s)\n", n)
	}
	return nil
}
