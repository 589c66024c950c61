package models

import (
	"fmt"

	"github.com/julianstephens/pocket/internal/constants"
)

// MapToSettings converts a map of key-value pairs to a Settings struct.
func MapToSettings(data map[string]string) (Settings, error) {
	settings := Settings{}

	for key, value := range data {
		switch key {
		case constants.SettingTimezone:
			settings.Timezone = value
		case constants.SettingStreakMode:
			settings.StreakMode = ParseStreakMode(value)
		case constants.SettingRatioWindowDays:
			if _, err := fmt.Sscanf(value, "%d", &settings.RatioWindowDays); err != nil {
				return Settings{}, fmt.Errorf("parsing ratio_window_days: %w", err)
			}
		case constants.SettingHeatmapWindowDays:
			if _, err := fmt.Sscanf(value, "%d", &settings.HeatmapWindowDays); err != nil {
				return Settings{}, fmt.Errorf("parsing heatmap_window_days: %w", err)
			}
		case constants.SettingUserID:
			settings.UserID = value
		}
	}
	return settings, nil
}

// SettingsToMap converts a Settings struct to a map of key-value pairs.
func SettingsToMap(settings Settings) map[string]string {
	return map[string]string{
		constants.SettingTimezone:          settings.Timezone,
		constants.SettingStreakMode:        string(settings.StreakMode),
		constants.SettingRatioWindowDays:   fmt.Sprintf("%d", settings.RatioWindowDays),
		constants.SettingHeatmapWindowDays: fmt.Sprintf("%d", settings.HeatmapWindowDays),
		constants.SettingUserID:            settings.UserID,
	}
}

// ApplyDefaultSettings applies default values to missing settings.
func ApplyDefaultSettings(settings *Settings) {
	if settings.Timezone == "" {
		settings.Timezone = constants.DefaultTimezone
	}
	if !settings.StreakMode.Valid() {
		settings.StreakMode = StreakTotal
	}
	if settings.RatioWindowDays <= 0 {
		settings.RatioWindowDays = constants.DefaultRatioWindowDays
	}
	if settings.HeatmapWindowDays <= 0 {
		settings.HeatmapWindowDays = constants.DefaultHeatmapWindowDays
	}
	if settings.UserID == "" {
		settings.UserID = constants.DefaultUserID
	}
}
