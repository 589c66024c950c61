package models

// StreakMode selects how a habit's streak is derived from its completions.
type StreakMode string

const (
	// StreakTotal counts every completed day, regardless of gaps.
	StreakTotal StreakMode = "total"
	// StreakConsecutive counts the run of completed days ending at the reference day.
	StreakConsecutive StreakMode = "consecutive"
)

// ParseStreakMode maps a stored value to a mode. Unknown values fall back to StreakTotal.
func ParseStreakMode(s string) StreakMode {
	if StreakMode(s) == StreakConsecutive {
		return StreakConsecutive
	}
	return StreakTotal
}

// Valid reports whether m is a known mode.
func (m StreakMode) Valid() bool {
	return m == StreakTotal || m == StreakConsecutive
}

// Settings represents application-wide settings
type Settings struct {
	Timezone          string     `json:"timezone"`            // IANA timezone name or "Local"
	StreakMode        StreakMode `json:"streak_mode"`         // "total" or "consecutive"
	RatioWindowDays   int        `json:"ratio_window_days"`   // trailing window for ratios and the consistency score
	HeatmapWindowDays int        `json:"heatmap_window_days"` // trailing window for the heatmap
	UserID            string     `json:"user_id"`             // owner of habits created from this client
}
