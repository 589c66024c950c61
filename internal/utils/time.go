package utils

import (
	"fmt"
	"time"

	"github.com/julianstephens/pocket/internal/constants"
	"github.com/julianstephens/pocket/internal/models"
)

// LoadLocation loads an IANA timezone. "Local" or empty selects the system zone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == constants.DefaultTimezone {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return loc, nil
}

// NowInTimezone returns now() converted to the given timezone.
func NowInTimezone(now func() time.Time, timezone string) (time.Time, error) {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return time.Time{}, err
	}
	return now().In(loc), nil
}

// TodayFromSettings returns the current moment in the user's configured
// timezone, so the calendar day matches what the user sees on their wall.
func TodayFromSettings(now func() time.Time, settings models.Settings) (time.Time, error) {
	return NowInTimezone(now, settings.Timezone)
}

// ParseDay parses a YYYY-MM-DD day key. "today" and "yesterday" are relative
// to ref.
func ParseDay(s string, ref time.Time) (string, error) {
	switch s {
	case "", "today":
		return ref.Format(constants.DateFormat), nil
	case "yesterday":
		return ref.AddDate(0, 0, -1).Format(constants.DateFormat), nil
	}
	t, err := time.Parse(constants.DateFormat, s)
	if err != nil {
		return "", fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t.Format(constants.DateFormat), nil
}
