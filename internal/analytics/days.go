package analytics

import (
	"time"

	"github.com/julianstephens/pocket/internal/constants"
)

// civil drops the clock and zone of t, keeping only its calendar day as seen in
// t's own location. Arithmetic on the result is DST-free.
func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DayKey formats the calendar day of t as YYYY-MM-DD.
func DayKey(t time.Time) string {
	return civil(t).Format(constants.DateFormat)
}

// trailingDays returns the n day keys ending at today, oldest first.
func trailingDays(today time.Time, n int) []string {
	if n <= 0 {
		return nil
	}
	end := civil(today)
	days := make([]string, n)
	for i := 0; i < n; i++ {
		days[i] = end.AddDate(0, 0, i-(n-1)).Format(constants.DateFormat)
	}
	return days
}
