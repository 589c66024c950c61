package analytics

import (
	"time"

	"github.com/julianstephens/pocket/internal/constants"
	"github.com/julianstephens/pocket/internal/models"
)

// ComputeStreak derives a habit's streak from its completions.
//
// In StreakTotal mode the result is the number of completed days and asOf is
// ignored. In StreakConsecutive mode it is the length of the run of completed
// days ending at asOf; when asOf itself is not yet completed the run is counted
// from the day before, so an unfinished today does not reset the streak.
func ComputeStreak(c models.Completions, asOf time.Time, mode models.StreakMode) int {
	if mode != models.StreakConsecutive {
		return c.Count()
	}

	day := civil(asOf)
	if !c.Has(day.Format(constants.DateFormat)) {
		day = day.AddDate(0, 0, -1)
	}

	n := 0
	for c.Has(day.Format(constants.DateFormat)) {
		n++
		day = day.AddDate(0, 0, -1)
	}
	return n
}

// LongestRun returns the longest run of consecutive completed days.
func LongestRun(c models.Completions) int {
	best, run := 0, 0
	var prev time.Time
	for i, key := range c.Dates() {
		d, err := time.Parse(constants.DateFormat, key)
		if err != nil {
			run = 0
			continue
		}
		if i > 0 && run > 0 && d.Equal(prev.AddDate(0, 0, 1)) {
			run++
		} else {
			run = 1
		}
		prev = d
		if run > best {
			best = run
		}
	}
	return best
}
