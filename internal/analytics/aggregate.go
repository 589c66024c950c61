package analytics

import (
	"math"
	"time"

	"github.com/julianstephens/pocket/internal/models"
)

// Heatmap tier thresholds. A ratio r lands in the first tier whose upper bound
// is >= r; zero is its own tier.
const (
	TierNone = iota
	TierLow
	TierMedium
	TierHigh
	TierFull
)

var tierBounds = [...]float64{0.3, 0.6, 0.9}

// DayRatio is the share of habits completed on one calendar day.
type DayRatio struct {
	Date      string  `json:"date"`
	Completed int     `json:"completed"`
	Total     int     `json:"total"`
	Ratio     float64 `json:"ratio"`
}

// HeatCell is one heatmap day: the raw ratio plus its presentation tier.
type HeatCell struct {
	Date  string  `json:"date"`
	Ratio float64 `json:"ratio"`
	Tier  int     `json:"tier"`
}

func completedOn(habits []models.Habit, day string) int {
	n := 0
	for _, h := range habits {
		if h.CompletedOn(day) {
			n++
		}
	}
	return n
}

// DailyRatios returns n entries ending at today, oldest first. With no habits
// every ratio is 0. n <= 0 yields an empty series.
func DailyRatios(habits []models.Habit, today time.Time, n int) []DayRatio {
	days := trailingDays(today, n)
	out := make([]DayRatio, len(days))
	total := len(habits)
	for i, day := range days {
		done := completedOn(habits, day)
		r := 0.0
		if total > 0 {
			r = float64(done) / float64(total)
		}
		out[i] = DayRatio{Date: day, Completed: done, Total: total, Ratio: r}
	}
	return out
}

// Ratios projects a ratio series onto its float values.
func Ratios(series []DayRatio) []float64 {
	out := make([]float64, len(series))
	for i, d := range series {
		out[i] = d.Ratio
	}
	return out
}

// ConsistencyScore is the floor of the mean daily completion percentage over
// the n days ending at today. It is computed in integers so the result does
// not depend on float rounding, and is always in [0, 100].
func ConsistencyScore(habits []models.Habit, today time.Time, n int) int {
	total := len(habits)
	if total == 0 || n <= 0 {
		return 0
	}
	sum := 0
	for _, day := range trailingDays(today, n) {
		sum += completedOn(habits, day)
	}
	return 100 * sum / (total * n)
}

// TierFor buckets a ratio: 0 for r <= 0 (or NaN), then (0,0.3], (0.3,0.6],
// (0.6,0.9] and above 0.9. It is non-decreasing in r.
func TierFor(r float64) int {
	if !(r > 0) {
		return TierNone
	}
	for i, bound := range tierBounds {
		if r <= bound {
			return TierLow + i
		}
	}
	return TierFull
}

func clampUnit(r float64) float64 {
	if math.IsNaN(r) || r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}

// Heatmap returns m cells ending at today, oldest first.
func Heatmap(habits []models.Habit, today time.Time, m int) []HeatCell {
	series := DailyRatios(habits, today, m)
	cells := make([]HeatCell, len(series))
	for i, d := range series {
		r := clampUnit(d.Ratio)
		cells[i] = HeatCell{Date: d.Date, Ratio: r, Tier: TierFor(r)}
	}
	return cells
}

// Summary holds the headline figures of the stats view.
type Summary struct {
	TotalHabits      int `json:"total_habits"`
	TotalCompletions int `json:"total_completions"`
	CompletedToday   int `json:"completed_today"`
	ActiveStreaks    int `json:"active_streaks"`
	LongestStreak    int `json:"longest_streak"`
	// Strength compares total completions against one week of every habit,
	// capped at 100.
	Strength int `json:"strength"`
}

// Summarize computes the headline figures for habits as of today.
func Summarize(habits []models.Habit, today time.Time) Summary {
	s := Summary{TotalHabits: len(habits)}
	key := DayKey(today)
	for _, h := range habits {
		s.TotalCompletions += h.Completions.Count()
		if h.CompletedOn(key) {
			s.CompletedToday++
		}
		if h.Streak > 0 {
			s.ActiveStreaks++
		}
		if h.Streak > s.LongestStreak {
			s.LongestStreak = h.Streak
		}
	}

	week := len(habits) * 7
	if week == 0 {
		week = 1
	}
	s.Strength = min(100, 100*s.TotalCompletions/week)
	return s
}
