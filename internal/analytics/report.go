package analytics

import (
	"time"

	"github.com/julianstephens/pocket/internal/models"
)

// Default chart dimensions for the trend path.
const (
	TrendWidth  = 300
	TrendHeight = 100
)

// Report bundles every derived view for one habit snapshot.
type Report struct {
	Today   string     `json:"today"`
	Summary Summary    `json:"summary"`
	Score   int        `json:"score"`
	Ratios  []DayRatio `json:"ratios"`
	Heatmap []HeatCell `json:"heatmap"`
	Trend   Path       `json:"trend"`
	SVG     string     `json:"svg"`
}

// Build computes a Report. ratioDays drives the ratio series, the score and
// the trend; heatmapDays sizes the heatmap.
func Build(habits []models.Habit, today time.Time, ratioDays, heatmapDays int) Report {
	ratios := DailyRatios(habits, today, ratioDays)
	trend := TrendPath(Ratios(ratios), TrendWidth, TrendHeight)
	return Report{
		Today:   DayKey(today),
		Summary: Summarize(habits, today),
		Score:   ConsistencyScore(habits, today, ratioDays),
		Ratios:  ratios,
		Heatmap: Heatmap(habits, today, heatmapDays),
		Trend:   trend,
		SVG:     trend.SVG(),
	}
}
