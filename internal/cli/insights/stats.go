package insights

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/julianstephens/pocket/internal/analytics"
	"github.com/julianstephens/pocket/internal/cli"
)

type StatsCmd struct {
	Days    int  `help:"Trailing window for ratios, score and trend (default from settings)."`
	Heatmap int  `help:"Trailing window for the heatmap (default from settings)."`
	JSON    bool `name:"json" help:"Print the full report as JSON."`
}

func (c *StatsCmd) Run(ctx *cli.Context) error {
	if c.Days < 0 || c.Heatmap < 0 {
		return fmt.Errorf("window sizes must not be negative")
	}
	report, err := ctx.Report(ctx.Ctx(), c.Days, c.Heatmap)
	if err != nil {
		return err
	}

	if c.JSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		ctx.Println(string(data))
		return nil
	}

	s := report.Summary
	ctx.Printf("Stats for %s\n\n", report.Today)
	ctx.Printf("  Habits:            %d\n", s.TotalHabits)
	ctx.Printf("  Done today:        %d/%d\n", s.CompletedToday, s.TotalHabits)
	ctx.Printf("  Total completions: %d\n", s.TotalCompletions)
	ctx.Printf("  Active streaks:    %d (longest %d)\n", s.ActiveStreaks, s.LongestStreak)
	ctx.Printf("  Strength:          %d%%\n", s.Strength)
	ctx.Printf("  Consistency:       %d%% over %d days\n\n", report.Score, len(report.Ratios))

	if len(report.Ratios) > 0 {
		ctx.Println("Daily ratios:")
		for _, r := range report.Ratios {
			ctx.Printf("  %s  %-10s %3.0f%%  (%d/%d)\n", r.Date, bar(r.Ratio, 10), r.Ratio*100, r.Completed, r.Total)
		}
		ctx.Println()
	}

	if len(report.Heatmap) > 0 {
		ctx.Printf("Heatmap (%d days, oldest first):\n", len(report.Heatmap))
		ctx.Printf("%s", RenderHeatmap(report.Heatmap, 7))
	}
	return nil
}

// tierGlyphs holds one glyph per heatmap tier, 0 through 4.
var tierGlyphs = []string{"·", "░", "▒", "▓", "█"}

// RenderHeatmap lays cells out in rows of width, one glyph per day.
func RenderHeatmap(cells []analytics.HeatCell, width int) string {
	if width <= 0 {
		width = 7
	}
	var b strings.Builder
	for i, cell := range cells {
		if i%width == 0 {
			b.WriteString("  ")
		}
		b.WriteString(tierGlyphs[cell.Tier])
		if i%width == width-1 || i == len(cells)-1 {
			b.WriteString("\n")
		} else {
			b.WriteString(" ")
		}
	}
	return b.String()
}

func bar(ratio float64, width int) string {
	filled := int(ratio*float64(width) + 0.5)
	if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
