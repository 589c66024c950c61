package stats

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/pocket/internal/analytics"
)

// tierColors maps heatmap tiers 0-4 to a green ramp.
var tierColors = []lipgloss.Color{"237", "22", "28", "34", "46"}

var (
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)
)

var sparkChars = []rune("▁▂▃▄▅▆▇█")

type Model struct {
	report analytics.Report
	width  int
}

func New() Model {
	return Model{}
}

func (m *Model) SetReport(r analytics.Report) {
	m.report = r
}

func (m *Model) SetSize(width, _ int) {
	m.width = width
}

func figure(label string, value string) string {
	return boxStyle.Render(labelStyle.Render(label) + "\n" + valueStyle.Render(value))
}

func (m Model) View() string {
	r := m.report
	s := r.Summary

	figures := lipgloss.JoinHorizontal(lipgloss.Top,
		figure("Consistency", fmt.Sprintf("%d%%", r.Score)),
		figure("Today", fmt.Sprintf("%d/%d", s.CompletedToday, s.TotalHabits)),
		figure("Completions", fmt.Sprintf("%d", s.TotalCompletions)),
		figure("Active streaks", fmt.Sprintf("%d", s.ActiveStreaks)),
		figure("Strength", fmt.Sprintf("%d%%", s.Strength)),
	)

	trend := labelStyle.Render(fmt.Sprintf("Last %d days  ", len(r.Ratios))) + Sparkline(analytics.Ratios(r.Ratios))
	heat := labelStyle.Render(fmt.Sprintf("Heatmap, %d days", len(r.Heatmap))) + "\n" + Heatmap(r.Heatmap, 7)

	return lipgloss.JoinVertical(lipgloss.Left, figures, "", trend, "", heat)
}

// Sparkline draws one bar per ratio.
func Sparkline(ratios []float64) string {
	var b strings.Builder
	top := len(sparkChars) - 1
	for _, r := range ratios {
		idx := int(r*float64(top) + 0.5)
		idx = max(0, min(top, idx))
		b.WriteRune(sparkChars[idx])
	}
	return b.String()
}

// Heatmap renders cells as colored squares in rows of width.
func Heatmap(cells []analytics.HeatCell, width int) string {
	var rows []string
	var row []string
	for i, cell := range cells {
		tier := max(0, min(len(tierColors)-1, cell.Tier))
		row = append(row, lipgloss.NewStyle().Foreground(tierColors[tier]).Render("■"))
		if len(row) == width || i == len(cells)-1 {
			rows = append(rows, strings.Join(row, " "))
			row = nil
		}
	}
	return strings.Join(rows, "\n")
}
