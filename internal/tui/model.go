package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/pocket/internal/analytics"
	"github.com/julianstephens/pocket/internal/coach"
	"github.com/julianstephens/pocket/internal/models"
	"github.com/julianstephens/pocket/internal/tracker"
	"github.com/julianstephens/pocket/internal/tui/components/chat"
	"github.com/julianstephens/pocket/internal/tui/components/stats"
	"github.com/julianstephens/pocket/internal/tui/components/today"
)

type SessionState int

const (
	StateToday SessionState = iota
	StateCoach
	StateStats
	StateAddHabit
	StateConfirmDelete
)

// tabCount is the number of tab states at the start of SessionState.
const tabCount = 3

// HabitFormModel backs the creation wizard.
type HabitFormModel struct {
	Name     string
	Cue      string
	Identity string
}

type ConfirmationFormModel struct {
	Confirmed bool
}

// HabitsMsg carries a fresh snapshot pushed by the feed.
type HabitsMsg struct {
	Habits []models.Habit
}

// mutationMsg reports the outcome of a write issued from the TUI.
type mutationMsg struct {
	action string
	err    error
}

// createdMsg reports the outcome of the creation wizard.
type createdMsg struct {
	habit models.Habit
	err   error
}

// Options configures a Model.
type Options struct {
	Tracker     *tracker.Tracker
	Coach       coach.Coach
	Now         func() time.Time
	RatioDays   int
	HeatmapDays int
	Habits      []models.Habit
}

type Model struct {
	ctx     context.Context
	tracker *tracker.Tracker
	now     func() time.Time

	ratioDays   int
	heatmapDays int

	state      SessionState
	returnTo   SessionState
	keys       KeyMap
	help       help.Model
	habits     []models.Habit
	todayModel today.Model
	chatModel  chat.Model
	statsModel stats.Model

	form             *huh.Form
	habitForm        *HabitFormModel
	confirmationForm *ConfirmationFormModel
	habitToDeleteID  string
	formError        string
	saving           bool
	status           string
	statusIsError    bool

	quitting bool
	width    int
	height   int
}

func NewModel(ctx context.Context, opts Options) Model {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	m := Model{
		ctx:         ctx,
		tracker:     opts.Tracker,
		now:         opts.Now,
		ratioDays:   opts.RatioDays,
		heatmapDays: opts.HeatmapDays,
		state:       StateToday,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		todayModel:  today.New(0, 0),
		chatModel:   chat.New(opts.Coach, 0, 0),
		statsModel:  stats.New(),
	}
	m.setHabits(opts.Habits)
	return m
}

// setHabits installs a confirmed snapshot and recomputes every derived view.
func (m *Model) setHabits(habits []models.Habit) {
	m.habits = habits
	now := m.now()
	m.todayModel.SetHabits(habits, analytics.DayKey(now))
	m.statsModel.SetReport(analytics.Build(habits, now, m.ratioDays, m.heatmapDays))
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Help}
	switch m.state {
	case StateToday:
		keys = append(keys, m.keys.Add, m.keys.Toggle, m.keys.Delete, m.keys.Quit)
	case StateCoach:
		keys = append(keys, m.keys.Send, m.keys.ForceQuit)
	default:
		keys = append(keys, m.keys.Quit)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.ForceQuit, m.keys.Help}
	navigation := []key.Binding{m.keys.Up, m.keys.Down}
	actions := []key.Binding{m.keys.Add, m.keys.Toggle, m.keys.Delete, m.keys.Send}
	return [][]key.Binding{global, navigation, actions}
}

func (m Model) Init() tea.Cmd {
	return nil
}
