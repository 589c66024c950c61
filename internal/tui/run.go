package tui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/pocket/internal/logger"
	"github.com/julianstephens/pocket/internal/models"
	"github.com/julianstephens/pocket/internal/storage"
)

// sender forwards feed snapshots into a running program. Snapshots that arrive
// before the program exists are kept as the initial state.
type sender struct {
	mu      sync.Mutex
	program *tea.Program
	initial []models.Habit
}

func (s *sender) deliver(habits []models.Habit) {
	s.mu.Lock()
	p := s.program
	if p == nil {
		s.initial = habits
	}
	s.mu.Unlock()
	if p != nil {
		p.Send(HabitsMsg{Habits: habits})
	}
}

// Run subscribes to feed for userID and drives the TUI until the user quits.
func Run(ctx context.Context, feed *storage.Feed, userID string, opts Options, programOpts ...tea.ProgramOption) error {
	s := &sender{}
	unsubscribe, err := feed.Subscribe(ctx, userID, s.deliver)
	if err != nil {
		return err
	}
	defer unsubscribe()

	s.mu.Lock()
	opts.Habits = s.initial
	p := tea.NewProgram(NewModel(ctx, opts), append([]tea.ProgramOption{tea.WithContext(ctx)}, programOpts...)...)
	s.program = p
	s.mu.Unlock()

	logger.Debug("Starting TUI", "user", userID, "habits", len(opts.Habits))
	_, err = p.Run()
	return err
}
