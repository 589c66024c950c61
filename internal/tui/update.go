package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	pocketerrors "github.com/julianstephens/pocket/internal/errors"
	"github.com/julianstephens/pocket/internal/tracker"
	"github.com/julianstephens/pocket/internal/tui/components/today"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		contentHeight := max(msg.Height-6, 1)
		m.todayModel.SetSize(msg.Width-4, contentHeight)
		m.chatModel.SetSize(msg.Width-4, contentHeight)
		m.statsModel.SetSize(msg.Width-4, contentHeight)
		return m, nil

	case HabitsMsg:
		m.setHabits(msg.Habits)
		return m, nil

	case mutationMsg:
		// The list only changes when the feed pushes a snapshot, so a failed
		// write leaves the last confirmed state on screen.
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("%s failed: %v", msg.action, msg.err), true)
		} else {
			m.setStatus("", false)
		}
		return m, nil

	case createdMsg:
		m.saving = false
		if msg.err != nil {
			m.formError = reason(msg.err)
			m.form = NewHabitForm(m.habitForm)
			return m, m.form.Init()
		}
		m.formError = ""
		m.state = StateToday
		m.setStatus(fmt.Sprintf("Added %s", msg.habit.Name), false)
		return m, nil

	case today.AddHabitMsg:
		m.habitForm = &HabitFormModel{}
		m.formError = ""
		m.saving = false
		m.form = NewHabitForm(m.habitForm)
		m.state = StateAddHabit
		return m, m.form.Init()

	case today.ToggleHabitMsg:
		return m, m.toggleCmd(msg.ID)

	case today.DeleteHabitMsg:
		m.habitToDeleteID = msg.ID
		m.confirmationForm = &ConfirmationFormModel{}
		m.form = NewDeleteForm(msg.Name, m.confirmationForm)
		m.state = StateConfirmDelete
		return m, m.form.Init()
	}

	switch m.state {
	case StateAddHabit:
		return m.updateAddHabit(msg)
	case StateConfirmDelete:
		return m.updateConfirmDelete(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.ForceQuit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Tab):
			cmd := m.switchTab((m.state + 1) % tabCount)
			return m, cmd
		case key.Matches(msg, m.keys.ShiftTab):
			cmd := m.switchTab((m.state - 1 + tabCount) % tabCount)
			return m, cmd
		}
		// In the coach tab every printable key belongs to the chat input.
		if m.state != StateCoach {
			switch {
			case key.Matches(msg, m.keys.Quit):
				m.quitting = true
				return m, tea.Quit
			case key.Matches(msg, m.keys.Help):
				m.help.ShowAll = !m.help.ShowAll
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	switch m.state {
	case StateToday:
		m.todayModel, cmd = m.todayModel.Update(msg)
	case StateCoach:
		m.chatModel, cmd = m.chatModel.Update(msg)
	}
	return m, cmd
}

func (m *Model) switchTab(next SessionState) tea.Cmd {
	if m.state == StateCoach {
		m.chatModel.Blur()
	}
	m.state = next
	switch next {
	case StateCoach:
		return m.chatModel.Focus()
	case StateStats:
		// The day may have rolled over since the last snapshot.
		m.setHabits(m.habits)
	}
	return nil
}

func (m *Model) setStatus(text string, isError bool) {
	m.status = text
	m.statusIsError = isError
}

func (m Model) updateAddHabit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.formError = ""
		m.state = StateToday
		return m, nil
	}

	var cmds []tea.Cmd
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	cmds = append(cmds, cmd)

	switch m.form.State {
	case huh.StateCompleted:
		// Keep the wizard on screen until the write is confirmed.
		if !m.saving {
			m.saving = true
			cmds = append(cmds, m.createCmd(*m.habitForm))
		}
	case huh.StateAborted:
		m.formError = ""
		m.state = StateToday
	}
	return m, tea.Batch(cmds...)
}

func (m Model) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.habitToDeleteID = ""
		m.state = StateToday
		return m, nil
	}

	var cmds []tea.Cmd
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	cmds = append(cmds, cmd)

	switch m.form.State {
	case huh.StateCompleted:
		if m.confirmationForm.Confirmed && m.habitToDeleteID != "" {
			cmds = append(cmds, m.deleteCmd(m.habitToDeleteID))
		}
		m.habitToDeleteID = ""
		m.state = StateToday
	case huh.StateAborted:
		m.habitToDeleteID = ""
		m.state = StateToday
	}
	return m, tea.Batch(cmds...)
}

// Writes run as commands: the feed delivers the resulting snapshot through
// Program.Send, which must not be called from the update loop itself.

func (m Model) toggleCmd(id string) tea.Cmd {
	t, ctx := m.tracker, m.ctx
	return func() tea.Msg {
		_, err := t.ToggleToday(ctx, id)
		return mutationMsg{action: "toggle", err: err}
	}
}

func (m Model) deleteCmd(id string) tea.Cmd {
	t, ctx := m.tracker, m.ctx
	return func() tea.Msg {
		err := t.Delete(ctx, id, true)
		return mutationMsg{action: "delete", err: err}
	}
}

func (m Model) createCmd(fm HabitFormModel) tea.Cmd {
	t, ctx := m.tracker, m.ctx
	return func() tea.Msg {
		h, err := t.Create(ctx, tracker.Draft{Name: fm.Name, Cue: fm.Cue, Identity: fm.Identity})
		return createdMsg{habit: h, err: err}
	}
}

// reason extracts the user-facing part of err.
func reason(err error) string {
	var ve *pocketerrors.ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	return err.Error()
}
