package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/pocket/internal/coach"
)

var (
	coachStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	userStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
)

// Line is one message of the transcript.
type Line struct {
	FromUser bool
	Text     string
}

type Model struct {
	coach      coach.Coach
	input      textinput.Model
	viewport   viewport.Model
	transcript []Line
	width      int
}

func New(c coach.Coach, width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "Tell the coach how it's going…"
	ti.CharLimit = 500
	ti.Prompt = "> "

	m := Model{
		coach:    c,
		input:    ti,
		viewport: viewport.New(width, max(height-3, 1)),
		width:    width,
		transcript: []Line{
			{Text: c.Greeting(coach.English)},
		},
	}
	m.refresh()
	return m
}

// Focus hands keyboard input to the text box.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}

func (m *Model) Blur() {
	m.input.Blur()
}

// Transcript returns every message so far, oldest first.
func (m Model) Transcript() []Line {
	return m.transcript
}

// Send answers text and appends both sides to the transcript.
func (m *Model) Send(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	m.transcript = append(m.transcript,
		Line{FromUser: true, Text: text},
		Line{Text: m.coach.Reply(text)},
	)
	m.refresh()
}

func (m *Model) refresh() {
	wrap := lipgloss.NewStyle().Width(max(m.width-4, 20))
	var b strings.Builder
	for _, line := range m.transcript {
		if line.FromUser {
			b.WriteString(userStyle.Render("you") + "\n")
		} else {
			b.WriteString(coachStyle.Render("coach") + "\n")
		}
		b.WriteString(wrap.Render(line.Text) + "\n\n")
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEnter {
		m.Send(m.input.Value())
		m.input.Reset()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	// Letters belong to the input; only paging keys scroll the transcript.
	if k, ok := msg.(tea.KeyMsg); !ok || k.Type == tea.KeyPgUp || k.Type == tea.KeyPgDown {
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), "", m.input.View())
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.viewport.Width = width
	m.viewport.Height = max(height-3, 1)
	m.input.Width = max(width-4, 10)
	m.refresh()
}
