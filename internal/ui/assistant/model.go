package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskboard/internal/theme"
	"github.com/nhle/taskboard/internal/ui"
)

// CloseMsg signals the parent to close the assistant panel.
type CloseMsg struct{}

// Backend answers questions about a board. *client.Client satisfies it.
type Backend interface {
	Summarize(ctx context.Context, projectID string) (string, error)
	Ask(ctx context.Context, projectID, question string) (string, error)
}

type answerMsg struct {
	projectID string
	text      string
	err       error
}

// displayMessage represents a message rendered in the conversation viewport.
type displayMessage struct {
	Role    string
	Content string
}

// Model is a chat panel scoped to a single board. The server builds the
// board snapshot, so the panel only sends the project id and question.
type Model struct {
	backend   Backend
	projectID string
	title     string
	input     textarea.Model
	viewport  viewport.Model
	spinner   spinner.Model
	messages  []displayMessage
	waiting   bool
	width     int
	height    int
}

// New creates the assistant panel.
func New(backend Backend, width, height int) Model {
	ta := textarea.New()
	ta.Placeholder = "Ask about this board..."
	ta.Prompt = "> "
	ta.ShowLineNumbers = false
	ta.SetWidth(width - 4)
	ta.SetHeight(3)
	ta.CharLimit = 2000
	ta.Focus()

	vp := viewport.New(width-4, viewportHeight(height))

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.ColorMagenta)

	return Model{
		backend:  backend,
		input:    ta,
		viewport: vp,
		spinner:  sp,
		width:    width,
		height:   height,
	}
}

// Open starts a fresh conversation about a project. With summarize set the
// board summary is requested immediately.
func (m *Model) Open(projectID, projectName string, summarize bool) tea.Cmd {
	m.projectID = projectID
	m.title = projectName
	m.messages = m.messages[:0]
	m.waiting = false
	m.input.Reset()

	cmds := []tea.Cmd{m.input.Focus()}
	if summarize {
		m.messages = append(m.messages, displayMessage{Role: "You", Content: "Summarize this board."})
		m.waiting = true
		cmds = append(cmds, m.spinner.Tick, m.summarize())
	}
	m.refreshViewport()
	return tea.Batch(cmds...)
}

// Waiting reports whether a request is in flight.
func (m Model) Waiting() bool {
	return m.waiting
}

// Init returns the initial command for the panel.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update handles messages for the panel.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case answerMsg:
		if msg.projectID != m.projectID {
			return m, nil
		}
		m.waiting = false
		if msg.err != nil {
			m.messages = append(m.messages, displayMessage{
				Role:    "Error",
				Content: msg.err.Error(),
			})
		} else {
			m.messages = append(m.messages, displayMessage{
				Role:    "Assistant",
				Content: msg.text,
			})
		}
		m.refreshViewport()
		return m, nil

	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refreshViewport()
		return m, cmd

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, func() tea.Msg { return CloseMsg{} }

	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case "enter":
		if m.waiting {
			return m, nil
		}
		text := m.input.Value()
		m.input.Reset()
		return m, m.Submit(text)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// Submit sends a question about the open board. Blank questions and
// questions asked while an answer is pending are ignored.
func (m *Model) Submit(question string) tea.Cmd {
	question = strings.TrimSpace(question)
	if question == "" || m.waiting {
		return nil
	}
	m.messages = append(m.messages, displayMessage{Role: "You", Content: question})
	m.waiting = true
	m.refreshViewport()
	return tea.Batch(m.spinner.Tick, m.ask(question))
}

func (m Model) summarize() tea.Cmd {
	backend := m.backend
	pid := m.projectID
	return func() tea.Msg {
		ctx, cancel := ui.Context()
		defer cancel()
		text, err := backend.Summarize(ctx, pid)
		return answerMsg{projectID: pid, text: text, err: err}
	}
}

func (m Model) ask(question string) tea.Cmd {
	backend := m.backend
	pid := m.projectID
	return func() tea.Msg {
		ctx, cancel := ui.Context()
		defer cancel()
		text, err := backend.Ask(ctx, pid, question)
		return answerMsg{projectID: pid, text: text, err: err}
	}
}

func (m *Model) refreshViewport() {
	m.viewport.SetContent(m.renderConversation())
	m.viewport.GotoBottom()
}

func (m Model) renderConversation() string {
	if len(m.messages) == 0 {
		return theme.HelpStyle.Render(
			"Ask anything about the tasks on this board, or press esc and 's' for a summary.")
	}

	roleStyle := lipgloss.NewStyle().Bold(true)
	contentStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite).Width(m.width - 6)

	var sections []string
	for _, msg := range m.messages {
		var label string
		switch msg.Role {
		case "You":
			label = roleStyle.Foreground(theme.ColorBlue).Render("You:")
		case "Assistant":
			label = roleStyle.Foreground(theme.ColorGreen).Render("Assistant:")
		default:
			label = roleStyle.Foreground(theme.ColorRed).Render(msg.Role + ":")
		}
		sections = append(sections, label, contentStyle.Render(msg.Content), "")
	}

	if m.waiting {
		sections = append(sections, fmt.Sprintf("%s %s", m.spinner.View(), theme.HelpStyle.Render("thinking")))
	}
	return strings.Join(sections, "\n")
}

// View renders the panel.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	title := "Assistant"
	if m.title != "" {
		title += ": " + m.title
	}

	separator := lipgloss.NewStyle().Foreground(theme.ColorSubtle).Render(
		strings.Repeat("─", max(0, min(m.width-6, 80))),
	)

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Render(title),
		m.viewport.View(),
		separator,
		m.input.View(),
	)
	return theme.PanelStyle.Width(m.width - 4).Render(content)
}

// SetSize updates the panel dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.SetWidth(width - 4)
	m.viewport.Width = width - 4
	m.viewport.Height = viewportHeight(height)
}

func viewportHeight(height int) int {
	h := height - 10
	if h < 4 {
		h = 4
	}
	return h
}
