package command

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskboard/internal/theme"
)

// Command names understood by the palette.
const (
	Refresh   = "refresh"
	Projects  = "projects"
	Summarize = "summarize"
	Ask       = "ask"
	Help      = "help"
	Quit      = "quit"
)

var aliases = map[string]string{
	"sync":    Refresh,
	"reload":  Refresh,
	"summary": Summarize,
	"q":       Quit,
	"?":       Help,
}

// Command is a parsed palette entry. Arg holds everything after the name,
// e.g. the question for "ask".
type Command struct {
	Name string
	Arg  string
}

// CommandMsg is emitted when the user executes a command.
type CommandMsg Command

// CancelMsg is emitted when the palette is dismissed.
type CancelMsg struct{}

// Parse turns palette input into a Command.
func Parse(input string) (Command, error) {
	input = strings.TrimSpace(input)
	name, arg, _ := strings.Cut(input, " ")
	name = strings.ToLower(name)
	if canonical, ok := aliases[name]; ok {
		name = canonical
	}

	switch name {
	case Refresh, Projects, Summarize, Help, Quit:
		return Command{Name: name}, nil
	case Ask:
		arg = strings.TrimSpace(arg)
		if arg == "" {
			return Command{}, fmt.Errorf("ask needs a question")
		}
		return Command{Name: Ask, Arg: arg}, nil
	case "":
		return Command{}, fmt.Errorf("empty command")
	}
	return Command{}, fmt.Errorf("unknown command %q", name)
}

// Model is the command palette view.
type Model struct {
	input  textinput.Model
	err    string
	width  int
	height int
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "refresh, projects, summarize, ask <question>, help, quit"
	ti.Prompt = ": "
	ti.ShowSuggestions = true
	ti.SetSuggestions([]string{Refresh, Projects, Summarize, Ask + " ", Help, Quit})
	ti.Width = width - 6

	return Model{
		input:  ti,
		width:  width,
		height: height,
	}
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc":
			m.input.Reset()
			m.err = ""
			return m, func() tea.Msg { return CancelMsg{} }

		case "enter":
			c, err := Parse(m.input.Value())
			if err != nil {
				m.err = err.Error()
				return m, nil
			}
			m.input.Reset()
			m.err = ""
			return m, func() tea.Msg { return CommandMsg(c) }
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the command palette.
func (m Model) View() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1).
		Render("Command Palette")

	parts := []string{title, m.input.View()}
	if m.err != "" {
		parts = append(parts, "", lipgloss.NewStyle().Foreground(theme.ColorRed).Render(m.err))
	}

	return theme.PanelStyle.
		Width(m.width - 4).
		Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}
