package app

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/nhle/taskboard/internal/cache"
	"github.com/nhle/taskboard/internal/keys"
	"github.com/nhle/taskboard/internal/ui"
	"github.com/nhle/taskboard/internal/ui/assistant"
	"github.com/nhle/taskboard/internal/ui/command"
	boardview "github.com/nhle/taskboard/internal/ui/board"
	helpview "github.com/nhle/taskboard/internal/ui/help"
	"github.com/nhle/taskboard/internal/ui/projects"
)

// Backend is everything the terminal client needs from the server.
// *client.Client satisfies it.
type Backend interface {
	cache.Backend
	projects.Editor
	assistant.Backend
}

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewProjects ViewState = iota
	ViewBoard
	ViewAssistant
	ViewHelp
	ViewCommand
)

// Model is the root Bubble Tea model. It routes messages between views;
// all board data lives in the reconciler's cache.
type Model struct {
	currentView   ViewState
	previousView  ViewState
	layout        ui.Layout
	rec           *cache.Reconciler
	keys          *keys.KeyMap
	projectView   projects.Model
	boardView     boardview.Model
	assistantView assistant.Model
	helpView      helpview.Model
	commandView   command.Model
	status        string
	statusIsError bool
	ready         bool
}

// New creates the root model with an empty cache in front of backend.
func New(backend Backend, log logrus.FieldLogger) Model {
	k := keys.DefaultKeyMap()
	rec := cache.NewReconciler(cache.NewBoardCache(), backend, log)

	return Model{
		currentView:   ViewProjects,
		rec:           rec,
		keys:          k,
		layout:        ui.NewLayout(80, 24),
		projectView:   projects.New(rec, backend, k, 80, 22),
		boardView:     boardview.New(rec, k, 80, 22),
		assistantView: assistant.New(backend, 80, 22),
		helpView:      helpview.New(k, 80, 22),
		commandView:   command.New(80, 22),
	}
}

// Init loads the project list.
func (m Model) Init() tea.Cmd {
	return m.projectView.Init()
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.projectView.SetSize(w, h)
		m.boardView.SetSize(w, h)
		m.assistantView.SetSize(w, h)
		m.helpView.SetSize(w, h)
		m.commandView.SetSize(w, h)
		return m, nil

	case ui.StatusMsg:
		m.status = msg.Text
		m.statusIsError = msg.IsError
		return m, nil

	case ui.MutationResolvedMsg:
		if msg.Err != nil {
			m.status = msg.Err.Error()
			m.statusIsError = true
		} else if !m.statusIsError {
			m.status = ""
		}
		var cmd1, cmd2 tea.Cmd
		m.projectView, cmd1 = m.projectView.Update(msg)
		m.boardView, cmd2 = m.boardView.Update(msg)
		return m, tea.Batch(cmd1, cmd2)

	case projects.ProjectSelectedMsg:
		m.currentView = ViewBoard
		m.clearStatus()
		return m, m.boardView.Open(msg.ProjectID)

	case boardview.BoardCloseMsg:
		m.currentView = ViewProjects
		m.clearStatus()
		return m, nil

	case boardview.AssistantRequestMsg:
		name := ""
		if p, ok := m.rec.Cache().Project(msg.ProjectID); ok {
			name = p.Name
		}
		m.currentView = ViewAssistant
		return m, m.assistantView.Open(msg.ProjectID, name, msg.Summarize)

	case assistant.CloseMsg:
		m.currentView = ViewBoard
		return m, nil

	case command.CancelMsg:
		m.currentView = m.previousView
		return m, nil

	case command.CommandMsg:
		m.currentView = m.previousView
		return m.executeCommand(command.Command(msg))

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		m.clearStatus()

		if !m.capturing() {
			switch {
			case key.Matches(msg, m.keys.Quit):
				return m, tea.Quit

			case key.Matches(msg, m.keys.Help):
				if m.currentView == ViewHelp {
					m.currentView = m.previousView
					return m, nil
				}
				m.previousView = m.currentView
				m.currentView = ViewHelp
				return m, nil

			case key.Matches(msg, m.keys.Back) && m.currentView == ViewHelp:
				m.currentView = m.previousView
				return m, nil

			case key.Matches(msg, m.keys.Command) && m.currentView != ViewHelp:
				m.previousView = m.currentView
				m.currentView = ViewCommand
				return m, m.commandView.Focus()
			}
		}
	}

	return m.updateActiveView(msg)
}

// capturing reports whether the active view wants every key, e.g. while a
// form or the question box is focused.
func (m Model) capturing() bool {
	switch m.currentView {
	case ViewProjects:
		return m.projectView.Capturing()
	case ViewBoard:
		return m.boardView.Capturing()
	case ViewAssistant, ViewCommand:
		return true
	}
	return false
}

// executeCommand runs a palette command against the view it was opened from.
func (m Model) executeCommand(c command.Command) (tea.Model, tea.Cmd) {
	boardOpen := m.boardView.ProjectID() != "" &&
		(m.currentView == ViewBoard || m.currentView == ViewAssistant)

	switch c.Name {
	case command.Quit:
		return m, tea.Quit

	case command.Help:
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return m, nil

	case command.Projects:
		m.currentView = ViewProjects
		return m, nil

	case command.Refresh:
		if boardOpen {
			return m, m.boardView.Reload()
		}
		return m, m.projectView.Init()

	case command.Summarize, command.Ask:
		if !boardOpen {
			return m, ui.Status("Open a board first", true)
		}
		pid := m.boardView.ProjectID()
		name := ""
		if p, ok := m.rec.Cache().Project(pid); ok {
			name = p.Name
		}
		m.currentView = ViewAssistant
		if c.Name == command.Summarize {
			return m, m.assistantView.Open(pid, name, true)
		}
		open := m.assistantView.Open(pid, name, false)
		return m, tea.Batch(open, m.assistantView.Submit(c.Arg))
	}
	return m, nil
}

func (m *Model) clearStatus() {
	m.status = ""
	m.statusIsError = false
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewProjects:
		m.projectView, cmd = m.projectView.Update(msg)
	case ViewBoard:
		m.boardView, cmd = m.boardView.Update(msg)
	case ViewAssistant:
		m.assistantView, cmd = m.assistantView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader("Task Board", m.headerContext())

	status := m.status
	if status == "" {
		status = m.keyHints()
	}
	statusBar := m.layout.RenderStatusBar(status, m.statusIsError)

	return m.layout.RenderWithFrame(header, m.renderContent(), statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewProjects:
		return m.projectView.View()
	case ViewBoard:
		return m.boardView.View()
	case ViewAssistant:
		return m.assistantView.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	default:
		return ""
	}
}

func (m Model) headerContext() string {
	if m.currentView == ViewProjects ||
		(m.currentView == ViewCommand && m.previousView == ViewProjects) {
		return ""
	}
	if p, ok := m.rec.Cache().Project(m.boardView.ProjectID()); ok {
		return p.Name
	}
	return ""
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter run | tab complete | esc cancel"
	case ViewAssistant:
		return "enter send | pgup/pgdown scroll | esc close"
	case ViewBoard:
		if m.boardView.Capturing() {
			return "enter submit | esc cancel"
		}
		return "h/l column | j/k task | H/L move | n new | e edit | d delete | s summary | a ask | esc back"
	default:
		if m.projectView.Capturing() {
			return "enter submit | esc cancel"
		}
		return "enter open | n new | e edit | d delete | r refresh | ? help | q quit"
	}
}
