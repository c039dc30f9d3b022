package projects

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskboard/internal/cache"
	"github.com/nhle/taskboard/internal/keys"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/theme"
	"github.com/nhle/taskboard/internal/ui"
)

// ProjectSelectedMsg asks the parent to open a project's board.
type ProjectSelectedMsg struct {
	ProjectID string
}

// Editor renames projects. Renames are not optimistic; the list reloads
// once the server answers.
type Editor interface {
	UpdateProject(ctx context.Context, id string, patch model.ProjectPatch) (*model.Project, error)
}

type projectMode int

const (
	modeList projectMode = iota
	modeForm
	modeConfirmDelete
)

type formBindings struct {
	name        string
	description string
	confirm     bool
}

type projectsLoadedMsg struct{ err error }
type projectSavedMsg struct{ err error }

// Model is the Bubble Tea model for the project list.
type Model struct {
	mode        projectMode
	rec         *cache.Reconciler
	editor      Editor
	keys        *keys.KeyMap
	selectedIdx int
	editingID   string
	form        *huh.Form
	confirmForm *huh.Form
	fb          *formBindings
	width       int
	height      int
}

// New creates the project list.
func New(rec *cache.Reconciler, editor Editor, k *keys.KeyMap, width, height int) Model {
	return Model{
		mode:   modeList,
		rec:    rec,
		editor: editor,
		keys:   k,
		fb:     &formBindings{},
		width:  width, height: height,
	}
}

// Init loads projects from the server.
func (m Model) Init() tea.Cmd {
	return m.loadProjects()
}

// Capturing reports whether a form owns the keyboard.
func (m Model) Capturing() bool {
	return m.mode != modeList
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case projectsLoadedMsg:
		m.clampSelection()
		if msg.err != nil {
			return m, ui.Status(fmt.Sprintf("Could not load projects: %v", msg.err), true)
		}
		return m, nil

	case projectSavedMsg:
		m.mode = modeList
		if msg.err != nil {
			return m, ui.Status(fmt.Sprintf("Could not save project: %v", msg.err), true)
		}
		return m, tea.Batch(m.loadProjects(), ui.Status("Project saved", false))

	case ui.MutationResolvedMsg:
		m.clampSelection()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateActiveForm(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.mode {
	case modeForm:
		return m.updateForm(msg)
	case modeConfirmDelete:
		return m.updateConfirm(msg)
	}

	projects := m.projects()
	switch {
	case key.Matches(msg, m.keys.Down):
		if len(projects) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(projects)
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if len(projects) > 0 {
			m.selectedIdx--
			if m.selectedIdx < 0 {
				m.selectedIdx = len(projects) - 1
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.Select):
		p, ok := m.selected()
		if !ok {
			return m, nil
		}
		if cache.IsTemp(p.ID) {
			return m, ui.Status("Project is still being created", false)
		}
		return m, func() tea.Msg { return ProjectSelectedMsg{ProjectID: p.ID} }

	case key.Matches(msg, m.keys.Refresh):
		return m, m.loadProjects()

	case key.Matches(msg, m.keys.New):
		m.editingID = ""
		m.fb.name = ""
		m.fb.description = ""
		m.form = m.buildForm()
		m.mode = modeForm
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Edit):
		p, ok := m.selected()
		if !ok || cache.IsTemp(p.ID) {
			return m, nil
		}
		m.editingID = p.ID
		m.fb.name = p.Name
		m.fb.description = p.Description
		m.form = m.buildForm()
		m.mode = modeForm
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Delete):
		p, ok := m.selected()
		if !ok || cache.IsTemp(p.ID) {
			return m, nil
		}
		m.fb.confirm = false
		m.confirmForm = m.buildConfirmForm(p.Name)
		m.mode = modeConfirmDelete
		return m, m.confirmForm.Init()
	}
	return m, nil
}

func (m Model) buildForm() *huh.Form {
	title := "New project"
	if m.editingID != "" {
		title = "Edit project"
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Description(title).
				Placeholder("Project name").
				Value(&m.fb.name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),
			huh.NewText().
				Title("Description").
				Placeholder("Optional description").
				Value(&m.fb.description),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) buildConfirmForm(name string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete project %q?", name)).
				Description("Its columns and tasks are deleted too.").
				Affirmative("Yes, delete").
				Negative("Cancel").
				Value(&m.fb.confirm),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}
	switch m.form.State {
	case huh.StateCompleted:
		m.mode = modeList
		if m.editingID != "" {
			return m, m.saveProject(m.editingID, m.fb.name, m.fb.description)
		}
		return m.createProject(m.fb.name, m.fb.description)
	case huh.StateAborted:
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

func (m Model) updateConfirm(msg tea.Msg) (Model, tea.Cmd) {
	if m.confirmForm == nil {
		return m, nil
	}
	mdl, cmd := m.confirmForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.confirmForm = f
	}
	switch m.confirmForm.State {
	case huh.StateCompleted:
		m.mode = modeList
		if p, ok := m.selected(); ok && m.fb.confirm {
			return m.deleteProject(p.ID)
		}
		return m, nil
	case huh.StateAborted:
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

func (m Model) updateActiveForm(msg tea.Msg) (Model, tea.Cmd) {
	switch m.mode {
	case modeForm:
		return m.updateForm(msg)
	case modeConfirmDelete:
		return m.updateConfirm(msg)
	}
	return m, nil
}

// createProject stages the new project at the head of the list and sends it.
func (m Model) createProject(name, description string) (Model, tea.Cmd) {
	mut, err := m.rec.StageCreateProject(model.NewProjectInput{
		Name:        strings.TrimSpace(name),
		Description: description,
	})
	if err != nil {
		return m, ui.Status(err.Error(), true)
	}
	m.selectedIdx = 0
	return m, ui.Resolve(m.rec, mut)
}

// deleteProject stages the removal and sends it.
func (m Model) deleteProject(id string) (Model, tea.Cmd) {
	mut, err := m.rec.StageDeleteProject(id)
	if err != nil {
		return m, ui.Status(err.Error(), true)
	}
	m.clampSelection()
	return m, ui.Resolve(m.rec, mut)
}

// View renders the project list.
func (m Model) View() string {
	switch m.mode {
	case modeForm:
		return m.viewForm(m.form)
	case modeConfirmDelete:
		return m.viewForm(m.confirmForm)
	default:
		return m.viewList()
	}
}

func (m Model) viewList() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).MarginBottom(1)
	b.WriteString(titleStyle.Render("Projects"))
	b.WriteString("\n\n")

	projects := m.projects()
	if len(projects) == 0 {
		b.WriteString(theme.HelpStyle.Render("No projects yet. Press 'n' to create one."))
	}
	for i, p := range projects {
		label := p.Name
		if p.Description != "" {
			label += lipgloss.NewStyle().Foreground(theme.ColorGray).Render("  " + firstLine(p.Description))
		}
		switch {
		case i == m.selectedIdx:
			b.WriteString(theme.SelectedItemStyle.Render(label))
		case cache.IsTemp(p.ID):
			b.WriteString(theme.PendingItemStyle.Render(label))
		default:
			b.WriteString(theme.ListItemStyle.Render(label))
		}
		b.WriteString("\n")
	}

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Height(m.height).Render(b.String())
}

func (m Model) viewForm(f *huh.Form) string {
	if f == nil {
		return ""
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(f.View())
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Selected returns the highlighted project.
func (m Model) Selected() (model.Project, bool) {
	return m.selected()
}

func (m Model) selected() (model.Project, bool) {
	projects := m.projects()
	if m.selectedIdx < 0 || m.selectedIdx >= len(projects) {
		return model.Project{}, false
	}
	return projects[m.selectedIdx], true
}

func (m Model) projects() []model.Project {
	return m.rec.Cache().Projects()
}

func (m *Model) clampSelection() {
	n := len(m.projects())
	if m.selectedIdx >= n {
		m.selectedIdx = n - 1
	}
	if m.selectedIdx < 0 {
		m.selectedIdx = 0
	}
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 4
	if h < 10 {
		h = 10
	}
	return h
}

func (m Model) loadProjects() tea.Cmd {
	rec := m.rec
	return func() tea.Msg {
		ctx, cancel := ui.Context()
		defer cancel()
		return projectsLoadedMsg{err: rec.LoadProjects(ctx)}
	}
}

func (m Model) saveProject(id, name, description string) tea.Cmd {
	editor := m.editor
	name = strings.TrimSpace(name)
	return func() tea.Msg {
		ctx, cancel := ui.Context()
		defer cancel()
		_, err := editor.UpdateProject(ctx, id, model.ProjectPatch{
			Name:        &name,
			Description: &description,
		})
		return projectSavedMsg{err: err}
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
