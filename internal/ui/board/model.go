package board

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	boardsvc "github.com/nhle/taskboard/internal/board"
	"github.com/nhle/taskboard/internal/cache"
	"github.com/nhle/taskboard/internal/keys"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/theme"
	"github.com/nhle/taskboard/internal/ui"
)

// BoardCloseMsg signals the parent to go back to the project list.
type BoardCloseMsg struct{}

// AssistantRequestMsg asks the parent to open the assistant for this board.
type AssistantRequestMsg struct {
	ProjectID string
	Summarize bool
}

type boardLoadedMsg struct {
	projectID string
	err       error
}

type boardMode int

const (
	modeBrowse boardMode = iota
	modeForm
	modeConfirmDelete
)

type formBindings struct {
	title       string
	description string
	confirm     bool
}

// Model renders one project's columns side by side and turns key presses
// into optimistic task mutations.
type Model struct {
	mode        boardMode
	rec         *cache.Reconciler
	keys        *keys.KeyMap
	projectID   string
	col         int
	row         int
	editingID   string
	loading     bool
	form        *huh.Form
	confirmForm *huh.Form
	fb          *formBindings
	width       int
	height      int
}

// New creates an empty board view. Call Open to show a project.
func New(rec *cache.Reconciler, k *keys.KeyMap, width, height int) Model {
	return Model{
		rec:    rec,
		keys:   k,
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// Open switches the view to a project and fetches its board.
func (m *Model) Open(projectID string) tea.Cmd {
	m.projectID = projectID
	m.col, m.row = 0, 0
	m.mode = modeBrowse
	m.loading = true
	return m.loadBoard()
}

// Reload fetches the open board again, dropping anything not yet confirmed.
func (m *Model) Reload() tea.Cmd {
	if m.projectID == "" {
		return nil
	}
	m.loading = true
	return m.loadBoard()
}

// ProjectID returns the open project.
func (m Model) ProjectID() string {
	return m.projectID
}

// Capturing reports whether a form owns the keyboard.
func (m Model) Capturing() bool {
	return m.mode != modeBrowse
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case boardLoadedMsg:
		if !boardsvc.SameID(msg.projectID, m.projectID) {
			return m, nil
		}
		m.loading = false
		m.clamp()
		if msg.err != nil {
			return m, ui.Status(fmt.Sprintf("Could not load board: %v", msg.err), true)
		}
		return m, nil

	case ui.MutationResolvedMsg:
		m.clamp()
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

	columns := m.columns()
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return BoardCloseMsg{} }

	case key.Matches(msg, m.keys.Left):
		if m.col > 0 {
			m.col--
			m.clamp()
		}
		return m, nil

	case key.Matches(msg, m.keys.Right):
		if m.col < len(columns)-1 {
			m.col++
			m.clamp()
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.row > 0 {
			m.row--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.row < len(m.tasksIn(m.col))-1 {
			m.row++
		}
		return m, nil

	case key.Matches(msg, m.keys.MoveLeft):
		return m.moveSelected(-1)

	case key.Matches(msg, m.keys.MoveRight):
		return m.moveSelected(1)

	case key.Matches(msg, m.keys.Refresh):
		return m, m.Reload()

	case key.Matches(msg, m.keys.Summarize):
		pid := m.projectID
		return m, func() tea.Msg { return AssistantRequestMsg{ProjectID: pid, Summarize: true} }

	case key.Matches(msg, m.keys.Ask):
		pid := m.projectID
		return m, func() tea.Msg { return AssistantRequestMsg{ProjectID: pid} }

	case key.Matches(msg, m.keys.New):
		if len(columns) == 0 {
			return m, nil
		}
		m.editingID = ""
		m.fb.title = ""
		m.fb.description = ""
		m.form = m.buildForm("New task in " + columns[m.col].Name)
		m.mode = modeForm
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Edit):
		t, ok := m.Selected()
		if !ok {
			return m, nil
		}
		if cache.IsTemp(t.ID) {
			return m, ui.Status("Task is still being saved", false)
		}
		m.editingID = t.ID
		m.fb.title = t.Title
		m.fb.description = t.Description
		m.form = m.buildForm("Edit task")
		m.mode = modeForm
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Delete):
		t, ok := m.Selected()
		if !ok {
			return m, nil
		}
		if cache.IsTemp(t.ID) {
			return m, ui.Status("Task is still being saved", false)
		}
		m.fb.confirm = false
		m.confirmForm = m.buildConfirmForm(t.Title)
		m.mode = modeConfirmDelete
		return m, m.confirmForm.Init()
	}
	return m, nil
}

// moveSelected moves the highlighted task to the neighbouring column and
// keeps the cursor on it.
func (m Model) moveSelected(delta int) (Model, tea.Cmd) {
	t, ok := m.Selected()
	if !ok {
		return m, nil
	}
	if cache.IsTemp(t.ID) {
		return m, ui.Status("Task is still being saved", false)
	}
	columns := m.columns()
	target := m.col + delta
	if target < 0 || target >= len(columns) {
		return m, nil
	}

	mut, err := m.rec.StageMoveTask(m.projectID, t.ID, columns[target].ID)
	if errors.Is(err, cache.ErrNothingToDo) {
		return m, nil
	}
	if err != nil {
		return m, ui.Status(err.Error(), true)
	}

	m.col = target
	m.row = 0
	for i, moved := range m.tasksIn(target) {
		if boardsvc.SameID(moved.ID, t.ID) {
			m.row = i
		}
	}
	return m, ui.Resolve(m.rec, mut)
}

func (m Model) createTask(title, description string) (Model, tea.Cmd) {
	columns := m.columns()
	if m.col >= len(columns) {
		return m, nil
	}
	mut, err := m.rec.StageCreateTask(model.NewTaskInput{
		ProjectID:   m.projectID,
		ColumnID:    columns[m.col].ID,
		Title:       title,
		Description: description,
	})
	if err != nil {
		return m, ui.Status(err.Error(), true)
	}
	m.row = len(m.tasksIn(m.col)) - 1
	return m, ui.Resolve(m.rec, mut)
}

func (m Model) editTask(id, title, description string) (Model, tea.Cmd) {
	mut, err := m.rec.StageUpdateTask(m.projectID, id, model.TaskPatch{
		Title:       &title,
		Description: &description,
	})
	if errors.Is(err, cache.ErrNothingToDo) {
		return m, nil
	}
	if err != nil {
		return m, ui.Status(err.Error(), true)
	}
	return m, ui.Resolve(m.rec, mut)
}

func (m Model) deleteTask(id string) (Model, tea.Cmd) {
	mut, err := m.rec.StageDeleteTask(m.projectID, id)
	if err != nil {
		return m, ui.Status(err.Error(), true)
	}
	m.clamp()
	return m, ui.Resolve(m.rec, mut)
}

func (m Model) buildForm(heading string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Description(heading).
				Placeholder("What needs doing?").
				Value(&m.fb.title).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("title is required")
					}
					return nil
				}),
			huh.NewText().
				Title("Description").
				Placeholder("Optional details").
				Value(&m.fb.description),
		),
	).WithWidth(m.formWidth())
}

func (m Model) buildConfirmForm(title string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete task %q?", title)).
				Affirmative("Yes, delete").
				Negative("Cancel").
				Value(&m.fb.confirm),
		),
	).WithWidth(m.formWidth())
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
		m.mode = modeBrowse
		if m.editingID != "" {
			return m.editTask(m.editingID, m.fb.title, m.fb.description)
		}
		return m.createTask(m.fb.title, m.fb.description)
	case huh.StateAborted:
		m.mode = modeBrowse
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
		m.mode = modeBrowse
		if t, ok := m.Selected(); ok && m.fb.confirm {
			return m.deleteTask(t.ID)
		}
		return m, nil
	case huh.StateAborted:
		m.mode = modeBrowse
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

// View renders the board.
func (m Model) View() string {
	switch m.mode {
	case modeForm:
		return lipgloss.NewStyle().Padding(1, 2).Render(m.form.View())
	case modeConfirmDelete:
		return lipgloss.NewStyle().Padding(1, 2).Render(m.confirmForm.View())
	}

	columns := m.columns()
	if len(columns) == 0 {
		text := "This board has no columns."
		if m.loading {
			text = "Loading board..."
		}
		return lipgloss.NewStyle().Padding(1, 2).Render(theme.HelpStyle.Render(text))
	}

	width := ui.ColumnWidth(m.width, len(columns))
	rendered := make([]string, 0, len(columns))
	for i, c := range columns {
		rendered = append(rendered, m.viewColumn(i, c, width))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m Model) viewColumn(idx int, c model.Column, width int) string {
	tasks := m.tasksIn(idx)

	var b strings.Builder
	title := fmt.Sprintf("%s (%d)", c.Name, len(tasks))
	b.WriteString(theme.ColumnTitleStyle(boardsvc.IsDoneColumn(c)).Render(title))
	b.WriteString("\n")

	if len(tasks) == 0 {
		b.WriteString(theme.HelpStyle.Render("empty"))
	}
	for i, t := range tasks {
		label := truncate(t.Title, width-3)
		switch {
		case idx == m.col && i == m.row:
			b.WriteString(theme.SelectedItemStyle.Render(label))
		case cache.IsTemp(t.ID):
			b.WriteString(theme.PendingItemStyle.Render(label))
		default:
			b.WriteString(theme.ListItemStyle.Render(label))
		}
		b.WriteString("\n")
	}

	style := theme.ColumnStyle
	if idx == m.col {
		style = theme.FocusedColumnStyle
	}
	return style.Width(width).Height(m.height - 2).Render(b.String())
}

// Selected returns the task under the cursor.
func (m Model) Selected() (model.Task, bool) {
	tasks := m.tasksIn(m.col)
	if m.row < 0 || m.row >= len(tasks) {
		return model.Task{}, false
	}
	return tasks[m.row], true
}

// Cursor returns the focused column and row.
func (m Model) Cursor() (col, row int) {
	return m.col, m.row
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) columns() []model.Column {
	st, ok := m.rec.Cache().Board(m.projectID)
	if !ok {
		return nil
	}
	sort.SliceStable(st.Columns, func(i, j int) bool {
		return st.Columns[i].Position < st.Columns[j].Position
	})
	return st.Columns
}

func (m Model) tasksIn(col int) []model.Task {
	st, ok := m.rec.Cache().Board(m.projectID)
	if !ok {
		return nil
	}
	columns := m.columns()
	if col < 0 || col >= len(columns) {
		return nil
	}
	return st.TasksIn(columns[col].ID)
}

// clamp keeps the cursor on the board after tasks disappear, e.g. after a
// rollback or a delete.
func (m *Model) clamp() {
	if n := len(m.columns()); m.col >= n {
		m.col = n - 1
	}
	if m.col < 0 {
		m.col = 0
	}
	if n := len(m.tasksIn(m.col)); m.row >= n {
		m.row = n - 1
	}
	if m.row < 0 {
		m.row = 0
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

func (m Model) loadBoard() tea.Cmd {
	rec := m.rec
	pid := m.projectID
	return func() tea.Msg {
		ctx, cancel := ui.Context()
		defer cancel()
		return boardLoadedMsg{projectID: pid, err: rec.LoadBoard(ctx, pid)}
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if max < 2 || len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
