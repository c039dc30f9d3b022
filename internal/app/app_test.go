package app

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskboard/internal/cache"
	"github.com/nhle/taskboard/internal/client"
	"github.com/nhle/taskboard/internal/logging"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/ui"
	boardview "github.com/nhle/taskboard/internal/ui/board"
	"github.com/nhle/taskboard/internal/ui/command"
	"github.com/nhle/taskboard/tests/testserver"
)

// rejectingMoves fails every task update, as a server that went away would.
type rejectingMoves struct {
	*client.Client
}

func (rejectingMoves) UpdateTask(context.Context, string, model.TaskPatch) (*model.Task, error) {
	return nil, errors.New("connection refused")
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

// step feeds msg to the model and keeps running single follow-up commands
// until the chain settles. Batches are left alone; they carry timers.
func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	for i := 0; i < 10; i++ {
		var cmd tea.Cmd
		m, cmd = update(m, msg)
		if cmd == nil {
			return m
		}
		msg = cmd()
		if _, ok := msg.(tea.BatchMsg); ok {
			return m
		}
	}
	t.Fatal("command chain did not settle")
	return m
}

// openBoard loads the projects and opens the first one.
func openBoard(t *testing.T, backend Backend) Model {
	t.Helper()
	m := New(backend, logging.Discard())
	m = step(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m = step(t, m, m.Init()())
	require.Len(t, m.rec.Cache().Projects(), 1)

	m = step(t, m, keyPress("enter"))
	require.Equal(t, ViewBoard, m.currentView)
	return m
}

func columnOf(t *testing.T, m Model, projectID, taskID string) string {
	t.Helper()
	st, ok := m.rec.Cache().Board(projectID)
	require.True(t, ok)
	for _, task := range st.Tasks {
		if task.ID == taskID {
			return task.ColumnID
		}
	}
	t.Fatalf("task %s not cached", taskID)
	return ""
}

func TestMoveTaskCommits(t *testing.T) {
	c := testserver.NewClient(t)
	p, cols := testserver.SeedBoard(t, c, "Launch")
	task := testserver.SeedTask(t, c, cols[0], "Write docs")

	m := openBoard(t, c)

	m, cmd := update(m, keyPress("L"))
	require.NotNil(t, cmd)
	assert.Equal(t, cols[1].ID, columnOf(t, m, p.ID, task.ID), "move shows before the server answers")

	m = step(t, m, cmd())
	assert.False(t, m.statusIsError)
	assert.Equal(t, cols[1].ID, columnOf(t, m, p.ID, task.ID))

	stored, err := c.ListTasks(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, cols[1].ID, stored[0].ColumnID)
}

func TestRejectedMoveRollsBackAndReports(t *testing.T) {
	c := testserver.NewClient(t)
	p, cols := testserver.SeedBoard(t, c, "Launch")
	task := testserver.SeedTask(t, c, cols[0], "Write docs")

	m := openBoard(t, rejectingMoves{c})
	before := m.rec.Cache().State()

	m, cmd := update(m, keyPress("L"))
	require.NotNil(t, cmd)
	msg := cmd()

	resolved, ok := msg.(ui.MutationResolvedMsg)
	require.True(t, ok)
	var mutErr *cache.MutationError
	require.ErrorAs(t, resolved.Err, &mutErr)

	m = step(t, m, msg)
	assert.True(t, m.statusIsError)
	assert.Contains(t, m.status, "could not update task")
	assert.Equal(t, cols[0].ID, columnOf(t, m, p.ID, task.ID))
	assert.Equal(t, before, m.rec.Cache().State())
}

func TestMovePastLastColumnDoesNothing(t *testing.T) {
	c := testserver.NewClient(t)
	_, cols := testserver.SeedBoard(t, c, "Launch")
	testserver.SeedTask(t, c, cols[0], "Write docs")

	m := openBoard(t, c)
	_, cmd := update(m, keyPress("H"))
	assert.Nil(t, cmd)
}

func TestBoardNavigation(t *testing.T) {
	c := testserver.NewClient(t)
	testserver.SeedBoard(t, c, "Launch")

	m := openBoard(t, c)
	m = step(t, m, keyPress("esc"))
	assert.Equal(t, ViewProjects, m.currentView)

	m = step(t, m, keyPress("enter"))
	assert.Equal(t, ViewBoard, m.currentView)
	assert.Contains(t, m.View(), "Launch")
	assert.Contains(t, m.View(), "In Progress")
}

func TestSummarizeOpensAssistant(t *testing.T) {
	c := testserver.NewClient(t)
	testserver.SeedBoard(t, c, "Launch")

	m := openBoard(t, c)
	_, cmd := update(m, keyPress("s"))
	require.NotNil(t, cmd)

	req, ok := cmd().(boardview.AssistantRequestMsg)
	require.True(t, ok)
	assert.True(t, req.Summarize)

	m, _ = update(m, req)
	assert.Equal(t, ViewAssistant, m.currentView)
	assert.True(t, m.assistantView.Waiting())

	// Keys belong to the question box while the assistant is open.
	m, _ = update(m, keyPress("q"))
	assert.Equal(t, ViewAssistant, m.currentView)
}

func TestHelpToggleAndQuit(t *testing.T) {
	c := testserver.NewClient(t)
	m := New(c, logging.Discard())
	m = step(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})

	m, _ = update(m, keyPress("?"))
	assert.Equal(t, ViewHelp, m.currentView)
	assert.Contains(t, m.View(), "Board shortcuts")

	m, _ = update(m, keyPress("?"))
	assert.Equal(t, ViewProjects, m.currentView)

	_, cmd := update(m, keyPress("q"))
	require.NotNil(t, cmd)
	_, isQuit := cmd().(tea.QuitMsg)
	assert.True(t, isQuit)
}

func TestStatusMessageClearsOnNextKey(t *testing.T) {
	c := testserver.NewClient(t)
	m := New(c, logging.Discard())

	m, _ = update(m, ui.StatusMsg{Text: "could not delete task", IsError: true})
	assert.True(t, m.statusIsError)

	m, _ = update(m, keyPress("j"))
	assert.Empty(t, m.status)
	assert.False(t, m.statusIsError)
}

func TestPaletteAsksAboutOpenBoard(t *testing.T) {
	c := testserver.NewClient(t)
	testserver.SeedBoard(t, c, "Launch")

	m := openBoard(t, c)
	m, _ = update(m, keyPress(":"))
	require.Equal(t, ViewCommand, m.currentView)

	m, cmd := update(m, command.CommandMsg{Name: command.Ask, Arg: "what is blocked?"})
	require.NotNil(t, cmd)
	assert.Equal(t, ViewAssistant, m.currentView)
	assert.True(t, m.assistantView.Waiting())
}

func TestPaletteNeedsBoardForAssistant(t *testing.T) {
	c := testserver.NewClient(t)
	m := New(c, logging.Discard())

	m, _ = update(m, keyPress(":"))
	m = step(t, m, command.CommandMsg{Name: command.Summarize})
	assert.Equal(t, ViewProjects, m.currentView)
	assert.True(t, m.statusIsError)
	assert.Equal(t, "Open a board first", m.status)
}

func TestPaletteCancelReturns(t *testing.T) {
	c := testserver.NewClient(t)
	testserver.SeedBoard(t, c, "Launch")

	m := openBoard(t, c)
	m, _ = update(m, keyPress(":"))
	m = step(t, m, keyPress("esc"))
	assert.Equal(t, ViewBoard, m.currentView)
}
