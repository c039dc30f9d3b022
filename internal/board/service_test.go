package board_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskboard/internal/board"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/store"
	"github.com/nhle/taskboard/tests/testutil"
)

// fakeSummarizer records the snapshot it was handed.
type fakeSummarizer struct {
	last     board.Snapshot
	question string
	err      error
}

func (f *fakeSummarizer) Summarize(_ context.Context, snap board.Snapshot) (string, error) {
	f.last = snap
	if f.err != nil {
		return "", f.err
	}
	return "Project " + snap.ProjectName + " has " +
		strings.Repeat("*", len(snap.DoneTasks)) + " done", nil
}

func (f *fakeSummarizer) Answer(_ context.Context, snap board.Snapshot, q string) (string, error) {
	f.last = snap
	f.question = q
	if f.err != nil {
		return "", f.err
	}
	return "answer about " + snap.ProjectName, nil
}

func newService(t *testing.T) (*board.Service, *store.SQLiteStore, *fakeSummarizer) {
	t.Helper()
	st := testutil.NewTestStore(t)
	sum := &fakeSummarizer{}
	return board.NewService(st, sum, nil), st, sum
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestLaunchScenario(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	project, err := svc.CreateProject(ctx, model.NewProjectInput{Name: "Launch"})
	require.NoError(t, err)

	columns, err := svc.ListColumns(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, columns, 3)
	for i, c := range columns {
		assert.Equal(t, model.DefaultColumnNames[i], c.Name)
		assert.Equal(t, i, c.Position)
	}
	todo, done := columns[0], columns[2]

	plan, err := svc.CreateTask(ctx, model.NewTaskInput{
		ProjectID: project.ID, ColumnID: todo.ID, Title: "Draft plan",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, plan.Position)

	review, err := svc.CreateTask(ctx, model.NewTaskInput{
		ProjectID: project.ID, ColumnID: todo.ID, Title: "Review",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, review.Position)

	moved, err := svc.UpdateTask(ctx, plan.ID, model.TaskPatch{ColumnID: &done.ID})
	require.NoError(t, err)
	assert.Equal(t, done.ID, moved.ColumnID)
	assert.Equal(t, 0, moved.Position)
	assert.Equal(t, project.ID, moved.ProjectID)

	tasks, err := svc.ListTasks(ctx, project.ID)
	require.NoError(t, err)
	for _, task := range tasks {
		if task.ID == review.ID {
			assert.Equal(t, todo.ID, task.ColumnID)
			assert.Equal(t, 1, task.Position)
		}
	}
}

func TestCrossColumnMoveAppends(t *testing.T) {
	svc, st, _ := newService(t)
	ctx := context.Background()
	_, cols := testutil.SeedBoard(t, st, "Launch")

	testutil.SeedTask(t, st, cols[1], "a", 0)
	testutil.SeedTask(t, st, cols[1], "b", 4)
	mover := testutil.SeedTask(t, st, cols[0], "mover", 0)

	moved, err := svc.Move(ctx, mover, cols[1].ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, moved.Position)

	positions, err := st.GetTaskPositions(ctx, cols[1].ID)
	require.NoError(t, err)
	unique := map[int]bool{}
	for _, p := range positions {
		unique[p] = true
	}
	assert.Len(t, unique, 3)
}

func TestSameColumnMoveIsNoop(t *testing.T) {
	svc, st, _ := newService(t)
	ctx := context.Background()
	_, cols := testutil.SeedBoard(t, st, "Launch")
	task := testutil.SeedTask(t, st, cols[0], "stay", 2)

	got, err := svc.Move(ctx, task, cols[0].ID, nil)
	require.NoError(t, err)
	assert.Equal(t, task, got)

	stored, err := st.GetTaskByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.Position, stored.Position)
	assert.Equal(t, task.ColumnID, stored.ColumnID)
}

func TestPlacementOnlyUpdate(t *testing.T) {
	svc, st, _ := newService(t)
	ctx := context.Background()
	_, cols := testutil.SeedBoard(t, st, "Launch")

	testutil.SeedTask(t, st, cols[1], "a", 4)
	task := testutil.SeedTask(t, st, cols[0], "mover", 0)
	stored, err := st.GetTaskByID(ctx, task.ID)
	require.NoError(t, err)

	same, err := svc.UpdateTask(ctx, task.ID, model.TaskPatch{ColumnID: &cols[0].ID})
	require.NoError(t, err)
	assert.True(t, stored.UpdatedAt.Equal(same.UpdatedAt), "no-op move must not write")
	assert.Equal(t, cols[0].ID, same.ColumnID)
	assert.Equal(t, 0, same.Position)

	moved, err := svc.UpdateTask(ctx, task.ID, model.TaskPatch{ColumnID: &cols[1].ID})
	require.NoError(t, err)
	assert.Equal(t, cols[1].ID, moved.ColumnID)
	assert.Equal(t, 5, moved.Position)
	assert.Equal(t, "mover", moved.Title)
}

func TestExplicitPositionIsTakenAsIs(t *testing.T) {
	svc, st, _ := newService(t)
	ctx := context.Background()
	_, cols := testutil.SeedBoard(t, st, "Launch")
	task := testutil.SeedTask(t, st, cols[0], "x", 0)
	sibling := testutil.SeedTask(t, st, cols[2], "y", 0)

	moved, err := svc.UpdateTask(ctx, task.ID, model.TaskPatch{
		ColumnID: &cols[2].ID,
		Position: intPtr(42),
	})
	require.NoError(t, err)
	assert.Equal(t, 42, moved.Position)

	again, err := svc.UpdateTask(ctx, task.ID, model.TaskPatch{Position: intPtr(7)})
	require.NoError(t, err)
	assert.Equal(t, cols[2].ID, again.ColumnID)
	assert.Equal(t, 7, again.Position)

	untouched, err := st.GetTaskByID(ctx, sibling.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, untouched.Position)

	_, err = svc.UpdateTask(ctx, task.ID, model.TaskPatch{Position: intPtr(-1)})
	assert.ErrorIs(t, err, board.ErrValidation)
}

func TestMoveFailures(t *testing.T) {
	svc, st, _ := newService(t)
	ctx := context.Background()
	_, cols := testutil.SeedBoard(t, st, "Launch")
	_, otherCols := testutil.SeedBoard(t, st, "Other")
	task := testutil.SeedTask(t, st, cols[0], "x", 0)

	_, err := svc.UpdateTask(ctx, task.ID, model.TaskPatch{ColumnID: strPtr("missing")})
	assert.ErrorIs(t, err, board.ErrNotFound)

	_, err = svc.UpdateTask(ctx, "missing", model.TaskPatch{ColumnID: &cols[1].ID})
	assert.ErrorIs(t, err, board.ErrNotFound)

	_, err = svc.UpdateTask(ctx, task.ID, model.TaskPatch{ColumnID: &otherCols[1].ID})
	assert.ErrorIs(t, err, board.ErrValidation)

	stored, err := st.GetTaskByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, cols[0].ID, stored.ColumnID)
	assert.Equal(t, 0, stored.Position)
}

func TestUpdateTaskEditsAndMovesTogether(t *testing.T) {
	svc, st, _ := newService(t)
	ctx := context.Background()
	_, cols := testutil.SeedBoard(t, st, "Launch")
	task := testutil.SeedTask(t, st, cols[0], "draft", 0)

	updated, err := svc.UpdateTask(ctx, task.ID, model.TaskPatch{
		Title:       strPtr("final"),
		Description: strPtr("polished"),
		ColumnID:    &cols[1].ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "final", updated.Title)
	assert.Equal(t, "polished", updated.Description)
	assert.Equal(t, cols[1].ID, updated.ColumnID)

	_, err = svc.UpdateTask(ctx, task.ID, model.TaskPatch{Title: strPtr("   ")})
	assert.ErrorIs(t, err, board.ErrValidation)
}

func TestCreateTaskValidation(t *testing.T) {
	svc, st, _ := newService(t)
	ctx := context.Background()
	project, cols := testutil.SeedBoard(t, st, "Launch")
	other, _ := testutil.SeedBoard(t, st, "Other")

	_, err := svc.CreateTask(ctx, model.NewTaskInput{ColumnID: cols[0].ID})
	assert.ErrorIs(t, err, board.ErrValidation)

	_, err = svc.CreateTask(ctx, model.NewTaskInput{Title: "x"})
	assert.ErrorIs(t, err, board.ErrValidation)

	_, err = svc.CreateTask(ctx, model.NewTaskInput{ColumnID: "nope", Title: "x"})
	assert.ErrorIs(t, err, board.ErrNotFound)

	_, err = svc.CreateTask(ctx, model.NewTaskInput{
		ProjectID: other.ID, ColumnID: cols[0].ID, Title: "x",
	})
	assert.ErrorIs(t, err, board.ErrValidation)

	task, err := svc.CreateTask(ctx, model.NewTaskInput{ColumnID: cols[0].ID, Title: "x"})
	require.NoError(t, err)
	assert.Equal(t, project.ID, task.ProjectID)
}

func TestDeleteProjectCascades(t *testing.T) {
	svc, st, _ := newService(t)
	ctx := context.Background()

	project, err := svc.CreateProject(ctx, model.NewProjectInput{Name: "Doomed"})
	require.NoError(t, err)
	keep, keepCols := testutil.SeedBoard(t, st, "Keep")
	columns, err := svc.ListColumns(ctx, project.ID)
	require.NoError(t, err)

	testutil.SeedTask(t, st, columns[0], "a", 0)
	testutil.SeedTask(t, st, columns[2], "b", 0)
	kept := testutil.SeedTask(t, st, keepCols[0], "c", 0)

	require.NoError(t, svc.DeleteProject(ctx, project.ID))

	_, err = svc.GetProject(ctx, project.ID)
	assert.ErrorIs(t, err, board.ErrNotFound)

	cols, err := svc.ListColumns(ctx, project.ID)
	require.NoError(t, err)
	assert.Empty(t, cols)

	tasks, err := svc.ListTasks(ctx, project.ID)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	for _, c := range columns {
		left, err := st.GetTasks(ctx, store.TaskFilter{ColumnIDs: []string{c.ID}})
		require.NoError(t, err)
		assert.Empty(t, left)
	}

	remaining, err := svc.ListTasks(ctx, keep.ID)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, kept.ID, remaining[0].ID)

	assert.NoError(t, svc.DeleteProject(ctx, project.ID))
}

func TestProjectUpdate(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	_, err := svc.CreateProject(ctx, model.NewProjectInput{Name: " "})
	assert.ErrorIs(t, err, board.ErrValidation)

	p, err := svc.CreateProject(ctx, model.NewProjectInput{Name: "Launch", Description: "d"})
	require.NoError(t, err)

	updated, err := svc.UpdateProject(ctx, p.ID, model.ProjectPatch{Description: strPtr("new")})
	require.NoError(t, err)
	assert.Equal(t, "Launch", updated.Name)
	assert.Equal(t, "new", updated.Description)

	_, err = svc.UpdateProject(ctx, "missing", model.ProjectPatch{Name: strPtr("x")})
	assert.ErrorIs(t, err, board.ErrNotFound)

	_, err = svc.UpdateProject(ctx, p.ID, model.ProjectPatch{Name: strPtr("")})
	assert.ErrorIs(t, err, board.ErrValidation)
}

func TestShipV1Summary(t *testing.T) {
	svc, _, sum := newService(t)
	ctx := context.Background()

	project, err := svc.CreateProject(ctx, model.NewProjectInput{Name: "Ship v1"})
	require.NoError(t, err)
	columns, err := svc.ListColumns(ctx, project.ID)
	require.NoError(t, err)

	_, err = svc.CreateTask(ctx, model.NewTaskInput{
		ProjectID: project.ID, ColumnID: columns[2].ID, Title: "Release notes",
	})
	require.NoError(t, err)

	summary, err := svc.Summarize(ctx, project.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, summary)
	assert.Contains(t, summary, "Ship v1")
	assert.Len(t, sum.last.DoneTasks, 1)

	answer, err := svc.Ask(ctx, project.ID, "  what is done?  ")
	require.NoError(t, err)
	assert.Contains(t, answer, "Ship v1")
	assert.Equal(t, "what is done?", sum.question)
}

func TestAssistantErrors(t *testing.T) {
	svc, _, sum := newService(t)
	ctx := context.Background()

	_, err := svc.Summarize(ctx, "missing")
	assert.ErrorIs(t, err, board.ErrNotFound)

	project, err := svc.CreateProject(ctx, model.NewProjectInput{Name: "Launch"})
	require.NoError(t, err)

	_, err = svc.Ask(ctx, project.ID, "")
	assert.ErrorIs(t, err, board.ErrValidation)

	sum.err = errors.New("model overloaded")
	_, err = svc.Summarize(ctx, project.ID)
	assert.ErrorIs(t, err, board.ErrUpstream)

	_, err = svc.Ask(ctx, project.ID, "why?")
	assert.ErrorIs(t, err, board.ErrUpstream)
}
