package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/store"
	"github.com/nhle/taskboard/tests/testutil"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestProjectLifecycle(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	p := model.Project{Name: "Launch", Description: "go-live"}
	require.NoError(t, s.CreateProject(ctx, &p))
	assert.NotEmpty(t, p.ID)
	assert.False(t, p.CreatedAt.IsZero())

	got, err := s.GetProjectByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Launch", got.Name)
	assert.Equal(t, "go-live", got.Description)

	updated, err := s.UpdateProject(ctx, p.ID, model.ProjectPatch{Name: strPtr("Launch 2")})
	require.NoError(t, err)
	assert.Equal(t, "Launch 2", updated.Name)
	assert.Equal(t, "go-live", updated.Description)

	all, err := s.GetProjects(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, s.DeleteProject(ctx, p.ID))
	_, err = s.GetProjectByID(ctx, p.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	// Second delete is a no-op.
	assert.NoError(t, s.DeleteProject(ctx, p.ID))
}

func TestCreateProjectRejectsEmptyName(t *testing.T) {
	s := testutil.NewTestStore(t)
	err := s.CreateProject(context.Background(), &model.Project{Name: "  "})
	assert.Error(t, err)
}

func TestUpdateMissingRecords(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	_, err := s.UpdateProject(ctx, "nope", model.ProjectPatch{Name: strPtr("x")})
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.UpdateTask(ctx, "nope", model.TaskPatch{Title: strPtr("x")})
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.GetColumnByID(ctx, "nope")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestColumnsOrderedByPosition(t *testing.T) {
	s := testutil.NewTestStore(t)
	p, _ := testutil.SeedBoard(t, s, "Launch")

	cols, err := s.GetColumns(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, cols, 3)
	for i, c := range cols {
		assert.Equal(t, model.DefaultColumnNames[i], c.Name)
		assert.Equal(t, i, c.Position)
	}
}

func TestTaskFilterAndPositions(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	p, cols := testutil.SeedBoard(t, s, "Launch")
	other, otherCols := testutil.SeedBoard(t, s, "Other")

	testutil.SeedTask(t, s, cols[0], "b", 1)
	testutil.SeedTask(t, s, cols[0], "a", 0)
	testutil.SeedTask(t, s, cols[1], "c", 4)
	testutil.SeedTask(t, s, otherCols[0], "z", 0)

	tasks, err := s.GetTasks(ctx, store.TaskFilter{ProjectID: &p.ID})
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, "a", tasks[0].Title)

	byCol, err := s.GetTasks(ctx, store.TaskFilter{ColumnIDs: []string{cols[0].ID}})
	require.NoError(t, err)
	assert.Len(t, byCol, 2)

	positions, err := s.GetTaskPositions(ctx, cols[0].ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{0, 1}, positions)

	empty, err := s.GetTaskPositions(ctx, cols[2].ID)
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, s.DeleteTasks(ctx, store.TaskFilter{ProjectID: &p.ID}))
	left, err := s.GetTasks(ctx, store.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, other.ID, left[0].ProjectID)
}

func TestDeleteTasksRequiresFilter(t *testing.T) {
	s := testutil.NewTestStore(t)
	assert.Error(t, s.DeleteTasks(context.Background(), store.TaskFilter{}))
}

func TestUpdateTaskMovesColumnAndPositionTogether(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	_, cols := testutil.SeedBoard(t, s, "Launch")
	task := testutil.SeedTask(t, s, cols[0], "Write docs", 0)

	moved, err := s.UpdateTask(ctx, task.ID, model.TaskPatch{
		ColumnID: &cols[2].ID,
		Position: intPtr(7),
	})
	require.NoError(t, err)
	assert.Equal(t, cols[2].ID, moved.ColumnID)
	assert.Equal(t, 7, moved.Position)
	assert.Equal(t, "Write docs", moved.Title)

	require.NoError(t, s.DeleteTask(ctx, task.ID))
	assert.NoError(t, s.DeleteTask(ctx, task.ID))
}

func TestPing(t *testing.T) {
	s := testutil.NewTestStore(t)
	assert.NoError(t, s.Ping(context.Background()))
}

func TestSchemaVersion(t *testing.T) {
	s := testutil.NewTestStore(t)
	v, err := s.SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}
