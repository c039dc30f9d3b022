package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskboard/internal/model"
)

func TestNormalizeID(t *testing.T) {
	want := "3f2504e0-4f89-11d3-9a0c-0305e82c3301"
	for _, in := range []string{
		"3F2504E0-4F89-11D3-9A0C-0305E82C3301",
		" 3f2504e0-4f89-11d3-9a0c-0305e82c3301 ",
		"{3f2504e0-4f89-11d3-9a0c-0305e82c3301}",
		`"3f2504e0-4f89-11d3-9a0c-0305e82c3301"`,
		"urn:uuid:3f2504e0-4f89-11d3-9a0c-0305e82c3301",
	} {
		assert.Equal(t, want, NormalizeID(in), in)
	}
}

func TestIsDoneColumn(t *testing.T) {
	assert.True(t, IsDoneColumn(model.Column{Name: "Done"}))
	assert.True(t, IsDoneColumn(model.Column{Name: " Done "}))
	assert.True(t, IsDoneColumn(model.Column{Name: "DONE"}))
	assert.False(t, IsDoneColumn(model.Column{Name: "Done-ish"}))
	assert.False(t, IsDoneColumn(model.Column{Name: "In Progress"}))
}

func TestBuildSnapshotGroupsByNormalizedID(t *testing.T) {
	project := model.Project{ID: "p1", Name: "Launch"}
	// Stored out of order; the snapshot follows position.
	columns := []model.Column{
		{ID: "C-DONE", Name: " Done ", Position: 2},
		{ID: "c-todo", Name: "To Do", Position: 0},
		{ID: "c-doing", Name: "In Progress", Position: 1},
	}
	tasks := []model.Task{
		{ID: "t1", ColumnID: "{C-TODO}", Title: "first"},
		{ID: "t2", ColumnID: "c-done", Title: "shipped"},
		{ID: "t3", ColumnID: "c-todo", Title: "second"},
		{ID: "t4", ColumnID: "elsewhere", Title: "orphan"},
	}

	snap := BuildSnapshot(project, columns, tasks)

	assert.Equal(t, "p1", snap.ProjectID)
	assert.Equal(t, "Launch", snap.ProjectName)
	require.Len(t, snap.PerColumn, 3)
	assert.Equal(t, "To Do", snap.PerColumn[0].ColumnName)
	assert.Equal(t, "In Progress", snap.PerColumn[1].ColumnName)
	assert.Equal(t, " Done ", snap.PerColumn[2].ColumnName)

	todo := snap.PerColumn[0].Tasks
	require.Len(t, todo, 2)
	assert.Equal(t, "t1", todo[0].ID)
	assert.Equal(t, "t3", todo[1].ID)
	assert.Empty(t, snap.PerColumn[1].Tasks)

	require.Len(t, snap.DoneTasks, 1)
	assert.Equal(t, "shipped", snap.DoneTasks[0].Title)
	assert.Equal(t, 3, snap.TaskCount())
}

func TestBuildSnapshotEmptyBoard(t *testing.T) {
	snap := BuildSnapshot(model.Project{ID: "p"}, nil, nil)
	assert.Empty(t, snap.PerColumn)
	assert.NotNil(t, snap.DoneTasks)
}
