package testutil

import (
	"context"
	"testing"

	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/store"
)

// NewTestStore creates an in-memory SQLiteStore with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// SeedBoard writes a project with the default columns directly to the store
// and returns them, columns in position order.
func SeedBoard(t *testing.T, s store.Store, name string) (model.Project, []model.Column) {
	t.Helper()
	ctx := context.Background()

	project := model.Project{Name: name}
	if err := s.CreateProject(ctx, &project); err != nil {
		t.Fatalf("seeding project %q: %v", name, err)
	}

	columns := make([]model.Column, 0, len(model.DefaultColumnNames))
	for i, colName := range model.DefaultColumnNames {
		col := model.Column{ProjectID: project.ID, Name: colName, Position: i}
		if err := s.CreateColumn(ctx, &col); err != nil {
			t.Fatalf("seeding column %q: %v", colName, err)
		}
		columns = append(columns, col)
	}
	return project, columns
}

// SeedTask writes a task directly to the store.
func SeedTask(t *testing.T, s store.Store, col model.Column, title string, position int) model.Task {
	t.Helper()

	task := model.Task{
		ProjectID: col.ProjectID,
		ColumnID:  col.ID,
		Title:     title,
		Position:  position,
	}
	if err := s.CreateTask(context.Background(), &task); err != nil {
		t.Fatalf("seeding task %q: %v", title, err)
	}
	return task
}
