package store

import (
	"context"
	"errors"

	"github.com/nhle/taskboard/internal/model"
)

// ErrNotFound is returned when a record addressed by id does not exist.
var ErrNotFound = errors.New("record not found")

// TaskFilter selects tasks for queries and bulk deletes. Set conditions are
// combined with OR, so a project's tasks and the tasks of its columns can be
// matched in a single statement.
type TaskFilter struct {
	ProjectID *string
	ColumnIDs []string
	SortBy    string // "position" (default), "created_at", "title"
	SortDesc  bool
}

// Store is the entity store for projects, columns and tasks.
type Store interface {
	// === Projects ===

	CreateProject(ctx context.Context, project *model.Project) error
	GetProjectByID(ctx context.Context, id string) (*model.Project, error)
	GetProjects(ctx context.Context) ([]model.Project, error)
	UpdateProject(ctx context.Context, id string, patch model.ProjectPatch) (*model.Project, error)
	DeleteProject(ctx context.Context, id string) error

	// === Columns ===

	CreateColumn(ctx context.Context, column *model.Column) error
	GetColumnByID(ctx context.Context, id string) (*model.Column, error)
	GetColumns(ctx context.Context, projectID string) ([]model.Column, error)
	DeleteColumns(ctx context.Context, projectID string) error

	// === Tasks ===

	CreateTask(ctx context.Context, task *model.Task) error
	GetTaskByID(ctx context.Context, id string) (*model.Task, error)
	GetTasks(ctx context.Context, filter TaskFilter) ([]model.Task, error)
	GetTaskPositions(ctx context.Context, columnID string) ([]int, error)
	UpdateTask(ctx context.Context, id string, patch model.TaskPatch) (*model.Task, error)
	DeleteTask(ctx context.Context, id string) error
	DeleteTasks(ctx context.Context, filter TaskFilter) error

	// Ping reports whether the database is reachable.
	Ping(ctx context.Context) error
}
