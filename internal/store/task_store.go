package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/nhle/taskboard/internal/model"
)

// CreateTask inserts a new task. Generates a UUID if ID is empty.
// The caller assigns Position; see board.NextPosition.
func (s *SQLiteStore) CreateTask(ctx context.Context, task *model.Task) error {
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	ts := now()
	task.CreatedAt = ts
	task.UpdatedAt = ts

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, project_id, column_id, title, description, position, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID, task.ProjectID, task.ColumnID, task.Title, task.Description,
		task.Position, task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating task: %w", err)
	}
	return nil
}

// GetTaskByID retrieves a single task by ID.
func (s *SQLiteStore) GetTaskByID(ctx context.Context, id string) (*model.Task, error) {
	var task model.Task
	err := s.db.GetContext(ctx, &task, "SELECT * FROM tasks WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting task %s: %w", id, err)
	}
	return &task, nil
}

// GetTasks retrieves tasks matching the filter. An empty filter matches all
// tasks.
func (s *SQLiteStore) GetTasks(ctx context.Context, filter TaskFilter) ([]model.Task, error) {
	where, args := filter.where()
	query := "SELECT * FROM tasks" + where + " ORDER BY " + filter.orderBy()

	tasks := []model.Task{}
	if err := s.db.SelectContext(ctx, &tasks, query, args...); err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	return tasks, nil
}

// GetTaskPositions returns the positions of every task currently in a column.
func (s *SQLiteStore) GetTaskPositions(ctx context.Context, columnID string) ([]int, error) {
	positions := []int{}
	err := s.db.SelectContext(ctx, &positions,
		"SELECT position FROM tasks WHERE column_id = ?", columnID)
	if err != nil {
		return nil, fmt.Errorf("querying positions for column %s: %w", columnID, err)
	}
	return positions, nil
}

// UpdateTask applies a partial update in a single statement, so a column
// change and its new position land together. Returns the stored result.
func (s *SQLiteStore) UpdateTask(
	ctx context.Context,
	id string,
	patch model.TaskPatch,
) (*model.Task, error) {
	sets := []string{"updated_at = ?"}
	args := []interface{}{now()}
	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.ColumnID != nil {
		sets = append(sets, "column_id = ?")
		args = append(args, *patch.ColumnID)
	}
	if patch.Position != nil {
		sets = append(sets, "position = ?")
		args = append(args, *patch.Position)
	}
	args = append(args, id)

	result, err := s.db.ExecContext(ctx,
		"UPDATE tasks SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return nil, fmt.Errorf("updating task %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return s.GetTaskByID(ctx, id)
}

// DeleteTask removes a task. Deleting an unknown id is not an error.
func (s *SQLiteStore) DeleteTask(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting task %s: %w", id, err)
	}
	return nil
}

// DeleteTasks removes every task matching the filter. An empty filter is
// rejected.
func (s *SQLiteStore) DeleteTasks(ctx context.Context, filter TaskFilter) error {
	where, args := filter.where()
	if where == "" {
		return fmt.Errorf("deleting tasks: empty filter")
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM tasks"+where, args...); err != nil {
		return fmt.Errorf("deleting tasks: %w", err)
	}
	return nil
}

// where renders the filter as an OR-combined WHERE clause.
func (f TaskFilter) where() (string, []interface{}) {
	var conds []string
	var args []interface{}

	if f.ProjectID != nil {
		conds = append(conds, "project_id = ?")
		args = append(args, *f.ProjectID)
	}
	if len(f.ColumnIDs) > 0 {
		conds = append(conds, "column_id IN ("+placeholders(len(f.ColumnIDs))+")")
		for _, id := range f.ColumnIDs {
			args = append(args, id)
		}
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " OR "), args
}

func (f TaskFilter) orderBy() string {
	col := "position"
	switch f.SortBy {
	case "created_at", "title":
		col = f.SortBy
	}
	dir := "ASC"
	if f.SortDesc {
		dir = "DESC"
	}
	return col + " " + dir + ", created_at ASC, id ASC"
}
