package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/nhle/taskboard/internal/model"
)

// CreateColumn inserts a column. Generates a UUID if ID is empty.
func (s *SQLiteStore) CreateColumn(ctx context.Context, column *model.Column) error {
	if column.ID == "" {
		column.ID = uuid.New().String()
	}
	column.CreatedAt = now()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO board_columns (id, project_id, name, position, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		column.ID, column.ProjectID, column.Name, column.Position, column.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating column %q: %w", column.Name, err)
	}
	return nil
}

// GetColumnByID retrieves a single column by ID.
func (s *SQLiteStore) GetColumnByID(
	ctx context.Context,
	id string,
) (*model.Column, error) {
	var column model.Column
	err := s.db.GetContext(ctx, &column, "SELECT * FROM board_columns WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("column %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting column %s: %w", id, err)
	}
	return &column, nil
}

// GetColumns returns the columns of a project ordered by position.
func (s *SQLiteStore) GetColumns(
	ctx context.Context,
	projectID string,
) ([]model.Column, error) {
	columns := []model.Column{}
	err := s.db.SelectContext(ctx, &columns,
		"SELECT * FROM board_columns WHERE project_id = ? ORDER BY position",
		projectID)
	if err != nil {
		return nil, fmt.Errorf("querying columns for project %s: %w", projectID, err)
	}
	return columns, nil
}

// DeleteColumns removes every column of a project.
func (s *SQLiteStore) DeleteColumns(ctx context.Context, projectID string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM board_columns WHERE project_id = ?", projectID)
	if err != nil {
		return fmt.Errorf("deleting columns for project %s: %w", projectID, err)
	}
	return nil
}
