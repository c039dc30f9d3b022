package model

import "time"

// Task is a unit of work placed in exactly one column of one project.
// Position orders tasks within their current column; gaps are allowed.
type Task struct {
	ID          string    `json:"id" db:"id"`
	ProjectID   string    `json:"project_id" db:"project_id"`
	ColumnID    string    `json:"column_id" db:"column_id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Position    int       `json:"position" db:"position"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// TaskPatch carries a partial task update. It is used both for edits and
// for moves (ColumnID and/or Position).
type TaskPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	ColumnID    *string `json:"column_id,omitempty"`
	Position    *int    `json:"position,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.ColumnID == nil && p.Position == nil
}

// IsMove reports whether the patch touches the task's placement.
func (p TaskPatch) IsMove() bool {
	return p.ColumnID != nil || p.Position != nil
}

// NewTaskInput is the payload for creating a task.
type NewTaskInput struct {
	ProjectID   string `json:"projectId"`
	ColumnID    string `json:"columnId"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// NewProjectInput is the payload for creating a project.
type NewProjectInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}
