package model

import "time"

// DefaultColumnNames are provisioned, in order, for every new project.
// The slice index is the column position.
var DefaultColumnNames = []string{"To Do", "In Progress", "Done"}

// Column is a named, positioned bucket of tasks within a project.
type Column struct {
	ID        string    `json:"id" db:"id"`
	ProjectID string    `json:"project_id" db:"project_id"`
	Name      string    `json:"name" db:"name"`
	Position  int       `json:"position" db:"position"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
