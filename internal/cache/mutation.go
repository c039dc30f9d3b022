package cache

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotStaged is returned when resolving a mutation that already committed
// or rolled back.
var ErrNotStaged = errors.New("mutation is not staged")

// ErrNothingToDo is returned when a requested change would not alter the
// board, e.g. dropping a task back into its own column.
var ErrNothingToDo = errors.New("nothing to change")

// MutationKind names the optimistic operations the client supports.
type MutationKind int

const (
	CreateTask MutationKind = iota
	UpdateTask
	DeleteTask
	CreateProject
	DeleteProject
)

func (k MutationKind) String() string {
	switch k {
	case CreateTask:
		return "create task"
	case UpdateTask:
		return "update task"
	case DeleteTask:
		return "delete task"
	case CreateProject:
		return "create project"
	case DeleteProject:
		return "delete project"
	default:
		return "unknown mutation"
	}
}

// MutationState is the lifecycle of a pending mutation:
// Staged, then exactly one of Committed or RolledBack.
type MutationState int

const (
	Staged MutationState = iota
	Committed
	RolledBack
)

func (s MutationState) String() string {
	switch s {
	case Committed:
		return "committed"
	case RolledBack:
		return "rolled back"
	default:
		return "staged"
	}
}

// Mutation is one optimistic change already applied to the cache and
// waiting for the server's verdict.
type Mutation struct {
	ID        string
	Kind      MutationKind
	ProjectID string

	// TargetID is the id the prediction was applied under. For creates it
	// is a temporary "tmp-" id until the mutation commits.
	TargetID string

	state MutationState
	send  func(ctx context.Context) error
	undo  func()
	err   error
}

// State returns where the mutation is in its lifecycle.
func (m *Mutation) State() MutationState {
	return m.state
}

// Err returns the failure that rolled the mutation back, if any.
func (m *Mutation) Err() error {
	return m.err
}

// MutationError is the human-readable failure surfaced after a rollback.
type MutationError struct {
	Kind MutationKind
	Err  error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("could not %s: %v", e.Kind, e.Err)
}

func (e *MutationError) Unwrap() error {
	return e.Err
}
