package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/nhle/taskboard/internal/board"
	"github.com/nhle/taskboard/internal/model"
)

// tempPrefix marks ids that exist only in the cache.
const tempPrefix = "tmp-"

// IsTemp reports whether id was assigned by the cache rather than the server.
func IsTemp(id string) bool {
	return strings.HasPrefix(id, tempPrefix)
}

// Backend is the server the reconciler talks to. *client.Client satisfies it.
type Backend interface {
	ListProjects(ctx context.Context) ([]model.Project, error)
	ListColumns(ctx context.Context, projectID string) ([]model.Column, error)
	ListTasks(ctx context.Context, projectID string) ([]model.Task, error)
	CreateProject(ctx context.Context, in model.NewProjectInput) (*model.Project, error)
	DeleteProject(ctx context.Context, id string) error
	CreateTask(ctx context.Context, in model.NewTaskInput) (*model.Task, error)
	UpdateTask(ctx context.Context, id string, patch model.TaskPatch) (*model.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// Reconciler applies predicted mutations to a BoardCache, sends the real
// request, then commits the server's answer or restores the cache.
type Reconciler struct {
	cache   *BoardCache
	backend Backend
	log     logrus.FieldLogger
}

// NewReconciler wires a reconciler.
func NewReconciler(c *BoardCache, backend Backend, log logrus.FieldLogger) *Reconciler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Reconciler{cache: c, backend: backend, log: log}
}

// Cache returns the cache the reconciler maintains.
func (r *Reconciler) Cache() *BoardCache {
	return r.cache
}

// LoadProjects replaces the cached project list with the server's.
func (r *Reconciler) LoadProjects(ctx context.Context) error {
	projects, err := r.backend.ListProjects(ctx)
	if err != nil {
		return fmt.Errorf("loading projects: %w", err)
	}
	r.cache.SetProjects(projects)
	return nil
}

// LoadBoard replaces a project's cached board with the server's.
func (r *Reconciler) LoadBoard(ctx context.Context, projectID string) error {
	columns, err := r.backend.ListColumns(ctx, projectID)
	if err != nil {
		return fmt.Errorf("loading columns of %s: %w", projectID, err)
	}
	tasks, err := r.backend.ListTasks(ctx, projectID)
	if err != nil {
		return fmt.Errorf("loading tasks of %s: %w", projectID, err)
	}
	r.cache.SetBoard(projectID, columns, tasks)
	return nil
}

// Resolve sends a staged mutation. On success the server's result replaces
// the prediction. On failure only this mutation's own change is undone, so
// other mutations that settled in the meantime keep their results, and a
// *MutationError is returned.
func (r *Reconciler) Resolve(ctx context.Context, m *Mutation) error {
	if m == nil || m.state != Staged {
		return ErrNotStaged
	}

	if err := m.send(ctx); err != nil {
		m.undo()
		m.state = RolledBack
		m.err = &MutationError{Kind: m.Kind, Err: err}
		r.log.WithFields(logrus.Fields{
			"mutation": m.ID,
			"kind":     m.Kind.String(),
		}).WithError(err).Warn("mutation rolled back")
		return m.err
	}

	m.state = Committed
	r.log.WithFields(logrus.Fields{
		"mutation": m.ID,
		"kind":     m.Kind.String(),
	}).Debug("mutation committed")
	return nil
}

func (r *Reconciler) stage(kind MutationKind, projectID string) *Mutation {
	return &Mutation{
		ID:        uuid.New().String(),
		Kind:      kind,
		ProjectID: projectID,
		state:     Staged,
	}
}

// === Tasks ===

// StageCreateTask appends a predicted task to the end of its column.
func (r *Reconciler) StageCreateTask(in model.NewTaskInput) (*Mutation, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("title is required")
	}
	if _, ok := r.cache.Board(in.ProjectID); !ok {
		return nil, fmt.Errorf("board %s is not loaded", in.ProjectID)
	}

	m := r.stage(CreateTask, in.ProjectID)
	m.TargetID = tempPrefix + uuid.New().String()

	now := time.Now()
	r.cache.update(in.ProjectID, func(b *BoardState) {
		b.Tasks = append(b.Tasks, model.Task{
			ID:          m.TargetID,
			ProjectID:   in.ProjectID,
			ColumnID:    in.ColumnID,
			Title:       strings.TrimSpace(in.Title),
			Description: in.Description,
			Position:    board.NextPosition(positions(b.Tasks, in.ColumnID)),
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	})
	tempID := m.TargetID
	m.undo = func() { r.removeTask(in.ProjectID, tempID) }

	m.send = func(ctx context.Context) error {
		created, err := r.backend.CreateTask(ctx, in)
		if err != nil {
			return err
		}
		r.cache.update(in.ProjectID, func(b *BoardState) {
			if i := taskIndex(b.Tasks, m.TargetID); i >= 0 {
				b.Tasks[i] = *created
			} else {
				b.Tasks = append(b.Tasks, *created)
			}
		})
		m.TargetID = created.ID
		return nil
	}
	return m, nil
}

// StageUpdateTask applies an edit and/or move to the cached task. A patch
// that changes nothing returns ErrNothingToDo and stages nothing.
func (r *Reconciler) StageUpdateTask(projectID, taskID string, patch model.TaskPatch) (*Mutation, error) {
	b, ok := r.cache.Board(projectID)
	if !ok {
		return nil, fmt.Errorf("board %s is not loaded", projectID)
	}
	i := taskIndex(b.Tasks, taskID)
	if i < 0 {
		return nil, fmt.Errorf("task %s is not on the board", taskID)
	}
	current := b.Tasks[i]

	predicted := current
	var send model.TaskPatch
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, fmt.Errorf("title must not be empty")
		}
		if title != current.Title {
			predicted.Title = title
			send.Title = &title
		}
	}
	if patch.Description != nil && strings.TrimSpace(*patch.Description) != strings.TrimSpace(current.Description) {
		desc := *patch.Description
		predicted.Description = desc
		send.Description = &desc
	}

	dest := ""
	if patch.ColumnID != nil {
		dest = *patch.ColumnID
	}
	switch board.ClassifyMove(current, dest, patch.Position) {
	case board.MoveAcrossColumns:
		predicted.ColumnID = dest
		if patch.Position != nil {
			predicted.Position = *patch.Position
		} else {
			predicted.Position = board.NextPosition(positions(b.Tasks, dest))
		}
		send.ColumnID = patch.ColumnID
		send.Position = patch.Position
	case board.MoveReposition:
		predicted.Position = *patch.Position
		send.Position = patch.Position
	}
	if send.IsEmpty() {
		return nil, ErrNothingToDo
	}

	m := r.stage(UpdateTask, projectID)
	m.TargetID = current.ID
	r.cache.update(projectID, func(b *BoardState) {
		if i := taskIndex(b.Tasks, current.ID); i >= 0 {
			b.Tasks[i] = predicted
		}
	})
	m.undo = func() {
		r.cache.update(projectID, func(b *BoardState) {
			if i := taskIndex(b.Tasks, current.ID); i >= 0 {
				b.Tasks[i] = current
			}
		})
	}

	m.send = func(ctx context.Context) error {
		updated, err := r.backend.UpdateTask(ctx, current.ID, send)
		if err != nil {
			return err
		}
		r.cache.update(projectID, func(b *BoardState) {
			if i := taskIndex(b.Tasks, current.ID); i >= 0 {
				b.Tasks[i] = *updated
			}
		})
		return nil
	}
	return m, nil
}

// StageMoveTask is StageUpdateTask for a column change only; the task is
// appended to the destination column.
func (r *Reconciler) StageMoveTask(projectID, taskID, destColumnID string) (*Mutation, error) {
	return r.StageUpdateTask(projectID, taskID, model.TaskPatch{ColumnID: &destColumnID})
}

// StageDeleteTask removes the task from the cached board.
func (r *Reconciler) StageDeleteTask(projectID, taskID string) (*Mutation, error) {
	b, ok := r.cache.Board(projectID)
	if !ok {
		return nil, fmt.Errorf("board %s is not loaded", projectID)
	}
	idx := taskIndex(b.Tasks, taskID)
	if idx < 0 {
		return nil, fmt.Errorf("task %s is not on the board", taskID)
	}
	removed := b.Tasks[idx]

	m := r.stage(DeleteTask, projectID)
	m.TargetID = taskID
	r.removeTask(projectID, taskID)
	m.undo = func() {
		r.cache.update(projectID, func(b *BoardState) {
			if taskIndex(b.Tasks, removed.ID) >= 0 {
				return
			}
			i := min(idx, len(b.Tasks))
			b.Tasks = append(b.Tasks[:i], append([]model.Task{removed}, b.Tasks[i:]...)...)
		})
	}

	m.send = func(ctx context.Context) error {
		return r.backend.DeleteTask(ctx, taskID)
	}
	return m, nil
}

// === Projects ===

// StageCreateProject puts a predicted project at the head of the list.
// On commit the server's columns are fetched, since the server provisions
// them.
func (r *Reconciler) StageCreateProject(in model.NewProjectInput) (*Mutation, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}

	tempID := tempPrefix + uuid.New().String()
	m := r.stage(CreateProject, tempID)
	m.TargetID = tempID

	now := time.Now()
	predicted := model.Project{
		ID:          tempID,
		Name:        name,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.cache.updateProjects(func(ps []model.Project) []model.Project {
		return append([]model.Project{predicted}, ps...)
	})
	m.undo = func() { r.removeProject(tempID) }

	m.send = func(ctx context.Context) error {
		created, err := r.backend.CreateProject(ctx, in)
		if err != nil {
			return err
		}
		r.cache.updateProjects(func(ps []model.Project) []model.Project {
			for i := range ps {
				if ps[i].ID == tempID {
					ps[i] = *created
					return ps
				}
			}
			return append([]model.Project{*created}, ps...)
		})
		m.ProjectID = created.ID
		m.TargetID = created.ID

		if err := r.LoadBoard(ctx, created.ID); err != nil {
			// The project exists; the board is fetched again when opened.
			r.log.WithError(err).Warn("loading board of new project")
		}
		return nil
	}
	return m, nil
}

// StageDeleteProject removes the project and its board from the cache.
func (r *Reconciler) StageDeleteProject(projectID string) (*Mutation, error) {
	removed, ok := r.cache.Project(projectID)
	if !ok {
		return nil, fmt.Errorf("project %s is not loaded", projectID)
	}
	idx := projectPosition(r.cache.Projects(), projectID)
	saved, hadBoard := r.cache.Board(projectID)

	m := r.stage(DeleteProject, projectID)
	m.TargetID = projectID
	r.removeProject(projectID)
	m.undo = func() {
		r.cache.updateProjects(func(ps []model.Project) []model.Project {
			if projectPosition(ps, removed.ID) >= 0 {
				return ps
			}
			i := min(idx, len(ps))
			return append(ps[:i:i], append([]model.Project{removed}, ps[i:]...)...)
		})
		if hadBoard {
			r.cache.restoreBoard(projectID, saved)
		}
	}

	m.send = func(ctx context.Context) error {
		return r.backend.DeleteProject(ctx, projectID)
	}
	return m, nil
}

func (r *Reconciler) removeTask(projectID, taskID string) {
	r.cache.update(projectID, func(b *BoardState) {
		if i := taskIndex(b.Tasks, taskID); i >= 0 {
			b.Tasks = append(b.Tasks[:i:i], b.Tasks[i+1:]...)
		}
	})
}

func (r *Reconciler) removeProject(projectID string) {
	r.cache.updateProjects(func(ps []model.Project) []model.Project {
		out := ps[:0:0]
		for _, p := range ps {
			if !board.SameID(p.ID, projectID) {
				out = append(out, p)
			}
		}
		return out
	})
	r.cache.dropBoard(projectID)
}

func projectPosition(ps []model.Project, id string) int {
	for i, p := range ps {
		if board.SameID(p.ID, id) {
			return i
		}
	}
	return -1
}

func positions(tasks []model.Task, columnID string) []int {
	var out []int
	for _, t := range tasks {
		if board.SameID(t.ColumnID, columnID) {
			out = append(out, t.Position)
		}
	}
	return out
}
