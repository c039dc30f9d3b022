package board

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/store"
)

// Summarizer turns a board snapshot into prose. Implementations must only
// read the snapshot they are given.
type Summarizer interface {
	Summarize(ctx context.Context, snap Snapshot) (string, error)
	Answer(ctx context.Context, snap Snapshot, question string) (string, error)
}

// Service implements the board operations on top of the entity store.
type Service struct {
	store      store.Store
	summarizer Summarizer
	log        logrus.FieldLogger
}

// NewService wires a Service. A nil logger discards output.
func NewService(st store.Store, summarizer Summarizer, log logrus.FieldLogger) *Service {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Service{store: st, summarizer: summarizer, log: log}
}

// Ping reports whether the store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	if err := s.store.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return nil
}

// === Projects ===

// ListProjects returns all projects, newest first.
func (s *Service) ListProjects(ctx context.Context) ([]model.Project, error) {
	projects, err := s.store.GetProjects(ctx)
	if err != nil {
		return nil, storeErr("listing projects", err)
	}
	return projects, nil
}

// GetProject returns a single project.
func (s *Service) GetProject(ctx context.Context, id string) (*model.Project, error) {
	p, err := s.store.GetProjectByID(ctx, id)
	if err != nil {
		return nil, storeErr(fmt.Sprintf("getting project %s", id), err)
	}
	return p, nil
}

// CreateProject stores a project and provisions its "To Do", "In Progress"
// and "Done" columns at positions 0, 1 and 2.
func (s *Service) CreateProject(ctx context.Context, in model.NewProjectInput) (*model.Project, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, validationErr("name is required")
	}

	project := model.Project{Name: name, Description: in.Description}
	if err := s.store.CreateProject(ctx, &project); err != nil {
		return nil, storeErr("creating project", err)
	}

	for i, colName := range model.DefaultColumnNames {
		col := model.Column{ProjectID: project.ID, Name: colName, Position: i}
		if err := s.store.CreateColumn(ctx, &col); err != nil {
			return nil, storeErr(fmt.Sprintf("provisioning columns for project %s", project.ID), err)
		}
	}

	s.log.WithField("project_id", project.ID).Info("project created")
	return &project, nil
}

// UpdateProject applies a partial update to a project.
func (s *Service) UpdateProject(
	ctx context.Context,
	id string,
	patch model.ProjectPatch,
) (*model.Project, error) {
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, validationErr("name must not be empty")
		}
		patch.Name = &name
	}
	if patch.IsEmpty() {
		return s.GetProject(ctx, id)
	}

	p, err := s.store.UpdateProject(ctx, id, patch)
	if err != nil {
		return nil, storeErr(fmt.Sprintf("updating project %s", id), err)
	}
	return p, nil
}

// DeleteProject removes a project with its columns and every task that
// references the project or one of its columns. Deleting an unknown project
// succeeds.
func (s *Service) DeleteProject(ctx context.Context, id string) error {
	columns, err := s.store.GetColumns(ctx, id)
	if err != nil {
		return storeErr(fmt.Sprintf("deleting project %s", id), err)
	}

	filter := store.TaskFilter{ProjectID: &id}
	for _, c := range columns {
		filter.ColumnIDs = append(filter.ColumnIDs, c.ID)
	}
	if err := s.store.DeleteTasks(ctx, filter); err != nil {
		return storeErr(fmt.Sprintf("deleting tasks of project %s", id), err)
	}
	if err := s.store.DeleteColumns(ctx, id); err != nil {
		return storeErr(fmt.Sprintf("deleting columns of project %s", id), err)
	}
	if err := s.store.DeleteProject(ctx, id); err != nil {
		return storeErr(fmt.Sprintf("deleting project %s", id), err)
	}

	s.log.WithField("project_id", id).Info("project deleted")
	return nil
}

// === Columns and tasks ===

// ListColumns returns a project's columns in position order.
func (s *Service) ListColumns(ctx context.Context, projectID string) ([]model.Column, error) {
	columns, err := s.store.GetColumns(ctx, projectID)
	if err != nil {
		return nil, storeErr(fmt.Sprintf("listing columns of project %s", projectID), err)
	}
	return columns, nil
}

// ListTasks returns a project's tasks in position order.
func (s *Service) ListTasks(ctx context.Context, projectID string) ([]model.Task, error) {
	tasks, err := s.store.GetTasks(ctx, store.TaskFilter{ProjectID: &projectID})
	if err != nil {
		return nil, storeErr(fmt.Sprintf("listing tasks of project %s", projectID), err)
	}
	return tasks, nil
}

// Board reads a project with its columns and tasks and groups them.
func (s *Service) Board(ctx context.Context, projectID string) (Snapshot, error) {
	project, err := s.GetProject(ctx, projectID)
	if err != nil {
		return Snapshot{}, err
	}
	columns, err := s.ListColumns(ctx, project.ID)
	if err != nil {
		return Snapshot{}, err
	}
	tasks, err := s.ListTasks(ctx, project.ID)
	if err != nil {
		return Snapshot{}, err
	}
	return BuildSnapshot(*project, columns, tasks), nil
}

// CreateTask appends a task to a column. When ProjectID is empty it is taken
// from the column; a ProjectID that disagrees with the column is rejected.
func (s *Service) CreateTask(ctx context.Context, in model.NewTaskInput) (*model.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, validationErr("title is required")
	}
	if strings.TrimSpace(in.ColumnID) == "" {
		return nil, validationErr("columnId is required")
	}

	col, err := s.store.GetColumnByID(ctx, in.ColumnID)
	if err != nil {
		return nil, storeErr(fmt.Sprintf("finding column %s", in.ColumnID), err)
	}
	if in.ProjectID != "" && !SameID(in.ProjectID, col.ProjectID) {
		return nil, validationErr(fmt.Sprintf(
			"column %s does not belong to project %s", in.ColumnID, in.ProjectID))
	}

	existing, err := s.store.GetTaskPositions(ctx, col.ID)
	if err != nil {
		return nil, storeErr(fmt.Sprintf("reading positions of column %s", col.ID), err)
	}

	task := model.Task{
		ProjectID:   col.ProjectID,
		ColumnID:    col.ID,
		Title:       title,
		Description: in.Description,
		Position:    NextPosition(existing),
	}
	if err := s.store.CreateTask(ctx, &task); err != nil {
		return nil, storeErr("creating task", err)
	}

	s.log.WithFields(logrus.Fields{
		"task_id":   task.ID,
		"column_id": task.ColumnID,
		"position":  task.Position,
	}).Info("task created")
	return &task, nil
}

// UpdateTask edits a task's title and description and applies any move the
// patch carries, all in one store update. A patch that only places the task
// goes through Move. A patch that changes nothing returns the task without
// writing.
func (s *Service) UpdateTask(ctx context.Context, id string, patch model.TaskPatch) (*model.Task, error) {
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, validationErr("title must not be empty")
		}
		patch.Title = &title
	}

	task, err := s.store.GetTaskByID(ctx, id)
	if err != nil {
		return nil, storeErr(fmt.Sprintf("getting task %s", id), err)
	}

	dest := ""
	if patch.ColumnID != nil {
		dest = *patch.ColumnID
	}
	if patch.Title == nil && patch.Description == nil && patch.IsMove() {
		moved, err := s.Move(ctx, *task, dest, patch.Position)
		if err != nil {
			return nil, err
		}
		return &moved, nil
	}

	final := model.TaskPatch{Title: patch.Title, Description: patch.Description}
	if patch.IsMove() {
		placement, err := s.placement(ctx, *task, dest, patch.Position)
		if err != nil {
			return nil, err
		}
		final.ColumnID = placement.ColumnID
		final.Position = placement.Position
	}
	if final.IsEmpty() {
		return task, nil
	}

	updated, err := s.store.UpdateTask(ctx, id, final)
	if err != nil {
		return nil, storeErr(fmt.Sprintf("updating task %s", id), err)
	}
	return updated, nil
}

// DeleteTask removes a task. Deleting an unknown task succeeds.
func (s *Service) DeleteTask(ctx context.Context, id string) error {
	if err := s.store.DeleteTask(ctx, id); err != nil {
		return storeErr(fmt.Sprintf("deleting task %s", id), err)
	}
	return nil
}

// === Assistant ===

// Summarize produces a prose summary of a project's board.
func (s *Service) Summarize(ctx context.Context, projectID string) (string, error) {
	snap, err := s.Board(ctx, projectID)
	if err != nil {
		return "", err
	}
	summary, err := s.summarizer.Summarize(ctx, snap)
	if err != nil {
		return "", s.upstreamErr("summarizing project "+projectID, err)
	}
	return summary, nil
}

// Ask answers a free-form question about a project's board.
func (s *Service) Ask(ctx context.Context, projectID, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", validationErr("question is required")
	}
	snap, err := s.Board(ctx, projectID)
	if err != nil {
		return "", err
	}
	answer, err := s.summarizer.Answer(ctx, snap, question)
	if err != nil {
		return "", s.upstreamErr("answering question for project "+projectID, err)
	}
	return answer, nil
}

func (s *Service) upstreamErr(op string, err error) error {
	s.log.WithError(err).Error(op)
	if errors.Is(err, ErrUpstream) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrUpstream, err)
}
