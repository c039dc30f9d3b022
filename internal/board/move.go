package board

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/nhle/taskboard/internal/model"
)

// MoveKind classifies a requested placement change.
type MoveKind int

const (
	// MoveNoop leaves the task where it is and issues no write.
	MoveNoop MoveKind = iota
	// MoveAcrossColumns puts the task in another column, appended unless an
	// explicit position is given.
	MoveAcrossColumns
	// MoveReposition changes the position within the current column.
	MoveReposition
)

func (k MoveKind) String() string {
	switch k {
	case MoveAcrossColumns:
		return "across-columns"
	case MoveReposition:
		return "reposition"
	default:
		return "noop"
	}
}

// ClassifyMove decides what a request to place task in destColumnID at an
// optional explicit position amounts to. An empty destination means the
// task's current column.
func ClassifyMove(task model.Task, destColumnID string, position *int) MoveKind {
	if destColumnID != "" && !SameID(destColumnID, task.ColumnID) {
		return MoveAcrossColumns
	}
	if position != nil && *position != task.Position {
		return MoveReposition
	}
	return MoveNoop
}

// Move applies a column and/or position change to task as one store update.
// Cross-column moves append to the destination unless position is set; an
// explicit position is taken as-is and siblings are never renumbered.
// The task's project never changes.
func (s *Service) Move(
	ctx context.Context,
	task model.Task,
	destColumnID string,
	position *int,
) (model.Task, error) {
	patch, err := s.placement(ctx, task, destColumnID, position)
	if err != nil {
		return model.Task{}, err
	}
	if patch.IsEmpty() {
		return task, nil
	}

	updated, err := s.store.UpdateTask(ctx, task.ID, patch)
	if err != nil {
		return model.Task{}, storeErr(fmt.Sprintf("moving task %s", task.ID), err)
	}
	return *updated, nil
}

// placement resolves the column_id/position fields of a move. The returned
// patch is empty for a no-op.
func (s *Service) placement(
	ctx context.Context,
	task model.Task,
	destColumnID string,
	position *int,
) (model.TaskPatch, error) {
	if position != nil && *position < 0 {
		return model.TaskPatch{}, validationErr("position must not be negative")
	}

	kind := ClassifyMove(task, destColumnID, position)
	var patch model.TaskPatch

	switch kind {
	case MoveNoop:
		return patch, nil

	case MoveReposition:
		p := *position
		patch.Position = &p

	case MoveAcrossColumns:
		col, err := s.store.GetColumnByID(ctx, destColumnID)
		if err != nil {
			return patch, storeErr(fmt.Sprintf("finding column %s", destColumnID), err)
		}
		if !SameID(col.ProjectID, task.ProjectID) {
			return patch, validationErr(fmt.Sprintf(
				"column %s belongs to another project", destColumnID))
		}
		colID := col.ID
		patch.ColumnID = &colID

		if position != nil {
			p := *position
			patch.Position = &p
		} else {
			existing, err := s.store.GetTaskPositions(ctx, col.ID)
			if err != nil {
				return patch, storeErr(fmt.Sprintf("reading positions of column %s", col.ID), err)
			}
			next := NextPosition(existing)
			patch.Position = &next
		}
	}

	s.log.WithFields(logrus.Fields{
		"task_id": task.ID,
		"kind":    kind.String(),
	}).Debug("planned move")
	return patch, nil
}
