// Package cache holds the terminal client's view of the boards and
// reconciles optimistic edits with the server.
package cache

import (
	"sort"
	"sync"

	"github.com/nhle/taskboard/internal/board"
	"github.com/nhle/taskboard/internal/model"
)

// BoardState is the last known-good columns and tasks of one project.
type BoardState struct {
	Columns []model.Column
	Tasks   []model.Task
}

func (b BoardState) clone() BoardState {
	return BoardState{
		Columns: append([]model.Column(nil), b.Columns...),
		Tasks:   append([]model.Task(nil), b.Tasks...),
	}
}

// TasksIn returns the tasks of a column ordered by position.
func (b BoardState) TasksIn(columnID string) []model.Task {
	var out []model.Task
	for _, t := range b.Tasks {
		if board.SameID(t.ColumnID, columnID) {
			out = append(out, t)
		}
	}
	sortByPosition(out)
	return out
}

// State is a deep copy of the whole cache.
type State struct {
	Projects []model.Project
	Boards   map[string]BoardState
}

// BoardCache is the client-side store. It is safe for concurrent use; tea
// commands resolve mutations on their own goroutines.
type BoardCache struct {
	mu       sync.Mutex
	projects []model.Project
	boards   map[string]BoardState
}

// NewBoardCache returns an empty cache.
func NewBoardCache() *BoardCache {
	return &BoardCache{boards: make(map[string]BoardState)}
}

// Projects returns a copy of the cached project list.
func (c *BoardCache) Projects() []model.Project {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.Project(nil), c.projects...)
}

// Project returns a cached project.
func (c *BoardCache) Project(id string) (model.Project, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.projectIndex(id)
	if i < 0 {
		return model.Project{}, false
	}
	return c.projects[i], true
}

// Board returns a copy of a project's cached board.
func (c *BoardCache) Board(projectID string) (BoardState, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.boards[board.NormalizeID(projectID)]
	if !ok {
		return BoardState{}, false
	}
	return b.clone(), true
}

// SetProjects replaces the project list.
func (c *BoardCache) SetProjects(projects []model.Project) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.projects = append([]model.Project(nil), projects...)
}

// SetBoard replaces a project's board.
func (c *BoardCache) SetBoard(projectID string, columns []model.Column, tasks []model.Task) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.boards[board.NormalizeID(projectID)] = BoardState{Columns: columns, Tasks: tasks}.clone()
}

// State returns a deep copy of everything cached.
func (c *BoardCache) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := State{
		Projects: append([]model.Project(nil), c.projects...),
		Boards:   make(map[string]BoardState, len(c.boards)),
	}
	for id, b := range c.boards {
		s.Boards[id] = b.clone()
	}
	return s
}

// restoreBoard puts back a board dropped by a failed mutation unless the
// project has been loaded again since.
func (c *BoardCache) restoreBoard(projectID string, b BoardState) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := board.NormalizeID(projectID)
	if _, ok := c.boards[key]; !ok {
		c.boards[key] = b
	}
}

// update runs fn on a project's board under the lock. It reports false when
// the board is not cached.
func (c *BoardCache) update(projectID string, fn func(b *BoardState)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := board.NormalizeID(projectID)
	b, ok := c.boards[key]
	if !ok {
		return false
	}
	fn(&b)
	c.boards[key] = b
	return true
}

func (c *BoardCache) updateProjects(fn func(ps []model.Project) []model.Project) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.projects = fn(c.projects)
}

func (c *BoardCache) dropBoard(projectID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.boards, board.NormalizeID(projectID))
}

func (c *BoardCache) projectIndex(id string) int {
	for i, p := range c.projects {
		if board.SameID(p.ID, id) {
			return i
		}
	}
	return -1
}

func taskIndex(tasks []model.Task, id string) int {
	for i, t := range tasks {
		if board.SameID(t.ID, id) {
			return i
		}
	}
	return -1
}

func sortByPosition(tasks []model.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].Position < tasks[j].Position
	})
}
