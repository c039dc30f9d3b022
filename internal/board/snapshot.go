package board

import (
	"sort"
	"strings"

	"github.com/nhle/taskboard/internal/model"
)

// ColumnTasks is one column of a snapshot with its tasks in input order.
type ColumnTasks struct {
	ColumnID   string       `json:"column_id"`
	ColumnName string       `json:"column_name"`
	Tasks      []model.Task `json:"tasks"`
}

// Snapshot is the read-only, column-grouped view of a board handed to the
// summarizer and returned by the board endpoint.
type Snapshot struct {
	ProjectID   string        `json:"project_id"`
	ProjectName string        `json:"project_name"`
	PerColumn   []ColumnTasks `json:"per_column"`
	DoneTasks   []model.Task  `json:"done_tasks"`
}

// TaskCount returns the number of tasks placed in a column of the snapshot.
func (s Snapshot) TaskCount() int {
	n := 0
	for _, c := range s.PerColumn {
		n += len(c.Tasks)
	}
	return n
}

// NormalizeID returns the canonical form of an identifier so that ids coming
// from different sources compare equal: surrounding whitespace, braces and
// quotes are dropped, a "urn:uuid:" prefix is removed, and the result is
// lower-cased.
func NormalizeID(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	id = strings.Trim(id, `"'{}`)
	id = strings.TrimPrefix(id, "urn:uuid:")
	return strings.Trim(strings.TrimSpace(id), `"'{}`)
}

// SameID reports whether a and b identify the same record.
func SameID(a, b string) bool {
	return NormalizeID(a) == NormalizeID(b)
}

// IsDoneColumn reports whether a column is the completion bucket, i.e. its
// trimmed name is "done" in any case.
func IsDoneColumn(c model.Column) bool {
	return strings.EqualFold(strings.TrimSpace(c.Name), "done")
}

// BuildSnapshot groups tasks under their columns. Columns appear in stored
// position order and each group keeps the relative order of tasks. Tasks
// whose column is not among columns are left out.
func BuildSnapshot(project model.Project, columns []model.Column, tasks []model.Task) Snapshot {
	ordered := make([]model.Column, len(columns))
	copy(ordered, columns)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Position < ordered[j].Position
	})

	groups := make(map[string]*ColumnTasks, len(ordered))
	snap := Snapshot{
		ProjectID:   project.ID,
		ProjectName: project.Name,
		PerColumn:   make([]ColumnTasks, len(ordered)),
		DoneTasks:   []model.Task{},
	}
	for i, c := range ordered {
		snap.PerColumn[i] = ColumnTasks{ColumnID: c.ID, ColumnName: c.Name, Tasks: []model.Task{}}
		groups[NormalizeID(c.ID)] = &snap.PerColumn[i]
	}

	for _, t := range tasks {
		if g, ok := groups[NormalizeID(t.ColumnID)]; ok {
			g.Tasks = append(g.Tasks, t)
		}
	}

	for i, c := range ordered {
		if IsDoneColumn(c) {
			snap.DoneTasks = append(snap.DoneTasks, snap.PerColumn[i].Tasks...)
		}
	}
	return snap
}
