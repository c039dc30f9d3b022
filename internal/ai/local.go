package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/nhle/taskboard/internal/board"
)

// Local is a board.Summarizer that needs no network. It reports task counts
// per column and is used when no API key is configured.
type Local struct{}

// Summarize implements board.Summarizer.
func (Local) Summarize(_ context.Context, snap board.Snapshot) (string, error) {
	var sb strings.Builder

	total := snap.TaskCount()
	fmt.Fprintf(&sb, "Project %q has %d tasks", snap.ProjectName, total)
	if total > 0 {
		fmt.Fprintf(&sb, ", %d of them done", len(snap.DoneTasks))
	}
	sb.WriteString(".\n")

	for _, col := range snap.PerColumn {
		fmt.Fprintf(&sb, "%s: %d\n", strings.TrimSpace(col.ColumnName), len(col.Tasks))
	}
	return strings.TrimSpace(sb.String()), nil
}

// Answer implements board.Summarizer. Without a model it can only restate
// the board.
func (l Local) Answer(ctx context.Context, snap board.Snapshot, _ string) (string, error) {
	summary, err := l.Summarize(ctx, snap)
	if err != nil {
		return "", err
	}
	return summary + "\n\nConfigure an Anthropic API key to ask free-form questions.", nil
}
