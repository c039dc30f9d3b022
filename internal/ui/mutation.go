package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/taskboard/internal/cache"
)

// requestTimeout bounds a single round trip started from the UI.
const requestTimeout = 30 * time.Second

// MutationResolvedMsg carries the server's verdict on a staged mutation.
// Err is a *cache.MutationError when the change was rolled back.
type MutationResolvedMsg struct {
	Mutation *cache.Mutation
	Err      error
}

// StatusMsg replaces the status bar text.
type StatusMsg struct {
	Text    string
	IsError bool
}

// Resolve returns a command that sends a staged mutation and reports the
// outcome. The cache already shows the predicted result while it runs.
func Resolve(rec *cache.Reconciler, m *cache.Mutation) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := Context()
		defer cancel()
		return MutationResolvedMsg{Mutation: m, Err: rec.Resolve(ctx, m)}
	}
}

// Status returns a command that sets the status bar.
func Status(text string, isError bool) tea.Cmd {
	return func() tea.Msg {
		return StatusMsg{Text: text, IsError: isError}
	}
}

// Context returns the context used for UI-initiated requests.
func Context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}
