package assistant

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBackend struct {
	summary   string
	answer    string
	err       error
	questions []string
}

func (s *stubBackend) Summarize(context.Context, string) (string, error) {
	return s.summary, s.err
}

func (s *stubBackend) Ask(_ context.Context, _ string, question string) (string, error) {
	s.questions = append(s.questions, question)
	return s.answer, s.err
}

func TestOpenWithSummary(t *testing.T) {
	backend := &stubBackend{summary: "Launch is on track."}
	m := New(backend, 100, 30)

	cmd := m.Open("p1", "Launch", true)
	require.NotNil(t, cmd)
	assert.True(t, m.Waiting())

	m, _ = m.Update(m.summarize()())
	assert.False(t, m.Waiting())
	require.Len(t, m.messages, 2)
	assert.Equal(t, "Assistant", m.messages[1].Role)
	assert.Equal(t, "Launch is on track.", m.messages[1].Content)
	assert.Contains(t, m.View(), "Assistant: Launch")
}

func TestAskQuestion(t *testing.T) {
	backend := &stubBackend{answer: "Two tasks are done."}
	m := New(backend, 100, 30)
	m.Open("p1", "Launch", false)

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd, "empty input is ignored")

	m.input.SetValue("  what is done?  ")
	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, m.Waiting())
	assert.Empty(t, m.input.Value())

	// A second question waits for the first answer.
	m.input.SetValue("and next?")
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)

	m, _ = m.Update(m.ask("what is done?")())
	assert.Equal(t, []string{"what is done?"}, backend.questions)
	assert.Equal(t, "Two tasks are done.", m.messages[len(m.messages)-1].Content)
}

func TestErrorsAreShown(t *testing.T) {
	backend := &stubBackend{err: errors.New("Failed to generate summary (502)")}
	m := New(backend, 100, 30)
	m.Open("p1", "Launch", true)

	m, _ = m.Update(m.summarize()())
	last := m.messages[len(m.messages)-1]
	assert.Equal(t, "Error", last.Role)
	assert.Contains(t, last.Content, "Failed to generate summary")
}

func TestStaleAnswerIgnored(t *testing.T) {
	m := New(&stubBackend{}, 100, 30)
	m.Open("p2", "Other", false)

	m, _ = m.Update(answerMsg{projectID: "p1", text: "old"})
	assert.Empty(t, m.messages)
}

func TestEscCloses(t *testing.T) {
	m := New(&stubBackend{}, 100, 30)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, CloseMsg{}, cmd())
}
