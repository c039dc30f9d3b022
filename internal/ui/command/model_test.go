package command

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    Command
		wantErr bool
	}{
		{input: "refresh", want: Command{Name: Refresh}},
		{input: "  SYNC ", want: Command{Name: Refresh}},
		{input: "summary", want: Command{Name: Summarize}},
		{input: "q", want: Command{Name: Quit}},
		{input: "ask what is blocked?", want: Command{Name: Ask, Arg: "what is blocked?"}},
		{input: "ask   ", wantErr: true},
		{input: "", wantErr: true},
		{input: "deploy", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEnterEmitsCommand(t *testing.T) {
	m := New(80, 20)
	m.Focus()
	m.input.SetValue("ask who owns launch?")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, CommandMsg{Name: Ask, Arg: "who owns launch?"}, cmd())
	assert.Empty(t, m.input.Value())
}

func TestInvalidInputStaysOpen(t *testing.T) {
	m := New(80, 20)
	m.input.SetValue("deploy")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "unknown command")
	assert.Equal(t, "deploy", m.input.Value())
}

func TestEscCancels(t *testing.T) {
	m := New(80, 20)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, CancelMsg{}, cmd())
}
