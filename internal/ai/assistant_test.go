package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskboard/internal/board"
	"github.com/nhle/taskboard/internal/model"
)

func launchSnapshot() board.Snapshot {
	return board.Snapshot{
		ProjectID:   "p1",
		ProjectName: "Launch",
		PerColumn: []board.ColumnTasks{
			{ColumnID: "c1", ColumnName: "To Do", Tasks: []model.Task{
				{ID: "t1", Title: "Draft plan", Description: "First draft"},
				{ID: "t2", Title: "Review"},
			}},
			{ColumnID: "c2", ColumnName: "In Progress", Tasks: []model.Task{}},
			{ColumnID: "c3", ColumnName: "Done", Tasks: []model.Task{
				{ID: "t3", Title: "Kickoff"},
			}},
		},
		DoneTasks: []model.Task{{ID: "t3", Title: "Kickoff"}},
	}
}

func TestSummaryPrompt(t *testing.T) {
	p := summaryPrompt(launchSnapshot())

	assert.Contains(t, p, `"Launch"`)
	assert.Contains(t, p, "To Do (2 tasks):")
	assert.Contains(t, p, "- Draft plan: First draft")
	assert.Contains(t, p, "- Review: No description")
	assert.Contains(t, p, "In Progress (0 tasks):")
	assert.Contains(t, p, "potential blockers")
}

func TestQuestionPrompt(t *testing.T) {
	p := questionPrompt(launchSnapshot(), "What is blocked?")

	assert.Contains(t, p, "User question: What is blocked?")
	assert.Contains(t, p, "Done (1 tasks):")
	assert.Contains(t, p, "cannot be answered")
}

func TestAssistantSummarize(t *testing.T) {
	var got apiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, apiVersion, r.Header.Get("anthropic-version"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_1","type":"message","role":"assistant",
			"content":[{"type":"text","text":"Launch is "},{"type":"text","text":"on track."}],
			"model":"claude","stop_reason":"end_turn"}`))
	}))
	defer srv.Close()

	a := New("test-key", model.AIConfig{APIURL: srv.URL, Model: "m", MaxTokens: 99}, nil)
	text, err := a.Summarize(context.Background(), launchSnapshot())
	require.NoError(t, err)
	assert.Equal(t, "Launch is on track.", text)

	assert.Equal(t, "m", got.Model)
	assert.Equal(t, 99, got.MaxTokens)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Contains(t, got.Messages[0].Content[0].Text, "Draft plan")
}

func TestAssistantAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`))
	}))
	defer srv.Close()

	a := New("test-key", model.AIConfig{APIURL: srv.URL}, nil)
	_, err := a.Answer(context.Background(), launchSnapshot(), "status?")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "slow down")
}

func TestAssistantWithoutKey(t *testing.T) {
	a := New("", model.AIConfig{}, nil)
	_, err := a.Summarize(context.Background(), launchSnapshot())
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestLocalSummarizer(t *testing.T) {
	text, err := Local{}.Summarize(context.Background(), launchSnapshot())
	require.NoError(t, err)
	assert.Contains(t, text, "Launch")
	assert.Contains(t, text, "3 tasks")
	assert.Contains(t, text, "1 of them done")

	answer, err := Local{}.Answer(context.Background(), launchSnapshot(), "?")
	require.NoError(t, err)
	assert.Contains(t, answer, "API key")
}
