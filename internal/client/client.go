// Package client is the HTTP client the terminal UI uses to talk to the
// board server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nhle/taskboard/internal/board"
	"github.com/nhle/taskboard/internal/model"
)

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
}

// Error formats the status code with the server's message.
func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.Status)
}

// Client is a thin JSON client for the board API. Requests are never
// retried; callers roll back on failure.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the server at baseURL (e.g. http://localhost:3000).
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// === Projects ===

// ListProjects returns every project, newest first.
func (c *Client) ListProjects(ctx context.Context) ([]model.Project, error) {
	var out []model.Project
	if err := c.do(ctx, http.MethodGet, "/projects", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetProject fetches one project.
func (c *Client) GetProject(ctx context.Context, id string) (*model.Project, error) {
	var out model.Project
	if err := c.do(ctx, http.MethodGet, "/projects/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateProject creates a project; the server provisions its columns.
func (c *Client) CreateProject(ctx context.Context, in model.NewProjectInput) (*model.Project, error) {
	var out model.Project
	if err := c.do(ctx, http.MethodPost, "/projects", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProject renames or re-describes a project.
func (c *Client) UpdateProject(ctx context.Context, id string, patch model.ProjectPatch) (*model.Project, error) {
	var out model.Project
	if err := c.do(ctx, http.MethodPatch, "/projects/"+url.PathEscape(id), patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteProject removes a project with its columns and tasks.
func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/projects/"+url.PathEscape(id), nil, nil)
}

// === Board ===

// ListColumns returns a project's columns in position order.
func (c *Client) ListColumns(ctx context.Context, projectID string) ([]model.Column, error) {
	var out []model.Column
	if err := c.do(ctx, http.MethodGet, "/projects/"+url.PathEscape(projectID)+"/columns", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListTasks returns a project's tasks in position order.
func (c *Client) ListTasks(ctx context.Context, projectID string) ([]model.Task, error) {
	var out []model.Task
	if err := c.do(ctx, http.MethodGet, "/projects/"+url.PathEscape(projectID)+"/tasks", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Board fetches the grouped snapshot of a project.
func (c *Client) Board(ctx context.Context, projectID string) (board.Snapshot, error) {
	var out board.Snapshot
	if err := c.do(ctx, http.MethodGet, "/projects/"+url.PathEscape(projectID)+"/board", nil, &out); err != nil {
		return board.Snapshot{}, err
	}
	return out, nil
}

// === Tasks ===

// CreateTask appends a task to a column.
func (c *Client) CreateTask(ctx context.Context, in model.NewTaskInput) (*model.Task, error) {
	var out model.Task
	if err := c.do(ctx, http.MethodPost, "/tasks", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateTask edits and/or moves a task.
func (c *Client) UpdateTask(ctx context.Context, id string, patch model.TaskPatch) (*model.Task, error) {
	var out model.Task
	if err := c.do(ctx, http.MethodPatch, "/tasks/"+url.PathEscape(id), patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, nil)
}

// === Assistant ===

// Summarize asks the server for a prose summary of a board.
func (c *Client) Summarize(ctx context.Context, projectID string) (string, error) {
	var out struct {
		Summary string `json:"summary"`
	}
	if err := c.do(ctx, http.MethodPost, "/projects/"+url.PathEscape(projectID)+"/ai/summarize", nil, &out); err != nil {
		return "", err
	}
	return out.Summary, nil
}

// Ask sends a free-form question about a board.
func (c *Client) Ask(ctx context.Context, projectID, question string) (string, error) {
	var out struct {
		Answer string `json:"answer"`
	}
	body := map[string]string{"question": question}
	if err := c.do(ctx, http.MethodPost, "/projects/"+url.PathEscape(projectID)+"/ai/ask", body, &out); err != nil {
		return "", err
	}
	return out.Answer, nil
}

// do builds the request, sends it once and decodes the JSON response into
// result when result is non-nil.
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	body interface{},
	result interface{},
) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		var payload struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &payload) == nil {
			apiErr.Message = payload.Error
		}
		return apiErr
	}

	if result == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("decoding response from %s %s: %w", method, path, err)
	}
	return nil
}
