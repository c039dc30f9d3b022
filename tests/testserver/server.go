// Package testserver runs the full API in-process for client-side tests.
package testserver

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nhle/taskboard/internal/ai"
	"github.com/nhle/taskboard/internal/api"
	"github.com/nhle/taskboard/internal/board"
	"github.com/nhle/taskboard/internal/client"
	"github.com/nhle/taskboard/internal/logging"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/tests/testutil"
)

// NewClient starts an API server backed by an in-memory store and returns
// a client for it. The server stops when the test completes.
func NewClient(t *testing.T) *client.Client {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logging.Discard()
	svc := board.NewService(testutil.NewTestStore(t), ai.Local{}, log)
	srv := httptest.NewServer(api.NewRouter(svc, log))
	t.Cleanup(srv.Close)

	return client.New(srv.URL, 5*time.Second)
}

// SeedBoard creates a project through the API and returns it with its
// columns in position order.
func SeedBoard(t *testing.T, c *client.Client, name string) (model.Project, []model.Column) {
	t.Helper()
	ctx := context.Background()

	p, err := c.CreateProject(ctx, model.NewProjectInput{Name: name})
	if err != nil {
		t.Fatalf("seeding project %q: %v", name, err)
	}
	cols, err := c.ListColumns(ctx, p.ID)
	if err != nil {
		t.Fatalf("listing columns of %q: %v", name, err)
	}
	return *p, cols
}

// SeedTask creates a task through the API.
func SeedTask(t *testing.T, c *client.Client, col model.Column, title string) model.Task {
	t.Helper()

	task, err := c.CreateTask(context.Background(), model.NewTaskInput{
		ProjectID: col.ProjectID,
		ColumnID:  col.ID,
		Title:     title,
	})
	if err != nil {
		t.Fatalf("seeding task %q: %v", title, err)
	}
	return *task
}
