package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/nhle/taskboard/internal/board"
	"github.com/nhle/taskboard/internal/model"
)

var (
	projectMessages = errorMessages{notFound: "Project not found", upstream: defaultMessages.upstream}
	taskMessages    = errorMessages{notFound: "Task not found", upstream: defaultMessages.upstream}
	columnMessages  = errorMessages{notFound: "Column not found", upstream: defaultMessages.upstream}
	summaryMessages = errorMessages{notFound: "Project not found", upstream: "Failed to generate summary"}
	askMessages     = errorMessages{notFound: "Project not found", upstream: "Failed to answer question"}
)

// Handler serves the board routes.
type Handler struct {
	svc *board.Service
	log logrus.FieldLogger
}

// === Projects ===

// ListProjects handles GET /projects.
func (h *Handler) ListProjects(c *gin.Context) {
	projects, err := h.svc.ListProjects(c.Request.Context())
	if err != nil {
		abortWithError(c, err, projectMessages)
		return
	}
	c.JSON(http.StatusOK, projects)
}

// CreateProject handles POST /projects.
func (h *Handler) CreateProject(c *gin.Context) {
	var in model.NewProjectInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err, "Invalid request body")
		return
	}
	project, err := h.svc.CreateProject(c.Request.Context(), in)
	if err != nil {
		abortWithError(c, err, projectMessages)
		return
	}
	c.JSON(http.StatusCreated, project)
}

// GetProject handles GET /projects/:id.
func (h *Handler) GetProject(c *gin.Context) {
	project, err := h.svc.GetProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err, projectMessages)
		return
	}
	c.JSON(http.StatusOK, project)
}

// UpdateProject handles PATCH /projects/:id.
func (h *Handler) UpdateProject(c *gin.Context) {
	var patch model.ProjectPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err, "Invalid request body")
		return
	}
	project, err := h.svc.UpdateProject(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		abortWithError(c, err, projectMessages)
		return
	}
	c.JSON(http.StatusOK, project)
}

// DeleteProject handles DELETE /projects/:id.
func (h *Handler) DeleteProject(c *gin.Context) {
	if err := h.svc.DeleteProject(c.Request.Context(), c.Param("id")); err != nil {
		abortWithError(c, err, projectMessages)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// === Board ===

// ListColumns handles GET /projects/:id/columns.
func (h *Handler) ListColumns(c *gin.Context) {
	columns, err := h.svc.ListColumns(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err, projectMessages)
		return
	}
	c.JSON(http.StatusOK, columns)
}

// ListTasks handles GET /projects/:id/tasks.
func (h *Handler) ListTasks(c *gin.Context) {
	tasks, err := h.svc.ListTasks(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err, projectMessages)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// Board handles GET /projects/:id/board.
func (h *Handler) Board(c *gin.Context) {
	snap, err := h.svc.Board(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err, projectMessages)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// === Tasks ===

// CreateTask handles POST /tasks.
func (h *Handler) CreateTask(c *gin.Context) {
	var in model.NewTaskInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err, "Invalid request body")
		return
	}
	task, err := h.svc.CreateTask(c.Request.Context(), in)
	if err != nil {
		abortWithError(c, err, columnMessages)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// UpdateTask handles PATCH /tasks/:id.
func (h *Handler) UpdateTask(c *gin.Context) {
	var patch model.TaskPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err, "Invalid request body")
		return
	}
	task, err := h.svc.UpdateTask(c.Request.Context(), c.Param("id"), patch)
	if patch.IsMove() {
		taskMoves.WithLabelValues(outcome(err)).Inc()
	}
	if err != nil {
		abortWithError(c, err, taskMessages)
		return
	}
	c.JSON(http.StatusOK, task)
}

// DeleteTask handles DELETE /tasks/:id.
func (h *Handler) DeleteTask(c *gin.Context) {
	if err := h.svc.DeleteTask(c.Request.Context(), c.Param("id")); err != nil {
		abortWithError(c, err, taskMessages)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// === Assistant ===

type askRequest struct {
	Question string `json:"question"`
}

// Summarize handles POST /projects/:id/ai/summarize.
func (h *Handler) Summarize(c *gin.Context) {
	summary, err := h.svc.Summarize(c.Request.Context(), c.Param("id"))
	assistantRequests.WithLabelValues("summarize", outcome(err)).Inc()
	if err != nil {
		abortWithError(c, err, summaryMessages)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// Ask handles POST /projects/:id/ai/ask.
func (h *Handler) Ask(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err, "Question is required")
		return
	}
	answer, err := h.svc.Ask(c.Request.Context(), c.Param("id"), req.Question)
	assistantRequests.WithLabelValues("ask", outcome(err)).Inc()
	if err != nil {
		abortWithError(c, err, askMessages)
		return
	}
	c.JSON(http.StatusOK, gin.H{"answer": answer})
}
