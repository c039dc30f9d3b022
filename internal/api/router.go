// Package api exposes the board service over JSON HTTP.
package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/nhle/taskboard/internal/board"
)

// NewRouter builds the gin engine with every route registered.
func NewRouter(svc *board.Service, log logrus.FieldLogger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log), instrument(), cors())

	h := &Handler{svc: svc, log: log}
	health := NewHealthHandler(svc)

	r.GET("/healthz", health.Liveness)
	r.GET("/readyz", health.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	projects := r.Group("/projects")
	projects.GET("", h.ListProjects)
	projects.POST("", h.CreateProject)
	projects.GET("/:id", h.GetProject)
	projects.PATCH("/:id", h.UpdateProject)
	projects.DELETE("/:id", h.DeleteProject)
	projects.GET("/:id/columns", h.ListColumns)
	projects.GET("/:id/tasks", h.ListTasks)
	projects.GET("/:id/board", h.Board)
	projects.POST("/:id/ai/summarize", h.Summarize)
	projects.POST("/:id/ai/ask", h.Ask)

	tasks := r.Group("/tasks")
	tasks.POST("", h.CreateTask)
	tasks.PATCH("/:id", h.UpdateTask)
	tasks.DELETE("/:id", h.DeleteTask)

	return r
}
