package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nhle/taskboard/internal/board"
)

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	svc       *board.Service
	startTime time.Time
}

// NewHealthHandler creates a health handler backed by the service's store.
func NewHealthHandler(svc *board.Service) *HealthHandler {
	return &HealthHandler{svc: svc, startTime: time.Now()}
}

// Liveness reports that the process is up.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness reports whether the store answers.
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	uptime := time.Since(h.startTime).Round(time.Second).String()
	if err := h.svc.Ping(ctx); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  "database unavailable",
			"uptime": uptime,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "uptime": uptime})
}
